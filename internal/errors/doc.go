// Package errors provides structured, coded errors for the prerender pipeline.
//
// Every failure the request pipeline can log carries a code (e.g. "E100"), a
// category and a short message, plus optional detail, suggestion and the
// wrapped cause. Errors print in two shapes:
//
//   - Format: a multi-line, colored report for terminal logs
//   - FormatCompact: a single line suitable for response bodies
//
// # Usage
//
//	err := errors.New("E100").
//	    Wrap(cause).
//	    WithDetail("route /users/:id onEnter hook failed")
//
//	logger.Error("route match failed", "error", err)
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR E100: Route matching failed
//	//
//	//   route /users/:id onEnter hook failed
//	//
//	//   Caused by: user service unavailable
package errors
