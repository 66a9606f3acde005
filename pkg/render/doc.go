// Package render turns VNode trees into HTML and assembles the page
// document sent to the browser.
//
// # Rendering
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// Text and attribute values are escaped. Raw nodes are written verbatim and
// must only carry trusted content.
//
// # Document assembly
//
// Assemble wraps rendered markup in the full document: asset links, the
// serialised store state the client rehydrates from (window.__data) and the
// client bundle scripts. Passing a nil markup produces the shell document
// used when server rendering is disabled. Output depends only on the inputs.
package render
