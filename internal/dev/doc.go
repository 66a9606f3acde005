// Package dev provides file watching and browser live reload for
// development mode.
//
// A Watcher reports batches of changed files under the configured paths.
// The app reloads configuration and reducers on change and tells the
// ReloadHub, which pushes a message to every connected browser.
//
// # Live Reload Protocol
//
// The browser connects to /_prerender/live via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload"}                 // Triggers full page reload
//	{"type": "reload", "file": "..."}  // Same, naming the changed file
//	{"type": "error", "error": "..."}  // A reload failed
package dev
