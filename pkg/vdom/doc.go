// Package vdom defines the node tree server components render into.
//
// A component returns a *VNode built from element constructors, text and
// fragments:
//
//	func UserPage(name string) *vdom.VNode {
//	    return vdom.Div(vdom.Class("user"),
//	        vdom.H1(vdom.Textf("Hello, %s", name)),
//	        vdom.A(vdom.Href("/logout"), "Log out"),
//	    )
//	}
//
// The tree is turned into HTML by package render.
package vdom
