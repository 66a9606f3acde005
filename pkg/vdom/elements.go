package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// El creates an element with the given tag.
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, Component, string.
func El(tag string, args ...any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: make(Props),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			node.setAttr(v)
		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}
		default:
			node.Children = appendChild(node.Children, arg)
		}
	}

	return node
}

func (n *VNode) setAttr(a Attr) {
	if a.IsEmpty() {
		return
	}
	if a.Key == "key" {
		if s, ok := a.Value.(string); ok {
			n.Key = s
		}
		return
	}
	n.Props[a.Key] = a.Value
}

// appendChild appends a child argument, converting strings and components.
func appendChild(children []*VNode, child any) []*VNode {
	switch v := child.(type) {
	case *VNode:
		if v != nil {
			children = append(children, v)
		}
	case []*VNode:
		for _, c := range v {
			if c != nil {
				children = append(children, c)
			}
		}
	case string:
		children = append(children, Text(v))
	case Component:
		if v != nil {
			children = append(children, &VNode{Kind: KindComponent, Comp: v})
		}
	}
	return children
}

func Html(args ...any) *VNode   { return El("html", args...) }
func Div(args ...any) *VNode    { return El("div", args...) }
func Span(args ...any) *VNode   { return El("span", args...) }
func P(args ...any) *VNode      { return El("p", args...) }
func A(args ...any) *VNode      { return El("a", args...) }
func H1(args ...any) *VNode     { return El("h1", args...) }
func H2(args ...any) *VNode     { return El("h2", args...) }
func Ul(args ...any) *VNode     { return El("ul", args...) }
func Li(args ...any) *VNode     { return El("li", args...) }
func Nav(args ...any) *VNode    { return El("nav", args...) }
func Main(args ...any) *VNode   { return El("main", args...) }
func Header(args ...any) *VNode { return El("header", args...) }
func Footer(args ...any) *VNode { return El("footer", args...) }
func Button(args ...any) *VNode { return El("button", args...) }
func Img(args ...any) *VNode    { return El("img", args...) }
func Br() *VNode                { return El("br") }
