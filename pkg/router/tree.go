package router

import "strings"

// node is a node in the radix tree.
type node struct {
	// segment is the path segment this node matches
	segment string

	isParam    bool
	isCatchAll bool

	// paramName is the parameter name (without : or *)
	paramName string

	// paramType constrains parameter values (int, uint, uuid, string)
	paramType string

	// chain is the matched route chain, root first. nil when no route ends here.
	chain []*Route

	// base is the parent path of the leaf route, used to resolve relative
	// redirect targets.
	base string

	// children are static segment children
	children []*node

	paramChild    *node
	catchAllChild *node
}

func newNode(segment string) *node {
	return &node{segment: segment}
}

// findChild finds a child node with an exact segment match.
func (n *node) findChild(segment string) *node {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

// addChild adds or retrieves a child node for the given segment.
func (n *node) addChild(segment string) *node {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := newNode(segment)
	n.children = append(n.children, child)
	return child
}

// addParamChild sets the parameter child node. Sibling parameters must
// agree on name and type.
func (n *node) addParamChild(name, paramType string) (*node, bool) {
	if n.paramChild != nil {
		c := n.paramChild
		return c, c.paramName == name && c.paramType == paramType
	}
	child := newNode("")
	child.isParam = true
	child.paramName = name
	child.paramType = paramType
	n.paramChild = child
	return child, true
}

// addCatchAllChild sets the catch-all child node.
func (n *node) addCatchAllChild(name string) (*node, bool) {
	if n.catchAllChild != nil {
		return n.catchAllChild, n.catchAllChild.paramName == name
	}
	child := newNode("")
	child.isCatchAll = true
	child.paramName = name
	n.catchAllChild = child
	return child, true
}

// insert walks to the node for path, creating nodes as needed. It reports
// false when path conflicts with an existing parameter of another name.
func (n *node) insert(path string) (*node, bool) {
	current := n
	for _, seg := range splitPath(path) {
		var ok bool
		switch {
		case strings.HasPrefix(seg, "*"):
			// Catch-all consumes the rest of the path.
			current, ok = current.addCatchAllChild(seg[1:])
			return current, ok
		case strings.HasPrefix(seg, ":"):
			name, paramType := parseParamSegment(seg)
			current, ok = current.addParamChild(name, paramType)
			if !ok {
				return current, false
			}
		default:
			current = current.addChild(seg)
		}
	}
	return current, true
}

// match finds the node for the given path segments, filling params.
// Static segments win over parameters, parameters over catch-alls.
func (n *node) match(segments []string, params Params) (*node, bool) {
	if len(segments) == 0 {
		if n.chain != nil {
			return n, true
		}
		return nil, false
	}

	segment := segments[0]
	remaining := segments[1:]

	if child := n.findChild(segment); child != nil {
		if found, ok := child.match(remaining, params); ok {
			return found, true
		}
	}

	if pc := n.paramChild; pc != nil && validParam(segment, pc.paramType) {
		params[pc.paramName] = segment
		if found, ok := pc.match(remaining, params); ok {
			return found, true
		}
		// Backtrack on failure
		delete(params, pc.paramName)
	}

	if cc := n.catchAllChild; cc != nil && cc.chain != nil {
		params[cc.paramName] = strings.Join(segments, "/")
		return cc, true
	}

	return nil, false
}

// splitPath splits a path into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// parseParamSegment extracts name and type from a parameter segment.
// Input: ":id" or ":id:int" -> name="id", type="string" or "int"
func parseParamSegment(seg string) (name, paramType string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, "string"
}
