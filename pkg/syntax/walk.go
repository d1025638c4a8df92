package syntax

// WalkFunc is the function signature for Walk callbacks.
// Return a non-nil error to stop the walk.
type WalkFunc func(n *Node) error

// Walk performs a pre-order traversal starting at root. Children are
// visited property by property in declaration order, list elements in order.
// If walkFunc returns a non-nil error, the walk stops and returns it.
func Walk(root *Node, walkFunc WalkFunc) error {
	return WalkWithContext(root, walkFunc, nil)
}

// WalkWithContext performs a traversal with enter and leave callbacks.
// Enter is called before visiting children, leave is called after.
// Either callback may be nil.
func WalkWithContext(root *Node, enter, leave WalkFunc) error {
	if root == nil {
		return nil
	}

	if enter != nil {
		if err := enter(root); err != nil {
			return err
		}
	}

	if err := EachChild(root, func(_ PropertyID, child *Node) error {
		return WalkWithContext(child, enter, leave)
	}); err != nil {
		return err
	}

	if leave != nil {
		if err := leave(root); err != nil {
			return err
		}
	}

	return nil
}

// EachChild calls fn for every direct child of n in declaration order.
func EachChild(n *Node, fn func(prop PropertyID, child *Node) error) error {
	for i := range n.slots {
		id := PropertyID(i)
		switch n.PropType(id) {
		case PropNode:
			if c := n.slots[i].node; c != nil {
				if err := fn(id, c); err != nil {
					return err
				}
			}
		case PropList:
			for _, c := range n.slots[i].list {
				if err := fn(id, c); err != nil {
					return err
				}
			}
		case PropAttr:
		}
	}
	return nil
}

// Children returns the direct children of n in declaration order.
func Children(n *Node) []*Node {
	var out []*Node
	//nolint:errcheck // the callback never fails
	EachChild(n, func(_ PropertyID, c *Node) error {
		out = append(out, c)
		return nil
	})
	return out
}

// FindAll returns all nodes matching the predicate.
func FindAll(root *Node, predicate func(n *Node) bool) []*Node {
	var result []*Node

	//nolint:errcheck // Walk only returns nil errors in this usage
	Walk(root, func(node *Node) error {
		if predicate(node) {
			result = append(result, node)
		}
		return nil
	})

	return result
}

// FindFirst returns the first node matching the predicate, or nil if none found.
func FindFirst(root *Node, predicate func(n *Node) bool) *Node {
	var found *Node

	//nolint:errcheck // errStopWalk is expected and intentionally ignored
	Walk(root, func(node *Node) error {
		if predicate(node) {
			found = node
			return errStopWalk
		}
		return nil
	})

	return found
}

// FindByKind returns all nodes of the specified kind.
func FindByKind(root *Node, kind Kind) []*Node {
	return FindAll(root, func(n *Node) bool {
		return n.kind == kind
	})
}

// errStopWalk is a sentinel error used to stop walking early.
//
//nolint:gochecknoglobals // sentinel
var errStopWalk = &stopWalkError{}

type stopWalkError struct{}

func (e *stopWalkError) Error() string {
	return "stop walk"
}
