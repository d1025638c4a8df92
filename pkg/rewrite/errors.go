package rewrite

import "errors"

// Usage errors. They are returned wrapped with the offending node; test
// for them with errors.Is.
var (
	// ErrConflict reports a second, incompatible operation on the same node or slot.
	ErrConflict = errors.New("conflicting edit")

	// ErrAlreadyMoved reports a second move placeholder for the same node.
	ErrAlreadyMoved = errors.New("node already moved")

	// ErrUnknownAnchor reports an anchor that is not part of the list's planned elements.
	ErrUnknownAnchor = errors.New("anchor not in list")

	// ErrAnchorCycle reports insertions whose anchors refer to each other.
	ErrAnchorCycle = errors.New("list anchors form a cycle")

	// ErrNotDetached reports an original node used where new content is expected.
	ErrNotDetached = errors.New("node is part of the original tree")

	// ErrAlreadyInserted reports a new node inserted in more than one place.
	ErrAlreadyInserted = errors.New("node already inserted")

	// ErrWrongProperty reports a property whose type does not fit the operation.
	ErrWrongProperty = errors.New("wrong property type")

	// ErrPlaceholderCycle reports a placeholder whose content contains itself.
	ErrPlaceholderCycle = errors.New("placeholder contains itself")

	// ErrForeignNode reports a node that does not belong to the session's tree.
	ErrForeignNode = errors.New("node does not belong to the tree")
)
