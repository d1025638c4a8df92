package textedit

import "fmt"

// OverlapError reports two sibling edits whose ranges intersect.
type OverlapError struct {
	First  Span
	Second Span
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d) and [%d:%d)",
		e.First.Offset, e.First.End(), e.Second.Offset, e.Second.End())
}

// RangeError reports an edit that does not fit where it was added.
type RangeError struct {
	Parent Span
	Child  Span
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("edit [%d:%d) not allowed in [%d:%d): %s",
		e.Child.Offset, e.Child.End(), e.Parent.Offset, e.Parent.End(), e.Reason)
}
