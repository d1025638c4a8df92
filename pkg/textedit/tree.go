// Package textedit provides the Text Edit Tree: nested, non-overlapping
// replacements over an original buffer, applied in a single pass, with
// group tags that let callers find where a piece of text ended up.
package textedit

import (
	"fmt"
	"strings"
)

// Span is an (offset, length) pair.
type Span struct {
	Offset int
	Length int
}

// End returns the offset just past the span.
func (s Span) End() int { return s.Offset + s.Length }

func (s Span) String() string {
	return fmt.Sprintf("%d+%d", s.Offset, s.Length)
}

// Mark tags a sub-range of an edit's replacement text with a group name.
// Offset is relative to the start of the edit's Text.
type Mark struct {
	Group  string
	Offset int
	Length int
}

// Edit is a node of the Text Edit Tree. A leaf replaces [Offset, Offset+Length)
// of the original buffer with Text. A container (see Multi) replaces nothing
// itself; it groups its children and reports its own final range.
type Edit struct {
	Offset int
	Length int
	Text   string

	// Group names the edit for range lookups after layout.
	Group string

	// Marks tag sub-ranges of Text.
	Marks []Mark

	children []*Edit
	multi    bool
}

// Replace creates a leaf replacing length bytes at offset with text.
func Replace(offset, length int, text string) *Edit {
	return &Edit{Offset: offset, Length: length, Text: text}
}

// Insert creates a leaf inserting text at offset.
func Insert(offset int, text string) *Edit {
	return &Edit{Offset: offset, Text: text}
}

// Delete creates a leaf removing length bytes at offset.
func Delete(offset, length int) *Edit {
	return &Edit{Offset: offset, Length: length}
}

// Multi creates a container covering [offset, offset+length).
func Multi(offset, length int) *Edit {
	return &Edit{Offset: offset, Length: length, multi: true}
}

// WithGroup sets the edit's group and returns the edit.
func (e *Edit) WithGroup(group string) *Edit {
	e.Group = group
	return e
}

// WithMarks appends marks and returns the edit.
func (e *Edit) WithMarks(marks ...Mark) *Edit {
	e.Marks = append(e.Marks, marks...)
	return e
}

// End returns the offset just past the edit's original range.
func (e *Edit) End() int { return e.Offset + e.Length }

// Span returns the edit's original range.
func (e *Edit) Span() Span { return Span{Offset: e.Offset, Length: e.Length} }

// IsContainer reports whether the edit only groups children.
func (e *Edit) IsContainer() bool { return e.multi }

// Children returns the edit's children ordered by offset.
func (e *Edit) Children() []*Edit { return e.children }

func (e *Edit) String() string {
	if e.multi {
		return fmt.Sprintf("multi[%d:%d)", e.Offset, e.End())
	}
	return fmt.Sprintf("replace[%d:%d)%q", e.Offset, e.End(), e.Text)
}

// covers reports whether child belongs inside e rather than beside it.
// A zero-length edit at either boundary of e stays outside, so text
// inserted next to a container is not counted as part of it.
func (e *Edit) covers(child *Edit) bool {
	if child.Offset < e.Offset || child.End() > e.End() {
		return false
	}
	if child.Length == 0 && e.Length > 0 && (child.Offset == e.Offset || child.Offset == e.End()) {
		return false
	}
	return true
}

func overlaps(a, b *Edit) bool {
	return a.Offset < b.End() && b.Offset < a.End()
}

// before reports whether a sorts before b among siblings: by offset, with
// zero-length edits ahead of non-empty ones at the same offset.
func before(a, b *Edit) bool {
	if a.Offset != b.Offset {
		return a.Offset < b.Offset
	}
	return a.Length == 0 && b.Length > 0
}

// Add inserts child below e. The child must lie within e, which must be a
// container. The child descends into an existing container sibling that
// covers it; a container child adopts existing siblings it covers. Overlap
// with any other sibling is an *OverlapError.
func (e *Edit) Add(child *Edit) error {
	if child.Offset < 0 || child.Length < 0 {
		return &RangeError{Parent: e.Span(), Child: child.Span(), Reason: "negative range"}
	}
	if !e.multi {
		return &RangeError{Parent: e.Span(), Child: child.Span(), Reason: "parent is not a container"}
	}
	if child.Offset < e.Offset || child.End() > e.End() {
		return &RangeError{Parent: e.Span(), Child: child.Span(), Reason: "child outside parent"}
	}

	for _, sib := range e.children {
		if sib.multi && sib.covers(child) && !(child.multi && child.Span() == sib.Span()) {
			return sib.Add(child)
		}
	}

	kept := e.children[:0:0]
	for _, sib := range e.children {
		switch {
		case child.multi && child.covers(sib):
			if err := child.Add(sib); err != nil {
				return err
			}
		case overlaps(child, sib):
			return &OverlapError{First: sib.Span(), Second: child.Span()}
		default:
			kept = append(kept, sib)
		}
	}

	pos := len(kept)
	for i, sib := range kept {
		if before(child, sib) {
			pos = i
			break
		}
	}
	kept = append(kept, nil)
	copy(kept[pos+1:], kept[pos:])
	kept[pos] = child
	e.children = kept
	return nil
}

// Tree is a Text Edit Tree over a buffer of fixed length.
type Tree struct {
	root       *Edit
	contentLen int
}

// NewTree creates an empty tree for a buffer of contentLen bytes.
func NewTree(contentLen int) *Tree {
	return &Tree{root: Multi(0, contentLen), contentLen: contentLen}
}

// Root returns the container spanning the whole buffer.
func (t *Tree) Root() *Edit { return t.root }

// ContentLen returns the length of the buffer the tree applies to.
func (t *Tree) ContentLen() int { return t.contentLen }

// Add inserts an edit into the tree.
func (t *Tree) Add(e *Edit) error {
	return t.root.Add(e)
}

// IsEmpty reports whether applying the tree would change nothing.
func (t *Tree) IsEmpty() bool {
	return len(t.Leaves()) == 0
}

// Walk visits every edit in document order, containers before their children.
func (t *Tree) Walk(fn func(e *Edit, depth int) error) error {
	return walk(t.root, 0, fn)
}

func walk(e *Edit, depth int, fn func(*Edit, int) error) error {
	if err := fn(e, depth); err != nil {
		return err
	}
	for _, c := range e.children {
		if err := walk(c, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Leaves flattens the tree into ordered flat edits, skipping edits that
// change nothing.
func (t *Tree) Leaves() []TextEdit {
	var out []TextEdit
	//nolint:errcheck // the callback never fails
	t.Walk(func(e *Edit, _ int) error {
		if !e.multi && (e.Length > 0 || e.Text != "") {
			out = append(out, TextEdit{StartOffset: e.Offset, EndOffset: e.End(), NewText: e.Text})
		}
		return nil
	})
	return out
}

// Apply applies the tree to content, which must be the buffer the tree was built for.
func (t *Tree) Apply(content []byte) ([]byte, error) {
	if len(content) != t.contentLen {
		return nil, &RangeError{
			Parent: Span{Length: len(content)},
			Child:  t.root.Span(),
			Reason: "edit tree built for a different buffer",
		}
	}
	edits, err := PrepareEdits(t.Leaves(), len(content))
	if err != nil {
		return nil, err
	}
	return ApplyEdits(content, edits), nil
}

// Layout computes the final range of every group and mark after the tree is
// applied. Offsets are shifted by the running delta of all edits that lie
// before them. If a group name occurs more than once, the first occurrence
// in document order wins.
func (t *Tree) Layout() map[string]Span {
	out := make(map[string]Span)
	delta := 0

	record := func(group string, span Span) {
		if group == "" {
			return
		}
		if _, ok := out[group]; !ok {
			out[group] = span
		}
	}

	var visit func(e *Edit)
	visit = func(e *Edit) {
		start := e.Offset + delta
		if e.multi {
			for _, c := range e.children {
				visit(c)
			}
			end := e.End() + delta
			record(e.Group, Span{Offset: start, Length: end - start})
			return
		}
		record(e.Group, Span{Offset: start, Length: len(e.Text)})
		for _, m := range e.Marks {
			record(m.Group, Span{Offset: start + m.Offset, Length: m.Length})
		}
		delta += len(e.Text) - e.Length
	}
	visit(t.root)

	return out
}

// Dump renders the tree structure for debugging.
func (t *Tree) Dump() string {
	var b strings.Builder
	//nolint:errcheck // the callback never fails
	t.Walk(func(e *Edit, depth int) error {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(e.String())
		if e.Group != "" {
			b.WriteString(" #" + e.Group)
		}
		b.WriteByte('\n')
		return nil
	})
	return b.String()
}
