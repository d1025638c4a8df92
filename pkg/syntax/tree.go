// Package syntax provides the immutable syntax tree consumed by the rewrite
// engine. A Tree holds the original source buffer, its line index, the
// comment trivia reported by the parser, and the root Node.
//
// Node kinds and their properties are described by a Grammar table, so
// generic code can inspect any language binding through (Kind, PropertyID)
// pairs without knowing concrete node types.
package syntax

import (
	"fmt"
	"sort"
)

// Tree is a parsed source file.
type Tree struct {
	// Path is the file path (may be empty for in-memory content).
	Path string

	// Content is the full source buffer. It must not be modified.
	Content []byte

	// Lines contains metadata for each line in Content.
	Lines []LineInfo

	// Comments lists comment trivia ranges in source order.
	Comments []Range

	// Root is the root node, set by Seal.
	Root *Node

	// Grammar describes the node kinds of this tree.
	Grammar *Grammar

	sealed bool
}

// NewTree creates an unsealed tree over content. Parsers create nodes with
// NewNode, attach them with the Set* methods and finish with Seal.
func NewTree(path string, content []byte, g *Grammar) *Tree {
	return &Tree{
		Path:    path,
		Content: content,
		Lines:   BuildLines(content),
		Grammar: g,
	}
}

// NewNode creates a node owned by the tree.
func (t *Tree) NewNode(kind Kind, rng Range) *Node {
	if t.sealed {
		panic("syntax: NewNode on a sealed tree")
	}
	return &Node{
		kind:    kind,
		grammar: t.Grammar,
		tree:    t,
		rng:     rng,
		slots:   make([]slot, len(t.Grammar.Spec(kind).Props)),
	}
}

// AddComment records a comment range. Comments may be added in any order.
func (t *Tree) AddComment(r Range) {
	if t.sealed {
		panic("syntax: AddComment on a sealed tree")
	}
	t.Comments = append(t.Comments, r)
}

// Sealed reports whether the tree has been frozen.
func (t *Tree) Sealed() bool { return t.sealed }

// Seal links parents, validates ranges and freezes the tree.
// After sealing, any attempt to mutate a node of the tree panics.
func (t *Tree) Seal(root *Node) error {
	if t.sealed {
		return fmt.Errorf("syntax: tree %q already sealed", t.Path)
	}
	if root == nil || root.tree != t {
		return fmt.Errorf("syntax: root does not belong to tree %q", t.Path)
	}

	seen := make(map[*Node]bool)
	if err := t.link(root, nil, 0, seen); err != nil {
		return err
	}

	sort.Slice(t.Comments, func(i, j int) bool {
		return t.Comments[i].Start < t.Comments[j].Start
	})
	for _, c := range t.Comments {
		if !c.IsValid() || c.End > len(t.Content) {
			return fmt.Errorf("syntax: comment %s outside content", c)
		}
	}

	t.Root = root
	t.sealed = true
	return nil
}

func (t *Tree) link(n, parent *Node, prop PropertyID, seen map[*Node]bool) error {
	if n.tree != t {
		return fmt.Errorf("syntax: %s is not owned by tree %q", n, t.Path)
	}
	if seen[n] {
		return fmt.Errorf("syntax: %s appears twice in tree %q", n, t.Path)
	}
	seen[n] = true

	if !n.rng.IsValid() || n.rng.End > len(t.Content) {
		return fmt.Errorf("syntax: %s has range outside content", n)
	}
	if parent != nil && !parent.rng.Covers(n.rng) {
		return fmt.Errorf("syntax: %s is not contained in parent %s", n, parent)
	}
	n.parent = parent
	n.prop = prop

	for i := range n.slots {
		id := PropertyID(i)
		s := n.slots[i]
		if s.set && !n.rng.Covers(s.span) {
			return fmt.Errorf("syntax: %s.%s span %s outside node", n, n.PropName(id), s.span)
		}
		switch n.PropType(id) {
		case PropNode:
			if s.node != nil {
				if err := t.link(s.node, n, id, seen); err != nil {
					return err
				}
			}
		case PropList:
			prev := -1
			for _, c := range s.list {
				if err := t.link(c, n, id, seen); err != nil {
					return err
				}
				if c.rng.Start < prev {
					return fmt.Errorf("syntax: %s.%s elements out of order", n, n.PropName(id))
				}
				if s.set && !s.span.Covers(c.rng) {
					return fmt.Errorf("syntax: %s outside list span of %s.%s", c, n, n.PropName(id))
				}
				prev = c.rng.End
			}
		case PropAttr:
		}
	}
	return nil
}

// Slice returns the source bytes covered by r.
func (t *Tree) Slice(r Range) []byte {
	if !r.IsValid() {
		return nil
	}
	return t.Content[r.Start:r.End]
}

// CommentAt returns the comment that contains offset.
func (t *Tree) CommentAt(offset int) (Range, bool) {
	i := sort.Search(len(t.Comments), func(i int) bool {
		return t.Comments[i].End > offset
	})
	if i < len(t.Comments) && t.Comments[i].Contains(offset) {
		return t.Comments[i], true
	}
	return NoRange, false
}

// CommentsIn returns the comments lying entirely within r.
func (t *Tree) CommentsIn(r Range) []Range {
	i := sort.Search(len(t.Comments), func(i int) bool {
		return t.Comments[i].Start >= r.Start
	})
	var out []Range
	for ; i < len(t.Comments) && t.Comments[i].End <= r.End; i++ {
		out = append(out, t.Comments[i])
	}
	return out
}
