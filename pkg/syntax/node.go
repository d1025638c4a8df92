package syntax

import "fmt"

// Range is a half-open byte range [Start, End) in a tree's source buffer.
type Range struct {
	Start int
	End   int
}

// NoRange marks nodes and slots that have no position in the original source.
//
//nolint:gochecknoglobals // read-only sentinel
var NoRange = Range{Start: -1, End: -1}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	if !r.IsValid() {
		return 0
	}
	return r.End - r.Start
}

// IsValid reports whether the range refers to source positions.
func (r Range) IsValid() bool {
	return r.Start >= 0 && r.End >= r.Start
}

// IsEmpty reports whether the range covers no bytes.
func (r Range) IsEmpty() bool {
	return r.Len() == 0
}

// Contains reports whether offset lies inside the range.
func (r Range) Contains(offset int) bool {
	return r.IsValid() && offset >= r.Start && offset < r.End
}

// Covers reports whether other lies entirely within the range.
func (r Range) Covers(other Range) bool {
	return r.IsValid() && other.IsValid() && other.Start >= r.Start && other.End <= r.End
}

func (r Range) String() string {
	if !r.IsValid() {
		return "[-]"
	}
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// slot stores the value of one property.
type slot struct {
	node *Node
	list []*Node
	attr any
	span Range
	set  bool
}

// Node is an element of a syntax tree.
//
// Nodes that belong to a Tree are immutable once the tree is sealed. Nodes
// created with New are detached: they have NoRange and can be assembled
// freely by clients to describe new source text.
type Node struct {
	kind    Kind
	grammar *Grammar
	tree    *Tree
	rng     Range
	parent  *Node
	prop    PropertyID
	slots   []slot

	// source is the node a placeholder stands in for.
	source *Node
}

// New creates a detached node of the given kind.
func New(g *Grammar, kind Kind) *Node {
	return &Node{
		kind:    kind,
		grammar: g,
		rng:     NoRange,
		slots:   make([]slot, len(g.Spec(kind).Props)),
	}
}

// NewPlaceholder creates a detached node standing in for source.
// The rewrite engine gives placeholders their meaning.
func NewPlaceholder(source *Node) *Node {
	return &Node{
		kind:    KindPlaceholder,
		grammar: source.grammar,
		rng:     NoRange,
		source:  source,
	}
}

// Kind returns the node's kind.
func (n *Node) Kind() Kind { return n.kind }

// KindName returns the grammar name of the node's kind.
func (n *Node) KindName() string { return n.grammar.KindName(n.kind) }

// Grammar returns the grammar the node was built against.
func (n *Node) Grammar() *Grammar { return n.grammar }

// Tree returns the tree that owns the node, or nil for detached nodes.
func (n *Node) Tree() *Tree { return n.tree }

// Range returns the node's source range. Detached nodes return NoRange.
func (n *Node) Range() Range { return n.rng }

// Parent returns the node's parent, or nil for roots and unattached nodes.
func (n *Node) Parent() *Node { return n.parent }

// ParentProperty returns the property of the parent that holds this node.
func (n *Node) ParentProperty() PropertyID { return n.prop }

// IsOriginal reports whether the node belongs to a parsed tree.
func (n *Node) IsOriginal() bool { return n.tree != nil }

// IsPlaceholder reports whether the node stands in for another node.
func (n *Node) IsPlaceholder() bool { return n.kind == KindPlaceholder }

// Source returns the node a placeholder stands in for.
func (n *Node) Source() *Node { return n.source }

// NumProps returns the number of properties declared for the node's kind.
func (n *Node) NumProps() int { return len(n.slots) }

// PropType returns the declared type of property id.
func (n *Node) PropType(id PropertyID) PropType {
	spec, ok := n.grammar.Prop(n.kind, id)
	if !ok {
		panic(fmt.Sprintf("syntax: %s has no property %d", n.KindName(), id))
	}
	return spec.Type
}

// PropName returns the declared name of property id.
func (n *Node) PropName(id PropertyID) string {
	spec, _ := n.grammar.Prop(n.kind, id)
	return spec.Name
}

// Child returns the node held by a single-valued property.
func (n *Node) Child(id PropertyID) *Node {
	if int(id) >= len(n.slots) {
		return nil
	}
	return n.slots[id].node
}

// List returns the elements of a list property. The returned slice must not be modified.
func (n *Node) List(id PropertyID) []*Node {
	if int(id) >= len(n.slots) {
		return nil
	}
	return n.slots[id].list
}

// Attr returns the value of an attribute property.
func (n *Node) Attr(id PropertyID) any {
	if int(id) >= len(n.slots) {
		return nil
	}
	return n.slots[id].attr
}

// Span returns the source range associated with a property: the token
// range of an attribute, the container range of a list (between its
// delimiters), or the insertion point of an empty single-valued slot.
func (n *Node) Span(id PropertyID) Range {
	if int(id) >= len(n.slots) || !n.slots[id].set {
		return NoRange
	}
	return n.slots[id].span
}

// Text returns the original source text covered by the node.
func (n *Node) Text() string {
	if n.tree == nil || !n.rng.IsValid() {
		return ""
	}
	return string(n.tree.Content[n.rng.Start:n.rng.End])
}

// SetNode stores child in a single-valued property.
func (n *Node) SetNode(id PropertyID, child *Node) *Node {
	n.mustMutate(id, PropNode)
	n.slots[id].node = child
	n.adopt(child, id)
	return n
}

// SetList stores the elements of a list property.
func (n *Node) SetList(id PropertyID, children ...*Node) *Node {
	n.mustMutate(id, PropList)
	n.slots[id].list = children
	for _, c := range children {
		n.adopt(c, id)
	}
	return n
}

// SetAttr stores the value of an attribute property.
func (n *Node) SetAttr(id PropertyID, value any) *Node {
	n.mustMutate(id, PropAttr)
	n.slots[id].attr = value
	return n
}

// SetSpan records the source range associated with a property.
func (n *Node) SetSpan(id PropertyID, span Range) *Node {
	if int(id) >= len(n.slots) {
		panic(fmt.Sprintf("syntax: %s has no property %d", n.KindName(), id))
	}
	n.mustMutate(id, n.PropType(id))
	n.slots[id].span = span
	n.slots[id].set = true
	return n
}

func (n *Node) mustMutate(id PropertyID, want PropType) {
	if n.tree != nil && n.tree.sealed {
		panic("syntax: mutation of a sealed tree")
	}
	if n.kind == KindPlaceholder {
		panic("syntax: placeholders have no properties")
	}
	if got := n.PropType(id); got != want {
		panic(fmt.Sprintf("syntax: %s.%s is a %s property, not %s", n.KindName(), n.PropName(id), got, want))
	}
}

// adopt links child to n unless the child already belongs to another owner.
// Original nodes referenced from detached nodes keep their original parent.
func (n *Node) adopt(child *Node, id PropertyID) {
	if child == nil || child.tree != n.tree {
		return
	}
	child.parent = n
	child.prop = id
}

// Ancestors returns the chain of parents from the immediate parent to the root.
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for p := n.parent; p != nil; p = p.parent {
		out = append(out, p)
	}
	return out
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// IndexInParent returns the position of n in its parent's list property, or -1.
func (n *Node) IndexInParent() int {
	if n.parent == nil || n.parent.PropType(n.prop) != PropList {
		return -1
	}
	for i, c := range n.parent.List(n.prop) {
		if c == n {
			return i
		}
	}
	return -1
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.kind == KindPlaceholder {
		return fmt.Sprintf("placeholder(%s)", n.source)
	}
	return n.KindName() + n.rng.String()
}

// Detach returns a detached deep copy of n. Attribute values are shared,
// placeholders are returned as they are.
func Detach(n *Node) *Node {
	if n == nil || n.kind == KindPlaceholder {
		return n
	}
	c := New(n.grammar, n.kind)
	for i, s := range n.slots {
		switch n.PropType(PropertyID(i)) {
		case PropNode:
			c.slots[i].node = Detach(s.node)
		case PropList:
			list := make([]*Node, len(s.list))
			for j, el := range s.list {
				list[j] = Detach(el)
			}
			c.slots[i].list = list
		case PropAttr:
			c.slots[i].attr = s.attr
		}
	}
	return c
}
