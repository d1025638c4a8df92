package rewrite

import (
	"fmt"

	"github.com/yaklabco/astrewrite/pkg/syntax"
)

// AnchorKind says where an inserted list element goes.
type AnchorKind uint8

const (
	// AnchorFirst places the element at the start of the list.
	AnchorFirst AnchorKind = iota

	// AnchorLast places the element at the end of the list.
	AnchorLast

	// AnchorBefore places the element immediately before Ref.
	AnchorBefore

	// AnchorAfter places the element immediately after Ref.
	AnchorAfter
)

func (k AnchorKind) String() string {
	switch k {
	case AnchorFirst:
		return "first"
	case AnchorLast:
		return "last"
	case AnchorBefore:
		return "before"
	case AnchorAfter:
		return "after"
	default:
		return "unknown"
	}
}

// Anchor is the position of an inserted list element.
type Anchor struct {
	Kind AnchorKind
	Ref  *syntax.Node
}

// Disposition is the fate of an original list element.
type Disposition uint8

const (
	// Keep leaves the element in place.
	Keep Disposition = iota

	// Removed drops the element.
	Removed

	// Replaced keeps the element's slot but renders other content in it.
	Replaced
)

func (d Disposition) String() string {
	switch d {
	case Keep:
		return "keep"
	case Removed:
		return "removed"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// ListElement is an original list element and its disposition.
type ListElement struct {
	Node        *syntax.Node
	Disposition Disposition
}

// ListInsert is a new list element. Dropped insertions take no place in the
// result but still serve as anchors for other insertions.
type ListInsert struct {
	Node    *syntax.Node
	Anchor  Anchor
	Dropped bool
}

// PlanItem is one element of a planned list.
type PlanItem struct {
	Node *syntax.Node

	// Index is the element's position in the original list, or -1 for new elements.
	Index int

	Disposition Disposition
}

// IsOriginal reports whether the item is an original element.
func (it PlanItem) IsOriginal() bool { return it.Index >= 0 }

// PlanList merges the kept original elements with anchored insertions.
//
// Originals keep their relative order and removed ones are dropped.
// Insertions are spliced at their anchors, which may themselves be
// insertions; several insertions sharing an anchor keep the order in which
// they appear in inserts. The cost is linear in the number of elements and
// insertions.
func PlanList(elements []ListElement, inserts []ListInsert) ([]PlanItem, error) {
	type slot struct {
		index   int
		disp    Disposition
		dropped bool
		isNew   bool
	}

	info := make(map[*syntax.Node]slot, len(elements)+len(inserts))
	for i, el := range elements {
		info[el.Node] = slot{index: i, disp: el.Disposition}
	}
	for _, ins := range inserts {
		if _, dup := info[ins.Node]; dup {
			return nil, fmt.Errorf("plan: %s listed twice: %w", ins.Node, ErrAlreadyInserted)
		}
		info[ins.Node] = slot{index: -1, dropped: ins.Dropped, isNew: true}
	}

	var first, last []*syntax.Node
	before := make(map[*syntax.Node][]*syntax.Node)
	after := make(map[*syntax.Node][]*syntax.Node)
	for _, ins := range inserts {
		switch ins.Anchor.Kind {
		case AnchorFirst:
			first = append(first, ins.Node)
		case AnchorLast:
			last = append(last, ins.Node)
		case AnchorBefore, AnchorAfter:
			ref := ins.Anchor.Ref
			if _, ok := info[ref]; !ok || ref == nil {
				return nil, fmt.Errorf("plan: %s %s %s: %w", ins.Node, ins.Anchor.Kind, ref, ErrUnknownAnchor)
			}
			if ins.Anchor.Kind == AnchorBefore {
				before[ref] = append(before[ref], ins.Node)
			} else {
				after[ref] = append(after[ref], ins.Node)
			}
		}
	}

	out := make([]PlanItem, 0, len(elements)+len(inserts))
	seen := make(map[*syntax.Node]bool, len(info))

	var emit func(n *syntax.Node)
	emit = func(n *syntax.Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, b := range before[n] {
			emit(b)
		}
		s := info[n]
		switch {
		case s.isNew && !s.dropped:
			out = append(out, PlanItem{Node: n, Index: -1})
		case !s.isNew && s.disp != Removed:
			out = append(out, PlanItem{Node: n, Index: s.index, Disposition: s.disp})
		}
		for _, a := range after[n] {
			emit(a)
		}
	}

	for _, n := range first {
		emit(n)
	}
	for _, el := range elements {
		emit(el.Node)
	}
	for _, n := range last {
		emit(n)
	}

	if len(seen) != len(info) {
		for _, ins := range inserts {
			if !seen[ins.Node] {
				return nil, fmt.Errorf("plan: %s: %w", ins.Node, ErrAnchorCycle)
			}
		}
	}

	return out, nil
}
