package rewrite

import (
	"fmt"
	"maps"

	"github.com/yaklabco/astrewrite/pkg/syntax"
)

type opKind uint8

const (
	opNone opKind = iota
	opRemoved
	opReplaced
)

// nodeEntry records what happens to one original node.
type nodeEntry struct {
	op          opKind
	replacement *syntax.Node
	patch       syntax.Patch

	// move is the move placeholder created from the node, if any. A moved
	// node disappears from its location unless it was replaced there.
	move *placeholder
}

// slotKey identifies a property of an original node.
type slotKey struct {
	parent *syntax.Node
	prop   syntax.PropertyID
}

// insertion is a new element of a list.
type insertion struct {
	node    *syntax.Node
	anchor  Anchor
	dropped bool
}

type listEntry struct {
	inserts []*insertion
	byNode  map[*syntax.Node]*insertion
}

// usage records where a new node has been placed.
type usage struct {
	list     *listEntry
	ins      *insertion
	slot     *slotKey
	replaces *syntax.Node
}

// ledger is the side table of requested edits, keyed by node identity.
type ledger struct {
	nodes map[*syntax.Node]*nodeEntry
	slots map[slotKey]*syntax.Node
	lists map[slotKey]*listEntry
	used  map[*syntax.Node]*usage

	// hot holds every node with an entry or a tracked node at or below it.
	hot map[*syntax.Node]bool

	// dirty holds every node whose text changes below its own edges:
	// strict ancestors of edited nodes and owners of edited slots.
	dirty map[*syntax.Node]bool
}

func newLedger() *ledger {
	return &ledger{
		nodes: make(map[*syntax.Node]*nodeEntry),
		slots: make(map[slotKey]*syntax.Node),
		lists: make(map[slotKey]*listEntry),
		used:  make(map[*syntax.Node]*usage),
		hot:   make(map[*syntax.Node]bool),
		dirty: make(map[*syntax.Node]bool),
	}
}

func markUp(n *syntax.Node, set map[*syntax.Node]bool) {
	for p := n; p != nil && !set[p]; p = p.Parent() {
		set[p] = true
	}
}

func (l *ledger) entry(n *syntax.Node) *nodeEntry {
	e := l.nodes[n]
	if e == nil {
		e = &nodeEntry{}
		l.nodes[n] = e
	}
	return e
}

func (l *ledger) touchNode(n *syntax.Node) {
	markUp(n, l.hot)
	markUp(n.Parent(), l.dirty)
}

func (l *ledger) touchSlot(parent *syntax.Node) {
	markUp(parent, l.hot)
	markUp(parent, l.dirty)
}

// effective returns what happens to n at its original location.
func (l *ledger) effective(n *syntax.Node) (opKind, *syntax.Node) {
	e := l.nodes[n]
	switch {
	case e == nil:
		return opNone, nil
	case e.op == opReplaced:
		return opReplaced, e.replacement
	case e.op == opRemoved || e.move != nil:
		return opRemoved, nil
	default:
		return opNone, nil
	}
}

// patch returns the pending attribute changes of n.
func (l *ledger) patch(n *syntax.Node) syntax.Patch {
	if e := l.nodes[n]; e != nil {
		return e.patch
	}
	return nil
}

func (l *ledger) markRemoved(n *syntax.Node) error {
	e := l.entry(n)
	switch {
	case e.op == opRemoved:
		return nil
	case e.op == opReplaced:
		return fmt.Errorf("remove %s: already replaced: %w", n, ErrConflict)
	case e.patch != nil:
		return fmt.Errorf("remove %s: already modified: %w", n, ErrConflict)
	}
	e.op = opRemoved
	l.touchNode(n)
	return nil
}

func (l *ledger) markReplaced(n, replacement *syntax.Node) error {
	e := l.entry(n)
	switch {
	case e.op == opRemoved:
		return fmt.Errorf("replace %s: already removed: %w", n, ErrConflict)
	case e.op == opReplaced:
		return fmt.Errorf("replace %s: already replaced: %w", n, ErrConflict)
	case e.patch != nil:
		return fmt.Errorf("replace %s: already modified: %w", n, ErrConflict)
	}
	if err := l.claim(replacement, &usage{replaces: n}); err != nil {
		return err
	}
	e.op = opReplaced
	e.replacement = replacement
	l.touchNode(n)
	return nil
}

func (l *ledger) markModified(n *syntax.Node, patch syntax.Patch) error {
	e := l.entry(n)
	if e.op != opNone {
		return fmt.Errorf("modify %s: already removed or replaced: %w", n, ErrConflict)
	}
	if e.patch == nil {
		e.patch = make(syntax.Patch, len(patch))
	}
	maps.Copy(e.patch, patch)
	l.touchNode(n)
	return nil
}

func (l *ledger) markMoved(n *syntax.Node, p *placeholder) error {
	e := l.entry(n)
	if e.move != nil {
		return fmt.Errorf("move %s: %w", n, ErrAlreadyMoved)
	}
	e.move = p
	l.touchNode(n)
	return nil
}

// claim records that a new node is placed somewhere.
func (l *ledger) claim(n *syntax.Node, u *usage) error {
	if n.IsOriginal() {
		return fmt.Errorf("insert %s: %w", n, ErrNotDetached)
	}
	if _, ok := l.used[n]; ok {
		return fmt.Errorf("insert %s: %w", n, ErrAlreadyInserted)
	}
	l.used[n] = u
	return nil
}

func (l *ledger) setSlot(key slotKey, child *syntax.Node) error {
	if prev, ok := l.slots[key]; ok {
		return fmt.Errorf("set %s.%s: already set to %s: %w",
			key.parent, key.parent.PropName(key.prop), prev, ErrConflict)
	}
	if err := l.claim(child, &usage{slot: &key}); err != nil {
		return err
	}
	l.slots[key] = child
	l.touchSlot(key.parent)
	return nil
}

func (l *ledger) list(key slotKey) *listEntry {
	le := l.lists[key]
	if le == nil {
		le = &listEntry{byNode: make(map[*syntax.Node]*insertion)}
		l.lists[key] = le
	}
	return le
}

func (l *ledger) insert(key slotKey, n *syntax.Node, anchor Anchor) error {
	le := l.list(key)
	if ref := anchor.Ref; ref != nil {
		isElement := ref.IsOriginal() && ref.Parent() == key.parent && ref.ParentProperty() == key.prop
		if ins, ok := le.byNode[ref]; !isElement && (!ok || ins.dropped) {
			return fmt.Errorf("insert %s %s %s: %w", n, anchor.Kind, ref, ErrUnknownAnchor)
		}
	}

	ins := &insertion{node: n, anchor: anchor}
	if err := l.claim(n, &usage{list: le, ins: ins}); err != nil {
		return err
	}
	le.inserts = append(le.inserts, ins)
	le.byNode[n] = ins
	l.touchSlot(key.parent)
	return nil
}

// unclaim drops a pending placement of a new node.
func (l *ledger) unclaim(n *syntax.Node) error {
	u, ok := l.used[n]
	if !ok {
		return fmt.Errorf("remove %s: not inserted: %w", n, ErrForeignNode)
	}
	delete(l.used, n)
	switch {
	case u.ins != nil:
		u.ins.dropped = true
	case u.slot != nil:
		delete(l.slots, *u.slot)
	case u.replaces != nil:
		e := l.nodes[u.replaces]
		e.op = opNone
		e.replacement = nil
	}
	return nil
}

// swap substitutes replacement for a pending new node in its placement.
func (l *ledger) swap(old, replacement *syntax.Node) error {
	u, ok := l.used[old]
	if !ok {
		return fmt.Errorf("replace %s: not inserted: %w", old, ErrForeignNode)
	}
	if err := l.claim(replacement, u); err != nil {
		return err
	}
	delete(l.used, old)
	switch {
	case u.ins != nil:
		u.ins.node = replacement
		u.list.byNode[replacement] = u.ins
		delete(u.list.byNode, old)
		for _, other := range u.list.inserts {
			if other.anchor.Ref == old {
				other.anchor.Ref = replacement
			}
		}
	case u.slot != nil:
		l.slots[*u.slot] = replacement
	case u.replaces != nil:
		l.nodes[u.replaces].replacement = replacement
	}
	return nil
}
