package rewrite

import (
	"fmt"
	"maps"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/astrewrite/internal/logging"
	"github.com/yaklabco/astrewrite/pkg/format"
	"github.com/yaklabco/astrewrite/pkg/indent"
	"github.com/yaklabco/astrewrite/pkg/syntax"
	"github.com/yaklabco/astrewrite/pkg/textedit"
)

// Rewriter is an edit session over one immutable tree. It is not safe for
// concurrent use; independent sessions on different trees may run in parallel.
type Rewriter struct {
	tree *syntax.Tree
	f    format.Formatter
	opts format.Options
	log  *log.Logger

	led          *ledger
	placeholders map[*syntax.Node]*placeholder
	names        map[*syntax.Node]string
}

// New starts an edit session on tree. The formatter renders new nodes.
func New(tree *syntax.Tree, f format.Formatter, opts ...Option) *Rewriter {
	rw := &Rewriter{
		tree: tree,
		f:    f,
		opts: format.DefaultOptions(),
		log:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(rw)
	}
	rw.Clear()
	return rw
}

// Tree returns the tree the session edits.
func (rw *Rewriter) Tree() *syntax.Tree { return rw.tree }

// Clear discards every recorded edit, placeholder and tracked node so the
// session can be reused for the same tree.
func (rw *Rewriter) Clear() {
	rw.led = newLedger()
	rw.placeholders = make(map[*syntax.Node]*placeholder)
	rw.names = make(map[*syntax.Node]string)
}

func (rw *Rewriter) indentStyle() indent.Style {
	return rw.opts.Indent()
}

// checkOriginal verifies that n is an original node of the session's tree.
func (rw *Rewriter) checkOriginal(op string, n *syntax.Node) error {
	if n == nil {
		return fmt.Errorf("%s: nil node: %w", op, ErrForeignNode)
	}
	if n.IsOriginal() && n.Tree() != rw.tree {
		return fmt.Errorf("%s %s: %w", op, n, ErrForeignNode)
	}
	return nil
}

// Remove deletes n. Removing a node twice has no further effect. Removing a
// new node that was inserted earlier in the session cancels the insertion.
func (rw *Rewriter) Remove(n *syntax.Node) error {
	if err := rw.checkOriginal("remove", n); err != nil {
		return err
	}
	if !n.IsOriginal() {
		return rw.led.unclaim(n)
	}
	rw.log.Debug("remove", logging.FieldNode, n)
	return rw.led.markRemoved(n)
}

// Replace renders replacement in place of n. The replacement must be a new
// node or a placeholder.
func (rw *Rewriter) Replace(n, replacement *syntax.Node) error {
	if err := rw.checkOriginal("replace", n); err != nil {
		return err
	}
	if replacement == nil {
		return rw.Remove(n)
	}
	if !n.IsOriginal() {
		return rw.led.swap(n, replacement)
	}
	rw.log.Debug("replace", logging.FieldNode, n, "with", replacement)
	return rw.led.markReplaced(n, replacement)
}

// Modify changes attributes of n. Children of n keep their own edits.
// Successive patches of the same node are merged.
func (rw *Rewriter) Modify(n *syntax.Node, patch syntax.Patch) error {
	if err := rw.checkOriginal("modify", n); err != nil {
		return err
	}
	if !n.IsOriginal() {
		return fmt.Errorf("modify %s: set attributes of new nodes directly: %w", n, ErrForeignNode)
	}
	for id := range patch {
		spec, ok := rw.tree.Grammar.Prop(n.Kind(), id)
		if !ok || spec.Type != syntax.PropAttr {
			return fmt.Errorf("modify %s: property %d is not an attribute: %w", n, id, ErrWrongProperty)
		}
	}
	rw.log.Debug("modify", logging.FieldNode, n, "attrs", len(patch))
	return rw.led.markModified(n, patch)
}

// Set changes a single-valued property of parent. A nil child removes the
// current child; otherwise the current child is replaced, or child is
// inserted into the empty slot.
func (rw *Rewriter) Set(parent *syntax.Node, prop syntax.PropertyID, child *syntax.Node) error {
	if err := rw.checkOriginal("set", parent); err != nil {
		return err
	}
	if !parent.IsOriginal() {
		return fmt.Errorf("set %s: set properties of new nodes directly: %w", parent, ErrForeignNode)
	}
	spec, ok := rw.tree.Grammar.Prop(parent.Kind(), prop)
	if !ok || spec.Type != syntax.PropNode {
		return fmt.Errorf("set %s property %d: %w", parent, prop, ErrWrongProperty)
	}

	current := parent.Child(prop)
	switch {
	case current != nil && child == nil:
		return rw.Remove(current)
	case current != nil:
		return rw.Replace(current, child)
	case child == nil:
		return nil
	}
	rw.log.Debug("set", logging.FieldNode, parent, "property", spec.Name)
	return rw.led.setSlot(slotKey{parent: parent, prop: prop}, child)
}

// Track asks for the final range of n under name. A name may be used for
// several nodes; the first one found in the result wins.
func (rw *Rewriter) Track(n *syntax.Node, name string) error {
	if err := rw.checkOriginal("track", n); err != nil {
		return err
	}
	if prev, ok := rw.names[n]; ok && prev != name {
		return fmt.Errorf("track %s as %q: already tracked as %q: %w", n, name, prev, ErrConflict)
	}
	rw.names[n] = name
	if n.IsOriginal() {
		markUp(n, rw.led.hot)
	}
	return nil
}

// List returns the editor for a list property of parent.
func (rw *Rewriter) List(parent *syntax.Node, prop syntax.PropertyID) *ListRewrite {
	lr := &ListRewrite{rw: rw, key: slotKey{parent: parent, prop: prop}}
	switch {
	case rw.checkOriginal("list", parent) != nil:
		lr.err = rw.checkOriginal("list", parent)
	case !parent.IsOriginal():
		lr.err = fmt.Errorf("list %s: edit lists of new nodes directly: %w", parent, ErrForeignNode)
	default:
		if spec, ok := rw.tree.Grammar.Prop(parent.Kind(), prop); !ok || spec.Type != syntax.PropList {
			lr.err = fmt.Errorf("list %s property %d: %w", parent, prop, ErrWrongProperty)
		}
	}
	return lr
}

// Rewrite turns the recorded edits into a Text Edit Tree. It does not
// consume the session; the result reflects the edits recorded so far.
func (rw *Rewriter) Rewrite() (*Result, error) {
	rw.log.Debug("rewrite session",
		logging.FieldPath, rw.tree.Path,
		"nodes", len(rw.led.nodes),
		"lists", len(rw.led.lists),
		"placeholders", len(rw.placeholders),
		"tracked", len(rw.names))

	d := newDriver(rw)
	edits, err := d.run()
	if err != nil {
		rw.log.Debug("rewrite failed", logging.FieldPath, rw.tree.Path, logging.FieldError, err)
		return nil, err
	}

	layout := edits.Layout()
	tracked := make(map[string]textedit.Span, len(rw.names))
	for _, name := range rw.names {
		if span, ok := layout[name]; ok {
			tracked[name] = span
		}
	}

	rw.log.Debug("rewrite done",
		logging.FieldPath, rw.tree.Path,
		logging.FieldEdits, len(edits.Leaves()),
		"lists_planned", d.listsPlanned,
		"placeholders_resolved", d.resolved)

	return &Result{Edits: edits, tracked: tracked}, nil
}

// ListRewrite edits one list property of an original node.
type ListRewrite struct {
	rw  *Rewriter
	key slotKey
	err error
}

func (lr *ListRewrite) insert(n *syntax.Node, anchor Anchor) error {
	if lr.err != nil {
		return lr.err
	}
	if n == nil {
		return fmt.Errorf("insert: nil node: %w", ErrForeignNode)
	}
	if anchor.Ref != nil {
		if err := lr.rw.checkOriginal("anchor", anchor.Ref); err != nil {
			return err
		}
	}
	lr.rw.log.Debug("insert", logging.FieldNode, n, "anchor", anchor.Kind, "ref", anchor.Ref)
	return lr.rw.led.insert(lr.key, n, anchor)
}

// InsertFirst inserts n at the start of the list.
func (lr *ListRewrite) InsertFirst(n *syntax.Node) error {
	return lr.insert(n, Anchor{Kind: AnchorFirst})
}

// InsertLast inserts n at the end of the list.
func (lr *ListRewrite) InsertLast(n *syntax.Node) error {
	return lr.insert(n, Anchor{Kind: AnchorLast})
}

// InsertBefore inserts n immediately before ref, an original element of the
// list or a node inserted into it earlier.
func (lr *ListRewrite) InsertBefore(n, ref *syntax.Node) error {
	return lr.insert(n, Anchor{Kind: AnchorBefore, Ref: ref})
}

// InsertAfter inserts n immediately after ref, an original element of the
// list or a node inserted into it earlier.
func (lr *ListRewrite) InsertAfter(n, ref *syntax.Node) error {
	return lr.insert(n, Anchor{Kind: AnchorAfter, Ref: ref})
}

// Remove removes an original element or cancels a pending insertion.
func (lr *ListRewrite) Remove(n *syntax.Node) error {
	if err := lr.member("remove", n); err != nil {
		return err
	}
	return lr.rw.Remove(n)
}

// Replace replaces an original element or a pending insertion.
func (lr *ListRewrite) Replace(old, replacement *syntax.Node) error {
	if err := lr.member("replace", old); err != nil {
		return err
	}
	return lr.rw.Replace(old, replacement)
}

// member verifies that n is an element of the list or pending in it.
func (lr *ListRewrite) member(op string, n *syntax.Node) error {
	if lr.err != nil {
		return lr.err
	}
	if n == nil {
		return fmt.Errorf("%s: nil node: %w", op, ErrForeignNode)
	}
	if n.IsOriginal() {
		if n.Parent() == lr.key.parent && n.ParentProperty() == lr.key.prop {
			return nil
		}
	} else if le := lr.rw.led.lists[lr.key]; le != nil {
		if ins, ok := le.byNode[n]; ok && !ins.dropped {
			return nil
		}
	}
	return fmt.Errorf("%s %s: not an element of the list: %w", op, n, ErrForeignNode)
}

// Result is the outcome of a rewrite.
type Result struct {
	// Edits is the Text Edit Tree over the original buffer.
	Edits *textedit.Tree

	tracked map[string]textedit.Span
}

// Apply applies the edits to content, which must be the original buffer.
func (r *Result) Apply(content []byte) ([]byte, error) {
	return r.Edits.Apply(content)
}

// Tracked returns the final range of every tracked node that survives the rewrite.
func (r *Result) Tracked() map[string]textedit.Span {
	return maps.Clone(r.tracked)
}

// Range returns the final range of the node tracked under name.
func (r *Result) Range(name string) (textedit.Span, bool) {
	span, ok := r.tracked[name]
	return span, ok
}
