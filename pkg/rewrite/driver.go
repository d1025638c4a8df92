package rewrite

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/yaklabco/astrewrite/internal/logging"
	"github.com/yaklabco/astrewrite/pkg/format"
	"github.com/yaklabco/astrewrite/pkg/indent"
	"github.com/yaklabco/astrewrite/pkg/syntax"
	"github.com/yaklabco/astrewrite/pkg/textedit"
)

// snapshotGroup tags the root container of a placeholder resolution.
const snapshotGroup = "\x00snapshot"

// driver walks the original tree once and turns ledger entries into edits.
type driver struct {
	rw    *Rewriter
	tree  *syntax.Tree
	led   *ledger
	style indent.Style

	// resolving holds the sources of placeholders being resolved.
	resolving map[*syntax.Node]bool

	listsPlanned int
	resolved     int
}

func newDriver(rw *Rewriter) *driver {
	return &driver{
		rw:        rw,
		tree:      rw.tree,
		led:       rw.led,
		style:     rw.indentStyle(),
		resolving: make(map[*syntax.Node]bool),
	}
}

func (d *driver) run() (*textedit.Tree, error) {
	edits := textedit.NewTree(len(d.tree.Content))
	root := d.tree.Root
	if root == nil {
		return edits, nil
	}

	switch op, repl := d.led.effective(root); op {
	case opRemoved:
		r := root.Range()
		if err := edits.Add(textedit.Delete(r.Start, r.Len())); err != nil {
			return nil, err
		}
	case opReplaced:
		if err := d.replace(edits.Root(), root, repl); err != nil {
			return nil, err
		}
	case opNone:
		if d.led.hot[root] {
			if err := d.visit(edits.Root(), root); err != nil {
				return nil, err
			}
		}
	}
	return edits, nil
}

// visit emits edits for the inside of an original node that stays in place.
func (d *driver) visit(container *textedit.Edit, n *syntax.Node) error {
	if name, ok := d.rw.names[n]; ok {
		r := n.Range()
		tracked := textedit.Multi(r.Start, r.Len()).WithGroup(name)
		if err := container.Add(tracked); err != nil {
			return err
		}
		container = tracked
	}

	if patch := d.led.patch(n); len(patch) > 0 {
		if err := d.patchAttrs(container, n, patch); err != nil {
			return err
		}
	}

	for i := range n.NumProps() {
		prop := syntax.PropertyID(i)
		var err error
		switch n.PropType(prop) {
		case syntax.PropNode:
			err = d.visitSlot(container, n, prop)
		case syntax.PropList:
			err = d.visitList(container, n, prop)
		case syntax.PropAttr:
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// visitChild handles an original child at its original location.
func (d *driver) visitChild(container *textedit.Edit, child *syntax.Node) error {
	switch op, repl := d.led.effective(child); op {
	case opReplaced:
		return d.replace(container, child, repl)
	case opRemoved:
		r := d.removalExtent(child)
		return container.Add(textedit.Delete(r.Start, r.Len()))
	case opNone:
		if d.led.hot[child] {
			return d.visit(container, child)
		}
	}
	return nil
}

func (d *driver) visitSlot(container *textedit.Edit, n *syntax.Node, prop syntax.PropertyID) error {
	child := n.Child(prop)
	if child == nil {
		added, ok := d.led.slots[slotKey{parent: n, prop: prop}]
		if !ok {
			return nil
		}
		return d.fillSlot(container, n, prop, added)
	}

	if op, _ := d.led.effective(child); op == opRemoved {
		affix := d.rw.f.Affix(n.Kind(), prop)
		r := d.affixRange(d.removalExtent(child), affix)
		return container.Add(textedit.Delete(r.Start, r.Len()))
	}
	return d.visitChild(container, child)
}

// fillSlot inserts a new child into an empty single-valued property.
func (d *driver) fillSlot(container *textedit.Edit, n *syntax.Node, prop syntax.PropertyID, child *syntax.Node) error {
	span := n.Span(prop)
	if !span.IsValid() {
		return fmt.Errorf("set %s.%s: no insertion point: %w", n, n.PropName(prop), ErrWrongProperty)
	}

	frag, err := d.fragment(child, d.destAt(span.Start))
	if err != nil {
		return err
	}
	affix := d.rw.f.Affix(n.Kind(), prop)
	edit := textedit.Replace(span.Start, span.Len(), affix.Prefix+frag.Text+affix.Suffix)
	edit.WithMarks(shiftMarks(frag.Marks, len(affix.Prefix))...)
	return container.Add(edit)
}

// replace emits one edit over old's range carrying the text of replacement.
func (d *driver) replace(container *textedit.Edit, old, replacement *syntax.Node) error {
	r := d.removalExtent(old)
	frag, err := d.fragment(replacement, d.destAt(r.Start))
	if err != nil {
		return err
	}
	edit := textedit.Replace(r.Start, r.Len(), frag.Text).WithMarks(frag.Marks...)
	// A replacement that wraps the old node keeps reporting the old node.
	if name, ok := d.rw.names[old]; ok && !slices.ContainsFunc(frag.Marks, func(m textedit.Mark) bool {
		return m.Group == name
	}) {
		edit.WithGroup(name)
	}
	return container.Add(edit)
}

// patchAttrs emits small edits for attributes whose value changes.
func (d *driver) patchAttrs(container *textedit.Edit, n *syntax.Node, patch syntax.Patch) error {
	ids := make([]syntax.PropertyID, 0, len(patch))
	for id := range patch {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		value := patch[id]
		if reflect.DeepEqual(n.Attr(id), value) {
			continue
		}
		span := n.Span(id)
		if !span.IsValid() {
			return fmt.Errorf("modify %s.%s: attribute has no source range: %w", n, n.PropName(id), ErrWrongProperty)
		}
		text, err := d.rw.f.FormatAttr(n, id, value)
		if err != nil {
			return fmt.Errorf("modify %s.%s: %w", n, n.PropName(id), err)
		}

		affix := d.rw.f.Affix(n.Kind(), id)
		var edit *textedit.Edit
		switch {
		case text == "" && span.Len() > 0:
			r := d.affixRange(span, affix)
			edit = textedit.Delete(r.Start, r.Len())
		case span.Len() == 0:
			edit = textedit.Insert(span.Start, affix.Prefix+text+affix.Suffix)
		default:
			edit = textedit.Replace(span.Start, span.Len(), text)
		}
		if err := container.Add(edit); err != nil {
			return err
		}
	}
	return nil
}

// destAt describes the indentation of the line containing offset.
func (d *driver) destAt(offset int) indent.Descriptor {
	return indent.Measure(d.style, d.tree.IndentAt(offset))
}

// fragment produces the text of n for a destination whose first line is
// already indented as dest.
func (d *driver) fragment(n *syntax.Node, dest indent.Descriptor) (format.Fragment, error) {
	switch {
	case n.IsPlaceholder():
		p := d.rw.placeholders[n]
		if p == nil {
			return format.Fragment{}, fmt.Errorf("resolve %s: placeholder from another session: %w", n, ErrForeignNode)
		}
		frag, err := d.resolve(p, dest)
		if err != nil {
			return format.Fragment{}, err
		}
		return d.withName(n, frag), nil

	case n.IsOriginal():
		if n.Tree() != d.tree {
			return format.Fragment{}, fmt.Errorf("resolve %s: %w", n, ErrForeignNode)
		}
		return d.snapshot(n, false, dest)

	default:
		frag, err := format.Render(d.rw.f, n, format.RenderOptions{
			Level:   dest.Level,
			Options: d.rw.opts,
			Hook:    d.hook,
			Names:   d.rw.names,
		})
		if err != nil {
			return format.Fragment{}, err
		}
		if dest.Extra != 0 {
			frag = reindentFragment(frag, indent.Descriptor{Style: d.style, Level: dest.Level}, dest)
		}
		return frag, nil
	}
}

// hook supplies the printer with the text of children that already have
// source text.
func (d *driver) hook(n *syntax.Node, level int) (*format.Fragment, error) {
	if !n.IsPlaceholder() && !n.IsOriginal() {
		return nil, nil
	}
	frag, err := d.fragment(n, indent.Descriptor{Style: d.style, Level: level})
	if err != nil {
		return nil, err
	}
	return &frag, nil
}

func (d *driver) withName(n *syntax.Node, frag format.Fragment) format.Fragment {
	if name, ok := d.rw.names[n]; ok {
		frag.Marks = append(frag.Marks, textedit.Mark{Group: name, Length: len(frag.Text)})
	}
	return frag
}

// resolve produces the content of a placeholder.
func (d *driver) resolve(p *placeholder, dest indent.Descriptor) (format.Fragment, error) {
	d.resolved++
	src := p.source
	if !src.IsOriginal() {
		return d.fragment(src, dest)
	}
	if src.Tree() != d.tree {
		return format.Fragment{}, fmt.Errorf("resolve %s: %w", src, ErrForeignNode)
	}
	d.rw.log.Debug("resolve placeholder", logging.FieldNode, src, "mode", p.mode)
	return d.snapshot(src, p.trailingComment, dest)
}

// snapshot produces the text of an original subtree as it reads after the
// session's edits inside it, ignoring any removal or replacement of the
// subtree root itself.
func (d *driver) snapshot(src *syntax.Node, trailingComment bool, dest indent.Descriptor) (format.Fragment, error) {
	if d.resolving[src] {
		return format.Fragment{}, fmt.Errorf("resolve %s: %w", src, ErrPlaceholderCycle)
	}
	d.resolving[src] = true
	defer delete(d.resolving, src)

	r := d.extent(src, trailingComment)

	var frag format.Fragment
	if !d.led.dirty[src] && len(d.led.patch(src)) == 0 {
		frag = format.Fragment{Text: string(d.tree.Slice(r)), Marks: d.trackedWithin(src, r.Start)}
	} else {
		var err error
		frag, err = d.rewriteRange(src, r)
		if err != nil {
			return format.Fragment{}, err
		}
	}

	from := indent.Measure(d.style, d.tree.IndentAt(r.Start))
	return reindentFragment(frag, from, dest), nil
}

// trackedWithin returns marks for tracked nodes in src's subtree, relative to base.
func (d *driver) trackedWithin(src *syntax.Node, base int) []textedit.Mark {
	var marks []textedit.Mark
	for n, name := range d.rw.names {
		if !n.IsOriginal() || (n != src && !src.IsAncestorOf(n)) {
			continue
		}
		r := n.Range()
		marks = append(marks, textedit.Mark{Group: name, Offset: r.Start - base, Length: r.Len()})
	}
	sortMarks(marks)
	return marks
}

// rewriteRange applies the session's edits inside src to a private edit
// tree and returns the resulting text of range r.
func (d *driver) rewriteRange(src *syntax.Node, r syntax.Range) (format.Fragment, error) {
	sub := textedit.NewTree(len(d.tree.Content))
	root := textedit.Multi(r.Start, r.Len()).WithGroup(snapshotGroup)
	if err := sub.Add(root); err != nil {
		return format.Fragment{}, err
	}
	if err := d.visit(root, src); err != nil {
		return format.Fragment{}, err
	}

	out, err := sub.Apply(d.tree.Content)
	if err != nil {
		return format.Fragment{}, err
	}
	layout := sub.Layout()
	span := layout[snapshotGroup]

	var marks []textedit.Mark
	for name, s := range layout {
		if name == snapshotGroup || s.Offset < span.Offset || s.End() > span.End() {
			continue
		}
		marks = append(marks, textedit.Mark{Group: name, Offset: s.Offset - span.Offset, Length: s.Length})
	}
	sortMarks(marks)

	return format.Fragment{Text: string(out[span.Offset:span.End()]), Marks: marks}, nil
}

// reindentFragment moves a fragment between indentation levels, keeping
// its marks on the same text.
func reindentFragment(frag format.Fragment, from, to indent.Descriptor) format.Fragment {
	if from == to {
		return frag
	}
	positions := make([]int, 0, 2*len(frag.Marks))
	for _, m := range frag.Marks {
		positions = append(positions, m.Offset, m.Offset+m.Length)
	}
	text, mapped := indent.ReindentPositions(frag.Text, from, to, positions, indent.SkipFirstLine())

	marks := make([]textedit.Mark, len(frag.Marks))
	for i, m := range frag.Marks {
		start, end := mapped[2*i], mapped[2*i+1]
		marks[i] = textedit.Mark{Group: m.Group, Offset: start, Length: end - start}
	}
	return format.Fragment{Text: text, Marks: marks}
}

func shiftMarks(marks []textedit.Mark, delta int) []textedit.Mark {
	out := make([]textedit.Mark, len(marks))
	for i, m := range marks {
		m.Offset += delta
		out[i] = m
	}
	return out
}

func sortMarks(marks []textedit.Mark) {
	slices.SortFunc(marks, func(a, b textedit.Mark) int {
		return cmp.Or(cmp.Compare(a.Offset, b.Offset), strings.Compare(a.Group, b.Group))
	})
}
