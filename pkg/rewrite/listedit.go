package rewrite

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/astrewrite/internal/logging"
	"github.com/yaklabco/astrewrite/pkg/format"
	"github.com/yaklabco/astrewrite/pkg/indent"
	"github.com/yaklabco/astrewrite/pkg/syntax"
	"github.com/yaklabco/astrewrite/pkg/textedit"
)

// visitList descends into a list property, planning it if any of its
// elements is added, removed or replaced.
func (d *driver) visitList(container *textedit.Edit, n *syntax.Node, prop syntax.PropertyID) error {
	elems := n.List(prop)
	le := d.led.lists[slotKey{parent: n, prop: prop}]

	touched := false
	if le != nil {
		for _, ins := range le.inserts {
			if !ins.dropped {
				touched = true
				break
			}
		}
	}
	for _, el := range elems {
		if touched {
			break
		}
		if op, _ := d.led.effective(el); op != opNone {
			touched = true
		}
	}

	if !touched {
		for _, el := range elems {
			if d.led.hot[el] {
				if err := d.visit(container, el); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return d.rewriteList(container, n, prop, elems, le)
}

// run is a sequence of new elements between two kept originals.
type run struct {
	after  int // index of the kept element before the run, or -1
	before int // index of the kept element after the run, or -1
	items  []*syntax.Node
}

func (d *driver) rewriteList(container *textedit.Edit, n *syntax.Node, prop syntax.PropertyID, elems []*syntax.Node, le *listEntry) error {
	style := d.rw.f.ListStyle(n.Kind(), prop)

	elements := make([]ListElement, len(elems))
	for i, el := range elems {
		disp := Keep
		switch op, _ := d.led.effective(el); op {
		case opRemoved:
			disp = Removed
		case opReplaced:
			disp = Replaced
		case opNone:
		}
		elements[i] = ListElement{Node: el, Disposition: disp}
	}
	var inserts []ListInsert
	if le != nil {
		inserts = make([]ListInsert, len(le.inserts))
		for i, ins := range le.inserts {
			inserts[i] = ListInsert{Node: ins.node, Anchor: ins.anchor, Dropped: ins.dropped}
		}
	}

	plan, err := PlanList(elements, inserts)
	if err != nil {
		return fmt.Errorf("list %s.%s: %w", n, n.PropName(prop), err)
	}
	d.listsPlanned++
	d.rw.log.Debug("list plan",
		logging.FieldNode, n,
		"property", n.PropName(prop),
		"original", len(elems),
		"planned", len(plan))

	keptAfter := make([]bool, len(elems)+1)
	for i := len(elems) - 1; i >= 0; i-- {
		keptAfter[i] = keptAfter[i+1] || (i+1 < len(elems) && elements[i+1].Disposition != Removed)
	}

	// Kept elements stay in their slots.
	for _, item := range plan {
		if !item.IsOriginal() {
			continue
		}
		if err := d.visitChild(container, item.Node); err != nil {
			return err
		}
	}

	// Removed elements take some of their glue with them.
	markers := d.markers(n, style)
	removals := make(map[int]syntax.Range)
	var dels []textedit.TextEdit
	for i, el := range elements {
		if el.Disposition != Removed {
			continue
		}
		r := d.removalRange(elements, i, style, markers, keptAfter[i])
		removals[i] = r
		dels = append(dels, textedit.TextEdit{StartOffset: r.Start, EndOffset: r.End})
	}
	merged, err := textedit.MergeDeletions(dels)
	if err != nil {
		return err
	}
	for _, m := range merged {
		if err := container.Add(textedit.Replace(m.StartOffset, m.EndOffset-m.StartOffset, m.NewText)); err != nil {
			return err
		}
	}

	// New elements are inserted run by run.
	cur := run{after: -1, before: -1}
	for _, item := range plan {
		if !item.IsOriginal() {
			cur.items = append(cur.items, item.Node)
			continue
		}
		cur.before = item.Index
		if len(cur.items) > 0 {
			if err := d.insertRun(container, n, prop, style, elems, removals, cur); err != nil {
				return err
			}
		}
		cur = run{after: item.Index, before: -1}
	}
	if len(cur.items) > 0 {
		return d.insertRun(container, n, prop, style, elems, removals, cur)
	}
	return nil
}

// removalRange decides how much text disappears with elements[i].
func (d *driver) removalRange(elements []ListElement, i int, style format.ListStyle, markers string, keptAfter bool) syntax.Range {
	if style.Multiline {
		return d.removeLine(elements, i, markers, keptAfter)
	}

	t := d.tree
	r := d.removalExtent(elements[i].Node)
	if keptAfter {
		end := elements[i+1].Node.Range().Start
		if cs := d.commentsBetween(r.End, end); len(cs) > 0 {
			end = cs[0].Start
		}
		return syntax.Range{Start: r.Start, End: max(end, r.End)}
	}
	if i == 0 {
		return r
	}
	start := elements[i-1].Node.Range().End
	if cs := d.commentsBetween(start, r.Start); len(cs) > 0 {
		start = cs[len(cs)-1].End
	}
	start = min(start, r.Start)
	if start == r.Start {
		start = t.BackHSpace(r.Start, t.LineStart(r.Start))
	}
	return syntax.Range{Start: start, End: r.End}
}

// removeLine is removalRange for lists with one element per line. Lines
// holding only markers count as blank.
func (d *driver) removeLine(elements []ListElement, i int, markers string, keptAfter bool) syntax.Range {
	t := d.tree
	r := d.removalExtent(elements[i].Node)
	startsLine := d.startsLine(r.Start, markers)

	if startsLine && t.EndsLine(r.End) {
		// A trailing run of removed lines joins the last kept element.
		if !keptAfter {
			for j := i - 1; j >= 0; j-- {
				if elements[j].Disposition == Removed {
					continue
				}
				prevEnd := d.attachEnd(elements[j].Node, true)
				if len(d.commentsBetween(prevEnd, r.Start)) == 0 && t.LineStart(prevEnd) != t.LineStart(r.Start) {
					return syntax.Range{Start: t.LineEnd(prevEnd), End: t.LineEnd(r.End)}
				}
				break
			}
		}
		start := t.LineStart(r.Start)
		end := t.NextLineStart(r.End)
		// The first line of a prefixed list carries the owner's marker, so
		// a blank line must not move up into it.
		leading := i == 0 && markers != ""
		if leading || start > 0 && d.blankLine(start-1, markers) {
			limit := len(t.Content)
			if i+1 < len(elements) {
				limit = t.LineStart(elements[i+1].Node.Range().Start)
			}
			for end < limit && d.blankLine(end, markers) {
				end = t.NextLineStart(end)
			}
		}
		return syntax.Range{Start: start, End: end}
	}

	if c, ok := d.trailingComment(r.End); ok {
		return syntax.Range{Start: r.Start, End: c.Start}
	}
	if i+1 < len(elements) {
		next := elements[i+1].Node.Range().Start
		if t.LineStart(next) == t.LineStart(r.End) {
			return syntax.Range{Start: r.Start, End: next}
		}
	}
	if !startsLine {
		return syntax.Range{Start: t.BackHSpace(r.Start, t.LineStart(r.Start)), End: r.End}
	}
	return syntax.Range{Start: r.Start, End: t.SkipHSpace(r.End, t.LineEnd(r.End))}
}

// blankLine reports whether the line containing offset holds only
// whitespace and markers.
func (d *driver) blankLine(offset int, markers string) bool {
	t := d.tree
	line := t.Content[t.LineStart(offset):t.LineEnd(offset)]
	return len(bytes.Trim(line, " \t"+markers)) == 0
}

// startsLine reports whether only whitespace and markers precede offset on
// its line.
func (d *driver) startsLine(offset int, markers string) bool {
	t := d.tree
	return len(bytes.Trim(t.Content[t.LineStart(offset):offset], " \t"+markers)) == 0
}

// markers returns the non-blank bytes of the line prefixes in effect for
// elements of a list owned by n, or "" when no enclosing list has a prefix.
func (d *driver) markers(n *syntax.Node, style format.ListStyle) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(style.Prefix))
	for m := n; m.Parent() != nil; m = m.Parent() {
		parent, prop := m.Parent(), m.ParentProperty()
		if parent.PropType(prop) == syntax.PropList {
			b.WriteString(strings.TrimSpace(d.rw.f.ListStyle(parent.Kind(), prop).Prefix))
		}
	}
	return b.String()
}

// elementLead returns what starts a line holding one element: its
// indentation, then any markers.
func (d *driver) elementLead(n *syntax.Node, style format.ListStyle, markers string, elems []*syntax.Node) string {
	t := d.tree
	for _, el := range elems {
		if start := el.Range().Start; d.startsLine(start, markers) {
			return string(t.Content[t.LineStart(start):start])
		}
	}

	var owner string
	if markers == "" {
		owner = t.IndentAt(n.Range().Start)
	} else {
		// Keep the markers in front of the owner and blank out the rest.
		start := n.Range().Start
		owner = strings.Map(func(r rune) rune {
			if r == '\t' || strings.ContainsRune(markers, r) {
				return r
			}
			return ' '
		}, string(t.Content[t.LineStart(start):start]))
	}
	if style.Indented {
		owner += d.style.Unit()
	}
	return owner + style.Prefix
}

// runText accumulates the text of an insertion run and its marks.
type runText struct {
	b     strings.Builder
	marks []textedit.Mark
}

func (rt *runText) write(s string) { rt.b.WriteString(s) }

func (rt *runText) fragment(frag format.Fragment) {
	rt.marks = append(rt.marks, shiftMarks(frag.Marks, rt.b.Len())...)
	rt.b.WriteString(frag.Text)
}

// prefixLines starts every line of frag after the first with lead, keeping
// marks on the same text. Empty lines get lead without trailing spaces.
func prefixLines(frag format.Fragment, lead string) format.Fragment {
	text := frag.Text
	if lead == "" || !strings.Contains(strings.TrimSuffix(text, "\n"), "\n") {
		return frag
	}
	blank := strings.TrimRight(lead, " \t")

	var b strings.Builder
	var breaks, added []int
	total := 0
	for i := range len(text) {
		b.WriteByte(text[i])
		if text[i] != '\n' || i+1 == len(text) {
			continue
		}
		l := lead
		if text[i+1] == '\n' {
			l = blank
		}
		b.WriteString(l)
		total += len(l)
		breaks = append(breaks, i+1)
		added = append(added, total)
	}

	shift := func(offset int) int {
		k, found := slices.BinarySearch(breaks, offset)
		if found {
			k++
		}
		if k == 0 {
			return offset
		}
		return offset + added[k-1]
	}
	marks := make([]textedit.Mark, len(frag.Marks))
	for i, m := range frag.Marks {
		start, end := shift(m.Offset), shift(m.Offset+m.Length)
		marks[i] = textedit.Mark{Group: m.Group, Offset: start, Length: end - start}
	}
	return format.Fragment{Text: b.String(), Marks: marks}
}

func (d *driver) insertRun(
	container *textedit.Edit,
	n *syntax.Node,
	prop syntax.PropertyID,
	style format.ListStyle,
	elems []*syntax.Node,
	removals map[int]syntax.Range,
	r run,
) error {
	t := d.tree
	var rt runText
	var edit *textedit.Edit

	render := func(dest indent.Descriptor) ([]format.Fragment, error) {
		frags := make([]format.Fragment, len(r.items))
		for i, item := range r.items {
			frag, err := d.fragment(item, dest)
			if err != nil {
				return nil, err
			}
			frags[i] = frag
		}
		return frags, nil
	}

	if !style.Multiline {
		var pos int
		switch {
		case r.after >= 0:
			pos = elems[r.after].Range().End
		case r.before >= 0:
			pos = elems[r.before].Range().Start
		case len(elems) > 0:
			pos = elems[0].Range().Start
		default:
			span := n.Span(prop)
			if !span.IsValid() {
				return fmt.Errorf("insert into %s.%s: no list span: %w", n, n.PropName(prop), ErrWrongProperty)
			}
			pos = span.Start
		}
		frags, err := render(d.destAt(pos))
		if err != nil {
			return err
		}
		for i, frag := range frags {
			switch {
			case r.after >= 0:
				rt.write(style.Separator)
				rt.fragment(frag)
			case r.before >= 0:
				rt.fragment(frag)
				rt.write(style.Separator)
			default:
				if i > 0 {
					rt.write(style.Separator)
				}
				rt.fragment(frag)
			}
		}
		if r.after < 0 && r.before < 0 && len(elems) == 0 {
			span := n.Span(prop)
			if strings.TrimSpace(string(t.Slice(span))) == "" {
				edit = textedit.Replace(span.Start, span.Len(), rt.b.String())
			}
		}
		if edit == nil {
			edit = textedit.Insert(pos, rt.b.String())
		}
		return container.Add(edit.WithMarks(rt.marks...))
	}

	markers := d.markers(n, style)
	lead := d.elementLead(n, style, markers, elems)
	dest := indent.Measure(d.style, lead)
	if markers != "" {
		dest = indent.Descriptor{Style: d.style}
	}
	frags, err := render(dest)
	if err != nil {
		return err
	}
	if markers != "" {
		for i, frag := range frags {
			frags[i] = prefixLines(frag, lead)
		}
	}
	brk := style.Glue(lead)

	switch {
	case r.after >= 0:
		pos := d.attachEnd(elems[r.after], true)
		for _, frag := range frags {
			rt.write(brk)
			rt.fragment(frag)
		}
		edit = textedit.Insert(pos, rt.b.String())

	case r.before >= 0:
		floor := n.Range().Start
		if r.before > 0 {
			floor = elems[r.before-1].Range().End
		}
		pos := d.attachStart(elems[r.before], true, floor)
		for _, frag := range frags {
			rt.fragment(frag)
			rt.write(brk)
		}
		edit = textedit.Insert(pos, rt.b.String())

	case len(elems) > 0:
		first := elems[0].Range().Start
		if d.startsLine(first, markers) {
			rt.write(lead)
			for i, frag := range frags {
				if i > 0 {
					rt.write(brk)
				}
				rt.fragment(frag)
			}
			rt.write("\n")
			edit = textedit.Insert(t.LineStart(first), rt.b.String())
		} else {
			pos := first
			if rem, ok := removals[0]; ok {
				pos = min(pos, rem.Start)
				rt.write(string(t.Content[pos:first]))
			}
			for i, frag := range frags {
				if i > 0 {
					rt.write(brk)
				}
				rt.fragment(frag)
			}
			edit = textedit.Insert(pos, rt.b.String())
		}

	default:
		span := n.Span(prop)
		if !span.IsValid() {
			return fmt.Errorf("insert into %s.%s: no list span: %w", n, n.PropName(prop), ErrWrongProperty)
		}
		owner := t.IndentAt(n.Range().Start)
		comments := t.CommentsIn(span)
		switch {
		case len(comments) > 0:
			rt.write("\n" + lead)
			for i, frag := range frags {
				if i > 0 {
					rt.write(brk)
				}
				rt.fragment(frag)
			}
			edit = textedit.Insert(comments[len(comments)-1].End, rt.b.String())
		case style.Wrap:
			rt.write("\n" + lead)
			for i, frag := range frags {
				if i > 0 {
					rt.write(brk)
				}
				rt.fragment(frag)
			}
			rt.write("\n" + owner)
			edit = textedit.Replace(span.Start, span.Len(), rt.b.String())
		default:
			// Part of the lead may already sit in front of the span.
			rt.write(strings.TrimPrefix(lead, string(t.Content[t.LineStart(span.Start):span.Start])))
			for i, frag := range frags {
				if i > 0 {
					rt.write(brk)
				}
				rt.fragment(frag)
			}
			if span.End == len(t.Content) {
				rt.write("\n")
			}
			edit = textedit.Replace(span.Start, span.Len(), rt.b.String())
		}
	}

	return container.Add(edit.WithMarks(rt.marks...))
}
