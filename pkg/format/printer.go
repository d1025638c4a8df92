package format

import (
	"fmt"
	"strings"

	"github.com/yaklabco/astrewrite/pkg/indent"
	"github.com/yaklabco/astrewrite/pkg/syntax"
	"github.com/yaklabco/astrewrite/pkg/textedit"
)

// Fragment is rendered text plus tagged sub-ranges.
type Fragment struct {
	Text  string
	Marks []textedit.Mark
}

// Hook lets the caller supply the text of a child node. The returned text
// must already be indented for level, except for its first line. Returning
// a nil fragment falls back to the printer's own rendering.
type Hook func(n *syntax.Node, level int) (*Fragment, error)

// RenderOptions configures Render.
type RenderOptions struct {
	// Level is the indentation level of the line the text starts on.
	Level int

	// Options is passed through to the formatter.
	Options Options

	// Hook is consulted before rendering any child node.
	Hook Hook

	// Names tags the text of specific nodes with group names.
	Names map[*syntax.Node]string
}

// Printer accumulates rendered text at an indentation level.
type Printer struct {
	f      Formatter
	opts   Options
	style  indent.Style
	level  int
	hook   Hook
	names  map[*syntax.Node]string
	b      strings.Builder
	marks  []textedit.Mark
	bol    bool
	err    error
	active map[*syntax.Node]bool
	prefix []string
}

// Render renders n with f. The hook is not consulted for n itself.
func Render(f Formatter, n *syntax.Node, ro RenderOptions) (Fragment, error) {
	p := &Printer{
		f:      f,
		opts:   ro.Options,
		style:  ro.Options.Indent(),
		level:  ro.Level,
		hook:   ro.Hook,
		names:  ro.Names,
		active: make(map[*syntax.Node]bool),
	}
	p.render(n, false)
	if p.err != nil {
		return Fragment{}, p.err
	}
	return Fragment{Text: p.b.String(), Marks: p.marks}, nil
}

// Print renders n at level 0 with default options.
func Print(f Formatter, n *syntax.Node) (string, error) {
	frag, err := Render(f, n, RenderOptions{Options: DefaultOptions()})
	return frag.Text, err
}

// Options returns the options passed to Render.
func (p *Printer) Options() Options { return p.opts }

// Formatter returns the formatter driving the printer.
func (p *Printer) Formatter() Formatter { return p.f }

// Level returns the current indentation level.
func (p *Printer) Level() int { return p.level }

// Err returns the first error recorded while printing.
func (p *Printer) Err() error { return p.err }

// Indent increases the indentation level of following lines.
func (p *Printer) Indent() { p.level++ }

// Dedent decreases the indentation level of following lines.
func (p *Printer) Dedent() {
	if p.level > 0 {
		p.level--
	}
}

// PushPrefix adds s to the start of every following line, after the
// indentation, until the matching PopPrefix. Line breaks inside hooked or
// verbatim text get the prefix too.
func (p *Printer) PushPrefix(s string) { p.prefix = append(p.prefix, s) }

// PopPrefix removes the innermost line prefix.
func (p *Printer) PopPrefix() {
	if n := len(p.prefix); n > 0 {
		p.prefix = p.prefix[:n-1]
	}
}

// Write appends s, indenting first if the printer is at the start of a line.
// Line breaks inside s are written as-is.
func (p *Printer) Write(s string) {
	if s == "" {
		return
	}
	p.flushIndent()
	p.b.WriteString(s)
	p.bol = strings.HasSuffix(s, "\n")
}

// Newline ends the current line. Indentation for the next line is written lazily.
func (p *Printer) Newline() {
	if p.bol && len(p.prefix) > 0 {
		p.b.WriteString(strings.TrimRight(p.style.String(p.level)+strings.Join(p.prefix, ""), " \t"))
	}
	p.b.WriteByte('\n')
	p.bol = true
}

func (p *Printer) flushIndent() {
	if p.bol {
		p.b.WriteString(p.style.String(p.level))
		for _, s := range p.prefix {
			p.b.WriteString(s)
		}
		p.bol = false
	}
}

// writeRaw appends text that carries its own indentation, inserting the
// line prefixes after every inner line break and shifting marks to match.
func (p *Printer) writeRaw(text string, marks []textedit.Mark) {
	start := p.b.Len()
	prefix := strings.Join(p.prefix, "")
	body := strings.TrimSuffix(text, "\n")
	shift := func(offset int) int { return offset }
	if prefix != "" && strings.Contains(body, "\n") {
		shift = func(offset int) int {
			return offset + len(prefix)*strings.Count(body[:min(offset, len(body))], "\n")
		}
		text = strings.ReplaceAll(body, "\n", "\n"+prefix) + text[len(body):]
	}
	for _, m := range marks {
		end := shift(m.Offset + m.Length)
		m.Offset = shift(m.Offset)
		m.Length = end - m.Offset
		m.Offset += start
		p.marks = append(p.marks, m)
	}
	p.b.WriteString(text)
	p.bol = strings.HasSuffix(text, "\n")
}

// Fail records err if no error has been recorded yet.
func (p *Printer) Fail(err error) {
	if p.err == nil && err != nil {
		p.err = err
	}
}

// Node renders a child node. Nil children are skipped.
func (p *Printer) Node(child *syntax.Node) {
	if child == nil || p.err != nil {
		return
	}
	p.render(child, true)
}

// Attr writes the source text of one of n's attributes.
func (p *Printer) Attr(n *syntax.Node, prop syntax.PropertyID) {
	if p.err != nil {
		return
	}
	text, err := p.f.FormatAttr(n, prop, n.Attr(prop))
	if err != nil {
		p.Fail(fmt.Errorf("format %s.%s: %w", n.KindName(), n.PropName(prop), err))
		return
	}
	p.Write(text)
}

// Optional renders an optional single-valued property with its affix.
func (p *Printer) Optional(n *syntax.Node, prop syntax.PropertyID) {
	child := n.Child(prop)
	if child == nil {
		return
	}
	affix := p.f.Affix(n.Kind(), prop)
	p.Write(affix.Prefix)
	p.Node(child)
	p.Write(affix.Suffix)
}

// List renders the elements of a list property using its ListStyle.
// Multiline lists start each element on a new line at the current level;
// the caller writes any delimiters and indentation changes around it.
func (p *Printer) List(n *syntax.Node, prop syntax.PropertyID) {
	style := p.f.ListStyle(n.Kind(), prop)
	for i, el := range n.List(prop) {
		if i > 0 {
			if style.Multiline {
				p.Write(style.Separator)
				for range max(style.Breaks, 1) {
					p.Newline()
				}
			} else {
				p.Write(style.Separator)
			}
		}
		p.Node(el)
	}
}

func (p *Printer) render(n *syntax.Node, useHook bool) {
	if p.active[n] {
		p.Fail(fmt.Errorf("format: %s contains itself", n))
		return
	}
	p.active[n] = true
	defer delete(p.active, n)

	if useHook && p.hook != nil {
		frag, err := p.hook(n, p.level)
		if err != nil {
			p.Fail(err)
			return
		}
		if frag != nil {
			p.flushIndent()
			start := p.b.Len()
			p.writeRaw(frag.Text, frag.Marks)
			p.mark(n, start)
			return
		}
	}

	p.flushIndent()
	start := p.b.Len()
	switch {
	case n.IsPlaceholder():
		p.render(n.Source(), useHook)
	case n.IsOriginal():
		p.verbatim(n)
	default:
		if err := p.f.Format(p, n); err != nil {
			p.Fail(fmt.Errorf("format %s: %w", n.KindName(), err))
			return
		}
	}
	p.mark(n, start)
}

// verbatim copies an original node's text, re-indented to the current level.
func (p *Printer) verbatim(n *syntax.Node) {
	tree := n.Tree()
	from := indent.Descriptor{Style: p.style, Level: p.style.Level(tree.IndentAt(n.Range().Start))}
	to := indent.Descriptor{Style: p.style, Level: p.level}
	p.writeRaw(indent.Reindent(n.Text(), from, to, indent.SkipFirstLine()), nil)
}

func (p *Printer) mark(n *syntax.Node, start int) {
	if name, ok := p.names[n]; ok {
		p.marks = append(p.marks, textedit.Mark{Group: name, Offset: start, Length: p.b.Len() - start})
	}
}
