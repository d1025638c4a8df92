// Package format defines the contract between the rewrite engine and
// language formatters, and the Printer that formatters write into.
//
// A formatter only ever renders detached nodes built by clients. Whenever
// the printer reaches a child that already has source text (an original
// node, a placeholder, a node with pending edits) it asks its Hook first,
// so the engine can substitute the text it has computed for that child.
package format

import (
	"strings"

	"github.com/yaklabco/astrewrite/pkg/indent"
	"github.com/yaklabco/astrewrite/pkg/syntax"
)

// Brace styles understood by the bundled formatters.
const (
	BraceSameLine = "same_line"
	BraceNextLine = "next_line"
)

// Options configures rendering. The engine reads only the indentation
// fields; the rest is passed through to formatters untouched.
type Options struct {
	IndentWidth int    `yaml:"indent_width" mapstructure:"indent_width" json:"indent_width"`
	UseTabs     bool   `yaml:"use_tabs"     mapstructure:"use_tabs"     json:"use_tabs"`
	TabWidth    int    `yaml:"tab_width"    mapstructure:"tab_width"    json:"tab_width"`
	BraceStyle  string `yaml:"brace_style"  mapstructure:"brace_style"  json:"brace_style"`
}

// DefaultOptions returns four-space indentation with same-line braces.
func DefaultOptions() Options {
	return Options{
		IndentWidth: 4,
		TabWidth:    4,
		BraceStyle:  BraceSameLine,
	}
}

// Indent returns the indentation style described by the options.
func (o Options) Indent() indent.Style {
	width := o.IndentWidth
	if width <= 0 {
		width = 4
	}
	tabWidth := o.TabWidth
	if tabWidth <= 0 {
		tabWidth = width
	}
	return indent.Style{Width: width, TabWidth: tabWidth, UseTabs: o.UseTabs}
}

// ListStyle is the separator convention of one list property.
type ListStyle struct {
	// Separator is written between two elements. For multiline lists it is
	// written before the line break (e.g. "," or "").
	Separator string

	// Multiline places every element on its own line.
	Multiline bool

	// Breaks is the number of line breaks between elements of a multiline
	// list; 2 leaves a blank line. Values below 1 mean 1.
	Breaks int

	// Indented means elements sit one level deeper than the owning node.
	Indented bool

	// Wrap means the list span lies between delimiters on the owner's line,
	// so a multiline list that becomes non-empty needs a line break after the
	// opening delimiter and before the closing one.
	Wrap bool

	// Prefix starts every line inside an element of a multiline list, after
	// the indentation (e.g. "> " for a block quote).
	Prefix string
}

// Glue returns the text between two multiline elements whose lines start
// with lead. Blank lines in between get lead without trailing spaces.
func (s ListStyle) Glue(lead string) string {
	blank := strings.TrimRight(lead, " \t")
	return s.Separator + strings.Repeat("\n"+blank, max(s.Breaks, 1)-1) + "\n" + lead
}

// Affix is the text surrounding an optional single-valued property, written
// only when the property holds a node (e.g. " else " before an else branch).
type Affix struct {
	Prefix string
	Suffix string
}

// Formatter renders detached nodes of one grammar. Implementations must be
// stateless so they can be shared between sessions.
type Formatter interface {
	// Format writes n into p.
	Format(p *Printer, n *syntax.Node) error

	// FormatAttr returns the source text of an attribute value.
	FormatAttr(n *syntax.Node, prop syntax.PropertyID, value any) (string, error)

	// ListStyle returns the separator convention of a list property.
	ListStyle(kind syntax.Kind, prop syntax.PropertyID) ListStyle

	// Affix returns the text around an optional single-valued property.
	Affix(kind syntax.Kind, prop syntax.PropertyID) Affix
}
