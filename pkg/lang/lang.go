// Package lang lists the language bindings available to the CLI and to
// edit scripts. A binding couples a parser, a fragment parser for client
// supplied snippets, and the formatter that renders new nodes.
package lang

import (
	"errors"
	"fmt"
	"slices"

	"github.com/yaklabco/astrewrite/pkg/format"
	"github.com/yaklabco/astrewrite/pkg/lang/curly"
	"github.com/yaklabco/astrewrite/pkg/lang/markdown"
	"github.com/yaklabco/astrewrite/pkg/langdetect"
	"github.com/yaklabco/astrewrite/pkg/syntax"
)

// ErrUnknownLanguage is returned when no binding matches a name or a file.
var ErrUnknownLanguage = errors.New("unknown language")

// Binding is one language the engine can rewrite.
type Binding struct {
	// Name is the binding's identifier, e.g. "curly".
	Name string

	// Parse parses a complete file into a sealed tree.
	Parse func(path string, content []byte) (*syntax.Tree, error)

	// ParseFragment parses a snippet into a detached node.
	ParseFragment func(src string) (*syntax.Node, error)

	// Formatter renders new nodes of the binding's grammar.
	Formatter format.Formatter

	// Grammar describes the node kinds the parser produces.
	Grammar *syntax.Grammar
}

//nolint:gochecknoglobals // Read-only binding table
var bindings = []Binding{
	{
		Name:          langdetect.Curly,
		Parse:         curly.Parse,
		ParseFragment: curly.ParseFragment,
		Formatter:     curly.NewFormatter(),
		Grammar:       curly.Grammar,
	},
	{
		Name:          langdetect.Markdown,
		Parse:         markdown.Parse,
		ParseFragment: markdown.ParseFragment,
		Formatter:     markdown.NewFormatter(),
		Grammar:       markdown.Grammar,
	},
}

// Lookup returns the binding called name.
func Lookup(name string) (Binding, error) {
	i := slices.IndexFunc(bindings, func(b Binding) bool { return b.Name == name })
	if i < 0 {
		return Binding{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownLanguage, name, Names())
	}
	return bindings[i], nil
}

// ForFile returns the binding for a file. A non-empty override wins over
// detection.
func ForFile(path string, content []byte, override string) (Binding, error) {
	if override != "" {
		return Lookup(override)
	}
	name := langdetect.Detect(path, content)
	if name == "" {
		return Binding{}, fmt.Errorf("%s: %w", path, ErrUnknownLanguage)
	}
	return Lookup(name)
}

// Names returns the names of all bindings.
func Names() []string {
	names := make([]string, len(bindings))
	for i, b := range bindings {
		names[i] = b.Name
	}
	return names
}
