// Package langdetect picks the language binding for a source file.
// It looks at the file extension first and falls back to go-enry's file
// name tables and a few content patterns.
package langdetect

import (
	"bytes"
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Binding names returned by Detect.
const (
	Curly    = "curly"
	Markdown = "markdown"
)

//nolint:gochecknoglobals // Read-only extension table
var extensions = map[string]string{
	".cy":       Curly,
	".curly":    Curly,
	".md":       Markdown,
	".markdown": Markdown,
	".mdown":    Markdown,
	".mkd":      Markdown,
}

//nolint:gochecknoglobals // Compiled once
var (
	curlyDecl    = regexp.MustCompile(`^(?:[A-Za-z_]\w*\s+)*func\s+[A-Za-z_]\w*\s*\(`)
	markdownLine = regexp.MustCompile(`(?m)^(?:#{1,6}\s|[-*+]\s|\d+[.)]\s|>\s?|` + "```" + `)`)
)

// Detect returns the binding name for a file, or "" when no binding fits.
func Detect(path string, content []byte) string {
	// Strategy 1: known extensions.
	if lang, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}

	// Strategy 2: go-enry, which knows more Markdown file names and extensions.
	if base := filepath.Base(path); path != "" {
		if lang, safe := enry.GetLanguageByFilename(base); safe && normalize(lang) != "" {
			return normalize(lang)
		}
		if lang, safe := enry.GetLanguageByExtension(base); safe && normalize(lang) != "" {
			return normalize(lang)
		}
	}

	// Strategy 3: content patterns.
	return detectByPattern(content)
}

// Extensions returns the file extensions Detect maps directly, sorted.
func Extensions() []string {
	return slices.Sorted(maps.Keys(extensions))
}

// Supported reports whether name is a binding Detect can return.
func Supported(name string) bool {
	return name == Curly || name == Markdown
}

// detectByPattern checks for patterns that are highly indicative.
func detectByPattern(content []byte) string {
	if curlyDecl.Match(skipComments(content)) {
		return Curly
	}
	if markdownLine.Match(content) {
		return Markdown
	}
	return ""
}

// skipComments drops leading blanks and // or /* */ comments.
func skipComments(content []byte) []byte {
	for {
		content = bytes.TrimLeft(content, " \t\r\n")
		switch {
		case bytes.HasPrefix(content, []byte("//")):
			i := bytes.IndexByte(content, '\n')
			if i < 0 {
				return nil
			}
			content = content[i+1:]
		case bytes.HasPrefix(content, []byte("/*")):
			i := bytes.Index(content, []byte("*/"))
			if i < 0 {
				return nil
			}
			content = content[i+2:]
		default:
			return content
		}
	}
}

// normalize converts go-enry language names to binding names.
func normalize(lang string) string {
	if lang == "Markdown" {
		return Markdown
	}
	return ""
}
