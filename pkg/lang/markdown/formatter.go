package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yaklabco/astrewrite/pkg/format"
	"github.com/yaklabco/astrewrite/pkg/syntax"
)

// Formatter renders Markdown blocks. New lists use the marker of each item,
// new code blocks use backtick fences unless the body contains one.
type Formatter struct{}

var _ format.Formatter = Formatter{}

// NewFormatter returns the Markdown formatter.
func NewFormatter() Formatter { return Formatter{} }

//nolint:gochecknoglobals // Read-only marker pattern
var markerPattern = regexp.MustCompile(`^([-+*]|[0-9]{1,9}[.)])$`)

// Format implements format.Formatter.
func (f Formatter) Format(p *format.Printer, n *syntax.Node) error {
	switch n.Kind() {
	case KindDocument:
		p.List(n, DocumentBlocks)
		if len(n.List(DocumentBlocks)) > 0 {
			p.Newline()
		}

	case KindHeading:
		p.Attr(n, HeadingLevel)
		if text, _ := n.Attr(HeadingText).(string); text != "" {
			p.Write(" ")
			p.Attr(n, HeadingText)
		}

	case KindParagraph:
		return f.lines(p, n, ParagraphText, "")

	case KindList:
		p.List(n, ListItems)

	case KindItem:
		p.Attr(n, ItemMarker)
		if len(n.List(ItemBlocks)) > 0 {
			p.Write(" ")
			p.Indent()
			p.List(n, ItemBlocks)
			p.Dedent()
		}

	case KindFencedCode:
		body, err := stringAttr(n, FencedBody)
		if err != nil {
			return err
		}
		fence := "```"
		if strings.Contains(body, "```") {
			fence = "~~~"
		}
		p.Write(fence)
		p.Attr(n, FencedInfo)
		p.Newline()
		for line := range strings.Lines(body) {
			if line = strings.TrimSuffix(line, "\n"); line != "" {
				p.Write(line)
			}
			p.Newline()
		}
		p.Write(fence)

	case KindIndentedCode:
		return f.lines(p, n, IndentedBody, "    ")

	case KindQuote:
		p.Write("> ")
		p.PushPrefix("> ")
		p.List(n, QuoteBlocks)
		p.PopPrefix()

	case KindBreak:
		p.Write("---")

	case KindHTML:
		return f.lines(p, n, HTMLRaw, "")

	default:
		return fmt.Errorf("unknown node kind %d", n.Kind())
	}
	return p.Err()
}

// lines writes a multi-line attribute one line at a time so every line
// gets the printer's indentation.
func (f Formatter) lines(p *format.Printer, n *syntax.Node, prop syntax.PropertyID, lead string) error {
	text, err := stringAttr(n, prop)
	if err != nil {
		return err
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			p.Newline()
		}
		if line != "" {
			p.Write(lead + line)
		}
	}
	return p.Err()
}

// FormatAttr implements format.Formatter. Values patched into an original
// node keep the continuation prefix of the lines they replace.
func (f Formatter) FormatAttr(n *syntax.Node, prop syntax.PropertyID, value any) (string, error) {
	if n.Kind() == KindHeading && prop == HeadingLevel {
		return headingMarker(n, value)
	}

	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s.%s: unsupported value %T", n.KindName(), n.PropName(prop), value)
	}

	switch {
	case n.Kind() == KindItem && prop == ItemMarker:
		if !markerPattern.MatchString(s) {
			return "", fmt.Errorf("invalid list marker %q", s)
		}
		return s, nil

	case n.Kind() == KindHeading && prop == HeadingText:
		if strings.Contains(s, "\n") && !isSetext(n) {
			return "", fmt.Errorf("ATX heading text cannot span lines")
		}
		if n.IsOriginal() && s != "" && n.Span(HeadingText).IsEmpty() {
			s = " " + s
		}

	case n.Kind() == KindFencedCode && prop == FencedInfo:
		if strings.ContainsAny(s, "\n`") {
			return "", fmt.Errorf("invalid info string %q", s)
		}
		return s, nil

	case n.Kind() == KindFencedCode && prop == FencedBody:
		if s != "" && !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		if n.IsOriginal() && n.Span(FencedBody).IsEmpty() {
			// The span sits at the start of the closing fence line.
			tree := n.Tree()
			fence := n.Span(FencedBody).Start
			for fence < len(tree.Content) && (isHSpace(tree.Content[fence]) || tree.Content[fence] == '>') {
				fence++
			}
			lead := continuation(tree, fence)
			var b strings.Builder
			for line := range strings.Lines(s) {
				b.WriteString(lead + line)
			}
			return b.String(), nil
		}
	}

	if !n.IsOriginal() || !strings.Contains(s, "\n") {
		return s, nil
	}
	lead := continuation(n.Tree(), n.Span(prop).Start)
	if n.Kind() == KindIndentedCode && !strings.HasSuffix(lead, "    ") {
		lead += "    "
	}
	body := strings.TrimSuffix(s, "\n")
	return strings.ReplaceAll(body, "\n", "\n"+lead) + s[len(body):], nil
}

// ListStyle implements format.Formatter.
func (f Formatter) ListStyle(kind syntax.Kind, prop syntax.PropertyID) format.ListStyle {
	switch {
	case kind == KindDocument && prop == DocumentBlocks:
		return format.ListStyle{Multiline: true, Breaks: 2}
	case kind == KindList && prop == ListItems:
		return format.ListStyle{Multiline: true, Breaks: 1}
	case kind == KindItem && prop == ItemBlocks:
		return format.ListStyle{Multiline: true, Breaks: 1, Indented: true}
	case kind == KindQuote && prop == QuoteBlocks:
		return format.ListStyle{Multiline: true, Breaks: 2, Prefix: "> "}
	default:
		return format.ListStyle{Multiline: true, Breaks: 1}
	}
}

// Affix implements format.Formatter. Markdown has no optional single slots.
func (f Formatter) Affix(syntax.Kind, syntax.PropertyID) format.Affix {
	return format.Affix{}
}

func headingMarker(n *syntax.Node, value any) (string, error) {
	level, ok := value.(int)
	if !ok {
		return "", fmt.Errorf("heading level must be an int, got %T", value)
	}
	if isSetext(n) {
		span := n.Span(HeadingLevel)
		switch level {
		case 1:
			return strings.Repeat("=", span.Len()), nil
		case 2:
			return strings.Repeat("-", span.Len()), nil
		default:
			return "", fmt.Errorf("setext heading cannot have level %d", level)
		}
	}
	if level < 1 || level > 6 {
		return "", fmt.Errorf("heading level %d out of range", level)
	}
	return strings.Repeat("#", level), nil
}

func isSetext(n *syntax.Node) bool {
	if !n.IsOriginal() {
		return false
	}
	marker := n.Tree().Slice(n.Span(HeadingLevel))
	return len(marker) > 0 && (marker[0] == '=' || marker[0] == '-')
}

// continuation returns what a new line needs before it to continue the
// block whose text starts at offset: block quote markers are kept, list
// markers and other text become spaces.
func continuation(tree *syntax.Tree, offset int) string {
	line := tree.Content[tree.LineStart(offset):offset]
	lead := make([]byte, len(line))
	for i, c := range line {
		switch c {
		case '>', '\t':
			lead[i] = c
		default:
			lead[i] = ' '
		}
	}
	return string(lead)
}

func stringAttr(n *syntax.Node, prop syntax.PropertyID) (string, error) {
	switch v := n.Attr(prop).(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("%s.%s must be a string, got %T", n.KindName(), n.PropName(prop), v)
	}
}
