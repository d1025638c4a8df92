package markdown

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/astrewrite/pkg/syntax"
)

// ErrFragment is returned when a fragment does not hold exactly one block.
var ErrFragment = errors.New("markdown fragment must hold exactly one block")

// Parser turns CommonMark documents into syntax trees.
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a CommonMark parser.
func NewParser() *Parser {
	return &Parser{md: goldmark.New()}
}

//nolint:gochecknoglobals // Stateless parser shared by Parse and ParseFragment
var defaultParser = NewParser()

// Parse parses a complete document with the default parser.
func Parse(path string, content []byte) (*syntax.Tree, error) {
	return defaultParser.Parse(path, content)
}

// Parse converts raw Markdown into a sealed tree.
//
// goldmark accepts any input, so errors only arise when a block cannot be
// placed in the source, which indicates a construct the mapper does not know.
func (p *Parser) Parse(path string, content []byte) (*syntax.Tree, error) {
	tree := syntax.NewTree(path, content, Grammar)
	doc := p.md.Parser().Parse(text.NewReader(content))

	m := &mapper{tree: tree, src: content}
	root, err := m.document(doc)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", displayPath(path), err)
	}
	if err := tree.Seal(root); err != nil {
		return nil, err
	}
	return tree, nil
}

// ParseFragment parses a single block and returns it detached. A fragment
// holding a list with one item, such as "- text", yields the item itself so
// it can be inserted into an existing list; build a one-item list with List.
func ParseFragment(src string) (*syntax.Node, error) {
	tree, err := Parse("", []byte(src))
	if err != nil {
		return nil, err
	}
	blocks := tree.Root.List(DocumentBlocks)
	if len(blocks) != 1 {
		return nil, fmt.Errorf("%w, found %d", ErrFragment, len(blocks))
	}
	n := blocks[0]
	if items := n.List(ListItems); n.Kind() == KindList && len(items) == 1 {
		n = items[0]
	}
	return syntax.Detach(n), nil
}

func displayPath(path string) string {
	if path == "" {
		return "<input>"
	}
	return path
}

// mapper converts a goldmark AST into syntax nodes. goldmark records the
// content lines of leaf blocks but not where their markers are, so block
// starts are recovered by scanning back from the first content line, or
// forward from the end of the previous block when a block has no content.
type mapper struct {
	tree *syntax.Tree
	src  []byte

	// pos is the end of the last mapped block or container marker.
	pos int

	// quote is the block quote depth at pos.
	quote int
}

func (m *mapper) document(doc ast.Node) (*syntax.Node, error) {
	blocks, err := m.blocks(doc)
	if err != nil {
		return nil, err
	}
	all := syntax.Range{Start: 0, End: len(m.src)}
	return m.tree.NewNode(KindDocument, all).
		SetList(DocumentBlocks, blocks...).
		SetSpan(DocumentBlocks, all), nil
}

// blocks maps the children of a container. Comment blocks become trivia.
func (m *mapper) blocks(parent ast.Node) ([]*syntax.Node, error) {
	var out []*syntax.Node
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if h, ok := c.(*ast.HTMLBlock); ok && h.HTMLBlockType == ast.HTMLBlockType2 {
			r := m.htmlRange(h)
			m.tree.AddComment(r)
			m.pos = r.End
			continue
		}
		n, err := m.block(c)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
		m.pos = n.Range().End
	}
	return out, nil
}

func (m *mapper) block(n ast.Node) (*syntax.Node, error) {
	switch n := n.(type) {
	case *ast.Heading:
		return m.heading(n), nil
	case *ast.Paragraph, *ast.TextBlock:
		return m.paragraph(n)
	case *ast.List:
		return m.list(n)
	case *ast.FencedCodeBlock:
		return m.fenced(n), nil
	case *ast.CodeBlock:
		return m.indented(n)
	case *ast.Blockquote:
		return m.blockquote(n)
	case *ast.ThematicBreak:
		start := m.skip()
		return m.tree.NewNode(KindBreak, syntax.Range{Start: start, End: m.lineEnd(start)}), nil
	case *ast.HTMLBlock:
		r := m.htmlRange(n)
		return m.tree.NewNode(KindHTML, r).
			SetAttr(HTMLRaw, string(m.tree.Slice(r))).
			SetSpan(HTMLRaw, r), nil
	default:
		return nil, fmt.Errorf("unsupported block %s at offset %d", n.Kind(), m.skip())
	}
}

func (m *mapper) heading(h *ast.Heading) *syntax.Node {
	start := m.start(h)
	lines := h.Lines()

	if m.src[start] == '#' {
		marker := syntax.Range{Start: start, End: m.run(start, '#')}
		textSpan := syntax.Range{Start: marker.End, End: marker.End}
		if lines.Len() > 0 {
			seg := lines.At(0)
			textSpan = syntax.Range{Start: seg.Start, End: m.trimEnd(seg.Stop, seg.Start)}
		}
		return m.tree.NewNode(KindHeading, syntax.Range{Start: start, End: max(m.lineEnd(start), textSpan.End)}).
			SetAttr(HeadingLevel, h.Level).
			SetSpan(HeadingLevel, marker).
			SetAttr(HeadingText, string(m.tree.Slice(textSpan))).
			SetSpan(HeadingText, textSpan)
	}

	// Setext heading: the level lives in the underline.
	textEnd := m.trimEnd(lines.At(lines.Len()-1).Stop, start)
	u := m.tree.NextLineStart(textEnd)
	for u < len(m.src) && (isHSpace(m.src[u]) || m.src[u] == '>') {
		u++
	}
	underline := syntax.Range{Start: u, End: m.run(u, m.src[min(u, len(m.src)-1)])}
	return m.tree.NewNode(KindHeading, syntax.Range{Start: start, End: max(underline.End, m.lineEnd(u))}).
		SetAttr(HeadingLevel, h.Level).
		SetSpan(HeadingLevel, underline).
		SetAttr(HeadingText, m.joinLines(lines)).
		SetSpan(HeadingText, syntax.Range{Start: start, End: textEnd})
}

func (m *mapper) paragraph(p ast.Node) (*syntax.Node, error) {
	lines := p.Lines()
	if lines.Len() == 0 {
		return nil, fmt.Errorf("paragraph without lines at offset %d", m.skip())
	}
	start := m.skipHSpace(lines.At(0).Start)
	r := syntax.Range{Start: start, End: m.trimEnd(lines.At(lines.Len()-1).Stop, start)}
	return m.tree.NewNode(KindParagraph, r).
		SetAttr(ParagraphText, m.joinLines(lines)).
		SetSpan(ParagraphText, r), nil
}

func (m *mapper) list(l *ast.List) (*syntax.Node, error) {
	var items []*syntax.Node
	for c := l.FirstChild(); c != nil; c = c.NextSibling() {
		li, ok := c.(*ast.ListItem)
		if !ok {
			return nil, fmt.Errorf("unexpected %s in list", c.Kind())
		}
		item, err := m.item(li)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		m.pos = item.Range().End
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("empty list at offset %d", m.skip())
	}
	r := syntax.Range{Start: items[0].Range().Start, End: items[len(items)-1].Range().End}
	return m.tree.NewNode(KindList, r).
		SetList(ListItems, items...).
		SetSpan(ListItems, r), nil
}

func (m *mapper) item(li *ast.ListItem) (*syntax.Node, error) {
	start := m.start(li)
	markerEnd, ok := m.markerEnd(start)
	if !ok {
		return nil, fmt.Errorf("list item at offset %d has no marker", start)
	}
	m.pos = markerEnd

	blocks, err := m.blocks(li)
	if err != nil {
		return nil, err
	}
	span := syntax.Range{Start: markerEnd, End: markerEnd}
	if len(blocks) > 0 {
		span = syntax.Range{Start: blocks[0].Range().Start, End: blocks[len(blocks)-1].Range().End}
	}
	return m.tree.NewNode(KindItem, syntax.Range{Start: start, End: span.End}).
		SetAttr(ItemMarker, string(m.src[start:markerEnd])).
		SetSpan(ItemMarker, syntax.Range{Start: start, End: markerEnd}).
		SetList(ItemBlocks, blocks...).
		SetSpan(ItemBlocks, span), nil
}

func (m *mapper) blockquote(bq *ast.Blockquote) (*syntax.Node, error) {
	start := m.start(bq)
	if m.src[start] != '>' {
		return nil, fmt.Errorf("block quote at offset %d has no marker", start)
	}
	m.pos = start + 1
	m.quote++
	blocks, err := m.blocks(bq)
	m.quote--
	if err != nil {
		return nil, err
	}

	span := syntax.Range{Start: start + 1, End: start + 1}
	if len(blocks) > 0 {
		span = syntax.Range{Start: blocks[0].Range().Start, End: blocks[len(blocks)-1].Range().End}
	}
	return m.tree.NewNode(KindQuote, syntax.Range{Start: start, End: span.End}).
		SetList(QuoteBlocks, blocks...).
		SetSpan(QuoteBlocks, span), nil
}

func (m *mapper) fenced(fc *ast.FencedCodeBlock) *syntax.Node {
	start := m.start(fc)
	fence := m.src[start]
	fenceEnd := m.run(start, fence)

	info := syntax.Range{Start: fenceEnd, End: fenceEnd}
	if fc.Info != nil {
		info = syntax.Range{Start: fc.Info.Segment.Start, End: fc.Info.Segment.Stop}
	}

	lines := fc.Lines()
	bodyStart := m.tree.NextLineStart(start)
	bodyEnd := bodyStart
	var body strings.Builder
	if lines.Len() > 0 {
		bodyStart = lines.At(0).Start
		bodyEnd = lines.At(lines.Len() - 1).Stop
		for i := range lines.Len() {
			seg := lines.At(i)
			body.Write(seg.Value(m.src))
		}
	}

	end := max(m.lineEnd(start), info.End)
	closed := false
	if bodyEnd < len(m.src) {
		c := bodyEnd
		for c < len(m.src) && (isHSpace(m.src[c]) || m.src[c] == '>') {
			c++
		}
		if r := m.run(c, fence); r-c >= fenceEnd-start {
			end, closed = max(r, m.lineEnd(c)), true
		}
	}
	if !closed {
		if lines.Len() > 0 {
			end = max(end, m.trimEnd(bodyEnd, bodyStart))
		}
		bodyEnd = min(bodyEnd, end)
		bodyStart = min(bodyStart, bodyEnd)
	}

	return m.tree.NewNode(KindFencedCode, syntax.Range{Start: start, End: end}).
		SetAttr(FencedInfo, string(m.tree.Slice(info))).
		SetSpan(FencedInfo, info).
		SetAttr(FencedBody, body.String()).
		SetSpan(FencedBody, syntax.Range{Start: bodyStart, End: bodyEnd})
}

func (m *mapper) indented(cb *ast.CodeBlock) (*syntax.Node, error) {
	lines := cb.Lines()
	if lines.Len() == 0 {
		return nil, fmt.Errorf("code block without lines at offset %d", m.skip())
	}
	start := lines.At(0).Start
	r := syntax.Range{Start: start, End: m.trimEnd(lines.At(lines.Len()-1).Stop, start)}

	var body strings.Builder
	for i := range lines.Len() {
		seg := lines.At(i)
		body.Write(seg.Value(m.src))
	}
	return m.tree.NewNode(KindIndentedCode, r).
		SetAttr(IndentedBody, strings.TrimRight(body.String(), " \t\r\n")).
		SetSpan(IndentedBody, r), nil
}

func (m *mapper) htmlRange(h *ast.HTMLBlock) syntax.Range {
	start := m.start(h)
	stop := start
	if lines := h.Lines(); lines.Len() > 0 {
		stop = lines.At(lines.Len() - 1).Stop
	}
	if h.HasClosure() {
		stop = max(stop, h.ClosureLine.Stop)
	}
	return syntax.Range{Start: start, End: max(m.trimEnd(stop, start), start)}
}

// start returns the first byte of a block, falling back to the first
// non-blank byte after the previous block when the block has no content.
func (m *mapper) start(n ast.Node) int {
	if s, ok := m.lead(n); ok && s >= m.pos {
		return s
	}
	return m.skip()
}

// lead locates the start of n from the content lines it or its first
// descendant carries.
func (m *mapper) lead(n ast.Node) (int, bool) {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock, *ast.CodeBlock, *ast.HTMLBlock:
		if lines := n.Lines(); lines.Len() > 0 {
			return m.skipHSpace(lines.At(0).Start), true
		}

	case *ast.Heading:
		lines := n.Lines()
		if lines.Len() == 0 {
			return 0, false
		}
		s := lines.At(0).Start
		i := m.backHSpace(s)
		j := i
		for j > 0 && m.src[j-1] == '#' {
			j--
		}
		if j < i {
			return j, true
		}
		return s, true

	case *ast.FencedCodeBlock:
		var from int
		switch {
		case n.Info != nil:
			from = n.Info.Segment.Start
		case n.Lines().Len() > 0:
			from = m.tree.LineStart(n.Lines().At(0).Start) - 1
		default:
			return 0, false
		}
		i := m.backHSpace(max(from, 0))
		j := i
		for j > 0 && (m.src[j-1] == '`' || m.src[j-1] == '~') {
			j--
		}
		if j < i {
			return j, true
		}

	case *ast.List:
		if first := n.FirstChild(); first != nil {
			return m.lead(first)
		}

	case *ast.ListItem:
		if first := n.FirstChild(); first != nil {
			if s, ok := m.lead(first); ok {
				return m.markerBefore(s)
			}
		}

	case *ast.Blockquote:
		if first := n.FirstChild(); first != nil {
			if s, ok := m.lead(first); ok {
				if i := m.backHSpace(s); i > 0 && m.src[i-1] == '>' {
					return i - 1, true
				}
			}
		}
	}
	return 0, false
}

// markerBefore finds the list marker preceding the first content of an item.
func (m *mapper) markerBefore(s int) (int, bool) {
	i := s
	for i > 0 && isSpace(m.src[i-1]) {
		i--
	}
	if i == 0 {
		return 0, false
	}
	switch c := m.src[i-1]; {
	case c == '-' || c == '+' || c == '*':
		return i - 1, true
	case c == '.' || c == ')':
		j := i - 1
		for j > 0 && isDigit(m.src[j-1]) {
			j--
		}
		if j < i-1 {
			return j, true
		}
	}
	return 0, false
}

// markerEnd returns the end of the list marker starting at start.
func (m *mapper) markerEnd(start int) (int, bool) {
	if start >= len(m.src) {
		return 0, false
	}
	switch c := m.src[start]; {
	case c == '-' || c == '+' || c == '*':
		return start + 1, true
	case isDigit(c):
		i := start
		for i < len(m.src) && isDigit(m.src[i]) {
			i++
		}
		if i < len(m.src) && (m.src[i] == '.' || m.src[i] == ')') {
			return i + 1, true
		}
	}
	return 0, false
}

// skip returns the first byte after pos that is neither blank nor the
// block quote prefix of a following line.
func (m *mapper) skip() int {
	i, quotes, crossed := m.pos, 0, false
	for i < len(m.src) {
		switch c := m.src[i]; {
		case isHSpace(c) || c == '\r':
		case c == '\n':
			crossed, quotes = true, 0
		case c == '>' && crossed && quotes < m.quote:
			quotes++
		default:
			return i
		}
		i++
	}
	return i
}

func (m *mapper) run(i int, c byte) int {
	for i < len(m.src) && m.src[i] == c {
		i++
	}
	return i
}

// lineEnd returns the end of the line holding offset, without trailing blanks.
func (m *mapper) lineEnd(offset int) int {
	if offset >= len(m.src) {
		return len(m.src)
	}
	return m.trimEnd(m.tree.LineEnd(offset), offset)
}

func (m *mapper) trimEnd(i, floor int) int {
	for i > floor && isSpace(m.src[i-1]) {
		i--
	}
	return i
}

func (m *mapper) skipHSpace(i int) int {
	for i < len(m.src) && isHSpace(m.src[i]) {
		i++
	}
	return i
}

func (m *mapper) backHSpace(i int) int {
	for i > 0 && isHSpace(m.src[i-1]) {
		i--
	}
	return i
}

// joinLines returns the text of content lines without their indentation.
func (m *mapper) joinLines(lines *text.Segments) string {
	parts := make([]string, lines.Len())
	for i := range lines.Len() {
		seg := lines.At(i)
		parts[i] = strings.TrimLeft(strings.TrimRight(string(seg.Value(m.src)), "\r\n"), " \t")
	}
	return strings.TrimRight(strings.Join(parts, "\n"), " \t")
}

func isHSpace(c byte) bool { return c == ' ' || c == '\t' }

func isSpace(c byte) bool { return isHSpace(c) || c == '\r' || c == '\n' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
