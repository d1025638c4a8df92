// Package markdown binds block-level Markdown to the rewrite engine.
//
// Parsing is delegated to goldmark; the resulting AST is mapped onto a
// syntax.Tree whose nodes are the blocks of the document (headings,
// paragraphs, lists and their items, code blocks, block quotes, thematic
// breaks and raw HTML). Inline markup is not modelled: a paragraph or a
// heading carries its text as a single attribute. HTML comments standing
// on their own are trivia, so they survive edits to the blocks around them.
package markdown

import "github.com/yaklabco/astrewrite/pkg/syntax"

// Node kinds.
const (
	KindDocument syntax.Kind = iota
	KindHeading
	KindParagraph
	KindList
	KindItem
	KindFencedCode
	KindIndentedCode
	KindQuote
	KindBreak
	KindHTML
)

// Document properties.
const (
	DocumentBlocks syntax.PropertyID = iota
)

// Heading properties. The level is an int; its span is the "#" run of an
// ATX heading or the underline of a setext heading.
const (
	HeadingLevel syntax.PropertyID = iota
	HeadingText
)

// Paragraph properties.
const (
	ParagraphText syntax.PropertyID = iota
)

// List properties.
const (
	ListItems syntax.PropertyID = iota
)

// Item properties. The marker is the bullet or the number with its
// delimiter, e.g. "-" or "3.".
const (
	ItemMarker syntax.PropertyID = iota
	ItemBlocks
)

// FencedCode properties.
const (
	FencedInfo syntax.PropertyID = iota
	FencedBody
)

// IndentedCode properties.
const (
	IndentedBody syntax.PropertyID = iota
)

// Quote properties.
const (
	QuoteBlocks syntax.PropertyID = iota
)

// HTML properties.
const (
	HTMLRaw syntax.PropertyID = iota
)

func list(name string) syntax.PropSpec { return syntax.PropSpec{Name: name, Type: syntax.PropList} }
func attr(name string) syntax.PropSpec { return syntax.PropSpec{Name: name, Type: syntax.PropAttr} }

// Grammar is the node table of block-level Markdown.
//
//nolint:gochecknoglobals // Read-only grammar table shared by parser and formatter
var Grammar = &syntax.Grammar{
	Name: "markdown",
	Kinds: []syntax.KindSpec{
		KindDocument:     {Name: "document", Props: []syntax.PropSpec{list("blocks")}},
		KindHeading:      {Name: "heading", Props: []syntax.PropSpec{attr("level"), attr("text")}},
		KindParagraph:    {Name: "paragraph", Props: []syntax.PropSpec{attr("text")}},
		KindList:         {Name: "list", Props: []syntax.PropSpec{list("items")}},
		KindItem:         {Name: "item", Props: []syntax.PropSpec{attr("marker"), list("blocks")}},
		KindFencedCode:   {Name: "fenced_code", Props: []syntax.PropSpec{attr("info"), attr("body")}},
		KindIndentedCode: {Name: "indented_code", Props: []syntax.PropSpec{attr("body")}},
		KindQuote:        {Name: "quote", Props: []syntax.PropSpec{list("blocks")}},
		KindBreak:        {Name: "break"},
		KindHTML:         {Name: "html", Props: []syntax.PropSpec{attr("raw")}},
	},
}

// Heading returns a detached ATX heading.
func Heading(level int, text string) *syntax.Node {
	return syntax.New(Grammar, KindHeading).SetAttr(HeadingLevel, level).SetAttr(HeadingText, text)
}

// Paragraph returns a detached paragraph. Lines are separated by "\n".
func Paragraph(text string) *syntax.Node {
	return syntax.New(Grammar, KindParagraph).SetAttr(ParagraphText, text)
}

// List returns a detached list holding items.
func List(items ...*syntax.Node) *syntax.Node {
	return syntax.New(Grammar, KindList).SetList(ListItems, items...)
}

// Item returns a detached list item.
func Item(marker string, blocks ...*syntax.Node) *syntax.Node {
	return syntax.New(Grammar, KindItem).SetAttr(ItemMarker, marker).SetList(ItemBlocks, blocks...)
}

// Bullets returns a detached "-" list with one single-paragraph item per text.
func Bullets(texts ...string) *syntax.Node {
	items := make([]*syntax.Node, len(texts))
	for i, t := range texts {
		items[i] = Item("-", Paragraph(t))
	}
	return List(items...)
}

// FencedCode returns a detached fenced code block. A non-empty body should
// end with a line break.
func FencedCode(info, body string) *syntax.Node {
	return syntax.New(Grammar, KindFencedCode).SetAttr(FencedInfo, info).SetAttr(FencedBody, body)
}

// IndentedCode returns a detached indented code block.
func IndentedCode(body string) *syntax.Node {
	return syntax.New(Grammar, KindIndentedCode).SetAttr(IndentedBody, body)
}

// Quote returns a detached block quote.
func Quote(blocks ...*syntax.Node) *syntax.Node {
	return syntax.New(Grammar, KindQuote).SetList(QuoteBlocks, blocks...)
}

// Break returns a detached thematic break.
func Break() *syntax.Node {
	return syntax.New(Grammar, KindBreak)
}

// HTML returns a detached raw HTML block.
func HTML(raw string) *syntax.Node {
	return syntax.New(Grammar, KindHTML).SetAttr(HTMLRaw, raw)
}
