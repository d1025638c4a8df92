package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astrewrite/pkg/syntax"
)

const (
	kindFile syntax.Kind = iota
	kindPair
	kindValue
)

const (
	propItems syntax.PropertyID = 0

	propKey   syntax.PropertyID = 0
	propValue syntax.PropertyID = 1
)

var testGrammar = &syntax.Grammar{
	Name: "pairs",
	Kinds: []syntax.KindSpec{
		kindFile:  {Name: "file", Props: []syntax.PropSpec{{Name: "items", Type: syntax.PropList}}},
		kindPair:  {Name: "pair", Props: []syntax.PropSpec{{Name: "key", Type: syntax.PropAttr}, {Name: "value", Type: syntax.PropNode}}},
		kindValue: {Name: "value"},
	},
}

// buildPairs builds a tree for "a = 1\nb = 2 # two\n".
func buildPairs(t *testing.T) *syntax.Tree {
	t.Helper()

	src := "a = 1\nb = 2 # two\n"
	tree := syntax.NewTree("pairs.txt", []byte(src), testGrammar)

	pair := func(start int) *syntax.Node {
		v := tree.NewNode(kindValue, syntax.Range{Start: start + 4, End: start + 5})
		return tree.NewNode(kindPair, syntax.Range{Start: start, End: start + 5}).
			SetAttr(propKey, src[start:start+1]).
			SetSpan(propKey, syntax.Range{Start: start, End: start + 1}).
			SetNode(propValue, v)
	}

	root := tree.NewNode(kindFile, syntax.Range{Start: 0, End: len(src)}).
		SetList(propItems, pair(0), pair(6)).
		SetSpan(propItems, syntax.Range{Start: 0, End: len(src)})
	tree.AddComment(syntax.Range{Start: 12, End: 17})
	require.NoError(t, tree.Seal(root))
	return tree
}

func TestSealLinksParents(t *testing.T) {
	t.Parallel()

	tree := buildPairs(t)
	items := tree.Root.List(propItems)
	require.Len(t, items, 2)

	for i, item := range items {
		assert.Same(t, tree.Root, item.Parent())
		assert.Equal(t, propItems, item.ParentProperty())
		assert.Equal(t, i, item.IndexInParent())
		assert.True(t, item.IsOriginal())
		assert.Same(t, item, item.Child(propValue).Parent())
	}

	assert.Equal(t, "b = 2", items[1].Text())
	assert.Equal(t, "b", items[1].Attr(propKey))
	assert.Equal(t, syntax.Range{Start: 6, End: 7}, items[1].Span(propKey))
	assert.True(t, tree.Root.IsAncestorOf(items[1].Child(propValue)))
}

func TestSealRejectsInvalidTrees(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(tree *syntax.Tree) *syntax.Node
	}{
		{
			name: "child outside parent",
			build: func(tree *syntax.Tree) *syntax.Node {
				child := tree.NewNode(kindPair, syntax.Range{Start: 0, End: 5})
				return tree.NewNode(kindFile, syntax.Range{Start: 1, End: 3}).SetList(propItems, child)
			},
		},
		{
			name: "range past content",
			build: func(tree *syntax.Tree) *syntax.Node {
				return tree.NewNode(kindFile, syntax.Range{Start: 0, End: 99})
			},
		},
		{
			name: "node used twice",
			build: func(tree *syntax.Tree) *syntax.Node {
				child := tree.NewNode(kindPair, syntax.Range{Start: 0, End: 1})
				return tree.NewNode(kindFile, syntax.Range{Start: 0, End: 5}).SetList(propItems, child, child)
			},
		},
		{
			name: "elements out of order",
			build: func(tree *syntax.Tree) *syntax.Node {
				a := tree.NewNode(kindPair, syntax.Range{Start: 2, End: 3})
				b := tree.NewNode(kindPair, syntax.Range{Start: 0, End: 1})
				return tree.NewNode(kindFile, syntax.Range{Start: 0, End: 5}).SetList(propItems, a, b)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree := syntax.NewTree("", []byte("hello"), testGrammar)
			err := tree.Seal(tt.build(tree))
			require.Error(t, err)
			assert.False(t, tree.Sealed())
		})
	}
}

func TestSealedTreePanicsOnMutation(t *testing.T) {
	t.Parallel()

	tree := buildPairs(t)
	assert.Panics(t, func() {
		tree.Root.SetList(propItems)
	})
	assert.Panics(t, func() {
		tree.NewNode(kindValue, syntax.Range{Start: 0, End: 1})
	})
}

func TestSetterRejectsWrongPropertyType(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		syntax.New(testGrammar, kindPair).SetList(propKey)
	})
	assert.Panics(t, func() {
		syntax.New(testGrammar, kindPair).SetAttr(propValue, "x")
	})
}

func TestDetachedNodes(t *testing.T) {
	t.Parallel()

	tree := buildPairs(t)
	original := tree.Root.List(propItems)[0]

	value := syntax.New(testGrammar, kindValue)
	pair := syntax.New(testGrammar, kindPair).SetAttr(propKey, "c").SetNode(propValue, value)
	file := syntax.New(testGrammar, kindFile).SetList(propItems, pair, original)

	assert.False(t, pair.IsOriginal())
	assert.Equal(t, syntax.NoRange, pair.Range())
	assert.Same(t, pair, value.Parent())
	assert.Same(t, file, pair.Parent())
	assert.Same(t, tree.Root, original.Parent(), "original nodes keep their parent")
	assert.Empty(t, pair.Text())

	ph := syntax.NewPlaceholder(original)
	assert.True(t, ph.IsPlaceholder())
	assert.Same(t, original, ph.Source())
	assert.Equal(t, 0, ph.NumProps())
	assert.Equal(t, "placeholder", ph.KindName())
}

func TestWalkOrder(t *testing.T) {
	t.Parallel()

	tree := buildPairs(t)

	var entered, left []string
	err := syntax.WalkWithContext(tree.Root,
		func(n *syntax.Node) error {
			entered = append(entered, n.String())
			return nil
		},
		func(n *syntax.Node) error {
			left = append(left, n.String())
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"file[0:18)", "pair[0:5)", "value[4:5)", "pair[6:11)", "value[10:11)",
	}, entered)
	assert.Equal(t, []string{
		"value[4:5)", "pair[0:5)", "value[10:11)", "pair[6:11)", "file[0:18)",
	}, left)

	assert.Len(t, syntax.FindByKind(tree.Root, kindValue), 2)
	first := syntax.FindFirst(tree.Root, func(n *syntax.Node) bool { return n.Kind() == kindPair })
	require.NotNil(t, first)
	assert.Equal(t, 0, first.Range().Start)
	assert.Nil(t, syntax.FindFirst(tree.Root, func(*syntax.Node) bool { return false }))
}

func TestPaths(t *testing.T) {
	t.Parallel()

	tree := buildPairs(t)
	second := tree.Root.List(propItems)[1]
	value := second.Child(propValue)

	assert.Equal(t, "/", syntax.PathOf(tree.Root))
	assert.Equal(t, "/items/1", syntax.PathOf(second))
	assert.Equal(t, "/items/1/value", syntax.PathOf(value))

	got, err := syntax.Select(tree.Root, "/items/1/value")
	require.NoError(t, err)
	assert.Same(t, value, got)

	got, err = syntax.Select(tree.Root, "/items/-1")
	require.NoError(t, err)
	assert.Same(t, second, got)

	for _, bad := range []string{"/items/7", "/nope", "/items/0/key", "items/0"} {
		_, err := syntax.Select(tree.Root, bad)
		assert.Error(t, err, bad)
	}

	owner, prop := syntax.SplitProperty("/items/0/value")
	assert.Equal(t, "/items/0", owner)
	assert.Equal(t, "value", prop)
	owner, prop = syntax.SplitProperty("/items")
	assert.Equal(t, "/", owner)
	assert.Equal(t, "items", prop)
}

func TestLineQueries(t *testing.T) {
	t.Parallel()

	tree := buildPairs(t)

	line, col := tree.LineAt(8)
	assert.Equal(t, 2, line)
	assert.Equal(t, 3, col)

	off, ok := tree.Offset(2, 1)
	require.True(t, ok)
	assert.Equal(t, 6, off)

	assert.Equal(t, 6, tree.LineStart(9))
	assert.Equal(t, 17, tree.LineEnd(9))
	assert.Equal(t, 18, tree.NextLineStart(9))
	assert.True(t, tree.StartsLine(6))
	assert.False(t, tree.StartsLine(7))
	assert.True(t, tree.EndsLine(17))
	assert.False(t, tree.EndsLine(11))

	c, ok := tree.CommentAt(13)
	require.True(t, ok)
	assert.Equal(t, syntax.Range{Start: 12, End: 17}, c)
	_, ok = tree.CommentAt(3)
	assert.False(t, ok)
	assert.Len(t, tree.CommentsIn(syntax.Range{Start: 6, End: 18}), 1)
	assert.Empty(t, tree.CommentsIn(syntax.Range{Start: 0, End: 12}))
}

func TestIndentAt(t *testing.T) {
	t.Parallel()

	tree := syntax.NewTree("", []byte("x\n  \t y\n"), testGrammar)
	assert.Empty(t, tree.IndentAt(0))
	assert.Equal(t, "  \t ", tree.IndentAt(6))
}

func TestBuildLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected []syntax.LineInfo
	}{
		{
			name:     "empty content",
			content:  "",
			expected: []syntax.LineInfo{{}},
		},
		{
			name:    "single line no newline",
			content: "hello",
			expected: []syntax.LineInfo{
				{StartOffset: 0, NewlineStart: 5, EndOffset: 5},
			},
		},
		{
			name:    "single line with CRLF",
			content: "hello\r\n",
			expected: []syntax.LineInfo{
				{StartOffset: 0, NewlineStart: 5, EndOffset: 7},
				{StartOffset: 7, NewlineStart: 7, EndOffset: 7},
			},
		},
		{
			name:    "multiple lines LF",
			content: "line1\nline2\nline3",
			expected: []syntax.LineInfo{
				{StartOffset: 0, NewlineStart: 5, EndOffset: 6},
				{StartOffset: 6, NewlineStart: 11, EndOffset: 12},
				{StartOffset: 12, NewlineStart: 17, EndOffset: 17},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, syntax.BuildLines([]byte(tt.content)))
		})
	}
}
