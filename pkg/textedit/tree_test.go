package textedit_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astrewrite/pkg/textedit"
)

func TestTreeApply(t *testing.T) {
	t.Parallel()

	content := []byte("alpha beta gamma")
	tree := textedit.NewTree(len(content))

	require.NoError(t, tree.Add(textedit.Replace(6, 4, "BETA")))
	require.NoError(t, tree.Add(textedit.Insert(0, ">> ")))
	require.NoError(t, tree.Add(textedit.Delete(10, 6)))

	out, err := tree.Apply(content)
	require.NoError(t, err)
	assert.Equal(t, ">> alpha BETA", string(out))
}

func TestTreeEmptyIsNoop(t *testing.T) {
	t.Parallel()

	content := []byte("unchanged\n")
	tree := textedit.NewTree(len(content))
	assert.True(t, tree.IsEmpty())

	require.NoError(t, tree.Add(textedit.Multi(0, 9).WithGroup("all")))
	require.NoError(t, tree.Add(textedit.Insert(3, "")))
	assert.True(t, tree.IsEmpty())

	out, err := tree.Apply(content)
	require.NoError(t, err)
	assert.Equal(t, content, out)
	assert.Equal(t, textedit.Span{Offset: 0, Length: 9}, tree.Layout()["all"])
}

func TestTreeNesting(t *testing.T) {
	t.Parallel()

	tree := textedit.NewTree(20)
	require.NoError(t, tree.Add(textedit.Replace(4, 2, "x")))
	require.NoError(t, tree.Add(textedit.Replace(12, 1, "y")))
	// The container adopts the first replacement.
	require.NoError(t, tree.Add(textedit.Multi(2, 6).WithGroup("outer")))
	// The insertion descends into the container.
	require.NoError(t, tree.Add(textedit.Insert(7, "z")))
	// An insertion at the container's start stays beside it.
	require.NoError(t, tree.Add(textedit.Insert(2, "w")))

	want := "multi[0:20)\n" +
		"  replace[2:2)\"w\"\n" +
		"  multi[2:8) #outer\n" +
		"    replace[4:6)\"x\"\n" +
		"    replace[7:7)\"z\"\n" +
		"  replace[12:13)\"y\"\n"
	if diff := cmp.Diff(want, tree.Dump()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeRejectsInvalidEdits(t *testing.T) {
	t.Parallel()

	tree := textedit.NewTree(10)
	require.NoError(t, tree.Add(textedit.Replace(2, 4, "abc")))

	var overlap *textedit.OverlapError
	err := tree.Add(textedit.Replace(5, 3, "q"))
	require.ErrorAs(t, err, &overlap)
	assert.Equal(t, textedit.Span{Offset: 2, Length: 4}, overlap.First)

	err = tree.Add(textedit.Insert(3, "inside"))
	require.ErrorAs(t, err, &overlap)

	var rerr *textedit.RangeError
	err = tree.Add(textedit.Replace(8, 5, ""))
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Error(), "child outside parent")

	leaf := textedit.Replace(0, 2, "")
	err = leaf.Add(textedit.Insert(1, "x"))
	require.ErrorAs(t, err, &rerr)

	_, err = tree.Apply([]byte("short"))
	require.ErrorAs(t, err, &rerr)
}

func TestTreeZeroLengthOrdering(t *testing.T) {
	t.Parallel()

	content := []byte("0123456789")
	tree := textedit.NewTree(len(content))
	require.NoError(t, tree.Add(textedit.Replace(5, 2, "R")))
	require.NoError(t, tree.Add(textedit.Insert(5, "a")))
	require.NoError(t, tree.Add(textedit.Insert(5, "b")))
	require.NoError(t, tree.Add(textedit.Insert(7, "c")))

	out, err := tree.Apply(content)
	require.NoError(t, err)
	assert.Equal(t, "01234abRc789", string(out))
}

func TestTreeLayout(t *testing.T) {
	t.Parallel()

	content := []byte("one two three four")
	tree := textedit.NewTree(len(content))

	// "two" is tracked and something is inserted before it.
	require.NoError(t, tree.Add(textedit.Multi(4, 3).WithGroup("two")))
	require.NoError(t, tree.Add(textedit.Insert(0, "zero ")))
	// "three" is replaced and tagged.
	require.NoError(t, tree.Add(textedit.Replace(8, 5, "THREE!").WithGroup("three")))
	// Synthesized text with a marked sub-range.
	require.NoError(t, tree.Add(textedit.Insert(18, " five six").WithMarks(textedit.Mark{Group: "six", Offset: 6, Length: 3})))
	// Edits inside the container move its end but not its start.
	require.NoError(t, tree.Add(textedit.Replace(5, 1, "WW")))

	out, err := tree.Apply(content)
	require.NoError(t, err)
	assert.Equal(t, "zero one tWWo THREE! four five six", string(out))

	layout := tree.Layout()
	want := map[string]textedit.Span{
		"two":   {Offset: 9, Length: 4},
		"three": {Offset: 14, Length: 6},
		"six":   {Offset: 31, Length: 3},
	}
	if diff := cmp.Diff(want, layout); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
	for name, span := range layout {
		assert.NotEmpty(t, string(out[span.Offset:span.End()]), name)
	}
	assert.Equal(t, "tWWo", string(out[9:13]))
	assert.Equal(t, "six", string(out[31:34]))
}

func TestTreeLayoutFirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	tree := textedit.NewTree(4)
	require.NoError(t, tree.Add(textedit.Insert(3, "bb").WithGroup("dup")))
	require.NoError(t, tree.Add(textedit.Insert(1, "a").WithGroup("dup")))

	assert.Equal(t, textedit.Span{Offset: 1, Length: 1}, tree.Layout()["dup"])
}

func TestErrorsAreTyped(t *testing.T) {
	t.Parallel()

	var err error = &textedit.OverlapError{First: textedit.Span{Offset: 1, Length: 2}, Second: textedit.Span{Offset: 2, Length: 2}}
	var overlap *textedit.OverlapError
	assert.True(t, errors.As(err, &overlap))
	assert.Equal(t, "overlapping edits: [1:3) and [2:4)", err.Error())
}
