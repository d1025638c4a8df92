package rewrite

import (
	"bytes"
	"strings"

	"github.com/yaklabco/astrewrite/pkg/format"
	"github.com/yaklabco/astrewrite/pkg/syntax"
)

// trailingComment returns a comment that starts on the same line as offset
// with only spaces and tabs in between.
func (d *driver) trailingComment(offset int) (syntax.Range, bool) {
	t := d.tree
	limit := t.LineEnd(offset)
	next := t.SkipHSpace(offset, limit)
	if next >= limit {
		return syntax.NoRange, false
	}
	c, ok := t.CommentAt(next)
	if !ok || c.Start != next {
		return syntax.NoRange, false
	}
	return c, true
}

// attachEnd is where text inserted after el goes. In multiline lists that is
// past a comment trailing el on its line.
func (d *driver) attachEnd(el *syntax.Node, multiline bool) int {
	end := el.Range().End
	if !multiline {
		return end
	}
	for {
		c, ok := d.trailingComment(end)
		if !ok {
			return end
		}
		end = c.End
	}
}

// attachStart is where text inserted before el goes. In multiline lists
// that is before the comments sitting on their own lines directly above el,
// but not before floor.
func (d *driver) attachStart(el *syntax.Node, multiline bool, floor int) int {
	start := el.Range().Start
	if !multiline || !d.tree.StartsLine(start) {
		return start
	}
	t := d.tree
	for {
		lineStart := t.LineStart(start)
		if lineStart == 0 {
			return start
		}
		prevEnd := t.LineEnd(lineStart - 1)
		cEnd := t.BackHSpace(prevEnd, t.LineStart(lineStart-1))
		if cEnd == 0 {
			return start
		}
		c, ok := t.CommentAt(cEnd - 1)
		if !ok || c.End != cEnd || c.Start < floor || !t.StartsLine(c.Start) {
			return start
		}
		start = c.Start
	}
}

// affixRange widens r over the affix text around an optional property so
// that removing the property also removes its keyword and spacing.
func (d *driver) affixRange(r syntax.Range, affix format.Affix) syntax.Range {
	content := d.tree.Content

	if p := affix.Prefix; p != "" {
		kw := []byte(strings.TrimSpace(p))
		s := r.Start
		if endsWithSpace(p) {
			s = d.tree.BackHSpace(s, 0)
		}
		if len(kw) == 0 || bytes.HasSuffix(content[:s], kw) {
			s -= len(kw)
			if len(kw) > 0 && startsWithSpace(p) {
				s = d.tree.BackHSpace(s, 0)
			}
			r.Start = s
		}
	}

	if sfx := affix.Suffix; sfx != "" {
		kw := []byte(strings.TrimSpace(sfx))
		e := r.End
		if startsWithSpace(sfx) {
			e = d.tree.SkipHSpace(e, len(content))
		}
		if len(kw) == 0 || bytes.HasPrefix(content[e:], kw) {
			e += len(kw)
			if len(kw) > 0 && endsWithSpace(sfx) {
				e = d.tree.SkipHSpace(e, len(content))
			}
			r.End = e
		}
	}

	return r
}

func startsWithSpace(s string) bool {
	return s != "" && (s[0] == ' ' || s[0] == '\t')
}

func endsWithSpace(s string) bool {
	return s != "" && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t')
}

// commentsBetween returns the comments lying in [start, end).
func (d *driver) commentsBetween(start, end int) []syntax.Range {
	if end <= start {
		return nil
	}
	return d.tree.CommentsIn(syntax.Range{Start: start, End: end})
}
