package syntax

import "sort"

// LineInfo holds metadata for a single line in a file.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline (e.g., last line), this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of file).
	EndOffset int
}

// BuildLines constructs line metadata from file content.
// It handles both LF (\n) and CRLF (\r\n) line endings.
func BuildLines(content []byte) []LineInfo {
	if len(content) == 0 {
		return []LineInfo{{}}
	}

	var lines []LineInfo
	lineStart := 0

	for idx, char := range content {
		if char == '\n' {
			newlineStart := idx
			if idx > 0 && content[idx-1] == '\r' {
				newlineStart = idx - 1
			}

			lines = append(lines, LineInfo{
				StartOffset:  lineStart,
				NewlineStart: newlineStart,
				EndOffset:    idx + 1,
			})
			lineStart = idx + 1
		}
	}

	// The last line may be empty or lack a trailing newline.
	lines = append(lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(content),
		EndOffset:    len(content),
	})

	return lines
}

// LineCount returns the number of lines in the file.
func (t *Tree) LineCount() int {
	return len(t.Lines)
}

// lineIndex returns the 0-based index of the line containing offset.
func (t *Tree) lineIndex(offset int) int {
	if offset <= 0 || len(t.Lines) == 0 {
		return 0
	}
	idx := sort.Search(len(t.Lines), func(i int) bool {
		return t.Lines[i].EndOffset > offset
	})
	if idx >= len(t.Lines) {
		idx = len(t.Lines) - 1
	}
	return idx
}

// LineAt converts a byte offset to 1-based line and column numbers.
// Column counts bytes, not runes.
// Returns (0, 0) if the offset is out of range.
func (t *Tree) LineAt(offset int) (int, int) {
	if offset < 0 || offset > len(t.Content) || len(t.Lines) == 0 {
		return 0, 0
	}
	idx := t.lineIndex(offset)
	return idx + 1, offset - t.Lines[idx].StartOffset + 1
}

// Offset converts 1-based line and column numbers to a byte offset.
// Returns (offset, true) on success, or (0, false) if out of range.
func (t *Tree) Offset(line, col int) (int, bool) {
	if line < 1 || line > len(t.Lines) || col < 1 {
		return 0, false
	}

	info := t.Lines[line-1]
	offset := info.StartOffset + col - 1
	if offset > info.EndOffset {
		return 0, false
	}
	return offset, true
}

// Line returns the metadata of the line containing offset.
func (t *Tree) Line(offset int) LineInfo {
	return t.Lines[t.lineIndex(offset)]
}

// LineStart returns the offset of the first byte of the line containing offset.
func (t *Tree) LineStart(offset int) int {
	return t.Line(offset).StartOffset
}

// LineEnd returns the offset of the newline that terminates the line containing offset.
func (t *Tree) LineEnd(offset int) int {
	return t.Line(offset).NewlineStart
}

// NextLineStart returns the offset just after the newline of the line containing offset.
func (t *Tree) NextLineStart(offset int) int {
	return t.Line(offset).EndOffset
}

// IndentAt returns the leading whitespace of the line containing offset.
func (t *Tree) IndentAt(offset int) string {
	info := t.Line(offset)
	end := info.StartOffset
	for end < info.NewlineStart && isHSpace(t.Content[end]) {
		end++
	}
	return string(t.Content[info.StartOffset:end])
}

// StartsLine reports whether only horizontal whitespace precedes offset on its line.
func (t *Tree) StartsLine(offset int) bool {
	for i := t.LineStart(offset); i < offset; i++ {
		if !isHSpace(t.Content[i]) {
			return false
		}
	}
	return true
}

// EndsLine reports whether only horizontal whitespace follows offset on its line.
func (t *Tree) EndsLine(offset int) bool {
	end := t.LineEnd(offset)
	for i := offset; i < end; i++ {
		if !isHSpace(t.Content[i]) {
			return false
		}
	}
	return true
}

// SkipHSpace returns the first offset at or after offset that is not a space or tab,
// bounded by limit.
func (t *Tree) SkipHSpace(offset, limit int) int {
	for offset < limit && isHSpace(t.Content[offset]) {
		offset++
	}
	return offset
}

// BackHSpace returns the smallest offset o <= offset such that Content[o:offset]
// is spaces and tabs only, bounded below by limit.
func (t *Tree) BackHSpace(offset, limit int) int {
	for offset > limit && isHSpace(t.Content[offset-1]) {
		offset--
	}
	return offset
}

func isHSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
