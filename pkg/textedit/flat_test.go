package textedit_test

import (
	"errors"
	"testing"

	"github.com/yaklabco/astrewrite/pkg/textedit"
)

func TestApplyEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		edits   []textedit.TextEdit
		want    string
	}{
		{
			name:    "empty edits returns original",
			content: "hello world",
			want:    "hello world",
		},
		{
			name:    "single replacement",
			content: "hello world",
			edits:   []textedit.TextEdit{{StartOffset: 0, EndOffset: 5, NewText: "hi"}},
			want:    "hi world",
		},
		{
			name:    "single insertion",
			content: "hello world",
			edits:   []textedit.TextEdit{{StartOffset: 5, EndOffset: 5, NewText: " beautiful"}},
			want:    "hello beautiful world",
		},
		{
			name:    "single deletion",
			content: "hello world",
			edits:   []textedit.TextEdit{{StartOffset: 5, EndOffset: 11}},
			want:    "hello",
		},
		{
			name:    "adjacent edits",
			content: "abcdef",
			edits: []textedit.TextEdit{
				{StartOffset: 0, EndOffset: 2, NewText: "XX"},
				{StartOffset: 2, EndOffset: 4, NewText: "YY"},
				{StartOffset: 4, EndOffset: 6, NewText: "ZZ"},
			},
			want: "XXYYZZ",
		},
		{
			name:    "insertions at one offset keep their order",
			content: "ac",
			edits: []textedit.TextEdit{
				{StartOffset: 1, EndOffset: 1, NewText: "b"},
				{StartOffset: 1, EndOffset: 1, NewText: "B"},
			},
			want: "abBc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			edits, err := textedit.PrepareEdits(tt.edits, len(tt.content))
			if err != nil {
				t.Fatalf("PrepareEdits() error = %v", err)
			}
			got := string(textedit.ApplyEdits([]byte(tt.content), edits))
			if got != tt.want {
				t.Errorf("ApplyEdits() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		edits      []textedit.TextEdit
		contentLen int
		errMsg     string
	}{
		{
			name:       "valid edits",
			edits:      []textedit.TextEdit{{StartOffset: 0, EndOffset: 5}, {StartOffset: 5, EndOffset: 10}},
			contentLen: 10,
		},
		{
			name:       "negative start offset",
			edits:      []textedit.TextEdit{{StartOffset: -1, EndOffset: 5}},
			contentLen: 10,
			errMsg:     "invalid edit [-1:5]: start offset is negative",
		},
		{
			name:       "end before start",
			edits:      []textedit.TextEdit{{StartOffset: 5, EndOffset: 3}},
			contentLen: 10,
			errMsg:     "invalid edit [5:3]: end offset is before start offset",
		},
		{
			name:       "end exceeds content length",
			edits:      []textedit.TextEdit{{StartOffset: 5, EndOffset: 15}},
			contentLen: 10,
			errMsg:     "invalid edit [5:15]: end offset 15 exceeds content length 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := textedit.ValidateEdits(tt.edits, tt.contentLen)
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("ValidateEdits() unexpected error = %v", err)
				}
				return
			}
			var verr *textedit.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateEdits() error = %v, want *ValidationError", err)
			}
			if err.Error() != tt.errMsg {
				t.Errorf("ValidateEdits() error = %q, want %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestPrepareEditsDetectsConflicts(t *testing.T) {
	t.Parallel()

	_, err := textedit.PrepareEdits([]textedit.TextEdit{
		{StartOffset: 4, EndOffset: 8, NewText: "x"},
		{StartOffset: 0, EndOffset: 5, NewText: "y"},
	}, 10)

	var conflict *textedit.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("PrepareEdits() error = %v, want *ConflictError", err)
	}
	if conflict.Edit1.StartOffset != 0 || conflict.Edit2.StartOffset != 4 {
		t.Errorf("conflict = %+v, want sorted pair", conflict)
	}
}

func TestMergeDeletions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edits   []textedit.TextEdit
		want    []textedit.TextEdit
		wantErr bool
	}{
		{
			name: "overlapping deletions merge",
			edits: []textedit.TextEdit{
				{StartOffset: 5, EndOffset: 12},
				{StartOffset: 2, EndOffset: 8},
			},
			want: []textedit.TextEdit{{StartOffset: 2, EndOffset: 12}},
		},
		{
			name: "touching deletions merge",
			edits: []textedit.TextEdit{
				{StartOffset: 0, EndOffset: 3},
				{StartOffset: 3, EndOffset: 6},
			},
			want: []textedit.TextEdit{{StartOffset: 0, EndOffset: 6}},
		},
		{
			name: "insertion inside deletion folds into replacement",
			edits: []textedit.TextEdit{
				{StartOffset: 0, EndOffset: 10},
				{StartOffset: 4, EndOffset: 4, NewText: "x"},
				{StartOffset: 8, EndOffset: 14},
			},
			want: []textedit.TextEdit{{StartOffset: 0, EndOffset: 14, NewText: "x"}},
		},
		{
			name: "insertion at deletion boundary stays separate",
			edits: []textedit.TextEdit{
				{StartOffset: 2, EndOffset: 4},
				{StartOffset: 4, EndOffset: 4, NewText: "x"},
			},
			want: []textedit.TextEdit{
				{StartOffset: 2, EndOffset: 4},
				{StartOffset: 4, EndOffset: 4, NewText: "x"},
			},
		},
		{
			name: "overlapping replacements conflict",
			edits: []textedit.TextEdit{
				{StartOffset: 0, EndOffset: 4, NewText: "a"},
				{StartOffset: 2, EndOffset: 6},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := textedit.MergeDeletions(tt.edits)
			if tt.wantErr {
				var conflict *textedit.ConflictError
				if !errors.As(err, &conflict) {
					t.Fatalf("MergeDeletions() error = %v, want *ConflictError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("MergeDeletions() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("MergeDeletions() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("edit %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
