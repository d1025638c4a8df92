package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astrewrite/pkg/format"
	"github.com/yaklabco/astrewrite/pkg/lang"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	for _, name := range lang.Names() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b, err := lang.Lookup(name)
			require.NoError(t, err)
			assert.Equal(t, name, b.Name)
			assert.NotNil(t, b.Parse)
			assert.NotNil(t, b.ParseFragment)
			assert.NotNil(t, b.Formatter)
		})
	}

	_, err := lang.Lookup("cobol")
	require.ErrorIs(t, err, lang.ErrUnknownLanguage)
}

func TestForFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		override string
		want     string
		wantErr  bool
	}{
		{name: "detected curly", path: "a.cy", want: "curly"},
		{name: "detected markdown", path: "a.md", want: "markdown"},
		{name: "override wins", path: "a.md", override: "curly", want: "curly"},
		{name: "unknown file", path: "a.bin", wantErr: true},
		{name: "unknown override", path: "a.cy", override: "cobol", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := lang.ForFile(tt.path, nil, tt.override)
			if tt.wantErr {
				require.ErrorIs(t, err, lang.ErrUnknownLanguage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Name)
		})
	}
}

func TestBindingsRoundTrip(t *testing.T) {
	t.Parallel()

	sources := map[string]struct{ file, fragment string }{
		"curly":    {"func f() {\n    g();\n}\n", "h();"},
		"markdown": {"# T\n\ntext\n", "more text"},
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b, err := lang.Lookup(name)
			require.NoError(t, err)

			tree, err := b.Parse("input", []byte(src.file))
			require.NoError(t, err)
			assert.Equal(t, src.file, string(tree.Content))

			n, err := b.ParseFragment(src.fragment)
			require.NoError(t, err)
			out, err := format.Print(b.Formatter, n)
			require.NoError(t, err)
			assert.Equal(t, src.fragment, out)
		})
	}
}
