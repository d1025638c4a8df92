package langdetect_test

import (
	"testing"

	"github.com/yaklabco/astrewrite/pkg/langdetect"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		content  string
		expected string
	}{
		{
			name:     "curly extension",
			path:     "src/main.cy",
			content:  "",
			expected: "curly",
		},
		{
			name:     "markdown extension",
			path:     "docs/README.md",
			content:  "",
			expected: "markdown",
		},
		{
			name:     "extension is case insensitive",
			path:     "NOTES.MARKDOWN",
			content:  "",
			expected: "markdown",
		},
		{
			name:     "curly content without extension",
			path:     "script",
			content:  "// entry point\npublic func main() {\n    run();\n}\n",
			expected: "curly",
		},
		{
			name:     "curly content behind block comment",
			path:     "",
			content:  "/* header */\nfunc f() {}\n",
			expected: "curly",
		},
		{
			name:     "markdown content without extension",
			path:     "CHANGES",
			content:  "# Changes\n\n- fixed things\n",
			expected: "markdown",
		},
		{
			name:     "unknown content",
			path:     "data.bin",
			content:  "just some text without any structure",
			expected: "",
		},
		{
			name:     "empty content without extension",
			path:     "",
			content:  "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := langdetect.Detect(tt.path, []byte(tt.content))

			if result != tt.expected {
				t.Errorf("Detect(%q) = %q, want %q", tt.path, result, tt.expected)
			}
		})
	}
}

func TestDetect_ExtensionTakesPrecedence(t *testing.T) {
	t.Parallel()

	// Content looks like Markdown but the extension says curly.
	content := []byte("# not a heading\nfunc f() {}\n")
	result := langdetect.Detect("odd.cy", content)

	if result != "curly" {
		t.Errorf("Detect() = %q, want %q (extension should take precedence)", result, "curly")
	}
}

func TestSupported(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"curly", "markdown"} {
		if !langdetect.Supported(name) {
			t.Errorf("Supported(%q) = false, want true", name)
		}
	}
	if langdetect.Supported("go") {
		t.Error("Supported(\"go\") = true, want false")
	}
}

func TestExtensions(t *testing.T) {
	t.Parallel()

	exts := langdetect.Extensions()
	want := []string{".curly", ".cy", ".markdown", ".md", ".mdown", ".mkd"}
	if len(exts) != len(want) {
		t.Fatalf("Extensions() = %v, want %v", exts, want)
	}
	for i := range want {
		if exts[i] != want[i] {
			t.Errorf("Extensions()[%d] = %q, want %q", i, exts[i], want[i])
		}
	}
}
