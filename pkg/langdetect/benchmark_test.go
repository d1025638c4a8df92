package langdetect

import (
	"testing"
)

func BenchmarkDetectByExtension(b *testing.B) {
	code := []byte("func main() {}\n")
	b.ResetTimer()
	for range b.N {
		Detect("main.cy", code)
	}
}

func BenchmarkDetectCurlyContent(b *testing.B) {
	code := []byte(`// entry point
public static func main() {
    var x = 1;
    log(x);
}`)
	b.ResetTimer()
	for range b.N {
		Detect("main", code)
	}
}

func BenchmarkDetectMarkdownContent(b *testing.B) {
	code := []byte("# Title\n\nSome text.\n\n- a\n- b\n")
	b.ResetTimer()
	for range b.N {
		Detect("NOTES", code)
	}
}

func BenchmarkDetectEmpty(b *testing.B) {
	code := []byte("")
	b.ResetTimer()
	for range b.N {
		Detect("", code)
	}
}
