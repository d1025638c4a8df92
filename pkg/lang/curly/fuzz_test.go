package curly_test

import (
	"testing"

	"github.com/yaklabco/astrewrite/pkg/lang/curly"
	"github.com/yaklabco/astrewrite/pkg/syntax"
)

// FuzzParse checks that the parser never panics and that every node of a
// successful parse lies inside the source buffer.
func FuzzParse(f *testing.F) {
	seeds := []string{
		"",
		"func f() {}",
		"func f(a, b) {\n    return a + b;\n}\n",
		"public static func g() {\n    if (x > 1) { y(); } else { z++; }\n}\n",
		"// comment\nfunc h() {\n    var s = \"str\"; // trailing\n}\n",
		"func {\n",
		"func f() {\n\tlog(\"tab\");\n}\r\n",
		sample,
	}
	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		tree, err := curly.Parse("fuzz.cy", data)
		if err != nil {
			return
		}

		err = syntax.Walk(tree.Root, func(n *syntax.Node) error {
			rng := n.Range()
			if !rng.IsValid() || rng.End > len(data) {
				t.Errorf("node %s has range outside [0:%d)", n, len(data))
			}
			return nil
		})
		if err != nil {
			t.Fatalf("walk: %v", err)
		}
	})
}
