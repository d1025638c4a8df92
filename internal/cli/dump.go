package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/astrewrite/internal/ui/pretty"
	"github.com/yaklabco/astrewrite/pkg/fsutil"
	"github.com/yaklabco/astrewrite/pkg/lang"
	"github.com/yaklabco/astrewrite/pkg/syntax"
)

const formatJSON = "json"

type dumpFlags struct {
	language string
	format   string
}

// dumpNode is one node in JSON dump output.
type dumpNode struct {
	Path   string         `json:"path"`
	Kind   string         `json:"kind"`
	Start  int            `json:"start"`
	End    int            `json:"end"`
	Line   int            `json:"line"`
	Column int            `json:"column"`
	Attrs  map[string]any `json:"attrs,omitempty"`
	Depth  int            `json:"-"`
}

func newDumpCommand() *cobra.Command {
	flags := &dumpFlags{}

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the syntax tree of a file with selector paths",
		Long: `Parse a file and print every node with the selector path an edit script
uses to address it, its kind, its byte range and its attributes.

Examples:
  astrewrite dump main.cy                 Tree as indented text
  astrewrite dump README.md --format json Nodes as a JSON array`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.language, "language", "", "force a language instead of detecting it")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")

	return cmd
}

func runDump(cmd *cobra.Command, path string, flags *dumpFlags) error {
	if flags.format != "text" && flags.format != formatJSON {
		return fmt.Errorf("%w: invalid format %q: must be text or json", ErrConfig, flags.format)
	}

	content, _, err := fsutil.ReadFile(cmd.Context(), path)
	if err != nil {
		return err
	}

	binding, err := lang.ForFile(path, content, flags.language)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	tree, err := binding.Parse(path, content)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	nodes := collectNodes(tree)
	out := cmd.OutOrStdout()

	if flags.format == formatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(nodes); err != nil {
			return fmt.Errorf("encoding tree: %w", err)
		}
		return nil
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}
	styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, out))
	return writeTree(out, nodes, styles)
}

func collectNodes(tree *syntax.Tree) []dumpNode {
	var nodes []dumpNode
	//nolint:errcheck // the callback never fails
	syntax.Walk(tree.Root, func(n *syntax.Node) error {
		rng := n.Range()
		line, col := tree.LineAt(rng.Start)
		node := dumpNode{
			Path:   syntax.PathOf(n),
			Kind:   n.KindName(),
			Start:  rng.Start,
			End:    rng.End,
			Line:   line,
			Column: col,
			Depth:  len(n.Ancestors()),
		}
		for i := range n.NumProps() {
			id := syntax.PropertyID(i)
			if n.PropType(id) != syntax.PropAttr || n.Attr(id) == nil {
				continue
			}
			if node.Attrs == nil {
				node.Attrs = make(map[string]any)
			}
			node.Attrs[n.PropName(id)] = n.Attr(id)
		}
		nodes = append(nodes, node)
		return nil
	})
	return nodes
}

func writeTree(w io.Writer, nodes []dumpNode, styles *pretty.Styles) error {
	width := 0
	for _, n := range nodes {
		width = max(width, len(n.Path))
	}

	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(styles.FilePath.Render(n.Path))
		b.WriteString(strings.Repeat(" ", width-len(n.Path)+2))
		b.WriteString(strings.Repeat("  ", n.Depth))
		b.WriteString(styles.Bold.Render(n.Kind))
		fmt.Fprintf(&b, " %s", styles.Location.Render(fmt.Sprintf("%d:%d", n.Line, n.Column)))
		fmt.Fprintf(&b, " %s", styles.Dim.Render(fmt.Sprintf("[%d:%d)", n.Start, n.End)))
		for _, name := range slices.Sorted(maps.Keys(n.Attrs)) {
			fmt.Fprintf(&b, " %s=%v", name, n.Attrs[name])
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}
