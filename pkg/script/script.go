// Package script decodes YAML edit scripts and runs them against a rewrite
// session. Every operation of a script maps to one call on the session;
// selectors are resolved against the original tree before anything runs,
// so later operations still address nodes by their original paths.
//
//	ops:
//	  - op: remove
//	    target: /decls/0/body/stmts/1
//	  - op: insert
//	    parent: /decls/0/body
//	    list: stmts
//	    anchor: after
//	    ref: /decls/0/body/stmts/0
//	    source: "log(x);"
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid edit script")

// Operation names.
const (
	OpRemove  = "remove"
	OpReplace = "replace"
	OpModify  = "modify"
	OpSet     = "set"
	OpInsert  = "insert"
	OpMove    = "move"
	OpCopy    = "copy"
	OpTrack   = "track"
)

// Anchor names for insert, move and copy.
const (
	AnchorFirst  = "first"
	AnchorLast   = "last"
	AnchorBefore = "before"
	AnchorAfter  = "after"
)

// Op is one operation of a script. Which fields apply depends on Op.
type Op struct {
	// Op is the operation name.
	Op string `yaml:"op"`

	// Target selects the node the operation acts on. For move and copy it
	// is the node whose content travels.
	Target string `yaml:"target,omitempty"`

	// Parent selects the node owning the list or slot being edited.
	Parent string `yaml:"parent,omitempty"`

	// List names the list property of Parent. A full selector such as
	// "/decls/0/body/stmts" may be given instead of Parent and List.
	List string `yaml:"list,omitempty"`

	// Slot names the single-valued property of Parent edited by set.
	Slot string `yaml:"slot,omitempty"`

	// Anchor is first, last, before or after. It defaults to last.
	Anchor string `yaml:"anchor,omitempty"`

	// Ref selects the list element a before or after anchor refers to.
	Ref string `yaml:"ref,omitempty"`

	// Source is new content, parsed with the binding's fragment parser.
	Source string `yaml:"source,omitempty"`

	// TrailingComment makes a moved or copied node take the comment
	// following it on the same line.
	TrailingComment bool `yaml:"trailing_comment,omitempty"`

	// Attrs maps attribute property names to new values for modify.
	Attrs map[string]any `yaml:"attrs,omitempty"`

	// Name is the tracking name for track.
	Name string `yaml:"name,omitempty"`
}

// Script is an ordered list of operations.
type Script struct {
	Ops []Op `yaml:"ops"`
}

// Parse decodes and validates a script. Unknown fields are rejected.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: script is empty", ErrInvalid)
		}
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	//nolint:gosec // G304: Reading a user-specified script file is intentional
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ToYAML serializes the script.
func (s *Script) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(s); err != nil {
		return nil, fmt.Errorf("encode script: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks that every operation has the fields it needs. All
// problems are reported, each naming its operation index.
func (s *Script) Validate() error {
	var errs []error
	for i, op := range s.Ops {
		if err := op.validate(); err != nil {
			errs = append(errs, fmt.Errorf("op %d (%s): %w", i, op.Op, err))
		}
	}
	return errors.Join(errs...)
}

func (op Op) validate() error {
	var missing []string
	need := func(field, value string) {
		if value == "" {
			missing = append(missing, field)
		}
	}

	switch op.Op {
	case OpRemove:
		need("target", op.Target)
	case OpReplace:
		need("target", op.Target)
		need("source", op.Source)
	case OpModify:
		need("target", op.Target)
		if len(op.Attrs) == 0 {
			missing = append(missing, "attrs")
		}
	case OpSet:
		need("parent", op.Parent)
		need("slot", op.Slot)
	case OpInsert:
		need("list", op.List)
		need("source", op.Source)
	case OpMove, OpCopy:
		need("target", op.Target)
		need("list", op.List)
	case OpTrack:
		need("target", op.Target)
		need("name", op.Name)
	case "":
		return fmt.Errorf("%w: missing op", ErrInvalid)
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalid, op.Op)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrInvalid, missing)
	}

	if op.Op == OpInsert || op.Op == OpMove || op.Op == OpCopy {
		anchor := op.anchor()
		if !slices.Contains([]string{AnchorFirst, AnchorLast, AnchorBefore, AnchorAfter}, anchor) {
			return fmt.Errorf("%w: unknown anchor %q", ErrInvalid, anchor)
		}
		if (anchor == AnchorBefore || anchor == AnchorAfter) && op.Ref == "" {
			return fmt.Errorf("%w: anchor %q needs ref", ErrInvalid, anchor)
		}
	}
	return nil
}

func (op Op) anchor() string {
	if op.Anchor == "" {
		return AnchorLast
	}
	return op.Anchor
}
