package script

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/astrewrite/pkg/rewrite"
	"github.com/yaklabco/astrewrite/pkg/syntax"
)

// FragmentParser turns the source text of an operation into a detached node.
type FragmentParser func(src string) (*syntax.Node, error)

// resolved holds the nodes an operation refers to.
type resolved struct {
	target *syntax.Node
	parent *syntax.Node
	ref    *syntax.Node
	prop   syntax.PropertyID
}

// Run records the script's operations on rw. Nothing is rendered; call
// rw.Rewrite afterwards. The first failing operation stops the run.
func (s *Script) Run(rw *rewrite.Rewriter, parse FragmentParser) error {
	root := rw.Tree().Root

	refs := make([]resolved, len(s.Ops))
	for i, op := range s.Ops {
		r, err := op.resolve(root)
		if err != nil {
			return fmt.Errorf("op %d (%s): %w", i, op.Op, err)
		}
		refs[i] = r
	}

	for i, op := range s.Ops {
		if err := op.apply(rw, parse, refs[i]); err != nil {
			return fmt.Errorf("op %d (%s): %w", i, op.Op, err)
		}
	}
	return nil
}

func (op Op) resolve(root *syntax.Node) (resolved, error) {
	var r resolved
	var err error

	if op.Target != "" {
		if r.target, err = syntax.Select(root, op.Target); err != nil {
			return r, err
		}
	}
	if op.Ref != "" {
		if r.ref, err = syntax.Select(root, op.Ref); err != nil {
			return r, err
		}
	}

	parent, prop := op.Parent, op.Slot
	if op.List != "" {
		prop = op.List
		if parent == "" {
			parent, prop = syntax.SplitProperty(op.List)
		}
	}
	if parent == "" {
		return r, nil
	}
	if r.parent, err = syntax.Select(root, parent); err != nil {
		return r, err
	}

	id, ok := r.parent.Grammar().PropByName(r.parent.Kind(), prop)
	if !ok {
		return r, fmt.Errorf("%s has no property %q: %w", r.parent.KindName(), prop, ErrInvalid)
	}
	want := syntax.PropNode
	if op.List != "" {
		want = syntax.PropList
	}
	if got := r.parent.PropType(id); got != want {
		return r, fmt.Errorf("%s.%s is a %s property: %w", r.parent.KindName(), prop, got, rewrite.ErrWrongProperty)
	}
	r.prop = id
	return r, nil
}

func (op Op) apply(rw *rewrite.Rewriter, parse FragmentParser, r resolved) error {
	switch op.Op {
	case OpRemove:
		return rw.Remove(r.target)

	case OpReplace:
		n, err := parseSource(parse, op.Source)
		if err != nil {
			return err
		}
		return rw.Replace(r.target, n)

	case OpModify:
		patch, err := attrPatch(r.target, op.Attrs)
		if err != nil {
			return err
		}
		return rw.Modify(r.target, patch)

	case OpSet:
		var n *syntax.Node
		if op.Source != "" {
			var err error
			if n, err = parseSource(parse, op.Source); err != nil {
				return err
			}
		}
		return rw.Set(r.parent, r.prop, n)

	case OpInsert:
		n, err := parseSource(parse, op.Source)
		if err != nil {
			return err
		}
		return insert(rw.List(r.parent, r.prop), op.anchor(), n, r.ref)

	case OpMove:
		var opts []rewrite.PlaceholderOption
		if op.TrailingComment {
			opts = append(opts, rewrite.WithTrailingComment())
		}
		p, err := rw.MovePlaceholder(r.target, opts...)
		if err != nil {
			return err
		}
		return insert(rw.List(r.parent, r.prop), op.anchor(), p, r.ref)

	case OpCopy:
		var opts []rewrite.PlaceholderOption
		if op.TrailingComment {
			opts = append(opts, rewrite.WithTrailingComment())
		}
		return insert(rw.List(r.parent, r.prop), op.anchor(), rw.CopyPlaceholder(r.target, opts...), r.ref)

	case OpTrack:
		return rw.Track(r.target, op.Name)

	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalid, op.Op)
	}
}

func insert(lr *rewrite.ListRewrite, anchor string, n, ref *syntax.Node) error {
	switch anchor {
	case AnchorFirst:
		return lr.InsertFirst(n)
	case AnchorBefore:
		return lr.InsertBefore(n, ref)
	case AnchorAfter:
		return lr.InsertAfter(n, ref)
	default:
		return lr.InsertLast(n)
	}
}

func parseSource(parse FragmentParser, src string) (*syntax.Node, error) {
	n, err := parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse source: %w", err)
	}
	return n, nil
}

// attrPatch maps attribute names to property IDs. Values are converted to
// the type the attribute currently holds, so a number given for a string
// attribute is written as its text.
func attrPatch(n *syntax.Node, attrs map[string]any) (syntax.Patch, error) {
	patch := make(syntax.Patch, len(attrs))
	for name, value := range attrs {
		id, ok := n.Grammar().PropByName(n.Kind(), name)
		if !ok || n.PropType(id) != syntax.PropAttr {
			return nil, fmt.Errorf("%s has no attribute %q: %w", n.KindName(), name, ErrInvalid)
		}
		v, err := coerce(value, n.Attr(id))
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		patch[id] = v
	}
	return patch, nil
}

func coerce(value, current any) (any, error) {
	switch current.(type) {
	case string:
		switch v := value.(type) {
		case string:
			return v, nil
		case nil:
			return "", nil
		case int, int64, float64, bool:
			return fmt.Sprint(v), nil
		}
	case int:
		switch v := value.(type) {
		case int:
			return v, nil
		case string:
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("want an integer: %w", ErrInvalid)
			}
			return i, nil
		}
	default:
		return value, nil
	}
	return nil, fmt.Errorf("cannot use %T for a %T attribute: %w", value, current, ErrInvalid)
}
