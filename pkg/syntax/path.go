package syntax

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoMatch is returned by Select when a path does not resolve to a node.
var ErrNoMatch = errors.New("no node matches path")

// PathOf returns the selector path of n relative to its root, e.g.
// "/decls/0/body/stmts/2". The root itself has the path "/".
func PathOf(n *Node) string {
	var segments []string
	for cur := n; cur.parent != nil; cur = cur.parent {
		p := cur.parent
		name := p.PropName(cur.prop)
		if p.PropType(cur.prop) == PropList {
			segments = append(segments, strconv.Itoa(cur.IndexInParent()), name)
		} else {
			segments = append(segments, name)
		}
	}
	if len(segments) == 0 {
		return "/"
	}

	var b strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segments[i])
	}
	return b.String()
}

// Select resolves a selector path produced by PathOf against root.
// Negative list indexes count from the end of the list.
func Select(root *Node, path string) (*Node, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "/" {
		return root, nil
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("selector %q: must start with /", path)
	}

	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	cur := root
	for i := 0; i < len(segments); i++ {
		name := segments[i]
		id, ok := cur.grammar.PropByName(cur.kind, name)
		if !ok {
			return nil, fmt.Errorf("selector %q: %s has no property %q: %w", path, cur.KindName(), name, ErrNoMatch)
		}

		switch cur.PropType(id) {
		case PropNode:
			next := cur.Child(id)
			if next == nil {
				return nil, fmt.Errorf("selector %q: %s.%s is empty: %w", path, cur.KindName(), name, ErrNoMatch)
			}
			cur = next
		case PropList:
			if i+1 >= len(segments) {
				return nil, fmt.Errorf("selector %q: list %s needs an index", path, name)
			}
			i++
			idx, err := strconv.Atoi(segments[i])
			if err != nil {
				return nil, fmt.Errorf("selector %q: bad index %q: %w", path, segments[i], err)
			}
			list := cur.List(id)
			if idx < 0 {
				idx += len(list)
			}
			if idx < 0 || idx >= len(list) {
				return nil, fmt.Errorf("selector %q: index %s out of range: %w", path, segments[i], ErrNoMatch)
			}
			cur = list[idx]
		case PropAttr:
			return nil, fmt.Errorf("selector %q: %s is an attribute: %w", path, name, ErrNoMatch)
		}
	}
	return cur, nil
}

// SplitProperty splits a selector whose last segment names a property,
// such as "/decls/0/body/stmts", into the owner path and property name.
func SplitProperty(path string) (string, string) {
	path = strings.TrimSuffix(strings.TrimSpace(path), "/")
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "/", path
	}
	owner := path[:i]
	if owner == "" {
		owner = "/"
	}
	return owner, path[i+1:]
}
