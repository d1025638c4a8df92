package rewrite

import (
	"fmt"

	"github.com/yaklabco/astrewrite/internal/logging"
	"github.com/yaklabco/astrewrite/pkg/syntax"
)

type placeholderMode uint8

const (
	modeCopy placeholderMode = iota
	modeMove
)

func (m placeholderMode) String() string {
	if m == modeMove {
		return "move"
	}
	return "copy"
}

// placeholder is the engine's record behind a synthetic placeholder node.
type placeholder struct {
	node            *syntax.Node
	source          *syntax.Node
	mode            placeholderMode
	trailingComment bool
}

func (rw *Rewriter) newPlaceholder(n *syntax.Node, mode placeholderMode, opts []PlaceholderOption) *placeholder {
	p := &placeholder{
		node:   syntax.NewPlaceholder(n),
		source: n,
		mode:   mode,
	}
	for _, opt := range opts {
		opt(p)
	}
	rw.placeholders[p.node] = p
	return p
}

// CopyPlaceholder returns a node standing for a copy of n. It can be
// inserted anywhere a new node is accepted, any number of copies may be
// made, and n stays where it is.
func (rw *Rewriter) CopyPlaceholder(n *syntax.Node, opts ...PlaceholderOption) *syntax.Node {
	p := rw.newPlaceholder(n, modeCopy, opts)
	rw.log.Debug("copy placeholder", logging.FieldNode, n)
	return p.node
}

// MovePlaceholder returns a node standing for n moved to wherever the
// placeholder is inserted. n is removed from its original location unless
// it is replaced there. A node can be moved only once per session.
func (rw *Rewriter) MovePlaceholder(n *syntax.Node, opts ...PlaceholderOption) (*syntax.Node, error) {
	if err := rw.checkOriginal("move", n); err != nil {
		return nil, err
	}
	if !n.IsOriginal() {
		return nil, fmt.Errorf("move %s: only original nodes can be moved: %w", n, ErrForeignNode)
	}
	if e := rw.led.nodes[n]; e != nil && e.move != nil {
		return nil, fmt.Errorf("move %s: %w", n, ErrAlreadyMoved)
	}

	p := rw.newPlaceholder(n, modeMove, opts)
	if err := rw.led.markMoved(n, p); err != nil {
		delete(rw.placeholders, p.node)
		return nil, err
	}
	rw.log.Debug("move placeholder", logging.FieldNode, n, "trailing_comment", p.trailingComment)
	return p.node, nil
}

// extent returns the source range that travels with n when it is moved or
// copied: the node itself, plus a comment that follows it on the same line
// when the placeholder asked for it.
func (d *driver) extent(n *syntax.Node, trailingComment bool) syntax.Range {
	r := n.Range()
	if !trailingComment {
		return r
	}
	c, ok := d.trailingComment(r.End)
	if ok && (n.Parent() == nil || c.End <= n.Parent().Range().End) {
		r.End = c.End
	}
	return r
}

// removalExtent returns the range that disappears when n is removed or
// replaced at its original location.
func (d *driver) removalExtent(n *syntax.Node) syntax.Range {
	if e := d.led.nodes[n]; e != nil && e.move != nil {
		return d.extent(n, e.move.trailingComment)
	}
	return n.Range()
}
