package rewrite

import (
	"github.com/charmbracelet/log"

	"github.com/yaklabco/astrewrite/pkg/format"
)

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithOptions sets the formatting options used for synthesized text.
func WithOptions(opts format.Options) Option {
	return func(rw *Rewriter) {
		rw.opts = opts
	}
}

// WithLogger sets the logger for debug output. By default nothing is logged.
func WithLogger(logger *log.Logger) Option {
	return func(rw *Rewriter) {
		if logger != nil {
			rw.log = logger
		}
	}
}

// PlaceholderOption configures a placeholder.
type PlaceholderOption func(*placeholder)

// WithTrailingComment extends the placeholder's source range over a comment
// that follows the node on the same line. For a move, the comment is then
// removed from the original location together with the node.
func WithTrailingComment() PlaceholderOption {
	return func(p *placeholder) {
		p.trailingComment = true
	}
}
