// Package runner applies an edit script to many files concurrently.
package runner

import (
	"github.com/charmbracelet/log"

	"github.com/yaklabco/astrewrite/pkg/config"
	"github.com/yaklabco/astrewrite/pkg/langdetect"
	"github.com/yaklabco/astrewrite/pkg/script"
)

// Options controls a multi-file run.
type Options struct {
	// Paths are files, directories or doublestar globs to process.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// picked up when walking directories. Defaults to every extension a
	// language binding claims.
	Extensions []string

	// ExcludeGlobs are doublestar patterns, relative to WorkingDir, used to
	// skip files or directories.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// Verify re-parses rewritten output and fails the file if it no longer parses.
	Verify bool

	// Config is the resolved configuration for this run.
	Config *config.Config

	// Script is the edit script applied to every file.
	Script *script.Script

	// Logger receives per-file debug output. Nil means the logger
	// attached to the run's context.
	Logger *log.Logger
}

// DefaultExtensions returns the extensions claimed by the language bindings.
func DefaultExtensions() []string {
	return langdetect.Extensions()
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

func (o Options) effectiveConfig() *config.Config {
	if o.Config == nil {
		return config.NewConfig()
	}
	return o.Config
}
