package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover expands opts.Paths into the files a run processes. Explicit files
// are taken as given, directories are walked for known extensions, and
// globs are expanded with doublestar. The result is sorted and deduplicated.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	c := &collector{
		workDir:    workDir,
		extensions: opts.effectiveExtensions(),
		exclude:    opts.ExcludeGlobs,
		follow:     opts.FollowSymlinks,
		seen:       make(map[string]struct{}),
	}

	for _, input := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		abs = filepath.Clean(abs)

		if hasMagic(input) {
			err = c.glob(abs)
		} else {
			err = c.path(ctx, abs)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", input, err)
		}
	}

	slices.Sort(c.files)
	return c.files, nil
}

// collector accumulates discovered files, dropping duplicates and excluded
// paths.
type collector struct {
	workDir    string
	extensions []string
	exclude    []string
	follow     bool

	seen  map[string]struct{}
	files []string
}

func (c *collector) add(path string) {
	if c.excluded(path) {
		return
	}
	if _, dup := c.seen[path]; dup {
		return
	}
	c.seen[path] = struct{}{}
	c.files = append(c.files, path)
}

// glob adds every regular file matching pattern.
func (c *collector) glob(pattern string) error {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("glob: %w", err)
	}
	for _, match := range matches {
		if info, err := os.Stat(match); err == nil && !info.IsDir() {
			c.add(match)
		}
	}
	return nil
}

// path adds a named file as is, or walks a directory. Named files skip the
// extension filter; --language decides how they parse.
func (c *collector) path(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	if !info.IsDir() {
		c.add(path)
		return nil
	}
	return c.walk(ctx, path)
}

// walk adds files under root with a known extension. Hidden entries are
// skipped, as are unreadable directories and broken symlinks. Symlinked
// directories are walked only when following symlinks.
func (c *collector) walk(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}
		if path == root {
			return nil
		}

		hidden := strings.HasPrefix(entry.Name(), ".")
		if entry.IsDir() {
			if hidden || c.excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil //nolint:nilerr // Broken symlinks are skipped
			}
			info, err := os.Stat(target)
			if err != nil {
				return nil //nolint:nilerr // Inaccessible symlink targets are skipped
			}
			if info.IsDir() {
				if !c.follow {
					return nil
				}
				// WalkDir does not descend into a symlinked directory.
				return c.walk(ctx, target)
			}
		}

		if hasExtension(path, c.extensions) {
			c.add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}

// excluded matches path, relative to the working directory, against the
// exclude patterns. Patterns without a slash also match the base name.
func (c *collector) excluded(path string) bool {
	if len(c.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(c.workDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)

	return slices.ContainsFunc(c.exclude, func(pattern string) bool {
		pattern = filepath.ToSlash(pattern)
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if strings.Contains(pattern, "/") {
			return false
		}
		ok, _ := doublestar.Match(pattern, base)
		return ok
	})
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	return slices.ContainsFunc(extensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

func hasMagic(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
