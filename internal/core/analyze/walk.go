package analyze

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gauge/internal/core/errors"
	"gauge/internal/engine/grammar"

	"github.com/gobwas/glob"
)

// WalkOptions controls which files a directory walk yields.
type WalkOptions struct {
	// ExcludeDirs are glob patterns matched against directory base names;
	// matching directories are pruned whole.
	ExcludeDirs []string
	// ExcludeFiles are glob patterns matched against file base names.
	ExcludeFiles []string
	// IncludeTests keeps files matching a language's test-file convention.
	IncludeTests bool
}

type walkFilter struct {
	dirs  []glob.Glob
	files []glob.Glob
}

func newWalkFilter(opts WalkOptions) (*walkFilter, error) {
	f := &walkFilter{}
	for _, pattern := range opts.ExcludeDirs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeConfig,
				fmt.Sprintf("invalid directory exclude pattern %q", pattern))
		}
		f.dirs = append(f.dirs, g)
	}
	for _, pattern := range opts.ExcludeFiles {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeConfig,
				fmt.Sprintf("invalid file exclude pattern %q", pattern))
		}
		f.files = append(f.files, g)
	}
	return f, nil
}

func (f *walkFilter) excludedDir(name string) bool {
	for _, g := range f.dirs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (f *walkFilter) excludedFile(name string) bool {
	for _, g := range f.files {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// ScanDirectories expands roots into the sorted list of analyzable file
// paths. Roots may be files or directories; a file root bypasses exclusion
// patterns but still must resolve to a registered language. An unreadable
// root is a fatal IO error; unreadable entries below a root are skipped.
func ScanDirectories(roots []string, registry *grammar.Registry, opts WalkOptions) ([]string, error) {
	filter, err := newWalkFilter(opts)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var paths []string
	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeIO, fmt.Sprintf("stat %q", root)),
				errors.CtxPath, root)
		}

		if !info.IsDir() {
			if _, ok := registry.ForPath(root); ok {
				add(root)
			}
			continue
		}

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				return nil
			}
			name := d.Name()
			if d.IsDir() {
				if path != root && filter.excludedDir(name) {
					return filepath.SkipDir
				}
				return nil
			}
			if filter.excludedFile(name) {
				return nil
			}
			if _, ok := registry.ForPath(path); !ok {
				return nil
			}
			if !opts.IncludeTests && registry.IsTestFile(path) {
				return nil
			}
			add(path)
			return nil
		})
		if walkErr != nil {
			return nil, errors.AddContext(
				errors.Wrap(walkErr, errors.CodeIO, fmt.Sprintf("walking %q", root)),
				errors.CtxPath, root)
		}
	}

	sort.Strings(paths)
	return paths, nil
}
