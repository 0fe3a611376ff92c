package grammar

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gauge/internal/core/errors"
	"gauge/internal/shared/util"
)

// Override adjusts a single language entry before the registry is sealed.
type Override struct {
	Enabled    *bool
	Extensions []string
	Filenames  []string
}

// Registry resolves file paths and language identifiers to Descriptors.
// Immutable after Build; safe for concurrent use without synchronization.
type Registry struct {
	byID       map[string]*Descriptor
	byExt      map[string]string
	byFilename map[string]string
}

// Build assembles the registry from the static language table, applying any
// overrides, and validates that no two enabled languages claim the same
// extension or filename.
func Build(overrides map[string]Override) (*Registry, error) {
	table := defaultDescriptors()

	for id, override := range overrides {
		desc, ok := table[id]
		if !ok {
			return nil, errors.New(errors.CodeConfig, fmt.Sprintf("unknown language override %q", id))
		}
		if override.Enabled != nil {
			desc.Enabled = *override.Enabled
		}
		if len(override.Extensions) > 0 {
			desc.Extensions = normalizeExtensions(override.Extensions)
		}
		if len(override.Filenames) > 0 {
			desc.Filenames = normalizeFilenames(override.Filenames)
		}
	}

	r := &Registry{
		byID:       table,
		byExt:      make(map[string]string),
		byFilename: make(map[string]string),
	}

	for _, id := range util.SortedStringKeys(table) {
		desc := table[id]
		if !desc.Enabled {
			continue
		}
		for _, ext := range normalizeExtensions(desc.Extensions) {
			if owner, ok := r.byExt[ext]; ok && owner != id {
				return nil, errors.New(errors.CodeConfig,
					fmt.Sprintf("duplicate extension %q owned by %q and %q", ext, owner, id))
			}
			r.byExt[ext] = id
		}
		for _, name := range normalizeFilenames(desc.Filenames) {
			if owner, ok := r.byFilename[name]; ok && owner != id {
				return nil, errors.New(errors.CodeConfig,
					fmt.Sprintf("duplicate filename %q owned by %q and %q", name, owner, id))
			}
			r.byFilename[name] = id
		}
	}

	return r, nil
}

// ForID returns the descriptor for a language identifier.
func (r *Registry) ForID(id string) (*Descriptor, bool) {
	desc, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok || !desc.Enabled {
		return nil, false
	}
	return desc, true
}

// ForPath resolves a file path to its language descriptor, preferring exact
// filename routes over extension routes.
func (r *Registry) ForPath(path string) (*Descriptor, bool) {
	base := strings.ToLower(filepath.Base(path))
	if id, ok := r.byFilename[base]; ok {
		return r.ForID(id)
	}
	ext := strings.ToLower(filepath.Ext(base))
	if id, ok := r.byExt[ext]; ok {
		return r.ForID(id)
	}
	return nil, false
}

// IsTestFile reports whether the path matches any enabled language's test
// file suffix convention.
func (r *Registry) IsTestFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, id := range r.IDs() {
		for _, suffix := range r.byID[id].TestFileSuffixes {
			if strings.HasSuffix(base, strings.ToLower(suffix)) {
				return true
			}
		}
	}
	return false
}

// IDs returns the enabled language identifiers in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id, desc := range r.byID {
		if desc.Enabled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// SupportedExtensions returns every extension claimed by an enabled language.
func (r *Registry) SupportedExtensions() []string {
	return util.SortedStringKeys(r.byExt)
}

// SupportedFilenames returns every exact filename claimed by an enabled language.
func (r *Registry) SupportedFilenames() []string {
	return util.SortedStringKeys(r.byFilename)
}

// TestFileSuffixes returns the union of test suffixes across enabled languages.
func (r *Registry) TestFileSuffixes() []string {
	set := make(map[string]bool)
	for _, desc := range r.byID {
		if !desc.Enabled {
			continue
		}
		for _, suffix := range desc.TestFileSuffixes {
			set[strings.ToLower(suffix)] = true
		}
	}
	suffixes := make([]string, 0, len(set))
	for suffix := range set {
		suffixes = append(suffixes, suffix)
	}
	sort.Strings(suffixes)
	return suffixes
}

func normalizeExtensions(values []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(values))
	for _, value := range values {
		raw := strings.TrimSpace(strings.ToLower(value))
		if raw == "" {
			continue
		}
		if !strings.HasPrefix(raw, ".") {
			raw = "." + raw
		}
		if seen[raw] {
			continue
		}
		seen[raw] = true
		out = append(out, raw)
	}
	sort.Strings(out)
	return out
}

func normalizeFilenames(values []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(values))
	for _, value := range values {
		raw := strings.TrimSpace(strings.ToLower(filepath.Base(value)))
		if raw == "" {
			continue
		}
		if seen[raw] {
			continue
		}
		seen[raw] = true
		out = append(out, raw)
	}
	sort.Strings(out)
	return out
}

