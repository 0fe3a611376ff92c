// Package watcher drives watch mode: it turns raw file system events into
// debounced batches of changed source paths for re-analysis.
package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gauge/internal/core/errors"
	"gauge/internal/engine/grammar"
	"gauge/internal/shared/observability"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period before a batch of changes is flushed.
	Debounce time.Duration
	// ExcludeDirs and ExcludeFiles are glob patterns matched against base
	// names, mirroring the scan-time exclusions.
	ExcludeDirs  []string
	ExcludeFiles []string
	// IncludeTests keeps test files in change batches.
	IncludeTests bool
}

// Watcher batches file system events. Changed paths are handed to the
// onChange callback after the debounce window closes; the callback runs on
// the watcher goroutine and never concurrently with itself.
type Watcher struct {
	fsw      *fsnotify.Watcher
	opts     Options
	onChange func([]string)
	logger   *slog.Logger

	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob

	extensions   map[string]bool
	filenames    map[string]bool
	testSuffixes []string

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer

	flushMu sync.Mutex
}

// New builds a watcher whose file filters come from the language registry:
// only paths that resolve to an enabled language produce change batches.
func New(registry *grammar.Registry, opts Options, logger *slog.Logger, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New(errors.CodeConfig, "watcher requires a change callback")
	}
	if logger == nil {
		logger = slog.Default()
	}

	compile := func(patterns []string) ([]glob.Glob, error) {
		globs := make([]glob.Glob, 0, len(patterns))
		for _, pattern := range patterns {
			g, err := glob.Compile(pattern)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeConfig,
					fmt.Sprintf("invalid watch exclude pattern %q", pattern))
			}
			globs = append(globs, g)
		}
		return globs, nil
	}

	excludeDirs, err := compile(opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compile(opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "creating file system watcher")
	}

	extensions := make(map[string]bool)
	for _, ext := range registry.SupportedExtensions() {
		extensions[strings.ToLower(ext)] = true
	}
	filenames := make(map[string]bool)
	for _, name := range registry.SupportedFilenames() {
		filenames[strings.ToLower(name)] = true
	}
	suffixes := make([]string, 0)
	for _, suffix := range registry.TestFileSuffixes() {
		suffixes = append(suffixes, strings.ToLower(suffix))
	}

	return &Watcher{
		fsw:          fsw,
		opts:         opts,
		onChange:     onChange,
		logger:       logger,
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
		extensions:   extensions,
		filenames:    filenames,
		testSuffixes: suffixes,
		pending:      make(map[string]struct{}),
	}, nil
}

// Watch registers every directory under the roots and starts the event loop.
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		if err := w.watchRecursive(root); err != nil {
			return errors.Wrap(err, errors.CodeIO,
				fmt.Sprintf("watching %q", root))
		}
	}
	go w.run()
	return nil
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.excludedDir(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.excludedDir(event.Name) {
				return
			}
			if err := w.watchRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				return
			}
			w.enqueueExisting(event.Name)
			return
		}
	}

	if !w.relevantFile(event.Name) {
		return
	}
	if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		w.schedule(event.Name)
	}
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	w.flushMu.Lock()
	defer w.flushMu.Unlock()
	w.onChange(paths)
}

// enqueueExisting schedules files that appeared inside a freshly created
// directory before its watch was registered.
func (w *Watcher) enqueueExisting(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if w.relevantFile(path) {
			w.schedule(path)
		}
		return nil
	})
}

func (w *Watcher) excludedDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// relevantFile filters events down to analyzable sources: registry-known
// extensions or file names, minus exclusions and, unless included, test
// files.
func (w *Watcher) relevantFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))

	if !w.opts.IncludeTests {
		for _, suffix := range w.testSuffixes {
			if strings.HasSuffix(base, suffix) {
				return false
			}
		}
	}

	if !w.filenames[base] && !w.extensions[strings.ToLower(filepath.Ext(base))] {
		return false
	}

	for _, g := range w.excludeFiles {
		if g.Match(base) {
			return false
		}
	}
	return true
}
