package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"gauge/internal/core/analyze"
	"gauge/internal/core/config"
	"gauge/internal/core/errors"
	"gauge/internal/core/watcher"
	"gauge/internal/data/history"
	"gauge/internal/engine/grammar"
	"gauge/internal/engine/parser"
	"gauge/internal/shared/observability"
)

// App wires the configured components together for one process lifetime.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *grammar.Registry
	analyzer *analyze.Analyzer

	store       *history.Store
	obsServer   *observability.Server
	stopTracing func(context.Context) error
}

func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	registry, err := grammar.Build(cfg.GrammarOverrides())
	if err != nil {
		return nil, err
	}
	p, err := parser.New(registry)
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		analyzer: analyze.NewAnalyzer(p, logger),
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path, logger)
		if err != nil {
			return nil, err
		}
		app.store = store
	}

	if cfg.Observability.Enabled {
		app.obsServer = observability.NewServer(cfg.Observability.Port)
		if err := app.obsServer.Start(); err != nil {
			return nil, err
		}
		if cfg.Observability.EnableTracing && cfg.Observability.OTLPEndpoint != "" {
			stop, err := observability.InitTracing(context.Background(), cfg.Observability.OTLPEndpoint)
			if err != nil {
				logger.Warn("tracing disabled", "error", err)
			} else {
				app.stopTracing = stop
			}
		}
	}

	return app, nil
}

func (a *App) Close(ctx context.Context) {
	if a.stopTracing != nil {
		if err := a.stopTracing(ctx); err != nil {
			a.logger.Warn("trace flush failed", "error", err)
		}
	}
	if a.obsServer != nil {
		if err := a.obsServer.Stop(ctx); err != nil {
			a.logger.Warn("observability server shutdown failed", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("history store close failed", "error", err)
		}
	}
}

func (a *App) scanOptions(langHint string) analyze.ScanOptions {
	return analyze.ScanOptions{
		Workers:             a.cfg.Scan.Workers,
		LanguageHint:        langHint,
		ThrottleFilesPerSec: a.cfg.Scan.ThrottleFilesPerSec,
		SkipGenerated:       a.cfg.Scan.SkipGenerated,
	}
}

func (a *App) walkOptions() analyze.WalkOptions {
	return analyze.WalkOptions{
		ExcludeDirs:  a.cfg.Exclude.Dirs,
		ExcludeFiles: a.cfg.Exclude.Files,
		IncludeTests: a.cfg.Scan.IncludeTests,
	}
}

// RunOnce expands the roots, scans them and persists a snapshot when history
// is enabled.
func (a *App) RunOnce(ctx context.Context, roots []string, langHint string) (*analyze.Aggregate, error) {
	paths, err := analyze.ScanDirectories(roots, a.registry, a.walkOptions())
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		a.logger.Warn("no analyzable files under the given roots", "roots", roots)
		agg := analyze.NewAggregate()
		agg.Finalize()
		return agg, nil
	}

	agg, err := a.analyzer.Scan(ctx, paths, a.scanOptions(langHint))
	if err != nil {
		return agg, err
	}
	a.saveSnapshot(ctx, agg)
	return agg, nil
}

// WatchAndRescan runs the initial scan, then re-analyzes changed files as the
// watcher reports them, keeping one long-lived aggregate current. Each batch
// re-finalizes the aggregate and re-emits the summary.
func (a *App) WatchAndRescan(ctx context.Context, roots []string, langHint string, emit func(*analyze.Aggregate)) error {
	agg, err := a.RunOnce(ctx, roots, langHint)
	if err != nil {
		return err
	}
	emit(agg)

	w, err := watcher.New(a.registry, watcher.Options{
		Debounce:     a.cfg.Watch.Debounce(),
		ExcludeDirs:  a.cfg.Exclude.Dirs,
		ExcludeFiles: a.cfg.Exclude.Files,
		IncludeTests: a.cfg.Scan.IncludeTests,
	}, a.logger, func(changed []string) {
		a.applyChanges(ctx, agg, changed, langHint)
		emit(agg)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(roots); err != nil {
		return err
	}
	a.logger.Info("watching for changes", "roots", roots)

	<-ctx.Done()
	return nil
}

// applyChanges folds one batch of changed paths into the running aggregate.
// Deleted files leave the aggregate; everything else is re-analyzed.
func (a *App) applyChanges(ctx context.Context, agg *analyze.Aggregate, changed []string, langHint string) {
	sort.Strings(changed)
	for _, path := range changed {
		if _, err := os.Stat(path); err != nil {
			agg.RemovePath(path)
			a.logger.Info("file removed", "path", path)
			continue
		}
		report, err := a.analyzer.AnalyzeFile(ctx, path, langHint)
		if err != nil {
			a.logger.Warn("re-analysis failed", "path", path, "error", err)
			agg.AddFailure(analyze.Failure{Path: path, Code: string(errors.CodeOf(err)), Message: err.Error()})
			continue
		}
		agg.AddReport(*report)
		a.logger.Info("re-analyzed", "path", path, "functions", len(report.Functions))
	}
	agg.Finalize()
	a.saveSnapshot(ctx, agg)
}

func (a *App) saveSnapshot(ctx context.Context, agg *analyze.Aggregate) {
	if a.store == nil {
		return
	}
	if err := a.store.SaveSnapshot(ctx, history.SnapshotOf(agg)); err != nil {
		a.logger.Warn("snapshot save failed", "error", err)
	}
}

// PrintSummary writes the human-readable scan summary, including the trend
// against the previous run when history is available.
func (a *App) PrintSummary(ctx context.Context, agg *analyze.Aggregate) {
	t := agg.Totals
	fmt.Printf("gauge run %s\n", agg.RunID)
	fmt.Printf("  files:     %d analyzed, %d failed\n", t.Files, len(agg.Failures))
	fmt.Printf("  functions: %d\n", t.Functions)
	fmt.Printf("  lines:     %d physical, %d logical, %d comment, %d blank\n",
		t.Lines.Physical, t.Lines.Logical, t.Lines.Comment, t.Lines.Blank)
	fmt.Printf("  maintainability: %.1f\n", t.AvgMaintainability)

	for _, f := range agg.Failures {
		fmt.Printf("  FAIL %s [%s] %s\n", f.Path, f.Code, f.Message)
	}

	if a.store != nil {
		if snaps, err := a.store.Recent(ctx, 2); err == nil && len(snaps) == 2 {
			prev := snaps[1]
			fmt.Printf("  trend:     maintainability %+.1f, functions %+d since %s\n",
				t.AvgMaintainability-prev.AvgMaintainability,
				t.Functions-prev.Functions,
				prev.RecordedAt.Format(time.RFC3339))
		}
	}
}

// WriteJSON emits the full aggregate to stdout.
func (a *App) WriteJSON(agg *analyze.Aggregate) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(agg)
}
