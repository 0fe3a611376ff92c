package analyze

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	"gauge/internal/core/errors"
	"gauge/internal/engine/parser"
	"gauge/internal/shared/observability"
	"gauge/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// workersEnvVar overrides the worker pool size when ScanOptions leaves it
// unset.
const workersEnvVar = "GAUGE_SCAN_WORKERS"

// ScanOptions tunes one Scan run.
type ScanOptions struct {
	// Workers is the analysis worker count. Zero means the GAUGE_SCAN_WORKERS
	// environment variable, falling back to the logical CPU count.
	Workers int
	// LanguageHint forces every file through one language instead of
	// path-based detection.
	LanguageHint string
	// ThrottleFilesPerSec caps the file dispatch rate. Zero disables the cap.
	ThrottleFilesPerSec float64
	// SkipGenerated silently drops files carrying a generated-code marker.
	SkipGenerated bool
}

func (o ScanOptions) workerCount() (int, error) {
	n := o.Workers
	if n == 0 {
		if raw := os.Getenv(workersEnvVar); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				return 0, errors.Wrap(err, errors.CodeConfig,
					fmt.Sprintf("invalid %s value %q", workersEnvVar, raw))
			}
			n = parsed
		}
	}
	if n == 0 {
		n = runtime.NumCPU()
	}
	if n < 1 {
		return 0, errors.New(errors.CodeConfig,
			fmt.Sprintf("worker count %d leaves no usable workers", n))
	}
	return n, nil
}

type scanResult struct {
	path   string
	report *FileReport
	err    error
}

// Scan analyzes every path concurrently and merges the outcomes into one
// aggregate. A failing file is contained as a Failure entry; the scan never
// aborts because one input is malformed. Configuration problems detected
// before dispatch (no paths, unusable worker count) are the only fatal
// errors. Cancellation of ctx stops dispatch and returns the partial
// aggregate together with the context error.
func (a *Analyzer) Scan(ctx context.Context, paths []string, opts ScanOptions) (*Aggregate, error) {
	if len(paths) == 0 {
		return nil, errors.New(errors.CodeConfig, "scan invoked with no input paths")
	}
	workers, err := opts.workerCount()
	if err != nil {
		return nil, err
	}

	ctx, span := observability.Tracer.Start(ctx, "analyze.scan",
		trace.WithAttributes(
			attribute.Int("paths", len(paths)),
			attribute.Int("workers", workers),
		))
	defer span.End()

	var limiter *util.Limiter
	if opts.ThrottleFilesPerSec > 0 {
		limiter = util.NewLimiter(opts.ThrottleFilesPerSec, 1)
	}

	start := time.Now()
	tasks := make(chan string, workers)
	results := make(chan scanResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range tasks {
				results <- a.analyzeTask(ctx, path, opts, limiter)
			}
		}()
	}

	go func() {
	dispatch:
		for _, path := range paths {
			select {
			case <-ctx.Done():
				break dispatch
			case tasks <- path:
			}
		}
		close(tasks)
		wg.Wait()
		close(results)
	}()

	// Single reducer: the aggregate's lock never contends with workers.
	agg := NewAggregate()
	for res := range results {
		switch {
		case res.err != nil:
			code := string(errors.CodeOf(res.err))
			observability.AnalysisFailuresTotal.WithLabelValues(code).Inc()
			a.logger.Warn("file analysis failed", "path", res.path, "code", code, "error", res.err)
			agg.AddFailure(Failure{Path: res.path, Code: code, Message: res.err.Error()})
		case res.report != nil:
			agg.AddReport(*res.report)
		}
	}
	agg.Finalize()
	observability.ScanDuration.Observe(time.Since(start).Seconds())

	if ctx.Err() != nil {
		return agg, errors.Wrap(ctx.Err(), errors.CodeAggregation, "scan interrupted before all paths were processed")
	}
	return agg, nil
}

// analyzeTask handles one dispatched path. A nil report with a nil error
// means the file was deliberately skipped.
func (a *Analyzer) analyzeTask(ctx context.Context, path string, opts ScanOptions, limiter *util.Limiter) scanResult {
	if limiter != nil {
		if err := limiter.Wait(ctx, 1); err != nil {
			return scanResult{path: path, err: errors.Wrap(err, errors.CodeIO, "throttle wait aborted")}
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return scanResult{path: path, err: errors.AddContext(
			errors.Wrap(err, errors.CodeIO, fmt.Sprintf("reading %q", path)),
			errors.CtxPath, path)}
	}
	if opts.SkipGenerated && parser.IsGeneratedFile(content) {
		a.logger.Debug("skipping generated file", "path", path)
		return scanResult{path: path}
	}

	report, err := a.AnalyzeSource(ctx, path, content, opts.LanguageHint)
	return scanResult{path: path, report: report, err: err}
}
