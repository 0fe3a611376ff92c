// Package analyze ties the parsing, traversal and metric layers together:
// single-file analysis, the concurrent directory scan and the aggregate
// report model.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gauge/internal/core/errors"
	"gauge/internal/engine/metrics"
	"gauge/internal/engine/parser"
	"gauge/internal/engine/visitor"
	"gauge/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Analyzer produces file reports. It is safe for concurrent use: the parser
// pools its native parsers per language and everything downstream is pure.
type Analyzer struct {
	parser *parser.Parser
	logger *slog.Logger
}

func NewAnalyzer(p *parser.Parser, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{parser: p, logger: logger}
}

// Parser exposes the underlying parser, mainly for language lookups.
func (a *Analyzer) Parser() *parser.Parser {
	return a.parser
}

// AnalyzeFile reads and analyzes one file. langHint overrides path-based
// language detection when non-empty.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path, langHint string) (*FileReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeIO, fmt.Sprintf("reading %q", path)),
			errors.CtxPath, path)
	}
	return a.AnalyzeSource(ctx, path, content, langHint)
}

// AnalyzeSource analyzes an in-memory buffer attributed to path. The path is
// used for language detection and report labeling only; nothing is read from
// disk.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, source []byte, langHint string) (*FileReport, error) {
	_, span := observability.Tracer.Start(ctx, "analyze.file",
		trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	tree, err := a.parser.ParsePath(path, source, langHint)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	defer tree.Close()

	langID := tree.Language.ID
	span.SetAttributes(attribute.String("language", langID))

	survey, err := visitor.Visit(tree)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}

	report := &FileReport{
		Path:      path,
		Language:  langID,
		Partial:   survey.Partial,
		Functions: make([]FunctionReport, 0, len(survey.Functions)),
		Halstead:  metrics.HalsteadFromTallies(survey.FileOperators, survey.FileOperands),
		Lines:     survey.FileLines,
	}

	samples := make([]metrics.Sample, 0, len(survey.Functions))
	for _, unit := range survey.Functions {
		sample, err := metrics.Compute(unit)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxPath, path)
		}
		samples = append(samples, sample)
		report.Functions = append(report.Functions, FunctionReport{
			Name:      unit.Name,
			Kind:      unit.Kind,
			StartLine: unit.StartLine,
			EndLine:   unit.EndLine,
			Depth:     unit.Depth,
			Metrics:   sample,
		})
	}
	report.Maintainability = metrics.FileMaintainability(samples, report.Halstead, report.Lines)

	observability.FilesAnalyzedTotal.WithLabelValues(langID).Inc()
	observability.FunctionsMeasuredTotal.Add(float64(len(report.Functions)))
	if survey.Partial {
		observability.PartialParsesTotal.Inc()
		a.logger.Debug("partial parse", "path", path, "language", langID)
	}

	return report, nil
}
