package analyze_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"gauge/internal/core/analyze"
	"gauge/internal/core/errors"
	"gauge/internal/engine/grammar"
	"gauge/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyzer(t *testing.T) *analyze.Analyzer {
	t.Helper()
	registry, err := grammar.Build(nil)
	require.NoError(t, err)
	p, err := parser.New(registry)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return analyze.NewAnalyzer(p, logger)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const goSample = `package p

func add(a, b int) int {
	if a > 0 && b > 0 {
		return a + b
	}
	return 0
}
`

func TestAnalyzeSourceProducesFunctionReports(t *testing.T) {
	a := newAnalyzer(t)
	report, err := a.AnalyzeSource(context.Background(), "add.go", []byte(goSample), "")
	require.NoError(t, err)

	assert.Equal(t, "go", report.Language)
	assert.False(t, report.Partial)
	require.Len(t, report.Functions, 1)

	fn := report.Functions[0]
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, 2, fn.Metrics.Parameters)
	assert.Equal(t, 2, fn.Metrics.Exits)
	assert.Equal(t, 3, fn.Metrics.Cyclomatic, "if plus one boolean operator")
	assert.Greater(t, report.Maintainability, 0.0)
	assert.LessOrEqual(t, report.Maintainability, 100.0)
}

func TestAnalyzeEmptySource(t *testing.T) {
	a := newAnalyzer(t)
	report, err := a.AnalyzeSource(context.Background(), "empty.go", nil, "")
	require.NoError(t, err)

	assert.Empty(t, report.Functions)
	assert.Zero(t, report.Lines.Physical)
	assert.Zero(t, report.Lines.Logical)
	assert.Zero(t, report.Lines.Comment)
	assert.Zero(t, report.Lines.Blank)
	assert.Equal(t, 100.0, report.Maintainability)
}

func TestAnalyzeSourceIsDeterministic(t *testing.T) {
	a := newAnalyzer(t)

	first, err := a.AnalyzeSource(context.Background(), "add.go", []byte(goSample), "")
	require.NoError(t, err)
	second, err := a.AnalyzeSource(context.Background(), "add.go", []byte(goSample), "")
	require.NoError(t, err)

	fb, err := json.Marshal(first)
	require.NoError(t, err)
	sb, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, fb, sb, "identical input must yield byte-identical reports")
}

func TestFileReportRoundTrip(t *testing.T) {
	a := newAnalyzer(t)
	report, err := a.AnalyzeSource(context.Background(), "add.go", []byte(goSample), "")
	require.NoError(t, err)

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded analyze.FileReport
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, *report, decoded)
}

func TestScanContainsPerFileFailures(t *testing.T) {
	dir := t.TempDir()
	good1 := writeFile(t, dir, "a.go", goSample)
	good2 := writeFile(t, dir, "b.py", "def f():\n    return 1\n")
	unknown := writeFile(t, dir, "c.txt", "not source\n")
	missing := filepath.Join(dir, "missing.go")

	a := newAnalyzer(t)
	agg, err := a.Scan(context.Background(), []string{good1, good2, unknown, missing}, analyze.ScanOptions{Workers: 2})
	require.NoError(t, err, "per-file failures never abort the scan")

	assert.Len(t, agg.Files, 2)
	assert.Len(t, agg.Failures, 2)
	assert.False(t, agg.AllSucceeded())
	assert.Equal(t, 1, agg.Totals.FailuresByCode[string(errors.CodeUnsupportedLanguage)])
	assert.Equal(t, 1, agg.Totals.FailuresByCode[string(errors.CodeIO)])
	assert.NotEmpty(t, agg.RunID)
}

func TestScanConcurrencyDoesNotChangeResults(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.go", goSample),
		writeFile(t, dir, "b.go", "package p\n\nfunc g() {}\n"),
		writeFile(t, dir, "c.py", "def f(x):\n    if x:\n        return 1\n    return 0\n"),
		writeFile(t, dir, "d.js", "function f(a) { return a ? 1 : 0; }\n"),
	}

	a := newAnalyzer(t)
	sequential, err := a.Scan(context.Background(), paths, analyze.ScanOptions{Workers: 1})
	require.NoError(t, err)
	concurrent, err := a.Scan(context.Background(), paths, analyze.ScanOptions{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, sequential.Files, concurrent.Files)
	assert.Equal(t, sequential.Failures, concurrent.Failures)
	assert.Equal(t, sequential.Totals, concurrent.Totals)
}

func TestScanWithoutPathsIsAConfigError(t *testing.T) {
	a := newAnalyzer(t)
	_, err := a.Scan(context.Background(), nil, analyze.ScanOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfig))
}

func TestScanRejectsNegativeWorkerCount(t *testing.T) {
	a := newAnalyzer(t)
	_, err := a.Scan(context.Background(), []string{"a.go"}, analyze.ScanOptions{Workers: -1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfig))
}

func TestScanSkipsGeneratedFiles(t *testing.T) {
	dir := t.TempDir()
	kept := writeFile(t, dir, "a.go", goSample)
	writeFile(t, dir, "gen.go", "// Code generated by gauge-gen. DO NOT EDIT.\npackage p\n")
	generated := filepath.Join(dir, "gen.go")

	a := newAnalyzer(t)
	agg, err := a.Scan(context.Background(), []string{kept, generated}, analyze.ScanOptions{Workers: 1, SkipGenerated: true})
	require.NoError(t, err)

	require.Len(t, agg.Files, 1)
	assert.Equal(t, kept, agg.Files[0].Path)
	assert.Empty(t, agg.Failures, "a skipped file is neither a report nor a failure")
}

func TestAggregateReplacesByPath(t *testing.T) {
	agg := analyze.NewAggregate()
	agg.AddReport(analyze.FileReport{Path: "a.go", Maintainability: 10})
	agg.AddReport(analyze.FileReport{Path: "a.go", Maintainability: 50})
	agg.AddFailure(analyze.Failure{Path: "b.go", Code: string(errors.CodeIO), Message: "gone"})
	agg.AddReport(analyze.FileReport{Path: "b.go", Maintainability: 70})
	agg.Finalize()

	require.Len(t, agg.Files, 2)
	assert.Equal(t, 50.0, agg.Files[0].Maintainability)
	assert.Empty(t, agg.Failures, "a successful re-analysis clears the failure")
	assert.Equal(t, 2, agg.Totals.Files)
}

func TestScanDirectoriesFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/main.go", goSample)
	writeFile(t, dir, "src/main_test.go", "package p\n")
	writeFile(t, dir, "src/util.py", "x = 1\n")
	writeFile(t, dir, "src/readme.md", "# notes\n")
	writeFile(t, dir, "node_modules/dep/index.js", "module.exports = 1;\n")

	registry, err := grammar.Build(nil)
	require.NoError(t, err)

	paths, err := analyze.ScanDirectories([]string{dir}, registry, analyze.WalkOptions{
		ExcludeDirs: []string{"node_modules"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "src", "main.go"),
		filepath.Join(dir, "src", "util.py"),
	}, paths)

	withTests, err := analyze.ScanDirectories([]string{dir}, registry, analyze.WalkOptions{
		ExcludeDirs:  []string{"node_modules"},
		IncludeTests: true,
	})
	require.NoError(t, err)
	assert.Len(t, withTests, 3)
}

func TestScanDirectoriesRejectsBadPattern(t *testing.T) {
	registry, err := grammar.Build(nil)
	require.NoError(t, err)

	_, err = analyze.ScanDirectories([]string{"."}, registry, analyze.WalkOptions{
		ExcludeDirs: []string{"["},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfig))
}
