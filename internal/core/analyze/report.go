package analyze

import (
	"sort"
	"sync"
	"time"

	"gauge/internal/engine/metrics"
	"gauge/internal/engine/visitor"

	"github.com/google/uuid"
)

// FunctionReport is the metric sample of one recognized function span.
type FunctionReport struct {
	Name      string         `json:"name"`
	Kind      string         `json:"kind"`
	StartLine int            `json:"start_line"`
	EndLine   int            `json:"end_line"`
	Depth     int            `json:"depth"`
	Metrics   metrics.Sample `json:"metrics"`
}

// FileReport aggregates every function sample in one file plus the
// file-level Halstead tallies, line classification and maintainability
// index. Reports are plain data: rendering is an external concern, and a
// report must survive a serialize/parse round trip unchanged.
type FileReport struct {
	Path            string            `json:"path"`
	Language        string            `json:"language"`
	Partial         bool              `json:"partial,omitempty"`
	Functions       []FunctionReport  `json:"functions"`
	Halstead        metrics.Halstead  `json:"halstead"`
	Lines           visitor.LineTally `json:"lines"`
	Maintainability float64           `json:"maintainability"`
}

// Failure records one file that could not be analyzed.
type Failure struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Totals is the running cross-file accumulation of an aggregate.
type Totals struct {
	Files              int               `json:"files"`
	Functions          int               `json:"functions"`
	Lines              visitor.LineTally `json:"lines"`
	FailuresByCode     map[string]int    `json:"failures_by_code,omitempty"`
	AvgMaintainability float64           `json:"avg_maintainability"`
}

// Aggregate is the cross-file result of one scan run. It is the only entity
// mutated concurrently; AddReport and AddFailure are safe to call from any
// goroutine, and a file's contribution is atomic: either its full report is
// merged or its failure is recorded, never a half-merged state.
type Aggregate struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Files      []FileReport `json:"files"`
	Failures   []Failure    `json:"failures"`
	Totals     Totals       `json:"totals"`

	mu sync.Mutex
}

func NewAggregate() *Aggregate {
	return &Aggregate{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Files:     make([]FileReport, 0),
		Failures:  make([]Failure, 0),
	}
}

// AddReport merges a file report, replacing any previous entry for the same
// path so watch-mode re-analysis stays idempotent.
func (a *Aggregate) AddReport(r FileReport) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dropPathLocked(r.Path)
	a.Files = append(a.Files, r)
}

// AddFailure records a failed file, replacing any previous entry for the path.
func (a *Aggregate) AddFailure(f Failure) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dropPathLocked(f.Path)
	a.Failures = append(a.Failures, f)
}

// RemovePath drops a path from the aggregate entirely (file deleted under
// watch mode).
func (a *Aggregate) RemovePath(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dropPathLocked(path)
}

func (a *Aggregate) dropPathLocked(path string) {
	for i := range a.Files {
		if a.Files[i].Path == path {
			a.Files = append(a.Files[:i], a.Files[i+1:]...)
			break
		}
	}
	for i := range a.Failures {
		if a.Failures[i].Path == path {
			a.Failures = append(a.Failures[:i], a.Failures[i+1:]...)
			break
		}
	}
}

// AllSucceeded reports whether every scanned file produced a report.
func (a *Aggregate) AllSucceeded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Failures) == 0
}

// Finalize orders entries by path and recomputes totals. Merge order never
// affects the finalized content: sums are commutative and entries are keyed
// by path.
func (a *Aggregate) Finalize() {
	a.mu.Lock()
	defer a.mu.Unlock()

	sort.Slice(a.Files, func(i, j int) bool { return a.Files[i].Path < a.Files[j].Path })
	sort.Slice(a.Failures, func(i, j int) bool { return a.Failures[i].Path < a.Failures[j].Path })

	totals := Totals{Files: len(a.Files)}
	var miSum float64
	for _, f := range a.Files {
		totals.Functions += len(f.Functions)
		totals.Lines.Physical += f.Lines.Physical
		totals.Lines.Logical += f.Lines.Logical
		totals.Lines.Comment += f.Lines.Comment
		totals.Lines.Blank += f.Lines.Blank
		miSum += f.Maintainability
	}
	if len(a.Files) > 0 {
		totals.AvgMaintainability = miSum / float64(len(a.Files))
	}
	if len(a.Failures) > 0 {
		totals.FailuresByCode = make(map[string]int)
		for _, f := range a.Failures {
			totals.FailuresByCode[f.Code]++
		}
	}

	a.Totals = totals
	a.FinishedAt = time.Now().UTC()
}
