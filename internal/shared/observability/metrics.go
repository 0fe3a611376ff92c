package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gauge_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gauge_scan_seconds",
		Help:    "Wall-clock time of a full scan run.",
		Buckets: prometheus.DefBuckets,
	})

	FilesAnalyzedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gauge_files_analyzed_total",
		Help: "Total number of files analyzed, by language.",
	}, []string{"language"})

	FunctionsMeasuredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gauge_functions_measured_total",
		Help: "Total number of function units measured.",
	})

	AnalysisFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gauge_analysis_failures_total",
		Help: "Total number of per-file analysis failures, by error code.",
	}, []string{"code"})

	PartialParsesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gauge_partial_parses_total",
		Help: "Total number of files whose tree contained error-recovery nodes.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gauge_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
