// Package metrics provides Prometheus instrumentation for Quarry's
// ingestion and query paths. Collectors are registered once at package
// init via promauto and are safe for concurrent use.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsIngested tracks rows durably appended to a store builder.
	// Labels: dataset (indicator/sensor)
	RowsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quarry_rows_ingested_total",
			Help: "Total number of rows ingested into store builders",
		},
		[]string{"dataset"},
	)

	// RowsSkipped tracks rows dropped during ingestion because they failed
	// to parse (wrong field count, non-numeric fields).
	RowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quarry_rows_skipped_total",
			Help: "Total number of malformed rows skipped during ingestion",
		},
		[]string{"dataset"},
	)

	// FilesIngested tracks source files fully consumed.
	FilesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quarry_files_ingested_total",
			Help: "Total number of source files ingested",
		},
	)

	// QueriesTotal tracks queries served by a built store.
	// Labels: operation (range_scan/find_min/find_max/sum_by_year), layout
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quarry_queries_total",
			Help: "Total number of queries served",
		},
		[]string{"operation", "layout"},
	)

	// ScanDuration tracks the latency distribution of full-store scans.
	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "quarry_scan_duration_seconds",
			Help: "Scan latency in seconds",
			Buckets: []float64{
				1e-5, // 10μs - tiny stores
				1e-4, // 100μs
				1e-3, // 1ms
				1e-2, // 10ms - typical single-file stores
				1e-1, // 100ms
				1,    // 1s - large directory stores
				10,   // 10s
			},
		},
		[]string{"operation", "layout"},
	)
)

// Timer measures the duration of a single operation.
type Timer struct {
	start     time.Time
	operation string
	layout    string
}

// NewTimer starts a timer for the given operation and layout.
func NewTimer(operation, layout string) *Timer {
	return &Timer{
		start:     time.Now(),
		operation: operation,
		layout:    layout,
	}
}

// Stop observes the elapsed time into ScanDuration and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	ScanDuration.WithLabelValues(t.operation, t.layout).Observe(elapsed.Seconds())
	return elapsed
}
