package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	queryRendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdesk_query_renders_total",
			Help: "Total number of query render calls by outcome.",
		},
		[]string{"outcome"},
	)
	queryRenderDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "duckdesk_query_render_duration_seconds",
			Help:    "Query render latency including session setup and teardown.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
	queryRenderedRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "duckdesk_query_rendered_rows",
			Help:    "Number of body rows per rendered table.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)
	indexRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdesk_index_requests_total",
			Help: "Total number of directory index calls by outcome.",
		},
		[]string{"outcome"},
	)
	indexNodes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "duckdesk_index_nodes",
			Help:    "Number of nodes in each returned directory tree.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)
	indexSkippedDirsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdesk_index_skipped_dirs_total",
			Help: "Total number of subdirectories skipped during indexing by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		queryRendersTotal,
		queryRenderDurationSeconds,
		queryRenderedRows,
		indexRequestsTotal,
		indexNodes,
		indexSkippedDirsTotal,
	)
}

func ObserveRender(outcome string, rows int, elapsed time.Duration) {
	queryRendersTotal.WithLabelValues(outcome).Inc()
	queryRenderDurationSeconds.Observe(elapsed.Seconds())
	if outcome == "ok" {
		queryRenderedRows.Observe(float64(rows))
	}
}

func ObserveIndex(outcome string, nodes int) {
	indexRequestsTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		indexNodes.Observe(float64(nodes))
	}
}

func IncSkippedDir(reason string) {
	indexSkippedDirsTotal.WithLabelValues(reason).Inc()
}
