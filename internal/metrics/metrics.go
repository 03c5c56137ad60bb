package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StageTotal counts stage completions per outcome (ok, error,
	// degraded for the best-effort recognize stage).
	StageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rando_pipeline_stage_total",
		Help: "Pipeline stage completions by stage and outcome.",
	}, []string{"stage", "outcome"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rando_pipeline_run_seconds",
		Help:    "End to end duration of a pipeline run.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)

// Handler returns an http.Handler for Prometheus scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
