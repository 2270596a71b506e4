package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration    *prom.HistogramVec
	buildDuration    prom.Histogram
	buildOutcomes    *prom.CounterVec
	documentCount    prom.Gauge
	validationIssues prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "fmforge",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual directive stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "fmforge",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "fmforge",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		documentCount: prom.NewGauge(prom.GaugeOpts{
			Namespace: "fmforge",
			Name:      "documents",
			Help:      "Number of documents in the last build",
		}),
		validationIssues: prom.NewCounter(prom.CounterOpts{
			Namespace: "fmforge",
			Name:      "validation_issues_total",
			Help:      "Schema validation issues reported across builds",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcomes, pr.documentCount, pr.validationIssues)
	return pr
}

func (pr *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	pr.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	pr.buildDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncBuildOutcome(outcome OutcomeLabel) {
	pr.buildOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (pr *PrometheusRecorder) SetDocumentCount(n int) {
	pr.documentCount.Set(float64(n))
}

func (pr *PrometheusRecorder) IncValidationIssues(n int) {
	pr.validationIssues.Add(float64(n))
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the
// provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
