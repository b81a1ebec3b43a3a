package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder forwards build metrics to a Prometheus registry.
type PrometheusRecorder struct {
	buildDuration prometheus.Histogram
	stageDuration *prometheus.HistogramVec
	buildOutcomes *prometheus.CounterVec
	documents     prometheus.Counter
}

// NewPrometheusRecorder creates a recorder and registers its collectors
// with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docpipe_build_duration_seconds",
			Help:    "Duration of complete pipeline builds.",
			Buckets: prometheus.DefBuckets,
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docpipe_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		buildOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docpipe_builds_total",
			Help: "Completed builds by outcome.",
		}, []string{"outcome"}),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docpipe_documents_rendered_total",
			Help: "Documents rendered across all builds.",
		}),
	}
	reg.MustRegister(r.buildDuration, r.stageDuration, r.buildOutcomes, r.documents)
	return r
}

func (r *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	r.buildDuration.Observe(d.Seconds())
}

func (r *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (r *PrometheusRecorder) IncBuildOutcome(outcome string) {
	r.buildOutcomes.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRecorder) AddDocumentsRendered(n int) {
	r.documents.Add(float64(n))
}
