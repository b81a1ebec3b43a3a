// Package metrics provides observability hooks for pipeline builds.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder. Daemon mode injects the Prometheus implementation.
package metrics

import "time"

// Outcome labels for build counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Recorder defines observability hooks for build and stage metrics.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	ObserveStageDuration(stage string, d time.Duration)
	IncBuildOutcome(outcome string)
	AddDocumentsRendered(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are
// not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)        {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string)                    {}
func (NoopRecorder) AddDocumentsRendered(int)                  {}
