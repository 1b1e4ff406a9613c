// Package metrics provides a Prometheus-backed sink for workflow boundary
// events.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"agentflow/pkg/events"
)

// Recorder implements events.Sink over Prometheus collectors.
type Recorder struct {
	runsTotal            *prometheus.CounterVec
	turnsTotal           *prometheus.CounterVec
	providerCallsTotal   *prometheus.CounterVec
	providerCallDuration *prometheus.HistogramVec
	toolDispatchesTotal  *prometheus.CounterVec
	retriesTotal         *prometheus.CounterVec
}

// NewRecorder creates a recorder registering its collectors with the
// given registerer. Pass prometheus.DefaultRegisterer for the process
// default.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_runs_total",
				Help: "Total workflow runs by agent and status",
			},
			[]string{"agent", "status"},
		),
		turnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_turns_total",
				Help: "Total generate-then-dispatch turns by agent",
			},
			[]string{"agent"},
		),
		providerCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_provider_calls_total",
				Help: "Total provider generate calls by agent and status",
			},
			[]string{"agent", "status"},
		),
		providerCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "workflow_provider_call_duration_seconds",
				Help:    "Duration of provider generate calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"agent"},
		),
		toolDispatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_tool_dispatches_total",
				Help: "Total tool invocations by tool and status",
			},
			[]string{"tool", "status"},
		),
		retriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workflow_generate_retries_total",
				Help: "Total retried generate attempts by agent",
			},
			[]string{"agent"},
		),
	}
}

func status(errText string) string {
	if errText != "" {
		return "error"
	}
	return "success"
}

// Publish implements events.Sink.
func (r *Recorder) Publish(_ context.Context, ev events.Event) error {
	switch ev.Type {
	case events.TypeRunFinished:
		r.runsTotal.WithLabelValues(ev.Agent, status(ev.Err)).Inc()
	case events.TypeTurnStarted:
		r.turnsTotal.WithLabelValues(ev.Agent).Inc()
	case events.TypeProviderCall:
		r.providerCallsTotal.WithLabelValues(ev.Agent, status(ev.Err)).Inc()
		r.providerCallDuration.WithLabelValues(ev.Agent).Observe(ev.Duration.Seconds())
	case events.TypeToolDispatched:
		r.toolDispatchesTotal.WithLabelValues(ev.Tool, status(ev.Err)).Inc()
	case events.TypeRetryAttempt:
		r.retriesTotal.WithLabelValues(ev.Agent).Inc()
	}
	return nil
}
