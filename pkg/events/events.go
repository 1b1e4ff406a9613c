// Package events defines the structured observability hook invoked at
// provider-call and tool-dispatch boundaries. Sinks replace interleaved
// console logging in the core loop; the orchestrator never depends on a
// sink succeeding.
package events

import (
	"context"
	"time"
)

// Type enumerates observable boundary events.
type Type string

const (
	// TypeRunStarted fires when a workflow run begins.
	TypeRunStarted Type = "run_started"
	// TypeRunFinished fires when a workflow run ends, successfully or not.
	TypeRunFinished Type = "run_finished"
	// TypeTurnStarted fires at the top of each generate-then-dispatch turn.
	TypeTurnStarted Type = "turn_started"
	// TypeProviderCall fires after each provider generate attempt.
	TypeProviderCall Type = "provider_call"
	// TypeRetryAttempt fires before each retried generate attempt.
	TypeRetryAttempt Type = "retry_attempt"
	// TypeToolDispatched fires after each tool invocation completes.
	TypeToolDispatched Type = "tool_dispatched"
)

// Event is one observation. Fields are populated as applicable per type.
type Event struct {
	Type     Type
	Agent    string
	Tool     string
	CallID   string
	Turn     int
	Attempt  int
	Depth    int
	Duration time.Duration
	Err      string
}

// Sink receives events. Publish errors are ignored by emitters; a sink
// must not block the run loop.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// NoopSink discards all events.
type NoopSink struct{}

// Publish implements Sink.
func (NoopSink) Publish(context.Context, Event) error { return nil }

// MultiSink fans events out to several sinks.
type MultiSink []Sink

// Publish implements Sink. The first error is returned after all sinks
// have been invoked.
func (m MultiSink) Publish(ctx context.Context, ev Event) error {
	var first error
	for _, s := range m {
		if err := s.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
