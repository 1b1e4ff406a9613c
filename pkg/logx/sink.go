package logx

import (
	"context"

	"agentflow/pkg/events"
)

// Sink adapts a Logger into an events.Sink so boundary events can be
// logged without the run loop knowing about logging.
type Sink struct {
	logger *Logger
}

// NewSink wraps a logger as an event sink.
func NewSink(logger *Logger) *Sink {
	return &Sink{logger: logger}
}

// Publish implements events.Sink.
func (s *Sink) Publish(_ context.Context, ev events.Event) error {
	switch ev.Type {
	case events.TypeRunStarted:
		s.logger.Info("run started: agent=%s depth=%d", ev.Agent, ev.Depth)
	case events.TypeRunFinished:
		if ev.Err != "" {
			s.logger.Warn("run finished: agent=%s turns=%d err=%s", ev.Agent, ev.Turn, ev.Err)
		} else {
			s.logger.Info("run finished: agent=%s turns=%d", ev.Agent, ev.Turn)
		}
	case events.TypeTurnStarted:
		s.logger.Debug("turn %d started: agent=%s", ev.Turn, ev.Agent)
	case events.TypeProviderCall:
		if ev.Err != "" {
			s.logger.Warn("provider call failed: agent=%s attempt=%d in %s: %s", ev.Agent, ev.Attempt, ev.Duration, ev.Err)
		} else {
			s.logger.Debug("provider call: agent=%s attempt=%d in %s", ev.Agent, ev.Attempt, ev.Duration)
		}
	case events.TypeRetryAttempt:
		s.logger.Warn("retrying generate: agent=%s attempt=%d", ev.Agent, ev.Attempt)
	case events.TypeToolDispatched:
		if ev.Err != "" {
			s.logger.Warn("tool %s (%s) failed in %s: %s", ev.Tool, ev.CallID, ev.Duration, ev.Err)
		} else {
			s.logger.Debug("tool %s (%s) completed in %s", ev.Tool, ev.CallID, ev.Duration)
		}
	}
	return nil
}
