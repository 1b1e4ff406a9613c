package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agentflow/pkg/agent"
	"agentflow/pkg/events"
	"agentflow/pkg/msg"
	"agentflow/pkg/tools"
)

// RetryPolicy bounds retries of a single agent generate call.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, at least 1.
	MaxAttempts int
	// Delay is slept between attempts, subject to cancellation.
	Delay time.Duration
	// ShouldRetry decides whether a failed attempt is retried. Nil means
	// retry everything except context cancellation.
	ShouldRetry func(error) bool
}

// DefaultRetryPolicy retries twice more after the first failure with a
// short pause between attempts.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	Delay:       2 * time.Second,
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) shouldRetry(err error) bool {
	if p.ShouldRetry != nil {
		return p.ShouldRetry(err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// generateWithRetry runs one generate call under the retry policy.
//
// Failure handling follows the absorb policy: an error the predicate
// declines to retry is fatal and propagates; exhausting all attempts is
// not. Exhaustion fabricates a synthetic assistant message carrying the
// agent's name and the last error text, returned as a tool-call-free turn
// so the run terminates with that text as its final message.
func (o *Orchestrator) generateWithRetry(ctx context.Context, reg AgentRegistration, conversation []msg.Message, visible []tools.ToolDefinition) (agent.Turn, error) {
	name := reg.Agent.Descriptor().Name
	policy := o.retry

	var lastErr error
	for attempt := 1; attempt <= policy.attempts(); attempt++ {
		if attempt > 1 {
			_ = o.sink.Publish(ctx, events.Event{
				Type:    events.TypeRetryAttempt,
				Agent:   name,
				Attempt: attempt,
			})
			if policy.Delay > 0 {
				select {
				case <-ctx.Done():
					return agent.Turn{}, ctx.Err()
				case <-time.After(policy.Delay):
				}
			}
		}

		if reg.OnRetryAttempt != nil {
			reg.OnRetryAttempt(attempt)
		}

		turn, err := reg.Agent.Generate(ctx, conversation, visible)
		if err == nil {
			return turn, nil
		}
		lastErr = err
		if !policy.shouldRetry(err) {
			return agent.Turn{}, err
		}
	}

	synthetic := msg.NewAssistantMessage(name,
		fmt.Sprintf("ERROR: agent %q failed to generate a response: %v", name, lastErr))
	return agent.Turn{Message: &synthetic}, nil
}
