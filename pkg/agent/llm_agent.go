package agent

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"agentflow/pkg/events"
	"agentflow/pkg/llm"
	"agentflow/pkg/msg"
	"agentflow/pkg/tools"
)

// LLMAgent is the provider-backed agent: it translates conversations into
// incremental provider requests, sends them through an llm.Client, and
// translates responses back into turns.
//
// The translator's chaining state lives on the instance and persists
// across turns and runs of the same conversation. One LLMAgent instance
// must serve one conversation at a time; give parallel conversations
// their own instances.
type LLMAgent struct {
	desc       Descriptor
	client     llm.Client
	translator *Translator
	sink       events.Sink
	attempt    atomic.Int64
}

// NewLLMAgent creates a provider-backed agent from a descriptor and
// client. The descriptor is normalized once here. A nil sink disables
// boundary events.
func NewLLMAgent(desc Descriptor, client llm.Client, sink events.Sink) *LLMAgent {
	if sink == nil {
		sink = events.NoopSink{}
	}
	return &LLMAgent{
		desc:       desc.Normalize(),
		client:     client,
		translator: NewTranslator(),
		sink:       sink,
	}
}

// Descriptor implements Agent.
func (a *LLMAgent) Descriptor() Descriptor { return a.desc }

// OnRetryAttempt records the current attempt number ahead of a generate
// call. Request construction is replayed on every attempt; the idempotency
// set keeps replays from resubmitting tool outputs.
func (a *LLMAgent) OnRetryAttempt(attempt int) {
	a.attempt.Store(int64(attempt))
}

// Generate implements Agent.
func (a *LLMAgent) Generate(ctx context.Context, conversation []msg.Message, visible []tools.ToolDefinition) (Turn, error) {
	req, submitIDs, err := a.translator.BuildRequest(a.desc, conversation, visible)
	if err != nil {
		return Turn{}, fmt.Errorf("agent %q: building provider request: %w", a.desc.Name, err)
	}

	start := time.Now()
	resp, err := a.client.CreateResponse(ctx, req)
	ev := events.Event{
		Type:     events.TypeProviderCall,
		Agent:    a.desc.Name,
		Attempt:  int(a.attempt.Load()),
		Duration: time.Since(start),
	}
	if err != nil {
		ev.Err = err.Error()
		_ = a.sink.Publish(ctx, ev)
		return Turn{}, fmt.Errorf("agent %q: provider call failed: %w", a.desc.Name, err)
	}
	_ = a.sink.Publish(ctx, ev)

	// The provider accepted the submitted tool outputs; never resend them.
	a.translator.MarkSubmitted(submitIDs)

	turn, err := a.translator.ParseResponse(a.desc.Name, resp)
	if err != nil {
		return Turn{}, fmt.Errorf("agent %q: parsing provider response: %w", a.desc.Name, err)
	}
	return turn, nil
}
