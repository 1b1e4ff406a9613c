// Package workflow drives turn-based agent runs: it owns the agent and
// tool registries, the bounded turn loop with retry and failure
// absorption, concurrent tool dispatch, and recursive delegation.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"agentflow/pkg/agent"
	"agentflow/pkg/events"
	"agentflow/pkg/logx"
	"agentflow/pkg/msg"
	"agentflow/pkg/tools"
)

// Defaults for orchestrator bounds.
const (
	DefaultMaxTurns           = 8
	DefaultMaxDelegationDepth = 4
)

// AgentRegistration is the explicit capability record stored per agent.
// Tools lists the scoped tool names visible to the agent; empty exposes
// the entire registry. OnRetryAttempt, when set, is notified with the
// attempt number before each generate attempt.
type AgentRegistration struct {
	Agent          agent.Agent
	Tools          []string
	OnRetryAttempt func(attempt int)
}

// Orchestrator owns the registries and the run loop. Registration is
// expected to happen once at startup, not concurrently with runs.
type Orchestrator struct {
	mu       sync.RWMutex
	agents   map[string]AgentRegistration
	tools    *tools.Registry
	maxTurns int
	maxDepth int
	retry    RetryPolicy
	sink     events.Sink
	logger   *logx.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxTurns bounds the turn loop. Panics when n is not positive.
func WithMaxTurns(n int) Option {
	if n <= 0 {
		panic("workflow: max turns must be positive")
	}
	return func(o *Orchestrator) { o.maxTurns = n }
}

// WithMaxDelegationDepth bounds recursive delegation. Panics when n is
// negative; zero forbids delegation entirely.
func WithMaxDelegationDepth(n int) Option {
	if n < 0 {
		panic("workflow: delegation depth must not be negative")
	}
	return func(o *Orchestrator) { o.maxDepth = n }
}

// WithRetryPolicy sets the generate retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *Orchestrator) { o.retry = p }
}

// WithSink sets the observability sink invoked at run, provider-call, and
// tool-dispatch boundaries.
func WithSink(s events.Sink) Option {
	return func(o *Orchestrator) { o.sink = s }
}

// WithLogger sets the orchestrator's logger.
func WithLogger(l *logx.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator with empty registries.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		agents:   make(map[string]AgentRegistration),
		tools:    tools.NewRegistry(),
		maxTurns: DefaultMaxTurns,
		maxDepth: DefaultMaxDelegationDepth,
		retry:    DefaultRetryPolicy,
		sink:     events.NoopSink{},
		logger:   logx.NewLogger("workflow"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RegisterAgent stores a registration by case-insensitive agent name,
// overwriting any prior registration with the same name.
func (o *Orchestrator) RegisterAgent(reg AgentRegistration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.agents[strings.ToLower(reg.Agent.Descriptor().Name)] = reg
}

// RegisterLLMAgent registers a provider-backed agent, wiring its retry
// notification into the registration record.
func (o *Orchestrator) RegisterLLMAgent(a *agent.LLMAgent, toolNames ...string) {
	o.RegisterAgent(AgentRegistration{
		Agent:          a,
		Tools:          toolNames,
		OnRetryAttempt: a.OnRetryAttempt,
	})
}

// RegisterTool stores a tool by case-insensitive name, overwriting any
// prior registration.
func (o *Orchestrator) RegisterTool(t tools.Tool) {
	o.tools.Register(t)
}

// Run executes a bounded turn loop for the named agent. The returned
// conversation is populated even on failure so callers can audit partial
// progress. Only registry violations, turn exhaustion, delegation depth,
// and cancellation surface as errors; generation and tool failures are
// absorbed into the conversation.
func (o *Orchestrator) Run(ctx context.Context, agentName string, req msg.RunRequest) (msg.RunResult, error) {
	return o.run(ctx, agentName, req, 0)
}

func (o *Orchestrator) lookupAgent(name string) (AgentRegistration, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	reg, ok := o.agents[strings.ToLower(name)]
	return reg, ok
}

func (o *Orchestrator) run(ctx context.Context, agentName string, req msg.RunRequest, depth int) (msg.RunResult, error) {
	conversation := msg.CloneMessages(req.Messages)

	if depth > o.maxDepth {
		return msg.RunResult{Conversation: conversation},
			fmt.Errorf("%w: depth %d exceeds limit %d", ErrDelegationDepthExceeded, depth, o.maxDepth)
	}

	reg, ok := o.lookupAgent(agentName)
	if !ok {
		return msg.RunResult{Conversation: conversation},
			fmt.Errorf("%w: %q", ErrAgentNotRegistered, agentName)
	}
	name := reg.Agent.Descriptor().Name
	visible := o.tools.Definitions(reg.Tools)

	_ = o.sink.Publish(ctx, events.Event{Type: events.TypeRunStarted, Agent: name, Depth: depth})

	delegate := func(ctx context.Context, target string, req msg.RunRequest) (msg.RunResult, error) {
		return o.run(ctx, target, req, depth+1)
	}

	finish := func(result msg.RunResult, turn int, err error) (msg.RunResult, error) {
		ev := events.Event{Type: events.TypeRunFinished, Agent: name, Turn: turn, Depth: depth}
		if err != nil {
			ev.Err = err.Error()
		}
		_ = o.sink.Publish(ctx, ev)
		return result, err
	}

	for turn := 1; turn <= o.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return finish(msg.RunResult{Conversation: conversation}, turn, err)
		}
		_ = o.sink.Publish(ctx, events.Event{Type: events.TypeTurnStarted, Agent: name, Turn: turn, Depth: depth})

		result, err := o.generateWithRetry(ctx, reg, conversation, visible)
		if err != nil {
			return finish(msg.RunResult{Conversation: conversation}, turn, err)
		}

		if result.Message != nil {
			conversation = append(conversation, *result.Message)
		}

		if len(result.ToolCalls) == 0 {
			return finish(msg.RunResult{
				FinalMessage: result.Message,
				Conversation: conversation,
			}, turn, nil)
		}

		results, err := o.dispatchToolCalls(ctx, result.ToolCalls, delegate)
		if err != nil {
			return finish(msg.RunResult{Conversation: conversation}, turn, err)
		}
		for _, r := range results {
			conversation = append(conversation, msg.NewToolResultMessage(r.CallID, r.Output, r.IsError))
		}
	}

	return finish(msg.RunResult{Conversation: conversation}, o.maxTurns,
		fmt.Errorf("%w: agent %q did not finish within %d turns", ErrMaxTurnsExceeded, name, o.maxTurns))
}

// dispatchToolCalls resolves every call, fails fast on unknown tools, and
// invokes all resolved tools concurrently. Results come back in the order
// the calls were issued, never in completion order. Tool failures and
// panics are folded into error results; they do not fail the turn.
func (o *Orchestrator) dispatchToolCalls(ctx context.Context, calls []msg.ToolCall, delegate tools.DelegateFunc) ([]tools.Result, error) {
	resolved := make([]tools.Tool, len(calls))
	for i, call := range calls {
		t, ok := o.tools.Get(call.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrToolNotRegistered, call.Name)
		}
		resolved[i] = t
	}

	results := make([]tools.Result, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i := range calls {
		g.Go(func() error {
			call := calls[i]
			inv := tools.InvocationContext{Call: call, Delegate: delegate}

			start := time.Now()
			res, err := invokeTool(gctx, resolved[i], inv)
			ev := events.Event{
				Type:     events.TypeToolDispatched,
				Tool:     call.Name,
				CallID:   call.CallID,
				Duration: time.Since(start),
			}
			if err != nil {
				// Depth violations are a lifecycle failure, not a tool
				// failure; they fail the run instead of feeding an error
				// result back to the agent.
				if errors.Is(err, ErrDelegationDepthExceeded) {
					ev.Err = err.Error()
					_ = o.sink.Publish(gctx, ev)
					return err
				}
				ev.Err = err.Error()
				res = tools.Result{
					CallID:  call.CallID,
					Output:  fmt.Sprintf("tool %q failed: %v", call.Name, err),
					IsError: true,
				}
			}
			if res.CallID == "" {
				res.CallID = call.CallID
			}
			results[i] = res
			_ = o.sink.Publish(gctx, ev)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// invokeTool runs one tool call, converting a panic into an invocation
// error so a misbehaving tool cannot take down the run.
func invokeTool(ctx context.Context, t tools.Tool, inv tools.InvocationContext) (res tools.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %q panicked: %v", t.Name(), r)
		}
	}()
	return t.Invoke(ctx, inv)
}
