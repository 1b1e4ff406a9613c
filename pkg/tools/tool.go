package tools

import (
	"context"

	"agentflow/pkg/msg"
)

// Result is the tool-level outcome of an invocation. IsError marks output
// that describes a failure the agent should see; invocation-level failures
// travel on the error return instead and are folded into an error result
// by the orchestrator's dispatch wrapper.
type Result struct {
	CallID  string
	Output  string
	IsError bool
}

// DelegateFunc starts a nested workflow run against a registered agent.
// It is the orchestrator's Run, threaded into tool invocations so a tool
// can recursively delegate.
type DelegateFunc func(ctx context.Context, agentName string, req msg.RunRequest) (msg.RunResult, error)

// InvocationContext carries everything a tool receives per call: the
// originating tool call and the delegation callback.
type InvocationContext struct {
	Call     msg.ToolCall
	Delegate DelegateFunc
}

// StringArg extracts a string argument by name, with ok reporting both
// presence and type.
func (ic InvocationContext) StringArg(name string) (string, bool) {
	v, ok := ic.Call.Arguments[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Tool is a named, schema-described capability an agent may invoke.
type Tool interface {
	// Name returns the tool's registered identifier.
	Name() string
	// Definition returns the schema advertised to agents.
	Definition() ToolDefinition
	// Invoke executes the tool for one call.
	Invoke(ctx context.Context, inv InvocationContext) (Result, error)
}

// Func adapts a plain function into a Tool.
type Func struct {
	Def ToolDefinition
	Fn  func(ctx context.Context, inv InvocationContext) (Result, error)
}

// Name implements Tool.
func (f Func) Name() string { return f.Def.Name }

// Definition implements Tool.
func (f Func) Definition() ToolDefinition { return f.Def }

// Invoke implements Tool.
func (f Func) Invoke(ctx context.Context, inv InvocationContext) (Result, error) {
	return f.Fn(ctx, inv)
}
