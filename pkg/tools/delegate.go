package tools

import (
	"context"
	"fmt"

	"agentflow/pkg/msg"
)

// NoResponseSentinel is returned by a delegating tool when the sub-run
// finished without a final assistant message.
const NoResponseSentinel = "(no response)"

// DelegateTool hands a prompt to another registered agent and returns that
// agent's final reply as its own output. When TargetAgent is empty the
// target is taken from the call's "agent" argument.
type DelegateTool struct {
	ToolName    string
	Description string
	TargetAgent string
}

// NewDelegateTool creates a delegating tool bound to a fixed target agent.
func NewDelegateTool(toolName, description, targetAgent string) *DelegateTool {
	return &DelegateTool{
		ToolName:    toolName,
		Description: description,
		TargetAgent: targetAgent,
	}
}

// Name implements Tool.
func (d *DelegateTool) Name() string { return d.ToolName }

// Definition implements Tool.
func (d *DelegateTool) Definition() ToolDefinition {
	props := map[string]Property{
		"prompt": {Type: "string", Description: "Request to send to the delegated agent"},
	}
	required := []string{"prompt"}
	if d.TargetAgent == "" {
		props["agent"] = Property{Type: "string", Description: "Name of the registered agent to delegate to"}
		required = append(required, "agent")
	}
	return ToolDefinition{
		Name:        d.ToolName,
		Description: d.Description,
		InputSchema: ObjectSchema(props, required...),
	}
}

// Invoke implements Tool. Failures from the nested run surface as errors;
// the orchestrator's dispatch wrapper converts them into error results.
func (d *DelegateTool) Invoke(ctx context.Context, inv InvocationContext) (Result, error) {
	if inv.Delegate == nil {
		return Result{}, fmt.Errorf("tool %q: no delegation callback available", d.ToolName)
	}

	target := d.TargetAgent
	if target == "" {
		name, ok := inv.StringArg("agent")
		if !ok || name == "" {
			return Result{}, fmt.Errorf("tool %q: missing required argument: agent", d.ToolName)
		}
		target = name
	}

	prompt, ok := inv.StringArg("prompt")
	if !ok || prompt == "" {
		return Result{}, fmt.Errorf("tool %q: missing required argument: prompt", d.ToolName)
	}

	sub, err := inv.Delegate(ctx, target, msg.NewRunRequest(prompt))
	if err != nil {
		return Result{}, fmt.Errorf("delegated run against %q failed: %w", target, err)
	}

	output := sub.FinalText()
	if sub.FinalMessage == nil {
		output = NoResponseSentinel
	}
	return Result{CallID: inv.Call.CallID, Output: output}, nil
}
