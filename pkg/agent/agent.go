// Package agent defines the agent contract and the provider-backed agent
// implementation, including the protocol translator that maps the internal
// conversation model onto the provider's incremental request protocol.
package agent

import (
	"context"

	"agentflow/pkg/msg"
	"agentflow/pkg/tools"
)

// Turn is the outcome of one generate call: an optional assistant reply
// and zero or more requested tool calls.
type Turn struct {
	Message   *msg.Message
	ToolCalls []msg.ToolCall
}

// Agent produces a reply and optional tool calls for a conversation.
type Agent interface {
	// Descriptor returns the agent's immutable registration descriptor.
	Descriptor() Descriptor
	// Generate runs one turn against the conversation with the given
	// visible tool set.
	Generate(ctx context.Context, conversation []msg.Message, visible []tools.ToolDefinition) (Turn, error)
}
