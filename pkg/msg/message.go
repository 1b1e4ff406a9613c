// Package msg defines the conversation data model shared by agents, tools,
// and the workflow orchestrator: messages, content parts, and tool calls.
package msg

import "strings"

// Role identifies the author class of a message.
type Role string

const (
	// RoleSystem carries standing instructions for the agent.
	RoleSystem Role = "system"
	// RoleUser carries input from the caller.
	RoleUser Role = "user"
	// RoleAssistant carries agent output.
	RoleAssistant Role = "assistant"
	// RoleTool carries tool execution results.
	RoleTool Role = "tool"
)

// ContentKind discriminates the Content variants.
type ContentKind string

const (
	// ContentText is a plain text part.
	ContentText ContentKind = "text"
	// ContentToolResult is the output of a dispatched tool call.
	ContentToolResult ContentKind = "tool_result"
)

// ToolResultContent is the payload of a ContentToolResult part. ToolCallID
// references a call emitted in the immediately preceding assistant turn.
type ToolResultContent struct {
	ToolCallID string
	Output     string
	IsError    bool
}

// Content is one ordered part of a message. Exactly one variant is set,
// according to Kind.
type Content struct {
	Kind       ContentKind
	Text       string
	ToolResult *ToolResultContent
}

// TextContent builds a plain text part.
func TextContent(text string) Content {
	return Content{Kind: ContentText, Text: text}
}

// ToolResult builds a tool result part.
func ToolResult(toolCallID, output string, isError bool) Content {
	return Content{
		Kind: ContentToolResult,
		ToolResult: &ToolResultContent{
			ToolCallID: toolCallID,
			Output:     output,
			IsError:    isError,
		},
	}
}

// Message is one conversation entry. Messages are immutable once built;
// conversations only ever grow by appending.
type Message struct {
	Role    Role
	Content []Content
	Author  string
}

// NewUserMessage builds a single-text user message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: []Content{TextContent(text)}}
}

// NewSystemMessage builds a single-text system message.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: []Content{TextContent(text)}}
}

// NewAssistantMessage builds a single-text assistant message attributed to
// the named author.
func NewAssistantMessage(author, text string) Message {
	return Message{
		Role:    RoleAssistant,
		Author:  author,
		Content: []Content{TextContent(text)},
	}
}

// NewToolResultMessage wraps a single tool result in a tool-role message.
func NewToolResultMessage(toolCallID, output string, isError bool) Message {
	return Message{
		Role:    RoleTool,
		Content: []Content{ToolResult(toolCallID, output, isError)},
	}
}

// Text concatenates the message's text parts in order. Tool result parts
// contribute their output.
func (m Message) Text() string {
	var sb strings.Builder
	for _, c := range m.Content {
		switch c.Kind {
		case ContentText:
			sb.WriteString(c.Text)
		case ContentToolResult:
			if c.ToolResult != nil {
				sb.WriteString(c.ToolResult.Output)
			}
		}
	}
	return sb.String()
}

// ToolCall is a tool invocation requested by an agent. Arguments are an
// opaque JSON document; schema validation happens elsewhere.
type ToolCall struct {
	Name      string
	CallID    string
	Arguments map[string]any
}

// RunRequest is the input to a workflow run.
type RunRequest struct {
	Messages []Message
}

// NewRunRequest builds a run request from a single user prompt.
func NewRunRequest(text string) RunRequest {
	return RunRequest{Messages: []Message{NewUserMessage(text)}}
}

// RunResult is the outcome of a workflow run. FinalMessage is the last
// assistant message with no outstanding tool calls, or nil if the agent
// never produced one. Conversation holds the full appended history.
type RunResult struct {
	FinalMessage *Message
	Conversation []Message
}

// FinalText returns the final message text, or the empty string when the
// run produced none.
func (r RunResult) FinalText() string {
	if r.FinalMessage == nil {
		return ""
	}
	return r.FinalMessage.Text()
}

// CloneMessages returns a shallow copy of the conversation slice. Messages
// themselves are immutable, so copying the slice header layer is enough to
// protect callers from appends.
func CloneMessages(in []Message) []Message {
	if in == nil {
		return nil
	}
	out := make([]Message, len(in))
	copy(out, in)
	return out
}
