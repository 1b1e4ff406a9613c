// Package llm defines the request and response shapes of the external
// provider's incremental-threading protocol, plus the client interface the
// protocol translator talks to. Transport and authentication live in the
// client implementations.
package llm

import "context"

// Input item types.
const (
	// InputMessage is a role-tagged text item.
	InputMessage = "message"
	// InputFunctionOutput carries the output of a previously issued
	// function call, keyed by call id.
	InputFunctionOutput = "function_call_output"
)

// Output item types.
const (
	// OutputMessage is an assistant message item.
	OutputMessage = "message"
	// OutputFunctionCall is a function invocation requested by the model.
	OutputFunctionCall = "function_call"
)

// Content part types within a message output item.
const (
	// PartOutputText is a plain text segment.
	PartOutputText = "output_text"
	// PartToolCall is a tool call nested inside a message item, emitted by
	// providers that do not surface standalone function_call items.
	PartToolCall = "tool_call"
)

// InputItem is one element of a request's input sequence. Message items
// use Role and Text; function output items use CallID and Output.
type InputItem struct {
	Type   string
	Role   string
	Text   string
	CallID string
	Output string
}

// MessageItem builds a role-tagged text input item.
func MessageItem(role, text string) InputItem {
	return InputItem{Type: InputMessage, Role: role, Text: text}
}

// FunctionOutputItem builds a function output input item.
func FunctionOutputItem(callID, output string) InputItem {
	return InputItem{Type: InputFunctionOutput, CallID: callID, Output: output}
}

// ToolParam advertises one callable function to the provider. Parameters
// is a JSON-schema document.
type ToolParam struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Request is one provider call. PreviousResponseID, when set, continues a
// server-side thread so Input carries only the delta since that response.
type Request struct {
	Model              string
	Instructions       string
	Input              []InputItem
	PreviousResponseID string
	Temperature        *float64
	TopP               *float64
	MaxOutputTokens    int
	Tools              []ToolParam
	ReasoningEffort    string
	Verbosity          string
}

// ContentPart is one segment of a message output item.
type ContentPart struct {
	Type string
	Text string

	// Tool call fields, set when Type is PartToolCall.
	Name      string
	Arguments string
	CallID    string
}

// OutputItem is one element of a response's output sequence. Message items
// use Role and Content; function call items use Name, Arguments, and
// CallID. Arguments is the raw payload: either a literal JSON value or a
// JSON-encoded string containing one.
type OutputItem struct {
	Type      string
	Role      string
	Content   []ContentPart
	Name      string
	Arguments string
	CallID    string
}

// Response is the provider's reply. ID is the server-side anchor used to
// continue the thread on a later request.
type Response struct {
	ID     string
	Output []OutputItem
}

// Client sends requests to the provider. Implementations own transport,
// authentication, and wire encoding.
type Client interface {
	CreateResponse(ctx context.Context, req Request) (*Response, error)
}
