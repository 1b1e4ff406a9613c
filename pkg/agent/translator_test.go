package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentflow/pkg/llm"
	"agentflow/pkg/msg"
	"agentflow/pkg/tools"
)

func textDef(name string) tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        name,
		Description: "test tool",
		InputSchema: tools.ObjectSchema(map[string]tools.Property{
			"query": {Type: "string"},
		}, "query"),
	}
}

func TestBuildRequestFullHistoryWithoutAnchor(t *testing.T) {
	tr := NewTranslator()
	desc := Descriptor{Name: "helper", Model: "gpt-5", Instructions: "be helpful", SystemPrompt: "stay terse"}

	conversation := []msg.Message{
		msg.NewUserMessage("hello"),
		msg.NewAssistantMessage("helper", "hi there"),
		msg.NewUserMessage("what next?"),
	}

	req, submitted, err := tr.BuildRequest(desc, conversation, nil)
	require.NoError(t, err)
	assert.Empty(t, submitted)
	assert.Empty(t, req.PreviousResponseID)
	assert.Equal(t, "gpt-5", req.Model)
	assert.Equal(t, "be helpful", req.Instructions)

	require.Len(t, req.Input, 4)
	assert.Equal(t, llm.MessageItem("system", "stay terse"), req.Input[0])
	assert.Equal(t, llm.MessageItem("user", "hello"), req.Input[1])
	assert.Equal(t, llm.MessageItem("assistant", "hi there"), req.Input[2])
	assert.Equal(t, llm.MessageItem("user", "what next?"), req.Input[3])
}

func TestBuildRequestChainsToolOutputs(t *testing.T) {
	tr := NewTranslator()
	desc := Descriptor{Name: "helper", Model: "gpt-5", SystemPrompt: "stay terse"}
	defs := []tools.ToolDefinition{textDef("search")}

	// Advertise the tool, then let the provider issue the call so the
	// anchor exists.
	_, _, err := tr.BuildRequest(desc, []msg.Message{msg.NewUserMessage("look this up")}, defs)
	require.NoError(t, err)
	_, err = tr.ParseResponse("helper", &llm.Response{
		ID: "resp_1",
		Output: []llm.OutputItem{
			{Type: llm.OutputFunctionCall, Name: "search", Arguments: `{"query":"go"}`, CallID: "call_1"},
		},
	})
	require.NoError(t, err)

	conversation := []msg.Message{
		msg.NewUserMessage("look this up"),
		msg.NewToolResultMessage("call_1", "found it", false),
	}

	req, submitted, err := tr.BuildRequest(desc, conversation, defs)
	require.NoError(t, err)
	assert.Equal(t, []string{"call_1"}, submitted)
	assert.Equal(t, "resp_1", req.PreviousResponseID)

	// Anchored delta: system prompt plus the fresh tool output. The user
	// message preceding the output is already part of the server thread.
	require.Len(t, req.Input, 2)
	assert.Equal(t, llm.MessageItem("system", "stay terse"), req.Input[0])
	assert.Equal(t, llm.FunctionOutputItem("call_1", "found it"), req.Input[1])
}

func TestBuildRequestIdempotentAcrossCalls(t *testing.T) {
	tr := NewTranslator()
	desc := Descriptor{Name: "helper", Model: "gpt-5"}
	defs := []tools.ToolDefinition{textDef("search")}

	_, _, err := tr.BuildRequest(desc, []msg.Message{msg.NewUserMessage("look this up")}, defs)
	require.NoError(t, err)
	_, err = tr.ParseResponse("helper", &llm.Response{
		ID: "resp_1",
		Output: []llm.OutputItem{
			{Type: llm.OutputFunctionCall, Name: "search", Arguments: `{}`, CallID: "call_1"},
		},
	})
	require.NoError(t, err)

	conversation := []msg.Message{
		msg.NewUserMessage("look this up"),
		msg.NewToolResultMessage("call_1", "found it", false),
	}

	req, submitted, err := tr.BuildRequest(desc, conversation, defs)
	require.NoError(t, err)
	require.Equal(t, []string{"call_1"}, submitted)
	tr.MarkSubmitted(submitted)

	// Replaying the same conversation must never emit the same function
	// output twice.
	req, submitted, err = tr.BuildRequest(desc, conversation, defs)
	require.NoError(t, err)
	assert.Empty(t, submitted)
	assert.Empty(t, req.PreviousResponseID)
	for _, item := range req.Input {
		assert.NotEqual(t, llm.InputFunctionOutput, item.Type)
	}
}

func TestBuildRequestFailsOnLostChain(t *testing.T) {
	tr := NewTranslator()
	desc := Descriptor{Name: "helper", Model: "gpt-5"}

	conversation := []msg.Message{
		msg.NewToolResultMessage("call_unknown", "output", false),
	}

	_, _, err := tr.BuildRequest(desc, conversation, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChainStateLost)
}

func TestBuildRequestFailsOnAmbiguousChain(t *testing.T) {
	tr := NewTranslator()
	desc := Descriptor{Name: "helper", Model: "gpt-5"}

	_, _, err := tr.BuildRequest(desc, []msg.Message{msg.NewUserMessage("hi")}, []tools.ToolDefinition{textDef("search")})
	require.NoError(t, err)

	for i, resp := range []string{"resp_1", "resp_2"} {
		_, err := tr.ParseResponse("helper", &llm.Response{
			ID: resp,
			Output: []llm.OutputItem{
				{Type: llm.OutputFunctionCall, Name: "search", Arguments: `{}`, CallID: []string{"call_1", "call_2"}[i]},
			},
		})
		require.NoError(t, err)
	}

	conversation := []msg.Message{
		msg.NewToolResultMessage("call_1", "a", false),
		msg.NewToolResultMessage("call_2", "b", false),
	}

	_, _, err = tr.BuildRequest(desc, conversation, []tools.ToolDefinition{textDef("search")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousChain)
}

func TestBuildRequestInterleavesPostAnchorText(t *testing.T) {
	tr := NewTranslator()
	desc := Descriptor{Name: "helper", Model: "gpt-5"}
	defs := []tools.ToolDefinition{textDef("search")}

	_, _, err := tr.BuildRequest(desc, []msg.Message{msg.NewUserMessage("look this up")}, defs)
	require.NoError(t, err)
	_, err = tr.ParseResponse("helper", &llm.Response{
		ID: "resp_1",
		Output: []llm.OutputItem{
			{Type: llm.OutputFunctionCall, Name: "search", Arguments: `{}`, CallID: "call_1"},
		},
	})
	require.NoError(t, err)

	// Text added after the tool result must follow the function output,
	// never precede it.
	conversation := []msg.Message{
		msg.NewUserMessage("look this up"),
		msg.NewToolResultMessage("call_1", "found it", false),
		msg.NewUserMessage("also, summarize"),
	}

	req, _, err := tr.BuildRequest(desc, conversation, defs)
	require.NoError(t, err)
	require.Len(t, req.Input, 2)
	assert.Equal(t, llm.FunctionOutputItem("call_1", "found it"), req.Input[0])
	assert.Equal(t, llm.MessageItem("user", "also, summarize"), req.Input[1])
}

func TestSanitizeToolNamesWithCollisions(t *testing.T) {
	tr := NewTranslator()
	desc := Descriptor{Name: "helper", Model: "gpt-5"}

	defs := []tools.ToolDefinition{
		textDef("my.tool"),
		textDef("my tool"),
		textDef("my:tool"),
	}

	req, _, err := tr.BuildRequest(desc, []msg.Message{msg.NewUserMessage("hi")}, defs)
	require.NoError(t, err)
	require.Len(t, req.Tools, 3)
	assert.Equal(t, "my_tool", req.Tools[0].Name)
	assert.Equal(t, "my_tool_2", req.Tools[1].Name)
	assert.Equal(t, "my_tool_3", req.Tools[2].Name)

	// The provider answers with sanitized names; they must reverse-map to
	// the originals.
	turn, err := tr.ParseResponse("helper", &llm.Response{
		ID: "resp_1",
		Output: []llm.OutputItem{
			{Type: llm.OutputFunctionCall, Name: "my_tool_2", Arguments: `{"query":"x"}`, CallID: "call_1"},
		},
	})
	require.NoError(t, err)
	require.Len(t, turn.ToolCalls, 1)
	assert.Equal(t, "my tool", turn.ToolCalls[0].Name)
}

func TestParseResponseConcatenatesTextSegments(t *testing.T) {
	tr := NewTranslator()

	turn, err := tr.ParseResponse("helper", &llm.Response{
		ID: "resp_1",
		Output: []llm.OutputItem{
			{Type: llm.OutputMessage, Role: "assistant", Content: []llm.ContentPart{
				{Type: llm.PartOutputText, Text: "Hello"},
				{Type: llm.PartOutputText, Text: ""},
				{Type: llm.PartOutputText, Text: ", world"},
			}},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, turn.Message)
	assert.Equal(t, "Hello, world", turn.Message.Text())
	assert.Equal(t, msg.RoleAssistant, turn.Message.Role)
	assert.Equal(t, "helper", turn.Message.Author)
	assert.Empty(t, turn.ToolCalls)
}

func TestParseResponseNestedToolCall(t *testing.T) {
	tr := NewTranslator()
	desc := Descriptor{Name: "helper", Model: "gpt-5"}
	_, _, err := tr.BuildRequest(desc, []msg.Message{msg.NewUserMessage("hi")}, []tools.ToolDefinition{textDef("search")})
	require.NoError(t, err)

	turn, err := tr.ParseResponse("helper", &llm.Response{
		ID: "resp_1",
		Output: []llm.OutputItem{
			{Type: llm.OutputMessage, Role: "assistant", Content: []llm.ContentPart{
				{Type: llm.PartOutputText, Text: "let me check"},
				{Type: llm.PartToolCall, Name: "search", Arguments: `{"query":"go"}`, CallID: "call_9"},
			}},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, turn.Message)
	assert.Equal(t, "let me check", turn.Message.Text())
	require.Len(t, turn.ToolCalls, 1)
	assert.Equal(t, "search", turn.ToolCalls[0].Name)
	assert.Equal(t, "call_9", turn.ToolCalls[0].CallID)
}

func TestParseResponseStringEncodedArguments(t *testing.T) {
	tr := NewTranslator()
	desc := Descriptor{Name: "helper", Model: "gpt-5"}
	_, _, err := tr.BuildRequest(desc, []msg.Message{msg.NewUserMessage("hi")}, []tools.ToolDefinition{textDef("search")})
	require.NoError(t, err)

	turn, err := tr.ParseResponse("helper", &llm.Response{
		ID: "resp_1",
		Output: []llm.OutputItem{
			{Type: llm.OutputFunctionCall, Name: "search", Arguments: `"{\"query\":\"go\"}"`, CallID: "call_1"},
		},
	})
	require.NoError(t, err)
	require.Len(t, turn.ToolCalls, 1)
	assert.Equal(t, map[string]any{"query": "go"}, turn.ToolCalls[0].Arguments)
}

func TestParseResponseSynthesizesCallID(t *testing.T) {
	tr := NewTranslator()
	desc := Descriptor{Name: "helper", Model: "gpt-5"}
	_, _, err := tr.BuildRequest(desc, []msg.Message{msg.NewUserMessage("hi")}, []tools.ToolDefinition{textDef("search")})
	require.NoError(t, err)

	turn, err := tr.ParseResponse("helper", &llm.Response{
		ID: "resp_1",
		Output: []llm.OutputItem{
			{Type: llm.OutputFunctionCall, Name: "search", Arguments: `{}`},
		},
	})
	require.NoError(t, err)
	require.Len(t, turn.ToolCalls, 1)
	assert.NotEmpty(t, turn.ToolCalls[0].CallID)
}

func TestParseResponseRejectsUnknownTool(t *testing.T) {
	tr := NewTranslator()

	_, err := tr.ParseResponse("helper", &llm.Response{
		ID: "resp_1",
		Output: []llm.OutputItem{
			{Type: llm.OutputFunctionCall, Name: "never_advertised", Arguments: `{}`, CallID: "call_1"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestParseResponseRejectsToolCallWithoutResponseID(t *testing.T) {
	tr := NewTranslator()
	desc := Descriptor{Name: "helper", Model: "gpt-5"}
	_, _, err := tr.BuildRequest(desc, []msg.Message{msg.NewUserMessage("hi")}, []tools.ToolDefinition{textDef("search")})
	require.NoError(t, err)

	// A tool call with no response id could never chain its output back.
	_, err = tr.ParseResponse("helper", &llm.Response{
		Output: []llm.OutputItem{
			{Type: llm.OutputFunctionCall, Name: "search", Arguments: `{}`, CallID: "call_1"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "response id")
}

func TestParseResponseRejectsEmptyOutput(t *testing.T) {
	tr := NewTranslator()

	_, err := tr.ParseResponse("helper", &llm.Response{ID: "resp_1"})
	require.Error(t, err)
}
