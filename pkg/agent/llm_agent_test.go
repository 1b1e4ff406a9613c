package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentflow/pkg/llm"
	"agentflow/pkg/msg"
	"agentflow/pkg/tools"
)

// fakeClient replays scripted responses and records every request.
type fakeClient struct {
	responses []*llm.Response
	errs      []error
	requests  []llm.Request
}

func (f *fakeClient) CreateResponse(_ context.Context, req llm.Request) (*llm.Response, error) {
	f.requests = append(f.requests, req)
	idx := len(f.requests) - 1
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx >= len(f.responses) {
		return nil, errors.New("no more scripted responses")
	}
	return f.responses[idx], nil
}

func TestLLMAgentTwoTurnToolFlow(t *testing.T) {
	client := &fakeClient{
		responses: []*llm.Response{
			{
				ID: "resp_1",
				Output: []llm.OutputItem{
					{Type: llm.OutputFunctionCall, Name: "search", Arguments: `{"query":"go"}`, CallID: "call_1"},
				},
			},
			{
				ID: "resp_2",
				Output: []llm.OutputItem{
					{Type: llm.OutputMessage, Role: "assistant", Content: []llm.ContentPart{
						{Type: llm.PartOutputText, Text: "done"},
					}},
				},
			},
		},
	}

	a := NewLLMAgent(Descriptor{Name: "helper", Model: "gpt-4.1"}, client, nil)
	defs := []tools.ToolDefinition{textDef("search")}

	conversation := []msg.Message{msg.NewUserMessage("look up go")}
	turn, err := a.Generate(context.Background(), conversation, defs)
	require.NoError(t, err)
	require.Len(t, turn.ToolCalls, 1)
	assert.Nil(t, turn.Message)

	conversation = append(conversation, msg.NewToolResultMessage("call_1", "found", false))
	turn, err = a.Generate(context.Background(), conversation, defs)
	require.NoError(t, err)
	require.NotNil(t, turn.Message)
	assert.Equal(t, "done", turn.Message.Text())

	// Second request must continue the thread instead of resending it.
	require.Len(t, client.requests, 2)
	second := client.requests[1]
	assert.Equal(t, "resp_1", second.PreviousResponseID)
	require.Len(t, second.Input, 1)
	assert.Equal(t, llm.FunctionOutputItem("call_1", "found"), second.Input[0])
}

func TestLLMAgentRetriedTurnDoesNotResubmitOutputs(t *testing.T) {
	client := &fakeClient{
		errs: []error{nil, errors.New("transient upstream failure")},
		responses: []*llm.Response{
			{
				ID: "resp_1",
				Output: []llm.OutputItem{
					{Type: llm.OutputFunctionCall, Name: "search", Arguments: `{}`, CallID: "call_1"},
				},
			},
			nil,
			{
				ID: "resp_2",
				Output: []llm.OutputItem{
					{Type: llm.OutputMessage, Role: "assistant", Content: []llm.ContentPart{
						{Type: llm.PartOutputText, Text: "recovered"},
					}},
				},
			},
		},
	}

	a := NewLLMAgent(Descriptor{Name: "helper", Model: "gpt-4.1"}, client, nil)
	defs := []tools.ToolDefinition{textDef("search")}

	conversation := []msg.Message{msg.NewUserMessage("look it up")}
	_, err := a.Generate(context.Background(), conversation, defs)
	require.NoError(t, err)

	conversation = append(conversation, msg.NewToolResultMessage("call_1", "found", false))

	// Attempt fails after the request was built; outputs were not accepted
	// so the replay must carry them again.
	a.OnRetryAttempt(1)
	_, err = a.Generate(context.Background(), conversation, defs)
	require.Error(t, err)

	a.OnRetryAttempt(2)
	turn, err := a.Generate(context.Background(), conversation, defs)
	require.NoError(t, err)
	require.NotNil(t, turn.Message)
	assert.Equal(t, "recovered", turn.Message.Text())

	require.Len(t, client.requests, 3)
	failed, replay := client.requests[1], client.requests[2]
	assert.Equal(t, failed.Input, replay.Input)
	assert.Equal(t, "resp_1", replay.PreviousResponseID)
}

func TestDescriptorNormalizeInfersReasoningDefaults(t *testing.T) {
	d := Descriptor{Name: "planner", Model: "o3-mini"}.Normalize()
	assert.Equal(t, "medium", d.ReasoningEffort)
	assert.Equal(t, "medium", d.Verbosity)

	d = Descriptor{Name: "planner", Model: "gpt-5", ReasoningEffort: "high"}.Normalize()
	assert.Equal(t, "high", d.ReasoningEffort)
	assert.Equal(t, "medium", d.Verbosity)

	d = Descriptor{Name: "writer", Model: "gpt-4.1"}.Normalize()
	assert.Empty(t, d.ReasoningEffort)
	assert.Empty(t, d.Verbosity)
}
