package agent

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"agentflow/pkg/llm"
	"agentflow/pkg/msg"
	"agentflow/pkg/tools"
)

// Translator converts conversations into incremental provider requests and
// provider responses back into turns. It owns the chaining state that
// makes multi-turn, tool-augmented threads work without resending full
// history: a pending map from tool call id to the upstream response id
// that issued it, and the set of call ids whose outputs were already
// submitted (so retried turns never resubmit).
//
// State is guarded by a mutex so bookkeeping stays coherent under
// concurrent use, but correct chaining still requires that one Translator
// serves one conversation at a time. Give each independent conversation
// its own agent instance.
type Translator struct {
	mu        sync.Mutex
	pending   map[string]string
	submitted map[string]struct{}
	sanitized map[string]string
}

// NewTranslator creates a translator with empty chaining state.
func NewTranslator() *Translator {
	return &Translator{
		pending:   make(map[string]string),
		submitted: make(map[string]struct{}),
		sanitized: make(map[string]string),
	}
}

// BuildRequest constructs the provider request for one generate call and
// returns it together with the tool call ids whose outputs it submits.
// The caller must pass those ids to MarkSubmitted once the provider call
// succeeds.
func (t *Translator) BuildRequest(desc Descriptor, conversation []msg.Message, visible []tools.ToolDefinition) (llm.Request, []string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	req := llm.Request{
		Model:           desc.Model,
		Instructions:    desc.Instructions,
		Temperature:     desc.Temperature,
		TopP:            desc.TopP,
		MaxOutputTokens: desc.MaxOutputTokens,
		ReasoningEffort: desc.ReasoningEffort,
		Verbosity:       desc.Verbosity,
	}
	req.Tools = t.sanitizeTools(visible)

	// Collect the tool call ids not yet submitted upstream, remembering
	// where the first one sits in the conversation.
	var submitIDs []string
	firstOutputIdx := -1
	for i, m := range conversation {
		if m.Role != msg.RoleTool {
			continue
		}
		for _, c := range m.Content {
			if c.Kind != msg.ContentToolResult || c.ToolResult == nil {
				continue
			}
			if _, done := t.submitted[c.ToolResult.ToolCallID]; done {
				continue
			}
			if firstOutputIdx < 0 {
				firstOutputIdx = i
			}
			submitIDs = append(submitIDs, c.ToolResult.ToolCallID)
		}
	}

	// Every output must chain to the same single upstream response.
	anchor := ""
	for _, id := range submitIDs {
		upstream, ok := t.pending[id]
		if !ok {
			return llm.Request{}, nil, fmt.Errorf("%w: %s", ErrChainStateLost, id)
		}
		if anchor == "" {
			anchor = upstream
		} else if anchor != upstream {
			return llm.Request{}, nil, fmt.Errorf("%w: %s and %s", ErrAmbiguousChain, anchor, upstream)
		}
	}
	req.PreviousResponseID = anchor

	// The system prompt is resent on every call regardless of chaining.
	if desc.SystemPrompt != "" {
		req.Input = append(req.Input, llm.MessageItem(string(msg.RoleSystem), desc.SystemPrompt))
	}

	// With an anchor, the server already holds the thread: send only the
	// fresh tool outputs and whatever text followed them, in conversation
	// order. Without one, send the whole conversation's text.
	for i, m := range conversation {
		switch m.Role {
		case msg.RoleTool:
			for _, c := range m.Content {
				if c.Kind != msg.ContentToolResult || c.ToolResult == nil {
					continue
				}
				if _, done := t.submitted[c.ToolResult.ToolCallID]; done {
					continue
				}
				req.Input = append(req.Input, llm.FunctionOutputItem(c.ToolResult.ToolCallID, c.ToolResult.Output))
			}
		default:
			if anchor != "" && i < firstOutputIdx {
				continue
			}
			if text := m.Text(); text != "" {
				req.Input = append(req.Input, llm.MessageItem(string(m.Role), text))
			}
		}
	}

	return req, submitIDs, nil
}

// MarkSubmitted records that the outputs for the given call ids reached
// the provider. Each id joins the idempotency set and leaves the pending
// chain map.
func (t *Translator) MarkSubmitted(ids []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		t.submitted[id] = struct{}{}
		delete(t.pending, id)
	}
}

// ParseResponse translates a provider response into a turn, recording the
// response id as the upstream anchor for every tool call it carries.
func (t *Translator) ParseResponse(author string, resp *llm.Response) (Turn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if resp == nil || len(resp.Output) == 0 {
		return Turn{}, fmt.Errorf("provider response contained no output items")
	}

	var text string
	var calls []msg.ToolCall
	for i := range resp.Output {
		item := &resp.Output[i]
		switch item.Type {
		case llm.OutputMessage:
			for _, part := range item.Content {
				switch part.Type {
				case llm.PartOutputText:
					if part.Text != "" {
						text += part.Text
					}
				case llm.PartToolCall:
					call, err := t.parseToolCall(part.Name, part.Arguments, part.CallID, resp.ID)
					if err != nil {
						return Turn{}, err
					}
					calls = append(calls, call)
				}
			}
		case llm.OutputFunctionCall:
			call, err := t.parseToolCall(item.Name, item.Arguments, item.CallID, resp.ID)
			if err != nil {
				return Turn{}, err
			}
			calls = append(calls, call)
		default:
			return Turn{}, fmt.Errorf("provider response contained unknown output item type %q", item.Type)
		}
	}

	turn := Turn{ToolCalls: calls}
	if text != "" {
		m := msg.NewAssistantMessage(author, text)
		turn.Message = &m
	}
	return turn, nil
}

// parseToolCall maps a provider function call back to the internal model:
// reverse name mapping, argument decoding, call id synthesis, and chain
// anchoring. Caller holds the mutex.
func (t *Translator) parseToolCall(name, rawArgs, callID, responseID string) (msg.ToolCall, error) {
	original, ok := t.sanitized[name]
	if !ok {
		return msg.ToolCall{}, fmt.Errorf("provider called unknown tool %q", name)
	}

	args, err := parseArguments(rawArgs)
	if err != nil {
		return msg.ToolCall{}, fmt.Errorf("tool %q arguments: %w", original, err)
	}

	// Without a response id the call's output could never be chained back.
	if responseID == "" {
		return msg.ToolCall{}, fmt.Errorf("provider returned tool call %q without a response id", original)
	}

	if callID == "" {
		callID = "call_" + uuid.NewString()
	}
	t.pending[callID] = responseID

	return msg.ToolCall{Name: original, CallID: callID, Arguments: args}, nil
}

// parseArguments decodes the raw argument payload, which is either a
// literal JSON object or a JSON-encoded string containing one.
func parseArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err == nil {
		return args, nil
	}

	var nested string
	if err := json.Unmarshal([]byte(raw), &nested); err == nil {
		if nested == "" {
			return map[string]any{}, nil
		}
		if err := json.Unmarshal([]byte(nested), &args); err != nil {
			return nil, fmt.Errorf("invalid nested argument payload: %w", err)
		}
		return args, nil
	}

	return nil, fmt.Errorf("invalid argument payload: %s", raw)
}
