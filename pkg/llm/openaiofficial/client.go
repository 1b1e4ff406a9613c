// Package openaiofficial implements llm.Client using the official OpenAI
// Go package's Responses API.
package openaiofficial

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"agentflow/pkg/llm"
)

// Client wraps the official OpenAI Go client behind llm.Client.
type Client struct {
	client openai.Client
}

// NewClient creates a Responses API client authenticated with the given
// API key.
func NewClient(apiKey string) *Client {
	return &Client{client: openai.NewClient(option.WithAPIKey(apiKey))}
}

// CreateResponse implements llm.Client.
func (c *Client) CreateResponse(ctx context.Context, req llm.Request) (*llm.Response, error) {
	params := responses.ResponseNewParams{
		Model: req.Model,
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: convertInput(req.Input)},
	}
	if req.Instructions != "" {
		params.Instructions = openai.String(req.Instructions)
	}
	if req.PreviousResponseID != "" {
		params.PreviousResponseID = openai.String(req.PreviousResponseID)
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.TopP != nil {
		params.TopP = openai.Float(*req.TopP)
	}
	if req.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(req.MaxOutputTokens))
	}
	if req.ReasoningEffort != "" {
		params.Reasoning = shared.ReasoningParam{Effort: shared.ReasoningEffort(req.ReasoningEffort)}
	}
	// TODO: transmit req.Verbosity as text.verbosity once the pinned SDK
	// release exposes ResponseTextConfigParam.Verbosity.
	if len(req.Tools) > 0 {
		params.Tools = convertTools(req.Tools)
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenAI Responses API call failed: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty response from OpenAI Responses API")
	}
	return convertResponse(resp), nil
}

func convertInput(items []llm.InputItem) responses.ResponseInputParam {
	out := make(responses.ResponseInputParam, 0, len(items))
	for _, item := range items {
		switch item.Type {
		case llm.InputFunctionOutput:
			out = append(out, responses.ResponseInputItemUnionParam{
				OfFunctionCallOutput: &responses.ResponseInputItemFunctionCallOutputParam{
					CallID: item.CallID,
					Output: item.Output,
				},
			})
		default:
			out = append(out, responses.ResponseInputItemUnionParam{
				OfMessage: &responses.EasyInputMessageParam{
					Role:    responses.EasyInputMessageRole(item.Role),
					Content: responses.EasyInputMessageContentUnionParam{OfString: openai.String(item.Text)},
				},
			})
		}
	}
	return out
}

func convertTools(in []llm.ToolParam) []responses.ToolUnionParam {
	out := make([]responses.ToolUnionParam, len(in))
	for i := range in {
		out[i] = responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        in[i].Name,
				Description: openai.String(in[i].Description),
				Parameters:  openai.FunctionParameters(in[i].Parameters),
			},
		}
	}
	return out
}

func convertResponse(resp *responses.Response) *llm.Response {
	out := &llm.Response{ID: resp.ID}
	for i := range resp.Output {
		item := &resp.Output[i]
		switch item.Type {
		case "message":
			message := item.AsMessage()
			converted := llm.OutputItem{Type: llm.OutputMessage, Role: string(message.Role)}
			for j := range message.Content {
				part := &message.Content[j]
				if part.Type == "output_text" {
					converted.Content = append(converted.Content, llm.ContentPart{
						Type: llm.PartOutputText,
						Text: part.Text,
					})
				}
			}
			out.Output = append(out.Output, converted)
		case "function_call":
			call := item.AsFunctionCall()
			out.Output = append(out.Output, llm.OutputItem{
				Type:      llm.OutputFunctionCall,
				Name:      call.Name,
				Arguments: call.Arguments,
				CallID:    call.CallID,
			})
		default:
			// Reasoning and other item types carry no conversation content.
		}
	}
	return out
}
