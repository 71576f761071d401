package modelgateway

import (
	"fmt"

	"github.com/minhyannv/mcp-client-go/pkg/conversation"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

func toInputItems(transcript []conversation.Item) (responses.ResponseInputParam, error) {
	out := make(responses.ResponseInputParam, 0, len(transcript))
	for i, item := range transcript {
		switch item.Type {
		case conversation.ItemMessage:
			role, err := toEasyRole(item.Role)
			if err != nil {
				return nil, fmt.Errorf("transcript item %d: %w", i, err)
			}
			out = append(out, responses.ResponseInputItemUnionParam{
				OfMessage: &responses.EasyInputMessageParam{
					Role: role,
					Content: responses.EasyInputMessageContentUnionParam{
						OfString: openai.String(item.Content),
					},
				},
			})
		case conversation.ItemFunctionCall:
			call := responses.ResponseInputItemParamOfFunctionCall(item.Arguments, item.CallID, item.Name)
			if item.ID != "" && call.OfFunctionCall != nil {
				call.OfFunctionCall.ID = openai.String(item.ID)
			}
			out = append(out, call)
		case conversation.ItemFunctionCallOutput:
			out = append(out, responses.ResponseInputItemParamOfFunctionCallOutput(item.CallID, item.Output))
		default:
			return nil, fmt.Errorf("transcript item %d: unsupported type %q", i, item.Type)
		}
	}
	return out, nil
}

func toEasyRole(role conversation.Role) (responses.EasyInputMessageRole, error) {
	switch role {
	case conversation.RoleUser:
		return responses.EasyInputMessageRoleUser, nil
	case conversation.RoleAssistant:
		return responses.EasyInputMessageRoleAssistant, nil
	default:
		return "", fmt.Errorf("invalid message role %q", role)
	}
}

func toToolParams(tools []conversation.ToolDescriptor) []responses.ToolUnionParam {
	out := make([]responses.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		schema := tool.Schema
		if schema == nil {
			schema = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		fn := &responses.FunctionToolParam{
			Name:       tool.Name,
			Parameters: schema,
			Strict:     openai.Bool(false),
		}
		if tool.Description != "" {
			fn.Description = openai.String(tool.Description)
		}
		out = append(out, responses.ToolUnionParam{OfFunction: fn})
	}
	return out
}

func fromResponse(resp *responses.Response) conversation.Response {
	if resp == nil {
		return conversation.Response{}
	}
	out := conversation.Response{
		ID:     resp.ID,
		Model:  string(resp.Model),
		Status: string(resp.Status),
		Error:  resp.Error.Message,
		Usage: conversation.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			msg := item.AsMessage()
			parts := make([]conversation.ContentPart, 0, len(msg.Content))
			for _, content := range msg.Content {
				if content.Type == "refusal" {
					parts = append(parts, conversation.ContentPart{Refusal: content.Refusal})
					continue
				}
				parts = append(parts, conversation.ContentPart{Text: content.Text})
			}
			out.Output = append(out.Output, conversation.OutputItem{
				Type:    conversation.ItemMessage,
				ID:      msg.ID,
				Content: parts,
			})
		case "function_call":
			call := item.AsFunctionCall()
			out.Output = append(out.Output, conversation.OutputItem{
				Type:      conversation.ItemFunctionCall,
				ID:        call.ID,
				CallID:    call.CallID,
				Name:      call.Name,
				Arguments: call.Arguments,
			})
		}
	}
	return out
}
