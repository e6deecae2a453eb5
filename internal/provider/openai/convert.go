package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	provider "github.com/vitormoschetta/seguradora-chat/internal/provider/models"
)

// toChatRequest converte a requisição interna para o formato de chat completions
func toChatRequest(modelName string, req *provider.GenerateRequest) (goopenai.ChatCompletionRequest, error) {
	messages, err := toMessages(req)
	if err != nil {
		return goopenai.ChatCompletionRequest{}, err
	}

	request := goopenai.ChatCompletionRequest{
		Model:    modelName,
		Messages: messages,
		Stream:   true,
	}

	// tool_choice só é aceito quando há ferramentas declaradas
	if len(req.Tools) > 0 {
		request.Tools = toTools(req.Tools)
		request.ToolChoice = toToolChoice(req.ToolMode)
	}

	return request, nil
}

func toMessages(req *provider.GenerateRequest) ([]goopenai.ChatCompletionMessage, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.History)+2)

	if req.Instructions != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.Instructions,
		})
	}
	if req.Context != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.Context,
		})
	}

	for _, msg := range req.History {
		switch msg.Role {
		case provider.RoleUser:
			messages = append(messages, goopenai.ChatCompletionMessage{
				Role:    goopenai.ChatMessageRoleUser,
				Content: msg.Content,
			})
		case provider.RoleAssistant:
			out := goopenai.ChatCompletionMessage{
				Role:    goopenai.ChatMessageRoleAssistant,
				Content: msg.Content,
			}
			for _, call := range msg.ToolCalls {
				args, err := json.Marshal(call.Arguments)
				if err != nil {
					return nil, fmt.Errorf("failed to marshal arguments of %s: %w", call.Name, err)
				}
				out.ToolCalls = append(out.ToolCalls, goopenai.ToolCall{
					ID:   call.ID,
					Type: goopenai.ToolTypeFunction,
					Function: goopenai.FunctionCall{
						Name:      call.Name,
						Arguments: string(args),
					},
				})
			}
			messages = append(messages, out)
		case provider.RoleTool:
			messages = append(messages, goopenai.ChatCompletionMessage{
				Role:       goopenai.ChatMessageRoleTool,
				Content:    msg.Content,
				Name:       msg.ToolName,
				ToolCallID: msg.ToolCallID,
			})
		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}

	return messages, nil
}

func toTools(tools []provider.ToolDefinition) []goopenai.Tool {
	out := make([]goopenai.Tool, 0, len(tools))
	for _, tool := range tools {
		params := tool.Parameters
		if params == nil {
			params = map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			}
		}
		out = append(out, goopenai.Tool{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  params,
			},
		})
	}
	return out
}

func toToolChoice(mode provider.ToolMode) string {
	switch mode {
	case provider.ToolModeRequired:
		return "required"
	case provider.ToolModeNone:
		return "none"
	default:
		return "auto"
	}
}

// parseArguments decodifica os argumentos acumulados de uma chamada
func parseArguments(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
