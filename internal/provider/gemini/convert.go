package gemini

import (
	"strings"

	"google.golang.org/genai"

	provider "github.com/vitormoschetta/seguradora-chat/internal/provider/models"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// toGeminiContents converte o histórico para Contents do Gemini.
// Respostas de ferramenta consecutivas vão num único Content.
func toGeminiContents(history []provider.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))

	for _, msg := range history {
		switch msg.Role {
		case provider.RoleAssistant:
			parts := make([]*genai.Part, 0, len(msg.ToolCalls)+1)
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   call.ID,
						Name: call.Name,
						Args: call.Arguments,
					},
				})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: roleModel, Parts: parts})
			}

		case provider.RoleTool:
			part := &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:   msg.ToolCallID,
					Name: msg.ToolName,
					Response: map[string]any{
						"output": msg.Content,
					},
				},
			}
			if n := len(contents); n > 0 && isFunctionResponses(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: roleUser, Parts: []*genai.Part{part}})

		default:
			if msg.Content == "" {
				continue
			}
			contents = append(contents, &genai.Content{
				Role:  roleUser,
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			})
		}
	}

	return contents
}

func isFunctionResponses(c *genai.Content) bool {
	if c.Role != roleUser || len(c.Parts) == 0 {
		return false
	}
	for _, p := range c.Parts {
		if p.FunctionResponse == nil {
			return false
		}
	}
	return true
}

// toGeminiConfig monta instruções de sistema, ferramentas e modo de chamada
func toGeminiConfig(req *provider.GenerateRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	system := make([]string, 0, 2)
	if req.Instructions != "" {
		system = append(system, req.Instructions)
	}
	if req.Context != "" {
		system = append(system, req.Context)
	}
	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{
			Role:  roleUser,
			Parts: []*genai.Part{genai.NewPartFromText(strings.Join(system, "\n\n"))},
		}
	}

	if len(req.Tools) > 0 {
		config.Tools = toGeminiTools(req.Tools)
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: toCallingMode(req.ToolMode),
			},
		}
	}

	return config
}

// toGeminiTools declara as ferramentas com o JSON Schema do gateway
func toGeminiTools(tools []provider.ToolDefinition) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		fd := &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
		}
		if tool.Parameters != nil {
			fd.ParametersJsonSchema = tool.Parameters
		}
		decls = append(decls, fd)
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func toCallingMode(mode provider.ToolMode) genai.FunctionCallingConfigMode {
	switch mode {
	case provider.ToolModeRequired:
		return genai.FunctionCallingConfigModeAny
	case provider.ToolModeNone:
		return genai.FunctionCallingConfigModeNone
	default:
		return genai.FunctionCallingConfigModeAuto
	}
}
