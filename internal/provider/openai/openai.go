package openai

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	provider "github.com/vitormoschetta/seguradora-chat/internal/provider/models"
)

// OpenAIProvider implementa provider.Provider sobre chat completions em streaming
type OpenAIProvider struct {
	client    *goopenai.Client
	modelName string
}

// New cria o provedor. baseURL vazio usa o endpoint público.
func New(apiKey, modelName, baseURL string) *OpenAIProvider {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewWithClient(goopenai.NewClientWithConfig(cfg), modelName)
}

// NewWithClient usa um cliente já configurado
func NewWithClient(client *goopenai.Client, modelName string) *OpenAIProvider {
	return &OpenAIProvider{client: client, modelName: modelName}
}

func (p *OpenAIProvider) Name() string {
	return "openai/" + p.modelName
}

// GenerateStream abre o stream de chat completion
func (p *OpenAIProvider) GenerateStream(ctx context.Context, req *provider.GenerateRequest) (provider.ResponseStream, error) {
	request, err := toChatRequest(p.modelName, req)
	if err != nil {
		return nil, err
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, request)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	return newResponseStream(stream), nil
}

// mapOpenAIError converte erros do SDK em erros do provedor
func mapOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return provider.FromHTTPStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return provider.FromHTTPStatus(reqErr.HTTPStatusCode, fmt.Sprint(reqErr.Err), err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return &provider.ProviderError{
		Code:       provider.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
	}
}
