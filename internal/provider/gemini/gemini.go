package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"google.golang.org/adk/model"
	adkgemini "google.golang.org/adk/model/gemini"
	"google.golang.org/genai"

	provider "github.com/vitormoschetta/seguradora-chat/internal/provider/models"
)

// LLM é a parte de model.LLM usada pelo provedor
type LLM interface {
	Name() string
	GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error]
}

// GeminiProvider implementa provider.Provider sobre o modelo Gemini do ADK
type GeminiProvider struct {
	llm       LLM
	modelName string
}

// New cria o modelo Gemini com a chave informada
func New(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	llm, err := adkgemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}
	return NewWithLLM(llm, modelName), nil
}

// NewWithLLM usa um model.LLM já criado
func NewWithLLM(llm LLM, modelName string) *GeminiProvider {
	return &GeminiProvider{llm: llm, modelName: modelName}
}

func (p *GeminiProvider) Name() string {
	return "gemini/" + p.modelName
}

// GenerateStream inicia a geração em streaming. Erros da API aparecem
// no primeiro Next.
func (p *GeminiProvider) GenerateStream(ctx context.Context, req *provider.GenerateRequest) (provider.ResponseStream, error) {
	llmRequest := &model.LLMRequest{
		Model:    p.modelName,
		Contents: toGeminiContents(req.History),
		Config:   toGeminiConfig(req),
	}

	seq := p.llm.GenerateContent(ctx, llmRequest, true)
	return newResponseStream(seq), nil
}

// mapGeminiError converte erros da API em erros do provedor
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return provider.FromHTTPStatus(apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return provider.FromHTTPStatus(apiErrPtr.Code, apiErrPtr.Message, err)
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
