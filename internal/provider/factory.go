package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/vitormoschetta/seguradora-chat/internal/config"
	"github.com/vitormoschetta/seguradora-chat/internal/provider/gemini"
	"github.com/vitormoschetta/seguradora-chat/internal/provider/models"
	"github.com/vitormoschetta/seguradora-chat/internal/provider/openai"
)

// Builder cria o backend de LLM
type Builder func(ctx context.Context) (models.Provider, error)

// New escolhe o backend pelo MODEL_PROVIDER. O cliente só é criado na
// primeira geração, assim o servidor sobe mesmo sem a chave configurada.
func New(cfg *config.Config) models.Provider {
	name := cfg.Provider + "/" + cfg.Model()

	switch cfg.Provider {
	case config.ProviderGemini:
		return NewLazy(name, func(ctx context.Context) (models.Provider, error) {
			return gemini.New(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
		})
	default:
		return NewLazy(name, func(context.Context) (models.Provider, error) {
			return openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
		})
	}
}

// Lazy adia a criação do backend até o primeiro uso. Falhas não ficam em
// cache: a próxima geração tenta de novo.
type Lazy struct {
	name  string
	build Builder

	mu    sync.Mutex
	inner models.Provider
}

func NewLazy(name string, build Builder) *Lazy {
	return &Lazy{name: name, build: build}
}

func (l *Lazy) Name() string {
	return l.name
}

func (l *Lazy) GenerateStream(ctx context.Context, req *models.GenerateRequest) (models.ResponseStream, error) {
	inner, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return inner.GenerateStream(ctx, req)
}

func (l *Lazy) get(ctx context.Context) (models.Provider, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inner != nil {
		return l.inner, nil
	}
	inner, err := l.build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", l.name, err)
	}
	l.inner = inner
	return inner, nil
}
