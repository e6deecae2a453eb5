package config

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrMissingSecret indica que um segredo obrigatório não foi configurado
var ErrMissingSecret = errors.New("missing required secret")

// Validate verifica se a configuração é utilizável.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("MODEL_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, c.Provider)
	}

	u, err := url.Parse(c.MCPURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("MCP_URL must be an absolute URL, got %q", c.MCPURL)
	}

	if c.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	if c.ClaimMaxToolCalls <= 0 || c.GeneralMaxToolCalls <= 0 {
		return fmt.Errorf("tool call limits must be positive, got claim=%d general=%d", c.ClaimMaxToolCalls, c.GeneralMaxToolCalls)
	}

	switch c.SessionStore {
	case StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE=%s", StoreRedis)
		}
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.SessionStore)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// APIKeyVar é o nome da variável com a chave do provedor ativo
func (c *Config) APIKeyVar() string {
	if c.Provider == ProviderGemini {
		return "GOOGLE_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// APIKey retorna a chave do provedor ativo
func (c *Config) APIKey() string {
	if c.Provider == ProviderGemini {
		return c.GoogleAPIKey
	}
	return c.OpenAIAPIKey
}

// Model retorna o identificador do modelo do provedor ativo
func (c *Config) Model() string {
	if c.Provider == ProviderGemini {
		return c.GeminiModel
	}
	return c.OpenAIModel
}

// MissingSecrets lista as variáveis obrigatórias que não foram configuradas
func (c *Config) MissingSecrets() []string {
	var missing []string
	if c.APIKey() == "" {
		missing = append(missing, c.APIKeyVar())
	}
	if c.MCPToken == "" {
		missing = append(missing, "MCP_TOKEN")
	}
	return missing
}

// CheckSecrets retorna ErrMissingSecret se algum segredo faltar
func (c *Config) CheckSecrets() error {
	if missing := c.MissingSecrets(); len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingSecret, missing)
	}
	return nil
}
