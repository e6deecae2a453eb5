package config

import "time"

// Provedores de LLM suportados
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Backends de sessão suportados
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config contém todos os valores de configuração da aplicação.
// Os padrões ficam em DefaultConfig() e são sobrescritos pelo ambiente,
// lido uma única vez na inicialização.
type Config struct {
	// Modelo
	Provider      string `mapstructure:"MODEL_PROVIDER"`
	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel   string `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"`
	GoogleAPIKey  string `mapstructure:"GOOGLE_API_KEY"`
	GeminiModel   string `mapstructure:"GEMINI_MODEL"`

	// Gateway MCP
	MCPURL         string        `mapstructure:"MCP_URL"`
	MCPToken       string        `mapstructure:"MCP_TOKEN"`
	MCPLabel       string        `mapstructure:"MCP_LABEL"`
	MCPDescription string        `mapstructure:"MCP_DESCRIPTION"`
	MCPTokenHeader string        `mapstructure:"MCP_TOKEN_HEADER"`
	MCPTimeout     time.Duration `mapstructure:"MCP_TIMEOUT"`

	// Orquestração
	HistoryLimit        int `mapstructure:"HISTORY_LIMIT"`
	ClaimMaxToolCalls   int `mapstructure:"CLAIM_MAX_TOOL_CALLS"`
	GeneralMaxToolCalls int `mapstructure:"GENERAL_MAX_TOOL_CALLS"`

	// Servidor e sessões
	HTTPAddr     string        `mapstructure:"HTTP_ADDR"`
	SessionStore string        `mapstructure:"SESSION_STORE"`
	RedisURL     string        `mapstructure:"REDIS_URL"`
	SessionTTL   time.Duration `mapstructure:"SESSION_TTL"`

	// Origens aceitas no WebSocket; vazio aceita qualquer uma
	AllowedOrigins []string `mapstructure:"WS_ALLOWED_ORIGINS"`

	// Cliente de terminal
	ChatURL string `mapstructure:"CHAT_WS_URL"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		Provider:            ProviderOpenAI,
		OpenAIModel:         "gpt-5.1",
		GeminiModel:         "gemini-2.5-flash",
		MCPURL:              "https://solutions-garage-ai-gateway-lab.sensedia-eng.com/insurance-mcp/v1/mcp",
		MCPLabel:            "mcp-insurance",
		MCPDescription:      "MCP de Seguradora (apólices, sinistros, elegibilidade, oficinas, carro reserva).",
		MCPTokenHeader:      "Authorization",
		MCPTimeout:          30 * time.Second,
		HistoryLimit:        12,
		ClaimMaxToolCalls:   4,
		GeneralMaxToolCalls: 2,
		HTTPAddr:            ":8080",
		SessionStore:        StoreMemory,
		SessionTTL:          24 * time.Hour,
		ChatURL:             "ws://localhost:8080/ws",
	}
}
