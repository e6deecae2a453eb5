package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Environment abstrai a leitura do ambiente para testes
type Environment interface {
	Environ() []string
}

// ProcessEnvironment lê as variáveis do processo
type ProcessEnvironment struct{}

func (ProcessEnvironment) Environ() []string {
	return os.Environ()
}

// MapEnvironment é um ambiente fixo, útil em testes
type MapEnvironment map[string]string

func (m MapEnvironment) Environ() []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}

// Loader carrega a configuração com dependências injetadas
type Loader struct {
	env Environment
}

// NewLoader cria um Loader que lê o ambiente do processo
func NewLoader() *Loader {
	return &Loader{env: ProcessEnvironment{}}
}

// NewLoaderWithEnv cria um Loader com ambiente customizado (para testes)
func NewLoaderWithEnv(env Environment) *Loader {
	return &Loader{env: env}
}

// Load aplica as variáveis de ambiente sobre os padrões e valida o resultado.
// Variáveis vazias não sobrescrevem padrões. Segredos ausentes não são erro
// aqui: são reportados por MissingSecrets no início de cada sessão.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	values := make(map[string]any)
	for _, kv := range l.env.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		values[key] = strings.TrimSpace(value)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create config decoder: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	cfg.Provider = strings.ToLower(cfg.Provider)
	cfg.SessionStore = strings.ToLower(cfg.SessionStore)
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load é um atalho usando o ambiente do processo
func Load() (*Config, error) {
	return NewLoader().Load()
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
