package gateway

import (
	"log"
	"net/http"
)

// AuthenticatedTransport é um RoundTripper que adiciona o token do gateway
// em todas as requisições
type AuthenticatedTransport struct {
	Header string
	Token  string
	Base   http.RoundTripper
}

func (t *AuthenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clonar a requisição para não modificar a original
	req = req.Clone(req.Context())
	if t.Token != "" {
		req.Header.Set(t.header(), t.Token)
	}

	// Log da requisição (útil para debug); o valor do token nunca é logado
	log.Printf("MCP Request: %s %s (with %s)", req.Method, req.URL, t.header())

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

func (t *AuthenticatedTransport) header() string {
	if t.Header == "" {
		return "Authorization"
	}
	return t.Header
}
