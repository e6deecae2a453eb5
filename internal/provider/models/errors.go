package models

import (
	"errors"
	"fmt"
)

// Erros sentinela para falhas comuns dos provedores.
var (
	ErrContextLengthExceeded = errors.New("context length exceeded")
	ErrContentBlocked        = errors.New("content blocked by safety filters")
	ErrRateLimit             = errors.New("rate limit exceeded")
	ErrAuthentication        = errors.New("authentication failed")
	ErrServiceUnavailable    = errors.New("service unavailable")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrEmptyResponse         = errors.New("empty response from model")
)

// ErrorCode representa o código de erro do provedor.
type ErrorCode string

const (
	ErrorCodeContextLength  ErrorCode = "context_length_exceeded"
	ErrorCodeContentBlocked ErrorCode = "content_blocked"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodeNetwork        ErrorCode = "network_error"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
)

var sentinelByCode = map[ErrorCode]error{
	ErrorCodeContextLength:  ErrContextLengthExceeded,
	ErrorCodeContentBlocked: ErrContentBlocked,
	ErrorCodeRateLimit:      ErrRateLimit,
	ErrorCodeAuth:           ErrAuthentication,
	ErrorCodeUnavailable:    ErrServiceUnavailable,
	ErrorCodeInvalidRequest: ErrInvalidRequest,
}

// ProviderError envolve erros com contexto adicional.
type ProviderError struct {
	Code       ErrorCode
	Message    string
	Underlying error
}

// Error implementa a interface error.
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap retorna o erro original.
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// Is permite errors.Is(err, ErrRateLimit) a partir do código.
func (e *ProviderError) Is(target error) bool {
	sentinel, ok := sentinelByCode[e.Code]
	return ok && sentinel == target
}

// FromHTTPStatus classifica uma falha HTTP do provedor.
func FromHTTPStatus(status int, message string, underlying error) *ProviderError {
	switch {
	case status == 401 || status == 403:
		return &ProviderError{Code: ErrorCodeAuth, Message: "authentication failed", Underlying: underlying}
	case status == 429:
		return &ProviderError{Code: ErrorCodeRateLimit, Message: "rate limit exceeded", Underlying: underlying}
	case status == 400:
		return &ProviderError{Code: ErrorCodeInvalidRequest, Message: fmt.Sprintf("invalid request: %s", message), Underlying: underlying}
	case status >= 500:
		return &ProviderError{Code: ErrorCodeUnavailable, Message: "service unavailable", Underlying: underlying}
	default:
		return &ProviderError{Code: ErrorCodeNetwork, Message: fmt.Sprintf("API error: %s", message), Underlying: underlying}
	}
}
