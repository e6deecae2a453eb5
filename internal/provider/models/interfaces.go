package models

import "context"

// Provider define a interface dos backends de LLM
type Provider interface {
	// GenerateStream envia a requisição e devolve a resposta incremental.
	GenerateStream(ctx context.Context, req *GenerateRequest) (ResponseStream, error)

	// Name identifica o backend e o modelo, para logs
	Name() string
}
