package service

import "context"

// Relay entrega mensagens e progresso do turno para a interface do usuário
type Relay interface {
	// Send publica uma nova mensagem e devolve seu identificador
	Send(ctx context.Context, content string) (string, error)

	// Stream acrescenta um pedaço de texto a uma mensagem já publicada
	Stream(ctx context.Context, messageID, token string) error

	// Update finaliza a mensagem com o conteúdo acumulado até aqui
	Update(ctx context.Context, messageID string) error

	// Status atualiza o indicador de progresso do turno
	Status(ctx context.Context, text string) error
}
