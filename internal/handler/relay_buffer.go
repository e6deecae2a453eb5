package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vitormoschetta/seguradora-chat/internal/model"
)

// BufferRelay acumula as mensagens de um turno para a resposta JSON
type BufferRelay struct {
	mu       sync.Mutex
	messages []model.ChatMessage
	steps    []string
}

func NewBufferRelay() *BufferRelay {
	return &BufferRelay{}
}

func (b *BufferRelay) Send(_ context.Context, content string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	b.messages = append(b.messages, model.ChatMessage{ID: id, Content: content})
	return id, nil
}

func (b *BufferRelay) Stream(_ context.Context, messageID, token string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.messages {
		if b.messages[i].ID == messageID {
			b.messages[i].Content += token
			return nil
		}
	}
	return fmt.Errorf("unknown message %s", messageID)
}

// Update não faz nada: o conteúdo já está acumulado no buffer
func (b *BufferRelay) Update(context.Context, string) error {
	return nil
}

func (b *BufferRelay) Status(_ context.Context, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.steps = append(b.steps, text)
	return nil
}

// Response monta a resposta do endpoint de chat
func (b *BufferRelay) Response(sessionID string) model.ChatResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	parts := make([]string, 0, len(b.messages))
	for _, m := range b.messages {
		if m.Content != "" {
			parts = append(parts, m.Content)
		}
	}

	return model.ChatResponse{
		Response:  strings.Join(parts, "\n\n"),
		SessionID: sessionID,
		Messages:  append([]model.ChatMessage(nil), b.messages...),
		Steps:     append([]string(nil), b.steps...),
	}
}
