package store

import (
	"context"
	"errors"

	"github.com/vitormoschetta/seguradora-chat/internal/model"
)

// ErrNotFound indica que a conversa não existe ou expirou
var ErrNotFound = errors.New("conversation not found")

// Store persiste conversas entre turnos
type Store interface {
	// Load retorna a conversa ou ErrNotFound
	Load(ctx context.Context, id string) (*model.Conversation, error)
	Save(ctx context.Context, c *model.Conversation) error
	Delete(ctx context.Context, id string) error
	Close() error
}
