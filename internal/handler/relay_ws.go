package handler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vitormoschetta/seguradora-chat/internal/model"
)

const writeWait = 10 * time.Second

// WSRelay publica o turno como frames JSON num WebSocket.
// gorilla/websocket aceita um único escritor por vez.
type WSRelay struct {
	conn      *websocket.Conn
	sessionID string
	mu        sync.Mutex
}

func NewWSRelay(conn *websocket.Conn, sessionID string) *WSRelay {
	return &WSRelay{conn: conn, sessionID: sessionID}
}

func (r *WSRelay) Send(_ context.Context, content string) (string, error) {
	id := uuid.NewString()
	return id, r.write(model.WSFrame{Type: model.FrameMessage, MessageID: id, Content: content})
}

func (r *WSRelay) Stream(_ context.Context, messageID, token string) error {
	return r.write(model.WSFrame{Type: model.FrameToken, MessageID: messageID, Content: token})
}

func (r *WSRelay) Update(_ context.Context, messageID string) error {
	return r.write(model.WSFrame{Type: model.FrameUpdate, MessageID: messageID})
}

func (r *WSRelay) Status(_ context.Context, text string) error {
	return r.write(model.WSFrame{Type: model.FrameStatus, Content: text})
}

// Connected anuncia a sessão ao cliente
func (r *WSRelay) Connected() error {
	return r.write(model.WSFrame{Type: model.FrameConnected})
}

// Error envia um frame de erro
func (r *WSRelay) Error(text string) error {
	return r.write(model.WSFrame{Type: model.FrameError, Content: text})
}

func (r *WSRelay) write(frame model.WSFrame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	frame.SessionID = r.sessionID
	if err := r.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := r.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("failed to write %s frame: %w", frame.Type, err)
	}
	return nil
}
