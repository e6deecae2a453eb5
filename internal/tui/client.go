package tui

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vitormoschetta/seguradora-chat/internal/model"
)

// Client é a ponta de terminal do chat por WebSocket
type Client struct {
	conn   *websocket.Conn
	frames chan model.WSFrame
	mu     sync.Mutex
	err    error
}

// Dial conecta ao servidor de chat. sessionID vazio deixa o servidor escolher.
func Dial(ctx context.Context, endpoint, sessionID string) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid chat url %q: %w", endpoint, err)
	}
	if sessionID != "" {
		q := u.Query()
		q.Set("session_id", sessionID)
		u.RawQuery = q.Encode()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", u.Redacted(), err)
	}

	c := &Client{
		conn:   conn,
		frames: make(chan model.WSFrame, 32),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.frames)
	for {
		var frame model.WSFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.mu.Lock()
				c.err = err
				c.mu.Unlock()
			}
			return
		}
		c.frames <- frame
	}
}

// Frames entrega os frames recebidos; o canal fecha quando a conexão cai
func (c *Client) Frames() <-chan model.WSFrame {
	return c.frames
}

// Err retorna o motivo de um fechamento inesperado
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Send envia uma mensagem do usuário
func (c *Client) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(model.WSIncoming{Text: text})
}

// Close fecha a conexão avisando o servidor
func (c *Client) Close() error {
	c.mu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.mu.Unlock()
	return c.conn.Close()
}
