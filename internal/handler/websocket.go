package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vitormoschetta/seguradora-chat/internal/model"
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin: func(r *http.Request) bool {
		return true // sobrescrito no handler
	},
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.server.Config == nil || len(h.server.Config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // clientes fora do navegador
	}
	for _, allowed := range h.server.Config.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// HandleWebSocket conduz uma sessão de chat inteira sobre WebSocket.
// Fechar a conexão encerra a sessão e destrói seu estado.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	up := upgrader
	up.CheckOrigin = h.checkOrigin

	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// A conexão não herda os prazos do servidor HTTP
	_ = conn.SetReadDeadline(time.Time{})

	chatSess, _ := h.server.SessionManager.GetOrCreate(r.URL.Query().Get("session_id"))
	relay := NewWSRelay(conn, chatSess.ID)

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	defer func() {
		if err := h.server.SessionManager.End(context.Background(), chatSess.ID); err != nil {
			log.Printf("Error ending session %s: %v", chatSess.ID, err)
		}
		log.Printf("🔌 Session %s closed", chatSess.ID)
	}()

	if err := relay.Connected(); err != nil {
		log.Printf("Failed to send connected message: %v", err)
		return
	}
	if err := h.server.Assistant.Welcome(ctx, chatSess, relay); err != nil {
		log.Printf("Failed to start session %s: %v", chatSess.ID, err)
		return
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket closed unexpectedly: %v", err)
			}
			return
		}

		var incoming model.WSIncoming
		if err := json.Unmarshal(message, &incoming); err != nil {
			log.Printf("Invalid message format: %v", err)
			if err := relay.Error("Invalid message format. Send JSON with a 'text' field."); err != nil {
				return
			}
			continue
		}

		if strings.TrimSpace(incoming.Text) == "" {
			continue
		}

		if err := h.server.Assistant.HandleTurn(ctx, chatSess, incoming.Text, relay); err != nil {
			log.Printf("Error processing message in session %s: %v", chatSess.ID, err)
			if err := relay.Error("Failed to process message"); err != nil {
				return
			}
		}
	}
}
