package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vitormoschetta/seguradora-chat/internal/gateway"
	"github.com/vitormoschetta/seguradora-chat/internal/model"
	"github.com/vitormoschetta/seguradora-chat/internal/routing"
	"github.com/vitormoschetta/seguradora-chat/internal/server"
)

// Handler contém as dependências necessárias para os handlers HTTP
type Handler struct {
	server *server.Server
}

// NewHandler cria uma nova instância do Handler
func NewHandler(srv *server.Server) *Handler {
	return &Handler{
		server: srv,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// HandleRoot retorna informações sobre o serviço
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "Seguradora Chat - LLM + MCP Gateway",
		"endpoints": map[string]any{
			"chat": map[string]any{
				"url":         "/api/chat",
				"method":      "POST",
				"description": "Send a message to the insurance assistant",
				"example": map[string]string{
					"message":    "bati o carro, CPF 123.456.789-10",
					"session_id": "optional-session-id",
				},
			},
			"websocket": map[string]any{
				"url":         "/ws?session_id=optional-session-id",
				"method":      "GET",
				"description": "Streaming chat; send {\"text\": \"...\"} frames",
			},
			"health": map[string]any{
				"url":         "/health",
				"method":      "GET",
				"description": "Health check endpoint",
			},
			"tools": map[string]any{
				"url":         "/api/tools",
				"method":      "GET",
				"description": "List MCP tools per scenario",
			},
			"sessions": map[string]any{
				"url":         "/api/sessions/{id}",
				"methods":     []string{"GET", "DELETE"},
				"description": "Inspect or end a session; POST /api/sessions/{id}/reset clears it",
			},
		},
	}
	if cfg := h.server.Config; cfg != nil {
		response["model"] = map[string]string{
			"provider": cfg.Provider,
			"name":     cfg.Model(),
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// HandleHealth retorna o status de saúde do servidor
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// HandleTools retorna as ferramentas declaradas por cenário e a lista viva do gateway
func (h *Handler) HandleTools(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"scenarios": map[string][]string{
			string(routing.ScenarioClaim):   routing.ClaimTools,
			string(routing.ScenarioGeneral): routing.GeneralTools,
		},
	}

	if cfg := h.server.Config; cfg != nil {
		srv := gateway.Server{
			Label:         cfg.MCPLabel,
			Description:   cfg.MCPDescription,
			URL:           cfg.MCPURL,
			Authorization: cfg.MCPToken,
		}
		response["mcp_server"] = gateway.NewDeclaration(srv, routing.ClaimTools).Redacted()
	}

	catalog, err := h.server.Gateway.Catalog(r.Context())
	if err != nil {
		log.Printf("Error listing MCP tools: %v", err)
		response["error"] = err.Error()
	} else {
		response["tools"] = catalog
	}

	writeJSON(w, http.StatusOK, response)
}

// HandleChat processa uma mensagem e devolve o turno completo
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	// Parse do JSON
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error parsing JSON: %v", err)
		writeJSON(w, http.StatusBadRequest, model.ChatResponse{Error: "Invalid JSON format"})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, model.ChatResponse{Error: "Message is required"})
		return
	}

	// Obter ou criar sessão
	chatSess, _ := h.server.SessionManager.GetOrCreate(req.SessionID)

	relay := NewBufferRelay()
	if err := h.server.Assistant.HandleTurn(r.Context(), chatSess, req.Message, relay); err != nil {
		log.Printf("Error processing message in session %s: %v", chatSess.ID, err)
		writeJSON(w, http.StatusInternalServerError, model.ChatResponse{
			Error:     "Failed to process message",
			SessionID: chatSess.ID,
		})
		return
	}

	writeJSON(w, http.StatusOK, relay.Response(chatSess.ID))
}

// HandleGetSession expõe estado e histórico de uma sessão
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	exists, err := h.server.SessionManager.Exists(r.Context(), sessionID)
	if err != nil {
		log.Printf("Error loading session %s: %v", sessionID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load session"})
		return
	}
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Session not found"})
		return
	}

	conv, err := h.server.SessionManager.Load(r.Context(), sessionID)
	if err != nil {
		log.Printf("Error loading session %s: %v", sessionID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load session"})
		return
	}

	writeJSON(w, http.StatusOK, model.SessionResponse{
		SessionID: conv.ID,
		State:     conv.State,
		History:   conv.History,
	})
}

// HandleResetSession limpa estado e histórico, como o comando /reset
func (h *Handler) HandleResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	chatSess := h.server.SessionManager.Acquire(sessionID)
	defer chatSess.Mu.Unlock()

	if _, err := h.server.SessionManager.Reset(r.Context(), chatSess.ID); err != nil {
		log.Printf("Error resetting session %s: %v", sessionID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to reset session"})
		return
	}

	writeJSON(w, http.StatusOK, model.ChatResponse{
		Response:  routing.ResetMessage,
		SessionID: chatSess.ID,
	})
}

// HandleDeleteSession encerra a sessão e destrói seu estado
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.server.SessionManager.End(r.Context(), sessionID); err != nil {
		log.Printf("Error ending session %s: %v", sessionID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to end session"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
