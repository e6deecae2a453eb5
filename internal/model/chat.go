package model

// ChatRequest representa a requisição para o endpoint de chat
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatMessage é uma mensagem exibida ao usuário durante um turno
type ChatMessage struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// ChatResponse representa a resposta do endpoint de chat.
// Response concatena as mensagens do turno; Messages traz cada uma separada.
type ChatResponse struct {
	Response  string        `json:"response"`
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages,omitempty"`
	Steps     []string      `json:"steps,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// SessionResponse expõe o estado atual de uma sessão
type SessionResponse struct {
	SessionID string `json:"session_id"`
	State     State  `json:"state"`
	History   []Turn `json:"history"`
}

// Tipos de frame trocados pelo WebSocket
const (
	FrameConnected = "connected"
	FrameMessage   = "message"
	FrameToken     = "token"
	FrameUpdate    = "update"
	FrameStatus    = "status"
	FrameError     = "error"
)

// WSIncoming é o frame enviado pelo cliente
type WSIncoming struct {
	Text string `json:"text"`
}

// WSFrame é o frame enviado pelo servidor
type WSFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Content   string `json:"content,omitempty"`
}
