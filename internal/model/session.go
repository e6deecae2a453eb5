package model

import (
	"time"

	"github.com/vitormoschetta/seguradora-chat/internal/extract"
)

// Papéis das mensagens no histórico
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultHistoryLimit é o tamanho padrão do histórico curto
const DefaultHistoryLimit = 12

// State guarda os identificadores confirmados pelo usuário na conversa
type State struct {
	CPF   string `json:"cpf,omitempty"`
	CNPJ  string `json:"cnpj,omitempty"`
	Plate string `json:"placa,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"telefone,omitempty"`
	Event string `json:"evento,omitempty"`
}

// Merge sobrescreve apenas os campos que chegaram preenchidos.
// Um valor vazio nunca apaga o que já foi informado.
func (s *State) Merge(ids extract.Identifiers) {
	if ids.CPF != "" {
		s.CPF = ids.CPF
	}
	if ids.CNPJ != "" {
		s.CNPJ = ids.CNPJ
	}
	if ids.Plate != "" {
		s.Plate = ids.Plate
	}
	if ids.Email != "" {
		s.Email = ids.Email
	}
	if ids.Phone != "" {
		s.Phone = ids.Phone
	}
	if ids.Event != "" {
		s.Event = ids.Event
	}
}

// HasIdentifier informa se há pelo menos um identificador do cliente
func (s State) HasIdentifier() bool {
	return s.CPF != "" || s.CNPJ != "" || s.Plate != "" || s.Email != "" || s.Phone != ""
}

// Turn é uma entrada do histórico curto
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation é o estado completo de uma sessão de chat
type Conversation struct {
	ID           string    `json:"id"`
	State        State     `json:"state"`
	History      []Turn    `json:"history"`
	HistoryLimit int       `json:"history_limit"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewConversation cria uma conversa vazia
func NewConversation(id string, historyLimit int) *Conversation {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Conversation{
		ID:           id,
		History:      []Turn{},
		HistoryLimit: historyLimit,
		UpdatedAt:    time.Now(),
	}
}

// Append adiciona um turno descartando os mais antigos além do limite
func (c *Conversation) Append(role, content string) {
	c.History = append(c.History, Turn{Role: role, Content: content})
	if limit := c.limit(); len(c.History) > limit {
		trimmed := make([]Turn, limit)
		copy(trimmed, c.History[len(c.History)-limit:])
		c.History = trimmed
	}
}

// Reset limpa estado e histórico
func (c *Conversation) Reset() {
	c.State = State{}
	c.History = []Turn{}
}

// Touch atualiza o instante da última modificação
func (c *Conversation) Touch() {
	c.UpdatedAt = time.Now()
}

func (c *Conversation) limit() int {
	if c.HistoryLimit <= 0 {
		return DefaultHistoryLimit
	}
	return c.HistoryLimit
}
