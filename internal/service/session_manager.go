package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitormoschetta/seguradora-chat/internal/model"
	"github.com/vitormoschetta/seguradora-chat/internal/store"
)

// ChatSession representa uma sessão de conversação ativa.
// Mu serializa os turnos de uma mesma sessão; closed e lastUsed são
// protegidos por Mu.
type ChatSession struct {
	ID string
	Mu sync.Mutex

	closed   bool
	lastUsed time.Time
}

// SessionManager gerencia sessões de conversação sobre um Store
type SessionManager struct {
	sessions     map[string]*ChatSession
	mu           sync.RWMutex
	store        store.Store
	historyLimit int
	now          func() time.Time
}

func NewSessionManager(st store.Store, historyLimit int) *SessionManager {
	return &SessionManager{
		sessions:     make(map[string]*ChatSession),
		store:        st,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// GetOrCreate obtém uma sessão existente ou cria uma nova.
// created é true quando a sessão não estava ativa neste processo.
func (sm *SessionManager) GetOrCreate(sessionID string) (chatSession *ChatSession, created bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sessionID == "" {
		sessionID = generateSessionID()
	}

	if chatSession, exists := sm.sessions[sessionID]; exists {
		return chatSession, false
	}

	chatSession = &ChatSession{ID: sessionID, lastUsed: sm.now()}
	sm.sessions[sessionID] = chatSession
	return chatSession, true
}

// Acquire devolve a sessão já travada. Quem segura a sessão libera Mu.
func (sm *SessionManager) Acquire(sessionID string) *ChatSession {
	for {
		sess, _ := sm.GetOrCreate(sessionID)
		if sm.lock(sess) {
			return sess
		}
	}
}

// Lock trava a sessão. Se ela foi encerrada enquanto esperava, a sessão
// ativa com o mesmo ID é travada e devolvida no lugar.
func (sm *SessionManager) Lock(sess *ChatSession) *ChatSession {
	if sm.lock(sess) {
		return sess
	}
	return sm.Acquire(sess.ID)
}

func (sm *SessionManager) lock(sess *ChatSession) bool {
	sess.Mu.Lock()
	if sess.closed {
		sess.Mu.Unlock()
		return false
	}
	sess.lastUsed = sm.now()
	return true
}

// Load carrega a conversa da sessão, criando uma vazia se não existir.
// Deve ser chamado com ChatSession.Mu travado.
func (sm *SessionManager) Load(ctx context.Context, sessionID string) (*model.Conversation, error) {
	c, err := sm.store.Load(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return model.NewConversation(sessionID, sm.historyLimit), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Save grava a conversa
func (sm *SessionManager) Save(ctx context.Context, c *model.Conversation) error {
	c.Touch()
	if err := sm.store.Save(ctx, c); err != nil {
		return fmt.Errorf("failed to save conversation %s: %w", c.ID, err)
	}
	return nil
}

// Reset limpa estado e histórico e grava a conversa vazia
func (sm *SessionManager) Reset(ctx context.Context, sessionID string) (*model.Conversation, error) {
	c := model.NewConversation(sessionID, sm.historyLimit)
	if err := sm.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// End encerra a sessão e destrói seu estado. Um turno em andamento
// termina antes; quem esperava pela sessão recebe uma nova.
func (sm *SessionManager) End(ctx context.Context, sessionID string) error {
	sm.mu.RLock()
	sess, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()

	if ok {
		sess.Mu.Lock()
		defer sess.Mu.Unlock()
		sess.closed = true
		sm.forget(sess)
	}

	if err := sm.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to end session %s: %w", sessionID, err)
	}
	return nil
}

// forget tira a sessão do mapa se ela ainda for a ativa com esse ID
func (sm *SessionManager) forget(sess *ChatSession) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.sessions[sess.ID] == sess {
		delete(sm.sessions, sess.ID)
	}
}

// Prune descarta as sessões ociosas há mais de idle. O estado gravado
// fica no store, que tem sua própria expiração.
func (sm *SessionManager) Prune(idle time.Duration) int {
	sm.mu.RLock()
	candidates := make([]*ChatSession, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		candidates = append(candidates, sess)
	}
	sm.mu.RUnlock()

	pruned := 0
	cutoff := sm.now().Add(-idle)
	for _, sess := range candidates {
		// Sessão em turno não é ociosa
		if !sess.Mu.TryLock() {
			continue
		}
		if !sess.closed && sess.lastUsed.Before(cutoff) {
			sess.closed = true
			sm.forget(sess)
			pruned++
		}
		sess.Mu.Unlock()
	}
	return pruned
}

// RunJanitor executa Prune a cada intervalo até o contexto ser cancelado
func (sm *SessionManager) RunJanitor(ctx context.Context, every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sm.Prune(idle); n > 0 {
				log.Printf("🧹 Pruned %d idle sessions (%d active)", n, sm.Active())
			}
		}
	}
}

// Active retorna quantas sessões estão no mapa
func (sm *SessionManager) Active() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Exists informa se há uma conversa gravada para a sessão
func (sm *SessionManager) Exists(ctx context.Context, sessionID string) (bool, error) {
	_, err := sm.store.Load(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func generateSessionID() string {
	return uuid.NewString()
}
