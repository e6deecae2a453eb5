package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vitormoschetta/seguradora-chat/internal/model"
)

// Intervalo máximo entre varreduras de expiração
const maxSweepInterval = time.Minute

// MemoryStore guarda conversas em memória. Entradas expiradas somem na
// leitura ou na varredura periódica, o que vier antes.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
	seen  map[string]time.Time
	ttl   time.Duration
	now   func() time.Time

	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore cria um store em memória. ttl <= 0 desativa a expiração.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		items: make(map[string][]byte),
		seen:  make(map[string]time.Time),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if ttl > 0 {
		go s.sweepLoop(min(ttl, maxSweepInterval))
	}
	return s
}

func (s *MemoryStore) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep remove as conversas expiradas e retorna quantas saíram
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, seen := range s.seen {
		if now.Sub(seen) > s.ttl {
			delete(s.items, id)
			delete(s.seen, id)
			removed++
		}
	}
	return removed
}

// Load devolve uma cópia, assim o chamador pode mutar sem afetar o store
func (s *MemoryStore) Load(ctx context.Context, id string) (*model.Conversation, error) {
	s.mu.RLock()
	data, ok := s.items[id]
	seen := s.seen[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if s.ttl > 0 && s.now().Sub(seen) > s.ttl {
		_ = s.Delete(ctx, id)
		return nil, ErrNotFound
	}

	var c model.Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &c, nil
}

func (s *MemoryStore) Save(ctx context.Context, c *model.Conversation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c.ID] = data
	s.seen[c.ID] = s.now()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	delete(s.seen, id)
	return nil
}

// Close encerra a varredura periódica
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	return nil
}
