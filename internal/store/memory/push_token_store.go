package memory

import (
	"context"
	"sync"

	"github.com/lockboxhq/backend/internal/domain"
)

// PushTokenStore is an in-memory store.PushTokenStore, upserting by user id.
// Safe for concurrent use.
type PushTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*domain.PushToken
}

func NewPushTokenStore() *PushTokenStore {
	return &PushTokenStore{tokens: make(map[string]*domain.PushToken)}
}

func (s *PushTokenStore) Save(_ context.Context, token *domain.PushToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *token
	s.tokens[token.UserID] = &cp
	return nil
}

func (s *PushTokenStore) GetMany(_ context.Context, userIDs []string) ([]*domain.PushToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.PushToken, 0, len(userIDs))
	for _, id := range userIDs {
		if t, ok := s.tokens[id]; ok {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}
