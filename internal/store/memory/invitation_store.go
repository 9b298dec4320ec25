package memory

import (
	"context"
	"sync"

	"github.com/lockboxhq/backend/internal/domain"
	"github.com/lockboxhq/backend/internal/store"
)

// InvitationStore is an in-memory store.InvitationStore, secondary-indexed
// by invite code and by creator id. Safe for concurrent use.
type InvitationStore struct {
	mu          sync.RWMutex
	invitations map[string]*domain.Invitation // by id
	byCode      map[string]string             // code -> id
}

func NewInvitationStore() *InvitationStore {
	return &InvitationStore{
		invitations: make(map[string]*domain.Invitation),
		byCode:      make(map[string]string),
	}
}

func (s *InvitationStore) Create(_ context.Context, inv *domain.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invitations[inv.ID] = inv.Clone()
	s.byCode[inv.InviteCode] = inv.ID
	return nil
}

func (s *InvitationStore) Get(_ context.Context, id string) (*domain.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invitations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return inv.Clone(), nil
}

func (s *InvitationStore) GetByCode(_ context.Context, code string) (*domain.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.invitations[id].Clone(), nil
}

func (s *InvitationStore) ListByCreator(_ context.Context, creatorID string) ([]*domain.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Invitation
	for _, inv := range s.invitations {
		if inv.CreatorID == creatorID {
			out = append(out, inv.Clone())
		}
	}
	return out, nil
}

// Update persists inv, except it refuses to clobber a redemption that has
// already landed: if the stored record is already Opened and inv is also
// Opened, the call is the loser of a redemption race and returns
// ErrAlreadyOpened without mutating anything. Holding the write lock across
// the check-and-set is what makes exactly one of N concurrent redeemers
// win.
func (s *InvitationStore) Update(_ context.Context, inv *domain.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.invitations[inv.ID]
	if !ok {
		return store.ErrNotFound
	}
	if existing.Opened && inv.Opened {
		return store.ErrAlreadyOpened
	}

	if existing.InviteCode != inv.InviteCode {
		delete(s.byCode, existing.InviteCode)
		s.byCode[inv.InviteCode] = inv.ID
	}
	s.invitations[inv.ID] = inv.Clone()
	return nil
}

func (s *InvitationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.byCode, inv.InviteCode)
	delete(s.invitations, id)
	return nil
}
