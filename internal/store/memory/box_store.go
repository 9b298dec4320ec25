// Package memory provides map-backed, mutex-guarded implementations of the
// store interfaces, suitable for tests and single-process deployments. The
// shape follows github.com/dreamware/torua's internal/storage.MemoryStore:
// an RWMutex-protected map, defensive copies in and out, and no I/O inside
// the lock.
package memory

import (
	"context"
	"sync"

	"github.com/lockboxhq/backend/internal/domain"
	"github.com/lockboxhq/backend/internal/store"
)

// BoxStore is an in-memory store.BoxStore. Safe for concurrent use.
type BoxStore struct {
	mu     sync.RWMutex
	boxes  map[string]*domain.Box
}

// NewBoxStore returns an empty, ready-to-use BoxStore.
func NewBoxStore() *BoxStore {
	return &BoxStore{boxes: make(map[string]*domain.Box)}
}

func (s *BoxStore) Create(_ context.Context, box *domain.Box) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boxes[box.ID] = box.Clone()
	return nil
}

func (s *BoxStore) Get(_ context.Context, id string) (*domain.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boxes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return b.Clone(), nil
}

// Update applies box only if its Version matches the stored version, then
// bumps the stored version by one. This is the compare-and-swap spec.md §5
// relies on in place of application-level locking.
func (s *BoxStore) Update(_ context.Context, box *domain.Box) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.boxes[box.ID]
	if !ok {
		return store.ErrNotFound
	}
	if existing.Version != box.Version {
		return store.ErrVersionConflict
	}

	updated := box.Clone()
	updated.Version = existing.Version + 1
	s.boxes[box.ID] = updated
	return nil
}

func (s *BoxStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boxes[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.boxes, id)
	return nil
}

func (s *BoxStore) ListByOwner(_ context.Context, ownerID string) ([]*domain.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Box
	for _, b := range s.boxes {
		if b.OwnerID == ownerID {
			out = append(out, b.Clone())
		}
	}
	return out, nil
}

func (s *BoxStore) ListByGuardian(_ context.Context, guardianID string) ([]*domain.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Box
	for _, b := range s.boxes {
		for _, g := range b.Guardians {
			if g.ID == guardianID {
				out = append(out, b.Clone())
				break
			}
		}
	}
	return out, nil
}

func (s *BoxStore) ScanLocked(_ context.Context) ([]*domain.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Box
	for _, b := range s.boxes {
		if b.IsLocked {
			out = append(out, b.Clone())
		}
	}
	return out, nil
}
