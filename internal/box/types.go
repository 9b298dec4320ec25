// Package box implements the box core: lifecycle, guardian/document edits,
// the lock transition, and per-guardian shard custody.
package box

import (
	"context"
	"time"

	"github.com/lockboxhq/backend/internal/domain"
	"github.com/lockboxhq/backend/internal/eventbus"
	"github.com/lockboxhq/backend/internal/store"
	"github.com/rs/zerolog"
)

// Service implements the box core against a BoxStore and an event bus
// Publisher.
type Service struct {
	store     store.BoxStore
	publisher eventbus.Publisher
	topic     string
	now       func() time.Time
	logger    zerolog.Logger
}

// New builds a box Service. now defaults to time.Now if nil.
func New(boxStore store.BoxStore, publisher eventbus.Publisher, topic string, now func() time.Time, logger zerolog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: boxStore, publisher: publisher, topic: topic, now: now, logger: logger}
}

// NullableString is a tri-state field update: absent (not provided), or
// present with either a value or an explicit null-clear. UpdateBox uses
// this for unlock_instructions, distinguishing "not provided" from
// "clear to null".
type NullableString struct {
	Present bool
	Value   *string
}

// UpdateBoxInput carries the owner-editable fields of Update box. A nil
// pointer field means "not provided"; IsLocked is pointer-typed the same
// way.
type UpdateBoxInput struct {
	Name               *string
	Description        *string
	UnlockInstructions NullableString
	IsLocked           *bool
}

// ShardInput is one guardian's shard as supplied to the lock transition.
type ShardInput struct {
	GuardianID string
	Shard      []byte
	ShardHash  string
}

// LockInput is the payload of the lock transition.
type LockInput struct {
	Shards         []ShardInput
	ShardThreshold int
}

// ShardView is what FetchShard returns to a guardian.
type ShardView struct {
	EncryptedShard []byte
	ShardHash      string
	ShardFetchedAt *time.Time
	ShardThreshold int
	TotalShards    int
}

// AckResult is what AcknowledgeShard returns.
type AckResult struct {
	ShardFetchedAt time.Time
	TotalShards    int
	ShardsFetched  int
}

// AcceptResult is what AcceptShard returns.
type AcceptResult struct {
	ShardAcceptedAt time.Time
	BoxID           string
	BoxName         string
}

// retryUpdate re-reads the box and re-applies mutate on every
// ErrVersionConflict, up to a small bound. Acknowledge/accept are naturally
// idempotent on final state, so the core retries internally instead of
// surfacing Conflict to a caller that did nothing wrong.
func (s *Service) retryUpdate(ctx context.Context, id string, mutate func(*domain.Box) error) (*domain.Box, error) {
	const maxAttempts = 5
	var last error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		b, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := mutate(b); err != nil {
			return nil, err
		}
		if err := s.store.Update(ctx, b); err != nil {
			if err == store.ErrVersionConflict {
				last = err
				continue
			}
			return nil, mapUpdateErr(err)
		}
		return b, nil
	}
	return nil, mapUpdateErr(last)
}
