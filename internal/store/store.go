// Package store defines the abstract durable-storage contract the box and
// invitation cores are built against: CRUD plus the secondary-index lookups
// spec.md §4.A names (by owner, by guardian, by code, by creator) and the
// optimistic-version guard that discharges every cross-entity invariant in
// §5 without application-level locking.
//
// This mirrors the storage-interface-plus-in-memory-implementation shape of
// github.com/dreamware/torua's internal/storage package: a small interface,
// documented thread-safety and copy semantics, and a map-backed reference
// implementation suitable for tests and single-process deployments. A real
// deployment swaps in a durable, conditional-write-capable engine behind the
// same interfaces; which engine is out of scope.
package store

import (
	"context"
	"errors"

	"github.com/lockboxhq/backend/internal/domain"
)

// ErrNotFound is returned by Get/Update/Delete when the requested record
// does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrVersionConflict is returned by BoxStore.Update when the caller's
// in-hand Version does not match the stored Version — the optimistic
// concurrency guard spec.md §5 requires for every box mutation.
var ErrVersionConflict = errors.New("store: version conflict")

// ErrAlreadyOpened is returned by InvitationStore.Update's conditional
// redemption path when another caller already set Opened=true, discharging
// invariant I5/I6 and property P5 under concurrent redemption.
var ErrAlreadyOpened = errors.New("store: invitation already opened")

// BoxStore is the durable CRUD + secondary-index surface for Box records.
type BoxStore interface {
	Create(ctx context.Context, box *domain.Box) error
	Get(ctx context.Context, id string) (*domain.Box, error)

	// Update persists box if its Version matches the currently stored
	// version, then increments the stored version. Returns
	// ErrVersionConflict otherwise.
	Update(ctx context.Context, box *domain.Box) error

	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Box, error)

	// ListByGuardian returns every box where some guardian's ID matches
	// guardianID — a secondary-index lookup keyed on guardian id.
	ListByGuardian(ctx context.Context, guardianID string) ([]*domain.Box, error)

	// ScanLocked returns every box with IsLocked=true, the input to the
	// reminder worker's periodic sweep.
	ScanLocked(ctx context.Context) ([]*domain.Box, error)
}

// InvitationStore is the durable CRUD + secondary-index surface for
// Invitation records.
type InvitationStore interface {
	Create(ctx context.Context, inv *domain.Invitation) error
	Get(ctx context.Context, id string) (*domain.Invitation, error)
	GetByCode(ctx context.Context, code string) (*domain.Invitation, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*domain.Invitation, error)

	// Update persists inv unconditionally except for one guarded
	// transition: if the stored record already has Opened=true and inv
	// also has Opened=true, Update returns ErrAlreadyOpened without
	// mutating the stored record. This is the conditional write spec.md §5
	// uses to serialize invitation redemption — exactly one of N
	// concurrent redeemers observes success.
	Update(ctx context.Context, inv *domain.Invitation) error

	Delete(ctx context.Context, id string) error
}

// PushTokenStore is the durable upsert-by-user surface for PushToken
// records.
type PushTokenStore interface {
	Save(ctx context.Context, token *domain.PushToken) error

	// GetMany returns the tokens present for the given user ids; users
	// without a registered device are simply absent from the result, not
	// an error.
	GetMany(ctx context.Context, userIDs []string) ([]*domain.PushToken, error)
}
