package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lockboxhq/backend/internal/domain"
	"github.com/lockboxhq/backend/internal/store"
)

func TestBoxStoreCreateGet(t *testing.T) {
	s := NewBoxStore()
	ctx := context.Background()

	b := &domain.Box{ID: "box-1", OwnerID: "u1", Name: "Vault"}
	require.NoError(t, s.Create(ctx, b))

	got, err := s.Get(ctx, "box-1")
	require.NoError(t, err)
	require.Equal(t, "Vault", got.Name)

	// Mutating the returned record must not alias the stored copy.
	got.Name = "mutated"
	reread, err := s.Get(ctx, "box-1")
	require.NoError(t, err)
	require.Equal(t, "Vault", reread.Name)
}

func TestBoxStoreGetNotFound(t *testing.T) {
	s := NewBoxStore()
	_, err := s.Get(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestBoxStoreUpdateVersionConflict(t *testing.T) {
	s := NewBoxStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &domain.Box{ID: "box-1", Version: 0}))

	require.NoError(t, s.Update(ctx, &domain.Box{ID: "box-1", Version: 0, Name: "first writer"}))

	err := s.Update(ctx, &domain.Box{ID: "box-1", Version: 0, Name: "stale writer"})
	require.ErrorIs(t, err, store.ErrVersionConflict)

	got, err := s.Get(ctx, "box-1")
	require.NoError(t, err)
	require.Equal(t, 1, got.Version)
	require.Equal(t, "first writer", got.Name)
}

func TestBoxStoreListByOwnerAndGuardian(t *testing.T) {
	s := NewBoxStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &domain.Box{ID: "box-1", OwnerID: "u1", Guardians: []domain.Guardian{{ID: "g1"}}}))
	require.NoError(t, s.Create(ctx, &domain.Box{ID: "box-2", OwnerID: "u2", Guardians: []domain.Guardian{{ID: "g1"}}}))

	owned, err := s.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.Equal(t, "box-1", owned[0].ID)

	guarded, err := s.ListByGuardian(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, guarded, 2)
}

func TestBoxStoreScanLocked(t *testing.T) {
	s := NewBoxStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &domain.Box{ID: "box-1", IsLocked: true}))
	require.NoError(t, s.Create(ctx, &domain.Box{ID: "box-2", IsLocked: false}))

	locked, err := s.ScanLocked(ctx)
	require.NoError(t, err)
	require.Len(t, locked, 1)
	require.Equal(t, "box-1", locked[0].ID)
}

func TestBoxStoreDelete(t *testing.T) {
	s := NewBoxStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &domain.Box{ID: "box-1"}))
	require.NoError(t, s.Delete(ctx, "box-1"))

	_, err := s.Get(ctx, "box-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Delete(ctx, "box-1"), store.ErrNotFound)
}
