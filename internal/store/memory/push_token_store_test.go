package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lockboxhq/backend/internal/domain"
)

func TestPushTokenStoreSaveUpsertsByUser(t *testing.T) {
	s := NewPushTokenStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &domain.PushToken{UserID: "u1", Token: "ExponentPushToken[a]"}))
	require.NoError(t, s.Save(ctx, &domain.PushToken{UserID: "u1", Token: "ExponentPushToken[b]"}))

	got, err := s.GetMany(ctx, []string{"u1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "ExponentPushToken[b]", got[0].Token)
}

func TestPushTokenStoreGetManySkipsMissing(t *testing.T) {
	s := NewPushTokenStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, &domain.PushToken{UserID: "u1", Token: "ExponentPushToken[a]"}))

	got, err := s.GetMany(ctx, []string{"u1", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestPushTokenStoreSaveDoesNotAliasCaller(t *testing.T) {
	s := NewPushTokenStore()
	ctx := context.Background()
	tok := &domain.PushToken{UserID: "u1", Token: "ExponentPushToken[a]"}
	require.NoError(t, s.Save(ctx, tok))

	tok.Token = "mutated"
	got, err := s.GetMany(ctx, []string{"u1"})
	require.NoError(t, err)
	require.Equal(t, "ExponentPushToken[a]", got[0].Token)
}
