package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lockboxhq/backend/internal/domain"
	"github.com/lockboxhq/backend/internal/store/memory"
)

type sentPush struct {
	tokens []string
	title  string
	body   string
	data   map[string]any
}

type recordingTransport struct {
	mu   sync.Mutex
	sent []sentPush
}

func (t *recordingTransport) Send(_ context.Context, tokens []string, title, body string, data map[string]any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, sentPush{tokens: tokens, title: title, body: body, data: data})
	return nil
}

// TestReminderTierBoundaries covers §8 B4's discrete 6-hour windows exactly.
func TestReminderTierBoundaries(t *testing.T) {
	cases := map[int]int{
		0: 0, 23: 0, 24: 1, 29: 1, 30: 0,
		71: 0, 72: 2, 77: 2, 78: 0,
		167: 0, 168: 3, 173: 3, 174: 0,
		200: 0,
	}
	for hours, want := range cases {
		require.Equal(t, want, ReminderTier(hours), "hours=%d", hours)
	}
}

// TestSweepSendsFirstReminder covers S6: a box locked 25h ago reminds every
// guardian with a registered token and no shard acceptance, and skips
// guardians without one.
func TestSweepSendsFirstReminder(t *testing.T) {
	lockedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := lockedAt.Add(25 * time.Hour)

	boxes := memory.NewBoxStore()
	ctx := context.Background()
	require.NoError(t, boxes.Create(ctx, &domain.Box{
		ID:       "box-1",
		Name:     "Vault",
		IsLocked: true,
		LockedAt: &lockedAt,
		Guardians: []domain.Guardian{
			{ID: "g1"},
			{ID: "g2"},
		},
	}))

	tokens := memory.NewPushTokenStore()
	require.NoError(t, tokens.Save(ctx, &domain.PushToken{UserID: "g1", Token: "ExponentPushToken[g1]", Platform: domain.PlatformIOS}))

	transport := &recordingTransport{}
	w := New(boxes, tokens, transport, func() time.Time { return now }, zerolog.Nop())
	w.Sweep(ctx)

	require.Len(t, transport.sent, 1)
	require.Equal(t, []string{"ExponentPushToken[g1]"}, transport.sent[0].tokens)
	require.Equal(t, 1, transport.sent[0].data["reminderStep"])

	got, err := boxes.Get(ctx, "box-1")
	require.NoError(t, err)
	require.Equal(t, 0, got.Version)
}

func TestSweepSkipsAcceptedGuardians(t *testing.T) {
	lockedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := lockedAt.Add(25 * time.Hour)
	accepted := lockedAt

	boxes := memory.NewBoxStore()
	ctx := context.Background()
	require.NoError(t, boxes.Create(ctx, &domain.Box{
		ID:       "box-1",
		Name:     "Vault",
		IsLocked: true,
		LockedAt: &lockedAt,
		Guardians: []domain.Guardian{
			{ID: "g1", ShardAcceptedAt: &accepted},
		},
	}))
	tokens := memory.NewPushTokenStore()
	require.NoError(t, tokens.Save(ctx, &domain.PushToken{UserID: "g1", Token: "ExponentPushToken[g1]"}))

	transport := &recordingTransport{}
	w := New(boxes, tokens, transport, func() time.Time { return now }, zerolog.Nop())
	w.Sweep(ctx)

	require.Empty(t, transport.sent)
}

func TestSweepIgnoresUnlockedBoxes(t *testing.T) {
	boxes := memory.NewBoxStore()
	ctx := context.Background()
	require.NoError(t, boxes.Create(ctx, &domain.Box{ID: "box-1", IsLocked: false}))

	tokens := memory.NewPushTokenStore()
	transport := &recordingTransport{}
	w := New(boxes, tokens, transport, nil, zerolog.Nop())
	w.Sweep(ctx)

	require.Empty(t, transport.sent)
}

func TestSweepUsesGuardianLockDataReceivedAtOverBoxLockedAt(t *testing.T) {
	lockedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	received := lockedAt.Add(-5 * time.Hour) // guardian's own clock started earlier
	now := lockedAt.Add(20 * time.Hour)      // 25h since received, 20h since box locked

	boxes := memory.NewBoxStore()
	ctx := context.Background()
	require.NoError(t, boxes.Create(ctx, &domain.Box{
		ID:       "box-1",
		Name:     "Vault",
		IsLocked: true,
		LockedAt: &lockedAt,
		Guardians: []domain.Guardian{
			{ID: "g1", LockDataReceivedAt: &received},
		},
	}))
	tokens := memory.NewPushTokenStore()
	require.NoError(t, tokens.Save(ctx, &domain.PushToken{UserID: "g1", Token: "ExponentPushToken[g1]"}))

	transport := &recordingTransport{}
	w := New(boxes, tokens, transport, func() time.Time { return now }, zerolog.Nop())
	w.Sweep(ctx)

	require.Len(t, transport.sent, 1)
}
