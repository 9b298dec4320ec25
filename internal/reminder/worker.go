// Package reminder implements the reminder worker: a periodic sweep over
// locked boxes that emits tiered nag notifications to guardians who have not
// yet accepted their shard.
package reminder

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lockboxhq/backend/internal/domain"
	"github.com/lockboxhq/backend/internal/logging"
	"github.com/lockboxhq/backend/internal/push"
	"github.com/lockboxhq/backend/internal/store"
)

// Worker drives one sweep of the reminder pipeline at a time; the caller
// (cmd/reminder) owns the ticker that invokes Sweep on the configured
// cadence (default 6h, spec.md §4.G).
type Worker struct {
	boxes     store.BoxStore
	tokens    store.PushTokenStore
	transport push.Transport
	now       func() time.Time
	logger    zerolog.Logger
}

// New builds a Worker. now defaults to time.Now if nil.
func New(boxes store.BoxStore, tokens store.PushTokenStore, transport push.Transport, now func() time.Time, logger zerolog.Logger) *Worker {
	if now == nil {
		now = time.Now
	}
	return &Worker{boxes: boxes, tokens: tokens, transport: transport, now: now, logger: logger}
}

// ReminderTier maps elapsed hours since lock to a reminder number using the
// discrete 6-hour windows spec.md §4.G / §8 B4 define: 24-30h -> 1,
// 72-78h -> 2, 168-174h -> 3, else 0 (no reminder due).
func ReminderTier(hoursElapsed int) int {
	switch {
	case hoursElapsed >= 24 && hoursElapsed < 30:
		return 1
	case hoursElapsed >= 72 && hoursElapsed < 78:
		return 2
	case hoursElapsed >= 168 && hoursElapsed < 174:
		return 3
	default:
		return 0
	}
}

// Sweep performs one pass over every locked box, emitting reminders where
// due. Per-guardian failures are logged and never stop the sweep.
func (w *Worker) Sweep(ctx context.Context) {
	defer logging.RecoverPanic(w.logger, "reminder", map[string]any{})

	boxes, err := w.boxes.ScanLocked(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("failed to scan locked boxes")
		return
	}

	now := w.now()
	for _, b := range boxes {
		w.sweepBox(ctx, b, now)
	}
}

func (w *Worker) sweepBox(ctx context.Context, b *domain.Box, now time.Time) {
	for _, g := range b.Guardians {
		if g.ShardAcceptedAt != nil {
			continue
		}

		var t0 time.Time
		switch {
		case g.LockDataReceivedAt != nil:
			t0 = *g.LockDataReceivedAt
		case b.LockedAt != nil:
			t0 = *b.LockedAt
		default:
			w.logger.Warn().Str("box_id", b.ID).Str("guardian_id", g.ID).Msg("guardian has no lock reference time; skipping")
			continue
		}

		hours := int(now.Sub(t0).Hours())
		tier := ReminderTier(hours)
		if tier == 0 {
			continue
		}
		if g.ID == "" {
			continue
		}

		tokens, err := w.tokens.GetMany(ctx, []string{g.ID})
		if err != nil {
			w.logger.Warn().Err(err).Str("box_id", b.ID).Str("guardian_id", g.ID).Msg("failed to look up push token")
			continue
		}
		if len(tokens) == 0 {
			continue
		}

		title, body, data := push.ReminderNotification(b.Name, tier)
		if err := w.transport.Send(ctx, []string{tokens[0].Token}, title, body, data); err != nil {
			w.logger.Warn().Err(err).Str("box_id", b.ID).Str("guardian_id", g.ID).Msg("failed to send reminder")
		}
	}
}
