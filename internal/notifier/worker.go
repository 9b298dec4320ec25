// Package notifier implements the notification worker: it consumes
// box_locked events off the event bus, resolves each listed guardian's push
// token, and dispatches one batched "shard received" push.
package notifier

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/lockboxhq/backend/internal/eventbus"
	"github.com/lockboxhq/backend/internal/logging"
	"github.com/lockboxhq/backend/internal/push"
	"github.com/lockboxhq/backend/internal/store"
)

// Worker wires an event bus subscription to the push gateway via the
// PushTokenStore.
type Worker struct {
	tokens    store.PushTokenStore
	transport push.Transport
	logger    zerolog.Logger
}

// New builds a Worker. Call Run to subscribe it to topic.
func New(tokens store.PushTokenStore, transport push.Transport, logger zerolog.Logger) *Worker {
	return &Worker{tokens: tokens, transport: transport, logger: logger}
}

// envelope mirrors the minimal shape every eventbus.envelope produces: the
// mirrored event_type field plus whatever the box_locked payload carries.
type envelope struct {
	EventType   string   `json:"event_type"`
	BoxID       string   `json:"box_id"`
	BoxName     string   `json:"box_name"`
	GuardianIDs []string `json:"guardian_ids"`
}

// Run subscribes to topic and processes messages until the returned
// unsubscribe func is called.
func (w *Worker) Run(topic string, sub eventbus.Subscriber) (func() error, error) {
	return sub.Subscribe(topic, w.handle)
}

// handle processes one raw event bus message.
func (w *Worker) handle(ctx context.Context, data []byte) (err error) {
	defer logging.RecoverPanic(w.logger, "notifier", map[string]any{})

	var env envelope
	if jsonErr := json.Unmarshal(data, &env); jsonErr != nil {
		w.logger.Warn().Err(jsonErr).Msg("failed to parse event bus message; skipping")
		return nil
	}
	if env.EventType != eventbus.KindBoxLocked {
		w.logger.Warn().Str("event_type", env.EventType).Msg("unexpected event type; skipping")
		return nil
	}
	if len(env.GuardianIDs) == 0 {
		return nil
	}

	tokens, fetchErr := w.tokens.GetMany(ctx, env.GuardianIDs)
	if fetchErr != nil {
		w.logger.Warn().Err(fetchErr).Str("box_id", env.BoxID).Msg("failed to look up guardian push tokens")
		return nil
	}
	if len(tokens) == 0 {
		return nil
	}

	recipients := make([]string, 0, len(tokens))
	for _, t := range tokens {
		recipients = append(recipients, t.Token)
	}

	title, body, payload := push.ShardReceivedNotification(env.BoxName)
	if sendErr := w.transport.Send(ctx, recipients, title, body, payload); sendErr != nil {
		w.logger.Warn().Err(sendErr).Str("box_id", env.BoxID).Msg("failed to dispatch shard-received push")
	}
	return nil
}
