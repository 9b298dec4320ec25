// Package eventbus publishes typed events onto a named topic for downstream
// workers (the notification worker and, indirectly, anything else
// subscribed to the topic) to consume. It is modeled on the teacher's
// pkg/nats client (adred-codev-ws_poc/go-server/pkg/nats/client.go): a thin
// wrapper around github.com/nats-io/nats.go with connection-lifecycle
// logging, JSON publish, and one process-wide connection dialed by Connect.
//
// NATS subjects stand in for a broker topic ARN; the broker-side eventType
// attribute is carried as a NATS message header so subscribers can filter
// without unmarshaling the payload.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// EventTypeHeader is the broker-side filterable attribute carried alongside
// the event_type payload field.
const EventTypeHeader = "eventType"

// Publisher publishes one opaque, typed event onto a topic. Implementations
// must be safe for concurrent use: the box and invitation cores call
// Publish synchronously from request-handling goroutines.
type Publisher interface {
	Publish(ctx context.Context, topic, kind string, payload any, attributes map[string]string) error
}

// Client is a Publisher backed by a NATS connection that Connect dials
// eagerly and that is reused for the lifetime of the process; the dial is
// not deferred to the first Publish.
type Client struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// Config configures the underlying NATS connection.
type Config struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// Connect dials the event bus. Call once per process and share the
// returned *Client across every publisher of every request.
func Connect(cfg Config, logger zerolog.Logger) (*Client, error) {
	c := &Client{logger: logger}

	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("event bus disconnected")
			}
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			logger.Info().Str("url", conn.ConnectedUrl()).Msg("event bus reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error().Err(err).Msg("event bus error")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to event bus: %w", err)
	}
	c.conn = conn
	logger.Info().Str("url", cfg.URL).Msg("connected to event bus")
	return c, nil
}

// envelope builds the JSON shape every published event shares: a payload
// map plus the mirrored event_type field.
func envelope(kind string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}
	fields["event_type"] = kind
	return json.Marshal(fields)
}

// Publish sends one event to topic with kind mirrored into both the
// payload's event_type field and the eventType message header. Publishing
// is synchronous with respect to the caller: Publish returns only after the
// publish attempt completes.
func (c *Client) Publish(_ context.Context, topic, kind string, payload any, attributes map[string]string) error {
	data, err := envelope(kind, payload)
	if err != nil {
		return err
	}

	msg := &nats.Msg{Subject: topic, Data: data, Header: nats.Header{}}
	msg.Header.Set(EventTypeHeader, kind)
	for k, v := range attributes {
		msg.Header.Set(k, v)
	}

	if err := c.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", kind, topic, err)
	}
	return nil
}

// Close drains and closes the underlying connection.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// Handler processes one raw event bus message. Returning an error only logs;
// it never acknowledges/redelivers, since NATS core publish is at-most-once
// and has no redelivery concept to hook into.
type Handler func(ctx context.Context, data []byte) error

// Subscriber subscribes a Handler to every message published on topic. The
// notification worker is the one consumer in this system.
type Subscriber interface {
	Subscribe(topic string, handler Handler) (unsubscribe func() error, err error)
}

// Subscribe registers handler against topic, running each message through it
// on its own goroutine per the nats.go callback model. Handler errors are
// logged; a bad message never stops the subscription.
func (c *Client) Subscribe(topic string, handler Handler) (func() error, error) {
	sub, err := c.conn.Subscribe(topic, func(msg *nats.Msg) {
		if err := handler(context.Background(), msg.Data); err != nil {
			c.logger.Warn().Err(err).Str("topic", topic).Msg("event handler failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return sub.Unsubscribe, nil
}

// NoopPublisher is the TEST_SNS=true bypass: publish always succeeds
// without touching any transport.
type NoopPublisher struct {
	Logger zerolog.Logger
}

func (n NoopPublisher) Publish(_ context.Context, topic, kind string, _ any, _ map[string]string) error {
	n.Logger.Debug().Str("topic", topic).Str("kind", kind).Msg("event bus bypassed (TEST_SNS)")
	return nil
}
