// Package push sends batched notifications to an Expo-style HTTPS push
// gateway. One request carries every recipient in a batch; per-recipient
// delivery tickets are logged but never fail the batch.
//
// Outbound request pacing uses golang.org/x/time/rate, the same library the
// teacher paces Kafka consumption with (adred-codev-ws_poc/ws/go.mod); here
// it throttles calls to the push gateway instead of inbound message
// consumption.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lockboxhq/backend/internal/domain"
)

// message is one recipient's entry in a batched push request.
type message struct {
	To               string         `json:"to"`
	Title            string         `json:"title"`
	Body             string         `json:"body"`
	Data             map[string]any `json:"data,omitempty"`
	Sound            string         `json:"sound"`
	Badge            int            `json:"badge"`
	ContentAvailable bool           `json:"_contentAvailable"`
}

// ticket is one recipient's delivery result in the gateway's response.
type ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

type batchResponse struct {
	Data []ticket `json:"data"`
}

// Transport sends a single batched notification to every token in tokens.
// An empty token list is a successful no-op.
type Transport interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]any) error
}

// Gateway is a Transport backed by an HTTPS Expo-style push endpoint.
type Gateway struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// Config configures a Gateway.
type Config struct {
	URL        string
	Timeout    time.Duration
	RatePerSec float64
}

// NewGateway builds a Gateway that rate-limits outbound batches to
// cfg.RatePerSec requests/second, bursting up to one second's worth plus
// one (so the burst is at least 1 for fractional rates).
func NewGateway(cfg Config, logger zerolog.Logger) *Gateway {
	return &Gateway{
		url:     cfg.URL,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), int(cfg.RatePerSec)+1),
		logger:  logger,
	}
}

// Send batches every token into one POST to the gateway. Non-ok tickets in
// the response are logged, not surfaced as an error — a batch partially
// accepted by the gateway is still a successful Send.
func (g *Gateway) Send(ctx context.Context, tokens []string, title, body string, data map[string]any) error {
	if len(tokens) == 0 {
		return nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("push gateway rate limiter: %w", err)
	}

	messages := make([]message, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, message{
			To:               token,
			Title:            title,
			Body:             body,
			Data:             data,
			Sound:            "default",
			Badge:            1,
			ContentAvailable: true,
		})
	}

	body2, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal push batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body2))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("push gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}

	var parsed batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		g.logger.Warn().Err(err).Msg("failed to decode push gateway response; batch sent but unconfirmed")
		return nil
	}

	for i, t := range parsed.Data {
		if t.Status != "ok" {
			recipient := ""
			if i < len(tokens) {
				recipient = tokens[i]
			}
			g.logger.Warn().
				Str("token", recipient).
				Str("status", t.Status).
				Str("message", t.Message).
				Msg("push ticket not ok")
		}
	}
	return nil
}

// ValidateRegistration checks the two things the push-token registration
// endpoint must validate before writing: a known platform and
// the opaque token prefix.
func ValidateRegistration(platform domain.Platform, token string) error {
	if !platform.Valid() {
		return domain.BadRequest("platform must be one of: ios, android")
	}
	if !domain.ValidToken(token) {
		return domain.BadRequest("push token must begin with %q", domain.ExponentPushTokenPrefix)
	}
	return nil
}
