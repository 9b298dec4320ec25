// Package invitation implements the invitation core: single-use,
// time-bounded, collision-resistant invite codes binding a box to a
// guardian identity.
package invitation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lockboxhq/backend/internal/domain"
	"github.com/lockboxhq/backend/internal/eventbus"
	"github.com/lockboxhq/backend/internal/store"
)

// Service implements the invitation core against an InvitationStore and an
// event bus Publisher.
type Service struct {
	store     store.InvitationStore
	publisher eventbus.Publisher
	topic     string
	now       func() time.Time
	logger    zerolog.Logger
}

// New builds an invitation Service. now defaults to time.Now if nil, which
// lets tests inject a fixed clock for the 48h expiry math.
func New(invStore store.InvitationStore, publisher eventbus.Publisher, topic string, now func() time.Time, logger zerolog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: invStore, publisher: publisher, topic: topic, now: now, logger: logger}
}

// Create mints a fresh invitation with a 48h expiry window.
func (s *Service) Create(ctx context.Context, creatorID, invitedName, boxID string, isLead bool) (*domain.Invitation, error) {
	if creatorID == "" {
		return nil, domain.Unauthorized("caller identity required")
	}
	if invitedName == "" || boxID == "" {
		return nil, domain.BadRequest("invitedName and boxId are required")
	}

	code, err := generateCode()
	if err != nil {
		return nil, domain.Internal("failed to generate invite code", err)
	}

	now := s.now()
	inv := &domain.Invitation{
		ID:             uuid.NewString(),
		InviteCode:     code,
		InvitedName:    invitedName,
		BoxID:          boxID,
		CreatorID:      creatorID,
		CreatedAt:      now,
		ExpiresAt:      now.Add(domain.InvitationTTL),
		Opened:         false,
		IsLeadGuardian: isLead,
	}

	if err := s.store.Create(ctx, inv); err != nil {
		return nil, domain.Internal("failed to store invitation", err)
	}

	if err := s.publisher.Publish(ctx, s.topic, eventbus.KindInvitationCreated, eventbus.InvitationCreatedPayload{
		InvitationID: inv.ID,
		BoxID:        inv.BoxID,
		InviteCode:   inv.InviteCode,
		Timestamp:    now,
	}, map[string]string{eventbus.EventTypeHeader: eventbus.KindInvitationCreated}); err != nil {
		// Publish failures never change the core's success path.
		s.logger.Warn().Err(err).Str("invitation_id", inv.ID).Msg("failed to publish invitation_created")
	}

	return inv, nil
}

// ViewByCode is a read-only lookup; it never mutates Opened or
// LinkedUserID.
func (s *Service) ViewByCode(ctx context.Context, code string) (*domain.Invitation, error) {
	inv, err := s.store.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NotFound("invitation not found")
		}
		return nil, domain.Internal("failed to look up invitation", err)
	}
	if inv.Expired(s.now()) {
		return nil, domain.Gone("invitation has expired")
	}
	return inv, nil
}

// Handle redeems code on behalf of callerID. Exactly one concurrent caller
// observes success for a given code: the store's
// conditional Update is the serialization point.
func (s *Service) Handle(ctx context.Context, code, callerID string) (*domain.Invitation, error) {
	if callerID == "" {
		return nil, domain.Unauthorized("caller identity required")
	}

	inv, err := s.store.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NotFound("invitation not found")
		}
		return nil, domain.Internal("failed to look up invitation", err)
	}
	if inv.Expired(s.now()) {
		return nil, domain.Gone("invitation has expired")
	}
	if inv.Opened {
		return nil, domain.Forbidden("invitation already redeemed")
	}

	redeemed := inv.Clone()
	redeemed.Opened = true
	redeemed.LinkedUserID = &callerID

	if err := s.store.Update(ctx, redeemed); err != nil {
		if errors.Is(err, store.ErrAlreadyOpened) {
			return nil, domain.Forbidden("invitation already redeemed")
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NotFound("invitation not found")
		}
		return nil, domain.Internal("failed to redeem invitation", err)
	}

	if err := s.publisher.Publish(ctx, s.topic, eventbus.KindInvitationViewed, eventbus.InvitationViewedPayload{
		InvitationID:   redeemed.ID,
		BoxID:          redeemed.BoxID,
		UserID:         callerID,
		InviteCode:     redeemed.InviteCode,
		IsLeadGuardian: redeemed.IsLeadGuardian,
		Timestamp:      s.now(),
	}, map[string]string{eventbus.EventTypeHeader: eventbus.KindInvitationViewed}); err != nil {
		s.logger.Warn().Err(err).Str("invitation_id", redeemed.ID).Msg("failed to publish invitation_viewed")
	}

	return redeemed, nil
}

// Refresh issues a new code and resets the 48h expiry window. Only the
// creator may refresh, and a redeemed invitation can no longer be refreshed.
func (s *Service) Refresh(ctx context.Context, id, callerID string) (*domain.Invitation, error) {
	inv, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NotFound("invitation not found")
		}
		return nil, domain.Internal("failed to look up invitation", err)
	}
	if inv.CreatorID != callerID {
		return nil, domain.Forbidden("only the creator may refresh this invitation")
	}
	if inv.Opened {
		return nil, domain.BadRequest("invitation already redeemed")
	}

	code, err := generateCode()
	if err != nil {
		return nil, domain.Internal("failed to generate invite code", err)
	}

	now := s.now()
	refreshed := inv.Clone()
	refreshed.InviteCode = code
	refreshed.ExpiresAt = now.Add(domain.InvitationTTL)

	if err := s.store.Update(ctx, refreshed); err != nil {
		if errors.Is(err, store.ErrAlreadyOpened) {
			return nil, domain.BadRequest("invitation already redeemed")
		}
		return nil, domain.Internal("failed to refresh invitation", err)
	}
	return refreshed, nil
}

// ListMine returns every invitation callerID created.
func (s *Service) ListMine(ctx context.Context, callerID string) ([]*domain.Invitation, error) {
	invs, err := s.store.ListByCreator(ctx, callerID)
	if err != nil {
		return nil, domain.Internal("failed to list invitations", err)
	}
	return invs, nil
}
