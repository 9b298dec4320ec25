package box

import (
	"context"
	"errors"

	"github.com/lockboxhq/backend/internal/domain"
	"github.com/lockboxhq/backend/internal/store"
)

// guardianOf fetches id and confirms callerID names one of its guardians,
// returning the guardian's index in the restricted projection's underlying
// box. Guardian-facing operations all start here.
func (s *Service) guardianOf(ctx context.Context, id, callerID string) (*domain.Box, int, error) {
	if callerID == "" {
		return nil, -1, domain.Unauthorized("caller identity required")
	}
	b, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, -1, domain.NotFound("box not found")
		}
		return nil, -1, domain.Internal("failed to look up box", err)
	}
	idx, ok := b.FindGuardian(callerID, "")
	if !ok {
		return nil, -1, domain.Forbidden("caller is not a guardian of this box")
	}
	return b, idx, nil
}

// ListGuardianBoxes returns every box where callerID is a guardian, each
// projected to hide other guardians' shard bytes.
func (s *Service) ListGuardianBoxes(ctx context.Context, callerID string) ([]*domain.Box, error) {
	if callerID == "" {
		return nil, domain.Unauthorized("caller identity required")
	}
	boxes, err := s.store.ListByGuardian(ctx, callerID)
	if err != nil {
		return nil, domain.Internal("failed to list boxes", err)
	}
	out := make([]*domain.Box, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, b.GuardianProjection(callerID))
	}
	return out, nil
}

// GetGuardianBox returns box id projected for callerID, requiring callerID
// to be one of its guardians.
func (s *Service) GetGuardianBox(ctx context.Context, id, callerID string) (*domain.Box, error) {
	b, _, err := s.guardianOf(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	return b.GuardianProjection(callerID), nil
}

// FetchShard returns the caller's encrypted shard. It never mutates state.
func (s *Service) FetchShard(ctx context.Context, id, callerID string) (ShardView, error) {
	b, idx, err := s.guardianOf(ctx, id, callerID)
	if err != nil {
		return ShardView{}, err
	}
	if !b.IsLocked {
		return ShardView{}, domain.BadRequest("box is not locked")
	}
	g := b.Guardians[idx]
	if g.EncryptedShard == nil {
		if g.ShardFetchedAt != nil {
			return ShardView{}, domain.BadRequest("shard already fetched")
		}
		return ShardView{}, domain.NotFound("no shard available")
	}

	threshold, total := 0, 0
	if b.ShardThreshold != nil {
		threshold = *b.ShardThreshold
	}
	if b.TotalShards != nil {
		total = *b.TotalShards
	}
	return ShardView{
		EncryptedShard: g.EncryptedShard,
		ShardHash:      g.ShardHash,
		ShardFetchedAt: g.ShardFetchedAt,
		ShardThreshold: threshold,
		TotalShards:    total,
	}, nil
}

// AcknowledgeShard records that callerID downloaded their shard, clearing
// the server's copy.
func (s *Service) AcknowledgeShard(ctx context.Context, id, callerID string) (AckResult, error) {
	if _, _, err := s.guardianOf(ctx, id, callerID); err != nil {
		return AckResult{}, err
	}

	var result AckResult
	updated, err := s.retryUpdate(ctx, id, func(b *domain.Box) error {
		idx, ok := b.FindGuardian(callerID, "")
		if !ok {
			return domain.Forbidden("caller is not a guardian of this box")
		}
		if !b.IsLocked {
			return domain.BadRequest("box is not locked")
		}
		g := &b.Guardians[idx]

		if g.EncryptedShard == nil && g.ShardFetchedAt != nil {
			// Already acknowledged: idempotent return of current counters.
			result = AckResult{ShardFetchedAt: *g.ShardFetchedAt}
			if b.TotalShards != nil {
				result.TotalShards = *b.TotalShards
			}
			if b.ShardsFetched != nil {
				result.ShardsFetched = *b.ShardsFetched
			}
			return errNoop
		}
		if g.EncryptedShard == nil {
			return domain.BadRequest("no shard available to acknowledge")
		}

		now := s.now()
		g.EncryptedShard = nil
		g.ShardFetchedAt = &now
		b.UpdatedAt = now

		fetched := 0
		for i := range b.Guardians {
			if b.Guardians[i].ShardFetchedAt != nil {
				fetched++
			}
		}
		b.ShardsFetched = &fetched
		total := len(b.Guardians)
		b.TotalShards = &total
		if fetched == total {
			b.ShardsDeletedAt = &now
		}

		result = AckResult{ShardFetchedAt: now, TotalShards: total, ShardsFetched: fetched}
		return nil
	})
	if err == errNoop {
		return result, nil
	}
	if err != nil {
		return AckResult{}, err
	}
	_ = updated
	return result, nil
}

// errNoop signals retryUpdate's mutate callback completed without needing a
// store write (the idempotent-acknowledge path).
var errNoop = errors.New("box: no-op")

// AcceptShard is a record-only confirmation that stops the reminder
// pipeline from nagging callerID about box id. Idempotent.
func (s *Service) AcceptShard(ctx context.Context, id, callerID string) (AcceptResult, error) {
	if _, _, err := s.guardianOf(ctx, id, callerID); err != nil {
		return AcceptResult{}, err
	}

	var result AcceptResult
	_, err := s.retryUpdate(ctx, id, func(b *domain.Box) error {
		idx, ok := b.FindGuardian(callerID, "")
		if !ok {
			return domain.Forbidden("caller is not a guardian of this box")
		}
		g := &b.Guardians[idx]
		if g.ShardAcceptedAt != nil {
			result = AcceptResult{ShardAcceptedAt: *g.ShardAcceptedAt, BoxID: b.ID, BoxName: b.Name}
			return errNoop
		}
		now := s.now()
		g.ShardAcceptedAt = &now
		b.UpdatedAt = now
		result = AcceptResult{ShardAcceptedAt: now, BoxID: b.ID, BoxName: b.Name}
		return nil
	})
	if err != nil && err != errNoop {
		return AcceptResult{}, err
	}
	return result, nil
}

// RespondToInvitation sets callerID's guardian status to accepted or
// declined. Requires the box to
// be locked and the caller to hold the matching guardian slot, identified
// by id or — for a guardian not yet linked to a user — by invitationID.
func (s *Service) RespondToInvitation(ctx context.Context, id, callerID, invitationID string, accept bool) (*domain.Box, error) {
	if callerID == "" && invitationID == "" {
		return nil, domain.Unauthorized("caller identity required")
	}
	b, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NotFound("box not found")
		}
		return nil, domain.Internal("failed to look up box", err)
	}
	if !b.IsLocked {
		return nil, domain.BadRequest("box is not locked")
	}
	idx, ok := b.FindGuardian(callerID, invitationID)
	if !ok {
		return nil, domain.Forbidden("caller is not a guardian of this box")
	}

	updated := b.Clone()
	if accept {
		updated.Guardians[idx].Status = domain.GuardianAccepted
	} else {
		updated.Guardians[idx].Status = domain.GuardianDeclined
	}
	updated.UpdatedAt = s.now()

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, mapUpdateErr(err)
	}
	return updated, nil
}

// RequestUnlock posts a free-text reason to the box's unlock_request
// subrecord. A box holds at most one
// pending request at a time; a second request from a different guardian
// while one is pending is rejected.
func (s *Service) RequestUnlock(ctx context.Context, id, callerID, reason string) (*domain.Box, error) {
	b, idx, err := s.guardianOf(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if !b.IsLocked {
		return nil, domain.BadRequest("box is not locked")
	}
	if reason == "" {
		return nil, domain.BadRequest("reason is required")
	}
	if b.UnlockRequest != nil && b.UnlockRequest.RequestedBy != b.Guardians[idx].ID {
		return nil, domain.BadRequest("an unlock request is already pending from another guardian")
	}

	now := s.now()
	updated := b.Clone()
	updated.UnlockRequest = &domain.UnlockRequest{
		RequestedBy: callerID,
		Reason:      reason,
		RequestedAt: now,
	}
	updated.UpdatedAt = now

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, mapUpdateErr(err)
	}
	return updated, nil
}

// RespondToUnlockRequest appends or overwrites callerID's own response on
// the pending unlock request. No threshold evaluation happens here; the
// server only accounts for responses.
func (s *Service) RespondToUnlockRequest(ctx context.Context, id, callerID string, approve bool) (*domain.Box, error) {
	b, _, err := s.guardianOf(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if b.UnlockRequest == nil {
		return nil, domain.BadRequest("no unlock request is pending")
	}

	now := s.now()
	updated := b.Clone()
	responses := updated.UnlockRequest.Responses
	replaced := false
	for i := range responses {
		if responses[i].GuardianID == callerID {
			responses[i] = domain.UnlockResponse{GuardianID: callerID, Approve: approve, RespondedAt: now}
			replaced = true
			break
		}
	}
	if !replaced {
		responses = append(responses, domain.UnlockResponse{GuardianID: callerID, Approve: approve, RespondedAt: now})
	}
	updated.UnlockRequest.Responses = responses
	updated.UpdatedAt = now

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, mapUpdateErr(err)
	}
	return updated, nil
}
