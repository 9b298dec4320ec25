package box

import (
	"context"

	"github.com/lockboxhq/backend/internal/domain"
	"github.com/lockboxhq/backend/internal/eventbus"
)

// Lock is the one-way lock transition,
// the hardest single operation in the box core: five ordered precondition
// checks, one atomic multi-field write, then a synchronous (but
// non-fatal-on-failure) event bus publish.
func (s *Service) Lock(ctx context.Context, id, callerID string, in LockInput) (*domain.Box, error) {
	b, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		// getOwned already distinguishes NotFound/Forbidden; a missing
		// caller identity surfaces as Unauthorized per precondition 1.
		return nil, err
	}

	if b.IsLocked {
		return nil, domain.BadRequest("box is already locked")
	}
	if len(in.Shards) != len(b.Guardians) {
		return nil, domain.BadRequest("expected %d shards, got %d", len(b.Guardians), len(in.Shards))
	}
	if in.ShardThreshold < 1 || in.ShardThreshold > len(in.Shards) {
		return nil, domain.BadRequest("shardThreshold must be between 1 and %d", len(in.Shards))
	}

	byGuardian := make(map[string]ShardInput, len(in.Shards))
	for _, sh := range in.Shards {
		byGuardian[sh.GuardianID] = sh
	}
	for _, g := range b.Guardians {
		if _, ok := byGuardian[g.ID]; !ok {
			return nil, domain.BadRequest("missing shard for guardian %q", g.ID)
		}
	}

	now := s.now()
	updated := b.Clone()
	updated.IsLocked = true
	updated.LockedAt = &now
	updated.UpdatedAt = now
	updated.ShardThreshold = &in.ShardThreshold
	total := len(updated.Guardians)
	updated.TotalShards = &total
	fetched := 0
	updated.ShardsFetched = &fetched
	updated.ShardsDeletedAt = nil

	guardianIDs := make([]string, 0, len(updated.Guardians))
	for i := range updated.Guardians {
		sh := byGuardian[updated.Guardians[i].ID]
		updated.Guardians[i].EncryptedShard = append([]byte(nil), sh.Shard...)
		updated.Guardians[i].ShardHash = sh.ShardHash
		updated.Guardians[i].ShardFetchedAt = nil
		if updated.Guardians[i].ID != "" {
			guardianIDs = append(guardianIDs, updated.Guardians[i].ID)
		}
	}

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, mapUpdateErr(err)
	}

	if err := s.publisher.Publish(ctx, s.topic, eventbus.KindBoxLocked, eventbus.BoxLockedPayload{
		BoxID:       updated.ID,
		BoxName:     updated.Name,
		OwnerName:   updated.OwnerName,
		GuardianIDs: guardianIDs,
		Timestamp:   now,
	}, map[string]string{eventbus.EventTypeHeader: eventbus.KindBoxLocked}); err != nil {
		// Persist-then-publish: the lock already committed, so
		// a publish failure is logged and the response still carries the
		// locked box. The reminder sweep is the safety net for a lost event.
		s.logger.Warn().Err(err).Str("box_id", updated.ID).Msg("failed to publish box_locked")
	}

	return updated, nil
}
