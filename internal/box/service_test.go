package box

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lockboxhq/backend/internal/domain"
	"github.com/lockboxhq/backend/internal/eventbus"
	"github.com/lockboxhq/backend/internal/store/memory"
)

type recordingPublisher struct {
	kinds   []string
	lastIDs []string
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, kind string, payload any, _ map[string]string) error {
	p.kinds = append(p.kinds, kind)
	if bl, ok := payload.(eventbus.BoxLockedPayload); ok {
		p.lastIDs = bl.GuardianIDs
	}
	return nil
}

func newTestService() (*Service, *recordingPublisher) {
	pub := &recordingPublisher{}
	svc := New(memory.NewBoxStore(), pub, "boxes", nil, zerolog.Nop())
	return svc, pub
}

func mustCreateBox(t *testing.T, svc *Service, owner, name string) *domain.Box {
	t.Helper()
	b, err := svc.CreateBox(context.Background(), owner, "Owner Name", name, "")
	require.NoError(t, err)
	return b
}

// TestLockScenario covers S1: a box with 3 guardians locks with threshold 2
// and each guardian's shard.
func TestLockScenario(t *testing.T) {
	svc, pub := newTestService()
	ctx := context.Background()
	b := mustCreateBox(t, svc, "u1", "Vault")

	for _, gid := range []string{"g1", "g2", "g3"} {
		_, err := svc.UpsertGuardian(ctx, b.ID, "u1", domain.Guardian{ID: gid, Name: gid})
		require.NoError(t, err)
	}

	locked, err := svc.Lock(ctx, b.ID, "u1", LockInput{
		ShardThreshold: 2,
		Shards: []ShardInput{
			{GuardianID: "g1", Shard: []byte("a"), ShardHash: "ha"},
			{GuardianID: "g2", Shard: []byte("b"), ShardHash: "hb"},
			{GuardianID: "g3", Shard: []byte("c"), ShardHash: "hc"},
		},
	})
	require.NoError(t, err)
	require.True(t, locked.IsLocked)
	require.Equal(t, 3, *locked.TotalShards)
	require.Equal(t, 0, *locked.ShardsFetched)
	require.Contains(t, pub.kinds, "box_locked")
}

// TestLockRejectsMismatchedShardCount covers precondition 3.
func TestLockRejectsMismatchedShardCount(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := mustCreateBox(t, svc, "u1", "Vault")
	_, err := svc.UpsertGuardian(ctx, b.ID, "u1", domain.Guardian{ID: "g1"})
	require.NoError(t, err)

	_, err = svc.Lock(ctx, b.ID, "u1", LockInput{ShardThreshold: 1, Shards: nil})
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

// TestLockRejectsBadThreshold covers precondition 4.
func TestLockRejectsBadThreshold(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := mustCreateBox(t, svc, "u1", "Vault")
	_, err := svc.UpsertGuardian(ctx, b.ID, "u1", domain.Guardian{ID: "g1"})
	require.NoError(t, err)

	_, err = svc.Lock(ctx, b.ID, "u1", LockInput{
		ShardThreshold: 0,
		Shards:         []ShardInput{{GuardianID: "g1", Shard: []byte("a")}},
	})
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

// TestLockRejectsMissingGuardianShard covers precondition 5.
func TestLockRejectsMissingGuardianShard(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := mustCreateBox(t, svc, "u1", "Vault")
	_, err := svc.UpsertGuardian(ctx, b.ID, "u1", domain.Guardian{ID: "g1"})
	require.NoError(t, err)

	_, err = svc.Lock(ctx, b.ID, "u1", LockInput{
		ShardThreshold: 1,
		Shards:         []ShardInput{{GuardianID: "someone-else", Shard: []byte("a")}},
	})
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

func TestLockTwiceRejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := mustCreateBox(t, svc, "u1", "Vault")
	_, err := svc.UpsertGuardian(ctx, b.ID, "u1", domain.Guardian{ID: "g1"})
	require.NoError(t, err)

	in := LockInput{ShardThreshold: 1, Shards: []ShardInput{{GuardianID: "g1", Shard: []byte("a")}}}
	_, err = svc.Lock(ctx, b.ID, "u1", in)
	require.NoError(t, err)

	_, err = svc.Lock(ctx, b.ID, "u1", in)
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

// lockedBox is a test fixture for S2/S3: a box owned by u1, locked with
// threshold 1 and one guardian per id in guardianIDs, each holding shard
// "<id>-shard".
func lockedBox(t *testing.T, svc *Service, guardianIDs ...string) *domain.Box {
	t.Helper()
	ctx := context.Background()
	b := mustCreateBox(t, svc, "u1", "Vault")
	shards := make([]ShardInput, 0, len(guardianIDs))
	for _, gid := range guardianIDs {
		_, err := svc.UpsertGuardian(ctx, b.ID, "u1", domain.Guardian{ID: gid, Name: gid})
		require.NoError(t, err)
		shards = append(shards, ShardInput{GuardianID: gid, Shard: []byte(gid + "-shard"), ShardHash: "h-" + gid})
	}
	locked, err := svc.Lock(ctx, b.ID, "u1", LockInput{ShardThreshold: 1, Shards: shards})
	require.NoError(t, err)
	return locked
}

// TestFetchAcknowledge covers S2: fetch, acknowledge, re-fetch rejected
// with BadRequest, idempotent re-acknowledge.
func TestFetchAcknowledge(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := lockedBox(t, svc, "g1", "g2", "g3")

	view, err := svc.FetchShard(ctx, b.ID, "g1")
	require.NoError(t, err)
	require.Equal(t, []byte("g1-shard"), view.EncryptedShard)
	require.Equal(t, 1, view.ShardThreshold)
	require.Equal(t, 3, view.TotalShards)

	ack, err := svc.AcknowledgeShard(ctx, b.ID, "g1")
	require.NoError(t, err)
	require.Equal(t, 1, ack.ShardsFetched)

	_, err = svc.FetchShard(ctx, b.ID, "g1")
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	ackAgain, err := svc.AcknowledgeShard(ctx, b.ID, "g1")
	require.NoError(t, err)
	require.Equal(t, ack.ShardFetchedAt, ackAgain.ShardFetchedAt)
	require.Equal(t, 1, ackAgain.ShardsFetched)
}

// TestAcknowledgeAllSetsShardsDeletedAt covers S3.
func TestAcknowledgeAllSetsShardsDeletedAt(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := lockedBox(t, svc, "g1", "g2", "g3")

	for _, gid := range []string{"g1", "g2", "g3"} {
		_, err := svc.AcknowledgeShard(ctx, b.ID, gid)
		require.NoError(t, err)
	}

	final, err := svc.GetOwned(ctx, b.ID, "u1")
	require.NoError(t, err)
	require.Equal(t, 3, *final.ShardsFetched)
	require.NotNil(t, final.ShardsDeletedAt)
}

func TestAcceptShardIsIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := lockedBox(t, svc, "g1")

	first, err := svc.AcceptShard(ctx, b.ID, "g1")
	require.NoError(t, err)

	second, err := svc.AcceptShard(ctx, b.ID, "g1")
	require.NoError(t, err)
	require.Equal(t, first.ShardAcceptedAt, second.ShardAcceptedAt)
}

// TestUpdateLockedBoxRejected covers boundary B3: box update (including
// is_locked=false), guardian upsert and document upsert each return 400 on a
// locked box.
func TestUpdateLockedBoxRejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := lockedBox(t, svc, "g1")

	newName := "renamed"
	_, err := svc.UpdateBox(ctx, b.ID, "u1", UpdateBoxInput{Name: &newName})
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	falseVal := false
	_, err = svc.UpdateBox(ctx, b.ID, "u1", UpdateBoxInput{IsLocked: &falseVal})
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	_, err = svc.UpsertGuardian(ctx, b.ID, "u1", domain.Guardian{ID: "g2"})
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	_, err = svc.UpsertDocument(ctx, b.ID, "u1", domain.Document{ID: "d1"})
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

func TestUpdateBoxIsLockedTrueMustUseLockEndpoint(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := mustCreateBox(t, svc, "u1", "Vault")

	trueVal := true
	_, err := svc.UpdateBox(ctx, b.ID, "u1", UpdateBoxInput{IsLocked: &trueVal})
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

func TestUpdateBoxUnlockInstructionsNullClear(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := mustCreateBox(t, svc, "u1", "Vault")

	instructions := "call my lawyer"
	updated, err := svc.UpdateBox(ctx, b.ID, "u1", UpdateBoxInput{UnlockInstructions: NullableString{Present: true, Value: &instructions}})
	require.NoError(t, err)
	require.Equal(t, instructions, *updated.UnlockInstructions)

	cleared, err := svc.UpdateBox(ctx, b.ID, "u1", UpdateBoxInput{UnlockInstructions: NullableString{Present: true, Value: nil}})
	require.NoError(t, err)
	require.Nil(t, cleared.UnlockInstructions)
}

func TestDeleteGuardianByInvitationIDFallback(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := mustCreateBox(t, svc, "u1", "Vault")
	_, err := svc.UpsertGuardian(ctx, b.ID, "u1", domain.Guardian{InvitationID: "inv-1", Name: "Pre-view guardian"})
	require.NoError(t, err)

	_, removed, err := svc.DeleteGuardian(ctx, b.ID, "u1", "", "inv-1")
	require.NoError(t, err)
	require.Equal(t, "inv-1", removed.InvitationID)
}

func TestGuardianProjectionHidesOtherShards(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := lockedBox(t, svc, "g1", "g2")

	view, err := svc.GetGuardianBox(ctx, b.ID, "g1")
	require.NoError(t, err)
	for _, g := range view.Guardians {
		if g.ID == "g1" {
			require.NotNil(t, g.EncryptedShard)
		} else {
			require.Nil(t, g.EncryptedShard)
		}
	}
}

func TestOwnershipEnforced(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := mustCreateBox(t, svc, "u1", "Vault")

	_, err := svc.GetOwned(ctx, b.ID, "not-the-owner")
	require.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = svc.GetOwned(ctx, b.ID, "")
	require.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
}

func TestRequestUnlockRejectsSecondConcurrentRequester(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := lockedBox(t, svc, "g1", "g2")

	_, err := svc.RequestUnlock(ctx, b.ID, "g1", "lost my phone")
	require.NoError(t, err)

	_, err = svc.RequestUnlock(ctx, b.ID, "g2", "me too")
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	// The original requester may amend their own request.
	_, err = svc.RequestUnlock(ctx, b.ID, "g1", "actually found it, nevermind")
	require.NoError(t, err)
}

func TestRespondToUnlockRequestIsIdempotentPerGuardian(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	b := lockedBox(t, svc, "g1", "g2")
	_, err := svc.RequestUnlock(ctx, b.ID, "g1", "lost my phone")
	require.NoError(t, err)

	updated, err := svc.RespondToUnlockRequest(ctx, b.ID, "g2", true)
	require.NoError(t, err)
	require.Len(t, updated.UnlockRequest.Responses, 1)

	updated, err = svc.RespondToUnlockRequest(ctx, b.ID, "g2", false)
	require.NoError(t, err)
	require.Len(t, updated.UnlockRequest.Responses, 1)
	require.False(t, updated.UnlockRequest.Responses[0].Approve)
}

func TestRespondToInvitationRequiresLockedBoxAndGuardian(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	unlocked := mustCreateBox(t, svc, "u1", "Vault")
	_, err := svc.UpsertGuardian(ctx, unlocked.ID, "u1", domain.Guardian{ID: "g1"})
	require.NoError(t, err)
	_, err = svc.RespondToInvitation(ctx, unlocked.ID, "g1", "", true)
	require.Equal(t, domain.KindBadRequest, domain.KindOf(err))

	locked := lockedBox(t, svc, "g1")
	updated, err := svc.RespondToInvitation(ctx, locked.ID, "g1", "", true)
	require.NoError(t, err)
	idx, ok := updated.FindGuardian("g1", "")
	require.True(t, ok)
	require.Equal(t, domain.GuardianAccepted, updated.Guardians[idx].Status)

	_, err = svc.RespondToInvitation(ctx, locked.ID, "not-a-guardian", "", true)
	require.Equal(t, domain.KindForbidden, domain.KindOf(err))
}
