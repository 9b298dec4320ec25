package domain

import "time"

// GuardianStatus is the lifecycle state of a single guardian slot on a Box.
type GuardianStatus string

const (
	GuardianInvited  GuardianStatus = "invited"
	GuardianAccepted GuardianStatus = "accepted"
	GuardianDeclined GuardianStatus = "declined"
	GuardianRejected GuardianStatus = "rejected"
)

// Document is an opaque, owner-supplied entry in a Box. The server never
// interprets Metadata; it only stores and returns it verbatim.
type Document struct {
	ID       string `json:"id"`
	Metadata []byte `json:"metadata"`
}

// Guardian is one nominee for a shard of the box's unlock key.
//
// ID is empty until the guardian's invitation is viewed; until then
// InvitationID is the only stable handle on the slot, which is why guardian
// delete and the invitation-response operation accept either key.
type Guardian struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Status             GuardianStatus `json:"status"`
	LeadGuardian       bool           `json:"leadGuardian"`
	AddedAt            time.Time      `json:"addedAt"`
	InvitationID       string         `json:"invitationId,omitempty"`
	EncryptedShard     []byte         `json:"encryptedShard,omitempty"`
	ShardHash          string         `json:"shardHash,omitempty"`
	ShardFetchedAt     *time.Time     `json:"shardFetchedAt,omitempty"`
	ShardAcceptedAt    *time.Time     `json:"shardAcceptedAt,omitempty"`
	LockDataReceivedAt *time.Time     `json:"lockDataReceivedAt,omitempty"`
}

// UnlockResponse is one guardian's answer to a pending UnlockRequest.
type UnlockResponse struct {
	GuardianID  string    `json:"guardianId"`
	Approve     bool      `json:"approve"`
	RespondedAt time.Time `json:"respondedAt"`
}

// UnlockRequest is the at-most-one-in-flight request a guardian can raise
// asking the owner/other guardians to unlock the box early. The server does
// not evaluate thresholds on Responses; it only accounts for them (spec
// Non-goals).
type UnlockRequest struct {
	RequestedBy string           `json:"requestedBy"`
	Reason      string           `json:"reason"`
	RequestedAt time.Time        `json:"requestedAt"`
	Responses   []UnlockResponse `json:"responses"`
}

// Box is the unit of escrow: an owner's documents plus the guardians who
// will each receive one shard once the box is locked.
type Box struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	OwnerID            string         `json:"ownerId"`
	OwnerName          string         `json:"ownerName,omitempty"`
	IsLocked           bool           `json:"isLocked"`
	LockedAt           *time.Time     `json:"lockedAt,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	Version            int            `json:"version"`
	UnlockInstructions *string        `json:"unlockInstructions,omitempty"`
	Documents          []Document     `json:"documents"`
	Guardians          []Guardian     `json:"guardians"`
	ShardThreshold     *int           `json:"shardThreshold,omitempty"`
	TotalShards        *int           `json:"totalShards,omitempty"`
	ShardsFetched      *int           `json:"shardsFetched,omitempty"`
	ShardsDeletedAt    *time.Time     `json:"shardsDeletedAt,omitempty"`
	UnlockRequest      *UnlockRequest `json:"unlockRequest,omitempty"`
}

// Clone returns a deep-enough copy of b so that callers can mutate the
// result without racing a concurrent reader of the stored record. Slices and
// the pointer fields are copied; nested byte slices are copied too, since
// EncryptedShard is exactly the opaque value whose custody this system
// guards.
func (b *Box) Clone() *Box {
	if b == nil {
		return nil
	}
	out := *b
	out.Documents = append([]Document(nil), b.Documents...)
	for i := range out.Documents {
		out.Documents[i].Metadata = append([]byte(nil), b.Documents[i].Metadata...)
	}
	out.Guardians = append([]Guardian(nil), b.Guardians...)
	for i := range out.Guardians {
		out.Guardians[i].EncryptedShard = append([]byte(nil), b.Guardians[i].EncryptedShard...)
		if b.Guardians[i].ShardFetchedAt != nil {
			t := *b.Guardians[i].ShardFetchedAt
			out.Guardians[i].ShardFetchedAt = &t
		}
		if b.Guardians[i].ShardAcceptedAt != nil {
			t := *b.Guardians[i].ShardAcceptedAt
			out.Guardians[i].ShardAcceptedAt = &t
		}
		if b.Guardians[i].LockDataReceivedAt != nil {
			t := *b.Guardians[i].LockDataReceivedAt
			out.Guardians[i].LockDataReceivedAt = &t
		}
	}
	if b.LockedAt != nil {
		t := *b.LockedAt
		out.LockedAt = &t
	}
	if b.UnlockInstructions != nil {
		s := *b.UnlockInstructions
		out.UnlockInstructions = &s
	}
	if b.ShardThreshold != nil {
		v := *b.ShardThreshold
		out.ShardThreshold = &v
	}
	if b.TotalShards != nil {
		v := *b.TotalShards
		out.TotalShards = &v
	}
	if b.ShardsFetched != nil {
		v := *b.ShardsFetched
		out.ShardsFetched = &v
	}
	if b.ShardsDeletedAt != nil {
		t := *b.ShardsDeletedAt
		out.ShardsDeletedAt = &t
	}
	if b.UnlockRequest != nil {
		ur := *b.UnlockRequest
		ur.Responses = append([]UnlockResponse(nil), b.UnlockRequest.Responses...)
		out.UnlockRequest = &ur
	}
	return &out
}

// FindGuardian locates a guardian by id, falling back to invitation id when
// id is empty or matches no guardian, because a guardian has no id until
// their invitation is viewed.
func (b *Box) FindGuardian(guardianID, invitationID string) (int, bool) {
	if guardianID != "" {
		for i := range b.Guardians {
			if b.Guardians[i].ID == guardianID {
				return i, true
			}
		}
	}
	if invitationID != "" {
		for i := range b.Guardians {
			if b.Guardians[i].InvitationID == invitationID {
				return i, true
			}
		}
	}
	return -1, false
}

// GuardianProjection restricts a Box's guardian list to the fields a given
// guardian is allowed to see: their own shard bytes, but never another
// guardian's opaque shard.
func (b *Box) GuardianProjection(callerID string) *Box {
	out := b.Clone()
	for i := range out.Guardians {
		if out.Guardians[i].ID != callerID {
			out.Guardians[i].EncryptedShard = nil
			out.Guardians[i].ShardHash = ""
		}
	}
	return out
}
