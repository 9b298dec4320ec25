package httpapi

import (
	"encoding/json"

	"github.com/lockboxhq/backend/internal/box"
	"github.com/lockboxhq/backend/internal/domain"
)

type createBoxRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// updateBoxRequest mirrors PATCH /boxes/owned/:id. UnlockInstructions is a
// raw message so absence, explicit null, and a string value are all
// distinguishable — Go's decoder leaves it nil when the JSON document omits
// the key and stores the literal null when the key is null.
type updateBoxRequest struct {
	Name               *string         `json:"name"`
	Description        *string         `json:"description"`
	UnlockInstructions json.RawMessage `json:"unlockInstructions"`
	IsLocked           *bool           `json:"isLocked"`
}

func (r updateBoxRequest) toInput() (box.UpdateBoxInput, error) {
	in := box.UpdateBoxInput{Name: r.Name, Description: r.Description, IsLocked: r.IsLocked}
	if r.UnlockInstructions == nil {
		return in, nil
	}
	if string(r.UnlockInstructions) == "null" {
		in.UnlockInstructions = box.NullableString{Present: true, Value: nil}
		return in, nil
	}
	var s string
	if err := json.Unmarshal(r.UnlockInstructions, &s); err != nil {
		return box.UpdateBoxInput{}, domain.BadRequest("unlockInstructions must be a string or null")
	}
	in.UnlockInstructions = box.NullableString{Present: true, Value: &s}
	return in, nil
}

type guardianRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LeadGuardian bool   `json:"leadGuardian"`
	InvitationID string `json:"invitationId"`
}

func (r guardianRequest) toDomain() domain.Guardian {
	return domain.Guardian{
		ID:           r.ID,
		Name:         r.Name,
		LeadGuardian: r.LeadGuardian,
		InvitationID: r.InvitationID,
	}
}

type documentRequest struct {
	ID       string `json:"id"`
	Metadata []byte `json:"metadata"`
}

type shardInputRequest struct {
	GuardianID string `json:"guardianId"`
	Shard      []byte `json:"shard"`
	ShardHash  string `json:"shardHash"`
}

type lockRequest struct {
	Shards         []shardInputRequest `json:"shards"`
	ShardThreshold int                 `json:"shardThreshold"`
}

func (r lockRequest) toInput() box.LockInput {
	shards := make([]box.ShardInput, 0, len(r.Shards))
	for _, s := range r.Shards {
		shards = append(shards, box.ShardInput{GuardianID: s.GuardianID, Shard: s.Shard, ShardHash: s.ShardHash})
	}
	return box.LockInput{Shards: shards, ShardThreshold: r.ShardThreshold}
}

type respondToInvitationRequest struct {
	InvitationID string `json:"invitationId"`
	Accept       bool   `json:"accept"`
}

type requestUnlockRequest struct {
	Reason string `json:"reason"`
}

type respondToUnlockRequestRequest struct {
	Approve bool `json:"approve"`
}

type createInvitationRequest struct {
	InvitedName    string `json:"invitedName"`
	BoxID          string `json:"boxId"`
	IsLeadGuardian bool   `json:"isLeadGuardian"`
}

type handleInvitationRequest struct {
	Code string `json:"code"`
}

type registerPushTokenRequest struct {
	Token    string `json:"pushToken"`
	Platform string `json:"platform"`
}
