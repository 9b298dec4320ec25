package eventbus

import "time"

// Event kinds mirrored into both the payload's event_type field and the
// eventType message attribute.
const (
	KindBoxLocked         = "box_locked"
	KindInvitationCreated = "invitation_created"
	KindInvitationViewed  = "invitation_viewed"
)

// BoxLockedPayload is published once, synchronously, as the last step of
// the lock transition.
type BoxLockedPayload struct {
	BoxID       string    `json:"box_id"`
	BoxName     string    `json:"box_name"`
	OwnerName   string    `json:"owner_name,omitempty"`
	GuardianIDs []string  `json:"guardian_ids"`
	Timestamp   time.Time `json:"timestamp"`
}

// InvitationCreatedPayload is published when a fresh invitation is minted.
type InvitationCreatedPayload struct {
	InvitationID string    `json:"invitation_id"`
	BoxID        string    `json:"box_id"`
	InviteCode   string    `json:"invite_code"`
	Timestamp    time.Time `json:"timestamp"`
}

// InvitationViewedPayload is published on successful redemption.
type InvitationViewedPayload struct {
	InvitationID   string    `json:"invitation_id"`
	BoxID          string    `json:"box_id"`
	UserID         string    `json:"user_id"`
	InviteCode     string    `json:"invite_code"`
	IsLeadGuardian bool      `json:"is_lead_guardian"`
	Timestamp      time.Time `json:"timestamp"`
}
