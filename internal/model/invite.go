package model

import "time"

type InviteStatus string

const (
	InvitePending  InviteStatus = "PENDING"
	InviteAccepted InviteStatus = "ACCEPTED"
	InviteDeclined InviteStatus = "DECLINED"
	InviteRevoked  InviteStatus = "REVOKED"
	InviteExpired  InviteStatus = "EXPIRED"
)

// Terminal reports whether the invite can no longer be accepted or
// revoked. PENDING is the only non-terminal state.
func (s InviteStatus) Terminal() bool {
	return s != InvitePending
}

type Invite struct {
	ID         string       `json:"id"`
	Email      string       `json:"email"`
	Role       Role         `json:"role"`
	Status     InviteStatus `json:"status"`
	ExpiresAt  time.Time    `json:"expiresAt,omitzero"`
	AcceptedAt time.Time    `json:"acceptedAt,omitzero"`
	CreatedAt  time.Time    `json:"createdAt,omitzero"`
}
