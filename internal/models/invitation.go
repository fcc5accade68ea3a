package models

import "time"

// InvitationStatus is the state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation is an outstanding offer of membership sent to an email address.
type Invitation struct {
	// ID is the unique identifier for the invitation (UUID format).
	ID string

	GroupID string

	// InviteeEmail is normalized to lower case.
	InviteeEmail string

	// InvitedBy is the member ID of the inviter.
	InvitedBy string

	Status InvitationStatus

	// IsExternal is true when the invitee had no account at invite time.
	IsExternal bool

	CreatedAt   time.Time
	RespondedAt *time.Time
}

// IsPending reports whether the invitation can still be responded to.
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationPending
}

// Clone returns a copy of the invitation.
func (i *Invitation) Clone() *Invitation {
	c := *i
	c.RespondedAt = cloneTime(i.RespondedAt)
	return &c
}
