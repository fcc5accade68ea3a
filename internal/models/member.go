package models

import "time"

// Member is a participant in a payment group.
type Member struct {
	// ID is the unique identifier for the membership (UUID format).
	ID string

	GroupID string

	// UserRef is the identity provider's user ID behind this membership.
	// It is always stored, but redacted from snapshots of anonymous members
	// for every viewer other than the member themself.
	UserRef string

	// IsAnonymous hides the member's identity from other members.
	IsAnonymous bool

	IsAdmin bool

	JoinedAt time.Time
}

// Clone returns a copy of the member.
func (m *Member) Clone() *Member {
	c := *m
	return &c
}
