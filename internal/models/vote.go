package models

import "time"

// Vote is a member's termination vote. One per member; the latest overwrites.
type Vote struct {
	GroupID  string
	MemberID string
	Agreed   bool
	CastAt   time.Time
}
