package models

import "github.com/shopspring/decimal"

// MemberView is a member as shown in a snapshot.
type MemberView struct {
	Member
	TotalContributed decimal.Decimal
}

// VoteProgress reports termination consensus progress.
type VoteProgress struct {
	Agreed   int
	Total    int
	Required int
}

// Snapshot is an immutable read model of a group returned by every operation.
type Snapshot struct {
	Group         Group
	CurrentAmount decimal.Decimal
	Members       []MemberView
	Invitations   []Invitation
	Contributions []Contribution
	Votes         VoteProgress

	// Transition describes the status change made by the operation, if any.
	Transition string
}
