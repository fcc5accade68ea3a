package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GroupStatus is a payment group's lifecycle state.
type GroupStatus string

const (
	StatusActive     GroupStatus = "active"
	StatusMatured    GroupStatus = "matured"
	StatusTerminated GroupStatus = "terminated"
)

// ContributionType describes how members are expected to contribute.
type ContributionType string

const (
	ContributionFixed      ContributionType = "fixed"
	ContributionFlexible   ContributionType = "flexible"
	ContributionPercentage ContributionType = "percentage"
)

// Frequency is the expected contribution cadence.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyOnce    Frequency = "once"
)

// Visibility controls who can discover and read a group.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// MinCapacity is the smallest allowed MaxCapacity.
const MinCapacity = 2

// Group represents a cooperative savings pool.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Holiday Fund").
	Name string

	Description string

	// TargetAmount is the savings goal. Zero means no target.
	TargetAmount decimal.Decimal

	ContributionType ContributionType
	Frequency        Frequency

	// MaxCapacity is the maximum number of members, at least MinCapacity.
	MaxCapacity int

	Visibility       Visibility
	RequiresApproval bool
	AllowAnonymous   bool

	// Deadline is when the group matures. Nil means it never matures on its own.
	Deadline *time.Time

	// Status is the lifecycle state. Terminated is final.
	Status GroupStatus

	CreatedAt time.Time

	// CreatedBy is the member ID of the owning member.
	CreatedBy string

	MaturedAt    *time.Time
	TerminatedAt *time.Time

	// Version is incremented on every save and used for optimistic concurrency.
	Version int64
}

// Valid reports whether s is a known status.
func (s GroupStatus) Valid() bool {
	switch s {
	case StatusActive, StatusMatured, StatusTerminated:
		return true
	}
	return false
}

// Valid reports whether t is a known contribution type.
func (t ContributionType) Valid() bool {
	switch t {
	case ContributionFixed, ContributionFlexible, ContributionPercentage:
		return true
	}
	return false
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyOnce:
		return true
	}
	return false
}

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// IsTerminated reports whether the group reached its terminal state.
func (g *Group) IsTerminated() bool {
	return g.Status == StatusTerminated
}

// Clone returns a deep copy of the group.
func (g *Group) Clone() *Group {
	c := *g
	c.Deadline = cloneTime(g.Deadline)
	c.MaturedAt = cloneTime(g.MaturedAt)
	c.TerminatedAt = cloneTime(g.TerminatedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
