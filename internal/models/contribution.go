package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a contribution is paid.
type PaymentMethod string

const (
	MethodWallet      PaymentMethod = "wallet"
	MethodMobileMoney PaymentMethod = "mobile_money"
	MethodCard        PaymentMethod = "card"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodWallet, MethodMobileMoney, MethodCard:
		return true
	}
	return false
}

// RequiresConfirmation reports whether contributions paid with m settle out of band.
func (m PaymentMethod) RequiresConfirmation() bool {
	return m == MethodMobileMoney || m == MethodCard
}

// Contribution is one ledger entry of money moving into a group.
type Contribution struct {
	// ID is the unique identifier for the contribution (UUID format).
	ID string

	GroupID  string
	MemberID string

	// Amount is always positive.
	Amount decimal.Decimal

	Method PaymentMethod
	Notes  string

	ContributedAt time.Time

	// ExternalReference correlates an out-of-band confirmation with this entry.
	// Empty for wallet contributions.
	ExternalReference string

	Confirmed   bool
	ConfirmedAt *time.Time

	// Reversed marks a confirmed contribution taken back (e.g. chargeback) or an
	// unconfirmed one abandoned after a payment failure.
	Reversed       bool
	ReversedAt     *time.Time
	ReversalReason string
}

// Counts reports whether the contribution counts toward the group balance.
func (c *Contribution) Counts() bool {
	return c.Confirmed && !c.Reversed
}

// Clone returns a copy of the contribution.
func (c *Contribution) Clone() *Contribution {
	cp := *c
	cp.ConfirmedAt = cloneTime(c.ConfirmedAt)
	cp.ReversedAt = cloneTime(c.ReversedAt)
	return &cp
}
