// Package ledger records money moving into a payment group.
//
// The ledger is append-mostly: entries are recorded, confirmed, and reversed, never
// deleted. The group balance is always derived from the entries and never stored.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/piggybank/internal/apperr"
	"github.com/mmynk/piggybank/internal/models"
)

// Entry is a request to record a contribution.
type Entry struct {
	MemberID string
	Amount   decimal.Decimal
	Method   models.PaymentMethod
	Notes    string

	// ExternalReference is the payment provider's reference, if it issued one.
	// For methods requiring confirmation an empty reference is minted here.
	ExternalReference string
}

// CanRecord checks every precondition of Record without mutating state.
func CanRecord(state *models.GroupState, memberID string, amount decimal.Decimal, method models.PaymentMethod) error {
	if !amount.IsPositive() {
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("invalid amount %s: must be greater than zero", amount))
	}
	if !method.Valid() {
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown payment method %q", method))
	}
	if state.Group.IsTerminated() {
		return apperr.New(apperr.CodeGroupTerminated, fmt.Sprintf("group %s is terminated", state.Group.ID))
	}
	if state.Member(memberID) == nil {
		return apperr.New(apperr.CodeNotFound, fmt.Sprintf("member %s not in group %s", memberID, state.Group.ID))
	}
	return nil
}

// Record appends a contribution. Wallet entries are confirmed immediately; other
// methods start unconfirmed and carry an external reference for Confirm.
func Record(state *models.GroupState, e Entry, now time.Time) (*models.Contribution, error) {
	if err := CanRecord(state, e.MemberID, e.Amount, e.Method); err != nil {
		return nil, err
	}

	ref := strings.TrimSpace(e.ExternalReference)
	if ref != "" && findByReference(state, ref) != nil {
		return nil, apperr.New(apperr.CodeValidation, fmt.Sprintf("external reference %q already recorded", ref))
	}
	if ref == "" && e.Method.RequiresConfirmation() {
		ref = NewReference(e.Method)
	}

	c := &models.Contribution{
		ID:                uuid.New().String(),
		GroupID:           state.Group.ID,
		MemberID:          e.MemberID,
		Amount:            e.Amount,
		Method:            e.Method,
		Notes:             strings.TrimSpace(e.Notes),
		ContributedAt:     now,
		ExternalReference: ref,
	}
	if !e.Method.RequiresConfirmation() {
		c.Confirmed = true
		c.ConfirmedAt = &now
	}

	state.Contributions = append(state.Contributions, c)
	return c, nil
}

// Confirm marks the contribution with the given reference as settled.
// Confirming an already-confirmed contribution returns it unchanged. A terminated
// group's balance is frozen, so its pending contributions can no longer settle.
func Confirm(state *models.GroupState, ref string, now time.Time) (*models.Contribution, error) {
	c := findByReference(state, ref)
	if c == nil {
		return nil, apperr.New(apperr.CodeUnknownReference, fmt.Sprintf("unknown reference %q", ref))
	}
	if c.Reversed {
		return nil, apperr.New(apperr.CodeAlreadyReversed, fmt.Sprintf("contribution %s was reversed", c.ID))
	}
	if c.Confirmed {
		return c, nil
	}
	if state.Group.IsTerminated() {
		return nil, apperr.New(apperr.CodeGroupTerminated, fmt.Sprintf("group %s is terminated", state.Group.ID))
	}
	c.Confirmed = true
	c.ConfirmedAt = &now
	return c, nil
}

// Reverse takes back a confirmed contribution, e.g. after a chargeback.
func Reverse(state *models.GroupState, contributionID, reason string, now time.Time) (*models.Contribution, error) {
	c := findByID(state, contributionID)
	if c == nil {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("contribution %s not found", contributionID))
	}
	if c.Reversed {
		return nil, apperr.New(apperr.CodeAlreadyReversed, fmt.Sprintf("contribution %s already reversed", c.ID))
	}
	if !c.Confirmed {
		return nil, apperr.New(apperr.CodeNotConfirmed, fmt.Sprintf("contribution %s is not confirmed", c.ID))
	}
	c.Reversed = true
	c.ReversedAt = &now
	c.ReversalReason = strings.TrimSpace(reason)
	return c, nil
}

// Abandon marks an unconfirmed contribution as failed so it can never be confirmed.
// Abandoning an already abandoned contribution returns it unchanged.
func Abandon(state *models.GroupState, ref, reason string, now time.Time) (*models.Contribution, error) {
	c := findByReference(state, ref)
	if c == nil {
		return nil, apperr.New(apperr.CodeUnknownReference, fmt.Sprintf("unknown reference %q", ref))
	}
	if c.Confirmed {
		return nil, apperr.New(apperr.CodeValidation, fmt.Sprintf("contribution %s already confirmed, reverse it instead", c.ID))
	}
	if c.Reversed {
		return c, nil
	}
	c.Reversed = true
	c.ReversedAt = &now
	c.ReversalReason = strings.TrimSpace(reason)
	return c, nil
}

// Balance sums confirmed, non-reversed contributions.
func Balance(contributions []*models.Contribution) decimal.Decimal {
	total := decimal.Zero
	for _, c := range contributions {
		if c.Counts() {
			total = total.Add(c.Amount)
		}
	}
	return total
}

// MemberTotals sums counted contributions per member ID.
func MemberTotals(contributions []*models.Contribution) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, c := range contributions {
		if !c.Counts() {
			continue
		}
		totals[c.MemberID] = totals[c.MemberID].Add(c.Amount)
	}
	return totals
}

// NewReference mints an opaque external reference for a method.
func NewReference(method models.PaymentMethod) string {
	prefix := "ref"
	switch method {
	case models.MethodMobileMoney:
		prefix = "mm"
	case models.MethodCard:
		prefix = "card"
	}
	return prefix + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

func findByReference(state *models.GroupState, ref string) *models.Contribution {
	if ref == "" {
		return nil
	}
	for _, c := range state.Contributions {
		if c.ExternalReference == ref {
			return c
		}
	}
	return nil
}

func findByID(state *models.GroupState, id string) *models.Contribution {
	for _, c := range state.Contributions {
		if c.ID == id {
			return c
		}
	}
	return nil
}
