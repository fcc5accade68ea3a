// Package invitation turns an email address into a pending membership offer.
//
// Inviting an address with no account is a two-step protocol: the first call
// returns a ConfirmationRequired outcome and creates nothing; only a repeat call
// with ForceExternal set records the invitation. This keeps a mistyped address
// from silently receiving an invitation email.
package invitation

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/piggybank/internal/apperr"
	"github.com/mmynk/piggybank/internal/membership"
	"github.com/mmynk/piggybank/internal/models"
)

// Request is an invitation attempt.
type Request struct {
	InviterMemberID string
	Email           string
	ForceExternal   bool

	// AccountRef is the identity provider's user ID for Email, empty when no
	// account exists. Resolved by the caller before entering the workflow.
	AccountRef string
}

// ConfirmationRequired signals that the invitee has no account and the inviter
// must confirm before an invitation is sent.
type ConfirmationRequired struct {
	Email  string
	Prompt string
}

// Outcome is the result of Invite: exactly one field is set.
type Outcome struct {
	Invitation           *models.Invitation
	ConfirmationRequired *ConfirmationRequired
}

// Response is an invitee's answer.
type Response struct {
	Accept    bool
	UserRef   string
	Anonymous bool
}

// Invite creates a pending invitation or asks for confirmation.
func Invite(state *models.GroupState, req Request, now time.Time) (Outcome, error) {
	g := state.Group
	email := models.NormalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return Outcome{}, apperr.New(apperr.CodeValidation, fmt.Sprintf("invalid email %q", req.Email))
	}
	if state.Member(req.InviterMemberID) == nil {
		return Outcome{}, apperr.New(apperr.CodeNotFound, fmt.Sprintf("inviter %s not in group %s", req.InviterMemberID, g.ID))
	}
	if g.IsTerminated() {
		return Outcome{}, apperr.New(apperr.CodeGroupTerminated, fmt.Sprintf("group %s is terminated", g.ID))
	}
	if membership.IsFull(state) {
		return Outcome{}, apperr.New(apperr.CodeCapacityExceeded, fmt.Sprintf("group %s is full (%d members)", g.ID, g.MaxCapacity))
	}
	if req.AccountRef != "" && state.MemberByUser(req.AccountRef) != nil {
		return Outcome{}, apperr.New(apperr.CodeAlreadyMember, fmt.Sprintf("%s is already a member", email))
	}
	if PendingFor(state, email) != nil {
		return Outcome{}, apperr.New(apperr.CodeDuplicatePending, fmt.Sprintf("invitation to %s already pending", email))
	}

	external := req.AccountRef == ""
	if external && !req.ForceExternal {
		return Outcome{ConfirmationRequired: &ConfirmationRequired{
			Email:  email,
			Prompt: fmt.Sprintf("%s doesn't have an account yet. Send them an invitation anyway?", email),
		}}, nil
	}

	inv := &models.Invitation{
		ID:           uuid.New().String(),
		GroupID:      g.ID,
		InviteeEmail: email,
		InvitedBy:    req.InviterMemberID,
		Status:       models.InvitationPending,
		IsExternal:   external,
		CreatedAt:    now,
	}
	state.Invitations = append(state.Invitations, inv)
	return Outcome{Invitation: inv}, nil
}

// Respond accepts or declines a pending invitation. Accepting joins the group;
// if the join fails the invitation stays pending.
func Respond(state *models.GroupState, invitationID string, resp Response, now time.Time) (*models.Member, error) {
	inv := state.Invitation(invitationID)
	if inv == nil {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("invitation %s not found", invitationID))
	}
	if !inv.IsPending() {
		return nil, apperr.New(apperr.CodeInvitationNotPending, fmt.Sprintf("invitation %s is %s", inv.ID, inv.Status))
	}

	if !resp.Accept {
		inv.Status = models.InvitationDeclined
		inv.RespondedAt = &now
		return nil, nil
	}

	m, err := membership.Join(state, resp.UserRef, resp.Anonymous, now)
	if err != nil {
		return nil, err
	}
	inv.Status = models.InvitationAccepted
	inv.RespondedAt = &now
	return m, nil
}

// Revoke withdraws a pending invitation; it is recorded as declined.
func Revoke(state *models.GroupState, invitationID string, now time.Time) (*models.Invitation, error) {
	inv := state.Invitation(invitationID)
	if inv == nil {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("invitation %s not found", invitationID))
	}
	if !inv.IsPending() {
		return nil, apperr.New(apperr.CodeInvitationNotPending, fmt.Sprintf("invitation %s is %s", inv.ID, inv.Status))
	}
	inv.Status = models.InvitationDeclined
	inv.RespondedAt = &now
	return inv, nil
}

// ExpireStale moves pending invitations older than ttl to expired and returns them.
// A non-positive ttl disables expiry.
func ExpireStale(state *models.GroupState, now time.Time, ttl time.Duration) []*models.Invitation {
	if ttl <= 0 {
		return nil
	}
	var expired []*models.Invitation
	for _, inv := range state.Invitations {
		if inv.IsPending() && !now.Before(inv.CreatedAt.Add(ttl)) {
			inv.Status = models.InvitationExpired
			expired = append(expired, inv)
		}
	}
	return expired
}

// PendingFor returns the pending invitation for email, or nil.
func PendingFor(state *models.GroupState, email string) *models.Invitation {
	email = models.NormalizeEmail(email)
	for _, inv := range state.Invitations {
		if inv.IsPending() && inv.InviteeEmail == email {
			return inv
		}
	}
	return nil
}
