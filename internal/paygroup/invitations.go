package paygroup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/piggybank/internal/apperr"
	"github.com/mmynk/piggybank/internal/invitation"
	"github.com/mmynk/piggybank/internal/metrics"
	"github.com/mmynk/piggybank/internal/models"
	"github.com/mmynk/piggybank/internal/notify"
	"github.com/mmynk/piggybank/internal/storage"
)

// InviteResult is the outcome of Invite. Exactly one of Invitation and
// ConfirmationRequired is set.
type InviteResult struct {
	Snapshot             *models.Snapshot
	Invitation           *models.Invitation
	ConfirmationRequired *invitation.ConfirmationRequired
}

// Invite offers membership to an email address. When the address has no
// account and forceExternal is false, nothing is recorded and the result asks
// the caller to confirm.
func (s *Service) Invite(ctx context.Context, caller, groupID, email string, forceExternal bool) (*InviteResult, error) {
	accountRef, err := s.identity.LookupByEmail(ctx, email)
	if err != nil {
		return nil, dependencyError("identity provider", err)
	}

	res := &InviteResult{}
	snap, err := s.update(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		*res = InviteResult{}
		inviter, err := requireMember(st, caller)
		if err != nil {
			return err
		}
		if st.Group.RequiresApproval && !inviter.IsAdmin {
			return apperr.New(apperr.CodeUnauthorized, fmt.Sprintf("group %s requires an admin to invite", st.Group.ID))
		}

		out, err := invitation.Invite(st, invitation.Request{
			InviterMemberID: inviter.ID,
			Email:           email,
			ForceExternal:   forceExternal,
			AccountRef:      accountRef,
		}, now)
		if err != nil {
			return err
		}
		if out.ConfirmationRequired != nil {
			fx.discard = true
			fx.count(func(m *metrics.Metrics) { m.Invitation("confirmation_required") })
			res.ConfirmationRequired = out.ConfirmationRequired
			return nil
		}

		inv := out.Invitation
		res.Invitation = inv.Clone()
		fx.count(func(m *metrics.Metrics) { m.Invitation("created") })
		fx.emit(notify.Event{
			Kind:       notify.KindInvitationCreated,
			GroupID:    st.Group.ID,
			Recipient:  inv.InviteeEmail,
			Detail:     fmt.Sprintf("invited to %q", st.Group.Name),
			OccurredAt: now,
		})
		slog.Info("Invitation created", "group_id", st.Group.ID, "invitation_id", inv.ID, "external", inv.IsExternal)
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Snapshot = snap
	return res, nil
}

// RespondInvitation accepts or declines an invitation addressed to the
// caller's account email.
func (s *Service) RespondInvitation(ctx context.Context, caller, invitationID string, accept, anonymous bool) (*models.Snapshot, error) {
	user, err := s.identity.GetUser(ctx, caller)
	if err != nil {
		return nil, dependencyError("identity provider", err)
	}
	if user == nil {
		return nil, apperr.New(apperr.CodeUnauthorized, "unknown account")
	}
	groupID, err := s.groupOf(ctx, invitationID, s.store.FindGroupByInvitation, apperr.CodeNotFound)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		inv := st.Invitation(invitationID)
		if inv == nil {
			return apperr.New(apperr.CodeNotFound, fmt.Sprintf("invitation %s not found", invitationID))
		}
		if inv.InviteeEmail != models.NormalizeEmail(user.Email) {
			return apperr.New(apperr.CodeUnauthorized, "invitation is addressed to another account")
		}
		if _, err := invitation.Respond(st, invitationID, invitation.Response{
			Accept:    accept,
			UserRef:   caller,
			Anonymous: anonymous,
		}, now); err != nil {
			return err
		}

		outcome := string(inv.Status)
		fx.count(func(m *metrics.Metrics) { m.Invitation(outcome) })
		recipient := ""
		if inviter := st.Member(inv.InvitedBy); inviter != nil {
			recipient = inviter.UserRef
		}
		fx.emit(notify.Event{
			Kind:       notify.KindInvitationResponded,
			GroupID:    st.Group.ID,
			Recipient:  recipient,
			Detail:     fmt.Sprintf("%s %s the invitation", inv.InviteeEmail, outcome),
			OccurredAt: now,
		})
		slog.Info("Invitation answered", "group_id", st.Group.ID, "invitation_id", inv.ID, "status", inv.Status)
		return nil
	})
}

// RevokeInvitation withdraws a pending invitation. Admins only.
func (s *Service) RevokeInvitation(ctx context.Context, caller, invitationID string) (*models.Snapshot, error) {
	groupID, err := s.groupOf(ctx, invitationID, s.store.FindGroupByInvitation, apperr.CodeNotFound)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		if _, err := requireAdmin(st, caller); err != nil {
			return err
		}
		if _, err := invitation.Revoke(st, invitationID, now); err != nil {
			return err
		}
		fx.count(func(m *metrics.Metrics) { m.Invitation("revoked") })
		return nil
	})
}

// ListMyInvitations returns the pending, unexpired invitations addressed to
// the caller's account email.
func (s *Service) ListMyInvitations(ctx context.Context, caller string) ([]*models.Invitation, error) {
	user, err := s.identity.GetUser(ctx, caller)
	if err != nil {
		return nil, dependencyError("identity provider", err)
	}
	if user == nil {
		return nil, apperr.New(apperr.CodeUnauthorized, "unknown account")
	}
	invs, err := s.store.ListPendingInvitations(ctx, user.Email)
	if err != nil {
		slog.Error("Failed to list invitations", "user_id", caller, "error", err)
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list invitations", err)
	}

	now := s.now()
	live := invs[:0]
	for _, inv := range invs {
		if s.inviteTTL > 0 && !now.Before(inv.CreatedAt.Add(s.inviteTTL)) {
			continue
		}
		live = append(live, inv)
	}
	return live, nil
}

// groupOf resolves the group owning a child record, mapping a miss to code.
func (s *Service) groupOf(ctx context.Context, key string, find func(context.Context, string) (string, error), code apperr.Code) (string, error) {
	groupID, err := find(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", apperr.New(code, fmt.Sprintf("%s not found", key))
	}
	if err != nil {
		slog.Error("Failed to resolve group", "key", key, "error", err)
		return "", apperr.Wrap(apperr.CodeInternal, "failed to resolve group", err)
	}
	return groupID, nil
}
