package paygroup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/piggybank/internal/apperr"
	"github.com/mmynk/piggybank/internal/ledger"
	"github.com/mmynk/piggybank/internal/lifecycle"
	"github.com/mmynk/piggybank/internal/membership"
	"github.com/mmynk/piggybank/internal/models"
	"github.com/mmynk/piggybank/internal/notify"
	"github.com/mmynk/piggybank/internal/storage"
)

// CreateGroupInput describes a new payment group.
type CreateGroupInput struct {
	Name             string
	Description      string
	TargetAmount     decimal.Decimal
	ContributionType models.ContributionType
	Frequency        models.Frequency
	MaxCapacity      int
	Visibility       models.Visibility
	RequiresApproval bool
	AllowAnonymous   bool
	Deadline         *time.Time
	// CreatorAnonymous makes the creator's own membership anonymous.
	CreatorAnonymous bool
}

// SettingsInput changes group settings. Nil fields are left unchanged.
type SettingsInput struct {
	Name             *string
	Description      *string
	TargetAmount     *decimal.Decimal
	ContributionType *models.ContributionType
	Frequency        *models.Frequency
	MaxCapacity      *int
	Visibility       *models.Visibility
	RequiresApproval *bool
	AllowAnonymous   *bool
}

// CreateGroup creates a group with the caller as its first admin member.
func (s *Service) CreateGroup(ctx context.Context, caller string, in CreateGroupInput) (*models.Snapshot, error) {
	if caller == "" {
		return nil, apperr.New(apperr.CodeUnauthorized, "caller is required")
	}
	now := s.now()
	if in.Deadline != nil {
		// Deadlines are stored with second precision.
		d := in.Deadline.Truncate(time.Second)
		in.Deadline = &d
	}
	if err := validateCreate(in, now); err != nil {
		return nil, err
	}

	g := &models.Group{
		ID:               uuid.New().String(),
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		TargetAmount:     in.TargetAmount,
		ContributionType: in.ContributionType,
		Frequency:        in.Frequency,
		MaxCapacity:      in.MaxCapacity,
		Visibility:       in.Visibility,
		RequiresApproval: in.RequiresApproval,
		AllowAnonymous:   in.AllowAnonymous,
		Deadline:         in.Deadline,
		Status:           models.StatusActive,
		CreatedAt:        now,
	}
	st := &models.GroupState{Group: g}
	creator, err := membership.Join(st, caller, in.CreatorAnonymous, now)
	if err != nil {
		return nil, err
	}
	creator.IsAdmin = true
	g.CreatedBy = creator.ID

	if err := s.store.CreateGroup(ctx, st); err != nil {
		slog.Error("Failed to create group", "error", err)
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to create group", err)
	}
	slog.Info("Group created", "group_id", g.ID, "capacity", g.MaxCapacity, "visibility", g.Visibility)
	return s.snapshot(st, caller, nil), nil
}

func validateCreate(in CreateGroupInput, now time.Time) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.New(apperr.CodeValidation, "group name is required")
	}
	if err := validateSettings(in.TargetAmount, in.ContributionType, in.Frequency, in.MaxCapacity, in.Visibility); err != nil {
		return err
	}
	if in.Deadline != nil && !in.Deadline.After(now) {
		return apperr.New(apperr.CodeInvalidDeadline, "deadline must be in the future")
	}
	if in.CreatorAnonymous && !in.AllowAnonymous {
		return apperr.New(apperr.CodeAnonymousNotAllowed, "group does not allow anonymous members")
	}
	return nil
}

func validateSettings(target decimal.Decimal, ct models.ContributionType, f models.Frequency, capacity int, v models.Visibility) error {
	switch {
	case target.IsNegative():
		return apperr.New(apperr.CodeValidation, "target amount must not be negative")
	case !ct.Valid():
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown contribution type %q", ct))
	case !f.Valid():
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown frequency %q", f))
	case capacity < models.MinCapacity:
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("capacity must be at least %d", models.MinCapacity))
	case !v.Valid():
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("unknown visibility %q", v))
	}
	return nil
}

func anonymousMembers(st *models.GroupState) int {
	n := 0
	for _, m := range st.Members {
		if m.IsAnonymous {
			n++
		}
	}
	return n
}

// GetGroup returns the group as seen by the caller. Private groups are visible
// to members only.
func (s *Service) GetGroup(ctx context.Context, caller, groupID string) (*models.Snapshot, error) {
	return s.view(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		return canView(st, caller)
	})
}

// Refresh applies lazy evaluation without a caller and persists any change.
func (s *Service) Refresh(ctx context.Context, groupID string) (*models.Snapshot, error) {
	return s.view(ctx, groupID, "", func(*models.GroupState, time.Time, *effects) error { return nil })
}

// GroupSummary is a listed group with its balance.
type GroupSummary struct {
	Group         *models.Group
	CurrentAmount decimal.Decimal
}

// ListGroups returns public groups and the caller's groups with their status
// and balance as of now.
func (s *Service) ListGroups(ctx context.Context, caller string) ([]GroupSummary, error) {
	groups, err := s.store.ListGroupsForUser(ctx, caller)
	if err != nil {
		slog.Error("Failed to list groups", "user_id", caller, "error", err)
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to list groups", err)
	}
	now := s.now()
	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		st, err := s.store.LoadGroup(ctx, g.ID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			slog.Error("Failed to load listed group", "group_id", g.ID, "error", err)
			return nil, apperr.Wrap(apperr.CodeInternal, "failed to list groups", err)
		}
		s.engine.Evaluate(st, now)
		out = append(out, GroupSummary{Group: st.Group, CurrentAmount: ledger.Balance(st.Contributions)})
	}
	return out, nil
}

// UpdateSettings changes group settings. Admins only.
func (s *Service) UpdateSettings(ctx context.Context, caller, groupID string, in SettingsInput) (*models.Snapshot, error) {
	return s.update(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		if _, err := requireAdmin(st, caller); err != nil {
			return err
		}
		g := st.Group
		if g.IsTerminated() {
			return apperr.New(apperr.CodeGroupTerminated, fmt.Sprintf("group %s is terminated", g.ID))
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return apperr.New(apperr.CodeValidation, "group name is required")
			}
			g.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			g.Description = *in.Description
		}
		if in.TargetAmount != nil {
			g.TargetAmount = *in.TargetAmount
		}
		if in.ContributionType != nil {
			g.ContributionType = *in.ContributionType
		}
		if in.Frequency != nil {
			g.Frequency = *in.Frequency
		}
		if in.MaxCapacity != nil {
			g.MaxCapacity = *in.MaxCapacity
		}
		if in.Visibility != nil {
			g.Visibility = *in.Visibility
		}
		if in.RequiresApproval != nil {
			g.RequiresApproval = *in.RequiresApproval
		}
		if in.AllowAnonymous != nil {
			g.AllowAnonymous = *in.AllowAnonymous
		}
		if err := validateSettings(g.TargetAmount, g.ContributionType, g.Frequency, g.MaxCapacity, g.Visibility); err != nil {
			return err
		}
		if g.MaxCapacity < len(st.Members) {
			return apperr.New(apperr.CodeValidation,
				fmt.Sprintf("capacity %d is below the current member count %d", g.MaxCapacity, len(st.Members)))
		}
		if !g.AllowAnonymous {
			if n := anonymousMembers(st); n > 0 {
				return apperr.New(apperr.CodeValidation,
					fmt.Sprintf("cannot disallow anonymous members while %d are anonymous", n))
			}
		}
		slog.Info("Group settings updated", "group_id", g.ID, "user_id", caller)
		return nil
	})
}

// Join adds the caller to a public group that admits members without approval.
// Other groups admit members by invitation.
func (s *Service) Join(ctx context.Context, caller, groupID string, anonymous bool) (*models.Snapshot, error) {
	return s.update(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		g := st.Group
		if st.MemberByUser(caller) == nil && (g.Visibility != models.VisibilityPublic || g.RequiresApproval) {
			return apperr.New(apperr.CodeUnauthorized, fmt.Sprintf("group %s admits members by invitation", g.ID))
		}
		m, err := membership.Join(st, caller, anonymous, now)
		if err != nil {
			return err
		}
		slog.Info("Member joined", "group_id", g.ID, "member_id", m.ID, "anonymous", anonymous)
		return nil
	})
}

// Leave removes the caller from the group.
func (s *Service) Leave(ctx context.Context, caller, groupID string) (*models.Snapshot, error) {
	return s.update(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		m, err := requireMember(st, caller)
		if err != nil {
			return err
		}
		if err := membership.Leave(st, m.ID); err != nil {
			return err
		}
		slog.Info("Member left", "group_id", st.Group.ID, "member_id", m.ID)
		return nil
	})
}

// Promote grants admin rights to a member. Admins only.
func (s *Service) Promote(ctx context.Context, caller, groupID, memberID string) (*models.Snapshot, error) {
	return s.update(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		if _, err := requireAdmin(st, caller); err != nil {
			return err
		}
		_, err := membership.Promote(st, memberID)
		return err
	})
}

// Demote revokes a member's admin rights. Admins only.
func (s *Service) Demote(ctx context.Context, caller, groupID, memberID string) (*models.Snapshot, error) {
	return s.update(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		if _, err := requireAdmin(st, caller); err != nil {
			return err
		}
		_, err := membership.Demote(st, memberID)
		return err
	})
}

// ExtendDeadline moves the deadline into the future and reactivates the group,
// clearing every termination vote. Admins only.
func (s *Service) ExtendDeadline(ctx context.Context, caller, groupID string, deadline time.Time) (*models.Snapshot, error) {
	return s.update(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		if _, err := requireAdmin(st, caller); err != nil {
			return err
		}
		t, err := s.engine.ExtendDeadline(st, deadline, now)
		if err != nil {
			return err
		}
		fx.transition(t)
		slog.Info("Deadline extended", "group_id", st.Group.ID, "deadline", deadline, "from", t.From)
		return nil
	})
}

// RequestTermination casts an agreeing termination vote for the caller.
func (s *Service) RequestTermination(ctx context.Context, caller, groupID string) (*models.Snapshot, error) {
	return s.CastVote(ctx, caller, groupID, true)
}

// CastVote records the caller's termination vote. The group terminates once
// enough members agree.
func (s *Service) CastVote(ctx context.Context, caller, groupID string, agreed bool) (*models.Snapshot, error) {
	return s.update(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		m, err := requireMember(st, caller)
		if err != nil {
			return err
		}
		t, err := s.engine.CastVote(st, m.ID, agreed, now)
		if err != nil {
			return err
		}
		fx.transition(t)
		if t.To == models.StatusTerminated && t.Changed() {
			notifyTerminated(st, t, now, fx)
		}
		slog.Info("Termination vote cast", "group_id", st.Group.ID, "member_id", m.ID, "agreed", agreed, "status", t.To)
		return nil
	})
}

func notifyTerminated(st *models.GroupState, t lifecycle.Transition, now time.Time, fx *effects) {
	for _, m := range st.Members {
		fx.emit(notify.Event{
			Kind:       notify.KindGroupTerminated,
			GroupID:    st.Group.ID,
			Recipient:  m.UserRef,
			Detail:     t.Description,
			OccurredAt: now,
		})
	}
}
