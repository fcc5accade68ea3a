// Package membership tracks who belongs to a payment group and under what identity.
package membership

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/piggybank/internal/apperr"
	"github.com/mmynk/piggybank/internal/models"
)

// CanJoin checks every precondition of Join without mutating state.
func CanJoin(state *models.GroupState, userRef string, anonymous bool) error {
	g := state.Group
	if userRef == "" {
		return apperr.New(apperr.CodeValidation, "user reference is required")
	}
	if g.IsTerminated() {
		return apperr.New(apperr.CodeGroupTerminated, fmt.Sprintf("group %s is terminated", g.ID))
	}
	if state.MemberByUser(userRef) != nil {
		return apperr.New(apperr.CodeAlreadyMember, fmt.Sprintf("user %s already in group %s", userRef, g.ID))
	}
	if len(state.Members) >= g.MaxCapacity {
		return apperr.New(apperr.CodeCapacityExceeded, fmt.Sprintf("group %s is full (%d members)", g.ID, g.MaxCapacity))
	}
	if anonymous && !g.AllowAnonymous {
		return apperr.New(apperr.CodeAnonymousNotAllowed, fmt.Sprintf("group %s does not allow anonymous members", g.ID))
	}
	return nil
}

// Join adds the account as a new member. Duplicate joins are rejected, never
// treated as a no-op.
func Join(state *models.GroupState, userRef string, anonymous bool, now time.Time) (*models.Member, error) {
	if err := CanJoin(state, userRef, anonymous); err != nil {
		return nil, err
	}
	m := &models.Member{
		ID:          uuid.New().String(),
		GroupID:     state.Group.ID,
		UserRef:     userRef,
		IsAnonymous: anonymous,
		JoinedAt:    now,
	}
	state.Members = append(state.Members, m)
	return m, nil
}

// Leave removes a member. Only allowed while the group is active, so a member
// cannot walk away from a termination vote.
func Leave(state *models.GroupState, memberID string) error {
	g := state.Group
	if g.Status != models.StatusActive {
		return apperr.New(apperr.CodeGroupNotActive, fmt.Sprintf("group %s is %s", g.ID, g.Status))
	}
	m := state.Member(memberID)
	if m == nil {
		return apperr.New(apperr.CodeNotFound, fmt.Sprintf("member %s not in group %s", memberID, g.ID))
	}
	if m.IsAdmin && AdminCount(state) == 1 && len(state.Members) > 1 {
		return apperr.New(apperr.CodeValidation, "the last admin must promote someone before leaving")
	}

	members := state.Members[:0]
	for _, other := range state.Members {
		if other.ID != memberID {
			members = append(members, other)
		}
	}
	state.Members = members

	votes := state.Votes[:0]
	for _, v := range state.Votes {
		if v.MemberID != memberID {
			votes = append(votes, v)
		}
	}
	state.Votes = votes
	return nil
}

// Promote grants admin rights. Authorization is checked by the caller.
func Promote(state *models.GroupState, memberID string) (*models.Member, error) {
	m := state.Member(memberID)
	if m == nil {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("member %s not in group %s", memberID, state.Group.ID))
	}
	m.IsAdmin = true
	return m, nil
}

// Demote revokes admin rights. A group always keeps at least one admin.
func Demote(state *models.GroupState, memberID string) (*models.Member, error) {
	m := state.Member(memberID)
	if m == nil {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("member %s not in group %s", memberID, state.Group.ID))
	}
	if m.IsAdmin && AdminCount(state) == 1 {
		return nil, apperr.New(apperr.CodeValidation, "cannot demote the last admin")
	}
	m.IsAdmin = false
	return m, nil
}

// AdminCount returns the number of admins.
func AdminCount(state *models.GroupState) int {
	n := 0
	for _, m := range state.Members {
		if m.IsAdmin {
			n++
		}
	}
	return n
}

// IsFull reports whether the group reached MaxCapacity.
func IsFull(state *models.GroupState) bool {
	return len(state.Members) >= state.Group.MaxCapacity
}
