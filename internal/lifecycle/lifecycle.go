// Package lifecycle owns a payment group's status: active, matured, terminated.
//
// The engine is a reducer over (group, members, votes, now). It holds no timers:
// maturity is evaluated lazily whenever group state is read, so a group queried
// days after its deadline reports the same status as one queried on time.
//
//	active --deadline passed--> matured --consensus reached--> terminated
//	   ^                           |
//	   +------extendDeadline-------+
//
// There is no direct active -> terminated edge.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/piggybank/internal/apperr"
	"github.com/mmynk/piggybank/internal/models"
)

// Unanimous is the default termination threshold.
var Unanimous = decimal.NewFromInt(1)

// Engine evaluates and applies lifecycle transitions.
type Engine struct {
	// Threshold is the fraction of current members whose agreement terminates
	// the group, in (0, 1].
	Threshold decimal.Decimal
}

// New returns an engine with the given threshold. Out-of-range thresholds fall
// back to Unanimous.
func New(threshold decimal.Decimal) *Engine {
	if !threshold.IsPositive() || threshold.GreaterThan(Unanimous) {
		threshold = Unanimous
	}
	return &Engine{Threshold: threshold}
}

// Transition describes the outcome of a lifecycle step.
type Transition struct {
	From        models.GroupStatus
	To          models.GroupStatus
	Description string
}

// Changed reports whether the status moved.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Progress is termination consensus progress.
type Progress struct {
	Agreed   int
	Total    int
	Required int
}

// Evaluate applies lazy maturity: an active group whose deadline has passed
// becomes matured. Groups without a deadline never mature on their own.
func (e *Engine) Evaluate(state *models.GroupState, now time.Time) Transition {
	g := state.Group
	t := Transition{From: g.Status, To: g.Status}
	if g.Status != models.StatusActive || g.Deadline == nil {
		return t
	}
	if now.Before(*g.Deadline) {
		return t
	}
	g.Status = models.StatusMatured
	maturedAt := *g.Deadline
	g.MaturedAt = &maturedAt
	t.To = models.StatusMatured
	t.Description = fmt.Sprintf("deadline %s passed", g.Deadline.UTC().Format(time.RFC3339))
	return t
}

// ExtendDeadline moves the deadline into the future, returns the group to active
// and clears every termination vote. Either all of that happens or none of it.
// The deadline is truncated to the second before it is checked.
func (e *Engine) ExtendDeadline(state *models.GroupState, deadline time.Time, now time.Time) (Transition, error) {
	g := state.Group
	t := Transition{From: g.Status, To: g.Status}
	if g.IsTerminated() {
		return t, apperr.New(apperr.CodeGroupTerminated, fmt.Sprintf("group %s is terminated", g.ID))
	}
	// Deadlines are stored with second precision.
	deadline = deadline.Truncate(time.Second)
	if !deadline.After(now) {
		return t, apperr.New(apperr.CodeInvalidDeadline, fmt.Sprintf("deadline %s is not in the future", deadline.UTC().Format(time.RFC3339)))
	}

	d := deadline
	g.Deadline = &d
	g.Status = models.StatusActive
	g.MaturedAt = nil
	state.Votes = nil

	t.To = models.StatusActive
	t.Description = fmt.Sprintf("deadline extended to %s", deadline.UTC().Format(time.RFC3339))
	return t, nil
}

// CastVote records a member's termination vote, overwriting any earlier vote, and
// terminates the group once consensus is reached.
func (e *Engine) CastVote(state *models.GroupState, memberID string, agreed bool, now time.Time) (Transition, error) {
	g := state.Group
	t := Transition{From: g.Status, To: g.Status}
	switch g.Status {
	case models.StatusTerminated:
		return t, apperr.New(apperr.CodeGroupTerminated, fmt.Sprintf("group %s is terminated", g.ID))
	case models.StatusActive:
		return t, apperr.New(apperr.CodeGroupNotMatured, fmt.Sprintf("group %s has not matured", g.ID))
	}
	if state.Member(memberID) == nil {
		return t, apperr.New(apperr.CodeNotFound, fmt.Sprintf("member %s not in group %s", memberID, g.ID))
	}

	vote := &models.Vote{GroupID: g.ID, MemberID: memberID, Agreed: agreed, CastAt: now}
	replaced := false
	for i, v := range state.Votes {
		if v.MemberID == memberID {
			state.Votes[i] = vote
			replaced = true
			break
		}
	}
	if !replaced {
		state.Votes = append(state.Votes, vote)
	}

	p := e.Progress(state)
	if p.Agreed >= p.Required {
		g.Status = models.StatusTerminated
		g.TerminatedAt = &now
		t.To = models.StatusTerminated
		t.Description = fmt.Sprintf("%d of %d members agreed to terminate", p.Agreed, p.Total)
		return t, nil
	}
	t.Description = fmt.Sprintf("%d of %d members agreed, %d required", p.Agreed, p.Total, p.Required)
	return t, nil
}

// RequestTermination casts an agreeing vote for the member.
func (e *Engine) RequestTermination(state *models.GroupState, memberID string, now time.Time) (Transition, error) {
	return e.CastVote(state, memberID, true, now)
}

// Progress counts agreeing votes of current members against the required number.
func (e *Engine) Progress(state *models.GroupState) Progress {
	p := Progress{Total: len(state.Members)}
	for _, v := range state.Votes {
		if v.Agreed && state.Member(v.MemberID) != nil {
			p.Agreed++
		}
	}
	p.Required = e.required(p.Total)
	return p
}

// required returns ceil(threshold * total), at least 1.
func (e *Engine) required(total int) int {
	threshold := e.Threshold
	if !threshold.IsPositive() {
		threshold = Unanimous
	}
	n := int(threshold.Mul(decimal.NewFromInt(int64(total))).Ceil().IntPart())
	if n < 1 {
		n = 1
	}
	return n
}
