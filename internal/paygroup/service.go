// Package paygroup is the entry point for every payment group operation.
//
// Each mutating operation loads the group aggregate, applies lazy lifecycle
// evaluation, mutates a copy with the ledger, membership, invitation and
// lifecycle components, and saves the copy in one transaction. Operations on
// the same group are serialized in process; the store's version check catches
// writers in other processes.
package paygroup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/piggybank/internal/apperr"
	"github.com/mmynk/piggybank/internal/invitation"
	"github.com/mmynk/piggybank/internal/lifecycle"
	"github.com/mmynk/piggybank/internal/metrics"
	"github.com/mmynk/piggybank/internal/models"
	"github.com/mmynk/piggybank/internal/notify"
	"github.com/mmynk/piggybank/internal/payments"
	"github.com/mmynk/piggybank/internal/storage"
)

// maxAttempts bounds retries after a version conflict.
const maxAttempts = 3

// Identity resolves accounts. Implemented by auth.Directory.
type Identity interface {
	// LookupByEmail returns the user ID registered with email, or "" if none.
	LookupByEmail(ctx context.Context, email string) (string, error)
	// GetUser returns nil, nil when the account does not exist.
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// Options configures a Service. Zero values select defaults.
type Options struct {
	// Threshold is the termination consensus fraction. Default unanimous.
	Threshold decimal.Decimal
	// InviteTTL is how long invitations stay pending. Zero disables expiry.
	InviteTTL  time.Duration
	Dispatcher notify.Dispatcher
	Metrics    *metrics.Metrics
	// Clock returns the current time. Default time.Now.
	Clock func() time.Time
}

// Service implements the payment group operations.
type Service struct {
	store     storage.GroupStore
	identity  Identity
	executor  payments.Executor
	notifier  notify.Dispatcher
	metrics   *metrics.Metrics
	engine    *lifecycle.Engine
	inviteTTL time.Duration
	now       func() time.Time
	locks     *keyedMutex
}

// New creates a Service over the given collaborators.
func New(store storage.GroupStore, identity Identity, executor payments.Executor, opts Options) *Service {
	s := &Service{
		store:     store,
		identity:  identity,
		executor:  executor,
		notifier:  opts.Dispatcher,
		metrics:   opts.Metrics,
		engine:    lifecycle.New(opts.Threshold),
		inviteTTL: opts.InviteTTL,
		now:       opts.Clock,
		locks:     newKeyedMutex(),
	}
	if s.notifier == nil {
		s.notifier = notify.Nop
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// effects collects what an operation did besides mutating state. They are
// published only after the state is saved.
type effects struct {
	events      []notify.Event
	transitions []lifecycle.Transition
	counters    []func(m *metrics.Metrics)

	// discard drops the operation's mutations; only lazy evaluation is saved.
	discard bool
	// dirty is set when lazy evaluation changed the state.
	dirty bool
	lazy  lazyCounts
}

type lazyCounts struct {
	events, transitions, counters int
}

func (fx *effects) emit(e notify.Event) {
	fx.events = append(fx.events, e)
}

func (fx *effects) count(f func(m *metrics.Metrics)) {
	fx.counters = append(fx.counters, f)
}

func (fx *effects) transition(t lifecycle.Transition) {
	if t.Changed() {
		fx.transitions = append(fx.transitions, t)
	}
}

// lastTransition describes the most recent status change, if any.
func (fx *effects) lastTransition() string {
	if len(fx.transitions) == 0 {
		return ""
	}
	return fx.transitions[len(fx.transitions)-1].Description
}

type mutation func(st *models.GroupState, now time.Time, fx *effects) error

// update runs fn under the group lock and always saves its result.
func (s *Service) update(ctx context.Context, groupID, viewer string, fn mutation) (*models.Snapshot, error) {
	return s.run(ctx, groupID, viewer, fn, true)
}

// view runs check under the group lock and saves only what lazy evaluation changed.
func (s *Service) view(ctx context.Context, groupID, viewer string, check mutation) (*models.Snapshot, error) {
	return s.run(ctx, groupID, viewer, check, false)
}

func (s *Service) run(ctx context.Context, groupID, viewer string, fn mutation, write bool) (*models.Snapshot, error) {
	unlock := s.locks.Lock(groupID)
	defer unlock()

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var snap *models.Snapshot
		snap, err = s.runOnce(ctx, groupID, viewer, fn, write)
		if !errors.Is(err, storage.ErrConflict) {
			return snap, err
		}
		slog.Warn("Group changed concurrently, retrying", "group_id", groupID, "attempt", attempt)
	}
	return nil, apperr.Wrap(apperr.CodeConflict, fmt.Sprintf("group %s changed concurrently", groupID), err)
}

func (s *Service) runOnce(ctx context.Context, groupID, viewer string, fn mutation, write bool) (*models.Snapshot, error) {
	current, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	fx := &effects{}
	refreshed := current.Clone()
	s.evaluate(refreshed, now, fx)

	next := refreshed.Clone()
	if opErr := fn(next, now, fx); opErr != nil || fx.discard {
		// The operation is rejected or had nothing to write. Keep only what
		// lazy evaluation changed.
		if fx.dirty {
			if err := s.save(ctx, refreshed); err != nil {
				if opErr == nil {
					return nil, err
				}
				slog.Warn("Failed to persist lazy evaluation", "group_id", groupID, "error", err)
			} else {
				s.publish(ctx, fx.lazyOnly())
			}
		}
		if opErr != nil {
			return nil, opErr
		}
		return s.snapshot(refreshed, viewer, fx), nil
	}

	if write || fx.dirty {
		if err := s.save(ctx, next); err != nil {
			return nil, err
		}
		s.publish(ctx, fx)
	}
	return s.snapshot(next, viewer, fx), nil
}

// evaluate applies lazy maturity and invitation expiry.
func (s *Service) evaluate(st *models.GroupState, now time.Time, fx *effects) {
	t := s.engine.Evaluate(st, now)
	if t.Changed() {
		fx.dirty = true
		fx.transition(t)
		fx.emit(notify.Event{Kind: notify.KindGroupMatured, GroupID: st.Group.ID, Detail: t.Description, OccurredAt: now})
	}
	for _, inv := range invitation.ExpireStale(st, now, s.inviteTTL) {
		fx.dirty = true
		slog.Info("Invitation expired", "group_id", st.Group.ID, "invitation_id", inv.ID)
		fx.count(func(m *metrics.Metrics) { m.Invitation("expired") })
	}
	fx.lazyMark()
}

// lazyMark records how many effects came from lazy evaluation.
func (fx *effects) lazyMark() {
	fx.lazy = lazyCounts{events: len(fx.events), transitions: len(fx.transitions), counters: len(fx.counters)}
}

// lazyOnly returns the effects produced by lazy evaluation alone.
func (fx *effects) lazyOnly() *effects {
	return &effects{
		events:      fx.events[:fx.lazy.events],
		transitions: fx.transitions[:fx.lazy.transitions],
		counters:    fx.counters[:fx.lazy.counters],
	}
}

func (s *Service) load(ctx context.Context, groupID string) (*models.GroupState, error) {
	st, err := s.store.LoadGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.CodeNotFound, fmt.Sprintf("group %s not found", groupID))
	}
	if err != nil {
		slog.Error("Failed to load group", "group_id", groupID, "error", err)
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load group", err)
	}
	return st, nil
}

// save returns storage.ErrConflict unwrapped so run can retry.
func (s *Service) save(ctx context.Context, st *models.GroupState) error {
	err := s.store.SaveGroup(ctx, st)
	if err == nil || errors.Is(err, storage.ErrConflict) {
		return err
	}
	slog.Error("Failed to save group", "group_id", st.Group.ID, "error", err)
	return apperr.Wrap(apperr.CodeInternal, "failed to save group", err)
}

func (s *Service) publish(ctx context.Context, fx *effects) {
	for _, t := range fx.transitions {
		s.metrics.Transition(string(t.To))
	}
	for _, f := range fx.counters {
		f(s.metrics)
	}
	for _, e := range fx.events {
		s.notifier.Dispatch(ctx, e)
	}
}

// dependencyError marks a failed call to an external collaborator.
func dependencyError(what string, err error) error {
	slog.Error("Dependency call failed", "dependency", what, "error", err)
	return apperr.Wrap(apperr.CodeDependencyUnavailable, what+" unavailable", err)
}
