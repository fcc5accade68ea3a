package paygroup

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/piggybank/internal/apperr"
	"github.com/mmynk/piggybank/internal/models"
	"github.com/mmynk/piggybank/internal/notify"
	"github.com/mmynk/piggybank/internal/payments"
	"github.com/mmynk/piggybank/internal/storage"
	"github.com/mmynk/piggybank/internal/storage/sqlite"
)

var epoch = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeIdentity struct {
	mu    sync.Mutex
	users map[string]*models.User
	err   error
}

func (f *fakeIdentity) add(id, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = &models.User{ID: id, Email: models.NormalizeEmail(email)}
}

func (f *fakeIdentity) LookupByEmail(ctx context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	for _, u := range f.users {
		if u.Email == models.NormalizeEmail(email) {
			return u.ID, nil
		}
	}
	return "", nil
}

func (f *fakeIdentity) GetUser(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.users[userID], nil
}

type eventLog struct {
	mu     sync.Mutex
	events []notify.Event
}

func (l *eventLog) Dispatch(ctx context.Context, e notify.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) count(kind notify.Kind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// flakyStore fails SaveGroup on demand.
type flakyStore struct {
	storage.GroupStore
	mu        sync.Mutex
	conflicts int
	saveErr   error
}

func (f *flakyStore) SaveGroup(ctx context.Context, st *models.GroupState) error {
	f.mu.Lock()
	if f.conflicts > 0 {
		f.conflicts--
		f.mu.Unlock()
		return storage.ErrConflict
	}
	err := f.saveErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.GroupStore.SaveGroup(ctx, st)
}

type failingExecutor struct{}

func (failingExecutor) Execute(ctx context.Context, c payments.Charge) (payments.Receipt, error) {
	return payments.Receipt{}, errors.New("provider timeout")
}

func (failingExecutor) Refund(ctx context.Context, r payments.Receipt) error {
	return errors.New("provider timeout")
}

type testEnv struct {
	svc      *Service
	store    *sqlite.SQLiteStore
	flaky    *flakyStore
	identity *fakeIdentity
	wallet   *payments.Sandbox
	events   *eventLog
	clock    *clock
}

type envOption func(*envConfig)

type envConfig struct {
	threshold decimal.Decimal
	inviteTTL time.Duration
	executor  payments.Executor
}

func withThreshold(t string) envOption {
	return func(c *envConfig) { c.threshold = decimal.RequireFromString(t) }
}

func withInviteTTL(d time.Duration) envOption {
	return func(c *envConfig) { c.inviteTTL = d }
}

func withExecutor(e payments.Executor) envOption {
	return func(c *envConfig) { c.executor = e }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := envConfig{threshold: decimal.NewFromInt(1)}
	for _, o := range opts {
		o(&cfg)
	}

	env := &testEnv{
		store:    store,
		flaky:    &flakyStore{GroupStore: store},
		identity: &fakeIdentity{users: make(map[string]*models.User)},
		wallet:   payments.NewSandbox(decimal.NewFromInt(100)),
		events:   &eventLog{},
		clock:    &clock{t: epoch},
	}
	executor := cfg.executor
	if executor == nil {
		executor = env.wallet
	}
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		env.identity.add(name, name+"@example.com")
	}
	env.svc = New(env.flaky, env.identity, executor, Options{
		Threshold:  cfg.threshold,
		InviteTTL:  cfg.inviteTTL,
		Dispatcher: env.events,
		Clock:      env.clock.now,
	})
	return env
}

// publicGroup creates a public group owned by alice that anyone may join.
func (e *testEnv) publicGroup(t *testing.T, capacity int, mutate ...func(*CreateGroupInput)) *models.Snapshot {
	t.Helper()
	deadline := epoch.Add(24 * time.Hour)
	in := CreateGroupInput{
		Name:             "Holiday Fund",
		TargetAmount:     decimal.NewFromInt(1000),
		ContributionType: models.ContributionFlexible,
		Frequency:        models.FrequencyMonthly,
		MaxCapacity:      capacity,
		Visibility:       models.VisibilityPublic,
		Deadline:         &deadline,
	}
	for _, m := range mutate {
		m(&in)
	}
	snap, err := e.svc.CreateGroup(context.Background(), "alice", in)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return snap
}

func wantCode(t *testing.T, err error, code apperr.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := apperr.CodeOf(err); got != code {
		t.Fatalf("expected %s error, got %s (%v)", code, got, err)
	}
}

func memberID(t *testing.T, snap *models.Snapshot, userRef string) string {
	t.Helper()
	for _, m := range snap.Members {
		if m.UserRef == userRef {
			return m.ID
		}
	}
	t.Fatalf("no member for %s", userRef)
	return ""
}
