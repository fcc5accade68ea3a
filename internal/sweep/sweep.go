// Package sweep periodically persists lazy maturity for groups whose deadline
// has passed, so notifications go out even when nobody reads the group.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/piggybank/internal/models"
)

// DueLister finds groups whose deadline has passed while still active.
type DueLister interface {
	ListDueForMaturity(ctx context.Context, now time.Time) ([]string, error)
}

// Refresher applies lazy evaluation to one group and persists it.
type Refresher interface {
	Refresh(ctx context.Context, groupID string) (*models.Snapshot, error)
}

// Sweeper refreshes every due group.
type Sweeper struct {
	lister    DueLister
	refresher Refresher
	now       func() time.Time
	timeout   time.Duration
}

// New creates a sweeper. A nil now uses time.Now.
func New(lister DueLister, refresher Refresher, now func() time.Time) *Sweeper {
	if now == nil {
		now = time.Now
	}
	return &Sweeper{lister: lister, refresher: refresher, now: now, timeout: time.Minute}
}

// RunOnce refreshes every due group and returns how many were refreshed.
// A failure on one group is logged and does not stop the others.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	ids, err := s.lister.ListDueForMaturity(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list due groups: %w", err)
	}
	refreshed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if _, err := s.refresher.Refresh(ctx, id); err != nil {
			slog.Error("Sweep failed to refresh group", "group_id", id, "error", err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// Start schedules RunOnce on the cron spec and starts the scheduler. Overlapping
// runs are skipped. Stop the returned scheduler to end the sweep.
func (s *Sweeper) Start(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		n, err := s.RunOnce(ctx)
		if err != nil {
			slog.Error("Maturity sweep failed", "error", err)
			return
		}
		if n > 0 {
			slog.Info("Maturity sweep completed", "refreshed", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule sweep %q: %w", spec, err)
	}
	c.Start()
	slog.Info("Maturity sweep started", "schedule", spec)
	return c, nil
}
