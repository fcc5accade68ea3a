package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/piggybank/internal/models"
)

type fakeLister struct {
	ids []string
	err error
	at  time.Time
}

func (f *fakeLister) ListDueForMaturity(ctx context.Context, now time.Time) ([]string, error) {
	f.at = now
	return f.ids, f.err
}

type fakeRefresher struct {
	calls []string
	fail  map[string]bool
}

func (f *fakeRefresher) Refresh(ctx context.Context, groupID string) (*models.Snapshot, error) {
	f.calls = append(f.calls, groupID)
	if f.fail[groupID] {
		return nil, errors.New("boom")
	}
	return &models.Snapshot{}, nil
}

func TestRunOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("refreshes every due group and skips failures", func(t *testing.T) {
		lister := &fakeLister{ids: []string{"g1", "g2", "g3"}}
		refresher := &fakeRefresher{fail: map[string]bool{"g2": true}}
		s := New(lister, refresher, func() time.Time { return now })

		n, err := s.RunOnce(context.Background())
		if err != nil {
			t.Fatalf("RunOnce failed: %v", err)
		}
		if n != 2 {
			t.Errorf("refreshed = %d, want 2", n)
		}
		if len(refresher.calls) != 3 {
			t.Errorf("calls = %v, want all three groups", refresher.calls)
		}
		if !lister.at.Equal(now) {
			t.Errorf("listed at %v, want %v", lister.at, now)
		}
	})

	t.Run("list failure", func(t *testing.T) {
		s := New(&fakeLister{err: errors.New("db down")}, &fakeRefresher{}, nil)
		if _, err := s.RunOnce(context.Background()); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("cancelled context stops the sweep", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		refresher := &fakeRefresher{}
		s := New(&fakeLister{ids: []string{"g1"}}, refresher, nil)
		if _, err := s.RunOnce(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(refresher.calls) != 0 {
			t.Errorf("refreshed %v after cancel", refresher.calls)
		}
	})
}

func TestStart(t *testing.T) {
	s := New(&fakeLister{}, &fakeRefresher{}, nil)
	if _, err := s.Start("not a schedule"); err == nil {
		t.Error("expected invalid schedule error")
	}
	c, err := s.Start("@every 1h")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	<-c.Stop().Done()
}
