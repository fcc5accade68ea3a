package notify

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Dispatch(ctx context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	d := NewLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	d.Dispatch(context.Background(), Event{Kind: KindGroupMatured, GroupID: "g1"})

	out := buf.String()
	if !strings.Contains(out, "group.matured") || !strings.Contains(out, "group_id=g1") {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestAsync(t *testing.T) {
	t.Run("delivers queued events before Close returns", func(t *testing.T) {
		rec := &recorder{}
		a := NewAsync(rec, 16)
		for i := 0; i < 10; i++ {
			a.Dispatch(context.Background(), Event{Kind: KindInvitationCreated})
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if rec.len() != 10 {
			t.Errorf("delivered %d events, want 10", rec.len())
		}
	})

	t.Run("drops when full without blocking", func(t *testing.T) {
		release := make(chan struct{})
		blocked := DispatcherFunc(func(context.Context, Event) { <-release })
		a := NewAsync(blocked, 1)

		done := make(chan struct{})
		go func() {
			for i := 0; i < 100; i++ {
				a.Dispatch(context.Background(), Event{Kind: KindGroupTerminated})
			}
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Dispatch blocked on a full queue")
		}
		close(release)
		a.Close(context.Background())
	})

	t.Run("dispatch after close is ignored", func(t *testing.T) {
		a := NewAsync(Nop, 1)
		a.Close(context.Background())
		a.Dispatch(context.Background(), Event{Kind: KindGroupMatured})
	})

	t.Run("dispatch racing close", func(t *testing.T) {
		rec := &recorder{}
		a := NewAsync(rec, 4)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					a.Dispatch(context.Background(), Event{Kind: KindGroupMatured})
				}
			}()
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		wg.Wait()
		if err := a.Close(ctx); err != nil {
			t.Errorf("second Close failed: %v", err)
		}
		if rec.len() > 400 {
			t.Errorf("delivered %d events, more than dispatched", rec.len())
		}
	})
}
