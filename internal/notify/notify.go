// Package notify delivers domain events to interested parties.
//
// Delivery is fire-and-forget: a Dispatcher never reports failure to the
// caller, and the engine never waits on it.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Kind names a domain event.
type Kind string

const (
	KindInvitationCreated   Kind = "invitation.created"
	KindInvitationResponded Kind = "invitation.responded"
	KindGroupMatured        Kind = "group.matured"
	KindGroupTerminated     Kind = "group.terminated"
)

// Event is a notification about a change to a payment group.
type Event struct {
	Kind    Kind
	GroupID string
	// Recipient is an email address or user ID, depending on Kind.
	Recipient  string
	Detail     string
	OccurredAt time.Time
}

// Dispatcher delivers events.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, event Event)

// Dispatch calls f(ctx, event).
func (f DispatcherFunc) Dispatch(ctx context.Context, event Event) {
	f(ctx, event)
}

// Logger writes each event as a structured log line.
type Logger struct {
	logger *slog.Logger
}

// NewLogger returns a dispatcher that logs to l, or to slog.Default when l is nil.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{logger: l}
}

// Dispatch logs the event.
func (d *Logger) Dispatch(ctx context.Context, event Event) {
	d.logger.InfoContext(ctx, "Notification",
		"kind", string(event.Kind),
		"group_id", event.GroupID,
		"recipient", event.Recipient,
		"detail", event.Detail,
		"occurred_at", event.OccurredAt,
	)
}

// Nop discards every event.
var Nop Dispatcher = DispatcherFunc(func(context.Context, Event) {})
