// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/piggybank/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned by SaveGroup when the group changed since it was loaded.
	ErrConflict = errors.New("version conflict")
)

// UserStore persists accounts known to the identity provider.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil, nil when no account uses the address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns nil, nil when the account does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the accounts that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// GroupStore persists payment group aggregates.
type GroupStore interface {
	// CreateGroup persists a new aggregate. IDs must already be assigned.
	CreateGroup(ctx context.Context, state *models.GroupState) error

	// LoadGroup retrieves a group with its members, invitations, contributions
	// and votes. Returns ErrNotFound if the group does not exist.
	LoadGroup(ctx context.Context, groupID string) (*models.GroupState, error)

	// SaveGroup writes the whole aggregate in one transaction. It fails with
	// ErrConflict when state.Group.Version no longer matches the stored version,
	// and increments state.Group.Version on success.
	SaveGroup(ctx context.Context, state *models.GroupState) error

	// ListGroupsForUser returns public groups and groups the user belongs to.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// ListDueForMaturity returns IDs of active groups whose deadline is at or before now.
	ListDueForMaturity(ctx context.Context, now time.Time) ([]string, error)

	// ListPendingInvitations returns pending invitations addressed to email.
	ListPendingInvitations(ctx context.Context, email string) ([]*models.Invitation, error)

	// The Find methods resolve which group owns a child record.
	// They return ErrNotFound if no record matches.
	FindGroupByReference(ctx context.Context, ref string) (string, error)
	FindGroupByInvitation(ctx context.Context, invitationID string) (string, error)
	FindGroupByContribution(ctx context.Context, contributionID string) (string, error)
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore

	// Close releases any resources held by the store.
	Close() error
}
