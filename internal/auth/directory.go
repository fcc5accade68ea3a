package auth

import (
	"context"
	"fmt"

	"github.com/mmynk/piggybank/internal/models"
)

// Directory answers account lookups for the payment group engine.
type Directory struct {
	storage UserStorage
}

// NewDirectory creates a directory over the account store.
func NewDirectory(storage UserStorage) *Directory {
	return &Directory{storage: storage}
}

// LookupByEmail returns the user ID of the account registered with email, or ""
// when no account exists.
func (d *Directory) LookupByEmail(ctx context.Context, email string) (string, error) {
	user, err := d.storage.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", email, err)
	}
	if user == nil {
		return "", nil
	}
	return user.ID, nil
}

// GetUser returns the account with the given ID, or nil if it does not exist.
func (d *Directory) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := d.storage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}

// DisplayNames maps each existing account ID in ids to its display name.
func (d *Directory) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	users, err := d.storage.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get display names: %w", err)
	}
	names := make(map[string]string, len(users))
	for id, u := range users {
		names[id] = u.DisplayName
	}
	return names, nil
}
