package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/piggybank/internal/models"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*models.User)}
}

func (m *memoryUsers) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *memoryUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == models.NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *memoryUsers) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*models.User)
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func newTestAuthenticator() (*PasswordAuthenticator, *memoryUsers) {
	users := newMemoryUsers()
	a := NewPasswordAuthenticator(users)
	a.cost = bcrypt.MinCost
	return a, users
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuthenticator()

	user, err := a.Register(ctx, "Alice@Example.com", "Alice", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized", user.Email)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password must be hashed")
	}

	t.Run("duplicate email", func(t *testing.T) {
		if _, err := a.Register(ctx, "alice@example.com", "Again", "correct horse"); !errors.Is(err, ErrEmailExists) {
			t.Errorf("expected ErrEmailExists, got %v", err)
		}
	})

	t.Run("weak password", func(t *testing.T) {
		if _, err := a.Register(ctx, "bob@example.com", "Bob", "short"); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("expected ErrWeakPassword, got %v", err)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		if _, err := a.Register(ctx, "bob", "Bob", "long enough"); !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("expected ErrInvalidEmail, got %v", err)
		}
	})

	t.Run("authenticate", func(t *testing.T) {
		got, err := a.Authenticate(ctx, "alice@example.com", "correct horse")
		if err != nil || got.ID != user.ID {
			t.Fatalf("Authenticate = %+v, %v", got, err)
		}
		if _, err := a.Authenticate(ctx, "alice@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if _, err := a.Authenticate(ctx, "nobody@example.com", "whatever1"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
		}
	})
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "u1", Email: "alice@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "alice@example.com" {
		t.Errorf("claims = %+v", claims)
	}

	other := NewJWTManager("other-secret", time.Hour)
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	expired := NewJWTManager("test-secret", -time.Minute)
	stale, _ := expired.Generate(user)
	if _, err := m.Validate(stale); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	a, users := newTestAuthenticator()
	user, _ := a.Register(ctx, "alice@example.com", "Alice", "correct horse")
	d := NewDirectory(users)

	ref, err := d.LookupByEmail(ctx, " ALICE@example.com")
	if err != nil || ref != user.ID {
		t.Errorf("LookupByEmail = %q, %v", ref, err)
	}
	ref, err = d.LookupByEmail(ctx, "stranger@x.com")
	if err != nil || ref != "" {
		t.Errorf("expected no account, got %q, %v", ref, err)
	}
	got, err := d.GetUser(ctx, user.ID)
	if err != nil || got == nil || got.DisplayName != "Alice" {
		t.Errorf("GetUser = %+v, %v", got, err)
	}
	names, err := d.DisplayNames(ctx, []string{user.ID, "ghost"})
	if err != nil || len(names) != 1 || names[user.ID] != "Alice" {
		t.Errorf("DisplayNames = %v, %v", names, err)
	}
}
