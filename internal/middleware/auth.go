package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/piggybank/internal/auth"
	"github.com/mmynk/piggybank/pkg/api"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// EmailKey is the context key for storing the authenticated user's email.
	EmailKey contextKey = "email"
)

// ErrProviderSecret is returned when a provider callback is not authenticated.
var ErrProviderSecret = errors.New("payment provider secret missing or invalid")

// publicProcedures can be called without a session token.
var publicProcedures = map[string]bool{
	api.AuthServiceRegisterProcedure: true,
	api.AuthServiceLoginProcedure:    true,
}

// providerProcedures are called by the payment provider, not a user. They are
// authenticated by RequireProviderSecret instead of a session token.
var providerProcedures = map[string]bool{
	api.PaymentGroupServiceConfirmContributionProcedure: true,
	api.PaymentGroupServiceFailContributionProcedure:    true,
}

// IsPublic reports whether procedure skips authentication.
func IsPublic(procedure string) bool {
	return publicProcedures[procedure]
}

// IsProviderCallback reports whether procedure is a payment provider callback.
func IsProviderCallback(procedure string) bool {
	return providerProcedures[procedure]
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetEmail extracts the user email from the context.
// Returns empty string if not found.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// WithUser returns a context carrying an authenticated user.
func WithUser(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, EmailKey, email)
}

// RequireAuth returns a middleware that validates JWT tokens and requires
// authentication for every procedure except the public ones. It extracts the
// token from the Authorization header, validates it, and adds the user ID and
// email to the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if IsPublic(req.Spec().Procedure) || IsProviderCallback(req.Spec().Procedure) {
				return next(ctx, req)
			}

			// Extract Authorization header
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			// Parse Bearer token
			tokenString, ok := bearerToken(authHeader)
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithUser(ctx, claims.UserID, claims.Email), req)
		}
	}
}

// RequireProviderSecret rejects provider callbacks that do not carry secret in
// the Piggybank-Provider-Secret header. An empty secret rejects every callback.
// Other procedures pass through.
func RequireProviderSecret(secret string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if !IsProviderCallback(req.Spec().Procedure) {
				return next(ctx, req)
			}
			got := req.Header().Get(api.ProviderSecretHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				return nil, connect.NewError(connect.CodeUnauthenticated, ErrProviderSecret)
			}
			return next(ctx, req)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
