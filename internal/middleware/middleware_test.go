package middleware

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/piggybank/internal/auth"
	"github.com/mmynk/piggybank/internal/models"
	"github.com/mmynk/piggybank/pkg/api"
)

func okHandler(seen *context.Context) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		*seen = ctx
		return connect.NewResponse(&api.GroupResponse{}), nil
	}
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	token, err := jwtManager.Generate(&models.User{ID: "u1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		name     string
		header   string
		wantCode connect.Code
		wantUser string
	}{
		{name: "missing header", wantCode: connect.CodeUnauthenticated},
		{name: "not bearer", header: "Basic abc", wantCode: connect.CodeUnauthenticated},
		{name: "bad token", header: "Bearer garbage", wantCode: connect.CodeUnauthenticated},
		{name: "valid token", header: "Bearer " + token, wantUser: "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen context.Context
			handler := RequireAuth(jwtManager)(okHandler(&seen))
			req := connect.NewRequest(&api.GetGroupRequest{GroupID: "g1"})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}
			_, err := handler(context.Background(), req)
			if tt.wantCode != 0 {
				if connect.CodeOf(err) != tt.wantCode {
					t.Fatalf("code = %v, want %v", connect.CodeOf(err), tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if GetUserID(seen) != tt.wantUser || GetEmail(seen) != "alice@example.com" {
				t.Errorf("context user = %q/%q", GetUserID(seen), GetEmail(seen))
			}
		})
	}
}

func TestIsPublic(t *testing.T) {
	if !IsPublic(api.AuthServiceLoginProcedure) || !IsPublic(api.AuthServiceRegisterProcedure) {
		t.Error("login and registration must be public")
	}
	if IsPublic(api.PaymentGroupServiceContributeProcedure) {
		t.Error("Contribute must require authentication")
	}
	if IsPublic(api.PaymentGroupServiceConfirmContributionProcedure) || IsPublic(api.PaymentGroupServiceFailContributionProcedure) {
		t.Error("provider callbacks must not be public")
	}
	if !IsProviderCallback(api.PaymentGroupServiceConfirmContributionProcedure) || !IsProviderCallback(api.PaymentGroupServiceFailContributionProcedure) {
		t.Error("confirm and fail must be provider callbacks")
	}
	if IsProviderCallback(api.PaymentGroupServiceReverseContributionProcedure) {
		t.Error("ReverseContribution is an admin call, not a provider callback")
	}
}

func TestRequireProviderSecretPassesUserCalls(t *testing.T) {
	var seen context.Context
	handler := RequireProviderSecret("s3cret")(okHandler(&seen))
	if _, err := handler(context.Background(), connect.NewRequest(&api.GetGroupRequest{GroupID: "g1"})); err != nil {
		t.Errorf("user procedure rejected: %v", err)
	}
}

func TestValidationInterceptor(t *testing.T) {
	var seen context.Context
	handler := ValidationInterceptor()(okHandler(&seen))

	_, err := handler(context.Background(), connect.NewRequest(&api.InviteRequest{GroupID: "g1", Email: "nope"}))
	var cerr *connect.Error
	if !errors.As(err, &cerr) || cerr.Code() != connect.CodeInvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if cerr.Meta().Get(api.ErrorKindHeader) != "validation" {
		t.Errorf("kind = %q, want validation", cerr.Meta().Get(api.ErrorKindHeader))
	}

	if _, err := handler(context.Background(), connect.NewRequest(&api.InviteRequest{GroupID: "g1", Email: "a@b.com"})); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		code connect.Code
		want slog.Level
	}{
		{connect.CodeInvalidArgument, slog.LevelWarn},
		{connect.CodePermissionDenied, slog.LevelWarn},
		{connect.CodeAborted, slog.LevelWarn},
		{connect.CodeUnavailable, slog.LevelError},
		{connect.CodeInternal, slog.LevelError},
	}
	for _, tt := range tests {
		if got := levelFor(tt.code); got != tt.want {
			t.Errorf("levelFor(%v) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
