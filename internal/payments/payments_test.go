package payments

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/piggybank/internal/models"
)

func TestSandbox(t *testing.T) {
	ctx := context.Background()
	d := decimal.RequireFromString

	tests := []struct {
		name       string
		method     models.PaymentMethod
		amount     string
		wantPrefix string
		wantSettle bool
		wantErr    error
	}{
		{name: "wallet settles", method: models.MethodWallet, amount: "40.50", wantSettle: true},
		{name: "wallet overdraft", method: models.MethodWallet, amount: "100.01", wantErr: ErrInsufficientBalance},
		{name: "mobile money pending", method: models.MethodMobileMoney, amount: "500", wantPrefix: "mm_"},
		{name: "card pending", method: models.MethodCard, amount: "500", wantPrefix: "card_"},
		{name: "unknown method", method: "cheque", amount: "1", wantErr: ErrUnsupportedMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSandbox(d("100"))
			receipt, err := s.Execute(ctx, Charge{UserRef: "alice", GroupID: "g1", Amount: d(tt.amount), Method: tt.method})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if !s.Balance("alice").Equal(d("100")) {
					t.Errorf("failed charge changed balance to %s", s.Balance("alice"))
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if receipt.Settled != tt.wantSettle {
				t.Errorf("Settled = %v, want %v", receipt.Settled, tt.wantSettle)
			}
			if !strings.HasPrefix(receipt.Reference, tt.wantPrefix) {
				t.Errorf("Reference = %q, want prefix %q", receipt.Reference, tt.wantPrefix)
			}
		})
	}
}

func TestSandboxRefund(t *testing.T) {
	ctx := context.Background()
	s := NewSandbox(decimal.NewFromInt(10))

	receipt, err := s.Execute(ctx, Charge{UserRef: "bob", Amount: decimal.RequireFromString("7.25"), Method: models.MethodWallet})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got := s.Balance("bob"); !got.Equal(decimal.RequireFromString("2.75")) {
		t.Errorf("balance = %s, want 2.75", got)
	}
	if err := s.Refund(ctx, receipt); err != nil {
		t.Fatalf("Refund failed: %v", err)
	}
	if got := s.Balance("bob"); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("balance after refund = %s, want 10", got)
	}

	s.Deposit("bob", decimal.NewFromInt(5))
	if got := s.Balance("bob"); !got.Equal(decimal.NewFromInt(15)) {
		t.Errorf("balance after deposit = %s, want 15", got)
	}
}
