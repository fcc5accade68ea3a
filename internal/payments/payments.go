// Package payments moves money on behalf of contributors.
//
// Wallet charges settle synchronously. Mobile money and card charges return a
// pending receipt whose Reference is later confirmed or failed by the provider.
package payments

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/piggybank/internal/models"
)

var (
	// ErrInsufficientBalance is returned when a wallet cannot cover a charge.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	// ErrUnsupportedMethod is returned for a payment method the executor cannot handle.
	ErrUnsupportedMethod = errors.New("unsupported payment method")
)

// Charge asks the executor to move Amount from the payer into a group.
type Charge struct {
	UserRef string
	GroupID string
	Amount  decimal.Decimal
	Method  models.PaymentMethod
}

// Receipt is the executor's record of a charge.
type Receipt struct {
	Charge
	// Reference is the provider's correlation ID. Set for pending receipts.
	Reference string
	// Settled is true when the money already moved.
	Settled bool
}

// Executor performs and undoes charges.
type Executor interface {
	Execute(ctx context.Context, charge Charge) (Receipt, error)
	Refund(ctx context.Context, receipt Receipt) error
}

// Sandbox is an in-memory executor. Every wallet opens with the seed balance.
type Sandbox struct {
	mu       sync.Mutex
	seed     decimal.Decimal
	balances map[string]decimal.Decimal
}

// NewSandbox creates a sandbox executor whose wallets start at seed.
func NewSandbox(seed decimal.Decimal) *Sandbox {
	return &Sandbox{seed: seed, balances: make(map[string]decimal.Decimal)}
}

// Execute debits the wallet or issues a pending provider reference.
func (s *Sandbox) Execute(ctx context.Context, charge Charge) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if !charge.Amount.IsPositive() {
		return Receipt{}, fmt.Errorf("charge amount must be positive, got %s", charge.Amount)
	}

	switch charge.Method {
	case models.MethodWallet:
		s.mu.Lock()
		defer s.mu.Unlock()
		balance := s.balanceLocked(charge.UserRef)
		if balance.LessThan(charge.Amount) {
			return Receipt{}, fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, balance, charge.Amount)
		}
		s.balances[charge.UserRef] = balance.Sub(charge.Amount)
		return Receipt{Charge: charge, Settled: true}, nil
	case models.MethodMobileMoney:
		return Receipt{Charge: charge, Reference: "mm_" + compactUUID()}, nil
	case models.MethodCard:
		return Receipt{Charge: charge, Reference: "card_" + compactUUID()}, nil
	default:
		return Receipt{}, fmt.Errorf("%w: %q", ErrUnsupportedMethod, charge.Method)
	}
}

// Refund returns a settled wallet charge to the payer. Pending receipts have
// nothing to refund.
func (s *Sandbox) Refund(ctx context.Context, receipt Receipt) error {
	if !receipt.Settled {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[receipt.UserRef] = s.balanceLocked(receipt.UserRef).Add(receipt.Amount)
	return nil
}

// Balance returns the wallet balance of userRef.
func (s *Sandbox) Balance(userRef string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balanceLocked(userRef)
}

// Deposit adds funds to a wallet.
func (s *Sandbox) Deposit(userRef string, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userRef] = s.balanceLocked(userRef).Add(amount)
}

func (s *Sandbox) balanceLocked(userRef string) decimal.Decimal {
	balance, ok := s.balances[userRef]
	if !ok {
		return s.seed
	}
	return balance
}

func compactUUID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:])
}
