package paygroup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/piggybank/internal/apperr"
	"github.com/mmynk/piggybank/internal/ledger"
	"github.com/mmynk/piggybank/internal/metrics"
	"github.com/mmynk/piggybank/internal/models"
	"github.com/mmynk/piggybank/internal/payments"
)

// ContributionResult is the outcome of Contribute.
type ContributionResult struct {
	Snapshot     *models.Snapshot
	Contribution *models.Contribution
}

// Contribute charges the caller and records the contribution. Wallet payments
// count toward the balance immediately; mobile money and card payments count
// once the provider confirms their reference.
//
// The group lock is not held while the payment executor runs. If recording
// fails after a settled charge, the charge is refunded.
func (s *Service) Contribute(ctx context.Context, caller, groupID string, amount decimal.Decimal, method models.PaymentMethod, notes string) (*ContributionResult, error) {
	if _, err := s.view(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		m, err := requireMember(st, caller)
		if err != nil {
			return err
		}
		return ledger.CanRecord(st, m.ID, amount, method)
	}); err != nil {
		return nil, err
	}

	receipt, err := s.executor.Execute(ctx, payments.Charge{
		UserRef: caller,
		GroupID: groupID,
		Amount:  amount,
		Method:  method,
	})
	if errors.Is(err, payments.ErrInsufficientBalance) {
		return nil, apperr.Wrap(apperr.CodeInsufficientFunds, "wallet balance too low", err)
	}
	if err != nil {
		return nil, dependencyError("payment executor", err)
	}

	res := &ContributionResult{}
	snap, err := s.update(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		m, err := requireMember(st, caller)
		if err != nil {
			return err
		}
		c, err := ledger.Record(st, ledger.Entry{
			MemberID:          m.ID,
			Amount:            amount,
			Method:            method,
			Notes:             notes,
			ExternalReference: receipt.Reference,
		}, now)
		if err != nil {
			return err
		}
		res.Contribution = c.Clone()
		fx.count(func(mt *metrics.Metrics) { mt.Contribution(string(method), "recorded") })
		slog.Info("Contribution recorded",
			"group_id", groupID,
			"member_id", m.ID,
			"amount", amount.String(),
			"method", method,
			"confirmed", c.Confirmed,
		)
		return nil
	})
	if err != nil {
		if refundErr := s.executor.Refund(ctx, receipt); refundErr != nil {
			slog.Error("Refund after failed contribution failed",
				"group_id", groupID,
				"user_id", caller,
				"amount", amount.String(),
				"error", refundErr,
			)
		}
		return nil, err
	}
	res.Snapshot = snap
	return res, nil
}

// ConfirmContribution settles the contribution carrying ref. Repeated
// confirmations are no-ops. A payment that settles after its group terminated
// is abandoned and refunded, and the call fails with GroupTerminated.
func (s *Service) ConfirmContribution(ctx context.Context, ref string) (*models.Snapshot, error) {
	groupID, err := s.groupOf(ctx, ref, s.store.FindGroupByReference, apperr.CodeUnknownReference)
	if err != nil {
		return nil, err
	}

	var late *payments.Receipt
	snap, err := s.update(ctx, groupID, "", func(st *models.GroupState, now time.Time, fx *effects) error {
		late = nil
		before := confirmedByRef(st, ref)
		c, err := ledger.Confirm(st, ref, now)
		if errors.Is(err, apperr.ErrGroupTerminated) {
			c, err := ledger.Abandon(st, ref, "group terminated before settlement", now)
			if err != nil {
				return err
			}
			var payer string
			if m := st.Member(c.MemberID); m != nil {
				payer = m.UserRef
			}
			late = &payments.Receipt{
				Charge: payments.Charge{
					UserRef: payer,
					GroupID: st.Group.ID,
					Amount:  c.Amount,
					Method:  c.Method,
				},
				Reference: ref,
				Settled:   true,
			}
			fx.count(func(m *metrics.Metrics) { m.Contribution(string(c.Method), "refunded") })
			slog.Warn("Contribution settled after termination", "group_id", groupID, "contribution_id", c.ID)
			return nil
		}
		if err != nil {
			return err
		}
		if before {
			fx.discard = true
			return nil
		}
		fx.count(func(m *metrics.Metrics) { m.Contribution(string(c.Method), "confirmed") })
		slog.Info("Contribution confirmed", "group_id", groupID, "contribution_id", c.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if late != nil {
		if err := s.executor.Refund(ctx, *late); err != nil {
			slog.Error("Refund of late settlement failed",
				"group_id", groupID,
				"reference", ref,
				"amount", late.Amount.String(),
				"error", err,
			)
		}
		return nil, apperr.New(apperr.CodeGroupTerminated, fmt.Sprintf("group %s terminated before the payment settled; it was refunded", groupID))
	}
	return snap, nil
}

// FailContribution abandons the unconfirmed contribution carrying ref after the
// provider reports a failed payment.
func (s *Service) FailContribution(ctx context.Context, ref, reason string) (*models.Snapshot, error) {
	groupID, err := s.groupOf(ctx, ref, s.store.FindGroupByReference, apperr.CodeUnknownReference)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, groupID, "", func(st *models.GroupState, now time.Time, fx *effects) error {
		c, err := ledger.Abandon(st, ref, reason, now)
		if err != nil {
			return err
		}
		fx.count(func(m *metrics.Metrics) { m.Contribution(string(c.Method), "failed") })
		slog.Info("Contribution failed", "group_id", groupID, "contribution_id", c.ID, "reason", reason)
		return nil
	})
}

// ReverseContribution takes back a confirmed contribution. Admins only.
func (s *Service) ReverseContribution(ctx context.Context, caller, contributionID, reason string) (*models.Snapshot, error) {
	groupID, err := s.groupOf(ctx, contributionID, s.store.FindGroupByContribution, apperr.CodeNotFound)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, groupID, caller, func(st *models.GroupState, now time.Time, fx *effects) error {
		if _, err := requireAdmin(st, caller); err != nil {
			return err
		}
		c, err := ledger.Reverse(st, contributionID, reason, now)
		if err != nil {
			return err
		}
		fx.count(func(m *metrics.Metrics) { m.Contribution(string(c.Method), "reversed") })
		slog.Info("Contribution reversed", "group_id", groupID, "contribution_id", c.ID, "reason", reason)
		return nil
	})
}

func confirmedByRef(st *models.GroupState, ref string) bool {
	for _, c := range st.Contributions {
		if c.ExternalReference == ref {
			return c.Confirmed
		}
	}
	return false
}
