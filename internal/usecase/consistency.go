package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	// ErrInconsistentLedger is returned when balances disagree with recorded transactions.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match recorded transactions")
)

// ConsistencyReport summarizes a reconciliation of balances against transactions.
type ConsistencyReport struct {
	TotalBalance         decimal.Decimal
	TotalAmount          decimal.Decimal
	InconsistentAccounts []int64
	Consistent           bool
}

// CheckConsistency verifies that every account balance equals the sum of the
// amounts recorded against it.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	report, err := uc.ledgerRepo.CheckConsistency(ctx, MaxInconsistentAccounts)
	if err != nil {
		return nil, err
	}

	report.Consistent = report.TotalBalance.Equal(report.TotalAmount) && len(report.InconsistentAccounts) == 0
	if !report.Consistent {
		zerolog.Ctx(ctx).Error().
			Str("total_balance", report.TotalBalance.String()).
			Str("total_amount", report.TotalAmount.String()).
			Ints64("accounts", report.InconsistentAccounts).
			Msg("ledger inconsistency detected")
		return report, ErrInconsistentLedger
	}

	return report, nil
}
