package postgres

import (
	"context"

	"github.com/iho/txledger/internal/infrastructure/postgres/generated"
	"github.com/iho/txledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// CheckConsistency sums balances and transaction amounts and lists accounts
// whose balance differs from their own transactions.
func (r *LedgerRepository) CheckConsistency(ctx context.Context, limit int) (*usecase.ConsistencyReport, error) {
	totals, err := r.queries.CheckLedgerConsistency(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	ids, err := r.queries.ListInconsistentAccounts(ctx, int32(limit))
	if err != nil {
		return nil, mapError(err)
	}

	return &usecase.ConsistencyReport{
		TotalBalance:         numericToDecimal(totals.TotalAccountBalance),
		TotalAmount:          numericToDecimal(totals.TotalTransactionAmount),
		InconsistentAccounts: ids,
	}, nil
}
