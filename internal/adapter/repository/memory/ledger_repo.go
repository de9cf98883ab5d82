package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// CheckConsistency implements usecase.LedgerRepository.
func (r *LedgerRepository) CheckConsistency(_ context.Context, limit int) (*usecase.ConsistencyReport, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	report := &usecase.ConsistencyReport{
		TotalBalance: domain.ZeroMoney(),
		TotalAmount:  domain.ZeroMoney(),
	}

	sums := make(map[int64]decimal.Decimal, len(r.store.accounts))
	for _, t := range r.store.transactions {
		sums[t.AccountID] = sums[t.AccountID].Add(t.Amount)
		report.TotalAmount = report.TotalAmount.Add(t.Amount)
	}

	for id, a := range r.store.accounts {
		report.TotalBalance = report.TotalBalance.Add(a.Balance)
		if !a.Balance.Equal(sums[id]) {
			report.InconsistentAccounts = append(report.InconsistentAccounts, id)
		}
	}

	sort.Slice(report.InconsistentAccounts, func(i, j int) bool {
		return report.InconsistentAccounts[i] < report.InconsistentAccounts[j]
	})
	if len(report.InconsistentAccounts) > limit {
		report.InconsistentAccounts = report.InconsistentAccounts[:limit]
	}

	return report, nil
}
