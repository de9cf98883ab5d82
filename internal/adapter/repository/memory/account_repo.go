package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// CreateTx implements usecase.AccountRepository.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Tx, account *domain.Account) error {
	t, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	if err := r.store.claim(ctx, t, uniqueKey{index: indexDocumentNumber, value: account.DocumentNumber}); err != nil {
		return err
	}
	if err := r.store.claim(ctx, t, uniqueKey{index: indexAccountKey, value: account.IdempotencyKey}); err != nil {
		return err
	}

	r.store.mu.Lock()
	r.store.nextAccountID++
	account.ID = r.store.nextAccountID
	r.store.mu.Unlock()

	account.Balance = domain.RoundMoney(account.Balance)
	t.accounts = append(t.accounts, *account)

	return nil
}

// GetByID implements usecase.AccountRepository.
func (r *AccountRepository) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return &a, nil
}

// GetByIdempotencyKey implements usecase.AccountRepository.
func (r *AccountRepository) GetByIdempotencyKey(_ context.Context, key string) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id, ok := r.store.accountsByKey[key]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a := r.store.accounts[id]

	return &a, nil
}

// GetByIDForUpdate implements usecase.AccountRepository.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id int64) (*domain.Account, error) {
	t, err := unwrapTx(tx)
	if err != nil {
		return nil, err
	}

	if a, ok := t.pendingAccount(id); ok {
		return r.withPendingBalance(t, a), nil
	}

	r.store.mu.Lock()
	_, exists := r.store.accounts[id]
	r.store.mu.Unlock()
	if !exists {
		return nil, domain.ErrAccountNotFound
	}

	if err := r.store.lockRow(ctx, t, id); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	a := r.store.accounts[id]
	r.store.mu.Unlock()

	return r.withPendingBalance(t, a), nil
}

func (r *AccountRepository) withPendingBalance(t *Tx, a domain.Account) *domain.Account {
	if w, ok := t.balances[a.ID]; ok {
		a.Balance = w.balance
		a.UpdatedAt = w.updatedAt
	}

	return &a
}

// UpdateBalance implements usecase.AccountRepository. The row must have been
// locked with GetByIDForUpdate in the same unit of work.
func (r *AccountRepository) UpdateBalance(_ context.Context, tx usecase.Tx, id int64, balance decimal.Decimal, updatedAt time.Time) error {
	t, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	_, locked := t.locked[id]
	_, created := t.pendingAccount(id)
	if !locked && !created {
		return fmt.Errorf("memory: account %d updated without holding its lock", id)
	}

	if balance.IsNegative() {
		return fmt.Errorf("%w: balance check violated", domain.ErrInsufficientFunds)
	}
	if err := checkStoredAmount(balance); err != nil {
		return err
	}

	t.balances[id] = balanceWrite{balance: domain.RoundMoney(balance), updatedAt: updatedAt}

	return nil
}
