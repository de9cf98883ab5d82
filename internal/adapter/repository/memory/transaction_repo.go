package memory

import (
	"context"
	"fmt"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// Create implements usecase.TransactionRepository.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Tx, transaction *domain.Transaction) error {
	t, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	if err := checkStoredAmount(transaction.Amount); err != nil {
		return err
	}

	r.store.mu.Lock()
	_, exists := r.store.accounts[transaction.AccountID]
	r.store.mu.Unlock()
	if _, created := t.pendingAccount(transaction.AccountID); !exists && !created {
		return fmt.Errorf("%w: %d", domain.ErrAccountNotFound, transaction.AccountID)
	}

	if err := r.store.claim(ctx, t, uniqueKey{index: indexTransactionKey, value: transaction.IdempotencyKey}); err != nil {
		return err
	}

	r.store.mu.Lock()
	r.store.nextTransactionID++
	transaction.ID = r.store.nextTransactionID
	r.store.mu.Unlock()

	transaction.Amount = domain.RoundMoney(transaction.Amount)
	t.transactions = append(t.transactions, *transaction)

	return nil
}

// GetByIdempotencyKey implements usecase.TransactionRepository.
func (r *TransactionRepository) GetByIdempotencyKey(_ context.Context, key string) (*domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id, ok := r.store.transactionsByKey[key]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	t := r.store.transactions[id]

	return &t, nil
}
