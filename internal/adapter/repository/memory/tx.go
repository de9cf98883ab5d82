package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

type balanceWrite struct {
	balance   decimal.Decimal
	updatedAt time.Time
}

// Tx buffers the writes of one unit of work.
type Tx struct {
	store  *Store
	done   chan struct{}
	closed bool

	locked       map[int64]struct{}
	claims       []uniqueKey
	accounts     []domain.Account
	balances     map[int64]balanceWrite
	transactions []domain.Transaction
	events       []*domain.OutboxEvent
}

// TxManager starts units of work on a Store.
type TxManager struct {
	store *Store
}

// Begin starts a new unit of work.
func (m *TxManager) Begin(ctx context.Context) (usecase.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}

	return &Tx{
		store:    m.store,
		done:     make(chan struct{}),
		locked:   make(map[int64]struct{}),
		balances: make(map[int64]balanceWrite),
	}, nil
}

// Commit publishes all buffered writes at once and releases row locks.
func (tx *Tx) Commit(_ context.Context) error {
	if tx.closed {
		return errTxClosed
	}

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range tx.accounts {
		s.accounts[a.ID] = a
		s.accountsByDocument[a.DocumentNumber] = a.ID
		s.accountsByKey[a.IdempotencyKey] = a.ID
	}
	for id, w := range tx.balances {
		a := s.accounts[id]
		a.Balance = w.balance
		a.UpdatedAt = w.updatedAt
		s.accounts[id] = a
	}
	for _, t := range tx.transactions {
		s.transactions[t.ID] = t
		s.transactionsByKey[t.IdempotencyKey] = t.ID
	}
	s.events = append(s.events, tx.events...)

	tx.finishLocked()
	return nil
}

// Rollback discards buffered writes. Rolling back a closed Tx is a no-op.
func (tx *Tx) Rollback(_ context.Context) error {
	if tx.closed {
		return nil
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	tx.finishLocked()
	return nil
}

func (tx *Tx) finishLocked() {
	s := tx.store
	for _, k := range tx.claims {
		if s.claims[k] == tx {
			delete(s.claims, k)
		}
	}
	for id := range tx.locked {
		<-s.rowLocks[id]
	}

	tx.closed = true
	close(tx.done)
}

func (tx *Tx) pendingAccount(id int64) (domain.Account, bool) {
	for _, a := range tx.accounts {
		if a.ID == id {
			return a, true
		}
	}

	return domain.Account{}, false
}

func unwrapTx(tx usecase.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, errForeignTx
	}
	if t.closed {
		return nil, errTxClosed
	}

	return t, nil
}
