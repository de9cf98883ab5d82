// Package memory provides an embedded, process-local ledger store. It keeps the
// same guarantees as the Postgres store: per-account row locks with a bounded
// wait, unique document numbers and idempotency keys, and all-or-nothing units
// of work.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

var (
	errTxClosed     = errors.New("memory: transaction already closed")
	errForeignTx    = errors.New("memory: transaction was not started by this store")
	maxStoredAmount = decimal.New(1, domain.MaxAmountIntegerDigits)
)

type uniqueIndex int

const (
	indexDocumentNumber uniqueIndex = iota
	indexAccountKey
	indexTransactionKey
)

type uniqueKey struct {
	index uniqueIndex
	value string
}

func (k uniqueKey) violation() error {
	if k.index == indexDocumentNumber {
		return domain.ErrDuplicateDocumentNumber
	}

	return domain.ErrDuplicateIdempotencyKey
}

// Store holds committed state. Uncommitted writes live in a Tx until Commit.
type Store struct {
	lockTimeout time.Duration

	mu                 sync.Mutex
	accounts           map[int64]domain.Account
	accountsByDocument map[string]int64
	accountsByKey      map[string]int64
	transactions       map[int64]domain.Transaction
	transactionsByKey  map[string]int64
	events             []*domain.OutboxEvent
	nextAccountID      int64
	nextTransactionID  int64

	// claims reserves unique values written by units of work still in flight.
	claims map[uniqueKey]*Tx
	// rowLocks holds one single-slot semaphore per account.
	rowLocks map[int64]chan struct{}
}

// NewStore creates an empty store. lockTimeout bounds every wait for an
// account row lock or an in-flight unique value.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = usecase.DefaultLockTimeout
	}

	return &Store{
		lockTimeout:        lockTimeout,
		accounts:           make(map[int64]domain.Account),
		accountsByDocument: make(map[string]int64),
		accountsByKey:      make(map[string]int64),
		transactions:       make(map[int64]domain.Transaction),
		transactionsByKey:  make(map[string]int64),
		claims:             make(map[uniqueKey]*Tx),
		rowLocks:           make(map[int64]chan struct{}),
	}
}

// Accounts returns the account repository view of the store.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{store: s} }

// Transactions returns the transaction repository view of the store.
func (s *Store) Transactions() *TransactionRepository { return &TransactionRepository{store: s} }

// Outbox returns the outbox repository view of the store.
func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{store: s} }

// Ledger returns the ledger repository view of the store.
func (s *Store) Ledger() *LedgerRepository { return &LedgerRepository{store: s} }

// TxManager returns a transaction manager for the store.
func (s *Store) TxManager() *TxManager { return &TxManager{store: s} }

// TransactionsByAccount returns committed transactions of an account ordered by id.
func (s *Store) TransactionsByAccount(accountID int64) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.Transaction
	for _, t := range s.transactions {
		if t.AccountID == accountID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result
}

func (s *Store) committedHasLocked(k uniqueKey) bool {
	var ok bool
	switch k.index {
	case indexDocumentNumber:
		_, ok = s.accountsByDocument[k.value]
	case indexAccountKey:
		_, ok = s.accountsByKey[k.value]
	case indexTransactionKey:
		_, ok = s.transactionsByKey[k.value]
	}

	return ok
}

// claim reserves a unique value for tx. When another unit of work holds the
// value, claim waits for it to finish, like a unique index insert does.
func (s *Store) claim(ctx context.Context, tx *Tx, k uniqueKey) error {
	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	for {
		s.mu.Lock()
		if s.committedHasLocked(k) {
			s.mu.Unlock()
			return k.violation()
		}

		owner, held := s.claims[k]
		if !held || owner == tx {
			if !held {
				s.claims[k] = tx
				tx.claims = append(tx.claims, k)
			}
			s.mu.Unlock()
			return nil
		}
		done := owner.done
		s.mu.Unlock()

		select {
		case <-done:
		case <-timer.C:
			return domain.ErrLockTimeout
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", domain.ErrUnavailable, ctx.Err())
		}
	}
}

func (s *Store) rowLock(id int64) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	sem, ok := s.rowLocks[id]
	if !ok {
		sem = make(chan struct{}, 1)
		s.rowLocks[id] = sem
	}

	return sem
}

// lockRow blocks until tx owns the account row, the lock timeout elapses or
// ctx is done.
func (s *Store) lockRow(ctx context.Context, tx *Tx, id int64) error {
	if _, ok := tx.locked[id]; ok {
		return nil
	}

	sem := s.rowLock(id)

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		tx.locked[id] = struct{}{}
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: account %d", domain.ErrLockTimeout, id)
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, ctx.Err())
	}
}

func checkStoredAmount(d decimal.Decimal) error {
	if d.Abs().GreaterThanOrEqual(maxStoredAmount) {
		return fmt.Errorf("%w: numeric field overflow", domain.ErrInvalidAmount)
	}

	return nil
}
