package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// CreateTx inserts the account and assigns its ID. Returns
	// domain.ErrDuplicateDocumentNumber or domain.ErrDuplicateIdempotencyKey on
	// uniqueness violations.
	CreateTx(ctx context.Context, tx Tx, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Account, error)
	// GetByIDForUpdate locks the account row until tx ends. Returns
	// domain.ErrLockTimeout when the lock is not acquired in time.
	GetByIDForUpdate(ctx context.Context, tx Tx, id int64) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Tx, id int64, balance decimal.Decimal, updatedAt time.Time) error
}

// TransactionRepository defines data access for transactions.
type TransactionRepository interface {
	// Create inserts the transaction and assigns its ID. Returns
	// domain.ErrDuplicateIdempotencyKey when the key is already used.
	Create(ctx context.Context, tx Tx, transaction *domain.Transaction) error
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context, limit int) (*ConsistencyReport, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Tx, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// BalanceAdjuster applies a signed amount to an account inside a unit of work.
type BalanceAdjuster interface {
	AdjustTx(ctx context.Context, tx Tx, accountID int64, signedAmount decimal.Decimal) (*domain.Account, error)
}

// Tx represents a database transaction (unit of work).
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager handles transaction lifecycle.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// MetricsRecorder receives ledger measurements.
type MetricsRecorder interface {
	AccountOpened()
	TransactionRecorded(op domain.OperationType, amount decimal.Decimal)
	OperationRejected(operation string, kind domain.ErrorKind)
	ObserveAdjustDuration(d time.Duration)
}

// IdempotencyStore caches the responses of completed requests by idempotency
// key. It only short-circuits replays; the store's unique constraints decide.
type IdempotencyStore interface {
	// Get returns the cached response for key, if any.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Save caches response for key unless a response is already cached.
	Save(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
