package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/infrastructure/postgres/generated"
	"github.com/iho/txledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries     *generated.Queries
	lockTimeout string
}

// NewAccountRepository creates a new AccountRepository. lockTimeout bounds the
// wait for an account row lock.
func NewAccountRepository(db generated.DBTX, lockTimeout time.Duration) *AccountRepository {
	if lockTimeout <= 0 {
		lockTimeout = usecase.DefaultLockTimeout
	}

	return &AccountRepository{
		queries:     generated.New(db),
		lockTimeout: fmt.Sprintf("%dms", lockTimeout.Milliseconds()),
	}
}

// CreateTx inserts an account and sets its ID.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Tx, account *domain.Account) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	row, err := queries.CreateAccount(ctx, generated.CreateAccountParams{
		DocumentNumber: account.DocumentNumber,
		Balance:        decimalToNumeric(account.Balance),
		IdempotencyKey: account.IdempotencyKey,
		CreatedAt:      timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return mapError(err)
	}

	account.ID = row.ID

	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, mapError(err)
	}

	return rowToAccount(row), nil
}

// GetByIdempotencyKey retrieves the account created with the given key.
func (r *AccountRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, mapError(err)
	}

	return rowToAccount(row), nil
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock. The
// wait for the lock is bounded by the repository lock timeout.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Tx, id int64) (*domain.Account, error) {
	queries := generated.New(tx.(*Tx).PgxTx())

	if err := queries.SetLocalLockTimeout(ctx, r.lockTimeout); err != nil {
		return nil, mapError(err)
	}

	row, err := queries.GetAccountByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, mapError(err)
	}

	return rowToAccount(row), nil
}

// UpdateBalance updates the balance of an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Tx, id int64, balance decimal.Decimal, updatedAt time.Time) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	err := queries.UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		ID:        id,
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})

	return mapError(err)
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:             row.ID,
		DocumentNumber: row.DocumentNumber,
		Balance:        numericToDecimal(row.Balance),
		IdempotencyKey: row.IdempotencyKey,
		CreatedAt:      pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt:      pgTimestamptzToTime(row.UpdatedAt),
	}
}
