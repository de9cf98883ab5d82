package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/infrastructure/postgres/generated"
	"github.com/iho/txledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create inserts a transaction and sets its ID.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Tx, transaction *domain.Transaction) error {
	queries := generated.New(tx.(*Tx).PgxTx())

	row, err := queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		AccountID:      transaction.AccountID,
		OperationType:  transaction.OperationType.String(),
		Amount:         decimalToNumeric(transaction.Amount),
		IdempotencyKey: transaction.IdempotencyKey,
		EventAt:        timeToPgTimestamptz(transaction.EventAt),
	})
	if err != nil {
		return mapError(err)
	}

	transaction.ID = row.ID

	return nil
}

// GetByIdempotencyKey retrieves the transaction recorded with the given key.
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, mapError(err)
	}

	return rowToTransaction(row)
}

func rowToTransaction(row generated.Transaction) (*domain.Transaction, error) {
	op, err := domain.ParseOperationType(row.OperationType)
	if err != nil {
		return nil, err
	}

	return &domain.Transaction{
		ID:             row.ID,
		AccountID:      row.AccountID,
		OperationType:  op,
		Amount:         numericToDecimal(row.Amount),
		IdempotencyKey: row.IdempotencyKey,
		EventAt:        pgTimestamptzToTime(row.EventAt),
	}, nil
}
