package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
)

// RecorderUseCase records transactions and applies their effect on the
// account balance exactly once per idempotency key.
type RecorderUseCase struct {
	txManager       TxManager
	ledger          BalanceAdjuster
	transactionRepo TransactionRepository
	outbox          outboxWriter
	metrics         MetricsRecorder
	now             func() time.Time
}

// NewRecorderUseCase creates a new RecorderUseCase. outboxRepo and metrics may be nil.
func NewRecorderUseCase(
	txManager TxManager,
	ledger BalanceAdjuster,
	transactionRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics MetricsRecorder,
) *RecorderUseCase {
	return &RecorderUseCase{
		txManager:       txManager,
		ledger:          ledger,
		transactionRepo: transactionRepo,
		outbox:          outboxWriter{repo: outboxRepo, idGen: idGen},
		metrics:         metricsOrNop(metrics),
		now:             func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// RecordInput represents input for recording a transaction. Amount is the
// unsigned magnitude; the sign comes from the operation type.
type RecordInput struct {
	AccountID      int64
	OperationType  domain.OperationType
	Amount         decimal.Decimal
	IdempotencyKey string
}

// Record applies the transaction to the account balance and stores it in one
// unit of work. A repeated call with the same idempotency key returns the
// stored transaction without touching the balance again.
func (uc *RecorderUseCase) Record(ctx context.Context, input RecordInput) (*domain.Transaction, error) {
	if err := domain.ValidateIdempotencyKey(input.IdempotencyKey); err != nil {
		return nil, err
	}
	if !input.OperationType.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidOperationType, input.OperationType.ID())
	}
	if input.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", domain.ErrInvalidAmount)
	}

	logger := zerolog.Ctx(ctx).With().
		Int64("account_id", input.AccountID).
		Str("idempotency_key", input.IdempotencyKey).
		Logger()

	existing, err := uc.transactionRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
	if err == nil {
		logger.Info().Int64("transaction_id", existing.ID).Msg("transaction replayed")
		return existing, nil
	}
	if !errors.Is(err, domain.ErrTransactionNotFound) {
		uc.metrics.OperationRejected("record", domain.KindOf(err))
		return nil, err
	}

	transaction := &domain.Transaction{
		AccountID:      input.AccountID,
		OperationType:  input.OperationType,
		Amount:         input.OperationType.SignedAmount(input.Amount),
		IdempotencyKey: input.IdempotencyKey,
		EventAt:        uc.now(),
	}

	err = withinTx(ctx, uc.txManager, func(ctx context.Context, tx Tx) error {
		account, err := uc.ledger.AdjustTx(ctx, tx, transaction.AccountID, transaction.Amount)
		if err != nil {
			return err
		}

		if err := uc.transactionRepo.Create(ctx, tx, transaction); err != nil {
			return err
		}

		return uc.outbox.write(ctx, tx, domain.AggregateTypeTransaction, transaction.ID,
			domain.EventTypeTransactionRecorded,
			domain.TransactionRecordedPayload(transaction, account.Balance.StringFixedBank(domain.MoneyScale)),
			transaction.EventAt)
	})
	if err == nil {
		uc.metrics.TransactionRecorded(transaction.OperationType, transaction.Amount)
		logger.Info().
			Int64("transaction_id", transaction.ID).
			Str("operation_type", transaction.OperationType.String()).
			Str("amount", transaction.Amount.StringFixedBank(domain.MoneyScale)).
			Msg("transaction recorded")
		return transaction, nil
	}

	if !domain.IsTransient(err) {
		// A request with the same key may have committed while this one waited
		// on the row lock. Its effect stands, whatever this attempt saw.
		winner, findErr := uc.transactionRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
		if findErr == nil {
			logger.Info().
				Int64("transaction_id", winner.ID).
				AnErr("attempt_error", err).
				Msg("transaction replayed after conflict")
			return winner, nil
		}
		if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
			return nil, findErr
		}
	}

	uc.metrics.OperationRejected("record", domain.KindOf(err))
	return nil, err
}
