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

// LedgerUseCase owns account records and is the only component allowed to
// change an account balance.
type LedgerUseCase struct {
	txManager   TxManager
	accountRepo AccountRepository
	ledgerRepo  LedgerRepository
	outbox      outboxWriter
	metrics     MetricsRecorder
	now         func() time.Time
}

// NewLedgerUseCase creates a new LedgerUseCase. outboxRepo and metrics may be nil.
func NewLedgerUseCase(
	txManager TxManager,
	accountRepo AccountRepository,
	ledgerRepo LedgerRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	metrics MetricsRecorder,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		outbox:      outboxWriter{repo: outboxRepo, idGen: idGen},
		metrics:     metricsOrNop(metrics),
		now:         func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Open creates an account with a zero balance. A repeated call with the same
// idempotency key returns the account created by the first call.
func (uc *LedgerUseCase) Open(ctx context.Context, documentNumber, idempotencyKey string) (*domain.Account, error) {
	if err := domain.ValidateDocumentNumber(documentNumber); err != nil {
		return nil, err
	}
	if err := domain.ValidateIdempotencyKey(idempotencyKey); err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("idempotency_key", idempotencyKey).Logger()

	existing, err := uc.accountRepo.GetByIdempotencyKey(ctx, idempotencyKey)
	if err == nil {
		logger.Info().Int64("account_id", existing.ID).Msg("account creation replayed")
		return existing, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		uc.metrics.OperationRejected("open_account", domain.KindOf(err))
		return nil, err
	}

	account := domain.NewAccount(documentNumber, idempotencyKey, uc.now())

	err = withinTx(ctx, uc.txManager, func(ctx context.Context, tx Tx) error {
		if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
			return err
		}

		return uc.outbox.write(ctx, tx, domain.AggregateTypeAccount, account.ID,
			domain.EventTypeAccountOpened, domain.AccountOpenedPayload(account), account.CreatedAt)
	})
	if err == nil {
		uc.metrics.AccountOpened()
		logger.Info().Int64("account_id", account.ID).Msg("account opened")
		return account, nil
	}

	if errors.Is(err, domain.ErrDuplicateDocumentNumber) || errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
		// A concurrent request with the same key may have won the insert.
		winner, findErr := uc.accountRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if findErr == nil {
			logger.Info().Int64("account_id", winner.ID).Msg("account creation replayed after conflict")
			return winner, nil
		}
		if !errors.Is(findErr, domain.ErrAccountNotFound) {
			return nil, findErr
		}

		logger.Warn().Msg("document number already registered")
		uc.metrics.OperationRejected("open_account", domain.KindConflict)
		return nil, fmt.Errorf("%w: %w", domain.ErrAccountExists, err)
	}

	uc.metrics.OperationRejected("open_account", domain.KindOf(err))
	return nil, err
}

// Lookup returns the account with the given id.
func (uc *LedgerUseCase) Lookup(ctx context.Context, accountID int64) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, accountID)
}

// Adjust applies a signed amount to an account in its own unit of work.
func (uc *LedgerUseCase) Adjust(ctx context.Context, accountID int64, signedAmount decimal.Decimal) (*domain.Account, error) {
	var account *domain.Account

	err := withinTx(ctx, uc.txManager, func(ctx context.Context, tx Tx) error {
		var err error
		account, err = uc.AdjustTx(ctx, tx, accountID, signedAmount)
		return err
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// AdjustTx locks the account row for the rest of tx, applies the signed amount
// and writes the new balance. The balance never goes below zero.
func (uc *LedgerUseCase) AdjustTx(ctx context.Context, tx Tx, accountID int64, signedAmount decimal.Decimal) (*domain.Account, error) {
	start := time.Now()
	defer func() { uc.metrics.ObserveAdjustDuration(time.Since(start)) }()

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		uc.metrics.OperationRejected("adjust", domain.KindOf(err))
		return nil, err
	}

	newBalance, err := account.ApplyAdjustment(signedAmount)
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Int64("account_id", accountID).
			Str("balance", account.Balance.StringFixedBank(domain.MoneyScale)).
			Str("amount", signedAmount.StringFixedBank(domain.MoneyScale)).
			Msg("insufficient funds")
		uc.metrics.OperationRejected("adjust", domain.KindInsufficientFunds)
		return nil, fmt.Errorf("%w: account %d", err, accountID)
	}

	now := uc.now()
	if err := uc.accountRepo.UpdateBalance(ctx, tx, accountID, newBalance, now); err != nil {
		uc.metrics.OperationRejected("adjust", domain.KindOf(err))
		return nil, err
	}

	account.Balance = newBalance
	account.UpdatedAt = now

	return account, nil
}
