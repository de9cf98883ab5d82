package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/txledger/internal/domain"
)

// PostgreSQL error codes the ledger distinguishes.
const (
	pgErrUniqueViolation           = "23505"
	pgErrCheckViolation            = "23514"
	pgErrNotNullViolation          = "23502"
	pgErrForeignKeyViolation       = "23503"
	pgErrNumericOverflow           = "22003"
	pgErrInvalidTextRepr           = "22P02"
	pgErrLockNotAvailable          = "55P03"
	pgErrQueryCanceled             = "57014"
	pgErrDeadlock                  = "40P01"
	pgErrSerializationFailure      = "40001"
	pgErrClassConnection           = "08"
	pgErrClassOperatorIntervention = "57P"
)

const (
	constraintDocumentNumber = "accounts_document_number_key"
	constraintBalance        = "accounts_balance_check"
)

// mapError translates driver errors into domain errors. The original error
// stays in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgErrUniqueViolation:
			if pgErr.ConstraintName == constraintDocumentNumber {
				return fmt.Errorf("%w: %w", domain.ErrDuplicateDocumentNumber, err)
			}
			if strings.HasSuffix(pgErr.ConstraintName, "idempotency_key_key") {
				return fmt.Errorf("%w: %w", domain.ErrDuplicateIdempotencyKey, err)
			}
		case pgErr.Code == pgErrCheckViolation:
			if pgErr.ConstraintName == constraintBalance {
				return fmt.Errorf("%w: %w", domain.ErrInsufficientFunds, err)
			}
			return fmt.Errorf("%w: %w", domain.ErrInvalidAmount, err)
		case pgErr.Code == pgErrForeignKeyViolation:
			return fmt.Errorf("%w: %w", domain.ErrAccountNotFound, err)
		case pgErr.Code == pgErrNumericOverflow,
			pgErr.Code == pgErrInvalidTextRepr,
			pgErr.Code == pgErrNotNullViolation:
			return fmt.Errorf("%w: %w", domain.ErrInvalidAmount, err)
		case pgErr.Code == pgErrLockNotAvailable:
			return fmt.Errorf("%w: %w", domain.ErrLockTimeout, err)
		case pgErr.Code == pgErrQueryCanceled,
			pgErr.Code == pgErrDeadlock,
			pgErr.Code == pgErrSerializationFailure,
			strings.HasPrefix(pgErr.Code, pgErrClassConnection),
			strings.HasPrefix(pgErr.Code, pgErrClassOperatorIntervention):
			return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
		}

		return fmt.Errorf("postgres: %w", err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
	}

	return err
}
