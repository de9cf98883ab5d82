package domain

import (
	"context"
	"errors"
)

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Transaction errors
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrInvalidOperationType = errors.New("invalid operation type")
	ErrInvalidAmount        = errors.New("invalid amount")

	// Request errors
	ErrInvalidAccountID       = errors.New("invalid account id")
	ErrInvalidDocumentNumber  = errors.New("invalid document number")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrInvalidIdempotencyKey  = errors.New("invalid idempotency key")

	// Store errors
	ErrDuplicateDocumentNumber = errors.New("document number already registered")
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")
	ErrLockTimeout             = errors.New("timed out waiting for account lock")
	ErrUnavailable             = errors.New("ledger store unavailable")
)

// ErrorKind classifies errors by what the caller should do about them.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindBadRequest
	KindNotFound
	KindConflict
	KindInsufficientFunds
	KindLockTimeout
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindLockTimeout:
		return "lock_timeout"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// KindOf returns the kind of err. Unknown errors are KindInternal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvalidOperationType),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidAccountID),
		errors.Is(err, ErrInvalidDocumentNumber),
		errors.Is(err, ErrIdempotencyKeyRequired),
		errors.Is(err, ErrInvalidIdempotencyKey):
		return KindBadRequest
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrTransactionNotFound):
		return KindNotFound
	case errors.Is(err, ErrAccountExists),
		errors.Is(err, ErrDuplicateDocumentNumber),
		errors.Is(err, ErrDuplicateIdempotencyKey):
		return KindConflict
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrLockTimeout):
		return KindLockTimeout
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return KindUnavailable
	default:
		return KindInternal
	}
}

// IsTransient reports whether the operation may be retried unchanged with the same
// idempotency key.
func IsTransient(err error) bool {
	switch KindOf(err) {
	case KindLockTimeout, KindUnavailable:
		return true
	default:
		return false
	}
}
