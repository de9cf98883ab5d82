package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxDocumentNumberLength = 64
	MaxIdempotencyKeyLength = 255
	MaxAmountIntegerDigits  = 12
)

var maxAmount = decimal.New(1, MaxAmountIntegerDigits)

// ValidateAccountID validates an account identifier.
func ValidateAccountID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: must be a positive integer", ErrInvalidAccountID)
	}

	return nil
}

// ValidateDocumentNumber validates the owner document number of an account.
func ValidateDocumentNumber(documentNumber string) error {
	documentNumber = strings.TrimSpace(documentNumber)

	if documentNumber == "" {
		return fmt.Errorf("%w: document number can't be empty", ErrInvalidDocumentNumber)
	}

	if len(documentNumber) > MaxDocumentNumberLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidDocumentNumber, MaxDocumentNumberLength)
	}

	return nil
}

// ValidateIdempotencyKey validates a client supplied idempotency key.
func ValidateIdempotencyKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrIdempotencyKeyRequired
	}

	if len(key) > MaxIdempotencyKeyLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidIdempotencyKey, MaxIdempotencyKeyLength)
	}

	return nil
}

// ValidateAmount validates a transaction magnitude: positive, at most two
// fractional digits and at most MaxAmountIntegerDigits integer digits.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	if !HasMoneyScale(amount) {
		return fmt.Errorf("%w: transaction amount must have at most %d decimal places", ErrInvalidAmount, MoneyScale)
	}

	if amount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: transaction amount must have at most %d integer digits", ErrInvalidAmount, MaxAmountIntegerDigits)
	}

	return nil
}
