package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the immutable record of one applied balance adjustment.
// Amount is negative for debits and positive for credits.
type Transaction struct {
	ID             int64
	AccountID      int64
	OperationType  OperationType
	Amount         decimal.Decimal
	IdempotencyKey string
	EventAt        time.Time
}
