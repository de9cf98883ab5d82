package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a customer account holding a non-negative balance.
type Account struct {
	ID             int64
	DocumentNumber string
	Balance        decimal.Decimal
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAccount returns an unsaved account with a zero balance.
func NewAccount(documentNumber, idempotencyKey string, now time.Time) *Account {
	return &Account{
		DocumentNumber: documentNumber,
		Balance:        ZeroMoney(),
		IdempotencyKey: idempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ApplyAdjustment returns the balance after adding the signed amount.
// The account itself is not modified.
func (a *Account) ApplyAdjustment(signedAmount decimal.Decimal) (decimal.Decimal, error) {
	newBalance := RoundMoney(a.Balance.Add(signedAmount))
	if newBalance.IsNegative() {
		return a.Balance, ErrInsufficientFunds
	}

	return newBalance, nil
}
