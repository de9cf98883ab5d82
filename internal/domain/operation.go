package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OperationType is the closed set of transaction kinds. The numeric value is the
// public operation type id.
type OperationType int

const (
	OperationCashPurchase        OperationType = 1
	OperationInstallmentPurchase OperationType = 2
	OperationWithdrawal          OperationType = 3
	OperationPayment             OperationType = 4
)

type operationInfo struct {
	name  string
	debit bool
}

var operations = map[OperationType]operationInfo{
	OperationCashPurchase:        {name: "CASH_PURCHASE", debit: true},
	OperationInstallmentPurchase: {name: "INSTALLMENT_PURCHASE", debit: true},
	OperationWithdrawal:          {name: "WITHDRAWAL", debit: true},
	OperationPayment:             {name: "PAYMENT", debit: false},
}

// OperationTypeFromID resolves a public operation type id.
func OperationTypeFromID(id int) (OperationType, error) {
	op := OperationType(id)
	if !op.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidOperationType, id)
	}

	return op, nil
}

// ParseOperationType resolves the persisted name of an operation type.
func ParseOperationType(name string) (OperationType, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for op, info := range operations {
		if info.name == name {
			return op, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidOperationType, name)
}

// Valid reports whether op is one of the known operation types.
func (op OperationType) Valid() bool {
	_, ok := operations[op]
	return ok
}

// ID returns the public operation type id.
func (op OperationType) ID() int {
	return int(op)
}

func (op OperationType) String() string {
	if info, ok := operations[op]; ok {
		return info.name
	}

	return fmt.Sprintf("OperationType(%d)", int(op))
}

// IsDebit reports whether the operation takes money out of the account.
func (op OperationType) IsDebit() bool {
	return operations[op].debit
}

// SignedAmount applies the operation's polarity to a non-negative magnitude.
func (op OperationType) SignedAmount(magnitude decimal.Decimal) decimal.Decimal {
	magnitude = RoundMoney(magnitude)
	if op.IsDebit() {
		return magnitude.Neg()
	}

	return magnitude
}
