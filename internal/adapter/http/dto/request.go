package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

// CreateAccountRequest represents a request to open an account.
type CreateAccountRequest struct {
	DocumentNumber string `json:"document_number"`
}

// Validate checks the request body.
func (r *CreateAccountRequest) Validate() error {
	return domain.ValidateDocumentNumber(r.DocumentNumber)
}

// Normalized returns the document number without surrounding whitespace.
func (r *CreateAccountRequest) Normalized() string {
	return strings.TrimSpace(r.DocumentNumber)
}

// CreateTransactionRequest represents a request to record a transaction.
// Pointer fields tell a missing value apart from a zero one.
type CreateTransactionRequest struct {
	AccountID       *int64           `json:"account_id"`
	OperationTypeID *int             `json:"operation_type_id"`
	Amount          *decimal.Decimal `json:"amount"`
}

// ToUseCaseInput validates the request and converts it to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput(idempotencyKey string) (usecase.RecordInput, error) {
	var errs []error

	var accountID int64
	if r.AccountID == nil {
		errs = append(errs, fmt.Errorf("%w: account_id is required", domain.ErrInvalidAccountID))
	} else if err := domain.ValidateAccountID(*r.AccountID); err != nil {
		errs = append(errs, err)
	} else {
		accountID = *r.AccountID
	}

	var op domain.OperationType
	if r.OperationTypeID == nil {
		errs = append(errs, fmt.Errorf("%w: operation_type_id is required", domain.ErrInvalidOperationType))
	} else if parsed, err := domain.OperationTypeFromID(*r.OperationTypeID); err != nil {
		errs = append(errs, err)
	} else {
		op = parsed
	}

	var amount decimal.Decimal
	if r.Amount == nil {
		errs = append(errs, fmt.Errorf("%w: amount is required", domain.ErrInvalidAmount))
	} else if err := domain.ValidateAmount(*r.Amount); err != nil {
		errs = append(errs, err)
	} else {
		amount = *r.Amount
	}

	if err := domain.ValidateIdempotencyKey(idempotencyKey); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return usecase.RecordInput{}, errors.Join(errs...)
	}

	return usecase.RecordInput{
		AccountID:      accountID,
		OperationType:  op,
		Amount:         amount,
		IdempotencyKey: idempotencyKey,
	}, nil
}
