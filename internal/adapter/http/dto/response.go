package dto

import (
	"time"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             int64     `json:"account_id"`
	DocumentNumber string    `json:"document_number"`
	Balance        string    `json:"balance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		DocumentNumber: a.DocumentNumber,
		Balance:        a.Balance.StringFixedBank(domain.MoneyScale),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID              int64     `json:"transaction_id"`
	AccountID       int64     `json:"account_id"`
	OperationTypeID int       `json:"operation_type_id"`
	OperationType   string    `json:"operation_type"`
	Amount          string    `json:"amount"`
	EventAt         time.Time `json:"event_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		OperationTypeID: t.OperationType.ID(),
		OperationType:   t.OperationType.String(),
		Amount:          t.Amount.StringFixedBank(domain.MoneyScale),
		EventAt:         t.EventAt,
	}
}

// ConsistencyResponse reports the result of a ledger reconciliation.
type ConsistencyResponse struct {
	Status               string  `json:"status"`
	Consistent           bool    `json:"consistent"`
	TotalBalance         string  `json:"total_balance"`
	TotalAmount          string  `json:"total_amount"`
	InconsistentAccounts []int64 `json:"inconsistent_accounts,omitempty"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	status := "consistent"
	if !r.Consistent {
		status = "inconsistent"
	}
	return &ConsistencyResponse{
		Status:               status,
		Consistent:           r.Consistent,
		TotalBalance:         r.TotalBalance.StringFixedBank(domain.MoneyScale),
		TotalAmount:          r.TotalAmount.StringFixedBank(domain.MoneyScale),
		InconsistentAccounts: r.InconsistentAccounts,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
