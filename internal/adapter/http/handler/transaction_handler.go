package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/txledger/internal/adapter/http/dto"
	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	Record(ctx context.Context, input usecase.RecordInput) (*domain.Transaction, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	recorder TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(recorder TransactionService) *TransactionHandler {
	return &TransactionHandler{recorder: recorder}
}

// Create records a transaction against an account.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(IdempotencyKeyHeader)
	if err := domain.ValidateIdempotencyKey(key); err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(key)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	txn, err := h.recorder.Record(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}
