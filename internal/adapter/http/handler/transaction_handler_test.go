package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/txledger/internal/adapter/http/dto"
	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

type transactionServiceStub struct {
	recordFn func(ctx context.Context, input usecase.RecordInput) (*domain.Transaction, error)
}

func (s *transactionServiceStub) Record(ctx context.Context, input usecase.RecordInput) (*domain.Transaction, error) {
	return s.recordFn(ctx, input)
}

func TestTransactionHandler_Create_Success(t *testing.T) {
	var captured usecase.RecordInput
	handler := NewTransactionHandler(&transactionServiceStub{
		recordFn: func(ctx context.Context, input usecase.RecordInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{
				ID:             10,
				AccountID:      input.AccountID,
				OperationType:  input.OperationType,
				Amount:         input.OperationType.SignedAmount(input.Amount),
				IdempotencyKey: input.IdempotencyKey,
				EventAt:        time.Now(),
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions",
		bytes.NewBufferString(`{"account_id":1,"operation_type_id":3,"amount":"80.00"}`))
	req.Header.Set(IdempotencyKeyHeader, "txn-1")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AccountID != 1 || captured.OperationType != domain.OperationWithdrawal || captured.IdempotencyKey != "txn-1" {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Amount != "-80.00" || resp.OperationTypeID != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTransactionHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		body       string
		err        error
		status     int
		retryAfter bool
	}{
		{name: "missing key", body: `{"account_id":1,"operation_type_id":4,"amount":"1.00"}`, status: http.StatusBadRequest},
		{name: "invalid json", key: "k", body: `not json`, status: http.StatusBadRequest},
		{name: "unknown operation", key: "k", body: `{"account_id":1,"operation_type_id":5,"amount":"1.00"}`, status: http.StatusBadRequest},
		{name: "negative amount", key: "k", body: `{"account_id":1,"operation_type_id":4,"amount":"-1"}`, status: http.StatusBadRequest},
		{name: "account not found", key: "k", body: `{"account_id":99,"operation_type_id":4,"amount":"1.00"}`, err: domain.ErrAccountNotFound, status: http.StatusNotFound},
		{name: "insufficient funds", key: "k", body: `{"account_id":1,"operation_type_id":1,"amount":"1.00"}`, err: fmt.Errorf("%w: account 1", domain.ErrInsufficientFunds), status: http.StatusUnprocessableEntity},
		{name: "lock timeout", key: "k", body: `{"account_id":1,"operation_type_id":1,"amount":"1.00"}`, err: domain.ErrLockTimeout, status: http.StatusServiceUnavailable, retryAfter: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransactionHandler(&transactionServiceStub{
				recordFn: func(ctx context.Context, input usecase.RecordInput) (*domain.Transaction, error) {
					if tt.err == nil {
						t.Fatalf("service should not be called")
					}
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(tt.body))
			if tt.key != "" {
				req.Header.Set(IdempotencyKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Retry-After") != ""; got != tt.retryAfter {
				t.Fatalf("Retry-After present = %v", got)
			}
		})
	}
}
