package dto

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
)

func TestCreateAccountRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{name: "valid", doc: "12345678900"},
		{name: "empty", doc: "", wantErr: true},
		{name: "blank", doc: "   ", wantErr: true},
		{name: "too long", doc: strings.Repeat("1", domain.MaxDocumentNumberLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &CreateAccountRequest{DocumentNumber: tt.doc}
			err := req.Validate()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidDocumentNumber) {
					t.Fatalf("expected ErrInvalidDocumentNumber, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateTransactionRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		key     string
		wantErr error
	}{
		{name: "valid string amount", body: `{"account_id":1,"operation_type_id":4,"amount":"123.45"}`, key: "k1"},
		{name: "valid numeric amount", body: `{"account_id":1,"operation_type_id":1,"amount":50.5}`, key: "k1"},
		{name: "missing account", body: `{"operation_type_id":4,"amount":"1.00"}`, key: "k1", wantErr: domain.ErrInvalidAccountID},
		{name: "zero account", body: `{"account_id":0,"operation_type_id":4,"amount":"1.00"}`, key: "k1", wantErr: domain.ErrInvalidAccountID},
		{name: "unknown operation", body: `{"account_id":1,"operation_type_id":9,"amount":"1.00"}`, key: "k1", wantErr: domain.ErrInvalidOperationType},
		{name: "missing operation", body: `{"account_id":1,"amount":"1.00"}`, key: "k1", wantErr: domain.ErrInvalidOperationType},
		{name: "missing amount", body: `{"account_id":1,"operation_type_id":4}`, key: "k1", wantErr: domain.ErrInvalidAmount},
		{name: "negative amount", body: `{"account_id":1,"operation_type_id":4,"amount":"-1.00"}`, key: "k1", wantErr: domain.ErrInvalidAmount},
		{name: "zero amount", body: `{"account_id":1,"operation_type_id":4,"amount":"0"}`, key: "k1", wantErr: domain.ErrInvalidAmount},
		{name: "three decimals", body: `{"account_id":1,"operation_type_id":4,"amount":"1.001"}`, key: "k1", wantErr: domain.ErrInvalidAmount},
		{name: "too many integer digits", body: `{"account_id":1,"operation_type_id":4,"amount":"1000000000000.00"}`, key: "k1", wantErr: domain.ErrInvalidAmount},
		{name: "missing key", body: `{"account_id":1,"operation_type_id":4,"amount":"1.00"}`, key: "", wantErr: domain.ErrIdempotencyKeyRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateTransactionRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			got, err := req.ToUseCaseInput(tt.key)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if domain.KindOf(err) != domain.KindBadRequest {
					t.Fatalf("expected bad request kind, got %v", domain.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.AccountID != 1 || got.IdempotencyKey != tt.key {
				t.Fatalf("unexpected input: %+v", got)
			}
		})
	}
}

func TestCreateTransactionRequest_ReportsEveryProblem(t *testing.T) {
	req := CreateTransactionRequest{}
	_, err := req.ToUseCaseInput("")

	for _, want := range []error{
		domain.ErrInvalidAccountID,
		domain.ErrInvalidOperationType,
		domain.ErrInvalidAmount,
		domain.ErrIdempotencyKeyRequired,
	} {
		if !errors.Is(err, want) {
			t.Errorf("expected error to include %v, got %v", want, err)
		}
	}
}

func TestCreateTransactionRequest_KeepsExactAmount(t *testing.T) {
	var req CreateTransactionRequest
	if err := json.Unmarshal([]byte(`{"account_id":7,"operation_type_id":3,"amount":"0.10"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got, err := req.ToUseCaseInput("key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("amount = %s", got.Amount)
	}
	if got.OperationType != domain.OperationWithdrawal {
		t.Fatalf("operation = %v", got.OperationType)
	}
}
