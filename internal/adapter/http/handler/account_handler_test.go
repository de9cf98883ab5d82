package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/adapter/http/dto"
	"github.com/iho/txledger/internal/domain"
)

type accountServiceStub struct {
	openFn   func(ctx context.Context, documentNumber, idempotencyKey string) (*domain.Account, error)
	lookupFn func(ctx context.Context, accountID int64) (*domain.Account, error)
}

func (s *accountServiceStub) Open(ctx context.Context, documentNumber, idempotencyKey string) (*domain.Account, error) {
	return s.openFn(ctx, documentNumber, idempotencyKey)
}

func (s *accountServiceStub) Lookup(ctx context.Context, accountID int64) (*domain.Account, error) {
	return s.lookupFn(ctx, accountID)
}

func TestAccountHandler_Create_Success(t *testing.T) {
	var gotDoc, gotKey string
	handler := NewAccountHandler(&accountServiceStub{
		openFn: func(ctx context.Context, documentNumber, idempotencyKey string) (*domain.Account, error) {
			gotDoc, gotKey = documentNumber, idempotencyKey
			return &domain.Account{ID: 1, DocumentNumber: documentNumber, Balance: domain.ZeroMoney()}, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{DocumentNumber: " 12345678900 "})
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotDoc != "12345678900" || gotKey != "key-1" {
		t.Fatalf("unexpected arguments: doc=%q key=%q", gotDoc, gotKey)
	}
	if loc := rec.Header().Get("Location"); loc != "/api/v1/accounts/1" {
		t.Fatalf("unexpected location %q", loc)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 1 || resp.Balance != "0.00" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAccountHandler_Create_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		body   string
		openFn func(ctx context.Context, documentNumber, idempotencyKey string) (*domain.Account, error)
		status int
	}{
		{name: "missing key", body: `{"document_number":"1"}`, status: http.StatusBadRequest},
		{name: "invalid json", key: "k", body: `{`, status: http.StatusBadRequest},
		{name: "empty document", key: "k", body: `{"document_number":""}`, status: http.StatusBadRequest},
		{
			name: "conflict",
			key:  "k",
			body: `{"document_number":"1"}`,
			openFn: func(ctx context.Context, documentNumber, idempotencyKey string) (*domain.Account, error) {
				return nil, domain.ErrAccountExists
			},
			status: http.StatusConflict,
		},
		{
			name: "store unavailable",
			key:  "k",
			body: `{"document_number":"1"}`,
			openFn: func(ctx context.Context, documentNumber, idempotencyKey string) (*domain.Account, error) {
				return nil, domain.ErrUnavailable
			},
			status: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewAccountHandler(&accountServiceStub{
				openFn: func(ctx context.Context, documentNumber, idempotencyKey string) (*domain.Account, error) {
					called = true
					if tt.openFn == nil {
						t.Fatalf("service should not be called")
					}
					return tt.openFn(ctx, documentNumber, idempotencyKey)
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(tt.body))
			if tt.key != "" {
				req.Header.Set(IdempotencyKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.openFn != nil && !called {
				t.Fatalf("expected service to be called")
			}
		})
	}
}

func TestAccountHandler_Get(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		lookupFn: func(ctx context.Context, accountID int64) (*domain.Account, error) {
			if accountID != 7 {
				return nil, domain.ErrAccountNotFound
			}
			return &domain.Account{ID: 7, DocumentNumber: "doc", Balance: decimal.RequireFromString("12.5")}, nil
		},
	})

	tests := []struct {
		id     string
		status int
	}{
		{id: "7", status: http.StatusOK},
		{id: "8", status: http.StatusNotFound},
		{id: "0", status: http.StatusBadRequest},
		{id: "abc", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/accounts/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rec := httptest.NewRecorder()

			handler.Get(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status == http.StatusOK {
				var resp dto.AccountResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Balance != "12.50" {
					t.Fatalf("balance = %s", resp.Balance)
				}
			}
		})
	}
}
