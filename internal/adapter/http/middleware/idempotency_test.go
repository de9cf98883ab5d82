package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeIdempotencyStore struct {
	getFn  func(ctx context.Context, key string) ([]byte, bool, error)
	saveFn func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func (f *fakeIdempotencyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.getFn != nil {
		return f.getFn(ctx, key)
	}
	return nil, false, nil
}

func (f *fakeIdempotencyStore) Save(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, key, response, ttl)
	}
	return nil
}

func TestIdempotencyMiddleware_PassesThroughOnStoreErrors(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		getFn: func(ctx context.Context, key string) ([]byte, bool, error) {
			return nil, false, context.DeadlineExceeded
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-err")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	})).ServeHTTP(rr, req)

	if !called {
		t.Fatalf("handler should run when the cache is unavailable")
	}
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_DoesNotCacheFailedResponses(t *testing.T) {
	var saved bool
	store := &fakeIdempotencyStore{
		saveFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			saved = true
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute)

	for _, status := range []int{http.StatusUnprocessableEntity, http.StatusServiceUnavailable, http.StatusInternalServerError} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`))
		req.Header.Set(IdempotencyKeyHeader, "key-fail")
		rr := httptest.NewRecorder()

		mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})).ServeHTTP(rr, req)
	}

	if saved {
		t.Fatalf("expected error responses not to be cached")
	}
}

func TestIdempotencyMiddleware_SkipsNonMutatingRequests(t *testing.T) {
	store := &fakeIdempotencyStore{
		getFn: func(ctx context.Context, key string) ([]byte, bool, error) {
			t.Fatalf("store should not be consulted")
			return nil, false, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/1", nil)
	req.Header.Set(IdempotencyKeyHeader, "key")
	rr := httptest.NewRecorder()

	called := false
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	if !called {
		t.Fatalf("expected next handler to be called")
	}
}

func TestIdempotencyMiddleware_ReturnsCachedResponse(t *testing.T) {
	var lookedUp string
	store := &fakeIdempotencyStore{
		getFn: func(ctx context.Context, key string) ([]byte, bool, error) {
			lookedUp = key
			return []byte(`{"status":201,"body":{"cached":true}}`), true, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Minute)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-123")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be called when cached response exists")
	})).ServeHTTP(rr, req)

	if lookedUp != "POST:/api/v1/transactions:key-123" {
		t.Fatalf("unexpected cache key %q", lookedUp)
	}
	if rr.Header().Get(ReplayHeader) != "true" {
		t.Fatalf("expected %s header to be set", ReplayHeader)
	}
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected replayed status 201, got %d", rr.Code)
	}
	if got := rr.Body.String(); got != `{"cached":true}` {
		t.Fatalf("unexpected cached body: %s", got)
	}
}

func TestIdempotencyMiddleware_StoresSuccessfulResponse(t *testing.T) {
	var savedBody []byte
	var savedTTL time.Duration
	store := &fakeIdempotencyStore{
		saveFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			savedBody = append([]byte(nil), response...)
			savedTTL = ttl
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-456")
	rr := httptest.NewRecorder()

	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("{\"ok\":true}\n"))
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", rr.Code)
	}
	if string(savedBody) != `{"status":201,"body":{"ok":true}}` {
		t.Fatalf("unexpected cached entry %s", string(savedBody))
	}
	if savedTTL != time.Hour {
		t.Fatalf("unexpected ttl %v", savedTTL)
	}
}
