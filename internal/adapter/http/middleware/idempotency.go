package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/txledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayHeader marks responses served from the replay cache.
	ReplayHeader = "X-Idempotency-Replay"
)

// cachedResponse is the stored form of a completed response.
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// IdempotencyMiddleware replays completed responses for repeated
// idempotency keys. Requests that miss the cache reach the handler, whose
// store constraints decide the outcome.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware. A
// non-positive ttl uses usecase.IdempotencyKeyTTL.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap wraps an http.Handler with the replay cache.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := zerolog.Ctx(ctx)
		cacheKey := r.Method + ":" + r.URL.Path + ":" + key

		cached, found, err := m.store.Get(ctx, cacheKey)
		if err != nil {
			logger.Warn().Err(err).Msg("replay cache lookup failed")
		}
		if found {
			var resp cachedResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(ReplayHeader, "true")
				w.WriteHeader(resp.Status)
				_, _ = w.Write(resp.Body)
				return
			}
			logger.Warn().Str("key", key).Msg("discarding malformed replay cache entry")
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode < 200 || recorder.statusCode >= 300 {
			return
		}

		payload, err := json.Marshal(cachedResponse{
			Status: recorder.statusCode,
			Body:   json.RawMessage(bytes.TrimSpace(recorder.body.Bytes())),
		})
		if err != nil {
			logger.Warn().Err(err).Msg("response is not cacheable")
			return
		}
		if err := m.store.Save(ctx, cacheKey, payload, m.ttl); err != nil {
			logger.Warn().Err(err).Msg("replay cache save failed")
		}
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
