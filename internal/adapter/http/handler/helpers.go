package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/txledger/internal/adapter/http/dto"
	"github.com/iho/txledger/internal/domain"
)

// IdempotencyKeyHeader carries the client supplied idempotency key.
const IdempotencyKeyHeader = "Idempotency-Key"

// retryAfterSeconds is advertised on transient failures.
const retryAfterSeconds = 1

// Client facing messages.
const (
	MsgAccountNotFound        = "Account not found"
	MsgInsufficientFunds      = "Insufficient funds"
	MsgAccountExists          = "Account already exists"
	MsgInvalidOperationType   = "Invalid operation type"
	MsgIdempotencyKeyRequired = "Idempotency key is required"
	MsgInvalidRequest         = "Invalid request"
	MsgConflict               = "Request conflicts with an existing resource"
	MsgLockTimeout            = "Account is busy, retry later"
	MsgUnavailable            = "Service temporarily unavailable"
	MsgInternal               = "Internal server error"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// statusForKind maps an error kind to an HTTP status code.
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case domain.KindLockTimeout, domain.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client facing message for err.
func messageFor(err error, kind domain.ErrorKind) string {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return MsgAccountNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return MsgInsufficientFunds
	case errors.Is(err, domain.ErrAccountExists), errors.Is(err, domain.ErrDuplicateDocumentNumber):
		return MsgAccountExists
	case errors.Is(err, domain.ErrInvalidOperationType):
		return MsgInvalidOperationType
	case errors.Is(err, domain.ErrIdempotencyKeyRequired):
		return MsgIdempotencyKeyRequired
	}

	switch kind {
	case domain.KindBadRequest:
		return MsgInvalidRequest
	case domain.KindConflict:
		return MsgConflict
	case domain.KindLockTimeout:
		return MsgLockTimeout
	case domain.KindUnavailable:
		return MsgUnavailable
	default:
		return MsgInternal
	}
}

// writeDomainError classifies err and writes the matching response.
// Internal errors are logged and their details withheld from the client.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusForKind(kind)

	if domain.IsTransient(err) {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}

	details := err.Error()
	if kind == domain.KindInternal {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		details = ""
	}

	writeError(w, status, messageFor(err, kind), details)
}

// parseID parses a positive integer identifier.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidAccountID
	}
	if err := domain.ValidateAccountID(id); err != nil {
		return 0, err
	}
	return id, nil
}
