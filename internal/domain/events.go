package domain

import "time"

// Event types
const (
	EventTypeAccountOpened       = "account.opened"
	EventTypeTransactionRecorded = "transaction.recorded"
)

// Aggregate types
const (
	AggregateTypeAccount     = "account"
	AggregateTypeTransaction = "transaction"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// AccountOpenedPayload builds the payload of an account.opened event.
func AccountOpenedPayload(a *Account) map[string]any {
	return map[string]any{
		"account_id":      a.ID,
		"document_number": a.DocumentNumber,
		"balance":         a.Balance.StringFixedBank(MoneyScale),
		"created_at":      a.CreatedAt.Format(time.RFC3339Nano),
	}
}

// TransactionRecordedPayload builds the payload of a transaction.recorded event.
func TransactionRecordedPayload(t *Transaction, balance string) map[string]any {
	return map[string]any{
		"transaction_id":    t.ID,
		"account_id":        t.AccountID,
		"operation_type_id": t.OperationType.ID(),
		"operation_type":    t.OperationType.String(),
		"amount":            t.Amount.StringFixedBank(MoneyScale),
		"balance":           balance,
		"event_at":          t.EventAt.Format(time.RFC3339Nano),
	}
}
