package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/txledger/internal/domain"
)

// withinTx runs fn in a single unit of work: an error from fn rolls everything
// back, otherwise the unit of work is committed.
func withinTx(ctx context.Context, txManager TxManager, fn func(ctx context.Context, tx Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

type outboxWriter struct {
	repo  OutboxRepository
	idGen IDGenerator
}

func (w outboxWriter) write(ctx context.Context, tx Tx, aggregateType string, aggregateID int64, eventType string, payload map[string]any, now time.Time) error {
	if w.repo == nil {
		return nil
	}

	return w.repo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            w.idGen.Generate(),
		AggregateID:   formatID(aggregateID),
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
	})
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

type nopMetrics struct{}

func (nopMetrics) AccountOpened()                                            {}
func (nopMetrics) TransactionRecorded(domain.OperationType, decimal.Decimal) {}
func (nopMetrics) OperationRejected(string, domain.ErrorKind)                {}
func (nopMetrics) ObserveAdjustDuration(time.Duration)                       {}

func metricsOrNop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return nopMetrics{}
	}

	return m
}
