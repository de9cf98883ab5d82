package memory

import (
	"context"
	"time"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// Create implements usecase.OutboxRepository.
func (r *OutboxRepository) Create(_ context.Context, tx usecase.Tx, event *domain.OutboxEvent) error {
	t, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	e := *event
	t.events = append(t.events, &e)

	return nil
}

// GetUnpublished implements usecase.OutboxRepository.
func (r *OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var events []*domain.OutboxEvent
	for _, e := range r.store.events {
		if len(events) >= limit {
			break
		}
		if !e.Published {
			c := *e
			events = append(events, &c)
		}
	}

	return events, nil
}

// MarkPublished implements usecase.OutboxRepository.
func (r *OutboxRepository) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}

	return nil
}
