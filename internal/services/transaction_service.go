// Package services orchestrates ledger operations: mutations go to the store
// first, then a change event is published for the sync-worker. Publishing is
// best-effort; a saved transaction is never rolled back because the broker
// was unreachable.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"divebooks/internal/core"
	"divebooks/internal/ledger"
)

// EventPublisher is the slice of the AMQP client the service needs.
type EventPublisher interface {
	PublishUpsert(ctx context.Context, id string) error
	PublishDelete(ctx context.Context, id string) error
}

type TransactionService struct {
	store  ledger.TransactionStore
	events EventPublisher
}

var _ ledger.TransactionStore = (*TransactionService)(nil)

func NewTransactionService(store ledger.TransactionStore, events EventPublisher) *TransactionService {
	return &TransactionService{store: store, events: events}
}

func (s *TransactionService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *TransactionService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.publishUpsert(ctx, created.ID)
	return created, nil
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return err
	}
	s.publishUpsert(ctx, t.ID)
	return nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	if s.events == nil {
		return nil
	}
	if err := s.events.PublishDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete event", "id", id, "error", err)
	}
	return nil
}

func (s *TransactionService) publishUpsert(ctx context.Context, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishUpsert(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish upsert event", "id", id, "error", err)
	}
}
