// Package services orchestrates domain operations across storage, the
// recurrence engine and the message broker.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"movimenti/internal/amqp"
	"movimenti/internal/core"
)

// ErrNotOwned is returned when a row exists but belongs to another user.
// Handlers present it exactly like a missing row.
var ErrNotOwned = errors.New("resource belongs to another user")

// TransactionStore is the storage surface the transaction service needs.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.StoredTransaction) (int64, error)
	GetTransaction(ctx context.Context, id int64) (core.StoredTransaction, error)
	ListTransactionsInRange(ctx context.Context, userID string, from, to core.Date) ([]core.StoredTransaction, error)
	SoftDeleteTransaction(ctx context.Context, userID string, id int64) error
	Close() error
}

// EventPublisher publishes ledger events for downstream consumers.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
	Close() error
}

// TransactionService writes transactions locally and notifies the export
// pipeline. The local write is authoritative; a failed publish is logged and
// never fails the request.
type TransactionService struct {
	storage   TransactionStore
	publisher EventPublisher
}

func NewTransactionService(storage TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		storage:   storage,
		publisher: publisher,
	}
}

// Record validates and persists a transaction, then publishes a created
// event.
func (s *TransactionService) Record(ctx context.Context, t core.StoredTransaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, amqp.EventTransactionCreated, id, t.UserID)
	return id, nil
}

// Get returns one of the user's transactions.
func (s *TransactionService) Get(ctx context.Context, userID string, id int64) (core.StoredTransaction, error) {
	t, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return core.StoredTransaction{}, err
	}
	if t.UserID != userID {
		return core.StoredTransaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotOwned)
	}
	return t, nil
}

// List returns the user's transactions inside the window.
func (s *TransactionService) List(ctx context.Context, userID string, from, to core.Date) ([]core.StoredTransaction, error) {
	if from.After(to) {
		return nil, core.ErrInvalidRange
	}
	return s.storage.ListTransactionsInRange(ctx, userID, from, to)
}

// Delete soft deletes a transaction and publishes a deleted event.
func (s *TransactionService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.storage.SoftDeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publish(ctx, amqp.EventTransactionDeleted, id, userID)
	return nil
}

func (s *TransactionService) publish(ctx context.Context, eventType string, id int64, userID string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping ledger event",
			"type", eventType, "transaction_id", id)
		return
	}

	msg := amqp.NewLedgerEventMessage(eventType, id, userID)
	if err := s.publisher.PublishLedgerEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", eventType, "transaction_id", id, "error", err)
	}
}

// Close closes both storage and the publisher connection.
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
