package services

import (
	"context"
	"errors"
	"testing"

	"movimenti/internal/amqp"
	"movimenti/internal/core"
)

func validTransaction() core.StoredTransaction {
	return core.StoredTransaction{
		UserID:      "u1",
		Kind:        core.Expense,
		Date:        core.NewDate(2024, 3, 15),
		Description: "groceries",
		Amount:      core.Money{Cents: 4250},
		Category:    "Food",
	}
}

func TestTransactionService_Record(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub)

	id, err := svc.Record(context.Background(), validTransaction())
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Type != amqp.EventTransactionCreated || ev.TransactionID != 1 || ev.UserID != "u1" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestTransactionService_RecordRejectsInvalid(t *testing.T) {
	store := &fakeStore{}
	svc := NewTransactionService(store, &fakePublisher{})

	txn := validTransaction()
	txn.Amount.Cents = 0
	if _, err := svc.Record(context.Background(), txn); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("Record error = %v, want ErrInvalidAmount", err)
	}
	if len(store.transactions) != 0 {
		t.Fatal("invalid transaction reached storage")
	}
}

func TestTransactionService_RecordSurvivesPublishFailure(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(store, pub)

	id, err := svc.Record(context.Background(), validTransaction())
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a persisted id despite publish failure")
	}
}

func TestTransactionService_RecordWithoutPublisher(t *testing.T) {
	svc := NewTransactionService(&fakeStore{}, nil)
	if _, err := svc.Record(context.Background(), validTransaction()); err != nil {
		t.Fatalf("Record without publisher: %v", err)
	}
}

func TestTransactionService_GetChecksOwner(t *testing.T) {
	store := &fakeStore{}
	svc := NewTransactionService(store, nil)

	id, _ := svc.Record(context.Background(), validTransaction())

	if _, err := svc.Get(context.Background(), "u1", id); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := svc.Get(context.Background(), "u2", id); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("cross-user Get error = %v, want ErrNotOwned", err)
	}
}

func TestTransactionService_Delete(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub)

	id, _ := svc.Record(context.Background(), validTransaction())

	if err := svc.Delete(context.Background(), "u1", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(pub.events) != 2 || pub.events[1].Type != amqp.EventTransactionDeleted {
		t.Fatalf("events = %+v", pub.events)
	}

	if err := svc.Delete(context.Background(), "u1", id); err == nil {
		t.Fatal("second delete should fail")
	}
}

func TestTransactionService_ListRejectsInvertedRange(t *testing.T) {
	svc := NewTransactionService(&fakeStore{}, nil)
	_, err := svc.List(context.Background(), "u1", core.NewDate(2024, 5, 1), core.NewDate(2024, 4, 1))
	if !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("List error = %v, want ErrInvalidRange", err)
	}
}

func TestTransactionService_Close(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewTransactionService(store, pub)

	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !store.closed || !pub.closed {
		t.Fatal("Close did not reach both dependencies")
	}

	nilSvc := NewTransactionService(nil, nil)
	if err := nilSvc.Close(); err != nil {
		t.Fatalf("Close with nil components: %v", err)
	}
}
