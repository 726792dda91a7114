package services

import (
	"context"
	"errors"

	"movimenti/internal/amqp"
	"movimenti/internal/core"
)

// fakeStore is an in-memory stand-in for the SQLite repository.
type fakeStore struct {
	transactions []core.StoredTransaction
	templates    []core.TransactionTemplate
	accounts     []core.Account

	nextTxnID int64
	nextTplID int64

	createTxnErr error
	listTxnErr   error
	listTplErr   error
	closed       bool
}

var errFakeNotFound = errors.New("not found")

func (f *fakeStore) CreateTransaction(ctx context.Context, t core.StoredTransaction) (int64, error) {
	if f.createTxnErr != nil {
		return 0, f.createTxnErr
	}
	f.nextTxnID++
	t.ID = f.nextTxnID
	f.transactions = append(f.transactions, t)
	return t.ID, nil
}

func (f *fakeStore) GetTransaction(ctx context.Context, id int64) (core.StoredTransaction, error) {
	for _, t := range f.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.StoredTransaction{}, errFakeNotFound
}

func (f *fakeStore) ListTransactionsInRange(ctx context.Context, userID string, from, to core.Date) ([]core.StoredTransaction, error) {
	if f.listTxnErr != nil {
		return nil, f.listTxnErr
	}
	var out []core.StoredTransaction
	for _, t := range f.transactions {
		if t.UserID != userID || t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) SoftDeleteTransaction(ctx context.Context, userID string, id int64) error {
	for i, t := range f.transactions {
		if t.ID == id && t.UserID == userID {
			f.transactions = append(f.transactions[:i], f.transactions[i+1:]...)
			return nil
		}
	}
	return errFakeNotFound
}

func (f *fakeStore) CreateTemplate(ctx context.Context, t core.TransactionTemplate) (int64, error) {
	f.nextTplID++
	t.ID = f.nextTplID
	f.templates = append(f.templates, t)
	return t.ID, nil
}

func (f *fakeStore) GetTemplate(ctx context.Context, userID string, id int64) (core.TransactionTemplate, error) {
	for _, t := range f.templates {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return core.TransactionTemplate{}, errFakeNotFound
}

func (f *fakeStore) ListTemplates(ctx context.Context, userID string) ([]core.TransactionTemplate, error) {
	var out []core.TransactionTemplate
	for _, t := range f.templates {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) ListActiveTemplates(ctx context.Context, userID string) ([]core.TransactionTemplate, error) {
	if f.listTplErr != nil {
		return nil, f.listTplErr
	}
	var out []core.TransactionTemplate
	for _, t := range f.templates {
		if t.UserID == userID && t.Rule.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) CancelTemplate(ctx context.Context, userID string, id int64) error {
	for i, t := range f.templates {
		if t.ID == id && t.UserID == userID && t.Rule.Active {
			f.templates[i].Rule.Active = false
			return nil
		}
	}
	return errFakeNotFound
}

func (f *fakeStore) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	a.ID = int64(len(f.accounts) + 1)
	f.accounts = append(f.accounts, a)
	return a.ID, nil
}

func (f *fakeStore) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	var out []core.Account
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAccount(ctx context.Context, userID string, id int64) (core.Account, error) {
	for _, a := range f.accounts {
		if a.ID == id && a.UserID == userID {
			return a, nil
		}
	}
	return core.Account{}, errFakeNotFound
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

// fakePublisher records ledger events instead of talking to a broker.
type fakePublisher struct {
	events []*amqp.LedgerEventMessage
	err    error
	closed bool
}

func (f *fakePublisher) PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, msg)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}
