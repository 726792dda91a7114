package services

import (
	"context"
	"fmt"

	"movimenti/internal/core"
)

// AccountStore is the storage surface the account service needs.
type AccountStore interface {
	CreateAccount(ctx context.Context, a core.Account) (int64, error)
	ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
	GetAccount(ctx context.Context, userID string, id int64) (core.Account, error)
}

// AccountService manages the registry of bank accounts and cards.
type AccountService struct {
	storage AccountStore
}

func NewAccountService(storage AccountStore) *AccountService {
	return &AccountService{storage: storage}
}

func (s *AccountService) Create(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}

	id, err := s.storage.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("save account: %w", err)
	}
	a.ID = id
	return a, nil
}

func (s *AccountService) List(ctx context.Context, userID string) ([]core.Account, error) {
	return s.storage.ListAccounts(ctx, userID)
}

func (s *AccountService) Get(ctx context.Context, userID string, id int64) (core.Account, error) {
	return s.storage.GetAccount(ctx, userID, id)
}
