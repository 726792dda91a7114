package services

import (
	"context"
	"fmt"
	"log/slog"

	"movimenti/internal/core"
)

// TemplateStore is the storage surface the template service needs.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, t core.TransactionTemplate) (int64, error)
	GetTemplate(ctx context.Context, userID string, id int64) (core.TransactionTemplate, error)
	ListTemplates(ctx context.Context, userID string) ([]core.TransactionTemplate, error)
	CancelTemplate(ctx context.Context, userID string, id int64) error
}

// TemplateService manages recurring transaction templates. Creating a
// template also posts the origin transaction on the rule's start date. The
// row shares the template's source identity, so the calendar shows the stored
// origin rather than a duplicate projection of the same day.
type TemplateService struct {
	storage      TemplateStore
	transactions *TransactionService
}

func NewTemplateService(storage TemplateStore, transactions *TransactionService) *TemplateService {
	return &TemplateService{
		storage:      storage,
		transactions: transactions,
	}
}

// Create validates and persists a template, then records its origin
// transaction. The template is authoritative: if posting the origin fails,
// the error is logged and the template stands.
func (s *TemplateService) Create(ctx context.Context, t core.TransactionTemplate) (core.TransactionTemplate, error) {
	t.Rule.Active = true
	if err := t.Validate(); err != nil {
		return core.TransactionTemplate{}, err
	}

	id, err := s.storage.CreateTemplate(ctx, t)
	if err != nil {
		return core.TransactionTemplate{}, fmt.Errorf("save template: %w", err)
	}
	t.ID = id

	origin := core.StoredTransaction{
		UserID:      t.UserID,
		AccountID:   t.AccountID,
		TemplateID:  t.ID,
		Kind:        t.Kind,
		Date:        t.Rule.StartDate,
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Category,
	}
	if _, err := s.transactions.Record(ctx, origin); err != nil {
		slog.ErrorContext(ctx, "Failed to record origin transaction for template",
			"template_id", t.ID, "start_date", t.Rule.StartDate.ISO(), "error", err)
	}

	return t, nil
}

// Get returns one of the user's templates.
func (s *TemplateService) Get(ctx context.Context, userID string, id int64) (core.TransactionTemplate, error) {
	return s.storage.GetTemplate(ctx, userID, id)
}

// List returns all of the user's templates, cancelled ones included.
func (s *TemplateService) List(ctx context.Context, userID string) ([]core.TransactionTemplate, error) {
	return s.storage.ListTemplates(ctx, userID)
}

// Cancel deactivates a template. Already-posted occurrences stay; the
// template stops projecting new ones.
func (s *TemplateService) Cancel(ctx context.Context, userID string, id int64) error {
	if err := s.storage.CancelTemplate(ctx, userID, id); err != nil {
		return fmt.Errorf("cancel template: %w", err)
	}

	slog.InfoContext(ctx, "Template cancelled", "template_id", id, "user_id", userID)
	return nil
}
