package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"movimenti/internal/core"
	"movimenti/internal/recurrence"
)

// CalendarStore is the storage surface the calendar service needs.
type CalendarStore interface {
	ListActiveTemplates(ctx context.Context, userID string) ([]core.TransactionTemplate, error)
	ListTransactionsInRange(ctx context.Context, userID string, from, to core.Date) ([]core.StoredTransaction, error)
}

// CalendarService produces the merged stored-plus-virtual view of a user's
// calendar window.
type CalendarService struct {
	storage CalendarStore
}

func NewCalendarService(storage CalendarStore) *CalendarService {
	return &CalendarService{storage: storage}
}

// DefaultWindow spans from the start of the previous month through the end of
// the current month, the range a user lands on without picking dates.
func DefaultWindow(today core.Date) recurrence.Window {
	return recurrence.Window{
		From: today.MonthStart().AddDays(-1).MonthStart(),
		To:   today.MonthEnd(),
	}
}

// Window materializes the user's calendar over the given range. Templates and
// stored transactions are fetched concurrently; both are needed before the
// merge.
func (s *CalendarService) Window(ctx context.Context, userID string, w recurrence.Window) ([]core.CalendarEntry, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	var (
		templates []core.TransactionTemplate
		stored    []core.StoredTransaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		templates, err = s.storage.ListActiveTemplates(gctx, userID)
		if err != nil {
			return fmt.Errorf("list templates: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stored, err = s.storage.ListTransactionsInRange(gctx, userID, w.From, w.To)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries, err := recurrence.Materialize(ctx, w, templates, stored)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Calendar window materialized",
		"user_id", userID,
		"window_from", w.From.ISO(),
		"window_to", w.To.ISO(),
		"entry_count", len(entries))
	return entries, nil
}

// Summaries materializes the window and aggregates it into per-month totals.
func (s *CalendarService) Summaries(ctx context.Context, userID string, w recurrence.Window) ([]core.MonthSummary, error) {
	entries, err := s.Window(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	return core.SummarizeByMonth(entries), nil
}
