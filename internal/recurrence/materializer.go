package recurrence

import (
	"context"
	"log/slog"

	"movimenti/internal/core"
)

// Window is an inclusive calendar date range, matching how a calendar view
// displays whole days.
type Window struct {
	From core.Date
	To   core.Date
}

func (w Window) Validate() error {
	if err := w.From.Validate(); err != nil {
		return err
	}
	if err := w.To.Validate(); err != nil {
		return err
	}
	if w.From.After(w.To) {
		return core.ErrInvalidRange
	}
	return nil
}

// Days returns the number of days the window spans, bounds included.
func (w Window) Days() int {
	return core.DaysBetween(w.From, w.To) + 1
}

// Materialize expands recurring templates into virtual calendar entries over
// the window and merges them with the stored transactions supplied for the
// same window. The result is ordered by occurrence date ascending; within a
// day, stored entries come first in input order, then virtual entries in
// template order.
//
// Policies:
//   - No two output entries share (SourceID, date). When a stored row and a
//     virtual projection collide, the stored row wins. The origin transaction
//     posted at template creation carries the template's source identity, so
//     a template starting inside the window never counts its first day twice.
//   - A malformed template is skipped and logged; it never aborts the call.
//
// The walk is O(window days x templates). Windows are a couple of months and
// template counts are in the tens, so no analytic next-occurrence index is
// needed.
func Materialize(ctx context.Context, w Window, templates []core.TransactionTemplate, stored []core.StoredTransaction) ([]core.CalendarEntry, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	storedByDay := make(map[string][]core.CalendarEntry)
	for _, txn := range stored {
		if txn.Date.IsZero() {
			slog.WarnContext(ctx, "Skipping stored transaction without a date", "transaction_id", txn.ID)
			continue
		}
		key := txn.Date.ISO()
		storedByDay[key] = append(storedByDay[key], txn.Entry())
	}

	eligible := eligibleTemplates(ctx, templates)

	seen := make(map[string]struct{})
	entries := make([]core.CalendarEntry, 0, len(stored))

	for d := w.From; !d.After(w.To); d = d.AddDays(1) {
		day := d.ISO()
		for _, e := range storedByDay[day] {
			k := e.SourceID + "|" + day
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			entries = append(entries, e)
		}
		for _, t := range eligible {
			if !OccursOn(t.Rule, d) {
				continue
			}
			e := t.VirtualEntry(d)
			k := e.SourceID + "|" + day
			if _, dup := seen[k]; dup {
				// A posted occurrence supersedes the projection.
				continue
			}
			seen[k] = struct{}{}
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// eligibleTemplates filters out templates that must not produce virtual
// entries, logging each skip so a bad template is visible without failing
// the others.
func eligibleTemplates(ctx context.Context, templates []core.TransactionTemplate) []core.TransactionTemplate {
	out := make([]core.TransactionTemplate, 0, len(templates))
	for _, t := range templates {
		rule := t.Rule
		switch {
		case !rule.Active:
			continue
		case rule.StartDate.IsZero():
			slog.WarnContext(ctx, "Skipping template without a start date", "template_id", t.ID)
			continue
		case rule.Frequency == core.Custom && rule.IntervalDays <= 0:
			slog.WarnContext(ctx, "Skipping template with invalid custom interval",
				"template_id", t.ID, "interval_days", rule.IntervalDays)
			continue
		case !rule.Frequency.Valid():
			slog.WarnContext(ctx, "Skipping template with unknown frequency",
				"template_id", t.ID, "frequency", string(rule.Frequency))
			continue
		}
		out = append(out, t)
	}
	return out
}
