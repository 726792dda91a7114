package recurrence

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"movimenti/internal/core"
)

func window(from, to string) Window {
	f, err := core.ParseDate(from)
	if err != nil {
		panic(err)
	}
	t, err := core.ParseDate(to)
	if err != nil {
		panic(err)
	}
	return Window{From: f, To: t}
}

func template(id int64, freq core.Frequency, start core.Date) core.TransactionTemplate {
	return core.TransactionTemplate{
		ID:          id,
		UserID:      "u1",
		AccountID:   1,
		Kind:        core.Expense,
		Description: "subscription",
		Amount:      core.Money{Cents: 999},
		Category:    "Services",
		Rule:        activeRule(freq, start),
	}
}

func entryDates(entries []core.CalendarEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Date.ISO())
	}
	return out
}

func TestMaterialize_InvalidWindow(t *testing.T) {
	w := window("2024-05-31", "2024-01-01")
	_, err := Materialize(context.Background(), w, nil, nil)
	if !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestMaterialize_SingleDayWindow(t *testing.T) {
	w := window("2024-03-15", "2024-03-15")
	tpl := template(1, core.Monthly, core.NewDate(2024, 1, 15))

	entries, err := Materialize(context.Background(), w, []core.TransactionTemplate{tpl}, nil)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(entries) != 1 || entries[0].Date.ISO() != "2024-03-15" {
		t.Fatalf("got %v, want single entry on 2024-03-15", entryDates(entries))
	}
}

func TestMaterialize_BimonthlyOverFiveMonths(t *testing.T) {
	w := window("2024-01-01", "2024-05-31")
	tpl := template(1, core.Bimonthly, core.NewDate(2024, 1, 15))

	entries, err := Materialize(context.Background(), w, []core.TransactionTemplate{tpl}, nil)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	want := []string{"2024-01-15", "2024-03-15", "2024-05-15"}
	if got := entryDates(entries); !reflect.DeepEqual(got, want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
	for _, e := range entries {
		if !e.Virtual {
			t.Fatalf("entry on %s not virtual", e.Date.ISO())
		}
		if e.SourceID != "tpl-1" {
			t.Fatalf("SourceID = %q, want tpl-1", e.SourceID)
		}
	}
}

func TestMaterialize_AnnualFromPriorYear(t *testing.T) {
	w := window("2024-01-01", "2024-12-31")
	tpl := template(2, core.Annual, core.NewDate(2023, 6, 10))

	entries, err := Materialize(context.Background(), w, []core.TransactionTemplate{tpl}, nil)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	want := []string{"2024-06-10"}
	if got := entryDates(entries); !reflect.DeepEqual(got, want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
}

func TestMaterialize_StartInsideWindow(t *testing.T) {
	w := window("2024-01-01", "2024-01-31")
	tpl := template(3, core.Weekly, core.NewDate(2024, 1, 10))

	entries, err := Materialize(context.Background(), w, []core.TransactionTemplate{tpl}, nil)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	want := []string{"2024-01-10", "2024-01-17", "2024-01-24", "2024-01-31"}
	if got := entryDates(entries); !reflect.DeepEqual(got, want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
	for _, e := range entries {
		if !e.Virtual {
			t.Fatalf("entry on %s not virtual", e.Date.ISO())
		}
	}
}

func TestMaterialize_OriginRowSupersedesFirstProjection(t *testing.T) {
	// Creating a template posts its origin transaction on the start date.
	// That row shares the template's source identity, so when the window
	// covers the start date only the stored row appears for it.
	w := window("2024-01-01", "2024-01-31")
	tpl := template(3, core.Weekly, core.NewDate(2024, 1, 10))
	origin := core.StoredTransaction{
		ID:          7,
		UserID:      "u1",
		AccountID:   1,
		TemplateID:  3,
		Kind:        core.Expense,
		Date:        core.NewDate(2024, 1, 10),
		Description: "subscription",
		Amount:      core.Money{Cents: 999},
		Category:    "Services",
	}

	entries, err := Materialize(context.Background(), w,
		[]core.TransactionTemplate{tpl}, []core.StoredTransaction{origin})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	want := []string{"2024-01-10", "2024-01-17", "2024-01-24", "2024-01-31"}
	if got := entryDates(entries); !reflect.DeepEqual(got, want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
	first := entries[0]
	if first.Virtual || first.TransactionID != 7 || first.SourceID != "tpl-3" {
		t.Fatalf("start-date entry = %+v, want stored origin row", first)
	}
	for _, e := range entries[1:] {
		if !e.Virtual {
			t.Fatalf("entry on %s not virtual", e.Date.ISO())
		}
	}
}

func TestMaterialize_StoredSupersedesVirtual(t *testing.T) {
	w := window("2024-02-01", "2024-03-31")
	tpl := template(5, core.Monthly, core.NewDate(2024, 1, 20))
	posted := core.StoredTransaction{
		ID:          42,
		UserID:      "u1",
		AccountID:   1,
		TemplateID:  5,
		Kind:        core.Expense,
		Date:        core.NewDate(2024, 2, 20),
		Description: "subscription",
		Amount:      core.Money{Cents: 1099}, // price went up when posted
		Category:    "Services",
	}

	entries, err := Materialize(context.Background(), w,
		[]core.TransactionTemplate{tpl}, []core.StoredTransaction{posted})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	want := []string{"2024-02-20", "2024-03-20"}
	if got := entryDates(entries); !reflect.DeepEqual(got, want) {
		t.Fatalf("dates = %v, want %v", got, want)
	}
	feb := entries[0]
	if feb.Virtual {
		t.Fatal("posted occurrence replaced by a projection")
	}
	if feb.TransactionID != 42 || feb.Amount.Cents != 1099 {
		t.Fatalf("stored entry not preserved: %+v", feb)
	}
	if !entries[1].Virtual {
		t.Fatal("March occurrence should still be a projection")
	}
}

func TestMaterialize_NoDuplicateIdentity(t *testing.T) {
	w := window("2024-01-01", "2024-06-30")
	templates := []core.TransactionTemplate{
		template(1, core.Monthly, core.NewDate(2023, 12, 5)),
		template(2, core.Weekly, core.NewDate(2023, 11, 6)),
	}
	stored := []core.StoredTransaction{
		{ID: 1, UserID: "u1", TemplateID: 1, Kind: core.Expense, Date: core.NewDate(2024, 2, 5),
			Description: "subscription", Amount: core.Money{Cents: 999}, Category: "Services"},
		{ID: 2, UserID: "u1", Kind: core.Income, Date: core.NewDate(2024, 2, 5),
			Description: "refund", Amount: core.Money{Cents: 500}, Category: "Misc"},
	}

	entries, err := Materialize(context.Background(), w, templates, stored)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	seen := map[string]bool{}
	for _, e := range entries {
		k := e.SourceID + "|" + e.Date.ISO()
		if seen[k] {
			t.Fatalf("duplicate identity %s", k)
		}
		seen[k] = true
	}
}

func TestMaterialize_Idempotent(t *testing.T) {
	w := window("2024-01-01", "2024-03-31")
	templates := []core.TransactionTemplate{
		template(1, core.Monthly, core.NewDate(2023, 6, 28)),
		template(2, core.Weekly, core.NewDate(2023, 12, 4)),
	}
	stored := []core.StoredTransaction{
		{ID: 9, UserID: "u1", Kind: core.Expense, Date: core.NewDate(2024, 1, 17),
			Description: "groceries", Amount: core.Money{Cents: 4321}, Category: "Food"},
	}

	first, err := Materialize(context.Background(), w, templates, stored)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	second, err := Materialize(context.Background(), w, templates, stored)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same inputs produced different outputs")
	}
}

func TestMaterialize_Ordering(t *testing.T) {
	w := window("2024-01-01", "2024-01-31")
	templates := []core.TransactionTemplate{
		template(1, core.Weekly, core.NewDate(2023, 12, 25)), // fires Jan 1, 8, 15...
		template(2, core.Weekly, core.NewDate(2023, 12, 18)), // same weekday, same days
	}
	stored := []core.StoredTransaction{
		{ID: 3, UserID: "u1", Kind: core.Expense, Date: core.NewDate(2024, 1, 8),
			Description: "posted", Amount: core.Money{Cents: 100}, Category: "Misc"},
	}

	entries, err := Materialize(context.Background(), w, templates, stored)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	prev := core.Date{}
	for _, e := range entries {
		if !prev.IsZero() && e.Date.Before(prev) {
			t.Fatalf("entries out of date order at %s", e.Date.ISO())
		}
		prev = e.Date
	}

	// Within Jan 8 the stored row precedes the projections, and the
	// projections keep template order.
	var jan8 []core.CalendarEntry
	for _, e := range entries {
		if e.Date.ISO() == "2024-01-08" {
			jan8 = append(jan8, e)
		}
	}
	if len(jan8) != 3 {
		t.Fatalf("got %d entries on Jan 8, want 3", len(jan8))
	}
	if jan8[0].Virtual || jan8[0].SourceID != "txn-3" {
		t.Fatalf("first Jan 8 entry = %+v, want stored txn-3", jan8[0])
	}
	if jan8[1].SourceID != "tpl-1" || jan8[2].SourceID != "tpl-2" {
		t.Fatalf("projection order = %s, %s", jan8[1].SourceID, jan8[2].SourceID)
	}
}

func TestMaterialize_BrokenTemplateSkipped(t *testing.T) {
	w := window("2024-01-01", "2024-01-31")
	broken := template(1, core.Custom, core.NewDate(2023, 1, 1))
	broken.Rule.IntervalDays = 0
	healthy := template(2, core.Weekly, core.NewDate(2023, 12, 4))

	entries, err := Materialize(context.Background(), w,
		[]core.TransactionTemplate{broken, healthy}, nil)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	for _, e := range entries {
		if e.SourceID == "tpl-1" {
			t.Fatal("broken template produced an entry")
		}
	}
	if len(entries) == 0 {
		t.Fatal("healthy template produced nothing")
	}
}

func TestMaterialize_InactiveTemplateSkipped(t *testing.T) {
	w := window("2024-01-01", "2024-01-31")
	tpl := template(1, core.Weekly, core.NewDate(2023, 12, 4))
	tpl.Rule.Active = false

	entries, err := Materialize(context.Background(), w, []core.TransactionTemplate{tpl}, nil)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("inactive template produced %v", entryDates(entries))
	}
}

func TestMaterialize_RuleEndInsideWindow(t *testing.T) {
	w := window("2024-01-01", "2024-03-31")
	tpl := template(1, core.Weekly, core.NewDate(2023, 12, 4))
	tpl.Rule.EndDate = core.NewDate(2024, 1, 31)

	entries, err := Materialize(context.Background(), w, []core.TransactionTemplate{tpl}, nil)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	for _, e := range entries {
		if e.Date.After(tpl.Rule.EndDate) {
			t.Fatalf("entry on %s is past the rule end", e.Date.ISO())
		}
	}
	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5 Mondays through Jan 29", len(entries))
	}
}

func TestWindowDays(t *testing.T) {
	if got := window("2024-01-01", "2024-01-01").Days(); got != 1 {
		t.Fatalf("Days = %d, want 1", got)
	}
	if got := window("2024-01-01", "2024-01-31").Days(); got != 31 {
		t.Fatalf("Days = %d, want 31", got)
	}
	if got := window("2024-02-01", "2024-03-01").Days(); got != 30 {
		t.Fatalf("leap February Days = %d, want 30", got)
	}
}
