package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestRecurrenceRuleValidate(t *testing.T) {
	start := NewDate(2024, 1, 15)

	tests := []struct {
		name    string
		rule    RecurrenceRule
		wantErr error
	}{
		{
			name: "valid monthly",
			rule: RecurrenceRule{Frequency: Monthly, StartDate: start, Active: true},
		},
		{
			name: "valid custom with interval",
			rule: RecurrenceRule{Frequency: Custom, StartDate: start, IntervalDays: 10, Active: true},
		},
		{
			name:    "custom without interval rejected",
			rule:    RecurrenceRule{Frequency: Custom, StartDate: start, Active: true},
			wantErr: ErrInvalidInterval,
		},
		{
			name:    "custom with negative interval rejected",
			rule:    RecurrenceRule{Frequency: Custom, StartDate: start, IntervalDays: -3, Active: true},
			wantErr: ErrInvalidInterval,
		},
		{
			name:    "unknown frequency rejected",
			rule:    RecurrenceRule{Frequency: Frequency("fortnightly"), StartDate: start, Active: true},
			wantErr: ErrInvalidFrequency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestRecurrenceRuleValidate_MissingStart(t *testing.T) {
	rule := RecurrenceRule{Frequency: Weekly, Active: true}
	if rule.Validate() == nil {
		t.Fatal("expected error for missing start date")
	}
}

func TestRecurrenceRuleValidate_EndBeforeStart(t *testing.T) {
	rule := RecurrenceRule{
		Frequency: Weekly,
		StartDate: NewDate(2024, 6, 1),
		EndDate:   NewDate(2024, 5, 1),
		Active:    true,
	}
	if rule.Validate() == nil {
		t.Fatal("expected error when end date precedes start date")
	}
}

func TestTransactionTemplateValidate(t *testing.T) {
	good := TransactionTemplate{
		UserID:      "u1",
		AccountID:   1,
		Kind:        Expense,
		Description: "rent",
		Amount:      Money{Cents: 95000},
		Category:    "Housing",
		Rule:        RecurrenceRule{Frequency: Monthly, StartDate: NewDate(2024, 1, 1), Active: true},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.Description = ""
	if err := bad.Validate(); !errors.Is(err, ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}

	bad = good
	bad.UserID = "  "
	if err := bad.Validate(); !errors.Is(err, ErrEmptyUser) {
		t.Fatalf("expected ErrEmptyUser, got %v", err)
	}

	bad = good
	bad.Kind = EntryKind("transfer")
	if err := bad.Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestStoredTransactionEntryIdentity(t *testing.T) {
	plain := StoredTransaction{ID: 7, UserID: "u1", Kind: Expense, Date: NewDate(2024, 2, 1),
		Description: "coffee", Amount: Money{Cents: 250}, Category: "Food"}
	if got := plain.Entry().SourceID; got != "txn-7" {
		t.Fatalf("SourceID = %q, want txn-7", got)
	}

	spawned := plain
	spawned.TemplateID = 3
	if got := spawned.Entry().SourceID; got != "tpl-3" {
		t.Fatalf("SourceID = %q, want tpl-3", got)
	}
}

func TestVirtualEntry(t *testing.T) {
	tpl := TransactionTemplate{
		ID:          12,
		UserID:      "u1",
		AccountID:   4,
		Kind:        Income,
		Description: "salary",
		Amount:      Money{Cents: 250000},
		Category:    "Work",
	}
	d := NewDate(2024, 3, 27)
	e := tpl.VirtualEntry(d)

	if !e.Virtual {
		t.Fatal("expected virtual entry")
	}
	if e.SourceID != "tpl-12" {
		t.Fatalf("SourceID = %q, want tpl-12", e.SourceID)
	}
	if !e.Date.Equal(d) {
		t.Fatalf("Date = %v, want %v", e.Date, d)
	}
	if e.TransactionID != 0 {
		t.Fatalf("TransactionID = %d, want 0", e.TransactionID)
	}
}

func TestDateArithmetic(t *testing.T) {
	a := NewDate(2024, 1, 1)
	b := NewDate(2024, 1, 8)
	if got := DaysBetween(a, b); got != 7 {
		t.Fatalf("DaysBetween = %d, want 7", got)
	}
	if got := DaysBetween(b, a); got != -7 {
		t.Fatalf("DaysBetween reversed = %d, want -7", got)
	}
	// Leap day crossing stays exact.
	if got := DaysBetween(NewDate(2024, 2, 28), NewDate(2024, 3, 1)); got != 2 {
		t.Fatalf("DaysBetween across leap day = %d, want 2", got)
	}
	if got := MonthsBetween(NewDate(2024, 1, 15), NewDate(2025, 3, 2)); got != 14 {
		t.Fatalf("MonthsBetween = %d, want 14", got)
	}
	if got := MonthsBetween(NewDate(2024, 5, 1), NewDate(2024, 2, 28)); got != -3 {
		t.Fatalf("MonthsBetween negative = %d, want -3", got)
	}
}

func TestDateISO(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.ISO() != "2024-02-29" {
		t.Fatalf("ISO round trip = %q", d.ISO())
	}
	if _, err := ParseDate("2024-13-01"); !errors.Is(err, ErrUnparsableDate) {
		t.Fatalf("expected ErrUnparsableDate, got %v", err)
	}
	if _, err := ParseDate("29/02/2024"); !errors.Is(err, ErrUnparsableDate) {
		t.Fatalf("expected ErrUnparsableDate, got %v", err)
	}
}

func TestMonthBounds(t *testing.T) {
	d := NewDate(2024, 2, 14)
	if got := d.MonthStart(); !got.Equal(NewDate(2024, 2, 1)) {
		t.Fatalf("MonthStart = %v", got)
	}
	if got := d.MonthEnd(); !got.Equal(NewDate(2024, 2, 29)) {
		t.Fatalf("MonthEnd = %v, want leap-year Feb 29", got)
	}
	if got := NewDate(2023, 2, 1).MonthEnd(); !got.Equal(NewDate(2023, 2, 28)) {
		t.Fatalf("MonthEnd non-leap = %v", got)
	}
}

func TestSummarizeByMonth(t *testing.T) {
	entries := []CalendarEntry{
		{Date: NewDate(2024, 1, 5), Kind: Expense, Amount: Money{Cents: 1000}, Category: "Food"},
		{Date: NewDate(2024, 1, 20), Kind: Income, Amount: Money{Cents: 5000}, Category: "Work"},
		{Date: NewDate(2024, 2, 3), Kind: Expense, Amount: Money{Cents: 700}, Category: "Food"},
		{Date: NewDate(2024, 2, 9), Kind: Expense, Amount: Money{Cents: 300}, Category: "Food"},
	}
	sums := SummarizeByMonth(entries)
	if len(sums) != 2 {
		t.Fatalf("got %d summaries, want 2", len(sums))
	}
	jan := sums[0]
	if jan.Year != 2024 || jan.Month != 1 {
		t.Fatalf("first summary is %d-%d, want 2024-1", jan.Year, jan.Month)
	}
	if jan.Expenses.Cents != 1000 || jan.Income.Cents != 5000 || jan.NetCents != 4000 {
		t.Fatalf("jan totals = %+v", jan)
	}
	feb := sums[1]
	if feb.NetCents != -1000 {
		t.Fatalf("feb net = %d, want -1000", feb.NetCents)
	}
	if len(feb.ByCategory) != 1 || feb.ByCategory[0].Cents != -1000 {
		t.Fatalf("feb categories = %+v", feb.ByCategory)
	}
}
