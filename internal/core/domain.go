package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Frequency is the closed set of recurrence cadences a rule may carry.
// Unknown values never match an occurrence: the evaluator fails closed.
const (
	Weekly     Frequency = "weekly"
	Monthly    Frequency = "monthly"
	Bimonthly  Frequency = "bimonthly"
	Quarterly  Frequency = "quarterly"
	Semiannual Frequency = "semiannual"
	Annual     Frequency = "annual"
	Custom     Frequency = "custom"
)

// EntryKind distinguishes money leaving from money entering an account.
const (
	Expense EntryKind = "expense"
	Income  EntryKind = "income"
)

type (
	Frequency string

	EntryKind string

	// RecurrenceRule is the immutable cadence configuration embedded in a
	// transaction template. IntervalDays is meaningful only for Custom and
	// must be positive there; a zero EndDate means the rule is unbounded.
	RecurrenceRule struct {
		Frequency    Frequency
		StartDate    Date
		EndDate      Date
		IntervalDays int
		Active       bool
	}

	// TransactionTemplate is a persisted recurring transaction: the display
	// fields that every occurrence repeats plus the rule that decides when
	// occurrences fall. Templates are cancelled (Active flips to false),
	// never physically deleted, so past occurrences keep their referent.
	TransactionTemplate struct {
		ID          int64
		UserID      string
		AccountID   int64
		Kind        EntryKind
		Description string
		Amount      Money
		Category    string
		Rule        RecurrenceRule
	}

	// StoredTransaction is an ordinary persisted transaction row. TemplateID
	// is non-zero only when the row was spawned from a recurring template;
	// that reference is audit trail, stored rows are never re-evaluated.
	StoredTransaction struct {
		ID          int64
		UserID      string
		AccountID   int64
		TemplateID  int64
		Kind        EntryKind
		Date        Date
		Description string
		Amount      Money
		Category    string
	}

	// CalendarEntry is one element of a materialized calendar window: either
	// a stored transaction or an ephemeral virtual occurrence projected from
	// a template. Virtual entries are never written back to storage.
	CalendarEntry struct {
		SourceID      string
		Date          Date
		Virtual       bool
		TransactionID int64
		TemplateID    int64
		AccountID     int64
		Kind          EntryKind
		Description   string
		Amount        Money
		Category      string
	}

	// Account is a registered bank account or card transactions are paid
	// with.
	Account struct {
		ID     int64
		UserID string
		Name   string
		Kind   AccountKind
	}

	AccountKind string
)

const (
	BankAccount AccountKind = "bank"
	Card        AccountKind = "card"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidKind      = errors.New("invalid entry kind")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidInterval  = errors.New("custom frequency requires a positive interval in days")
	ErrMissingDate      = errors.New("missing date")
	ErrUnparsableDate   = errors.New("date is not a valid YYYY-MM-DD calendar date")
	ErrInvalidRange     = errors.New("range start is after range end")
	ErrEndBeforeStart   = errors.New("end date must not precede start date")
	ErrTooLong          = errors.New("description too long (max 200 characters)")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidAccount   = errors.New("invalid account kind")
	ErrEmptyUser        = errors.New("empty user id")
)

// Valid reports whether f is a member of the closed frequency set.
func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Monthly, Bimonthly, Quarterly, Semiannual, Annual, Custom:
		return true
	}
	return false
}

func (k EntryKind) Valid() bool {
	return k == Expense || k == Income
}

// Validate checks the structural invariants of a rule. A Custom rule without
// a positive IntervalDays is rejected here, at creation time; the evaluator
// additionally treats such a rule as producing no occurrences in case one
// already exists in storage.
func (r RecurrenceRule) Validate() error {
	if err := r.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	if !r.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if r.Frequency == Custom && r.IntervalDays <= 0 {
		return ErrInvalidInterval
	}
	if !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}

func (t TransactionTemplate) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUser
	}
	if err := t.Rule.Validate(); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	return validateDisplayFields(t.Description, t.Amount, t.Category)
}

func (t StoredTransaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUser
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	return validateDisplayFields(t.Description, t.Amount, t.Category)
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return ErrEmptyUser
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.Kind != BankAccount && a.Kind != Card {
		return ErrInvalidAccount
	}
	return nil
}

func validateDisplayFields(description string, amount Money, category string) error {
	if len(strings.TrimSpace(description)) == 0 {
		return ErrEmptyDescription
	}
	if len(description) > 200 {
		return ErrTooLong
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Entry projects a stored transaction into its calendar representation.
// Rows spawned from a template share the template's source identity so that
// a posted occurrence supersedes the virtual projection for the same day.
func (t StoredTransaction) Entry() CalendarEntry {
	sourceID := "txn-" + strconv.FormatInt(t.ID, 10)
	if t.TemplateID != 0 {
		sourceID = "tpl-" + strconv.FormatInt(t.TemplateID, 10)
	}
	return CalendarEntry{
		SourceID:      sourceID,
		Date:          t.Date,
		Virtual:       false,
		TransactionID: t.ID,
		TemplateID:    t.TemplateID,
		AccountID:     t.AccountID,
		Kind:          t.Kind,
		Description:   t.Description,
		Amount:        t.Amount,
		Category:      t.Category,
	}
}

// VirtualEntry synthesizes the template's occurrence on a specific day.
// Identity is (template, date), so repeated materialization of the same
// window is idempotent and can never collide with a stored transaction id.
func (t TransactionTemplate) VirtualEntry(d Date) CalendarEntry {
	return CalendarEntry{
		SourceID:    "tpl-" + strconv.FormatInt(t.ID, 10),
		Date:        d,
		Virtual:     true,
		TemplateID:  t.ID,
		AccountID:   t.AccountID,
		Kind:        t.Kind,
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Category,
	}
}

// Signed returns the entry amount with expenses negated, for aggregation.
func (e CalendarEntry) Signed() int64 {
	if e.Kind == Expense {
		return -e.Amount.Cents
	}
	return e.Amount.Cents
}
