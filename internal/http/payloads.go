package http

import (
	"errors"
	"fmt"

	"movimenti/internal/core"
	"movimenti/internal/rrule"
)

// errInvalidRRule marks rule strings the interchange adapter cannot express.
var errInvalidRRule = errors.New("invalid rrule")

// Wire representations. Dates travel as ISO-8601 strings, amounts as decimal
// strings; both are converted exactly once, here.

type transactionPayload struct {
	ID          int64  `json:"id"`
	UserID      string `json:"user_id"`
	AccountID   int64  `json:"account_id,omitempty"`
	TemplateID  int64  `json:"template_id,omitempty"`
	Kind        string `json:"kind"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
}

type createTransactionRequest struct {
	UserID      string `json:"user_id"`
	AccountID   int64  `json:"account_id"`
	Kind        string `json:"kind"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

func (req createTransactionRequest) toTransaction() (core.StoredTransaction, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.StoredTransaction{}, err
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.StoredTransaction{}, err
	}
	return core.StoredTransaction{
		UserID:      req.UserID,
		AccountID:   req.AccountID,
		Kind:        core.EntryKind(req.Kind),
		Date:        date,
		Description: req.Description,
		Amount:      core.Money{Cents: cents},
		Category:    req.Category,
	}, nil
}

func toTransactionPayload(t core.StoredTransaction) transactionPayload {
	return transactionPayload{
		ID:          t.ID,
		UserID:      t.UserID,
		AccountID:   t.AccountID,
		TemplateID:  t.TemplateID,
		Kind:        string(t.Kind),
		Date:        t.Date.ISO(),
		Description: t.Description,
		Amount:      t.Amount.Decimal(),
		AmountCents: t.Amount.Cents,
		Category:    t.Category,
	}
}

type templatePayload struct {
	ID           int64  `json:"id"`
	UserID       string `json:"user_id"`
	AccountID    int64  `json:"account_id,omitempty"`
	Kind         string `json:"kind"`
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	AmountCents  int64  `json:"amount_cents"`
	Category     string `json:"category"`
	Frequency    string `json:"frequency"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date,omitempty"`
	IntervalDays int    `json:"interval_days,omitempty"`
	Active       bool   `json:"active"`
	RRule        string `json:"rrule,omitempty"`
	Schedule     string `json:"schedule,omitempty"`
}

type createTemplateRequest struct {
	UserID      string `json:"user_id"`
	AccountID   int64  `json:"account_id"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`

	// Either a structured rule or an RFC 5545 RRULE string.
	Frequency    string `json:"frequency"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	IntervalDays int    `json:"interval_days"`
	RRule        string `json:"rrule"`
}

func (req createTemplateRequest) toTemplate() (core.TransactionTemplate, error) {
	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		return core.TransactionTemplate{}, err
	}

	var rule core.RecurrenceRule
	if req.RRule != "" {
		rule, err = rrule.ToRule(req.RRule, start)
		if err != nil {
			return core.TransactionTemplate{}, fmt.Errorf("%w: %w", errInvalidRRule, err)
		}
	} else {
		rule = core.RecurrenceRule{
			Frequency:    core.Frequency(req.Frequency),
			StartDate:    start,
			IntervalDays: req.IntervalDays,
		}
		if req.EndDate != "" {
			rule.EndDate, err = core.ParseDate(req.EndDate)
			if err != nil {
				return core.TransactionTemplate{}, err
			}
		}
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.TransactionTemplate{}, err
	}

	return core.TransactionTemplate{
		UserID:      req.UserID,
		AccountID:   req.AccountID,
		Kind:        core.EntryKind(req.Kind),
		Description: req.Description,
		Amount:      core.Money{Cents: cents},
		Category:    req.Category,
		Rule:        rule,
	}, nil
}

func toTemplatePayload(t core.TransactionTemplate) templatePayload {
	p := templatePayload{
		ID:           t.ID,
		UserID:       t.UserID,
		AccountID:    t.AccountID,
		Kind:         string(t.Kind),
		Description:  t.Description,
		Amount:       t.Amount.Decimal(),
		AmountCents:  t.Amount.Cents,
		Category:     t.Category,
		Frequency:    string(t.Rule.Frequency),
		StartDate:    t.Rule.StartDate.ISO(),
		IntervalDays: t.Rule.IntervalDays,
		Active:       t.Rule.Active,
	}
	if !t.Rule.EndDate.IsZero() {
		p.EndDate = t.Rule.EndDate.ISO()
	}
	if s, err := rrule.FromRule(t.Rule); err == nil {
		p.RRule = s
		p.Schedule = rrule.Describe(t.Rule)
	}
	return p
}

type calendarEntryPayload struct {
	SourceID      string `json:"source_id"`
	Date          string `json:"date"`
	Virtual       bool   `json:"virtual"`
	TransactionID int64  `json:"transaction_id,omitempty"`
	TemplateID    int64  `json:"template_id,omitempty"`
	AccountID     int64  `json:"account_id,omitempty"`
	Kind          string `json:"kind"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	AmountCents   int64  `json:"amount_cents"`
	Category      string `json:"category"`
}

type categoryAmountPayload struct {
	Name  string `json:"name"`
	Cents int64  `json:"cents"`
}

type monthSummaryPayload struct {
	Year          int                     `json:"year"`
	Month         int                     `json:"month"`
	ExpensesCents int64                   `json:"expenses_cents"`
	IncomeCents   int64                   `json:"income_cents"`
	NetCents      int64                   `json:"net_cents"`
	ByCategory    []categoryAmountPayload `json:"by_category"`
}

type calendarResponse struct {
	From    string                 `json:"from"`
	To      string                 `json:"to"`
	Entries []calendarEntryPayload `json:"entries"`
	Months  []monthSummaryPayload  `json:"months"`
}

func toCalendarResponse(from, to core.Date, entries []core.CalendarEntry) calendarResponse {
	resp := calendarResponse{
		From:    from.ISO(),
		To:      to.ISO(),
		Entries: make([]calendarEntryPayload, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, calendarEntryPayload{
			SourceID:      e.SourceID,
			Date:          e.Date.ISO(),
			Virtual:       e.Virtual,
			TransactionID: e.TransactionID,
			TemplateID:    e.TemplateID,
			AccountID:     e.AccountID,
			Kind:          string(e.Kind),
			Description:   e.Description,
			Amount:        e.Amount.Decimal(),
			AmountCents:   e.Amount.Cents,
			Category:      e.Category,
		})
	}
	for _, m := range core.SummarizeByMonth(entries) {
		mp := monthSummaryPayload{
			Year:          m.Year,
			Month:         m.Month,
			ExpensesCents: m.Expenses.Cents,
			IncomeCents:   m.Income.Cents,
			NetCents:      m.NetCents,
		}
		for _, c := range m.ByCategory {
			mp.ByCategory = append(mp.ByCategory, categoryAmountPayload{Name: c.Name, Cents: c.Cents})
		}
		resp.Months = append(resp.Months, mp)
	}
	return resp
}

type accountPayload struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
}

type createAccountRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
}

func toAccountPayload(a core.Account) accountPayload {
	return accountPayload{ID: a.ID, UserID: a.UserID, Name: a.Name, Kind: string(a.Kind)}
}
