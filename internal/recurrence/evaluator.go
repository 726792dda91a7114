// Package recurrence implements the recurring-transaction engine: deciding
// on which calendar days a rule fires, and expanding templates into virtual
// calendar entries over a date window.
//
// Each frequency has its own checker encapsulating the matching logic. All
// arithmetic runs on core.Date values (UTC midnights), so day differences
// are whole numbers and immune to DST or timezone drift.
package recurrence

import (
	"fmt"

	"movimenti/internal/core"
)

// OccurrenceChecker is the strategy interface deciding whether a rule fires
// on a candidate day. Implementations may assume the candidate is already
// inside the rule's active window; OccursOn enforces the bounds.
type OccurrenceChecker interface {
	Matches(rule core.RecurrenceRule, candidate core.Date) bool
}

// WeeklyChecker fires every 7th day counted from the start date.
type WeeklyChecker struct{}

func (WeeklyChecker) Matches(rule core.RecurrenceRule, candidate core.Date) bool {
	return core.DaysBetween(rule.StartDate, candidate)%7 == 0
}

// MonthlyChecker fires on the start date's day of month.
//
// There is no clamping to shorter months: a rule anchored on the 31st does
// not fire in February at all. Under-reporting an occurrence is preferred
// over fabricating one on a day the user never picked.
type MonthlyChecker struct{}

func (MonthlyChecker) Matches(rule core.RecurrenceRule, candidate core.Date) bool {
	return candidate.Day() == rule.StartDate.Day()
}

// MonthStrideChecker fires on the start date's day of month, every Stride
// months. The same no-clamping policy as MonthlyChecker applies.
type MonthStrideChecker struct {
	Stride int
}

func (c MonthStrideChecker) Matches(rule core.RecurrenceRule, candidate core.Date) bool {
	if candidate.Day() != rule.StartDate.Day() {
		return false
	}
	return core.MonthsBetween(rule.StartDate, candidate)%c.Stride == 0
}

// AnnualChecker fires on the start date's month and day every year.
type AnnualChecker struct{}

func (AnnualChecker) Matches(rule core.RecurrenceRule, candidate core.Date) bool {
	return candidate.Month() == rule.StartDate.Month() &&
		candidate.Day() == rule.StartDate.Day()
}

// CustomChecker fires every IntervalDays days counted from the start date.
// A non-positive interval never matches: the rule should have been rejected
// at creation, but one that slipped into storage must not divide by zero.
type CustomChecker struct{}

func (CustomChecker) Matches(rule core.RecurrenceRule, candidate core.Date) bool {
	if rule.IntervalDays <= 0 {
		return false
	}
	return core.DaysBetween(rule.StartDate, candidate)%rule.IntervalDays == 0
}

// checkers maps each frequency to its matching strategy.
var checkers = map[core.Frequency]OccurrenceChecker{
	core.Weekly:     WeeklyChecker{},
	core.Monthly:    MonthlyChecker{},
	core.Bimonthly:  MonthStrideChecker{Stride: 2},
	core.Quarterly:  MonthStrideChecker{Stride: 3},
	core.Semiannual: MonthStrideChecker{Stride: 6},
	core.Annual:     AnnualChecker{},
	core.Custom:     CustomChecker{},
}

// Checker returns the strategy for a frequency, or an error for frequencies
// outside the closed set.
func Checker(frequency core.Frequency) (OccurrenceChecker, error) {
	c, ok := checkers[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return c, nil
}

// OccursOn reports whether the rule produces an occurrence on the candidate
// day. It is total: inactive rules, candidates outside the [start, end]
// window, unknown frequencies, and structurally broken rules all return
// false rather than erroring.
func OccursOn(rule core.RecurrenceRule, candidate core.Date) bool {
	if !rule.Active {
		return false
	}
	if rule.StartDate.IsZero() || candidate.IsZero() {
		return false
	}
	if candidate.Before(rule.StartDate) {
		return false
	}
	if !rule.EndDate.IsZero() && candidate.After(rule.EndDate) {
		return false
	}
	c, ok := checkers[rule.Frequency]
	if !ok {
		return false
	}
	return c.Matches(rule, candidate)
}
