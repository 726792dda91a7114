// Package rrule translates recurrence rules to RFC 5545 RRULE strings for
// calendar interchange. Occurrence expansion stays in the recurrence package;
// this is serialization only.
package rrule

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"

	"movimenti/internal/core"
)

var roptions = map[core.Frequency]rrule.ROption{
	core.Weekly:     {Freq: rrule.WEEKLY},
	core.Monthly:    {Freq: rrule.MONTHLY},
	core.Bimonthly:  {Freq: rrule.MONTHLY, Interval: 2},
	core.Quarterly:  {Freq: rrule.MONTHLY, Interval: 3},
	core.Semiannual: {Freq: rrule.MONTHLY, Interval: 6},
	core.Annual:     {Freq: rrule.YEARLY},
}

// FromRule renders a rule as an RRULE string, DTSTART excluded, the way
// calendar exports expect it.
func FromRule(rule core.RecurrenceRule) (string, error) {
	if err := rule.Validate(); err != nil {
		return "", err
	}

	opt, ok := roptions[rule.Frequency]
	if !ok {
		if rule.Frequency != core.Custom {
			return "", core.ErrInvalidFrequency
		}
		opt = rrule.ROption{Freq: rrule.DAILY, Interval: rule.IntervalDays}
	}

	opt.Dtstart = rule.StartDate.Time
	if !rule.EndDate.IsZero() {
		opt.Until = rule.EndDate.Time
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return "", fmt.Errorf("building rrule: %w", err)
	}
	return r.OrigOptions.RRuleString(), nil
}

// ToRule parses an RRULE string produced by FromRule back into a rule.
// Rules from other sources parse too as long as they stay within the
// supported frequency set.
func ToRule(s string, start core.Date) (core.RecurrenceRule, error) {
	s = strings.TrimPrefix(s, "RRULE:")

	opt, err := rrule.StrToROption(s)
	if err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("parsing rrule: %w", err)
	}

	interval := opt.Interval
	if interval == 0 {
		interval = 1
	}

	rule := core.RecurrenceRule{StartDate: start, Active: true}
	switch opt.Freq {
	case rrule.WEEKLY:
		if interval != 1 {
			return core.RecurrenceRule{}, fmt.Errorf("unsupported weekly interval %d", interval)
		}
		rule.Frequency = core.Weekly
	case rrule.MONTHLY:
		switch interval {
		case 1:
			rule.Frequency = core.Monthly
		case 2:
			rule.Frequency = core.Bimonthly
		case 3:
			rule.Frequency = core.Quarterly
		case 6:
			rule.Frequency = core.Semiannual
		default:
			return core.RecurrenceRule{}, fmt.Errorf("unsupported monthly interval %d", interval)
		}
	case rrule.YEARLY:
		if interval != 1 {
			return core.RecurrenceRule{}, fmt.Errorf("unsupported yearly interval %d", interval)
		}
		rule.Frequency = core.Annual
	case rrule.DAILY:
		rule.Frequency = core.Custom
		rule.IntervalDays = interval
	default:
		return core.RecurrenceRule{}, fmt.Errorf("unsupported rrule frequency %v", opt.Freq)
	}

	if !opt.Until.IsZero() {
		rule.EndDate = core.DateOf(opt.Until)
	}

	if err := rule.Validate(); err != nil {
		return core.RecurrenceRule{}, err
	}
	return rule, nil
}

// Describe returns an English description of the rule for API payloads,
// e.g. "every 2 months until 2025-06-30".
func Describe(rule core.RecurrenceRule) string {
	var b strings.Builder

	switch rule.Frequency {
	case core.Weekly:
		b.WriteString("every week")
	case core.Monthly:
		b.WriteString("every month")
	case core.Bimonthly:
		b.WriteString("every 2 months")
	case core.Quarterly:
		b.WriteString("every 3 months")
	case core.Semiannual:
		b.WriteString("every 6 months")
	case core.Annual:
		b.WriteString("every year")
	case core.Custom:
		if rule.IntervalDays == 1 {
			b.WriteString("every day")
		} else {
			fmt.Fprintf(&b, "every %d days", rule.IntervalDays)
		}
	default:
		return string(rule.Frequency)
	}

	if !rule.StartDate.IsZero() {
		fmt.Fprintf(&b, " from %s", rule.StartDate.ISO())
	}
	if !rule.EndDate.IsZero() {
		fmt.Fprintf(&b, " until %s", rule.EndDate.ISO())
	}
	return b.String()
}

// IsRecurring reports whether a string looks like an RRULE at all.
func IsRecurring(s string) bool {
	return s != "" && strings.Contains(strings.ToUpper(s), "FREQ=")
}
