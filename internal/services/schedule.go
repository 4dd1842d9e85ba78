// Package services holds the business operations behind the HTTP API and
// the batch workers.
//
// This file implements the recurrence rules as one strategy per frequency.
// Each rule decides whether a recurring payment is due on a given day and
// which calendar day the generated entry is booked on.
package services

import (
	"fmt"

	"finanzas/internal/core"
)

// ScheduleRule decides dueness for one frequency. last is the day of the
// previous occurrence (zero when never executed), today is the processing
// day and anchor is the payment's start date.
type ScheduleRule interface {
	IsDue(last, today, anchor core.Date) bool
	Occurrence(today, anchor core.Date) core.Date
}

type DailyRule struct{}

// IsDue returns true if the last occurrence was before today.
func (DailyRule) IsDue(last, today, _ core.Date) bool {
	return last.IsZero() || last.Before(today)
}

func (DailyRule) Occurrence(today, _ core.Date) core.Date { return today }

type WeeklyRule struct{}

// IsDue returns true if 7 or more days have passed since the last occurrence.
func (WeeklyRule) IsDue(last, today, _ core.Date) bool {
	if last.IsZero() {
		return true
	}
	return !today.Before(last.AddDays(7))
}

func (WeeklyRule) Occurrence(today, _ core.Date) core.Date { return today }

// MonthlyRule books on the anchor's day of month, clamped to the month's
// last day (31 becomes 28, 29 or 30).
type MonthlyRule struct{}

func (r MonthlyRule) IsDue(last, today, anchor core.Date) bool {
	if !last.IsZero() && !last.Before(today.Period().Start()) {
		return false
	}
	return !today.Before(r.Occurrence(today, anchor))
}

func (MonthlyRule) Occurrence(today, anchor core.Date) core.Date {
	return core.ClampedDate(today.Year(), today.Month(), anchor.Day())
}

// YearlyRule books on the anchor's month and day, clamped for 29 February.
type YearlyRule struct{}

func (r YearlyRule) IsDue(last, today, anchor core.Date) bool {
	if !last.IsZero() && last.Year() >= today.Year() {
		return false
	}
	return !today.Before(r.Occurrence(today, anchor))
}

func (YearlyRule) Occurrence(today, anchor core.Date) core.Date {
	return core.ClampedDate(today.Year(), anchor.Month(), anchor.Day())
}

var scheduleRules = map[core.Frequency]ScheduleRule{
	core.Daily:   DailyRule{},
	core.Weekly:  WeeklyRule{},
	core.Monthly: MonthlyRule{},
	core.Yearly:  YearlyRule{},
}

// RuleFor returns the rule for a frequency.
func RuleFor(every core.Frequency) (ScheduleRule, error) {
	rule, ok := scheduleRules[every]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, every)
	}
	return rule, nil
}

// NextOccurrence reports whether rp is due today and, if so, the day the
// resulting entry is booked on. Payments outside their start/end window
// are never due.
func NextOccurrence(rp core.RecurringPayment, today core.Date) (core.Date, bool, error) {
	rule, err := RuleFor(rp.Every)
	if err != nil {
		return core.Date{}, false, err
	}
	if !rp.ActiveOn(today) || !rule.IsDue(rp.LastExecution, today, rp.StartDate) {
		return core.Date{}, false, nil
	}
	on := rule.Occurrence(today, rp.StartDate)
	if on.Before(rp.StartDate) || (!rp.EndDate.IsZero() && on.After(rp.EndDate)) {
		return core.Date{}, false, nil
	}
	return on, true, nil
}
