package services

import (
	"errors"
	"testing"

	"finanzas/internal/core"
)

func d(y, m, day int) core.Date { return core.NewDate(y, m, day) }

func TestDailyRule(t *testing.T) {
	rule := DailyRule{}
	today := d(2024, 1, 15)

	tests := []struct {
		name string
		last core.Date
		want bool
	}{
		{"never executed - is due", core.Date{}, true},
		{"executed today - not due", d(2024, 1, 15), false},
		{"executed yesterday - is due", d(2024, 1, 14), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.IsDue(tt.last, today, d(2024, 1, 1)); got != tt.want {
				t.Errorf("DailyRule.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
	if got := rule.Occurrence(today, d(2024, 1, 1)); !got.Equal(today) {
		t.Errorf("Occurrence() = %s, want %s", got, today)
	}
}

func TestWeeklyRule(t *testing.T) {
	rule := WeeklyRule{}
	today := d(2024, 1, 15)

	tests := []struct {
		name string
		last core.Date
		want bool
	}{
		{"never executed - is due", core.Date{}, true},
		{"executed 3 days ago - not due", d(2024, 1, 12), false},
		{"executed 6 days ago - not due", d(2024, 1, 9), false},
		{"executed 7 days ago - is due", d(2024, 1, 8), true},
		{"executed 10 days ago - is due", d(2024, 1, 5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.IsDue(tt.last, today, d(2024, 1, 1)); got != tt.want {
				t.Errorf("WeeklyRule.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyRule(t *testing.T) {
	rule := MonthlyRule{}

	tests := []struct {
		name   string
		last   core.Date
		today  core.Date
		anchor core.Date
		want   bool
		on     core.Date
	}{
		{"never executed on anchor day", core.Date{}, d(2024, 1, 15), d(2024, 1, 10), true, d(2024, 1, 10)},
		{"never executed before anchor day", core.Date{}, d(2024, 2, 5), d(2024, 1, 10), false, d(2024, 2, 10)},
		{"executed this month - not due", d(2024, 1, 10), d(2024, 1, 15), d(2024, 1, 10), false, d(2024, 1, 10)},
		{"new month but before target day - not due", d(2024, 1, 15), d(2024, 2, 10), d(2024, 1, 15), false, d(2024, 2, 15)},
		{"new month and on target day - is due", d(2024, 1, 15), d(2024, 2, 15), d(2024, 1, 15), true, d(2024, 2, 15)},
		{"day 31 in leap February clamps to 29", d(2024, 1, 31), d(2024, 2, 29), d(2024, 1, 31), true, d(2024, 2, 29)},
		{"day 31 in February clamps to 28", d(2025, 1, 31), d(2025, 2, 28), d(2025, 1, 31), true, d(2025, 2, 28)},
		{"day 31 in April clamps to 30", d(2025, 3, 31), d(2025, 4, 30), d(2025, 1, 31), true, d(2025, 4, 30)},
		{"skipped months catch up once", d(2024, 10, 5), d(2025, 2, 20), d(2024, 1, 5), true, d(2025, 2, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.IsDue(tt.last, tt.today, tt.anchor); got != tt.want {
				t.Errorf("MonthlyRule.IsDue() = %v, want %v", got, tt.want)
			}
			if got := rule.Occurrence(tt.today, tt.anchor); !got.Equal(tt.on) {
				t.Errorf("MonthlyRule.Occurrence() = %s, want %s", got, tt.on)
			}
		})
	}
}

func TestYearlyRule(t *testing.T) {
	rule := YearlyRule{}

	tests := []struct {
		name   string
		last   core.Date
		today  core.Date
		anchor core.Date
		want   bool
	}{
		{"never executed past anchor - is due", core.Date{}, d(2024, 6, 15), d(2024, 3, 15), true},
		{"executed this year - not due", d(2024, 3, 15), d(2024, 6, 15), d(2024, 3, 15), false},
		{"new year but before target month - not due", d(2024, 6, 15), d(2025, 3, 15), d(2024, 6, 15), false},
		{"new year and past target month - is due", d(2024, 3, 15), d(2025, 6, 15), d(2024, 3, 15), true},
		{"new year same month before target day - not due", d(2024, 6, 15), d(2025, 6, 10), d(2024, 6, 15), false},
		{"new year same month on target day - is due", d(2024, 6, 15), d(2025, 6, 15), d(2024, 6, 15), true},
		{"29 February anchor in a common year", d(2024, 2, 29), d(2025, 2, 28), d(2024, 2, 29), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.IsDue(tt.last, tt.today, tt.anchor); got != tt.want {
				t.Errorf("YearlyRule.IsDue() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := rule.Occurrence(d(2025, 7, 1), d(2024, 2, 29)); !got.Equal(d(2025, 2, 28)) {
		t.Errorf("YearlyRule.Occurrence() = %s, want 2025-02-28", got)
	}
}

func TestRuleFor(t *testing.T) {
	for _, f := range []core.Frequency{core.Daily, core.Weekly, core.Monthly, core.Yearly} {
		if _, err := RuleFor(f); err != nil {
			t.Errorf("RuleFor(%s) error = %v", f, err)
		}
	}
	if _, err := RuleFor("hourly"); !errors.Is(err, core.ErrInvalidFrequency) {
		t.Errorf("RuleFor(hourly) error = %v, want ErrInvalidFrequency", err)
	}
}

func TestNextOccurrence(t *testing.T) {
	base := core.RecurringPayment{
		Every:     core.Monthly,
		StartDate: d(2025, 1, 10),
		Active:    true,
	}

	tests := []struct {
		name   string
		mutate func(*core.RecurringPayment)
		today  core.Date
		due    bool
		on     core.Date
	}{
		{"due on anchor", func(*core.RecurringPayment) {}, d(2025, 3, 12), true, d(2025, 3, 10)},
		{"inactive", func(rp *core.RecurringPayment) { rp.Active = false }, d(2025, 3, 12), false, core.Date{}},
		{"before start", func(*core.RecurringPayment) {}, d(2025, 1, 5), false, core.Date{}},
		{"after end", func(rp *core.RecurringPayment) { rp.EndDate = d(2025, 2, 28) }, d(2025, 3, 12), false, core.Date{}},
		{"end date equals occurrence", func(rp *core.RecurringPayment) { rp.EndDate = d(2025, 3, 10) }, d(2025, 3, 10), true, d(2025, 3, 10)},
		{"already executed this month", func(rp *core.RecurringPayment) { rp.LastExecution = d(2025, 3, 10) }, d(2025, 3, 20), false, core.Date{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp := base
			tt.mutate(&rp)
			on, due, err := NextOccurrence(rp, tt.today)
			if err != nil {
				t.Fatalf("NextOccurrence() error = %v", err)
			}
			if due != tt.due || !on.Equal(tt.on) {
				t.Errorf("NextOccurrence() = %s, %v; want %s, %v", on, due, tt.on, tt.due)
			}
		})
	}
}
