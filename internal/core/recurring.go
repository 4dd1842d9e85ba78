package core

import (
	"errors"
	"time"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	RunOK      RunStatus = "ok"
	RunPartial RunStatus = "partial"
	RunFailed  RunStatus = "failed"
	RunRunning RunStatus = "running"
)

var ErrInvalidFrequency = errors.New("invalid repetition type")

type (
	Frequency string

	RunStatus string

	// RecurringPayment is a template materialized into dated entries by
	// the recurring batch.
	RecurringPayment struct {
		ID            int64
		UserID        int64
		Title         string
		Amount        Money
		Kind          TransactionKind
		CategoryID    *int64
		Every         Frequency
		StartDate     Date
		EndDate       Date // zero means open-ended
		Active        bool
		LastExecution Date // zero means never executed
		CreatedAt     time.Time
	}

	// RecurringRun is the log row of one batch execution.
	RecurringRun struct {
		ID         int64
		StartedAt  time.Time
		FinishedAt time.Time
		RunDate    Date
		Checked    int
		Created    int
		Skipped    int
		Failed     int
		Status     RunStatus
		Error      string
	}
)

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (rp RecurringPayment) Validate() error {
	if err := rp.StartDate.Validate(); err != nil {
		return fieldErr("start_date", err)
	}
	if !rp.EndDate.IsZero() && rp.EndDate.Before(rp.StartDate) {
		return fieldErr("end_date", errors.New("end date must not be before start date"))
	}
	if !rp.Every.Valid() {
		return fieldErr("every", ErrInvalidFrequency)
	}
	if !rp.Kind.Valid() {
		return fieldErr("kind", ErrInvalidKind)
	}
	if err := validateTitle(rp.Title); err != nil {
		return err
	}
	if err := rp.Amount.Validate(); err != nil {
		return fieldErr("amount", err)
	}
	return nil
}

// ActiveOn reports whether the template is enabled and date falls within
// its start/end window.
func (rp RecurringPayment) ActiveOn(date Date) bool {
	if !rp.Active {
		return false
	}
	if date.Before(rp.StartDate) {
		return false
	}
	if !rp.EndDate.IsZero() && date.After(rp.EndDate) {
		return false
	}
	return true
}

// StatusFor derives the run status from its counters.
func StatusFor(created, failed int) RunStatus {
	switch {
	case failed == 0:
		return RunOK
	case created > 0:
		return RunPartial
	default:
		return RunFailed
	}
}
