package core

import (
	"errors"
	"time"
)

const (
	SpendingLimit ObjectiveKind = "spending_limit"
	SavingsTarget ObjectiveKind = "savings_target"
)

const (
	OriginUser   ObjectiveOrigin = "user"
	OriginSystem ObjectiveOrigin = "system"
)

const (
	ObjectiveActive   ObjectiveStatus = "active"
	ObjectiveAchieved ObjectiveStatus = "achieved"
	ObjectiveFailed   ObjectiveStatus = "failed"
)

const MaxObjectivePoints = 1000

var ErrInvalidObjective = errors.New("invalid objective")

type (
	ObjectiveKind   string
	ObjectiveOrigin string
	ObjectiveStatus string

	// Objective is a spending or savings target for one month.
	Objective struct {
		ID          int64
		UserID      int64
		Title       string
		Kind        ObjectiveKind
		Origin      ObjectiveOrigin
		TemplateKey string // set only for system objectives
		CategoryID  *int64 // spending_limit scope, nil means all expenses
		Target      Money
		Period      Period
		Points      int
		Status      ObjectiveStatus
		Progress    Money
		EvaluatedAt time.Time
		CreatedAt   time.Time
	}

	// AchievementLog records one objective status transition.
	AchievementLog struct {
		ID          int64
		UserID      int64
		ObjectiveID int64
		Event       ObjectiveStatus
		Points      int
		Message     string
		CreatedAt   time.Time
	}
)

func (k ObjectiveKind) Valid() bool {
	return k == SpendingLimit || k == SavingsTarget
}

func (o Objective) Validate() error {
	if err := validateTitle(o.Title); err != nil {
		return err
	}
	if !o.Kind.Valid() {
		return fieldErr("kind", ErrInvalidObjective)
	}
	if o.Kind == SavingsTarget && o.CategoryID != nil {
		return fieldErr("category_id", errors.New("savings targets cannot be scoped to a category"))
	}
	if err := o.Target.Validate(); err != nil {
		return fieldErr("target", err)
	}
	if err := o.Period.Validate(); err != nil {
		return fieldErr("period", err)
	}
	if o.Points < 0 || o.Points > MaxObjectivePoints {
		return fieldErr("points", errors.New("points must be between 0 and 1000"))
	}
	return nil
}

func (o Objective) IsActive() bool { return o.Status == ObjectiveActive }

// Outcome decides the status given measured progress. Spending limits fail
// as soon as they are exceeded; savings targets succeed as soon as they are
// met. Anything else is settled once the period has ended.
func (o Objective) Outcome(progress Money, today Date) ObjectiveStatus {
	ended := o.Period.Ended(today)
	switch o.Kind {
	case SpendingLimit:
		if progress.Cents > o.Target.Cents {
			return ObjectiveFailed
		}
		if ended {
			return ObjectiveAchieved
		}
	case SavingsTarget:
		if progress.Cents >= o.Target.Cents {
			return ObjectiveAchieved
		}
		if ended {
			return ObjectiveFailed
		}
	}
	return ObjectiveActive
}
