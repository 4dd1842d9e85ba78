package core

// CategorySpend is the amount booked against one category in a period.
type CategorySpend struct {
	CategoryID int64
	Name       string
	Kind       TransactionKind
	Amount     Money
	Limit      Money // zero when the category has no limit
}

// Remaining is limit minus amount, negative when over budget.
func (c CategorySpend) Remaining() Money {
	return Money{Cents: c.Limit.Cents - c.Amount.Cents}
}

func (c CategorySpend) OverBudget() bool {
	return !c.Limit.IsZero() && c.Amount.Cents > c.Limit.Cents
}

// MonthSummary is the overview of one user's month.
type MonthSummary struct {
	Period     Period
	Income     Money
	Expense    Money
	Budget     Money // user monthly budget, zero when unset
	ByCategory []CategorySpend
}

func (s MonthSummary) Balance() Money {
	return Money{Cents: s.Income.Cents - s.Expense.Cents}
}

// BudgetRemaining is budget minus expense. Zero when no budget is set.
func (s MonthSummary) BudgetRemaining() Money {
	if s.Budget.IsZero() {
		return Money{}
	}
	return Money{Cents: s.Budget.Cents - s.Expense.Cents}
}

// Budgets returns the expense rows that carry a limit or had spend.
func (s MonthSummary) Budgets() []CategorySpend {
	var out []CategorySpend
	for _, c := range s.ByCategory {
		if c.Kind == KindExpense && (!c.Limit.IsZero() || !c.Amount.IsZero()) {
			out = append(out, c)
		}
	}
	return out
}
