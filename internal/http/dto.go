package http

import (
	"time"

	"finanzas/internal/core"
)

// Requests

type registerRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name          *string `json:"name" validate:"omitempty,notblank,max=80"`
	MonthlyBudget *Amount `json:"monthly_budget"`
}

type entryRequest struct {
	CategoryID *int64 `json:"category_id" validate:"omitempty,gt=0"`
	Title      string `json:"title" validate:"required,notblank,max=120"`
	Amount     Amount `json:"amount" validate:"required,money"`
	Date       string `json:"date" validate:"required,date"`
	Note       string `json:"note" validate:"max=500"`
}

type categoryRequest struct {
	Name         string `json:"name" validate:"required,notblank,max=60"`
	Kind         string `json:"kind" validate:"omitempty,oneof=expense income"`
	Icon         string `json:"icon" validate:"max=40"`
	MonthlyLimit Amount `json:"monthly_limit"`
}

type recurringRequest struct {
	Title      string `json:"title" validate:"required,notblank,max=120"`
	Amount     Amount `json:"amount" validate:"required,money"`
	Kind       string `json:"kind" validate:"required,oneof=expense income"`
	CategoryID *int64 `json:"category_id" validate:"omitempty,gt=0"`
	Every      string `json:"every" validate:"required,oneof=daily weekly monthly yearly"`
	StartDate  string `json:"start_date" validate:"required,date"`
	EndDate    string `json:"end_date" validate:"omitempty,date"`
	Active     *bool  `json:"active"`
}

type objectiveRequest struct {
	Title      string `json:"title" validate:"required,notblank,max=120"`
	Kind       string `json:"kind" validate:"required,oneof=spending_limit savings_target"`
	CategoryID *int64 `json:"category_id" validate:"omitempty,gt=0"`
	Target     Amount `json:"target" validate:"required,money"`
	Year       int    `json:"year" validate:"required,gte=1970,lte=9999"`
	Month      int    `json:"month" validate:"required,gte=1,lte=12"`
	Points     int    `json:"points" validate:"gte=0,lte=1000"`
}

// Responses

type userResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	MonthlyBudget string    `json:"monthly_budget"`
	CreatedAt     time.Time `json:"created_at"`
}

func toUser(u core.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		MonthlyBudget: u.MonthlyBudget.String(),
		CreatedAt:     u.CreatedAt,
	}
}

type sessionResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type entryResponse struct {
	ID                 int64     `json:"id"`
	Kind               string    `json:"kind"`
	CategoryID         *int64    `json:"category_id"`
	Title              string    `json:"title"`
	Amount             string    `json:"amount"`
	AmountCents        int64     `json:"amount_cents"`
	Date               string    `json:"date"`
	Note               string    `json:"note,omitempty"`
	RecurringPaymentID *int64    `json:"recurring_payment_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toEntry(e core.Entry) entryResponse {
	return entryResponse{
		ID:                 e.ID,
		Kind:               string(e.Kind),
		CategoryID:         e.CategoryID,
		Title:              e.Title,
		Amount:             e.Amount.String(),
		AmountCents:        e.Amount.Cents,
		Date:               e.Date.String(),
		Note:               e.Note,
		RecurringPaymentID: e.RecurringPaymentID,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

type transactionResponse struct {
	entryResponse
	CategoryName string `json:"category_name,omitempty"`
}

type transactionPageResponse struct {
	Items  []transactionResponse `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

func toTransactionPage(p core.TransactionPage) transactionPageResponse {
	items := make([]transactionResponse, 0, len(p.Items))
	for _, t := range p.Items {
		items = append(items, transactionResponse{entryResponse: toEntry(t.Entry), CategoryName: t.CategoryName})
	}
	return transactionPageResponse{Items: items, Total: p.Total, Limit: p.Limit, Offset: p.Offset}
}

type categoryResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	Icon         string `json:"icon,omitempty"`
	MonthlyLimit string `json:"monthly_limit"`
	System       bool   `json:"system"`
}

func toCategory(c core.Category) categoryResponse {
	return categoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Kind:         string(c.Kind),
		Icon:         c.Icon,
		MonthlyLimit: c.MonthlyLimit.String(),
		System:       c.IsSystem(),
	}
}

type recurringResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Amount        string    `json:"amount"`
	Kind          string    `json:"kind"`
	CategoryID    *int64    `json:"category_id"`
	Every         string    `json:"every"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date,omitempty"`
	Active        bool      `json:"active"`
	LastExecution string    `json:"last_execution,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toRecurring(rp core.RecurringPayment) recurringResponse {
	return recurringResponse{
		ID:            rp.ID,
		Title:         rp.Title,
		Amount:        rp.Amount.String(),
		Kind:          string(rp.Kind),
		CategoryID:    rp.CategoryID,
		Every:         string(rp.Every),
		StartDate:     rp.StartDate.String(),
		EndDate:       rp.EndDate.String(),
		Active:        rp.Active,
		LastExecution: rp.LastExecution.String(),
		CreatedAt:     rp.CreatedAt,
	}
}

// runResponse is what any user may see of the shared batch log. Counts
// and error text span every user and stay in finanzasctl runs.
type runResponse struct {
	ID         int64      `json:"id"`
	RunDate    string     `json:"run_date"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     string     `json:"status"`
}

func toRun(r core.RecurringRun) runResponse {
	out := runResponse{
		ID:        r.ID,
		RunDate:   r.RunDate.String(),
		StartedAt: r.StartedAt,
		Status:    string(r.Status),
	}
	if !r.FinishedAt.IsZero() {
		t := r.FinishedAt
		out.FinishedAt = &t
	}
	return out
}

type objectiveResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Kind        string     `json:"kind"`
	Origin      string     `json:"origin"`
	TemplateKey string     `json:"template_key,omitempty"`
	CategoryID  *int64     `json:"category_id"`
	Target      string     `json:"target"`
	Period      string     `json:"period"`
	Points      int        `json:"points"`
	Status      string     `json:"status"`
	Progress    string     `json:"progress"`
	EvaluatedAt *time.Time `json:"evaluated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toObjective(o core.Objective) objectiveResponse {
	out := objectiveResponse{
		ID:          o.ID,
		Title:       o.Title,
		Kind:        string(o.Kind),
		Origin:      string(o.Origin),
		TemplateKey: o.TemplateKey,
		CategoryID:  o.CategoryID,
		Target:      o.Target.String(),
		Period:      o.Period.String(),
		Points:      o.Points,
		Status:      string(o.Status),
		Progress:    o.Progress.String(),
		CreatedAt:   o.CreatedAt,
	}
	if !o.EvaluatedAt.IsZero() {
		t := o.EvaluatedAt
		out.EvaluatedAt = &t
	}
	return out
}

func toObjectives(list []core.Objective) []objectiveResponse {
	out := make([]objectiveResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toObjective(o))
	}
	return out
}

type evaluationResponse struct {
	Objectives []objectiveResponse `json:"objectives"`
	Evaluated  int                 `json:"evaluated"`
	Achieved   int                 `json:"achieved"`
	Failed     int                 `json:"failed"`
}

type achievementResponse struct {
	ID          int64     `json:"id"`
	ObjectiveID int64     `json:"objective_id"`
	Event       string    `json:"event"`
	Points      int       `json:"points"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

type achievementsResponse struct {
	Points int                   `json:"points"`
	Items  []achievementResponse `json:"items"`
}

func toAchievements(points int, logs []core.AchievementLog) achievementsResponse {
	items := make([]achievementResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, achievementResponse{
			ID:          l.ID,
			ObjectiveID: l.ObjectiveID,
			Event:       string(l.Event),
			Points:      l.Points,
			Message:     l.Message,
			CreatedAt:   l.CreatedAt,
		})
	}
	return achievementsResponse{Points: points, Items: items}
}

type categorySpendResponse struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	Limit      string `json:"limit"`
	Remaining  string `json:"remaining"`
	OverBudget bool   `json:"over_budget"`
}

func toCategorySpend(list []core.CategorySpend) []categorySpendResponse {
	out := make([]categorySpendResponse, 0, len(list))
	for _, c := range list {
		out = append(out, categorySpendResponse{
			CategoryID: c.CategoryID,
			Name:       c.Name,
			Kind:       string(c.Kind),
			Amount:     c.Amount.String(),
			Limit:      c.Limit.String(),
			Remaining:  c.Remaining().String(),
			OverBudget: c.OverBudget(),
		})
	}
	return out
}

type summaryResponse struct {
	Period          string                  `json:"period"`
	Income          string                  `json:"income"`
	Expense         string                  `json:"expense"`
	Balance         string                  `json:"balance"`
	Budget          string                  `json:"budget"`
	BudgetRemaining string                  `json:"budget_remaining"`
	ByCategory      []categorySpendResponse `json:"by_category"`
}

func toSummary(s core.MonthSummary) summaryResponse {
	return summaryResponse{
		Period:          s.Period.String(),
		Income:          s.Income.String(),
		Expense:         s.Expense.String(),
		Balance:         s.Balance().String(),
		Budget:          s.Budget.String(),
		BudgetRemaining: s.BudgetRemaining().String(),
		ByCategory:      toCategorySpend(s.ByCategory),
	}
}
