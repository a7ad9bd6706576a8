package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/familybudget/backend/pkg/datetime"
	"github.com/familybudget/backend/pkg/money"
)

// PeriodKey identifies a budget month.
type PeriodKey struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// PeriodOf returns the UTC month containing t.
func PeriodOf(t time.Time) PeriodKey {
	t = t.UTC()
	return PeriodKey{Month: int(t.Month()), Year: t.Year()}
}

// Valid reports whether the key names a real month.
func (k PeriodKey) Valid() bool {
	return datetime.ValidMonth(k.Month) && k.Year > 0
}

func (k PeriodKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, k.Month)
}

// BudgetPeriod is one declaration of a monthly budget. Rows are append-only;
// the most recent row for a (user, month, year) is the active one.
type BudgetPeriod struct {
	ID                  int64        `db:"id" json:"id"`
	UserID              uuid.UUID    `db:"user_id" json:"userId"`
	Month               int          `db:"month" json:"month"`
	Year                int          `db:"year" json:"year"`
	ActualSalary        money.Amount `db:"actual_salary" json:"actualSalary"`
	ActiveSalary        money.Amount `db:"active_salary" json:"activeSalary"`
	MandatoryLimit      money.Amount `db:"mandatory_limit" json:"mandatoryLimit"`
	BasicNeedsLimit     money.Amount `db:"basic_needs_limit" json:"basicNeedsLimit"`
	SuddenExpensesLimit money.Amount `db:"sudden_expenses_limit" json:"suddenExpensesLimit"`
	CreatedAt           time.Time    `db:"created_at" json:"createdAt"`
}

// Key returns the month this period budgets.
func (p *BudgetPeriod) Key() PeriodKey {
	return PeriodKey{Month: p.Month, Year: p.Year}
}

// Limit returns the configured limit for a category.
func (p *BudgetPeriod) Limit(c Category) money.Amount {
	switch c {
	case CategoryMandatory:
		return p.MandatoryLimit
	case CategoryBasicNeeds:
		return p.BasicNeedsLimit
	case CategorySuddenExpense:
		return p.SuddenExpensesLimit
	}
	return 0
}

// BudgetSummary holds the running counters of a BudgetPeriod.
type BudgetSummary struct {
	ID              int64        `db:"id" json:"id"`
	PeriodID        int64        `db:"period_id" json:"periodId"`
	UserID          uuid.UUID    `db:"user_id" json:"userId"`
	Month           int          `db:"month" json:"month"`
	Year            int          `db:"year" json:"year"`
	MandatorySpent  money.Amount `db:"mandatory_spent" json:"mandatorySpent"`
	BasicNeedsSpent money.Amount `db:"basic_needs_spent" json:"basicNeedsSpent"`
	SuddenSpent     money.Amount `db:"sudden_spent" json:"suddenSpent"`
	Savings         money.Amount `db:"savings" json:"savings"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updatedAt"`
}

// Spent returns the spent counter for a category.
func (s *BudgetSummary) Spent(c Category) money.Amount {
	if p := s.counter(c); p != nil {
		return *p
	}
	return 0
}

// AddSpent adjusts the spent counter for a category by delta.
func (s *BudgetSummary) AddSpent(c Category, delta money.Amount) {
	if p := s.counter(c); p != nil {
		*p += delta
	}
}

// TotalSpent is the sum of the three spent counters.
func (s *BudgetSummary) TotalSpent() money.Amount {
	return s.MandatorySpent + s.BasicNeedsSpent + s.SuddenSpent
}

func (s *BudgetSummary) counter(c Category) *money.Amount {
	switch c {
	case CategoryMandatory:
		return &s.MandatorySpent
	case CategoryBasicNeeds:
		return &s.BasicNeedsSpent
	case CategorySuddenExpense:
		return &s.SuddenSpent
	}
	return nil
}

// NewSummary returns the zero-spend summary that accompanies a freshly
// opened period.
func NewSummary(p *BudgetPeriod) *BudgetSummary {
	return &BudgetSummary{
		PeriodID: p.ID,
		UserID:   p.UserID,
		Month:    p.Month,
		Year:     p.Year,
		Savings:  p.ActualSalary - p.ActiveSalary,
	}
}

// Expense is an archived spending record. Its budget month is derived from
// LoggedAt.
type Expense struct {
	ID            uuid.UUID    `db:"id" json:"id"`
	UserID        uuid.UUID    `db:"user_id" json:"userId"`
	Category      Category     `db:"category" json:"category"`
	Description   string       `db:"description" json:"description"`
	Amount        money.Amount `db:"amount" json:"amount"`
	AttachmentURL *string      `db:"attachment_url" json:"attachmentUrl,omitempty"`
	LoggedAt      time.Time    `db:"logged_at" json:"loggedAt"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
}

// Period returns the budget month the expense was charged to.
func (e *Expense) Period() PeriodKey {
	return PeriodOf(e.LoggedAt)
}

// CategoryBalance is the per-category view shown on the overview.
type CategoryBalance struct {
	Category  Category     `json:"category"`
	Label     string       `json:"label"`
	Limit     money.Amount `json:"limit"`
	Spent     money.Amount `json:"spent"`
	Remaining money.Amount `json:"remaining"`
}

// LedgerOverview is the month dashboard.
type LedgerOverview struct {
	Period          PeriodKey         `json:"period"`
	Configured      bool              `json:"configured"`
	Budget          *BudgetPeriod     `json:"budget,omitempty"`
	Summary         *BudgetSummary    `json:"summary,omitempty"`
	Categories      []CategoryBalance `json:"categories"`
	RemainingSalary money.Amount      `json:"remainingSalary"`
	TotalSavings    money.Amount      `json:"totalSavings"`
}

// ActivePeriod pairs a period with its summary.
type ActivePeriod struct {
	Period  BudgetPeriod  `json:"period"`
	Summary BudgetSummary `json:"summary"`
}

// ReconcileReport describes how an active summary compares with the expense
// archive for the same month.
type ReconcileReport struct {
	UserID             uuid.UUID    `json:"userId"`
	Period             PeriodKey    `json:"period"`
	PeriodID           int64        `json:"periodId"`
	ArchivedTotal      money.Amount `json:"archivedTotal"`
	AccountedTotal     money.Amount `json:"accountedTotal"`
	Drift              money.Amount `json:"drift"`
	NegativeCategories []Category   `json:"negativeCategories,omitempty"`
	ExpenseCount       int          `json:"expenseCount"`
}

// Consistent is true when there is no drift and no negative counter.
func (r *ReconcileReport) Consistent() bool {
	return r.Drift == 0 && len(r.NegativeCategories) == 0
}
