package ledger

import (
	"errors"
	"fmt"

	"github.com/familybudget/backend/internal/model"
	"github.com/familybudget/backend/pkg/money"
)

var (
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPeriodMismatch    = errors.New("summary does not belong to period")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrNegativeValue     = errors.New("must not be negative")
)

// Draw is the part of an allocation absorbed by one category.
type Draw struct {
	Category model.Category `json:"category"`
	Amount   money.Amount   `json:"amount"`
}

// Plan is a fully computed allocation. Nothing is written until Apply.
type Plan struct {
	Category    model.Category `json:"category"`
	Amount      money.Amount   `json:"amount"`
	Draws       []Draw         `json:"draws"`
	FromSavings money.Amount   `json:"fromSavings"`
}

// Remaining returns limit minus spent for category c, clamped at zero.
// Spent can exceed the limit only through drift, and can go below zero after
// reversals; the latter legitimately widens what is left.
func Remaining(period *model.BudgetPeriod, summary *model.BudgetSummary, c model.Category) money.Amount {
	r := period.Limit(c) - summary.Spent(c)
	if r < 0 {
		return 0
	}
	return r
}

// NewPlan computes how amount is spread over the cascade of category and,
// for whatever the categories cannot cover, the current period's savings.
// cumulativeSavings is the user's savings summed over all periods; it gates
// the savings draw even though only the current period is debited.
func NewPlan(period *model.BudgetPeriod, summary *model.BudgetSummary, category model.Category, amount, cumulativeSavings money.Amount) (*Plan, error) {
	order := CascadeOrder(category)
	if order == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if summary.PeriodID != period.ID {
		return nil, ErrPeriodMismatch
	}

	plan := &Plan{Category: category, Amount: amount, Draws: []Draw{}}
	required := amount
	for _, c := range order {
		if required == 0 {
			break
		}
		take := money.Min(required, Remaining(period, summary, c))
		if take <= 0 {
			continue
		}
		plan.Draws = append(plan.Draws, Draw{Category: c, Amount: take})
		required -= take
	}

	if required > 0 {
		if cumulativeSavings < required {
			return nil, fmt.Errorf("%w: %s more needed, %s in savings", ErrInsufficientFunds, required, cumulativeSavings)
		}
		plan.FromSavings = required
	}

	return plan, nil
}

// Apply mutates summary according to the plan.
func (p *Plan) Apply(summary *model.BudgetSummary) {
	for _, d := range p.Draws {
		summary.AddSpent(d.Category, d.Amount)
	}
	summary.Savings -= p.FromSavings
}

// Drawn is the part of the plan absorbed by category limits.
func (p *Plan) Drawn() money.Amount {
	var total money.Amount
	for _, d := range p.Draws {
		total += d.Amount
	}
	return total
}

// Overflowed reports whether anything beyond the nominal category was touched.
func (p *Plan) Overflowed() bool {
	if p.FromSavings > 0 {
		return true
	}
	for _, d := range p.Draws {
		if d.Category != p.Category {
			return true
		}
	}
	return false
}

// Reverse credits amount back to the nominal category only. It does not undo
// any cascade or savings draw of the original allocation, so the counter may
// go negative.
func Reverse(summary *model.BudgetSummary, category model.Category, amount money.Amount) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	summary.AddSpent(category, -amount)
	return nil
}

// RemainingSalary is active salary minus everything spent so far.
func RemainingSalary(period *model.BudgetPeriod, summary *model.BudgetSummary) money.Amount {
	return period.ActiveSalary - summary.TotalSpent()
}

// NewPeriod validates the declared salary and limits and derives the active
// salary. It returns the period together with its opening summary.
func NewPeriod(key model.PeriodKey, actualSalary, mandatory, basicNeeds, sudden money.Amount) (*model.BudgetPeriod, *model.BudgetSummary, error) {
	if !key.Valid() {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, key)
	}
	inputs := []struct {
		field string
		value money.Amount
	}{
		{"actualSalary", actualSalary},
		{"mandatoryLimit", mandatory},
		{"basicNeedsLimit", basicNeeds},
		{"suddenExpensesLimit", sudden},
	}
	for _, in := range inputs {
		if in.value < 0 {
			return nil, nil, &FieldError{Field: in.field, Err: ErrNegativeValue}
		}
	}

	active, err := money.Add(mandatory, basicNeeds)
	if err != nil {
		return nil, nil, &FieldError{Field: "basicNeedsLimit", Err: err}
	}
	if active, err = money.Add(active, sudden); err != nil {
		return nil, nil, &FieldError{Field: "suddenExpensesLimit", Err: err}
	}

	period := &model.BudgetPeriod{
		Month:               key.Month,
		Year:                key.Year,
		ActualSalary:        actualSalary,
		ActiveSalary:        active,
		MandatoryLimit:      mandatory,
		BasicNeedsLimit:     basicNeeds,
		SuddenExpensesLimit: sudden,
	}
	return period, model.NewSummary(period), nil
}

// FieldError ties a validation failure to an input field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
