// Package ledger holds the pure fund-allocation rules of a budget period.
// It has no storage or transport dependencies: callers load a period and its
// summary, ask for a Plan, and persist the mutated summary inside their own
// transaction.
package ledger

import "github.com/familybudget/backend/internal/model"

// cascadeOrder lists, for each category an expense is logged under, the
// categories whose remaining limits are drained in turn before falling back
// to savings. Mandatory funds are never used for non-mandatory spending.
var cascadeOrder = map[model.Category][]model.Category{
	model.CategoryMandatory:     {model.CategoryMandatory, model.CategoryBasicNeeds, model.CategorySuddenExpense},
	model.CategoryBasicNeeds:    {model.CategoryBasicNeeds, model.CategorySuddenExpense},
	model.CategorySuddenExpense: {model.CategorySuddenExpense, model.CategoryBasicNeeds},
}

// CascadeOrder returns the draw order for expenses of category c, or nil for
// an unknown category.
func CascadeOrder(c model.Category) []model.Category {
	order, ok := cascadeOrder[c]
	if !ok {
		return nil
	}
	out := make([]model.Category, len(order))
	copy(out, order)
	return out
}
