package model

import (
	"fmt"
	"strings"
)

// Category is one of the three spending buckets of a budget period.
type Category string

const (
	CategoryMandatory     Category = "mandatory"
	CategoryBasicNeeds    Category = "basic_needs"
	CategorySuddenExpense Category = "sudden_expense"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryMandatory, CategoryBasicNeeds, CategorySuddenExpense}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryMandatory, CategoryBasicNeeds, CategorySuddenExpense:
		return true
	}
	return false
}

// Label returns the human-readable name.
func (c Category) Label() string {
	switch c {
	case CategoryMandatory:
		return "Mandatory"
	case CategoryBasicNeeds:
		return "Basic Needs"
	case CategorySuddenExpense:
		return "Sudden Expense"
	}
	return string(c)
}

// ParseCategory accepts the canonical identifiers as well as the display
// labels ("Basic Needs", "basic-needs" ...), case-insensitively.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch norm {
	case "mandatory":
		return CategoryMandatory, nil
	case "basic_needs", "basic":
		return CategoryBasicNeeds, nil
	case "sudden_expense", "sudden_expenses", "sudden":
		return CategorySuddenExpense, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}
