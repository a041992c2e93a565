// Package domain defines the core business entities for FinPulse.
// These models are independent of external services and represent the
// canonical data structures used throughout the API.
package domain

import "time"

// ============================================================
// Transactions
// ============================================================

// Category is the closed set of transaction categories.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTravel        Category = "travel"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryBills         Category = "bills"
	CategoryEMI           Category = "emi"
	CategorySubscription  Category = "subscription"
	CategoryHealth        Category = "health"
	CategoryGroceries     Category = "groceries"
	CategoryFuel          Category = "fuel"
	CategoryIncome        Category = "income"
	CategoryOther         Category = "other"
)

// AllCategories lists every valid category, in display order.
var AllCategories = []Category{
	CategoryFood, CategoryTravel, CategoryShopping, CategoryEntertainment,
	CategoryBills, CategoryEMI, CategorySubscription, CategoryHealth,
	CategoryGroceries, CategoryFuel, CategoryIncome, CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// Transaction is a single dated money movement. Immutable once recorded.
type Transaction struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id"`
	Date     time.Time       `json:"date"`
	Merchant string          `json:"merchant"`
	Category Category        `json:"category"`
	Amount   float64         `json:"amount"` // always non-negative; Type carries the sign
	Type     TransactionType `json:"type"`
}

// Validate rejects malformed transactions at the boundary so the pure
// computation layer never sees bad input.
func (t *Transaction) Validate() error {
	if t.UserID == "" {
		return &ErrValidation{Field: "user_id", Message: "required"}
	}
	if t.Date.IsZero() {
		return &ErrValidation{Field: "date", Message: "required"}
	}
	if !t.Category.Valid() {
		return &ErrValidation{Field: "category", Message: "unknown category: " + string(t.Category)}
	}
	if t.Amount < 0 {
		return &ErrValidation{Field: "amount", Message: "must be non-negative"}
	}
	if !t.Type.Valid() {
		return &ErrValidation{Field: "type", Message: "must be income or expense"}
	}
	return nil
}

// TransactionSummary aggregates a user's transactions for the dashboard header.
type TransactionSummary struct {
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	Balance       float64 `json:"balance"`
	Count         int     `json:"count"`
}
