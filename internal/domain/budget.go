package domain

// ============================================================
// Budget Guardrails
// ============================================================

// BudgetGuardrail is a per-category spending ceiling set by the user.
// Spent is accumulated from recorded expense transactions, not stored edits.
type BudgetGuardrail struct {
	ID       string   `json:"id"`
	UserID   string   `json:"user_id"`
	Category Category `json:"category"`
	Limit    float64  `json:"limit"`
	Spent    float64  `json:"spent"`
}

// Validate rejects malformed guardrails at the boundary.
func (g *BudgetGuardrail) Validate() error {
	if g.UserID == "" {
		return &ErrValidation{Field: "user_id", Message: "required"}
	}
	if !g.Category.Valid() {
		return &ErrValidation{Field: "category", Message: "unknown category: " + string(g.Category)}
	}
	if g.Limit <= 0 {
		return &ErrValidation{Field: "limit", Message: "must be positive"}
	}
	return nil
}

// Exceeded reports whether accumulated spending has crossed the ceiling.
func (g *BudgetGuardrail) Exceeded() bool {
	return g.Spent > g.Limit
}
