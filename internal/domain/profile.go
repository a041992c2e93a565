package domain

// ============================================================
// User Profile (onboarding questionnaire)
// ============================================================

// IncomeRange is the bucketed income declared at onboarding. The user never
// gives an exact figure; each bucket maps to min/max/avg numbers used by the
// metrics engine.
type IncomeRange string

const (
	IncomeBelow25k IncomeRange = "below_25k"
	Income25k50k   IncomeRange = "25k_50k"
	Income50k1L    IncomeRange = "50k_1L"
	IncomeAbove1L  IncomeRange = "above_1L"
)

// Valid reports whether r is one of the four known buckets.
func (r IncomeRange) Valid() bool {
	switch r {
	case IncomeBelow25k, Income25k50k, Income50k1L, IncomeAbove1L:
		return true
	}
	return false
}

// MoneyFeeling captures how the user says money makes them feel.
type MoneyFeeling string

const (
	FeelingConfident         MoneyFeeling = "confident"
	FeelingNeutral           MoneyFeeling = "neutral"
	FeelingSometimesStressed MoneyFeeling = "sometimes_stressed"
	FeelingOftenStressed     MoneyFeeling = "often_stressed"
)

// ReachZeroFrequency is how often the balance hits zero before month end.
type ReachZeroFrequency string

const (
	ReachZeroNever     ReachZeroFrequency = "never"
	ReachZeroRarely    ReachZeroFrequency = "rarely"
	ReachZeroSometimes ReachZeroFrequency = "sometimes"
	ReachZeroOften     ReachZeroFrequency = "often"
)

// EmergencyReadiness is how the user would cover a sudden expense.
type EmergencyReadiness string

const (
	EmergencyComfortable  EmergencyReadiness = "comfortable"
	EmergencySmallBuffer  EmergencyReadiness = "small_buffer"
	EmergencyNeedToBorrow EmergencyReadiness = "need_to_borrow"
)

// SpendingStyle is the self-declared spending pattern.
type SpendingStyle string

const (
	StylePlanner   SpendingStyle = "planner"
	StyleMixed     SpendingStyle = "mixed"
	StyleImpulsive SpendingStyle = "impulsive"
)

// Commitment tags a fixed monthly obligation.
type Commitment string

const (
	CommitmentRent       Commitment = "rent"
	CommitmentEMI        Commitment = "emi"
	CommitmentCreditCard Commitment = "credit_card"
	CommitmentInsurance  Commitment = "insurance"
	CommitmentEducation  Commitment = "education"
	CommitmentFamily     Commitment = "family_support"
	CommitmentSubs       Commitment = "subscriptions"
)

// UserProfile is the declared financial profile collected at onboarding.
// Mutations are whole-object replacements; there is no partial update.
type UserProfile struct {
	UserID             string             `json:"user_id"`
	IncomeRange        IncomeRange        `json:"income_range"`
	IncomeType         string             `json:"income_type,omitempty"` // salaried, freelance, business
	Country            string             `json:"country,omitempty"`
	Commitments        []Commitment       `json:"commitments"`
	TotalFixedAmount   float64            `json:"total_fixed_amount"`
	SpendingStyle      SpendingStyle      `json:"spending_style"`
	OverspendTrigger   string             `json:"overspend_trigger,omitempty"`
	TopImpulseCategory Category           `json:"top_impulse_category,omitempty"`
	MoneyFeeling       MoneyFeeling       `json:"money_feeling"`
	ReachZeroFrequency ReachZeroFrequency `json:"reach_zero_frequency"`
	EmergencyReadiness EmergencyReadiness `json:"emergency_readiness"`

	// Optional life-situation fields.
	LifeSituation string `json:"life_situation,omitempty"`
	Dependents    int    `json:"dependents,omitempty"`

	IsOnboarded bool `json:"is_onboarded"`
}

// Validate rejects malformed profiles before they reach the metrics engine.
func (p *UserProfile) Validate() error {
	if p.UserID == "" {
		return &ErrValidation{Field: "user_id", Message: "required"}
	}
	if !p.IncomeRange.Valid() {
		return &ErrValidation{Field: "income_range", Message: "unknown income range: " + string(p.IncomeRange)}
	}
	if p.TotalFixedAmount < 0 {
		return &ErrValidation{Field: "total_fixed_amount", Message: "must be non-negative"}
	}
	if p.TopImpulseCategory != "" && !p.TopImpulseCategory.Valid() {
		return &ErrValidation{Field: "top_impulse_category", Message: "unknown category"}
	}
	return nil
}

// HasCommitment reports whether the profile carries the given obligation tag.
func (p *UserProfile) HasCommitment(c Commitment) bool {
	for _, have := range p.Commitments {
		if have == c {
			return true
		}
	}
	return false
}
