package domain

import "time"

// ============================================================
// Derived Financial Analysis
// ============================================================

// RiskLevel is the three-tier classification of the stress score.
type RiskLevel string

const (
	RiskSafe   RiskLevel = "safe"   // stressScore <= 30
	RiskWatch  RiskLevel = "watch"  // 30 < stressScore <= 60
	RiskCrisis RiskLevel = "crisis" // stressScore > 60
)

// Severity grades a stress signal or weekend spike.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Priority grades a recommendation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// StressSignal is a named, purely informational warning produced by the
// metrics engine. Output order is the rule-evaluation order, not sorted.
type StressSignal struct {
	Code        string   `json:"code"`
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Action      string   `json:"action"`
}

// Recommendation is an actionable suggestion derived from the analysis.
type Recommendation struct {
	Code     string   `json:"code"`
	Priority Priority `json:"priority"`
	Text     string   `json:"text"`
}

// FinancialAnalysis is the derived view of a profile + transaction set.
// It has no identity and is never persisted: it is recomputed from current
// inputs on every request so it can never go stale.
type FinancialAnalysis struct {
	StressScore         int       `json:"stress_score"`        // 0..100
	RiskLevel           RiskLevel `json:"risk_level"`
	SilentBurdenIndex   int       `json:"silent_burden_index"` // % of income pre-committed; may exceed 100
	SurvivalDays        int       `json:"survival_days"`
	SurvivalUnbounded   bool      `json:"survival_unbounded"`  // true when daily spend rate is zero
	DebtRisk            int       `json:"debt_risk"`           // 0..100
	EmergencyFundTarget float64   `json:"emergency_fund_target"`
	WeeklyBudget        float64   `json:"weekly_budget"`
	DailyBudget         float64   `json:"daily_budget"`
	RecoveryDays        int       `json:"recovery_days"`
	HealthScore         int       `json:"health_score"`

	ActiveSignals   []StressSignal   `json:"active_signals"`
	Recommendations []Recommendation `json:"recommendations"`

	ComputedAt time.Time `json:"computed_at"`
}

// ============================================================
// Aggregations (presentation feeds)
// ============================================================

// CategoryTotal is one category's summed expense amount. Slices of
// CategoryTotal preserve first-seen input order.
type CategoryTotal struct {
	Category Category `json:"category"`
	Total    float64  `json:"total"`
}

// WeeklySpending is the [Sun..Sat] expense sums over the trailing window.
type WeeklySpending struct {
	Days  [7]float64 `json:"days"` // index 0 = Sunday
	From  time.Time  `json:"from"`
	To    time.Time  `json:"to"`
}

// WeekendSpike flags disproportionate weekend vs weekday spending.
type WeekendSpike struct {
	InsufficientData bool     `json:"insufficient_data"`
	Severity         Severity `json:"severity,omitempty"`
	IncreasePercent  int      `json:"increase_percent"`
	Message          string   `json:"message"`
}
