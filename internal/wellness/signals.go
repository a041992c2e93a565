package wellness

import (
	"fmt"

	"github.com/finpulse/finpulse-api-go/internal/domain"
)

// StressSignals evaluates the fixed rule set against a profile and its
// analysis. Rules run in a fixed order and emit in insertion order; the
// output is deterministic and never sorted.
func StressSignals(p *domain.UserProfile, a *domain.FinancialAnalysis) []domain.StressSignal {
	signals := make([]domain.StressSignal, 0, 5)

	// Rule 1: income stress — too much of the income is pre-committed.
	if a.SilentBurdenIndex >= 50 {
		sev := domain.SeverityMedium
		if a.SilentBurdenIndex >= 80 {
			sev = domain.SeverityHigh
		}
		signals = append(signals, domain.StressSignal{
			Code:        "income_stress",
			Severity:    sev,
			Title:       "Income under pressure",
			Description: fmt.Sprintf("%d%% of your income is committed before the month starts.", a.SilentBurdenIndex),
			Action:      "Review fixed commitments and look for one to reduce or drop.",
		})
	}

	// Rule 2: commitment overload — too many separate fixed obligations.
	if n := len(p.Commitments); n >= 4 {
		sev := domain.SeverityMedium
		if n >= 6 {
			sev = domain.SeverityHigh
		}
		signals = append(signals, domain.StressSignal{
			Code:        "commitment_overload",
			Severity:    sev,
			Title:       "Too many fixed commitments",
			Description: fmt.Sprintf("You are carrying %d fixed obligations every month.", n),
			Action:      "Consolidate or renegotiate at least one recurring obligation.",
		})
	}

	// Rule 3: impulse risk — self-declared impulsive spender with a known
	// weak-spot category.
	if p.SpendingStyle == domain.StyleImpulsive && p.TopImpulseCategory != "" {
		signals = append(signals, domain.StressSignal{
			Code:        "impulse_risk",
			Severity:    domain.SeverityMedium,
			Title:       "Impulse spending risk",
			Description: fmt.Sprintf("Unplanned spending tends to land in %s.", p.TopImpulseCategory),
			Action:      fmt.Sprintf("Set a budget guardrail on %s before the next paycheck.", p.TopImpulseCategory),
		})
	}

	// Rule 4: zero-balance risk — the balance regularly runs out.
	switch p.ReachZeroFrequency {
	case domain.ReachZeroOften:
		signals = append(signals, domain.StressSignal{
			Code:        "zero_balance_risk",
			Severity:    domain.SeverityHigh,
			Title:       "Balance often reaches zero",
			Description: "Your balance regularly runs out before the month ends.",
			Action:      "Switch to the weekly budget and keep survival days above 15.",
		})
	case domain.ReachZeroSometimes:
		signals = append(signals, domain.StressSignal{
			Code:        "zero_balance_risk",
			Severity:    domain.SeverityMedium,
			Title:       "Balance sometimes reaches zero",
			Description: "Some months your balance runs out before the next paycheck.",
			Action:      "Track the daily budget for the last week of each month.",
		})
	}

	// Rule 5: emergency unpreparedness — a surprise expense means borrowing.
	switch p.EmergencyReadiness {
	case domain.EmergencyNeedToBorrow:
		signals = append(signals, domain.StressSignal{
			Code:        "emergency_unpreparedness",
			Severity:    domain.SeverityHigh,
			Title:       "No emergency cushion",
			Description: "A surprise expense would currently mean borrowing money.",
			Action:      fmt.Sprintf("Start an emergency fund; the target is %.0f.", a.EmergencyFundTarget),
		})
	case domain.EmergencySmallBuffer:
		signals = append(signals, domain.StressSignal{
			Code:        "emergency_unpreparedness",
			Severity:    domain.SeverityLow,
			Title:       "Thin emergency cushion",
			Description: "Your buffer covers small surprises but not a real emergency.",
			Action:      fmt.Sprintf("Grow the fund toward the %.0f target.", a.EmergencyFundTarget),
		})
	}

	return signals
}

// Recommendations derives actionable suggestions from the profile and
// analysis. Like signals, output order is rule-evaluation order.
func Recommendations(p *domain.UserProfile, a *domain.FinancialAnalysis) []domain.Recommendation {
	recs := make([]domain.Recommendation, 0, 4)

	if a.SilentBurdenIndex >= 50 {
		recs = append(recs, domain.Recommendation{
			Code:     "reduce_fixed_load",
			Priority: domain.PriorityHigh,
			Text:     "Your fixed commitments eat most of your income. Pick one recurring cost to cut this month.",
		})
	}
	if p.EmergencyReadiness == domain.EmergencyNeedToBorrow {
		recs = append(recs, domain.Recommendation{
			Code:     "build_emergency_fund",
			Priority: domain.PriorityHigh,
			Text:     fmt.Sprintf("Set aside a fixed amount each week until you reach the %.0f emergency target.", a.EmergencyFundTarget),
		})
	}
	if p.SpendingStyle == domain.StyleImpulsive {
		recs = append(recs, domain.Recommendation{
			Code:     "guardrail_impulse_category",
			Priority: domain.PriorityMedium,
			Text:     "Add a spending guardrail on your biggest impulse category and let the app warn you.",
		})
	}
	if p.ReachZeroFrequency == domain.ReachZeroOften || p.ReachZeroFrequency == domain.ReachZeroSometimes {
		recs = append(recs, domain.Recommendation{
			Code:     "weekly_budgeting",
			Priority: domain.PriorityMedium,
			Text:     fmt.Sprintf("Plan in weeks, not months: your weekly budget is %.0f.", a.WeeklyBudget),
		})
	}
	if len(recs) == 0 {
		recs = append(recs, domain.Recommendation{
			Code:     "keep_tracking",
			Priority: domain.PriorityLow,
			Text:     "You're in good shape. Keep recording transactions so the picture stays accurate.",
		})
	}

	return recs
}
