package wellness_test

import (
	"testing"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/wellness"
)

func TestStressSignals_DeterministicOrder(t *testing.T) {
	profile := &domain.UserProfile{
		UserID:             "user-1",
		IncomeRange:        domain.IncomeBelow25k, // avg 17500
		TotalFixedAmount:   15000,                 // sbi 86
		SpendingStyle:      domain.StyleImpulsive,
		TopImpulseCategory: domain.CategoryShopping,
		MoneyFeeling:       domain.FeelingOftenStressed,
		ReachZeroFrequency: domain.ReachZeroOften,
		EmergencyReadiness: domain.EmergencyNeedToBorrow,
		Commitments: []domain.Commitment{
			domain.CommitmentRent, domain.CommitmentEMI,
			domain.CommitmentCreditCard, domain.CommitmentSubs,
		},
	}
	a := wellness.Analyze(profile, nil, time.Now())

	want := []string{
		"income_stress",
		"commitment_overload",
		"impulse_risk",
		"zero_balance_risk",
		"emergency_unpreparedness",
	}
	if len(a.ActiveSignals) != len(want) {
		t.Fatalf("expected %d signals, got %d", len(want), len(a.ActiveSignals))
	}
	for i, code := range want {
		if a.ActiveSignals[i].Code != code {
			t.Errorf("signal %d: expected %s, got %s", i, code, a.ActiveSignals[i].Code)
		}
	}

	// Re-running yields the identical sequence.
	again := wellness.StressSignals(profile, a)
	for i := range again {
		if again[i].Code != a.ActiveSignals[i].Code {
			t.Errorf("signal order not deterministic at %d", i)
		}
	}
}

func TestStressSignals_SeverityEscalation(t *testing.T) {
	profile := &domain.UserProfile{
		IncomeRange:        domain.IncomeBelow25k,
		TotalFixedAmount:   15000, // sbi 86 -> high income stress
		EmergencyReadiness: domain.EmergencySmallBuffer,
	}
	a := wellness.Analyze(profile, nil, time.Now())

	var incomeStress, emergency *domain.StressSignal
	for i := range a.ActiveSignals {
		switch a.ActiveSignals[i].Code {
		case "income_stress":
			incomeStress = &a.ActiveSignals[i]
		case "emergency_unpreparedness":
			emergency = &a.ActiveSignals[i]
		}
	}

	if incomeStress == nil || incomeStress.Severity != domain.SeverityHigh {
		t.Errorf("expected high income stress signal, got %+v", incomeStress)
	}
	if emergency == nil || emergency.Severity != domain.SeverityLow {
		t.Errorf("expected low emergency signal for small buffer, got %+v", emergency)
	}
}

func TestStressSignals_QuietProfile(t *testing.T) {
	profile := &domain.UserProfile{
		IncomeRange:        domain.IncomeAbove1L,
		TotalFixedAmount:   20000, // sbi 13
		MoneyFeeling:       domain.FeelingConfident,
		ReachZeroFrequency: domain.ReachZeroNever,
		EmergencyReadiness: domain.EmergencyComfortable,
		SpendingStyle:      domain.StylePlanner,
	}
	a := wellness.Analyze(profile, nil, time.Now())

	if len(a.ActiveSignals) != 0 {
		t.Errorf("expected no signals for a healthy profile, got %v", a.ActiveSignals)
	}
	if len(a.Recommendations) != 1 || a.Recommendations[0].Code != "keep_tracking" {
		t.Errorf("expected the default recommendation, got %v", a.Recommendations)
	}
}

func TestRecommendations_PriorityRules(t *testing.T) {
	profile := &domain.UserProfile{
		IncomeRange:        domain.Income25k50k, // avg 37500
		TotalFixedAmount:   25000,               // sbi 67
		EmergencyReadiness: domain.EmergencyNeedToBorrow,
		SpendingStyle:      domain.StyleImpulsive,
		ReachZeroFrequency: domain.ReachZeroSometimes,
	}
	a := wellness.Analyze(profile, nil, time.Now())

	byCode := make(map[string]domain.Recommendation)
	for _, r := range a.Recommendations {
		byCode[r.Code] = r
	}

	if r, ok := byCode["reduce_fixed_load"]; !ok || r.Priority != domain.PriorityHigh {
		t.Errorf("expected high-priority reduce_fixed_load, got %+v", r)
	}
	if r, ok := byCode["build_emergency_fund"]; !ok || r.Priority != domain.PriorityHigh {
		t.Errorf("expected high-priority build_emergency_fund, got %+v", r)
	}
	if r, ok := byCode["guardrail_impulse_category"]; !ok || r.Priority != domain.PriorityMedium {
		t.Errorf("expected medium-priority guardrail recommendation, got %+v", r)
	}
	if r, ok := byCode["weekly_budgeting"]; !ok || r.Priority != domain.PriorityMedium {
		t.Errorf("expected medium-priority weekly budgeting, got %+v", r)
	}
}
