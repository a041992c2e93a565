package wellness_test

import (
	"testing"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/wellness"
)

func TestSilentBurdenIndex(t *testing.T) {
	if got := wellness.SilentBurdenIndex(25000, 50000); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}
	if got := wellness.SilentBurdenIndex(25000, 75000); got != 33 {
		t.Errorf("expected 33, got %d", got)
	}
	// Over-committed profiles intentionally exceed 100.
	if got := wellness.SilentBurdenIndex(30000, 17500); got <= 100 {
		t.Errorf("expected index above 100, got %d", got)
	}
	if got := wellness.SilentBurdenIndex(10000, 0); got != 0 {
		t.Errorf("expected 0 for zero income, got %d", got)
	}
}

func TestIncomeNumbersFor(t *testing.T) {
	n := wellness.IncomeNumbersFor(domain.Income50k1L)
	if n.Min != 50000 || n.Max != 100000 || n.Avg != 75000 {
		t.Errorf("unexpected bucket for 50k_1L: %+v", n)
	}
	n = wellness.IncomeNumbersFor(domain.IncomeBelow25k)
	if n.Avg != 17500 {
		t.Errorf("expected avg 17500 for below_25k, got %f", n.Avg)
	}
}

func TestStressScoreBounds(t *testing.T) {
	profiles := []*domain.UserProfile{
		{IncomeRange: domain.IncomeAbove1L},
		{
			IncomeRange:        domain.IncomeBelow25k,
			TotalFixedAmount:   20000,
			MoneyFeeling:       domain.FeelingOftenStressed,
			ReachZeroFrequency: domain.ReachZeroOften,
			EmergencyReadiness: domain.EmergencyNeedToBorrow,
			SpendingStyle:      domain.StyleImpulsive,
			Commitments: []domain.Commitment{
				domain.CommitmentRent, domain.CommitmentEMI, domain.CommitmentCreditCard,
				domain.CommitmentInsurance, domain.CommitmentEducation, domain.CommitmentFamily,
			},
		},
		{
			IncomeRange:        domain.Income25k50k,
			MoneyFeeling:       domain.FeelingConfident,
			ReachZeroFrequency: domain.ReachZeroNever,
			EmergencyReadiness: domain.EmergencyComfortable,
			SpendingStyle:      domain.StylePlanner,
		},
	}

	for i, p := range profiles {
		score := wellness.StressScore(p)
		if score < 0 || score > 100 {
			t.Errorf("profile %d: score %d out of [0,100]", i, score)
		}
		level := wellness.RiskLevelFor(score)
		switch {
		case score <= 30 && level != domain.RiskSafe:
			t.Errorf("profile %d: score %d should be safe, got %s", i, score, level)
		case score > 30 && score <= 60 && level != domain.RiskWatch:
			t.Errorf("profile %d: score %d should be watch, got %s", i, score, level)
		case score > 60 && level != domain.RiskCrisis:
			t.Errorf("profile %d: score %d should be crisis, got %s", i, score, level)
		}
	}
}

func TestRiskLevelThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  domain.RiskLevel
	}{
		{0, domain.RiskSafe},
		{30, domain.RiskSafe},
		{31, domain.RiskWatch},
		{60, domain.RiskWatch},
		{61, domain.RiskCrisis},
		{100, domain.RiskCrisis},
	}
	for _, tc := range cases {
		if got := wellness.RiskLevelFor(tc.score); got != tc.want {
			t.Errorf("score %d: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestSurvivalDays(t *testing.T) {
	if got := wellness.SurvivalDays(46005, 1300); got != 35 {
		t.Errorf("expected 35, got %d", got)
	}
	if got := wellness.SurvivalDays(46005, 0); got != wellness.SurvivalUnbounded {
		t.Errorf("expected unbounded sentinel, got %d", got)
	}
	if got := wellness.SurvivalDays(-500, 100); got != 0 {
		t.Errorf("expected clamp to 0 for negative balance, got %d", got)
	}
}

func TestDebtRisk(t *testing.T) {
	base := &domain.UserProfile{
		IncomeRange:        domain.Income25k50k,
		EmergencyReadiness: domain.EmergencyComfortable,
	}
	if got := wellness.DebtRisk(base); got != 0 {
		t.Errorf("expected 0 with no risk factors, got %d", got)
	}

	borrowing := &domain.UserProfile{
		IncomeRange:        domain.Income25k50k,
		EmergencyReadiness: domain.EmergencyNeedToBorrow,
	}
	withoutBorrowing := wellness.DebtRisk(base)
	withBorrowing := wellness.DebtRisk(borrowing)
	if withBorrowing <= withoutBorrowing {
		t.Errorf("borrowing pattern should raise debt risk: %d -> %d", withoutBorrowing, withBorrowing)
	}

	everything := &domain.UserProfile{
		IncomeRange:        domain.IncomeBelow25k,
		Commitments:        []domain.Commitment{domain.CommitmentEMI, domain.CommitmentCreditCard},
		EmergencyReadiness: domain.EmergencyNeedToBorrow,
		ReachZeroFrequency: domain.ReachZeroOften,
		SpendingStyle:      domain.StyleImpulsive,
	}
	if got := wellness.DebtRisk(everything); got != 100 {
		t.Errorf("expected clamp at 100, got %d", got)
	}
}

func TestEmergencyFundTarget(t *testing.T) {
	if got := wellness.EmergencyFundTarget(20000); got != 80000 {
		t.Errorf("expected 80000, got %f", got)
	}
}

func TestBudgets(t *testing.T) {
	weekly, daily := wellness.Budgets(75000, 25000)
	if weekly != 12500 {
		t.Errorf("expected weekly 12500, got %f", weekly)
	}
	if daily != 12500.0/7 {
		t.Errorf("expected daily %f, got %f", 12500.0/7, daily)
	}

	// Over-committed: discretionary clamps to zero instead of going negative.
	weekly, daily = wellness.Budgets(17500, 30000)
	if weekly != 0 || daily != 0 {
		t.Errorf("expected zero budgets when over-committed, got %f/%f", weekly, daily)
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	profile := &domain.UserProfile{
		UserID:             "user-1",
		IncomeRange:        domain.Income50k1L, // avg 75000
		TotalFixedAmount:   25000,
		MoneyFeeling:       domain.FeelingOftenStressed,
		ReachZeroFrequency: domain.ReachZeroOften,
		EmergencyReadiness: domain.EmergencyNeedToBorrow,
	}

	a := wellness.Analyze(profile, nil, time.Now())

	if a.SilentBurdenIndex != 33 {
		t.Errorf("expected silent burden index 33, got %d", a.SilentBurdenIndex)
	}

	foundEmergency := false
	for _, sig := range a.ActiveSignals {
		if sig.Code == "emergency_unpreparedness" {
			foundEmergency = true
			if sig.Severity != domain.SeverityHigh {
				t.Errorf("expected high severity emergency signal, got %s", sig.Severity)
			}
		}
	}
	if !foundEmergency {
		t.Error("expected an emergency unpreparedness signal")
	}

	// Borrowing pattern must contribute to debt risk.
	noBorrow := *profile
	noBorrow.EmergencyReadiness = domain.EmergencyComfortable
	if wellness.DebtRisk(profile) <= wellness.DebtRisk(&noBorrow) {
		t.Error("expected borrowing pattern to raise debt risk in analysis profile")
	}

	if a.StressScore < 0 || a.StressScore > 100 {
		t.Errorf("stress score %d out of bounds", a.StressScore)
	}
	if a.HealthScore != 100-a.StressScore {
		t.Errorf("health score %d inconsistent with stress %d", a.HealthScore, a.StressScore)
	}
}

func TestAnalyzeUnboundedSurvival(t *testing.T) {
	profile := &domain.UserProfile{
		UserID:      "user-2",
		IncomeRange: domain.Income25k50k,
		// No fixed amount and no transactions: daily spend rate is zero.
	}

	a := wellness.Analyze(profile, nil, time.Now())

	if !a.SurvivalUnbounded {
		t.Error("expected unbounded survival with zero spend rate")
	}
	if a.SurvivalDays != wellness.SurvivalUnbounded {
		t.Errorf("expected sentinel survival days, got %d", a.SurvivalDays)
	}
}

func TestAnalyzeUsesTransactionHistory(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	profile := &domain.UserProfile{
		UserID:      "user-3",
		IncomeRange: domain.Income50k1L,
	}
	txns := []domain.Transaction{
		{ID: "t1", Date: now.AddDate(0, 0, -2), Amount: 60000, Type: domain.TransactionIncome, Category: domain.CategoryIncome},
		{ID: "t2", Date: now.AddDate(0, 0, -1), Amount: 3000, Type: domain.TransactionExpense, Category: domain.CategoryFood},
		{ID: "t3", Date: now.AddDate(0, 0, -1), Amount: 6000, Type: domain.TransactionExpense, Category: domain.CategoryBills},
	}

	a := wellness.Analyze(profile, txns, now)

	// Observed expenses: 9000 over 30 days -> rate 300/day; balance 51000.
	if a.SurvivalUnbounded {
		t.Fatal("did not expect unbounded survival")
	}
	if a.SurvivalDays != 170 {
		t.Errorf("expected 170 survival days, got %d", a.SurvivalDays)
	}
	if a.EmergencyFundTarget != 36000 {
		t.Errorf("expected emergency fund target 36000, got %f", a.EmergencyFundTarget)
	}
}
