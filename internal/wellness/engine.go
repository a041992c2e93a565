// Package wellness is the derived financial-metrics engine. Every function
// here is pure and total over validated input: no I/O, no stored state, no
// error returns. Callers validate profiles and transactions at the boundary
// before handing them in.
package wellness

import (
	"math"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/domain"
)

// Policy constants. The exact weights are a product decision, tuned so the
// safe/watch/crisis tiers land at the documented 30/60 thresholds.
const (
	// SurvivalUnbounded is returned by SurvivalDays when the daily spend
	// rate is zero: the balance lasts indefinitely at the current rate.
	SurvivalUnbounded = -1

	// emergencyFundMonths is the number of months of expenses the
	// emergency fund should cover.
	emergencyFundMonths = 4

	riskSafeMax  = 30
	riskWatchMax = 60
)

// IncomeNumbers maps a bucketed income range to min/max/avg monthly figures.
type IncomeNumbers struct {
	Min float64
	Max float64
	Avg float64
}

var incomeTable = map[domain.IncomeRange]IncomeNumbers{
	domain.IncomeBelow25k: {Min: 10000, Max: 25000, Avg: 17500},
	domain.Income25k50k:   {Min: 25000, Max: 50000, Avg: 37500},
	domain.Income50k1L:    {Min: 50000, Max: 100000, Avg: 75000},
	domain.IncomeAbove1L:  {Min: 100000, Max: 200000, Avg: 150000},
}

// IncomeNumbersFor looks up the fixed bucket table. An unknown range is a
// programming error (profiles are validated upstream) and yields zeros.
func IncomeNumbersFor(r domain.IncomeRange) IncomeNumbers {
	return incomeTable[r]
}

// SilentBurdenIndex is the percentage of average monthly income already
// committed to fixed obligations. Deliberately not capped at 100: a value
// above 100 means the user is over-committed, which is itself the signal.
func SilentBurdenIndex(totalFixed, incomeAvg float64) int {
	if incomeAvg <= 0 {
		return 0
	}
	return int(math.Round(totalFixed / incomeAvg * 100))
}

// Stress score weights per categorical answer.
var (
	feelingWeights = map[domain.MoneyFeeling]int{
		domain.FeelingOftenStressed:     20,
		domain.FeelingSometimesStressed: 10,
		domain.FeelingNeutral:           4,
		domain.FeelingConfident:         0,
	}
	reachZeroWeights = map[domain.ReachZeroFrequency]int{
		domain.ReachZeroOften:     15,
		domain.ReachZeroSometimes: 8,
		domain.ReachZeroRarely:    3,
		domain.ReachZeroNever:     0,
	}
	readinessWeights = map[domain.EmergencyReadiness]int{
		domain.EmergencyNeedToBorrow: 15,
		domain.EmergencySmallBuffer:  7,
		domain.EmergencyComfortable:  0,
	}
	styleWeights = map[domain.SpendingStyle]int{
		domain.StyleImpulsive: 10,
		domain.StyleMixed:     4,
		domain.StylePlanner:   0,
	}
)

// burdenContribution converts the silent burden index into stress points.
func burdenContribution(sbi int) int {
	switch {
	case sbi >= 80:
		return 25
	case sbi >= 60:
		return 18
	case sbi >= 40:
		return 12
	case sbi >= 25:
		return 6
	default:
		return 0
	}
}

// commitmentContribution converts the count of fixed obligations into
// stress points, capped so commitments alone cannot dominate the score.
func commitmentContribution(n int) int {
	pts := n * 3
	if pts > 12 {
		return 12
	}
	return pts
}

// StressScore is the 0..100 composite indicator of financial-behavior risk.
func StressScore(p *domain.UserProfile) int {
	income := IncomeNumbersFor(p.IncomeRange)
	sbi := SilentBurdenIndex(p.TotalFixedAmount, income.Avg)

	score := feelingWeights[p.MoneyFeeling] +
		reachZeroWeights[p.ReachZeroFrequency] +
		readinessWeights[p.EmergencyReadiness] +
		styleWeights[p.SpendingStyle] +
		commitmentContribution(len(p.Commitments)) +
		burdenContribution(sbi)

	return clamp(score, 0, 100)
}

// RiskLevelFor tiers a stress score: safe <=30, watch <=60, crisis >60.
func RiskLevelFor(stressScore int) domain.RiskLevel {
	switch {
	case stressScore <= riskSafeMax:
		return domain.RiskSafe
	case stressScore <= riskWatchMax:
		return domain.RiskWatch
	default:
		return domain.RiskCrisis
	}
}

// SurvivalDays is how many days the balance lasts at the daily spend rate.
// A zero rate returns SurvivalUnbounded rather than dividing by zero.
func SurvivalDays(balance, dailySpendRate float64) int {
	if dailySpendRate <= 0 {
		return SurvivalUnbounded
	}
	days := int(math.Floor(balance / dailySpendRate))
	if days < 0 {
		return 0
	}
	return days
}

// Debt risk weights per borrowing-prone factor.
const (
	debtWeightEMI        = 25
	debtWeightCreditCard = 20
	debtWeightBorrowing  = 30
	debtWeightZeroOften  = 15
	debtWeightImpulsive  = 10
)

// DebtRisk is a 0..100 rule-based score: each borrowing-prone factor present
// contributes a fixed weight.
func DebtRisk(p *domain.UserProfile) int {
	score := 0
	if p.HasCommitment(domain.CommitmentEMI) {
		score += debtWeightEMI
	}
	if p.HasCommitment(domain.CommitmentCreditCard) {
		score += debtWeightCreditCard
	}
	if p.EmergencyReadiness == domain.EmergencyNeedToBorrow {
		score += debtWeightBorrowing
	}
	if p.ReachZeroFrequency == domain.ReachZeroOften {
		score += debtWeightZeroOften
	}
	if p.SpendingStyle == domain.StyleImpulsive {
		score += debtWeightImpulsive
	}
	return clamp(score, 0, 100)
}

// EmergencyFundTarget is the recommended emergency fund size.
func EmergencyFundTarget(monthlyExpenses float64) float64 {
	return monthlyExpenses * emergencyFundMonths
}

// Budgets derives the weekly and daily discretionary budgets from what is
// left of the average income after fixed commitments.
func Budgets(incomeAvg, totalFixed float64) (weekly, daily float64) {
	discretionary := incomeAvg - totalFixed
	if discretionary < 0 {
		discretionary = 0
	}
	weekly = discretionary / 4
	daily = weekly / 7
	return weekly, daily
}

// recoveryDaysFor is the estimated time to move back into the safe tier.
func recoveryDaysFor(level domain.RiskLevel) int {
	switch level {
	case domain.RiskCrisis:
		return 90
	case domain.RiskWatch:
		return 45
	default:
		return 14
	}
}

// Analyze computes the full FinancialAnalysis for a profile and its
// transactions. The result is a pure view of the inputs: it carries no
// identity and is recomputed on every call so it can never go stale.
func Analyze(p *domain.UserProfile, txns []domain.Transaction, now time.Time) *domain.FinancialAnalysis {
	income := IncomeNumbersFor(p.IncomeRange)
	sbi := SilentBurdenIndex(p.TotalFixedAmount, income.Avg)
	stress := StressScore(p)
	level := RiskLevelFor(stress)

	// Observed spending over the trailing 30 days; the declared fixed
	// amount stands in when there is no transaction history yet.
	monthlyExpenses := expensesInWindow(txns, now, 30)
	if monthlyExpenses == 0 {
		monthlyExpenses = p.TotalFixedAmount
	}
	dailyRate := monthlyExpenses / 30

	balance := runningBalance(txns)
	if len(txns) == 0 {
		// No history: assume one month of declared leftover.
		balance = income.Avg - p.TotalFixedAmount
		if balance < 0 {
			balance = 0
		}
	}

	survival := SurvivalDays(balance, dailyRate)
	weekly, daily := Budgets(income.Avg, p.TotalFixedAmount)

	a := &domain.FinancialAnalysis{
		StressScore:         stress,
		RiskLevel:           level,
		SilentBurdenIndex:   sbi,
		SurvivalDays:        survival,
		SurvivalUnbounded:   survival == SurvivalUnbounded,
		DebtRisk:            DebtRisk(p),
		EmergencyFundTarget: EmergencyFundTarget(monthlyExpenses),
		WeeklyBudget:        weekly,
		DailyBudget:         daily,
		RecoveryDays:        recoveryDaysFor(level),
		HealthScore:         100 - stress,
		ComputedAt:          now,
	}
	a.ActiveSignals = StressSignals(p, a)
	a.Recommendations = Recommendations(p, a)
	return a
}

// expensesInWindow sums expense amounts dated within the trailing window.
func expensesInWindow(txns []domain.Transaction, now time.Time, windowDays int) float64 {
	cutoff := now.AddDate(0, 0, -windowDays)
	var total float64
	for _, tx := range txns {
		if tx.Type != domain.TransactionExpense {
			continue
		}
		if tx.Date.Before(cutoff) || tx.Date.After(now) {
			continue
		}
		total += tx.Amount
	}
	return total
}

// runningBalance is income minus expenses over the whole history.
func runningBalance(txns []domain.Transaction) float64 {
	var balance float64
	for _, tx := range txns {
		switch tx.Type {
		case domain.TransactionIncome:
			balance += tx.Amount
		case domain.TransactionExpense:
			balance -= tx.Amount
		}
	}
	return balance
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
