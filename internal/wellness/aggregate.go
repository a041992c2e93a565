package wellness

import (
	"fmt"
	"math"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/domain"
)

// Weekend-spike thresholds: a weekend average within 1.2x of the weekday
// average is consistent spending; beyond that, the percentage increase is
// bucketed at 40% and 80%.
const (
	spikeRatio     = 1.2
	spikeMediumPct = 40
	spikeHighPct   = 80
)

// AggregateByCategory sums expense transactions by category. Income
// transactions are ignored. The slice preserves first-seen input order so
// the presentation layer renders a stable breakdown; the totals themselves
// are order-independent.
func AggregateByCategory(txns []domain.Transaction) []domain.CategoryTotal {
	totals := make(map[domain.Category]float64)
	order := make([]domain.Category, 0)

	for _, tx := range txns {
		if tx.Type != domain.TransactionExpense {
			continue
		}
		if _, seen := totals[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		totals[tx.Category] += tx.Amount
	}

	out := make([]domain.CategoryTotal, 0, len(order))
	for _, cat := range order {
		out = append(out, domain.CategoryTotal{Category: cat, Total: totals[cat]})
	}
	return out
}

// AggregateByWeekday buckets expense amounts into [Sun..Sat] over the
// trailing window ending at now. windowDays <= 0 defaults to 7.
func AggregateByWeekday(txns []domain.Transaction, now time.Time, windowDays int) domain.WeeklySpending {
	if windowDays <= 0 {
		windowDays = 7
	}
	from := now.AddDate(0, 0, -windowDays)

	ws := domain.WeeklySpending{From: from, To: now}
	for _, tx := range txns {
		if tx.Type != domain.TransactionExpense {
			continue
		}
		if !tx.Date.After(from) || tx.Date.After(now) {
			continue
		}
		ws.Days[int(tx.Date.Weekday())] += tx.Amount
	}
	return ws
}

// DetectWeekendSpike compares weekend vs weekday averages in a [Sun..Sat]
// bucket array. A zero weekday average yields an insufficient-data result
// instead of dividing by zero.
func DetectWeekendSpike(days [7]float64) domain.WeekendSpike {
	weekdayTotal := days[1] + days[2] + days[3] + days[4] + days[5]
	weekendTotal := days[0] + days[6]
	weekdayAvg := weekdayTotal / 5
	weekendAvg := weekendTotal / 2

	if weekdayAvg == 0 {
		return domain.WeekendSpike{
			InsufficientData: true,
			Message:          "Not enough weekday spending recorded to compare against the weekend.",
		}
	}

	if weekendAvg <= spikeRatio*weekdayAvg {
		return domain.WeekendSpike{
			Severity: domain.SeverityLow,
			Message:  "Your weekend spending is consistent with the rest of the week.",
		}
	}

	increase := int(math.Round((weekendAvg - weekdayAvg) / weekdayAvg * 100))
	spike := domain.WeekendSpike{IncreasePercent: increase}
	switch {
	case increase > spikeHighPct:
		spike.Severity = domain.SeverityHigh
		spike.Message = fmt.Sprintf("Weekend spending is %d%% above weekdays — this is where your budget leaks.", increase)
	case increase > spikeMediumPct:
		spike.Severity = domain.SeverityMedium
		spike.Message = fmt.Sprintf("Weekend spending runs %d%% above weekdays. Worth planning weekends ahead.", increase)
	default:
		spike.Severity = domain.SeverityLow
		spike.Message = fmt.Sprintf("Weekend spending is %d%% above weekdays — noticeable but manageable.", increase)
	}
	return spike
}
