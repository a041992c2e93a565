package service

import (
	"context"
	"fmt"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/infra/observability"
	"github.com/finpulse/finpulse-api-go/internal/port"
	"github.com/finpulse/finpulse-api-go/internal/wellness"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/wellness")

// analysisWindowDays is how far back transactions feed the analysis.
const analysisWindowDays = 30

// Wellness orchestrates the store and the derived-metrics engine. All
// numbers the dashboard shows come out of here; the engine itself stays pure
// and this layer owns fetching, caching, and metrics.
type Wellness struct {
	store   port.Store
	cache   port.Cache[*domain.UserProfile]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewWellness creates the wellness service with all dependencies injected.
func NewWellness(store port.Store, cache port.Cache[*domain.UserProfile], metrics *observability.Metrics, logger *zap.Logger) *Wellness {
	return &Wellness{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// GetProfile fetches the user profile, cache first.
func (s *Wellness) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "Wellness.GetProfile")
	defer span.End()

	cacheKey := fmt.Sprintf("profile:%s", userID)
	if p, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncrCacheHit("profile")
		return p, nil
	}
	s.metrics.IncrCacheMiss("profile")

	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey, p)
	return p, nil
}

// SaveProfile validates and persists the profile as a whole-object
// replacement, then invalidates the cached copy so the next analysis never
// sees stale onboarding answers.
func (s *Wellness) SaveProfile(ctx context.Context, p *domain.UserProfile) error {
	ctx, span := tracer.Start(ctx, "Wellness.SaveProfile")
	defer span.End()

	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.store.SaveProfile(ctx, p); err != nil {
		s.metrics.IncrExternalError("store")
		return err
	}
	s.cache.Delete(fmt.Sprintf("profile:%s", p.UserID))

	s.logger.Info("profile saved",
		zap.String("user_id", p.UserID),
		zap.Bool("onboarded", p.IsOnboarded),
	)
	return nil
}

// ListTransactions returns the user's transactions, optionally bounded by
// from/to dates (RFC 3339 or YYYY-MM-DD, passed through to the store).
func (s *Wellness) ListTransactions(ctx context.Context, userID string, from, to string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Wellness.ListTransactions")
	defer span.End()

	return s.store.ListTransactions(ctx, userID, from, to)
}

// AddTransaction validates and records one transaction, then folds an
// expense into any matching guardrail's running spend.
func (s *Wellness) AddTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Wellness.AddTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.category", string(tx.Category)))

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}

	saved, err := s.store.AddTransaction(ctx, tx)
	if err != nil {
		s.metrics.IncrExternalError("store")
		return nil, err
	}

	if saved.Type == domain.TransactionExpense {
		if err := s.accumulateGuardrail(ctx, saved); err != nil {
			// The transaction is already durable; a guardrail bookkeeping
			// failure must not fail the request.
			s.logger.Warn("guardrail update failed",
				zap.String("user_id", saved.UserID),
				zap.String("category", string(saved.Category)),
				zap.Error(err),
			)
		}
	}
	return saved, nil
}

func (s *Wellness) accumulateGuardrail(ctx context.Context, tx *domain.Transaction) error {
	rails, err := s.store.ListGuardrails(ctx, tx.UserID)
	if err != nil {
		return err
	}
	for i := range rails {
		if rails[i].Category != tx.Category {
			continue
		}
		rails[i].Spent += tx.Amount
		if _, err := s.store.UpsertGuardrail(ctx, &rails[i]); err != nil {
			return err
		}
		if rails[i].Exceeded() {
			s.logger.Info("guardrail exceeded",
				zap.String("user_id", tx.UserID),
				zap.String("category", string(tx.Category)),
				zap.Float64("limit", rails[i].Limit),
				zap.Float64("spent", rails[i].Spent),
			)
		}
		return nil
	}
	return nil
}

// GetAnalysis fetches profile and transactions concurrently, then runs the
// full derived-metrics computation.
func (s *Wellness) GetAnalysis(ctx context.Context, userID string) (*domain.FinancialAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "Wellness.GetAnalysis")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("analysis", time.Since(start))
	}()

	profile, txns, err := s.fetchProfileAndTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	analysis := wellness.Analyze(profile, txns, time.Now())
	s.metrics.RecordAnalysis(analysis)

	s.logger.Debug("analysis computed",
		zap.String("user_id", userID),
		zap.Int("stress_score", analysis.StressScore),
		zap.String("risk_level", string(analysis.RiskLevel)),
		zap.Int("signals", len(analysis.ActiveSignals)),
	)
	return analysis, nil
}

// GetSignals returns only the active stress signals for the user.
func (s *Wellness) GetSignals(ctx context.Context, userID string) ([]domain.StressSignal, error) {
	a, err := s.GetAnalysis(ctx, userID)
	if err != nil {
		return nil, err
	}
	return a.ActiveSignals, nil
}

// CategoryBreakdown aggregates the user's expense transactions by category.
func (s *Wellness) CategoryBreakdown(ctx context.Context, userID string, from, to string) ([]domain.CategoryTotal, error) {
	ctx, span := tracer.Start(ctx, "Wellness.CategoryBreakdown")
	defer span.End()

	txns, err := s.store.ListTransactions(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return wellness.AggregateByCategory(txns), nil
}

// WeeklyPattern buckets the last week's spending by weekday and checks for
// a weekend spike.
func (s *Wellness) WeeklyPattern(ctx context.Context, userID string) (domain.WeeklySpending, domain.WeekendSpike, error) {
	ctx, span := tracer.Start(ctx, "Wellness.WeeklyPattern")
	defer span.End()

	txns, err := s.store.ListTransactions(ctx, userID, "", "")
	if err != nil {
		return domain.WeeklySpending{}, domain.WeekendSpike{}, err
	}

	week := wellness.AggregateByWeekday(txns, time.Now(), 0)
	spike := wellness.DetectWeekendSpike(week.Days)
	return week, spike, nil
}

// ListGuardrails returns the user's budget guardrails.
func (s *Wellness) ListGuardrails(ctx context.Context, userID string) ([]domain.BudgetGuardrail, error) {
	ctx, span := tracer.Start(ctx, "Wellness.ListGuardrails")
	defer span.End()

	return s.store.ListGuardrails(ctx, userID)
}

// SetGuardrail validates and upserts one per-category ceiling.
func (s *Wellness) SetGuardrail(ctx context.Context, g *domain.BudgetGuardrail) (*domain.BudgetGuardrail, error) {
	ctx, span := tracer.Start(ctx, "Wellness.SetGuardrail")
	defer span.End()

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpsertGuardrail(ctx, g)
}

// fetchProfileAndTransactions loads both analysis inputs concurrently,
// profile through the cache.
func (s *Wellness) fetchProfileAndTransactions(ctx context.Context, userID string) (*domain.UserProfile, []domain.Transaction, error) {
	var (
		profile *domain.UserProfile
		txns    []domain.Transaction
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.GetProfile(gCtx, userID)
		if err != nil {
			s.logger.Error("failed to fetch profile",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return err
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		from := time.Now().AddDate(0, 0, -analysisWindowDays).Format("2006-01-02")
		t, err := s.store.ListTransactions(gCtx, userID, from, "")
		if err != nil {
			s.logger.Error("failed to fetch transactions",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			s.metrics.IncrExternalError("store")
			return err
		}
		txns = t
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return profile, txns, nil
}
