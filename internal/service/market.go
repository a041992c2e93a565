package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/infra/observability"
	"github.com/finpulse/finpulse-api-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Market fronts the market-data upstream with a TTL cache. Quotes and
// headlines are the same for every user, so cache keys are request-shaped
// rather than user-shaped.
type Market struct {
	fetcher port.MarketDataFetcher
	cache   port.Cache[*domain.MarketData]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewMarket creates the market service.
func NewMarket(fetcher port.MarketDataFetcher, cache port.Cache[*domain.MarketData], metrics *observability.Metrics, logger *zap.Logger) *Market {
	return &Market{
		fetcher: fetcher,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Query validates the request and returns market data, cache first.
func (s *Market) Query(ctx context.Context, req *domain.MarketRequest) (*domain.MarketData, error) {
	ctx, span := tracer.Start(ctx, "Market.Query")
	defer span.End()
	span.SetAttributes(attribute.String("market.type", string(req.Type)))

	if !req.Type.Valid() {
		return nil, &domain.ErrValidation{Field: "type", Message: "unknown market query type"}
	}
	if (req.Type == domain.MarketStock || req.Type == domain.MarketTimeSeries) && req.Symbol == "" {
		return nil, &domain.ErrValidation{Field: "symbol", Message: "symbol is required"}
	}
	if req.Type == domain.MarketNews && req.Query == "" && req.Symbol == "" {
		return nil, &domain.ErrValidation{Field: "query", Message: "query or symbol is required"}
	}

	key := marketCacheKey(req)
	if data, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("market")
		return data, nil
	}
	s.metrics.IncrCacheMiss("market")

	data, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		s.metrics.IncrExternalError("market-data")
		s.logger.Warn("market fetch failed",
			zap.String("type", string(req.Type)),
			zap.String("symbol", req.Symbol),
			zap.Error(err),
		)
		return nil, err
	}

	s.cache.Set(key, data)
	return data, nil
}

func marketCacheKey(req *domain.MarketRequest) string {
	return fmt.Sprintf("market:%s:%s:%s",
		req.Type,
		strings.ToUpper(req.Symbol),
		strings.ToLower(req.Query),
	)
}
