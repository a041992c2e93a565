package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// MarketClient proxies quote, news, and time-series lookups to the market
// data API. Concurrency is bounded by a bulkhead so a slow upstream cannot
// tie up every request goroutine.
type MarketClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
}

// NewMarketClient creates a new MarketClient.
func NewMarketClient(httpClient *http.Client, baseURL, apiKey string, cb *gobreaker.CircuitBreaker, bulkhead *resilience.Bulkhead, cfg resilience.Config) *MarketClient {
	return &MarketClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		cb:         cb,
		bulkhead:   bulkhead,
		cfg:        cfg,
	}
}

// Fetch executes one market lookup with bulkhead, retry, circuit breaker,
// and tracing.
func (c *MarketClient) Fetch(ctx context.Context, req *domain.MarketRequest) (*domain.MarketData, error) {
	ctx, span := tracer.Start(ctx, "MarketClient.Fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("market.type", string(req.Type)),
		attribute.String("market.symbol", req.Symbol),
	)

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTimeout{Operation: "market-data acquire"}
	}
	defer c.bulkhead.Release()

	var data domain.MarketData

	_, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := json.Marshal(req)
			if err != nil {
				return err
			}

			url := fmt.Sprintf("%s/v1/market/query", c.baseURL)
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			httpReq.Header.Set("Content-Type", "application/json")
			if c.apiKey != "" {
				httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
			}

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusOK:
			case http.StatusNotFound:
				return &domain.ErrNotFound{Resource: "market-data", ID: req.Symbol}
			case http.StatusTooManyRequests:
				return &domain.ErrRateLimited{Service: "market-data"}
			default:
				return fmt.Errorf("market API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&data)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &data, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCircuitOpen{Service: "market-data"}
		}
		var nf *domain.ErrNotFound
		var rl *domain.ErrRateLimited
		if errors.As(err, &nf) || errors.As(err, &rl) {
			return nil, err
		}
		return nil, &domain.ErrExternalService{Service: "market-data", Err: err}
	}

	return &data, nil
}
