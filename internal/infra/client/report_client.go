package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/finpulse/finpulse-api-go/internal/domain"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// ReportClient calls the hosted report generator. Like the chat path it
// makes exactly one attempt per call: report generation is billed per
// request, so a failed call is surfaced to the caller rather than
// re-attempted. The breaker only sheds load once the upstream is down.
type ReportClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
}

// NewReportClient creates a new ReportClient.
func NewReportClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker) *ReportClient {
	return &ReportClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
	}
}

// Generate requests a markdown report. Single attempt; upstream 429 and 402
// come back as their typed errors, anything else as a generic upstream error.
func (c *ReportClient) Generate(ctx context.Context, req *domain.GatewayReportRequest) (*domain.Report, error) {
	ctx, span := tracer.Start(ctx, "ReportClient.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("report.type", string(req.Type)))

	result, err := c.cb.Execute(func() (any, error) {
		body, err := json.Marshal(req)
		if err != nil {
			return nil, err
		}

		url := fmt.Sprintf("%s/v1/reports/generate", c.baseURL)
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
		case http.StatusTooManyRequests:
			return nil, &domain.ErrRateLimited{Service: "report-generator"}
		case http.StatusPaymentRequired:
			return nil, &domain.ErrQuotaExceeded{Service: "report-generator"}
		default:
			return nil, fmt.Errorf("report API returned status %d", resp.StatusCode)
		}

		var envelope domain.ReportResponse
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return nil, err
		}
		if !envelope.Success || envelope.Report == nil {
			return nil, fmt.Errorf("report generation failed: %s", envelope.Error)
		}
		return envelope.Report, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCircuitOpen{Service: "report-generator"}
		}
		var rl *domain.ErrRateLimited
		var qe *domain.ErrQuotaExceeded
		if errors.As(err, &rl) || errors.As(err, &qe) {
			return nil, err
		}
		return nil, &domain.ErrExternalService{Service: "report-generator", Err: err}
	}

	return result.(*domain.Report), nil
}
