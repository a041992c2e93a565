package service

import (
	"context"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/infra/observability"
	"github.com/finpulse/finpulse-api-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Reports fronts the hosted report generator. The generator receives the
// profile and the freshly computed analysis so reports reflect the same
// numbers the dashboard shows.
type Reports struct {
	generator port.ReportGenerator
	wellness  *Wellness
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewReports creates the reports service.
func NewReports(generator port.ReportGenerator, wellness *Wellness, metrics *observability.Metrics, logger *zap.Logger) *Reports {
	return &Reports{
		generator: generator,
		wellness:  wellness,
		metrics:   metrics,
		logger:    logger,
	}
}

// Generate produces one report for the user.
func (s *Reports) Generate(ctx context.Context, userID string, req *domain.ReportRequest) (*domain.Report, error) {
	ctx, span := tracer.Start(ctx, "Reports.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("report.type", string(req.Type)))

	if !req.Type.Valid() {
		return nil, &domain.ErrValidation{Field: "type", Message: "unknown report type"}
	}

	profile, err := s.wellness.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	gwReq := &domain.GatewayReportRequest{
		Type:        req.Type,
		UserProfile: profile,
		DateRange:   req.DateRange,
	}
	// Analysis-backed report types carry the current metrics along.
	if req.Type != domain.ReportMonthly {
		if analysis, aErr := s.wellness.GetAnalysis(ctx, userID); aErr == nil {
			gwReq.Analysis = analysis
		}
	}

	start := time.Now()
	report, err := s.generator.Generate(ctx, gwReq)
	s.metrics.RecordRequestDuration("report", time.Since(start))
	if err != nil {
		s.metrics.IncrExternalError("report-generator")
		s.logger.Error("report generation failed",
			zap.String("user_id", userID),
			zap.String("type", string(req.Type)),
			zap.Error(err),
		)
		return nil, err
	}
	return report, nil
}
