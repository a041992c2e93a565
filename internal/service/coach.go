package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/infra/observability"
	"github.com/finpulse/finpulse-api-go/internal/port"

	"go.uber.org/zap"
)

// Coach fronts the AI chat gateway. It enriches the conversation with a
// system prompt built from the user's profile and current analysis, so the
// model answers against real numbers instead of generic advice.
type Coach struct {
	gateway  port.ChatGateway
	wellness *Wellness
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewCoach creates the coach service.
func NewCoach(gateway port.ChatGateway, wellness *Wellness, metrics *observability.Metrics, logger *zap.Logger) *Coach {
	return &Coach{
		gateway:  gateway,
		wellness: wellness,
		metrics:  metrics,
		logger:   logger,
	}
}

// StreamChat opens a streaming coach conversation. Profile and analysis are
// fetched server-side; a missing profile is not fatal, the coach just
// answers without personal context.
func (c *Coach) StreamChat(ctx context.Context, userID string, req *domain.ChatRequest) (port.ChatStream, error) {
	ctx, span := tracer.Start(ctx, "Coach.StreamChat")
	defer span.End()

	if len(req.Messages) == 0 {
		return nil, &domain.ErrValidation{Field: "messages", Message: "at least one message is required"}
	}

	gwReq := &domain.GatewayChatRequest{Stream: true}

	profile, err := c.wellness.GetProfile(ctx, userID)
	if err == nil {
		gwReq.UserProfile = profile
		if analysis, aErr := c.wellness.GetAnalysis(ctx, userID); aErr == nil {
			gwReq.Analysis = analysis
		}
	} else {
		c.logger.Debug("coaching without profile context",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	gwReq.Messages = append([]domain.ChatMessage{systemPrompt(gwReq.UserProfile, gwReq.Analysis)}, req.Messages...)

	promptTokens := estimateTokens(gwReq.Messages)

	stream, err := c.gateway.StreamChat(ctx, gwReq)
	if err != nil {
		c.metrics.IncrRequest("error")
		c.metrics.IncrExternalError("chat-gateway")
		return nil, err
	}

	return &meteredStream{
		inner:        stream,
		metrics:      c.metrics,
		promptTokens: promptTokens,
	}, nil
}

// CoachMetrics returns the aggregate usage snapshot for the dashboard's
// admin panel.
func (c *Coach) CoachMetrics() *domain.CoachMetrics {
	return c.metrics.GetCoachSnapshot()
}

// systemPrompt renders the grounding message the model sees before the
// conversation history.
func systemPrompt(p *domain.UserProfile, a *domain.FinancialAnalysis) domain.ChatMessage {
	var b strings.Builder
	b.WriteString("You are FinPulse Coach, a pragmatic personal-finance assistant. ")
	b.WriteString("Be concrete, use the user's own numbers, and never give investment advice.\n")

	if p != nil {
		fmt.Fprintf(&b, "\nUser context: income range %s, fixed commitments %.0f/month", p.IncomeRange, p.TotalFixedAmount)
		if len(p.Commitments) > 0 {
			fmt.Fprintf(&b, ", %d active commitments", len(p.Commitments))
		}
		b.WriteString(".\n")
	}
	if a != nil {
		fmt.Fprintf(&b,
			"Current analysis: stress score %d (%s), silent burden index %d%%, weekly budget %.0f, daily budget %.0f",
			a.StressScore, a.RiskLevel, a.SilentBurdenIndex, a.WeeklyBudget, a.DailyBudget)
		if a.SurvivalUnbounded {
			b.WriteString(", balance outlasts current spending rate")
		} else {
			fmt.Fprintf(&b, ", ~%d survival days at current rate", a.SurvivalDays)
		}
		b.WriteString(".\n")
		for _, sig := range a.ActiveSignals {
			fmt.Fprintf(&b, "Active signal [%s]: %s\n", sig.Severity, sig.Title)
		}
	}
	return domain.ChatMessage{Role: "system", Content: b.String()}
}

// estimateTokens approximates token counts at 4 characters per token. The
// gateway's stream carries no usage frame, so billing metrics are estimates.
func estimateTokens(msgs []domain.ChatMessage) int {
	chars := 0
	for _, m := range msgs {
		chars += len(m.Content)
	}
	return chars / 4
}

// meteredStream wraps a gateway stream and records token/request metrics
// when the stream finishes.
type meteredStream struct {
	inner        port.ChatStream
	metrics      *observability.Metrics
	promptTokens int
	outputChars  int
	recorded     bool
	failed       bool
}

func (m *meteredStream) Recv() (domain.ChatDelta, error) {
	delta, err := m.inner.Recv()
	if err == nil {
		m.outputChars += len(delta.Content)
		return delta, nil
	}
	if err != io.EOF {
		m.failed = true
	}
	m.record()
	return delta, err
}

func (m *meteredStream) Close() error {
	m.record()
	return m.inner.Close()
}

func (m *meteredStream) record() {
	if m.recorded {
		return
	}
	m.recorded = true

	if m.failed {
		m.metrics.IncrRequest("error")
	} else {
		m.metrics.IncrRequest("success")
	}
	m.metrics.RecordTokens(m.promptTokens, m.outputChars/4)
}
