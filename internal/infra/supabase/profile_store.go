package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// userProfileRow maps the user_profiles table columns to our domain.
type userProfileRow struct {
	UserID             string   `json:"user_id"`
	IncomeRange        string   `json:"income_range"`
	IncomeType         string   `json:"income_type,omitempty"`
	Country            string   `json:"country,omitempty"`
	Commitments        []string `json:"commitments"`
	TotalFixedAmount   float64  `json:"total_fixed_amount"`
	SpendingStyle      string   `json:"spending_style,omitempty"`
	OverspendTrigger   string   `json:"overspend_trigger,omitempty"`
	TopImpulseCategory string   `json:"top_impulse_category,omitempty"`
	MoneyFeeling       string   `json:"money_feeling,omitempty"`
	ReachZeroFrequency string   `json:"reach_zero_frequency,omitempty"`
	EmergencyReadiness string   `json:"emergency_readiness,omitempty"`
	LifeSituation      string   `json:"life_situation,omitempty"`
	Dependents         int      `json:"dependents,omitempty"`
	IsOnboarded        bool     `json:"is_onboarded"`
}

func (r *userProfileRow) toDomain() *domain.UserProfile {
	commitments := make([]domain.Commitment, 0, len(r.Commitments))
	for _, c := range r.Commitments {
		commitments = append(commitments, domain.Commitment(c))
	}
	return &domain.UserProfile{
		UserID:             r.UserID,
		IncomeRange:        domain.IncomeRange(r.IncomeRange),
		IncomeType:         r.IncomeType,
		Country:            r.Country,
		Commitments:        commitments,
		TotalFixedAmount:   r.TotalFixedAmount,
		SpendingStyle:      domain.SpendingStyle(r.SpendingStyle),
		OverspendTrigger:   r.OverspendTrigger,
		TopImpulseCategory: domain.Category(r.TopImpulseCategory),
		MoneyFeeling:       domain.MoneyFeeling(r.MoneyFeeling),
		ReachZeroFrequency: domain.ReachZeroFrequency(r.ReachZeroFrequency),
		EmergencyReadiness: domain.EmergencyReadiness(r.EmergencyReadiness),
		LifeSituation:      r.LifeSituation,
		Dependents:         r.Dependents,
		IsOnboarded:        r.IsOnboarded,
	}
}

func profileToRow(p *domain.UserProfile) *userProfileRow {
	commitments := make([]string, 0, len(p.Commitments))
	for _, c := range p.Commitments {
		commitments = append(commitments, string(c))
	}
	return &userProfileRow{
		UserID:             p.UserID,
		IncomeRange:        string(p.IncomeRange),
		IncomeType:         p.IncomeType,
		Country:            p.Country,
		Commitments:        commitments,
		TotalFixedAmount:   p.TotalFixedAmount,
		SpendingStyle:      string(p.SpendingStyle),
		OverspendTrigger:   p.OverspendTrigger,
		TopImpulseCategory: string(p.TopImpulseCategory),
		MoneyFeeling:       string(p.MoneyFeeling),
		ReachZeroFrequency: string(p.ReachZeroFrequency),
		EmergencyReadiness: string(p.EmergencyReadiness),
		LifeSituation:      p.LifeSituation,
		Dependents:         p.Dependents,
		IsOnboarded:        p.IsOnboarded,
	}
}

// GetProfile fetches the user profile, implementing port.ProfileStore.
func (c *Client) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var profile *domain.UserProfile

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("user_profiles?user_id=eq.%s&limit=1", userID)
			body, err := c.doGet(ctx, path)
			if err != nil {
				return err
			}

			if body == nil || strings.TrimSpace(string(body)) == "[]" {
				return &domain.ErrNotFound{Resource: "profile", ID: userID}
			}

			var rows []userProfileRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode profile: %w", err)
			}
			if len(rows) == 0 {
				return &domain.ErrNotFound{Resource: "profile", ID: userID}
			}

			profile = rows[0].toDomain()
			return nil
		})
	})
	if err != nil {
		return nil, wrapStoreErr("profile", err)
	}

	return profile, nil
}

// SaveProfile replaces the stored profile wholesale (upsert on user_id).
func (c *Client) SaveProfile(ctx context.Context, p *domain.UserProfile) error {
	ctx, span := tracer.Start(ctx, "Supabase.SaveProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", p.UserID))

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			_, err := c.doUpsert(ctx, "user_profiles?on_conflict=user_id", profileToRow(p))
			return err
		})
	})
	if err != nil {
		return wrapStoreErr("profile", err)
	}
	return nil
}

// wrapStoreErr keeps typed domain errors intact and wraps everything else
// as an external-service failure so handlers can map it to 503.
func wrapStoreErr(resource string, err error) error {
	switch err.(type) {
	case *domain.ErrNotFound, *domain.ErrValidation:
		return err
	}
	if err == context.Canceled || err == context.DeadlineExceeded {
		return err
	}
	return &domain.ErrExternalService{Service: "supabase/" + resource, Err: err}
}
