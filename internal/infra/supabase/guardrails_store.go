package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/infra/resilience"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// guardrailRow maps the budget_guardrails table columns to our domain.
type guardrailRow struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	Category string  `json:"category"`
	Limit    float64 `json:"monthly_limit"`
	Spent    float64 `json:"spent"`
}

func (r *guardrailRow) toDomain() domain.BudgetGuardrail {
	return domain.BudgetGuardrail{
		ID:       r.ID,
		UserID:   r.UserID,
		Category: domain.Category(r.Category),
		Limit:    r.Limit,
		Spent:    r.Spent,
	}
}

// ListGuardrails fetches the user's per-category budget ceilings.
func (c *Client) ListGuardrails(ctx context.Context, userID string) ([]domain.BudgetGuardrail, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListGuardrails")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var rails []domain.BudgetGuardrail

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("budget_guardrails?user_id=eq.%s&order=category.asc", userID)
			body, err := c.doGet(ctx, path)
			if err != nil {
				return err
			}
			if body == nil {
				rails = []domain.BudgetGuardrail{}
				return nil
			}

			var rows []guardrailRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode guardrails: %w", err)
			}

			rails = make([]domain.BudgetGuardrail, 0, len(rows))
			for i := range rows {
				rails = append(rails, rows[i].toDomain())
			}
			return nil
		})
	})
	if err != nil {
		return nil, wrapStoreErr("guardrails", err)
	}

	return rails, nil
}

// UpsertGuardrail creates or replaces a guardrail keyed by (user, category).
func (c *Client) UpsertGuardrail(ctx context.Context, g *domain.BudgetGuardrail) (*domain.BudgetGuardrail, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertGuardrail")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", g.UserID))

	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	row := guardrailRow{
		ID:       g.ID,
		UserID:   g.UserID,
		Category: string(g.Category),
		Limit:    g.Limit,
		Spent:    g.Spent,
	}

	var saved *domain.BudgetGuardrail

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doUpsert(ctx, "budget_guardrails?on_conflict=user_id,category", []guardrailRow{row})
			if err != nil {
				return err
			}

			var rows []guardrailRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode saved guardrail: %w", err)
			}
			if len(rows) == 0 {
				return fmt.Errorf("supabase returned empty representation")
			}
			out := rows[0].toDomain()
			saved = &out
			return nil
		})
	})
	if err != nil {
		return nil, wrapStoreErr("guardrails", err)
	}

	return saved, nil
}
