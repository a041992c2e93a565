package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/infra/resilience"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// transactionRow maps the transactions table columns to our domain.
type transactionRow struct {
	ID       string  `json:"id"`
	UserID   string  `json:"user_id"`
	Date     string  `json:"date"` // ISO 8601
	Merchant string  `json:"merchant,omitempty"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Type     string  `json:"type"`
}

func (r *transactionRow) toDomain() (domain.Transaction, error) {
	date, err := time.Parse(time.RFC3339, r.Date)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s has malformed date %q: %w", r.ID, r.Date, err)
	}
	return domain.Transaction{
		ID:       r.ID,
		UserID:   r.UserID,
		Date:     date,
		Merchant: r.Merchant,
		Category: domain.Category(r.Category),
		Amount:   r.Amount,
		Type:     domain.TransactionType(r.Type),
	}, nil
}

// ListTransactions fetches transactions for a user, optionally bounded by
// [from, to] dates (YYYY-MM-DD), newest first.
func (c *Client) ListTransactions(ctx context.Context, userID string, from, to string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var txns []domain.Transaction

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("transactions?user_id=eq.%s&order=date.desc", userID)
			if from != "" {
				path += fmt.Sprintf("&date=gte.%s", from)
			}
			if to != "" {
				path += fmt.Sprintf("&date=lte.%s", to)
			}

			body, err := c.doGet(ctx, path)
			if err != nil {
				return err
			}
			if body == nil {
				txns = []domain.Transaction{}
				return nil
			}

			var rows []transactionRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode transactions: %w", err)
			}

			txns = make([]domain.Transaction, 0, len(rows))
			for i := range rows {
				tx, err := rows[i].toDomain()
				if err != nil {
					return err
				}
				txns = append(txns, tx)
			}
			return nil
		})
	})
	if err != nil {
		return nil, wrapStoreErr("transactions", err)
	}

	return txns, nil
}

// AddTransaction records a new immutable transaction and returns it with
// its assigned ID.
func (c *Client) AddTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.AddTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", tx.UserID))

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	row := transactionRow{
		ID:       tx.ID,
		UserID:   tx.UserID,
		Date:     tx.Date.Format(time.RFC3339),
		Merchant: tx.Merchant,
		Category: string(tx.Category),
		Amount:   tx.Amount,
		Type:     string(tx.Type),
	}

	var created *domain.Transaction

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doPost(ctx, "transactions", []transactionRow{row})
			if err != nil {
				return err
			}

			var rows []transactionRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode created transaction: %w", err)
			}
			if len(rows) == 0 {
				return fmt.Errorf("supabase returned empty representation")
			}
			got, err := rows[0].toDomain()
			if err != nil {
				return err
			}
			created = &got
			return nil
		})
	})
	if err != nil {
		return nil, wrapStoreErr("transactions", err)
	}

	return created, nil
}
