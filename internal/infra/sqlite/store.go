// Package sqlite is the local persistence backend, used when Supabase is
// not configured. It mirrors the source application's local-storage mode:
// everything lives in a single on-disk database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// Store implements port.Store on an embedded SQLite database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStore opens (creating if necessary) the database at dbPath and runs
// pending migrations.
func NewStore(dbPath string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ============================================================
// Profiles
// ============================================================

const profileColumns = `user_id, income_range, income_type, country, commitments,
	total_fixed_amount, spending_style, overspend_trigger, top_impulse_category,
	money_feeling, reach_zero_frequency, emergency_readiness, life_situation,
	dependents, is_onboarded`

// GetProfile implements port.ProfileStore.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = ?`, userID)

	var (
		p               domain.UserProfile
		commitmentsJSON string
	)
	err := row.Scan(
		&p.UserID, &p.IncomeRange, &p.IncomeType, &p.Country, &commitmentsJSON,
		&p.TotalFixedAmount, &p.SpendingStyle, &p.OverspendTrigger, &p.TopImpulseCategory,
		&p.MoneyFeeling, &p.ReachZeroFrequency, &p.EmergencyReadiness, &p.LifeSituation,
		&p.Dependents, &p.IsOnboarded,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	if err := json.Unmarshal([]byte(commitmentsJSON), &p.Commitments); err != nil {
		return nil, fmt.Errorf("decode commitments: %w", err)
	}
	return &p, nil
}

// SaveProfile implements port.ProfileStore as a whole-object replacement.
func (s *Store) SaveProfile(ctx context.Context, p *domain.UserProfile) error {
	commitmentsJSON, err := json.Marshal(p.Commitments)
	if err != nil {
		return fmt.Errorf("encode commitments: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			income_range = excluded.income_range,
			income_type = excluded.income_type,
			country = excluded.country,
			commitments = excluded.commitments,
			total_fixed_amount = excluded.total_fixed_amount,
			spending_style = excluded.spending_style,
			overspend_trigger = excluded.overspend_trigger,
			top_impulse_category = excluded.top_impulse_category,
			money_feeling = excluded.money_feeling,
			reach_zero_frequency = excluded.reach_zero_frequency,
			emergency_readiness = excluded.emergency_readiness,
			life_situation = excluded.life_situation,
			dependents = excluded.dependents,
			is_onboarded = excluded.is_onboarded`,
		p.UserID, string(p.IncomeRange), p.IncomeType, p.Country, string(commitmentsJSON),
		p.TotalFixedAmount, string(p.SpendingStyle), p.OverspendTrigger, string(p.TopImpulseCategory),
		string(p.MoneyFeeling), string(p.ReachZeroFrequency), string(p.EmergencyReadiness),
		p.LifeSituation, p.Dependents, p.IsOnboarded,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	s.logger.Debug("profile saved", zap.String("user_id", p.UserID))
	return nil
}

// ============================================================
// Transactions
// ============================================================

// ListTransactions implements port.TransactionStore, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string, from, to string) ([]domain.Transaction, error) {
	query := `SELECT id, user_id, date, merchant, category, amount, type
		FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if from != "" {
		query += ` AND date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		var (
			tx      domain.Transaction
			dateStr string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &dateStr, &tx.Merchant, &tx.Category, &tx.Amount, &tx.Type); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Date, err = time.Parse(time.RFC3339, dateStr)
		if err != nil {
			return nil, fmt.Errorf("transaction %s has malformed date %q: %w", tx.ID, dateStr, err)
		}
		txns = append(txns, tx)
	}
	return txns, rows.Err()
}

// AddTransaction implements port.TransactionStore. Rows are insert-only.
func (s *Store) AddTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, date, merchant, category, amount, type)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Date.Format(time.RFC3339), tx.Merchant,
		string(tx.Category), tx.Amount, string(tx.Type),
	)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	s.logger.Debug("transaction recorded",
		zap.String("id", tx.ID),
		zap.String("user_id", tx.UserID),
		zap.String("category", string(tx.Category)),
		zap.Float64("amount", tx.Amount),
	)
	return tx, nil
}

// ============================================================
// Budget guardrails
// ============================================================

// ListGuardrails implements port.GuardrailStore.
func (s *Store) ListGuardrails(ctx context.Context, userID string) ([]domain.BudgetGuardrail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, category, monthly_limit, spent
		FROM budget_guardrails WHERE user_id = ? ORDER BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("list guardrails: %w", err)
	}
	defer rows.Close()

	rails := make([]domain.BudgetGuardrail, 0)
	for rows.Next() {
		var g domain.BudgetGuardrail
		if err := rows.Scan(&g.ID, &g.UserID, &g.Category, &g.Limit, &g.Spent); err != nil {
			return nil, fmt.Errorf("scan guardrail: %w", err)
		}
		rails = append(rails, g)
	}
	return rails, rows.Err()
}

// UpsertGuardrail implements port.GuardrailStore, keyed by (user, category).
func (s *Store) UpsertGuardrail(ctx context.Context, g *domain.BudgetGuardrail) (*domain.BudgetGuardrail, error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budget_guardrails (id, user_id, category, monthly_limit, spent)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category) DO UPDATE SET
			monthly_limit = excluded.monthly_limit,
			spent = excluded.spent`,
		g.ID, g.UserID, string(g.Category), g.Limit, g.Spent,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert guardrail: %w", err)
	}
	return g, nil
}
