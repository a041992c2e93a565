package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/infra/sqlite"

	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestProfileRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := &domain.UserProfile{
		UserID:             "user-1",
		IncomeRange:        domain.Income25k50k,
		IncomeType:         "salaried",
		Country:            "IN",
		Commitments:        []domain.Commitment{domain.CommitmentRent, domain.CommitmentEMI},
		TotalFixedAmount:   18000,
		SpendingStyle:      domain.StyleMixed,
		MoneyFeeling:       domain.FeelingSometimesStressed,
		ReachZeroFrequency: domain.ReachZeroSometimes,
		EmergencyReadiness: domain.EmergencySmallBuffer,
		IsOnboarded:        true,
	}
	if err := store.SaveProfile(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IncomeRange != domain.Income25k50k || got.TotalFixedAmount != 18000 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Commitments) != 2 || got.Commitments[1] != domain.CommitmentEMI {
		t.Errorf("commitments not preserved: %v", got.Commitments)
	}

	// Save is a whole-object replacement.
	p.TotalFixedAmount = 21000
	p.Commitments = []domain.Commitment{domain.CommitmentRent}
	if err := store.SaveProfile(ctx, p); err != nil {
		t.Fatalf("resave: %v", err)
	}
	got, err = store.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if got.TotalFixedAmount != 21000 || len(got.Commitments) != 1 {
		t.Errorf("replacement not applied: %+v", got)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetProfile(context.Background(), "ghost")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransactions_InsertAndRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for i, amount := range []float64{100, 200, 300} {
		tx := &domain.Transaction{
			UserID:   "user-1",
			Date:     base.AddDate(0, 0, -i),
			Merchant: "Shop",
			Category: domain.CategoryGroceries,
			Amount:   amount,
			Type:     domain.TransactionExpense,
		}
		if _, err := store.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if tx.ID == "" {
			t.Fatal("insert must assign an id")
		}
	}

	all, err := store.ListTransactions(ctx, "user-1", "", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("transactions = %d, want 3", len(all))
	}
	if all[0].Amount != 100 {
		t.Errorf("newest first: got %.0f leading, want 100", all[0].Amount)
	}

	// Only the two most recent fall inside the range.
	from := base.AddDate(0, 0, -1).Format(time.RFC3339)
	ranged, err := store.ListTransactions(ctx, "user-1", from, "")
	if err != nil {
		t.Fatalf("ranged list: %v", err)
	}
	if len(ranged) != 2 {
		t.Errorf("ranged transactions = %d, want 2", len(ranged))
	}

	other, err := store.ListTransactions(ctx, "someone-else", "", "")
	if err != nil {
		t.Fatalf("other user list: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("user isolation broken: %d rows", len(other))
	}
}

func TestTransactions_MalformedDateSurfaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := sqlite.NewStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	// A corrupt row must fail the listing loudly, not decode as the zero
	// time and skew the spending-window math downstream.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	_, err = db.Exec(`
		INSERT INTO transactions (id, user_id, date, merchant, category, amount, type)
		VALUES ('tx-bad', 'user-1', 'not-a-date', 'Shop', 'groceries', 100, 'expense')`)
	if err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	_, err = store.ListTransactions(context.Background(), "user-1", "", "")
	if err == nil {
		t.Fatal("expected error for malformed stored date, got nil")
	}
	if !strings.Contains(err.Error(), "tx-bad") {
		t.Errorf("error should name the offending row: %v", err)
	}
}

func TestGuardrails_UpsertByCategory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g := &domain.BudgetGuardrail{UserID: "user-1", Category: domain.CategoryFood, Limit: 5000}
	if _, err := store.UpsertGuardrail(ctx, g); err != nil {
		t.Fatalf("insert: %v", err)
	}

	g2 := &domain.BudgetGuardrail{UserID: "user-1", Category: domain.CategoryFood, Limit: 6000, Spent: 1200}
	if _, err := store.UpsertGuardrail(ctx, g2); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	rails, err := store.ListGuardrails(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rails) != 1 {
		t.Fatalf("guardrails = %d, want 1 (same category must not duplicate)", len(rails))
	}
	if rails[0].Limit != 6000 || rails[0].Spent != 1200 {
		t.Errorf("upsert values not applied: %+v", rails[0])
	}
}
