package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/handler"
	"github.com/finpulse/finpulse-api-go/internal/infra/cache"
	"github.com/finpulse/finpulse-api-go/internal/infra/client"
	"github.com/finpulse/finpulse-api-go/internal/infra/observability"
	"github.com/finpulse/finpulse-api-go/internal/infra/resilience"
	"github.com/finpulse/finpulse-api-go/internal/infra/sqlite"
	"github.com/finpulse/finpulse-api-go/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "integration-test-secret"

func signToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

// TestIntegration_FullFlow runs the whole stack against a real SQLite store
// and mocked upstream gateways: onboard a profile, record transactions, read
// the analysis, stream a chat turn, and query market data.
func TestIntegration_FullFlow(t *testing.T) {
	// --- Mock AI gateway (SSE) ---
	gatewayServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.GatewayChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("gateway: decode request: %v", err)
		}
		if req.UserProfile == nil {
			t.Error("gateway: request should carry the user profile")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"You are \"}}]}\n\n")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"on track.\"}}]}\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer gatewayServer.Close()

	// --- Mock report generator ---
	reportServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.ReportResponse{
			Success: true,
			Report: &domain.Report{
				ID:      "rep-1",
				Type:    domain.ReportMonthly,
				Title:   "Monthly Summary",
				Content: "## Spending held steady this month.",
			},
		})
	}))
	defer reportServer.Close()

	// --- Mock market API ---
	marketServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.MarketData{
			Type:  domain.MarketStock,
			Quote: &domain.StockQuote{Symbol: "INFY", Price: 1520.5, Currency: "INR"},
		})
	}))
	defer marketServer.Close()

	// --- Build the stack ---
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "integration.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	wellnessSvc := service.NewWellness(store, cache.New[*domain.UserProfile](time.Minute), metrics, logger)
	coachSvc := service.NewCoach(
		client.NewChatGatewayClient(client.NewStreamingHTTPClient(5*time.Second), gatewayServer.URL, "test-key"),
		wellnessSvc, metrics, logger,
	)
	reportsSvc := service.NewReports(
		client.NewReportClient(httpClient, reportServer.URL, resilience.NewCircuitBreaker("report-it")),
		wellnessSvc, metrics, logger,
	)
	marketSvc := service.NewMarket(
		client.NewMarketClient(httpClient, marketServer.URL, "", resilience.NewCircuitBreaker("market-it"), resilience.NewBulkhead(4), cfg),
		cache.New[*domain.MarketData](time.Minute), metrics, logger,
	)

	router := handler.NewRouter(handler.Services{
		Wellness: wellnessSvc,
		Coach:    coachSvc,
		Reports:  reportsSvc,
		Market:   marketSvc,
	}, metrics, testSecret, []string{"*"}, logger)

	auth := signToken(t, "user-42")
	do := func(method, path string, payload any) *httptest.ResponseRecorder {
		t.Helper()
		var body io.Reader
		if payload != nil {
			b, _ := json.Marshal(payload)
			body = bytes.NewReader(b)
		}
		req := httptest.NewRequest(method, path, body)
		req.Header.Set("Authorization", auth)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	// --- 1. Onboard ---
	rec := do(http.MethodPut, "/v1/profile", domain.UserProfile{
		IncomeRange:        domain.Income25k50k,
		Commitments:        []domain.Commitment{domain.CommitmentRent, domain.CommitmentEMI},
		TotalFixedAmount:   15000,
		SpendingStyle:      domain.StyleMixed,
		MoneyFeeling:       domain.FeelingSometimesStressed,
		ReachZeroFrequency: domain.ReachZeroSometimes,
		EmergencyReadiness: domain.EmergencySmallBuffer,
		IsOnboarded:        true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put profile: %d, %s", rec.Code, rec.Body.String())
	}

	// --- 2. Record spending ---
	for _, tx := range []domain.Transaction{
		{Date: time.Now().AddDate(0, 0, -3), Merchant: "BigBasket", Category: domain.CategoryGroceries, Amount: 1800, Type: domain.TransactionExpense},
		{Date: time.Now().AddDate(0, 0, -1), Merchant: "Zomato", Category: domain.CategoryFood, Amount: 650, Type: domain.TransactionExpense},
	} {
		rec := do(http.MethodPost, "/v1/transactions", tx)
		if rec.Code != http.StatusCreated {
			t.Fatalf("post transaction: %d, %s", rec.Code, rec.Body.String())
		}
	}

	// --- 3. Analysis reflects the profile ---
	rec = do(http.MethodGet, "/v1/analysis", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get analysis: %d, %s", rec.Code, rec.Body.String())
	}
	var analysis domain.FinancialAnalysis
	if err := json.Unmarshal(rec.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	// 15000 fixed on a 37500 average income.
	if analysis.SilentBurdenIndex != 40 {
		t.Errorf("silent burden index = %d, want 40", analysis.SilentBurdenIndex)
	}
	if analysis.StressScore <= 0 || analysis.RiskLevel == "" {
		t.Errorf("implausible analysis: %+v", analysis)
	}

	// --- 4. Chat turn streams over SSE ---
	rec = do(http.MethodPost, "/v1/chat", domain.ChatRequest{
		Messages: []domain.ChatMessage{{Role: "user", Content: "am I overspending?"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("chat: %d, %s", rec.Code, rec.Body.String())
	}
	out := rec.Body.String()
	if !strings.Contains(out, "You are ") || !strings.Contains(out, "on track.") {
		t.Errorf("chat deltas missing: %s", out)
	}
	if !strings.Contains(out, "data: [DONE]") {
		t.Errorf("chat stream missing DONE sentinel: %s", out)
	}

	// --- 5. Report ---
	rec = do(http.MethodPost, "/v1/reports", domain.ReportRequest{Type: domain.ReportMonthly})
	if rec.Code != http.StatusOK {
		t.Fatalf("report: %d, %s", rec.Code, rec.Body.String())
	}
	var reportResp domain.ReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &reportResp); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !reportResp.Success || reportResp.Report == nil || reportResp.Report.ID != "rep-1" {
		t.Errorf("unexpected report: %+v", reportResp)
	}

	// --- 6. Market quote ---
	rec = do(http.MethodPost, "/v1/market", domain.MarketRequest{Type: domain.MarketStock, Symbol: "INFY"})
	if rec.Code != http.StatusOK {
		t.Fatalf("market: %d, %s", rec.Code, rec.Body.String())
	}
	var data domain.MarketData
	if err := json.Unmarshal(rec.Body.Bytes(), &data); err != nil {
		t.Fatalf("decode market data: %v", err)
	}
	if data.Quote == nil || data.Quote.Symbol != "INFY" {
		t.Errorf("unexpected market data: %+v", data)
	}
}
