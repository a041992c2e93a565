package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/finpulse/finpulse-api-go/internal/domain"
	"github.com/finpulse/finpulse-api-go/internal/infra/observability"
	"github.com/finpulse/finpulse-api-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router needs.
type Services struct {
	Wellness *service.Wellness
	Coach    *service.Coach
	Reports  *service.Reports
	Market   *service.Market
}

// NewRouter creates the HTTP router with all routes and middleware.
// All /v1 routes require a Bearer token; the operational endpoints do not.
func NewRouter(svcs Services, metrics *observability.Metrics, jwtSecret string, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 (authenticated) ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(JWTAuthMiddleware(jwtSecret, logger))

		// Profile
		r.Get("/profile", getProfileHandler(svcs.Wellness, logger))
		r.Put("/profile", putProfileHandler(svcs.Wellness, logger))

		// Transactions
		r.Get("/transactions", listTransactionsHandler(svcs.Wellness, logger))
		r.Post("/transactions", addTransactionHandler(svcs.Wellness, logger))

		// Derived metrics
		r.Get("/analysis", getAnalysisHandler(svcs.Wellness, logger))
		r.Get("/analysis/signals", getSignalsHandler(svcs.Wellness, logger))
		r.Get("/analysis/breakdown", getBreakdownHandler(svcs.Wellness, logger))
		r.Get("/analysis/weekly", getWeeklyHandler(svcs.Wellness, logger))

		// Budget guardrails
		r.Get("/guardrails", listGuardrailsHandler(svcs.Wellness, logger))
		r.Put("/guardrails", putGuardrailHandler(svcs.Wellness, logger))

		// AI coach (SSE)
		r.Post("/chat", chatHandler(svcs.Coach, logger))
		r.Get("/metrics/coach", coachMetricsHandler(svcs.Coach))

		// Reports
		r.Post("/reports", generateReportHandler(svcs.Reports, logger))

		// Market data
		r.Post("/market", marketHandler(svcs.Market, logger))
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "healthy",
			"checked_at": time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// ============================================================
// Profile
// ============================================================

func getProfileHandler(svc *service.Wellness, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/profile")
		defer span.End()

		profile, err := svc.GetProfile(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func putProfileHandler(svc *service.Wellness, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/profile")
		defer span.End()

		var profile domain.UserProfile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		// The token, not the body, decides whose profile this is.
		profile.UserID = UserIDFromContext(ctx)

		if err := svc.SaveProfile(ctx, &profile); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// ============================================================
// Transactions
// ============================================================

func listTransactionsHandler(svc *service.Wellness, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		from := r.URL.Query().Get("from")
		to := r.URL.Query().Get("to")

		txns, err := svc.ListTransactions(ctx, UserIDFromContext(ctx), from, to)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": txns})
	}
}

func addTransactionHandler(svc *service.Wellness, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions")
		defer span.End()

		var tx domain.Transaction
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		tx.UserID = UserIDFromContext(ctx)
		span.SetAttributes(attribute.String("transaction.category", string(tx.Category)))

		saved, err := svc.AddTransaction(ctx, &tx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

// ============================================================
// Derived metrics
// ============================================================

func getAnalysisHandler(svc *service.Wellness, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analysis")
		defer span.End()

		analysis, err := svc.GetAnalysis(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, analysis)
	}
}

func getSignalsHandler(svc *service.Wellness, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analysis/signals")
		defer span.End()

		signals, err := svc.GetSignals(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"signals": signals})
	}
}

func getBreakdownHandler(svc *service.Wellness, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analysis/breakdown")
		defer span.End()

		from := r.URL.Query().Get("from")
		to := r.URL.Query().Get("to")

		breakdown, err := svc.CategoryBreakdown(ctx, UserIDFromContext(ctx), from, to)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"breakdown": breakdown})
	}
}

func getWeeklyHandler(svc *service.Wellness, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/analysis/weekly")
		defer span.End()

		week, spike, err := svc.WeeklyPattern(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"weekly":        week,
			"weekend_spike": spike,
		})
	}
}

// ============================================================
// Budget guardrails
// ============================================================

func listGuardrailsHandler(svc *service.Wellness, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/guardrails")
		defer span.End()

		rails, err := svc.ListGuardrails(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"guardrails": rails})
	}
}

func putGuardrailHandler(svc *service.Wellness, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/guardrails")
		defer span.End()

		var g domain.BudgetGuardrail
		if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		g.UserID = UserIDFromContext(ctx)

		saved, err := svc.SetGuardrail(ctx, &g)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

// ============================================================
// AI coach — POST /v1/chat (SSE)
// ============================================================

func chatHandler(svc *service.Coach, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat")
		defer span.End()

		var req domain.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		stream, err := svc.StreamChat(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		defer stream.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			delta, err := stream.Recv()
			if err == io.EOF {
				io.WriteString(w, "data: [DONE]\n\n")
				flusher.Flush()
				return
			}
			if err != nil {
				// Headers are gone; the best we can do is log and cut the stream.
				logger.Warn("chat stream interrupted", zap.Error(err))
				return
			}

			payload, err := json.Marshal(delta)
			if err != nil {
				logger.Error("chat delta encode failed", zap.Error(err))
				return
			}
			io.WriteString(w, "data: "+string(payload)+"\n\n")
			flusher.Flush()
		}
	}
}

func coachMetricsHandler(svc *service.Coach) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.CoachMetrics())
	}
}

// ============================================================
// Reports
// ============================================================

func generateReportHandler(svc *service.Reports, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/reports")
		defer span.End()

		var req domain.ReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		span.SetAttributes(attribute.String("report.type", string(req.Type)))

		report, err := svc.Generate(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.ReportResponse{Success: true, Report: report})
	}
}

// ============================================================
// Market data
// ============================================================

func marketHandler(svc *service.Market, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/market")
		defer span.End()

		var req domain.MarketRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		span.SetAttributes(attribute.String("market.type", string(req.Type)))

		data, err := svc.Query(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}
