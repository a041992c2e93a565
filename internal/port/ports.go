// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/finpulse/finpulse-api-go/internal/domain"
)

// ProfileStore reads and writes user profiles. Writes are whole-object
// replacements; there is no partial update.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	SaveProfile(ctx context.Context, profile *domain.UserProfile) error
}

// TransactionStore reads and records transactions. Transactions are
// immutable once recorded.
type TransactionStore interface {
	ListTransactions(ctx context.Context, userID string, from, to string) ([]domain.Transaction, error)
	AddTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
}

// GuardrailStore manages per-category budget ceilings.
type GuardrailStore interface {
	ListGuardrails(ctx context.Context, userID string) ([]domain.BudgetGuardrail, error)
	UpsertGuardrail(ctx context.Context, g *domain.BudgetGuardrail) (*domain.BudgetGuardrail, error)
}

// Store is the full persistence surface, implemented by both the Supabase
// adapter (remote) and the SQLite adapter (local).
type Store interface {
	ProfileStore
	TransactionStore
	GuardrailStore
}

// ChatStream is a finite sequence of text deltas from the AI gateway.
// Recv returns io.EOF after the terminating sentinel; Close aborts the
// underlying connection and is safe to call at any point.
type ChatStream interface {
	Recv() (domain.ChatDelta, error)
	Close() error
}

// ChatGateway forwards a conversation to the hosted chat-completion
// endpoint. One outbound call per invocation, no retries: upstream failures
// surface immediately as typed errors.
type ChatGateway interface {
	StreamChat(ctx context.Context, req *domain.GatewayChatRequest) (ChatStream, error)
}

// ReportGenerator produces a markdown report from the profile + analysis.
type ReportGenerator interface {
	Generate(ctx context.Context, req *domain.GatewayReportRequest) (*domain.Report, error)
}

// MarketDataFetcher proxies quote/news/time-series lookups.
type MarketDataFetcher interface {
	Fetch(ctx context.Context, req *domain.MarketRequest) (*domain.MarketData, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
