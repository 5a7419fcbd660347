package application

import (
	"context"
	"time"

	"quotes-service/internal/domain"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=application

// QuoteStore persists the latest quote per symbol.
type QuoteStore interface {
	// GetLatest reports false when no record exists; absence is not an error.
	GetLatest(ctx context.Context, symbol domain.Symbol) (domain.QuoteRecord, bool, error)
	// Upsert inserts or updates the record for rec.Symbol, preserving CreatedAt
	// and ID of an existing record, and returns the persisted state.
	Upsert(ctx context.Context, rec domain.QuoteRecord) (domain.QuoteRecord, error)
}

// ProviderGateway talks to the external market-data provider. Every error it
// returns is a *domain.ProviderError.
type ProviderGateway interface {
	FetchLatest(ctx context.Context, symbol domain.Symbol) (domain.ProviderQuote, error)
	Ping(ctx context.Context) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Metrics receives reconciliation events. Implementations must be safe for
// concurrent use.
type Metrics interface {
	Verdict(v Verdict)
	Outcome(o Outcome)
	ProviderCall(kind domain.ProviderErrorKind, took time.Duration)
}

type Outcome string

const (
	OutcomeCache       Outcome = "cache"
	OutcomeExternal    Outcome = "external"
	OutcomeFallback    Outcome = "fallback"
	OutcomeUnavailable Outcome = "unavailable"
)

type noopMetrics struct{}

func (noopMetrics) Verdict(Verdict) {}
func (noopMetrics) Outcome(Outcome) {}
func (noopMetrics) ProviderCall(domain.ProviderErrorKind, time.Duration) {}
