package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Source string

const (
	SourceCache    Source = "cache"
	SourceExternal Source = "external"
	SourceSeed     Source = "seed"
)

// QuoteRecord is the latest known quote for one symbol.
type QuoteRecord struct {
	ID         int64
	Symbol     Symbol
	Price      decimal.Decimal
	Currency   string
	Source     Source
	ObservedAt time.Time
	RawPayload string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProviderQuote is a provider response after normalization. It is never
// persisted as is.
type ProviderQuote struct {
	Symbol     Symbol
	Price      decimal.Decimal
	Currency   string
	ObservedAt time.Time
	RawPayload string
}

type HealthStatus struct {
	Status                string
	DatabaseOK            bool
	ExternalMarketOK      bool
	ExternalMarketMessage string
}

const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)
