package bootstrap

import (
	"context"
	"time"

	"quotes-service/internal/application"
	"quotes-service/internal/domain"

	"github.com/shopspring/decimal"
)

var demoQuotes = []struct {
	symbol   domain.Symbol
	price    string
	currency string
}{
	{"AAPL", "150", "USD"},
	{"BTC-USD", "30000", "USD"},
}

// Seed inserts demo quotes for symbols that have none yet and reports how
// many were written.
func Seed(ctx context.Context, store application.QuoteStore) (int, error) {
	now := time.Now().UTC()
	inserted := 0
	for _, d := range demoQuotes {
		_, found, err := store.GetLatest(ctx, d.symbol)
		if err != nil {
			return inserted, err
		}
		if found {
			continue
		}
		if _, err := store.Upsert(ctx, domain.QuoteRecord{
			Symbol:     d.symbol,
			Price:      decimal.RequireFromString(d.price),
			Currency:   d.currency,
			Source:     domain.SourceSeed,
			ObservedAt: now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
