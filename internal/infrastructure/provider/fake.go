package provider

import (
	"context"
	"time"

	"quotes-service/internal/application"
	"quotes-service/internal/domain"

	"github.com/shopspring/decimal"
)

var _ application.ProviderGateway = (*Fake)(nil)

// Fake answers every symbol with a fixed price stamped now.
type Fake struct {
	price    decimal.Decimal
	currency string
}

func NewFake(price decimal.Decimal, currency string) *Fake {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Fake{price: price, currency: currency}
}

func (f *Fake) FetchLatest(_ context.Context, symbol domain.Symbol) (domain.ProviderQuote, error) {
	return domain.ProviderQuote{
		Symbol:     symbol,
		Price:      f.price,
		Currency:   f.currency,
		ObservedAt: time.Now().UTC(),
		RawPayload: `{"source":"fake"}`,
	}, nil
}

func (f *Fake) Ping(context.Context) error { return nil }
