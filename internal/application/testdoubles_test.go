package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"quotes-service/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrRepo = errors.New("repo error")
)

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

type fakeQuoteStore struct {
	mu        sync.Mutex
	store     map[domain.Symbol]domain.QuoteRecord
	nextID    int64
	reads     int
	writes    int
	readErr   error
	upsertErr error
}

func (f *fakeQuoteStore) GetLatest(_ context.Context, symbol domain.Symbol) (domain.QuoteRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.readErr != nil {
		return domain.QuoteRecord{}, false, f.readErr
	}
	q, ok := f.store[symbol]
	return q, ok, nil
}

func (f *fakeQuoteStore) Upsert(_ context.Context, q domain.QuoteRecord) (domain.QuoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.upsertErr != nil {
		return domain.QuoteRecord{}, f.upsertErr
	}
	if f.store == nil {
		f.store = map[domain.Symbol]domain.QuoteRecord{}
	}
	if prev, ok := f.store[q.Symbol]; ok {
		q.ID, q.CreatedAt = prev.ID, prev.CreatedAt
	} else {
		f.nextID++
		q.ID = f.nextID
	}
	f.store[q.Symbol] = q
	return q, nil
}

type fakeGateway struct {
	mu      sync.Mutex
	out     domain.ProviderQuote
	err     error
	pingErr error
	calls   []domain.Symbol
}

func (f *fakeGateway) FetchLatest(_ context.Context, symbol domain.Symbol) (domain.ProviderQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, symbol)
	if f.err != nil {
		return domain.ProviderQuote{}, f.err
	}
	out := f.out
	if out.Symbol == "" {
		out.Symbol = symbol
	}
	return out, nil
}

func (f *fakeGateway) Ping(context.Context) error { return f.pingErr }

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type recordingMetrics struct {
	mu       sync.Mutex
	verdicts []Verdict
	outcomes []Outcome
	calls    []domain.ProviderErrorKind
}

func (m *recordingMetrics) Verdict(v Verdict) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts = append(m.verdicts, v)
}

func (m *recordingMetrics) Outcome(o Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, o)
}

func (m *recordingMetrics) ProviderCall(kind domain.ProviderErrorKind, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, kind)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
