package memory

import (
	"context"
	"sync"
	"time"

	"quotes-service/internal/application"
	"quotes-service/internal/domain"
)

// QuoteStore is an in-process QuoteStore for tests and single-replica runs.
// Writes take the exclusive lock for the whole read-modify-write, so readers
// only ever observe complete records.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes map[domain.Symbol]domain.QuoteRecord
	nextID int64
	now    func() time.Time
}

var _ application.QuoteStore = (*QuoteStore)(nil)

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{
		quotes: make(map[domain.Symbol]domain.QuoteRecord),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *QuoteStore) GetLatest(_ context.Context, symbol domain.Symbol) (domain.QuoteRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[symbol]
	return q, ok, nil
}

func (s *QuoteStore) Upsert(ctx context.Context, rec domain.QuoteRecord) (domain.QuoteRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.QuoteRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	if prev, ok := s.quotes[rec.Symbol]; ok {
		rec.ID, rec.CreatedAt = prev.ID, prev.CreatedAt
	} else {
		s.nextID++
		rec.ID = s.nextID
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
	}
	s.quotes[rec.Symbol] = rec
	return rec, nil
}

func (s *QuoteStore) Ping(context.Context) error { return nil }

// Len reports how many symbols are stored.
func (s *QuoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quotes)
}
