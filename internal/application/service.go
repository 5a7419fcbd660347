package application

import (
	"context"
	"time"

	"quotes-service/internal/domain"

	"go.uber.org/zap"
)

// QuoteService answers "best known quote for symbol X" from the store and the
// provider, falling back to stored data when the provider fails.
type QuoteService struct {
	store   QuoteStore
	gateway ProviderGateway
	policy  Policy
	clock   Clock
	log     *zap.Logger
	metrics Metrics
}

type Option func(*QuoteService)

func WithClock(c Clock) Option { return func(s *QuoteService) { s.clock = c } }
func WithLogger(l *zap.Logger) Option { return func(s *QuoteService) { s.log = l } }
func WithMetrics(m Metrics) Option { return func(s *QuoteService) { s.metrics = m } }

func NewQuoteService(store QuoteStore, gateway ProviderGateway, policy Policy, opts ...Option) *QuoteService {
	s := &QuoteService{
		store:   store,
		gateway: gateway,
		policy:  policy,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	return s
}

// GetQuote fails only with ErrInvalidSymbol or *ExternalUnavailableError.
// Exactly one provider attempt is made per call; retries are up to the caller.
func (s *QuoteService) GetQuote(ctx context.Context, rawSymbol string, forceRefresh bool) (domain.QuoteRecord, error) {
	symbol, err := domain.NormalizeSymbol(rawSymbol)
	if err != nil {
		return domain.QuoteRecord{}, err
	}
	log := s.log.With(zap.String("symbol", symbol.String()), zap.Bool("force_refresh", forceRefresh))

	var cached *domain.QuoteRecord
	rec, found, err := s.store.GetLatest(ctx, symbol)
	switch {
	case err != nil:
		// Treated as a miss: the provider may still answer.
		log.Warn("get_quote.store_read_failed", zap.Error(err))
	case found:
		cached = &rec
	}

	verdict := s.policy.Classify(cached, forceRefresh, s.clock.Now())
	s.metrics.Verdict(verdict)
	if verdict == VerdictCacheHit {
		out := *cached
		out.Source = domain.SourceCache
		s.metrics.Outcome(OutcomeCache)
		log.Debug("get_quote.cache_hit", zap.Time("observed_at", out.ObservedAt))
		return out, nil
	}

	started := time.Now()
	pq, err := s.gateway.FetchLatest(ctx, symbol)
	s.metrics.ProviderCall(domain.ProviderErrorKindOf(err), time.Since(started))
	if err != nil {
		return s.fallback(log, symbol, cached, err)
	}

	fresh := s.merge(symbol, cached, pq)
	saved, err := s.store.Upsert(ctx, fresh)
	if err != nil {
		// The provider answered; serve its value even though it was not stored.
		log.Error("get_quote.persist_failed", zap.Error(err))
		saved = fresh
	}
	s.metrics.Outcome(OutcomeExternal)
	log.Info("get_quote.refreshed",
		zap.String("price", saved.Price.String()),
		zap.String("currency", saved.Currency),
		zap.Time("observed_at", saved.ObservedAt),
	)
	return saved, nil
}

// merge maps a provider quote onto the record it replaces. ID and CreatedAt of
// an existing record survive the update.
func (s *QuoteService) merge(symbol domain.Symbol, cached *domain.QuoteRecord, pq domain.ProviderQuote) domain.QuoteRecord {
	now := s.clock.Now()
	out := domain.QuoteRecord{
		Symbol:     symbol,
		Price:      pq.Price,
		Currency:   pq.Currency,
		Source:     domain.SourceExternal,
		ObservedAt: pq.ObservedAt,
		RawPayload: pq.RawPayload,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if cached != nil {
		out.ID = cached.ID
		out.CreatedAt = cached.CreatedAt
	}
	return out
}

func (s *QuoteService) fallback(log *zap.Logger, symbol domain.Symbol, cached *domain.QuoteRecord, cause error) (domain.QuoteRecord, error) {
	kind := domain.ProviderErrorKindOf(cause)
	if cached != nil {
		s.metrics.Outcome(OutcomeFallback)
		log.Warn("get_quote.fallback",
			zap.String("provider_error_kind", string(kind)),
			zap.Error(cause),
			zap.Time("observed_at", cached.ObservedAt),
			zap.String("source", string(cached.Source)),
		)
		return *cached, nil
	}
	s.metrics.Outcome(OutcomeUnavailable)
	log.Warn("get_quote.unavailable", zap.String("provider_error_kind", string(kind)), zap.Error(cause))
	return domain.QuoteRecord{}, &ExternalUnavailableError{Symbol: symbol, Cause: cause}
}
