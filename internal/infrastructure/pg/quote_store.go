package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quotes-service/internal/application"
	"quotes-service/internal/domain"
	"quotes-service/internal/infrastructure/logx"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteStore keeps one row per symbol. Upsert is a single
// INSERT ... ON CONFLICT statement, so concurrent writers for one symbol are
// serialized by the row lock and readers never see a partial row.
type QuoteStore struct {
	db  *DB
	log *zap.Logger
}

var _ application.QuoteStore = (*QuoteStore)(nil)

func NewQuoteStore(db *DB, log *zap.Logger) *QuoteStore {
	if log == nil {
		log = logx.L()
	}
	return &QuoteStore{db: db, log: log.With(zap.String("repo", "quotes"))}
}

const quoteColumns = `id, symbol, price::text, currency, source, observed_at, raw_payload, created_at, updated_at`

func (s *QuoteStore) GetLatest(ctx context.Context, symbol domain.Symbol) (domain.QuoteRecord, bool, error) {
	const q = `SELECT ` + quoteColumns + ` FROM quotes WHERE symbol = $1`
	log := s.log.With(zap.String("operation", "GetLatest"), zap.String("symbol", symbol.String()))
	log.Debug("sql.query_start")

	rec, err := scanQuote(s.db.Pool.QueryRow(ctx, q, symbol.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debug("sql.query_no_rows")
		return domain.QuoteRecord{}, false, nil
	}
	if err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return domain.QuoteRecord{}, false, fmt.Errorf("get latest %s: %w", symbol, err)
	}
	log.Debug("sql.query_success")
	return rec, true, nil
}

func (s *QuoteStore) Upsert(ctx context.Context, rec domain.QuoteRecord) (domain.QuoteRecord, error) {
	const up = `
        INSERT INTO quotes(symbol, price, currency, source, observed_at, raw_payload, created_at, updated_at)
        VALUES ($1, $2::numeric, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (symbol) DO UPDATE SET
          price       = EXCLUDED.price,
          currency    = EXCLUDED.currency,
          source      = EXCLUDED.source,
          observed_at = EXCLUDED.observed_at,
          raw_payload = EXCLUDED.raw_payload,
          updated_at  = EXCLUDED.updated_at
        RETURNING ` + quoteColumns
	now := time.Now().UTC()
	created, updated := rec.CreatedAt, rec.UpdatedAt
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}
	log := s.log.With(zap.String("operation", "Upsert"), zap.String("symbol", rec.Symbol.String()))
	log.Debug("sql.exec_start")

	out, err := scanQuote(s.db.Pool.QueryRow(ctx, up,
		rec.Symbol.String(), rec.Price.String(), rec.Currency, string(rec.Source),
		rec.ObservedAt.UTC(), rec.RawPayload, created, updated,
	))
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return domain.QuoteRecord{}, fmt.Errorf("upsert %s: %w", rec.Symbol, err)
	}
	log.Debug("sql.exec_success", zap.Int64("id", out.ID))
	return out, nil
}

func (s *QuoteStore) Ping(ctx context.Context) error { return s.db.Ping(ctx) }

func scanQuote(row pgx.Row) (domain.QuoteRecord, error) {
	var (
		out    domain.QuoteRecord
		symbol string
		price  string
		source string
	)
	if err := row.Scan(&out.ID, &symbol, &price, &out.Currency, &source,
		&out.ObservedAt, &out.RawPayload, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return domain.QuoteRecord{}, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("scan price %q: %w", price, err)
	}
	out.Symbol = domain.Symbol(symbol)
	out.Price = p
	out.Source = domain.Source(source)
	out.ObservedAt = out.ObservedAt.UTC()
	out.CreatedAt = out.CreatedAt.UTC()
	out.UpdatedAt = out.UpdatedAt.UTC()
	return out, nil
}
