package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"quotes-service/internal/application"
	"quotes-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const maxTxAttempts = 10

// QuoteStore keeps each symbol in one hash. Writes run in a WATCH/MULTI
// transaction that is retried when another writer touched the same key.
type QuoteStore struct {
	Client *redis.Client
	Prefix string
}

var _ application.QuoteStore = (*QuoteStore)(nil)

func NewQuoteStore(client *redis.Client, prefix string) *QuoteStore {
	return &QuoteStore{Client: client, Prefix: prefix}
}

func (s *QuoteStore) key(symbol domain.Symbol) string { return s.Prefix + "quote:" + symbol.String() }
func (s *QuoteStore) seqKey() string                  { return s.Prefix + "quote:seq" }

func (s *QuoteStore) GetLatest(ctx context.Context, symbol domain.Symbol) (domain.QuoteRecord, bool, error) {
	fields, err := s.Client.HGetAll(ctx, s.key(symbol)).Result()
	if err != nil {
		return domain.QuoteRecord{}, false, fmt.Errorf("redis hgetall %s: %w", symbol, err)
	}
	if len(fields) == 0 {
		return domain.QuoteRecord{}, false, nil
	}
	rec, err := decodeQuote(fields)
	if err != nil {
		return domain.QuoteRecord{}, false, fmt.Errorf("decode %s: %w", symbol, err)
	}
	return rec, true, nil
}

func (s *QuoteStore) Upsert(ctx context.Context, rec domain.QuoteRecord) (domain.QuoteRecord, error) {
	key := s.key(rec.Symbol)
	now := time.Now().UTC()
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}

	var out domain.QuoteRecord
	txf := func(tx *redis.Tx) error {
		prev, err := tx.HMGet(ctx, key, "id", "created_at").Result()
		if err != nil {
			return err
		}
		next := rec
		if id, ok := prev[0].(string); ok && id != "" {
			if next.ID, err = strconv.ParseInt(id, 10, 64); err != nil {
				return fmt.Errorf("parse id: %w", err)
			}
			created, _ := prev[1].(string)
			if next.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
				return fmt.Errorf("parse created_at: %w", err)
			}
		} else {
			if next.ID, err = tx.Incr(ctx, s.seqKey()).Result(); err != nil {
				return err
			}
			if next.CreatedAt.IsZero() {
				next.CreatedAt = now
			}
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, encodeQuote(next))
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}

	for i := 0; i < maxTxAttempts; i++ {
		err := s.Client.Watch(ctx, txf, key)
		if err == nil {
			return normalize(out), nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return domain.QuoteRecord{}, fmt.Errorf("redis upsert %s: %w", rec.Symbol, err)
		}
	}
	return domain.QuoteRecord{}, fmt.Errorf("redis upsert %s: %w", rec.Symbol, redis.TxFailedErr)
}

func (s *QuoteStore) Ping(ctx context.Context) error { return s.Client.Ping(ctx).Err() }

func encodeQuote(r domain.QuoteRecord) map[string]any {
	return map[string]any{
		"id":          strconv.FormatInt(r.ID, 10),
		"symbol":      r.Symbol.String(),
		"price":       r.Price.String(),
		"currency":    r.Currency,
		"source":      string(r.Source),
		"observed_at": r.ObservedAt.UTC().Format(time.RFC3339Nano),
		"raw_payload": r.RawPayload,
		"created_at":  r.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":  r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodeQuote(f map[string]string) (domain.QuoteRecord, error) {
	var (
		r   domain.QuoteRecord
		err error
	)
	if r.ID, err = strconv.ParseInt(f["id"], 10, 64); err != nil {
		return r, fmt.Errorf("id: %w", err)
	}
	if r.Price, err = decimal.NewFromString(f["price"]); err != nil {
		return r, fmt.Errorf("price: %w", err)
	}
	for name, dst := range map[string]*time.Time{
		"observed_at": &r.ObservedAt,
		"created_at":  &r.CreatedAt,
		"updated_at":  &r.UpdatedAt,
	} {
		if *dst, err = time.Parse(time.RFC3339Nano, f[name]); err != nil {
			return r, fmt.Errorf("%s: %w", name, err)
		}
	}
	r.Symbol = domain.Symbol(f["symbol"])
	r.Currency = f["currency"]
	r.Source = domain.Source(f["source"])
	r.RawPayload = f["raw_payload"]
	return r, nil
}

// normalize applies the same UTC/precision rules a read would.
func normalize(r domain.QuoteRecord) domain.QuoteRecord {
	r.ObservedAt = r.ObservedAt.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r
}
