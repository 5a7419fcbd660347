package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quotes-service/internal/application"
	"quotes-service/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type quoteRow struct {
	ID         int64     `gorm:"primaryKey;column:id"`
	Symbol     string    `gorm:"uniqueIndex;not null;column:symbol"`
	Price      string    `gorm:"not null;column:price"`
	Currency   string    `gorm:"size:3;not null;column:currency"`
	Source     string    `gorm:"size:16;not null;column:source"`
	ObservedAt time.Time `gorm:"not null;column:observed_at"`
	RawPayload string    `gorm:"column:raw_payload"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false;column:created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false;column:updated_at"`
}

func (quoteRow) TableName() string { return "quotes" }

// QuoteStore is a single-file store for local runs. The pool is limited to one
// connection so SQLite never sees concurrent writers.
type QuoteStore struct {
	db *gorm.DB
}

var _ application.QuoteStore = (*QuoteStore)(nil)

func Open(ctx context.Context, path string) (*QuoteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.WithContext(ctx).AutoMigrate(&quoteRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return &QuoteStore{db: db}, nil
}

func (s *QuoteStore) GetLatest(ctx context.Context, symbol domain.Symbol) (domain.QuoteRecord, bool, error) {
	var row quoteRow
	err := s.db.WithContext(ctx).First(&row, "symbol = ?", symbol.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.QuoteRecord{}, false, nil
	}
	if err != nil {
		return domain.QuoteRecord{}, false, fmt.Errorf("get latest %s: %w", symbol, err)
	}
	rec, err := row.toDomain()
	if err != nil {
		return domain.QuoteRecord{}, false, err
	}
	return rec, true, nil
}

func (s *QuoteStore) Upsert(ctx context.Context, rec domain.QuoteRecord) (domain.QuoteRecord, error) {
	now := time.Now().UTC()
	row := fromDomain(rec)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = now
	}
	row.ID = 0

	var out quoteRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "symbol"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"price", "currency", "source", "observed_at", "raw_payload", "updated_at",
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		return tx.First(&out, "symbol = ?", row.Symbol).Error
	})
	if err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("upsert %s: %w", rec.Symbol, err)
	}
	return out.toDomain()
}

func (s *QuoteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *QuoteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func fromDomain(r domain.QuoteRecord) quoteRow {
	return quoteRow{
		ID:         r.ID,
		Symbol:     r.Symbol.String(),
		Price:      r.Price.String(),
		Currency:   r.Currency,
		Source:     string(r.Source),
		ObservedAt: r.ObservedAt.UTC(),
		RawPayload: r.RawPayload,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

func (r quoteRow) toDomain() (domain.QuoteRecord, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("price %q: %w", r.Price, err)
	}
	return domain.QuoteRecord{
		ID:         r.ID,
		Symbol:     domain.Symbol(r.Symbol),
		Price:      price,
		Currency:   r.Currency,
		Source:     domain.Source(r.Source),
		ObservedAt: r.ObservedAt.UTC(),
		RawPayload: r.RawPayload,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}, nil
}
