// Package storage persists the durable side of the node: the settlement
// archive, sealed chart buckets, and market trade history.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/CryptoBia/Infinex/internal/domain"
)

// Store is the SQLite-backed archive. It implements domain.HistorySink.
type Store struct {
	db *gorm.DB
}

// NewStore opens (or creates) the database at path and migrates the schema.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Settlement{}, &domain.Candle{}, &domain.TradeRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// ======================================================================================
// Settlement Archive
// ======================================================================================

// ArchiveSettlement appends a settlement record. Records are immutable; a
// second insert with the same (pair, settlement ID) fails on the unique index.
func (s *Store) ArchiveSettlement(rec *domain.Settlement) error {
	return s.db.Create(rec).Error
}

// GetSettlement retrieves one settlement by pair and sequence ID.
func (s *Store) GetSettlement(pairID int32, settlementID int64) (*domain.Settlement, error) {
	var rec domain.Settlement
	err := s.db.First(&rec, "pair_id = ? AND settlement_id = ?", pairID, settlementID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &rec, err
}

// SettlementsSince returns up to limit settlements with IDs above afterID,
// in sequence order. Used to serve peer resynchronization.
func (s *Store) SettlementsSince(pairID int32, afterID int64, limit int) ([]domain.Settlement, error) {
	var recs []domain.Settlement
	err := s.db.Where("pair_id = ? AND settlement_id > ?", pairID, afterID).
		Order("settlement_id asc").Limit(limit).Find(&recs).Error
	return recs, err
}

// LastSettlement returns the highest-sequence settlement for a pair, or nil
// when the archive is empty.
func (s *Store) LastSettlement(pairID int32) (*domain.Settlement, error) {
	var rec domain.Settlement
	err := s.db.Where("pair_id = ?", pairID).Order("settlement_id desc").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rec, err
}

// ======================================================================================
// Chart Archive
// ======================================================================================

// ArchiveCandle stores a sealed bucket. Replaying the same bucket is an
// upsert on the (pair, granularity, start) key so peer re-delivery stays
// idempotent.
func (s *Store) ArchiveCandle(c *domain.Candle) error {
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(c).Error
}

// CandlesBetween returns sealed buckets of one granularity with start times
// in [fromMs, toMs], oldest first.
func (s *Store) CandlesBetween(pairID int32, g domain.Granularity, fromMs, toMs int64) ([]domain.Candle, error) {
	var candles []domain.Candle
	err := s.db.Where("pair_id = ? AND granularity = ? AND start_time BETWEEN ? AND ?",
		pairID, g, fromMs, toMs).
		Order("start_time asc").Find(&candles).Error
	return candles, err
}

// ======================================================================================
// Trade History
// ======================================================================================

// Record appends one market trade-history row.
func (s *Store) Record(rec domain.TradeRecord) error {
	return s.db.Create(&rec).Error
}

// RecentTrades returns up to limit most recent trades for a pair,
// newest first.
func (s *Store) RecentTrades(pairID int32, limit int) ([]domain.TradeRecord, error) {
	var recs []domain.TradeRecord
	err := s.db.Where("pair_id = ?", pairID).
		Order("trade_time desc").Limit(limit).Find(&recs).Error
	return recs, err
}
