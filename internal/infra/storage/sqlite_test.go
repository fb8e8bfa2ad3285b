package storage

import (
	"os"
	"testing"

	"github.com/CryptoBia/Infinex/internal/domain"
)

func setupTestStore(t *testing.T) *Store {
	dbName := "test.db"
	s, err := NewStore(dbName)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		os.Remove(dbName)
	})

	return s
}

func TestArchiveAndGetSettlement(t *testing.T) {
	s := setupTestStore(t)

	rec := &domain.Settlement{
		SettlementID: 1,
		PairID:       7,
		BidOrderID:   10,
		AskOrderID:   11,
		Price:        100,
		Quantity:     10,
		Amount:       1000,
		Hash:         "abc",
		TradeTime:    1000,
	}

	if err := s.ArchiveSettlement(rec); err != nil {
		t.Fatalf("ArchiveSettlement failed: %v", err)
	}

	fetched, err := s.GetSettlement(7, 1)
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("fetched settlement is nil")
	}
	if fetched.Hash != "abc" || fetched.Quantity != 10 {
		t.Errorf("unexpected record: %+v", fetched)
	}
}

func TestGetSettlementNotFound(t *testing.T) {
	s := setupTestStore(t)

	fetched, err := s.GetSettlement(7, 99)
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if fetched != nil {
		t.Error("expected nil for missing settlement")
	}
}

func TestDuplicateSettlementRejected(t *testing.T) {
	s := setupTestStore(t)

	rec := &domain.Settlement{SettlementID: 1, PairID: 7, Hash: "abc"}
	if err := s.ArchiveSettlement(rec); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	dup := &domain.Settlement{SettlementID: 1, PairID: 7, Hash: "other"}
	if err := s.ArchiveSettlement(dup); err == nil {
		t.Error("expected unique index violation on duplicate (pair, id)")
	}
}

func TestSettlementsSince(t *testing.T) {
	s := setupTestStore(t)

	for i := int64(1); i <= 5; i++ {
		s.ArchiveSettlement(&domain.Settlement{SettlementID: i, PairID: 7})
	}
	// Different pair must not leak into the result.
	s.ArchiveSettlement(&domain.Settlement{SettlementID: 3, PairID: 8})

	recs, err := s.SettlementsSince(7, 2, 10)
	if err != nil {
		t.Fatalf("SettlementsSince failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i, rec := range recs {
		if rec.SettlementID != int64(3+i) {
			t.Errorf("record %d: expected ID %d, got %d", i, 3+i, rec.SettlementID)
		}
	}

	last, err := s.LastSettlement(7)
	if err != nil {
		t.Fatalf("LastSettlement failed: %v", err)
	}
	if last == nil || last.SettlementID != 5 {
		t.Errorf("expected last ID 5, got %+v", last)
	}
}

func TestArchiveCandleUpsert(t *testing.T) {
	s := setupTestStore(t)

	c := &domain.Candle{
		PairID: 7, Granularity: domain.GranularityMinute,
		StartTime: 0, EndTime: 60000,
		Open: 100, High: 110, Low: 100, Close: 110,
		Quantity: 5, Trades: 2,
	}
	if err := s.ArchiveCandle(c); err != nil {
		t.Fatalf("ArchiveCandle failed: %v", err)
	}

	// Re-delivery of the same bucket overwrites, does not duplicate.
	c.Close = 105
	if err := s.ArchiveCandle(c); err != nil {
		t.Fatalf("ArchiveCandle upsert failed: %v", err)
	}

	candles, err := s.CandlesBetween(7, domain.GranularityMinute, 0, 60000)
	if err != nil {
		t.Fatalf("CandlesBetween failed: %v", err)
	}
	if len(candles) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(candles))
	}
	if candles[0].Close != 105 {
		t.Errorf("expected close 105, got %d", candles[0].Close)
	}
}

func TestArchiveCandleKeyedPerGranularity(t *testing.T) {
	s := setupTestStore(t)

	// Same pair and start time, different widths: both rows must survive.
	minute := &domain.Candle{
		PairID: 7, Granularity: domain.GranularityMinute,
		StartTime: 0, EndTime: 60000, Close: 100,
	}
	hour := &domain.Candle{
		PairID: 7, Granularity: domain.GranularityHour,
		StartTime: 0, EndTime: 3600000, Close: 120,
	}
	if err := s.ArchiveCandle(minute); err != nil {
		t.Fatalf("ArchiveCandle minute failed: %v", err)
	}
	if err := s.ArchiveCandle(hour); err != nil {
		t.Fatalf("ArchiveCandle hour failed: %v", err)
	}

	got, err := s.CandlesBetween(7, domain.GranularityHour, 0, 0)
	if err != nil {
		t.Fatalf("CandlesBetween failed: %v", err)
	}
	if len(got) != 1 || got[0].Close != 120 {
		t.Fatalf("expected one hour candle with close 120, got %+v", got)
	}
}

func TestRecordAndRecentTrades(t *testing.T) {
	s := setupTestStore(t)

	for i := int64(1); i <= 3; i++ {
		err := s.Record(domain.TradeRecord{
			PairID: 7, Price: 100, Quantity: uint64(i), TradeTime: i * 1000,
		})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	recs, err := s.RecentTrades(7, 2)
	if err != nil {
		t.Fatalf("RecentTrades failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(recs))
	}
	if recs[0].TradeTime != 3000 {
		t.Errorf("expected newest trade first, got time %d", recs[0].TradeTime)
	}
}
