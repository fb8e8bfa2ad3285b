package service

import (
	"testing"

	"github.com/CryptoBia/Infinex/internal/domain"
	"github.com/CryptoBia/Infinex/internal/engine"
)

func TestDepthSnapshotRoundtrip(t *testing.T) {
	s := NewMarketService()

	bids := []engine.DepthLevel{{Price: 100, Quantity: 5}, {Price: 99, Quantity: 2}}
	asks := []engine.DepthLevel{{Price: 101, Quantity: 3}}
	s.UpdateDepth(7, bids, asks)

	snap := s.Depth(7)
	if snap.PairID != 7 {
		t.Errorf("pair id: %d", snap.PairID)
	}
	if len(snap.Bids) != 2 || snap.Bids[0].Price != 100 {
		t.Errorf("bids: %v", snap.Bids)
	}
	if len(snap.Asks) != 1 || snap.Asks[0].Quantity != 3 {
		t.Errorf("asks: %v", snap.Asks)
	}

	empty := s.Depth(99)
	if empty.PairID != 99 || len(empty.Bids) != 0 {
		t.Errorf("unknown pair should yield an empty snapshot: %+v", empty)
	}
}

func TestRecentTradesRing(t *testing.T) {
	s := NewMarketService()

	for i := int64(1); i <= maxRecentTrades+10; i++ {
		s.RecordTrade(domain.TradeRecord{PairID: 7, TradeTime: i})
	}

	all := s.RecentTrades(7, 0)
	if len(all) != maxRecentTrades {
		t.Fatalf("ring should cap at %d, got %d", maxRecentTrades, len(all))
	}
	// Oldest entries were evicted; newest is last.
	if all[0].TradeTime != 11 || all[len(all)-1].TradeTime != maxRecentTrades+10 {
		t.Errorf("unexpected window: first %d last %d", all[0].TradeTime, all[len(all)-1].TradeTime)
	}

	last3 := s.RecentTrades(7, 3)
	if len(last3) != 3 || last3[2].TradeTime != maxRecentTrades+10 {
		t.Errorf("unexpected tail: %v", last3)
	}
}

func TestCandlesCopied(t *testing.T) {
	s := NewMarketService()

	src := []domain.Candle{{PairID: 7, StartTime: 0, Close: 100}}
	s.UpdateCandles(7, domain.GranularityMinute, src)

	got := s.Candles(7, domain.GranularityMinute)
	if len(got) != 1 || got[0].Close != 100 {
		t.Fatalf("unexpected candles: %v", got)
	}

	// Mutating the returned slice must not leak into the store.
	got[0].Close = 999
	again := s.Candles(7, domain.GranularityMinute)
	if again[0].Close != 100 {
		t.Error("store must hand out copies")
	}

	if c := s.Candles(7, domain.GranularityHour); len(c) != 0 {
		t.Errorf("unset granularity should be empty, got %v", c)
	}
}
