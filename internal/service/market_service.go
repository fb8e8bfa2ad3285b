package service

import (
	"sync"

	"github.com/CryptoBia/Infinex/internal/domain"
	"github.com/CryptoBia/Infinex/internal/engine"
)

// maxRecentTrades bounds the public last-trades ring per pair.
const maxRecentTrades = 100

// DepthSnapshot is the public order-book view for one pair.
type DepthSnapshot struct {
	PairID int32               `json:"pair_id"`
	Bids   []engine.DepthLevel `json:"bids"`
	Asks   []engine.DepthLevel `json:"asks"`
}

// pairMarket is the published view of one pair.
type pairMarket struct {
	depth   DepthSnapshot
	trades  []domain.TradeRecord
	candles map[domain.Granularity][]domain.Candle
}

// MarketService manages the published market-data state for all pairs.
// Engine hooks write into it from the pair writer goroutines; the feed layer
// reads snapshots concurrently.
type MarketService struct {
	mu    sync.RWMutex
	pairs map[int32]*pairMarket
}

// NewMarketService creates an empty market data store.
func NewMarketService() *MarketService {
	return &MarketService{pairs: make(map[int32]*pairMarket)}
}

// pair returns the per-pair slot, creating it if absent.
// Must be called with the write lock held.
func (s *MarketService) pair(pairID int32) *pairMarket {
	m, ok := s.pairs[pairID]
	if !ok {
		m = &pairMarket{
			depth:   DepthSnapshot{PairID: pairID},
			candles: make(map[domain.Granularity][]domain.Candle),
		}
		s.pairs[pairID] = m
	}
	return m
}

// UpdateDepth replaces the published depth snapshot for a pair.
func (s *MarketService) UpdateDepth(pairID int32, bids, asks []engine.DepthLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.pair(pairID)
	m.depth.Bids = bids
	m.depth.Asks = asks
}

// Depth returns the current published depth for a pair.
func (s *MarketService) Depth(pairID int32) DepthSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.pairs[pairID]; ok {
		return m.depth
	}
	return DepthSnapshot{PairID: pairID}
}

// RecordTrade appends a trade to the pair's recent-trades ring.
func (s *MarketService) RecordTrade(rec domain.TradeRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.pair(rec.PairID)
	m.trades = append(m.trades, rec)
	if len(m.trades) > maxRecentTrades {
		m.trades = m.trades[len(m.trades)-maxRecentTrades:]
	}
}

// RecentTrades returns up to n most recent trades, newest last.
func (s *MarketService) RecentTrades(pairID int32, n int) []domain.TradeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.pairs[pairID]
	if !ok {
		return nil
	}
	trades := m.trades
	if n > 0 && len(trades) > n {
		trades = trades[len(trades)-n:]
	}
	out := make([]domain.TradeRecord, len(trades))
	copy(out, trades)
	return out
}

// UpdateCandles replaces the published recent candles for one granularity.
// The last entry is the open bucket and changes with every trade.
func (s *MarketService) UpdateCandles(pairID int32, g domain.Granularity, candles []domain.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair(pairID).candles[g] = candles
}

// Candles returns the published candles for one granularity, oldest first.
func (s *MarketService) Candles(pairID int32, g domain.Granularity) []domain.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.pairs[pairID]
	if !ok {
		return nil
	}
	src := m.candles[g]
	out := make([]domain.Candle, len(src))
	copy(out, src)
	return out
}
