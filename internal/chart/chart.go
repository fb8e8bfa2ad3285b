// Package chart folds fills into minute/hour/day OHLCV candles for one
// trading pair. Only the most recent candle per granularity is mutable;
// everything earlier is sealed, signed, append-only history.
package chart

import (
	"time"

	"github.com/CryptoBia/Infinex/internal/domain"
	"github.com/CryptoBia/Infinex/pkg/dexmath"
)

// Aggregator holds the candle series of one pair across all granularities.
// It is owned by the pair's single writer and performs no locking.
type Aggregator struct {
	pairID int32
	signer domain.Signer
	series map[domain.Granularity][]*domain.Candle

	// onSealed is invoked for every candle that will never mutate again.
	onSealed func(*domain.Candle)

	now func() int64
}

// New creates an aggregator for a pair. onSealed may be nil.
func New(pairID int32, signer domain.Signer, onSealed func(*domain.Candle)) *Aggregator {
	a := &Aggregator{
		pairID:   pairID,
		signer:   signer,
		series:   make(map[domain.Granularity][]*domain.Candle, len(domain.Granularities)),
		onSealed: onSealed,
		now:      func() int64 { return time.Now().UnixMilli() },
	}
	for _, g := range domain.Granularities {
		a.series[g] = nil
	}
	return a
}

// InputTrade folds one fill into every granularity.
func (a *Aggregator) InputTrade(price, qty uint64, tradeTime int64) {
	for _, g := range domain.Granularities {
		a.input(g, price, qty, tradeTime)
	}
}

func (a *Aggregator) input(g domain.Granularity, price, qty uint64, tradeTime int64) {
	width := g.WidthMs()
	buckets := a.series[g]

	if len(buckets) == 0 {
		start := dexmath.BucketStart(tradeTime, width)
		a.series[g] = append(buckets, a.open(g, start, start+width, price, qty))
		return
	}

	last := buckets[len(buckets)-1]
	if tradeTime <= last.EndTime {
		last.Trades++
		last.Quantity += qty
		last.Amount += dexmath.SafeMul(price, qty)
		last.Close = price
		if price > last.High {
			last.High = price
		}
		if last.Low == 0 || price < last.Low {
			last.Low = price
		}
		last.LastUpdate = a.now()
		return
	}

	a.seal(last)
	// Contiguous windows: the next bucket starts right after the sealed one,
	// regardless of how far ahead the trade landed.
	start := last.EndTime + 1
	a.series[g] = append(a.series[g], a.open(g, start, start+width, price, qty))
}

func (a *Aggregator) open(g domain.Granularity, start, end int64, price, qty uint64) *domain.Candle {
	c := &domain.Candle{
		PairID:      a.pairID,
		Granularity: g,
		StartTime:   start,
		EndTime:     end,
		Open:        price,
		High:        price,
		Low:         price,
		Close:       price,
		Quantity:    qty,
		Amount:      dexmath.SafeMul(price, qty),
		Trades:      1,
		LastUpdate:  a.now(),
	}
	if a.signer != nil {
		c.OperatorPubKey = a.signer.PubKey()
	}
	return c
}

func (a *Aggregator) seal(c *domain.Candle) {
	if a.signer != nil {
		c.OperatorPubKey = a.signer.PubKey()
		c.Sig = a.signer.Sign(c.SignPayload())
	}
	if a.onSealed != nil {
		a.onSealed(c)
	}
}

// Open returns the single mutable candle for a granularity, or nil before
// the first qualifying trade.
func (a *Aggregator) Open(g domain.Granularity) *domain.Candle {
	buckets := a.series[g]
	if len(buckets) == 0 {
		return nil
	}
	return buckets[len(buckets)-1]
}

// Recent returns up to n most recent candles for a granularity, oldest
// first. The last element may still be mutable.
func (a *Aggregator) Recent(g domain.Granularity, n int) []domain.Candle {
	buckets := a.series[g]
	if n > 0 && len(buckets) > n {
		buckets = buckets[len(buckets)-n:]
	}
	out := make([]domain.Candle, len(buckets))
	for i, c := range buckets {
		out[i] = *c
	}
	return out
}
