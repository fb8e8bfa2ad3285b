package engine

import (
	"sort"

	"github.com/CryptoBia/Infinex/internal/domain"
)

// DepthLevel is one aggregated price level of public order-book depth.
type DepthLevel struct {
	Price    uint64 `json:"price"`
	Quantity uint64 `json:"qty"`
}

// Depth tracks aggregate resting quantity per price level for one pair.
// It is maintained only while the local operator holds the order-book role.
type Depth struct {
	bids map[uint64]uint64
	asks map[uint64]uint64
}

// NewDepth creates an empty depth tracker.
func NewDepth() *Depth {
	return &Depth{bids: make(map[uint64]uint64), asks: make(map[uint64]uint64)}
}

// Adjust applies a signed quantity delta at a price level.
func (d *Depth) Adjust(side domain.Side, price uint64, delta int64) {
	m := d.bids
	if side == domain.SideAsk {
		m = d.asks
	}
	if delta >= 0 {
		m[price] += uint64(delta)
		return
	}
	dec := uint64(-delta)
	if dec >= m[price] {
		delete(m, price)
		return
	}
	m[price] -= dec
}

// Snapshot returns up to maxLevels best levels per side: bids descending,
// asks ascending.
func (d *Depth) Snapshot(maxLevels int) (bids, asks []DepthLevel) {
	bids = collectLevels(d.bids, maxLevels, true)
	asks = collectLevels(d.asks, maxLevels, false)
	return bids, asks
}

func collectLevels(m map[uint64]uint64, maxLevels int, descending bool) []DepthLevel {
	out := make([]DepthLevel, 0, len(m))
	for price, qty := range m {
		out = append(out, DepthLevel{Price: price, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if descending {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	if maxLevels > 0 && len(out) > maxLevels {
		out = out[:maxLevels]
	}
	return out
}
