package engine

import (
	"github.com/CryptoBia/Infinex/internal/domain"
	"github.com/CryptoBia/Infinex/pkg/dexmath"
)

// match runs the price-time-priority crossing loop for a freshly admitted
// order. The incoming order already rests in its own side of the book, so
// any unfilled remainder stays there without further work.
func (pe *PairEngine) match(incoming *domain.Order, info domain.PairInfo) {
	pe.book.ScanCrossing(incoming, func(resting *domain.Order) bool {
		if resting.Filled() {
			// Exhausted orders stay in the book until the external purge
			// pass removes them; they never match again.
			return true
		}

		qty := incoming.RemainingQty
		if resting.RemainingQty < qty {
			qty = resting.RemainingQty
		}
		pe.executeFill(incoming, resting, uint64(qty), info)

		return incoming.RemainingQty > 0
	})
}

// executeFill settles one matched quantity between the incoming order and a
// resting order. Price improvement always goes to the side that was already
// resting: execution happens at the maker's price.
func (pe *PairEngine) executeFill(incoming, resting *domain.Order, qty uint64, info domain.PairInfo) {
	price := resting.Price
	tradeTime := pe.now()

	bid, ask := incoming, resting
	if incoming.Side == domain.SideAsk {
		bid, ask = resting, incoming
	}

	bidFee := dexmath.MinFeeBps(bid.FeeBps, info.BidFeeBps)
	askFee := dexmath.MinFeeBps(ask.FeeBps, info.AskFeeBps)
	bidAmount := dexmath.BidRequiredAmount(price, qty, bidFee)
	askAmount := dexmath.AskExpectedAmount(price, qty, askFee)

	reduceRemaining(bid, qty, bidAmount)
	reduceRemaining(ask, qty, askAmount)
	bid.LastUpdate = tradeTime
	ask.LastUpdate = tradeTime

	s := pe.ledger.Generate(&domain.Settlement{
		PairID:     info.PairID,
		BidOrderID: bid.OrderID,
		AskOrderID: ask.OrderID,
		Price:      price,
		Quantity:   qty,
		Amount:     dexmath.SafeMul(price, qty),
		BidAmount:  bidAmount,
		AskAmount:  askAmount,
		BidPubKey:  bid.UserPubKey,
		AskPubKey:  ask.UserPubKey,
		BidFeeBps:  bidFee,
		AskFeeBps:  askFee,
		TradeTime:  tradeTime,
	})

	if pe.balances != nil {
		pe.balances.Settle(info.PairID, bid.UserPubKey, ask.UserPubKey,
			info.BaseAsset, info.QuoteAsset,
			-int64(bidAmount), int64(qty), -int64(qty), int64(askAmount))
	}

	if pe.state.Roles.Has(domain.RoleOrderBook) {
		pe.depth.Adjust(resting.Side, resting.Price, -int64(qty))
		pe.depth.Adjust(incoming.Side, incoming.Price, -int64(qty))
	}
	if pe.state.Roles.Has(domain.RoleChart) {
		pe.charts.InputTrade(price, qty, tradeTime)
	}
	if pe.state.Roles.Has(domain.RoleHistory) && pe.history != nil {
		rec := domain.TradeRecord{
			PairID:         info.PairID,
			BuyerPubKey:    bid.UserPubKey,
			SellerPubKey:   ask.UserPubKey,
			Price:          price,
			Quantity:       qty,
			Amount:         dexmath.SafeMul(price, qty),
			BuyerInitiated: incoming.Side == domain.SideBid,
			TradeTime:      tradeTime,
		}
		_ = pe.history.Record(rec)
		if pe.hooks.OnTrade != nil {
			pe.hooks.OnTrade(rec)
		}
	}

	if pe.metrics != nil {
		pe.metrics.RecordFill()
	}
	if pe.hooks.OnSettlement != nil {
		pe.hooks.OnSettlement(s)
	}
}

// reduceRemaining shrinks an order's remaining quantity and amount for one
// fill. Remaining balances only ever decrease and never go negative.
func reduceRemaining(o *domain.Order, qty, amount uint64) {
	o.RemainingQty = dexmath.SafeSub(o.RemainingQty, int64(qty))
	if o.RemainingQty < 0 {
		o.RemainingQty = 0
	}
	o.RemainingAmount = dexmath.SafeSub(o.RemainingAmount, int64(amount))
	if o.RemainingAmount < 0 {
		o.RemainingAmount = 0
	}
}
