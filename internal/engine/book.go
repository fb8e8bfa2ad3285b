package engine

import (
	"sort"

	"github.com/CryptoBia/Infinex/internal/domain"
)

// Book holds both sides of one pair's order book.
//
// Orders live in a single arena keyed by order ID; the price and submitter
// indices store IDs only. Remaining balances are therefore mutated in exactly
// one place regardless of which index an order was reached through.
type Book struct {
	pairID int32
	orders map[int64]*domain.Order
	byUser map[string][]int64
	bids   *bookSide
	asks   *bookSide
}

// bookSide is a price-ordered collection of FIFO order queues.
type bookSide struct {
	prices []uint64           // sorted ascending
	levels map[uint64][]int64 // price -> order IDs in arrival order
}

func newBookSide() *bookSide {
	return &bookSide{levels: make(map[uint64][]int64)}
}

// NewBook creates an empty book for a pair.
func NewBook(pairID int32) *Book {
	return &Book{
		pairID: pairID,
		orders: make(map[int64]*domain.Order),
		byUser: make(map[string][]int64),
		bids:   newBookSide(),
		asks:   newBookSide(),
	}
}

func (s *bookSide) insert(price uint64, orderID int64) {
	if _, ok := s.levels[price]; !ok {
		i := sort.Search(len(s.prices), func(i int) bool { return s.prices[i] >= price })
		s.prices = append(s.prices, 0)
		copy(s.prices[i+1:], s.prices[i:])
		s.prices[i] = price
	}
	s.levels[price] = append(s.levels[price], orderID)
}

func (b *Book) side(side domain.Side) *bookSide {
	if side == domain.SideBid {
		return b.bids
	}
	return b.asks
}

// Insert places an admitted order into its side of the book.
func (b *Book) Insert(o *domain.Order) {
	b.orders[o.OrderID] = o
	b.byUser[o.UserPubKey] = append(b.byUser[o.UserPubKey], o.OrderID)
	b.side(o.Side).insert(o.Price, o.OrderID)
}

// Get returns the order with the given ID, or nil.
func (b *Book) Get(orderID int64) *domain.Order {
	return b.orders[orderID]
}

// OrdersByUser returns the IDs of all orders a submitter has in the book,
// oldest first.
func (b *Book) OrdersByUser(pubKey string) []int64 {
	return b.byUser[pubKey]
}

// ScanCrossing visits every resting order the incoming order crosses,
// best price first and oldest sequence first within a level. Orders with no
// remaining quantity are passed through; the caller skips them. The walk
// stops when fn returns false or no further level crosses.
func (b *Book) ScanCrossing(incoming *domain.Order, fn func(resting *domain.Order) bool) {
	opposite := b.side(incoming.Side.Opposite())
	if incoming.Side == domain.SideBid {
		// Buy: ask levels priced <= limit, lowest first.
		for _, price := range opposite.prices {
			if price > incoming.Price {
				return
			}
			if !b.scanLevel(opposite, price, fn) {
				return
			}
		}
		return
	}
	// Sell: bid levels priced >= limit, highest first.
	for i := len(opposite.prices) - 1; i >= 0; i-- {
		price := opposite.prices[i]
		if price < incoming.Price {
			return
		}
		if !b.scanLevel(opposite, price, fn) {
			return
		}
	}
}

func (b *Book) scanLevel(s *bookSide, price uint64, fn func(*domain.Order) bool) bool {
	for _, id := range s.levels[price] {
		if !fn(b.orders[id]) {
			return false
		}
	}
	return true
}

// Compact removes exhausted orders from every index. The core never calls
// this on its own; the external purge pass does.
func (b *Book) Compact() int {
	removed := 0
	for id, o := range b.orders {
		if !o.Filled() {
			continue
		}
		b.removeFromSide(b.side(o.Side), o.Price, id)
		b.byUser[o.UserPubKey] = removeID(b.byUser[o.UserPubKey], id)
		if len(b.byUser[o.UserPubKey]) == 0 {
			delete(b.byUser, o.UserPubKey)
		}
		delete(b.orders, id)
		removed++
	}
	return removed
}

func (b *Book) removeFromSide(s *bookSide, price uint64, orderID int64) {
	s.levels[price] = removeID(s.levels[price], orderID)
	if len(s.levels[price]) == 0 {
		delete(s.levels, price)
		i := sort.Search(len(s.prices), func(i int) bool { return s.prices[i] >= price })
		if i < len(s.prices) && s.prices[i] == price {
			s.prices = append(s.prices[:i], s.prices[i+1:]...)
		}
	}
}

func removeID(ids []int64, id int64) []int64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Len returns the number of orders held in the arena, exhausted included.
func (b *Book) Len() int {
	return len(b.orders)
}
