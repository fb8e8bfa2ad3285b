package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/CryptoBia/Infinex/internal/domain"
)

// BalanceService is the in-process funds ledger. It implements
// domain.BalanceLedger for the engine and serves balance queries for the
// feed layer.
type BalanceService struct {
	mu       sync.Mutex
	balances map[string]*domain.Balance // key: pubKey + "/" + asset
	now      func() int64
}

// NewBalanceService creates an empty funds ledger.
func NewBalanceService() *BalanceService {
	return &BalanceService{
		balances: make(map[string]*domain.Balance),
		now:      func() int64 { return time.Now().UnixMilli() },
	}
}

func balanceKey(pubKey, asset string) string {
	return pubKey + "/" + asset
}

// get returns the balance record, creating an empty one if absent.
// Must be called with the lock held.
func (s *BalanceService) get(pubKey, asset string) *domain.Balance {
	key := balanceKey(pubKey, asset)
	b, ok := s.balances[key]
	if !ok {
		b = &domain.Balance{PubKey: pubKey, Asset: asset}
		s.balances[key] = b
	}
	return b
}

// Deposit credits user funds from an external transfer.
func (s *BalanceService) Deposit(pubKey, asset string, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(pubKey, asset).Credit(amount, s.now())
}

// Withdraw debits available user funds. Returns false when the available
// balance does not cover the request.
func (s *BalanceService) Withdraw(pubKey, asset string, amount int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.get(pubKey, asset)
	if amount > b.Available() {
		return false
	}
	b.Debit(amount, s.now())
	return true
}

// Balance returns a copy of one balance record, or a zero record when the
// user holds none of the asset.
func (s *BalanceService) Balance(pubKey, asset string) domain.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.balances[balanceKey(pubKey, asset)]; ok {
		return *b
	}
	return domain.Balance{PubKey: pubKey, Asset: asset}
}

// Escrow reserves amount of the submitter's funds before the order enters
// the book.
func (s *BalanceService) Escrow(pairID int32, pubKey string, asset string, amount uint64) domain.EscrowResult {
	if amount > uint64(maxInt64) {
		return domain.EscrowError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.get(pubKey, asset)
	if !b.Reserve(int64(amount), s.now()) {
		return domain.EscrowInsufficient
	}
	return domain.EscrowDeducted
}

// Release returns escrowed funds after a cancellation.
func (s *BalanceService) Release(pairID int32, pubKey string, asset string, amount uint64) {
	if amount > uint64(maxInt64) {
		slog.Error("release amount out of range",
			slog.Uint64("amount", amount), slog.String("pub_key", pubKey))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(pubKey, asset).Unreserve(int64(amount), s.now())
}

// Settle applies one fill to both parties. Negative deltas spend reserved
// funds, positive deltas credit proceeds.
func (s *BalanceService) Settle(pairID int32, bidPubKey, askPubKey, baseAsset, quoteAsset string,
	bidQuoteDelta, bidBaseDelta, askBaseDelta int64, askQuoteDelta int64) {

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	s.apply(bidPubKey, quoteAsset, bidQuoteDelta, now)
	s.apply(bidPubKey, baseAsset, bidBaseDelta, now)
	s.apply(askPubKey, baseAsset, askBaseDelta, now)
	s.apply(askPubKey, quoteAsset, askQuoteDelta, now)
}

// apply mutates one side of one leg. Must be called with the lock held.
func (s *BalanceService) apply(pubKey, asset string, delta int64, now int64) {
	b := s.get(pubKey, asset)
	if delta >= 0 {
		b.Credit(delta, now)
		return
	}
	b.Spend(-delta, now)
}

const maxInt64 = int64(^uint64(0) >> 1)
