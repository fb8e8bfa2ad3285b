// Package ledger maintains the hash-chained settlement history of one
// trading pair: locally generated records, records accepted from peer
// operators, and the indices needed for reconciliation audits.
package ledger

import (
	"encoding/hex"
	"log/slog"

	"golang.org/x/crypto/blake2b"

	"github.com/CryptoBia/Infinex/internal/domain"
)

// Ledger is the per-pair settlement store. It is owned by the pair's single
// writer and performs no locking of its own.
type Ledger struct {
	pairID   int32
	state    *domain.PairState
	signer   domain.Signer
	verifier domain.Verifier

	byID      map[int64]*domain.Settlement
	byOrderID map[int64][]*domain.Settlement
	hashes    map[string]struct{}
	conflicts []*domain.Settlement
}

// New creates an empty ledger bound to a pair's state counters.
func New(state *domain.PairState, signer domain.Signer, verifier domain.Verifier) *Ledger {
	return &Ledger{
		pairID:    state.PairID,
		state:     state,
		signer:    signer,
		verifier:  verifier,
		byID:      make(map[int64]*domain.Settlement),
		byOrderID: make(map[int64][]*domain.Settlement),
		hashes:    make(map[string]struct{}),
	}
}

// ContentHash computes the chained content hash of a settlement record.
// It is a pure function of the record's fields and the prior hash.
func ContentHash(s *domain.Settlement) string {
	sum := blake2b.Sum256(s.HashPayload())
	return hex.EncodeToString(sum[:])
}

// Generate turns one fill into a signed settlement record: next settlement
// ID, hash chained to the pair's last hash, operator signature, and the
// pair counters advanced. The record is indexed before it is returned.
func (l *Ledger) Generate(s *domain.Settlement) *domain.Settlement {
	s.SettlementID = l.state.LastSettlementID + 1
	s.PrevHash = l.state.LastSettlementHash
	s.OperatorPubKey = l.signer.PubKey()
	s.Hash = ContentHash(s)
	s.Sig = l.signer.Sign(s.SignPayload())

	l.state.LastSettlementID = s.SettlementID
	l.state.LastSettlementHash = s.Hash
	l.index(s)
	return s
}

// AcceptFromNetwork validates and records a settlement generated by a peer
// operator. Exact duplicates and out-of-sequence records are dropped without
// retry; a record reusing an existing settlement ID with different content is
// flagged as a conflict for reporting, never merged.
func (l *Ledger) AcceptFromNetwork(s *domain.Settlement) error {
	if s.PairID != l.pairID {
		return domain.ErrPairMismatch
	}
	if _, seen := l.hashes[s.Hash]; seen {
		return domain.ErrDuplicateSettlement
	}
	if existing, ok := l.byID[s.SettlementID]; ok && existing.Hash != s.Hash {
		l.conflicts = append(l.conflicts, s)
		slog.Error("settlement conflict detected",
			slog.Int64("settlement_id", s.SettlementID),
			slog.Int("pair_id", int(s.PairID)),
			slog.String("have", existing.Hash),
			slog.String("got", s.Hash))
		return domain.ErrSettlementConflict
	}
	if s.SettlementID != l.state.LastSettlementID+1 {
		return domain.ErrOutOfSequence
	}
	if l.verifier != nil && !l.verifier.Verify(s.OperatorPubKey, s.Sig, s.SignPayload()) {
		return domain.ErrBadSignature
	}

	l.state.LastSettlementID = s.SettlementID
	l.state.LastSettlementHash = s.Hash
	l.index(s)
	return nil
}

func (l *Ledger) index(s *domain.Settlement) {
	l.byID[s.SettlementID] = s
	l.byOrderID[s.BidOrderID] = append(l.byOrderID[s.BidOrderID], s)
	l.byOrderID[s.AskOrderID] = append(l.byOrderID[s.AskOrderID], s)
	l.hashes[s.Hash] = struct{}{}
}

// Get returns the settlement with the given ID, or nil. Used to serve
// historical lookups from peers.
func (l *Ledger) Get(settlementID int64) *domain.Settlement {
	return l.byID[settlementID]
}

// FindDuplicateHashes returns every content hash that occurs more than once
// among recorded settlements. Independent operators may race to settle the
// same fill; reconciliation uses this to find the collisions.
func (l *Ledger) FindDuplicateHashes() []string {
	counts := make(map[string]int, len(l.byID))
	for _, s := range l.byID {
		counts[s.Hash]++
	}
	var dups []string
	for h, n := range counts {
		if n > 1 {
			dups = append(dups, h)
		}
	}
	return dups
}

// TotalTradedQuantity sums the quantities of all settlements referencing an
// order, for cross-checking remaining balances against ledger history.
func (l *Ledger) TotalTradedQuantity(orderID int64) uint64 {
	var qty uint64
	for _, s := range l.byOrderID[orderID] {
		qty += s.Quantity
	}
	return qty
}

// Conflicts returns the records flagged as conflicting, in arrival order.
// Resolution is an external concern.
func (l *Ledger) Conflicts() []*domain.Settlement {
	return l.conflicts
}

// Len returns the number of recorded settlements.
func (l *Ledger) Len() int {
	return len(l.byID)
}
