package domain

// Role is one responsibility an operator can hold for a trading pair.
// Which operator holds which role is an external role-assignment fact; this
// core only obeys it.
type Role uint8

const (
	RoleProcess   Role = 1 << iota // admit and sequence user orders
	RoleMatch                      // run the matching loop
	RoleChart                      // aggregate OHLCV chart data
	RoleHistory                    // emit market trade history
	RoleOrderBook                  // maintain public depth tracking
)

// RoleSet is a bitmask of roles held locally for one pair.
type RoleSet uint8

// Has reports whether all bits of r are held.
func (s RoleSet) Has(r Role) bool {
	return s&RoleSet(r) == RoleSet(r)
}

// PairInfo is the static registry view of a trading pair.
// A zero PairID is the invalid sentinel.
type PairInfo struct {
	PairID         int32
	Symbol         string
	BaseAsset      string
	QuoteAsset     string
	BidFeeBps      int32
	AskFeeBps      int32
	MinTradeAmount uint64
	MaxTradeAmount uint64
}

// Valid reports whether the registry returned a real pair.
func (p PairInfo) Valid() bool {
	return p.PairID != 0
}

// SideFeeBps returns the configured fee for one side of the pair.
func (p PairInfo) SideFeeBps(side Side) int32 {
	if side == SideBid {
		return p.BidFeeBps
	}
	return p.AskFeeBps
}

// PairState is the mutable per-pair operator state: role flags, the
// resynchronization gate, and the monotonic counters behind the sequence-ID
// and hash-chain invariants. It is owned by the pair's single writer and
// must never be shared across pairs.
type PairState struct {
	PairID             int32
	Roles              RoleSet
	SyncInProgress     bool
	LastOrderID        int64
	LastSettlementID   int64
	LastSettlementHash string
	LastSubmitTime     int64 // drift tracker, unix ms
	MaxSubmitDriftMs   int64
}

// ValidSubmissionTime applies the anti-replay drift check: a submission more
// than the tolerance behind the last accepted submission time is rejected.
// This is an ordering guard, not a strict clock.
func (s *PairState) ValidSubmissionTime(t int64) bool {
	return s.LastSubmitTime-t <= s.MaxSubmitDriftMs
}

// AdvanceSubmitTime moves the drift tracker to an accepted submission time.
// Called only once the submission is accepted, so a rejected request leaves
// no trace.
func (s *PairState) AdvanceSubmitTime(t int64) {
	s.LastSubmitTime = t
}

// SetRoles replaces the local role set. Role transitions are refused while a
// resynchronization is in progress.
func (s *PairState) SetRoles(roles RoleSet) error {
	if s.SyncInProgress {
		return ErrSyncInProgress
	}
	s.Roles = roles
	return nil
}
