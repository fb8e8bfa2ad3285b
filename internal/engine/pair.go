package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/CryptoBia/Infinex/internal/chart"
	"github.com/CryptoBia/Infinex/internal/domain"
	"github.com/CryptoBia/Infinex/internal/infra"
	"github.com/CryptoBia/Infinex/internal/ledger"
	"github.com/CryptoBia/Infinex/pkg/dexmath"
)

// Hooks receives the outputs of a pair engine. All callbacks run on the
// pair's writer goroutine and must not block.
type Hooks struct {
	OnAdmitted     func(*domain.Order)
	OnSettlement   func(*domain.Settlement)
	OnCandleSealed func(*domain.Candle)
	OnTrade        func(domain.TradeRecord)
}

// PairEngine is the single-writer aggregate for one trading pair: order
// book, intake pipeline, matching loop, settlement ledger, chart aggregator
// and role state. All of its state is mutated by exactly one goroutine.
type PairEngine struct {
	state    *domain.PairState
	book     *Book
	depth    *Depth
	ledger   *ledger.Ledger
	charts   *chart.Aggregator
	registry domain.PairRegistry
	balances domain.BalanceLedger
	history  domain.HistorySink
	signer   domain.Signer
	verifier domain.Verifier
	metrics  *infra.Metrics
	hooks    Hooks

	// dedup hashes of every order ever admitted for this pair
	orderHashes map[string]struct{}

	now func() int64
}

// NewPairEngine wires the per-pair aggregate. state must be initialized with
// the pair ID and drift tolerance; hooks fields may be nil.
func NewPairEngine(state *domain.PairState, registry domain.PairRegistry,
	balances domain.BalanceLedger, history domain.HistorySink,
	signer domain.Signer, verifier domain.Verifier,
	metrics *infra.Metrics, hooks Hooks) *PairEngine {

	pe := &PairEngine{
		state:       state,
		book:        NewBook(state.PairID),
		depth:       NewDepth(),
		registry:    registry,
		balances:    balances,
		history:     history,
		signer:      signer,
		verifier:    verifier,
		metrics:     metrics,
		hooks:       hooks,
		orderHashes: make(map[string]struct{}),
		now:         func() int64 { return time.Now().UnixMilli() },
	}
	pe.ledger = ledger.New(state, signer, verifier)
	pe.charts = chart.New(state.PairID, signer, hooks.OnCandleSealed)
	return pe
}

// Submit runs the full intake pipeline on a locally submitted order and, on
// admission, inserts it into the book and matches it. Every rejection is
// silent: no state is touched before the order is accepted.
func (pe *PairEngine) Submit(o *domain.Order) error {
	if o.Quantity == 0 {
		return pe.reject(o, domain.ErrZeroQuantity)
	}

	info := pe.registry.Lookup(o.PairID)
	if !info.Valid() {
		return pe.reject(o, domain.ErrUnknownPair)
	}
	if info.PairID != pe.state.PairID {
		return pe.reject(o, domain.ErrPairMismatch)
	}
	if o.Amount < info.MinTradeAmount || o.Amount > info.MaxTradeAmount {
		return pe.reject(o, domain.ErrAmountOutOfRange)
	}

	// The lower of the declared and configured fee always applies; a
	// higher declaration is never grounds for rejection.
	feeBps := dexmath.MinFeeBps(o.FeeBps, info.SideFeeBps(o.Side))

	if !pe.state.Roles.Has(domain.RoleProcess) {
		return pe.reject(o, domain.ErrNotInCharge)
	}
	if pe.state.SyncInProgress {
		return pe.reject(o, domain.ErrSyncInProgress)
	}
	if !pe.state.ValidSubmissionTime(o.SubmitTime) {
		return pe.reject(o, domain.ErrStaleSubmission)
	}
	if pe.verifier != nil && !pe.verifier.Verify(o.UserPubKey, o.UserSig, o.SignPayload()) {
		return pe.reject(o, domain.ErrBadSignature)
	}
	if _, dup := pe.orderHashes[o.UserHash]; dup {
		return pe.reject(o, domain.ErrDuplicateOrder)
	}
	if !pe.amountValid(o, feeBps) {
		return pe.reject(o, domain.ErrAmountMismatch)
	}

	asset, escrow := escrowFor(o, info)
	if pe.balances != nil {
		if res := pe.balances.Escrow(o.PairID, o.UserPubKey, asset, escrow); res != domain.EscrowDeducted {
			return pe.reject(o, domain.ErrEscrowRejected)
		}
	}

	pe.admit(o)
	pe.hookAdmitted(o)

	if pe.state.Roles.Has(domain.RoleMatch) {
		pe.match(o, info)
	}
	return nil
}

// admit assigns the sequence ID, stamps the operator and registers the order
// in every index. Called only after all checks passed.
func (pe *PairEngine) admit(o *domain.Order) {
	pe.state.LastOrderID++
	pe.state.AdvanceSubmitTime(o.SubmitTime)
	o.OrderID = pe.state.LastOrderID
	o.RemainingQty = int64(o.Quantity)
	o.RemainingAmount = int64(o.Amount)
	o.LastUpdate = pe.now()
	if pe.signer != nil {
		o.OperatorPubKey = pe.signer.PubKey()
		o.OperatorSig = pe.signer.Sign(o.AdmissionPayload())
	}

	pe.orderHashes[o.UserHash] = struct{}{}
	pe.book.Insert(o)
	if pe.state.Roles.Has(domain.RoleOrderBook) {
		pe.depth.Adjust(o.Side, o.Price, int64(o.Quantity))
	}
	if pe.metrics != nil {
		pe.metrics.RecordOrderAdmitted()
	}
}

func (pe *PairEngine) amountValid(o *domain.Order, feeBps int32) bool {
	var want uint64
	if o.Side == domain.SideBid {
		want = dexmath.BidRequiredAmount(o.Price, o.Quantity, feeBps)
	} else {
		want = dexmath.AskExpectedAmount(o.Price, o.Quantity, feeBps)
	}
	return dexmath.WithinOne(o.Amount, want)
}

// escrowFor returns the asset and quantity the balance ledger must lock for
// an order: bids lock the quote amount, asks lock the base quantity.
func escrowFor(o *domain.Order, info domain.PairInfo) (string, uint64) {
	if o.Side == domain.SideBid {
		return info.QuoteAsset, o.Amount
	}
	return info.BaseAsset, o.Quantity
}

func (pe *PairEngine) reject(o *domain.Order, err error) error {
	if pe.metrics != nil {
		pe.metrics.RecordOrderRejected()
	}
	slog.Debug("order rejected",
		slog.Int("pair_id", int(o.PairID)),
		slog.String("side", o.Side.String()),
		slog.String("reason", err.Error()))
	return err
}

func (pe *PairEngine) hookAdmitted(o *domain.Order) {
	if pe.hooks.OnAdmitted != nil {
		pe.hooks.OnAdmitted(o)
	}
}

// Cancel voids the unfilled remainder of a resting order. It travels the
// same per-pair pipeline as a submission and can only ever shrink remaining
// balances; settled history is untouchable.
func (pe *PairEngine) Cancel(req *domain.CancelRequest) error {
	if !pe.state.Roles.Has(domain.RoleProcess) {
		return domain.ErrNotInCharge
	}
	if pe.state.SyncInProgress {
		return domain.ErrSyncInProgress
	}
	if !pe.state.ValidSubmissionTime(req.SubmitTime) {
		return domain.ErrStaleSubmission
	}
	if pe.verifier != nil && !pe.verifier.Verify(req.UserPubKey, req.UserSig, req.SignPayload()) {
		return domain.ErrBadSignature
	}
	o := pe.book.Get(req.OrderID)
	if o == nil {
		return domain.ErrUnknownOrder
	}
	if o.UserPubKey != req.UserPubKey {
		return domain.ErrNotOrderOwner
	}
	if o.Filled() {
		return nil // nothing left to void
	}

	pe.state.AdvanceSubmitTime(req.SubmitTime)

	info := pe.registry.Lookup(o.PairID)
	remainingQty := o.RemainingQty
	if pe.balances != nil && info.Valid() {
		if o.Side == domain.SideBid {
			pe.balances.Release(o.PairID, o.UserPubKey, info.QuoteAsset, uint64(o.RemainingAmount))
		} else {
			pe.balances.Release(o.PairID, o.UserPubKey, info.BaseAsset, uint64(o.RemainingQty))
		}
	}
	o.RemainingQty = 0
	o.RemainingAmount = 0
	o.LastUpdate = pe.now()

	if pe.state.Roles.Has(domain.RoleOrderBook) {
		pe.depth.Adjust(o.Side, o.Price, -remainingQty)
	}
	return nil
}

// AcceptPeerOrder applies an order that was admitted and sequenced by the
// operator holding the process role. The local operator must hold the match
// role; out-of-sequence deliveries are dropped as distrust signals.
func (pe *PairEngine) AcceptPeerOrder(o *domain.Order) error {
	if o.Quantity == 0 {
		return domain.ErrZeroQuantity
	}
	info := pe.registry.Lookup(o.PairID)
	if !info.Valid() {
		return domain.ErrUnknownPair
	}
	if info.PairID != pe.state.PairID {
		return domain.ErrPairMismatch
	}
	if pe.state.SyncInProgress {
		return domain.ErrSyncInProgress
	}
	if !pe.state.Roles.Has(domain.RoleMatch) {
		return domain.ErrNotInCharge
	}
	if pe.verifier != nil && !pe.verifier.Verify(o.OperatorPubKey, o.OperatorSig, o.AdmissionPayload()) {
		slog.Warn("peer order with bad operator signature",
			slog.Int("pair_id", int(o.PairID)),
			slog.String("operator", o.OperatorPubKey))
		return domain.ErrBadSignature
	}
	if _, dup := pe.orderHashes[o.UserHash]; dup {
		return domain.ErrDuplicateOrder
	}
	if o.OrderID != pe.state.LastOrderID+1 {
		slog.Warn("peer order out of sequence",
			slog.Int("pair_id", int(o.PairID)),
			slog.Int64("got", o.OrderID),
			slog.Int64("last", pe.state.LastOrderID))
		return domain.ErrOutOfSequence
	}

	// Remaining balances are not covered by the admission signature.
	// Admission broadcasts happen before any matching, so a fresh peer
	// order is always whole: derive remaining from the signed quantities
	// rather than trusting the wire.
	o.RemainingQty = int64(o.Quantity)
	o.RemainingAmount = int64(o.Amount)

	pe.state.LastOrderID = o.OrderID
	pe.orderHashes[o.UserHash] = struct{}{}
	pe.book.Insert(o)
	if pe.state.Roles.Has(domain.RoleOrderBook) {
		pe.depth.Adjust(o.Side, o.Price, o.RemainingQty)
	}
	pe.match(o, info)
	return nil
}

// AcceptPeerSettlement records a settlement generated by a peer operator and
// feeds the downstream aggregates the local operator is responsible for.
func (pe *PairEngine) AcceptPeerSettlement(s *domain.Settlement) error {
	if pe.state.SyncInProgress {
		return domain.ErrSyncInProgress
	}
	if err := pe.ledger.AcceptFromNetwork(s); err != nil {
		if pe.metrics != nil {
			pe.metrics.RecordSettlementDropped()
			if errors.Is(err, domain.ErrSettlementConflict) {
				pe.metrics.RecordConflict()
			}
		}
		return err
	}
	if pe.metrics != nil {
		pe.metrics.RecordSettlementAccepted()
	}
	if pe.state.Roles.Has(domain.RoleChart) {
		pe.charts.InputTrade(s.Price, s.Quantity, s.TradeTime)
	}
	return nil
}

// SetRoles updates the local role set, refusing transitions mid-sync.
func (pe *PairEngine) SetRoles(roles domain.RoleSet) error {
	return pe.state.SetRoles(roles)
}

// SetSyncInProgress brackets an external state transfer. While set, every
// mutating operation on the pair is rejected.
func (pe *PairEngine) SetSyncInProgress(v bool) {
	pe.state.SyncInProgress = v
}

// State returns the pair's state aggregate (single-writer access only).
func (pe *PairEngine) State() *domain.PairState { return pe.state }

// Book returns the pair's order book (single-writer access only).
func (pe *PairEngine) Book() *Book { return pe.book }

// Ledger returns the pair's settlement ledger (single-writer access only).
func (pe *PairEngine) Ledger() *ledger.Ledger { return pe.ledger }

// Charts returns the pair's chart aggregator (single-writer access only).
func (pe *PairEngine) Charts() *chart.Aggregator { return pe.charts }

// DepthSnapshot returns the current public depth, best levels first.
func (pe *PairEngine) DepthSnapshot(maxLevels int) (bids, asks []DepthLevel) {
	return pe.depth.Snapshot(maxLevels)
}
