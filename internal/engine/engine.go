// Package engine implements the matching-and-settlement core: per-pair
// order intake, price-time-priority matching, and the single-writer
// execution discipline that the sequence-ID and hash-chain invariants
// depend on.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/CryptoBia/Infinex/internal/domain"
	"github.com/CryptoBia/Infinex/internal/event"
	"github.com/CryptoBia/Infinex/internal/infra"
)

// Engine routes the ordered input stream of every registered pair to that
// pair's single writer goroutine. Independent pairs run fully concurrently;
// state within one pair is never touched by more than one goroutine.
type Engine struct {
	registry domain.PairRegistry
	balances domain.BalanceLedger
	history  domain.HistorySink
	signer   domain.Signer
	verifier domain.Verifier
	metrics  *infra.Metrics
	hooks    Hooks

	inboxSize int

	mu    sync.RWMutex
	pairs map[int32]*pairRunner
}

// pairRunner couples one pair engine with its inbox channel.
type pairRunner struct {
	inbox chan event.Event
	pe    *PairEngine
}

// New creates an engine with no pairs registered.
func New(registry domain.PairRegistry, balances domain.BalanceLedger,
	history domain.HistorySink, signer domain.Signer, verifier domain.Verifier,
	metrics *infra.Metrics, hooks Hooks, inboxSize int) *Engine {

	if inboxSize <= 0 {
		inboxSize = 1024
	}
	return &Engine{
		registry:  registry,
		balances:  balances,
		history:   history,
		signer:    signer,
		verifier:  verifier,
		metrics:   metrics,
		hooks:     hooks,
		inboxSize: inboxSize,
		pairs:     make(map[int32]*pairRunner),
	}
}

// RegisterPair creates the per-pair aggregate and starts its writer
// goroutine. Registering an already-known pair is a no-op.
func (e *Engine) RegisterPair(ctx context.Context, pairID int32, driftMs int64, roles domain.RoleSet) error {
	if !e.registry.Lookup(pairID).Valid() {
		return domain.ErrUnknownPair
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.pairs[pairID]; ok {
		return nil
	}

	state := &domain.PairState{
		PairID:           pairID,
		Roles:            roles,
		MaxSubmitDriftMs: driftMs,
	}
	r := &pairRunner{
		inbox: make(chan event.Event, e.inboxSize),
		pe: NewPairEngine(state, e.registry, e.balances, e.history,
			e.signer, e.verifier, e.metrics, e.hooks),
	}
	e.pairs[pairID] = r
	go r.run(ctx)

	slog.Info("pair registered",
		slog.Int("pair_id", int(pairID)),
		slog.Int("roles", int(roles)))
	return nil
}

// Enqueue hands an input to its pair's ordered stream. Unknown pairs are
// rejected; a full inbox drops the event rather than blocking the caller.
func (e *Engine) Enqueue(ev event.Event) error {
	e.mu.RLock()
	r, ok := e.pairs[ev.GetPairID()]
	e.mu.RUnlock()
	if !ok {
		return domain.ErrUnknownPair
	}
	select {
	case r.inbox <- ev:
		return nil
	default:
		slog.Warn("pair inbox full, dropping event",
			slog.Int("pair_id", int(ev.GetPairID())),
			slog.Int("type", int(ev.GetType())))
		return fmt.Errorf("pair %d inbox full", ev.GetPairID())
	}
}

// Pair returns the pair engine for direct, single-writer use. Outside of
// tests and bootstrap this must only be called from the pair's own writer
// goroutine.
func (e *Engine) Pair(pairID int32) *PairEngine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if r, ok := e.pairs[pairID]; ok {
		return r.pe
	}
	return nil
}

// run is the pair's writer loop. It MUST be the only goroutine mutating the
// pair's state.
func (r *pairRunner) run(ctx context.Context) {
	pairID := r.pe.State().PairID

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("CRITICAL_PANIC_DETECTED",
				slog.Int("pair_id", int(pairID)), slog.Any("panic", rec))
			r.pe.DumpState(fmt.Sprintf("pair_%d_panic_dump.json", pairID))
			panic(fmt.Sprintf("HALTED pair %d: %v", pairID, rec))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("pair writer stopping", slog.Int("pair_id", int(pairID)))
			return
		case ev := <-r.inbox:
			r.apply(ev)
		}
	}
}

func (r *pairRunner) apply(ev event.Event) {
	switch e := ev.(type) {
	case *event.SubmitEvent:
		_ = r.pe.Submit(e.Order) // rejections leave no state behind
		event.ReleaseSubmitEvent(e)
	case *event.CancelEvent:
		_ = r.pe.Cancel(e.Req)
	case *event.PeerOrderEvent:
		_ = r.pe.AcceptPeerOrder(e.Order)
	case *event.PeerSettlementEvent:
		_ = r.pe.AcceptPeerSettlement(e.Settlement)
		event.ReleasePeerSettlementEvent(e)
	default:
		slog.Warn("unknown event type", slog.Int("type", int(ev.GetType())))
	}
}

// DumpState writes the pair's counters and book size to a file for
// post-mortem analysis.
func (pe *PairEngine) DumpState(filename string) {
	data := struct {
		State      *domain.PairState `json:"state"`
		BookOrders int               `json:"book_orders"`
		Settled    int               `json:"settled"`
	}{
		State:      pe.state,
		BookOrders: pe.book.Len(),
		Settled:    pe.ledger.Len(),
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("failed to marshal state dump", slog.Any("error", err))
		return
	}
	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("failed to write state dump", slog.Any("error", err))
	}
}
