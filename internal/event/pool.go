package event

import (
	"sync"
)

// Pools reduce GC pressure on the per-pair hotpath. Events are acquired at
// the boundary, handed to the runner, and released once applied.
//
// Usage:
//
//	ev := AcquireSubmitEvent()
//	ev.Order = order
//	// ... enqueue, process ...
//	ReleaseSubmitEvent(ev)
var submitPool = sync.Pool{
	New: func() interface{} {
		return &SubmitEvent{}
	},
}

// AcquireSubmitEvent gets a SubmitEvent from the pool.
// The returned event has zero values and must be initialized.
func AcquireSubmitEvent() *SubmitEvent {
	return submitPool.Get().(*SubmitEvent)
}

// ReleaseSubmitEvent returns a SubmitEvent to the pool.
func ReleaseSubmitEvent(ev *SubmitEvent) {
	if ev == nil {
		return
	}
	ev.Order = nil
	submitPool.Put(ev)
}

var peerSettlementPool = sync.Pool{
	New: func() interface{} {
		return &PeerSettlementEvent{}
	},
}

// AcquirePeerSettlementEvent gets a PeerSettlementEvent from the pool.
func AcquirePeerSettlementEvent() *PeerSettlementEvent {
	return peerSettlementPool.Get().(*PeerSettlementEvent)
}

// ReleasePeerSettlementEvent returns a PeerSettlementEvent to the pool.
func ReleasePeerSettlementEvent(ev *PeerSettlementEvent) {
	if ev == nil {
		return
	}
	ev.Settlement = nil
	peerSettlementPool.Put(ev)
}

// Warmup pre-allocates event objects to reduce GC pressure at startup.
func Warmup() {
	const batchSize = 1000

	submits := make([]*SubmitEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		submits = append(submits, AcquireSubmitEvent())
	}
	for _, ev := range submits {
		ReleaseSubmitEvent(ev)
	}

	settlements := make([]*PeerSettlementEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		settlements = append(settlements, AcquirePeerSettlementEvent())
	}
	for _, ev := range settlements {
		ReleasePeerSettlementEvent(ev)
	}
}
