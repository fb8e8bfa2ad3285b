package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	ordersAdmitted     atomic.Uint64
	ordersRejected     atomic.Uint64
	fills              atomic.Uint64
	settlementsAccept  atomic.Uint64
	settlementsDropped atomic.Uint64
	conflicts          atomic.Uint64

	activeFeedClients atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordOrderAdmitted records one admitted order.
func (m *Metrics) RecordOrderAdmitted() {
	m.ordersAdmitted.Add(1)
}

// RecordOrderRejected records one intake rejection.
func (m *Metrics) RecordOrderRejected() {
	m.ordersRejected.Add(1)
}

// RecordFill records one matched fill.
func (m *Metrics) RecordFill() {
	m.fills.Add(1)
}

// RecordSettlementAccepted records one peer settlement accepted.
func (m *Metrics) RecordSettlementAccepted() {
	m.settlementsAccept.Add(1)
}

// RecordSettlementDropped records one peer settlement dropped.
func (m *Metrics) RecordSettlementDropped() {
	m.settlementsDropped.Add(1)
}

// RecordConflict records one settlement conflict.
func (m *Metrics) RecordConflict() {
	m.conflicts.Add(1)
}

// IncrementFeedClients increments connected feed clients by 1.
func (m *Metrics) IncrementFeedClients() {
	m.activeFeedClients.Add(1)
}

// DecrementFeedClients decrements connected feed clients by 1.
func (m *Metrics) DecrementFeedClients() {
	m.activeFeedClients.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OrdersAdmitted      uint64
	OrdersRejected      uint64
	Fills               uint64
	SettlementsAccepted uint64
	SettlementsDropped  uint64
	Conflicts           uint64
	ActiveFeedClients   int32
	Timestamp           time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		OrdersAdmitted:      m.ordersAdmitted.Load(),
		OrdersRejected:      m.ordersRejected.Load(),
		Fills:               m.fills.Load(),
		SettlementsAccepted: m.settlementsAccept.Load(),
		SettlementsDropped:  m.settlementsDropped.Load(),
		Conflicts:           m.conflicts.Load(),
		ActiveFeedClients:   m.activeFeedClients.Load(),
		Timestamp:           time.Now(),
	}
}
