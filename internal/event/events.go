package event

import "github.com/CryptoBia/Infinex/internal/domain"

// Type tags the kind of input entering a pair's ordered stream.
type Type uint8

const (
	TypeSubmit Type = iota + 1
	TypeCancel
	TypePeerOrder
	TypePeerSettlement
)

// Event is one input in a pair's single ordered stream: a local submission,
// a cancellation, or a record delivered by a peer operator.
type Event interface {
	GetType() Type
	GetPairID() int32
}

// SubmitEvent carries a locally submitted order into the intake pipeline.
type SubmitEvent struct {
	Order *domain.Order
}

func (e *SubmitEvent) GetType() Type    { return TypeSubmit }
func (e *SubmitEvent) GetPairID() int32 { return e.Order.PairID }

// CancelEvent carries a signed cancellation request.
type CancelEvent struct {
	Req *domain.CancelRequest
}

func (e *CancelEvent) GetType() Type    { return TypeCancel }
func (e *CancelEvent) GetPairID() int32 { return e.Req.PairID }

// PeerOrderEvent carries an order admitted by the processing operator.
type PeerOrderEvent struct {
	Order *domain.Order
}

func (e *PeerOrderEvent) GetType() Type    { return TypePeerOrder }
func (e *PeerOrderEvent) GetPairID() int32 { return e.Order.PairID }

// PeerSettlementEvent carries a settlement record generated by a peer.
type PeerSettlementEvent struct {
	Settlement *domain.Settlement
}

func (e *PeerSettlementEvent) GetType() Type    { return TypePeerSettlement }
func (e *PeerSettlementEvent) GetPairID() int32 { return e.Settlement.PairID }
