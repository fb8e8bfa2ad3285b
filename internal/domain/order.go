package domain

import (
	"fmt"
	"strconv"
)

// Side identifies which side of the book an order rests on.
type Side uint8

const (
	SideBid Side = iota + 1 // buy
	SideAsk                 // sell
)

// String returns the string representation of Side.
func (s Side) String() string {
	switch s {
	case SideBid:
		return "BID"
	case SideAsk:
		return "ASK"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBid {
		return SideAsk
	}
	return SideBid
}

// Order is a user order as admitted into a pair's book.
// All monetary values are strictly integer base units.
//
// Price, Quantity, Amount and the fee are fixed at submission. OrderID is
// assigned exactly once by the admitting operator; the remaining balances
// are set at admission and only ever decrease.
type Order struct {
	PairID     int32  `json:"pair_id"`
	Side       Side   `json:"side"`
	Price      uint64 `json:"price"`
	Quantity   uint64 `json:"qty"`
	Amount     uint64 `json:"amount"` // declared, = price*qty net of fee
	FeeBps     int32  `json:"fee_bps"`
	UserPubKey string `json:"user_pub_key"`
	SubmitTime int64  `json:"submit_time"` // unix ms
	UserHash   string `json:"user_hash"`   // submitter dedup hash
	UserSig    []byte `json:"user_sig"`

	// Set by the admitting operator.
	OrderID         int64  `json:"order_id"`
	RemainingQty    int64  `json:"remaining_qty"`
	RemainingAmount int64  `json:"remaining_amount"`
	LastUpdate      int64  `json:"last_update"`
	OperatorPubKey  string `json:"operator_pub_key"`
	OperatorSig     []byte `json:"operator_sig"`
}

// Filled reports whether the order has no remaining quantity.
func (o *Order) Filled() bool {
	return o.RemainingQty <= 0
}

// SignPayload returns the canonical byte string covered by both the user
// and the operator signature.
func (o *Order) SignPayload() []byte {
	return []byte(strconv.Itoa(int(o.PairID)) + o.Side.String() +
		strconv.FormatUint(o.Price, 10) + strconv.FormatUint(o.Quantity, 10) +
		strconv.FormatUint(o.Amount, 10) + strconv.Itoa(int(o.FeeBps)) +
		o.UserPubKey + strconv.FormatInt(o.SubmitTime, 10) + o.UserHash)
}

// AdmissionPayload returns the canonical byte string covered by the
// admitting operator's signature: the submission fields plus the assigned
// sequence ID and operator identity.
func (o *Order) AdmissionPayload() []byte {
	return append(o.SignPayload(), []byte(strconv.FormatInt(o.OrderID, 10)+o.OperatorPubKey)...)
}

// CancelRequest asks for the unfilled remainder of a resting order to be
// voided. It re-enters the same per-pair pipeline as a submission.
type CancelRequest struct {
	PairID     int32  `json:"pair_id"`
	OrderID    int64  `json:"order_id"`
	UserPubKey string `json:"user_pub_key"`
	SubmitTime int64  `json:"submit_time"`
	UserSig    []byte `json:"user_sig"`
}

// SignPayload returns the canonical byte string covered by the user signature.
func (c *CancelRequest) SignPayload() []byte {
	return []byte(fmt.Sprintf("CANCEL:%d:%d:%s:%d", c.PairID, c.OrderID, c.UserPubKey, c.SubmitTime))
}
