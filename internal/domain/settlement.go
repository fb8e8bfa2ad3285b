package domain

import "strconv"

// Settlement is the immutable, hash-chained audit record for one fill.
// Once signed it is never mutated.
type Settlement struct {
	SettlementID   int64  `gorm:"index:idx_settlement,unique,priority:2" json:"settlement_id"`
	PairID         int32  `gorm:"index:idx_settlement,unique,priority:1" json:"pair_id"`
	BidOrderID     int64  `gorm:"index" json:"bid_order_id"`
	AskOrderID     int64  `gorm:"index" json:"ask_order_id"`
	Price          uint64 `json:"price"`
	Quantity       uint64 `json:"qty"`
	Amount         uint64 `json:"amount"` // price * qty
	BidAmount      uint64 `json:"bid_amount"`
	AskAmount      uint64 `json:"ask_amount"`
	BidPubKey      string `json:"bid_pub_key"`
	AskPubKey      string `json:"ask_pub_key"`
	BidFeeBps      int32  `json:"bid_fee_bps"`
	AskFeeBps      int32  `json:"ask_fee_bps"`
	OperatorPubKey string `json:"operator_pub_key"`
	PrevHash       string `json:"prev_hash"`
	Hash           string `gorm:"index" json:"hash"`
	Sig            []byte `json:"sig"`
	TradeTime      int64  `json:"trade_time"` // unix ms
}

// HashPayload returns the canonical byte string the content hash is computed
// over. It chains to the pair's previous hash; identical content always
// produces identical bytes.
func (s *Settlement) HashPayload() []byte {
	return []byte(strconv.Itoa(int(s.PairID)) +
		strconv.FormatInt(s.BidOrderID, 10) + strconv.FormatInt(s.AskOrderID, 10) +
		strconv.FormatUint(s.Price, 10) + strconv.FormatUint(s.Quantity, 10) +
		strconv.FormatUint(s.Amount, 10) +
		s.BidPubKey + s.AskPubKey +
		strconv.Itoa(int(s.BidFeeBps)) + strconv.Itoa(int(s.AskFeeBps)) +
		s.PrevHash + strconv.FormatInt(s.TradeTime, 10))
}

// SignPayload returns the canonical byte string covered by the operator
// signature. The signature covers the chained hash, so it transitively
// commits to the whole record.
func (s *Settlement) SignPayload() []byte {
	return []byte(strconv.FormatInt(s.SettlementID, 10) + s.Hash + s.OperatorPubKey)
}

// TradeRecord is one market trade-history row handed to the history store.
type TradeRecord struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PairID         int32  `gorm:"index" json:"pair_id"`
	BuyerPubKey    string `json:"buyer_pub_key"`
	SellerPubKey   string `json:"seller_pub_key"`
	Price          uint64 `json:"price"`
	Quantity       uint64 `json:"qty"`
	Amount         uint64 `json:"amount"`
	BuyerInitiated bool   `json:"buyer_initiated"`
	TradeTime      int64  `gorm:"index" json:"trade_time"`
}
