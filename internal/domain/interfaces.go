package domain

// EscrowResult is the balance ledger's answer to an escrow request.
type EscrowResult int

const (
	EscrowDeducted EscrowResult = iota + 1
	EscrowInsufficient
	EscrowError
)

// BalanceLedger escrows and transfers user funds. The authoritative funds
// ledger lives outside this core; the engine only calls through this
// interface and never inspects balances directly.
type BalanceLedger interface {
	// Escrow moves amount of the submitter's funds into exchange custody
	// before an order enters the book.
	Escrow(pairID int32, pubKey string, asset string, amount uint64) EscrowResult

	// Release returns escrowed funds after a cancellation.
	Release(pairID int32, pubKey string, asset string, amount uint64)

	// Settle applies one fill: the buyer pays bidAmount quote and receives
	// qty base; the seller gives up qty base and receives askAmount quote.
	// The spread between bidAmount, price*qty and askAmount is the fee take.
	Settle(pairID int32, bidPubKey, askPubKey, baseAsset, quoteAsset string,
		bidQuoteDelta, bidBaseDelta, askBaseDelta int64, askQuoteDelta int64)
}

// PairRegistry resolves static trading-pair configuration.
type PairRegistry interface {
	// Lookup returns the pair's configuration, or an invalid PairInfo
	// (zero PairID) when the pair is unknown.
	Lookup(pairID int32) PairInfo
}

// Signer produces signatures with the local operator identity.
// The concrete algorithm is a collaborator concern, not part of the core.
type Signer interface {
	PubKey() string
	Sign(payload []byte) []byte
}

// Verifier checks a signature against an identity.
type Verifier interface {
	Verify(pubKey string, sig []byte, payload []byte) bool
}

// HistorySink receives market trade-history rows when the local operator
// holds the history role.
type HistorySink interface {
	Record(rec TradeRecord) error
}

// Relay broadcasts accepted records to peer operators.
type Relay interface {
	BroadcastOrder(o *Order)
	BroadcastSettlement(s *Settlement)
	BroadcastCandle(c *Candle)
}
