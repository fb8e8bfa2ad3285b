package domain

import "errors"

// Intake and pipeline rejections. These are local, silent decisions: an
// order is simply not admitted. They are returned so callers can count and
// log them, never to unwind state.
var (
	// ErrZeroQuantity is returned for orders with no quantity.
	ErrZeroQuantity = errors.New("zero quantity")

	// ErrUnknownPair is returned when the registry has no such pair.
	ErrUnknownPair = errors.New("unknown trading pair")

	// ErrPairMismatch is returned when an order's declared pair does not
	// match the pair it was routed to.
	ErrPairMismatch = errors.New("pair mismatch")

	// ErrAmountOutOfRange is returned when an order violates the pair's
	// configured trade limits.
	ErrAmountOutOfRange = errors.New("amount outside pair limits")

	// ErrNotInCharge is returned when the local operator does not hold the
	// role required for the operation.
	ErrNotInCharge = errors.New("role not held locally")

	// ErrSyncInProgress is returned while the pair is mid-resynchronization.
	ErrSyncInProgress = errors.New("pair sync in progress")

	// ErrStaleSubmission is returned when a submission time falls behind the
	// drift tolerance.
	ErrStaleSubmission = errors.New("submission time outside drift tolerance")

	// ErrBadSignature marks a failed signature verification. This is a
	// distrust signal against the sender.
	ErrBadSignature = errors.New("signature verification failed")

	// ErrDuplicateOrder is returned when an order's dedup hash was already
	// recorded for the pair.
	ErrDuplicateOrder = errors.New("duplicate order hash")

	// ErrAmountMismatch is returned when the declared amount is outside the
	// one-unit tolerance band around the fee-adjusted expectation.
	ErrAmountMismatch = errors.New("declared amount mismatch")

	// ErrEscrowRejected is returned when the balance ledger refuses to
	// escrow the order's funds.
	ErrEscrowRejected = errors.New("escrow rejected")
)

// Ledger rejections for network-delivered records.
var (
	// ErrOutOfSequence is returned when a network-delivered record does not
	// carry exactly the next sequence ID. Such records are dropped, not
	// buffered.
	ErrOutOfSequence = errors.New("record out of sequence")

	// ErrDuplicateSettlement is returned for an exact duplicate of an
	// already recorded settlement hash.
	ErrDuplicateSettlement = errors.New("duplicate settlement hash")

	// ErrSettlementConflict is returned when a record reuses an existing
	// settlement ID with different content. The conflict is flagged for
	// reporting; resolution is external.
	ErrSettlementConflict = errors.New("conflicting settlement record")
)

// Cancellation rejections.
var (
	// ErrUnknownOrder is returned when no order with the given ID rests in
	// the pair's book.
	ErrUnknownOrder = errors.New("unknown order")

	// ErrNotOrderOwner is returned when a cancel request is signed by a key
	// other than the order's submitter.
	ErrNotOrderOwner = errors.New("cancel from non-owner")
)
