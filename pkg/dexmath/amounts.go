package dexmath

import "math/bits"

// FeeScale is the basis-point denominator used for all fee arithmetic.
// A fee of 100 means 1%.
const FeeScale = 10000

// BidRequiredAmount returns the amount the buyer must put up for a fill of
// qty at price with the given fee in basis points:
//
//	price * qty * 10000 / (10000 + feeBps)
//
// The product price*qty*10000 can exceed 64 bits, so the multiplication is
// carried out in a 128-bit intermediate before the truncating division.
func BidRequiredAmount(price, qty uint64, feeBps int32) uint64 {
	return mulScaleDiv(price, qty, uint64(FeeScale+feeBps))
}

// AskExpectedAmount returns the amount the seller receives for a fill of qty
// at price with the given fee in basis points:
//
//	price * qty * 10000 / (10000 - feeBps)
func AskExpectedAmount(price, qty uint64, feeBps int32) uint64 {
	return mulScaleDiv(price, qty, uint64(FeeScale-feeBps))
}

// mulScaleDiv computes price*qty*FeeScale/div with a 128-bit intermediate.
func mulScaleDiv(price, qty, div uint64) uint64 {
	if div == 0 {
		return 0
	}
	hi, lo := bits.Mul64(price, qty)
	hi2, lo2 := mul128by64(hi, lo, FeeScale)
	if hi2 >= div {
		// Quotient does not fit in 64 bits; saturate rather than panic in
		// Div64. Callers validate pair limits long before this can trigger.
		return ^uint64(0)
	}
	q, _ := bits.Div64(hi2, lo2, div)
	return q
}

// mul128by64 multiplies a 128-bit value (hi, lo) by m.
// Overflow past 128 bits is not possible for the inputs used here
// (price and qty are bounded by pair trade limits).
func mul128by64(hi, lo, m uint64) (uint64, uint64) {
	carryHi, newLo := bits.Mul64(lo, m)
	newHi := hi*m + carryHi
	return newHi, newLo
}

// MinFeeBps returns the fee that applies to an order: the lower of the fee
// the user declared and the fee the pair is configured with. The lower fee
// always benefits the user.
func MinFeeBps(declared, configured int32) int32 {
	if declared < configured {
		return declared
	}
	return configured
}

// WithinOne reports whether got is within a symmetric one-unit band of want.
// Integer fee arithmetic on the submitting side may round either way, so
// declared amounts are accepted at want-1, want and want+1.
func WithinOne(got, want uint64) bool {
	if got > want {
		return got-want <= 1
	}
	return want-got <= 1
}
