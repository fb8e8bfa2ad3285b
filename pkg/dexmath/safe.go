package dexmath

import "fmt"

// SafeAdd adds two int64 values and panics on overflow.
// Balance corruption must never be silent.
func SafeAdd(a, b int64) int64 {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		panic(fmt.Sprintf("OVERFLOW_ADD: %d + %d", a, b))
	}
	return c
}

// SafeSub subtracts b from a and panics on overflow.
func SafeSub(a, b int64) int64 {
	c := a - b
	if (b < 0 && c < a) || (b > 0 && c > a) {
		panic(fmt.Sprintf("OVERFLOW_SUB: %d - %d", a, b))
	}
	return c
}

// SafeMul multiplies two uint64 values and panics on overflow. Gross trade
// amounts are price-quantity products and must never wrap silently.
func SafeMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	c := a * b
	if c/b != a {
		panic(fmt.Sprintf("OVERFLOW_MUL: %d * %d", a, b))
	}
	return c
}
