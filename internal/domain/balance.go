package domain

import (
	"fmt"

	"github.com/CryptoBia/Infinex/pkg/dexmath"
)

// Balance is one user's holding of one asset inside exchange custody.
// All mutation goes through Credit/Debit/Reserve so that overflow and
// over-spend are loud failures, never silent corruption.
type Balance struct {
	PubKey       string `json:"pub_key"`
	Asset        string `json:"asset"`
	Amount       int64  `json:"amount"`
	Reserved     int64  `json:"reserved"` // escrowed for open orders
	LastUpdateMs int64  `json:"last_update"`
}

// Available returns the spendable balance (total - reserved).
func (b *Balance) Available() int64 {
	return dexmath.SafeSub(b.Amount, b.Reserved)
}

// Credit adds funds. Panics on overflow.
func (b *Balance) Credit(amount int64, now int64) {
	b.Amount = dexmath.SafeAdd(b.Amount, amount)
	b.LastUpdateMs = now
}

// Debit removes funds. Panics if the balance would go negative.
func (b *Balance) Debit(amount int64, now int64) {
	if amount > b.Amount {
		panic(fmt.Sprintf("BALANCE_INSUFFICIENT: %s/%s need %d, have %d",
			b.PubKey, b.Asset, amount, b.Amount))
	}
	b.Amount = dexmath.SafeSub(b.Amount, amount)
	b.LastUpdateMs = now
}

// Reserve escrows funds for an open order. Returns false when the available
// balance does not cover the request.
func (b *Balance) Reserve(amount int64, now int64) bool {
	if amount > b.Available() {
		return false
	}
	b.Reserved = dexmath.SafeAdd(b.Reserved, amount)
	b.LastUpdateMs = now
	return true
}

// Unreserve releases escrowed funds without spending them.
func (b *Balance) Unreserve(amount int64, now int64) {
	if amount > b.Reserved {
		amount = b.Reserved
	}
	b.Reserved = dexmath.SafeSub(b.Reserved, amount)
	b.LastUpdateMs = now
}

// Spend consumes reserved funds as part of a settlement.
func (b *Balance) Spend(amount int64, now int64) {
	b.Unreserve(amount, now)
	b.Debit(amount, now)
}
