// Package ledger tracks available (unlocked) balances per account and asset.
// Funds locked by an open order leave the ledger entirely and live in the
// order's lock field until a fill or cancellation releases them, so a unit of
// value is spendable in exactly one place at a time.
package ledger

import (
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jwhyun/spotdex/pkg/core"
)

// Key identifies one balance entry.
type Key struct {
	Account common.Address
	Asset   common.Address
}

// Ledger is a sparse map of (account, asset) -> available amount.
// Entries that reach zero are removed, so storage is bounded by the number of
// nonzero holdings. Not safe for concurrent use; the owning engine serializes
// all access.
type Ledger struct {
	balances map[Key]uint64
}

func New() *Ledger {
	return &Ledger{balances: make(map[Key]uint64)}
}

// Get returns the available balance, zero if no entry exists.
func (l *Ledger) Get(account, asset common.Address) uint64 {
	return l.balances[Key{Account: account, Asset: asset}]
}

// Credit adds amount to the available balance. Overflow aborts the enclosing
// operation rather than wrapping.
func (l *Ledger) Credit(account, asset common.Address, amount uint64) error {
	if amount == 0 {
		return nil // never store an explicit zero
	}
	k := Key{Account: account, Asset: asset}
	cur := l.balances[k]
	if amount > math.MaxUint64-cur {
		return fmt.Errorf("%w: balance overflow crediting %d to %s", core.ErrValidation, amount, account.Hex())
	}
	l.balances[k] = cur + amount
	return nil
}

// CheckCredit reports whether Credit would succeed, without mutating. Used to
// front-load overflow validation before a multi-step mutation begins.
func (l *Ledger) CheckCredit(account, asset common.Address, amount uint64) error {
	cur := l.balances[Key{Account: account, Asset: asset}]
	if amount > math.MaxUint64-cur {
		return fmt.Errorf("%w: balance overflow crediting %d to %s", core.ErrValidation, amount, account.Hex())
	}
	return nil
}

// Debit removes amount from the available balance, deleting the entry when it
// reaches exactly zero.
func (l *Ledger) Debit(account, asset common.Address, amount uint64) error {
	k := Key{Account: account, Asset: asset}
	cur := l.balances[k]
	if amount > cur {
		return fmt.Errorf("%w: have %d, need %d", core.ErrInsufficientFunds, cur, amount)
	}
	next := cur - amount
	if next == 0 {
		delete(l.balances, k)
	} else {
		l.balances[k] = next
	}
	return nil
}

// Restore installs a balance loaded from persistence. Zero amounts are
// dropped to keep the map sparse.
func (l *Ledger) Restore(account, asset common.Address, amount uint64) {
	if amount == 0 {
		return
	}
	l.balances[Key{Account: account, Asset: asset}] = amount
}

// Len reports the number of nonzero entries.
func (l *Ledger) Len() int {
	return len(l.balances)
}

// Range calls fn for every nonzero entry. Iteration order is unspecified.
func (l *Ledger) Range(fn func(account, asset common.Address, amount uint64)) {
	for k, v := range l.balances {
		fn(k.Account, k.Asset, v)
	}
}

// TotalOf sums all available balances held in one asset. Used by hosts and
// tests to check conservation against the locks held in open orders.
func (l *Ledger) TotalOf(asset common.Address) uint64 {
	var total uint64
	for k, v := range l.balances {
		if k.Asset == asset {
			total += v
		}
	}
	return total
}
