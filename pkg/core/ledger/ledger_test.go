package ledger

import (
	"errors"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jwhyun/spotdex/pkg/core"
)

var (
	alice = common.HexToAddress("0xAA00000000000000000000000000000000000000")
	bob   = common.HexToAddress("0xBB00000000000000000000000000000000000000")
	gold  = common.HexToAddress("0x0000000000000000000000000000000000000b01")
	usd   = common.HexToAddress("0x0000000000000000000000000000000000000c01")
)

func TestGetDefaultsToZero(t *testing.T) {
	l := New()
	if got := l.Get(alice, gold); got != 0 {
		t.Errorf("empty ledger balance = %d, want 0", got)
	}
}

func TestCreditDebit(t *testing.T) {
	l := New()
	if err := l.Credit(alice, gold, 100); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := l.Credit(alice, gold, 50); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if got := l.Get(alice, gold); got != 150 {
		t.Errorf("balance = %d, want 150", got)
	}

	if err := l.Debit(alice, gold, 40); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if got := l.Get(alice, gold); got != 110 {
		t.Errorf("balance = %d, want 110", got)
	}
}

func TestDebitInsufficient(t *testing.T) {
	l := New()
	if err := l.Credit(alice, gold, 10); err != nil {
		t.Fatalf("credit: %v", err)
	}
	err := l.Debit(alice, gold, 11)
	if !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("debit error = %v, want ErrInsufficientFunds", err)
	}
	if got := l.Get(alice, gold); got != 10 {
		t.Errorf("failed debit changed balance: %d", got)
	}
}

func TestDebitToZeroRemovesEntry(t *testing.T) {
	l := New()
	if err := l.Credit(alice, gold, 25); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := l.Debit(alice, gold, 25); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if got := l.Get(alice, gold); got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}
	if l.Len() != 0 {
		t.Errorf("zero balance still stored, Len = %d", l.Len())
	}
}

func TestCreditZeroStoresNothing(t *testing.T) {
	l := New()
	if err := l.Credit(alice, gold, 0); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("zero credit created an entry, Len = %d", l.Len())
	}
}

func TestCreditOverflow(t *testing.T) {
	l := New()
	if err := l.Credit(alice, gold, math.MaxUint64); err != nil {
		t.Fatalf("credit: %v", err)
	}
	err := l.Credit(alice, gold, 1)
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("overflow credit error = %v, want ErrValidation", err)
	}
	if got := l.Get(alice, gold); got != math.MaxUint64 {
		t.Errorf("overflow credit changed balance: %d", got)
	}

	if err := l.CheckCredit(alice, gold, 1); !errors.Is(err, core.ErrValidation) {
		t.Errorf("CheckCredit = %v, want ErrValidation", err)
	}
	if err := l.CheckCredit(bob, gold, math.MaxUint64); err != nil {
		t.Errorf("CheckCredit on fresh account: %v", err)
	}
}

func TestTotalOf(t *testing.T) {
	l := New()
	l.Restore(alice, gold, 100)
	l.Restore(bob, gold, 250)
	l.Restore(alice, usd, 999)

	if got := l.TotalOf(gold); got != 350 {
		t.Errorf("TotalOf(gold) = %d, want 350", got)
	}
	if got := l.TotalOf(usd); got != 999 {
		t.Errorf("TotalOf(usd) = %d, want 999", got)
	}
}

func TestRangeVisitsAllEntries(t *testing.T) {
	l := New()
	l.Restore(alice, gold, 1)
	l.Restore(bob, usd, 2)
	l.Restore(bob, gold, 0) // dropped

	seen := 0
	l.Range(func(_, _ common.Address, amount uint64) {
		seen++
		if amount == 0 {
			t.Error("Range visited a zero entry")
		}
	})
	if seen != 2 {
		t.Errorf("Range visited %d entries, want 2", seen)
	}
}
