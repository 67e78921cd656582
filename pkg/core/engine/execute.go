package engine

import (
	"fmt"
	"math/bits"

	"github.com/jwhyun/spotdex/pkg/core"
	"github.com/jwhyun/spotdex/pkg/core/orders"
	"github.com/jwhyun/spotdex/pkg/events"
	"github.com/jwhyun/spotdex/pkg/storage"
)

// mulCmp compares a*b against c*d using the full 128-bit products, so price
// limits hold exactly for any uint64 magnitudes. Returns -1, 0 or +1.
func mulCmp(a, b, c, d uint64) int {
	hi1, lo1 := bits.Mul64(a, b)
	hi2, lo2 := bits.Mul64(c, d)
	switch {
	case hi1 != hi2:
		if hi1 < hi2 {
			return -1
		}
		return 1
	case lo1 != lo2:
		if lo1 < lo2 {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// checkPriceLimit verifies one order's price bound for the proposed fill via
// cross-multiplication: a Sell order never receives less than its floor rate
// (quotePaid/baseFill >= num/den), a Buy order never pays above its ceiling
// (quotePaid/baseFill <= num/den). Both orders are checked independently,
// which is what lets two differently priced resting orders cross at a single
// mutually acceptable (baseFill, quotePaid) pair.
func checkPriceLimit(o orders.Order, baseFill, quotePaid uint64) error {
	cmp := mulCmp(quotePaid, o.PriceDen, baseFill, o.PriceNum)
	switch o.Side {
	case orders.Sell:
		if cmp < 0 {
			return fmt.Errorf("%w: fill price below order %d's floor %d/%d", core.ErrState, o.ID, o.PriceNum, o.PriceDen)
		}
	case orders.Buy:
		if cmp > 0 {
			return fmt.Errorf("%w: fill price above order %d's ceiling %d/%d", core.ErrState, o.ID, o.PriceNum, o.PriceDen)
		}
	}
	return nil
}

// Execute atomically applies a proposed fill between two resting orders. The
// maker/taker labels are caller-assigned reporting roles with no priority
// semantics here; which order sells and which buys is determined by their
// sides. Every validation runs before any state changes, so a failed call has
// zero side effects.
func (e *Engine) Execute(makerID, takerID, baseFill, quotePaid uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if makerID == takerID {
		return fmt.Errorf("%w: distinct orders required", core.ErrValidation)
	}
	if baseFill == 0 || quotePaid == 0 {
		return fmt.Errorf("%w: fill must be positive", core.ErrValidation)
	}

	maker, ok := e.book.Get(makerID)
	if !ok {
		return fmt.Errorf("%w: maker order %d not found", core.ErrState, makerID)
	}
	taker, ok := e.book.Get(takerID)
	if !ok {
		return fmt.Errorf("%w: taker order %d not found", core.ErrState, takerID)
	}
	if maker.Status != orders.Open {
		return fmt.Errorf("%w: maker order %d is %s, not open", core.ErrState, makerID, maker.Status)
	}
	if taker.Status != orders.Open {
		return fmt.Errorf("%w: taker order %d is %s, not open", core.ErrState, takerID, taker.Status)
	}
	if maker.Side == taker.Side {
		return fmt.Errorf("%w: orders must be on opposite sides", core.ErrState)
	}

	if err := checkPriceLimit(maker, baseFill, quotePaid); err != nil {
		return err
	}
	if err := checkPriceLimit(taker, baseFill, quotePaid); err != nil {
		return err
	}

	seller, buyer := &maker, &taker
	if maker.Side == orders.Buy {
		seller, buyer = &taker, &maker
	}

	if seller.LockedBaseRemaining < baseFill {
		return fmt.Errorf("%w: order %d has %d base locked, fill needs %d",
			core.ErrInsufficientFunds, seller.ID, seller.LockedBaseRemaining, baseFill)
	}
	if buyer.LockedQuoteRemaining < quotePaid {
		return fmt.Errorf("%w: order %d has %d quote locked, fill needs %d",
			core.ErrInsufficientFunds, buyer.ID, buyer.LockedQuoteRemaining, quotePaid)
	}
	// The seller's lock equals its remaining base, but the buyer's remaining
	// base is independent of its quote lock and must not go negative.
	if buyer.RemainingBase < baseFill {
		return fmt.Errorf("%w: order %d has %d base remaining, fill is %d",
			core.ErrState, buyer.ID, buyer.RemainingBase, baseFill)
	}
	// A buy order that fills completely may have reserved more quote than it
	// ended up paying; the residual lock is released back to the owner so
	// terminal orders hold no funds.
	var buyerResidual uint64
	if buyer.RemainingBase == baseFill {
		buyerResidual = buyer.LockedQuoteRemaining - quotePaid
	}
	if err := e.ledger.CheckCredit(seller.Owner, e.quote, quotePaid); err != nil {
		return err
	}
	if err := e.ledger.CheckCredit(buyer.Owner, e.base, baseFill); err != nil {
		return err
	}
	if err := e.ledger.CheckCredit(buyer.Owner, e.quote, buyerResidual); err != nil {
		return err
	}

	// Validation complete; from here the whole fill applies.
	seller.LockedBaseRemaining -= baseFill
	seller.RemainingBase -= baseFill
	buyer.LockedQuoteRemaining -= quotePaid
	buyer.RemainingBase -= baseFill
	if buyer.RemainingBase == 0 {
		buyer.LockedQuoteRemaining = 0
	}
	if err := e.ledger.Credit(seller.Owner, e.quote, quotePaid); err != nil {
		panic(fmt.Errorf("credit after overflow check: %w", err))
	}
	if err := e.ledger.Credit(buyer.Owner, e.base, baseFill); err != nil {
		panic(fmt.Errorf("credit after overflow check: %w", err))
	}
	if err := e.ledger.Credit(buyer.Owner, e.quote, buyerResidual); err != nil {
		panic(fmt.Errorf("credit after overflow check: %w", err))
	}
	if maker.RemainingBase == 0 {
		maker.Status = orders.Filled
	}
	if taker.RemainingBase == 0 {
		taker.Status = orders.Filled
	}
	e.book.Put(maker)
	e.book.Put(taker)

	e.persist(func(b *storage.Batch) error {
		if err := b.SetBalance(seller.Owner, e.quote, e.ledger.Get(seller.Owner, e.quote)); err != nil {
			return err
		}
		if err := b.SetBalance(buyer.Owner, e.base, e.ledger.Get(buyer.Owner, e.base)); err != nil {
			return err
		}
		if buyerResidual > 0 {
			if err := b.SetBalance(buyer.Owner, e.quote, e.ledger.Get(buyer.Owner, e.quote)); err != nil {
				return err
			}
		}
		if err := b.PutOrder(maker); err != nil {
			return err
		}
		return b.PutOrder(taker)
	})

	e.emit.Emit(events.TradeExecuted{
		MakerOrderID:   makerID,
		TakerOrderID:   takerID,
		BaseFill:       baseFill,
		QuotePaid:      quotePaid,
		MakerRemaining: maker.RemainingBase,
		TakerRemaining: taker.RemainingBase,
	})
	return nil
}
