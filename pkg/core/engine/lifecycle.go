package engine

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jwhyun/spotdex/pkg/core"
	"github.com/jwhyun/spotdex/pkg/core/orders"
	"github.com/jwhyun/spotdex/pkg/events"
	"github.com/jwhyun/spotdex/pkg/storage"
)

// Place opens a limit order, atomically moving the reserved funds out of the
// owner's available balance and into the order's lock field.
//
// For Buy orders maxSpendQuote is the caller-chosen quote reservation; it is
// independent of amountBase times price, so the caller may hold back more or
// less than the nominal notional as a slippage buffer. Sell orders always
// reserve exactly amountBase of the base asset and ignore maxSpendQuote.
func (e *Engine) Place(owner common.Address, side orders.Side, amountBase, maxSpendQuote, priceNum, priceDen uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amountBase == 0 {
		return 0, fmt.Errorf("%w: amount_base must be > 0", core.ErrValidation)
	}
	if priceNum == 0 || priceDen == 0 {
		return 0, fmt.Errorf("%w: price must be positive", core.ErrValidation)
	}

	var lockAsset common.Address
	var lockAmount uint64
	switch side {
	case orders.Buy:
		if maxSpendQuote == 0 {
			return 0, fmt.Errorf("%w: max_spend_quote must be > 0 for buy orders", core.ErrValidation)
		}
		lockAsset, lockAmount = e.quote, maxSpendQuote
	case orders.Sell:
		lockAsset, lockAmount = e.base, amountBase
	default:
		return 0, fmt.Errorf("%w: invalid side %d", core.ErrValidation, side)
	}

	// Sole mutation precondition; nothing has changed if this fails.
	if have := e.ledger.Get(owner, lockAsset); have < lockAmount {
		return 0, fmt.Errorf("%w: have %d, need %d to lock", core.ErrInsufficientFunds, have, lockAmount)
	}

	if err := e.ledger.Debit(owner, lockAsset, lockAmount); err != nil {
		panic(fmt.Errorf("debit after balance check: %w", err))
	}
	o := e.book.Create(owner, side, amountBase, priceNum, priceDen, lockAmount, e.clock.Now().UnixMilli())

	e.persist(func(b *storage.Batch) error {
		if err := b.SetBalance(owner, lockAsset, e.ledger.Get(owner, lockAsset)); err != nil {
			return err
		}
		return b.PutOrder(o)
	})

	ev := events.OrderPlaced{
		OrderID:    o.ID,
		Owner:      owner,
		Side:       side.String(),
		AmountBase: amountBase,
		PriceNum:   priceNum,
		PriceDen:   priceDen,
	}
	if side == orders.Buy {
		ev.MaxSpendQuote = maxSpendQuote
	}
	e.emit.Emit(ev)
	return o.ID, nil
}

// Cancel closes an open order and refunds its live lock to the owner's
// available balance. Only the owner may cancel, and only once: a second
// attempt finds a terminal order and fails without touching any balance.
func (e *Engine) Cancel(caller common.Address, id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, ok := e.book.Get(id)
	if !ok {
		return fmt.Errorf("%w: order %d not found", core.ErrState, id)
	}
	if o.Owner != caller {
		return fmt.Errorf("%w: only the owner can cancel order %d", core.ErrUnauthorized, id)
	}
	if o.Status != orders.Open {
		return fmt.Errorf("%w: order %d is %s, not open", core.ErrState, id, o.Status)
	}

	var refundAsset common.Address
	var refund uint64
	switch o.Side {
	case orders.Buy:
		refundAsset, refund = e.quote, o.LockedQuoteRemaining
	case orders.Sell:
		refundAsset, refund = e.base, o.LockedBaseRemaining
	default:
		return fmt.Errorf("%w: order %d has invalid side", core.ErrState, id)
	}
	if refund > 0 {
		if err := e.ledger.CheckCredit(caller, refundAsset, refund); err != nil {
			return err
		}
	}

	if refund > 0 {
		if err := e.ledger.Credit(caller, refundAsset, refund); err != nil {
			panic(fmt.Errorf("credit after overflow check: %w", err))
		}
	}
	o.Status = orders.Cancelled
	o.LockedQuoteRemaining = 0
	o.LockedBaseRemaining = 0
	o.RemainingBase = 0
	e.book.Put(o)

	e.persist(func(b *storage.Batch) error {
		if err := b.SetBalance(caller, refundAsset, e.ledger.Get(caller, refundAsset)); err != nil {
			return err
		}
		return b.PutOrder(o)
	})

	e.emit.Emit(events.OrderCancelled{OrderID: id, Owner: caller, Refunded: refund})
	return nil
}
