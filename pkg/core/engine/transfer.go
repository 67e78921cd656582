package engine

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/jwhyun/spotdex/pkg/core"
	"github.com/jwhyun/spotdex/pkg/events"
	"github.com/jwhyun/spotdex/pkg/storage"
)

// OnTokenTransfer is the deposit callback invoked by the asset bridge after a
// token ledger has transferred amount into the exchange's custody on behalf
// of sender. The return value is the refund: the full amount when the token
// is not one of the two configured trading assets, zero when the deposit was
// consumed and credited.
func (e *Engine) OnTokenTransfer(sender common.Address, amount uint64, tokenContract common.Address) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tokenContract != e.base && tokenContract != e.quote {
		e.log.Infow("deposit_declined", "sender", sender.Hex(), "token", tokenContract.Hex(), "amount", amount)
		return amount, nil
	}
	if err := e.ledger.Credit(sender, tokenContract, amount); err != nil {
		return 0, err
	}

	e.persist(func(b *storage.Batch) error {
		return b.SetBalance(sender, tokenContract, e.ledger.Get(sender, tokenContract))
	})

	e.emit.Emit(events.DepositReceived{Account: sender, Asset: tokenContract, Amount: amount})
	return 0, nil
}

// Withdraw debits amount from the caller's available balance and issues an
// outbound transfer request to the asset's home ledger. Receiver defaults to
// the caller; a non-empty forwardMsg selects the transfer-with-callback
// variant of the request.
//
// The handoff is optimistic: the debit happens before the request is issued
// and the request's eventual completion is not awaited, so a downstream
// failure is not compensated. A request that cannot even be issued is rolled
// back here, restoring the caller's balance.
func (e *Engine) Withdraw(caller common.Address, asset common.Address, amount uint64, receiver *common.Address, forwardMsg string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount == 0 {
		return fmt.Errorf("%w: amount must be > 0", core.ErrValidation)
	}
	if e.tokens == nil {
		return fmt.Errorf("%w: no outbound token ledger configured", core.ErrState)
	}

	to := caller
	if receiver != nil {
		to = *receiver
	}

	if err := e.ledger.Debit(caller, asset, amount); err != nil {
		return err
	}

	var err error
	if forwardMsg != "" {
		err = e.tokens.TransferCall(asset, to, amount, forwardMsg)
	} else {
		err = e.tokens.Transfer(asset, to, amount)
	}
	if err != nil {
		// The request never left; restore the balance so the caller sees an
		// atomic failure.
		if cerr := e.ledger.Credit(caller, asset, amount); cerr != nil {
			panic(fmt.Errorf("restore balance after failed withdrawal issue: %v (original: %w)", cerr, err))
		}
		return fmt.Errorf("issue withdrawal transfer: %w", err)
	}

	e.persist(func(b *storage.Batch) error {
		return b.SetBalance(caller, asset, e.ledger.Get(caller, asset))
	})

	e.emit.Emit(events.WithdrawalIssued{
		Account:  caller,
		Asset:    asset,
		Amount:   amount,
		Receiver: to,
		HasMsg:   forwardMsg != "",
	})
	return nil
}
