// Package bridge is the settlement core's view of the external asset ledgers
// that actually custody tokens. The core only issues outbound transfer
// requests here; deposits arrive through the engine's OnTokenTransfer
// callback, invoked by whatever hosts the real bridge.
package bridge

import (
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// TokenLedger issues transfer requests against one asset's home ledger.
// Implementations enqueue or send the request; completion is not awaited by
// the settlement core. A returned error means the request could not even be
// issued, which the engine treats as a synchronous failure and rolls back.
type TokenLedger interface {
	// Transfer moves amount of the asset to receiver.
	Transfer(asset common.Address, receiver common.Address, amount uint64) error

	// TransferCall is the transfer-with-callback variant: the receiving
	// ledger forwards msg to the receiver contract after crediting it.
	TransferCall(asset common.Address, receiver common.Address, amount uint64, msg string) error
}

// LogLedger is a TokenLedger that only records the request. It stands in for
// a real bridge client in development and single-node runs.
type LogLedger struct {
	log *zap.SugaredLogger
}

func NewLogLedger(log *zap.SugaredLogger) *LogLedger {
	return &LogLedger{log: log}
}

func (l *LogLedger) Transfer(asset, receiver common.Address, amount uint64) error {
	l.log.Infow("bridge_transfer", "asset", asset.Hex(), "receiver", receiver.Hex(), "amount", amount)
	return nil
}

func (l *LogLedger) TransferCall(asset, receiver common.Address, amount uint64, msg string) error {
	l.log.Infow("bridge_transfer_call", "asset", asset.Hex(), "receiver", receiver.Hex(), "amount", amount, "msg", msg)
	return nil
}
