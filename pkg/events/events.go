// Package events defines the notification records the settlement core
// surfaces after each successful mutation. The core fills the records; owning
// their transport (logs, websockets, a bus) is the host's job.
package events

import "github.com/ethereum/go-ethereum/common"

// Record is implemented by every notification type.
type Record interface {
	// EventName is the stable wire name of the record.
	EventName() string
}

// Emitter receives records after the originating operation has fully applied.
// Implementations must not call back into the engine.
type Emitter interface {
	Emit(Record)
}

// Discard is an Emitter that drops everything.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(Record) {}

// Multi fans one record out to several emitters in order.
type Multi []Emitter

func (m Multi) Emit(r Record) {
	for _, e := range m {
		e.Emit(r)
	}
}

// OrderPlaced is surfaced when a placement locks funds and opens an order.
type OrderPlaced struct {
	OrderID       uint64         `json:"orderId"`
	Owner         common.Address `json:"owner"`
	Side          string         `json:"side"`
	AmountBase    uint64         `json:"amountBase"`
	MaxSpendQuote uint64         `json:"maxSpendQuote,omitempty"` // Buy only
	PriceNum      uint64         `json:"priceNum"`
	PriceDen      uint64         `json:"priceDen"`
}

func (OrderPlaced) EventName() string { return "order_place" }

// OrderCancelled is surfaced when an open order is cancelled and its lock
// refunded.
type OrderCancelled struct {
	OrderID  uint64         `json:"orderId"`
	Owner    common.Address `json:"owner"`
	Refunded uint64         `json:"refunded"`
}

func (OrderCancelled) EventName() string { return "order_cancel" }

// TradeExecuted is surfaced when a settlement applies.
type TradeExecuted struct {
	MakerOrderID   uint64 `json:"makerOrderId"`
	TakerOrderID   uint64 `json:"takerOrderId"`
	BaseFill       uint64 `json:"baseFill"`
	QuotePaid      uint64 `json:"quotePaid"`
	MakerRemaining uint64 `json:"makerRemaining"`
	TakerRemaining uint64 `json:"takerRemaining"`
}

func (TradeExecuted) EventName() string { return "order_fill" }

// DepositReceived is surfaced when a bridge deposit is credited.
type DepositReceived struct {
	Account common.Address `json:"account"`
	Asset   common.Address `json:"asset"`
	Amount  uint64         `json:"amount"`
}

func (DepositReceived) EventName() string { return "deposit" }

// WithdrawalIssued is surfaced when a withdrawal is debited and its outbound
// transfer request handed to the bridge.
type WithdrawalIssued struct {
	Account  common.Address `json:"account"`
	Asset    common.Address `json:"asset"`
	Amount   uint64         `json:"amount"`
	Receiver common.Address `json:"receiver"`
	HasMsg   bool           `json:"hasMsg"`
}

func (WithdrawalIssued) EventName() string { return "withdraw" }
