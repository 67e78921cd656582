package orders

import (
	"github.com/ethereum/go-ethereum/common"
)

// Side of a limit order.
type Side int8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseSide maps the wire strings "buy"/"sell" to a Side.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "buy", "Buy", "BUY":
		return Buy, true
	case "sell", "Sell", "SELL":
		return Sell, true
	default:
		return 0, false
	}
}

// Status is the lifecycle state of an order. Transitions are one-way:
// Open -> Filled or Open -> Cancelled, both terminal.
type Status int8

const (
	Open Status = iota
	Filled
	Cancelled
)

func (st Status) String() string {
	switch st {
	case Open:
		return "open"
	case Filled:
		return "filled"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Order is a limit order record. Orders are value records: reads copy them
// out, mutations write the whole record back. They are never deleted, so a
// terminal order remains queryable for audit.
//
// Price is the exact rational PriceNum/PriceDen in quote units per base unit.
// Exactly one lock field is ever nonzero, picked by side: a Buy order holds
// reserved quote, a Sell order holds reserved base.
type Order struct {
	ID       uint64         `json:"id"`
	Owner    common.Address `json:"owner"`
	Side     Side           `json:"side"`
	PriceNum uint64         `json:"priceNum"`
	PriceDen uint64         `json:"priceDen"`

	// AmountBase is the originally requested base quantity and never changes
	// after creation. RemainingBase only ever decreases.
	AmountBase    uint64 `json:"amountBase"`
	RemainingBase uint64 `json:"remainingBase"`

	LockedQuoteRemaining uint64 `json:"lockedQuoteRemaining"`
	LockedBaseRemaining  uint64 `json:"lockedBaseRemaining"`

	Status    Status `json:"status"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds
}

// IsTerminal reports whether the order can no longer change.
func (o *Order) IsTerminal() bool {
	return o.Status != Open
}
