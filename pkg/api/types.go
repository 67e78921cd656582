package api

// Request and response types for the REST surface and websocket stream.

import (
	"github.com/jwhyun/spotdex/pkg/core/orders"
)

// OrderInfo is the wire view of an order record.
type OrderInfo struct {
	ID                   uint64 `json:"id"`
	Owner                string `json:"owner"`
	Side                 string `json:"side"`
	PriceNum             uint64 `json:"priceNum"`
	PriceDen             uint64 `json:"priceDen"`
	AmountBase           uint64 `json:"amountBase"`
	RemainingBase        uint64 `json:"remainingBase"`
	LockedQuoteRemaining uint64 `json:"lockedQuoteRemaining"`
	LockedBaseRemaining  uint64 `json:"lockedBaseRemaining"`
	Status               string `json:"status"`
	CreatedAt            int64  `json:"createdAt"`
}

func toOrderInfo(o orders.Order) OrderInfo {
	return OrderInfo{
		ID:                   o.ID,
		Owner:                o.Owner.Hex(),
		Side:                 o.Side.String(),
		PriceNum:             o.PriceNum,
		PriceDen:             o.PriceDen,
		AmountBase:           o.AmountBase,
		RemainingBase:        o.RemainingBase,
		LockedQuoteRemaining: o.LockedQuoteRemaining,
		LockedBaseRemaining:  o.LockedBaseRemaining,
		Status:               o.Status.String(),
		CreatedAt:            o.CreatedAt,
	}
}

// ConfigInfo reports the configured trading pair.
type ConfigInfo struct {
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

// BalanceInfo reports one available balance.
type BalanceInfo struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Amount  uint64 `json:"amount"`
}

// PlaceRequest opens a limit order.
type PlaceRequest struct {
	Owner         string `json:"owner"`
	Side          string `json:"side"` // "buy" or "sell"
	AmountBase    uint64 `json:"amountBase"`
	MaxSpendQuote uint64 `json:"maxSpendQuote,omitempty"` // required for buy
	PriceNum      uint64 `json:"priceNum"`
	PriceDen      uint64 `json:"priceDen"`
}

type PlaceResponse struct {
	OrderID uint64 `json:"orderId"`
}

// CancelRequest cancels an open order.
type CancelRequest struct {
	Caller  string `json:"caller"`
	OrderID uint64 `json:"orderId"`
}

// ExecuteRequest applies a fill selected by an external matcher.
type ExecuteRequest struct {
	MakerOrderID uint64 `json:"makerOrderId"`
	TakerOrderID uint64 `json:"takerOrderId"`
	BaseFill     uint64 `json:"baseFill"`
	QuotePaid    uint64 `json:"quotePaid"`
}

// DepositRequest is the asset bridge's transfer callback.
type DepositRequest struct {
	Sender        string `json:"sender"`
	Amount        uint64 `json:"amount"`
	TokenContract string `json:"tokenContract"`
}

type DepositResponse struct {
	Refund uint64 `json:"refund"`
}

// WithdrawRequest debits the caller and issues an outbound bridge transfer.
type WithdrawRequest struct {
	Caller   string `json:"caller"`
	Asset    string `json:"asset"`
	Amount   uint64 `json:"amount"`
	Receiver string `json:"receiver,omitempty"`   // defaults to caller
	Msg      string `json:"forwardMsg,omitempty"` // selects transfer-with-callback
}

// WSSubscribeRequest is the inbound websocket control message.
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}

// WSEvent is the outbound websocket envelope; Event matches the record's
// wire name and doubles as the subscription channel.
type WSEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}
