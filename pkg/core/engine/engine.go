// Package engine is the settlement core: it owns the balance ledger and the
// order store, and applies every public operation as one serialized,
// all-or-nothing unit. It validates and settles fills selected by an outside
// matcher; it never scans for matches itself.
package engine

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/jwhyun/spotdex/pkg/bridge"
	"github.com/jwhyun/spotdex/pkg/core"
	"github.com/jwhyun/spotdex/pkg/core/ledger"
	"github.com/jwhyun/spotdex/pkg/core/orders"
	"github.com/jwhyun/spotdex/pkg/events"
	"github.com/jwhyun/spotdex/pkg/storage"
	"github.com/jwhyun/spotdex/pkg/util"
)

// Engine serializes every operation behind one mutex: validation is fully
// front-loaded, so an operation either returns an error having changed
// nothing, or applies completely. In-memory state is authoritative; each
// successful mutation is written through to the store in a single batch.
type Engine struct {
	mu sync.Mutex

	base  common.Address
	quote common.Address

	ledger *ledger.Ledger
	book   *orders.Store

	store  *storage.Store // optional; nil runs memory-only
	tokens bridge.TokenLedger
	emit   events.Emitter

	clock util.Clock
	log   *zap.SugaredLogger
}

// Params configures an Engine. BaseAsset and QuoteAsset are required and must
// differ; everything else has a working default.
type Params struct {
	BaseAsset  common.Address
	QuoteAsset common.Address

	Store   *storage.Store     // nil disables persistence
	Tokens  bridge.TokenLedger // nil disables outbound withdrawals
	Emitter events.Emitter
	Clock   util.Clock
	Log     *zap.SugaredLogger
}

// New builds an engine and, when a store is configured, rebuilds balances and
// orders from it.
func New(p Params) (*Engine, error) {
	if p.BaseAsset == (common.Address{}) || p.QuoteAsset == (common.Address{}) {
		return nil, fmt.Errorf("%w: base and quote assets are required", core.ErrValidation)
	}
	if p.BaseAsset == p.QuoteAsset {
		return nil, fmt.Errorf("%w: base and quote assets must differ", core.ErrValidation)
	}
	if p.Emitter == nil {
		p.Emitter = events.Discard
	}
	if p.Clock == nil {
		p.Clock = util.RealClock{}
	}
	if p.Log == nil {
		p.Log = zap.NewNop().Sugar()
	}

	e := &Engine{
		base:   p.BaseAsset,
		quote:  p.QuoteAsset,
		ledger: ledger.New(),
		book:   orders.NewStore(),
		store:  p.Store,
		tokens: p.Tokens,
		emit:   p.Emitter,
		clock:  p.Clock,
		log:    p.Log,
	}

	if e.store != nil {
		if err := e.store.LoadBalances(e.ledger.Restore); err != nil {
			return nil, fmt.Errorf("restore balances: %w", err)
		}
		if err := e.store.LoadOrders(e.book.Restore); err != nil {
			return nil, fmt.Errorf("restore orders: %w", err)
		}
		e.log.Infow("state_restored", "balances", e.ledger.Len(), "orders", e.book.Len())
	}

	return e, nil
}

// SetEmitter replaces the event emitter. Hosts use it to join late-built
// sinks (e.g. a websocket hub) after engine construction.
func (e *Engine) SetEmitter(em events.Emitter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if em == nil {
		em = events.Discard
	}
	e.emit = em
}

// Config returns the configured (base, quote) asset pair.
func (e *Engine) Config() (base, quote common.Address) {
	return e.base, e.quote
}

// GetBalance returns the available balance, zero for unknown accounts.
func (e *Engine) GetBalance(account, asset common.Address) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Get(account, asset)
}

// GetOrder returns a copy of the order record, terminal or not.
func (e *Engine) GetOrder(id uint64) (orders.Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Get(id)
}

// ListOrders returns a fresh ascending-id snapshot sliced to
// [offset, offset+limit) and clipped to the total count.
func (e *Engine) ListOrders(offset, limit uint64) []orders.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.List(offset, limit)
}

// ListOrdersByOwner returns the owner's orders in placement order.
func (e *Engine) ListOrdersByOwner(owner common.Address) []orders.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.ListByOwner(owner)
}

// persist commits one operation's writes as a single batch. Durability
// failure after the in-memory state has advanced is unrecoverable, so it
// panics rather than misreport an applied operation as failed.
func (e *Engine) persist(fill func(*storage.Batch) error) {
	if e.store == nil {
		return
	}
	b := e.store.NewBatch()
	if err := fill(b); err != nil {
		b.Close()
		panic(fmt.Errorf("stage settlement batch: %w", err))
	}
	if err := b.Commit(); err != nil {
		panic(fmt.Errorf("commit settlement batch: %w", err))
	}
}
