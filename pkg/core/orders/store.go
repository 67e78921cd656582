package orders

import (
	"github.com/ethereum/go-ethereum/common"
)

// Store holds every order ever created, keyed by a sequential id, plus an
// owner index used purely for enumeration. Ids start at 0 and are never
// reused; the owner index is append-only even after an order turns terminal.
// Not safe for concurrent use; the owning engine serializes all access.
type Store struct {
	orders  map[uint64]Order
	byOwner map[common.Address][]uint64
	nextID  uint64
}

func NewStore() *Store {
	return &Store{
		orders:  make(map[uint64]Order),
		byOwner: make(map[common.Address][]uint64),
	}
}

// Create assigns the next id and inserts a fresh Open order with
// RemainingBase = amountBase and the side-appropriate lock field set to
// lockAmount. Returns the new order.
func (s *Store) Create(owner common.Address, side Side, amountBase, priceNum, priceDen, lockAmount uint64, createdAt int64) Order {
	o := Order{
		ID:            s.nextID,
		Owner:         owner,
		Side:          side,
		PriceNum:      priceNum,
		PriceDen:      priceDen,
		AmountBase:    amountBase,
		RemainingBase: amountBase,
		Status:        Open,
		CreatedAt:     createdAt,
	}
	switch side {
	case Buy:
		o.LockedQuoteRemaining = lockAmount
	case Sell:
		o.LockedBaseRemaining = lockAmount
	}
	s.nextID++
	s.orders[o.ID] = o
	s.byOwner[owner] = append(s.byOwner[owner], o.ID)
	return o
}

// Get returns a copy of the order and whether it exists.
func (s *Store) Get(id uint64) (Order, bool) {
	o, ok := s.orders[id]
	return o, ok
}

// Put overwrites the stored record for o.ID in full. Used after every
// settlement or cancellation mutation.
func (s *Store) Put(o Order) {
	s.orders[o.ID] = o
}

// Len reports how many orders have ever been created.
func (s *Store) Len() int {
	return len(s.orders)
}

// NextID returns the id the next created order will receive.
func (s *Store) NextID() uint64 {
	return s.nextID
}

// List returns a snapshot of orders in ascending id order, sliced to
// [offset, offset+limit) and clipped to the total count. Each call recomputes
// the snapshot fresh, so results seen across mutating operations may differ.
func (s *Store) List(offset, limit uint64) []Order {
	total := uint64(len(s.orders))
	if offset >= total || limit == 0 {
		return nil
	}
	end := offset + limit
	if end > total || end < offset { // clip, and guard offset+limit wrap
		end = total
	}
	out := make([]Order, 0, end-offset)
	// Ids are dense (sequential, never deleted), so the ascending-id snapshot
	// is just the range [offset, end).
	for id := offset; id < end; id++ {
		out = append(out, s.orders[id])
	}
	return out
}

// ListByOwner returns the owner's orders in index insertion order.
func (s *Store) ListByOwner(owner common.Address) []Order {
	ids := s.byOwner[owner]
	out := make([]Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.orders[id])
	}
	return out
}

// Restore installs an order loaded from persistence and bumps the id
// sequence past it.
func (s *Store) Restore(o Order) {
	s.orders[o.ID] = o
	s.byOwner[o.Owner] = append(s.byOwner[o.Owner], o.ID)
	if o.ID >= s.nextID {
		s.nextID = o.ID + 1
	}
}

// RangeOpen calls fn for every Open order. Iteration order is unspecified.
// Used by hosts and tests to sum outstanding locks.
func (s *Store) RangeOpen(fn func(Order)) {
	for _, o := range s.orders {
		if o.Status == Open {
			fn(o)
		}
	}
}
