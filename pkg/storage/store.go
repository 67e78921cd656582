// Package storage persists settlement state to Pebble. The in-memory engine
// state stays authoritative; every successful mutation is written through in
// one batch, and the full state is rebuilt from a prefix scan at startup.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/common"

	"github.com/jwhyun/spotdex/pkg/core/orders"
)

// Store wraps a Pebble database holding balances and order records.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{
		Cache:        pebble.NewCache(64 << 20),
		MemTableSize: 32 << 20,
	})
	if err != nil {
		return nil, fmt.Errorf("open pebble db at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// LoadBalances replays every persisted balance entry into fn.
func (s *Store) LoadBalances(fn func(account, asset common.Address, amount uint64)) error {
	prefix := []byte(prefixBalance)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		account, asset, err := balanceKeyAddrs(iter.Key())
		if err != nil {
			return fmt.Errorf("corrupt balance key: %w", err)
		}
		if len(iter.Value()) != 8 {
			return fmt.Errorf("corrupt balance value for %q", iter.Key())
		}
		fn(account, asset, binary.BigEndian.Uint64(iter.Value()))
	}
	return iter.Error()
}

// LoadOrders replays every persisted order into fn in ascending id order.
func (s *Store) LoadOrders(fn func(orders.Order)) error {
	prefix := []byte(prefixOrder)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var o orders.Order
		if err := json.Unmarshal(iter.Value(), &o); err != nil {
			return fmt.Errorf("corrupt order record at %q: %w", iter.Key(), err)
		}
		fn(o)
	}
	return iter.Error()
}

// Batch accumulates the writes of one settlement operation so they land
// atomically: either the whole operation is durable or none of it is.
type Batch struct {
	batch *pebble.Batch
}

func (s *Store) NewBatch() *Batch {
	return &Batch{batch: s.db.NewBatch()}
}

// SetBalance records the new available balance for (account, asset).
// A zero amount deletes the entry, mirroring the sparse in-memory map.
func (b *Batch) SetBalance(account, asset common.Address, amount uint64) error {
	key := balanceKey(account, asset)
	if amount == 0 {
		return b.batch.Delete(key, nil)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], amount)
	return b.batch.Set(key, buf[:], nil)
}

// PutOrder records the full order state.
func (b *Batch) PutOrder(o orders.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order %d: %w", o.ID, err)
	}
	return b.batch.Set(orderKey(o.ID), data, nil)
}

// Commit flushes the batch with fsync.
func (b *Batch) Commit() error {
	return b.batch.Commit(pebble.Sync)
}

// Close discards the batch without committing.
func (b *Batch) Close() error {
	return b.batch.Close()
}
