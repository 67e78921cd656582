package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Pebble key schema.
//
//	bal:{account}:{asset}  -> uint64 big-endian   (available balance)
//	ord:{id, 20 digits}    -> JSON order record   (zero-padded so iteration is ascending id)
//
// Zero-padding the order id keeps lexicographic key order equal to numeric id
// order, which is also per-owner index insertion order, so a prefix scan
// rebuilds both the primary map and the owner index.
const (
	prefixBalance = "bal:"
	prefixOrder   = "ord:"
)

func balanceKey(account, asset common.Address) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", prefixBalance, account.Hex(), asset.Hex()))
}

func orderKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixOrder, id))
}

// balanceKeyAddrs parses the two addresses back out of a balance key.
func balanceKeyAddrs(key []byte) (account, asset common.Address, err error) {
	// "bal:" + 42 hex chars + ":" + 42 hex chars
	const want = len(prefixBalance) + 42 + 1 + 42
	if len(key) != want {
		return common.Address{}, common.Address{}, fmt.Errorf("bad balance key length %d", len(key))
	}
	accHex := string(key[len(prefixBalance) : len(prefixBalance)+42])
	assetHex := string(key[len(prefixBalance)+43:])
	if !common.IsHexAddress(accHex) || !common.IsHexAddress(assetHex) {
		return common.Address{}, common.Address{}, fmt.Errorf("bad balance key %q", key)
	}
	return common.HexToAddress(accHex), common.HexToAddress(assetHex), nil
}

// keyUpperBound returns the exclusive upper bound for a prefix scan.
func keyUpperBound(prefix []byte) []byte {
	bound := make([]byte, len(prefix))
	copy(bound, prefix)
	bound[len(bound)-1]++
	return bound
}
