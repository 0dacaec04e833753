package finder

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	pkgrpc "github.com/goran-ethernal/SafeIndexor/pkg/rpc"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultTxCacheSize bounds the number of prefetched transactions kept between finding and
// processing.
const DefaultTxCacheSize = 10_000

// TxData is everything fetched for one transaction.
type TxData struct {
	Tx      *pkgrpc.Transaction
	Receipt *types.Receipt
	Traces  []pkgrpc.Trace
}

// TxCache hands prefetched transactions from the trace finder to the internal transaction
// processor. A miss only costs a refetch.
type TxCache struct {
	items *lru.Cache[common.Hash, *TxData]
}

// NewTxCache creates a cache holding up to size transactions.
func NewTxCache(size int) *TxCache {
	if size <= 0 {
		size = DefaultTxCacheSize
	}

	items, err := lru.New[common.Hash, *TxData](size)
	if err != nil {
		// only returned for a non positive size
		panic(err)
	}
	return &TxCache{items: items}
}

// Put stores the data of a transaction.
func (c *TxCache) Put(hash common.Hash, data *TxData) {
	c.items.Add(hash, data)
}

// Take removes and returns the data of a transaction.
func (c *TxCache) Take(hash common.Hash) (*TxData, bool) {
	data, ok := c.items.Peek(hash)
	if ok {
		c.items.Remove(hash)
	}
	return data, ok
}

// Len returns the number of cached transactions.
func (c *TxCache) Len() int {
	return c.items.Len()
}

// Purge empties the cache.
func (c *TxCache) Purge() {
	c.items.Purge()
}
