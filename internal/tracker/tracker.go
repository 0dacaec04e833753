package tracker

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/lru"
)

// DefaultSize is the number of keys kept when no size is configured.
const DefaultSize = 40_000

// Key identifies one raw element: a trace (by trace address) or a log (by log index)
// of a transaction included in a given block.
type Key struct {
	TxHash    common.Hash
	BlockHash common.Hash
	Index     string
}

// AlreadyProcessed remembers which elements were handled during the lifetime of the process.
// It is bounded; the oldest inserted key is evicted first. Losing a key only costs a redundant
// idempotent insert, so it is safe to share between indexers of the same kind.
type AlreadyProcessed struct {
	cache *lru.Cache[Key, struct{}]
}

// New creates a tracker holding at most size keys.
func New(size int) *AlreadyProcessed {
	if size <= 0 {
		size = DefaultSize
	}

	return &AlreadyProcessed{cache: lru.NewCache[Key, struct{}](size)}
}

// Seen reports whether key was marked. It does not refresh the key.
func (t *AlreadyProcessed) Seen(key Key) bool {
	return t.cache.Contains(key)
}

// Mark records key as processed.
func (t *AlreadyProcessed) Mark(key Key) {
	if !t.cache.Contains(key) {
		t.cache.Add(key, struct{}{})
	}
}

// Len returns the number of keys held.
func (t *AlreadyProcessed) Len() int {
	return t.cache.Len()
}

// Reset forgets every key. Called after a reorg rewind, when keys of rewound blocks must be
// processed again.
func (t *AlreadyProcessed) Reset() {
	t.cache.Purge()
}
