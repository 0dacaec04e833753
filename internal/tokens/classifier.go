// Package tokens tells ERC20 and ERC721 contracts apart when their Transfer logs look the same.
package tokens

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	pkgrpc "github.com/goran-ethernal/SafeIndexor/pkg/rpc"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Kind is the token standard of a contract.
type Kind string

const (
	ERC20  Kind = "erc20"
	ERC721 Kind = "erc721"
)

const (
	DefaultCacheSize = 10_000
	DefaultCacheTTL  = 24 * time.Hour
)

// decimalsSelector is the selector of decimals().
var decimalsSelector = []byte{0x31, 0x3c, 0xe5, 0x67}

// Caller runs batched eth_call requests.
type Caller interface {
	BatchCall(ctx context.Context, calls []pkgrpc.CallRequest) ([]pkgrpc.CallResult, error)
}

// Classifier probes decimals() to decide the standard of a token. A contract answering with a
// valid uint8 is an ERC20, anything else is an ERC721. Answers are cached for a limited time.
type Classifier struct {
	caller Caller
	cache  *expirable.LRU[common.Address, Kind]
	log    *logger.Logger
}

// NewClassifier creates a classifier with its own cache. Non positive size or ttl select the defaults.
func NewClassifier(caller Caller, size int, ttl time.Duration, log *logger.Logger) *Classifier {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Classifier{
		caller: caller,
		cache:  expirable.NewLRU[common.Address, Kind](size, nil, ttl),
		log:    log,
	}
}

// Classify returns the kind of every given token. Tokens missing from the cache are probed in
// one batch. A transport failure fails the whole call and nothing is cached.
func (c *Classifier) Classify(ctx context.Context, tokens []common.Address) (map[common.Address]Kind, error) {
	out := make(map[common.Address]Kind, len(tokens))
	var missing []common.Address

	for _, token := range tokens {
		if _, done := out[token]; done {
			continue
		}
		if kind, ok := c.cache.Get(token); ok {
			out[token] = kind
			continue
		}
		out[token] = ""
		missing = append(missing, token)
	}

	if len(missing) == 0 {
		return out, nil
	}

	calls := make([]pkgrpc.CallRequest, len(missing))
	for i, token := range missing {
		calls[i] = pkgrpc.CallRequest{To: token, Data: decimalsSelector}
	}

	results, err := c.caller.BatchCall(ctx, calls)
	if err != nil {
		return nil, fmt.Errorf("failed to probe decimals of %d tokens: %w", len(missing), err)
	}
	if len(results) != len(missing) {
		return nil, fmt.Errorf("expected %d decimals results, got %d", len(missing), len(results))
	}

	for i, token := range missing {
		kind := ERC721
		if results[i].Err == nil && validDecimals(results[i].Data) {
			kind = ERC20
		}
		c.cache.Add(token, kind)
		out[token] = kind
	}

	c.log.Debugw("classified tokens", "probed", len(missing), "total", len(out))

	return out, nil
}

// Len returns the number of cached classifications.
func (c *Classifier) Len() int {
	return c.cache.Len()
}

// validDecimals reports whether data is an ABI encoded uint8.
func validDecimals(data []byte) bool {
	if len(data) != common.HashLength {
		return false
	}
	v := new(big.Int).SetBytes(data)
	return v.IsUint64() && v.Uint64() <= 255
}

// IsAmbiguousTransfer reports whether a Transfer log could come from both standards:
// from and to indexed and a single word of data.
func IsAmbiguousTransfer(log *types.Log) bool {
	return len(log.Topics) == 3 && len(log.Data) == common.HashLength
}
