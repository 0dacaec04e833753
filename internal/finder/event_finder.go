package finder

import (
	"cmp"
	"context"
	"fmt"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/SafeIndexor/internal/indexer"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	irpc "github.com/goran-ethernal/SafeIndexor/internal/rpc"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	pkgrpc "github.com/goran-ethernal/SafeIndexor/pkg/rpc"
)

var _ indexer.ElementFinder[types.Log] = (*EventFinder)(nil)

// AddressFilter tells how monitored addresses relate to the logs searched for.
type AddressFilter int

const (
	// ByEmitter keeps logs emitted by a monitored address.
	ByEmitter AddressFilter = iota
	// ByTransferParty keeps Transfer logs whose from or to is a monitored address.
	ByTransferParty
)

// Match reports whether a log belongs to one of the monitored addresses.
func (f AddressFilter) Match(log *types.Log, set map[common.Address]struct{}) bool {
	if f == ByEmitter {
		_, ok := set[log.Address]
		return ok
	}

	for i := 1; i <= 2 && i < len(log.Topics); i++ {
		if _, ok := set[common.BytesToAddress(log.Topics[i].Bytes())]; ok {
			return true
		}
	}
	return false
}

// EventFinder finds logs with a fixed set of topics that belong to monitored addresses.
type EventFinder struct {
	name      string
	client    pkgrpc.EthClient
	topics    []common.Hash
	filter    AddressFilter
	chunkSize int
	threshold int
	log       *logger.Logger
}

// NewEventFinder creates an event finder. Address sets up to client_filter_threshold are
// sent to the node in chunks of query_chunk_size; larger sets are filtered locally.
func NewEventFinder(name string, client pkgrpc.EthClient, topics []common.Hash, filter AddressFilter,
	cfg config.IndexerConfig, log *logger.Logger) *EventFinder {
	return &EventFinder{
		name:      name,
		client:    client,
		topics:    topics,
		filter:    filter,
		chunkSize: max(cfg.QueryChunkSize, 1),
		threshold: cfg.ClientFilterThreshold,
		log:       log,
	}
}

// FindRelevantElements returns the logs of addresses in [fromBlock, toBlock] ordered by block,
// transaction and log index.
func (f *EventFinder) FindRelevantElements(ctx context.Context, addresses []common.Address,
	fromBlock, toBlock uint64) ([]types.Log, error) {
	logs, err := f.find(ctx, addresses, fromBlock, toBlock)
	if err != nil {
		return nil, &indexer.FindRelevantElementsError{
			Indexer:   f.name,
			FromBlock: fromBlock,
			ToBlock:   toBlock,
			Addresses: len(addresses),
			Err:       err,
		}
	}

	f.log.Debugw("found logs",
		"from_block", fromBlock,
		"to_block", toBlock,
		"addresses", len(addresses),
		"logs", len(logs),
	)

	return logs, nil
}

func (f *EventFinder) find(ctx context.Context, addresses []common.Address,
	fromBlock, toBlock uint64) ([]types.Log, error) {
	if len(addresses) == 0 {
		return nil, nil
	}

	set := make(map[common.Address]struct{}, len(addresses))
	for _, a := range addresses {
		set[a] = struct{}{}
	}

	var queries [][][]common.Hash
	var emitters [][]common.Address

	if f.threshold > 0 && len(addresses) > f.threshold {
		queries = append(queries, [][]common.Hash{f.topics})
		emitters = append(emitters, nil)
	} else {
		for start := 0; start < len(addresses); start += f.chunkSize {
			chunk := addresses[start:min(start+f.chunkSize, len(addresses))]

			if f.filter == ByEmitter {
				queries = append(queries, [][]common.Hash{f.topics})
				emitters = append(emitters, chunk)
				continue
			}

			parties := make([]common.Hash, len(chunk))
			for i, a := range chunk {
				parties[i] = common.BytesToHash(a.Bytes())
			}
			queries = append(queries,
				[][]common.Hash{f.topics, parties},
				[][]common.Hash{f.topics, nil, parties},
			)
			emitters = append(emitters, nil, nil)
		}
	}

	type logKey struct {
		tx    common.Hash
		index uint
	}
	seen := make(map[logKey]struct{})
	var out []types.Log

	for i, topics := range queries {
		logs, err := f.filterLogs(ctx, fromBlock, toBlock, emitters[i], topics)
		if err != nil {
			return nil, err
		}

		for _, l := range logs {
			if l.Removed || !f.filter.Match(&l, set) {
				continue
			}
			key := logKey{tx: l.TxHash, index: l.Index}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, l)
		}
	}

	slices.SortFunc(out, func(a, b types.Log) int {
		if c := cmp.Compare(a.BlockNumber, b.BlockNumber); c != 0 {
			return c
		}
		if c := cmp.Compare(a.TxIndex, b.TxIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})

	return out, nil
}

// filterLogs runs eth_getLogs and splits the range when the node refuses to return that many
// results, until a single block is left.
func (f *EventFinder) filterLogs(ctx context.Context, fromBlock, toBlock uint64,
	addresses []common.Address, topics [][]common.Hash) ([]types.Log, error) {
	logs, err := f.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: addresses,
		Topics:    topics,
	})
	if err == nil {
		return logs, nil
	}

	tooMany, msg := irpc.IsTooManyResultsError(err)
	if !tooMany {
		return nil, err
	}
	if fromBlock == toBlock {
		return nil, fmt.Errorf("cannot split range further, block %d has too many logs: %w", fromBlock, err)
	}

	mid := (fromBlock + toBlock) / 2 //nolint:mnd
	if from, to, ok := irpc.ParseSuggestedBlockRange(msg); ok && from == fromBlock && to >= fromBlock && to < toBlock {
		mid = to
	}

	f.log.Infow("too many logs, splitting range",
		"from_block", fromBlock,
		"to_block", toBlock,
		"split_at", mid,
	)

	first, err := f.filterLogs(ctx, fromBlock, mid, addresses, topics)
	if err != nil {
		return nil, err
	}
	second, err := f.filterLogs(ctx, mid+1, toBlock, addresses, topics)
	if err != nil {
		return nil, err
	}
	return append(first, second...), nil
}
