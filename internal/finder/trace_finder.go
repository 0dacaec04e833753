// Package finder retrieves the raw candidate elements of monitored addresses from the node.
package finder

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/internal/indexer"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	pkgrpc "github.com/goran-ethernal/SafeIndexor/pkg/rpc"
)

var _ indexer.ElementFinder[common.Hash] = (*TraceFinder)(nil)

// TraceFinder finds the transactions that touch monitored addresses through the trace
// namespace and prefetches them into a TxCache.
type TraceFinder struct {
	name      string
	client    pkgrpc.EthClient
	cache     *TxCache
	blockMode bool
	threshold int
	log       *logger.Logger
}

// NewTraceFinder creates a trace finder. With use_trace_block set, address sets larger than
// trace_block_threshold are scanned with trace_block and filtered locally.
func NewTraceFinder(name string, client pkgrpc.EthClient, cache *TxCache, cfg config.IndexerConfig,
	log *logger.Logger) *TraceFinder {
	return &TraceFinder{
		name:      name,
		client:    client,
		cache:     cache,
		blockMode: cfg.UseTraceBlock,
		threshold: cfg.TraceBlockThreshold,
		log:       log,
	}
}

type txRef struct {
	hash     common.Hash
	block    uint64
	position uint64
}

// FindRelevantElements returns the hashes of the transactions touching addresses in
// [fromBlock, toBlock], in chain order.
func (f *TraceFinder) FindRelevantElements(ctx context.Context, addresses []common.Address,
	fromBlock, toBlock uint64) ([]common.Hash, error) {
	wrap := func(err error) error {
		return &indexer.FindRelevantElementsError{
			Indexer:   f.name,
			FromBlock: fromBlock,
			ToBlock:   toBlock,
			Addresses: len(addresses),
			Err:       err,
		}
	}

	var (
		refs   []txRef
		traces map[common.Hash][]pkgrpc.Trace
		err    error
	)
	if f.blockMode && len(addresses) > f.threshold {
		refs, traces, err = f.fromBlockTraces(ctx, addresses, fromBlock, toBlock)
	} else {
		refs, err = f.fromTraceFilter(ctx, addresses, fromBlock, toBlock)
	}
	if err != nil {
		return nil, wrap(err)
	}

	if len(refs) == 0 {
		return nil, nil
	}

	hashes := make([]common.Hash, len(refs))
	for i, ref := range refs {
		hashes[i] = ref.hash
	}

	if err := f.prefetch(ctx, hashes, traces); err != nil {
		return nil, wrap(err)
	}

	f.log.Debugw("found transactions",
		"from_block", fromBlock,
		"to_block", toBlock,
		"addresses", len(addresses),
		"transactions", len(hashes),
	)

	return hashes, nil
}

// fromTraceFilter unions trace_filter results by callee and by caller.
func (f *TraceFinder) fromTraceFilter(ctx context.Context, addresses []common.Address,
	fromBlock, toBlock uint64) ([]txRef, error) {
	toTraces, err := f.client.TraceFilter(ctx, pkgrpc.TraceFilterQuery{
		FromBlock: fromBlock,
		ToBlock:   toBlock,
		ToAddress: addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("trace_filter by callee: %w", err)
	}

	fromTraces, err := f.client.TraceFilter(ctx, pkgrpc.TraceFilterQuery{
		FromBlock:   fromBlock,
		ToBlock:     toBlock,
		FromAddress: addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("trace_filter by caller: %w", err)
	}

	return collectRefs(append(toTraces, fromTraces...), nil), nil
}

// fromBlockTraces traces every block of the range and keeps the transactions touching
// addresses. The traces of those transactions are returned as well.
func (f *TraceFinder) fromBlockTraces(ctx context.Context, addresses []common.Address,
	fromBlock, toBlock uint64) ([]txRef, map[common.Hash][]pkgrpc.Trace, error) {
	numbers := make([]uint64, 0, toBlock-fromBlock+1)
	for n := fromBlock; n <= toBlock; n++ {
		numbers = append(numbers, n)
	}

	blocks, err := f.client.TraceBlocks(ctx, numbers)
	if err != nil {
		return nil, nil, fmt.Errorf("trace_block: %w", err)
	}

	set := make(map[common.Address]struct{}, len(addresses))
	for _, a := range addresses {
		set[a] = struct{}{}
	}

	byTx := make(map[common.Hash][]pkgrpc.Trace)
	var all []pkgrpc.Trace
	for _, block := range blocks {
		for _, trace := range block {
			if trace.TransactionHash == nil {
				continue
			}
			byTx[*trace.TransactionHash] = append(byTx[*trace.TransactionHash], trace)
			all = append(all, trace)
		}
	}

	refs := collectRefs(all, func(trace *pkgrpc.Trace) bool {
		return touches(trace, set)
	})

	traces := make(map[common.Hash][]pkgrpc.Trace, len(refs))
	for _, ref := range refs {
		traces[ref.hash] = byTx[ref.hash]
	}
	return refs, traces, nil
}

// prefetch loads the given transactions and caches them.
func (f *TraceFinder) prefetch(ctx context.Context, hashes []common.Hash,
	knownTraces map[common.Hash][]pkgrpc.Trace) error {
	data, err := FetchTxData(ctx, f.client, hashes, knownTraces)
	if err != nil {
		return err
	}

	for i, h := range hashes {
		f.cache.Put(h, data[i])
	}
	return nil
}

// FetchTxData loads transactions, receipts and traces in batches. knownTraces holds traces
// already retrieved for some of the hashes. Every transaction must be mined.
func FetchTxData(ctx context.Context, client pkgrpc.EthClient, hashes []common.Hash,
	knownTraces map[common.Hash][]pkgrpc.Trace) ([]*TxData, error) {
	txs, err := client.BatchTransactions(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	receipts, err := client.BatchReceipts(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch receipts: %w", err)
	}

	var missing []common.Hash
	for _, h := range hashes {
		if _, ok := knownTraces[h]; !ok {
			missing = append(missing, h)
		}
	}

	var fetched [][]pkgrpc.Trace
	if len(missing) > 0 {
		if fetched, err = client.BatchTraceTransactions(ctx, missing); err != nil {
			return nil, fmt.Errorf("failed to fetch transaction traces: %w", err)
		}
	}

	traces := make(map[common.Hash][]pkgrpc.Trace, len(hashes))
	for h, t := range knownTraces {
		traces[h] = t
	}
	for i, h := range missing {
		traces[h] = fetched[i]
	}

	out := make([]*TxData, len(hashes))
	for i, h := range hashes {
		if txs[i] == nil || !txs[i].Mined() {
			return nil, fmt.Errorf("transaction %s is not mined anymore", h.Hex())
		}
		if receipts[i] == nil {
			return nil, fmt.Errorf("receipt of transaction %s not found", h.Hex())
		}

		out[i] = &TxData{Tx: txs[i], Receipt: receipts[i], Traces: traces[h]}
	}

	return out, nil
}

// collectRefs returns the distinct transactions of traces in chain order, keeping only traces
// accepted by keep when it is set.
func collectRefs(traces []pkgrpc.Trace, keep func(*pkgrpc.Trace) bool) []txRef {
	seen := make(map[common.Hash]struct{})
	var refs []txRef

	for i := range traces {
		trace := &traces[i]
		if trace.TransactionHash == nil || (keep != nil && !keep(trace)) {
			continue
		}
		if _, ok := seen[*trace.TransactionHash]; ok {
			continue
		}
		seen[*trace.TransactionHash] = struct{}{}

		ref := txRef{hash: *trace.TransactionHash, block: trace.BlockNumber}
		if trace.TransactionPosition != nil {
			ref.position = *trace.TransactionPosition
		}
		refs = append(refs, ref)
	}

	slices.SortFunc(refs, func(a, b txRef) int {
		if c := cmp.Compare(a.block, b.block); c != 0 {
			return c
		}
		return cmp.Compare(a.position, b.position)
	})
	return refs
}

func touches(trace *pkgrpc.Trace, set map[common.Address]struct{}) bool {
	for _, a := range []*common.Address{trace.From(), trace.To()} {
		if a == nil {
			continue
		}
		if _, ok := set[*a]; ok {
			return true
		}
	}
	return false
}
