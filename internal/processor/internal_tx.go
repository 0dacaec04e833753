package processor

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/SafeIndexor/internal/decoder"
	"github.com/goran-ethernal/SafeIndexor/internal/finder"
	"github.com/goran-ethernal/SafeIndexor/internal/indexer"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	"github.com/goran-ethernal/SafeIndexor/internal/tracker"
	pkgrpc "github.com/goran-ethernal/SafeIndexor/pkg/rpc"
)

var _ indexer.ElementProcessor[common.Hash] = (*InternalTxProcessor)(nil)

// InternalTxProcessor stores the traces of the transactions found by the trace finder and
// decodes the wallet calls among them.
type InternalTxProcessor struct {
	client   pkgrpc.EthClient
	cache    *finder.TxCache
	registry *decoder.Registry
	tracker  *tracker.AlreadyProcessed
	log      *logger.Logger
}

// NewInternalTxProcessor creates the processor of trace based indexing. cache is shared with
// the trace finder.
func NewInternalTxProcessor(client pkgrpc.EthClient, cache *finder.TxCache, registry *decoder.Registry,
	t *tracker.AlreadyProcessed, log *logger.Logger) *InternalTxProcessor {
	return &InternalTxProcessor{
		client:   client,
		cache:    cache,
		registry: registry,
		tracker:  t,
		log:      log,
	}
}

// ProcessElements builds the batch of the given transactions.
func (p *InternalTxProcessor) ProcessElements(ctx context.Context, hashes []common.Hash) (indexer.Batch, error) {
	b := newBatch(p.tracker)
	if len(hashes) == 0 {
		return b, nil
	}

	data, err := p.load(ctx, hashes)
	if err != nil {
		return nil, err
	}

	var numbers []uint64
	seenBlock := make(map[uint64]struct{})
	for _, d := range data {
		n := d.Tx.BlockNumber.ToInt().Uint64()
		if _, ok := seenBlock[n]; !ok {
			seenBlock[n] = struct{}{}
			numbers = append(numbers, n)
		}
	}

	if b.blocks, err = fetchBlocks(ctx, p.client, numbers); err != nil {
		return nil, err
	}

	for _, d := range data {
		p.addTransaction(b, d)
	}

	p.log.Debugw("processed transactions",
		"transactions", len(hashes),
		"traces", len(b.traces),
		"decoded", len(b.decoded),
	)

	return b, nil
}

// load takes the prefetched data from the cache and fetches what was evicted.
func (p *InternalTxProcessor) load(ctx context.Context, hashes []common.Hash) ([]*finder.TxData, error) {
	data := make([]*finder.TxData, len(hashes))
	var missing []common.Hash
	var missingIdx []int

	for i, h := range hashes {
		if d, ok := p.cache.Take(h); ok {
			data[i] = d
			continue
		}
		missing = append(missing, h)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return data, nil
	}

	p.log.Debugw("transactions missing from cache", "count", len(missing))

	fetched, err := finder.FetchTxData(ctx, p.client, missing, nil)
	if err != nil {
		return nil, err
	}
	for i, idx := range missingIdx {
		data[idx] = fetched[i]
	}
	return data, nil
}

func (p *InternalTxProcessor) addTransaction(b *batch, d *finder.TxData) {
	tx := newTransaction(d.Tx, d.Receipt)
	b.txs = append(b.txs, tx)

	blockHash := *d.Tx.BlockHash
	success := d.Receipt.Status == types.ReceiptStatusSuccessful

	for i := range d.Traces {
		trace := &d.Traces[i]
		key := tracker.Key{TxHash: tx.Hash, BlockHash: blockHash, Index: TraceAddress(trace.TraceAddress)}
		if p.tracker.Seen(key) {
			continue
		}
		b.keys = append(b.keys, key)

		b.traces = append(b.traces, newTrace(tx.Hash, trace))
		if element := p.decode(tx, trace, success); element != nil {
			b.decoded = append(b.decoded, element)
		}
	}

	// Safe and factory logs back failure detection and master copy resolution during replay.
	for _, l := range d.Receipt.Logs {
		if l == nil || len(l.Topics) == 0 {
			continue
		}
		if _, err := p.registry.DecodeLog(l.Topics, l.Data); err != nil {
			continue
		}
		b.events = append(b.events, newEvent(l))
	}
}

// decode returns the wallet call of a trace, or nil. Only successful delegate calls carrying
// data are decoded: the proxy forwarding a call to its master copy.
func (p *InternalTxProcessor) decode(tx *store.Transaction, trace *pkgrpc.Trace, success bool) *store.DecodedElement {
	if !success || trace.Type != pkgrpc.TraceTypeCall || !trace.IsDelegateCall() ||
		trace.Error != "" || len(trace.Action.Input) == 0 {
		return nil
	}

	from := trace.From()
	if from == nil {
		return nil
	}

	decoded, err := p.registry.DecodeCall(trace.Action.Input)
	if err != nil {
		if !errors.Is(err, decoder.ErrCannotDecode) {
			p.log.Warnw("failed to decode trace", "tx_hash", tx.Hash.Hex(), "error", err)
		}
		return nil
	}

	element := &store.DecodedElement{
		TxHash:       tx.Hash,
		Source:       store.SourceTrace,
		SourceIndex:  TraceAddress(trace.TraceAddress),
		Address:      *from,
		FunctionName: decoded.Name,
		Arguments:    decoded.Args,
		BlockNumber:  trace.BlockNumber,
		SortKey:      TraceSortKey(trace.TraceAddress),
		CallFrom:     from,
		CallTo:       trace.To(),
		CallType:     trace.Action.CallType,
	}
	if tx.BlockNumber != nil {
		element.BlockNumber = *tx.BlockNumber
	}
	if tx.TxIndex != nil {
		element.TxIndex = *tx.TxIndex
	}
	if trace.Result != nil {
		gasUsed := uint64(trace.Result.GasUsed)
		element.GasUsed = &gasUsed
	}
	return element
}

func newTrace(txHash common.Hash, trace *pkgrpc.Trace) *store.Trace {
	out := &store.Trace{
		TxHash:       txHash,
		TraceAddress: TraceAddress(trace.TraceAddress),
		SortKey:      TraceSortKey(trace.TraceAddress),
		BlockNumber:  trace.BlockNumber,
		TraceType:    trace.Type,
		CallType:     trace.Action.CallType,
		From:         trace.From(),
		To:           trace.To(),
		Value:        trace.ValueInt(),
		Input:        trace.Action.Input,
		Error:        trace.Error,
	}
	if trace.Type == pkgrpc.TraceTypeCreate {
		out.Input = trace.Action.Init
	}
	if trace.Result != nil {
		gasUsed := uint64(trace.Result.GasUsed)
		out.GasUsed = &gasUsed
		out.Output = trace.Result.Output
		out.ContractAddress = trace.Result.Address
	}
	return out
}
