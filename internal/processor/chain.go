package processor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	pkgrpc "github.com/goran-ethernal/SafeIndexor/pkg/rpc"
)

// sortKeyWidth pads every component of a sort key so keys compare as strings.
const sortKeyWidth = 6

// TraceSortKey orders the traces of a transaction in execution order.
func TraceSortKey(traceAddress []uint64) string {
	parts := make([]string, len(traceAddress))
	for i, idx := range traceAddress {
		parts[i] = fmt.Sprintf("%0*d", sortKeyWidth, idx)
	}
	return strings.Join(parts, ",")
}

// LogSortKey orders the logs of a transaction.
func LogSortKey(index uint) string {
	return fmt.Sprintf("%0*d", sortKeyWidth, index)
}

// TraceAddress renders a trace address the way it is stored, e.g. "0,1".
func TraceAddress(traceAddress []uint64) string {
	parts := make([]string, len(traceAddress))
	for i, idx := range traceAddress {
		parts[i] = strconv.FormatUint(idx, 10)
	}
	return strings.Join(parts, ",")
}

// fetchBlocks loads the headers of the given blocks.
func fetchBlocks(ctx context.Context, client pkgrpc.EthClient, numbers []uint64) ([]*store.Block, error) {
	if len(numbers) == 0 {
		return nil, nil
	}

	headers, err := client.BatchHeaders(ctx, numbers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch block headers: %w", err)
	}

	blocks := make([]*store.Block, len(numbers))
	for i, n := range numbers {
		h := headers[i]
		if h == nil {
			return nil, fmt.Errorf("block %d not found", n)
		}

		blocks[i] = &store.Block{
			Number:     uint64(h.Number),
			Hash:       h.Hash,
			ParentHash: h.ParentHash,
			Timestamp:  uint64(h.Timestamp),
			GasLimit:   uint64(h.GasLimit),
			GasUsed:    uint64(h.GasUsed),
		}
	}
	return blocks, nil
}

// checkLogBlocks fails when a log belongs to a block the node no longer reports at that height.
// The range is retried once the reorg detector has rewound it.
func checkLogBlocks(blocks []*store.Block, logs []types.Log) error {
	hashes := make(map[uint64]common.Hash, len(blocks))
	for _, b := range blocks {
		hashes[b.Number] = b.Hash
	}

	for _, l := range logs {
		if h, ok := hashes[l.BlockNumber]; ok && h != l.BlockHash {
			return fmt.Errorf("block %d changed while processing: log of %s, header %s",
				l.BlockNumber, l.BlockHash.Hex(), h.Hex())
		}
	}
	return nil
}

// fetchTransactions loads mined transactions with their receipts.
func fetchTransactions(ctx context.Context, client pkgrpc.EthClient,
	hashes []common.Hash) ([]*store.Transaction, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	txs, err := client.BatchTransactions(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	receipts, err := client.BatchReceipts(ctx, hashes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch receipts: %w", err)
	}

	out := make([]*store.Transaction, len(hashes))
	for i, h := range hashes {
		if txs[i] == nil || !txs[i].Mined() {
			return nil, fmt.Errorf("transaction %s is not mined anymore", h.Hex())
		}
		out[i] = newTransaction(txs[i], receipts[i])
	}
	return out, nil
}

// newTransaction converts a node transaction. The receipt may be nil.
func newTransaction(tx *pkgrpc.Transaction, receipt *types.Receipt) *store.Transaction {
	out := &store.Transaction{
		Hash:  tx.Hash,
		From:  tx.From,
		To:    tx.To,
		Nonce: uint64(tx.Nonce),
		Data:  tx.Input,
		Gas:   uint64(tx.Gas),
	}

	if tx.Value != nil {
		out.Value = tx.Value.ToInt()
	} else {
		out.Value = common.Big0
	}
	if tx.GasPrice != nil {
		out.GasPrice = tx.GasPrice.ToInt()
	}
	if tx.BlockNumber != nil {
		n := tx.BlockNumber.ToInt().Uint64()
		out.BlockNumber = &n
	}
	if tx.TransactionIndex != nil {
		idx := uint64(*tx.TransactionIndex)
		out.TxIndex = &idx
	}
	if receipt != nil {
		gasUsed, status := receipt.GasUsed, receipt.Status
		out.GasUsed = &gasUsed
		out.Status = &status
	}
	return out
}

// newEvent converts a log.
func newEvent(l *types.Log) *store.Event {
	event := &store.Event{
		TxHash:      l.TxHash,
		LogIndex:    l.Index,
		BlockNumber: l.BlockNumber,
		Address:     l.Address,
		Topics:      l.Topics,
		Data:        l.Data,
	}
	if event.Topics == nil {
		event.Topics = []common.Hash{}
	}
	if len(l.Topics) > 0 {
		topic0 := l.Topics[0]
		event.Topic0 = &topic0
	}
	return event
}

// logBlocksAndTxs returns the distinct block numbers and transaction hashes of logs.
func logBlocksAndTxs(logs []types.Log) ([]uint64, []common.Hash) {
	var numbers []uint64
	var hashes []common.Hash
	seenBlock := make(map[uint64]struct{})
	seenTx := make(map[common.Hash]struct{})

	for _, l := range logs {
		if _, ok := seenBlock[l.BlockNumber]; !ok {
			seenBlock[l.BlockNumber] = struct{}{}
			numbers = append(numbers, l.BlockNumber)
		}
		if _, ok := seenTx[l.TxHash]; !ok {
			seenTx[l.TxHash] = struct{}{}
			hashes = append(hashes, l.TxHash)
		}
	}
	return numbers, hashes
}
