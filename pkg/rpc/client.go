package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// EthClient defines the node capabilities the indexer consumes.
// Every call is bounded by the given context.
type EthClient interface {
	// Close closes the RPC client connection.
	Close()

	// ChainID returns the chain id reported by the node.
	ChainID(ctx context.Context) (uint64, error)

	// CurrentBlockNumber returns the number of the latest block.
	CurrentBlockNumber(ctx context.Context) (uint64, error)

	// HeaderByNumber returns the header of a block, nil if the node does not know it.
	HeaderByNumber(ctx context.Context, number uint64) (*BlockHeader, error)

	// BatchHeaders returns the headers of the given blocks in order. Unknown blocks are nil.
	BatchHeaders(ctx context.Context, numbers []uint64) ([]*BlockHeader, error)

	// BatchTransactions returns the transactions with the given hashes in order. Unknown ones are nil.
	BatchTransactions(ctx context.Context, hashes []common.Hash) ([]*Transaction, error)

	// BatchReceipts returns the receipts of the given transactions in order. Pending ones are nil.
	BatchReceipts(ctx context.Context, hashes []common.Hash) ([]*types.Receipt, error)

	// TraceFilter runs trace_filter.
	TraceFilter(ctx context.Context, query TraceFilterQuery) ([]Trace, error)

	// TraceBlocks runs trace_block for every given block.
	TraceBlocks(ctx context.Context, numbers []uint64) ([][]Trace, error)

	// BatchTraceTransactions runs trace_transaction for every given hash.
	BatchTraceTransactions(ctx context.Context, hashes []common.Hash) ([][]Trace, error)

	// FilterLogs runs eth_getLogs.
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)

	// BatchCall runs eth_call against the latest block for every request.
	// Per call failures are reported in CallResult.Err, not as the returned error.
	BatchCall(ctx context.Context, calls []CallRequest) ([]CallResult, error)
}
