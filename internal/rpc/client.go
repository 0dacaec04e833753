package rpc

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	pkgrpc "github.com/goran-ethernal/SafeIndexor/pkg/rpc"
	"golang.org/x/time/rate"
)

// Compile-time check to ensure Client implements pkgrpc.EthClient interface.
var _ pkgrpc.EthClient = (*Client)(nil)

const defaultBatchSize = 100

// Client wraps the Ethereum RPC client with the calls the indexer needs.
// Requests are rate limited, bounded by the configured timeout and retried with backoff.
type Client struct {
	eth *ethclient.Client
	rpc *rpc.Client

	timeout   time.Duration
	batchSize int
	retry     *config.RetryConfig
	limiter   *rate.Limiter
	log       *logger.Logger
}

// NewClient creates a new RPC client connected to the configured endpoint.
func NewClient(ctx context.Context, cfg config.RPCConfig, log *logger.Logger) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.URL, err)
	}

	return NewClientFromRPC(rpcClient, cfg, log), nil
}

// NewClientFromRPC wraps an already connected rpc.Client.
func NewClientFromRPC(rpcClient *rpc.Client, cfg config.RPCConfig, log *logger.Logger) *Client {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(1, int(cfg.RequestsPerSecond)))
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &Client{
		eth:       ethclient.NewClient(rpcClient),
		rpc:       rpcClient,
		timeout:   cfg.Timeout.Duration,
		batchSize: batchSize,
		retry:     cfg.Retry,
		limiter:   limiter,
		log:       log,
	}
}

// Close closes the RPC client connection.
func (c *Client) Close() {
	c.eth.Close()
}

// do runs fn with rate limiting, a per attempt timeout, retries and metrics.
func (c *Client) do(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	return retryWithBackoff(ctx, c.retry, method, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		start := time.Now()
		err := fn(callCtx)
		observeCall(method, start, err)
		return err
	})
}

// ChainID returns the chain id reported by the node.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var id *big.Int
	err := c.do(ctx, "eth_chainId", func(ctx context.Context) error {
		var err error
		id, err = c.eth.ChainID(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

// CurrentBlockNumber returns the latest block number.
func (c *Client) CurrentBlockNumber(ctx context.Context) (uint64, error) {
	var number uint64
	err := c.do(ctx, "eth_blockNumber", func(ctx context.Context) error {
		var err error
		number, err = c.eth.BlockNumber(ctx)
		return err
	})
	return number, err
}

// HeaderByNumber retrieves the header of a block. It returns nil when the block is unknown.
func (c *Client) HeaderByNumber(ctx context.Context, number uint64) (*pkgrpc.BlockHeader, error) {
	var header *pkgrpc.BlockHeader
	err := c.do(ctx, "eth_getBlockByNumber", func(ctx context.Context) error {
		return c.rpc.CallContext(ctx, &header, "eth_getBlockByNumber", toBlockNumArg(number), false)
	})
	return header, err
}

// BatchHeaders retrieves the headers of the given blocks in batches.
func (c *Client) BatchHeaders(ctx context.Context, numbers []uint64) ([]*pkgrpc.BlockHeader, error) {
	return batchCall[uint64, *pkgrpc.BlockHeader](ctx, c, "eth_getBlockByNumber", numbers, func(number uint64) []any {
		return []any{toBlockNumArg(number), false}
	})
}

// BatchTransactions retrieves transactions by hash in batches.
func (c *Client) BatchTransactions(ctx context.Context, hashes []common.Hash) ([]*pkgrpc.Transaction, error) {
	return batchCall[common.Hash, *pkgrpc.Transaction](ctx, c, "eth_getTransactionByHash", hashes, func(hash common.Hash) []any {
		return []any{hash}
	})
}

// BatchReceipts retrieves transaction receipts by hash in batches.
func (c *Client) BatchReceipts(ctx context.Context, hashes []common.Hash) ([]*types.Receipt, error) {
	return batchCall[common.Hash, *types.Receipt](ctx, c, "eth_getTransactionReceipt", hashes, func(hash common.Hash) []any {
		return []any{hash}
	})
}

// TraceFilter runs trace_filter for the given range and addresses.
func (c *Client) TraceFilter(ctx context.Context, query pkgrpc.TraceFilterQuery) ([]pkgrpc.Trace, error) {
	var traces []pkgrpc.Trace
	err := c.do(ctx, "trace_filter", func(ctx context.Context) error {
		return c.rpc.CallContext(ctx, &traces, "trace_filter", toTraceFilterArg(query))
	})
	return traces, err
}

// TraceBlocks runs trace_block for every block in batches.
func (c *Client) TraceBlocks(ctx context.Context, numbers []uint64) ([][]pkgrpc.Trace, error) {
	return batchCall[uint64, []pkgrpc.Trace](ctx, c, "trace_block", numbers, func(number uint64) []any {
		return []any{toBlockNumArg(number)}
	})
}

// BatchTraceTransactions runs trace_transaction for every hash in batches.
func (c *Client) BatchTraceTransactions(ctx context.Context, hashes []common.Hash) ([][]pkgrpc.Trace, error) {
	return batchCall[common.Hash, []pkgrpc.Trace](ctx, c, "trace_transaction", hashes, func(hash common.Hash) []any {
		return []any{hash}
	})
}

// FilterLogs retrieves logs matching the given filter query.
func (c *Client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	var logs []types.Log
	err := c.do(ctx, "eth_getLogs", func(ctx context.Context) error {
		var err error
		logs, err = c.eth.FilterLogs(ctx, query)
		return err
	})
	return logs, err
}

// BatchCall runs eth_call for every request against the latest block.
// Reverted or failing calls are reported per element.
func (c *Client) BatchCall(ctx context.Context, calls []pkgrpc.CallRequest) ([]pkgrpc.CallResult, error) {
	results := make([]pkgrpc.CallResult, 0, len(calls))

	for start := 0; start < len(calls); start += c.batchSize {
		chunk := calls[start:min(start+c.batchSize, len(calls))]
		outputs := make([]hexutil.Bytes, len(chunk))
		batch := make([]rpc.BatchElem, len(chunk))

		for i, call := range chunk {
			batch[i] = rpc.BatchElem{
				Method: "eth_call",
				Args: []any{map[string]any{
					"to":   call.To,
					"data": hexutil.Bytes(call.Data),
				}, "latest"},
				Result: &outputs[i],
			}
		}

		err := c.do(ctx, "eth_call", func(ctx context.Context) error {
			return c.rpc.BatchCallContext(ctx, batch)
		})
		if err != nil {
			return nil, err
		}

		for i, elem := range batch {
			results = append(results, pkgrpc.CallResult{Data: outputs[i], Err: elem.Error})
		}
	}

	return results, nil
}

// batchCall sends one JSON-RPC request per key, c.batchSize requests per round trip.
// Any element error fails the whole call.
func batchCall[K any, R any](ctx context.Context, c *Client, method string, keys []K,
	args func(K) []any) ([]R, error) {
	results := make([]R, 0, len(keys))

	for start := 0; start < len(keys); start += c.batchSize {
		chunk := keys[start:min(start+c.batchSize, len(keys))]
		chunkResults := make([]R, len(chunk))
		batch := make([]rpc.BatchElem, len(chunk))

		for i, key := range chunk {
			batch[i] = rpc.BatchElem{
				Method: method,
				Args:   args(key),
				Result: &chunkResults[i],
			}
		}

		err := c.do(ctx, method, func(ctx context.Context) error {
			if err := c.rpc.BatchCallContext(ctx, batch); err != nil {
				return err
			}
			for _, elem := range batch {
				if elem.Error != nil {
					return elem.Error
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		results = append(results, chunkResults...)
	}

	return results, nil
}

// toTraceFilterArg converts a TraceFilterQuery to the trace_filter parameter object.
func toTraceFilterArg(q pkgrpc.TraceFilterQuery) map[string]any {
	arg := map[string]any{
		"fromBlock": toBlockNumArg(q.FromBlock),
		"toBlock":   toBlockNumArg(q.ToBlock),
	}
	if len(q.FromAddress) > 0 {
		arg["fromAddress"] = q.FromAddress
	}
	if len(q.ToAddress) > 0 {
		arg["toAddress"] = q.ToAddress
	}
	return arg
}

// toBlockNumArg converts a block number to hex format.
func toBlockNumArg(blockNum uint64) string {
	return fmt.Sprintf("0x%x", blockNum)
}
