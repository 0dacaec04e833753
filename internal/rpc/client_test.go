package rpc

import (
	"context"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	internalcommon "github.com/goran-ethernal/SafeIndexor/internal/common"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	pkgrpc "github.com/goran-ethernal/SafeIndexor/pkg/rpc"
	"github.com/stretchr/testify/require"
)

var (
	revertingContract = common.HexToAddress("0xdead")
	safeAddr          = common.HexToAddress("0x5afe")
	knownTxHash       = common.HexToHash("0x01")
)

// fakeEth serves the eth namespace of an in-process node.
type fakeEth struct {
	head          uint64
	blockNumFails atomic.Int32
	blockNumCalls atomic.Int32
	filterArgs    atomic.Value
}

func (f *fakeEth) ChainId() *hexutil.Big { //nolint:revive,stylecheck
	return (*hexutil.Big)(big.NewInt(100))
}

func (f *fakeEth) BlockNumber() (hexutil.Uint64, error) {
	f.blockNumCalls.Add(1)
	if f.blockNumFails.Load() > 0 {
		f.blockNumFails.Add(-1)
		return 0, errors.New("503 service unavailable")
	}
	return hexutil.Uint64(f.head), nil
}

func (f *fakeEth) GetBlockByNumber(number string, _ bool) (*pkgrpc.BlockHeader, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(number, "0x"), 16, 64)
	if err != nil {
		return nil, err
	}
	if n > f.head {
		return nil, nil
	}
	return &pkgrpc.BlockHeader{
		Number:     hexutil.Uint64(n),
		Hash:       common.BigToHash(new(big.Int).SetUint64(n + 1000)),
		ParentHash: common.BigToHash(new(big.Int).SetUint64(n + 999)),
		Timestamp:  hexutil.Uint64(1_700_000_000 + n),
	}, nil
}

func (f *fakeEth) GetTransactionByHash(hash common.Hash) *pkgrpc.Transaction {
	if hash != knownTxHash {
		return nil
	}
	blockHash := common.HexToHash("0xb1")
	index := hexutil.Uint64(3)
	return &pkgrpc.Transaction{
		Hash:             hash,
		BlockHash:        &blockHash,
		BlockNumber:      (*hexutil.Big)(big.NewInt(7)),
		TransactionIndex: &index,
		From:             common.HexToAddress("0xabc"),
		To:               &safeAddr,
		Nonce:            2,
		Value:            (*hexutil.Big)(big.NewInt(0)),
		Input:            hexutil.Bytes{0x6a, 0x76, 0x12, 0x02},
	}
}

func (f *fakeEth) Call(args map[string]any, _ string) (hexutil.Bytes, error) {
	if to, _ := args["to"].(string); common.HexToAddress(to) == revertingContract {
		return nil, errors.New("execution reverted")
	}
	return common.LeftPadBytes([]byte{18}, 32), nil
}

func (f *fakeEth) GetLogs(crit map[string]any) ([]types.Log, error) {
	f.filterArgs.Store(crit)
	return []types.Log{{
		Address:     safeAddr,
		Topics:      []common.Hash{common.HexToHash("0x01")},
		Data:        []byte{0x01},
		BlockNumber: 5,
		TxHash:      knownTxHash,
		BlockHash:   common.HexToHash("0xb1"),
	}}, nil
}

// fakeTrace serves the trace namespace of an in-process node.
type fakeTrace struct {
	lastFilter atomic.Value
}

func (f *fakeTrace) Filter(arg map[string]any) ([]pkgrpc.Trace, error) {
	f.lastFilter.Store(arg)
	to := safeAddr
	from := common.HexToAddress("0xabc")
	return []pkgrpc.Trace{{
		Action: pkgrpc.TraceAction{
			From:     &from,
			To:       &to,
			CallType: pkgrpc.CallTypeCall,
			Value:    (*hexutil.Big)(big.NewInt(5)),
		},
		Result:          &pkgrpc.TraceResult{GasUsed: 21000},
		TraceAddress:    []uint64{},
		TransactionHash: &knownTxHash,
		BlockNumber:     7,
		Type:            pkgrpc.TraceTypeCall,
	}}, nil
}

func (f *fakeTrace) Transaction(hash common.Hash) []pkgrpc.Trace {
	return []pkgrpc.Trace{{
		TraceAddress:    []uint64{0, 1},
		TransactionHash: &hash,
		Type:            pkgrpc.TraceTypeCall,
	}}
}

func (f *fakeTrace) Block(number string) ([]pkgrpc.Trace, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(number, "0x"), 16, 64)
	if err != nil {
		return nil, err
	}
	return []pkgrpc.Trace{{BlockNumber: n, Type: pkgrpc.TraceTypeReward, TraceAddress: []uint64{}}}, nil
}

func newTestClient(t *testing.T, eth *fakeEth, trace *fakeTrace, retry *config.RetryConfig) *Client {
	t.Helper()

	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", eth))
	require.NoError(t, server.RegisterName("trace", trace))
	t.Cleanup(server.Stop)

	client := NewClientFromRPC(rpc.DialInProc(server), config.RPCConfig{
		Timeout:   internalcommon.NewDuration(5 * time.Second),
		BatchSize: 2,
		Retry:     retry,
	}, logger.NewNopLogger())
	t.Cleanup(client.Close)

	return client
}

// TestClientImplementsInterface verifies that Client implements the EthClient interface.
func TestClientImplementsInterface(t *testing.T) {
	var _ pkgrpc.EthClient = (*Client)(nil)
}

func TestClient_ChainAndHead(t *testing.T) {
	client := newTestClient(t, &fakeEth{head: 42}, &fakeTrace{}, nil)
	ctx := context.Background()

	chainID, err := client.ChainID(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(100), chainID)

	head, err := client.CurrentBlockNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(42), head)

	header, err := client.HeaderByNumber(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, header)
	require.Equal(t, uint64(10), uint64(header.Number))
	require.Equal(t, common.BigToHash(big.NewInt(1010)), header.Hash)

	header, err = client.HeaderByNumber(ctx, 43)
	require.NoError(t, err)
	require.Nil(t, header)
}

func TestClient_BatchHeaders_ChunksAndKeepsOrder(t *testing.T) {
	client := newTestClient(t, &fakeEth{head: 10}, &fakeTrace{}, nil)

	numbers := []uint64{9, 3, 11, 1, 5}
	headers, err := client.BatchHeaders(context.Background(), numbers)
	require.NoError(t, err)
	require.Len(t, headers, len(numbers))

	for i, n := range numbers {
		if n > 10 {
			require.Nil(t, headers[i], "block %d is beyond head", n)
			continue
		}
		require.NotNil(t, headers[i])
		require.Equal(t, n, uint64(headers[i].Number))
	}
}

func TestClient_BatchTransactions(t *testing.T) {
	client := newTestClient(t, &fakeEth{}, &fakeTrace{}, nil)

	txs, err := client.BatchTransactions(context.Background(), []common.Hash{knownTxHash, common.HexToHash("0x02")})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.NotNil(t, txs[0])
	require.True(t, txs[0].Mined())
	require.Equal(t, uint64(7), txs[0].BlockNumber.ToInt().Uint64())
	require.Equal(t, safeAddr, *txs[0].To)
	require.Nil(t, txs[1])
}

func TestClient_TraceFilter(t *testing.T) {
	trace := &fakeTrace{}
	client := newTestClient(t, &fakeEth{}, trace, nil)

	traces, err := client.TraceFilter(context.Background(), pkgrpc.TraceFilterQuery{
		FromBlock: 16,
		ToBlock:   32,
		ToAddress: []common.Address{safeAddr},
	})
	require.NoError(t, err)
	require.Len(t, traces, 1)
	require.Equal(t, safeAddr, *traces[0].To())
	require.Equal(t, uint64(21000), traces[0].GasUsed())
	require.Equal(t, int64(5), traces[0].ValueInt().Int64())

	sent, ok := trace.lastFilter.Load().(map[string]any)
	require.True(t, ok)
	require.Equal(t, "0x10", sent["fromBlock"])
	require.Equal(t, "0x20", sent["toBlock"])
	require.Contains(t, sent, "toAddress")
	require.NotContains(t, sent, "fromAddress")
}

func TestClient_TraceBlocksAndTransactions(t *testing.T) {
	client := newTestClient(t, &fakeEth{}, &fakeTrace{}, nil)
	ctx := context.Background()

	blocks, err := client.TraceBlocks(ctx, []uint64{4, 5, 6})
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	for i, n := range []uint64{4, 5, 6} {
		require.Len(t, blocks[i], 1)
		require.Equal(t, n, blocks[i][0].BlockNumber)
	}

	byTx, err := client.BatchTraceTransactions(ctx, []common.Hash{knownTxHash})
	require.NoError(t, err)
	require.Len(t, byTx, 1)
	require.Equal(t, []uint64{0, 1}, byTx[0][0].TraceAddress)
}

func TestClient_FilterLogs(t *testing.T) {
	eth := &fakeEth{}
	client := newTestClient(t, eth, &fakeTrace{}, nil)

	logs, err := client.FilterLogs(context.Background(), ethereum.FilterQuery{
		FromBlock: big.NewInt(1),
		ToBlock:   big.NewInt(10),
		Addresses: []common.Address{safeAddr},
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, safeAddr, logs[0].Address)
	require.Equal(t, knownTxHash, logs[0].TxHash)

	sent, ok := eth.filterArgs.Load().(map[string]any)
	require.True(t, ok)
	require.Equal(t, "0x1", sent["fromBlock"])
	require.Equal(t, "0xa", sent["toBlock"])
}

func TestClient_BatchCall_ReportsPerCallErrors(t *testing.T) {
	client := newTestClient(t, &fakeEth{}, &fakeTrace{}, nil)

	calls := []pkgrpc.CallRequest{
		{To: safeAddr, Data: []byte{0x31, 0x3c, 0xe5, 0x67}},
		{To: revertingContract, Data: []byte{0x31, 0x3c, 0xe5, 0x67}},
		{To: common.HexToAddress("0x7"), Data: []byte{0x31, 0x3c, 0xe5, 0x67}},
	}

	results, err := client.BatchCall(context.Background(), calls)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	require.Equal(t, big.NewInt(18), new(big.Int).SetBytes(results[0].Data))
	require.Error(t, results[1].Err)
	require.Contains(t, results[1].Err.Error(), "execution reverted")
	require.NoError(t, results[2].Err)
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	eth := &fakeEth{head: 9}
	eth.blockNumFails.Store(2)

	client := newTestClient(t, eth, &fakeTrace{}, &config.RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    internalcommon.NewDuration(time.Millisecond),
		MaxBackoff:        internalcommon.NewDuration(5 * time.Millisecond),
		BackoffMultiplier: 2,
	})

	head, err := client.CurrentBlockNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(9), head)
	require.Equal(t, int32(3), eth.blockNumCalls.Load())
}

func TestClient_GivesUpAfterMaxAttempts(t *testing.T) {
	eth := &fakeEth{head: 9}
	eth.blockNumFails.Store(10)

	client := newTestClient(t, eth, &fakeTrace{}, &config.RetryConfig{
		MaxAttempts:       2,
		InitialBackoff:    internalcommon.NewDuration(time.Millisecond),
		MaxBackoff:        internalcommon.NewDuration(time.Millisecond),
		BackoffMultiplier: 1,
	})

	_, err := client.CurrentBlockNumber(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "all 2 attempts failed")
	require.Equal(t, int32(2), eth.blockNumCalls.Load())
}

func TestToBlockNumArg(t *testing.T) {
	tests := []struct {
		blockNum uint64
		want     string
	}{
		{0, "0x0"},
		{1, "0x1"},
		{100, "0x64"},
		{18000000, "0x112a880"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, toBlockNumArg(tt.blockNum))
		})
	}
}

func TestToTraceFilterArg(t *testing.T) {
	from := common.HexToAddress("0x1")
	to := common.HexToAddress("0x2")

	arg := toTraceFilterArg(pkgrpc.TraceFilterQuery{FromBlock: 1, ToBlock: 255})
	require.Equal(t, "0x1", arg["fromBlock"])
	require.Equal(t, "0xff", arg["toBlock"])
	require.NotContains(t, arg, "fromAddress")
	require.NotContains(t, arg, "toAddress")

	arg = toTraceFilterArg(pkgrpc.TraceFilterQuery{
		FromBlock:   1,
		ToBlock:     1,
		FromAddress: []common.Address{from},
		ToAddress:   []common.Address{to},
	})
	require.Equal(t, []common.Address{from}, arg["fromAddress"])
	require.Equal(t, []common.Address{to}, arg["toAddress"])
}

func TestClassifyError(t *testing.T) {
	require.Equal(t, "ok", classifyError(nil))
	require.Equal(t, "timeout", classifyError(context.DeadlineExceeded))
	require.Equal(t, "cancelled", classifyError(context.Canceled))
	require.Equal(t, "rpc", classifyError(&mockCodeError{code: -32000, msg: "execution reverted"}))
	require.Equal(t, "transient", classifyError(errors.New("502 bad gateway")))
	require.Equal(t, "other", classifyError(errors.New("boom")))
}
