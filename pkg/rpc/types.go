package rpc

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	TraceTypeCall    = "call"
	TraceTypeCreate  = "create"
	TraceTypeSuicide = "suicide"
	TraceTypeReward  = "reward"
	CallTypeCall     = "call"
	CallTypeDelegate = "delegatecall"
	CallTypeStatic   = "staticcall"
	CallTypeCallCode = "callcode"
)

// BlockHeader is the subset of a block the indexer keeps. The hash is the one reported
// by the node, never recomputed locally.
type BlockHeader struct {
	Number     hexutil.Uint64 `json:"number"`
	Hash       common.Hash    `json:"hash"`
	ParentHash common.Hash    `json:"parentHash"`
	Timestamp  hexutil.Uint64 `json:"timestamp"`
	GasLimit   hexutil.Uint64 `json:"gasLimit"`
	GasUsed    hexutil.Uint64 `json:"gasUsed"`
}

// Transaction is a transaction as returned by eth_getTransactionByHash.
type Transaction struct {
	Hash             common.Hash     `json:"hash"`
	BlockHash        *common.Hash    `json:"blockHash"`
	BlockNumber      *hexutil.Big    `json:"blockNumber"`
	TransactionIndex *hexutil.Uint64 `json:"transactionIndex"`
	From             common.Address  `json:"from"`
	To               *common.Address `json:"to"`
	Nonce            hexutil.Uint64  `json:"nonce"`
	Value            *hexutil.Big    `json:"value"`
	Input            hexutil.Bytes   `json:"input"`
	Gas              hexutil.Uint64  `json:"gas"`
	GasPrice         *hexutil.Big    `json:"gasPrice"`
}

// Mined reports whether the transaction is included in a block.
func (t *Transaction) Mined() bool {
	return t.BlockNumber != nil && t.BlockHash != nil
}

// TraceAction holds the action part of a parity style trace.
type TraceAction struct {
	From          *common.Address `json:"from,omitempty"`
	To            *common.Address `json:"to,omitempty"`
	Value         *hexutil.Big    `json:"value,omitempty"`
	Gas           hexutil.Uint64  `json:"gas"`
	Input         hexutil.Bytes   `json:"input,omitempty"`
	Init          hexutil.Bytes   `json:"init,omitempty"`
	CallType      string          `json:"callType,omitempty"`
	Address       *common.Address `json:"address,omitempty"`
	RefundAddress *common.Address `json:"refundAddress,omitempty"`
	Balance       *hexutil.Big    `json:"balance,omitempty"`
}

// TraceResult holds the result part of a parity style trace.
type TraceResult struct {
	GasUsed hexutil.Uint64  `json:"gasUsed"`
	Output  hexutil.Bytes   `json:"output,omitempty"`
	Code    hexutil.Bytes   `json:"code,omitempty"`
	Address *common.Address `json:"address,omitempty"`
}

// Trace is one step of a transaction execution as returned by the trace_* namespace.
type Trace struct {
	Action              TraceAction  `json:"action"`
	Result              *TraceResult `json:"result,omitempty"`
	Error               string       `json:"error,omitempty"`
	Subtraces           int          `json:"subtraces"`
	TraceAddress        []uint64     `json:"traceAddress"`
	TransactionHash     *common.Hash `json:"transactionHash,omitempty"`
	TransactionPosition *uint64      `json:"transactionPosition,omitempty"`
	BlockNumber         uint64       `json:"blockNumber"`
	BlockHash           common.Hash  `json:"blockHash"`
	Type                string       `json:"type"`
}

// From returns the sender of a call or create trace, or the contract of a selfdestruct.
func (t *Trace) From() *common.Address {
	if t.Type == TraceTypeSuicide {
		return t.Action.Address
	}
	return t.Action.From
}

// To returns the callee of a call, the created contract of a create,
// or the refund address of a selfdestruct.
func (t *Trace) To() *common.Address {
	switch t.Type {
	case TraceTypeCreate:
		if t.Result != nil {
			return t.Result.Address
		}
		return nil
	case TraceTypeSuicide:
		return t.Action.RefundAddress
	default:
		return t.Action.To
	}
}

// ValueInt returns the transferred value, zero when absent.
func (t *Trace) ValueInt() *big.Int {
	switch {
	case t.Action.Value != nil:
		return t.Action.Value.ToInt()
	case t.Action.Balance != nil:
		return t.Action.Balance.ToInt()
	default:
		return new(big.Int)
	}
}

// GasUsed returns the gas used by the trace, zero for failed traces.
func (t *Trace) GasUsed() uint64 {
	if t.Result == nil {
		return 0
	}
	return uint64(t.Result.GasUsed)
}

// IsDelegateCall reports whether the trace is a delegatecall.
func (t *Trace) IsDelegateCall() bool {
	return t.Type == TraceTypeCall && t.Action.CallType == CallTypeDelegate
}

// TraceFilterQuery is the argument of trace_filter.
type TraceFilterQuery struct {
	FromBlock   uint64
	ToBlock     uint64
	FromAddress []common.Address
	ToAddress   []common.Address
}

// CallRequest is a single eth_call.
type CallRequest struct {
	To   common.Address
	Data []byte
}

// CallResult is the outcome of a single eth_call.
type CallResult struct {
	Data []byte
	Err  error
}
