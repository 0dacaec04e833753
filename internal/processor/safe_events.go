package processor

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/SafeIndexor/internal/decoder"
	"github.com/goran-ethernal/SafeIndexor/internal/indexer"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	"github.com/goran-ethernal/SafeIndexor/internal/tracker"
	pkgrpc "github.com/goran-ethernal/SafeIndexor/pkg/rpc"
)

var _ indexer.ElementProcessor[types.Log] = (*SafeEventsProcessor)(nil)

// additionalInfo of SafeMultiSigTransaction is abi.encode(nonce, msg.sender, threshold).
var additionalInfoArgs = abi.Arguments{
	{Name: "nonce", Type: mustType("uint256")},
	{Name: "sender", Type: mustType("address")},
	{Name: "threshold", Type: mustType("uint256")},
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// SafeEventsProcessor stores the logs of L2 wallets and maps them to the wallet calls
// they report, so replay does not depend on how the calls were found.
type SafeEventsProcessor struct {
	client   pkgrpc.EthClient
	registry *decoder.Registry
	tracker  *tracker.AlreadyProcessed
	log      *logger.Logger
}

// NewSafeEventsProcessor creates the processor of event based indexing.
func NewSafeEventsProcessor(client pkgrpc.EthClient, registry *decoder.Registry,
	t *tracker.AlreadyProcessed, log *logger.Logger) *SafeEventsProcessor {
	return &SafeEventsProcessor{
		client:   client,
		registry: registry,
		tracker:  t,
		log:      log,
	}
}

// ProcessElements builds the batch of the given logs.
func (p *SafeEventsProcessor) ProcessElements(ctx context.Context, logs []types.Log) (indexer.Batch, error) {
	b := newBatch(p.tracker)

	pending, keys := unseenLogs(p.tracker, logs)
	if len(pending) == 0 {
		return b, nil
	}
	b.keys = keys

	if err := fillChain(ctx, p.client, b, pending); err != nil {
		return nil, err
	}

	for i := range pending {
		l := &pending[i]
		b.events = append(b.events, newEvent(l))

		decoded, err := p.registry.DecodeLog(l.Topics, l.Data)
		if err != nil {
			if !errors.Is(err, decoder.ErrCannotDecode) {
				p.log.Warnw("failed to decode log", "tx_hash", l.TxHash.Hex(), "log_index", l.Index, "error", err)
			}
			continue
		}

		name, args, ok := p.walletCall(l, decoded)
		if !ok {
			continue
		}

		b.decoded = append(b.decoded, &store.DecodedElement{
			TxHash:       l.TxHash,
			Source:       store.SourceEvent,
			SourceIndex:  LogSortKey(l.Index),
			Address:      l.Address,
			FunctionName: name,
			Arguments:    args,
			BlockNumber:  l.BlockNumber,
			TxIndex:      uint64(l.TxIndex),
			SortKey:      LogSortKey(l.Index),
		})
	}

	p.log.Debugw("processed logs", "logs", len(pending), "decoded", len(b.decoded))

	return b, nil
}

// walletCall maps a decoded log to the name and arguments of the wallet call it reports.
// Logs that report no state change are stored raw only.
func (p *SafeEventsProcessor) walletCall(l *types.Log, d *decoder.Decoded) (string, decoder.Arguments, bool) {
	args := d.Args

	switch d.Name {
	case decoder.EvSafeMultiSigTransaction:
		out := pick(args, "to", "value", "data", "operation", "safeTxGas", "baseGas", "gasPrice",
			"gasToken", "refundReceiver", "signatures")
		p.addAdditionalInfo(l, args, out)
		return decoder.FnExecTransaction, out, true
	case decoder.EvSafeModuleTransaction:
		return decoder.FnExecTransactionFromModule, pick(args, "module", "to", "value", "data", "operation"), true
	case decoder.EvSafeSetup:
		out := pick(args, "initiator", "initializer", "fallbackHandler")
		out["_owners"] = args["owners"]
		out["_threshold"] = args["threshold"]
		return decoder.FnSetup, out, true
	case decoder.EvApproveHash:
		return decoder.FnApproveHash, decoder.Arguments{
			"hashToApprove": args["approvedHash"],
			"owner":         args["owner"],
		}, true
	case decoder.EvAddedOwner:
		return decoder.FnAddOwnerWithThreshold, decoder.Arguments{"owner": args["owner"], "_threshold": nil}, true
	case decoder.EvRemovedOwner:
		return decoder.FnRemoveOwner, decoder.Arguments{"owner": args["owner"], "_threshold": nil}, true
	case decoder.EvChangedThreshold:
		return decoder.FnChangeThreshold, decoder.Arguments{"_threshold": args["threshold"]}, true
	case decoder.EvEnabledModule:
		return decoder.FnEnableModule, pick(args, "module"), true
	case decoder.EvDisabledModule:
		return decoder.FnDisableModule, pick(args, "module"), true
	case decoder.EvChangedFallbackHandler:
		return decoder.FnSetFallbackHandler, pick(args, "handler"), true
	case decoder.EvChangedGuard:
		return decoder.FnSetGuard, pick(args, "guard"), true
	case decoder.EvChangedMasterCopy:
		return decoder.FnChangeMasterCopy, decoder.Arguments{"_masterCopy": args["singleton"]}, true
	default:
		return "", nil, false
	}
}

func (p *SafeEventsProcessor) addAdditionalInfo(l *types.Log, args, out decoder.Arguments) {
	raw, err := args.Bytes("additionalInfo")
	if err != nil {
		p.log.Warnw("SafeMultiSigTransaction without additionalInfo", "tx_hash", l.TxHash.Hex(), "error", err)
		return
	}

	values, err := additionalInfoArgs.Unpack(raw)
	if err != nil || len(values) != len(additionalInfoArgs) {
		p.log.Errorw("cannot decode SafeMultiSigTransaction additionalInfo",
			"safe", l.Address.Hex(),
			"tx_hash", l.TxHash.Hex(),
			"error", err,
		)
		return
	}

	if nonce, ok := values[0].(*big.Int); ok {
		out["nonce"] = nonce.String()
	}
	if sender, ok := values[1].(common.Address); ok {
		out["sender"] = sender.Hex()
	}
	if threshold, ok := values[2].(*big.Int); ok {
		out["threshold"] = threshold.String()
	}
}

func pick(args decoder.Arguments, names ...string) decoder.Arguments {
	out := make(decoder.Arguments, len(names))
	for _, n := range names {
		if v, ok := args[n]; ok {
			out[n] = v
		}
	}
	return out
}

// unseenLogs drops removed logs and logs already processed by this process.
func unseenLogs(t *tracker.AlreadyProcessed, logs []types.Log) ([]types.Log, []tracker.Key) {
	var pending []types.Log
	var keys []tracker.Key

	for _, l := range logs {
		if l.Removed {
			continue
		}
		key := tracker.Key{TxHash: l.TxHash, BlockHash: l.BlockHash, Index: LogSortKey(l.Index)}
		if t.Seen(key) {
			continue
		}
		pending = append(pending, l)
		keys = append(keys, key)
	}
	return pending, keys
}

// fillChain adds the blocks and transactions of logs to the batch.
func fillChain(ctx context.Context, client pkgrpc.EthClient, b *batch, logs []types.Log) error {
	numbers, hashes := logBlocksAndTxs(logs)

	blocks, err := fetchBlocks(ctx, client, numbers)
	if err != nil {
		return err
	}
	if err := checkLogBlocks(blocks, logs); err != nil {
		return err
	}

	txs, err := fetchTransactions(ctx, client, hashes)
	if err != nil {
		return err
	}

	b.blocks = blocks
	b.txs = txs
	return nil
}
