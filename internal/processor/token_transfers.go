package processor

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/SafeIndexor/internal/decoder"
	"github.com/goran-ethernal/SafeIndexor/internal/indexer"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	"github.com/goran-ethernal/SafeIndexor/internal/tokens"
	"github.com/goran-ethernal/SafeIndexor/internal/tracker"
	pkgrpc "github.com/goran-ethernal/SafeIndexor/pkg/rpc"
)

var _ indexer.ElementProcessor[types.Log] = (*TokenTransferProcessor)(nil)

// TokenTransferProcessor stores ERC20 and ERC721 transfers of monitored wallets.
type TokenTransferProcessor struct {
	client     pkgrpc.EthClient
	registry   *decoder.Registry
	classifier *tokens.Classifier
	tracker    *tracker.AlreadyProcessed
	log        *logger.Logger
}

// NewTokenTransferProcessor creates the processor of Transfer logs.
func NewTokenTransferProcessor(client pkgrpc.EthClient, registry *decoder.Registry, classifier *tokens.Classifier,
	t *tracker.AlreadyProcessed, log *logger.Logger) *TokenTransferProcessor {
	return &TokenTransferProcessor{
		client:     client,
		registry:   registry,
		classifier: classifier,
		tracker:    t,
		log:        log,
	}
}

// ProcessElements builds the batch of the given Transfer logs. Logs that are valid for both
// standards are resolved by asking the token for its decimals.
func (p *TokenTransferProcessor) ProcessElements(ctx context.Context, logs []types.Log) (indexer.Batch, error) {
	b := newBatch(p.tracker)

	pending, keys := unseenLogs(p.tracker, logs)
	if len(pending) == 0 {
		return b, nil
	}
	b.keys = keys

	var ambiguous []common.Address
	for i := range pending {
		if tokens.IsAmbiguousTransfer(&pending[i]) {
			ambiguous = append(ambiguous, pending[i].Address)
		}
	}

	kinds, err := p.classifier.Classify(ctx, ambiguous)
	if err != nil {
		return nil, fmt.Errorf("failed to classify tokens: %w", err)
	}

	if err := fillChain(ctx, p.client, b, pending); err != nil {
		return nil, err
	}

	for i := range pending {
		l := &pending[i]

		transfer, err := p.transfer(l, kinds)
		if err != nil {
			p.log.Debugw("skipping transfer log", "tx_hash", l.TxHash.Hex(), "log_index", l.Index, "error", err)
			continue
		}
		b.transfers = append(b.transfers, transfer)
	}

	p.log.Debugw("processed transfers", "logs", len(pending), "transfers", len(b.transfers))

	return b, nil
}

func (p *TokenTransferProcessor) transfer(l *types.Log, kinds map[common.Address]tokens.Kind) (*store.TokenTransfer, error) {
	decoded, err := p.registry.DecodeLog(l.Topics, l.Data)
	if err != nil {
		return nil, err
	}
	if decoded.Name != decoder.EvTransfer {
		return nil, fmt.Errorf("unexpected event %s", decoded.Name)
	}

	from, err := decoded.Args.Address("from")
	if err != nil {
		return nil, err
	}
	to, err := decoded.Args.Address("to")
	if err != nil {
		return nil, err
	}

	transfer := &store.TokenTransfer{
		TxHash:       l.TxHash,
		LogIndex:     l.Index,
		BlockNumber:  l.BlockNumber,
		TokenAddress: l.Address,
		From:         from,
		To:           to,
	}

	var amount *big.Int
	if decoded.Args.Has("tokenId") {
		amount, err = decoded.Args.BigInt("tokenId")
		transfer.Kind = store.TokenKindERC721
	} else {
		amount, err = decoded.Args.BigInt("value")
		transfer.Kind = store.TokenKindERC20
		if kinds[l.Address] == tokens.ERC721 {
			transfer.Kind = store.TokenKindERC721
		}
	}
	if err != nil {
		return nil, err
	}

	if transfer.Kind == store.TokenKindERC721 {
		transfer.TokenID = amount
	} else {
		transfer.Value = amount
	}
	return transfer, nil
}
