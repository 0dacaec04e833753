package processor

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goran-ethernal/SafeIndexor/internal/decoder"
	"github.com/goran-ethernal/SafeIndexor/internal/indexer"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/internal/tracker"
	pkgrpc "github.com/goran-ethernal/SafeIndexor/pkg/rpc"
)

var _ indexer.ElementProcessor[types.Log] = (*ProxyFactoryProcessor)(nil)

// ProxyFactoryProcessor registers the wallets deployed by monitored proxy factories.
type ProxyFactoryProcessor struct {
	client   pkgrpc.EthClient
	registry *decoder.Registry
	tracker  *tracker.AlreadyProcessed
	log      *logger.Logger
}

// NewProxyFactoryProcessor creates the processor of ProxyCreation logs.
func NewProxyFactoryProcessor(client pkgrpc.EthClient, registry *decoder.Registry,
	t *tracker.AlreadyProcessed, log *logger.Logger) *ProxyFactoryProcessor {
	return &ProxyFactoryProcessor{
		client:   client,
		registry: registry,
		tracker:  t,
		log:      log,
	}
}

// ProcessElements stores the creation logs and registers every new wallet with its watermarks
// one block before its creation, so the creation itself is indexed.
func (p *ProxyFactoryProcessor) ProcessElements(ctx context.Context, logs []types.Log) (indexer.Batch, error) {
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

		decoded, err := p.registry.DecodeLog(l.Topics, l.Data)
		if err != nil || decoded.Name != decoder.EvProxyCreation {
			p.log.Warnw("unexpected proxy factory log", "tx_hash", l.TxHash.Hex(), "log_index", l.Index)
			continue
		}

		proxy, err := decoded.Args.Address("proxy")
		if err != nil {
			p.log.Warnw("ProxyCreation without proxy", "tx_hash", l.TxHash.Hex(), "error", err)
			continue
		}

		b.events = append(b.events, newEvent(l))
		b.safes = append(b.safes, newSafe{
			address:    proxy,
			block:      l.BlockNumber - min(l.BlockNumber, 1),
			creationTx: l.TxHash,
		})

		p.log.Infow("new safe discovered",
			"safe", proxy.Hex(),
			"factory", l.Address.Hex(),
			"block", l.BlockNumber,
		)
	}

	return b, nil
}
