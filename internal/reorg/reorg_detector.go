package reorg

import (
	"context"
	"fmt"
	"math"
	"sync"

	internalcommon "github.com/goran-ethernal/SafeIndexor/internal/common"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/internal/metrics"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	"github.com/goran-ethernal/SafeIndexor/pkg/reorg"
	"github.com/goran-ethernal/SafeIndexor/pkg/rpc"
)

var _ reorg.Detector = (*ReorgDetector)(nil)

// ReorgDetector compares stored blocks with the chain, confirms the ones deep enough and
// rewinds the indexed data when a stored block was replaced.
type ReorgDetector struct {
	store *store.Store
	rpc   rpc.EthClient
	cfg   config.ReorgConfig
	log   *logger.Logger

	mu    sync.Mutex
	hooks []func(firstReorgBlock uint64)
}

// NewReorgDetector creates a new ReorgDetector.
func NewReorgDetector(st *store.Store, rpcClient rpc.EthClient, cfg config.ReorgConfig,
	log *logger.Logger) *ReorgDetector {
	cfg.ApplyDefaults()

	metrics.ComponentHealthSet(internalcommon.ComponentReorgDetector, true)

	return &ReorgDetector{
		store: st,
		rpc:   rpcClient,
		cfg:   cfg,
		log:   log,
	}
}

// OnReorg registers a hook called after every rewind. Hooks cancel in-flight work and drop
// caches built from the removed blocks.
func (r *ReorgDetector) OnReorg(hook func(firstReorgBlock uint64)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks = append(r.hooks, hook)
}

// Check compares every stored block from the first unconfirmed one on with the chain.
// Matching blocks at least ReorgBlocks behind the head are confirmed. On the first mismatch
// the data is rewound and a *ReorgDetectedError is returned.
func (r *ReorgDetector) Check(ctx context.Context) error {
	first, err := r.store.Read().UnconfirmedBlocks(math.MaxInt64, 1)
	if err != nil {
		return err
	}
	if len(first) == 0 {
		return nil
	}

	head, err := r.rpc.CurrentBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current block number: %w", err)
	}

	confirmationBlock := internalcommon.SaturatingSub(head, r.cfg.ReorgBlocks)

	from := first[0].Number
	var confirmedTotal int64

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		blocks, err := r.store.Read().BlocksSince(from, r.cfg.BatchSize)
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			break
		}

		numbers := make([]uint64, len(blocks))
		for i, b := range blocks {
			numbers[i] = b.Number
		}

		headers, err := r.rpc.BatchHeaders(ctx, numbers)
		if err != nil {
			return fmt.Errorf("failed to fetch headers %d-%d: %w", numbers[0], numbers[len(numbers)-1], err)
		}
		blocksChecked.Add(float64(len(blocks)))

		var confirm []uint64
		for i, stored := range blocks {
			header := headers[i]
			if header == nil {
				r.log.Warnw("stored block not available on the node yet",
					"block", stored.Number,
					"head", head,
				)
				return r.confirm(ctx, confirm, &confirmedTotal)
			}

			if header.Hash != stored.Hash {
				r.log.Warnw("stored block does not match the chain, reorg found",
					"block", stored.Number,
					"stored_hash", stored.Hash.Hex(),
					"chain_hash", header.Hash.Hex(),
				)
				if err := r.confirm(ctx, confirm, &confirmedTotal); err != nil {
					return err
				}
				return r.Recover(ctx, stored.Number,
					fmt.Sprintf("stored_hash=%s chain_hash=%s", stored.Hash.Hex(), header.Hash.Hex()))
			}

			if !stored.Confirmed && stored.Number <= confirmationBlock {
				confirm = append(confirm, stored.Number)
			}
		}

		if err := r.confirm(ctx, confirm, &confirmedTotal); err != nil {
			return err
		}

		if len(blocks) < r.cfg.BatchSize {
			break
		}
		from = blocks[len(blocks)-1].Number + 1
	}

	r.log.Debugw("stored blocks verified",
		"from_block", first[0].Number,
		"head", head,
		"confirmed", confirmedTotal,
	)
	return nil
}

func (r *ReorgDetector) confirm(ctx context.Context, numbers []uint64, total *int64) error {
	if len(numbers) == 0 {
		return nil
	}

	return r.store.Update(ctx, func(tx *store.Tx) error {
		confirmed, err := tx.ConfirmBlocks(numbers)
		if err != nil {
			return err
		}
		*total += confirmed
		metrics.BlocksConfirmedInc(confirmed)
		return nil
	})
}

// Recover rewinds the indexed data to before firstReorgBlock. Watermarks at or above it are
// moved back to firstReorgBlock - RewindMargin, every block from firstReorgBlock on is deleted
// together with the data derived from it, and the last status of wallets that lost their
// newest snapshot is rebuilt. Registered hooks run after the rewind is committed.
// It always returns a *ReorgDetectedError unless the rewind itself failed.
func (r *ReorgDetector) Recover(ctx context.Context, firstReorgBlock uint64, details string) error {
	rewindTo := internalcommon.SaturatingSub(firstReorgBlock, r.cfg.RewindMargin)

	var clamped, deleted, rebuilt, cleared int64
	var latest *uint64

	err := r.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if latest, err = tx.LatestBlockNumber(); err != nil {
			return err
		}
		if clamped, err = tx.ClampWatermarks(firstReorgBlock, rewindTo); err != nil {
			return err
		}
		if deleted, err = tx.DeleteBlocksFrom(firstReorgBlock); err != nil {
			return err
		}
		if cleared, err = tx.ClearReplayErrors(); err != nil {
			return err
		}
		rebuilt, err = tx.RebuildLastStatuses()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to recover from reorg at block %d: %w", firstReorgBlock, err)
	}

	depth := uint64(1)
	if latest != nil && *latest >= firstReorgBlock {
		depth = *latest - firstReorgBlock + 1
	}
	reorgDetectedLog(depth, firstReorgBlock)

	r.log.Warnw("reorg fixed, indexing rewound",
		"first_reorg_block", firstReorgBlock,
		"rewind_to", rewindTo,
		"watermarks_updated", clamped,
		"blocks_deleted", deleted,
		"statuses_rebuilt", rebuilt,
		"replay_errors_cleared", cleared,
	)

	r.mu.Lock()
	hooks := append([]func(uint64){}, r.hooks...)
	r.mu.Unlock()
	for _, hook := range hooks {
		hook(firstReorgBlock)
	}

	return NewReorgError(firstReorgBlock, rewindTo, deleted, details)
}

// Close marks the detector as stopped.
func (r *ReorgDetector) Close() error {
	metrics.ComponentHealthSet(internalcommon.ComponentReorgDetector, false)
	return nil
}
