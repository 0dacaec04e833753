package safe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/internal/decoder"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/internal/metrics"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	"golang.org/x/sync/errgroup"
)

const (
	// Calls to functions a proxy does not have hit its fallback and use very little gas.
	// Such traces may still decode as calls of older master copies, so they are not replayed.
	minGasUsed = 1000

	defaultBatchSize = 5000
)

// StateProcessor replays pending decoded elements into wallet statuses.
type StateProcessor struct {
	store     *store.Store
	registry  *decoder.Registry
	versions  *Versions
	chainID   uint64
	workers   int
	batchSize int
	log       *logger.Logger
}

// NewStateProcessor creates the replay engine for a chain.
func NewStateProcessor(st *store.Store, registry *decoder.Registry, versions *Versions, chainID uint64,
	cfg config.ProcessorConfig, log *logger.Logger) *StateProcessor {
	p := &StateProcessor{
		store:     st,
		registry:  registry,
		versions:  versions,
		chainID:   chainID,
		workers:   max(cfg.Workers, 1),
		batchSize: cfg.BatchSize,
		log:       log,
	}
	if p.batchSize <= 0 {
		p.batchSize = defaultBatchSize
	}
	return p
}

// ProcessPending replays pending elements and returns how many were marked processed.
// Every wallet with pending elements gets up to one batch per call. Wallets are replayed
// in parallel, the elements of one wallet in chain order. A failing element is recorded and
// its wallet is skipped by later calls until a reprocess or a reorg clears the failure.
func (p *StateProcessor) ProcessPending(ctx context.Context) (int, error) {
	wallets, err := p.store.Read().PendingWallets()
	if err != nil {
		return 0, err
	}
	if len(wallets) == 0 {
		return 0, nil
	}

	var (
		processed atomic.Int64
		loaded    atomic.Int64
		mu        sync.Mutex
		errs      []error
		g         errgroup.Group
	)
	g.SetLimit(p.workers)

	for _, address := range wallets {
		g.Go(func() error {
			n, err := p.processWallet(ctx, address, &loaded)
			processed.Add(int64(n))
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("wallet %s: %w", address.Hex(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if pending, err := p.store.Read().CountPending(); err == nil {
		metrics.PendingElementsSet(pending)
	}

	p.log.Infow("replayed decoded elements",
		"wallets", len(wallets),
		"elements", loaded.Load(),
		"processed", processed.Load(),
		"failed_wallets", len(errs),
	)

	return int(processed.Load()), errors.Join(errs...)
}

func (p *StateProcessor) processWallet(ctx context.Context, address common.Address,
	loaded *atomic.Int64) (int, error) {
	elements, err := p.store.Read().PendingDecodedElements(address, p.batchSize)
	if err != nil {
		return 0, err
	}
	loaded.Add(int64(len(elements)))

	n, failed, err := p.replayWallet(ctx, address, elements)
	if failed == nil {
		return n, err
	}

	if markErr := p.store.Update(ctx, func(tx *store.Tx) error {
		return tx.MarkReplayFailed(failed.ID, err.Error())
	}); markErr != nil {
		return n, errors.Join(err, fmt.Errorf("failed to record replay error: %w", markErr))
	}
	return n, err
}

// replayWallet applies elements in order. The element that could not be replayed is returned
// with the error, unless the replay was interrupted.
func (p *StateProcessor) replayWallet(ctx context.Context, address common.Address,
	elements []*store.DecodedElement) (int, *store.DecodedElement, error) {
	var state WalletState
	initialized := false

	last, err := p.store.Read().LastStatus(address)
	switch {
	case err == nil:
		state, initialized = StateFromStatus(last), true
	case !errors.Is(err, store.ErrNotFound):
		return 0, nil, err
	}

	for i, el := range elements {
		if err := ctx.Err(); err != nil {
			return i, nil, err
		}

		next, wrote, err := p.replayElement(ctx, state, initialized, el)
		if err != nil {
			p.log.Errorw("failed to replay element",
				"safe", address.Hex(),
				"tx_hash", el.TxHash.Hex(),
				"function", el.FunctionName,
				"element_id", el.ID,
				"error", err,
			)
			err = fmt.Errorf("element %d (%s in %s): %w", el.ID, el.FunctionName, el.TxHash.Hex(), err)
			if ctx.Err() != nil {
				return i, nil, err
			}
			return i, el, err
		}
		if wrote {
			state, initialized = next, true
		}
	}

	return len(elements), nil, nil
}

// replayElement applies one element in its own transaction. It reports whether a new status
// was written.
func (p *StateProcessor) replayElement(ctx context.Context, state WalletState, initialized bool,
	el *store.DecodedElement) (WalletState, bool, error) {
	if el.Source == store.SourceTrace && el.GasUsed != nil && *el.GasUsed < minGasUsed {
		p.log.Debugw("skipping call with little gas used",
			"safe", el.Address.Hex(),
			"tx_hash", el.TxHash.Hex(),
			"function", el.FunctionName,
			"gas_used", *el.GasUsed,
		)
		return state, false, p.store.Update(ctx, func(tx *store.Tx) error {
			return tx.MarkProcessed(el.ID)
		})
	}

	call, err := ParseCall(el)
	if err != nil {
		return state, false, err
	}
	_, isSetup := call.(*SetupCall)

	var next WalletState
	wrote := false

	err = p.store.Update(ctx, func(tx *store.Tx) error {
		wrote = false

		if err := p.resolve(tx, el, call); err != nil {
			return err
		}
		env, err := p.env(tx, el)
		if err != nil {
			return err
		}

		var fx Effects
		next, fx = Apply(state, call, env)

		if !initialized && !isSetup {
			fx.warn(WarnNotInitialized, "%s called on %s before setup", el.FunctionName, el.Address.Hex())
		}
		for _, w := range fx.Warnings {
			metrics.ReplayWarningInc(w.Kind)
			p.log.Warnw(w.Message,
				"kind", w.Kind,
				"safe", el.Address.Hex(),
				"tx_hash", el.TxHash.Hex(),
				"function", el.FunctionName,
			)
		}

		if initialized || isSetup {
			status := next.Status(el)
			if err := tx.InsertSnapshot(status); err != nil {
				return err
			}
			if err := tx.SaveLastStatus(status); err != nil {
				return err
			}
			wrote = true
		}

		if err := p.applyEffects(tx, el, fx); err != nil {
			return err
		}

		return tx.MarkProcessed(el.ID)
	})
	if err != nil {
		return state, false, err
	}

	metrics.TransitionInc(el.FunctionName)
	return next, wrote, nil
}

func (p *StateProcessor) applyEffects(tx *store.Tx, el *store.DecodedElement, fx Effects) error {
	if fx.DeleteUnmined {
		deleted, err := tx.DeleteUnminedMultisigTxs(el.Address)
		if err != nil {
			return err
		}
		p.log.Infow("master copy changed across a breaking version, dropped queued transactions",
			"safe", el.Address.Hex(),
			"deleted", deleted,
		)
	}

	if fx.MultisigTx != nil {
		if _, err := tx.GetOrCreateMultisigTx(fx.MultisigTx); err != nil {
			return err
		}
	}

	if fx.Confirmation != nil {
		if _, err := tx.GetOrCreateConfirmation(fx.Confirmation); err != nil {
			return err
		}
	}

	if fx.ModuleTx != nil {
		if _, err := tx.InsertModuleTx(fx.ModuleTx); err != nil {
			return err
		}
	}

	return nil
}
