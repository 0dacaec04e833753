package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/internal/metrics"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	pkgindexer "github.com/goran-ethernal/SafeIndexor/pkg/indexer"
)

var _ pkgindexer.Indexer = (*Indexer[common.Hash])(nil)

// HeadReader returns the current chain head.
type HeadReader interface {
	CurrentBlockNumber(ctx context.Context) (uint64, error)
}

// ElementFinder retrieves the raw candidate elements of an address set in a block range.
// Failures are reported as *FindRelevantElementsError.
type ElementFinder[E any] interface {
	FindRelevantElements(ctx context.Context, addresses []common.Address, fromBlock, toBlock uint64) ([]E, error)
}

// ElementProcessor turns found elements into a Batch. Everything that needs the node is
// resolved by ProcessElements; the batch only touches the database.
type ElementProcessor[E any] interface {
	ProcessElements(ctx context.Context, elements []E) (Batch, error)
}

// Batch is a set of processed elements ready to be stored.
type Batch interface {
	// Persist stores the elements and returns how many new rows were written. It runs in the
	// transaction that advances the watermark.
	Persist(tx *store.Tx) (int, error)

	// Committed is called once the transaction is committed.
	Committed()
}

// Indexer drives the scan loop of one kind of element: it selects the monitored addresses
// that need work, scans them range by range and advances their watermark.
type Indexer[E any] struct {
	name    string
	kind    store.Kind
	purpose store.Purpose
	cfg     config.IndexerConfig

	store     *store.Store
	head      HeadReader
	scanner   *Scanner
	finder    ElementFinder[E]
	processor ElementProcessor[E]
	log       *logger.Logger
}

// New creates an indexer scanning addresses of kind and advancing their purpose watermark.
func New[E any](
	name string,
	kind store.Kind,
	purpose store.Purpose,
	cfg config.IndexerConfig,
	st *store.Store,
	head HeadReader,
	finder ElementFinder[E],
	processor ElementProcessor[E],
	log *logger.Logger,
) *Indexer[E] {
	if cfg.QueryChunkSize < 1 {
		cfg.QueryChunkSize = 1
	}

	scanner := NewScanner(cfg)
	metrics.ScanRangeSizeSet(name, scanner.RangeSize())

	return &Indexer[E]{
		name:      name,
		kind:      kind,
		purpose:   purpose,
		cfg:       cfg,
		store:     st,
		head:      head,
		scanner:   scanner,
		finder:    finder,
		processor: processor,
		log:       log,
	}
}

// Name returns the indexer name.
func (ix *Indexer[E]) Name() string {
	return ix.name
}

// Scanner returns the range scanner of the indexer.
func (ix *Indexer[E]) Scanner() *Scanner {
	return ix.scanner
}

// Start runs one invocation: almost updated addresses get one pass in chunks, addresses far
// behind are caught up one by one until done or the context expires. A failing group does not
// stop the others; the errors are returned together with the number of stored elements.
func (ix *Indexer[E]) Start(ctx context.Context) (int, error) {
	head, err := ix.head.CurrentBlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get current block: %w", ix.name, err)
	}

	marks, err := ix.store.Read().Watermarks(ix.kind, ix.purpose)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ix.name, err)
	}

	if head <= ix.cfg.Confirmations {
		return 0, nil
	}
	safeHead := head - ix.cfg.Confirmations

	var threshold uint64
	if head > ix.cfg.UpdatedBlocksBehind {
		threshold = head - ix.cfg.UpdatedBlocksBehind
	}

	var almostUpdated, notUpdated []*store.AddressWatermark
	for _, m := range marks {
		switch {
		case m.Block >= safeHead:
		case m.Block >= threshold:
			almostUpdated = append(almostUpdated, m)
		default:
			notUpdated = append(notUpdated, m)
		}
	}

	ix.log.Debugw("selected addresses",
		"head", head,
		"almost_updated", len(almostUpdated),
		"not_updated", len(notUpdated),
	)

	var (
		processed int
		errs      []error
	)

	for start := 0; start < len(almostUpdated); start += ix.cfg.QueryChunkSize {
		if err := ctx.Err(); err != nil {
			return processed, errors.Join(append(errs, err)...)
		}

		chunk := almostUpdated[start:min(start+ix.cfg.QueryChunkSize, len(almostUpdated))]
		n, _, _, err := ix.processGroup(ctx, chunk, head)
		processed += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	for _, m := range notUpdated {
		n, err := ix.catchUp(ctx, m, head)
		processed += n
		if err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}

	if processed > 0 {
		ix.log.Infow("indexer run finished", "head", head, "elements", processed)
	}

	return processed, errors.Join(errs...)
}

// catchUp scans a single address until it reaches the head.
func (ix *Indexer[E]) catchUp(ctx context.Context, mark *store.AddressWatermark, head uint64) (int, error) {
	current := &store.AddressWatermark{Address: mark.Address, Block: mark.Block}
	processed := 0

	for {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		n, r, ok, err := ix.processGroup(ctx, []*store.AddressWatermark{current}, head)
		processed += n
		if err != nil {
			return processed, err
		}
		if !ok || r.Updated {
			return processed, nil
		}

		current.Block = r.To
	}
}

// processGroup runs COMPUTE_RANGE, FIND_ELEMENTS, PROCESS_ELEMENTS and ADVANCE_WATERMARK for
// one address group. It returns false when the group had nothing to scan.
func (ix *Indexer[E]) processGroup(
	ctx context.Context,
	group []*store.AddressWatermark,
	head uint64,
) (int, Range, bool, error) {
	watermarks := make([]uint64, len(group))
	addresses := make([]common.Address, len(group))
	for i, m := range group {
		watermarks[i] = m.Block
		addresses[i] = m.Address
	}

	r, ok := ix.scanner.ComputeRange(watermarks, head)
	if !ok {
		return 0, r, false, nil
	}

	start := time.Now()
	elements, err := ix.finder.FindRelevantElements(ctx, addresses, r.From, r.To)
	elapsed := time.Since(start)
	if err != nil {
		ix.scanner.Reset()
		metrics.FinderErrorInc(ix.name)
		metrics.ScanRangeSizeSet(ix.name, ix.scanner.RangeSize())

		ix.log.Warnw("failed to find elements, range size reset",
			"from_block", r.From,
			"to_block", r.To,
			"addresses", len(addresses),
			"range_size", ix.scanner.RangeSize(),
			"error", err,
		)

		var findErr *FindRelevantElementsError
		if !errors.As(err, &findErr) {
			err = &FindRelevantElementsError{
				Indexer:   ix.name,
				FromBlock: r.From,
				ToBlock:   r.To,
				Addresses: len(addresses),
				Err:       err,
			}
		}
		return 0, r, true, err
	}

	ix.scanner.Observe(r, elapsed)
	metrics.ScanDurationLog(ix.name, elapsed)
	metrics.ScanRangeSizeSet(ix.name, ix.scanner.RangeSize())

	batch, err := ix.processor.ProcessElements(ctx, elements)
	if err != nil {
		return 0, r, true, fmt.Errorf("%s: failed to process elements of blocks %d-%d: %w",
			ix.name, r.From, r.To, err)
	}

	expected := 0
	for _, w := range watermarks {
		if w <= r.To {
			expected++
		}
	}

	var stored int
	err = ix.store.Update(ctx, func(tx *store.Tx) error {
		var err error
		if stored, err = batch.Persist(tx); err != nil {
			return err
		}

		updated, err := tx.AdvanceWatermark(ix.kind, ix.purpose, addresses, r.From, r.To)
		if err != nil {
			return err
		}
		if updated != int64(expected) {
			metrics.WatermarkMismatchInc(ix.name)
			ix.log.Warnw("possible reorg, not every watermark was advanced",
				"updated", updated,
				"expected", expected,
				"from_block", r.From,
				"to_block", r.To,
			)
		}
		return nil
	})
	if err != nil {
		return 0, r, true, fmt.Errorf("%s: failed to store blocks %d-%d: %w", ix.name, r.From, r.To, err)
	}
	batch.Committed()

	metrics.ElementsProcessedInc(ix.name, stored)
	metrics.RangeScanned(ix.name, r.From, r.To)

	ix.log.Debugw("range indexed",
		"from_block", r.From,
		"to_block", r.To,
		"addresses", len(addresses),
		"found", len(elements),
		"stored", stored,
		"duration", elapsed,
	)

	return stored, r, true, nil
}
