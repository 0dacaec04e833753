// Package processor turns the raw elements found by the finders into stored rows: blocks,
// transactions, traces, logs, decoded wallet calls, token transfers and new wallets.
package processor

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/internal/indexer"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	"github.com/goran-ethernal/SafeIndexor/internal/tracker"
)

var _ indexer.Batch = (*batch)(nil)

type newSafe struct {
	address    common.Address
	block      uint64
	creationTx common.Hash
}

// batch collects the rows of one processed range. Blocks and transactions are inserted first
// so the rows referencing them satisfy their foreign keys.
type batch struct {
	blocks    []*store.Block
	txs       []*store.Transaction
	traces    []*store.Trace
	events    []*store.Event
	decoded   []*store.DecodedElement
	transfers []*store.TokenTransfer
	safes     []newSafe

	keys    []tracker.Key
	tracker *tracker.AlreadyProcessed
}

func newBatch(t *tracker.AlreadyProcessed) *batch {
	return &batch{tracker: t}
}

// Persist stores the batch and returns the number of new traces, logs, decoded elements,
// token transfers and wallets.
func (b *batch) Persist(tx *store.Tx) (int, error) {
	for _, block := range b.blocks {
		if _, err := tx.InsertBlock(block); err != nil {
			return 0, err
		}
	}

	for _, t := range b.txs {
		if err := tx.UpsertTransaction(t); err != nil {
			return 0, err
		}
	}

	count := 0
	add := func(inserted bool, err error) error {
		if inserted {
			count++
		}
		return err
	}

	for _, trace := range b.traces {
		if err := add(tx.InsertTrace(trace)); err != nil {
			return 0, err
		}
	}
	for _, event := range b.events {
		if err := add(tx.InsertEvent(event)); err != nil {
			return 0, err
		}
	}
	for _, element := range b.decoded {
		if err := add(tx.InsertDecodedElement(element)); err != nil {
			return 0, err
		}
	}
	for _, transfer := range b.transfers {
		if err := add(tx.InsertTokenTransfer(transfer)); err != nil {
			return 0, err
		}
	}
	for _, safe := range b.safes {
		creationTx := safe.creationTx
		if err := add(tx.AddMonitoredAddress(safe.address, store.KindSafe, safe.block, &creationTx)); err != nil {
			return 0, err
		}
	}

	return count, nil
}

// Committed marks the elements of the batch as processed.
func (b *batch) Committed() {
	for _, key := range b.keys {
		b.tracker.Mark(key)
	}
}
