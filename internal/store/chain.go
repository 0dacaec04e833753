package store

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

// InsertBlock stores a block header unless a block with that number or hash is already stored.
func (t *Tx) InsertBlock(block *Block) (bool, error) {
	return t.insertIgnore("blocks", block)
}

// Block returns the stored block with the given number.
func (t *Tx) Block(number uint64) (*Block, error) {
	var out Block
	if err := meddler.QueryRow(t.q, &out, `SELECT * FROM blocks WHERE number = ?`, number); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// UnconfirmedBlocks returns unconfirmed blocks with number <= upTo in ascending order,
// at most limit of them.
func (t *Tx) UnconfirmedBlocks(upTo uint64, limit int) ([]*Block, error) {
	var out []*Block
	err := meddler.QueryAll(t.q, &out,
		`SELECT * FROM blocks WHERE confirmed = 0 AND number <= ? ORDER BY number LIMIT ?`, upTo, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unconfirmed blocks: %w", err)
	}
	return out, nil
}

// BlocksSince returns up to limit stored blocks with number >= fromBlock in ascending order.
func (t *Tx) BlocksSince(fromBlock uint64, limit int) ([]*Block, error) {
	var out []*Block
	err := meddler.QueryAll(t.q, &out,
		`SELECT * FROM blocks WHERE number >= ? ORDER BY number LIMIT ?`, fromBlock, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	return out, nil
}

// ConfirmBlocks marks the given blocks as confirmed.
func (t *Tx) ConfirmBlocks(numbers []uint64) (int64, error) {
	if len(numbers) == 0 {
		return 0, nil
	}

	args := make([]any, len(numbers))
	for i, n := range numbers {
		args[i] = n
	}

	updated, err := t.exec(`UPDATE blocks SET confirmed = 1 WHERE number IN `+inClause(len(numbers)), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to confirm blocks: %w", err)
	}
	return updated, nil
}

// DeleteBlocksFrom deletes every block with number >= fromBlock. Transactions, traces, events,
// decoded elements and the wallet state derived from them go with them.
func (t *Tx) DeleteBlocksFrom(fromBlock uint64) (int64, error) {
	deleted, err := t.exec(`DELETE FROM blocks WHERE number >= ?`, fromBlock)
	if err != nil {
		return 0, fmt.Errorf("failed to delete blocks: %w", err)
	}
	return deleted, nil
}

// LatestBlockNumber returns the highest stored block number.
func (t *Tx) LatestBlockNumber() (*uint64, error) {
	var latest *uint64
	if err := t.q.QueryRow(`SELECT MAX(number) FROM blocks`).Scan(&latest); err != nil {
		return nil, fmt.Errorf("failed to query latest block: %w", err)
	}
	return latest, nil
}

// UpsertTransaction stores a transaction. When it already exists, block linkage and receipt
// fields that are still NULL are filled in from tx.
func (t *Tx) UpsertTransaction(tx *Transaction) error {
	inserted, err := t.insertIgnore("transactions", tx)
	if err != nil || inserted {
		return err
	}

	_, err = t.exec(`UPDATE transactions SET
			block_number = COALESCE(block_number, ?),
			tx_index = COALESCE(tx_index, ?),
			gas_used = COALESCE(gas_used, ?),
			status = COALESCE(status, ?)
		WHERE hash = ?`,
		tx.BlockNumber, tx.TxIndex, tx.GasUsed, tx.Status, tx.Hash.Hex())
	if err != nil {
		return fmt.Errorf("failed to backfill transaction %s: %w", tx.Hash.Hex(), err)
	}
	return nil
}

// Transaction returns a stored transaction.
func (t *Tx) Transaction(hash common.Hash) (*Transaction, error) {
	var out Transaction
	if err := meddler.QueryRow(t.q, &out, `SELECT * FROM transactions WHERE hash = ?`, hash.Hex()); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// InsertTrace stores a trace unless it is already stored.
func (t *Tx) InsertTrace(trace *Trace) (bool, error) {
	return t.insertIgnore("traces", trace)
}

// TracesByTx returns the stored traces of a transaction in execution order.
func (t *Tx) TracesByTx(txHash common.Hash) ([]*Trace, error) {
	var out []*Trace
	err := meddler.QueryAll(t.q, &out, `SELECT * FROM traces WHERE tx_hash = ? ORDER BY sort_key`, txHash.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to query traces: %w", err)
	}
	return out, nil
}

// InsertEvent stores a log unless it is already stored.
func (t *Tx) InsertEvent(event *Event) (bool, error) {
	return t.insertIgnore("events", event)
}

// EventsByTx returns the stored logs of a transaction ordered by log index.
func (t *Tx) EventsByTx(txHash common.Hash) ([]*Event, error) {
	var out []*Event
	err := meddler.QueryAll(t.q, &out, `SELECT * FROM events WHERE tx_hash = ? ORDER BY log_index`, txHash.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	return out, nil
}
