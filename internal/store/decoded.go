package store

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

const pendingOrder = `ORDER BY block_number, tx_index, sort_key, id`

// InsertDecodedElement stores a decoded element unless it is already stored.
// On insert the element ID is set.
func (t *Tx) InsertDecodedElement(element *DecodedElement) (bool, error) {
	return t.insertIgnore("decoded_elements", element)
}

// PendingWallets returns the wallets with unprocessed elements, ordered by their oldest
// pending element. Wallets with a failed element are left out until the failure is cleared.
func (t *Tx) PendingWallets() ([]common.Address, error) {
	rows, err := t.q.Query(`
		SELECT address FROM decoded_elements
		WHERE processed = 0
		GROUP BY address
		HAVING COUNT(replay_error) = 0
		ORDER BY MIN(block_number), address`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending wallets: %w", err)
	}
	defer rows.Close()

	var out []common.Address
	for rows.Next() {
		var address string
		if err := rows.Scan(&address); err != nil {
			return nil, fmt.Errorf("failed to scan pending wallet: %w", err)
		}
		out = append(out, common.HexToAddress(address))
	}
	return out, rows.Err()
}

// PendingDecodedElements returns up to limit unprocessed elements of a wallet in blockchain
// order. Failed elements are skipped.
func (t *Tx) PendingDecodedElements(address common.Address, limit int) ([]*DecodedElement, error) {
	var out []*DecodedElement
	err := meddler.QueryAll(t.q, &out, `
		SELECT * FROM decoded_elements
		WHERE address = ? AND processed = 0 AND replay_error IS NULL `+pendingOrder+` LIMIT ?`,
		address.Hex(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending decoded elements: %w", err)
	}
	return out, nil
}

// DecodedElementsByAddress returns every element of a wallet in blockchain order.
func (t *Tx) DecodedElementsByAddress(address common.Address) ([]*DecodedElement, error) {
	var out []*DecodedElement
	err := meddler.QueryAll(t.q, &out,
		`SELECT * FROM decoded_elements WHERE address = ? `+pendingOrder, address.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to query decoded elements: %w", err)
	}
	return out, nil
}

// DecodedElementsByTx returns every element of a transaction in execution order.
func (t *Tx) DecodedElementsByTx(txHash common.Hash) ([]*DecodedElement, error) {
	var out []*DecodedElement
	err := meddler.QueryAll(t.q, &out,
		`SELECT * FROM decoded_elements WHERE tx_hash = ? ORDER BY sort_key, id`, txHash.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to query decoded elements: %w", err)
	}
	return out, nil
}

// MarkProcessed flags a decoded element as replayed.
func (t *Tx) MarkProcessed(id int64) error {
	updated, err := t.exec(`UPDATE decoded_elements SET processed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark element %d processed: %w", id, err)
	}
	if updated == 0 {
		return fmt.Errorf("decoded element %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkReplayFailed records why a decoded element could not be replayed. The element stays
// unprocessed and its wallet is not replayed again until the error is cleared.
func (t *Tx) MarkReplayFailed(id int64, reason string) error {
	updated, err := t.exec(`UPDATE decoded_elements SET replay_error = ? WHERE id = ?`, reason, id)
	if err != nil {
		return fmt.Errorf("failed to mark element %d failed: %w", id, err)
	}
	if updated == 0 {
		return fmt.Errorf("decoded element %d: %w", id, ErrNotFound)
	}
	return nil
}

// ClearReplayErrors makes failed elements eligible for replay again.
func (t *Tx) ClearReplayErrors() (int64, error) {
	cleared, err := t.exec(`UPDATE decoded_elements SET replay_error = NULL WHERE replay_error IS NOT NULL`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear replay errors: %w", err)
	}
	return cleared, nil
}

// CountPending returns the number of unprocessed decoded elements.
func (t *Tx) CountPending() (int64, error) {
	var count int64
	if err := t.q.QueryRow(`SELECT COUNT(*) FROM decoded_elements WHERE processed = 0`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending elements: %w", err)
	}
	return count, nil
}
