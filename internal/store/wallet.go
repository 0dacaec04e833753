package store

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

const statusColumns = `address, decoded_element_id, owners, threshold, nonce, master_copy, fallback_handler,
	guard, enabled_modules, tx_hash, block_number, tx_index, sort_key`

// InsertSnapshot appends a wallet status snapshot.
func (t *Tx) InsertSnapshot(status *WalletStatus) error {
	if err := meddler.Insert(t.q, "wallet_status_snapshots", status); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// SaveLastStatus replaces the last status of the wallet.
func (t *Tx) SaveLastStatus(status *WalletStatus) error {
	if _, err := t.exec(`DELETE FROM wallet_last_status WHERE address = ?`, status.Address.Hex()); err != nil {
		return fmt.Errorf("failed to delete last status: %w", err)
	}
	if err := meddler.Insert(t.q, "wallet_last_status", status); err != nil {
		return fmt.Errorf("failed to insert last status: %w", err)
	}
	return nil
}

// LastStatus returns the current status of a wallet.
func (t *Tx) LastStatus(address common.Address) (*WalletStatus, error) {
	var out WalletStatus
	err := meddler.QueryRow(t.q, &out,
		`SELECT `+statusColumns+` FROM wallet_last_status WHERE address = ?`, address.Hex())
	if err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// Snapshots returns the history of a wallet in replay order.
func (t *Tx) Snapshots(address common.Address) ([]*WalletStatus, error) {
	var out []*WalletStatus
	err := meddler.QueryAll(t.q, &out, `SELECT `+statusColumns+` FROM wallet_status_snapshots
		WHERE address = ? ORDER BY block_number, tx_index, sort_key, id`, address.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	return out, nil
}

// RebuildLastStatuses recreates the missing last status of every wallet that still has
// snapshots, from its newest snapshot.
func (t *Tx) RebuildLastStatuses() (int64, error) {
	rebuilt, err := t.exec(`INSERT INTO wallet_last_status (` + statusColumns + `)
		SELECT ` + statusColumns + ` FROM wallet_status_snapshots s
		WHERE s.address NOT IN (SELECT address FROM wallet_last_status)
		AND s.id = (
			SELECT s2.id FROM wallet_status_snapshots s2
			WHERE s2.address = s.address
			ORDER BY s2.block_number DESC, s2.tx_index DESC, s2.sort_key DESC, s2.id DESC
			LIMIT 1
		)`)
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild last statuses: %w", err)
	}
	return rebuilt, nil
}

// GetOrCreateMultisigTx stores mtx unless a transaction with the same hash exists. A mined
// transaction hash and the failure flag are attached to an existing row that has none yet.
func (t *Tx) GetOrCreateMultisigTx(mtx *MultisigTransaction) (bool, error) {
	inserted, err := t.insertIgnore("multisig_transactions", mtx)
	if err != nil || inserted || mtx.EthereumTxHash == nil {
		return inserted, err
	}

	_, err = t.exec(`UPDATE multisig_transactions SET ethereum_tx_hash = ?, failed = ?
		WHERE safe_tx_hash = ? AND ethereum_tx_hash IS NULL`,
		mtx.EthereumTxHash.Hex(), mtx.Failed, mtx.SafeTxHash.Hex())
	if err != nil {
		return false, fmt.Errorf("failed to attach mined transaction: %w", err)
	}
	return false, nil
}

// MultisigTx returns a multisig transaction by its hash.
func (t *Tx) MultisigTx(safeTxHash common.Hash) (*MultisigTransaction, error) {
	var out MultisigTransaction
	err := meddler.QueryRow(t.q, &out, `SELECT * FROM multisig_transactions WHERE safe_tx_hash = ?`,
		safeTxHash.Hex())
	if err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// MultisigTxsBySafe returns the multisig transactions of a wallet ordered by nonce.
func (t *Tx) MultisigTxsBySafe(safe common.Address) ([]*MultisigTransaction, error) {
	var out []*MultisigTransaction
	err := meddler.QueryAll(t.q, &out,
		`SELECT * FROM multisig_transactions WHERE safe = ? ORDER BY nonce, safe_tx_hash`, safe.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to query multisig transactions: %w", err)
	}
	return out, nil
}

// DeleteUnminedMultisigTxs deletes the multisig transactions of a wallet that were never mined.
func (t *Tx) DeleteUnminedMultisigTxs(safe common.Address) (int64, error) {
	deleted, err := t.exec(`DELETE FROM multisig_transactions WHERE safe = ? AND ethereum_tx_hash IS NULL`,
		safe.Hex())
	if err != nil {
		return 0, fmt.Errorf("failed to delete unmined multisig transactions: %w", err)
	}
	return deleted, nil
}

// GetOrCreateConfirmation stores a confirmation unless the owner already confirmed that hash.
func (t *Tx) GetOrCreateConfirmation(conf *MultisigConfirmation) (bool, error) {
	inserted, err := t.insertIgnore("multisig_confirmations", conf)
	if err != nil || inserted || conf.EthereumTxHash == nil {
		return inserted, err
	}

	_, err = t.exec(`UPDATE multisig_confirmations SET ethereum_tx_hash = ?
		WHERE safe_tx_hash = ? AND owner = ? AND ethereum_tx_hash IS NULL`,
		conf.EthereumTxHash.Hex(), conf.SafeTxHash.Hex(), conf.Owner.Hex())
	if err != nil {
		return false, fmt.Errorf("failed to attach confirmation transaction: %w", err)
	}
	return false, nil
}

// Confirmations returns the confirmations of a multisig transaction.
func (t *Tx) Confirmations(safeTxHash common.Hash) ([]*MultisigConfirmation, error) {
	var out []*MultisigConfirmation
	err := meddler.QueryAll(t.q, &out,
		`SELECT * FROM multisig_confirmations WHERE safe_tx_hash = ? ORDER BY id`, safeTxHash.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to query confirmations: %w", err)
	}
	return out, nil
}

// InsertModuleTx stores a module transaction unless one exists for the element.
func (t *Tx) InsertModuleTx(mtx *ModuleTransaction) (bool, error) {
	return t.insertIgnore("module_transactions", mtx)
}

// ModuleTxsBySafe returns the module transactions of a wallet.
func (t *Tx) ModuleTxsBySafe(safe common.Address) ([]*ModuleTransaction, error) {
	var out []*ModuleTransaction
	err := meddler.QueryAll(t.q, &out,
		`SELECT * FROM module_transactions WHERE safe = ? ORDER BY decoded_element_id`, safe.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to query module transactions: %w", err)
	}
	return out, nil
}

// ResetWalletState deletes the derived state of the given wallets (all when empty) and flags
// their decoded elements as unprocessed.
func (t *Tx) ResetWalletState(addresses []common.Address) (int64, error) {
	where, args := "", []any(nil)
	if len(addresses) > 0 {
		where = ` WHERE %s IN ` + inClause(len(addresses))
		args = hexArgs(addresses)
	}

	statements := []struct {
		query  string
		column string
	}{
		{`DELETE FROM multisig_confirmations WHERE safe_tx_hash IN (SELECT safe_tx_hash FROM multisig_transactions` +
			where + `)`, "safe"},
		{`DELETE FROM multisig_transactions` + where, "safe"},
		{`DELETE FROM module_transactions` + where, "safe"},
		{`DELETE FROM wallet_last_status` + where, "address"},
		{`DELETE FROM wallet_status_snapshots` + where, "address"},
	}

	for _, stmt := range statements {
		query := stmt.query
		if where != "" {
			query = fmt.Sprintf(query, stmt.column)
		}
		if _, err := t.exec(query, args...); err != nil {
			return 0, fmt.Errorf("failed to reset wallet state: %w", err)
		}
	}

	query := `UPDATE decoded_elements SET processed = 0, replay_error = NULL`
	if where != "" {
		query += fmt.Sprintf(where, "address")
	}
	reset, err := t.exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to reset decoded elements: %w", err)
	}
	return reset, nil
}

// Reprocess deletes the derived state of the given wallets (all when empty) so the state
// processor replays them from their first decoded element.
func (s *Store) Reprocess(ctx context.Context, addresses []common.Address) (int64, error) {
	var reset int64
	err := s.Update(ctx, func(tx *Tx) error {
		var err error
		reset, err = tx.ResetWalletState(addresses)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Infow("wallet state reset", "addresses", len(addresses), "elements", reset)
	return reset, nil
}

// RebuildLastStatuses recreates missing last statuses in its own transaction.
func (s *Store) RebuildLastStatuses(ctx context.Context) (int64, error) {
	var rebuilt int64
	err := s.Update(ctx, func(tx *Tx) error {
		var err error
		rebuilt, err = tx.RebuildLastStatuses()
		return err
	})
	return rebuilt, err
}
