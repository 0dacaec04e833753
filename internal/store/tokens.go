package store

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

// InsertTokenTransfer stores a token transfer unless it is already stored.
func (t *Tx) InsertTokenTransfer(transfer *TokenTransfer) (bool, error) {
	return t.insertIgnore("token_transfers", transfer)
}

// TokenTransfers returns the transfers sent or received by address in chain order.
func (t *Tx) TokenTransfers(address common.Address) ([]*TokenTransfer, error) {
	var out []*TokenTransfer
	err := meddler.QueryAll(t.q, &out, `SELECT * FROM token_transfers
		WHERE from_address = ? OR to_address = ? ORDER BY block_number, log_index`,
		address.Hex(), address.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to query token transfers: %w", err)
	}
	return out, nil
}
