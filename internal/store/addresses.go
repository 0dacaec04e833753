package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/ethereum/go-ethereum/common"
	internalcommon "github.com/goran-ethernal/SafeIndexor/internal/common"
	"github.com/russross/meddler"
)

func (p Purpose) column() (string, error) {
	if !slices.Contains(AllPurposes, p) {
		return "", fmt.Errorf("unknown watermark %q", p)
	}
	return string(p), nil
}

// AddMonitoredAddress registers an address with every watermark set to block. It returns
// false when the address is already monitored; existing watermarks are left untouched.
func (t *Tx) AddMonitoredAddress(address common.Address, kind Kind, block uint64,
	creationTx *common.Hash) (bool, error) {
	return t.insertIgnore("monitored_addresses", &MonitoredAddress{
		Address:           address,
		Kind:              kind,
		TxBlockNumber:     block,
		EventsBlockNumber: block,
		TokensBlockNumber: block,
		CreationTxHash:    creationTx,
		CreatedAt:         time.Now().Unix(),
	})
}

// MonitoredAddresses returns every monitored address of a kind.
func (t *Tx) MonitoredAddresses(kind Kind) ([]*MonitoredAddress, error) {
	var out []*MonitoredAddress
	err := meddler.QueryAll(t.q, &out,
		`SELECT * FROM monitored_addresses WHERE kind = ? ORDER BY address`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to query monitored addresses: %w", err)
	}
	return out, nil
}

// MonitoredAddress returns one monitored address.
func (t *Tx) MonitoredAddress(address common.Address) (*MonitoredAddress, error) {
	var out MonitoredAddress
	err := meddler.QueryRow(t.q, &out, `SELECT * FROM monitored_addresses WHERE address = ?`, address.Hex())
	if err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// Watermarks returns the selected watermark of every address of a kind.
func (t *Tx) Watermarks(kind Kind, purpose Purpose) ([]*AddressWatermark, error) {
	col, err := purpose.column()
	if err != nil {
		return nil, err
	}

	var out []*AddressWatermark
	query := fmt.Sprintf(`SELECT address, %s AS block FROM monitored_addresses WHERE kind = ? ORDER BY %s, address`,
		col, col)
	if err := meddler.QueryAll(t.q, &out, query, kind); err != nil {
		return nil, fmt.Errorf("failed to query watermarks: %w", err)
	}
	return out, nil
}

// AdvanceWatermark moves the watermark of addresses to toBlock, but only for rows still in
// [fromBlock-1, toBlock]. A row outside that window was changed concurrently (e.g. rewound by
// the reorg recoverer) and is left alone. It returns the number of rows updated.
func (t *Tx) AdvanceWatermark(kind Kind, purpose Purpose, addresses []common.Address,
	fromBlock, toBlock uint64) (int64, error) {
	if len(addresses) == 0 {
		return 0, nil
	}

	col, err := purpose.column()
	if err != nil {
		return 0, err
	}

	lower := internalcommon.SaturatingSub(fromBlock, 1)

	query := fmt.Sprintf(`UPDATE monitored_addresses SET %[1]s = ?
		WHERE kind = ? AND address IN %[2]s AND %[1]s >= ? AND %[1]s <= ?`, col, inClause(len(addresses)))

	args := append([]any{toBlock, kind}, hexArgs(addresses)...)
	args = append(args, lower, toBlock)

	updated, err := t.exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to advance watermark: %w", err)
	}
	return updated, nil
}

// ResetWatermarks sets every watermark of the given addresses to block.
// An empty address list resets all monitored addresses.
func (t *Tx) ResetWatermarks(addresses []common.Address, block uint64) (int64, error) {
	query := `UPDATE monitored_addresses SET tx_block_number = ?, events_block_number = ?, tokens_block_number = ?`
	args := []any{block, block, block}

	if len(addresses) > 0 {
		query += ` WHERE address IN ` + inClause(len(addresses))
		args = append(args, hexArgs(addresses)...)
	}

	updated, err := t.exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to reset watermarks: %w", err)
	}
	return updated, nil
}

// ClampWatermarks lowers every watermark at or above fromBlock down to to.
func (t *Tx) ClampWatermarks(fromBlock, to uint64) (int64, error) {
	var total int64
	for _, purpose := range AllPurposes {
		col, _ := purpose.column()
		updated, err := t.exec(fmt.Sprintf(`UPDATE monitored_addresses SET %[1]s = ? WHERE %[1]s >= ?`, col),
			to, fromBlock)
		if err != nil {
			return 0, fmt.Errorf("failed to clamp %s: %w", col, err)
		}
		total += updated
	}
	return total, nil
}

// Reindex resets the watermarks of the given addresses (all when empty) so they are scanned
// again starting at fromBlock.
func (s *Store) Reindex(ctx context.Context, addresses []common.Address, fromBlock uint64) (int64, error) {
	block := internalcommon.SaturatingSub(fromBlock, 1)

	var updated int64
	err := s.Update(ctx, func(tx *Tx) error {
		var err error
		updated, err = tx.ResetWatermarks(addresses, block)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Infow("watermarks reset", "addresses", len(addresses), "from_block", fromBlock, "updated", updated)
	return updated, nil
}
