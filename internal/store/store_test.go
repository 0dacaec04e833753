package store_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/internal/decoder"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	"github.com/goran-ethernal/SafeIndexor/internal/store/storetest"
	"github.com/stretchr/testify/require"
)

var (
	safeA = common.HexToAddress("0x00000000000000000000000000000000000005A1")
	safeB = common.HexToAddress("0x00000000000000000000000000000000000005B2")
	owner = common.HexToAddress("0x0000000000000000000000000000000000000001")
)

func u64(v uint64) *uint64 { return &v }

func blockHash(n uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(n + 0xb000))
}

func txHash(n uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(n + 0x7000))
}

// seedTx stores block n with one mined transaction and returns the transaction hash.
func seedTx(t *testing.T, tx *store.Tx, n uint64) common.Hash {
	t.Helper()

	_, err := tx.InsertBlock(&store.Block{Number: n, Hash: blockHash(n), ParentHash: blockHash(n - 1), Timestamp: n})
	require.NoError(t, err)

	hash := txHash(n)
	require.NoError(t, tx.UpsertTransaction(&store.Transaction{
		Hash:        hash,
		BlockNumber: u64(n),
		TxIndex:     u64(0),
		From:        owner,
		To:          &safeA,
		Value:       big.NewInt(0),
		Gas:         21000,
	}))
	return hash
}

func seedElement(t *testing.T, tx *store.Tx, n uint64, wallet common.Address, fn string) *store.DecodedElement {
	t.Helper()

	el := &store.DecodedElement{
		TxHash:       txHash(n),
		Source:       store.SourceTrace,
		SourceIndex:  "",
		Address:      wallet,
		FunctionName: fn,
		Arguments:    decoder.Arguments{"_threshold": "1"},
		BlockNumber:  n,
		SortKey:      "",
	}
	inserted, err := tx.InsertDecodedElement(el)
	require.NoError(t, err)
	require.True(t, inserted)
	return el
}

func TestMonitoredAddresses(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		added, err := tx.AddMonitoredAddress(safeA, store.KindSafe, 99, nil)
		require.NoError(t, err)
		require.True(t, added)

		added, err = tx.AddMonitoredAddress(safeA, store.KindSafe, 5, nil)
		require.NoError(t, err)
		require.False(t, added, "second registration is ignored")

		_, err = tx.AddMonitoredAddress(safeB, store.KindProxyFactory, 10, nil)
		return err
	}))

	safes, err := s.Read().MonitoredAddresses(store.KindSafe)
	require.NoError(t, err)
	require.Len(t, safes, 1)
	require.Equal(t, safeA, safes[0].Address)
	require.Equal(t, uint64(99), safes[0].TxBlockNumber)
	require.Equal(t, uint64(99), safes[0].TokensBlockNumber)

	_, err = s.Read().MonitoredAddress(common.HexToAddress("0x1234"))
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Read().Watermarks(store.KindSafe, store.Purpose("nope"))
	require.Error(t, err)
}

func TestAdvanceWatermark_Conditional(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		if _, err := tx.AddMonitoredAddress(safeA, store.KindSafe, 100, nil); err != nil {
			return err
		}
		_, err := tx.AddMonitoredAddress(safeB, store.KindSafe, 50, nil)
		return err
	}))

	var updated int64
	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		var err error
		updated, err = tx.AdvanceWatermark(store.KindSafe, store.PurposeTraces,
			[]common.Address{safeA, safeB}, 101, 150)
		return err
	}))
	require.Equal(t, int64(1), updated, "safeB is below from-1 and must not move")

	marks, err := s.Read().Watermarks(store.KindSafe, store.PurposeTraces)
	require.NoError(t, err)
	require.Len(t, marks, 2)
	require.Equal(t, safeB, marks[0].Address)
	require.Equal(t, uint64(50), marks[0].Block)
	require.Equal(t, safeA, marks[1].Address)
	require.Equal(t, uint64(150), marks[1].Block)

	events, err := s.Read().Watermarks(store.KindSafe, store.PurposeEvents)
	require.NoError(t, err)
	require.Equal(t, uint64(100), events[1].Block, "other purposes are independent")
}

func TestReindexAndClamp(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		if _, err := tx.AddMonitoredAddress(safeA, store.KindSafe, 200, nil); err != nil {
			return err
		}
		_, err := tx.AddMonitoredAddress(safeB, store.KindSafe, 80, nil)
		return err
	}))

	updated, err := s.Reindex(ctx, []common.Address{safeA}, 150)
	require.NoError(t, err)
	require.Equal(t, int64(1), updated)

	got, err := s.Read().MonitoredAddress(safeA)
	require.NoError(t, err)
	require.Equal(t, uint64(149), got.TxBlockNumber)
	require.Equal(t, uint64(149), got.EventsBlockNumber)

	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		_, err := tx.ClampWatermarks(100, 90)
		return err
	}))

	got, err = s.Read().MonitoredAddress(safeA)
	require.NoError(t, err)
	require.Equal(t, uint64(90), got.TxBlockNumber)
	require.Equal(t, uint64(90), got.TokensBlockNumber)

	got, err = s.Read().MonitoredAddress(safeB)
	require.NoError(t, err)
	require.Equal(t, uint64(80), got.TxBlockNumber, "watermarks below the target are untouched")

	updated, err = s.Reindex(ctx, nil, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), updated)
}

func TestTransactionsAndTraces_Idempotent(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	pending := common.HexToHash("0xfeed")
	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		inserted, err := tx.InsertBlock(&store.Block{Number: 10, Hash: blockHash(10)})
		require.NoError(t, err)
		require.True(t, inserted)

		inserted, err = tx.InsertBlock(&store.Block{Number: 10, Hash: blockHash(10)})
		require.NoError(t, err)
		require.False(t, inserted)

		require.NoError(t, tx.UpsertTransaction(&store.Transaction{Hash: pending, From: owner, Value: big.NewInt(1)}))
		require.NoError(t, tx.UpsertTransaction(&store.Transaction{
			Hash: pending, From: owner, Value: big.NewInt(1), BlockNumber: u64(10), TxIndex: u64(3), Status: u64(1),
		}))

		for range 2 {
			_, err := tx.InsertTrace(&store.Trace{
				TxHash:       pending,
				TraceAddress: "0",
				SortKey:      "0000",
				BlockNumber:  10,
				TraceType:    "call",
				CallType:     "delegatecall",
				From:         &safeA,
				Input:        []byte{0x01},
			})
			require.NoError(t, err)
		}
		return nil
	}))

	stored, err := s.Read().Transaction(pending)
	require.NoError(t, err)
	require.NotNil(t, stored.BlockNumber)
	require.Equal(t, uint64(10), *stored.BlockNumber)
	require.Equal(t, uint64(3), *stored.TxIndex)
	require.Nil(t, stored.GasUsed)

	traces, err := s.Read().TracesByTx(pending)
	require.NoError(t, err)
	require.Len(t, traces, 1)
	require.True(t, traces[0].IsDelegateCall())
	require.Equal(t, safeA, *traces[0].From)
	require.Nil(t, traces[0].To)
	require.Empty(t, traces[0].Error)
}

func TestWalletState_RebuildAfterBlockDeletion(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	var first, second *store.DecodedElement
	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		seedTx(t, tx, 1)
		seedTx(t, tx, 2)
		first = seedElement(t, tx, 1, safeA, decoder.FnSetup)
		second = seedElement(t, tx, 2, safeA, decoder.FnChangeThreshold)

		for i, el := range []*store.DecodedElement{first, second} {
			status := &store.WalletStatus{
				Address:          safeA,
				DecodedElementID: el.ID,
				Owners:           []common.Address{owner},
				Threshold:        uint64(i + 1),
				EnabledModules:   []common.Address{},
				TxHash:           el.TxHash,
				BlockNumber:      el.BlockNumber,
			}
			require.NoError(t, tx.InsertSnapshot(status))
			require.NoError(t, tx.SaveLastStatus(status))
			require.NoError(t, tx.MarkProcessed(el.ID))
		}
		return nil
	}))

	last, err := s.Read().LastStatus(safeA)
	require.NoError(t, err)
	require.Equal(t, uint64(2), last.Threshold)

	// deleting block 2 drops the second element, its snapshot and the last status
	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		deleted, err := tx.DeleteBlocksFrom(2)
		require.Equal(t, int64(1), deleted)
		return err
	}))

	_, err = s.Read().LastStatus(safeA)
	require.ErrorIs(t, err, store.ErrNotFound)

	rebuilt, err := s.RebuildLastStatuses(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), rebuilt)

	last, err = s.Read().LastStatus(safeA)
	require.NoError(t, err)
	require.Equal(t, uint64(1), last.Threshold)
	require.Equal(t, first.ID, last.DecodedElementID)
	require.Equal(t, []common.Address{owner}, last.Owners)

	snapshots, err := s.Read().Snapshots(safeA)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
}

func TestMultisigTransactions_GetOrCreate(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	safeTxHash := common.HexToHash("0xabc")
	failed := true

	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		mined := seedTx(t, tx, 5)

		mtx := &store.MultisigTransaction{
			SafeTxHash: safeTxHash,
			Safe:       safeA,
			To:         owner,
			Value:      big.NewInt(1),
			SafeTxGas:  big.NewInt(0),
			BaseGas:    big.NewInt(0),
			GasPrice:   big.NewInt(0),
			Nonce:      0,
		}
		created, err := tx.GetOrCreateMultisigTx(mtx)
		require.NoError(t, err)
		require.True(t, created)

		withTx := *mtx
		withTx.EthereumTxHash = &mined
		withTx.Failed = &failed
		created, err = tx.GetOrCreateMultisigTx(&withTx)
		require.NoError(t, err)
		require.False(t, created)

		for range 2 {
			_, err := tx.GetOrCreateConfirmation(&store.MultisigConfirmation{
				SafeTxHash:    safeTxHash,
				Owner:         owner,
				SignatureType: store.SignatureTypeApprovedHash,
			})
			require.NoError(t, err)
		}
		return nil
	}))

	stored, err := s.Read().MultisigTx(safeTxHash)
	require.NoError(t, err)
	require.NotNil(t, stored.EthereumTxHash)
	require.Equal(t, txHash(5), *stored.EthereumTxHash)
	require.NotNil(t, stored.Failed)
	require.True(t, *stored.Failed)
	require.Equal(t, big.NewInt(1), stored.Value)

	confirmations, err := s.Read().Confirmations(safeTxHash)
	require.NoError(t, err)
	require.Len(t, confirmations, 1)

	// unmined transactions of other wallets survive, mined ones are kept
	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		_, err := tx.GetOrCreateMultisigTx(&store.MultisigTransaction{
			SafeTxHash: common.HexToHash("0xdef"), Safe: safeA, To: owner, Value: big.NewInt(0),
			SafeTxGas: big.NewInt(0), BaseGas: big.NewInt(0), GasPrice: big.NewInt(0), Nonce: 1,
		})
		require.NoError(t, err)

		deleted, err := tx.DeleteUnminedMultisigTxs(safeA)
		require.Equal(t, int64(1), deleted)
		return err
	}))

	txs, err := s.Read().MultisigTxsBySafe(safeA)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, safeTxHash, txs[0].SafeTxHash)
}

func TestReprocess(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		seedTx(t, tx, 1)
		seedTx(t, tx, 2)
		for _, el := range []*store.DecodedElement{
			seedElement(t, tx, 1, safeA, decoder.FnSetup),
			seedElement(t, tx, 2, safeB, decoder.FnSetup),
		} {
			status := &store.WalletStatus{Address: el.Address, DecodedElementID: el.ID, TxHash: el.TxHash}
			require.NoError(t, tx.InsertSnapshot(status))
			require.NoError(t, tx.SaveLastStatus(status))
			require.NoError(t, tx.MarkProcessed(el.ID))
		}
		return nil
	}))

	reset, err := s.Reprocess(ctx, []common.Address{safeA})
	require.NoError(t, err)
	require.Equal(t, int64(1), reset)

	wallets, err := s.Read().PendingWallets()
	require.NoError(t, err)
	require.Equal(t, []common.Address{safeA}, wallets)

	pending, err := s.Read().PendingDecodedElements(safeA, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, safeA, pending[0].Address)
	require.Equal(t, "1", pending[0].Arguments["_threshold"])

	_, err = s.Read().LastStatus(safeA)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Read().LastStatus(safeB)
	require.NoError(t, err)

	reset, err = s.Reprocess(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), reset)
}

func TestPendingDecodedElements_Order(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		seedTx(t, tx, 3)
		seedTx(t, tx, 1)
		for _, el := range []*store.DecodedElement{
			{TxHash: txHash(3), Source: store.SourceTrace, SourceIndex: "0", Address: safeA, FunctionName: "b",
				Arguments: decoder.Arguments{}, BlockNumber: 3, SortKey: "0000"},
			{TxHash: txHash(1), Source: store.SourceTrace, SourceIndex: "0,1", Address: safeA, FunctionName: "a2",
				Arguments: decoder.Arguments{}, BlockNumber: 1, SortKey: "0000,0001"},
			{TxHash: txHash(1), Source: store.SourceTrace, SourceIndex: "", Address: safeA, FunctionName: "a1",
				Arguments: decoder.Arguments{}, BlockNumber: 1, SortKey: ""},
		} {
			if _, err := tx.InsertDecodedElement(el); err != nil {
				return err
			}
		}
		return nil
	}))

	pending, err := s.Read().PendingDecodedElements(safeA, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	require.Equal(t, []string{"a1", "a2", "b"},
		[]string{pending[0].FunctionName, pending[1].FunctionName, pending[2].FunctionName})

	count, err := s.Read().CountPending()
	require.NoError(t, err)
	require.Equal(t, int64(3), count)

	err = s.Read().MarkProcessed(999)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestReplayErrors(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	var failed, blocked, healthy *store.DecodedElement
	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		for n := uint64(1); n <= 3; n++ {
			seedTx(t, tx, n)
		}
		failed = seedElement(t, tx, 1, safeA, decoder.FnSetup)
		blocked = seedElement(t, tx, 2, safeA, decoder.FnChangeThreshold)
		healthy = seedElement(t, tx, 3, safeB, decoder.FnSetup)
		return nil
	}))

	wallets, err := s.Read().PendingWallets()
	require.NoError(t, err)
	require.Equal(t, []common.Address{safeA, safeB}, wallets)

	// the per wallet limit keeps one wallet from taking the whole batch
	pending, err := s.Read().PendingDecodedElements(safeA, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, failed.ID, pending[0].ID)

	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		return tx.MarkReplayFailed(failed.ID, "invalid setup arguments")
	}))
	require.ErrorIs(t, s.Read().MarkReplayFailed(999, "x"), store.ErrNotFound)

	wallets, err = s.Read().PendingWallets()
	require.NoError(t, err)
	require.Equal(t, []common.Address{safeB}, wallets)

	pending, err = s.Read().PendingDecodedElements(safeA, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, blocked.ID, pending[0].ID)

	elements, err := s.Read().DecodedElementsByAddress(safeA)
	require.NoError(t, err)
	require.Equal(t, "invalid setup arguments", *elements[0].ReplayError)
	require.False(t, elements[0].Processed)

	status, err := s.Read().Status()
	require.NoError(t, err)
	require.Equal(t, int64(1), status.FailedElements)
	require.Equal(t, int64(3), status.PendingElements)

	// reprocessing a wallet clears its failures
	_, err = s.Reprocess(ctx, []common.Address{safeA})
	require.NoError(t, err)
	wallets, err = s.Read().PendingWallets()
	require.NoError(t, err)
	require.Equal(t, []common.Address{safeA, safeB}, wallets)

	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		if err := tx.MarkReplayFailed(healthy.ID, "boom"); err != nil {
			return err
		}
		cleared, err := tx.ClearReplayErrors()
		require.Equal(t, int64(1), cleared)
		return err
	}))

	status, err = s.Read().Status()
	require.NoError(t, err)
	require.Zero(t, status.FailedElements)
}

func TestUpdate_RollsBackOnError(t *testing.T) {
	s := storetest.New(t)
	boom := errors.New("boom")

	err := s.Update(context.Background(), func(tx *store.Tx) error {
		if _, err := tx.AddMonitoredAddress(safeA, store.KindSafe, 1, nil); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Read().MonitoredAddress(safeA)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestStatusAndBlocks(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		seedTx(t, tx, 7)
		seedTx(t, tx, 8)
		seedElement(t, tx, 8, safeA, decoder.FnSetup)
		_, err := tx.AddMonitoredAddress(safeA, store.KindSafe, 41, nil)
		require.NoError(t, err)
		_, err = tx.ConfirmBlocks([]uint64{7})
		return err
	}))

	status, err := s.Read().Status()
	require.NoError(t, err)
	require.Equal(t, int64(1), status.MonitoredSafes)
	require.Equal(t, int64(1), status.UnconfirmedBlocks)
	require.Equal(t, int64(1), status.PendingElements)
	require.Equal(t, int64(41), status.MinWatermarks[string(store.PurposeTraces)])
	require.NotNil(t, status.LatestBlock)
	require.Equal(t, uint64(8), *status.LatestBlock)

	unconfirmed, err := s.Read().UnconfirmedBlocks(100, 10)
	require.NoError(t, err)
	require.Len(t, unconfirmed, 1)
	require.Equal(t, uint64(8), unconfirmed[0].Number)
	require.Equal(t, blockHash(8), unconfirmed[0].Hash)

	since, err := s.Read().BlocksSince(8, 10)
	require.NoError(t, err)
	require.Len(t, since, 1)
	require.Equal(t, uint64(8), since[0].Number)
}

func TestTokenTransfers(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		hash := seedTx(t, tx, 4)
		for range 2 {
			_, err := tx.InsertTokenTransfer(&store.TokenTransfer{
				TxHash: hash, LogIndex: 2, BlockNumber: 4, TokenAddress: common.HexToAddress("0x70c"),
				From: owner, To: safeA, TokenID: big.NewInt(9), Kind: store.TokenKindERC721,
			})
			require.NoError(t, err)
		}
		return nil
	}))

	transfers, err := s.Read().TokenTransfers(safeA)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	require.Nil(t, transfers[0].Value)
	require.Equal(t, big.NewInt(9), transfers[0].TokenID)
}
