package tracker

import (
	"strconv"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func key(i int) Key {
	return Key{
		TxHash:    common.BigToHash(common.Big1),
		BlockHash: common.HexToHash("0xb10c"),
		Index:     strconv.Itoa(i),
	}
}

func TestAlreadyProcessed_MarkAndSeen(t *testing.T) {
	tr := New(10)

	require.False(t, tr.Seen(key(1)))
	tr.Mark(key(1))
	require.True(t, tr.Seen(key(1)))

	other := key(1)
	other.BlockHash = common.HexToHash("0xbeef")
	require.False(t, tr.Seen(other), "same tx in another block is a different element")
}

func TestAlreadyProcessed_EvictsOldestInserted(t *testing.T) {
	tr := New(3)

	tr.Mark(key(1))
	tr.Mark(key(2))
	tr.Mark(key(3))

	// lookups and re-marks do not refresh a key
	require.True(t, tr.Seen(key(1)))
	tr.Mark(key(1))

	tr.Mark(key(4))

	require.Equal(t, 3, tr.Len())
	require.False(t, tr.Seen(key(1)))
	require.True(t, tr.Seen(key(2)))
	require.True(t, tr.Seen(key(3)))
	require.True(t, tr.Seen(key(4)))
}

func TestAlreadyProcessed_DefaultSizeAndReset(t *testing.T) {
	tr := New(0)

	for i := range DefaultSize + 5 {
		tr.Mark(key(i))
	}
	require.Equal(t, DefaultSize, tr.Len())

	tr.Reset()
	require.Zero(t, tr.Len())
}
