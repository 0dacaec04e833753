package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/SafeIndexor/internal/config"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	"github.com/stretchr/testify/require"
)

var cliSafe = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

// writeConfig points configPath at a minimal configuration using a database in a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rpc:
  url: "http://localhost:8545"
db:
  path: "`+filepath.Join(dir, "indexer.sqlite")+`"
safe:
  start_block: 100
  addresses:
    - "`+cliSafe.Hex()+`"
`), 0o600))

	configPath = path
	t.Cleanup(func() { configPath = "config.yaml" })
	return path
}

func TestConfigSchemaCommand(t *testing.T) {
	var out bytes.Buffer
	configSchemaCmd.SetOut(&out)
	t.Cleanup(func() { configSchemaCmd.SetOut(nil) })

	require.NoError(t, configSchemaCmd.RunE(configSchemaCmd, nil))

	require.Contains(t, out.String(), "SafeIndexor configuration")
	require.Contains(t, out.String(), `"rpc"`)
	require.Contains(t, out.String(), `"proxy_factories"`)
}

func TestReindexAndReprocessCommands(t *testing.T) {
	path := writeConfig(t)

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	st, err := openStorage(cfg)
	require.NoError(t, err)
	a := &app{cfg: cfg, log: componentLogger(cfg, "test"), storage: st}
	require.NoError(t, a.registerAddresses(context.Background()))

	addr, err := st.store.Read().MonitoredAddress(cliSafe)
	require.NoError(t, err)
	require.Equal(t, uint64(99), addr.TxBlockNumber)

	// registering again keeps the existing watermarks
	require.NoError(t, st.store.Update(context.Background(), func(tx *store.Tx) error {
		_, err := tx.ResetWatermarks(nil, 500)
		return err
	}))
	require.NoError(t, a.registerAddresses(context.Background()))
	addr, err = st.store.Read().MonitoredAddress(cliSafe)
	require.NoError(t, err)
	require.Equal(t, uint64(500), addr.EventsBlockNumber)
	require.NoError(t, st.Close())

	fromBlock = 42
	t.Cleanup(func() { fromBlock = 0 })
	require.NoError(t, reindexCmd.RunE(reindexCmd, []string{cliSafe.Hex()}))
	require.NoError(t, reprocessCmd.RunE(reprocessCmd, nil))

	st, err = openStorage(cfg)
	require.NoError(t, err)
	defer st.Close()

	addr, err = st.store.Read().MonitoredAddress(cliSafe)
	require.NoError(t, err)
	require.Equal(t, uint64(41), addr.TxBlockNumber)
	require.Equal(t, uint64(41), addr.EventsBlockNumber)
	require.Equal(t, uint64(41), addr.TokensBlockNumber)

	require.ErrorContains(t, reindexCmd.RunE(reindexCmd, []string{"not-an-address"}), "invalid address")
}
