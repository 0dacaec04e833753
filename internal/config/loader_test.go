package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile_Examples(t *testing.T) {
	for _, path := range []string{
		"../../config.example.yaml",
		"../../config.example.json",
		"../../config.example.toml",
	} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			cfg, err := LoadFromFile(path)
			require.NoError(t, err)

			require.Equal(t, "http://localhost:8545", cfg.RPC.URL)
			require.Equal(t, 30*time.Second, cfg.RPC.Timeout.Duration)
			require.NotNil(t, cfg.RPC.Retry)
			require.Equal(t, 3, cfg.RPC.Retry.MaxAttempts)
			require.Equal(t, "./data/safe-indexor.sqlite", cfg.DB.Path)
			require.Equal(t, "WAL", cfg.DB.JournalMode)
			require.Len(t, cfg.Safe.Addresses, 1)
			require.Len(t, cfg.Safe.ProxyFactories, 1)
			require.NotEmpty(t, cfg.Safe.MasterCopies)
			require.Equal(t, []string{"1.0.0", "1.3.0"}, cfg.Safe.BreakingVersions)
			require.Equal(t, uint64(10), cfg.Reorg.RewindMargin)
			require.Equal(t, 40000, cfg.Processor.TrackerSize)
			require.Equal(t, 24*time.Hour, cfg.Processor.TokenCacheTTL.Duration)
			require.Equal(t, config.LockBackendMemory, cfg.Lock.Backend)
			require.NotZero(t, cfg.Scheduler.CheckReorgs.Interval.Duration)
			require.NotNil(t, cfg.Metrics)
			require.True(t, cfg.Metrics.Enabled)
		})
	}
}

func TestLoadFromFile_UnsupportedFormat(t *testing.T) {
	_, err := LoadFromFile("config.txt")
	require.ErrorContains(t, err, "unsupported config file format")
}

func TestLoadFromFile_ExpandsEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SAFE_INDEXOR_TEST_DB", filepath.Join(dir, "from-env.sqlite"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SAFE_INDEXOR_TEST_RPC=http://node.internal:8545\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SAFE_INDEXOR_TEST_RPC") })

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rpc:
  url: "${SAFE_INDEXOR_TEST_RPC}"
db:
  path: "${SAFE_INDEXOR_TEST_DB}"
`), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "http://node.internal:8545", cfg.RPC.URL)
	require.Equal(t, filepath.Join(dir, "from-env.sqlite"), cfg.DB.Path)
	require.Equal(t, config.SafeModeTraces, cfg.Safe.Mode)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing rpc url",
			content: "db:\n  path: x.sqlite\n",
			errMsg:  "rpc.url is required",
		},
		{
			name:    "unknown safe mode",
			content: "rpc:\n  url: http://x\ndb:\n  path: x.sqlite\nsafe:\n  mode: blocks\n",
			errMsg:  "safe.mode",
		},
		{
			name:    "bad master copy version",
			content: "rpc:\n  url: http://x\ndb:\n  path: x.sqlite\nsafe:\n  master_copies:\n    - address: \"0xd9Db270c1B5E3Bd161E8c8503c55cEABeE709552\"\n      version: latest\n",
			errMsg:  "invalid version",
		},
		{
			name:    "redis lock without url",
			content: "rpc:\n  url: http://x\ndb:\n  path: x.sqlite\nlock:\n  backend: redis\n",
			errMsg:  "lock.redis_url",
		},
		{
			name:    "misspelled option",
			content: "rpc:\n  url: http://x\ndb:\n  path: x.sqlite\nsafe:\n  start_blok: 5\n",
			errMsg:  "start_blok",
		},
		{
			name:    "unknown log component",
			content: "rpc:\n  url: http://x\ndb:\n  path: x.sqlite\nlogging:\n  component_levels:\n    downloader: debug\n",
			errMsg:  "unknown component",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := LoadFromFile(path)
			require.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestLoadFromFile_UnknownKeysPerFormat(t *testing.T) {
	files := map[string]string{
		"config.json": `{"rpc": {"url": "http://x"}, "db": {"path": "x.sqlite"}, "extra": 1}`,
		"config.toml": "extra = 1\n[rpc]\nurl = \"http://x\"\n[db]\npath = \"x.sqlite\"\n",
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			_, err := LoadFromFile(path)
			require.ErrorContains(t, err, "extra")
		})
	}
}
