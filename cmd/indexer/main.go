package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	internalcommon "github.com/goran-ethernal/SafeIndexor/internal/common"
	"github.com/goran-ethernal/SafeIndexor/internal/config"
	"github.com/goran-ethernal/SafeIndexor/internal/migrations"
	pkgconfig "github.com/goran-ethernal/SafeIndexor/pkg/config"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"
	banner  = `
╔═══════════════════════════════════════════╗
║          SafeIndexor v%s               ║
║   Safe Multisig Indexing and Replay       ║
╚═══════════════════════════════════════════╝
`
)

var (
	configPath    string
	fromBlock     uint64
	rollbackSteps int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "indexer",
	Short: "SafeIndexor - Safe multisig indexing service",
	Long: `SafeIndexor scans the chain for Safe wallet activity, decodes wallet calls and events,
replays them into versioned wallet snapshots and repairs the indexed data after reorgs.`,
	Version: version,
	RunE:    runIndexer,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the indexing service",
	RunE:  runIndexer,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if rollbackSteps > 0 {
			reverted, err := migrations.Rollback(componentLogger(cfg, internalcommon.ComponentStore),
				cfg.DB.Path, rollbackSteps)
			if err != nil {
				return fmt.Errorf("failed to roll back migrations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migrations of %s\n", reverted, cfg.DB.Path)
			return nil
		}
		if err := migrations.RunMigrations(cfg.DB.Path); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database %s is up to date\n", cfg.DB.Path)
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex [address...]",
	Short: "Scan addresses again starting at a block",
	Long: `Reset the watermarks of the given addresses (every monitored address when none is given)
so the running service scans them again starting at --from-block.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorage(cmd.Context(), args, func(ctx context.Context, st *storage, addrs []common.Address) error {
			updated, err := st.store.Reindex(ctx, addrs, fromBlock)
			if err != nil {
				return err
			}
			fmt.Printf("Reset watermarks of %d addresses to block %d\n", updated, fromBlock)
			return nil
		})
	},
}

var reprocessCmd = &cobra.Command{
	Use:   "reprocess [address...]",
	Short: "Replay wallet state from the decoded elements",
	Long: `Delete the snapshots, last status and derived transactions of the given wallets (every wallet
when none is given) so the running service replays them from their first decoded element.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorage(cmd.Context(), args, func(ctx context.Context, st *storage, addrs []common.Address) error {
			reset, err := st.store.Reprocess(ctx, addrs)
			if err != nil {
				return err
			}
			fmt.Printf("Marked %d decoded elements for replay\n", reset)
			return nil
		})
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "config-schema",
	Short: "Print the JSON schema of the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		reflector := &jsonschema.Reflector{FieldNameTag: "json"}
		schema := reflector.Reflect(&pkgconfig.Config{})
		schema.Title = "SafeIndexor configuration"

		out, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	migrateCmd.Flags().IntVar(&rollbackSteps, "rollback", 0, "revert the last N migrations instead of applying")
	reindexCmd.Flags().Uint64Var(&fromBlock, "from-block", 0, "first block to scan again")

	rootCmd.AddCommand(runCmd, migrateCmd, reindexCmd, reprocessCmd, configSchemaCmd)
}

func runIndexer(cmd *cobra.Command, args []string) error {
	fmt.Printf(banner, version)

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := componentLogger(cfg, internalcommon.ComponentScheduler)
	log.Info("Starting SafeIndexor...")

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	log.Infow("indexer running",
		"mode", cfg.Safe.Mode,
		"rpc", cfg.RPC.URL,
		"db", cfg.DB.Path,
		"lock_backend", cfg.Lock.Backend,
	)

	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("indexer stopped: %w", err)
	}

	log.Info("SafeIndexor stopped")
	return nil
}

// withStorage loads the configuration, opens the migrated database and calls fn with the
// parsed addresses.
func withStorage(ctx context.Context, args []string,
	fn func(ctx context.Context, st *storage, addrs []common.Address) error) error {
	addrs := make([]common.Address, 0, len(args))
	for _, arg := range args {
		if !common.IsHexAddress(arg) {
			return fmt.Errorf("invalid address %q", arg)
		}
		addrs = append(addrs, common.HexToAddress(arg))
	}

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, st, addrs)
}
