package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	internalcommon "github.com/goran-ethernal/SafeIndexor/internal/common"
	"github.com/goran-ethernal/SafeIndexor/internal/db"
	"github.com/goran-ethernal/SafeIndexor/internal/decoder"
	"github.com/goran-ethernal/SafeIndexor/internal/finder"
	"github.com/goran-ethernal/SafeIndexor/internal/indexer"
	"github.com/goran-ethernal/SafeIndexor/internal/lock"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/internal/metrics"
	"github.com/goran-ethernal/SafeIndexor/internal/migrations"
	"github.com/goran-ethernal/SafeIndexor/internal/processor"
	"github.com/goran-ethernal/SafeIndexor/internal/reorg"
	"github.com/goran-ethernal/SafeIndexor/internal/rpc"
	"github.com/goran-ethernal/SafeIndexor/internal/safe"
	"github.com/goran-ethernal/SafeIndexor/internal/scheduler"
	"github.com/goran-ethernal/SafeIndexor/internal/store"
	"github.com/goran-ethernal/SafeIndexor/internal/tokens"
	"github.com/goran-ethernal/SafeIndexor/internal/tracker"
	"github.com/goran-ethernal/SafeIndexor/pkg/api"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
	pkgindexer "github.com/goran-ethernal/SafeIndexor/pkg/indexer"
	"golang.org/x/sync/errgroup"
)

// indexerTasks are cancelled when a reorg rewinds the data they are working on.
var indexerTasks = []string{
	scheduler.TaskIndexSafes,
	scheduler.TaskIndexProxyFactories,
	scheduler.TaskIndexTokens,
	scheduler.TaskProcessDecoded,
}

// storage is the migrated database together with the store built on it.
type storage struct {
	database    *sql.DB
	maintenance db.Maintenance
	store       *store.Store
}

func openStorage(cfg *config.Config) (*storage, error) {
	if err := migrations.RunMigrations(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	database, err := db.NewSQLiteDBFromConfig(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	maintenance := db.NewMaintenanceCoordinator(
		cfg.DB.Path,
		database,
		cfg.Maintenance,
		componentLogger(cfg, internalcommon.ComponentMaintenance),
	)

	return &storage{
		database:    database,
		maintenance: maintenance,
		store:       store.New(database, maintenance, componentLogger(cfg, internalcommon.ComponentStore)),
	}, nil
}

func (s *storage) Close() error {
	return s.database.Close()
}

// app holds every long lived component of the indexing service.
type app struct {
	cfg *config.Config
	log *logger.Logger

	storage   *storage
	client    *rpc.Client
	registry  *decoder.Registry
	trackers  []*tracker.AlreadyProcessed
	detector  *reorg.ReorgDetector
	state     *safe.StateProcessor
	locker    lock.Locker
	scheduler *scheduler.Scheduler

	safes          pkgindexer.Indexer
	proxyFactories pkgindexer.Indexer
	tokenTransfers pkgindexer.Indexer
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg: cfg,
		log: componentLogger(cfg, internalcommon.ComponentScheduler),
	}

	var err error
	if a.storage, err = openStorage(cfg); err != nil {
		return nil, err
	}

	a.client, err = rpc.NewClient(ctx, cfg.RPC, componentLogger(cfg, internalcommon.ComponentRPC))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create RPC client: %w", err)
	}

	chainID := cfg.Safe.ChainID
	if chainID == 0 {
		if chainID, err = a.client.ChainID(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to get chain id: %w", err)
		}
	}

	if a.registry, err = decoder.NewRegistry(); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create decoder registry: %w", err)
	}

	if a.locker, err = lock.New(cfg.Lock, componentLogger(cfg, internalcommon.ComponentScheduler)); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create task locker: %w", err)
	}

	st := a.storage.store
	a.scheduler = scheduler.New(a.locker, componentLogger(cfg, internalcommon.ComponentScheduler))
	a.state = safe.NewStateProcessor(st, a.registry, safe.NewVersions(cfg.Safe), chainID, cfg.Processor,
		componentLogger(cfg, internalcommon.ComponentStateProcessor))

	a.detector = reorg.NewReorgDetector(st, a.client, cfg.Reorg,
		componentLogger(cfg, internalcommon.ComponentReorgDetector))
	a.detector.OnReorg(func(uint64) {
		a.scheduler.Cancel(indexerTasks...)
		for _, t := range a.trackers {
			t.Reset()
		}
	})

	a.buildIndexers()

	return a, nil
}

func (a *app) buildIndexers() {
	cfg, st := a.cfg, a.storage.store

	if cfg.Safe.Mode == config.SafeModeEvents {
		log := componentLogger(cfg, internalcommon.ComponentSafeEventsIndexer)
		a.safes = indexer.New[types.Log](
			internalcommon.ComponentSafeEventsIndexer, store.KindSafe, store.PurposeEvents,
			cfg.Indexers.SafeEvents, st, a.client,
			finder.NewEventFinder(internalcommon.ComponentSafeEventsIndexer, a.client,
				a.registry.Topics(decoder.SafeEventNames()...), finder.ByEmitter, cfg.Indexers.SafeEvents, log),
			processor.NewSafeEventsProcessor(a.client, a.registry, a.newTracker(), log),
			log,
		)
	} else {
		log := componentLogger(cfg, internalcommon.ComponentTraceIndexer)
		cache := finder.NewTxCache(0)
		a.safes = indexer.New[common.Hash](
			internalcommon.ComponentTraceIndexer, store.KindSafe, store.PurposeTraces,
			cfg.Indexers.Traces, st, a.client,
			finder.NewTraceFinder(internalcommon.ComponentTraceIndexer, a.client, cache, cfg.Indexers.Traces, log),
			processor.NewInternalTxProcessor(a.client, cache, a.registry, a.newTracker(), log),
			log,
		)
	}

	factoryLog := componentLogger(cfg, internalcommon.ComponentProxyFactoryIndexer)
	a.proxyFactories = indexer.New[types.Log](
		internalcommon.ComponentProxyFactoryIndexer, store.KindProxyFactory, store.PurposeEvents,
		cfg.Indexers.ProxyFactory, st, a.client,
		finder.NewEventFinder(internalcommon.ComponentProxyFactoryIndexer, a.client,
			a.registry.Topics(decoder.EvProxyCreation), finder.ByEmitter, cfg.Indexers.ProxyFactory, factoryLog),
		processor.NewProxyFactoryProcessor(a.client, a.registry, a.newTracker(), factoryLog),
		factoryLog,
	)

	tokenLog := componentLogger(cfg, internalcommon.ComponentTokenIndexer)
	classifier := tokens.NewClassifier(a.client, cfg.Processor.TokenCacheSize,
		cfg.Processor.TokenCacheTTL.Duration, tokenLog)
	a.tokenTransfers = indexer.New[types.Log](
		internalcommon.ComponentTokenIndexer, store.KindSafe, store.PurposeTokens,
		cfg.Indexers.Tokens, st, a.client,
		finder.NewEventFinder(internalcommon.ComponentTokenIndexer, a.client,
			a.registry.Topics(decoder.EvTransfer), finder.ByTransferParty, cfg.Indexers.Tokens, tokenLog),
		processor.NewTokenTransferProcessor(a.client, a.registry, classifier, a.newTracker(), tokenLog),
		tokenLog,
	)
}

// newTracker creates the already processed tracker of one indexer. Trackers are dropped
// together after a reorg.
func (a *app) newTracker() *tracker.AlreadyProcessed {
	t := tracker.New(a.cfg.Processor.TrackerSize)
	a.trackers = append(a.trackers, t)
	return t
}

// registerAddresses adds the wallets and factories listed in the configuration. Addresses that
// are already monitored keep their watermarks.
func (a *app) registerAddresses(ctx context.Context) error {
	block := internalcommon.SaturatingSub(a.cfg.Safe.StartBlock, 1)

	var added int
	err := a.storage.store.Update(ctx, func(tx *store.Tx) error {
		groups := []struct {
			kind      store.Kind
			addresses []string
		}{
			{store.KindSafe, a.cfg.Safe.Addresses},
			{store.KindProxyFactory, a.cfg.Safe.ProxyFactories},
		}
		for _, g := range groups {
			for _, raw := range g.addresses {
				ok, err := tx.AddMonitoredAddress(common.HexToAddress(raw), g.kind, block, nil)
				if err != nil {
					return err
				}
				if ok {
					added++
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to register configured addresses: %w", err)
	}

	if added > 0 {
		a.log.Infow("registered configured addresses", "added", added, "start_block", a.cfg.Safe.StartBlock)
	}
	return nil
}

func (a *app) registerTasks() {
	sc := a.cfg.Scheduler

	if !a.safeIndexerConfig().Disabled {
		a.scheduler.Register(scheduler.TaskIndexSafes, sc.IndexSafes, a.indexTask(a.safes))
	}
	if !a.cfg.Indexers.ProxyFactory.Disabled {
		a.scheduler.Register(scheduler.TaskIndexProxyFactories, sc.IndexProxyFactories,
			a.indexTask(a.proxyFactories))
	}
	if !a.cfg.Indexers.Tokens.Disabled {
		a.scheduler.Register(scheduler.TaskIndexTokens, sc.IndexTokens, a.indexTask(a.tokenTransfers))
	}

	a.scheduler.Register(scheduler.TaskProcessDecoded, sc.ProcessDecoded, func(ctx context.Context) error {
		_, err := a.state.ProcessPending(ctx)
		return err
	})

	a.scheduler.Register(scheduler.TaskCheckReorgs, sc.CheckReorgs, func(ctx context.Context) error {
		err := a.detector.Check(ctx)
		var reorgErr *reorg.ReorgDetectedError
		if errors.As(err, &reorgErr) {
			a.log.Warnw("reorg recovered", "first_reorg_block", reorgErr.FirstReorgBlock,
				"rewind_to", reorgErr.RewindTo)
			return nil
		}
		return err
	})

	if m := a.cfg.Maintenance; m != nil && m.Enabled {
		taskCfg := config.TaskConfig{
			Interval:    m.CheckInterval,
			SoftTimeout: internalcommon.NewDuration(m.CheckInterval.Duration),
			LockTTL:     internalcommon.NewDuration(2 * m.CheckInterval.Duration),
		}
		a.scheduler.Register(scheduler.TaskDBMaintenance, taskCfg, a.storage.maintenance.RunMaintenance)
	}
}

func (a *app) safeIndexerConfig() config.IndexerConfig {
	if a.cfg.Safe.Mode == config.SafeModeEvents {
		return a.cfg.Indexers.SafeEvents
	}
	return a.cfg.Indexers.Traces
}

func (a *app) indexTask(ix pkgindexer.Indexer) scheduler.TaskFunc {
	return func(ctx context.Context) error {
		stored, err := ix.Start(ctx)
		if stored > 0 {
			a.log.Debugw("indexer run finished", "indexer", ix.Name(), "stored", stored)
		}
		return err
	}
}

// Run registers the configured addresses and serves the scheduler, the metrics endpoint and
// the operator API until ctx is cancelled.
func (a *app) Run(ctx context.Context) error {
	if err := a.registerAddresses(ctx); err != nil {
		return err
	}

	if m := a.cfg.Maintenance; m != nil && m.Enabled && m.VacuumOnStartup {
		if err := a.storage.maintenance.RunMaintenance(ctx); err != nil {
			a.log.Warnw("startup maintenance failed", "error", err)
		}
	}

	a.registerTasks()

	g, gctx := errgroup.WithContext(ctx)

	if a.cfg.Metrics != nil && a.cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(a.cfg.Metrics, a.log)
		g.Go(func() error {
			return metricsServer.Serve(gctx)
		})
	}

	if a.cfg.API != nil && a.cfg.API.Enabled {
		server := api.NewServer(a.cfg.API, a.storage.store, a.client,
			componentLogger(a.cfg, internalcommon.ComponentAPI))
		g.Go(func() error {
			return server.Start(gctx)
		})
	}

	g.Go(func() error {
		return a.scheduler.Start(gctx)
	})

	return g.Wait()
}

// Close releases every component that was created.
func (a *app) Close() {
	if a.detector != nil {
		_ = a.detector.Close()
	}
	if a.locker != nil {
		if err := a.locker.Close(); err != nil {
			a.log.Warnw("failed to close task locker", "error", err)
		}
	}
	if a.client != nil {
		a.client.Close()
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.log.Warnw("failed to close database", "error", err)
		}
	}
}

func componentLogger(cfg *config.Config, component string) *logger.Logger {
	if cfg.Logging == nil {
		return logger.NewComponentLoggerFromConfig(component, nil)
	}
	return logger.NewComponentLoggerFromConfig(component, cfg.Logging)
}
