package common

const (
	ComponentTraceIndexer        = "trace-indexer"
	ComponentSafeEventsIndexer   = "safe-events-indexer"
	ComponentProxyFactoryIndexer = "proxy-factory-indexer"
	ComponentTokenIndexer        = "token-indexer"
	ComponentStateProcessor      = "state-processor"
	ComponentReorgDetector       = "reorg-detector"
	ComponentScheduler           = "scheduler"
	ComponentStore               = "store"
	ComponentMaintenance         = "maintenance"
	ComponentRPC                 = "rpc"
	ComponentAPI                 = "api"
)

var AllComponents = map[string]struct{}{
	ComponentTraceIndexer:        {},
	ComponentSafeEventsIndexer:   {},
	ComponentProxyFactoryIndexer: {},
	ComponentTokenIndexer:        {},
	ComponentStateProcessor:      {},
	ComponentReorgDetector:       {},
	ComponentScheduler:           {},
	ComponentStore:               {},
	ComponentMaintenance:         {},
	ComponentRPC:                 {},
	ComponentAPI:                 {},
}
