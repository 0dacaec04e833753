package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	internalcommon "github.com/goran-ethernal/SafeIndexor/internal/common"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"golang.org/x/mod/semver"
)

const (
	SafeModeTraces = "traces"
	SafeModeEvents = "events"

	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

// Config represents the complete configuration for the SafeIndexor.
type Config struct {
	// RPC contains the node connection settings
	RPC RPCConfig `yaml:"rpc" json:"rpc" toml:"rpc"`

	// DB contains database configuration
	DB DatabaseConfig `yaml:"db" json:"db" toml:"db"`

	// Maintenance contains optional database maintenance settings
	Maintenance *MaintenanceConfig `yaml:"maintenance,omitempty" json:"maintenance,omitempty" toml:"maintenance,omitempty"`

	// Safe describes which wallets and contracts are indexed and how their state is derived
	Safe SafeConfig `yaml:"safe" json:"safe" toml:"safe"`

	// Indexers contains the scan settings of every indexer
	Indexers IndexersConfig `yaml:"indexers" json:"indexers" toml:"indexers"`

	// Processor contains the element and state processing settings
	Processor ProcessorConfig `yaml:"processor" json:"processor" toml:"processor"`

	// Reorg contains reorg detection settings
	Reorg ReorgConfig `yaml:"reorg" json:"reorg" toml:"reorg"`

	// Scheduler contains the periodic task settings
	Scheduler SchedulerConfig `yaml:"scheduler" json:"scheduler" toml:"scheduler"`

	// Lock selects the task lock backend
	Lock LockConfig `yaml:"lock" json:"lock" toml:"lock"`

	// API contains the operator HTTP API configuration
	API *APIConfig `yaml:"api,omitempty" json:"api,omitempty" toml:"api,omitempty"`

	// Logging contains logging configuration
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" toml:"logging,omitempty"`

	// Metrics contains Prometheus metrics configuration
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`
}

// RPCConfig represents the node connection configuration.
type RPCConfig struct {
	// URL is the Ethereum RPC endpoint URL. The node must expose the trace_* namespace in traces mode.
	URL string `yaml:"url" json:"url" toml:"url"`

	// Timeout bounds every single RPC call
	Timeout internalcommon.Duration `yaml:"timeout" json:"timeout" toml:"timeout"`

	// BatchSize is the maximum number of requests sent in one JSON-RPC batch
	BatchSize int `yaml:"batch_size" json:"batch_size" toml:"batch_size"`

	// RequestsPerSecond limits the request rate (0 = unlimited)
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second" toml:"requests_per_second"`

	// Retry contains RPC retry configuration with exponential backoff
	Retry *RetryConfig `yaml:"retry,omitempty" json:"retry,omitempty" toml:"retry,omitempty"`
}

// ApplyDefaults sets default values for optional RPC configuration fields.
func (r *RPCConfig) ApplyDefaults() {
	if r.Timeout.Duration == 0 {
		r.Timeout = internalcommon.NewDuration(30 * time.Second) //nolint:mnd
	}
	if r.BatchSize == 0 {
		r.BatchSize = 100
	}
	if r.Retry != nil {
		r.Retry.ApplyDefaults()
	}
}

// RetryConfig represents RPC retry configuration with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial request)
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`

	// InitialBackoff is the initial backoff duration before first retry
	InitialBackoff internalcommon.Duration `yaml:"initial_backoff" json:"initial_backoff" toml:"initial_backoff"`

	// MaxBackoff is the maximum backoff duration
	MaxBackoff internalcommon.Duration `yaml:"max_backoff" json:"max_backoff" toml:"max_backoff"`

	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64 `yaml:"backoff_multiplier" json:"backoff_multiplier" toml:"backoff_multiplier"`
}

// ApplyDefaults sets default values for retry configuration.
func (r *RetryConfig) ApplyDefaults() {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 3
	}
	if r.InitialBackoff.Duration == 0 {
		r.InitialBackoff = internalcommon.NewDuration(500 * time.Millisecond) //nolint:mnd
	}
	if r.MaxBackoff.Duration == 0 {
		r.MaxBackoff = internalcommon.NewDuration(10 * time.Second) //nolint:mnd
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2.0
	}
}

// DatabaseConfig represents database configuration.
// Foreign keys are always enforced since reorg recovery relies on cascading deletes.
type DatabaseConfig struct {
	// Path is the file path to the SQLite database
	Path string `yaml:"path" json:"path" toml:"path"`

	// JournalMode sets the SQLite journal mode (e.g., "WAL", "DELETE")
	JournalMode string `yaml:"journal_mode" json:"journal_mode" toml:"journal_mode"`

	// Synchronous sets the synchronization level ("FULL", "NORMAL", "OFF")
	Synchronous string `yaml:"synchronous" json:"synchronous" toml:"synchronous"`

	// BusyTimeout is the time in milliseconds to wait when the database is locked
	BusyTimeout int `yaml:"busy_timeout" json:"busy_timeout" toml:"busy_timeout"`

	// CacheSize is the size of the page cache (negative = KB, positive = pages)
	CacheSize int `yaml:"cache_size" json:"cache_size" toml:"cache_size"`

	// MaxOpenConnections is the maximum number of open database connections
	MaxOpenConnections int `yaml:"max_open_connections" json:"max_open_connections" toml:"max_open_connections"`

	// MaxIdleConnections is the maximum number of idle connections in the pool
	MaxIdleConnections int `yaml:"max_idle_connections" json:"max_idle_connections" toml:"max_idle_connections"`
}

// ApplyDefaults sets default values for optional database configuration fields.
func (d *DatabaseConfig) ApplyDefaults() {
	if d.JournalMode == "" {
		d.JournalMode = "WAL"
	}
	if d.Synchronous == "" {
		d.Synchronous = "NORMAL"
	}
	if d.BusyTimeout == 0 {
		d.BusyTimeout = 30000
	}
	if d.CacheSize == 0 {
		d.CacheSize = 10000
	}
	if d.MaxOpenConnections == 0 {
		d.MaxOpenConnections = 25
	}
	if d.MaxIdleConnections == 0 {
		d.MaxIdleConnections = 5
	}
}

// Validate checks the database settings.
func (d *DatabaseConfig) Validate() error {
	if d.Path == "" {
		return fmt.Errorf("db.path is required")
	}

	if !slices.Contains([]string{"WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY"}, d.JournalMode) {
		return fmt.Errorf("db.journal_mode must be one of: WAL, DELETE, TRUNCATE, PERSIST, MEMORY")
	}

	if !slices.Contains([]string{"FULL", "NORMAL", "OFF"}, d.Synchronous) {
		return fmt.Errorf("db.synchronous must be one of: FULL, NORMAL, OFF")
	}

	return nil
}

// MaintenanceConfig configures database maintenance behavior.
type MaintenanceConfig struct {
	// Enabled controls whether background maintenance runs
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// CheckInterval is how often to run maintenance (e.g., "30m", "1h")
	CheckInterval internalcommon.Duration `yaml:"check_interval" json:"check_interval" toml:"check_interval"`

	// VacuumOnStartup runs maintenance immediately on startup
	VacuumOnStartup bool `yaml:"vacuum_on_startup" json:"vacuum_on_startup" toml:"vacuum_on_startup"`

	// WALCheckpointMode controls the WAL checkpoint aggressiveness
	// Options: PASSIVE, FULL, RESTART, TRUNCATE
	WALCheckpointMode string `yaml:"wal_checkpoint_mode" json:"wal_checkpoint_mode" toml:"wal_checkpoint_mode"`
}

// ApplyDefaults sets default values for optional maintenance configuration fields.
func (m *MaintenanceConfig) ApplyDefaults() {
	if m.CheckInterval.Duration == 0 {
		m.CheckInterval = internalcommon.NewDuration(30 * time.Minute) //nolint:mnd
	}
	if m.WALCheckpointMode == "" {
		m.WALCheckpointMode = "TRUNCATE"
	}
}

// Validate checks if the maintenance configuration is valid.
func (m *MaintenanceConfig) Validate() error {
	if m.WALCheckpointMode != "" {
		validModes := []string{"PASSIVE", "FULL", "RESTART", "TRUNCATE"}
		if !slices.Contains(validModes, m.WALCheckpointMode) {
			return fmt.Errorf("maintenance.wal_checkpoint_mode: must be one of: PASSIVE, FULL, RESTART, TRUNCATE")
		}
	}

	return nil
}

// MasterCopyConfig maps a Safe singleton address to its contract version.
type MasterCopyConfig struct {
	Address string `yaml:"address" json:"address" toml:"address"`
	Version string `yaml:"version" json:"version" toml:"version"`
}

// SafeConfig describes the wallets being indexed.
type SafeConfig struct {
	// Mode selects how wallet calls are found: "traces" (trace_filter) or "events" (Safe L2 events)
	Mode string `yaml:"mode" json:"mode" toml:"mode"`

	// ChainID overrides the chain id reported by the node (0 = ask the node)
	ChainID uint64 `yaml:"chain_id" json:"chain_id" toml:"chain_id"`

	// StartBlock is the initial watermark for addresses registered from configuration
	StartBlock uint64 `yaml:"start_block" json:"start_block" toml:"start_block"`

	// Addresses are wallets monitored from the start
	Addresses []string `yaml:"addresses" json:"addresses" toml:"addresses"`

	// ProxyFactories are factories whose ProxyCreation events register new wallets
	ProxyFactories []string `yaml:"proxy_factories" json:"proxy_factories" toml:"proxy_factories"`

	// MasterCopies maps known singletons to their versions
	MasterCopies []MasterCopyConfig `yaml:"master_copies" json:"master_copies" toml:"master_copies"`

	// DefaultVersion is assumed for wallets whose singleton is unknown
	DefaultVersion string `yaml:"default_version" json:"default_version" toml:"default_version"`

	// BreakingVersions are versions that change the transaction hash encoding.
	// Moving a wallet across one of them drops its not yet mined multisig transactions.
	BreakingVersions []string `yaml:"breaking_versions" json:"breaking_versions" toml:"breaking_versions"`
}

// ApplyDefaults sets default values for optional safe configuration fields.
func (s *SafeConfig) ApplyDefaults() {
	if s.Mode == "" {
		s.Mode = SafeModeTraces
	}
	if s.DefaultVersion == "" {
		s.DefaultVersion = "1.3.0"
	}
	if s.BreakingVersions == nil {
		s.BreakingVersions = []string{"1.0.0", "1.3.0"}
	}
}

// Validate checks the safe configuration.
func (s *SafeConfig) Validate() error {
	if s.Mode != SafeModeTraces && s.Mode != SafeModeEvents {
		return fmt.Errorf("safe.mode must be one of: '%s', '%s'", SafeModeTraces, SafeModeEvents)
	}

	for i, addr := range s.Addresses {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("safe.addresses[%d]: invalid address %q", i, addr)
		}
	}

	for i, addr := range s.ProxyFactories {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("safe.proxy_factories[%d]: invalid address %q", i, addr)
		}
	}

	for i, mc := range s.MasterCopies {
		if !common.IsHexAddress(mc.Address) {
			return fmt.Errorf("safe.master_copies[%d]: invalid address %q", i, mc.Address)
		}
		if !IsValidVersion(mc.Version) {
			return fmt.Errorf("safe.master_copies[%d]: invalid version %q", i, mc.Version)
		}
	}

	if !IsValidVersion(s.DefaultVersion) {
		return fmt.Errorf("safe.default_version: invalid version %q", s.DefaultVersion)
	}

	for i, v := range s.BreakingVersions {
		if !IsValidVersion(v) {
			return fmt.Errorf("safe.breaking_versions[%d]: invalid version %q", i, v)
		}
	}

	return nil
}

// IsValidVersion reports whether v is a semantic version such as "1.3.0" or "v1.3.0".
func IsValidVersion(v string) bool {
	return v != "" && semver.IsValid(CanonicalVersion(v))
}

// CanonicalVersion returns v with the "v" prefix expected by golang.org/x/mod/semver.
// Suffixes like "+L2" are dropped.
func CanonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.IndexByte(v, '+'); i >= 0 {
		v = v[:i]
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// IndexerConfig contains the scan settings shared by every indexer.
type IndexerConfig struct {
	// Disabled turns the indexer off
	Disabled bool `yaml:"disabled" json:"disabled" toml:"disabled"`

	// Confirmations is the number of blocks kept away from the head
	Confirmations uint64 `yaml:"confirmations" json:"confirmations" toml:"confirmations"`

	// BlockRange is the initial number of blocks scanned per query (0 = up to head)
	BlockRange uint64 `yaml:"block_range" json:"block_range" toml:"block_range"`

	// MinBlockRange is the floor used after errors and slow queries
	MinBlockRange uint64 `yaml:"min_block_range" json:"min_block_range" toml:"min_block_range"`

	// MaxBlockRange caps the adaptive range (0 = no cap)
	MaxBlockRange uint64 `yaml:"max_block_range" json:"max_block_range" toml:"max_block_range"`

	// BlockRangeIncrement is added to the range after moderately fast queries
	BlockRangeIncrement uint64 `yaml:"block_range_increment" json:"block_range_increment" toml:"block_range_increment"`

	// BlockRangeDecrement is subtracted from the range after moderately slow queries
	BlockRangeDecrement uint64 `yaml:"block_range_decrement" json:"block_range_decrement" toml:"block_range_decrement"`

	// QueryChunkSize is the number of addresses scanned together
	QueryChunkSize int `yaml:"query_chunk_size" json:"query_chunk_size" toml:"query_chunk_size"`

	// UpdatedBlocksBehind classifies addresses within this distance of the head as almost updated
	UpdatedBlocksBehind uint64 `yaml:"updated_blocks_behind" json:"updated_blocks_behind" toml:"updated_blocks_behind"`

	// ClientFilterThreshold makes log queries drop the address filter above this many addresses
	ClientFilterThreshold int `yaml:"client_filter_threshold" json:"client_filter_threshold" toml:"client_filter_threshold"`

	// UseTraceBlock switches to trace_block for address sets above TraceBlockThreshold
	UseTraceBlock bool `yaml:"use_trace_block" json:"use_trace_block" toml:"use_trace_block"`

	// TraceBlockThreshold is the address count above which trace_block is used
	TraceBlockThreshold int `yaml:"trace_block_threshold" json:"trace_block_threshold" toml:"trace_block_threshold"`
}

func (i *IndexerConfig) applyDefaults(blockRange uint64) {
	if i.BlockRange == 0 {
		i.BlockRange = blockRange
	}
	if i.MinBlockRange == 0 {
		i.MinBlockRange = 1
	}
	if i.BlockRangeIncrement == 0 {
		i.BlockRangeIncrement = 20 //nolint:mnd
	}
	if i.BlockRangeDecrement == 0 {
		i.BlockRangeDecrement = 20 //nolint:mnd
	}
	if i.QueryChunkSize == 0 {
		i.QueryChunkSize = 500
	}
	if i.UpdatedBlocksBehind == 0 {
		i.UpdatedBlocksBehind = 20 //nolint:mnd
	}
	if i.ClientFilterThreshold == 0 {
		i.ClientFilterThreshold = 100
	}
	if i.TraceBlockThreshold == 0 {
		i.TraceBlockThreshold = 1000
	}
}

// Validate checks the scan settings of one indexer.
func (i *IndexerConfig) Validate() error {
	if i.MaxBlockRange != 0 && i.MaxBlockRange < i.MinBlockRange {
		return fmt.Errorf("max_block_range must not be lower than min_block_range")
	}
	if i.QueryChunkSize < 1 {
		return fmt.Errorf("query_chunk_size must be positive")
	}
	return nil
}

// IndexersConfig groups the settings of every indexer.
type IndexersConfig struct {
	// Traces scans wallet calls through trace_filter (safe.mode = traces)
	Traces IndexerConfig `yaml:"traces" json:"traces" toml:"traces"`

	// SafeEvents scans Safe L2 events (safe.mode = events)
	SafeEvents IndexerConfig `yaml:"safe_events" json:"safe_events" toml:"safe_events"`

	// ProxyFactory scans ProxyCreation events of the configured factories
	ProxyFactory IndexerConfig `yaml:"proxy_factory" json:"proxy_factory" toml:"proxy_factory"`

	// Tokens scans ERC20/ERC721 transfers touching monitored wallets
	Tokens IndexerConfig `yaml:"tokens" json:"tokens" toml:"tokens"`
}

// ApplyDefaults sets default values for optional indexer configuration fields.
func (i *IndexersConfig) ApplyDefaults() {
	i.Traces.applyDefaults(50)
	i.SafeEvents.applyDefaults(500)
	i.ProxyFactory.applyDefaults(500)
	i.Tokens.applyDefaults(500)
}

// Validate checks every indexer configuration.
func (i *IndexersConfig) Validate() error {
	for name, cfg := range map[string]*IndexerConfig{
		"traces":        &i.Traces,
		"safe_events":   &i.SafeEvents,
		"proxy_factory": &i.ProxyFactory,
		"tokens":        &i.Tokens,
	} {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("indexers.%s: %w", name, err)
		}
	}
	return nil
}

// ProcessorConfig contains element and state processing settings.
type ProcessorConfig struct {
	// Workers is the number of wallets replayed in parallel
	Workers int `yaml:"workers" json:"workers" toml:"workers"`

	// BatchSize is the maximum number of decoded elements replayed per wallet in one run
	BatchSize int `yaml:"batch_size" json:"batch_size" toml:"batch_size"`

	// TrackerSize is the capacity of the already processed elements cache
	TrackerSize int `yaml:"tracker_size" json:"tracker_size" toml:"tracker_size"`

	// TokenCacheSize is the capacity of the token classification cache
	TokenCacheSize int `yaml:"token_cache_size" json:"token_cache_size" toml:"token_cache_size"`

	// TokenCacheTTL is how long a token classification is trusted
	TokenCacheTTL internalcommon.Duration `yaml:"token_cache_ttl" json:"token_cache_ttl" toml:"token_cache_ttl"`
}

// ApplyDefaults sets default values for optional processor configuration fields.
func (p *ProcessorConfig) ApplyDefaults() {
	if p.Workers == 0 {
		p.Workers = 4
	}
	if p.BatchSize == 0 {
		p.BatchSize = 5000
	}
	if p.TrackerSize == 0 {
		p.TrackerSize = 40000
	}
	if p.TokenCacheSize == 0 {
		p.TokenCacheSize = 10000
	}
	if p.TokenCacheTTL.Duration == 0 {
		p.TokenCacheTTL = internalcommon.NewDuration(24 * time.Hour) //nolint:mnd
	}
}

// ReorgConfig contains reorg detection settings.
type ReorgConfig struct {
	// ReorgBlocks is the depth after which a stored block is considered confirmed
	ReorgBlocks uint64 `yaml:"reorg_blocks" json:"reorg_blocks" toml:"reorg_blocks"`

	// RewindMargin is how many blocks before the fork point watermarks are moved back to
	RewindMargin uint64 `yaml:"rewind_margin" json:"rewind_margin" toml:"rewind_margin"`

	// BatchSize is the number of block headers compared per RPC batch
	BatchSize int `yaml:"batch_size" json:"batch_size" toml:"batch_size"`
}

// ApplyDefaults sets default values for optional reorg configuration fields.
func (r *ReorgConfig) ApplyDefaults() {
	if r.ReorgBlocks == 0 {
		r.ReorgBlocks = 10
	}
	if r.RewindMargin == 0 {
		r.RewindMargin = 10
	}
	if r.BatchSize == 0 {
		r.BatchSize = 100
	}
}

// TaskConfig configures one periodic task.
type TaskConfig struct {
	// Interval between two runs
	Interval internalcommon.Duration `yaml:"interval" json:"interval" toml:"interval"`

	// SoftTimeout cancels a run that takes longer
	SoftTimeout internalcommon.Duration `yaml:"soft_timeout" json:"soft_timeout" toml:"soft_timeout"`

	// LockTTL bounds how long the task lock may be held
	LockTTL internalcommon.Duration `yaml:"lock_ttl" json:"lock_ttl" toml:"lock_ttl"`
}

func (t *TaskConfig) applyDefaults(interval, softTimeout time.Duration) {
	if t.Interval.Duration == 0 {
		t.Interval = internalcommon.NewDuration(interval)
	}
	if t.SoftTimeout.Duration == 0 {
		t.SoftTimeout = internalcommon.NewDuration(softTimeout)
	}
	if t.LockTTL.Duration == 0 {
		t.LockTTL = internalcommon.NewDuration(t.SoftTimeout.Duration + time.Minute)
	}
}

// SchedulerConfig configures the periodic tasks.
type SchedulerConfig struct {
	IndexSafes          TaskConfig `yaml:"index_safes" json:"index_safes" toml:"index_safes"`
	IndexProxyFactories TaskConfig `yaml:"index_proxy_factories" json:"index_proxy_factories" toml:"index_proxy_factories"`
	IndexTokens         TaskConfig `yaml:"index_tokens" json:"index_tokens" toml:"index_tokens"`
	ProcessDecoded      TaskConfig `yaml:"process_decoded" json:"process_decoded" toml:"process_decoded"`
	CheckReorgs         TaskConfig `yaml:"check_reorgs" json:"check_reorgs" toml:"check_reorgs"`
}

// ApplyDefaults sets default values for optional scheduler configuration fields.
func (s *SchedulerConfig) ApplyDefaults() {
	s.IndexSafes.applyDefaults(5*time.Second, 10*time.Minute)
	s.IndexProxyFactories.applyDefaults(15*time.Second, 10*time.Minute)
	s.IndexTokens.applyDefaults(10*time.Second, 10*time.Minute)
	s.ProcessDecoded.applyDefaults(10*time.Second, 15*time.Minute)
	s.CheckReorgs.applyDefaults(time.Minute, 5*time.Minute)
}

// LockConfig selects the backend of the named task locks.
type LockConfig struct {
	// Backend is "memory" (single process) or "redis" (shared between processes)
	Backend string `yaml:"backend" json:"backend" toml:"backend"`

	// RedisURL is the redis connection URL, required for the redis backend
	RedisURL string `yaml:"redis_url" json:"redis_url" toml:"redis_url"`

	// KeyPrefix namespaces lock keys
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix" toml:"key_prefix"`
}

// ApplyDefaults sets default values for optional lock configuration fields.
func (l *LockConfig) ApplyDefaults() {
	if l.Backend == "" {
		l.Backend = LockBackendMemory
	}
	if l.KeyPrefix == "" {
		l.KeyPrefix = "safe-indexor:lock:"
	}
}

// Validate checks the lock configuration.
func (l *LockConfig) Validate() error {
	switch l.Backend {
	case LockBackendMemory:
	case LockBackendRedis:
		if l.RedisURL == "" {
			return fmt.Errorf("lock.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("lock.backend must be one of: '%s', '%s'", LockBackendMemory, LockBackendRedis)
	}
	return nil
}

// CORSConfig configures cross origin requests on the API.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled" toml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" toml:"allowed_origins"`
}

// APIConfig configures the operator HTTP API.
type APIConfig struct {
	// Enabled controls whether the API server starts
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the API server to
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	ReadTimeout  internalcommon.Duration `yaml:"read_timeout" json:"read_timeout" toml:"read_timeout"`
	WriteTimeout internalcommon.Duration `yaml:"write_timeout" json:"write_timeout" toml:"write_timeout"`
	IdleTimeout  internalcommon.Duration `yaml:"idle_timeout" json:"idle_timeout" toml:"idle_timeout"`

	CORS CORSConfig `yaml:"cors" json:"cors" toml:"cors"`
}

// ApplyDefaults sets default values for optional API configuration fields.
func (a *APIConfig) ApplyDefaults() {
	if a.ListenAddress == "" {
		a.ListenAddress = ":8080"
	}
	if a.ReadTimeout.Duration == 0 {
		a.ReadTimeout = internalcommon.NewDuration(15 * time.Second) //nolint:mnd
	}
	if a.WriteTimeout.Duration == 0 {
		a.WriteTimeout = internalcommon.NewDuration(15 * time.Second) //nolint:mnd
	}
	if a.IdleTimeout.Duration == 0 {
		a.IdleTimeout = internalcommon.NewDuration(60 * time.Second) //nolint:mnd
	}
}

// LoggingConfig configures logging behavior with per-component log levels.
type LoggingConfig struct {
	// DefaultLevel is the default log level for all components
	// Options: "debug", "info", "warn", "error"
	DefaultLevel string `yaml:"default_level" json:"default_level" toml:"default_level"`

	// Development enables development mode (stack traces, console encoder)
	Development bool `yaml:"development" json:"development" toml:"development"`

	// ComponentLevels sets log levels for specific components, see internal/common/components.go
	ComponentLevels map[string]string `yaml:"component_levels,omitempty" json:"component_levels,omitempty" toml:"component_levels,omitempty"` //nolint:lll
}

// ApplyDefaults sets default values for optional logging configuration fields.
func (l *LoggingConfig) ApplyDefaults() {
	if l.DefaultLevel == "" {
		l.DefaultLevel = "info"
	}
	if l.ComponentLevels == nil {
		l.ComponentLevels = make(map[string]string)
	}
}

// Validate checks if the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	if l.DefaultLevel != "" {
		if _, valid := logger.ValidLogLevels[internalcommon.ToLowerWithTrim(l.DefaultLevel)]; !valid {
			return fmt.Errorf("logging.default_level: must be one of: debug, info, warn, error")
		}
	}

	for component, level := range l.ComponentLevels {
		if _, validComponent := internalcommon.AllComponents[internalcommon.ToLowerWithTrim(component)]; !validComponent {
			return fmt.Errorf("logging.component_levels: unknown component '%s'", component)
		}

		if _, valid := logger.ValidLogLevels[internalcommon.ToLowerWithTrim(level)]; !valid {
			return fmt.Errorf("logging.component_levels[%s]: must be one of: debug, info, warn, error", component)
		}
	}

	return nil
}

// GetComponentLevel returns the log level for a specific component.
// Falls back to DefaultLevel if no component-specific level is set.
func (l *LoggingConfig) GetComponentLevel(component string) string {
	if level, ok := l.ComponentLevels[component]; ok {
		return internalcommon.ToLowerWithTrim(level)
	}
	return internalcommon.ToLowerWithTrim(l.DefaultLevel)
}

// GetDefaultLevel returns the default log level.
func (l *LoggingConfig) GetDefaultLevel() string {
	return internalcommon.ToLowerWithTrim(l.DefaultLevel)
}

// IsDevelopment returns whether development mode is enabled.
func (l *LoggingConfig) IsDevelopment() bool {
	return l.Development
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP endpoint are active
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the metrics HTTP server to
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// Path is the HTTP path where metrics are exposed
	Path string `yaml:"path" json:"path" toml:"path"`
}

// ApplyDefaults sets default values for optional metrics configuration fields.
func (m *MetricsConfig) ApplyDefaults() {
	if m.ListenAddress == "" {
		m.ListenAddress = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

// Validate checks if the metrics configuration is valid.
func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.ListenAddress == "" {
			return fmt.Errorf("listen_address is required when metrics are enabled")
		}
		if m.Path == "" || m.Path[0] != '/' {
			return fmt.Errorf("path must start with '/'")
		}
	}
	return nil
}

// ApplyDefaults sets default values for optional configuration fields.
func (c *Config) ApplyDefaults() {
	c.RPC.ApplyDefaults()
	c.DB.ApplyDefaults()
	c.Safe.ApplyDefaults()
	c.Indexers.ApplyDefaults()
	c.Processor.ApplyDefaults()
	c.Reorg.ApplyDefaults()
	c.Scheduler.ApplyDefaults()
	c.Lock.ApplyDefaults()

	if c.Maintenance != nil {
		c.Maintenance.ApplyDefaults()
	}
	if c.API != nil {
		c.API.ApplyDefaults()
	}
	if c.Logging != nil {
		c.Logging.ApplyDefaults()
	}
	if c.Metrics != nil {
		c.Metrics.ApplyDefaults()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.RPC.URL == "" {
		return fmt.Errorf("rpc.url is required")
	}

	if err := c.DB.Validate(); err != nil {
		return err
	}

	if c.Maintenance != nil {
		if err := c.Maintenance.Validate(); err != nil {
			return err
		}
	}

	if err := c.Safe.Validate(); err != nil {
		return err
	}

	if err := c.Indexers.Validate(); err != nil {
		return err
	}

	if c.Processor.Workers < 1 {
		return fmt.Errorf("processor.workers must be positive")
	}

	if err := c.Lock.Validate(); err != nil {
		return err
	}

	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return err
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	return nil
}
