package replwork

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/replwork/types"
	"github.com/arloliu/replwork/workkey"
)

// KVBucketConfig configures NATS JetStream KV bucket names and TTLs.
type KVBucketConfig struct {
	// QueueBucket holds queue entries, which double as completion markers.
	// It never has a TTL: an entry must live until a worker finishes it.
	QueueBucket string `yaml:"queueBucket"`

	// LockBucket holds worker claim leases.
	LockBucket string `yaml:"lockBucket"`

	// LockTTL is how long a claim survives without renewal.
	// Claims are renewed every LockTTL/3 while processing.
	LockTTL time.Duration `yaml:"lockTtl"`
}

// WorkerPoolConfig configures the queue worker pool started by the CLI.
type WorkerPoolConfig struct {
	// Concurrency is the number of entries processed in parallel per process.
	Concurrency int `yaml:"concurrency"`

	// RescanInterval is how often the whole queue is listed to retry entries
	// whose earlier attempts failed.
	RescanInterval time.Duration `yaml:"rescanInterval"`
}

// Config is the configuration for the Scheduler.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h".
type Config struct {
	// InstanceID identifies the deployment. Completion markers live under
	// CoordinationRoot/InstanceID, so deployments sharing a NATS account stay apart.
	InstanceID string `yaml:"instanceId"`

	// CoordinationRoot is the root path of the coordination store.
	CoordinationRoot string `yaml:"coordinationRoot"`

	// WorkQueueNamespace is the queue namespace below the instance path.
	WorkQueueNamespace string `yaml:"workQueueNamespace"`

	// Policy selects the assignment policy: "unordered" (default) or "ordered".
	Policy string `yaml:"policy"`

	// WorkProcessorDelay is the wait before the first tick.
	// Default: 0 (first tick runs immediately)
	WorkProcessorDelay time.Duration `yaml:"workProcessorDelay"`

	// WorkProcessorPeriod is the wait between the end of one tick and the
	// start of the next.
	// Default: 30 seconds
	WorkProcessorPeriod time.Duration `yaml:"workProcessorPeriod"`

	// OperationTimeout bounds each queue append and work source listing.
	// Recommended: 10 seconds.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// StartupTimeout bounds bucket creation and the initial queue read in Start.
	// Recommended: 30 seconds.
	StartupTimeout time.Duration `yaml:"startupTimeout"`

	// ShutdownTimeout bounds Stop when the caller's context has no deadline.
	// Recommended: 10 seconds.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// KVBuckets controls NATS JetStream KV bucket configuration.
	KVBuckets KVBucketConfig `yaml:"kvBuckets"`

	// Worker controls the queue worker pool.
	Worker WorkerPoolConfig `yaml:"worker"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// InstanceID has no default and must be set.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		CoordinationRoot:    "/replwork",
		WorkQueueNamespace:  "/replication/workqueue",
		Policy:              types.PolicyUnordered,
		WorkProcessorDelay:  0,
		WorkProcessorPeriod: 30 * time.Second,
		OperationTimeout:    10 * time.Second,
		StartupTimeout:      30 * time.Second,
		ShutdownTimeout:     10 * time.Second,
		KVBuckets: KVBucketConfig{
			QueueBucket: "replwork-workqueue",
			LockBucket:  "replwork-locks",
			LockTTL:     30 * time.Second,
		},
		Worker: WorkerPoolConfig{
			Concurrency:    4,
			RescanInterval: 10 * time.Second,
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Each field is defaulted on its own: setting only WorkProcessorPeriod keeps
// the default WorkProcessorDelay and vice versa.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.CoordinationRoot == "" {
		cfg.CoordinationRoot = defaults.CoordinationRoot
	}
	if cfg.WorkQueueNamespace == "" {
		cfg.WorkQueueNamespace = defaults.WorkQueueNamespace
	}
	if cfg.Policy == "" {
		cfg.Policy = defaults.Policy
	}
	// Note: WorkProcessorDelay of 0 is valid (run immediately), so we don't apply default
	if cfg.WorkProcessorPeriod == 0 {
		cfg.WorkProcessorPeriod = defaults.WorkProcessorPeriod
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = defaults.StartupTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.KVBuckets.QueueBucket == "" {
		cfg.KVBuckets.QueueBucket = defaults.KVBuckets.QueueBucket
	}
	if cfg.KVBuckets.LockBucket == "" {
		cfg.KVBuckets.LockBucket = defaults.KVBuckets.LockBucket
	}
	if cfg.KVBuckets.LockTTL == 0 {
		cfg.KVBuckets.LockTTL = defaults.KVBuckets.LockTTL
	}
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = defaults.Worker.Concurrency
	}
	if cfg.Worker.RescanInterval == 0 {
		cfg.Worker.RescanInterval = defaults.Worker.RescanInterval
	}
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - InstanceID is set and is a single path segment
//   - CoordinationRoot and WorkQueueNamespace are absolute paths
//   - Policy is a known assignment policy
//   - WorkProcessorDelay >= 0, WorkProcessorPeriod > 0
//   - All timeouts, LockTTL, Worker.Concurrency and Worker.RescanInterval > 0
//   - QueueBucket and LockBucket are set and differ
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.InstanceID == "" {
		return errors.New("InstanceID is required")
	}
	if strings.Contains(cfg.InstanceID, "/") {
		return fmt.Errorf("InstanceID (%q) must not contain '/'", cfg.InstanceID)
	}
	if !strings.HasPrefix(cfg.CoordinationRoot, "/") {
		return fmt.Errorf("CoordinationRoot (%q) must be an absolute path", cfg.CoordinationRoot)
	}
	if !strings.HasPrefix(cfg.WorkQueueNamespace, "/") {
		return fmt.Errorf("WorkQueueNamespace (%q) must start with '/'", cfg.WorkQueueNamespace)
	}

	switch cfg.Policy {
	case types.PolicyUnordered, types.PolicyOrdered:
	default:
		return fmt.Errorf("%w: %q", types.ErrUnknownPolicy, cfg.Policy)
	}

	if cfg.WorkProcessorDelay < 0 {
		return fmt.Errorf("WorkProcessorDelay must be >= 0, got %v", cfg.WorkProcessorDelay)
	}
	if cfg.WorkProcessorPeriod <= 0 {
		return fmt.Errorf("WorkProcessorPeriod must be > 0, got %v", cfg.WorkProcessorPeriod)
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"OperationTimeout", cfg.OperationTimeout},
		{"StartupTimeout", cfg.StartupTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"KVBuckets.LockTTL", cfg.KVBuckets.LockTTL},
		{"Worker.RescanInterval", cfg.Worker.RescanInterval},
	} {
		if d.value <= 0 {
			return fmt.Errorf("%s must be > 0, got %v", d.name, d.value)
		}
	}

	if cfg.Worker.Concurrency <= 0 {
		return fmt.Errorf("Worker.Concurrency must be > 0, got %d", cfg.Worker.Concurrency)
	}

	if cfg.KVBuckets.QueueBucket == "" || cfg.KVBuckets.LockBucket == "" {
		return errors.New("KVBuckets.QueueBucket and KVBuckets.LockBucket are required")
	}
	if cfg.KVBuckets.QueueBucket == cfg.KVBuckets.LockBucket {
		return fmt.Errorf("KVBuckets.QueueBucket and KVBuckets.LockBucket must differ, both are %q", cfg.KVBuckets.QueueBucket)
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for non-recommended values.
//
// This is called after Validate() in NewScheduler() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.WorkProcessorPeriod < time.Second {
		logger.Warn(
			"WorkProcessorPeriod is very short, every tick lists the work source and reads all markers",
			"period", cfg.WorkProcessorPeriod,
			"recommended", "5s or higher",
		)
	}

	if cfg.KVBuckets.LockTTL < 3*cfg.OperationTimeout {
		logger.Warn(
			"LockTTL is below recommended minimum, claims may expire while a renewal is in flight",
			"lockTTL", cfg.KVBuckets.LockTTL,
			"operationTimeout", cfg.OperationTimeout,
			"recommended", 3*cfg.OperationTimeout,
		)
	}

	if cfg.Policy == types.PolicyOrdered && cfg.WorkProcessorPeriod > time.Minute {
		logger.Warn(
			"ordered policy queues one file per target per tick, a long period limits throughput",
			"period", cfg.WorkProcessorPeriod,
		)
	}
}

// NamespacePath returns the absolute path queue entries are stored under.
func (cfg *Config) NamespacePath() string {
	return workkey.NamespacePath(cfg.CoordinationRoot, cfg.InstanceID, cfg.WorkQueueNamespace)
}

// MarkerPath returns the completion marker path for a queue key.
func (cfg *Config) MarkerPath(key string) string {
	return workkey.MarkerPath(cfg.CoordinationRoot, cfg.InstanceID, cfg.WorkQueueNamespace, key)
}

// LoadConfig reads a YAML configuration file, applies defaults and validates it.
//
// Parameters:
//   - path: Path to the YAML file
//
// Returns:
//   - *Config: Validated configuration
//   - error: Read, parse or validation error
//
// Example:
//
//	cfg, err := replwork.LoadConfig("/etc/replwork/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML configuration, applies defaults and validates it.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	SetDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &cfg, nil
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Use DefaultConfig() for production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := replwork.TestConfig()
//	sched, err := replwork.NewScheduler(&cfg, nc, src)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.InstanceID = "test-instance"
	cfg.WorkProcessorPeriod = 100 * time.Millisecond // 300x faster
	cfg.OperationTimeout = 2 * time.Second
	cfg.StartupTimeout = 5 * time.Second
	cfg.ShutdownTimeout = 5 * time.Second
	cfg.KVBuckets.LockTTL = 6 * time.Second
	cfg.Worker.RescanInterval = 200 * time.Millisecond

	return cfg
}
