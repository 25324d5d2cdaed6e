package cfg

import (
	"flag"
	"fmt"
	"hash/fnv"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/denisbrodbeck/machineid"
	"github.com/rs/zerolog/log"
)

// TopicMode selects which northbound topic namespace(s) are published
// (spec.md §6 "topic_mode").
type TopicMode string

const (
	TopicModeFull    TopicMode = "FULL"
	TopicModeMixed   TopicMode = "MIXED"
	TopicModeMinimal TopicMode = "MINIMAL"
)

// SinkConfiguration configures the northbound publish sink(s).
type SinkConfiguration struct {
	Type       string   `toml:"type"` // "nats", "kafka", "log"
	NatsURL    string   `toml:"nats_url"`
	Brokers    []string `toml:"brokers"`
	BatchSize  int      `toml:"batch_size"`
	DatabaseGlobs []string `toml:"database_globs"`
	NameGlobs     []string `toml:"name_globs"`
}

// MetastoreConfiguration configures the southbound metastore gRPC client.
type MetastoreConfiguration struct {
	GRPCTarget           string `toml:"grpc_target"`
	PartitionCacheSize   int    `toml:"partition_cache_size"`
	HDFSCachePoolPollSec int    `toml:"hdfs_cache_pool_poll_interval_s"`
}

// LoggingConfiguration controls logging behavior.
type LoggingConfiguration struct {
	Verbose bool   `toml:"verbose"`
	Format  string `toml:"format"` // "console" or "json"
}

// PrometheusConfiguration controls metrics exposition.
type PrometheusConfiguration struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Port    int    `toml:"port"`
}

// AdminConfiguration controls the read-only inspection HTTP surface.
type AdminConfiguration struct {
	Enabled     bool   `toml:"enabled"`
	BindAddress string `toml:"bind_address"`
	Port        int    `toml:"port"`
	PSK         string `toml:"psk"`
}

// Configuration is the main configuration structure, covering every
// tunable spec.md §6 enumerates plus the ambient stack.
type Configuration struct {
	ServiceIDSeed string `toml:"service_id_seed"`

	TopicMode                 TopicMode `toml:"topic_mode"`
	MaxSkippedTopicUpdates    uint32    `toml:"max_skipped_topic_updates"`
	TopicUpdateLogRetention   uint64    `toml:"topic_update_log_retention"`
	DeltaBuildIntervalMS      int       `toml:"delta_build_interval_ms"`

	MaxParallelPartialFetch    int `toml:"max_parallel_partial_fetch"`
	PartialFetchQueueTimeoutS  int `toml:"partial_fetch_queue_timeout_s"`

	TableLockTimeoutMS int  `toml:"table_lock_timeout_ms"`
	TableLockRetryMS   int  `toml:"table_lock_retry_ms"`
	LoadInBackground   bool `toml:"load_in_background"`
	NumLoadingThreads  int  `toml:"num_loading_threads"`

	Sink      SinkConfiguration      `toml:"sink"`
	SinkFull  SinkConfiguration      `toml:"sink_full"`
	Metastore MetastoreConfiguration `toml:"metastore"`
	Logging   LoggingConfiguration   `toml:"logging"`
	Prometheus PrometheusConfiguration `toml:"prometheus"`
	Admin     AdminConfiguration      `toml:"admin"`
}

// Command line flags.
var (
	ConfigPathFlag = flag.String("config", "config.toml", "Path to configuration file")
	AdminPortFlag  = flag.Int("admin-port", 0, "Admin HTTP port (overrides config)")
)

// Config is the process-wide configuration, populated by Load.
var Config = &Configuration{
	TopicMode:               TopicModeMixed,
	MaxSkippedTopicUpdates:  2,
	TopicUpdateLogRetention: 10000,
	DeltaBuildIntervalMS:    2000,

	MaxParallelPartialFetch:   16,
	PartialFetchQueueTimeoutS: 30,

	TableLockTimeoutMS: 7_200_000,
	TableLockRetryMS:   10,
	LoadInBackground:   true,
	NumLoadingThreads:  8,

	Sink: SinkConfiguration{
		Type:      "log",
		BatchSize: 100,
	},
	Metastore: MetastoreConfiguration{
		PartitionCacheSize:   8192,
		HDFSCachePoolPollSec: 60,
	},
	Logging: LoggingConfiguration{
		Verbose: false,
		Format:  "console",
	},
	Prometheus: PrometheusConfiguration{
		Enabled: true,
		Address: "0.0.0.0",
		Port:    9090,
	},
	Admin: AdminConfiguration{
		Enabled:     true,
		BindAddress: "0.0.0.0",
		Port:        8081,
	},
}

// Load loads configuration from file and applies CLI overrides.
func Load(configPath string) error {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			log.Info().Str("path", configPath).Msg("loading configuration")
			if _, err := toml.DecodeFile(configPath, Config); err != nil {
				return fmt.Errorf("failed to decode config: %w", err)
			}
		} else {
			log.Warn().Str("path", configPath).Msg("config file not found, using defaults")
		}
	}

	if *AdminPortFlag != 0 {
		Config.Admin.Port = *AdminPortFlag
	}

	if Config.ServiceIDSeed == "" {
		seed, err := generateServiceIDSeed()
		if err != nil {
			return fmt.Errorf("failed to derive service id seed: %w", err)
		}
		Config.ServiceIDSeed = seed
		log.Info().Str("service_id_seed", seed).Msg("auto-derived service id seed from machine id")
	}

	return nil
}

// generateServiceIDSeed derives a stable per-host seed from the machine id,
// used when no explicit service_id_seed is configured.
func generateServiceIDSeed() (string, error) {
	id, err := machineid.ProtectedID("catalogd")
	if err != nil {
		return "", err
	}
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("%x", h.Sum64()), nil
}

// Validate checks configuration for errors.
func Validate() error {
	switch Config.TopicMode {
	case TopicModeFull, TopicModeMixed, TopicModeMinimal:
	default:
		return fmt.Errorf("invalid topic_mode: %s", Config.TopicMode)
	}

	if Config.MaxParallelPartialFetch < 1 {
		return fmt.Errorf("max_parallel_partial_fetch must be >= 1")
	}
	if Config.PartialFetchQueueTimeoutS < 1 {
		return fmt.Errorf("partial_fetch_queue_timeout_s must be >= 1")
	}
	if Config.TableLockTimeoutMS < 1 {
		return fmt.Errorf("table_lock_timeout_ms must be >= 1")
	}
	if Config.TableLockRetryMS < 1 {
		return fmt.Errorf("table_lock_retry_ms must be >= 1")
	}
	if Config.NumLoadingThreads < 1 {
		return fmt.Errorf("num_loading_threads must be >= 1")
	}
	if Config.DeltaBuildIntervalMS < 1 {
		return fmt.Errorf("delta_build_interval_ms must be >= 1")
	}

	if (Config.TopicMode == TopicModeFull || Config.TopicMode == TopicModeMixed) && Config.Sink.Type == "" {
		return fmt.Errorf("sink.type is required when topic_mode publishes FULL")
	}
	if Config.Sink.Type == "nats" && Config.Sink.NatsURL == "" {
		return fmt.Errorf("sink.nats_url is required for the nats sink")
	}
	if Config.Sink.Type == "kafka" && len(Config.Sink.Brokers) == 0 {
		return fmt.Errorf("sink.brokers is required for the kafka sink")
	}

	if Config.Metastore.PartitionCacheSize < 1 {
		return fmt.Errorf("metastore.partition_cache_size must be >= 1")
	}
	if Config.Metastore.HDFSCachePoolPollSec < 1 {
		return fmt.Errorf("metastore.hdfs_cache_pool_poll_interval_s must be >= 1")
	}

	if Config.Admin.Enabled && (Config.Admin.Port < 1 || Config.Admin.Port > 65535) {
		return fmt.Errorf("invalid admin port: %d", Config.Admin.Port)
	}

	return nil
}
