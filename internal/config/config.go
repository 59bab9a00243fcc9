// Package config defines all configuration structures for the MolGrammar-Learner
// harness.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// TrainingConfig holds the MCMC grammar-learning loop tunables.  Field names
// mirror the experiment's command-line surface.
type TrainingConfig struct {
	// OutputDir is the run directory; communication files, sample logs, and
	// the per-run log directory live underneath it.
	OutputDir string `mapstructure:"output_dir"`

	// TrainingData is the path to a text file with one SMILES string per line.
	// Duplicate lines are dropped, preserving first-seen order.
	TrainingData string `mapstructure:"training_data"`

	// FeatDim is the dimensionality of the subgraph feature vectors fed to the
	// policy network.
	FeatDim int `mapstructure:"feat_dim"`

	// HiddenSize is the policy network's hidden layer width.
	HiddenSize int `mapstructure:"hidden_size"`

	// MaxEpochs bounds the outer training loop.
	MaxEpochs int `mapstructure:"max_epochs"`

	// NumGeneratedSamples is the per-evaluation target count of unique
	// generated molecules.
	NumGeneratedSamples int `mapstructure:"num_generated_samples"`

	// MCMCSize is the number of MCMC samples drawn per epoch.
	MCMCSize int `mapstructure:"mcmc_size"`

	// LearningRate for the policy's Adam optimizer.
	LearningRate float64 `mapstructure:"learning_rate"`

	// Gamma is the per-step discount applied during credit assignment; later
	// rollout steps within a sample are weighted more heavily.
	Gamma float64 `mapstructure:"gamma"`

	// Motif switches the subgraph decomposition to motif-level building blocks
	// for polymer datasets.
	Motif bool `mapstructure:"motif"`

	// StallThreshold is the number of consecutive non-novel / failed draws
	// tolerated before a generation loop halts.
	StallThreshold int `mapstructure:"stall_threshold"`

	// MaxRolloutIters bounds a single MCMC rollout when the policy never emits
	// a terminal action.
	MaxRolloutIters int `mapstructure:"max_rollout_iters"`

	// Resume indicates the policy parameters should be restored from ResumePath.
	Resume     bool   `mapstructure:"resume"`
	ResumePath string `mapstructure:"resume_path"`

	// Seed fixes the pseudo-random source; 0 means seed from wall clock.
	Seed int64 `mapstructure:"seed"`
}

// OracleConfig holds the file-mediated synthesizability oracle parameters.
type OracleConfig struct {
	// SenderFile is the request file written by the trainer, one canonical
	// SMILES per line, relative to Training.OutputDir.
	SenderFile string `mapstructure:"sender_file"`

	// ReceiverFile is the response file produced by the external worker,
	// relative to Training.OutputDir.
	ReceiverFile string `mapstructure:"receiver_file"`

	// PollInterval is the sleep between response-file polls.
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// Deadline bounds a full round-trip.  Zero preserves the historical
	// behavior of waiting indefinitely for the worker; non-zero surfaces a
	// fatal oracle-unavailable error on expiry.
	Deadline time.Duration `mapstructure:"deadline"`
}

// StatusConfig holds the training status HTTP server tunables.
type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"` // "debug" | "release" | "test"
}

// MinIOConfig holds S3-compatible object-storage parameters for the optional
// checkpoint archive.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// RedisConfig holds connection parameters for the optional cross-run
// seen-molecule registry.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the optional
// run-history store.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// KafkaConfig holds parameters for the optional training-event publisher.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	TopicPrefix  string        `mapstructure:"topic_prefix"`
	BatchSize    int           `mapstructure:"batch_size"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
}

// WorkerConfig holds the reference retro worker's tunables (cmd/retroworker).
type WorkerConfig struct {
	// WatchDir is the directory containing the request/response files; usually
	// the trainer's output directory.
	WatchDir string `mapstructure:"watch_dir"`

	// PollFallback is the request-file poll interval used when the filesystem
	// watcher cannot be established.
	PollFallback time.Duration `mapstructure:"poll_fallback"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the harness.  Optional
// infrastructure components (checkpoint archive, registry, run store, events)
// carry an Enabled flag and are validated only when switched on.
type Config struct {
	Training TrainingConfig `mapstructure:"training"`
	Oracle   OracleConfig   `mapstructure:"oracle"`
	Status   StatusConfig   `mapstructure:"status"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Log      LogConfig      `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the run.
func (c *Config) Validate() error {
	// Training
	if c.Training.OutputDir == "" {
		return fmt.Errorf("config: training.output_dir is required")
	}
	if c.Training.FeatDim < 1 {
		return fmt.Errorf("config: training.feat_dim must be ≥ 1, got %d", c.Training.FeatDim)
	}
	if c.Training.HiddenSize < 1 {
		return fmt.Errorf("config: training.hidden_size must be ≥ 1, got %d", c.Training.HiddenSize)
	}
	if c.Training.MaxEpochs < 1 {
		return fmt.Errorf("config: training.max_epochs must be ≥ 1, got %d", c.Training.MaxEpochs)
	}
	if c.Training.NumGeneratedSamples < 1 {
		return fmt.Errorf("config: training.num_generated_samples must be ≥ 1, got %d", c.Training.NumGeneratedSamples)
	}
	if c.Training.MCMCSize < 1 {
		return fmt.Errorf("config: training.mcmc_size must be ≥ 1, got %d", c.Training.MCMCSize)
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("config: training.learning_rate must be > 0, got %g", c.Training.LearningRate)
	}
	if c.Training.Gamma <= 0 || c.Training.Gamma > 1 {
		return fmt.Errorf("config: training.gamma %g is out of range (0, 1]", c.Training.Gamma)
	}
	if c.Training.StallThreshold < 1 {
		return fmt.Errorf("config: training.stall_threshold must be ≥ 1, got %d", c.Training.StallThreshold)
	}
	if c.Training.MaxRolloutIters < 1 {
		return fmt.Errorf("config: training.max_rollout_iters must be ≥ 1, got %d", c.Training.MaxRolloutIters)
	}
	if c.Training.Resume && c.Training.ResumePath == "" {
		return fmt.Errorf("config: training.resume_path is required when training.resume is set")
	}

	// Oracle
	if c.Oracle.SenderFile == "" {
		return fmt.Errorf("config: oracle.sender_file is required")
	}
	if c.Oracle.ReceiverFile == "" {
		return fmt.Errorf("config: oracle.receiver_file is required")
	}
	if c.Oracle.SenderFile == c.Oracle.ReceiverFile {
		return fmt.Errorf("config: oracle.sender_file and oracle.receiver_file must differ")
	}
	if c.Oracle.PollInterval <= 0 {
		return fmt.Errorf("config: oracle.poll_interval must be > 0, got %s", c.Oracle.PollInterval)
	}
	if c.Oracle.Deadline < 0 {
		return fmt.Errorf("config: oracle.deadline must be ≥ 0, got %s", c.Oracle.Deadline)
	}

	// Status
	if c.Status.Enabled {
		if c.Status.Port < 1 || c.Status.Port > 65535 {
			return fmt.Errorf("config: status.port %d is out of range [1, 65535]", c.Status.Port)
		}
		switch c.Status.Mode {
		case "debug", "release", "test":
		default:
			return fmt.Errorf("config: status.mode %q is invalid; expected debug|release|test", c.Status.Mode)
		}
	}

	// MinIO
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required when minio.enabled is set")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required when minio.enabled is set")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis.enabled is set")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	// Database
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required when database.enabled is set")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required when database.enabled is set")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required when database.enabled is set")
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
		}
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
