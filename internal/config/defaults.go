package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultOutputDir           = "./output"
	DefaultFeatDim             = 300
	DefaultHiddenSize          = 128
	DefaultMaxEpochs           = 1000
	DefaultNumGeneratedSamples = 100
	DefaultMCMCSize            = 5
	DefaultLearningRate        = 0.01
	DefaultGamma               = 0.99
	DefaultStallThreshold      = 10
	DefaultMaxRolloutIters     = 50

	DefaultSenderFile   = "sender_file.txt"
	DefaultReceiverFile = "output_syn.txt"
	DefaultPollInterval = time.Second

	DefaultStatusPort = 8080
	DefaultStatusMode = "release"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "molgrammar-checkpoints"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "molgrammar:"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "molgrammar"
	DefaultDBMaxConns = 10

	DefaultKafkaBroker      = "localhost:9092"
	DefaultKafkaTopicPrefix = "molgrammar"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerPollFallback = time.Second
)

// ApplyDefaults fills every zero-value field in cfg with the harness default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate() so that
// optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Training ──────────────────────────────────────────────────────────────
	if cfg.Training.OutputDir == "" {
		cfg.Training.OutputDir = DefaultOutputDir
	}
	if cfg.Training.FeatDim == 0 {
		cfg.Training.FeatDim = DefaultFeatDim
	}
	if cfg.Training.HiddenSize == 0 {
		cfg.Training.HiddenSize = DefaultHiddenSize
	}
	if cfg.Training.MaxEpochs == 0 {
		cfg.Training.MaxEpochs = DefaultMaxEpochs
	}
	if cfg.Training.NumGeneratedSamples == 0 {
		cfg.Training.NumGeneratedSamples = DefaultNumGeneratedSamples
	}
	if cfg.Training.MCMCSize == 0 {
		cfg.Training.MCMCSize = DefaultMCMCSize
	}
	if cfg.Training.LearningRate == 0 {
		cfg.Training.LearningRate = DefaultLearningRate
	}
	if cfg.Training.Gamma == 0 {
		cfg.Training.Gamma = DefaultGamma
	}
	if cfg.Training.StallThreshold == 0 {
		cfg.Training.StallThreshold = DefaultStallThreshold
	}
	if cfg.Training.MaxRolloutIters == 0 {
		cfg.Training.MaxRolloutIters = DefaultMaxRolloutIters
	}

	// ── Oracle ────────────────────────────────────────────────────────────────
	if cfg.Oracle.SenderFile == "" {
		cfg.Oracle.SenderFile = DefaultSenderFile
	}
	if cfg.Oracle.ReceiverFile == "" {
		cfg.Oracle.ReceiverFile = DefaultReceiverFile
	}
	if cfg.Oracle.PollInterval == 0 {
		cfg.Oracle.PollInterval = DefaultPollInterval
	}

	// ── Status ────────────────────────────────────────────────────────────────
	if cfg.Status.Port == 0 {
		cfg.Status.Port = DefaultStatusPort
	}
	if cfg.Status.Mode == "" {
		cfg.Status.Mode = DefaultStatusMode
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.TopicPrefix == "" {
		cfg.Kafka.TopicPrefix = DefaultKafkaTopicPrefix
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.PollFallback == 0 {
		cfg.Worker.PollFallback = DefaultWorkerPollFallback
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// NewDefaultConfig returns a Config with every field set to the harness
// default.  Training.TrainingData remains empty; the train command requires
// it before a run can start.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
