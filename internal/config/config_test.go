package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// validConfig returns a Config that passes Validate; tests mutate single
// fields to probe individual rules.
func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Training.OutputDir = "/tmp/run"
	cfg.Training.TrainingData = "/tmp/isocyanates.txt"
	return cfg
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Training(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing_output_dir", func(c *Config) { c.Training.OutputDir = "" }},
		{"zero_feat_dim", func(c *Config) { c.Training.FeatDim = 0 }},
		{"zero_hidden", func(c *Config) { c.Training.HiddenSize = 0 }},
		{"zero_epochs", func(c *Config) { c.Training.MaxEpochs = 0 }},
		{"zero_samples", func(c *Config) { c.Training.NumGeneratedSamples = 0 }},
		{"zero_mcmc", func(c *Config) { c.Training.MCMCSize = 0 }},
		{"negative_lr", func(c *Config) { c.Training.LearningRate = -0.1 }},
		{"gamma_above_one", func(c *Config) { c.Training.Gamma = 1.5 }},
		{"gamma_zero", func(c *Config) { c.Training.Gamma = -1 }},
		{"zero_stall", func(c *Config) { c.Training.StallThreshold = -1 }},
		{"resume_without_path", func(c *Config) { c.Training.Resume = true; c.Training.ResumePath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_Oracle(t *testing.T) {
	cfg := validConfig()
	cfg.Oracle.SenderFile = cfg.Oracle.ReceiverFile
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Oracle.PollInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Oracle.Deadline = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestValidate_OptionalComponents(t *testing.T) {
	// Disabled components may carry empty connection settings.
	cfg := validConfig()
	cfg.Redis.Addr = ""
	cfg.Database.Host = ""
	cfg.MinIO.Endpoint = ""
	cfg.Kafka.Brokers = nil
	assert.NoError(t, cfg.Validate())

	// Enabling them makes the settings mandatory.
	cfg = validConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Database.Enabled = true
	cfg.Database.User = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.MinIO.Enabled = true
	cfg.MinIO.Bucket = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = nil
	assert.Error(t, cfg.Validate())
}

func TestValidate_Log(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Log.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultHiddenSize, cfg.Training.HiddenSize)
	assert.Equal(t, DefaultFeatDim, cfg.Training.FeatDim)
	assert.Equal(t, DefaultMCMCSize, cfg.Training.MCMCSize)
	assert.Equal(t, DefaultGamma, cfg.Training.Gamma)
	assert.Equal(t, DefaultStallThreshold, cfg.Training.StallThreshold)
	assert.Equal(t, DefaultSenderFile, cfg.Oracle.SenderFile)
	assert.Equal(t, DefaultReceiverFile, cfg.Oracle.ReceiverFile)
	assert.Equal(t, time.Second, cfg.Oracle.PollInterval)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)

	// Explicit values win.
	cfg = &Config{}
	cfg.Training.MCMCSize = 9
	ApplyDefaults(cfg)
	assert.Equal(t, 9, cfg.Training.MCMCSize)

	// Nil is tolerated.
	ApplyDefaults(nil)
}

//Personal.AI order the ending
