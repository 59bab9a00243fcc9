// Package kafka publishes training lifecycle events to a Kafka cluster.
// Event publishing is optional and best-effort: the training loop emits
// events when a publisher is configured and ignores delivery failures
// beyond logging them, so a broker outage never interrupts a run.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Topics
// ─────────────────────────────────────────────────────────────────────────────

const (
	TopicRunStarted      = "training.run_started"
	TopicEpochCompleted  = "training.epoch_completed"
	TopicCheckpointSaved = "training.checkpoint_saved"
	TopicRunCompleted    = "training.run_completed"
)

// ─────────────────────────────────────────────────────────────────────────────
// Event envelope
// ─────────────────────────────────────────────────────────────────────────────

// EventEnvelope is the wire format shared by all training events.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEventEnvelope wraps a payload struct in a versioned envelope with a
// fresh event ID.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the envelope payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeValidation, "event payload is empty")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode event payload")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Payloads
// ─────────────────────────────────────────────────────────────────────────────

// RunStartedPayload announces a new training run.
type RunStartedPayload struct {
	RunID        string    `json:"run_id"`
	TrainingData string    `json:"training_data"`
	NumMolecules int       `json:"num_molecules"`
	MaxEpochs    int       `json:"max_epochs"`
	MCMCSize     int       `json:"mcmc_size"`
	StartedAt    time.Time `json:"started_at"`
}

// EpochCompletedPayload summarizes one training epoch.
type EpochCompletedPayload struct {
	RunID         string    `json:"run_id"`
	Epoch         int       `json:"epoch"`
	MeanReturn    float64   `json:"mean_return"`
	MeanDiversity float64   `json:"mean_diversity"`
	MeanSyn       float64   `json:"mean_syn"`
	Loss          float64   `json:"loss"`
	CompletedAt   time.Time `json:"completed_at"`
}

// CheckpointSavedPayload announces a new run-global best checkpoint.
type CheckpointSavedPayload struct {
	RunID       string    `json:"run_id"`
	Epoch       int       `json:"epoch"`
	Return      float64   `json:"return"`
	AgentPath   string    `json:"agent_path"`
	GrammarPath string    `json:"grammar_path"`
	SavedAt     time.Time `json:"saved_at"`
}

// RunCompletedPayload closes out a training run.
type RunCompletedPayload struct {
	RunID          string    `json:"run_id"`
	Epochs         int       `json:"epochs"`
	BestReturn     float64   `json:"best_return"`
	TotalGenerated int       `json:"total_generated"`
	CompletedAt    time.Time `json:"completed_at"`
}

//Personal.AI order the ending
