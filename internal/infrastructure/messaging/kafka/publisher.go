package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/MolGrammar-Learner/internal/config"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// eventSource identifies this service in event envelopes.
const eventSource = "molgrammar-learner"

const (
	defaultBatchSize    = 100
	defaultWriteTimeout = 10 * time.Second
)

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PublisherMetrics counts publish outcomes.
type PublisherMetrics struct {
	EventsSent   atomic.Int64
	EventsFailed atomic.Int64
}

// Publisher emits training lifecycle events.  All publish methods are
// fire-and-forget from the caller's perspective: errors are returned so the
// training loop can log them, but the loop never treats them as fatal.
type Publisher struct {
	writer      WriterInterface
	topicPrefix string
	runID       string
	log         logging.Logger
	closed      atomic.Bool
	metrics     PublisherMetrics
}

// NewPublisher builds a Publisher over a kafka.Writer configured from cfg.
func NewPublisher(cfg config.KafkaConfig, runID string, log logging.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers must not be empty")
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchSize:    batchSize,
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return NewPublisherWithWriter(writer, cfg.TopicPrefix, runID, log)
}

// NewPublisherWithWriter builds a Publisher around an existing writer.  Tests
// use it to inject a fake.
func NewPublisherWithWriter(writer WriterInterface, topicPrefix, runID string, log logging.Logger) (*Publisher, error) {
	if writer == nil {
		return nil, errors.New(errors.ErrCodeValidation, "kafka writer must not be nil")
	}
	if runID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "run id must not be empty")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Publisher{
		writer:      writer,
		topicPrefix: topicPrefix,
		runID:       runID,
		log:         log,
	}, nil
}

// PublishRunStarted emits a run-started event.
func (p *Publisher) PublishRunStarted(ctx context.Context, payload RunStartedPayload) error {
	payload.RunID = p.runID
	return p.publish(ctx, TopicRunStarted, payload)
}

// PublishEpochCompleted emits a per-epoch summary event.
func (p *Publisher) PublishEpochCompleted(ctx context.Context, payload EpochCompletedPayload) error {
	payload.RunID = p.runID
	return p.publish(ctx, TopicEpochCompleted, payload)
}

// PublishCheckpointSaved emits a new-best checkpoint event.
func (p *Publisher) PublishCheckpointSaved(ctx context.Context, payload CheckpointSavedPayload) error {
	payload.RunID = p.runID
	return p.publish(ctx, TopicCheckpointSaved, payload)
}

// PublishRunCompleted emits a run-completed event.
func (p *Publisher) PublishRunCompleted(ctx context.Context, payload RunCompletedPayload) error {
	payload.RunID = p.runID
	return p.publish(ctx, TopicRunCompleted, payload)
}

// Metrics returns a snapshot of publish counters.
func (p *Publisher) Metrics() (sent, failed int64) {
	return p.metrics.EventsSent.Load(), p.metrics.EventsFailed.Load()
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.log.Info("kafka publisher closed",
		logging.Int64("events_sent", p.metrics.EventsSent.Load()),
		logging.Int64("events_failed", p.metrics.EventsFailed.Load()))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to close kafka writer")
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, topic string, payload interface{}) error {
	if p.closed.Load() {
		return errors.New(errors.ErrCodeExternalService, "kafka publisher is closed")
	}

	env, err := NewEventEnvelope(topic, eventSource, payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event envelope")
	}

	msg := kafka.Message{
		Topic: p.topicPrefix + topic,
		// Keyed by run so all events of one run land on one partition
		// and stay ordered.
		Key:   []byte(p.runID),
		Value: value,
		Time:  env.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "source_service", Value: []byte(env.Source)},
			{Key: "schema_version", Value: []byte(env.SchemaVersion)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.EventsFailed.Add(1)
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to publish training event")
	}
	p.metrics.EventsSent.Add(1)
	p.log.Debug("training event published",
		logging.String("topic", msg.Topic),
		logging.String("event_id", env.EventID))
	return nil
}

//Personal.AI order the ending
