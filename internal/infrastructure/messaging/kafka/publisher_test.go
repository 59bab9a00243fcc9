package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// fakeWriter captures written messages.
type fakeWriter struct {
	messages []kafkago.Message
	failWith error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	if w.failWith != nil {
		return w.failWith
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestPublisher(t *testing.T) (*Publisher, *fakeWriter) {
	t.Helper()
	writer := &fakeWriter{}
	pub, err := NewPublisherWithWriter(writer, "molgrammar.", "run-42", logging.NewNopLogger())
	require.NoError(t, err)
	return pub, writer
}

func TestNewPublisherWithWriter_Validation(t *testing.T) {
	_, err := NewPublisherWithWriter(nil, "", "run-1", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))

	_, err = NewPublisherWithWriter(&fakeWriter{}, "", "", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestPublisher_PublishEpochCompleted(t *testing.T) {
	pub, writer := newTestPublisher(t)

	err := pub.PublishEpochCompleted(context.Background(), EpochCompletedPayload{
		Epoch:         3,
		MeanReturn:    1.25,
		MeanDiversity: 0.8,
		MeanSyn:       0.5,
		Loss:          -2.5,
		CompletedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "molgrammar."+TopicEpochCompleted, msg.Topic)
	assert.Equal(t, []byte("run-42"), msg.Key)

	var env EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, TopicEpochCompleted, env.EventType)
	assert.Equal(t, eventSource, env.Source)
	assert.NotEmpty(t, env.EventID)

	var payload EpochCompletedPayload
	require.NoError(t, env.DecodePayload(&payload))
	assert.Equal(t, "run-42", payload.RunID)
	assert.Equal(t, 3, payload.Epoch)
	assert.InDelta(t, 1.25, payload.MeanReturn, 1e-12)
}

func TestPublisher_RunIDStamping(t *testing.T) {
	pub, writer := newTestPublisher(t)

	require.NoError(t, pub.PublishRunStarted(context.Background(), RunStartedPayload{NumMolecules: 7}))
	require.NoError(t, pub.PublishCheckpointSaved(context.Background(), CheckpointSavedPayload{Epoch: 1, Return: 2.0}))
	require.NoError(t, pub.PublishRunCompleted(context.Background(), RunCompletedPayload{Epochs: 10}))
	require.Len(t, writer.messages, 3)

	for _, msg := range writer.messages {
		var env EventEnvelope
		require.NoError(t, json.Unmarshal(msg.Value, &env))
		var probe struct {
			RunID string `json:"run_id"`
		}
		require.NoError(t, env.DecodePayload(&probe))
		assert.Equal(t, "run-42", probe.RunID)
	}
}

func TestPublisher_WriteFailureCounted(t *testing.T) {
	pub, writer := newTestPublisher(t)
	writer.failWith = assert.AnError

	err := pub.PublishEpochCompleted(context.Background(), EpochCompletedPayload{Epoch: 1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExternalService))

	sent, failed := pub.Metrics()
	assert.Zero(t, sent)
	assert.Equal(t, int64(1), failed)
}

func TestPublisher_PublishAfterClose(t *testing.T) {
	pub, writer := newTestPublisher(t)

	require.NoError(t, pub.Close())
	assert.True(t, writer.closed)

	err := pub.PublishRunStarted(context.Background(), RunStartedPayload{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExternalService))

	// Closing twice is a no-op.
	require.NoError(t, pub.Close())
}

func TestEventEnvelope_DecodeEmptyPayload(t *testing.T) {
	env := &EventEnvelope{}
	var out RunStartedPayload
	err := env.DecodePayload(&out)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

//Personal.AI order the ending
