package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "molgrammar"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	require.Error(t, err)
}

func TestCollector_CounterEndToEnd(t *testing.T) {
	c := newTestCollector(t)

	counter := c.RegisterCounter("test_events_total", "Test events", "kind")
	counter.WithLabelValues("novel").Inc()
	counter.WithLabelValues("novel").Add(2)
	counter.WithLabelValues("duplicate").Inc()

	body := scrape(t, c)
	assert.Contains(t, body, `molgrammar_test_events_total{kind="novel"} 3`)
	assert.Contains(t, body, `molgrammar_test_events_total{kind="duplicate"} 1`)
}

func TestCollector_GaugeAndHistogram(t *testing.T) {
	c := newTestCollector(t)

	gauge := c.RegisterGauge("test_best_return", "Best return").WithLabelValues()
	gauge.Set(2.5)

	hist := c.RegisterHistogram("test_latency_seconds", "Latency", []float64{1, 10}).WithLabelValues()
	hist.Observe(0.5)
	hist.Observe(5)

	body := scrape(t, c)
	assert.Contains(t, body, "molgrammar_test_best_return 2.5")
	assert.Contains(t, body, `molgrammar_test_latency_seconds_bucket{le="1"} 1`)
	assert.Contains(t, body, `molgrammar_test_latency_seconds_bucket{le="10"} 2`)
}

func TestCollector_DuplicateRegistrationReturnsExisting(t *testing.T) {
	c := newTestCollector(t)

	first := c.RegisterCounter("dup_total", "Duplicate", "kind")
	second := c.RegisterCounter("dup_total", "Duplicate", "kind")

	first.WithLabelValues("a").Inc()
	second.WithLabelValues("a").Inc()

	// Both handles feed the same underlying metric.
	assert.Contains(t, scrape(t, c), `molgrammar_dup_total{kind="a"} 2`)
}

func TestCollector_RegistrationConflictFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)

	c.RegisterCounter("conflict_total", "Original", "kind")
	// Same name, different type: the registry rejects it and the caller gets
	// a no-op instead of a panic.
	gauge := c.RegisterGauge("conflict_total", "Conflicting").WithLabelValues()
	gauge.Set(99)

	assert.NotContains(t, scrape(t, c), "99")
}

func TestNewTrainingMetrics(t *testing.T) {
	c := newTestCollector(t)
	m := NewTrainingMetrics(c)

	m.EpochsCompleted.Inc()
	m.BestReturn.Set(1.75)
	m.MoleculesGenerated.WithLabelValues("in_training").Add(5)
	m.OracleRequests.WithLabelValues("ok").Inc()
	m.OracleRoundtripSec.Observe(1.2)
	m.CheckpointSaves.Inc()

	body := scrape(t, c)
	assert.Contains(t, body, "molgrammar_epochs_completed_total 1")
	assert.Contains(t, body, "molgrammar_best_return 1.75")
	assert.Contains(t, body, `molgrammar_molecules_generated_total{phase="in_training"} 5`)
	assert.Contains(t, body, `molgrammar_oracle_requests_total{status="ok"} 1`)
	assert.Contains(t, body, "molgrammar_checkpoint_saves_total 1")
}

func TestTrainingMetrics_ObserveRoundtrip(t *testing.T) {
	c := newTestCollector(t)
	m := NewTrainingMetrics(c)

	m.ObserveRoundtrip(300*time.Millisecond, nil)
	m.ObserveRoundtrip(2*time.Second, nil)
	m.ObserveRoundtrip(time.Second, assert.AnError)

	body := scrape(t, c)
	assert.Contains(t, body, `molgrammar_oracle_requests_total{status="success"} 2`)
	assert.Contains(t, body, `molgrammar_oracle_requests_total{status="failure"} 1`)
	assert.Contains(t, body, `molgrammar_oracle_roundtrip_duration_seconds_bucket{le="0.5"} 1`)
	assert.Contains(t, body, `molgrammar_oracle_roundtrip_duration_seconds_count 3`)
}

func TestTimer_ObservesElapsed(t *testing.T) {
	c := newTestCollector(t)
	hist := c.RegisterHistogram("timer_seconds", "Timer", []float64{10}).WithLabelValues()

	timer := NewTimer(hist)
	timer.ObserveDuration()

	assert.Contains(t, scrape(t, c), `molgrammar_timer_seconds_bucket{le="10"} 1`)

	// A nil histogram is tolerated.
	NewTimer(nil).ObserveDuration()
}

// scrape renders the registry through the HTTP handler.
func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	require.True(t, strings.Contains(body, "molgrammar_") || body == "")
	return body
}

//Personal.AI order the ending
