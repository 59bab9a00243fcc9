package prometheus

import "time"

// TrainingMetrics holds every metric the training loop and oracle emit.
type TrainingMetrics struct {
	// Epoch progress
	EpochsCompleted Counter
	EpochLoss       Gauge
	EpochReturn     Histogram
	BestReturn      Gauge

	// Sampling
	MCMCIterations Histogram
	GrammarRules   Histogram

	// Generation
	MoleculesGenerated CounterVec
	GenerationStalls   Counter

	// Oracle
	OracleRequests     CounterVec
	OracleRoundtripSec Histogram

	// Checkpoints
	CheckpointSaves Counter
}

var (
	returnBuckets    = []float64{0, 0.25, 0.5, 0.75, 1, 1.5, 2, 2.5, 3}
	iterationBuckets = []float64{1, 2, 5, 10, 20, 50, 100}
	oracleBuckets    = []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300}
)

// NewTrainingMetrics registers all training metrics on the collector.
func NewTrainingMetrics(collector MetricsCollector) *TrainingMetrics {
	m := &TrainingMetrics{}

	m.EpochsCompleted = collector.
		RegisterCounter("epochs_completed_total", "Completed training epochs").
		WithLabelValues()
	m.EpochLoss = collector.
		RegisterGauge("epoch_loss", "Policy-gradient loss of the last epoch").
		WithLabelValues()
	m.EpochReturn = collector.
		RegisterHistogram("epoch_return", "Per-sample returns (diversity + 2*syn)", returnBuckets).
		WithLabelValues()
	m.BestReturn = collector.
		RegisterGauge("best_return", "Best return observed in this run").
		WithLabelValues()

	m.MCMCIterations = collector.
		RegisterHistogram("mcmc_iterations", "Policy actions taken per grammar sample", iterationBuckets).
		WithLabelValues()
	m.GrammarRules = collector.
		RegisterHistogram("grammar_rules", "Production rules per sampled grammar", iterationBuckets).
		WithLabelValues()

	m.MoleculesGenerated = collector.
		RegisterCounter("molecules_generated_total", "Accepted generated molecules", "phase")
	m.GenerationStalls = collector.
		RegisterCounter("generation_stalls_total", "Generation rounds halted by the stall guard").
		WithLabelValues()

	m.OracleRequests = collector.
		RegisterCounter("oracle_requests_total", "Synthesizability oracle round-trips", "status")
	m.OracleRoundtripSec = collector.
		RegisterHistogram("oracle_roundtrip_duration_seconds", "Oracle round-trip latency", oracleBuckets).
		WithLabelValues()

	m.CheckpointSaves = collector.
		RegisterCounter("checkpoint_saves_total", "Run-global best checkpoints written").
		WithLabelValues()

	return m
}

// ObserveRoundtrip records one oracle round trip: a success or failure count
// and, for the latency histogram, the elapsed wall time in seconds.  It
// satisfies the oracle package's observer interface.
func (m *TrainingMetrics) ObserveRoundtrip(elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.OracleRequests.WithLabelValues(status).Inc()
	m.OracleRoundtripSec.Observe(elapsed.Seconds())
}

//Personal.AI order the ending
