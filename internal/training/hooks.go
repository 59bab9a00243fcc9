package training

import (
	"context"
	"time"

	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/database/postgres/repositories"
	redisreg "github.com/turtacn/MolGrammar-Learner/internal/infrastructure/database/redis"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/prometheus"
)

// ─────────────────────────────────────────────────────────────────────────────
// Hook contracts
// ─────────────────────────────────────────────────────────────────────────────

// Metrics receives instrumentation callbacks from the loop.
type Metrics interface {
	ObserveSample(iterations, numRules int)
	ObserveReturn(ret float64)
	AddGenerated(phase string, n int)
	GenerationStalled()
	CheckpointSaved(ret float64)
	EpochCompleted(loss float64)
}

// StatusTracker receives run-progress updates for the status endpoint.
// *http.Tracker satisfies it directly.
type StatusTracker interface {
	Start(runID string, maxEpochs int)
	RecordEpoch(epoch int, meanReturn float64)
	RecordBest(epoch int, ret float64)
	RecordGenerated(total int)
	Finish(failed bool)
}

// EventPublisher receives lifecycle events.
type EventPublisher interface {
	RunStarted(ctx context.Context, trainingData string, numMolecules, maxEpochs, mcmcSize int) error
	EpochCompleted(ctx context.Context, epoch int, meanReturn, meanDiversity, meanSyn, loss float64) error
	CheckpointSaved(ctx context.Context, epoch int, ret float64, agentPath, grammarPath string) error
	RunCompleted(ctx context.Context, epochs int, bestReturn float64, totalGenerated int) error
}

// RunRecorder persists run history.
type RunRecorder interface {
	RecordStart(ctx context.Context, runID, trainingData string, numMolecules, maxEpochs, mcmcSize int) error
	RecordEpoch(ctx context.Context, runID string, epoch int, meanReturn, meanDiversity, meanSyn, loss float64) error
	RecordFinish(ctx context.Context, runID string, failed bool, bestReturn float64, totalGenerated int) error
}

// MoleculeRegistry receives every batch of accepted canonical SMILES.
type MoleculeRegistry interface {
	Record(ctx context.Context, canonical []string) error
}

// ─────────────────────────────────────────────────────────────────────────────
// Adapters over the infrastructure types
// ─────────────────────────────────────────────────────────────────────────────

// metricsHook adapts prometheus.TrainingMetrics to the Metrics contract.
type metricsHook struct {
	m *prometheus.TrainingMetrics
}

// NewMetricsHook wraps registered training metrics.
func NewMetricsHook(m *prometheus.TrainingMetrics) Metrics {
	return &metricsHook{m: m}
}

func (h *metricsHook) ObserveSample(iterations, numRules int) {
	h.m.MCMCIterations.Observe(float64(iterations))
	h.m.GrammarRules.Observe(float64(numRules))
}

func (h *metricsHook) ObserveReturn(ret float64) {
	h.m.EpochReturn.Observe(ret)
}

func (h *metricsHook) AddGenerated(phase string, n int) {
	if n > 0 {
		h.m.MoleculesGenerated.WithLabelValues(phase).Add(float64(n))
	}
}

func (h *metricsHook) GenerationStalled() {
	h.m.GenerationStalls.Inc()
}

func (h *metricsHook) CheckpointSaved(ret float64) {
	h.m.CheckpointSaves.Inc()
	h.m.BestReturn.Set(ret)
}

func (h *metricsHook) EpochCompleted(loss float64) {
	h.m.EpochsCompleted.Inc()
	h.m.EpochLoss.Set(loss)
}

// kafkaHook adapts kafka.Publisher to the EventPublisher contract.
type kafkaHook struct {
	pub *kafka.Publisher
}

// NewKafkaHook wraps a training-event publisher.
func NewKafkaHook(pub *kafka.Publisher) EventPublisher {
	return &kafkaHook{pub: pub}
}

func (h *kafkaHook) RunStarted(ctx context.Context, trainingData string, numMolecules, maxEpochs, mcmcSize int) error {
	return h.pub.PublishRunStarted(ctx, kafka.RunStartedPayload{
		TrainingData: trainingData,
		NumMolecules: numMolecules,
		MaxEpochs:    maxEpochs,
		MCMCSize:     mcmcSize,
		StartedAt:    time.Now().UTC(),
	})
}

func (h *kafkaHook) EpochCompleted(ctx context.Context, epoch int, meanReturn, meanDiversity, meanSyn, loss float64) error {
	return h.pub.PublishEpochCompleted(ctx, kafka.EpochCompletedPayload{
		Epoch:         epoch,
		MeanReturn:    meanReturn,
		MeanDiversity: meanDiversity,
		MeanSyn:       meanSyn,
		Loss:          loss,
		CompletedAt:   time.Now().UTC(),
	})
}

func (h *kafkaHook) CheckpointSaved(ctx context.Context, epoch int, ret float64, agentPath, grammarPath string) error {
	return h.pub.PublishCheckpointSaved(ctx, kafka.CheckpointSavedPayload{
		Epoch:       epoch,
		Return:      ret,
		AgentPath:   agentPath,
		GrammarPath: grammarPath,
		SavedAt:     time.Now().UTC(),
	})
}

func (h *kafkaHook) RunCompleted(ctx context.Context, epochs int, bestReturn float64, totalGenerated int) error {
	return h.pub.PublishRunCompleted(ctx, kafka.RunCompletedPayload{
		Epochs:         epochs,
		BestReturn:     bestReturn,
		TotalGenerated: totalGenerated,
		CompletedAt:    time.Now().UTC(),
	})
}

// runStoreHook adapts the postgres run repository to the RunRecorder
// contract.
type runStoreHook struct {
	repo *repositories.RunRepository
}

// NewRunStoreHook wraps the run-history repository.
func NewRunStoreHook(repo *repositories.RunRepository) RunRecorder {
	return &runStoreHook{repo: repo}
}

func (h *runStoreHook) RecordStart(ctx context.Context, runID, trainingData string, numMolecules, maxEpochs, mcmcSize int) error {
	return h.repo.CreateRun(ctx, &repositories.TrainingRun{
		RunID:        runID,
		TrainingData: trainingData,
		NumMolecules: numMolecules,
		MaxEpochs:    maxEpochs,
		MCMCSize:     mcmcSize,
	})
}

func (h *runStoreHook) RecordEpoch(ctx context.Context, runID string, epoch int, meanReturn, meanDiversity, meanSyn, loss float64) error {
	return h.repo.RecordEpoch(ctx, &repositories.EpochMetric{
		RunID:         runID,
		Epoch:         epoch,
		MeanReturn:    meanReturn,
		MeanDiversity: meanDiversity,
		MeanSyn:       meanSyn,
		Loss:          loss,
	})
}

func (h *runStoreHook) RecordFinish(ctx context.Context, runID string, failed bool, bestReturn float64, totalGenerated int) error {
	status := repositories.RunStatusCompleted
	if failed {
		status = repositories.RunStatusFailed
	}
	return h.repo.CompleteRun(ctx, runID, status, bestReturn, totalGenerated)
}

// registryHook adapts the redis registry to the MoleculeRegistry contract.
type registryHook struct {
	reg *redisreg.Registry
}

// NewRegistryHook wraps the cross-run seen-molecule registry.
func NewRegistryHook(reg *redisreg.Registry) MoleculeRegistry {
	return &registryHook{reg: reg}
}

func (h *registryHook) Record(ctx context.Context, canonical []string) error {
	if _, err := h.reg.MarkSeen(ctx, canonical...); err != nil {
		return err
	}
	_, err := h.reg.AddGenerated(ctx, int64(len(canonical)))
	return err
}

//Personal.AI order the ending
