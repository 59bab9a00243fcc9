package training

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolGrammar-Learner/internal/agent"
	"github.com/turtacn/MolGrammar-Learner/internal/config"
	"github.com/turtacn/MolGrammar-Learner/internal/evaluation"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/checkpoint"
	"github.com/turtacn/MolGrammar-Learner/internal/mcmc"
	"github.com/turtacn/MolGrammar-Learner/internal/oracle"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

var testCorpus = []string{"CCO", "CCN", "CCC", "CCOC"}

// recorder captures every hook invocation.
type recorder struct {
	starts        int
	epochs        []int
	finishes      int
	finishFailed  bool
	checkpointed  int
	stalls        int
	registered    [][]string
	observedLoss  []float64
	observedIters []int
}

func (r *recorder) ObserveSample(iterations, numRules int) { r.observedIters = append(r.observedIters, iterations) }
func (r *recorder) ObserveReturn(ret float64)              {}
func (r *recorder) AddGenerated(phase string, n int)       {}
func (r *recorder) GenerationStalled()                     { r.stalls++ }
func (r *recorder) CheckpointSaved(ret float64)            { r.checkpointed++ }
func (r *recorder) EpochCompleted(loss float64)            { r.observedLoss = append(r.observedLoss, loss) }

func (r *recorder) Start(runID string, maxEpochs int)      { r.starts++ }
func (r *recorder) RecordEpoch(epoch int, mean float64)    {}
func (r *recorder) RecordBest(epoch int, ret float64)      {}
func (r *recorder) RecordGenerated(total int)              {}
func (r *recorder) Finish(failed bool)                     { r.finishes++; r.finishFailed = failed }

func (r *recorder) Record(ctx context.Context, canonical []string) error {
	r.registered = append(r.registered, canonical)
	return nil
}

// runRecorder implements RunRecorder over the shared recorder.
type runRecorder struct{ r *recorder }

func (rr runRecorder) RecordStart(ctx context.Context, runID, data string, n, epochs, mcmcSize int) error {
	rr.r.starts++
	return nil
}
func (rr runRecorder) RecordEpoch(ctx context.Context, runID string, epoch int, ret, div, syn, loss float64) error {
	rr.r.epochs = append(rr.r.epochs, epoch)
	return nil
}
func (rr runRecorder) RecordFinish(ctx context.Context, runID string, failed bool, best float64, total int) error {
	rr.r.finishes++
	rr.r.finishFailed = failed
	return nil
}

func newTestLoop(t *testing.T, cfg config.TrainingConfig, hooks Hooks) (*Loop, string) {
	t.Helper()
	dir := t.TempDir()

	policy, err := agent.New(cfg.FeatDim, cfg.HiddenSize, cfg.LearningRate, 7)
	require.NoError(t, err)

	orc, err := oracle.NewInProcessOracle(func(string) bool { return true })
	require.NoError(t, err)

	evaluator, err := evaluation.NewEvaluator(orc, dir,
		cfg.NumGeneratedSamples, cfg.StallThreshold, cfg.MaxRolloutIters,
		rand.New(rand.NewSource(11)), nil)
	require.NoError(t, err)

	store, err := checkpoint.NewStore(filepath.Join(dir, "checkpoints"), nil, nil)
	require.NoError(t, err)

	loop, err := NewLoop(Options{
		Config:      cfg,
		RunID:       "run-test",
		Agent:       policy,
		Sampler:     mcmc.NewSampler(cfg.FeatDim, cfg.MaxRolloutIters, nil),
		Evaluator:   evaluator,
		Checkpoints: store,
		Hooks:       hooks,
	})
	require.NoError(t, err)
	return loop, dir
}

func smallConfig() config.TrainingConfig {
	return config.TrainingConfig{
		TrainingData:        "train.txt",
		FeatDim:             16,
		HiddenSize:          8,
		MaxEpochs:           2,
		NumGeneratedSamples: 3,
		MCMCSize:            2,
		LearningRate:        0.05,
		Gamma:               0.99,
		StallThreshold:      300,
		MaxRolloutIters:     10,
	}
}

func TestNormalizeReturns(t *testing.T) {
	norm := normalizeReturns([]float64{1.0, 3.0})
	require.Len(t, norm, 2)
	assert.InDelta(t, -1.0, norm[0], 1e-12)
	assert.InDelta(t, 1.0, norm[1], 1e-12)

	// A uniform batch centers to zero everywhere.
	for _, v := range normalizeReturns([]float64{2.0, 2.0, 2.0}) {
		assert.InDelta(t, 0, v, 1e-12)
	}
}

func TestNewLoop_Validation(t *testing.T) {
	_, err := NewLoop(Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestNewLoop_ResumeMissingPath(t *testing.T) {
	cfg := smallConfig()
	cfg.Resume = true
	cfg.ResumePath = filepath.Join(t.TempDir(), "absent.json")

	policy, err := agent.New(cfg.FeatDim, cfg.HiddenSize, cfg.LearningRate, 7)
	require.NoError(t, err)
	orc, err := oracle.NewInProcessOracle(func(string) bool { return true })
	require.NoError(t, err)
	evaluator, err := evaluation.NewEvaluator(orc, t.TempDir(), 3, 300, 10, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)
	store, err := checkpoint.NewStore(t.TempDir(), nil, nil)
	require.NoError(t, err)

	_, err = NewLoop(Options{
		Config:      cfg,
		RunID:       "run-resume",
		Agent:       policy,
		Sampler:     mcmc.NewSampler(cfg.FeatDim, 10, nil),
		Evaluator:   evaluator,
		Checkpoints: store,
	})
	require.Error(t, err)
}

func TestLearn_EndToEnd(t *testing.T) {
	loop, dir := newTestLoop(t, smallConfig(), Hooks{})

	summary, err := loop.Learn(context.Background(), testCorpus)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Epochs)
	assert.GreaterOrEqual(t, summary.BestEpoch, 0)
	assert.False(t, summary.BestReturn < 0)

	// The trace never leaks into the next run.
	assert.Zero(t, loop.policy.Trace().NumSamples())

	// The first sample always improves on the initial best, so at least one
	// checkpoint triple must exist.
	entries, err := os.ReadDir(filepath.Join(dir, "checkpoints"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 3)

	// Both sample logs are written: in-training during epochs, end-of-run by
	// the final pass.
	_, err = os.Stat(filepath.Join(dir, evaluation.SampleLogInTraining))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, evaluation.SampleLogFinal))
	require.NoError(t, err)
}

func TestLearn_HooksInvoked(t *testing.T) {
	rec := &recorder{}
	hooks := Hooks{
		Metrics:   rec,
		Tracker:   rec,
		Runs:      runRecorder{r: rec},
		Registry:  rec,
		Publisher: nil,
	}
	loop, _ := newTestLoop(t, smallConfig(), hooks)

	summary, err := loop.Learn(context.Background(), testCorpus)
	require.NoError(t, err)

	// Tracker.Start and RunRecorder.RecordStart both feed starts.
	assert.Equal(t, 2, rec.starts)
	assert.Equal(t, []int{0, 1}, rec.epochs)
	assert.Equal(t, 1, rec.finishes)
	assert.False(t, rec.finishFailed)
	assert.GreaterOrEqual(t, rec.checkpointed, 1)
	// One loss observation per epoch, one iteration observation per sample.
	assert.Len(t, rec.observedLoss, 2)
	assert.Len(t, rec.observedIters, 4)
	if summary.TotalGenerated > 0 {
		assert.NotEmpty(t, rec.registered)
	}
}

func TestLearn_CountsGenerationStalls(t *testing.T) {
	// A single training molecule yields a grammar with two building blocks;
	// fifty unique molecules are unreachable, so every evaluation gives up
	// via the stall guard and the metrics hook must see it.
	cfg := smallConfig()
	cfg.MaxEpochs = 1
	cfg.MCMCSize = 1
	cfg.NumGeneratedSamples = 50
	cfg.StallThreshold = 5

	rec := &recorder{}
	loop, _ := newTestLoop(t, cfg, Hooks{Metrics: rec})

	_, err := loop.Learn(context.Background(), []string{"CCO"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rec.stalls, 1)
}

// synDrop turns every oracle verdict negative once the first epoch ends.
type synDrop struct {
	recorder
	allow *bool
}

func (s *synDrop) EpochCompleted(loss float64) { *s.allow = false }

func TestLearn_CheckpointDirStopsGrowingAfterBestEpoch(t *testing.T) {
	// Epoch 0 scores with a positive oracle (return >= 2); later epochs carry
	// diversity alone (return <= 1) and must not add checkpoints.
	dir := t.TempDir()
	cfg := smallConfig()
	cfg.MaxEpochs = 3
	cfg.MCMCSize = 1

	allow := true
	policy, err := agent.New(cfg.FeatDim, cfg.HiddenSize, cfg.LearningRate, 7)
	require.NoError(t, err)
	orc, err := oracle.NewInProcessOracle(func(string) bool { return allow })
	require.NoError(t, err)
	evaluator, err := evaluation.NewEvaluator(orc, dir,
		cfg.NumGeneratedSamples, cfg.StallThreshold, cfg.MaxRolloutIters,
		rand.New(rand.NewSource(11)), nil)
	require.NoError(t, err)
	store, err := checkpoint.NewStore(filepath.Join(dir, "checkpoints"), nil, nil)
	require.NoError(t, err)

	loop, err := NewLoop(Options{
		Config:      cfg,
		RunID:       "run-best",
		Agent:       policy,
		Sampler:     mcmc.NewSampler(cfg.FeatDim, cfg.MaxRolloutIters, nil),
		Evaluator:   evaluator,
		Checkpoints: store,
		Hooks:       Hooks{Metrics: &synDrop{allow: &allow}},
	})
	require.NoError(t, err)

	summary, err := loop.Learn(context.Background(), testCorpus)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Epochs)
	assert.Equal(t, 0, summary.BestEpoch)

	// Exactly one agent/grammar/input-graphs triple, all from epoch 0.
	entries, err := os.ReadDir(filepath.Join(dir, "checkpoints"))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Contains(t, e.Name(), "_0_", e.Name())
	}
}

func TestLearn_CanceledContext(t *testing.T) {
	rec := &recorder{}
	loop, _ := newTestLoop(t, smallConfig(), Hooks{Tracker: rec})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loop.Learn(ctx, testCorpus)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
	assert.Equal(t, 1, rec.finishes)
	assert.True(t, rec.finishFailed)
}

//Personal.AI order the ending
