package training

import (
	"context"
	"math"

	"github.com/turtacn/MolGrammar-Learner/internal/agent"
	"github.com/turtacn/MolGrammar-Learner/internal/config"
	"github.com/turtacn/MolGrammar-Learner/internal/domain/grammar"
	"github.com/turtacn/MolGrammar-Learner/internal/evaluation"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/checkpoint"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/internal/mcmc"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// Hooks carries the optional integrations of a training run.  Every field may
// be nil; hook failures are logged and never abort the run.
type Hooks struct {
	Metrics   Metrics
	Tracker   StatusTracker
	Publisher EventPublisher
	Runs      RunRecorder
	Registry  MoleculeRegistry
}

// Options aggregates everything a Loop needs.
type Options struct {
	Config      config.TrainingConfig
	RunID       string
	Agent       *agent.Agent
	Sampler     *mcmc.Sampler
	Evaluator   *evaluation.Evaluator
	Checkpoints *checkpoint.Store
	Logger      logging.Logger
	Hooks       Hooks
}

// Summary is the outcome of a completed run.
type Summary struct {
	RunID          string
	Epochs         int
	BestEpoch      int
	BestReturn     float64
	FinalLoss      float64
	TotalGenerated int
}

// Loop is the training orchestrator.  It is single-threaded by design: MCMC
// samples within an epoch run strictly sequentially, each blocking on its own
// oracle round-trip.
type Loop struct {
	cfg         config.TrainingConfig
	runID       string
	policy      *agent.Agent
	sampler     *mcmc.Sampler
	evaluator   *evaluation.Evaluator
	checkpoints *checkpoint.Store
	hooks       Hooks
	log         logging.Logger
}

// NewLoop validates the wiring and builds a Loop.
func NewLoop(opts Options) (*Loop, error) {
	if opts.Agent == nil {
		return nil, errors.New(errors.ErrCodeValidation, "policy agent is required")
	}
	if opts.Sampler == nil {
		return nil, errors.New(errors.ErrCodeValidation, "mcmc sampler is required")
	}
	if opts.Evaluator == nil {
		return nil, errors.New(errors.ErrCodeValidation, "evaluator is required")
	}
	if opts.Checkpoints == nil {
		return nil, errors.New(errors.ErrCodeValidation, "checkpoint store is required")
	}
	if opts.RunID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "run id must not be empty")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}

	loop := &Loop{
		cfg:         opts.Config,
		runID:       opts.RunID,
		policy:      opts.Agent,
		sampler:     opts.Sampler,
		evaluator:   opts.Evaluator,
		checkpoints: opts.Checkpoints,
		hooks:       opts.Hooks,
		log:         opts.Logger,
	}

	if opts.Config.Resume {
		if err := checkpoint.LoadAgent(opts.Config.ResumePath, opts.Agent); err != nil {
			return nil, err
		}
		loop.log.Info("resumed policy parameters", logging.String("path", opts.Config.ResumePath))
	}
	return loop, nil
}

// Learn runs the full training schedule over the SMILES corpus and finishes
// with one metric-free generation pass sized by the number of molecules the
// run accepted in total.
func (l *Loop) Learn(ctx context.Context, corpus []string) (*Summary, error) {
	subgraphs, inputGraphs, err := grammar.DataProcessing(corpus, l.cfg.Motif)
	if err != nil {
		return nil, err
	}

	l.log.Info("training data decomposed",
		logging.Int("molecules", len(corpus)),
		logging.Int("subgraphs", subgraphs.Len()),
		logging.Bool("motif", l.cfg.Motif))

	l.announceStart(ctx, len(corpus))

	summary := &Summary{RunID: l.runID, BestEpoch: -1, BestReturn: math.Inf(-1)}
	var lastCorpus *grammar.RuleCorpus

	for epoch := 0; epoch < l.cfg.MaxEpochs; epoch++ {
		select {
		case <-ctx.Done():
			l.finish(ctx, summary, true)
			return nil, errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "training canceled")
		default:
		}

		returns := make([]float64, 0, l.cfg.MCMCSize)
		var sumDiversity, sumSyn float64

		for sample := 0; sample < l.cfg.MCMCSize; sample++ {
			// Every sample starts from an empty grammar and its own deep
			// copies so samples within an epoch never alias state.
			sampleCorpus := grammar.NewRuleCorpus()
			sampleSubgraphs := subgraphs.Clone()
			sampleGraphs := inputGraphs.Clone()

			iters, sampleCorpus, sampleGraphs, err := l.sampler.Sample(
				l.policy, sampleGraphs, sampleSubgraphs, sampleCorpus, sample)
			if err != nil {
				l.finish(ctx, summary, true)
				return nil, err
			}
			l.observeSample(iters, sampleCorpus.NumRules())

			result, err := l.evaluator.Evaluate(ctx, sampleCorpus,
				[]string{evaluation.MetricDiversity, evaluation.MetricSyn}, evaluation.FullRunTarget)
			if err != nil {
				l.finish(ctx, summary, true)
				return nil, err
			}

			summary.TotalGenerated += result.Generated
			l.recordGenerated(ctx, result, "in_training", summary.TotalGenerated)

			diversity := result.Metrics[evaluation.MetricDiversity]
			syn := result.Metrics[evaluation.MetricSyn]
			ret := diversity + 2*syn
			returns = append(returns, ret)
			sumDiversity += diversity
			sumSyn += syn

			if l.hooks.Metrics != nil {
				l.hooks.Metrics.ObserveReturn(ret)
			}

			if ret > summary.BestReturn {
				summary.BestReturn = ret
				summary.BestEpoch = epoch
				l.saveBest(ctx, epoch, ret, sampleCorpus, sampleGraphs)
			}

			lastCorpus = sampleCorpus

			l.log.Debug("sample evaluated",
				logging.Int("epoch", epoch),
				logging.Int("sample", sample),
				logging.Int("iterations", iters),
				logging.Int("num_rules", sampleCorpus.NumRules()),
				logging.Float64("diversity", diversity),
				logging.Float64("syn", syn),
				logging.Float64("return", ret))
		}

		// Every sampled trace key must have a return; a mismatch means the
		// rollout and the reward stream diverged and no correct update
		// exists.
		if l.policy.Trace().NumSamples() != len(returns) {
			l.finish(ctx, summary, true)
			return nil, errors.New(errors.ErrCodeTraceInvariant, "trace sample count does not match collected returns")
		}

		loss, err := l.policy.Update(normalizeReturns(returns), l.cfg.Gamma)
		if err != nil {
			l.finish(ctx, summary, true)
			return nil, err
		}
		l.policy.Trace().Clear()
		summary.Epochs = epoch + 1
		summary.FinalLoss = loss

		meanReturn := mean(returns)
		l.recordEpoch(ctx, epoch, meanReturn, sumDiversity/float64(len(returns)), sumSyn/float64(len(returns)), loss)

		l.log.Info("epoch completed",
			logging.Int("epoch", epoch),
			logging.Float64("mean_return", meanReturn),
			logging.Float64("best_return", summary.BestReturn),
			logging.Float64("loss", loss),
			logging.Int("total_generated", summary.TotalGenerated))
	}

	// Final pass: regenerate at full-run scale with no metrics, purely to
	// export the end-of-run sample log.
	if lastCorpus != nil {
		final, err := l.evaluator.Evaluate(ctx, lastCorpus, nil, summary.TotalGenerated)
		if err != nil {
			l.finish(ctx, summary, true)
			return nil, err
		}
		if l.hooks.Metrics != nil {
			l.hooks.Metrics.AddGenerated("final", final.Generated)
			if final.Stalled {
				l.hooks.Metrics.GenerationStalled()
			}
		}
	}

	l.finish(ctx, summary, false)
	return summary, nil
}

// normalizeReturns subtracts the batch mean, keyed by sample index.  No
// variance normalization.
func normalizeReturns(returns []float64) map[int]float64 {
	m := mean(returns)
	norm := make(map[int]float64, len(returns))
	for i, r := range returns {
		norm[i] = r - m
	}
	return norm
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// ─────────────────────────────────────────────────────────────────────────────
// Hook plumbing — best-effort, never fatal
// ─────────────────────────────────────────────────────────────────────────────

func (l *Loop) announceStart(ctx context.Context, numMolecules int) {
	if l.hooks.Tracker != nil {
		l.hooks.Tracker.Start(l.runID, l.cfg.MaxEpochs)
	}
	if l.hooks.Runs != nil {
		if err := l.hooks.Runs.RecordStart(ctx, l.runID, l.cfg.TrainingData, numMolecules, l.cfg.MaxEpochs, l.cfg.MCMCSize); err != nil {
			l.log.Warn("run store unavailable", logging.Err(err))
		}
	}
	if l.hooks.Publisher != nil {
		if err := l.hooks.Publisher.RunStarted(ctx, l.cfg.TrainingData, numMolecules, l.cfg.MaxEpochs, l.cfg.MCMCSize); err != nil {
			l.log.Warn("failed to publish run-started event", logging.Err(err))
		}
	}
}

func (l *Loop) observeSample(iters, numRules int) {
	if l.hooks.Metrics != nil {
		l.hooks.Metrics.ObserveSample(iters, numRules)
	}
}

func (l *Loop) recordGenerated(ctx context.Context, result *evaluation.Result, phase string, total int) {
	if l.hooks.Metrics != nil {
		l.hooks.Metrics.AddGenerated(phase, result.Generated)
		if result.Stalled {
			l.hooks.Metrics.GenerationStalled()
		}
	}
	if l.hooks.Tracker != nil {
		l.hooks.Tracker.RecordGenerated(total)
	}
	if l.hooks.Registry != nil && result.Generated > 0 {
		canonical := make([]string, len(result.Unique))
		for i, mol := range result.Unique {
			canonical[i] = mol.CanonicalSMILES
		}
		if err := l.hooks.Registry.Record(ctx, canonical); err != nil {
			l.log.Warn("molecule registry unavailable", logging.Err(err))
		}
	}
}

func (l *Loop) saveBest(ctx context.Context, epoch int, ret float64, corpus *grammar.RuleCorpus, graphs grammar.InputGraphs) {
	artifacts, err := l.checkpoints.SaveBest(ctx, epoch, ret, l.policy, corpus, graphs)
	if err != nil {
		// Checkpoint loss is survivable; the run can still improve later.
		l.log.Error("failed to persist best checkpoint",
			logging.Int("epoch", epoch),
			logging.Float64("return", ret),
			logging.Err(err))
		return
	}

	l.log.Info("new best checkpoint",
		logging.Int("epoch", epoch),
		logging.Float64("return", ret),
		logging.String("agent", artifacts.AgentPath))

	if l.hooks.Metrics != nil {
		l.hooks.Metrics.CheckpointSaved(ret)
	}
	if l.hooks.Tracker != nil {
		l.hooks.Tracker.RecordBest(epoch, ret)
	}
	if l.hooks.Publisher != nil {
		if err := l.hooks.Publisher.CheckpointSaved(ctx, epoch, ret, artifacts.AgentPath, artifacts.GrammarPath); err != nil {
			l.log.Warn("failed to publish checkpoint event", logging.Err(err))
		}
	}
}

func (l *Loop) recordEpoch(ctx context.Context, epoch int, meanReturn, meanDiversity, meanSyn, loss float64) {
	if l.hooks.Metrics != nil {
		l.hooks.Metrics.EpochCompleted(loss)
	}
	if l.hooks.Tracker != nil {
		l.hooks.Tracker.RecordEpoch(epoch, meanReturn)
	}
	if l.hooks.Runs != nil {
		if err := l.hooks.Runs.RecordEpoch(ctx, l.runID, epoch, meanReturn, meanDiversity, meanSyn, loss); err != nil {
			l.log.Warn("failed to record epoch metrics", logging.Err(err))
		}
	}
	if l.hooks.Publisher != nil {
		if err := l.hooks.Publisher.EpochCompleted(ctx, epoch, meanReturn, meanDiversity, meanSyn, loss); err != nil {
			l.log.Warn("failed to publish epoch event", logging.Err(err))
		}
	}
}

func (l *Loop) finish(ctx context.Context, summary *Summary, failed bool) {
	best := summary.BestReturn
	if math.IsInf(best, -1) {
		best = 0
	}
	if l.hooks.Tracker != nil {
		l.hooks.Tracker.Finish(failed)
	}
	if l.hooks.Runs != nil {
		if err := l.hooks.Runs.RecordFinish(ctx, l.runID, failed, best, summary.TotalGenerated); err != nil {
			l.log.Warn("failed to record run completion", logging.Err(err))
		}
	}
	if l.hooks.Publisher != nil {
		if err := l.hooks.Publisher.RunCompleted(ctx, summary.Epochs, best, summary.TotalGenerated); err != nil {
			l.log.Warn("failed to publish run-completed event", logging.Err(err))
		}
	}
}

//Personal.AI order the ending
