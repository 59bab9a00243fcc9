// Package evaluation measures the quality of a candidate grammar by sampling
// molecules from it.  A generation loop draws until the unique-molecule
// target is met or the grammar stalls (too many consecutive duplicate or
// failed draws), then the requested metrics are computed over the retained
// unique set.
package evaluation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/turtacn/MolGrammar-Learner/internal/domain/grammar"
	"github.com/turtacn/MolGrammar-Learner/internal/domain/molecule"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/internal/oracle"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// Metric names accepted by Evaluate.
const (
	MetricDiversity  = "diversity"
	MetricNumRules   = "num_rules"
	MetricNumSamples = "num_samples"
	MetricSyn        = "syn"
)

// Append-only sample logs.  Every successfully generated molecule is logged,
// duplicates included; only the in-memory result set is deduplicated.
const (
	SampleLogInTraining = "generated_samples.in-training.txt"
	SampleLogFinal      = "generated_samples.the-end.txt"
)

// FullRunTarget selects the configured per-evaluation sample target and the
// in-training sample log.
const FullRunTarget = -1

// Result carries one evaluation's outcome.  Generated is the number of
// unique molecules accepted during this call; the training loop accumulates
// it into the run-wide total that sizes the final generation pass.  Stalled
// reports that the loop gave up short of its target because too many
// consecutive draws produced nothing new.
type Result struct {
	Metrics   map[string]float64
	Unique    []*molecule.Molecule
	Generated int
	Stalled   bool
}

// Evaluator runs generation loops against a synthesis oracle.
type Evaluator struct {
	oracle         oracle.SynthesisOracle
	outputDir      string
	sampleTarget   int
	stallThreshold int
	maxDeriveIters int
	rng            *rand.Rand
	log            logging.Logger
}

// NewEvaluator constructs an evaluator.  sampleTarget is the unique-molecule
// goal of a training-time evaluation; stallThreshold bounds consecutive
// non-novel draws; maxDeriveIters bounds a single derivation.
func NewEvaluator(
	orc oracle.SynthesisOracle,
	outputDir string,
	sampleTarget, stallThreshold, maxDeriveIters int,
	rng *rand.Rand,
	log logging.Logger,
) (*Evaluator, error) {
	if orc == nil {
		return nil, errors.New(errors.ErrCodeValidation, "synthesis oracle is required")
	}
	if sampleTarget < 1 {
		return nil, errors.New(errors.ErrCodeValidation, "sample target must be positive")
	}
	if stallThreshold < 1 {
		return nil, errors.New(errors.ErrCodeValidation, "stall threshold must be positive")
	}
	if rng == nil {
		return nil, errors.New(errors.ErrCodeValidation, "random source is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Evaluator{
		oracle:         orc,
		outputDir:      outputDir,
		sampleTarget:   sampleTarget,
		stallThreshold: stallThreshold,
		maxDeriveIters: maxDeriveIters,
		rng:            rng,
		log:            log,
	}, nil
}

// Evaluate generates molecules from corpus and computes the requested
// metrics.  toGenerate == FullRunTarget runs a training-time evaluation with
// the configured target; any other value runs a sized generation pass logged
// to the end-of-run sample file (metrics may be empty for a pure export).
//
// An unknown metric name is a fatal configuration error.
func (e *Evaluator) Evaluate(ctx context.Context, corpus *grammar.RuleCorpus, metrics []string, toGenerate int) (*Result, error) {
	for _, m := range metrics {
		switch m {
		case MetricDiversity, MetricNumRules, MetricNumSamples, MetricSyn:
		default:
			return nil, errors.New(errors.ErrCodeUnknownMetric, "unknown evaluation metric").
				WithDetail(m)
		}
	}

	target := e.sampleTarget
	logName := SampleLogInTraining
	if toGenerate != FullRunTarget {
		target = toGenerate
		logName = SampleLogFinal
	}

	unique, err := e.generate(corpus, target, logName)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Metrics:   map[string]float64{},
		Unique:    unique,
		Generated: len(unique),
		Stalled:   len(unique) < target,
	}

	for _, m := range metrics {
		switch m {
		case MetricDiversity:
			div, err := molecule.InternalDiversity(unique)
			if err != nil {
				return nil, err
			}
			result.Metrics[m] = div
		case MetricNumRules:
			result.Metrics[m] = float64(corpus.NumRules())
		case MetricNumSamples:
			result.Metrics[m] = float64(len(unique))
		case MetricSyn:
			keys := make([]string, len(unique))
			for i, mol := range unique {
				keys[i] = mol.CanonicalSMILES
			}
			syn, err := e.oracle.Score(ctx, keys)
			if err != nil {
				return nil, err
			}
			result.Metrics[m] = syn
		}
	}

	return result, nil
}

// generate runs the dedup loop: draws stop when the unique target is met or
// the stall counter exceeds its threshold.  The counter resets on every newly
// accepted unique molecule and increments on every duplicate or failed draw.
func (e *Evaluator) generate(corpus *grammar.RuleCorpus, target int, logName string) ([]*molecule.Molecule, error) {
	logFile, err := os.OpenFile(filepath.Join(e.outputDir, logName), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "cannot open sample log").
			WithDetail(logName)
	}
	defer logFile.Close()

	var unique []*molecule.Molecule
	seen := map[string]bool{}
	stall := 0

	for len(unique) < target && stall <= e.stallThreshold {
		mol, _ := grammar.RandomProduce(corpus, e.rng, e.maxDeriveIters)
		if mol == nil {
			stall++
			continue
		}

		if _, err := fmt.Fprintln(logFile, mol.CanonicalSMILES); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "cannot append to sample log")
		}

		if seen[mol.Key()] {
			stall++
			continue
		}
		seen[mol.Key()] = true
		unique = append(unique, mol)
		stall = 0
	}

	e.log.Info("generation loop finished",
		logging.Int("unique", len(unique)),
		logging.Int("target", target),
		logging.Int("num_rules", corpus.NumRules()),
		logging.Bool("stalled", len(unique) < target),
	)

	return unique, nil
}

//Personal.AI order the ending
