// Package oracle provides the synthesizability oracle the evaluator consults
// for every batch of generated molecules.  The oracle is an interface so the
// training loop can run against an in-process scorer in tests while the
// file-mediated transport talks to an external retrosynthesis worker.
package oracle

import (
	"context"

	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// SynthesisOracle scores a batch of canonical SMILES strings and returns the
// fraction judged synthesizable, a value in [0, 1].  Implementations block
// until a verdict for every molecule is available or ctx is done.
type SynthesisOracle interface {
	Score(ctx context.Context, smiles []string) (float64, error)
}

// ScoreFunc judges a single molecule.
type ScoreFunc func(smiles string) bool

// InProcessOracle scores molecules with a local function, bypassing the file
// transport entirely.
type InProcessOracle struct {
	fn ScoreFunc
}

// NewInProcessOracle constructs an oracle around fn.
func NewInProcessOracle(fn ScoreFunc) (*InProcessOracle, error) {
	if fn == nil {
		return nil, errors.New(errors.ErrCodeValidation, "score function is required")
	}
	return &InProcessOracle{fn: fn}, nil
}

// Score returns the mean of the per-molecule verdicts.  An empty batch scores
// zero without consulting the function.
func (o *InProcessOracle) Score(ctx context.Context, smiles []string) (float64, error) {
	if len(smiles) == 0 {
		return 0, nil
	}

	positive := 0
	for _, s := range smiles {
		select {
		case <-ctx.Done():
			return 0, errors.Wrap(ctx.Err(), errors.ErrCodeOracleUnavailable, "oracle scoring canceled")
		default:
		}
		if o.fn(s) {
			positive++
		}
	}
	return float64(positive) / float64(len(smiles)), nil
}

//Personal.AI order the ending
