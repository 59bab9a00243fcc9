package oracle

import (
	"context"
	"time"

	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// ScoreObserver receives the outcome of every oracle round trip: how long the
// call took and whether it failed.  The monitoring layer implements it to
// expose request counts and latency histograms.
type ScoreObserver interface {
	ObserveRoundtrip(elapsed time.Duration, err error)
}

// InstrumentedOracle wraps a SynthesisOracle and reports every Score call to
// an observer.  Empty batches are not reported; they never leave the process.
type InstrumentedOracle struct {
	inner    SynthesisOracle
	observer ScoreObserver
}

// NewInstrumentedOracle decorates inner with per-call observation.
func NewInstrumentedOracle(inner SynthesisOracle, observer ScoreObserver) (*InstrumentedOracle, error) {
	if inner == nil {
		return nil, errors.New(errors.ErrCodeValidation, "inner oracle is required")
	}
	if observer == nil {
		return nil, errors.New(errors.ErrCodeValidation, "score observer is required")
	}
	return &InstrumentedOracle{inner: inner, observer: observer}, nil
}

// Score delegates to the wrapped oracle and records the round trip.
func (o *InstrumentedOracle) Score(ctx context.Context, smiles []string) (float64, error) {
	if len(smiles) == 0 {
		return o.inner.Score(ctx, smiles)
	}
	start := time.Now()
	score, err := o.inner.Score(ctx, smiles)
	o.observer.ObserveRoundtrip(time.Since(start), err)
	return score, err
}

//Personal.AI order the ending
