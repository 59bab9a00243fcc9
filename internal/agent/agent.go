// Package agent implements the policy network that scores candidate
// grammar-expansion actions during MCMC rollouts.  The network is a two-layer
// scorer with a softmax over a variable-length candidate set plus one
// always-available terminal action; gradients are computed analytically and
// applied with Adam at the end of each epoch.
//
// During a rollout the agent only samples actions; parameters stay frozen
// until Update runs, so the log-probabilities recorded in the trace remain
// exact when the end-of-epoch loss is assembled.
package agent

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// Agent is the softmax policy over grammar-expansion actions.
type Agent struct {
	featDim    int
	hiddenSize int

	// Two-layer scorer: logit(x) = w2·relu(W1·x + b1) + b2.
	// The terminal action carries its own learned logit bTerm.
	w1    [][]float64 // [hidden][feat]
	b1    []float64   // [hidden]
	w2    []float64   // [hidden]
	b2    float64
	bTerm float64

	rng   *rand.Rand
	opt   *adam
	trace *Trace
}

// New constructs an agent with Xavier-style initialized parameters.
// seed fixes the action-sampling and initialization randomness.
func New(featDim, hiddenSize int, learningRate float64, seed int64) (*Agent, error) {
	if featDim < 1 || hiddenSize < 1 {
		return nil, errors.New(errors.ErrCodeValidation, "agent dimensions must be positive").
			WithDetail(fmt.Sprintf("feat_dim=%d hidden_size=%d", featDim, hiddenSize))
	}
	if learningRate <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "learning rate must be positive")
	}

	rng := rand.New(rand.NewSource(seed))

	a := &Agent{
		featDim:    featDim,
		hiddenSize: hiddenSize,
		w1:         make([][]float64, hiddenSize),
		b1:         make([]float64, hiddenSize),
		w2:         make([]float64, hiddenSize),
		rng:        rng,
		trace:      NewTrace(),
	}

	scale1 := math.Sqrt(2.0 / float64(featDim+hiddenSize))
	for i := range a.w1 {
		a.w1[i] = make([]float64, featDim)
		for j := range a.w1[i] {
			a.w1[i][j] = rng.NormFloat64() * scale1
		}
	}
	scale2 := math.Sqrt(2.0 / float64(hiddenSize+1))
	for i := range a.w2 {
		a.w2[i] = rng.NormFloat64() * scale2
	}

	a.opt = newAdam(learningRate, a.paramCount())
	return a, nil
}

// FeatDim returns the expected candidate feature dimensionality.
func (a *Agent) FeatDim() int { return a.featDim }

// Trace exposes the rollout trace store.
func (a *Agent) Trace() *Trace { return a.trace }

// ─────────────────────────────────────────────────────────────────────────────
// Action selection
// ─────────────────────────────────────────────────────────────────────────────

// Act scores the candidate feature vectors, samples an action from the
// softmax distribution, and records the decision in the trace under
// (sampleIdx, iterIdx).  The returned action index equals len(candidates)
// when the terminal action was chosen.
func (a *Agent) Act(sampleIdx, iterIdx int, candidates [][]float64) (int, float64, error) {
	for i, x := range candidates {
		if len(x) != a.featDim {
			return 0, 0, errors.New(errors.ErrCodeValidation, "candidate feature dimension mismatch").
				WithDetail(fmt.Sprintf("candidate=%d len=%d want=%d", i, len(x), a.featDim))
		}
	}

	logits := a.logits(candidates)
	logProbs := logSoftmax(logits)

	action := a.sampleAction(logProbs)
	logProb := logProbs[action]

	a.trace.Record(sampleIdx, iterIdx, &TraceEntry{
		Candidates: candidates,
		Action:     action,
		LogProb:    logProb,
	})

	return action, logProb, nil
}

// logits computes one logit per candidate plus the terminal logit.
func (a *Agent) logits(candidates [][]float64) []float64 {
	logits := make([]float64, len(candidates)+1)
	for i, x := range candidates {
		_, logit := a.forward(x)
		logits[i] = logit
	}
	logits[len(candidates)] = a.bTerm
	return logits
}

// forward runs one candidate through the scorer, returning the hidden
// activations (needed for backprop) and the scalar logit.
func (a *Agent) forward(x []float64) ([]float64, float64) {
	h := make([]float64, a.hiddenSize)
	logit := a.b2
	for i := 0; i < a.hiddenSize; i++ {
		u := a.b1[i]
		row := a.w1[i]
		for j, xj := range x {
			u += row[j] * xj
		}
		if u > 0 {
			h[i] = u
			logit += a.w2[i] * u
		}
	}
	return h, logit
}

func (a *Agent) sampleAction(logProbs []float64) int {
	r := a.rng.Float64()
	acc := 0.0
	for i, lp := range logProbs {
		acc += math.Exp(lp)
		if r < acc {
			return i
		}
	}
	return len(logProbs) - 1
}

// logSoftmax computes numerically stable log-probabilities.
func logSoftmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, z := range logits[1:] {
		if z > maxLogit {
			maxLogit = z
		}
	}
	sum := 0.0
	for _, z := range logits {
		sum += math.Exp(z - maxLogit)
	}
	logZ := maxLogit + math.Log(sum)

	out := make([]float64, len(logits))
	for i, z := range logits {
		out[i] = z - logZ
	}
	return out
}

//Personal.AI order the ending
