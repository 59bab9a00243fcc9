package agent

import (
	"fmt"
	"math"

	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// Update performs the end-of-epoch REINFORCE step.  For every trace entry at
// (sample s, iteration k) the loss accumulates
//
//	-logProb * gamma^(maxIter(s) - k) * normReturns[s]
//
// so later rollout steps within a sample carry more weight.  Gradients are
// computed analytically by rerunning the recorded forward passes and applied
// with a single Adam step.  The trace is NOT cleared here; the training loop
// owns that bookkeeping.
//
// normReturns must hold one mean-normalized return per sample index present
// in the trace; a missing key is a fatal bookkeeping bug.
func (a *Agent) Update(normReturns map[int]float64, gamma float64) (float64, error) {
	if gamma <= 0 || gamma > 1 {
		return 0, errors.New(errors.ErrCodeValidation, "discount factor out of range").
			WithDetail(fmt.Sprintf("gamma=%g", gamma))
	}

	grads := make([]float64, a.paramCount())
	loss := 0.0

	for _, sampleIdx := range a.trace.SampleKeys() {
		ret, ok := normReturns[sampleIdx]
		if !ok {
			return 0, errors.New(errors.ErrCodeTraceInvariant, "trace sample has no matching return").
				WithDetail(fmt.Sprintf("sample=%d", sampleIdx))
		}

		maxIter := a.trace.MaxIter(sampleIdx)
		for _, iterIdx := range a.trace.IterKeys(sampleIdx) {
			coeff := math.Pow(gamma, float64(maxIter-iterIdx)) * ret
			for _, e := range a.trace.Entries(sampleIdx, iterIdx) {
				loss += -e.LogProb * coeff
				a.accumulateGradients(grads, e, coeff)
			}
		}
	}

	params := a.flattenParams()
	a.opt.apply(params, grads)
	a.unflattenParams(params)

	return loss, nil
}

// accumulateGradients adds d(coeff * -log p(action)) / dθ for one recorded
// decision.  With softmax logits z, d(-log p_a)/dz_j = p_j - 1{j==a}; the
// per-candidate logits backprop through the two-layer scorer and the terminal
// logit through its bias.
func (a *Agent) accumulateGradients(grads []float64, e *TraceEntry, coeff float64) {
	logits := a.logits(e.Candidates)
	logProbs := logSoftmax(logits)

	n := len(e.Candidates)
	for j := 0; j <= n; j++ {
		dz := math.Exp(logProbs[j])
		if j == e.Action {
			dz -= 1
		}
		dz *= coeff
		if dz == 0 {
			continue
		}

		if j == n {
			grads[a.offsetBTerm()] += dz
			continue
		}

		x := e.Candidates[j]
		h, _ := a.forward(x)

		// logit = w2·h + b2
		for i := 0; i < a.hiddenSize; i++ {
			grads[a.offsetW2()+i] += dz * h[i]
			if h[i] > 0 {
				du := dz * a.w2[i]
				grads[a.offsetB1()+i] += du
				base := a.offsetW1() + i*a.featDim
				for k, xk := range x {
					grads[base+k] += du * xk
				}
			}
		}
		grads[a.offsetB2()] += dz
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Flattened parameter layout: w1 | b1 | w2 | b2 | bTerm
// ─────────────────────────────────────────────────────────────────────────────

func (a *Agent) paramCount() int {
	return a.hiddenSize*a.featDim + a.hiddenSize + a.hiddenSize + 2
}

func (a *Agent) offsetW1() int    { return 0 }
func (a *Agent) offsetB1() int    { return a.hiddenSize * a.featDim }
func (a *Agent) offsetW2() int    { return a.offsetB1() + a.hiddenSize }
func (a *Agent) offsetB2() int    { return a.offsetW2() + a.hiddenSize }
func (a *Agent) offsetBTerm() int { return a.offsetB2() + 1 }

func (a *Agent) flattenParams() []float64 {
	params := make([]float64, a.paramCount())
	for i, row := range a.w1 {
		copy(params[a.offsetW1()+i*a.featDim:], row)
	}
	copy(params[a.offsetB1():], a.b1)
	copy(params[a.offsetW2():], a.w2)
	params[a.offsetB2()] = a.b2
	params[a.offsetBTerm()] = a.bTerm
	return params
}

func (a *Agent) unflattenParams(params []float64) {
	for i, row := range a.w1 {
		copy(row, params[a.offsetW1()+i*a.featDim:a.offsetW1()+(i+1)*a.featDim])
	}
	copy(a.b1, params[a.offsetB1():a.offsetW2()])
	copy(a.w2, params[a.offsetW2():a.offsetB2()])
	a.b2 = params[a.offsetB2()]
	a.bTerm = params[a.offsetBTerm()]
}

//Personal.AI order the ending
