// Package mcmc implements the policy-guided rollout that proposes candidate
// grammars.  Each sample walks over the remaining subgraph pool, asking the
// policy at every step either to promote one subgraph into a production rule
// or to stop; the policy's decisions are traced for the end-of-epoch update.
package mcmc

import (
	"github.com/turtacn/MolGrammar-Learner/internal/agent"
	"github.com/turtacn/MolGrammar-Learner/internal/domain/grammar"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
)

// Sampler performs one rollout per call.  It is stateless across samples;
// all evolving state (corpus, subgraph pool, input graphs) is supplied by the
// caller as independent clones.
type Sampler struct {
	featDim  int
	maxIters int
	log      logging.Logger
}

// NewSampler constructs a sampler.  featDim must match the policy's feature
// dimensionality; maxIters bounds a rollout when the policy never emits the
// terminal action.
func NewSampler(featDim, maxIters int, log logging.Logger) *Sampler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if maxIters < 1 {
		maxIters = 1
	}
	return &Sampler{featDim: featDim, maxIters: maxIters, log: log}
}

// Sample runs one policy-guided rollout.  At iteration i the policy sees one
// candidate per remaining subgraph plus the terminal action; choosing a
// subgraph promotes it into a production rule and removes it from the pool.
// The rollout ends on the terminal action, pool exhaustion, or the iteration
// bound.
//
// corpus, subgraphs, and inputGraphs must be clones owned by this sample;
// they are mutated in place and returned for the caller's convenience.
func (s *Sampler) Sample(
	policy *agent.Agent,
	inputGraphs grammar.InputGraphs,
	subgraphs *grammar.SubgraphSet,
	corpus *grammar.RuleCorpus,
	sampleIdx int,
) (int, *grammar.RuleCorpus, grammar.InputGraphs, error) {
	iters := 0

	for iters < s.maxIters && subgraphs.Len() > 0 {
		candidates := make([][]float64, subgraphs.Len())
		for i := 0; i < subgraphs.Len(); i++ {
			candidates[i] = grammar.FragmentFeatures(subgraphs.At(i).Fragment, s.featDim)
		}

		action, logProb, err := policy.Act(sampleIdx, iters, candidates)
		if err != nil {
			return iters, corpus, inputGraphs, err
		}

		if action == len(candidates) {
			// Terminal action: the policy is satisfied with the corpus.
			iters++
			break
		}

		chosen := subgraphs.At(action)
		rule, err := grammar.NewProductionRule(chosen.Fragment)
		if err != nil {
			return iters, corpus, inputGraphs, err
		}
		corpus.AddRule(rule)
		subgraphs.Remove(action)

		s.log.Debug("rollout step",
			logging.Int("sample", sampleIdx),
			logging.Int("iteration", iters),
			logging.String("fragment", chosen.Fragment),
			logging.Float64("log_prob", logProb),
			logging.Int("num_rules", corpus.NumRules()),
		)
		iters++
	}

	return iters, corpus, inputGraphs, nil
}

//Personal.AI order the ending
