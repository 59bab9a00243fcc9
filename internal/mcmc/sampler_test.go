package mcmc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolGrammar-Learner/internal/agent"
	"github.com/turtacn/MolGrammar-Learner/internal/domain/grammar"
)

func newTestPolicy(t *testing.T) *agent.Agent {
	t.Helper()
	a, err := agent.New(16, 8, 0.01, 42)
	require.NoError(t, err)
	return a
}

func testSubgraphs() *grammar.SubgraphSet {
	set := grammar.NewSubgraphSet()
	set.Add("CC*", 1)
	set.Add("*OC*", 2)
	set.Add("*C", 1)
	set.Add("c1ccccc1", 0)
	return set
}

func TestSample_PromotesSubgraphsIntoRules(t *testing.T) {
	policy := newTestPolicy(t)
	s := NewSampler(16, 10, nil)

	set := testSubgraphs()
	initialPool := set.Len()
	corpus := grammar.NewRuleCorpus()
	graphs := grammar.InputGraphs{}

	iters, corpusOut, graphsOut, err := s.Sample(policy, graphs, set, corpus, 0)
	require.NoError(t, err)

	assert.Same(t, corpus, corpusOut)
	assert.Positive(t, iters)
	assert.LessOrEqual(t, iters, 10)
	assert.Equal(t, initialPool, set.Len()+corpusOut.NumRules())
	assert.NotNil(t, graphsOut)

	// Every step was traced under this sample index.
	entries := 0
	for _, iterIdx := range policy.Trace().IterKeys(0) {
		entries += len(policy.Trace().Entries(0, iterIdx))
	}
	assert.Equal(t, iters, entries)
}

func TestSample_IterationBound(t *testing.T) {
	policy := newTestPolicy(t)
	s := NewSampler(16, 2, nil)

	set := testSubgraphs()
	iters, corpus, _, err := s.Sample(policy, grammar.InputGraphs{}, set, grammar.NewRuleCorpus(), 1)
	require.NoError(t, err)

	assert.LessOrEqual(t, iters, 2)
	assert.LessOrEqual(t, corpus.NumRules(), 2)
}

func TestSample_EmptyPool(t *testing.T) {
	policy := newTestPolicy(t)
	s := NewSampler(16, 10, nil)

	iters, corpus, _, err := s.Sample(policy, grammar.InputGraphs{}, grammar.NewSubgraphSet(), grammar.NewRuleCorpus(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, iters)
	assert.Equal(t, 0, corpus.NumRules())
	assert.Equal(t, 0, policy.Trace().NumSamples())
}

func TestSample_DistinctSampleIndices(t *testing.T) {
	policy := newTestPolicy(t)
	s := NewSampler(16, 10, nil)

	for num := 0; num < 3; num++ {
		set := testSubgraphs()
		_, _, _, err := s.Sample(policy, grammar.InputGraphs{}, set, grammar.NewRuleCorpus(), num)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{0, 1, 2}, policy.Trace().SampleKeys())
}

//Personal.AI order the ending
