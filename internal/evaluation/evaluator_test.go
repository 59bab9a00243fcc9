package evaluation

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolGrammar-Learner/internal/domain/grammar"
	"github.com/turtacn/MolGrammar-Learner/internal/oracle"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

func alwaysTrueOracle(t *testing.T) oracle.SynthesisOracle {
	t.Helper()
	o, err := oracle.NewInProcessOracle(func(string) bool { return true })
	require.NoError(t, err)
	return o
}

func terminalCorpus(t *testing.T, fragments ...string) *grammar.RuleCorpus {
	t.Helper()
	c := grammar.NewRuleCorpus()
	for _, frag := range fragments {
		r, err := grammar.NewProductionRule(frag)
		require.NoError(t, err)
		c.AddRule(r)
	}
	return c
}

func newTestEvaluator(t *testing.T, dir string, target int) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(alwaysTrueOracle(t), dir, target, 10, 50, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)
	return e
}

func TestEvaluate_AllMetrics(t *testing.T) {
	dir := t.TempDir()
	// Generous stall threshold: this test is about metric computation, not
	// stall behavior.
	e, err := NewEvaluator(alwaysTrueOracle(t), dir, 3, 200, 50, rand.New(rand.NewSource(1)), nil)
	require.NoError(t, err)
	corpus := terminalCorpus(t, "CCO", "CCN", "c1ccccc1")

	res, err := e.Evaluate(context.Background(), corpus,
		[]string{MetricDiversity, MetricNumRules, MetricNumSamples, MetricSyn}, FullRunTarget)
	require.NoError(t, err)

	assert.Equal(t, 3.0, res.Metrics[MetricNumRules])
	assert.Equal(t, 3.0, res.Metrics[MetricNumSamples])
	assert.Equal(t, 1.0, res.Metrics[MetricSyn])
	assert.Greater(t, res.Metrics[MetricDiversity], 0.0)
	assert.Equal(t, 3, res.Generated)
	assert.False(t, res.Stalled)
	assert.Len(t, res.Unique, 3)

	// No two retained molecules share a canonical SMILES.
	seen := map[string]bool{}
	for _, m := range res.Unique {
		assert.False(t, seen[m.Key()])
		seen[m.Key()] = true
	}
}

func TestEvaluate_UnknownMetricIsFatal(t *testing.T) {
	dir := t.TempDir()
	e := newTestEvaluator(t, dir, 3)
	corpus := terminalCorpus(t, "CCO")

	_, err := e.Evaluate(context.Background(), corpus, []string{"novelty"}, FullRunTarget)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownMetric))
}

func TestEvaluate_StallOnCollapsedGrammar(t *testing.T) {
	// A single terminal rule yields the same molecule forever: one unique
	// accept, then 11 consecutive duplicates trip the stall threshold even
	// though the target of 5 is unmet.
	dir := t.TempDir()
	e := newTestEvaluator(t, dir, 5)
	corpus := terminalCorpus(t, "CCO")

	res, err := e.Evaluate(context.Background(), corpus, []string{MetricNumSamples}, FullRunTarget)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Metrics[MetricNumSamples])
	assert.Equal(t, 1, res.Generated)
	assert.True(t, res.Stalled)

	// The sample log records every successful draw, duplicates included:
	// 1 unique accept + 11 duplicate draws before the loop halts.
	data, err := os.ReadFile(filepath.Join(dir, SampleLogInTraining))
	require.NoError(t, err)
	assert.Equal(t, 12, strings.Count(string(data), "\n"))
}

func TestEvaluate_EmptyCorpusStalls(t *testing.T) {
	// Every draw fails; the stall counter alone terminates the loop.
	dir := t.TempDir()
	e := newTestEvaluator(t, dir, 5)

	res, err := e.Evaluate(context.Background(), grammar.NewRuleCorpus(), nil, FullRunTarget)
	require.NoError(t, err)
	assert.Empty(t, res.Unique)
	assert.Equal(t, 0, res.Generated)
	assert.True(t, res.Stalled)
}

func TestEvaluate_FinalPassUsesEndLog(t *testing.T) {
	dir := t.TempDir()
	e := newTestEvaluator(t, dir, 3)
	corpus := terminalCorpus(t, "CCO", "CCN")

	res, err := e.Evaluate(context.Background(), corpus, nil, 2)
	require.NoError(t, err)
	assert.Len(t, res.Unique, 2)
	assert.Empty(t, res.Metrics)

	_, err = os.Stat(filepath.Join(dir, SampleLogFinal))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, SampleLogInTraining))
	assert.True(t, os.IsNotExist(err))
}

func TestNewEvaluator_Validation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := NewEvaluator(nil, t.TempDir(), 3, 10, 50, rng, nil)
	assert.Error(t, err)

	_, err = NewEvaluator(alwaysTrueOracle(t), t.TempDir(), 0, 10, 50, rng, nil)
	assert.Error(t, err)

	_, err = NewEvaluator(alwaysTrueOracle(t), t.TempDir(), 3, 0, 50, rng, nil)
	assert.Error(t, err)

	_, err = NewEvaluator(alwaysTrueOracle(t), t.TempDir(), 3, 10, 50, nil, nil)
	assert.Error(t, err)
}

//Personal.AI order the ending
