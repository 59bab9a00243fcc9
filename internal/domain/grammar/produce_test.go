package grammar

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRule(t *testing.T, fragment string) *ProductionRule {
	t.Helper()
	r, err := NewProductionRule(fragment)
	require.NoError(t, err)
	return r
}

func TestRandomProduce_EmptyCorpus(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	mol, iters := RandomProduce(nil, rng, 50)
	assert.Nil(t, mol)
	assert.Equal(t, 0, iters)

	mol, iters = RandomProduce(NewRuleCorpus(), rng, 50)
	assert.Nil(t, mol)
	assert.Equal(t, 0, iters)
}

func TestRandomProduce_SingleTerminalRule(t *testing.T) {
	c := NewRuleCorpus()
	c.AddRule(mustRule(t, "CCO"))
	rng := rand.New(rand.NewSource(1))

	mol, iters := RandomProduce(c, rng, 50)
	require.NotNil(t, mol)
	assert.Equal(t, "CCO", mol.SMILES)
	assert.Equal(t, 1, iters)
}

func TestRandomProduce_NonTerminatingCorpus(t *testing.T) {
	// A lone two-attachment rule can never close the derivation: every splice
	// consumes one attachment point and opens another.
	c := NewRuleCorpus()
	c.AddRule(mustRule(t, "*CC*"))
	rng := rand.New(rand.NewSource(1))

	mol, iters := RandomProduce(c, rng, 20)
	assert.Nil(t, mol)
	assert.Equal(t, 20, iters)
}

func TestRandomProduce_MixedCorpus(t *testing.T) {
	c := NewRuleCorpus()
	c.AddRule(mustRule(t, "CC"))
	c.AddRule(mustRule(t, "*CO"))
	c.AddRule(mustRule(t, "*CC*"))
	rng := rand.New(rand.NewSource(7))

	successes := 0
	for i := 0; i < 100; i++ {
		mol, iters := RandomProduce(c, rng, 50)
		assert.Positive(t, iters)
		if mol != nil {
			successes++
			assert.NotContains(t, mol.SMILES, AttachmentPoint)
		}
	}
	// Terminal rules make up two thirds of the corpus; most derivations close.
	assert.Positive(t, successes)
}

//Personal.AI order the ending
