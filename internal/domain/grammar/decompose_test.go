package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeAtoms(t *testing.T) {
	tests := []struct {
		smiles string
		want   []string
	}{
		{"CCO", []string{"C", "C", "O"}},
		{"c1ccccc1", []string{"c", "c", "c", "c", "c", "c"}},
		{"CCl", []string{"C", "Cl"}},
		{"C[NH2+]Br", []string{"C", "[NH2+]", "Br"}},
		{"C(=O)N", []string{"C", "O", "N"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tokenizeAtoms(tt.smiles), "smiles=%s", tt.smiles)
	}
}

func TestDecompose(t *testing.T) {
	// 5 atoms with block size 2: CC | O + cuts marked on both sides.
	frags := decompose("CCOCC", 2)
	assert.Equal(t, []string{"CC*", "*OC*", "*C"}, frags)

	// Exact fit leaves a single terminal fragment.
	frags = decompose("CC", 2)
	assert.Equal(t, []string{"CC"}, frags)

	// Motif-sized blocks keep more structure per fragment.
	frags = decompose("CCOCC", 4)
	assert.Equal(t, []string{"CCOC*", "*C"}, frags)
}

func TestDataProcessing(t *testing.T) {
	set, graphs, err := DataProcessing([]string{"CCOCC", "CCO"}, false)
	require.NoError(t, err)

	require.Len(t, graphs, 2)
	assert.Positive(t, set.Len())

	// The shared leading block "CC*" occurs in both molecules.
	found := false
	for i := 0; i < set.Len(); i++ {
		if set.At(i).Fragment == "CC*" {
			found = true
			assert.Equal(t, 2, set.At(i).Count)
		}
	}
	assert.True(t, found)

	// Every molecule's decomposition is non-empty.
	for _, subgraphs := range graphs {
		assert.NotEmpty(t, subgraphs)
	}
}

func TestDataProcessing_CollapsesCanonicalDuplicates(t *testing.T) {
	// C1CCCCC1 and C2CCCCC2 are textually distinct but renumber to the same
	// canonical molecule; the second spelling contributes nothing.
	set, graphs, err := DataProcessing([]string{"C1CCCCC1", "C2CCCCC2"}, false)
	require.NoError(t, err)

	require.Len(t, graphs, 1)

	reference, _, err := DataProcessing([]string{"C1CCCCC1"}, false)
	require.NoError(t, err)

	require.Equal(t, reference.Len(), set.Len())
	for i := 0; i < set.Len(); i++ {
		assert.Equal(t, reference.At(i).Fragment, set.At(i).Fragment)
		assert.Equal(t, reference.At(i).Count, set.At(i).Count, "fragment=%s", set.At(i).Fragment)
	}
}

func TestDataProcessing_Errors(t *testing.T) {
	_, _, err := DataProcessing(nil, false)
	assert.Error(t, err)

	_, _, err = DataProcessing([]string{"CC(["}, false)
	assert.Error(t, err)
}

func TestSubgraphSet_Remove(t *testing.T) {
	set := NewSubgraphSet()
	set.Add("CC*", 1)
	set.Add("*O*", 2)
	set.Add("*C", 1)

	set.Remove(1)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, "CC*", set.At(0).Fragment)
	assert.Equal(t, "*C", set.At(1).Fragment)

	// Re-adding a removed fragment starts a fresh count.
	set.Add("*O*", 2)
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, 1, set.At(2).Count)

	// Out-of-range removals are ignored.
	set.Remove(-1)
	set.Remove(99)
	assert.Equal(t, 3, set.Len())
}

func TestSubgraphSet_CloneIsIndependent(t *testing.T) {
	set := NewSubgraphSet()
	set.Add("CC*", 1)

	cp := set.Clone()
	cp.Add("*O*", 2)
	cp.At(0).Count = 99

	assert.Equal(t, 1, set.Len())
	assert.Equal(t, 1, set.At(0).Count)
	assert.Equal(t, 2, cp.Len())
}

func TestInputGraphs_CloneIsIndependent(t *testing.T) {
	graphs := InputGraphs{
		"CCO": {{Fragment: "CC*", Arity: 1, Count: 1}},
	}

	cp := graphs.Clone()
	cp["CCO"][0].Fragment = "mutated"
	cp["new"] = nil

	assert.Equal(t, "CC*", graphs["CCO"][0].Fragment)
	assert.Len(t, graphs, 1)
}

//Personal.AI order the ending
