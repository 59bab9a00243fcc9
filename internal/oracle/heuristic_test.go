package oracle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicScore(t *testing.T) {
	tests := []struct {
		name   string
		smiles string
		want   bool
	}{
		{"simple chain", "CCO", true},
		{"branched", "CC(C)C", true},
		{"ring", "C1CCCCC1", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"unbalanced parens", "CC(C", false},
		{"no atoms", "123", false},
		{"oversized", strings.Repeat("C", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeuristicScore(tt.smiles))
		})
	}
}

//Personal.AI order the ending
