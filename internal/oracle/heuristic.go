package oracle

import (
	"strings"
	"unicode"

	"github.com/turtacn/MolGrammar-Learner/internal/domain/molecule"
)

// Heavy-atom ceiling for the reference scorer.  Generated molecules beyond
// this size are practically never retro-synthesizable and the real planner
// rejects them after a long search, so the heuristic short-circuits.
const heuristicMaxHeavyAtoms = 60

// HeuristicScore is the reference ScoreFunc used by the bundled worker when
// no external retro-synthesis planner is attached.  It accepts a molecule
// when the SMILES parses, carries at least one heavy atom, and stays under a
// size ceiling.  It exists so the full training loop can run end-to-end out
// of the box; production runs replace it with a planner-backed worker that
// speaks the same file protocol.
func HeuristicScore(smiles string) bool {
	if strings.TrimSpace(smiles) == "" {
		return false
	}
	if _, err := molecule.NewMolecule(smiles); err != nil {
		return false
	}
	// Letter count over-approximates heavy atoms (two-letter elements count
	// twice) which is fine for a ceiling check.
	heavy := 0
	for _, r := range smiles {
		if unicode.IsLetter(r) && r != 'H' && r != 'h' {
			heavy++
		}
	}
	return heavy >= 1 && heavy <= heuristicMaxHeavyAtoms
}

//Personal.AI order the ending
