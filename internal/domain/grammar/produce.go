package grammar

import (
	"math/rand"
	"strings"

	"github.com/turtacn/MolGrammar-Learner/internal/domain/molecule"
)

// RandomProduce runs one stochastic derivation of the corpus: it seeds the
// structure with a random rule and keeps splicing random rule fragments into
// open attachment points.  The derivation succeeds when no attachment points
// remain; it fails (nil molecule) when the corpus is empty, the iteration
// bound is hit with open attachments, or the assembled SMILES is invalid.
//
// The returned count is the number of rule applications performed; the
// sampler uses it for credit assignment, so it is returned on failure too.
func RandomProduce(corpus *RuleCorpus, rng *rand.Rand, maxIters int) (*molecule.Molecule, int) {
	if corpus == nil || corpus.NumRules() == 0 {
		return nil, 0
	}
	if maxIters < 1 {
		maxIters = 1
	}

	seed := corpus.Rule(rng.Intn(corpus.NumRules()))
	current := seed.Fragment
	iters := 1

	for strings.Contains(current, AttachmentPoint) && iters < maxIters {
		next := corpus.Rule(rng.Intn(corpus.NumRules()))
		current = strings.Replace(current, AttachmentPoint, spliceForm(next), 1)
		iters++
	}

	if strings.Contains(current, AttachmentPoint) {
		// Derivation never terminated.
		return nil, iters
	}

	mol, err := molecule.NewMolecule(current)
	if err != nil {
		return nil, iters
	}
	return mol, iters
}

// spliceForm consumes the fragment's first attachment point; it is the bond
// junction to the structure under construction.  Remaining attachment points
// stay open for later splices.
func spliceForm(r *ProductionRule) string {
	return strings.Replace(r.Fragment, AttachmentPoint, "", 1)
}

//Personal.AI order the ending
