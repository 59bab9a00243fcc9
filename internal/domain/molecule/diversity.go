package molecule

import (
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// InternalDiversity computes the internal diversity of a molecule set: one
// minus the mean pairwise Tanimoto similarity over all unordered pairs.
// A set of structurally unrelated molecules scores close to 1, a set of
// near-duplicates close to 0.
//
// Fewer than two molecules carry no pairwise structure; the diversity of such
// a set is defined as 0.
func InternalDiversity(mols []*Molecule) (float64, error) {
	if len(mols) < 2 {
		return 0, nil
	}

	fps := make([]*Fingerprint, len(mols))
	for i, m := range mols {
		fp, err := m.Fingerprint()
		if err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeDiversityFailed, "diversity computation failed")
		}
		fps[i] = fp
	}

	var total float64
	var pairs int
	for i := 0; i < len(fps); i++ {
		for j := i + 1; j < len(fps); j++ {
			sim, err := TanimotoSimilarity(fps[i], fps[j])
			if err != nil {
				return 0, errors.Wrap(err, errors.ErrCodeDiversityFailed, "diversity computation failed")
			}
			total += sim
			pairs++
		}
	}

	return 1 - total/float64(pairs), nil
}

//Personal.AI order the ending
