package grammar

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// FragmentFeatures maps a rule fragment to a fixed-width feature vector for
// the policy network.  Atom unigrams and bigrams are hashed into the vector
// and the result is L2-normalized, so structurally similar fragments land on
// overlapping coordinates.  The same fragment always maps to the same vector.
func FragmentFeatures(fragment string, dim int) []float64 {
	features := make([]float64, dim)
	if dim <= 0 {
		return features
	}

	tokens := tokenizeAtoms(fragment)
	for i, tok := range tokens {
		features[hashToken(tok)%uint64(dim)]++
		if i+1 < len(tokens) {
			features[hashToken(tok+"~"+tokens[i+1])%uint64(dim)]++
		}
	}

	// Attachment count carries valence information the atom sequence lacks.
	arity := countAttachments(fragment)
	if arity > 0 {
		features[hashToken("arity")%uint64(dim)] += float64(arity)
	}

	var norm float64
	for _, v := range features {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range features {
			features[i] /= norm
		}
	}
	return features
}

func hashToken(tok string) uint64 {
	hash := sha256.Sum256([]byte(tok))
	return binary.BigEndian.Uint64(hash[:8])
}

//Personal.AI order the ending
