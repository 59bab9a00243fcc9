package molecule

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/bits"
	"regexp"

	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// Default circular fingerprint parameters, matching the conventional
// Morgan radius-2 / 2048-bit setup used for small-molecule similarity.
const (
	DefaultFingerprintRadius = 2
	DefaultFingerprintBits   = 2048
)

// ─────────────────────────────────────────────────────────────────────────────
// Fingerprint Structure
// ─────────────────────────────────────────────────────────────────────────────

// Fingerprint represents a molecular fingerprint as a packed bit vector.
// Bit i is stored in byte i/8 at bit position i%8.
type Fingerprint struct {
	// Bits is the packed bit vector representation.
	Bits []byte `json:"bits"`

	// Length is the total number of bits in the fingerprint.
	Length int `json:"length"`

	// NumOnBits is the count of set bits (popcount).
	NumOnBits int `json:"num_on_bits"`
}

// NewFingerprint constructs a Fingerprint from raw bit data.
func NewFingerprint(data []byte, length int) *Fingerprint {
	onBits := 0
	for _, b := range data {
		onBits += bits.OnesCount8(b)
	}

	return &Fingerprint{
		Bits:      data,
		Length:    length,
		NumOnBits: onBits,
	}
}

// GetBit returns true if the bit at the given index is set.
func (fp *Fingerprint) GetBit(index int) bool {
	if index < 0 || index >= fp.Length {
		return false
	}
	return (fp.Bits[index/8] & (1 << uint(index%8))) != 0
}

// ─────────────────────────────────────────────────────────────────────────────
// Circular (Morgan-style) Fingerprint
// ─────────────────────────────────────────────────────────────────────────────

// CalculateCircularFingerprint computes a hashed circular fingerprint.  Each
// atom's local environment is hashed at every radius level up to radius and
// folded into an nBits-wide bit vector.  The environment descriptor is built
// from the atom symbol and its sequence neighborhood, so identical structures
// always fold to identical fingerprints.
func CalculateCircularFingerprint(smiles string, radius, nBits int) (*Fingerprint, error) {
	if smiles == "" {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidSMILES, "SMILES string cannot be empty")
	}
	if radius < 0 {
		radius = DefaultFingerprintRadius
	}
	if nBits <= 0 {
		nBits = DefaultFingerprintBits
	}

	atoms := parseSMILESAtoms(smiles)
	if len(atoms) == 0 {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidSMILES, "no atoms found in SMILES")
	}

	data := make([]byte, (nBits+7)/8)

	for i := range atoms {
		for r := 0; r <= radius; r++ {
			env := atomEnvironment(atoms, i, r)
			bitIdx := int(hashEnvironment(env, r) % uint64(nBits))
			setBit(data, bitIdx)
		}
	}

	return NewFingerprint(data, nBits), nil
}

// atomEnvironment returns a descriptor for the atoms within radius r of
// position i in the linearized atom sequence.
func atomEnvironment(atoms []string, i, r int) string {
	lo := i - r
	if lo < 0 {
		lo = 0
	}
	hi := i + r + 1
	if hi > len(atoms) {
		hi = len(atoms)
	}

	env := atoms[i] + "|"
	for _, a := range atoms[lo:hi] {
		env += a
	}
	return env
}

// parseSMILESAtoms extracts individual atom symbols from a SMILES string.
// Two-letter organic-subset elements (Cl, Br) are kept whole; bond symbols,
// ring digits, and brackets are dropped.
func parseSMILESAtoms(smiles string) []string {
	cleaned := smilesStructureChars.ReplaceAllString(smiles, "")

	atoms := make([]string, 0, len(cleaned))
	runes := []rune(cleaned)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if !isAtomChar(ch) {
			continue
		}
		// Cl and Br are the only two-letter elements in the organic subset.
		if i+1 < len(runes) {
			pair := string(ch) + string(runes[i+1])
			if pair == "Cl" || pair == "Br" {
				atoms = append(atoms, pair)
				i++
				continue
			}
		}
		atoms = append(atoms, string(ch))
	}
	return atoms
}

var smilesStructureChars = regexp.MustCompile(`[\[\]0-9\-+=#/\\()@%.*]`)

func isAtomChar(ch rune) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

// hashEnvironment creates a stable hash for an atom's local environment.
func hashEnvironment(env string, radius int) uint64 {
	data := fmt.Sprintf("%s:%d", env, radius)
	hash := sha256.Sum256([]byte(data))
	return binary.BigEndian.Uint64(hash[:8])
}

// setBit sets the bit at the given index in a byte slice.
func setBit(data []byte, index int) {
	data[index/8] |= 1 << uint(index%8)
}

// ─────────────────────────────────────────────────────────────────────────────
// Tanimoto Similarity
// ─────────────────────────────────────────────────────────────────────────────

// TanimotoSimilarity computes the Tanimoto coefficient (Jaccard index) between
// two bit-vector fingerprints.  Returns a value in [0, 1]; two all-zero
// fingerprints are defined to have similarity 0.
func TanimotoSimilarity(fp1, fp2 *Fingerprint) (float64, error) {
	if fp1 == nil || fp2 == nil {
		return 0, errors.New(errors.ErrCodeValidation, "fingerprints must be non-nil")
	}
	if fp1.Length != fp2.Length {
		return 0, errors.New(errors.ErrCodeValidation, "fingerprints must have the same dimension").
			WithDetail(fmt.Sprintf("len1=%d len2=%d", fp1.Length, fp2.Length))
	}

	intersection := 0
	union := 0
	for i := range fp1.Bits {
		intersection += bits.OnesCount8(fp1.Bits[i] & fp2.Bits[i])
		union += bits.OnesCount8(fp1.Bits[i] | fp2.Bits[i])
	}
	if union == 0 {
		return 0, nil
	}
	return float64(intersection) / float64(union), nil
}

//Personal.AI order the ending
