// Package molecule provides the molecular value objects used throughout the
// grammar-learning harness.  A Molecule wraps a SMILES string together with its
// canonical form (the dedup key for generated samples) and a hashed circular
// fingerprint used by the diversity metric.
package molecule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Molecule Value Object
// ─────────────────────────────────────────────────────────────────────────────

// Molecule is an immutable value object for a single chemical structure.
// Equality of generated samples is decided by CanonicalSMILES, never by the
// raw SMILES text.
type Molecule struct {
	// SMILES is the structure exactly as written by its producer.
	SMILES string `json:"smiles"`

	// CanonicalSMILES is the normalized form used as the identity key for
	// deduplication across a generation loop and across runs.
	CanonicalSMILES string `json:"canonical_smiles"`

	// AtomCount is the number of heavy-atom symbols in the structure.
	AtomCount int `json:"atom_count"`

	fingerprint *Fingerprint
}

// validSMILESChars defines the allowed character set for SMILES notation.
// This is a simplified check; full SMILES validation requires a parser.
var validSMILESChars = regexp.MustCompile(`^[A-Za-z0-9@+\-\[\]()=#/\\%.*]+$`)

// NewMolecule constructs a Molecule from a SMILES string.  It performs basic
// validation (character set, bracket matching) and computes the canonical
// form.  Returns an error with code MOL_001 if the SMILES string is invalid.
func NewMolecule(smiles string) (*Molecule, error) {
	smiles = strings.TrimSpace(smiles)
	if smiles == "" {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidSMILES, "SMILES string cannot be empty")
	}

	if !validSMILESChars.MatchString(smiles) {
		return nil, errors.New(errors.ErrCodeMoleculeInvalidSMILES, "SMILES contains invalid characters").
			WithDetail(fmt.Sprintf("smiles=%s", smiles))
	}

	if err := validateBrackets(smiles); err != nil {
		return nil, err
	}

	canonical := CanonicalizeSMILES(smiles)

	return &Molecule{
		SMILES:          smiles,
		CanonicalSMILES: canonical,
		AtomCount:       len(parseSMILESAtoms(smiles)),
	}, nil
}

// MustMolecule is a test helper that panics on an invalid SMILES string.
func MustMolecule(smiles string) *Molecule {
	m, err := NewMolecule(smiles)
	if err != nil {
		panic(err)
	}
	return m
}

// Key returns the identity key used for deduplication.
func (m *Molecule) Key() string { return m.CanonicalSMILES }

// String implements fmt.Stringer.
func (m *Molecule) String() string { return m.SMILES }

// Fingerprint returns the molecule's circular fingerprint, computing and
// caching it on first use.
func (m *Molecule) Fingerprint() (*Fingerprint, error) {
	if m.fingerprint != nil {
		return m.fingerprint, nil
	}
	fp, err := CalculateCircularFingerprint(m.CanonicalSMILES, DefaultFingerprintRadius, DefaultFingerprintBits)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFingerprintFailed, "fingerprint calculation failed").
			WithDetail(fmt.Sprintf("smiles=%s", m.SMILES))
	}
	m.fingerprint = fp
	return fp, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation and Canonicalization
// ─────────────────────────────────────────────────────────────────────────────

// validateBrackets checks that all brackets in the SMILES string are balanced.
func validateBrackets(smiles string) error {
	var stack []rune
	closers := map[rune]rune{
		')': '(',
		']': '[',
	}

	for _, ch := range smiles {
		switch ch {
		case '(', '[':
			stack = append(stack, ch)
		case ')', ']':
			if len(stack) == 0 || stack[len(stack)-1] != closers[ch] {
				return errors.New(errors.ErrCodeMoleculeInvalidSMILES, "unmatched brackets in SMILES").
					WithDetail(fmt.Sprintf("smiles=%s", smiles))
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) != 0 {
		return errors.New(errors.ErrCodeMoleculeInvalidSMILES, "unclosed brackets in SMILES").
			WithDetail(fmt.Sprintf("smiles=%s", smiles))
	}

	return nil
}

// CanonicalizeSMILES produces a normalized SMILES string suitable as a
// deduplication key.  Ring-closure digits are renumbered in first-seen order
// and dot-separated fragments are sorted, so two derivations that differ only
// in ring numbering or fragment order map to the same key.  This is a
// lightweight normalization, not a full graph canonicalization.
func CanonicalizeSMILES(smiles string) string {
	smiles = strings.TrimSpace(smiles)

	fragments := strings.Split(smiles, ".")
	for i, frag := range fragments {
		fragments[i] = renumberRingClosures(frag)
	}
	if len(fragments) > 1 {
		sortStrings(fragments)
	}
	return strings.Join(fragments, ".")
}

// renumberRingClosures rewrites single-digit ring-closure labels in first-seen
// order.  Atom charges and isotopes inside square brackets are left untouched.
func renumberRingClosures(smiles string) string {
	var sb strings.Builder
	sb.Grow(len(smiles))

	mapping := map[rune]rune{}
	next := '1'
	inBracket := false

	for _, ch := range smiles {
		switch {
		case ch == '[':
			inBracket = true
			sb.WriteRune(ch)
		case ch == ']':
			inBracket = false
			sb.WriteRune(ch)
		case !inBracket && ch >= '1' && ch <= '9':
			mapped, ok := mapping[ch]
			if !ok {
				mapped = next
				mapping[ch] = mapped
				if next < '9' {
					next++
				}
			}
			sb.WriteRune(mapped)
		default:
			sb.WriteRune(ch)
		}
	}

	return sb.String()
}

// sortStrings is an insertion sort; fragment lists are tiny.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

//Personal.AI order the ending
