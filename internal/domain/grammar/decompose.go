package grammar

import (
	"fmt"

	"github.com/turtacn/MolGrammar-Learner/internal/domain/molecule"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// Building-block window sizes for the two decomposition modes.  Motif mode
// uses larger blocks, intended for polymer datasets where the repeating unit
// is the natural vocabulary.
const (
	atomBlockSize  = 2
	motifBlockSize = 4
)

// DataProcessing builds the initial subgraph pool and per-molecule input
// graphs from the training SMILES list.  Each molecule's atom sequence is
// partitioned into consecutive building blocks; cut boundaries become
// attachment points.  Duplicate fragments across molecules aggregate their
// counts.  Textual duplicates must already be removed by the caller; entries
// that canonicalize to an already-seen molecule are skipped here so they
// neither clobber its input graph nor inflate the fragment pool.
func DataProcessing(smilesList []string, motif bool) (*SubgraphSet, InputGraphs, error) {
	if len(smilesList) == 0 {
		return nil, nil, errors.New(errors.ErrCodeValidation, "training set is empty")
	}

	blockSize := atomBlockSize
	if motif {
		blockSize = motifBlockSize
	}

	set := NewSubgraphSet()
	graphs := make(InputGraphs, len(smilesList))

	for _, smiles := range smilesList {
		mol, err := molecule.NewMolecule(smiles)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeGrammarDecomposeError, "cannot decompose training molecule").
				WithDetail(fmt.Sprintf("smiles=%s", smiles))
		}

		if _, dup := graphs[mol.CanonicalSMILES]; dup {
			continue
		}

		fragments := decompose(mol.SMILES, blockSize)
		if len(fragments) == 0 {
			return nil, nil, errors.New(errors.ErrCodeGrammarDecomposeError, "molecule produced no building blocks").
				WithDetail(fmt.Sprintf("smiles=%s", smiles))
		}

		subgraphs := make([]*Subgraph, 0, len(fragments))
		for _, frag := range fragments {
			arity := countAttachments(frag)
			set.Add(frag, arity)
			subgraphs = append(subgraphs, &Subgraph{Fragment: frag, Arity: arity, Count: 1})
		}
		graphs[mol.CanonicalSMILES] = subgraphs
	}

	return set, graphs, nil
}

// decompose partitions the molecule's atom sequence into consecutive blocks
// of at most blockSize atoms.  Interior cut boundaries are marked with
// attachment points on both sides of the cut.
func decompose(smiles string, blockSize int) []string {
	tokens := tokenizeAtoms(smiles)
	if len(tokens) == 0 {
		return nil
	}

	var fragments []string
	for start := 0; start < len(tokens); start += blockSize {
		end := start + blockSize
		if end > len(tokens) {
			end = len(tokens)
		}

		frag := ""
		if start > 0 {
			frag += AttachmentPoint
		}
		for _, tok := range tokens[start:end] {
			frag += tok
		}
		if end < len(tokens) {
			frag += AttachmentPoint
		}
		fragments = append(fragments, frag)
	}
	return fragments
}

func countAttachments(fragment string) int {
	n := 0
	for _, ch := range fragment {
		if string(ch) == AttachmentPoint {
			n++
		}
	}
	return n
}

// tokenizeAtoms splits a SMILES string into atom tokens.  Bracket atoms are
// kept whole so charges and isotopes survive fragmentation; Cl and Br are the
// only two-letter organic-subset elements.  Bond symbols, ring digits, and
// branch parentheses are dropped — the fragments live on the linearized atom
// sequence.
func tokenizeAtoms(smiles string) []string {
	var tokens []string
	runes := []rune(smiles)

	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '[':
			j := i + 1
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j < len(runes) {
				tokens = append(tokens, string(runes[i:j+1]))
				i = j
			}
		case isAtomLetter(ch):
			if i+1 < len(runes) {
				pair := string(ch) + string(runes[i+1])
				if pair == "Cl" || pair == "Br" {
					tokens = append(tokens, pair)
					i++
					continue
				}
			}
			tokens = append(tokens, string(ch))
		}
	}
	return tokens
}

func isAtomLetter(ch rune) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

//Personal.AI order the ending
