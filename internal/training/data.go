// Package training orchestrates the grammar-learning run: epochs of MCMC
// samples, reward evaluation, policy-gradient updates, and run-global best
// checkpointing.
package training

import (
	"bufio"
	"os"
	"strings"

	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// LoadTrainingData reads one SMILES per line, skipping blank lines and
// dropping duplicates while preserving first-seen order.  A missing file is a
// fatal configuration error.
func LoadTrainingData(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "training data file is not readable").
			WithDetail(path)
	}
	defer f.Close()

	var smiles []string
	seen := map[string]bool{}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		smiles = append(smiles, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read training data").
			WithDetail(path)
	}
	if len(smiles) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "training data contains no molecules").
			WithDetail(path)
	}
	return smiles, nil
}

// TruncateCommFiles empties the oracle request and response files so a new
// run never observes verdicts left over from a previous one.
func TruncateCommFiles(paths ...string) error {
	for _, p := range paths {
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "cannot truncate communication file").
				WithDetail(p)
		}
	}
	return nil
}

//Personal.AI order the ending
