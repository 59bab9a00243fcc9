package training

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

func TestLoadTrainingData_DedupPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.txt")
	content := "CCO\nCCN\n\nCCO\n  CCC  \nCCN\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	smiles, err := LoadTrainingData(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"CCO", "CCN", "CCC"}, smiles)
}

func TestLoadTrainingData_MissingFileIsFatal(t *testing.T) {
	_, err := LoadTrainingData(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestLoadTrainingData_EmptyFileIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o644))

	_, err := LoadTrainingData(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestTruncateCommFiles(t *testing.T) {
	dir := t.TempDir()
	sender := filepath.Join(dir, "sender_file.txt")
	receiver := filepath.Join(dir, "output_syn.txt")
	require.NoError(t, os.WriteFile(sender, []byte("stale request\n"), 0o644))

	require.NoError(t, TruncateCommFiles(sender, receiver))

	for _, p := range []string{sender, receiver} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Empty(t, data)
	}
}

//Personal.AI order the ending
