// Package checkpoint persists the (policy parameters, grammar, input graphs)
// triple whenever the training loop observes a new run-wide best return.
// Artifacts are plain JSON files in the run's log directory; an optional
// archiver mirrors them to object storage.
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/turtacn/MolGrammar-Learner/internal/agent"
	"github.com/turtacn/MolGrammar-Learner/internal/domain/grammar"
	"github.com/turtacn/MolGrammar-Learner/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// Archiver mirrors a checkpoint file to durable remote storage.
type Archiver interface {
	Store(ctx context.Context, localPath string) error
}

// Artifacts names the three files written for one best-return checkpoint.
type Artifacts struct {
	AgentPath       string
	GrammarPath     string
	InputGraphsPath string
}

// Store writes checkpoints into a run directory.
type Store struct {
	dir      string
	archiver Archiver
	log      logging.Logger
}

// NewStore creates the directory if needed.  archiver may be nil.
func NewStore(dir string, archiver Archiver, log logging.Logger) (*Store, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeValidation, "checkpoint directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCheckpointFailed, "cannot create checkpoint directory").
			WithDetail(dir)
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{dir: dir, archiver: archiver, log: log}, nil
}

// Dir returns the checkpoint directory.
func (s *Store) Dir() string { return s.dir }

// SaveBest persists the triple for a new best return.  Files are named with
// the epoch and the return value, so successive bests never overwrite each
// other.  Archive failures are logged but do not fail the checkpoint; the
// local copy is the source of truth.
func (s *Store) SaveBest(ctx context.Context, epoch int, ret float64, ag *agent.Agent, corpus *grammar.RuleCorpus, graphs grammar.InputGraphs) (*Artifacts, error) {
	suffix := fmt.Sprintf("%d_%g.json", epoch, ret)
	art := &Artifacts{
		AgentPath:       filepath.Join(s.dir, "epoch_agent_"+suffix),
		GrammarPath:     filepath.Join(s.dir, "epoch_grammar_"+suffix),
		InputGraphsPath: filepath.Join(s.dir, "epoch_input_graphs_"+suffix),
	}

	if err := s.writeAgent(art.AgentPath, ag); err != nil {
		return nil, err
	}
	if err := writeJSON(art.GrammarPath, corpus); err != nil {
		return nil, err
	}
	if err := writeJSON(art.InputGraphsPath, graphs); err != nil {
		return nil, err
	}

	s.log.Info("checkpoint saved",
		logging.Int("epoch", epoch),
		logging.Float64("return", ret),
		logging.String("dir", s.dir),
	)

	if s.archiver != nil {
		for _, path := range []string{art.AgentPath, art.GrammarPath, art.InputGraphsPath} {
			if err := s.archiver.Store(ctx, path); err != nil {
				s.log.Warn("checkpoint archive failed", logging.String("path", path), logging.Err(err))
			}
		}
	}

	return art, nil
}

func (s *Store) writeAgent(path string, ag *agent.Agent) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCheckpointFailed, "cannot create checkpoint file").
			WithDetail(path)
	}
	defer f.Close()
	return ag.Save(f)
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCheckpointFailed, "cannot create checkpoint file").
			WithDetail(path)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(v); err != nil {
		return errors.Wrap(err, errors.ErrCodeCheckpointFailed, "cannot serialize checkpoint").
			WithDetail(path)
	}
	return nil
}

// LoadAgent restores policy parameters from a checkpoint file into ag.
func LoadAgent(path string, ag *agent.Agent) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeResumeUnavailable, "cannot open agent checkpoint").
			WithDetail(path)
	}
	defer f.Close()
	return ag.Load(f)
}

// LoadCorpus restores a grammar checkpoint.
func LoadCorpus(path string) (*grammar.RuleCorpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeResumeUnavailable, "cannot open grammar checkpoint").
			WithDetail(path)
	}
	corpus := &grammar.RuleCorpus{}
	if err := json.Unmarshal(data, corpus); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "cannot parse grammar checkpoint").
			WithDetail(path)
	}
	return corpus, nil
}

// LoadInputGraphs restores an input-graph checkpoint.
func LoadInputGraphs(path string) (grammar.InputGraphs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeResumeUnavailable, "cannot open input-graph checkpoint").
			WithDetail(path)
	}
	graphs := grammar.InputGraphs{}
	if err := json.Unmarshal(data, &graphs); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "cannot parse input-graph checkpoint").
			WithDetail(path)
	}
	return graphs, nil
}

//Personal.AI order the ending
