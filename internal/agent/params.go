package agent

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// Params is the serializable state of an agent, used for checkpoints and for
// resuming a run.
type Params struct {
	FeatDim    int         `json:"feat_dim"`
	HiddenSize int         `json:"hidden_size"`
	W1         [][]float64 `json:"w1"`
	B1         []float64   `json:"b1"`
	W2         []float64   `json:"w2"`
	B2         float64     `json:"b2"`
	BTerm      float64     `json:"b_term"`
}

// StateDict returns a deep copy of the agent's parameters.
func (a *Agent) StateDict() *Params {
	w1 := make([][]float64, len(a.w1))
	for i, row := range a.w1 {
		w1[i] = append([]float64(nil), row...)
	}
	return &Params{
		FeatDim:    a.featDim,
		HiddenSize: a.hiddenSize,
		W1:         w1,
		B1:         append([]float64(nil), a.b1...),
		W2:         append([]float64(nil), a.w2...),
		B2:         a.b2,
		BTerm:      a.bTerm,
	}
}

// LoadStateDict replaces the agent's parameters with p.  Dimensions must
// match the agent's construction-time configuration.
func (a *Agent) LoadStateDict(p *Params) error {
	if p.FeatDim != a.featDim || p.HiddenSize != a.hiddenSize {
		return errors.New(errors.ErrCodeResumeUnavailable, "checkpoint dimensions do not match agent").
			WithDetail(fmt.Sprintf("ckpt=%dx%d agent=%dx%d", p.FeatDim, p.HiddenSize, a.featDim, a.hiddenSize))
	}
	if len(p.W1) != a.hiddenSize || len(p.B1) != a.hiddenSize || len(p.W2) != a.hiddenSize {
		return errors.New(errors.ErrCodeResumeUnavailable, "checkpoint parameter shapes are inconsistent")
	}
	for i, row := range p.W1 {
		if len(row) != a.featDim {
			return errors.New(errors.ErrCodeResumeUnavailable, "checkpoint parameter shapes are inconsistent").
				WithDetail(fmt.Sprintf("w1 row %d has %d columns", i, len(row)))
		}
		copy(a.w1[i], row)
	}
	copy(a.b1, p.B1)
	copy(a.w2, p.W2)
	a.b2 = p.B2
	a.bTerm = p.BTerm
	return nil
}

// Save writes the agent's parameters as JSON.
func (a *Agent) Save(w io.Writer) error {
	if err := json.NewEncoder(w).Encode(a.StateDict()); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to serialize agent parameters")
	}
	return nil
}

// Load restores the agent's parameters from JSON previously written by Save.
func (a *Agent) Load(r io.Reader) error {
	p := &Params{}
	if err := json.NewDecoder(r).Decode(p); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to deserialize agent parameters")
	}
	return a.LoadStateDict(p)
}

//Personal.AI order the ending
