// Package grammar implements the evolving molecular production-rule corpus at
// the heart of the grammar-learning loop.  A production rule joins SMILES
// fragments at marked attachment points; the corpus is versioned and supports
// deep, independent cloning so MCMC samples never alias each other's state.
//
// The decomposition and derivation here operate on linearized atom sequences.
// This is a simplified scheme; a production system would decompose and rebuild
// molecules over an RDKit-style molecular graph.
package grammar

import (
	"fmt"
	"strings"

	"github.com/turtacn/MolGrammar-Learner/pkg/errors"
)

// AttachmentPoint marks an open valence in a rule fragment where another
// fragment may be joined during derivation.
const AttachmentPoint = "*"

// ─────────────────────────────────────────────────────────────────────────────
// ProductionRule
// ─────────────────────────────────────────────────────────────────────────────

// ProductionRule is a single grammar rule: a SMILES fragment whose '*'
// characters mark attachment points.  A rule with arity 0 is terminal — its
// fragment is a complete structure on its own.
type ProductionRule struct {
	// Fragment is the SMILES fragment, attachment points included.
	Fragment string `json:"fragment"`

	// Arity is the number of attachment points in the fragment.
	Arity int `json:"arity"`
}

// NewProductionRule validates the fragment and constructs a rule.
func NewProductionRule(fragment string) (*ProductionRule, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, errors.New(errors.ErrCodeGrammarRuleInvalid, "rule fragment cannot be empty")
	}
	if fragment == AttachmentPoint {
		return nil, errors.New(errors.ErrCodeGrammarRuleInvalid, "rule fragment must contain at least one atom").
			WithDetail(fmt.Sprintf("fragment=%s", fragment))
	}

	return &ProductionRule{
		Fragment: fragment,
		Arity:    strings.Count(fragment, AttachmentPoint),
	}, nil
}

// IsTerminal reports whether the rule has no open attachment points.
func (r *ProductionRule) IsTerminal() bool { return r.Arity == 0 }

// Clone returns an independent copy of the rule.
func (r *ProductionRule) Clone() *ProductionRule {
	cp := *r
	return &cp
}

// ─────────────────────────────────────────────────────────────────────────────
// RuleCorpus
// ─────────────────────────────────────────────────────────────────────────────

// RuleCorpus is the evolving, versioned set of production rules.  It is
// mutated only by the MCMC sampler during a rollout; callers hand each sample
// its own Clone so samples within an epoch never share state.
type RuleCorpus struct {
	// Version increments on every mutation.
	Version int `json:"version"`

	Rules []*ProductionRule `json:"rules"`
}

// NewRuleCorpus constructs an empty corpus.
func NewRuleCorpus() *RuleCorpus {
	return &RuleCorpus{Rules: []*ProductionRule{}}
}

// AddRule appends a rule to the corpus and bumps the version.
func (c *RuleCorpus) AddRule(r *ProductionRule) {
	c.Rules = append(c.Rules, r)
	c.Version++
}

// NumRules returns the number of production rules in the corpus.
func (c *RuleCorpus) NumRules() int { return len(c.Rules) }

// Rule returns the rule at index i.
func (c *RuleCorpus) Rule(i int) *ProductionRule { return c.Rules[i] }

// Clone returns a deep, independent copy of the corpus.
func (c *RuleCorpus) Clone() *RuleCorpus {
	rules := make([]*ProductionRule, len(c.Rules))
	for i, r := range c.Rules {
		rules[i] = r.Clone()
	}
	return &RuleCorpus{Version: c.Version, Rules: rules}
}

//Personal.AI order the ending
