package grammar

// Subgraph is one building block extracted from a training molecule: a SMILES
// fragment with attachment points, together with how many times it occurs
// across the training set.
type Subgraph struct {
	Fragment string `json:"fragment"`
	Arity    int    `json:"arity"`
	Count    int    `json:"count"`
}

// Clone returns an independent copy.
func (s *Subgraph) Clone() *Subgraph {
	cp := *s
	return &cp
}

// ─────────────────────────────────────────────────────────────────────────────
// SubgraphSet
// ─────────────────────────────────────────────────────────────────────────────

// SubgraphSet is the ordered pool of candidate building blocks the MCMC
// sampler draws from when proposing new production rules.  Order is
// deterministic (first-seen across the training set) so rollouts are
// reproducible under a fixed random seed.
type SubgraphSet struct {
	Subgraphs []*Subgraph `json:"subgraphs"`

	index map[string]int
}

// NewSubgraphSet constructs an empty set.
func NewSubgraphSet() *SubgraphSet {
	return &SubgraphSet{
		Subgraphs: []*Subgraph{},
		index:     map[string]int{},
	}
}

// Add inserts a fragment occurrence, aggregating counts for repeats.
func (s *SubgraphSet) Add(fragment string, arity int) {
	if i, ok := s.index[fragment]; ok {
		s.Subgraphs[i].Count++
		return
	}
	s.index[fragment] = len(s.Subgraphs)
	s.Subgraphs = append(s.Subgraphs, &Subgraph{Fragment: fragment, Arity: arity, Count: 1})
}

// Len returns the number of distinct subgraphs.
func (s *SubgraphSet) Len() int { return len(s.Subgraphs) }

// At returns the subgraph at index i.
func (s *SubgraphSet) At(i int) *Subgraph { return s.Subgraphs[i] }

// Remove deletes the subgraph at index i, preserving order.
func (s *SubgraphSet) Remove(i int) {
	if i < 0 || i >= len(s.Subgraphs) {
		return
	}
	delete(s.index, s.Subgraphs[i].Fragment)
	s.Subgraphs = append(s.Subgraphs[:i], s.Subgraphs[i+1:]...)
	for j := i; j < len(s.Subgraphs); j++ {
		s.index[s.Subgraphs[j].Fragment] = j
	}
}

// Clone returns a deep, independent copy of the set.
func (s *SubgraphSet) Clone() *SubgraphSet {
	cp := NewSubgraphSet()
	for _, sg := range s.Subgraphs {
		cp.index[sg.Fragment] = len(cp.Subgraphs)
		cp.Subgraphs = append(cp.Subgraphs, sg.Clone())
	}
	return cp
}

// ─────────────────────────────────────────────────────────────────────────────
// InputGraphs
// ─────────────────────────────────────────────────────────────────────────────

// InputGraphs maps each training molecule (by canonical SMILES) to its
// subgraph decomposition.  Like RuleCorpus it follows a clone-per-sample
// discipline.
type InputGraphs map[string][]*Subgraph

// Clone returns a deep, independent copy.
func (g InputGraphs) Clone() InputGraphs {
	cp := make(InputGraphs, len(g))
	for key, subgraphs := range g {
		list := make([]*Subgraph, len(subgraphs))
		for i, sg := range subgraphs {
			list[i] = sg.Clone()
		}
		cp[key] = list
	}
	return cp
}

//Personal.AI order the ending
