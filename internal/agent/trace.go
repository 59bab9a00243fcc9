package agent

import "sort"

// TraceEntry records one policy decision: the candidate features presented,
// the chosen action, and its log-probability at selection time.  Candidates
// are kept so the end-of-epoch update can rerun the forward pass — parameters
// do not move between Act and Update, so the recomputed distribution matches
// the recorded one exactly.
type TraceEntry struct {
	Candidates [][]float64
	Action     int
	LogProb    float64
}

// Trace stores rollout decisions keyed by (sample index, iteration index).
// Every sample index present at loss time must have a matching return value;
// the store is cleared entirely after each optimizer step.
type Trace struct {
	entries map[int]map[int][]*TraceEntry
}

// NewTrace constructs an empty trace store.
func NewTrace() *Trace {
	return &Trace{entries: map[int]map[int][]*TraceEntry{}}
}

// Record appends an entry under (sampleIdx, iterIdx).
func (t *Trace) Record(sampleIdx, iterIdx int, e *TraceEntry) {
	iters, ok := t.entries[sampleIdx]
	if !ok {
		iters = map[int][]*TraceEntry{}
		t.entries[sampleIdx] = iters
	}
	iters[iterIdx] = append(iters[iterIdx], e)
}

// SampleKeys returns the distinct sample indices in ascending order.
func (t *Trace) SampleKeys() []int {
	keys := make([]int, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// NumSamples returns the number of distinct sample indices recorded.
func (t *Trace) NumSamples() int { return len(t.entries) }

// IterKeys returns the iteration indices recorded for a sample, ascending.
func (t *Trace) IterKeys(sampleIdx int) []int {
	iters := t.entries[sampleIdx]
	keys := make([]int, 0, len(iters))
	for k := range iters {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// MaxIter returns the largest iteration index recorded for a sample, or -1
// when the sample has no entries.
func (t *Trace) MaxIter(sampleIdx int) int {
	max := -1
	for k := range t.entries[sampleIdx] {
		if k > max {
			max = k
		}
	}
	return max
}

// Entries returns the decisions recorded at (sampleIdx, iterIdx).
func (t *Trace) Entries(sampleIdx, iterIdx int) []*TraceEntry {
	return t.entries[sampleIdx][iterIdx]
}

// Clear removes every recorded entry.
func (t *Trace) Clear() {
	t.entries = map[int]map[int][]*TraceEntry{}
}

//Personal.AI order the ending
