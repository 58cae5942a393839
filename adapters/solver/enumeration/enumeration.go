// Package enumeration is the reference solver backend: exhaustive search in
// increasing subset size. It is exact but exponential in the candidate count.
package enumeration

import (
	"rankcausal/domain/causal"
	"rankcausal/internal"
	"rankcausal/internal/explanation"
	"rankcausal/internal/srm"
	"rankcausal/internal/subsets"
	"rankcausal/ports"
)

// Name is the registry name of this backend.
const Name = "enumeration"

// DefaultMaxWorlds bounds the counterexample scan when no budget is given.
const DefaultMaxWorlds = 512

// New returns the enumeration strategies as one backend.
func New(logger *internal.Logger) ports.SolverBackend {
	return ports.SolverBackend{
		Name:            Name,
		Separating:      SeparatingSetFinder{},
		Repair:          &explanation.MinimalRepairSolver{Logger: logger},
		Counterexamples: CounterexampleFinder{},
	}
}

// SeparatingSetFinder tries every subset of the candidates, smallest first.
type SeparatingSetFinder struct{}

// Find returns the first separating set in size-then-lexicographic order.
func (SeparatingSetFinder) Find(req causal.SeparatingSetRequest, ci causal.CITest) ([]string, bool, error) {
	candidates := Dedup(req.Candidates)
	maxK := req.KMax
	if maxK > len(candidates) {
		maxK = len(candidates)
	}
	for k := 0; k <= maxK; k++ {
		var found []string
		var err error
		subsets.Each(candidates, k, func(z []string) bool {
			var ok bool
			ok, err = ci(req.X, req.Y, z)
			if err != nil {
				return false
			}
			if ok {
				found = append([]string{}, z...)
				return false
			}
			return true
		})
		if err != nil {
			return nil, false, err
		}
		if found != nil {
			return found, true, nil
		}
	}
	return nil, false, nil
}

// CounterexampleFinder scans the most plausible worlds of a model.
type CounterexampleFinder struct{}

// FindViolation returns the first of the top maxWorlds worlds, in plausibility
// order, on which ineq does not hold.
func (CounterexampleFinder) FindViolation(m *srm.Model, ineq causal.Inequality, maxWorlds int) (causal.World, bool) {
	if maxWorlds <= 0 {
		maxWorlds = DefaultMaxWorlds
	}
	seen := 0
	for w := range m.ToRanking().All() {
		if !ineq.Holds(w) {
			return w, true
		}
		seen++
		if seen >= maxWorlds {
			break
		}
	}
	return nil, false
}

// Dedup drops repeated names, keeping first occurrences in order.
func Dedup(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
