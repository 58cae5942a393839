// Package identification decides whether a causal effect can be read off the
// observational ranking by adjustment (backdoor and frontdoor criteria) and
// computes the adjusted effects with min-plus aggregation over contexts.
package identification

import (
	"rankcausal/domain/causal"
	"rankcausal/domain/ranking"
	"rankcausal/internal/srm"
)

const (
	// DefaultPathLimit caps the simple paths enumerated between two variables.
	DefaultPathLimit = 1000
	// DefaultMaxContexts caps the adjustment contexts aggregated per effect.
	DefaultMaxContexts = 512
)

// Identifier runs identification queries. Zero fields take the defaults.
type Identifier struct {
	PathLimit   int
	MaxContexts int
}

func (id *Identifier) pathLimit() int {
	if id == nil || id.PathLimit <= 0 {
		return DefaultPathLimit
	}
	return id.PathLimit
}

func (id *Identifier) maxContexts() int {
	if id == nil || id.MaxContexts <= 0 {
		return DefaultMaxContexts
	}
	return id.MaxContexts
}

// IsBackdoorAdmissible reports whether z satisfies the backdoor criterion for
// the effect of a on b: no member of z descends from a, and z blocks every path
// between a and b that starts with an edge into a. Paths beyond PathLimit are
// not examined.
func (id *Identifier) IsBackdoorAdmissible(m *srm.Model, a, b string, z []string) (bool, error) {
	if err := requireVariables(m, append([]string{a, b}, z...)...); err != nil {
		return false, err
	}
	zs := toSet(z)
	for _, d := range m.DescendantsOf(a) {
		if _, ok := zs[d]; ok {
			return false, nil
		}
	}
	for _, p := range id.BackdoorPaths(m, a, b) {
		if pathActive(m, p, zs) {
			return false, nil
		}
	}
	return true, nil
}

// BackdoorPaths lists the simple paths from a to b whose first edge points
// into a, in breadth-first order.
func (id *Identifier) BackdoorPaths(m *srm.Model, a, b string) [][]string {
	var out [][]string
	for _, p := range simplePaths(m, a, b, id.pathLimit()) {
		if isBackdoorPath(m, a, p) {
			out = append(out, p)
		}
	}
	return out
}

// BackdoorAdjustedEffect returns τ_adj(b) under do(a=val) minus τ_adj(b) under
// do(a=alt), where τ_adj aggregates over the distinct z-contexts of the
// observational ranking with min-plus weights.
func (id *Identifier) BackdoorAdjustedEffect(m *srm.Model, a, b string, z []string, val, alt any) (float64, error) {
	if err := requireVariables(m, append([]string{a, b}, z...)...); err != nil {
		return 0, err
	}
	contexts := causal.DistinctContexts(m.ToRanking(), z, id.maxContexts())

	tauAdj := func(v any) (float64, error) {
		intervened, err := m.Do(map[string]any{a: v})
		if err != nil {
			return 0, err
		}
		joint := ranking.FromItems(intervened.ToRanking().Items()...)
		kB := minPlusMarginal(joint, contexts, causal.IsTrue(b))
		kNotB := minPlusMarginal(joint, contexts, causal.IsFalse(b))
		return ranking.Tau(kNotB, kB), nil
	}

	withVal, err := tauAdj(val)
	if err != nil {
		return 0, err
	}
	withAlt, err := tauAdj(alt)
	if err != nil {
		return 0, err
	}
	return ranking.Delta(withVal, withAlt), nil
}

// minPlusMarginal is κ*(pred) = min_z [κ(pred ∧ z) + κ(z)] − min_z κ(z). With no
// contexts it is κ(pred).
func minPlusMarginal(r ranking.Ranking[causal.World], contexts []causal.ScoredContext, pred causal.Predicate) ranking.Rank {
	if len(contexts) == 0 {
		return r.DisbeliefRank(pred)
	}
	base, agg := ranking.Inf, ranking.Inf
	for _, sc := range contexts {
		holds := sc.Context.Predicate()
		kz := r.DisbeliefRank(holds)
		kpz := r.DisbeliefRank(causal.And(pred, holds))
		base = ranking.Min(base, kz)
		agg = ranking.Min(agg, kpz.Add(kz))
	}
	return agg.Sub(base)
}

// simplePaths enumerates simple paths from src to dst over the skeleton,
// breadth first, stopping after limit paths. Neighbors are visited parents
// first, then children, each in model order.
func simplePaths(m *srm.Model, src, dst string, limit int) [][]string {
	var paths [][]string
	queue := [][]string{{src}}
	for len(queue) > 0 && len(paths) < limit {
		p := queue[0]
		queue = queue[1:]
		last := p[len(p)-1]
		if last == dst {
			paths = append(paths, p)
			continue
		}
		for _, n := range skeletonNeighbors(m, last) {
			if onPath(p, n) {
				continue
			}
			next := make([]string, len(p)+1)
			copy(next, p)
			next[len(p)] = n
			queue = append(queue, next)
		}
	}
	return paths
}

func skeletonNeighbors(m *srm.Model, x string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, group := range [][]string{m.ParentsOf(x), m.ChildrenOf(x)} {
		for _, n := range group {
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

func onPath(p []string, n string) bool {
	for _, v := range p {
		if v == n {
			return true
		}
	}
	return false
}

func isBackdoorPath(m *srm.Model, a string, p []string) bool {
	if len(p) < 2 || p[0] != a {
		return false
	}
	return isParent(m, p[1], a)
}

func isParent(m *srm.Model, parent, child string) bool {
	for _, p := range m.ParentsOf(child) {
		if p == parent {
			return true
		}
	}
	return false
}

// pathActive applies d-separation to one path: a collider blocks unless it or
// one of its descendants is in z, a non-collider blocks when it is in z.
func pathActive(m *srm.Model, p []string, z map[string]struct{}) bool {
	for i := 1; i < len(p)-1; i++ {
		prev, node, next := p[i-1], p[i], p[i+1]
		_, inZ := z[node]
		if isParent(m, prev, node) && isParent(m, next, node) {
			if inZ {
				continue
			}
			opened := false
			for _, d := range m.DescendantsOf(node) {
				if _, ok := z[d]; ok {
					opened = true
					break
				}
			}
			if !opened {
				return false
			}
		} else if inZ {
			return false
		}
	}
	return true
}

func toSet(names []string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func requireVariables(m *srm.Model, names ...string) error {
	for _, n := range names {
		if !m.Has(n) {
			return causal.NewUnknownVariableError(n)
		}
	}
	return nil
}
