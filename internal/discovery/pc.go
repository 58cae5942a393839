// Package discovery recovers causal structure from conditional-independence
// answers with a PC-style algorithm: skeleton search by growing conditioning
// sets, v-structure orientation from separating sets, and Meek propagation.
package discovery

import (
	"fmt"
	"sort"

	"rankcausal/domain/causal"
	"rankcausal/internal"
	"rankcausal/internal/independence"
	"rankcausal/internal/srm"
	"rankcausal/internal/subsets"
)

// DefaultKMax is the largest conditioning set tried by default.
const DefaultKMax = 2

// PruneFunc narrows the candidate conditioning variables for the pair (a, b).
// It must return a subset of candidates.
type PruneFunc func(a, b string, candidates []string) []string

// Options configure a discovery run.
type Options struct {
	KMax        int
	Epsilon     float64
	MaxContexts int
	Prune       PruneFunc
	Logger      *internal.Logger
}

// DefaultOptions returns the options used when none are supplied.
func DefaultOptions() Options {
	return Options{
		KMax:        DefaultKMax,
		MaxContexts: independence.DefaultMaxContexts,
	}
}

// PC runs structure discovery. A PC value holds no run state and may be
// reused; every run owns its own CI memo.
type PC struct {
	opts Options
	log  *internal.Logger
}

// NewPC creates a discovery engine.
func NewPC(opts Options) *PC {
	if opts.KMax < 0 {
		opts.KMax = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PC{opts: opts, log: logger}
}

// Discover runs PC over vars using ranked CI on m.
func (p *PC) Discover(m *srm.Model, vars []string) (*causal.PCResult, error) {
	for _, v := range vars {
		if !m.Has(v) {
			return nil, causal.NewUnknownVariableError(v)
		}
	}
	return p.DiscoverWith(vars, p.Oracle(m).Test())
}

// Oracle returns the ranked CI oracle Discover uses for m, with the run's
// tolerance and context cap.
func (p *PC) Oracle(m *srm.Model) *independence.Oracle {
	return independence.NewOracle(m, p.opts.Epsilon, p.opts.MaxContexts)
}

// DiscoverWith runs PC over vars with an arbitrary CI test.
func (p *PC) DiscoverWith(vars []string, test causal.CITest) (*causal.PCResult, error) {
	r := newRun(vars, test)

	if err := p.skeleton(r); err != nil {
		return nil, err
	}
	p.orientColliders(r)
	p.propagate(r)

	out := &causal.PCResult{
		RunID:   causal.NewRunID(),
		Nodes:   append([]string(nil), r.nodes...),
		Sepsets: r.sepsets,
		CITests: r.tests,
	}
	for e := range r.undirected {
		out.Edges = append(out.Edges, e)
	}
	for e := range r.oriented {
		out.Oriented = append(out.Oriented, e)
	}
	causal.SortEdges(out.Edges)
	causal.SortEdges(out.Oriented)

	p.log.Debug("pc run %s: %d nodes, %d undirected, %d oriented, %d CI tests",
		out.RunID, len(out.Nodes), len(out.Edges), len(out.Oriented), out.CITests)
	return out, nil
}

// run is the mutable state of one discovery run.
type run struct {
	nodes      []string
	position   map[string]int
	undirected map[causal.Edge]struct{}
	oriented   map[causal.Edge]struct{}
	sepsets    map[causal.Edge][]string

	test  causal.CITest
	memo  map[string]bool
	tests int
}

func newRun(vars []string, test causal.CITest) *run {
	r := &run{
		position:   make(map[string]int, len(vars)),
		undirected: make(map[causal.Edge]struct{}),
		oriented:   make(map[causal.Edge]struct{}),
		sepsets:    make(map[causal.Edge][]string),
		test:       test,
		memo:       make(map[string]bool),
	}
	for _, v := range vars {
		if _, dup := r.position[v]; dup {
			continue
		}
		r.position[v] = len(r.nodes)
		r.nodes = append(r.nodes, v)
	}
	for i, a := range r.nodes {
		for _, b := range r.nodes[i+1:] {
			r.undirected[causal.UndirectedEdge(a, b)] = struct{}{}
		}
	}
	return r
}

// ci answers one query, memoized for the lifetime of the run. The conditioning
// set is canonicalized so that permutations share an entry.
func (r *run) ci(a, b string, s []string) (bool, error) {
	e := causal.UndirectedEdge(a, b)
	sorted := append([]string(nil), s...)
	sort.Strings(sorted)
	key := e.From + "\x01" + e.To + "\x01" + subsets.Key(sorted)
	if v, ok := r.memo[key]; ok {
		return v, nil
	}
	v, err := r.test(a, b, s)
	if err != nil {
		return false, fmt.Errorf("ci(%s, %s | %v): %w", a, b, s, err)
	}
	r.tests++
	r.memo[key] = v
	return v, nil
}

func (r *run) adjacent(a, b string) bool {
	if _, ok := r.undirected[causal.UndirectedEdge(a, b)]; ok {
		return true
	}
	_, ab := r.oriented[causal.Edge{From: a, To: b}]
	_, ba := r.oriented[causal.Edge{From: b, To: a}]
	return ab || ba
}

func (r *run) isUndirected(a, b string) bool {
	_, ok := r.undirected[causal.UndirectedEdge(a, b)]
	return ok
}

func (r *run) isOriented(a, b string) bool {
	_, ok := r.oriented[causal.Edge{From: a, To: b}]
	return ok
}

// neighbors returns every node adjacent to x, in node order.
func (r *run) neighbors(x string) []string {
	var out []string
	for _, n := range r.nodes {
		if n != x && r.adjacent(x, n) {
			out = append(out, n)
		}
	}
	return out
}

func (r *run) sortedUndirected() []causal.Edge {
	edges := make([]causal.Edge, 0, len(r.undirected))
	for e := range r.undirected {
		edges = append(edges, e)
	}
	return causal.SortEdges(edges)
}

func (r *run) sortedOriented() []causal.Edge {
	edges := make([]causal.Edge, 0, len(r.oriented))
	for e := range r.oriented {
		edges = append(edges, e)
	}
	return causal.SortEdges(edges)
}

func without(names []string, drop string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != drop {
			out = append(out, n)
		}
	}
	return out
}

func (p *PC) skeleton(r *run) error {
	for k := 0; k <= p.opts.KMax; {
		removed, err := p.removeOne(r, k)
		if err != nil {
			return err
		}
		if !removed {
			k++
		}
	}
	return nil
}

// removeOne scans the remaining edges and removes the first one whose
// endpoints are separated by some conditioning set of size k.
func (p *PC) removeOne(r *run, k int) (bool, error) {
	for _, e := range r.sortedUndirected() {
		a, b := e.From, e.To
		sides := [][]string{
			without(r.neighbors(a), b),
			without(r.neighbors(b), a),
		}
		for _, candidates := range sides {
			if p.opts.Prune != nil {
				candidates = p.opts.Prune(a, b, candidates)
			}
			if len(candidates) < k {
				continue
			}

			var sep []string
			var err error
			subsets.Each(candidates, k, func(s []string) bool {
				var ok bool
				ok, err = r.ci(a, b, s)
				if err != nil {
					return false
				}
				if ok {
					sep = append([]string{}, s...)
					return false
				}
				return true
			})
			if err != nil {
				return false, err
			}
			if sep != nil {
				delete(r.undirected, e)
				r.sepsets[e] = sep
				p.log.Trace("pc: removed %s-%s given %v", a, b, sep)
				return true, nil
			}
		}
	}
	return false, nil
}

func (p *PC) orient(r *run, from, to string) bool {
	if r.isOriented(from, to) || r.isOriented(to, from) {
		return false
	}
	delete(r.undirected, causal.UndirectedEdge(from, to))
	r.oriented[causal.Edge{From: from, To: to}] = struct{}{}
	p.log.Trace("pc: oriented %s->%s", from, to)
	return true
}

// orientColliders orients a -> z <- b for every non-adjacent pair of neighbors
// of z whose separating set does not contain z.
func (p *PC) orientColliders(r *run) {
	for _, z := range r.nodes {
		nbrs := r.neighbors(z)
		for i, a := range nbrs {
			for _, b := range nbrs[i+1:] {
				if r.adjacent(a, b) {
					continue
				}
				sep, ok := r.sepsets[causal.UndirectedEdge(a, b)]
				if !ok || contains(sep, z) {
					continue
				}
				p.orient(r, a, z)
				p.orient(r, b, z)
			}
		}
	}
}

// propagate applies Meek's first two rules until nothing changes.
func (p *PC) propagate(r *run) {
	for changed := true; changed; {
		changed = false
		for _, ab := range r.sortedOriented() {
			a, b := ab.From, ab.To
			for _, c := range r.nodes {
				if c == a || c == b {
					continue
				}
				// R1: a -> b - c, a and c not adjacent
				if r.isUndirected(b, c) && !r.adjacent(a, c) {
					changed = p.orient(r, b, c) || changed
				}
				// R2: a -> b -> c with a - c
				if r.isOriented(b, c) && r.isUndirected(a, c) {
					changed = p.orient(r, a, c) || changed
				}
			}
		}
	}
}

func contains(names []string, x string) bool {
	for _, n := range names {
		if n == x {
			return true
		}
	}
	return false
}

