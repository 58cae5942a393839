// Package sat is an optimization-backed solver backend. Subset selection is
// encoded as one boolean literal per candidate with a sorting-network
// cardinality constraint; the SAT solver proposes subsets of a fixed size,
// every proposal is validated by the same oracle the reference backend uses,
// and rejected proposals are cut with no-good clauses.
package sat

import (
	"sort"
	"time"

	"rankcausal/adapters/solver/enumeration"
	"rankcausal/domain/causal"
	"rankcausal/internal"
	"rankcausal/internal/explanation"
	"rankcausal/internal/srm"
	"rankcausal/internal/subsets"
	"rankcausal/ports"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// Name is the registry name of this backend.
const Name = "sat"

// DefaultTimeout is the solver budget for a single proposal.
const DefaultTimeout = 5 * time.Second

// Solver runs the no-good loop. Timeout bounds each solver call; when it
// expires the search gives up and reports no solution.
type Solver struct {
	Timeout time.Duration
	Logger  *internal.Logger

	// open builds the subset search over n candidates; nil means gini.
	open func(n int) proposer
}

// New returns the SAT strategies as one backend. Counterexample search has no
// useful encoding here and is served by the enumeration scan.
func New(timeout time.Duration, logger *internal.Logger) ports.SolverBackend {
	s := &Solver{Timeout: timeout, Logger: logger}
	return ports.SolverBackend{
		Name:            Name,
		Separating:      s,
		Repair:          s,
		Counterexamples: enumeration.CounterexampleFinder{},
	}
}

func (s *Solver) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultTimeout
	}
	return s.Timeout
}

func (s *Solver) log() *internal.Logger {
	if s.Logger == nil {
		return internal.DefaultLogger
	}
	return s.Logger
}

// proposer is the subset search driven by the no-good loop.
type proposer interface {
	propose(k int, budget time.Duration) ([]int, int)
	cutSupersets(chosen []int)
	cutExactly(chosen []int)
}

func (s *Solver) newProposer(n int) proposer {
	if s.open != nil {
		return s.open(n)
	}
	return newSelection(n)
}

// selection is a solver instance over n candidate literals.
type selection struct {
	g    *gini.Gini
	lits []z.Lit
	card *logic.CardSort
}

func newSelection(n int) *selection {
	c := logic.NewC()
	lits := make([]z.Lit, n)
	for i := range lits {
		lits[i] = c.Lit()
	}
	card := c.CardSort(lits)
	g := gini.New()
	c.ToCnf(g)
	return &selection{g: g, lits: lits, card: card}
}

// propose asks for a subset of exactly k candidates not yet cut. It returns
// the chosen indexes, or a status of -1 when none is left and 0 on timeout.
func (sel *selection) propose(k int, budget time.Duration) ([]int, int) {
	sel.g.Assume(sel.card.Leq(k), sel.card.Geq(k))
	status := sel.g.Try(budget)
	if status != 1 {
		return nil, status
	}
	var chosen []int
	for i, l := range sel.lits {
		if sel.g.Value(l) {
			chosen = append(chosen, i)
		}
	}
	return chosen, 1
}

// cutSupersets forbids every subset containing chosen.
func (sel *selection) cutSupersets(chosen []int) {
	for _, i := range chosen {
		sel.g.Add(sel.lits[i].Not())
	}
	sel.g.Add(z.LitNull)
}

// cutExactly forbids chosen and nothing else.
func (sel *selection) cutExactly(chosen []int) {
	in := make(map[int]bool, len(chosen))
	for _, i := range chosen {
		in[i] = true
	}
	for i, l := range sel.lits {
		if in[i] {
			sel.g.Add(l.Not())
		} else {
			sel.g.Add(l)
		}
	}
	sel.g.Add(z.LitNull)
}

func names(candidates []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = candidates[j]
	}
	return out
}

// Repairs finds all minimum-size repair sets. Size levels run upwards from 1;
// at level k at most Binomial(n, k) proposals are made since each proposal is
// cut before the next one. The first level with a validated repair is the
// answer, sorted in candidate order.
func (s *Solver) Repairs(m *srm.Model, req causal.RepairRequest) ([][]string, error) {
	candidates, err := explanation.PrepareCandidates(m, req)
	if err != nil || len(candidates) == 0 {
		return nil, err
	}
	sel := s.newProposer(len(candidates))

	for k := 1; k <= explanation.MaxRepairSize(req, len(candidates)); k++ {
		var level [][]int
		for remaining := subsets.Count(len(candidates), k); remaining > 0; remaining-- {
			chosen, status := sel.propose(k, s.timeout())
			if status == 0 {
				s.log().Warn("sat repair: solver budget %s exhausted at size %d", s.timeout(), k)
				return nil, nil
			}
			if status < 0 {
				break
			}
			ok, err := explanation.IsFixed(m, req, names(candidates, chosen))
			if err != nil {
				return nil, err
			}
			s.log().Trace("sat repair: proposal %v fixed=%v", names(candidates, chosen), ok)
			if ok {
				level = append(level, chosen)
				sel.cutSupersets(chosen)
			} else {
				sel.cutExactly(chosen)
			}
		}
		if len(level) > 0 {
			sortIndexSets(level)
			out := make([][]string, len(level))
			for i, idx := range level {
				out[i] = names(candidates, idx)
			}
			return out, nil
		}
	}
	return nil, nil
}

// Find returns a separating set of minimum size. The empty set is tested
// directly; larger sizes are proposed by the solver and validated with ci.
func (s *Solver) Find(req causal.SeparatingSetRequest, ci causal.CITest) ([]string, bool, error) {
	ok, err := ci(req.X, req.Y, nil)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return []string{}, true, nil
	}

	candidates := enumeration.Dedup(req.Candidates)
	if len(candidates) == 0 {
		return nil, false, nil
	}
	maxK := req.KMax
	if maxK > len(candidates) {
		maxK = len(candidates)
	}
	sel := s.newProposer(len(candidates))
	for k := 1; k <= maxK; k++ {
		for remaining := subsets.Count(len(candidates), k); remaining > 0; remaining-- {
			chosen, status := sel.propose(k, s.timeout())
			if status == 0 {
				s.log().Warn("sat separating set: solver budget %s exhausted at size %d", s.timeout(), k)
				return nil, false, nil
			}
			if status < 0 {
				break
			}
			set := names(candidates, chosen)
			ok, err := ci(req.X, req.Y, set)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return set, true, nil
			}
			sel.cutExactly(chosen)
		}
	}
	return nil, false, nil
}

func sortIndexSets(sets [][]int) {
	sort.Slice(sets, func(i, j int) bool {
		a, b := sets[i], sets[j]
		for x := 0; x < len(a) && x < len(b); x++ {
			if a[x] != b[x] {
				return a[x] < b[x]
			}
		}
		return len(a) < len(b)
	})
}
