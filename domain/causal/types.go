package causal

import (
	"fmt"
	"sort"
)

// Edge is an ordered pair of variable names. As an undirected edge it is
// normalized so that From < To; as an oriented edge it reads From -> To.
type Edge struct {
	From string
	To   string
}

// UndirectedEdge returns the normalized edge between a and b.
func UndirectedEdge(a, b string) Edge {
	if b < a {
		a, b = b, a
	}
	return Edge{From: a, To: b}
}

// Reverse swaps the endpoints.
func (e Edge) Reverse() Edge {
	return Edge{From: e.To, To: e.From}
}

func (e Edge) String() string {
	return fmt.Sprintf("%s->%s", e.From, e.To)
}

// SortEdges orders edges lexicographically, in place, and returns them.
func SortEdges(edges []Edge) []Edge {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// CauseResult is the outcome of a causation query.
type CauseResult struct {
	IsCause bool `json:"is_cause"`
	// Strength is the minimal observed margin τ(B|A,C) − τ(B|¬A,C); it may be ±Inf.
	Strength       float64 `json:"strength"`
	TestedContexts int     `json:"tested_contexts"`
}

// PCResult is the output of one structure discovery run.
type PCResult struct {
	RunID    string            `json:"run_id"`
	Nodes    []string          `json:"nodes"`
	Edges    []Edge            `json:"edges"`
	Sepsets  map[Edge][]string `json:"-"`
	Oriented []Edge            `json:"oriented"`
	CITests  int               `json:"ci_tests"`
}

// Adjacent reports whether a and b are connected by an undirected or oriented edge.
func (r *PCResult) Adjacent(a, b string) bool {
	key := UndirectedEdge(a, b)
	for _, e := range r.Edges {
		if e == key {
			return true
		}
	}
	for _, e := range r.Oriented {
		if e == (Edge{a, b}) || e == (Edge{b, a}) {
			return true
		}
	}
	return false
}

// HasOriented reports whether from -> to was oriented.
func (r *PCResult) HasOriented(from, to string) bool {
	for _, e := range r.Oriented {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// Skeleton returns every adjacency, undirected and oriented, as normalized edges.
func (r *PCResult) Skeleton() []Edge {
	seen := make(map[Edge]struct{})
	var out []Edge
	add := func(e Edge) {
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	for _, e := range r.Edges {
		add(e)
	}
	for _, e := range r.Oriented {
		add(UndirectedEdge(e.From, e.To))
	}
	return SortEdges(out)
}

// RepairSearchConfig bounds minimal-repair search. MaxSize <= 0 means all candidates.
type RepairSearchConfig struct {
	MaxSize int
}

// CITest answers whether x and y are independent given z. Implementations
// must be pure for a fixed model so that callers can memoize them.
type CITest func(x, y string, z []string) (bool, error)

// RepairRequest asks for the smallest intervention sets over Candidates that
// make Target take the Desired value.
type RepairRequest struct {
	Target     string
	Desired    any
	Candidates []string
	// RepairValues overrides the value a candidate is set to; others get Desired.
	RepairValues map[string]any
	Config       RepairSearchConfig
}

// ValueFor is the value name is set to when it is part of a repair.
func (r RepairRequest) ValueFor(name string) any {
	if v, ok := r.RepairValues[name]; ok {
		return v
	}
	return r.Desired
}

// SeparatingSetRequest asks for a conditioning set Z over Candidates with
// |Z| <= KMax such that X and Y are independent given Z.
type SeparatingSetRequest struct {
	X          string
	Y          string
	Candidates []string
	KMax       int
}

// Inequality is a world-level constraint; a counterexample is a world where
// Holds returns false.
type Inequality struct {
	Name  string
	Holds Predicate
}
