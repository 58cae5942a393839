// Package srm implements the structural ranking model: a DAG of named variables
// with per-variable mechanisms, composed into one joint ranking over worlds, and
// surgical intervention on that model.
package srm

import (
	"fmt"
	"sort"

	"rankcausal/domain/causal"
	"rankcausal/domain/ranking"
)

// Model is an immutable structural ranking model. Parents and children are held
// as name lookups into indexes owned by the model.
type Model struct {
	vars     map[string]Variable
	order    []string
	position map[string]int
	children map[string][]string
}

// New validates the variables and builds a model. It fails on duplicate names,
// missing mechanisms, unknown parents, and cycles.
func New(variables ...Variable) (*Model, error) {
	m := &Model{
		vars:     make(map[string]Variable, len(variables)),
		children: make(map[string][]string, len(variables)),
	}
	declared := make([]string, 0, len(variables))
	for _, v := range variables {
		if _, dup := m.vars[v.Name]; dup {
			return nil, fmt.Errorf("%w: %q", causal.ErrDuplicateVariable, v.Name)
		}
		if v.Mechanism == nil {
			return nil, fmt.Errorf("%w for variable %q", causal.ErrMissingMechanism, v.Name)
		}
		m.vars[v.Name] = v.clone()
		m.children[v.Name] = nil
		declared = append(declared, v.Name)
	}

	indegree := make(map[string]int, len(declared))
	for _, name := range declared {
		v := m.vars[name]
		for _, p := range v.Parents {
			if _, ok := m.vars[p]; !ok {
				return nil, causal.NewUnknownParentError(name, p)
			}
			m.children[p] = append(m.children[p], name)
			indegree[name]++
		}
	}

	// Kahn's algorithm, seeded in declaration order
	queue := make([]string, 0, len(declared))
	for _, name := range declared {
		if indegree[name] == 0 {
			queue = append(queue, name)
		}
	}
	order := make([]string, 0, len(declared))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, c := range m.children[n] {
			indegree[c]--
			if indegree[c] == 0 {
				queue = append(queue, c)
			}
		}
	}
	if len(order) != len(declared) {
		var stuck []string
		for _, name := range declared {
			if indegree[name] > 0 {
				stuck = append(stuck, name)
			}
		}
		return nil, fmt.Errorf("%w among %v", causal.ErrCycle, stuck)
	}

	m.order = order
	m.position = make(map[string]int, len(order))
	for i, name := range order {
		m.position[name] = i
	}
	return m, nil
}

// MustNew is New for static fixtures; it panics on an invalid model.
func MustNew(variables ...Variable) *Model {
	m, err := New(variables...)
	if err != nil {
		panic(err)
	}
	return m
}

// Variables returns the variable names in topological order.
func (m *Model) Variables() []string {
	return append([]string(nil), m.order...)
}

// Has reports whether the model declares name.
func (m *Model) Has(name string) bool {
	_, ok := m.vars[name]
	return ok
}

// Variable returns a copy of the named variable.
func (m *Model) Variable(name string) (Variable, bool) {
	v, ok := m.vars[name]
	if !ok {
		return Variable{}, false
	}
	return v.clone(), true
}

// ParentsOf returns the declared parents of name, in declaration order.
func (m *Model) ParentsOf(name string) []string {
	return append([]string(nil), m.vars[name].Parents...)
}

// ChildrenOf returns the direct children of name.
func (m *Model) ChildrenOf(name string) []string {
	return append([]string(nil), m.children[name]...)
}

// AncestorsOf returns every transitive parent of name, sorted, excluding name.
func (m *Model) AncestorsOf(name string) []string {
	return m.closure(name, func(n string) []string { return m.vars[n].Parents })
}

// DescendantsOf returns every transitive child of name, sorted, excluding name.
func (m *Model) DescendantsOf(name string) []string {
	return m.closure(name, func(n string) []string { return m.children[n] })
}

func (m *Model) closure(name string, next func(string) []string) []string {
	seen := make(map[string]struct{})
	stack := append([]string(nil), next(name)...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		stack = append(stack, next(n)...)
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ToRanking composes the mechanisms in topological order into the joint ranking
// over worlds. A world's rank is the sum of the ranks its variables contributed
// along that combination. Worlds come out in non-decreasing rank. The returned
// ranking is restartable and shares no mutable state with the model.
func (m *Model) ToRanking() ranking.Ranking[causal.World] {
	order := m.Variables()
	mechanisms := make([]Mechanism, len(order))
	parentIdx := make([][]int, len(order))
	for i, name := range order {
		v := m.vars[name]
		mechanisms[i] = v.Mechanism
		idx := make([]int, len(v.Parents))
		for j, p := range v.Parents {
			idx[j] = m.position[p]
		}
		parentIdx[i] = idx
	}

	values := ranking.Sequence(len(order), func(prefix []any) ranking.Ranking[any] {
		i := len(prefix)
		args := make([]any, len(parentIdx[i]))
		for j, p := range parentIdx[i] {
			args[j] = prefix[p]
		}
		return mechanisms[i](args...)
	})

	return ranking.Map(values, func(vals []any) causal.World {
		w := make(causal.World, len(order))
		for i, name := range order {
			w[name] = vals[i]
		}
		return w
	})
}

// Do performs surgery: each intervened variable gets a constant mechanism at
// rank 0 and loses its parent edges. The receiver is left untouched.
func (m *Model) Do(interventions map[string]any) (*Model, error) {
	for name := range interventions {
		if !m.Has(name) {
			return nil, causal.NewUnknownVariableError(name)
		}
	}
	next := make([]Variable, 0, len(m.order))
	for _, name := range m.order {
		v := m.vars[name].clone()
		if val, ok := interventions[name]; ok {
			v.Parents = nil
			v.Mechanism = Constant(val)
		}
		next = append(next, v)
	}
	return New(next...)
}

// MustDo is Do for interventions on variables known to exist.
func (m *Model) MustDo(interventions map[string]any) *Model {
	out, err := m.Do(interventions)
	if err != nil {
		panic(err)
	}
	return out
}

// Marginal returns the distinct values of name with their minimal ranks, in
// plausibility order.
func (m *Model) Marginal(name string) []ranking.Item[any] {
	var out []ranking.Item[any]
	for _, sc := range causal.DistinctContexts(m.ToRanking(), []string{name}, 0) {
		if len(sc.Context) == 0 {
			continue
		}
		out = append(out, ranking.Item[any]{Value: sc.Context[0].Value, Rank: sc.Rank})
	}
	return out
}
