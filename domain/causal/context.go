package causal

import (
	"fmt"
	"sort"
	"strings"

	"rankcausal/domain/ranking"
)

// Binding fixes one variable to a value.
type Binding struct {
	Name  string
	Value any
}

// Context is a partial assignment, kept sorted by variable name.
type Context []Binding

// Project restricts w to the given variables. Variables missing from w are skipped.
func Project(w World, vars []string) Context {
	ctx := make(Context, 0, len(vars))
	for _, name := range vars {
		if v, ok := w[name]; ok {
			ctx = append(ctx, Binding{Name: name, Value: v})
		}
	}
	sort.Slice(ctx, func(i, j int) bool { return ctx[i].Name < ctx[j].Name })
	return ctx
}

// Holds reports whether w agrees with every binding of c.
func (c Context) Holds(w World) bool {
	for _, b := range c {
		if v, ok := w[b.Name]; !ok || !SameValue(v, b.Value) {
			return false
		}
	}
	return true
}

// Predicate returns c.Holds as a Predicate.
func (c Context) Predicate() Predicate {
	return c.Holds
}

// Map returns the context as a name to value map, suitable for surgery.
func (c Context) Map() map[string]any {
	m := make(map[string]any, len(c))
	for _, b := range c {
		m[b.Name] = b.Value
	}
	return m
}

// Key is a canonical identity used for deduplication.
func (c Context) Key() string {
	var sb strings.Builder
	for _, b := range c {
		fmt.Fprintf(&sb, "%s=%T:%v;", b.Name, b.Value, b.Value)
	}
	return sb.String()
}

func (c Context) String() string {
	parts := make([]string, len(c))
	for i, b := range c {
		parts[i] = fmt.Sprintf("%s=%v", b.Name, b.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ScoredContext is a distinct context together with the rank of the first
// world that produced it.
type ScoredContext struct {
	Context Context
	Rank    ranking.Rank
}

// DistinctContexts walks r in its iteration order and collects the distinct
// projections onto vars, keeping the first occurrence of each, until limit
// contexts are found. A non-positive limit means no cap.
//
// Over a rank-ordered source the result is in non-decreasing rank order and
// equal-rank contexts keep first-encountered order. With no vars the single
// empty context is returned for any non-empty ranking.
func DistinctContexts(r ranking.Ranking[World], vars []string, limit int) []ScoredContext {
	seen := make(map[string]struct{})
	var out []ScoredContext
	for w, k := range r.All() {
		ctx := Project(w, vars)
		key := ctx.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ScoredContext{Context: ctx, Rank: k})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
