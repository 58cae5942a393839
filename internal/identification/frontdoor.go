package identification

import (
	"rankcausal/domain/causal"
	"rankcausal/domain/ranking"
	"rankcausal/internal/srm"
)

// IsFrontdoorApplicable checks sufficient frontdoor conditions for the effect
// of a on b through mediator: every directed path from a to b passes through
// mediator, {} is backdoor-admissible for (a, mediator), and {a} is
// backdoor-admissible for (mediator, b).
func (id *Identifier) IsFrontdoorApplicable(m *srm.Model, a, mediator, b string) (bool, error) {
	if err := requireVariables(m, a, mediator, b); err != nil {
		return false, err
	}
	if reachesAvoiding(m, a, b, mediator) {
		return false, nil
	}
	ok, err := id.IsBackdoorAdmissible(m, a, mediator, nil)
	if err != nil || !ok {
		return false, err
	}
	return id.IsBackdoorAdmissible(m, mediator, b, []string{a})
}

// reachesAvoiding reports whether a directed path leads from src to dst
// without passing through avoid.
func reachesAvoiding(m *srm.Model, src, dst, avoid string) bool {
	visited := make(map[string]struct{})
	stack := []string{src}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if u == avoid {
			continue
		}
		if u == dst && u != src {
			return true
		}
		for _, c := range m.ChildrenOf(u) {
			if _, ok := visited[c]; !ok {
				visited[c] = struct{}{}
				stack = append(stack, c)
			}
		}
	}
	return false
}

// FrontdoorEffect returns τ_fd(b) under do(a=val) minus τ_fd(b) under
// do(a=alt). For each value of a the mediator contexts of do(a) weight the
// mediator-fixed models do(mediator=m):
//
//	κ_fd(X) = min_m [κ_do(M=m)(X) + κ_do(A=a)(M=m)] − min_m κ_do(A=a)(M=m)
func (id *Identifier) FrontdoorEffect(m *srm.Model, a, mediator, b string, val, alt any) (float64, error) {
	if err := requireVariables(m, a, mediator, b); err != nil {
		return 0, err
	}

	tauFD := func(v any) (float64, error) {
		doA, err := m.Do(map[string]any{a: v})
		if err != nil {
			return 0, err
		}
		jointA := ranking.FromItems(doA.ToRanking().Items()...)
		contexts := causal.DistinctContexts(jointA, []string{mediator}, id.maxContexts())

		if len(contexts) == 0 {
			return jointA.BeliefRank(causal.IsTrue(b)), nil
		}
		kB, kNotB := ranking.Inf, ranking.Inf
		base := ranking.Inf
		for _, sc := range contexts {
			doM, err := m.Do(sc.Context.Map())
			if err != nil {
				return 0, err
			}
			jointM := doM.ToRanking()
			km := jointA.DisbeliefRank(sc.Context.Predicate())
			base = ranking.Min(base, km)
			kB = ranking.Min(kB, jointM.DisbeliefRank(causal.IsTrue(b)).Add(km))
			kNotB = ranking.Min(kNotB, jointM.DisbeliefRank(causal.IsFalse(b)).Add(km))
		}
		return ranking.Tau(kNotB.Sub(base), kB.Sub(base)), nil
	}

	withVal, err := tauFD(val)
	if err != nil {
		return 0, err
	}
	withAlt, err := tauFD(alt)
	if err != nil {
		return 0, err
	}
	return ranking.Delta(withVal, withAlt), nil
}
