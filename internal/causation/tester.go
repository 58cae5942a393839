// Package causation tests whether one variable is a stable cause of another
// in a structural ranking model, and measures total effects under surgery.
package causation

import (
	"math"

	"rankcausal/domain/causal"
	"rankcausal/domain/ranking"
	"rankcausal/internal/srm"
)

const (
	// DefaultMargin is the belief margin z a cause must add in every context.
	DefaultMargin = 1
	// DefaultMaxContexts caps the admissible contexts examined per query.
	DefaultMaxContexts = 512
)

// Tester runs causation queries. A zero Margin means DefaultMargin unless
// ExactMargin is set; NewTester always takes the margin as given.
type Tester struct {
	Margin      int  // z: required margin τ(B|A,C) − τ(B|¬A,C)
	ExactMargin bool // use Margin even when it is 0
	MaxContexts int  // distinct admissible contexts to test, most plausible first
}

// NewTester returns a tester that requires exactly margin in every context.
func NewTester(margin, maxContexts int) *Tester {
	return &Tester{Margin: margin, ExactMargin: true, MaxContexts: maxContexts}
}

func (t *Tester) margin() float64 {
	if t == nil || (t.Margin == 0 && !t.ExactMargin) {
		return DefaultMargin
	}
	return float64(t.Margin)
}

func (t *Tester) maxContexts() int {
	if t == nil || t.MaxContexts <= 0 {
		return DefaultMaxContexts
	}
	return t.MaxContexts
}

// IsCause reports whether a is a reason for b that is stable across admissible
// contexts: assignments to every variable other than a and its descendants,
// taken from the observational ranking in plausibility order. A context where
// a or ¬a is impossible cannot be compared and is skipped. The first context
// where τ(b|a,C) < τ(b|¬a,C) + z stops the search. A context where b is
// certain (or impossible) under both a and ¬a is skipped too. With nothing
// testable the answer is "not a cause" with zero strength.
func (t *Tester) IsCause(m *srm.Model, a, b string) (causal.CauseResult, error) {
	if err := requireVariables(m, a, b); err != nil {
		return causal.CauseResult{}, err
	}
	if a == b {
		return causal.CauseResult{}, nil
	}

	excluded := map[string]struct{}{a: {}}
	for _, d := range m.DescendantsOf(a) {
		excluded[d] = struct{}{}
	}
	var contextVars []string
	for _, name := range m.Variables() {
		if _, skip := excluded[name]; !skip {
			contextVars = append(contextVars, name)
		}
	}

	obs := m.ToRanking()
	contexts := causal.DistinctContexts(obs, contextVars, t.maxContexts())

	z := t.margin()
	result := causal.CauseResult{IsCause: true, Strength: math.Inf(1)}
	for _, sc := range contexts {
		holds := sc.Context.Predicate()
		kNotBA := obs.DisbeliefRank(causal.And(causal.IsFalse(b), causal.IsTrue(a), holds))
		kBA := obs.DisbeliefRank(causal.And(causal.IsTrue(b), causal.IsTrue(a), holds))
		kNotBNotA := obs.DisbeliefRank(causal.And(causal.IsFalse(b), causal.IsFalse(a), holds))
		kBNotA := obs.DisbeliefRank(causal.And(causal.IsTrue(b), causal.IsFalse(a), holds))

		if kNotBA.IsInf() && kBA.IsInf() {
			continue
		}
		if kNotBNotA.IsInf() && kBNotA.IsInf() {
			continue
		}
		tauA := ranking.Tau(kNotBA, kBA)
		tauNotA := ranking.Tau(kNotBNotA, kBNotA)
		// b is settled the same way whatever a is: nothing to compare
		if math.IsInf(tauA, 0) && tauA == tauNotA {
			continue
		}
		result.TestedContexts++

		margin := tauA - tauNotA
		result.Strength = math.Min(result.Strength, margin)
		if tauA < tauNotA+z {
			result.IsCause = false
			break
		}
	}

	if result.TestedContexts == 0 {
		return causal.CauseResult{}, nil
	}
	return result, nil
}

// TotalEffect returns τ(b) under do(a=val) minus τ(b) under do(a=alt). A
// positive value means a=val promotes b relative to a=alt.
func (t *Tester) TotalEffect(m *srm.Model, a, b string, val, alt any) (float64, error) {
	if err := requireVariables(m, a, b); err != nil {
		return 0, err
	}
	withVal, err := m.Do(map[string]any{a: val})
	if err != nil {
		return 0, err
	}
	withAlt, err := m.Do(map[string]any{a: alt})
	if err != nil {
		return 0, err
	}
	tau1 := withVal.ToRanking().BeliefRank(causal.IsTrue(b))
	tau0 := withAlt.ToRanking().BeliefRank(causal.IsTrue(b))
	return ranking.Delta(tau1, tau0), nil
}

func requireVariables(m *srm.Model, names ...string) error {
	for _, n := range names {
		if !m.Has(n) {
			return causal.NewUnknownVariableError(n)
		}
	}
	return nil
}
