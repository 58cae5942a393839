// Package independence decides ranking-theoretic conditional independence of
// two boolean variables given a conditioning set.
package independence

import (
	"math"

	"rankcausal/domain/causal"
	"rankcausal/domain/ranking"
	"rankcausal/internal/srm"
)

// DefaultMaxContexts caps the conditioning contexts examined per query.
const DefaultMaxContexts = 512

// Oracle evaluates ranked CI against one model.
type Oracle struct {
	Model *srm.Model
	// Epsilon is the tolerated belief deviation; 0 means exact invariance.
	Epsilon     float64
	MaxContexts int

	joint *ranking.Ranking[causal.World]
}

// NewOracle builds an oracle over a materialized copy of the model's joint
// ranking.
func NewOracle(m *srm.Model, epsilon float64, maxContexts int) *Oracle {
	joint := ranking.FromItems(m.ToRanking().Items()...)
	return &Oracle{Model: m, Epsilon: epsilon, MaxContexts: maxContexts, joint: &joint}
}

// Test returns o.Independent as a CI test.
func (o *Oracle) Test() causal.CITest {
	return o.Independent
}

// Independent reports whether learning x leaves the belief in y unchanged (and
// vice versa) within Epsilon, in every distinct z-context of the joint
// ranking. Contexts where x or y cannot vary are skipped; with nothing left to
// test, independence holds vacuously.
func (o *Oracle) Independent(x, y string, z []string) (bool, error) {
	for _, name := range append([]string{x, y}, z...) {
		if !o.Model.Has(name) {
			return false, causal.NewUnknownVariableError(name)
		}
	}
	joint := o.jointRanking()

	limit := o.MaxContexts
	if limit <= 0 {
		limit = DefaultMaxContexts
	}
	contexts := causal.DistinctContexts(joint, z, limit)

	xTrue, xFalse := causal.IsTrue(x), causal.IsFalse(x)
	yTrue, yFalse := causal.IsTrue(y), causal.IsFalse(y)
	for _, sc := range contexts {
		cond := ranking.FromItems(ranking.Observe(joint, sc.Context.Holds).Items()...)
		if cond.IsEmpty() {
			continue
		}
		if cond.DisbeliefRank(xTrue).IsInf() || cond.DisbeliefRank(xFalse).IsInf() ||
			cond.DisbeliefRank(yTrue).IsInf() || cond.DisbeliefRank(yFalse).IsInf() {
			continue
		}

		tauYGivenX := ranking.Tau(
			cond.DisbeliefRank(causal.And(yFalse, xTrue)),
			cond.DisbeliefRank(causal.And(yTrue, xTrue)))
		tauXGivenY := ranking.Tau(
			cond.DisbeliefRank(causal.And(xFalse, yTrue)),
			cond.DisbeliefRank(causal.And(xTrue, yTrue)))

		dY := math.Abs(ranking.Delta(tauYGivenX, cond.BeliefRank(yTrue)))
		dX := math.Abs(ranking.Delta(tauXGivenY, cond.BeliefRank(xTrue)))
		if dY > o.Epsilon || dX > o.Epsilon {
			return false, nil
		}
	}
	return true, nil
}

func (o *Oracle) jointRanking() ranking.Ranking[causal.World] {
	if o.joint == nil {
		joint := ranking.FromItems(o.Model.ToRanking().Items()...)
		o.joint = &joint
	}
	return *o.joint
}

// RankedCI is a one-shot form of Oracle.Independent.
func RankedCI(m *srm.Model, x, y string, z []string, epsilon float64, maxContexts int) (bool, error) {
	return NewOracle(m, epsilon, maxContexts).Independent(x, y, z)
}
