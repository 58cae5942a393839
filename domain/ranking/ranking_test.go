package ranking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isTrue(b bool) bool { return b }

func TestRankArithmetic(t *testing.T) {
	assert.Equal(t, Rank(3), Rank(1).Add(2))
	assert.Equal(t, Inf, Rank(1).Add(Inf))
	assert.Equal(t, Inf, Inf.Add(0))
	assert.Equal(t, Inf, Inf.Sub(4))
	assert.Equal(t, Rank(2), Rank(5).Sub(3))
	assert.True(t, math.IsInf(Inf.Float(), 1))
	assert.Equal(t, "inf", Inf.String())
	assert.Equal(t, 0.0, Delta(math.Inf(1), math.Inf(1)))
	assert.True(t, math.IsInf(Delta(math.Inf(1), math.Inf(-1)), 1))
}

func TestNrmExc_DisbeliefAndBelief(t *testing.T) {
	r := NrmExc(false, true, 1)

	assert.Equal(t, Rank(1), r.DisbeliefRank(isTrue))
	assert.Equal(t, Rank(0), r.DisbeliefRank(func(b bool) bool { return !b }))
	assert.Equal(t, -1.0, r.BeliefRank(isTrue))
	assert.Equal(t, Inf, r.DisbeliefRank(func(bool) bool { return false }))
}

func TestRanking_Restartable(t *testing.T) {
	r := NrmExc("a", "b", 2)
	first := r.Items()
	second := r.Items()
	assert.Equal(t, first, second)
	assert.Equal(t, 2, r.Len())
	assert.False(t, r.IsEmpty())
	assert.True(t, Ranking[int]{}.IsEmpty())
}

func TestSequence_SumsRanksInOrder(t *testing.T) {
	// a ~ {F@0, T@1}; b ~ {a@0, !a@2}
	joint := Sequence(2, func(prefix []bool) Ranking[bool] {
		if len(prefix) == 0 {
			return NrmExc(false, true, 1)
		}
		return NrmExc(prefix[0], !prefix[0], 2)
	})

	items := joint.Items()
	require.Len(t, items, 4)

	var last Rank
	for _, it := range items {
		assert.GreaterOrEqual(t, it.Rank, last)
		last = it.Rank
	}
	assert.Equal(t, []bool{false, false}, items[0].Value)
	assert.Equal(t, Rank(0), items[0].Rank)
	assert.Equal(t, []bool{true, true}, items[1].Value)
	assert.Equal(t, Rank(1), items[1].Rank)
	assert.Equal(t, Rank(3), joint.DisbeliefRank(func(v []bool) bool { return v[0] && !v[1] }))
}

func TestSequence_TiesKeepExpansionOrder(t *testing.T) {
	joint := Sequence(2, func(prefix []string) Ranking[string] {
		return FromItems(Item[string]{"x", 0}, Item[string]{"y", 0})
	})
	var got []string
	for v := range joint.All() {
		got = append(got, v[0]+v[1])
	}
	assert.Equal(t, []string{"xx", "xy", "yx", "yy"}, got)
}

func TestSequence_DropsImpossible(t *testing.T) {
	joint := Sequence(1, func([]int) Ranking[int] {
		return FromItems(Item[int]{1, 0}, Item[int]{2, Inf})
	})
	assert.Equal(t, 1, joint.Len())
}

func TestObserve_NormalizesToZero(t *testing.T) {
	r := FromItems(Item[int]{1, 0}, Item[int]{2, 3}, Item[int]{4, 5})
	even := Observe(r, func(v int) bool { return v%2 == 0 })

	items := even.Items()
	require.Len(t, items, 2)
	assert.Equal(t, Item[int]{2, 0}, items[0])
	assert.Equal(t, Item[int]{4, 2}, items[1])

	none := Observe(r, func(int) bool { return false })
	assert.True(t, none.IsEmpty())
}

func TestObserveE_PenalizesFailing(t *testing.T) {
	r := NrmExc(2, 3, 1)
	got := ObserveE(r, 2, func(v int) bool { return v%2 == 0 }).Items()
	assert.Equal(t, []Item[int]{{2, 0}, {3, 3}}, got)

	got = ObserveE(r, 2, func(int) bool { return false }).Items()
	assert.Equal(t, []Item[int]{{2, 0}, {3, 1}}, got)
}

func TestMapAndFilter(t *testing.T) {
	r := NrmExc(1, 2, 1)
	doubled := Map(r, func(v int) int { return v * 2 })
	assert.Equal(t, Rank(1), doubled.DisbeliefRank(func(v int) bool { return v == 4 }))
	assert.Equal(t, 1, r.Filter(func(v int) bool { return v > 1 }).Len())
}
