package discovery

import (
	"errors"
	"testing"

	"rankcausal/domain/causal"
	"rankcausal/domain/ranking"
	"rankcausal/internal/srm"
	"rankcausal/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func e(from, to string) causal.Edge { return causal.Edge{From: from, To: to} }

func TestDiscover_ChainLeavesSkeletonUnoriented(t *testing.T) {
	res, err := NewPC(DefaultOptions()).Discover(testkit.NoisyChain(2), []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, []causal.Edge{e("A", "B"), e("B", "C")}, res.Edges)
	assert.Empty(t, res.Oriented)
	assert.Equal(t, map[causal.Edge][]string{e("A", "C"): {"B"}}, res.Sepsets)
	assert.False(t, res.Adjacent("A", "C"))
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 6, res.CITests)
}

func TestDiscover_ColliderOrientsIntoSink(t *testing.T) {
	res, err := NewPC(DefaultOptions()).Discover(testkit.Collider(), []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Empty(t, res.Edges)
	assert.Equal(t, []causal.Edge{e("A", "C"), e("B", "C")}, res.Oriented)
	assert.Equal(t, []string{}, res.Sepsets[e("A", "B")])
	assert.Equal(t, []causal.Edge{e("A", "C"), e("B", "C")}, res.Skeleton())
}

func TestDiscover_ForkKeepsCommonCauseInSepset(t *testing.T) {
	res, err := NewPC(DefaultOptions()).Discover(testkit.Fork(), []string{"X", "Y", "Z"})
	require.NoError(t, err)

	assert.Equal(t, []causal.Edge{e("X", "Y"), e("X", "Z")}, res.Edges)
	assert.Empty(t, res.Oriented)
	assert.Equal(t, []string{"X"}, res.Sepsets[e("Y", "Z")])
}

func TestDiscover_MeekRuleOnePropagatesAwayFromCollider(t *testing.T) {
	res, err := NewPC(DefaultOptions()).Discover(testkit.ColliderChain(), []string{"A", "B", "C", "D"})
	require.NoError(t, err)

	assert.Empty(t, res.Edges)
	assert.Equal(t, []causal.Edge{e("A", "C"), e("B", "C"), e("C", "D")}, res.Oriented)
	assert.Equal(t, []string{"C"}, res.Sepsets[e("A", "D")])
}

func TestDiscover_MeekRuleTwoClosesTriangle(t *testing.T) {
	noisy := func(f func(p ...any) bool, rank ranking.Rank) srm.Mechanism {
		return func(p ...any) ranking.Ranking[any] {
			v := f(p...)
			return ranking.NrmExc[any](v, !v, rank)
		}
	}
	or := func(p ...any) bool { return p[0].(bool) || p[1].(bool) }
	m := srm.MustNew(
		srm.Variable{Name: "A", Domain: srm.Boolean, Mechanism: srm.NoisyBool(1)},
		srm.Variable{Name: "D", Domain: srm.Boolean, Mechanism: srm.NoisyBool(1)},
		srm.Variable{Name: "B", Domain: srm.Boolean, Parents: []string{"A", "D"}, Mechanism: noisy(or, 3)},
		srm.Variable{Name: "C", Domain: srm.Boolean, Parents: []string{"A", "B"}, Mechanism: noisy(or, 2)},
	)

	res, err := NewPC(DefaultOptions()).Discover(m, []string{"A", "B", "C", "D"})
	require.NoError(t, err)

	// D -> B <- A is the collider, R1 gives B -> C, R2 then gives A -> C
	assert.Empty(t, res.Edges)
	assert.Equal(t, []causal.Edge{e("A", "B"), e("A", "C"), e("B", "C"), e("D", "B")}, res.Oriented)
	assert.Equal(t, []string{"A", "B"}, res.Sepsets[e("C", "D")])
}

func TestDiscoverWith_MemoizesPermutedQueries(t *testing.T) {
	calls := 0
	alwaysDependent := func(x, y string, z []string) (bool, error) {
		calls++
		return false, nil
	}
	res, err := NewPC(Options{KMax: 2}).DiscoverWith([]string{"A", "B", "C"}, alwaysDependent)
	require.NoError(t, err)

	// 3 pairs with {} and 3 pairs with one conditioning variable
	assert.Equal(t, 6, calls)
	assert.Equal(t, calls, res.CITests)
	assert.Len(t, res.Edges, 3)
}

func TestDiscoverWith_PruneLimitsConditioningSets(t *testing.T) {
	var seen [][]string
	test := func(x, y string, z []string) (bool, error) {
		seen = append(seen, append([]string(nil), z...))
		return false, nil
	}
	prune := func(a, b string, candidates []string) []string {
		var out []string
		for _, c := range candidates {
			if c != "C" {
				out = append(out, c)
			}
		}
		return out
	}
	_, err := NewPC(Options{KMax: 1, Prune: prune}).DiscoverWith([]string{"A", "B", "C"}, test)
	require.NoError(t, err)

	for _, z := range seen {
		assert.NotContains(t, z, "C")
	}
}

func TestDiscoverWith_PropagatesTestErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewPC(DefaultOptions()).DiscoverWith([]string{"A", "B"}, func(string, string, []string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestDiscover_UnknownVariable(t *testing.T) {
	_, err := NewPC(DefaultOptions()).Discover(testkit.Chain(), []string{"A", "Q"})
	assert.ErrorIs(t, err, causal.ErrUnknownVariable)
}

func TestDiscover_IndependentRunsDoNotShareState(t *testing.T) {
	pc := NewPC(DefaultOptions())
	first, err := pc.Discover(testkit.Collider(), []string{"A", "B", "C"})
	require.NoError(t, err)
	second, err := pc.Discover(testkit.Collider(), []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, first.CITests, second.CITests)
	assert.Equal(t, first.Oriented, second.Oriented)
	assert.NotEqual(t, first.RunID, second.RunID)
}
