package ranking

import (
	"container/heap"
	"sort"
)

// Sequence performs sequential dependent binding of n components. step receives
// the values already bound (in binding order) and returns the ranking of the
// next component; the rank of a complete combination is the sum of the ranks
// along its path.
//
// Combinations are produced best-first, so the result has non-decreasing ranks.
// Among equal ranks, partial combinations expanded earlier come out first, which
// keeps the order deterministic for deterministic steps. Values at Inf are
// dropped. Each component ranking must be finite. The prefix passed to step must
// not be modified or retained.
func Sequence[T any](n int, step func(prefix []T) Ranking[T]) Ranking[[]T] {
	return NewOrdered(func(yield func([]T, Rank) bool) {
		frontier := &partialQueue[T]{}
		var order uint64
		heap.Push(frontier, partial[T]{order: order})
		for frontier.Len() > 0 {
			p := heap.Pop(frontier).(partial[T])
			if len(p.values) == n {
				if !yield(p.values, p.rank) {
					return
				}
				continue
			}
			for v, k := range step(p.values).All() {
				if k == Inf {
					continue
				}
				next := make([]T, len(p.values)+1)
				copy(next, p.values)
				next[len(p.values)] = v
				order++
				heap.Push(frontier, partial[T]{values: next, rank: p.rank.Add(k), order: order})
			}
		}
	})
}

type partial[T any] struct {
	values []T
	rank   Rank
	order  uint64
}

type partialQueue[T any] []partial[T]

func (q partialQueue[T]) Len() int { return len(q) }

func (q partialQueue[T]) Less(i, j int) bool {
	if q[i].rank != q[j].rank {
		return q[i].rank < q[j].rank
	}
	return q[i].order < q[j].order
}

func (q partialQueue[T]) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *partialQueue[T]) Push(x any) { *q = append(*q, x.(partial[T])) }

func (q *partialQueue[T]) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Observe is hard conditioning: values failing pred are discarded and the rest
// are shifted so the minimum rank is 0. The result is rank-ordered (stable).
func Observe[T any](r Ranking[T], pred func(T) bool) Ranking[T] {
	return normalized(r, func(v T, k Rank) (Rank, bool) {
		return k, pred(v)
	})
}

// ObserveE is soft conditioning: values failing pred are penalized by evidence
// instead of discarded, then the ranking is normalized.
func ObserveE[T any](r Ranking[T], evidence Rank, pred func(T) bool) Ranking[T] {
	return normalized(r, func(v T, k Rank) (Rank, bool) {
		if pred(v) {
			return k, true
		}
		return k.Add(evidence), true
	})
}

func normalized[T any](r Ranking[T], adjust func(T, Rank) (Rank, bool)) Ranking[T] {
	src := r.All()
	return NewOrdered(func(yield func(T, Rank) bool) {
		var kept []Item[T]
		low := Inf
		for v, k := range src {
			k2, ok := adjust(v, k)
			if !ok || k2 == Inf {
				continue
			}
			kept = append(kept, Item[T]{Value: v, Rank: k2})
			low = Min(low, k2)
		}
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].Rank < kept[j].Rank })
		for _, it := range kept {
			if !yield(it.Value, it.Rank.Sub(low)) {
				return
			}
		}
	})
}
