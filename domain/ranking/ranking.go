// Package ranking provides lazy ranking functions over values: restartable
// sequences of (value, rank) pairs where the rank is a disbelief degree.
package ranking

import (
	"iter"
	"sort"
)

// Item is one materialized (value, rank) pair.
type Item[T any] struct {
	Value T
	Rank  Rank
}

// Ranking is a lazy, restartable sequence of (value, rank) pairs. Every call to
// All starts a fresh pass over immutable captured state, so a Ranking can be
// iterated any number of times and shared between readers.
//
// The zero Ranking is empty.
type Ranking[T any] struct {
	seq iter.Seq2[T, Rank]
	// sorted is set by constructors that guarantee non-decreasing ranks, which
	// lets rank queries stop at the first match.
	sorted bool
}

// New wraps a sequence as a Ranking. The sequence is not assumed to be ordered.
func New[T any](seq iter.Seq2[T, Rank]) Ranking[T] {
	return Ranking[T]{seq: seq}
}

// NewOrdered wraps a sequence the caller guarantees to yield non-decreasing ranks.
func NewOrdered[T any](seq iter.Seq2[T, Rank]) Ranking[T] {
	return Ranking[T]{seq: seq, sorted: true}
}

// FromItems builds a Ranking from explicit pairs, in the given order.
func FromItems[T any](items ...Item[T]) Ranking[T] {
	snapshot := append([]Item[T](nil), items...)
	ordered := sort.SliceIsSorted(snapshot, func(i, j int) bool {
		return snapshot[i].Rank < snapshot[j].Rank
	})
	return Ranking[T]{
		seq: func(yield func(T, Rank) bool) {
			for _, it := range snapshot {
				if !yield(it.Value, it.Rank) {
					return
				}
			}
		},
		sorted: ordered,
	}
}

// Certain is the ranking that yields v at rank 0 and nothing else.
func Certain[T any](v T) Ranking[T] {
	return NewOrdered(func(yield func(T, Rank) bool) {
		yield(v, 0)
	})
}

// NrmExc is the normal/exceptional choice: normal at rank 0, exceptional at rank.
func NrmExc[T any](normal, exceptional T, rank Rank) Ranking[T] {
	return NewOrdered(func(yield func(T, Rank) bool) {
		if !yield(normal, 0) {
			return
		}
		yield(exceptional, rank)
	})
}

// All returns the underlying sequence.
func (r Ranking[T]) All() iter.Seq2[T, Rank] {
	if r.seq == nil {
		return func(func(T, Rank) bool) {}
	}
	return r.seq
}

// Ordered reports whether the ranking is known to yield non-decreasing ranks.
func (r Ranking[T]) Ordered() bool {
	return r.sorted
}

// Items materializes every pair.
func (r Ranking[T]) Items() []Item[T] {
	var out []Item[T]
	for v, k := range r.All() {
		out = append(out, Item[T]{Value: v, Rank: k})
	}
	return out
}

// Len counts the pairs by iterating once.
func (r Ranking[T]) Len() int {
	n := 0
	for range r.All() {
		n++
	}
	return n
}

// IsEmpty reports whether the ranking yields nothing.
func (r Ranking[T]) IsEmpty() bool {
	for range r.All() {
		return false
	}
	return true
}

// DisbeliefRank returns the minimal rank of a value satisfying pred, or Inf.
func (r Ranking[T]) DisbeliefRank(pred func(T) bool) Rank {
	best := Inf
	for v, k := range r.All() {
		if k >= best || !pred(v) {
			continue
		}
		best = k
		if r.sorted {
			break
		}
	}
	return best
}

// BeliefRank returns κ(¬pred) − κ(pred), possibly ±Inf.
func (r Ranking[T]) BeliefRank(pred func(T) bool) float64 {
	notPred := func(v T) bool { return !pred(v) }
	return Tau(r.DisbeliefRank(notPred), r.DisbeliefRank(pred))
}

// Filter keeps only values satisfying pred, without renormalizing.
func (r Ranking[T]) Filter(pred func(T) bool) Ranking[T] {
	src := r.All()
	return Ranking[T]{
		seq: func(yield func(T, Rank) bool) {
			for v, k := range src {
				if pred(v) && !yield(v, k) {
					return
				}
			}
		},
		sorted: r.sorted,
	}
}

// Map applies f to every value, keeping ranks.
func Map[T, U any](r Ranking[T], f func(T) U) Ranking[U] {
	src := r.All()
	return Ranking[U]{
		seq: func(yield func(U, Rank) bool) {
			for v, k := range src {
				if !yield(f(v), k) {
					return
				}
			}
		},
		sorted: r.sorted,
	}
}
