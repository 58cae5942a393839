// Package subsets enumerates fixed-size subsets of a name list in
// lexicographic index order.
package subsets

import (
	"strings"

	"gonum.org/v1/gonum/stat/combin"
)

// Each calls fn with every k-subset of items, preserving the relative order of
// items inside each subset. It stops early when fn returns false. The slice
// passed to fn is reused between calls.
func Each(items []string, k int, fn func(subset []string) bool) {
	n := len(items)
	if k < 0 || k > n {
		return
	}
	if k == 0 {
		fn(nil)
		return
	}
	gen := combin.NewCombinationGenerator(n, k)
	idx := make([]int, k)
	subset := make([]string, k)
	for gen.Next() {
		gen.Combination(idx)
		for i, j := range idx {
			subset[i] = items[j]
		}
		if !fn(subset) {
			return
		}
	}
}

// Count is the number of k-subsets of n items, 0 when k is out of range.
func Count(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	return combin.Binomial(n, k)
}

// Key is a canonical identity for a subset taken in its enumeration order.
func Key(subset []string) string {
	return strings.Join(subset, "\x00")
}
