package ranking

import (
	"math"
	"strconv"
)

// Rank is a disbelief degree: 0 is unsurprising, larger is more surprising.
// Inf marks an impossible value and flows through arithmetic as ordinary data.
type Rank int

// Inf is the infinite disbelief rank.
const Inf Rank = math.MaxInt

// IsInf reports whether r is the infinite rank.
func (r Rank) IsInf() bool {
	return r == Inf
}

// Add sums two ranks, saturating at Inf.
func (r Rank) Add(o Rank) Rank {
	if r == Inf || o == Inf {
		return Inf
	}
	if r > Inf-o {
		return Inf
	}
	return r + o
}

// Sub subtracts a finite base from r. Inf minus anything finite stays Inf.
// Subtracting Inf from a finite rank yields 0; callers only normalize by minima.
func (r Rank) Sub(base Rank) Rank {
	if r == Inf {
		return Inf
	}
	if base == Inf || base > r {
		return 0
	}
	return r - base
}

// Float converts r to float64, mapping Inf to +Inf.
func (r Rank) Float() float64 {
	if r == Inf {
		return math.Inf(1)
	}
	return float64(r)
}

func (r Rank) String() string {
	if r == Inf {
		return "inf"
	}
	return strconv.Itoa(int(r))
}

// Min returns the smaller of two ranks.
func Min(a, b Rank) Rank {
	if a < b {
		return a
	}
	return b
}

// Tau computes the belief degree κ(¬A) − κ(A) from the two disbelief ranks.
// The result may be ±Inf. Both sides infinite means no value exists either way
// and yields 0.
func Tau(kNot, k Rank) float64 {
	return Delta(kNot.Float(), k.Float())
}

// Delta returns a − b over the extended reals, treating equal infinities as
// no difference instead of NaN.
func Delta(a, b float64) float64 {
	if a == b {
		return 0
	}
	return a - b
}
