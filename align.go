package axis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats/scalar"
)

// Locate returns the insertion index of v in the monotonic vector vec.
// For ascending vectors it is the smallest i with v <= vec[i]; for descending
// vectors the smallest i with vec[i] <= v, so exact matches resolve to the
// lower index in both cases. len(vec) is returned when no such index exists.
// A single-element vector is treated as ascending.
func Locate(vec []float64, v float64) int {
	n := len(vec)
	if n > 1 && vec[0] > vec[n-1] {
		return sort.Search(n, func(i int) bool { return vec[i] <= v })
	}
	return sort.Search(n, func(i int) bool { return v <= vec[i] })
}

// IsLeadingSubset reports whether small matches a contiguous run of big to
// within tol, and the offset in big where that run starts. On failure it
// returns (false, -1).
func IsLeadingSubset(small, big []float64, tol float64) (bool, int) {
	if len(small) == 0 || len(big) == 0 {
		return false, -1
	}
	off := nearest(big, small[0], Locate(big, small[0]))
	if off >= len(big) || len(big)-off < len(small) {
		return false, -1
	}
	if !within(small, big[off:off+len(small)], tol) {
		return false, -1
	}
	return true, off
}

// IsLeadingOverlap is IsLeadingSubset for fragments that may run past the end
// of big: only the overlapping leading part of small is compared. It returns
// (true, len(big)) when small starts beyond the end of big, and (false, -1)
// when small starts before big[0] by more than atol.
func IsLeadingOverlap(small, big []float64, atol float64) (bool, int) {
	if len(small) == 0 || len(big) == 0 {
		return false, -1
	}
	n := len(big)
	descending := n > 1 && big[0] > big[n-1]

	before := small[0] < big[0]-atol
	if descending {
		before = small[0] > big[0]+atol
	}
	if before {
		return false, -1
	}

	loc := Locate(big, small[0])
	if loc == n && !scalar.EqualWithinAbs(big[n-1], small[0], atol) {
		return true, n
	}
	off := nearest(big, small[0], loc)
	m := len(small)
	if n-off < m {
		m = n - off
	}
	if !within(small[:m], big[off:off+m], atol) {
		return false, -1
	}
	return true, off
}

// nearest nudges a Locate result back by one when the previous element is
// the closer match, so values a hair above a node still align with it
func nearest(vec []float64, v float64, i int) int {
	if i > 0 && (i == len(vec) || math.Abs(vec[i-1]-v) < math.Abs(vec[i]-v)) {
		return i - 1
	}
	return i
}

func within(a, b []float64, tol float64) bool {
	for i := range a {
		if !scalar.EqualWithinAbs(a[i], b[i], tol) {
			return false
		}
	}
	return true
}
