// Package edit computes unit-cost edit (Levenshtein) distances between
// residue sequences. Each insertion, deletion and substitution costs one
// point.
//
// All variants fill the usual (len(a)+1) x (len(b)+1) dynamic-programming
// matrix one row at a time, where row i covers the prefix a[:i]:
//
//   ___|___
//    1 | 3
//    2 | 4
//
// cell 4 is the minimum of 1 (diagonal, +0 on a match, +1 otherwise), 2
// (right, +1) and 3 (down, +1). Only two rows are kept alive.
package edit

// Aligner holds the reusable row buffers for distance computations. An
// Aligner is not thread safe; use one per goroutine.
type Aligner struct {
	prev, cur []int
	// Rows counts the DP rows computed by this aligner.
	Rows int
}

// NewAligner returns an Aligner with no preallocated rows.
func NewAligner() *Aligner { return &Aligner{} }

// reset sizes the row buffers for a b of length n.
func (al *Aligner) reset(n int) {
	if cap(al.prev) < n+1 {
		al.prev = make([]int, n+1)
		al.cur = make([]int, n+1)
	}
	al.prev = al.prev[:n+1]
	al.cur = al.cur[:n+1]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// computeRow fills al.cur for row i (1-based) from al.prev over the column
// range [jStart, jEnd], jStart >= 1.
func (al *Aligner) computeRow(ai byte, b []byte, jStart, jEnd int) {
	prev, cur := al.prev, al.cur
	for j := jStart; j <= jEnd; j++ {
		diag := prev[j-1]
		if ai != b[j-1] {
			diag++
		}
		cur[j] = min3(diag, prev[j]+1, cur[j-1]+1)
	}
	al.Rows++
}

// Distance returns the edit distance between a and b.
func (al *Aligner) Distance(a, b []byte) int {
	m, n := len(a), len(b)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}
	al.reset(n)
	for j := range al.prev {
		al.prev[j] = j
	}
	for i := 1; i <= m; i++ {
		al.cur[0] = i
		al.computeRow(a[i-1], b, 1, n)
		al.prev, al.cur = al.cur, al.prev
	}
	return al.prev[n]
}

// Bounded computes the edit distance between a and b, giving up as soon as
// it is known to exceed bound. It returns (distance, true) when the distance
// is at most bound and (lb, false) otherwise, where lb > bound is the lower
// bound that caused the early exit.
//
// After row i, every alignment passes through some cell (i, j) and still has
// to pay at least |(m-i) - (n-j)| to reach (m, n), so
//
//   min_j D[i][j] + |(m-i) - (n-j)|
//
// never overestimates the final distance.
func (al *Aligner) Bounded(a, b []byte, bound int) (int, bool) {
	m, n := len(a), len(b)
	if lb := abs(m - n); lb > bound {
		return lb, false
	}
	if m == 0 || n == 0 {
		return m + n, true
	}
	al.reset(n)
	for j := range al.prev {
		al.prev[j] = j
	}
	for i := 1; i <= m; i++ {
		al.cur[0] = i
		al.computeRow(a[i-1], b, 1, n)
		lb := al.cur[0] + abs((m-i)-n)
		for j := 1; j <= n; j++ {
			if v := al.cur[j] + abs((m-i)-(n-j)); v < lb {
				lb = v
			}
		}
		if lb > bound {
			al.prev, al.cur = al.cur, al.prev
			return lb, false
		}
		al.prev, al.cur = al.cur, al.prev
	}
	if d := al.prev[n]; d <= bound {
		return d, true
	}
	return al.prev[n], false
}

// Banded computes an edit distance restricted to the diagonal band that
// contains both the main diagonal and the diagonal ending in (m, n), widened
// by width on each side. Cells outside the band are treated as unreachable,
// so the result is never below Distance(a, b) and equals it whenever an
// optimal alignment stays inside the band.
func (al *Aligner) Banded(a, b []byte, width int) int {
	m, n := len(a), len(b)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}
	if width < 0 {
		width = 0
	}
	lo, hi := -width, width
	if d := n - m; d < 0 {
		lo += d
	} else {
		hi += d
	}
	inf := m + n + 1
	al.reset(n)
	for j := range al.prev {
		if j <= hi {
			al.prev[j] = j
		} else {
			al.prev[j] = inf
		}
	}
	for i := 1; i <= m; i++ {
		jStart, jEnd := i+lo, i+hi
		if jEnd > n {
			jEnd = n
		}
		if jStart <= 0 {
			al.cur[0] = i
			jStart = 1
		} else {
			al.cur[jStart-1] = inf
		}
		if jStart <= jEnd {
			al.computeRow(a[i-1], b, jStart, jEnd)
		}
		if jEnd+1 <= n {
			al.cur[jEnd+1] = inf
		}
		al.prev, al.cur = al.cur, al.prev
	}
	return al.prev[n]
}

// Distance returns the edit distance between a and b using a temporary
// Aligner.
func Distance(a, b []byte) int { return NewAligner().Distance(a, b) }
