package cyclic

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/mars/circular"
	"github.com/grailbio/mars/edit"
)

// MaxExactLen is the longest sequence Exact accepts. Branch and bound is
// exponential in the worst case; longer inputs must use the heuristic method.
const MaxExactLen = 20000

// orderProbeLen caps the number of positions compared when ordering
// rotations before the search.
const orderProbeLen = 512

// ExactAllowed reports whether Exact accepts sequences of lengths m and n.
func ExactAllowed(m, n int) bool { return m <= MaxExactLen && n <= MaxExactLen }

// SearchStats describes the work done by the branch-and-bound search.
type SearchStats struct {
	// Rotations is the number of rotations whose alignment was started.
	Rotations int
	// Pruned is the number of rotations abandoned before their last row.
	Pruned int
	// Rows is the number of DP rows computed.
	Rows int
}

// Merge adds the counters of o to s.
func (s SearchStats) Merge(o SearchStats) SearchStats {
	s.Rotations += o.Rotations
	s.Pruned += o.Pruned
	s.Rows += o.Rows
	return s
}

type rotationOrder struct {
	rot, mismatches int
}

// Exact computes exact cyclic edit distances by branch and bound.
//
// The search tree has one branch per rotation of x; the nodes along a branch
// are the rows of the edit-distance matrix of rotated x against y, i.e.
// partial alignments of growing prefixes of rotated x. After each row the
// admissible bound of edit.Aligner.Bounded is compared with the incumbent, and
// the branch is cut once it can no longer win.
//
// Ties: among rotations reaching the minimal distance, the numerically
// smallest rotation is returned. Branches are therefore also cut when their
// bound equals the incumbent distance and their rotation is larger than the
// incumbent's.
type Exact struct {
	al    *edit.Aligner
	buf   []byte
	order []rotationOrder
	// Stats accumulates over all Compare calls.
	Stats SearchStats
}

// NewExact creates an Exact comparator.
func NewExact() *Exact { return &Exact{al: edit.NewAligner()} }

// Compare returns the minimal edit distance between any rotation of x and y,
// with the smallest rotation achieving it. It returns an errors.Precondition
// error if either sequence is longer than MaxExactLen.
func (e *Exact) Compare(x, y []byte) (Result, error) {
	m, n := len(x), len(y)
	if !ExactAllowed(m, n) {
		return Result{}, errors.E(errors.Precondition,
			fmt.Sprintf("exact cyclic comparison is limited to sequences of at most %d symbols (got %d and %d); use the heuristic method",
				MaxExactLen, m, n))
	}
	if m == 0 {
		return Result{Distance: n}, nil
	}
	e.orderRotations(x, y)

	// The initial incumbent loses against every real rotation.
	best := Result{Distance: m + n + 1, Rotation: m}
	rows := e.al.Rows
	for _, o := range e.order {
		limit := best.Distance
		if o.rot > best.Rotation {
			limit--
		}
		if abs(m-n) > limit {
			e.Stats.Pruned++
			continue
		}
		e.Stats.Rotations++
		e.buf = circular.RotateInto(e.buf, x, o.rot)
		d, ok := e.al.Bounded(e.buf, y, limit)
		if !ok {
			e.Stats.Pruned++
			continue
		}
		best = Result{Distance: d, Rotation: o.rot}
	}
	e.Stats.Rows += e.al.Rows - rows
	return best, nil
}

// orderRotations sorts the rotations of x by the number of mismatches of an
// ungapped comparison of their first orderProbeLen positions against y, so
// that likely winners are explored first and tighten the incumbent early.
func (e *Exact) orderRotations(x, y []byte) {
	m := len(x)
	probe := len(y)
	if m < probe {
		probe = m
	}
	if probe > orderProbeLen {
		probe = orderProbeLen
	}
	e.order = e.order[:0]
	for r := 0; r < m; r++ {
		mm := 0
		for k := 0; k < probe; k++ {
			i := r + k
			if i >= m {
				i -= m
			}
			if x[i] != y[k] {
				mm++
			}
		}
		e.order = append(e.order, rotationOrder{rot: r, mismatches: mm})
	}
	sort.Slice(e.order, func(i, j int) bool {
		a, b := e.order[i], e.order[j]
		if a.mismatches != b.mismatches {
			return a.mismatches < b.mismatches
		}
		return a.rot < b.rot
	})
}
