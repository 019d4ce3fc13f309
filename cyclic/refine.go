package cyclic

import (
	"sort"

	"github.com/grailbio/mars/circular"
	"github.com/grailbio/mars/edit"
	"github.com/grailbio/mars/score"
)

// RefineParams sets the block layout of one refinement.
type RefineParams struct {
	// Blocks is the number of blocks of the rotated x re-anchored in y.
	// Zero only recomputes the true distance of the input rotation.
	Blocks int
	// BlockLen is the length of each block.
	BlockLen int
}

// shiftVote counts the blocks suggesting a rotation shift.
type shiftVote struct {
	shift, support int
}

// Refiner is the refinement engine.
type Refiner struct {
	alpha  score.Alphabet
	al     *edit.Aligner
	buf    []byte
	hits   []int
	shifts []int
	votes  []shiftVote
}

// NewRefiner creates a Refiner scoring block placements with the
// substitution table of alpha.
func NewRefiner(alpha score.Alphabet) *Refiner {
	return &Refiner{alpha: alpha, al: edit.NewAligner()}
}

// Refine improves cur, a candidate rotation of x against y. xr must be x
// rotated by cur.Rotation.
//
// The true edit distance of xr against y is the baseline; cur.Distance is
// only an estimate and is not trusted. Then p.Blocks blocks are laid out
// evenly over xr. For each block, the q-gram hits of the block in y within a
// window around its expected position (scaled by len(y)/len(x)) give
// candidate placements, and the placement with the best ungapped
// substitution score decides how far the block is off. Each block's
// correction, and the median of all corrections, are turned into candidate
// rotations and evaluated exactly; only strict improvements are kept.
//
// The returned distance is never above the baseline, and the input rotation
// is returned if nothing improves on it.
func (rf *Refiner) Refine(x *Seq, xr []byte, y *Seq, cur Result, p RefineParams) Result {
	m, n := x.Len(), y.Len()
	best := Result{Distance: rf.al.Distance(xr, y.Data), Rotation: cur.Rotation}
	if p.Blocks <= 0 || best.Distance == 0 {
		return best
	}
	if q := y.Index.Encoder().Q(); p.BlockLen <= q || p.BlockLen > m || p.BlockLen > n {
		return best
	}
	window := abs(m-n) + p.BlockLen

	rf.shifts = rf.shifts[:0]
	for k := 0; k < p.Blocks; k++ {
		b := k * m / p.Blocks
		if b+p.BlockLen > m {
			b = m - p.BlockLen
		}
		expected := b * n / m
		if t, ok := rf.placeBlock(x, xr, y, cur.Rotation, b, expected, window, p.BlockLen); ok {
			rf.shifts = append(rf.shifts, expected-t)
		}
	}
	if len(rf.shifts) == 0 {
		return best
	}

	for _, v := range rf.rankShifts() {
		rot := circular.Mod(cur.Rotation+v.shift, m)
		if rot == best.Rotation {
			continue
		}
		rf.buf = circular.RotateInto(rf.buf, x.Data, rot)
		if d, ok := rf.al.Bounded(rf.buf, y.Data, best.Distance-1); ok {
			best = Result{Distance: d, Rotation: rot}
			if d == 0 {
				break
			}
		}
	}
	return best
}

// placeBlock finds where xr[b:b+blockLen] best fits in y, among placements
// supported by at least one q-gram hit and starting within window of
// expected. It returns false if there is no such placement.
func (rf *Refiner) placeBlock(x *Seq, xr []byte, y *Seq, rot, b, expected, window, blockLen int) (int, bool) {
	m, n := x.Len(), y.Len()
	q := y.Index.Encoder().Q()
	lo, hi := expected-window, expected+window
	if lo < 0 {
		lo = 0
	}
	if hi > n-blockLen {
		hi = n - blockLen
	}
	rf.hits = rf.hits[:0]
	for o := 0; o+q <= blockLen; o++ {
		key := x.Keys[circular.Mod(rot+b+o, m)]
		for _, t := range y.Index.Lookup(key) {
			if s := int(t) - o; s >= lo && s <= hi {
				rf.hits = append(rf.hits, s)
			}
		}
	}
	if len(rf.hits) == 0 {
		return 0, false
	}
	sort.Ints(rf.hits)
	block := xr[b : b+blockLen]
	bestT, bestScore := -1, 0
	for i, s := range rf.hits {
		if i > 0 && s == rf.hits[i-1] {
			continue
		}
		sc := rf.alpha.UngappedScore(block, y.Data[s:s+blockLen])
		if bestT < 0 || sc > bestScore || (sc == bestScore && abs(s-expected) < abs(bestT-expected)) {
			bestT, bestScore = s, sc
		}
	}
	return bestT, true
}

// rankShifts merges rf.shifts into distinct nonzero shifts, adds their
// median, and orders them by decreasing support, then increasing magnitude.
func (rf *Refiner) rankShifts() []shiftVote {
	sorted := append([]int(nil), rf.shifts...)
	sort.Ints(sorted)
	l := len(sorted)
	median := (sorted[(l-1)/2] + sorted[l/2]) / 2

	rf.votes = rf.votes[:0]
	for i, s := range sorted {
		if i > 0 && s == sorted[i-1] {
			rf.votes[len(rf.votes)-1].support++
			continue
		}
		rf.votes = append(rf.votes, shiftVote{shift: s, support: 1})
	}
	found := false
	for _, v := range rf.votes {
		if v.shift == median {
			found = true
		}
	}
	if !found {
		rf.votes = append(rf.votes, shiftVote{shift: median})
	}
	sort.SliceStable(rf.votes, func(i, j int) bool {
		a, b := rf.votes[i], rf.votes[j]
		if a.support != b.support {
			return a.support > b.support
		}
		if abs(a.shift) != abs(b.shift) {
			return abs(a.shift) < abs(b.shift)
		}
		return a.shift < b.shift
	})
	return rf.votes
}
