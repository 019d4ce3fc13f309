package cyclic

import (
	"github.com/biogo/store/llrb"
	"github.com/grailbio/mars/circular"
	"github.com/grailbio/mars/edit"
)

// HeuristicOpts configures the heuristic comparator.
type HeuristicOpts struct {
	// Candidates is the number of best-voted rotations scored per pair.
	Candidates int
	// MaxOccurrences skips q-grams that occur more often than this in y
	// (low-complexity sequence). 0 disables the cutoff.
	MaxOccurrences int
}

// DefaultHeuristicOpts is used by the bio-mars command.
var DefaultHeuristicOpts = HeuristicOpts{
	Candidates:     8,
	MaxOccurrences: 64,
}

// candidate is a rotation ranked by the number of blocks voting for it.
type candidate struct {
	rot, votes int
}

// Compare implements llrb.Comparable. Higher vote counts sort first, then
// smaller rotations.
func (c candidate) Compare(o llrb.Comparable) int {
	c2 := o.(candidate)
	if c.votes != c2.votes {
		return c2.votes - c.votes
	}
	return c.rot - c2.rot
}

// Heuristic is the approximate circular comparator.
type Heuristic struct {
	opts    HeuristicOpts
	al      *edit.Aligner
	buf     []byte
	votes   []int32 // votes[r] for rotation r
	stamp   []int32 // stamp[r] = 1 + last block that voted for r
	touched []int   // rotations with votes > 0
	ranked  []int
}

// NewHeuristic creates a Heuristic comparator.
func NewHeuristic(opts HeuristicOpts) *Heuristic {
	if opts.Candidates <= 0 {
		opts.Candidates = 1
	}
	return &Heuristic{opts: opts, al: edit.NewAligner()}
}

func (h *Heuristic) resetVotes(m int) {
	for _, r := range h.touched {
		h.votes[r] = 0
	}
	h.touched = h.touched[:0]
	if cap(h.votes) < m {
		h.votes = make([]int32, m)
		h.stamp = make([]int32, m)
		return
	}
	h.votes = h.votes[:m]
	h.stamp = h.stamp[:m]
	for i := range h.stamp {
		h.stamp[i] = 0
	}
}

// Compare estimates the best rotation of x against y.
//
// x is cut into blocks of blockLen residues. Every q-gram inside a block that
// also occurs in y at position t, while starting at position p of x, suggests
// the rotation (p - t) mod len(x); a block votes at most once per rotation.
// The best-voted rotations are scored with a banded edit distance of width
// |len(x) - len(y)| + blockLen and the lowest (distance, rotation) wins.
func (h *Heuristic) Compare(x, y *Seq, blockLen int) Result {
	m, n := x.Len(), y.Len()
	if m == 0 {
		return Result{Distance: n}
	}
	if blockLen <= 0 || blockLen > m {
		blockLen = m
	}
	q := y.Index.Encoder().Q()
	h.resetVotes(m)
	nBlocks := m / blockLen
	for b := 0; b < nBlocks; b++ {
		start := b * blockLen
		for p := start; p+q <= start+blockLen; p++ {
			occ := y.Index.Lookup(x.Keys[p])
			if len(occ) == 0 || (h.opts.MaxOccurrences > 0 && len(occ) > h.opts.MaxOccurrences) {
				continue
			}
			for _, t := range occ {
				r := circular.Mod(p-int(t), m)
				if h.stamp[r] == int32(b+1) {
					continue
				}
				h.stamp[r] = int32(b + 1)
				if h.votes[r] == 0 {
					h.touched = append(h.touched, r)
				}
				h.votes[r]++
			}
		}
	}
	h.rankCandidates(m)

	width := abs(m-n) + blockLen
	best := Result{Distance: m + n + 1, Rotation: m}
	for _, r := range h.ranked {
		h.buf = circular.RotateInto(h.buf, x.Data, r)
		res := Result{Distance: h.al.Banded(h.buf, y.Data, width), Rotation: r}
		if res.Less(best) {
			best = res
		}
	}
	return best
}

// rankCandidates fills h.ranked with the rotations to score. Without any
// vote, rotations are spread evenly over x.
func (h *Heuristic) rankCandidates(m int) {
	h.ranked = h.ranked[:0]
	k := h.opts.Candidates
	if len(h.touched) == 0 {
		last := -1
		for i := 0; i < k; i++ {
			if r := i * m / k; r != last {
				h.ranked = append(h.ranked, r)
				last = r
			}
		}
		return
	}
	var tree llrb.Tree
	for _, r := range h.touched {
		tree.Insert(candidate{rot: r, votes: int(h.votes[r])})
	}
	tree.Do(func(c llrb.Comparable) bool {
		h.ranked = append(h.ranked, c.(candidate).rot)
		return len(h.ranked) >= k
	})
}
