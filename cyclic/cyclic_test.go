package cyclic

import (
	"math/rand"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/mars/circular"
	"github.com/grailbio/mars/edit"
	"github.com/grailbio/mars/qgram"
	"github.com/grailbio/mars/score"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func randomSeq(r *rand.Rand, n int) []byte {
	s := make([]byte, n)
	for i := range s {
		s[i] = "ACGT"[r.Intn(4)]
	}
	return s
}

// substitute returns a copy of s with the bases at the given positions
// changed.
func substitute(s []byte, pos ...int) []byte {
	out := append([]byte(nil), s...)
	for _, p := range pos {
		if out[p] == 'A' {
			out[p] = 'C'
		} else {
			out[p] = 'A'
		}
	}
	return out
}

// bruteForce tries every rotation.
func bruteForce(x, y []byte) Result {
	best := Result{Distance: len(x) + len(y) + 1}
	for r := 0; r < len(x); r++ {
		if res := (Result{edit.Distance(circular.Rotate(x, r), y), r}); res.Less(best) {
			best = res
		}
	}
	return best
}

func prepare(q int, seqs ...[]byte) []*Seq {
	enc := qgram.NewEncoder(score.DNA, q)
	out := make([]*Seq, len(seqs))
	for i, s := range seqs {
		out[i] = Prepare(enc, s)
	}
	return out
}

func TestExactRotatedCopies(t *testing.T) {
	e := NewExact()
	x := []byte("ACGTACGT")
	for _, tt := range []struct {
		y    string
		want Result
	}{
		{"ACGTACGT", Result{0, 0}},
		{"GTACGTAC", Result{0, 2}},
		{"TACGTACG", Result{0, 3}},
		{"ACGTACCT", Result{1, 0}},
	} {
		got, err := e.Compare(x, []byte(tt.y))
		assert.NoError(t, err)
		expect.EQ(t, got, tt.want, "y=%s", tt.y)
	}
}

func TestExactSingleSubstitution(t *testing.T) {
	x, y := []byte("ACGTACGT"), []byte("ACGTACCT")
	got, err := NewExact().Compare(x, y)
	assert.NoError(t, err)
	expect.EQ(t, got.Distance, 1)
	for r := 0; r < len(x); r++ {
		expect.True(t, edit.Distance(circular.Rotate(x, r), y) > 0)
	}
}

func TestExactMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	e := NewExact()
	for iter := 0; iter < 100; iter++ {
		x := randomSeq(r, 1+r.Intn(24))
		y := randomSeq(r, 1+r.Intn(24))
		if r.Intn(2) == 0 {
			y = substitute(circular.Rotate(x, r.Intn(len(x))), r.Intn(len(x)))
		}
		got, err := e.Compare(x, y)
		assert.NoError(t, err)
		expect.EQ(t, got, bruteForce(x, y), "x=%s y=%s", x, y)
	}
	expect.True(t, e.Stats.Pruned > 0)
}

func TestExactRefusesLongSequences(t *testing.T) {
	long := make([]byte, MaxExactLen+1)
	for i := range long {
		long[i] = 'A'
	}
	_, err := NewExact().Compare(long, []byte("ACGT"))
	expect.True(t, errors.Is(errors.Precondition, err))
	expect.False(t, ExactAllowed(MaxExactLen+1, 4))
	expect.True(t, ExactAllowed(MaxExactLen, MaxExactLen))
}

func TestHeuristicFindsRotation(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	x := randomSeq(r, 200)
	y := substitute(circular.Rotate(x, 37), 20, 120)
	seqs := prepare(5, x, y)
	h := NewHeuristic(DefaultHeuristicOpts)
	got := h.Compare(seqs[0], seqs[1], 14)
	expect.EQ(t, got.Rotation, 37)
	expect.EQ(t, got.Distance, 2)
	// Deterministic.
	expect.EQ(t, h.Compare(seqs[0], seqs[1], 14), got)
}

func TestHeuristicNeverBeatsExact(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	e := NewExact()
	h := NewHeuristic(DefaultHeuristicOpts)
	for iter := 0; iter < 50; iter++ {
		x := randomSeq(r, 10+r.Intn(30))
		y := randomSeq(r, 10+r.Intn(30))
		if r.Intn(2) == 0 {
			y = substitute(circular.Rotate(x, r.Intn(len(x))), r.Intn(len(x)))
		}
		seqs := prepare(2, x, y)
		approx := h.Compare(seqs[0], seqs[1], 3)
		exact, err := e.Compare(x, y)
		assert.NoError(t, err)
		expect.LE(t, exact.Distance, approx.Distance)
		// The heuristic distance is an upper bound at its own rotation.
		expect.LE(t, edit.Distance(circular.Rotate(x, approx.Rotation), y), approx.Distance)
	}
}

func TestHeuristicWithoutHits(t *testing.T) {
	seqs := prepare(3, []byte("AAAAAAAAAA"), []byte("CCCCCCCCCC"))
	h := NewHeuristic(HeuristicOpts{Candidates: 4})
	got := h.Compare(seqs[0], seqs[1], 5)
	expect.EQ(t, got, Result{Distance: 10, Rotation: 0})
}

func TestRefineImprovesRotation(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	x := randomSeq(r, 300)
	y := substitute(circular.Rotate(x, 70), 10, 150, 250)
	seqs := prepare(5, x, y)
	rf := NewRefiner(score.DNA)
	start := Result{Distance: 1000, Rotation: 75}
	xr := circular.Rotate(x, start.Rotation)
	baseline := edit.Distance(xr, y)
	got := rf.Refine(seqs[0], xr, seqs[1], start, RefineParams{Blocks: 3, BlockLen: 17})
	expect.EQ(t, got.Rotation, 70)
	expect.EQ(t, got.Distance, edit.Distance(circular.Rotate(x, 70), y))
	expect.True(t, got.Distance < baseline)
}

func TestRefineWithoutBlocksRecomputesDistance(t *testing.T) {
	x, y := []byte("ACGTACGT"), []byte("GTACGTAC")
	seqs := prepare(2, x, y)
	got := NewRefiner(score.DNA).Refine(seqs[0], circular.Rotate(x, 1), seqs[1],
		Result{Distance: 99, Rotation: 1}, RefineParams{})
	expect.EQ(t, got, Result{Distance: edit.Distance(circular.Rotate(x, 1), y), Rotation: 1})
}

func TestRefineMonotone(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	rf := NewRefiner(score.DNA)
	for iter := 0; iter < 50; iter++ {
		x := randomSeq(r, 60+r.Intn(60))
		y := substitute(circular.Rotate(x, r.Intn(len(x))), r.Intn(len(x)), r.Intn(len(x)))
		if r.Intn(3) == 0 {
			y = randomSeq(r, 60+r.Intn(60))
		}
		seqs := prepare(4, x, y)
		rot := r.Intn(len(x))
		xr := circular.Rotate(x, rot)
		baseline := edit.Distance(xr, y)
		got := rf.Refine(seqs[0], xr, seqs[1], Result{Distance: baseline, Rotation: rot},
			RefineParams{Blocks: 2, BlockLen: 8})
		expect.LE(t, got.Distance, baseline)
		expect.EQ(t, got.Distance, edit.Distance(circular.Rotate(x, got.Rotation), y))
	}
}

func TestSelfDistance(t *testing.T) {
	x := []byte("GATTACAGATTACA")
	got, err := NewExact().Compare(x, x)
	assert.NoError(t, err)
	expect.EQ(t, got, Result{0, 0})
	seqs := prepare(3, x, x)
	expect.EQ(t, NewHeuristic(DefaultHeuristicOpts).Compare(seqs[0], seqs[1], 4).Distance, 0)
}
