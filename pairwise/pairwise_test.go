package pairwise_test

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/mars/circular"
	"github.com/grailbio/mars/cyclic"
	"github.com/grailbio/mars/edit"
	"github.com/grailbio/mars/encoding/fasta"
	"github.com/grailbio/mars/pairwise"
	"github.com/grailbio/mars/score"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func records(seqs ...string) []fasta.Record {
	recs := make([]fasta.Record, len(seqs))
	for i, s := range seqs {
		recs[i] = fasta.NewRecord(string('a'+rune(i)), []byte(s))
	}
	return recs
}

func randomRecords(r *rand.Rand, n, length int) []fasta.Record {
	base := make([]byte, length)
	for i := range base {
		base[i] = "ACGT"[r.Intn(4)]
	}
	seqs := make([]string, n)
	for k := range seqs {
		s := circular.Rotate(base, r.Intn(length))
		for e := 0; e < 3; e++ {
			s[r.Intn(length)] = "ACGT"[r.Intn(4)]
		}
		seqs[k] = string(s)
	}
	return records(seqs...)
}

func exactOpts() pairwise.Opts {
	return pairwise.Opts{Alphabet: score.DNA, Method: pairwise.Exact, Q: 5, Parallelism: 2}
}

func heuristicOpts() pairwise.Opts {
	return pairwise.Opts{
		Alphabet:     score.DNA,
		Method:       pairwise.Heuristic,
		RefineBlocks: 1,
		Q:            3,
		Parallelism:  2,
		Heuristic:    cyclic.DefaultHeuristicOpts,
	}
}

func TestComputeRotatedCopies(t *testing.T) {
	recs := records("ACGTACGT", "GTACGTAC", "TACGTACG")
	m, stats, err := pairwise.New(recs, exactOpts()).Compute()
	assert.NoError(t, err)
	want := [][]cyclic.Result{
		{{}, {Distance: 0, Rotation: 2}, {Distance: 0, Rotation: 3}},
		{{Distance: 0, Rotation: 2}, {}, {Distance: 0, Rotation: 1}},
		{{Distance: 0, Rotation: 1}, {Distance: 0, Rotation: 3}, {}},
	}
	for i := range want {
		for j := range want[i] {
			if i != j {
				expect.EQ(t, m.At(i, j), want[i][j], "cell %d,%d", i, j)
			}
		}
	}
	expect.EQ(t, stats.Pairs, 6)
	expect.EQ(t, stats.Identical, 0)
	expect.True(t, stats.Search.Rotations > 0)
}

func TestComputeIdentical(t *testing.T) {
	recs := records("ACGTTGCA", "ACGTTGCA", "CCGTTGCA")
	m, stats, err := pairwise.New(recs, exactOpts()).Compute()
	assert.NoError(t, err)
	expect.EQ(t, m.At(0, 1), cyclic.Result{})
	expect.EQ(t, m.At(1, 0), cyclic.Result{})
	expect.EQ(t, stats.Identical, 2)
	expect.EQ(t, m.Distance(0, 2), 1)
}

func TestComputeSmall(t *testing.T) {
	for _, n := range []int{0, 1} {
		recs := randomRecords(rand.New(rand.NewSource(0)), n, 10)
		m, stats, err := pairwise.New(recs, heuristicOpts()).Compute()
		assert.NoError(t, err)
		expect.EQ(t, m.N(), n)
		expect.EQ(t, stats.Pairs, 0)
	}
}

func TestHeuristicNeverBeatsExact(t *testing.T) {
	recs := randomRecords(rand.New(rand.NewSource(1)), 5, 60)
	exact, _, err := pairwise.New(recs, exactOpts()).Compute()
	assert.NoError(t, err)
	approx, _, err := pairwise.New(recs, heuristicOpts()).Compute()
	assert.NoError(t, err)
	for i := range recs {
		for j := range recs {
			if i == j {
				continue
			}
			expect.LE(t, exact.Distance(i, j), approx.Distance(i, j))
			// Refinement leaves the true distance of the reported rotation.
			r := approx.At(i, j)
			expect.EQ(t, edit.Distance(circular.Rotate(recs[i].Seq, r.Rotation), recs[j].Seq), r.Distance)
		}
	}
}

func TestComputeIndependentOfParallelism(t *testing.T) {
	recs := randomRecords(rand.New(rand.NewSource(2)), 7, 50)
	var results []*pairwise.Matrix
	for _, p := range []int{1, 3, 16} {
		opts := heuristicOpts()
		opts.Parallelism = p
		m, _, err := pairwise.New(recs, opts).Compute()
		assert.NoError(t, err)
		results = append(results, m)
	}
	expect.EQ(t, results[1].String(), results[0].String())
	expect.EQ(t, results[2].String(), results[0].String())
}

func TestCorrect(t *testing.T) {
	recs := randomRecords(rand.New(rand.NewSource(3)), 4, 40)
	e := pairwise.New(recs, heuristicOpts())
	m, _, err := e.Compute()
	assert.NoError(t, err)
	exact, _, err := pairwise.New(recs, exactOpts()).Compute()
	assert.NoError(t, err)

	// Corrupt one direction of a pair.
	m.Set(0, 1, cyclic.Result{Distance: 1000, Rotation: 0})
	before := make([]int, 0, 16)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			before = append(before, m.Distance(i, j))
		}
	}
	stats, err := e.Correct(m)
	assert.NoError(t, err)
	expect.EQ(t, stats.Checked, 12)
	expect.True(t, stats.Recomputed >= 1)
	expect.EQ(t, stats.Skipped, 0)
	expect.EQ(t, m.Distance(0, 1), exact.Distance(0, 1))
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			expect.LE(t, m.Distance(i, j), before[i*4+j])
		}
	}
}

func TestCorrectTolerance(t *testing.T) {
	// Four sequences of length 40: the tolerance is 0.05 * 40 = 2.
	recs := randomRecords(rand.New(rand.NewSource(5)), 4, 40)
	e := pairwise.New(recs, heuristicOpts())
	exact, _, err := pairwise.New(recs, exactOpts()).Compute()
	assert.NoError(t, err)
	uniform := func() *pairwise.Matrix {
		m := pairwise.NewMatrix(4)
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				if i != j {
					m.Set(i, j, cyclic.Result{Distance: 30})
				}
			}
		}
		return m
	}

	// An asymmetry of exactly the tolerance is accepted.
	m := uniform()
	m.Set(0, 1, cyclic.Result{Distance: 32, Rotation: 7})
	stats, err := e.Correct(m)
	assert.NoError(t, err)
	expect.EQ(t, stats.Recomputed, 0)
	expect.EQ(t, m.At(0, 1), cyclic.Result{Distance: 32, Rotation: 7})

	// One more is not.
	m = uniform()
	m.Set(0, 1, cyclic.Result{Distance: 33, Rotation: 7})
	stats, err = e.Correct(m)
	assert.NoError(t, err)
	expect.True(t, stats.Recomputed >= 1)
	expect.EQ(t, m.Distance(0, 1), exact.Distance(0, 1))
	expect.EQ(t, m.At(2, 3), cyclic.Result{Distance: 30})
}

func TestCorrectSkipsLongSequences(t *testing.T) {
	long := strings.Repeat("ACGT", cyclic.MaxExactLen/4+1)
	recs := records(long, "AC"+long[2:])
	e := pairwise.New(recs, exactOpts())
	m := pairwise.NewMatrix(2)
	m.Set(0, 1, cyclic.Result{Distance: 5000})
	stats, err := e.Correct(m)
	assert.NoError(t, err)
	expect.EQ(t, stats.Skipped, 2)
	expect.EQ(t, stats.Recomputed, 0)
	expect.EQ(t, m.Distance(0, 1), 5000)
}

func TestTSV(t *testing.T) {
	recs := records("ACGTACGT", "GTACGTAC", "TACGTACA")
	m, _, err := pairwise.New(recs, exactOpts()).Compute()
	assert.NoError(t, err)
	ids := []string{"a", "b", "c"}
	var buf bytes.Buffer
	assert.NoError(t, pairwise.WriteTSV(&buf, m, ids))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7)
	expect.EQ(t, lines[1], "a\tb\t0\t2")

	m2, err := pairwise.ReadTSV(&buf, ids)
	assert.NoError(t, err)
	expect.EQ(t, m2.String(), m.String())

	_, err = pairwise.ReadTSV(strings.NewReader("from\tto\tdistance\trotation\nx\ta\t1\t0\n"), ids)
	expect.NotNil(t, err)
	expect.NotNil(t, pairwise.WriteTSV(&buf, m, ids[:2]))
}

func TestMatrixString(t *testing.T) {
	m := pairwise.NewMatrix(2)
	m.Set(0, 1, cyclic.Result{Distance: 12, Rotation: 3})
	m.Set(1, 0, cyclic.Result{Distance: 1, Rotation: 0})
	expect.EQ(t, m.String(), "\n   - | 12/3\n 1/0 |    -")
	expect.EQ(t, len(m.Row(1)), 2)
}

func TestReadTSVRejectsIncompleteDumps(t *testing.T) {
	recs := records("ACGTACGT", "GTACGTAC", "TACGTACA")
	m, _, err := pairwise.New(recs, exactOpts()).Compute()
	assert.NoError(t, err)
	ids := []string{"a", "b", "c"}
	var buf bytes.Buffer
	assert.NoError(t, pairwise.WriteTSV(&buf, m, ids))
	dump := buf.String()

	// Duplicate names.
	_, err = pairwise.ReadTSV(strings.NewReader(dump), []string{"dup", "dup", "c"})
	expect.True(t, errors.Is(errors.Invalid, err))
	assert.Regexp(t, err, "both named")

	// Truncated dump.
	_, err = pairwise.ReadTSV(strings.NewReader("from\tto\tdistance\trotation\na\tb\t4\t1\n"), ids)
	expect.True(t, errors.Is(errors.Invalid, err))
	assert.Regexp(t, err, `"a" -> "c" is missing`)

	lines := strings.SplitAfter(dump, "\n")
	_, err = pairwise.ReadTSV(strings.NewReader(strings.Join(lines[:len(lines)-2], "")), ids)
	assert.Regexp(t, err, `"c" -> "b" is missing`)

	// A pair given twice.
	_, err = pairwise.ReadTSV(strings.NewReader(dump+"a\tb\t4\t1\n"), ids)
	assert.Regexp(t, err, `"a" -> "b" appears twice`)

	// A self pair.
	_, err = pairwise.ReadTSV(strings.NewReader(dump+"a\ta\t0\t0\n"), ids)
	assert.Regexp(t, err, "self pair")

	m2, err := pairwise.ReadTSV(strings.NewReader(dump), ids)
	assert.NoError(t, err)
	expect.EQ(t, m2.String(), m.String())
}
