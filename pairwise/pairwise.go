package pairwise

import (
	"fmt"
	"math"
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/mars/circular"
	"github.com/grailbio/mars/cyclic"
	"github.com/grailbio/mars/encoding/fasta"
	"github.com/grailbio/mars/qgram"
	"github.com/grailbio/mars/score"
)

// Method selects the comparator that produces the first estimate of each
// pair.
type Method int

const (
	// Heuristic seeds every pair with the q-gram voting comparator.
	Heuristic Method = iota
	// Exact seeds every pair with the branch-and-bound comparator.
	Exact
)

func (m Method) String() string {
	switch m {
	case Heuristic:
		return "heuristic"
	case Exact:
		return "exact"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Opts configures the comparison of all pairs.
type Opts struct {
	Alphabet score.Alphabet
	Method   Method
	// BlockLen is the block length of the heuristic and of refinement. 0 uses
	// floor(sqrt(m)) for a row sequence of length m.
	BlockLen int
	// RefineBlocks is the number of blocks re-anchored by refinement.
	RefineBlocks int
	// Q is the q-gram length.
	Q int
	// Parallelism is the number of concurrent jobs. 0 uses runtime.NumCPU().
	Parallelism int
	Heuristic   cyclic.HeuristicOpts
}

// BlockLenFor returns the block length used when sequence i has length m.
func (o *Opts) BlockLenFor(m int) int {
	if o.BlockLen > 0 {
		return o.BlockLen
	}
	return int(math.Sqrt(float64(m)))
}

// UsesQGrams reports whether any phase looks up q-grams, in which case the q
// and block length constraints apply.
func (o *Opts) UsesQGrams() bool {
	return o.Method == Heuristic || o.RefineBlocks > 0
}

// Stats describes the work done by Compute.
type Stats struct {
	// Pairs is the number of ordered pairs compared.
	Pairs int
	// Identical is the number of pairs of identical sequences, which are
	// not compared.
	Identical int
	// Improved is the number of pairs for which refinement found a better
	// rotation than the first estimate.
	Improved int
	Search   cyclic.SearchStats
}

func (s Stats) merge(o Stats) Stats {
	s.Pairs += o.Pairs
	s.Identical += o.Identical
	s.Improved += o.Improved
	s.Search = s.Search.Merge(o.Search)
	return s
}

// Engine compares every ordered pair of a set of sequences.
type Engine struct {
	opts        Opts
	recs        []fasta.Record
	seqs        []*cyclic.Seq
	parallelism int
}

// New prepares recs for comparison: when q-grams are used, every sequence is
// indexed up front so that the indexes are read-only during the parallel
// phases. opts must have been validated.
func New(recs []fasta.Record, opts Opts) *Engine {
	e := &Engine{opts: opts, recs: recs, seqs: make([]*cyclic.Seq, len(recs))}
	e.parallelism = opts.Parallelism
	if e.parallelism <= 0 {
		e.parallelism = runtime.NumCPU()
	}
	if e.parallelism > len(recs) {
		e.parallelism = len(recs)
	}
	var enc *qgram.Encoder
	if opts.UsesQGrams() {
		enc = qgram.NewEncoder(opts.Alphabet, opts.Q)
	}
	e.each(func(i int) error {
		e.seqs[i] = cyclic.Prepare(enc, recs[i].Seq)
		return nil
	})
	return e
}

// N returns the number of sequences.
func (e *Engine) N() int { return len(e.recs) }

// each calls fn for every sequence index. Job k owns the static range
// [k*N/p, (k+1)*N/p); fn(i) may write only to state owned by i.
func (e *Engine) each(fn func(i int) error) error {
	n, p := len(e.recs), e.parallelism
	if n == 0 {
		return nil
	}
	return traverse.Each(p, func(jobIdx int) error {
		startIdx := (jobIdx * n) / p
		endIdx := ((jobIdx + 1) * n) / p
		for i := startIdx; i < endIdx; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	})
}

// Compute fills a new matrix with the result of every ordered pair.
//
// With the heuristic method, a first parallel phase seeds every cell with the
// heuristic comparator. The main phase then computes the first estimate
// (exact method) or reads the seed (heuristic method) and refines it. In both
// phases job k writes only its own rows. Identical sequences are recorded as
// {0, 0} without comparison.
func (e *Engine) Compute() (*Matrix, Stats, error) {
	n := len(e.recs)
	m := NewMatrix(n)
	if n < 2 {
		return m, Stats{}, nil
	}
	if e.opts.Method == Heuristic {
		log.Debug.Printf("pairwise: seeding %d pairs with the heuristic comparator", n*(n-1))
		if err := e.each(func(i int) error {
			h := cyclic.NewHeuristic(e.opts.Heuristic)
			blockLen := e.opts.BlockLenFor(e.seqs[i].Len())
			row := m.Row(i)
			for j := range row {
				if j != i && !e.recs[i].SameSeq(&e.recs[j]) {
					row[j] = h.Compare(e.seqs[i], e.seqs[j], blockLen)
				}
			}
			return nil
		}); err != nil {
			return nil, Stats{}, err
		}
	}

	rowStats := make([]Stats, n)
	err := e.each(func(i int) error {
		var (
			ex    *cyclic.Exact
			rf    = cyclic.NewRefiner(e.opts.Alphabet)
			buf   []byte
			stats = &rowStats[i]
			x     = e.seqs[i]
			p     = cyclic.RefineParams{Blocks: e.opts.RefineBlocks, BlockLen: e.opts.BlockLenFor(x.Len())}
		)
		if e.opts.Method == Exact {
			ex = cyclic.NewExact()
		}
		row := m.Row(i)
		for j := range row {
			if j == i {
				continue
			}
			stats.Pairs++
			if e.recs[i].SameSeq(&e.recs[j]) {
				row[j] = cyclic.Result{}
				stats.Identical++
				continue
			}
			cur := row[j]
			if ex != nil {
				var err error
				if cur, err = ex.Compare(x.Data, e.seqs[j].Data); err != nil {
					return errors.E(err, fmt.Sprintf("comparing %s against %s", e.recs[i].ID, e.recs[j].ID))
				}
			}
			buf = circular.RotateInto(buf, x.Data, cur.Rotation)
			row[j] = rf.Refine(x, buf, e.seqs[j], cur, p)
			if row[j].Rotation != cur.Rotation {
				stats.Improved++
			}
		}
		if ex != nil {
			stats.Search = ex.Stats
		}
		return nil
	})
	if err != nil {
		return nil, Stats{}, err
	}
	var stats Stats
	for _, s := range rowStats {
		stats = stats.merge(s)
	}
	return m, stats, nil
}
