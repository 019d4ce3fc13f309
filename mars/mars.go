package mars

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/mars/cyclic"
	"github.com/grailbio/mars/encoding/fasta"
	"github.com/grailbio/mars/guidetree"
	"github.com/grailbio/mars/pairwise"
	"github.com/grailbio/mars/score"
)

// Opts configures a run.
type Opts struct {
	Alphabet score.Alphabet
	Method   pairwise.Method
	// BlockLen is the length of the blocks used by the heuristic comparator
	// and by refinement. 0 means floor(sqrt(m)) for a sequence of length m.
	BlockLen int
	// RefineBlocks is the number of blocks re-anchored by refinement.
	RefineBlocks int
	// Q is the q-gram length.
	Q int
	// Parallelism is the number of concurrent comparison jobs. 0 means
	// runtime.NumCPU().
	Parallelism int
	// Candidates is the number of rotations the heuristic comparator scores
	// per pair.
	Candidates int
}

// DefaultOpts is the default configuration of bio-mars.
var DefaultOpts = Opts{
	Alphabet:     score.DNA,
	Method:       pairwise.Heuristic,
	BlockLen:     0,
	RefineBlocks: 1,
	Q:            5,
	Parallelism:  0,
	Candidates:   8,
}

// ParseMethod converts a method name to a pairwise.Method. "heuristic" (or
// "hced", "0") and "exact" (or "bb", "1") are accepted.
func ParseMethod(name string) (pairwise.Method, error) {
	switch strings.ToLower(name) {
	case "heuristic", "hced", "0":
		return pairwise.Heuristic, nil
	case "exact", "bb", "1":
		return pairwise.Exact, nil
	}
	return 0, errors.E(errors.Invalid, "method should be 'heuristic' or 'exact', got", name)
}

// Stats describes a run.
type Stats struct {
	Sequences int
	pairwise.Stats
	Correct pairwise.CorrectStats
}

func (o *Opts) pairwiseOpts() pairwise.Opts {
	h := cyclic.DefaultHeuristicOpts
	h.Candidates = o.Candidates
	return pairwise.Opts{
		Alphabet:     o.Alphabet,
		Method:       o.Method,
		BlockLen:     o.BlockLen,
		RefineBlocks: o.RefineBlocks,
		Q:            o.Q,
		Parallelism:  o.Parallelism,
		Heuristic:    h,
	}
}

// validate checks the options that do not depend on the input.
func (o *Opts) validate() error {
	if o.Alphabet != score.DNA && o.Alphabet != score.Protein {
		return errors.E(errors.Invalid, fmt.Sprintf("unsupported alphabet %d", o.Alphabet))
	}
	if o.Method != pairwise.Heuristic && o.Method != pairwise.Exact {
		return errors.E(errors.Invalid, fmt.Sprintf("unsupported method %v", o.Method))
	}
	if o.BlockLen < 0 {
		return errors.E(errors.Invalid, "block length must be >= 0, got", o.BlockLen)
	}
	if o.RefineBlocks < 0 {
		return errors.E(errors.Invalid, "number of refinement blocks must be >= 0, got", o.RefineBlocks)
	}
	if o.Method == pairwise.Heuristic && o.Candidates < 1 {
		return errors.E(errors.Invalid, "number of candidates must be >= 1, got", o.Candidates)
	}
	po := o.pairwiseOpts()
	if po.UsesQGrams() {
		if o.Q < 2 {
			return errors.E(errors.Invalid, "q-gram length must be >= 2, got", o.Q)
		}
		if o.BlockLen > 0 && o.Q >= o.BlockLen {
			return errors.E(errors.Invalid, fmt.Sprintf("q-gram length (%d) must be smaller than the block length (%d)", o.Q, o.BlockLen))
		}
	}
	return nil
}

// checkPairs checks the options against the sequence lengths.
func (o *Opts) checkPairs(recs []fasta.Record) error {
	if len(recs) == 0 {
		return errors.E(errors.Invalid, "no sequences")
	}
	po := o.pairwiseOpts()
	minLen := len(recs[0].Seq)
	for _, r := range recs {
		if len(r.Seq) < minLen {
			minLen = len(r.Seq)
		}
	}
	for _, r := range recs {
		m := len(r.Seq)
		if o.Method == pairwise.Exact && len(recs) > 1 && !cyclic.ExactAllowed(m, m) {
			return errors.E(errors.Precondition, fmt.Sprintf(
				"sequence %s has %d residues; the exact method is limited to %d, use the heuristic method",
				r.ID, m, cyclic.MaxExactLen))
		}
		l := po.BlockLenFor(m)
		if o.RefineBlocks*l > m/3 {
			return errors.E(errors.Invalid, fmt.Sprintf(
				"sequence %s: %d refinement blocks of length %d exceed a third of its length (%d)",
				r.ID, o.RefineBlocks, l, m))
		}
		if !po.UsesQGrams() || len(recs) == 1 {
			continue
		}
		if o.Q >= l {
			return errors.E(errors.Invalid, fmt.Sprintf(
				"sequence %s: q-gram length (%d) must be smaller than the block length (%d)", r.ID, o.Q, l))
		}
		if l > minLen-o.Q+1 {
			return errors.E(errors.Invalid, fmt.Sprintf(
				"sequence %s: block length %d exceeds the shortest sequence length (%d) minus the q-gram length plus one",
				r.ID, l, minLen))
		}
	}
	return nil
}

// Compare validates opts against recs, computes the matrix of all ordered
// pairs and, with the heuristic method, corrects its asymmetric cells.
func Compare(recs []fasta.Record, opts Opts) (*pairwise.Matrix, Stats, error) {
	stats := Stats{Sequences: len(recs)}
	if err := opts.validate(); err != nil {
		return nil, stats, err
	}
	if err := opts.checkPairs(recs); err != nil {
		return nil, stats, err
	}
	e := pairwise.New(recs, opts.pairwiseOpts())
	log.Printf("computing %d pairwise distances (%v method)", len(recs)*(len(recs)-1), opts.Method)
	m, pstats, err := e.Compute()
	if err != nil {
		return nil, stats, err
	}
	stats.Stats = pstats
	log.Debug.Printf("pairwise stats: %+v", pstats)
	if opts.Method == pairwise.Heuristic {
		log.Printf("correcting asymmetric distances")
		if stats.Correct, err = e.Correct(m); err != nil {
			return nil, stats, err
		}
		log.Debug.Printf("correction stats: %+v", stats.Correct)
		if stats.Correct.Skipped > 0 {
			log.Printf("%d asymmetric pair(s) too long for the exact comparator were kept", stats.Correct.Skipped)
		}
	}
	log.Printf("Stats: %+v", stats)
	return m, stats, nil
}

// Rotate builds the guide tree of m and returns it along with the rotation
// of every sequence.
func Rotate(recs []fasta.Record, m *pairwise.Matrix) (*guidetree.Tree, []int, error) {
	if m.N() != len(recs) {
		return nil, nil, errors.E(errors.Invalid, fmt.Sprintf("matrix has %d sequences, want %d", m.N(), len(recs)))
	}
	log.Printf("building guide tree")
	tree := guidetree.Build(m)
	lengths := make([]int, len(recs))
	for i, r := range recs {
		lengths[i] = len(r.Seq)
	}
	offsets, err := tree.Rotations(m, lengths)
	if err != nil {
		return nil, nil, err
	}
	rots := make([]int, len(offsets))
	for i, o := range offsets {
		rots[i] = o.Value()
	}
	return tree, rots, nil
}

// Result is the outcome of Run.
type Result struct {
	// Rotations holds the number of residues each sequence is rotated left
	// by.
	Rotations []int
	Matrix    *pairwise.Matrix
	Tree      *guidetree.Tree
	Stats     Stats
}

// Run computes the rotation of every sequence of recs.
func Run(recs []fasta.Record, opts Opts) (*Result, error) {
	m, stats, err := Compare(recs, opts)
	if err != nil {
		return nil, err
	}
	tree, rots, err := Rotate(recs, m)
	if err != nil {
		return nil, err
	}
	return &Result{Rotations: rots, Matrix: m, Tree: tree, Stats: stats}, nil
}
