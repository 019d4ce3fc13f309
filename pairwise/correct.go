package pairwise

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/mars/circular"
	"github.com/grailbio/mars/cyclic"
)

// AsymmetryTolerance is the largest allowed |D[i][j] - D[j][i]|, as a
// fraction of the mean sequence length.
const AsymmetryTolerance = 0.05

// CorrectStats describes the work done by Correct.
type CorrectStats struct {
	// Checked is the number of ordered pairs examined.
	Checked int
	// Recomputed is the number of cells recomputed exactly.
	Recomputed int
	// Skipped is the number of asymmetric pairs left unchanged because a
	// sequence is too long for the exact comparator.
	Skipped int
	Search  cyclic.SearchStats
}

// Correct recomputes the cells of m whose distance differs from the reverse
// direction by more than AsymmetryTolerance times the mean sequence length.
// Pairs are visited in row-major order and updated in place, so a later
// check of (j, i) sees the corrected (i, j). A recomputed cell is the exact
// result followed by refinement, and replaces the stored cell unless its
// distance is larger.
func (e *Engine) Correct(m *Matrix) (CorrectStats, error) {
	var (
		stats CorrectStats
		n     = m.N()
		total int
	)
	if n < 2 {
		return stats, nil
	}
	for _, r := range e.recs {
		total += len(r.Seq)
	}
	tol := AsymmetryTolerance * float64(total) / float64(n)
	ex := cyclic.NewExact()
	rf := cyclic.NewRefiner(e.opts.Alphabet)
	var buf []byte
	for i := 0; i < n; i++ {
		x := e.seqs[i]
		p := cyclic.RefineParams{Blocks: e.opts.RefineBlocks, BlockLen: e.opts.BlockLenFor(x.Len())}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			stats.Checked++
			if float64(abs(m.Distance(i, j)-m.Distance(j, i))) <= tol {
				continue
			}
			y := e.seqs[j]
			if !cyclic.ExactAllowed(x.Len(), y.Len()) {
				stats.Skipped++
				continue
			}
			res, err := ex.Compare(x.Data, y.Data)
			if err != nil {
				return stats, err
			}
			buf = circular.RotateInto(buf, x.Data, res.Rotation)
			res = rf.Refine(x, buf, y, res, p)
			if old := m.At(i, j); res.Distance <= old.Distance {
				log.Debug.Printf("pairwise: corrected %s -> %s: %v -> %v", e.recs[i].ID, e.recs[j].ID, old, res)
				m.Set(i, j, res)
			}
			stats.Recomputed++
		}
	}
	stats.Search = ex.Stats
	return stats, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
