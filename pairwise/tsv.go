package pairwise

import (
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/mars/cyclic"
)

// Row is one line of a matrix dump.
type Row struct {
	From     string `tsv:"from"`
	To       string `tsv:"to"`
	Distance int64  `tsv:"distance"`
	Rotation int64  `tsv:"rotation"`
}

// WriteTSV writes every off-diagonal cell of m, in row-major order. ids names
// the sequences.
func WriteTSV(w io.Writer, m *Matrix, ids []string) error {
	if len(ids) != m.N() {
		return errors.E(errors.Invalid, "pairwise: got", len(ids), "names for", m.N(), "sequences")
	}
	tw := tsv.NewRowWriter(w)
	for i := 0; i < m.N(); i++ {
		for j := 0; j < m.N(); j++ {
			if i == j {
				continue
			}
			r := m.At(i, j)
			row := Row{From: ids[i], To: ids[j], Distance: int64(r.Distance), Rotation: int64(r.Rotation)}
			if err := tw.Write(&row); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}

// ReadTSV reads a matrix written by WriteTSV. ids names the sequences and
// must be distinct. Every off-diagonal cell must appear exactly once.
func ReadTSV(r io.Reader, ids []string) (*Matrix, error) {
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		if prev, ok := index[id]; ok {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("pairwise: sequences %d and %d are both named %q", prev, i, id))
		}
		index[id] = i
	}
	n := len(ids)
	m := NewMatrix(n)
	seen := make([]bool, n*n)
	tr := tsv.NewReader(r)
	tr.HasHeaderRow = true
	tr.UseHeaderNames = true
	for {
		var row Row
		if err := tr.Read(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		i, ok := index[row.From]
		j, ok2 := index[row.To]
		if !ok || !ok2 {
			return nil, errors.E(errors.Invalid, "pairwise: unknown sequence in pair", row.From, row.To)
		}
		if i == j {
			return nil, errors.E(errors.Invalid, "pairwise: self pair for", row.From)
		}
		if seen[i*n+j] {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("pairwise: pair %q -> %q appears twice", row.From, row.To))
		}
		seen[i*n+j] = true
		m.Set(i, j, cyclic.Result{Distance: int(row.Distance), Rotation: int(row.Rotation)})
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && !seen[i*n+j] {
				return nil, errors.E(errors.Invalid, fmt.Sprintf("pairwise: pair %q -> %q is missing", ids[i], ids[j]))
			}
		}
	}
	return m, nil
}
