package pairwise

import (
	"fmt"
	"strings"

	"github.com/grailbio/mars/cyclic"
)

// Matrix is a dense N x N matrix of directional comparison results. At(i, j)
// describes the rotation of sequence i that best matches sequence j. The
// diagonal is unused.
type Matrix struct {
	n    int
	data []cyclic.Result // row-major n*n array.
}

// NewMatrix returns an n x n matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{n: n, data: make([]cyclic.Result, n*n)}
}

// N returns the number of sequences.
func (m *Matrix) N() int { return m.n }

// At returns the result of comparing sequence i against sequence j.
func (m *Matrix) At(i, j int) cyclic.Result { return m.data[i*m.n+j] }

// Set stores the result of comparing sequence i against sequence j.
func (m *Matrix) Set(i, j int, r cyclic.Result) { m.data[i*m.n+j] = r }

// Distance returns At(i, j).Distance.
func (m *Matrix) Distance(i, j int) int { return m.data[i*m.n+j].Distance }

// Row returns row i. Concurrent writers must write disjoint rows.
func (m *Matrix) Row(i int) []cyclic.Result { return m.data[i*m.n : (i+1)*m.n] }

// String returns a string representation of the matrix, one "distance/rotation"
// cell per entry.
func (m *Matrix) String() string {
	cells := make([]string, len(m.data))
	width := 0
	for k, r := range m.data {
		if k/m.n == k%m.n {
			cells[k] = "-"
		} else {
			cells[k] = fmt.Sprintf("%d/%d", r.Distance, r.Rotation)
		}
		if len(cells[k]) > width {
			width = len(cells[k])
		}
	}
	lines := []string{""}
	for i := 0; i < m.n; i++ {
		parts := make([]string, m.n)
		for j := range parts {
			parts[j] = fmt.Sprintf("%*s", width, cells[i*m.n+j])
		}
		lines = append(lines, strings.Join(parts, " | "))
	}
	return strings.Join(lines, "\n")
}
