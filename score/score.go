package score

import (
	"strings"

	"github.com/grailbio/base/errors"
)

// Alphabet selects the residue set and substitution scoring.
type Alphabet uint8

const (
	// DNA is the nucleotide alphabet ACGTN, scored with EDNAFULL.
	DNA Alphabet = iota
	// Protein is the amino acid alphabet, scored with BLOSUM62.
	Protein

	nAlphabets = 2
)

const (
	dnaSymbols  = "ACGTN"
	protSymbols = "ARNDCQEGHILKMFPSTWYVBZX*"

	invalidRank = int8(-1)
)

var (
	symbols = [nAlphabets]string{dnaSymbols, protSymbols}
	names   = [nAlphabets]string{"DNA", "PROT"}
	// bitsPerSymbol is the number of bits needed to pack one residue rank.
	bitsPerSymbol = [nAlphabets]uint{3, 5}

	rankTable  [nAlphabets][256]int8
	scoreTable [nAlphabets][256][256]int8
)

// ParseAlphabet converts "DNA" or "PROT" (case-insensitive) to an Alphabet.
func ParseAlphabet(name string) (Alphabet, error) {
	switch strings.ToUpper(name) {
	case "DNA":
		return DNA, nil
	case "PROT", "PROTEIN":
		return Protein, nil
	}
	return DNA, errors.E(errors.Invalid,
		"alphabet should be 'DNA' for nucleotide sequences or 'PROT' for protein sequences, got", name)
}

// String returns the name accepted by ParseAlphabet.
func (a Alphabet) String() string { return names[a] }

// Symbols returns the residues of the alphabet in rank order.
func (a Alphabet) Symbols() string { return symbols[a] }

// Size returns the number of residues.
func (a Alphabet) Size() int { return len(symbols[a]) }

// BitsPerSymbol returns the number of bits a residue rank occupies when
// packed.
func (a Alphabet) BitsPerSymbol() uint { return bitsPerSymbol[a] }

// Valid reports whether c is an upper-case residue of the alphabet.
func (a Alphabet) Valid(c byte) bool { return rankTable[a][c] != invalidRank }

// Rank returns the position of c in Symbols(), or -1 if c is not a residue.
func (a Alphabet) Rank(c byte) int { return int(rankTable[a][c]) }

// Score returns the substitution score of residues x and y. Pairs involving
// a byte outside the alphabet get the lowest score of the table.
func (a Alphabet) Score(x, y byte) int { return int(scoreTable[a][x][y]) }

// UngappedScore sums Score over the aligned prefix of x and y.
func (a Alphabet) UngappedScore(x, y []byte) int {
	if len(y) < len(x) {
		x = x[:len(y)]
	}
	t := &scoreTable[a]
	s := 0
	for i, c := range x {
		s += int(t[c][y[i]])
	}
	return s
}

func init() {
	fill := func(a Alphabet, matrix [][]int8) {
		syms := symbols[a]
		lowest := int8(0)
		for _, row := range matrix {
			for _, v := range row {
				if v < lowest {
					lowest = v
				}
			}
		}
		for i := range rankTable[a] {
			rankTable[a][i] = invalidRank
			for j := range scoreTable[a][i] {
				scoreTable[a][i][j] = lowest
			}
		}
		for i := 0; i < len(syms); i++ {
			rankTable[a][syms[i]] = int8(i)
			for j := 0; j < len(syms); j++ {
				scoreTable[a][syms[i]][syms[j]] = matrix[i][j]
			}
		}
	}
	fill(DNA, ednafull)
	fill(Protein, blosum62)
}
