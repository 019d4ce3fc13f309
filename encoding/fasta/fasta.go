// Package fasta reads and writes the FASTA files consumed and produced by
// bio-mars. A FASTA file consists of a number of named sequences that may be
// interrupted by newlines. For example:
//
// >pUC19 cloning vector
// TCGCGCGTTTCGGTGATGAC
// GGTGAAAACCTCTGACACAT
// >pBR322
// TTCTCATGTTTGACAGCTTA
//
// Unlike most FASTA readers, the record ID is the whole header line after
// '>', so '>pUC19 cloning vector' becomes 'pUC19 cloning vector'.
package fasta

import (
	"bufio"
	"bytes"
	"io"

	"github.com/grailbio/base/log"
	"github.com/grailbio/mars/score"
	"github.com/minio/highwayhash"
	"github.com/pkg/errors"
)

const (
	bufferInitSize = 1024 * 1024 * 300 // 300 MB
)

// Digest is the highwayhash fingerprint of a sequence.
type Digest = [highwayhash.Size]uint8

var zeroSeed = [highwayhash.Size]uint8{}

// Record is one named sequence.
type Record struct {
	ID  string
	Seq []byte
	// Digest is the fingerprint of Seq. Records with different digests hold
	// different sequences.
	Digest Digest
}

// NewRecord creates a Record and computes its digest.
func NewRecord(id string, seq []byte) Record {
	return Record{ID: id, Seq: seq, Digest: highwayhash.Sum(seq, zeroSeed[:])}
}

// SameSeq reports whether r and o hold the same sequence.
func (r *Record) SameSeq(o *Record) bool {
	return r.Digest == o.Digest && bytes.Equal(r.Seq, o.Seq)
}

// ReadRecords reads all records from r, in file order. Residues are
// upper-cased and checked against alpha; whitespace inside sequences is
// skipped. Records with an empty sequence are omitted.
func ReadRecords(r io.Reader, alpha score.Alphabet) ([]Record, error) {
	var (
		recs    []Record
		id      string
		seq     []byte
		started bool
		lineNum int
	)
	flush := func() {
		if !started {
			return
		}
		if len(seq) == 0 {
			log.Printf("fasta: skipping empty record %q", id)
			return
		}
		recs = append(recs, NewRecord(id, seq))
		seq = nil
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) > 0 && line[0] == '>' { // Start a new sequence.
			flush()
			id = string(bytes.TrimSpace(line[1:]))
			started = true
			continue
		}
		for _, c := range line {
			if c == ' ' || c == '\t' || c == '\r' {
				continue
			}
			if c >= 'a' && c <= 'z' {
				c -= 'a' - 'A'
			}
			if !started {
				return nil, errors.Errorf("line %d: sequence data before the first header", lineNum)
			}
			if !alpha.Valid(c) {
				return nil, errors.Errorf("line %d: invalid %s character '%c' in record %q", lineNum, alpha, c, id)
			}
			seq = append(seq, c)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read FASTA data")
	}
	flush()
	return recs, nil
}
