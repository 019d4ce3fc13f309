// Package qgram encodes fixed-length substrings (q-grams) of residue
// sequences as 64-bit keys and indexes their positions.
//
// When q residues fit in 64 bits (q*BitsPerSymbol <= 64) a key is the packed
// sequence of residue ranks, updated in O(1) per position while sliding.
// Longer q-grams are hashed with farmhash; distinct q-grams may then share a
// key, which callers treat as a (rare) false hit.
package qgram

import (
	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/mars/score"
)

// Key identifies a q-gram.
type Key uint64

// Encoder converts q-grams to Keys. It is immutable and thread safe.
type Encoder struct {
	q      int
	alpha  score.Alphabet
	bits   uint
	packed bool
	mask   Key
}

// NewEncoder creates an Encoder for q-grams of length q over alpha. q must be
// positive.
func NewEncoder(alpha score.Alphabet, q int) *Encoder {
	if q <= 0 {
		panic(q)
	}
	e := &Encoder{q: q, alpha: alpha, bits: alpha.BitsPerSymbol()}
	if uint(q)*e.bits <= 64 {
		e.packed = true
		if uint(q)*e.bits == 64 {
			e.mask = ^Key(0)
		} else {
			e.mask = ^(^Key(0) << (uint(q) * e.bits))
		}
	}
	return e
}

// Q returns the q-gram length.
func (e *Encoder) Q() int { return e.q }

// Packed reports whether keys are exact packed encodings rather than hashes.
func (e *Encoder) Packed() bool { return e.packed }

// Key returns the key of s[:q]. len(s) must be at least q.
func (e *Encoder) Key(s []byte) Key {
	s = s[:e.q]
	if !e.packed {
		return Key(farm.Hash64(s))
	}
	var k Key
	for _, c := range s {
		k = (k << e.bits) | e.rank(c)
	}
	return k
}

func (e *Encoder) rank(c byte) Key {
	r := e.alpha.Rank(c)
	if r < 0 {
		// Sequences are validated on load; treat strays as the last residue.
		r = e.alpha.Size() - 1
	}
	return Key(r)
}

// Keys appends to dst the key of every q-gram of seq, indexed by start
// position, and returns the extended slice. With cyclic set, q-grams wrap
// around the end of seq and there are len(seq) of them; otherwise there are
// len(seq)-q+1 (none if seq is shorter than q).
func (e *Encoder) Keys(dst []Key, seq []byte, cyclic bool) []Key {
	n := len(seq)
	if n == 0 {
		return dst
	}
	src := seq
	if cyclic {
		// Extend with the first q-1 residues (repeating seq if it is shorter
		// than that).
		src = make([]byte, 0, n+e.q-1)
		src = append(src, seq...)
		for len(src) < n+e.q-1 {
			need := n + e.q - 1 - len(src)
			if need > n {
				need = n
			}
			src = append(src, seq[:need]...)
		}
	}
	count := len(src) - e.q + 1
	if count <= 0 {
		return dst
	}
	if !e.packed {
		for p := 0; p < count; p++ {
			dst = append(dst, Key(farm.Hash64(src[p:p+e.q])))
		}
		return dst
	}
	k := e.Key(src)
	dst = append(dst, k)
	for p := 1; p < count; p++ {
		k = ((k << e.bits) | e.rank(src[p+e.q-1])) & e.mask
		dst = append(dst, k)
	}
	return dst
}

// Index maps each q-gram key of a sequence to its start positions, in
// increasing order. An Index is immutable once built and safe for concurrent
// reads.
type Index struct {
	enc       *Encoder
	n         int
	positions map[Key][]int32
}

// NewIndex indexes the linear (non-wrapping) q-grams of seq.
func NewIndex(enc *Encoder, seq []byte) *Index {
	keys := enc.Keys(nil, seq, false)
	idx := &Index{
		enc:       enc,
		n:         len(seq),
		positions: make(map[Key][]int32, len(keys)),
	}
	for p, k := range keys {
		idx.positions[k] = append(idx.positions[k], int32(p))
	}
	return idx
}

// Encoder returns the encoder the index was built with.
func (idx *Index) Encoder() *Encoder { return idx.enc }

// Len returns the length of the indexed sequence.
func (idx *Index) Len() int { return idx.n }

// Lookup returns the start positions of key. The result must not be
// modified.
func (idx *Index) Lookup(key Key) []int32 { return idx.positions[key] }

// Distinct returns the number of distinct keys in the index.
func (idx *Index) Distinct() int { return len(idx.positions) }
