package cyclic

import (
	"fmt"

	"github.com/grailbio/mars/qgram"
)

// Result is the outcome of comparing x against y: rotating x left by
// Rotation yields a sequence at edit distance Distance from y.
type Result struct {
	Distance int
	Rotation int
}

// Less orders results by distance, then by rotation.
func (r Result) Less(o Result) bool {
	if r.Distance != o.Distance {
		return r.Distance < o.Distance
	}
	return r.Rotation < o.Rotation
}

func (r Result) String() string {
	return fmt.Sprintf("{dist:%d rot:%d}", r.Distance, r.Rotation)
}

// Seq is a sequence prepared for comparison: its cyclic q-gram keys (one per
// start position, wrapping around the end) and an index of its linear
// q-grams.
type Seq struct {
	Data  []byte
	Keys  []qgram.Key
	Index *qgram.Index
}

// Prepare computes the q-gram tables of seq. With a nil enc, only Data is
// set; such a Seq can be used by the exact comparator and by refinement with
// zero blocks.
func Prepare(enc *qgram.Encoder, seq []byte) *Seq {
	if enc == nil {
		return &Seq{Data: seq}
	}
	return &Seq{
		Data:  seq,
		Keys:  enc.Keys(make([]qgram.Key, 0, len(seq)), seq, true),
		Index: qgram.NewIndex(enc, seq),
	}
}

// Len returns the sequence length.
func (s *Seq) Len() int { return len(s.Data) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
