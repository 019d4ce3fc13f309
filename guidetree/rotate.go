package guidetree

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/mars/circular"
)

// Rotations chooses one rotation per sequence. lengths[i] is the length of
// sequence i.
//
// Sequence 0 is rotated by 0. The bridges of t are then crossed
// breadth-first, in the order their joins were made. Crossing a bridge from a
// sequence a rotated by r to an unresolved sequence b uses whichever
// direction of the pair has the smaller distance:
//
//   D[b][a] <= D[a][b]: rot(b) = D[b][a].Rotation + scale(r)
//   otherwise:          rot(b) = scale(r - D[a][b].Rotation)
//
// where scale maps an offset of a onto b in proportion to their lengths.
func (t *Tree) Rotations(d Distances, lengths []int) ([]circular.Offset, error) {
	n := d.N()
	if len(lengths) != n || t.NumLeaves() != n {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("guidetree: %d lengths and %d leaves for %d sequences", len(lengths), t.NumLeaves(), n))
	}
	rots := make([]circular.Offset, n)
	if n == 0 {
		return rots, nil
	}
	adj := make([][]int, n)
	for _, node := range t.Nodes[n:] {
		a, b := node.Bridge[0], node.Bridge[1]
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}

	rots[0] = circular.Resolved(0)
	queue := []int{0}
	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]
		r := rots[a].Value()
		for _, b := range adj[a] {
			if rots[b].IsResolved() {
				continue
			}
			ma, mb := lengths[a], lengths[b]
			var rb int
			if ab, ba := d.At(a, b), d.At(b, a); ba.Distance <= ab.Distance {
				rb = ba.Rotation + scale(r, ma, mb)
			} else {
				rb = scale(circular.Mod(r-ab.Rotation, ma), ma, mb)
			}
			if mb > 0 {
				rb = circular.Mod(rb, mb)
			} else {
				rb = 0
			}
			rots[b] = circular.Resolved(rb)
			queue = append(queue, b)
		}
	}
	for i, r := range rots {
		if !r.IsResolved() {
			return nil, errors.E(fmt.Sprintf("guidetree: no rotation for sequence %d", i))
		}
	}
	return rots, nil
}

// scale maps offset off of a sequence of length from onto a sequence of
// length to.
func scale(off, from, to int) int {
	if from == to || from == 0 {
		return off
	}
	return int(int64(off) * int64(to) / int64(from))
}
