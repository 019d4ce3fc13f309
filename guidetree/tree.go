package guidetree

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/mars/cyclic"
)

// Distances is the input of Build. pairwise.Matrix implements it.
type Distances interface {
	// N returns the number of sequences.
	N() int
	// At returns the result of comparing sequence i against sequence j.
	At(i, j int) cyclic.Result
}

// LeafDistance is the symmetric distance between sequences a and b used by
// neighbor joining.
func LeafDistance(d Distances, a, b int) int {
	ab, ba := d.At(a, b).Distance, d.At(b, a).Distance
	if ba < ab {
		return ba
	}
	return ab
}

// Node is a node of a guide tree. Nodes 0..N-1 are the leaves, in sequence
// order; internal nodes follow in the order they were created.
type Node struct {
	// Leaf is the sequence index of a leaf, or -1.
	Leaf int
	// Left and Right are the children of an internal node, or -1.
	Left, Right int
	// LeftLen and RightLen are the branch lengths to the children.
	LeftLen, RightLen float64
	// Bridge is the closest pair of leaves, the first under Left and the
	// second under Right.
	Bridge [2]int
}

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool { return n.Leaf >= 0 }

// Tree is a rooted binary guide tree.
type Tree struct {
	Nodes []Node
	// Root is the index of the root node, or -1 for an empty tree.
	Root int
}

// NumLeaves returns the number of sequences in the tree.
func (t *Tree) NumLeaves() int { return (len(t.Nodes) + 1) / 2 }

// Leaves returns the sequence indexes under node, from left to right.
func (t *Tree) Leaves(node int) []int {
	var leaves []int
	var walk func(int)
	walk = func(i int) {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			leaves = append(leaves, n.Leaf)
			return
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(node)
	return leaves
}

// cluster is an active cluster during neighbor joining.
type cluster struct {
	node   int   // node id
	leaves []int // sequence indexes under node
	sum    float64
}

// Build joins the sequences of d into a tree by neighbor joining.
//
// Leaf distances are LeafDistance. At each step the active pair (a, b)
// minimizing Q(a, b) = (n-2) d(a, b) - S(a) - S(b) is joined, ties going to
// the pair with the lowest node ids. Negative branch lengths are clamped to
// 0. The last two clusters are joined under the root, each at half their
// distance.
func Build(d Distances) *Tree {
	n := d.N()
	t := &Tree{Root: -1}
	if n == 0 {
		return t
	}
	t.Nodes = make([]Node, n, 2*n-1)
	clusters := make([]*cluster, n)
	dist := make([][]float64, n) // by slot
	for i := 0; i < n; i++ {
		t.Nodes[i] = Node{Leaf: i, Left: -1, Right: -1}
		clusters[i] = &cluster{node: i, leaves: []int{i}}
		dist[i] = make([]float64, n)
		for j := 0; j < i; j++ {
			dist[i][j] = float64(LeafDistance(d, i, j))
			dist[j][i] = dist[i][j]
		}
	}

	for active := n; active > 1; active-- {
		for i, ci := range clusters {
			if ci == nil {
				continue
			}
			ci.sum = 0
			for j, cj := range clusters {
				if cj != nil && j != i {
					ci.sum += dist[i][j]
				}
			}
		}
		sa, sb := -1, -1
		if active == 2 {
			for i, c := range clusters {
				if c == nil {
					continue
				}
				if sa < 0 {
					sa = i
				} else {
					sb = i
				}
			}
		} else {
			sa, sb = selectPair(clusters, dist, active)
		}
		if clusters[sa].node > clusters[sb].node {
			sa, sb = sb, sa
		}
		a, b := clusters[sa], clusters[sb]
		dab := dist[sa][sb]
		var la, lb float64
		if active == 2 {
			la, lb = dab/2, dab/2
		} else {
			la = dab/2 + (a.sum-b.sum)/(2*float64(active-2))
			lb = dab - la
		}
		if la < 0 {
			la = 0
		}
		if lb < 0 {
			lb = 0
		}
		u := Node{
			Leaf:     -1,
			Left:     a.node,
			Right:    b.node,
			LeftLen:  la,
			RightLen: lb,
			Bridge:   bridge(d, a.leaves, b.leaves),
		}
		t.Nodes = append(t.Nodes, u)
		log.Debug.Printf("guidetree: join %d and %d into %d (%.3g, %.3g), bridge %v",
			a.node, b.node, len(t.Nodes)-1, la, lb, u.Bridge)

		for k, c := range clusters {
			if c == nil || k == sa || k == sb {
				continue
			}
			dist[sa][k] = (dist[sa][k] + dist[sb][k] - dab) / 2
			dist[k][sa] = dist[sa][k]
		}
		clusters[sa] = &cluster{node: len(t.Nodes) - 1, leaves: append(a.leaves, b.leaves...)}
		clusters[sb] = nil
	}
	t.Root = len(t.Nodes) - 1
	return t
}

// selectPair returns the slots of the active pair minimizing the Q
// criterion.
func selectPair(clusters []*cluster, dist [][]float64, active int) (int, int) {
	var (
		bestA, bestB   = -1, -1
		bestQ          float64
		bestLo, bestHi int
	)
	for i, ci := range clusters {
		if ci == nil {
			continue
		}
		for j := i + 1; j < len(clusters); j++ {
			cj := clusters[j]
			if cj == nil {
				continue
			}
			q := float64(active-2)*dist[i][j] - ci.sum - cj.sum
			lo, hi := ci.node, cj.node
			if lo > hi {
				lo, hi = hi, lo
			}
			if bestA < 0 || q < bestQ || (q == bestQ && (lo < bestLo || (lo == bestLo && hi < bestHi))) {
				bestA, bestB, bestQ, bestLo, bestHi = i, j, q, lo, hi
			}
		}
	}
	return bestA, bestB
}

// bridge returns the closest pair (a, b), a in as and b in bs. Ties go to the
// smallest a, then the smallest b.
func bridge(d Distances, as, bs []int) [2]int {
	best := [2]int{-1, -1}
	bestDist := 0
	for _, a := range as {
		for _, b := range bs {
			dab := LeafDistance(d, a, b)
			if best[0] < 0 || dab < bestDist ||
				(dab == bestDist && (a < best[0] || (a == best[0] && b < best[1]))) {
				best, bestDist = [2]int{a, b}, dab
			}
		}
	}
	return best
}
