// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package guidetree builds a neighbor-joining tree over a matrix of circular
// comparison results, and uses it to choose one rotation per sequence such
// that all rotated sequences share a common frame.
//
// Each join of two clusters records a bridge: the pair of leaves, one per
// cluster, with the smallest distance. The N-1 bridges form a spanning tree
// over the sequences. Rotations are propagated along it breadth-first from
// sequence 0, whose rotation is fixed to 0.
package guidetree
