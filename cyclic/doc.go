// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package cyclic compares circular sequences. For an ordered pair (x, y) it
// looks for the rotation r of x that minimizes the edit distance between x
// rotated by r and y, and reports both (Result).
//
// Three comparators are provided:
//
//  - Heuristic votes for candidate rotations using q-gram hits of fixed-size
//    blocks of x in y, then scores the best-voted candidates with a banded
//    edit distance. Its distance is an upper bound of the true distance at
//    the reported rotation.
//
//  - Exact runs a branch-and-bound search over all rotations and returns the
//    minimal distance. It refuses sequences longer than MaxExactLen.
//
//  - Refiner improves a candidate by re-anchoring a few blocks of the
//    rotated x in y and trying the rotations they suggest. It never returns a
//    distance above the true distance of its input rotation.
//
// Comparator objects own scratch buffers and are not thread safe; create one
// per goroutine. Seq values are immutable and can be shared.
package cyclic
