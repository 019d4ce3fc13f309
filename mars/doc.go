// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package mars rotates a set of circular sequences (plasmids, mitochondrial
// or viral genomes) so that they can be aligned by a linear multiple
// sequence aligner.
//
// A run has three phases:
//
//  1. Every ordered pair is compared: a first estimate from the heuristic or
//     the exact circular comparator, improved by refinement. This phase is
//     parallel (see package pairwise).
//  2. With the heuristic method, pairs whose two directions disagree are
//     recomputed exactly.
//  3. A neighbor-joining guide tree is built from the matrix and one rotation
//     per sequence is propagated along it, starting from the first sequence
//     (see package guidetree).
//
// All options and sequence lengths are validated before phase 1 starts.
package mars
