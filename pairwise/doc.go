// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package pairwise compares every ordered pair of a set of circular
// sequences and stores the results in a dense Matrix.
//
// Engine.Compute runs the comparison in parallel. Rows of the matrix are
// statically partitioned among jobs: job k owns rows [k*N/p, (k+1)*N/p) and
// is the only writer of those rows, so no locking is needed. With the
// heuristic method a first parallel phase seeds every cell, and the main
// phase starts only once it has completed.
//
// Engine.Correct is a sequential pass that recomputes exactly the cells
// whose two directions disagree by more than AsymmetryTolerance of the mean
// sequence length.
package pairwise
