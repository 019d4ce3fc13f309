// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package score holds the residue alphabets accepted by bio-mars and their
// substitution-score tables: EDNAFULL for nucleotides and BLOSUM62 for
// proteins.
//
// The tables are package-level arrays populated once in init(), so they are
// immutable by the time any caller (in particular any worker goroutine) can
// observe them. Lookups are plain array reads and are safe for concurrent
// use.
package score
