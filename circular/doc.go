// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package circular provides helpers for sequences that have no fixed start
// point: rotation of a sequence by an offset, and Offset, a rotation that may
// still be unresolved.
package circular
