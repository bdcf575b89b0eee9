//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

// Package scan provides the shared read machinery: deterministic
// partitioning of a result set, lazy batch iteration over it, and an
// optional eagerly-prefetching wrapper.
package scan

import (
	"github.com/weaviate/somadb/entities/soma"
)

// Partition returns the half-open row range [lo, hi) of partition p over
// total rows. Partitions are contiguous, disjoint, cover [0, total), and
// differ in size by at most one row; the first total%N partitions carry
// the extra row. The split depends only on total and p, so concurrent
// workers against an unmodified object see consistent boundaries.
func Partition(total int64, p soma.IOfN) (lo, hi int64, err error) {
	if err := p.Validate(); err != nil {
		return 0, 0, err
	}
	n := int64(p.N)
	i := int64(p.I)
	size := total / n
	rem := total % n
	if i < rem {
		lo = i * (size + 1)
		hi = lo + size + 1
	} else {
		lo = rem*(size+1) + (i-rem)*size
		hi = lo + size
	}
	return lo, hi, nil
}
