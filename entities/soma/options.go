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

package soma

import "github.com/pkg/errors"

// BatchSize controls how much data a read returns per batch. At most one
// of Count and Bytes may be set; the zero value lets the store pick.
type BatchSize struct {
	// Count caps the number of rows per record batch.
	Count int64
	// Bytes caps the approximate encoded size per record batch. At
	// least one row is returned per batch regardless.
	Bytes int64
}

func (b BatchSize) Validate() error {
	if b.Count < 0 || b.Bytes < 0 {
		return errors.New("batch size: count and bytes must be non-negative")
	}
	if b.Count > 0 && b.Bytes > 0 {
		return errors.New("batch size: either count or bytes may be set, not both")
	}
	return nil
}

// IsAuto reports whether the store should choose the batch size.
func (b BatchSize) IsAuto() bool {
	return b.Count == 0 && b.Bytes == 0
}

// IOfN selects partition I (zero-indexed) out of N approximately
// equal-sized partitions of a read. Boundaries are stable: the same N
// against an unmodified object always produces the same split.
type IOfN struct {
	I int
	N int
}

func (p IOfN) Validate() error {
	if p.N < 1 {
		return errors.Errorf("partition: n must be at least 1, got %d", p.N)
	}
	if p.I < 0 || p.I >= p.N {
		return errors.Errorf("partition: index %d must be in the range [0, %d)", p.I, p.N)
	}
	return nil
}

// ResultOrder is the order batches of a single read are delivered in.
type ResultOrder string

const (
	// ResultOrderAuto delivers rows in storage order. No cross-batch
	// ordering is guaranteed across distinct reads.
	ResultOrderAuto ResultOrder = "auto"
	// ResultOrderRowMajor orders by index tuple, first index column
	// most significant.
	ResultOrderRowMajor ResultOrder = "row-major"
	// ResultOrderColumnMajor orders by index tuple, last index column
	// most significant.
	ResultOrderColumnMajor ResultOrder = "column-major"
)

func (r ResultOrder) Validate() error {
	switch r {
	case "", ResultOrderAuto, ResultOrderRowMajor, ResultOrderColumnMajor:
		return nil
	default:
		return errors.Errorf("unknown result order %q", string(r))
	}
}

// URIType controls how a collection entry's reference is stored.
type URIType int

const (
	// URITypeAuto stores a relative reference when the value lives
	// under the collection's own URI, an absolute one otherwise.
	URITypeAuto URIType = iota
	URITypeAbsolute
	URITypeRelative
)

func (u URIType) String() string {
	switch u {
	case URITypeAbsolute:
		return "absolute"
	case URITypeRelative:
		return "relative"
	default:
		return "auto"
	}
}
