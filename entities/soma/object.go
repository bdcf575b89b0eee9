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

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
)

// Object is the base of every addressable SOMA entity. Concrete types
// are distinguished by their SOMAType tag; callers type-switch on the
// tag or on the Go type.
type Object interface {
	// URI returns the absolute location of this object.
	URI() string
	// SOMAType returns the immutable type tag.
	SOMAType() Type
	// Mode returns the mode this handle was opened in.
	Mode() Mode
	// Closed reports whether Close has been called.
	Closed() bool
	// Close flushes pending writes, cascades to children this object
	// instantiated, and releases the handle. Idempotent.
	Close(ctx context.Context) error

	// Metadata returns a copy of the object's metadata map.
	Metadata() map[string]interface{}
	// GetMetadata looks up a single metadata entry.
	GetMetadata(key string) (interface{}, bool)
	// SetMetadata stores a scalar metadata value. Write mode only.
	SetMetadata(key string, value interface{}) error
	// DeleteMetadata removes a metadata entry. Write mode only.
	DeleteMetadata(key string) error
}

// ReadIter is a pull-based, lazy sequence of Arrow record batches. No
// work happens until Next is called; Release is safe to call at any
// point, including before the first Next and more than once. The record
// returned by Record is valid until the next call to Next or Release.
type ReadIter interface {
	Next() bool
	Record() arrow.Record
	Err() error
	Release()
	// Concat materializes everything not yet consumed into a single
	// record. The caller releases the result.
	Concat() (arrow.Record, error)
}

// COOBatch is one batch of a sparse read in coordinate-triplet encoding.
type COOBatch struct {
	// Coords holds one []int64 of length ndim per stored cell.
	Coords [][]int64
	// Values holds the cell values, aligned with Coords. The iterator
	// owns the array; callers retain it to keep it.
	Values arrow.Array
}

// COOIter iterates coordinate-triplet batches of a sparse read.
type COOIter interface {
	Next() bool
	Batch() COOBatch
	Err() error
	Release()
}

// CollectionEntry is one row of a collection's manifest: enough to
// resolve and type a child without opening it.
type CollectionEntry struct {
	Key      string `json:"key"`
	URI      string `json:"uri"`
	Relative bool   `json:"relative"`
	SOMAType Type   `json:"soma_type"`
}

// ValidMetadataValue reports whether v is a scalar of one of the
// permitted metadata types.
func ValidMetadataValue(v interface{}) bool {
	switch v.(type) {
	case string, bool, int64, float64:
		return true
	default:
		return false
	}
}
