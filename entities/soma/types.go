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

// Package soma defines the core object model shared by every layer of
// somadb: type tags, open modes, read options, coordinate selectors and
// the error taxonomy. Nothing in this package touches storage.
package soma

import "fmt"

// Type tags every stored object. The tag is written at creation time and
// is immutable afterwards; open validates it against the caller's
// expectation.
type Type string

const (
	TypeCollection    Type = "SOMACollection"
	TypeDataFrame     Type = "SOMADataFrame"
	TypeDenseNDArray  Type = "SOMADenseNDArray"
	TypeSparseNDArray Type = "SOMASparseNDArray"
	TypeExperiment    Type = "SOMAExperiment"
	TypeMeasurement   Type = "SOMAMeasurement"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCollection, TypeDataFrame, TypeDenseNDArray,
		TypeSparseNDArray, TypeExperiment, TypeMeasurement:
		return true
	default:
		return false
	}
}

// IsCollectionType reports whether objects of this tag behave as
// string-keyed containers.
func (t Type) IsCollectionType() bool {
	return t == TypeCollection || t == TypeExperiment || t == TypeMeasurement
}

// Mode is the state a handle was opened in. A handle is in exactly one
// mode for its whole lifetime; there is no reopen-in-place.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

func (m Mode) String() string {
	if m == ModeWrite {
		return "w"
	}
	return "r"
}

const (
	// JoinIDColumn is the mandatory unique row identifier of every
	// dataframe, used as the cross-object join key.
	JoinIDColumn = "soma_joinid"

	// ReservedPrefix marks column names owned by the storage layer.
	// User schemas may not declare columns with this prefix, with the
	// single exception of JoinIDColumn.
	ReservedPrefix = "soma_"

	// DataColumn is the value column of the columnar surface of an
	// NDArray.
	DataColumn = "soma_data"
)

// DimensionName returns the fixed name of the i-th dimension column of an
// NDArray's columnar surface.
func DimensionName(i int) string {
	return fmt.Sprintf("soma_dim_%d", i)
}

// PlatformConfig carries per-call configuration hints, keyed by backend
// name. Every backend reads only its own key and ignores the rest; all
// operations work with a nil map.
type PlatformConfig map[string]interface{}
