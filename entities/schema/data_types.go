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

// Package schema implements the somadb type system on top of Arrow
// types: the table of representable types, the single permitted
// promotion (variable-length string/binary to the 64-bit-offset large
// variant) and the validation rules for dataframe and ndarray schemas.
package schema

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/weaviate/somadb/entities/soma"
)

// typeNames maps the manifest spelling of each representable type to its
// Arrow type. The spelling is part of the stored manifest format.
var typeNames = map[string]arrow.DataType{
	"int8":         arrow.PrimitiveTypes.Int8,
	"int16":        arrow.PrimitiveTypes.Int16,
	"int32":        arrow.PrimitiveTypes.Int32,
	"int64":        arrow.PrimitiveTypes.Int64,
	"uint8":        arrow.PrimitiveTypes.Uint8,
	"uint16":       arrow.PrimitiveTypes.Uint16,
	"uint32":       arrow.PrimitiveTypes.Uint32,
	"uint64":       arrow.PrimitiveTypes.Uint64,
	"float32":      arrow.PrimitiveTypes.Float32,
	"float64":      arrow.PrimitiveTypes.Float64,
	"bool":         arrow.FixedWidthTypes.Boolean,
	"string":       arrow.BinaryTypes.String,
	"large_string": arrow.BinaryTypes.LargeString,
	"binary":       arrow.BinaryTypes.Binary,
	"large_binary": arrow.BinaryTypes.LargeBinary,
}

// TypeName returns the manifest spelling of dt, or a SchemaError when dt
// is not representable.
func TypeName(dt arrow.DataType) (string, error) {
	for name, t := range typeNames {
		if arrow.TypeEqual(t, dt) {
			return name, nil
		}
	}
	return "", soma.Schemaf("unsupported type %s", dt)
}

// TypeFromName is the inverse of TypeName.
func TypeFromName(name string) (arrow.DataType, error) {
	dt, ok := typeNames[name]
	if !ok {
		return nil, soma.Schemaf("unknown type name %q", name)
	}
	return dt, nil
}

// IsSupported reports whether dt can be stored in a dataframe column.
func IsSupported(dt arrow.DataType) bool {
	_, err := TypeName(dt)
	return err == nil
}

// IsIndexable reports whether a dataframe column of type dt may be used
// as an index column. Numeric offsets are fixed at int64; string index
// columns are also permitted.
func IsIndexable(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.INT64, arrow.STRING, arrow.LARGE_STRING:
		return true
	default:
		return false
	}
}

// IsNDArrayElem reports whether dt may be the element type of an
// NDArray. Arrays hold a single numeric primitive.
func IsNDArrayElem(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.FLOAT32, arrow.FLOAT64:
		return true
	default:
		return false
	}
}

// PromoteType maps a variable-length type to its 64-bit-offset variant.
// All other types pass through unchanged. This is the only type
// transformation the layer ever applies, and it happens at creation time
// only; the promoted type is what get-schema reports afterwards.
func PromoteType(dt arrow.DataType) arrow.DataType {
	switch dt.ID() {
	case arrow.STRING:
		return arrow.BinaryTypes.LargeString
	case arrow.BINARY:
		return arrow.BinaryTypes.LargeBinary
	default:
		return dt
	}
}

// ZeroValue returns the fill value for unstored cells of type dt.
func ZeroValue(dt arrow.DataType) interface{} {
	switch dt.ID() {
	case arrow.INT8:
		return int8(0)
	case arrow.INT16:
		return int16(0)
	case arrow.INT32:
		return int32(0)
	case arrow.INT64:
		return int64(0)
	case arrow.UINT8:
		return uint8(0)
	case arrow.UINT16:
		return uint16(0)
	case arrow.UINT32:
		return uint32(0)
	case arrow.UINT64:
		return uint64(0)
	case arrow.FLOAT32:
		return float32(0)
	case arrow.FLOAT64:
		return float64(0)
	case arrow.BOOL:
		return false
	case arrow.STRING, arrow.LARGE_STRING:
		return ""
	case arrow.BINARY, arrow.LARGE_BINARY:
		return []byte(nil)
	default:
		return nil
	}
}
