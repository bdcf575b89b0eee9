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

package scan

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/weaviate/somadb/entities/soma"
)

// Row is one materialized row, values aligned with a schema's field
// order. Values use the Go representation of each Arrow type; nulls are
// nil.
type Row = []interface{}

// RecordFromRows builds a record batch from materialized rows. project
// maps output column positions to row positions; nil means identity.
func RecordFromRows(sc *arrow.Schema, rows []Row, project []int) (arrow.Record, error) {
	cols := make([]arrow.Array, sc.NumFields())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i := 0; i < sc.NumFields(); i++ {
		src := i
		if project != nil {
			src = project[i]
		}
		arr, err := buildColumn(sc.Field(i), rows, src)
		if err != nil {
			return nil, err
		}
		cols[i] = arr
	}
	return array.NewRecord(sc, cols, int64(len(rows))), nil
}

func buildColumn(field arrow.Field, rows []Row, src int) (arrow.Array, error) {
	alloc := memory.DefaultAllocator
	switch field.Type.ID() {
	case arrow.INT8:
		b := array.NewInt8Builder(alloc)
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.(int8)) })
		}
		return b.NewArray(), nil
	case arrow.INT16:
		b := array.NewInt16Builder(alloc)
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.(int16)) })
		}
		return b.NewArray(), nil
	case arrow.INT32:
		b := array.NewInt32Builder(alloc)
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.(int32)) })
		}
		return b.NewArray(), nil
	case arrow.INT64:
		b := array.NewInt64Builder(alloc)
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.(int64)) })
		}
		return b.NewArray(), nil
	case arrow.UINT8:
		b := array.NewUint8Builder(alloc)
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.(uint8)) })
		}
		return b.NewArray(), nil
	case arrow.UINT16:
		b := array.NewUint16Builder(alloc)
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.(uint16)) })
		}
		return b.NewArray(), nil
	case arrow.UINT32:
		b := array.NewUint32Builder(alloc)
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.(uint32)) })
		}
		return b.NewArray(), nil
	case arrow.UINT64:
		b := array.NewUint64Builder(alloc)
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.(uint64)) })
		}
		return b.NewArray(), nil
	case arrow.FLOAT32:
		b := array.NewFloat32Builder(alloc)
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.(float32)) })
		}
		return b.NewArray(), nil
	case arrow.FLOAT64:
		b := array.NewFloat64Builder(alloc)
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.(float64)) })
		}
		return b.NewArray(), nil
	case arrow.BOOL:
		b := array.NewBooleanBuilder(alloc)
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.(bool)) })
		}
		return b.NewArray(), nil
	case arrow.STRING:
		b := array.NewStringBuilder(alloc)
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.(string)) })
		}
		return b.NewArray(), nil
	case arrow.LARGE_STRING:
		b := array.NewLargeStringBuilder(alloc)
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.(string)) })
		}
		return b.NewArray(), nil
	case arrow.BINARY, arrow.LARGE_BINARY:
		b := array.NewBinaryBuilder(alloc, field.Type.(arrow.BinaryDataType))
		defer b.Release()
		for _, row := range rows {
			appendOrNull(b, row[src], func(v interface{}) { b.Append(v.([]byte)) })
		}
		return b.NewArray(), nil
	default:
		return nil, soma.Schemaf("column %q has unsupported type %s", field.Name, field.Type)
	}
}

func appendOrNull(b array.Builder, v interface{}, appendFn func(interface{})) {
	if v == nil {
		b.AppendNull()
		return
	}
	appendFn(v)
}

// RowsFromRecord materializes a record batch into rows of Go values.
func RowsFromRecord(rec arrow.Record) ([]Row, error) {
	n := int(rec.NumRows())
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = make(Row, rec.NumCols())
	}
	for c := 0; c < int(rec.NumCols()); c++ {
		col := rec.Column(c)
		for r := 0; r < n; r++ {
			if col.IsNull(r) {
				continue
			}
			v, err := ColumnValue(col, r)
			if err != nil {
				return nil, err
			}
			rows[r][c] = v
		}
	}
	return rows, nil
}

// ColumnValue extracts one cell of an array as its Go value.
func ColumnValue(col arrow.Array, i int) (interface{}, error) {
	switch arr := col.(type) {
	case *array.Int8:
		return arr.Value(i), nil
	case *array.Int16:
		return arr.Value(i), nil
	case *array.Int32:
		return arr.Value(i), nil
	case *array.Int64:
		return arr.Value(i), nil
	case *array.Uint8:
		return arr.Value(i), nil
	case *array.Uint16:
		return arr.Value(i), nil
	case *array.Uint32:
		return arr.Value(i), nil
	case *array.Uint64:
		return arr.Value(i), nil
	case *array.Float32:
		return arr.Value(i), nil
	case *array.Float64:
		return arr.Value(i), nil
	case *array.Boolean:
		return arr.Value(i), nil
	case *array.String:
		return arr.Value(i), nil
	case *array.LargeString:
		return arr.Value(i), nil
	case *array.Binary:
		return arr.Value(i), nil
	case *array.LargeBinary:
		return arr.Value(i), nil
	default:
		return nil, soma.Schemaf("unsupported array type %s", col.DataType())
	}
}

// RowWidth is the approximate encoded byte width of one row of sc, used
// to translate byte-capped batch sizes into row counts.
func RowWidth(sc *arrow.Schema) int64 {
	var w int64
	for i := 0; i < sc.NumFields(); i++ {
		switch sc.Field(i).Type.ID() {
		case arrow.INT8, arrow.UINT8, arrow.BOOL:
			w++
		case arrow.INT16, arrow.UINT16:
			w += 2
		case arrow.INT32, arrow.UINT32, arrow.FLOAT32:
			w += 4
		case arrow.STRING, arrow.LARGE_STRING, arrow.BINARY, arrow.LARGE_BINARY:
			// Offsets plus an assumed modest payload.
			w += 32
		default:
			w += 8
		}
	}
	if w < 1 {
		w = 1
	}
	return w
}
