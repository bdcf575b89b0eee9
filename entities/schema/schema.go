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

package schema

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/weaviate/somadb/entities/soma"
)

// ValidateDataFrame checks a caller-declared dataframe schema, injects
// the soma_joinid column when absent, applies the large-variant
// promotion, and validates the index column selection. The returned
// schema is exactly what get-schema reports for the object's lifetime.
func ValidateDataFrame(sc *arrow.Schema, indexColumns []string) (*arrow.Schema, []string, error) {
	if sc == nil || sc.NumFields() == 0 {
		return nil, nil, soma.Schemaf("schema must declare at least one column")
	}

	fields := make([]arrow.Field, 0, sc.NumFields()+1)
	hasJoinID := false
	seen := map[string]bool{}
	for i := 0; i < sc.NumFields(); i++ {
		f := sc.Field(i)
		if seen[f.Name] {
			return nil, nil, soma.Schemaf("duplicate column %q", f.Name)
		}
		seen[f.Name] = true

		if f.Name == soma.JoinIDColumn {
			if f.Type.ID() != arrow.INT64 {
				return nil, nil, soma.Schemaf("%s must be int64, got %s", soma.JoinIDColumn, f.Type)
			}
			hasJoinID = true
		} else if strings.HasPrefix(f.Name, soma.ReservedPrefix) {
			return nil, nil, soma.Schemaf("column name %q uses the reserved prefix %q", f.Name, soma.ReservedPrefix)
		}
		if !IsSupported(f.Type) {
			return nil, nil, soma.Schemaf("column %q has unsupported type %s", f.Name, f.Type)
		}
		fields = append(fields, arrow.Field{Name: f.Name, Type: PromoteType(f.Type)})
	}
	if !hasJoinID {
		fields = append([]arrow.Field{{Name: soma.JoinIDColumn, Type: arrow.PrimitiveTypes.Int64}}, fields...)
	}

	out := arrow.NewSchema(fields, nil)

	if len(indexColumns) == 0 {
		indexColumns = []string{soma.JoinIDColumn}
	}
	idx := make([]string, len(indexColumns))
	seenIdx := map[string]bool{}
	for i, name := range indexColumns {
		if seenIdx[name] {
			return nil, nil, soma.Schemaf("duplicate index column %q", name)
		}
		seenIdx[name] = true
		pos := out.FieldIndices(name)
		if len(pos) == 0 {
			return nil, nil, soma.Schemaf("index column %q is not in the schema", name)
		}
		f := out.Field(pos[0])
		if !IsIndexable(f.Type) {
			return nil, nil, soma.Schemaf("index column %q has non-indexable type %s", name, f.Type)
		}
		idx[i] = name
	}
	return out, idx, nil
}

// ValidateNDArray checks an ndarray element type and shape.
func ValidateNDArray(elem arrow.DataType, shape []int64) error {
	if !IsNDArrayElem(elem) {
		return soma.Schemaf("unsupported ndarray element type %s", elem)
	}
	if len(shape) == 0 {
		return soma.Schemaf("ndarray needs at least one dimension")
	}
	for i, n := range shape {
		if n <= 0 {
			return soma.Schemaf("dimension %d has non-positive length %d", i, n)
		}
	}
	return nil
}

// NDArraySchema is the fixed columnar surface of an ndarray:
// soma_dim_0..n-1 int64 coordinates plus the soma_data value column.
func NDArraySchema(elem arrow.DataType, ndim int) *arrow.Schema {
	fields := make([]arrow.Field, 0, ndim+1)
	for i := 0; i < ndim; i++ {
		fields = append(fields, arrow.Field{Name: soma.DimensionName(i), Type: arrow.PrimitiveTypes.Int64})
	}
	fields = append(fields, arrow.Field{Name: soma.DataColumn, Type: elem})
	return arrow.NewSchema(fields, nil)
}

// Equal reports full schema equality: same columns, same order, same
// types. There is no structural subtyping anywhere in the model.
func Equal(a, b *arrow.Schema) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}

// FieldNames returns the column names in schema order.
func FieldNames(sc *arrow.Schema) []string {
	names := make([]string, sc.NumFields())
	for i := range names {
		names[i] = sc.Field(i).Name
	}
	return names
}

// Project resolves a column projection against sc, preserving schema
// order of the projected schema as the caller listed them.
func Project(sc *arrow.Schema, columns []string) (*arrow.Schema, []int, error) {
	if len(columns) == 0 {
		idx := make([]int, sc.NumFields())
		for i := range idx {
			idx[i] = i
		}
		return sc, idx, nil
	}
	fields := make([]arrow.Field, len(columns))
	idx := make([]int, len(columns))
	for i, name := range columns {
		pos := sc.FieldIndices(name)
		if len(pos) == 0 {
			return nil, nil, soma.Schemaf("unknown column %q", name)
		}
		idx[i] = pos[0]
		fields[i] = sc.Field(pos[0])
	}
	return arrow.NewSchema(fields, nil), idx, nil
}

// Marshal converts a schema to its manifest representation.
func Marshal(sc *arrow.Schema) ([]FieldManifest, error) {
	out := make([]FieldManifest, sc.NumFields())
	for i := 0; i < sc.NumFields(); i++ {
		f := sc.Field(i)
		name, err := TypeName(f.Type)
		if err != nil {
			return nil, err
		}
		out[i] = FieldManifest{Name: f.Name, Type: name}
	}
	return out, nil
}

// Unmarshal rebuilds a schema from its manifest representation.
func Unmarshal(fields []FieldManifest) (*arrow.Schema, error) {
	out := make([]arrow.Field, len(fields))
	for i, fm := range fields {
		dt, err := TypeFromName(fm.Type)
		if err != nil {
			return nil, err
		}
		out[i] = arrow.Field{Name: fm.Name, Type: dt}
	}
	return arrow.NewSchema(out, nil), nil
}

// FieldManifest is the stored form of one schema column.
type FieldManifest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
