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

package dataframe

import (
	"context"
	"encoding/binary"
	"sort"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/weaviate/somadb/entities/filters"
	"github.com/weaviate/somadb/entities/schema"
	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/scan"
)

// ReadOptions narrows and shapes one read. The zero value selects every
// row and column in storage order with store-chosen batching.
type ReadOptions struct {
	// Coords selects along the index columns, in their declared order.
	// Missing trailing selectors default to the whole dimension.
	Coords []soma.Coord
	// ColumnNames projects the result; empty means all columns.
	ColumnNames []string
	// ValueFilter is a filter expression evaluated against candidate
	// rows after coordinate selection.
	ValueFilter string
	BatchSize   soma.BatchSize
	// Partition restricts the read to one of N stable slices of the
	// result set.
	Partition      *soma.IOfN
	ResultOrder    soma.ResultOrder
	PlatformConfig soma.PlatformConfig
}

// Read returns a lazy batch iterator over the selected rows. The
// iterator works against this handle's data snapshot; concurrent
// publishes through other handles do not affect it.
func (df *DataFrame) Read(ctx context.Context, opts ReadOptions) (soma.ReadIter, error) {
	if err := df.RequireRead("read"); err != nil {
		return nil, err
	}
	if err := opts.ResultOrder.Validate(); err != nil {
		return nil, err
	}
	if len(opts.Coords) > len(df.indexCols) {
		return nil, soma.Coordf("%d coordinate selectors for %d index columns", len(opts.Coords), len(df.indexCols))
	}
	for i, c := range opts.Coords {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		colType := df.sc.Field(df.idxPos[i]).Type.ID()
		isStrCol := colType == arrow.STRING || colType == arrow.LARGE_STRING
		if c.IsString() != isStrCol && !c.IsAll() {
			return nil, soma.Coordf("selector %d does not match the type of index column %q", i, df.indexCols[i])
		}
	}

	outSc, project, err := schema.Project(df.sc, opts.ColumnNames)
	if err != nil {
		return nil, err
	}

	var pred *filters.Predicate
	if opts.ValueFilter != "" {
		if pred, err = filters.ParseAndCompile(opts.ValueFilter, df.sc); err != nil {
			return nil, err
		}
	}

	all, err := df.load(ctx)
	if err != nil {
		return nil, err
	}

	selected := make([]scan.Row, 0, len(all))
	for _, row := range all {
		if !df.matches(row, opts.Coords) {
			continue
		}
		if pred != nil && !pred.Match(row) {
			continue
		}
		selected = append(selected, row)
	}

	switch opts.ResultOrder {
	case soma.ResultOrderRowMajor:
		selected = sortedCopy(selected, df.idxPos, false)
	case soma.ResultOrderColumnMajor:
		selected = sortedCopy(selected, df.idxPos, true)
	}

	if opts.Partition != nil {
		lo, hi, err := scan.Partition(int64(len(selected)), *opts.Partition)
		if err != nil {
			return nil, err
		}
		selected = selected[lo:hi]
	}

	df.Manager().Metrics().BatchRead(string(soma.TypeDataFrame), int64(len(selected)))

	defaultRows := opts.PlatformConfig.Int64Option("batch_rows", df.Manager().Context().Config().BatchRows)
	iter, err := scan.NewRecordIter(int64(len(selected)), opts.BatchSize, defaultRows, scan.RowWidth(outSc),
		func(lo, hi int64) (arrow.Record, error) {
			return scan.RecordFromRows(outSc, selected[lo:hi], project)
		})
	if err != nil {
		return nil, err
	}
	if opts.PlatformConfig.BoolOption("eager") {
		return scan.NewEagerIter(ctx, outSc, iter), nil
	}
	return iter, nil
}

// matches applies the coordinate selectors to a row's index columns.
// Selectors beyond the provided list default to the whole dimension.
func (df *DataFrame) matches(row scan.Row, coords []soma.Coord) bool {
	for i, c := range coords {
		if c.IsAll() {
			continue
		}
		if !c.Matches(row[df.idxPos[i]]) {
			return false
		}
	}
	return true
}

// tupleKey encodes a row's index tuple as a self-delimiting byte string:
// a type tag per component, integers as fixed-width big-endian words and
// strings length-prefixed. Distinct tuples never share a key, whatever
// bytes the string components contain.
func tupleKey(row scan.Row, idxPos []int) string {
	var b strings.Builder
	var word [8]byte
	for _, p := range idxPos {
		switch v := row[p].(type) {
		case int64:
			b.WriteByte('i')
			binary.BigEndian.PutUint64(word[:], uint64(v))
			b.Write(word[:])
		case string:
			b.WriteByte('s')
			binary.BigEndian.PutUint64(word[:], uint64(len(v)))
			b.Write(word[:])
			b.WriteString(v)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}

// compareValues orders two index values of the same column. Index
// columns are int64 or string only.
func compareValues(a, b interface{}) int {
	switch x := a.(type) {
	case int64:
		y, _ := b.(int64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		y, _ := b.(string)
		return strings.Compare(x, y)
	default:
		return 0
	}
}

func compareTuples(a, b scan.Row, idxPos []int, colMajor bool) int {
	n := len(idxPos)
	for i := 0; i < n; i++ {
		p := idxPos[i]
		if colMajor {
			p = idxPos[n-1-i]
		}
		if c := compareValues(a[p], b[p]); c != 0 {
			return c
		}
	}
	return 0
}

func sortRows(rows []scan.Row, idxPos []int, colMajor bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compareTuples(rows[i], rows[j], idxPos, colMajor) < 0
	})
}

func sortedCopy(rows []scan.Row, idxPos []int, colMajor bool) []scan.Row {
	out := make([]scan.Row, len(rows))
	copy(out, rows)
	sortRows(out, idxPos, colMajor)
	return out
}
