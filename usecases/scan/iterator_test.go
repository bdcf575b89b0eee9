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
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/somadb/entities/soma"
)

func testSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "soma_joinid", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
}

// rangeBuild materializes [lo, hi) as consecutive joinids.
func rangeBuild(sc *arrow.Schema) BuildFunc {
	return func(lo, hi int64) (arrow.Record, error) {
		rows := make([]Row, hi-lo)
		for i := range rows {
			rows[i] = Row{lo + int64(i)}
		}
		return RecordFromRows(sc, rows, nil)
	}
}

func TestRecordIterBatching(t *testing.T) {
	sc := testSchema()

	t.Run("slices by count", func(t *testing.T) {
		it, err := NewRecordIter(10, soma.BatchSize{Count: 4}, 100, 8, rangeBuild(sc))
		require.Nil(t, err)
		defer it.Release()

		var sizes []int64
		var seen []int64
		for it.Next() {
			rec := it.Record()
			sizes = append(sizes, rec.NumRows())
			col := rec.Column(0).(*array.Int64)
			for i := 0; i < col.Len(); i++ {
				seen = append(seen, col.Value(i))
			}
		}
		require.Nil(t, it.Err())
		assert.Equal(t, []int64{4, 4, 2}, sizes)
		assert.Equal(t, []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, seen)
	})

	t.Run("byte cap translates to rows", func(t *testing.T) {
		it, err := NewRecordIter(10, soma.BatchSize{Bytes: 40}, 100, 8, rangeBuild(sc))
		require.Nil(t, err)
		defer it.Release()

		require.True(t, it.Next())
		assert.Equal(t, int64(5), it.Record().NumRows())
	})

	t.Run("auto uses the default", func(t *testing.T) {
		it, err := NewRecordIter(10, soma.BatchSize{}, 3, 8, rangeBuild(sc))
		require.Nil(t, err)
		defer it.Release()

		require.True(t, it.Next())
		assert.Equal(t, int64(3), it.Record().NumRows())
	})

	t.Run("rejects count and bytes together", func(t *testing.T) {
		_, err := NewRecordIter(10, soma.BatchSize{Count: 1, Bytes: 1}, 3, 8, rangeBuild(sc))
		assert.NotNil(t, err)
	})
}

func TestRecordIterEmptyResult(t *testing.T) {
	sc := testSchema()
	it, err := NewRecordIter(0, soma.BatchSize{}, 100, 8, rangeBuild(sc))
	require.Nil(t, err)
	defer it.Release()

	// An empty result still yields exactly one zero-row batch carrying
	// the schema.
	require.True(t, it.Next())
	rec := it.Record()
	assert.Equal(t, int64(0), rec.NumRows())
	assert.True(t, sc.Equal(rec.Schema()))
	assert.False(t, it.Next())
	assert.Nil(t, it.Err())
}

func TestRecordIterRelease(t *testing.T) {
	sc := testSchema()
	it, err := NewRecordIter(10, soma.BatchSize{Count: 4}, 100, 8, rangeBuild(sc))
	require.Nil(t, err)

	require.True(t, it.Next())
	it.Release()
	it.Release() // idempotent
	assert.False(t, it.Next())
}

func TestRecordIterConcat(t *testing.T) {
	sc := testSchema()

	t.Run("concat from the start", func(t *testing.T) {
		it, err := NewRecordIter(10, soma.BatchSize{Count: 4}, 100, 8, rangeBuild(sc))
		require.Nil(t, err)
		rec, err := it.Concat()
		require.Nil(t, err)
		defer rec.Release()
		assert.Equal(t, int64(10), rec.NumRows())
	})

	t.Run("concat after partial consumption", func(t *testing.T) {
		it, err := NewRecordIter(10, soma.BatchSize{Count: 4}, 100, 8, rangeBuild(sc))
		require.Nil(t, err)
		require.True(t, it.Next())
		rec, err := it.Concat()
		require.Nil(t, err)
		defer rec.Release()
		assert.Equal(t, int64(6), rec.NumRows())
		first := rec.Column(0).(*array.Int64).Value(0)
		assert.Equal(t, int64(4), first)
	})
}

func TestEagerIter(t *testing.T) {
	sc := testSchema()

	t.Run("delivers the same batches", func(t *testing.T) {
		inner, err := NewRecordIter(10, soma.BatchSize{Count: 3}, 100, 8, rangeBuild(sc))
		require.Nil(t, err)
		it := NewEagerIter(context.Background(), sc, inner)
		defer it.Release()

		var seen []int64
		for it.Next() {
			col := it.Record().Column(0).(*array.Int64)
			for i := 0; i < col.Len(); i++ {
				seen = append(seen, col.Value(i))
			}
		}
		require.Nil(t, it.Err())
		assert.Len(t, seen, 10)
		assert.Equal(t, int64(0), seen[0])
		assert.Equal(t, int64(9), seen[9])
	})

	t.Run("release mid-stream stops the producer", func(t *testing.T) {
		inner, err := NewRecordIter(100, soma.BatchSize{Count: 1}, 100, 8, rangeBuild(sc))
		require.Nil(t, err)
		it := NewEagerIter(context.Background(), sc, inner)
		require.True(t, it.Next())
		it.Release()
		assert.False(t, it.Next())
	})

	t.Run("concat drains the remainder", func(t *testing.T) {
		inner, err := NewRecordIter(10, soma.BatchSize{Count: 4}, 100, 8, rangeBuild(sc))
		require.Nil(t, err)
		it := NewEagerIter(context.Background(), sc, inner)
		rec, err := it.Concat()
		require.Nil(t, err)
		defer rec.Release()
		assert.Equal(t, int64(10), rec.NumRows())
	})
}

func TestConcatRecords(t *testing.T) {
	sc := testSchema()
	build := rangeBuild(sc)

	a, err := build(0, 3)
	require.Nil(t, err)
	defer a.Release()
	b, err := build(3, 5)
	require.Nil(t, err)
	defer b.Release()

	out, err := ConcatRecords(sc, []arrow.Record{a, b})
	require.Nil(t, err)
	defer out.Release()
	assert.Equal(t, int64(5), out.NumRows())
	col := out.Column(0).(*array.Int64)
	assert.Equal(t, int64(4), col.Value(4))
}
