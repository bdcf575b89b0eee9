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

package somadb_test

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	somadb "github.com/weaviate/somadb"
	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/collection"
	"github.com/weaviate/somadb/usecases/dataframe"
	"github.com/weaviate/somadb/usecases/ndarray"
	"github.com/weaviate/somadb/usecases/scan"
)

// TestExperimentRoundTrip builds a small annotated experiment, publishes
// it, and reads it back through a fresh set of handles: obs and var
// dataframes plus one sparse X layer, wired together the way a
// single-cell study lays them out.
func TestExperimentRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := somadb.New(nil)
	require.Nil(t, err)

	uri := "mem://studies/pbmc"

	// --- build phase ---

	exp, err := db.CreateExperiment(ctx, uri)
	require.Nil(t, err)
	require.Nil(t, exp.SetMetadata("title", "pbmc mini"))

	obs, err := exp.AddNewDataFrame(ctx, "obs", arrow.NewSchema([]arrow.Field{
		{Name: "cell_id", Type: arrow.BinaryTypes.String},
		{Name: "tissue", Type: arrow.BinaryTypes.String},
	}, nil), nil)
	require.Nil(t, err)
	writeRows(t, obs, []scan.Row{
		{int64(0), "AAAC", "lung"},
		{int64(1), "AAAG", "liver"},
		{int64(2), "AAAT", "lung"},
	})

	ms, err := exp.AddNewCollection(ctx, "ms")
	require.Nil(t, err)

	rna, err := db.CreateMeasurement(ctx, soma.JoinURI(ms.URI(), "rna"))
	require.Nil(t, err)
	require.Nil(t, ms.Set("rna", rna, soma.URITypeAuto))

	vr, err := rna.AddNewDataFrame(ctx, "var", arrow.NewSchema([]arrow.Field{
		{Name: "gene", Type: arrow.BinaryTypes.String},
	}, nil), nil)
	require.Nil(t, err)
	writeRows(t, vr, []scan.Row{
		{int64(0), "CD4"},
		{int64(1), "CD8A"},
	})

	x, err := rna.AddNewCollection(ctx, "X")
	require.Nil(t, err)
	layer, err := x.AddNewSparseNDArray(ctx, "data", arrow.PrimitiveTypes.Float64, []int64{3, 2})
	require.Nil(t, err)
	writeCOO(t, layer,
		[][]int64{{0, 0}, {0, 1}, {2, 0}},
		[]float64{1, 7, 3})

	// rna was created outside the experiment's handle tree, so it closes
	// on its own; the experiment cascade covers the rest.
	require.Nil(t, rna.Close(ctx))
	require.Nil(t, exp.Close(ctx))
	assert.True(t, obs.Closed())
	assert.True(t, ms.Closed())

	// --- read phase ---

	ok, err := db.TypedExists(ctx, uri, soma.TypeExperiment)
	require.Nil(t, err)
	require.True(t, ok)

	r, err := db.OpenExperiment(ctx, uri, soma.ModeRead)
	require.Nil(t, err)
	defer r.Close(ctx)

	title, ok := r.GetMetadata("title")
	require.True(t, ok)
	assert.Equal(t, "pbmc mini", title)

	// Which cells are lung tissue?
	robs, err := r.Obs(ctx)
	require.Nil(t, err)
	it, err := robs.Read(ctx, dataframe.ReadOptions{
		ValueFilter: `tissue == "lung"`,
		ColumnNames: []string{soma.JoinIDColumn, "cell_id"},
	})
	require.Nil(t, err)
	rec, err := it.Concat()
	require.Nil(t, err)
	joinids := rec.Column(0).(*array.Int64)
	require.Equal(t, int64(2), rec.NumRows())
	assert.Equal(t, int64(0), joinids.Value(0))
	assert.Equal(t, int64(2), joinids.Value(1))
	rec.Release()

	// Pull their expression for the first gene out of the X layer.
	rms, err := r.MS(ctx)
	require.Nil(t, err)
	child, err := rms.Get(ctx, "rna")
	require.Nil(t, err)
	rrna, ok := child.(*collection.Measurement)
	require.True(t, ok)

	rx, err := rrna.X(ctx)
	require.Nil(t, err)
	lobj, err := rx.Get(ctx, "data")
	require.Nil(t, err)
	rlayer := lobj.(*ndarray.SparseNDArray)

	rd, err := rlayer.Read(ctx, ndarray.ReadOptions{
		Coords: []soma.Coord{soma.ListOf(0, 2), soma.At(0)},
	})
	require.Nil(t, err)
	tables, err := rd.Tables()
	require.Nil(t, err)
	xrec, err := tables.Concat()
	require.Nil(t, err)
	defer xrec.Release()

	require.Equal(t, int64(2), xrec.NumRows())
	vals := xrec.Column(2).(*array.Float64)
	assert.Equal(t, 1.0, vals.Value(0))
	assert.Equal(t, 3.0, vals.Value(1))

	// var is reachable through the same measurement handle.
	rvar, err := rrna.Var(ctx)
	require.Nil(t, err)
	n, err := rvar.Count(ctx)
	require.Nil(t, err)
	assert.Equal(t, int64(2), n)
}

func writeRows(t *testing.T, df *dataframe.DataFrame, rows []scan.Row) {
	t.Helper()
	rec, err := scan.RecordFromRows(df.Schema(), rows, nil)
	require.Nil(t, err)
	defer rec.Release()
	require.Nil(t, df.Write(context.Background(), rec))
}

func writeCOO(t *testing.T, a *ndarray.SparseNDArray, coords [][]int64, values []float64) {
	t.Helper()
	sc := arrow.NewSchema([]arrow.Field{
		{Name: soma.DataColumn, Type: arrow.PrimitiveTypes.Float64},
	}, nil)
	rows := make([]scan.Row, len(values))
	for i, v := range values {
		rows[i] = scan.Row{v}
	}
	rec, err := scan.RecordFromRows(sc, rows, nil)
	require.Nil(t, err)
	defer rec.Release()
	require.Nil(t, a.WriteCoords(context.Background(), coords, rec.Column(0)))
}

func TestOpenDispatchesByStoredType(t *testing.T) {
	ctx := context.Background()
	db, err := somadb.New(nil)
	require.Nil(t, err)

	uri := "mem://studies/frame"
	df, err := db.CreateDataFrame(ctx, uri, arrow.NewSchema([]arrow.Field{
		{Name: "label", Type: arrow.BinaryTypes.String},
	}, nil), nil)
	require.Nil(t, err)
	require.Nil(t, df.Close(ctx))

	o, err := db.Open(ctx, uri, soma.ModeRead)
	require.Nil(t, err)
	defer o.Close(ctx)
	_, ok := o.(*dataframe.DataFrame)
	assert.True(t, ok)

	_, err = db.OpenSparseNDArray(ctx, uri, soma.ModeRead)
	require.NotNil(t, err)
	assert.True(t, soma.IsTypeMismatch(err))
}
