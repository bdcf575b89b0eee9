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

package collection_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/weaviate/somadb/adapters/backends"
	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/collection"
	"github.com/weaviate/somadb/usecases/dataframe"
	"github.com/weaviate/somadb/usecases/lifecycle"
	"github.com/weaviate/somadb/usecases/ndarray"
	"github.com/weaviate/somadb/usecases/scan"
)

var uriSeq int64

func newManager(t *testing.T) *lifecycle.Manager {
	t.Helper()
	sctx, err := lifecycle.NewContext(nil)
	require.Nil(t, err)
	return lifecycle.NewManager(sctx)
}

func testURI() string {
	return fmt.Sprintf("mem://store/c%d", atomic.AddInt64(&uriSeq, 1))
}

func labelSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "label", Type: arrow.BinaryTypes.String},
	}, nil)
}

// writeLabels appends one row per label, joinids assigned in order.
func writeLabels(t *testing.T, df *dataframe.DataFrame, labels ...string) {
	t.Helper()
	rows := make([]scan.Row, len(labels))
	for i, l := range labels {
		rows[i] = scan.Row{int64(i), l}
	}
	rec, err := scan.RecordFromRows(df.Schema(), rows, nil)
	require.Nil(t, err)
	defer rec.Release()
	require.Nil(t, df.Write(context.Background(), rec))
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	mgr := newManager(t)

	c, err := collection.Create(ctx, mgr, testURI())
	require.Nil(t, err)
	defer c.Close(ctx)

	df, err := dataframe.Create(ctx, mgr, testURI(), labelSchema(), nil)
	require.Nil(t, err)
	defer df.Close(ctx)

	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Has("frame"))

	require.Nil(t, c.Set("frame", df, soma.URITypeAbsolute))
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Has("frame"))
	assert.Equal(t, []string{"frame"}, c.Keys())

	got, err := c.Get(ctx, "frame")
	require.Nil(t, err)
	assert.Equal(t, df.URI(), got.URI())
	assert.Equal(t, soma.TypeDataFrame, got.SOMAType())

	// Get caches: a second lookup returns the same handle.
	again, err := c.Get(ctx, "frame")
	require.Nil(t, err)
	assert.True(t, got == again)

	require.Nil(t, c.Del("frame"))
	assert.False(t, c.Has("frame"))
	_, err = c.Get(ctx, "frame")
	require.NotNil(t, err)
	assert.True(t, soma.IsNotFound(err))
	err = c.Del("frame")
	require.NotNil(t, err)
	assert.True(t, soma.IsNotFound(err))
}

func TestSetRejectsEmptyKey(t *testing.T) {
	ctx := context.Background()
	mgr := newManager(t)

	c, err := collection.Create(ctx, mgr, testURI())
	require.Nil(t, err)
	defer c.Close(ctx)

	df, err := dataframe.Create(ctx, mgr, testURI(), labelSchema(), nil)
	require.Nil(t, err)
	defer df.Close(ctx)

	err = c.Set("", df, soma.URITypeAuto)
	require.NotNil(t, err)
	assert.True(t, soma.IsValidationError(err))
}

func TestURITypes(t *testing.T) {
	ctx := context.Background()
	mgr := newManager(t)

	c, err := collection.Create(ctx, mgr, testURI())
	require.Nil(t, err)
	defer c.Close(ctx)

	inside, err := dataframe.Create(ctx, mgr, soma.JoinURI(c.URI(), "inside"), labelSchema(), nil)
	require.Nil(t, err)
	defer inside.Close(ctx)
	outside, err := dataframe.Create(ctx, mgr, testURI(), labelSchema(), nil)
	require.Nil(t, err)
	defer outside.Close(ctx)

	// Auto stores members under the collection as relative references.
	require.Nil(t, c.Set("in", inside, soma.URITypeAuto))
	require.Nil(t, c.Set("out", outside, soma.URITypeAuto))

	entries := map[string]soma.CollectionEntry{}
	for _, e := range c.Manifest().Entries {
		entries[e.Key] = e
	}
	assert.True(t, entries["in"].Relative)
	assert.Equal(t, "inside", entries["in"].URI)
	assert.False(t, entries["out"].Relative)
	assert.Equal(t, outside.URI(), entries["out"].URI)

	// An outside member cannot be forced relative.
	err = c.Set("out2", outside, soma.URITypeRelative)
	require.NotNil(t, err)
	assert.True(t, soma.IsValidationError(err))

	// Entries() reports resolved URIs either way.
	for _, e := range c.Entries() {
		switch e.Key {
		case "in":
			assert.Equal(t, inside.URI(), e.URI)
		case "out":
			assert.Equal(t, outside.URI(), e.URI)
		}
	}
}

func TestAddNewDefaultsAndCascade(t *testing.T) {
	ctx := context.Background()
	mgr := newManager(t)

	c, err := collection.Create(ctx, mgr, testURI())
	require.Nil(t, err)

	sub, err := c.AddNewCollection(ctx, "sub")
	require.Nil(t, err)
	df, err := c.AddNewDataFrame(ctx, "frame", labelSchema(), nil)
	require.Nil(t, err)
	dense, err := c.AddNewDenseNDArray(ctx, "dense", arrow.PrimitiveTypes.Float64, []int64{2, 2})
	require.Nil(t, err)
	sparse, err := c.AddNewSparseNDArray(ctx, "sparse!", arrow.PrimitiveTypes.Float64, []int64{4})
	require.Nil(t, err)

	assert.Equal(t, soma.JoinURI(c.URI(), "sub"), sub.URI())
	assert.Equal(t, soma.JoinURI(c.URI(), "frame"), df.URI())
	// Keys are sanitized into path-safe segments.
	assert.Equal(t, soma.JoinURI(c.URI(), "sparse_"), sparse.URI())
	assert.Equal(t, []string{"dense", "frame", "sparse!", "sub"}, c.Keys())

	// Closing the collection closes every owned member.
	require.Nil(t, c.Close(ctx))
	assert.True(t, sub.Closed())
	assert.True(t, df.Closed())
	assert.True(t, dense.Closed())
	assert.True(t, sparse.Closed())
}

func TestReadHandleRejectsMutation(t *testing.T) {
	ctx := context.Background()
	mgr := newManager(t)
	uri := testURI()

	c, err := collection.Create(ctx, mgr, uri)
	require.Nil(t, err)
	df, err := c.AddNewDataFrame(ctx, "frame", labelSchema(), nil)
	require.Nil(t, err)
	require.Nil(t, c.Close(ctx))

	r, err := mgr.OpenTyped(ctx, uri, soma.TypeCollection, soma.ModeRead)
	require.Nil(t, err)
	rc := r.(*collection.Collection)
	defer rc.Close(ctx)

	err = rc.Set("other", df, soma.URITypeAuto)
	require.NotNil(t, err)
	assert.True(t, soma.IsModeError(err))
	err = rc.Del("frame")
	require.NotNil(t, err)
	assert.True(t, soma.IsModeError(err))
	_, err = rc.AddNewCollection(ctx, "sub")
	require.NotNil(t, err)
	assert.True(t, soma.IsModeError(err))

	// Members open in the collection's mode.
	child, err := rc.Get(ctx, "frame")
	require.Nil(t, err)
	assert.Equal(t, soma.ModeRead, child.Mode())
}

func TestExperimentSlots(t *testing.T) {
	ctx := context.Background()
	mgr := newManager(t)

	e, err := collection.CreateExperiment(ctx, mgr, testURI())
	require.Nil(t, err)
	defer e.Close(ctx)

	sparse, err := ndarray.CreateSparse(ctx, mgr, testURI(), arrow.PrimitiveTypes.Float64, []int64{4})
	require.Nil(t, err)
	defer sparse.Close(ctx)

	// obs takes a dataframe, ms takes a collection.
	err = e.Set("obs", sparse, soma.URITypeAbsolute)
	require.NotNil(t, err)
	assert.True(t, soma.IsValidationError(err))
	err = e.Set("ms", sparse, soma.URITypeAbsolute)
	require.NotNil(t, err)
	assert.True(t, soma.IsValidationError(err))

	// Unconstrained keys hold anything.
	require.Nil(t, e.Set("extra", sparse, soma.URITypeAbsolute))

	obs, err := e.AddNewDataFrame(ctx, "obs", labelSchema(), nil)
	require.Nil(t, err)
	ms, err := e.AddNewCollection(ctx, "ms")
	require.Nil(t, err)

	gotObs, err := e.Obs(ctx)
	require.Nil(t, err)
	assert.Equal(t, obs.URI(), gotObs.URI())
	gotMS, err := e.MS(ctx)
	require.Nil(t, err)
	assert.Equal(t, ms.URI(), gotMS.URI())
}

func TestMeasurementSlots(t *testing.T) {
	ctx := context.Background()
	mgr := newManager(t)

	m, err := collection.CreateMeasurement(ctx, mgr, testURI())
	require.Nil(t, err)
	defer m.Close(ctx)

	dense, err := ndarray.CreateDense(ctx, mgr, testURI(), arrow.PrimitiveTypes.Float64, []int64{2})
	require.Nil(t, err)
	defer dense.Close(ctx)

	err = m.Set("var", dense, soma.URITypeAbsolute)
	require.NotNil(t, err)
	assert.True(t, soma.IsValidationError(err))
	err = m.Set("X", dense, soma.URITypeAbsolute)
	require.NotNil(t, err)
	assert.True(t, soma.IsValidationError(err))

	v, err := m.AddNewDataFrame(ctx, "var", labelSchema(), nil)
	require.Nil(t, err)
	x, err := m.AddNewCollection(ctx, "X")
	require.Nil(t, err)
	_, err = m.AddNewCollection(ctx, "obsm")
	require.Nil(t, err)

	gotVar, err := m.Var(ctx)
	require.Nil(t, err)
	assert.Equal(t, v.URI(), gotVar.URI())
	gotX, err := m.X(ctx)
	require.Nil(t, err)
	assert.Equal(t, x.URI(), gotX.URI())
	_, err = m.Obsm(ctx)
	require.Nil(t, err)
}

// A collection tree with relative entries survives being moved wholesale
// to a new location.
func TestRelocatedTreeResolvesRelativeEntries(t *testing.T) {
	ctx := context.Background()
	mgr := newManager(t)

	dir := t.TempDir()
	oldRoot := filepath.Join(dir, "study")
	newRoot := filepath.Join(dir, "study-v2")
	require.Nil(t, os.MkdirAll(oldRoot, 0o755))

	c, err := collection.Create(ctx, mgr, "file://"+oldRoot)
	require.Nil(t, err)
	df, err := c.AddNewDataFrame(ctx, "frame", labelSchema(), nil)
	require.Nil(t, err)
	writeLabels(t, df, "a", "b", "c")
	require.Nil(t, c.Close(ctx))

	require.Nil(t, os.Rename(oldRoot, newRoot))

	r, err := mgr.OpenTyped(ctx, "file://"+newRoot, soma.TypeCollection, soma.ModeRead)
	require.Nil(t, err)
	rc := r.(*collection.Collection)
	defer rc.Close(ctx)

	child, err := rc.Get(ctx, "frame")
	require.Nil(t, err)
	rdf := child.(*dataframe.DataFrame)
	assert.Equal(t, "file://"+filepath.Join(newRoot, "frame"), rdf.URI())

	n, err := rdf.Count(ctx)
	require.Nil(t, err)
	assert.Equal(t, int64(3), n)
}

func TestAddNewEnforcesSlotConstraints(t *testing.T) {
	ctx := context.Background()
	mgr := newManager(t)

	e, err := collection.CreateExperiment(ctx, mgr, testURI())
	require.Nil(t, err)
	defer e.Close(ctx)

	// A constrained key rejects mismatched AddNew constructors just
	// like Set, and the default child location stays unclaimed.
	_, err = e.AddNewSparseNDArray(ctx, "obs", arrow.PrimitiveTypes.Float64, []int64{4})
	require.NotNil(t, err)
	assert.True(t, soma.IsValidationError(err))
	ok, err := mgr.Exists(ctx, soma.JoinURI(e.URI(), "obs"))
	require.Nil(t, err)
	assert.False(t, ok)

	_, err = e.AddNewDenseNDArray(ctx, "ms", arrow.PrimitiveTypes.Float64, []int64{2})
	require.NotNil(t, err)
	assert.True(t, soma.IsValidationError(err))

	m, err := collection.CreateMeasurement(ctx, mgr, testURI())
	require.Nil(t, err)
	defer m.Close(ctx)

	_, err = m.AddNewCollection(ctx, "var")
	require.NotNil(t, err)
	assert.True(t, soma.IsValidationError(err))
	_, err = m.AddNewDataFrame(ctx, "X", labelSchema(), nil)
	require.NotNil(t, err)
	assert.True(t, soma.IsValidationError(err))

	// The matching constructors pass.
	_, err = e.AddNewDataFrame(ctx, "obs", labelSchema(), nil)
	require.Nil(t, err)
	_, err = m.AddNewDataFrame(ctx, "var", labelSchema(), nil)
	require.Nil(t, err)
}
