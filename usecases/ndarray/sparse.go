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

package ndarray

import (
	"context"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/tensor"

	"github.com/weaviate/somadb/entities/filters"
	"github.com/weaviate/somadb/entities/schema"
	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/lifecycle"
	"github.com/weaviate/somadb/usecases/scan"
)

func init() {
	lifecycle.RegisterKind(soma.TypeSparseNDArray, func(ctx context.Context, base *lifecycle.Object) (soma.Object, error) {
		nd, err := newBase(base)
		if err != nil {
			return nil, err
		}
		return &SparseNDArray{ndarray: nd}, nil
	})
}

// ReadOptions narrows and shapes one array read.
type ReadOptions struct {
	// Coords selects along the dimensions, in order. Missing trailing
	// selectors default to the whole dimension.
	Coords []soma.Coord
	// ValueFilter is evaluated against the soma_data column. Sparse
	// reads only.
	ValueFilter string
	BatchSize   soma.BatchSize
	// Partition restricts the read to one of N stable slices. Sparse
	// reads only.
	Partition      *soma.IOfN
	ResultOrder    soma.ResultOrder
	PlatformConfig soma.PlatformConfig
}

// SparseNDArray is a fixed-shape array storing only explicitly written
// cells. Reads expose the stored cells as a coordinate table, as
// coordinate batches, or densified.
type SparseNDArray struct {
	*ndarray
}

// CreateSparse claims uri as a sparse array of the given element type
// and shape.
func CreateSparse(ctx context.Context, mgr *lifecycle.Manager, uri string, elem arrow.DataType, shape []int64) (*SparseNDArray, error) {
	man, err := createManifest(soma.TypeSparseNDArray, elem, shape)
	if err != nil {
		return nil, err
	}
	base, err := mgr.CreateObject(ctx, uri, man)
	if err != nil {
		return nil, err
	}
	nd, err := newBase(base)
	if err != nil {
		return nil, err
	}
	nd.loaded = true
	return &SparseNDArray{ndarray: nd}, nil
}

// NNZ returns the number of explicitly stored cells.
func (a *SparseNDArray) NNZ(ctx context.Context) (int64, error) {
	if err := a.RequireOpen("nnz"); err != nil {
		return 0, err
	}
	if err := a.load(ctx); err != nil {
		return 0, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return int64(len(a.cells)), nil
}

type cooCell struct {
	coords []int64
	value  interface{}
}

// SparseRead is the result handle of one sparse read: a fixed selection
// of stored cells exposed in the caller's encoding of choice.
type SparseRead struct {
	arr      *SparseNDArray
	cells    []cooCell
	boxLo    []int64
	boxLen   []int64
	filtered bool
	batch    soma.BatchSize
	pc       soma.PlatformConfig
	ctx      context.Context
}

// Read selects stored cells. The returned handle materializes nothing
// until one of its accessors is consumed.
func (a *SparseNDArray) Read(ctx context.Context, opts ReadOptions) (*SparseRead, error) {
	if err := a.RequireRead("read"); err != nil {
		return nil, err
	}
	if err := opts.ResultOrder.Validate(); err != nil {
		return nil, err
	}
	if err := a.validateSelectors(opts.Coords); err != nil {
		return nil, err
	}

	var pred *filters.Predicate
	if opts.ValueFilter != "" {
		var err error
		if pred, err = filters.ParseAndCompile(opts.ValueFilter, a.tableSchema()); err != nil {
			return nil, err
		}
	}

	if err := a.load(ctx); err != nil {
		return nil, err
	}

	ndim := len(a.shape)
	a.mu.Lock()
	keys := make([]string, 0, len(a.cells))
	for k := range a.cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	selected := make([]cooCell, 0, len(keys))
	row := make(scan.Row, ndim+1)
	for _, k := range keys {
		coords := unpackKey(k, ndim)
		if !matchesCell(coords, opts.Coords) {
			continue
		}
		value := a.cells[k]
		if pred != nil {
			for d, c := range coords {
				row[d] = c
			}
			row[ndim] = value
			if !pred.Match(row) {
				continue
			}
		}
		selected = append(selected, cooCell{coords: coords, value: value})
	}
	a.mu.Unlock()

	if opts.ResultOrder == soma.ResultOrderColumnMajor {
		sort.SliceStable(selected, func(i, j int) bool {
			ci, cj := selected[i].coords, selected[j].coords
			for d := ndim - 1; d >= 0; d-- {
				if ci[d] != cj[d] {
					return ci[d] < cj[d]
				}
			}
			return false
		})
	}

	if opts.Partition != nil {
		lo, hi, err := scan.Partition(int64(len(selected)), *opts.Partition)
		if err != nil {
			return nil, err
		}
		selected = selected[lo:hi]
	}

	// Bounding box of the selection within the domain, used by
	// densified delivery.
	boxLo := make([]int64, ndim)
	boxLen := make([]int64, ndim)
	for d := 0; d < ndim; d++ {
		l, h := int64(0), a.shape[d]-1
		if d < len(opts.Coords) {
			var ok bool
			if l, h, ok = opts.Coords[d].IntBounds(a.shape[d]); !ok {
				l, h = 0, -1
			}
		}
		boxLo[d] = l
		boxLen[d] = h - l + 1
	}

	a.Manager().Metrics().BatchRead(string(soma.TypeSparseNDArray), int64(len(selected)))

	return &SparseRead{
		arr:      a,
		cells:    selected,
		boxLo:    boxLo,
		boxLen:   boxLen,
		filtered: pred != nil,
		batch:    opts.BatchSize,
		pc:       opts.PlatformConfig,
		ctx:      ctx,
	}, nil
}

func (r *SparseRead) defaultRows() int64 {
	return r.pc.Int64Option("batch_rows", r.arr.Manager().Context().Config().BatchRows)
}

// Tables delivers the selection as batches of the columnar surface:
// soma_dim_0..n-1 plus soma_data.
func (r *SparseRead) Tables() (soma.ReadIter, error) {
	sc := r.arr.tableSchema()
	ndim := r.arr.NDim()
	iter, err := scan.NewRecordIter(int64(len(r.cells)), r.batch, r.defaultRows(), scan.RowWidth(sc),
		func(lo, hi int64) (arrow.Record, error) {
			rows := make([]scan.Row, hi-lo)
			for i := range rows {
				cell := r.cells[lo+int64(i)]
				row := make(scan.Row, ndim+1)
				for d, c := range cell.coords {
					row[d] = c
				}
				row[ndim] = cell.value
				rows[i] = row
			}
			return scan.RecordFromRows(sc, rows, nil)
		})
	if err != nil {
		return nil, err
	}
	if r.pc.BoolOption("eager") {
		return scan.NewEagerIter(r.ctx, sc, iter), nil
	}
	return iter, nil
}

// Coos delivers the selection as coordinate-triplet batches.
func (r *SparseRead) Coos() (soma.COOIter, error) {
	if err := r.batch.Validate(); err != nil {
		return nil, err
	}
	step := r.defaultRows()
	switch {
	case r.batch.Count > 0:
		step = r.batch.Count
	case r.batch.Bytes > 0:
		step = r.batch.Bytes / scan.RowWidth(r.arr.tableSchema())
	}
	if step < 1 {
		step = 1
	}
	return &cooIter{read: r, step: step}, nil
}

// DenseTensor densifies the selection into a row-major tensor over its
// bounding box, unstored cells reading as zero. Value-filtered reads
// cannot densify: a filtered-out cell would be indistinguishable from an
// unstored one.
func (r *SparseRead) DenseTensor() (tensor.Interface, error) {
	if r.filtered {
		return nil, soma.Validationf("a value-filtered sparse read cannot be densified")
	}
	ndim := r.arr.NDim()
	total := int64(1)
	for _, e := range r.boxLen {
		total *= e
	}
	zero := schema.ZeroValue(r.arr.elem)
	values := make([]scan.Row, total)
	for i := range values {
		values[i] = scan.Row{zero}
	}
	for _, cell := range r.cells {
		pos := int64(0)
		for d := 0; d < ndim; d++ {
			pos = pos*r.boxLen[d] + (cell.coords[d] - r.boxLo[d])
		}
		values[pos] = scan.Row{cell.value}
	}
	flatSc := arrow.NewSchema([]arrow.Field{{Name: soma.DataColumn, Type: r.arr.elem}}, nil)
	rec, err := scan.RecordFromRows(flatSc, values, nil)
	if err != nil {
		return nil, err
	}
	defer rec.Release()
	return tensor.New(rec.Column(0).Data(), r.boxLen, nil, nil), nil
}

// cooIter slices a sparse selection into COOBatch chunks.
type cooIter struct {
	read     *SparseRead
	step     int64
	pos      int64
	started  bool
	cur      soma.COOBatch
	err      error
	released bool
}

func (it *cooIter) Next() bool {
	if it.released || it.err != nil {
		return false
	}
	it.releaseCur()
	total := int64(len(it.read.cells))
	if it.started && it.pos >= total {
		return false
	}
	it.started = true
	hi := it.pos + it.step
	if hi > total {
		hi = total
	}
	cells := it.read.cells[it.pos:hi]
	it.pos = hi

	coords := make([][]int64, len(cells))
	rows := make([]scan.Row, len(cells))
	for i, cell := range cells {
		coords[i] = cell.coords
		rows[i] = scan.Row{cell.value}
	}
	flatSc := arrow.NewSchema([]arrow.Field{{Name: soma.DataColumn, Type: it.read.arr.elem}}, nil)
	rec, err := scan.RecordFromRows(flatSc, rows, nil)
	if err != nil {
		it.err = err
		return false
	}
	values := rec.Column(0)
	values.Retain()
	rec.Release()
	it.cur = soma.COOBatch{Coords: coords, Values: values}
	return true
}

func (it *cooIter) Batch() soma.COOBatch {
	return it.cur
}

func (it *cooIter) Err() error {
	return it.err
}

func (it *cooIter) Release() {
	if it.released {
		return
	}
	it.released = true
	it.releaseCur()
}

func (it *cooIter) releaseCur() {
	if it.cur.Values != nil {
		it.cur.Values.Release()
		it.cur = soma.COOBatch{}
	}
}

// WriteTable upserts cells given as the columnar surface.
func (a *SparseNDArray) WriteTable(ctx context.Context, rec arrow.Record) error {
	if err := a.RequireWrite("write"); err != nil {
		return err
	}
	if !schema.Equal(rec.Schema(), a.tableSchema()) {
		return soma.Schemaf("write batch schema does not match the array's columnar surface")
	}
	rows, err := scan.RowsFromRecord(rec)
	if err != nil {
		return err
	}
	if err := a.load(ctx); err != nil {
		return err
	}

	ndim := a.NDim()
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, row := range rows {
		coords := make([]int64, ndim)
		for d := 0; d < ndim; d++ {
			c, ok := row[d].(int64)
			if !ok {
				return soma.Coordf("dimension column %s holds a null", soma.DimensionName(d))
			}
			coords[d] = c
		}
		if err := a.setCell(coords, row[ndim]); err != nil {
			return err
		}
	}
	a.Manager().Metrics().RowsWritten(string(soma.TypeSparseNDArray), rec.NumRows())
	return nil
}

// WriteCoords upserts cells given as parallel coordinate and value
// sequences.
func (a *SparseNDArray) WriteCoords(ctx context.Context, coords [][]int64, values arrow.Array) error {
	if err := a.RequireWrite("write"); err != nil {
		return err
	}
	if len(coords) != values.Len() {
		return soma.Coordf("%d coordinate tuples for %d values", len(coords), values.Len())
	}
	if !arrow.TypeEqual(values.DataType(), a.elem) {
		return soma.Schemaf("value type %s does not match array element type %s", values.DataType(), a.elem)
	}
	if err := a.load(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i, c := range coords {
		v, err := scan.ColumnValue(values, i)
		if err != nil {
			return err
		}
		if err := a.setCell(c, v); err != nil {
			return err
		}
	}
	a.Manager().Metrics().RowsWritten(string(soma.TypeSparseNDArray), int64(len(coords)))
	return nil
}

// WriteTensor stores t at origin cell by cell, zeros included.
func (a *SparseNDArray) WriteTensor(ctx context.Context, origin []int64, t tensor.Interface) error {
	if err := a.RequireWrite("write"); err != nil {
		return err
	}
	if !arrow.TypeEqual(t.DataType(), a.elem) {
		return soma.Schemaf("tensor element type %s does not match array element type %s", t.DataType(), a.elem)
	}
	ndim := a.NDim()
	if len(origin) != ndim || len(t.Shape()) != ndim {
		return soma.Coordf("write region must be %d-dimensional", ndim)
	}
	tshape := t.Shape()
	for d := 0; d < ndim; d++ {
		if origin[d] < 0 || origin[d]+tshape[d] > a.shape[d] {
			return soma.Coordf("write region exceeds dimension %d of length %d", d, a.shape[d])
		}
	}
	if err := a.load(ctx); err != nil {
		return err
	}

	total := int64(1)
	for _, e := range tshape {
		total *= e
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := make([]int64, ndim)
	abs := make([]int64, ndim)
	for i := int64(0); i < total; i++ {
		for d := 0; d < ndim; d++ {
			abs[d] = origin[d] + idx[d]
		}
		v, err := tensorValue(t, idx)
		if err != nil {
			return err
		}
		if err := a.setCell(abs, v); err != nil {
			return err
		}
		for d := ndim - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < tshape[d] {
				break
			}
			idx[d] = 0
		}
	}
	a.Manager().Metrics().RowsWritten(string(soma.TypeSparseNDArray), total)
	return nil
}
