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

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/tensor"

	"github.com/weaviate/somadb/entities/schema"
	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/lifecycle"
	"github.com/weaviate/somadb/usecases/scan"
)

func init() {
	lifecycle.RegisterKind(soma.TypeDenseNDArray, func(ctx context.Context, base *lifecycle.Object) (soma.Object, error) {
		nd, err := newBase(base)
		if err != nil {
			return nil, err
		}
		return &DenseNDArray{ndarray: nd}, nil
	})
}

// DenseNDArray is a fixed-shape array of one numeric element type where
// every cell is addressable. Cells never explicitly written read as the
// element type's zero.
type DenseNDArray struct {
	*ndarray
}

// CreateDense claims uri as a dense array of the given element type and
// shape. Both are immutable afterwards.
func CreateDense(ctx context.Context, mgr *lifecycle.Manager, uri string, elem arrow.DataType, shape []int64) (*DenseNDArray, error) {
	man, err := createManifest(soma.TypeDenseNDArray, elem, shape)
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
	return &DenseNDArray{ndarray: nd}, nil
}

// Read materializes the selected region as a row-major tensor shaped to
// the selection's bounding box. Selectors are points and inclusive
// slices; value lists with more than one point are not expressible on a
// dense region.
func (a *DenseNDArray) Read(ctx context.Context, opts ReadOptions) (tensor.Interface, error) {
	if err := a.RequireRead("read"); err != nil {
		return nil, err
	}
	if opts.ValueFilter != "" {
		return nil, soma.Validationf("value filters do not apply to dense reads")
	}
	if opts.Partition != nil {
		return nil, soma.Validationf("partitioned reads do not apply to dense reads")
	}
	switch opts.ResultOrder {
	case "", soma.ResultOrderAuto, soma.ResultOrderRowMajor:
	default:
		return nil, soma.Validationf("dense reads are delivered row-major only")
	}
	if err := a.validateSelectors(opts.Coords); err != nil {
		return nil, err
	}

	ndim := len(a.shape)
	lo := make([]int64, ndim)
	extent := make([]int64, ndim)
	for d := 0; d < ndim; d++ {
		l, h := int64(0), a.shape[d]-1
		if d < len(opts.Coords) {
			c := opts.Coords[d]
			if c.IsList() && len(c.IntList()) > 1 {
				return nil, soma.Coordf("dense reads take points and slices, not value lists")
			}
			var ok bool
			if l, h, ok = c.IntBounds(a.shape[d]); !ok {
				if c.IsList() && !c.IsEmptyList() {
					return nil, soma.Coordf("point out of bounds for dimension %d of length %d", d, a.shape[d])
				}
				l, h = 0, -1
			}
		}
		lo[d] = l
		extent[d] = h - l + 1
	}

	if err := a.load(ctx); err != nil {
		return nil, err
	}

	total := int64(1)
	for _, e := range extent {
		total *= e
	}
	a.Manager().Metrics().BatchRead(string(soma.TypeDenseNDArray), total)

	values := make([]scan.Row, total)
	idx := make([]int64, ndim)
	abs := make([]int64, ndim)
	a.mu.Lock()
	for i := int64(0); i < total; i++ {
		for d := 0; d < ndim; d++ {
			abs[d] = lo[d] + idx[d]
		}
		v, ok := a.cells[packKey(abs)]
		if !ok {
			v = schema.ZeroValue(a.elem)
		}
		values[i] = scan.Row{v}
		// Row-major odometer increment.
		for d := ndim - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < extent[d] {
				break
			}
			idx[d] = 0
		}
	}
	a.mu.Unlock()

	flatSc := arrow.NewSchema([]arrow.Field{{Name: soma.DataColumn, Type: a.elem}}, nil)
	rec, err := scan.RecordFromRows(flatSc, values, nil)
	if err != nil {
		return nil, err
	}
	defer rec.Release()
	return tensor.New(rec.Column(0).Data(), extent, nil, nil), nil
}

// Write stores t at origin, overwriting any cells previously written in
// that region. The region must lie fully inside the array domain.
func (a *DenseNDArray) Write(ctx context.Context, origin []int64, t tensor.Interface) error {
	if err := a.RequireWrite("write"); err != nil {
		return err
	}
	if !arrow.TypeEqual(t.DataType(), a.elem) {
		return soma.Schemaf("tensor element type %s does not match array element type %s", t.DataType(), a.elem)
	}
	ndim := len(a.shape)
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
	a.Manager().Metrics().RowsWritten(string(soma.TypeDenseNDArray), total)
	return nil
}

// tensorValue extracts one cell of a numeric tensor as its Go value.
func tensorValue(t tensor.Interface, idx []int64) (interface{}, error) {
	switch x := t.(type) {
	case *tensor.Int8:
		return x.Value(idx), nil
	case *tensor.Int16:
		return x.Value(idx), nil
	case *tensor.Int32:
		return x.Value(idx), nil
	case *tensor.Int64:
		return x.Value(idx), nil
	case *tensor.Uint8:
		return x.Value(idx), nil
	case *tensor.Uint16:
		return x.Value(idx), nil
	case *tensor.Uint32:
		return x.Value(idx), nil
	case *tensor.Uint64:
		return x.Value(idx), nil
	case *tensor.Float32:
		return x.Value(idx), nil
	case *tensor.Float64:
		return x.Value(idx), nil
	default:
		return nil, soma.Schemaf("unsupported tensor type %s", t.DataType())
	}
}
