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

// Package ndarray implements the dense and sparse N-dimensional arrays.
// Both share one storage model: a set of explicitly stored cells keyed
// by their integer coordinates, persisted as a coordinate table in Arrow
// IPC form. Dense arrays fill unstored cells with the element type's
// zero on read; sparse arrays expose only stored cells.
package ndarray

import (
	"context"
	"encoding/binary"
	"sort"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/weaviate/somadb/entities/schema"
	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/lifecycle"
	"github.com/weaviate/somadb/usecases/scan"
)

// ndarray is the shared core of both array flavors.
type ndarray struct {
	*lifecycle.Object

	elem  arrow.DataType
	shape []int64

	mu      sync.Mutex
	cells   map[string]interface{}
	loaded  bool
	written bool
}

func newBase(base *lifecycle.Object) (*ndarray, error) {
	man := base.Manifest()
	elem, err := schema.TypeFromName(man.ElemType)
	if err != nil {
		return nil, err
	}
	shape := make([]int64, len(man.Shape))
	copy(shape, man.Shape)
	nd := &ndarray{
		Object: base,
		elem:   elem,
		shape:  shape,
		cells:  map[string]interface{}{},
	}
	base.SetFlush(nd.flush)
	return nd, nil
}

func createManifest(tag soma.Type, elem arrow.DataType, shape []int64) (*lifecycle.Manifest, error) {
	if err := schema.ValidateNDArray(elem, shape); err != nil {
		return nil, err
	}
	name, err := schema.TypeName(elem)
	if err != nil {
		return nil, err
	}
	return &lifecycle.Manifest{SOMAType: tag, ElemType: name, Shape: shape}, nil
}

// Shape returns the fixed per-dimension lengths.
func (nd *ndarray) Shape() []int64 {
	out := make([]int64, len(nd.shape))
	copy(out, nd.shape)
	return out
}

func (nd *ndarray) NDim() int {
	return len(nd.shape)
}

func (nd *ndarray) ElemType() arrow.DataType {
	return nd.elem
}

// Size returns the total number of addressable cells.
func (nd *ndarray) Size() int64 {
	n := int64(1)
	for _, d := range nd.shape {
		n *= d
	}
	return n
}

// tableSchema is the columnar surface: soma_dim_0..n-1 plus soma_data.
func (nd *ndarray) tableSchema() *arrow.Schema {
	return schema.NDArraySchema(nd.elem, len(nd.shape))
}

// packKey encodes coordinates as fixed-width big-endian words, so that
// the natural string order of keys is exactly row-major cell order.
func packKey(coords []int64) string {
	buf := make([]byte, 8*len(coords))
	for i, c := range coords {
		binary.BigEndian.PutUint64(buf[i*8:], uint64(c))
	}
	return string(buf)
}

func unpackKey(key string, ndim int) []int64 {
	coords := make([]int64, ndim)
	for i := range coords {
		coords[i] = int64(binary.BigEndian.Uint64([]byte(key[i*8 : i*8+8])))
	}
	return coords
}

// checkCoords validates one cell address against the array domain.
func (nd *ndarray) checkCoords(coords []int64) error {
	if len(coords) != len(nd.shape) {
		return soma.Coordf("%d coordinates for a %d-dimensional array", len(coords), len(nd.shape))
	}
	for d, c := range coords {
		if c < 0 || c >= nd.shape[d] {
			return soma.Coordf("coordinate %d out of bounds for dimension %d of length %d", c, d, nd.shape[d])
		}
	}
	return nil
}

// setCell stores one value. Writing a cell twice keeps the later value.
func (nd *ndarray) setCell(coords []int64, value interface{}) error {
	if err := nd.checkCoords(coords); err != nil {
		return err
	}
	if !elemValueOK(nd.elem, value) {
		return soma.Schemaf("value %v does not have element type %s", value, nd.elem)
	}
	nd.cells[packKey(coords)] = value
	nd.written = true
	return nil
}

func elemValueOK(elem arrow.DataType, v interface{}) bool {
	switch elem.ID() {
	case arrow.INT8:
		_, ok := v.(int8)
		return ok
	case arrow.INT16:
		_, ok := v.(int16)
		return ok
	case arrow.INT32:
		_, ok := v.(int32)
		return ok
	case arrow.INT64:
		_, ok := v.(int64)
		return ok
	case arrow.UINT8:
		_, ok := v.(uint8)
		return ok
	case arrow.UINT16:
		_, ok := v.(uint16)
		return ok
	case arrow.UINT32:
		_, ok := v.(uint32)
		return ok
	case arrow.UINT64:
		_, ok := v.(uint64)
		return ok
	case arrow.FLOAT32:
		_, ok := v.(float32)
		return ok
	case arrow.FLOAT64:
		_, ok := v.(float64)
		return ok
	default:
		return false
	}
}

// load materializes the handle's data generation into the cell map.
func (nd *ndarray) load(ctx context.Context) error {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	return nd.loadLocked(ctx)
}

func (nd *ndarray) loadLocked(ctx context.Context) error {
	if nd.loaded {
		return nil
	}
	key := nd.Manifest().DataKey
	if key == "" {
		nd.loaded = true
		return nil
	}
	blob, err := nd.Manager().GetData(ctx, nd.URI(), key)
	if err != nil {
		return err
	}
	rec, err := scan.DecodeIPC(blob)
	if err != nil {
		return err
	}
	defer rec.Release()
	rows, err := scan.RowsFromRecord(rec)
	if err != nil {
		return err
	}
	ndim := len(nd.shape)
	for _, row := range rows {
		coords := make([]int64, ndim)
		for d := 0; d < ndim; d++ {
			coords[d] = row[d].(int64)
		}
		nd.cells[packKey(coords)] = row[ndim]
	}
	nd.loaded = true
	return nil
}

// flush publishes the cell map as a fresh data generation, in row-major
// cell order.
func (nd *ndarray) flush(ctx context.Context) error {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	if !nd.written {
		return nil
	}

	keys := make([]string, 0, len(nd.cells))
	for k := range nd.cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ndim := len(nd.shape)
	rows := make([]scan.Row, len(keys))
	for i, k := range keys {
		coords := unpackKey(k, ndim)
		row := make(scan.Row, ndim+1)
		for d, c := range coords {
			row[d] = c
		}
		row[ndim] = nd.cells[k]
		rows[i] = row
	}

	rec, err := scan.RecordFromRows(nd.tableSchema(), rows, nil)
	if err != nil {
		return err
	}
	defer rec.Release()
	blob, err := scan.EncodeIPC(rec)
	if err != nil {
		return err
	}
	dataKey, err := nd.Manager().StageData(ctx, nd.URI(), blob)
	if err != nil {
		return err
	}
	nd.Manifest().DataKey = dataKey
	nd.MarkDirty()
	return nil
}

// validateSelectors checks a coordinate selection against the domain.
// NDArray dimensions are integer-indexed only.
func (nd *ndarray) validateSelectors(coords []soma.Coord) error {
	if len(coords) > len(nd.shape) {
		return soma.Coordf("%d coordinate selectors for a %d-dimensional array", len(coords), len(nd.shape))
	}
	for i, c := range coords {
		if err := c.Validate(); err != nil {
			return err
		}
		if c.IsString() {
			return soma.Coordf("selector %d is a string selector; array dimensions are integer-indexed", i)
		}
	}
	return nil
}

// matchesCell applies selectors to one cell address. Missing trailing
// selectors select the whole dimension.
func matchesCell(coords []int64, sel []soma.Coord) bool {
	for i, c := range sel {
		if !c.MatchesInt(coords[i]) {
			return false
		}
	}
	return true
}
