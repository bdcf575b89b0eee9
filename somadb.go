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

package somadb

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"

	_ "github.com/weaviate/somadb/adapters/backends"
	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/collection"
	"github.com/weaviate/somadb/usecases/config"
	"github.com/weaviate/somadb/usecases/dataframe"
	"github.com/weaviate/somadb/usecases/lifecycle"
	"github.com/weaviate/somadb/usecases/ndarray"
)

// DB is the entry point: it binds a configuration to a lifecycle
// manager and hands out typed handles. One DB may serve any number of
// concurrent opens; the handles themselves are independent.
type DB struct {
	mgr *lifecycle.Manager
}

// New builds a DB from cfg; nil means defaults.
func New(cfg *config.Config) (*DB, error) {
	sctx, err := lifecycle.NewContext(cfg)
	if err != nil {
		return nil, err
	}
	return &DB{mgr: lifecycle.NewManager(sctx)}, nil
}

// Manager exposes the lifecycle manager for callers composing their own
// object graphs.
func (db *DB) Manager() *lifecycle.Manager {
	return db.mgr
}

// Open opens the object at uri as whatever type it was created as.
func (db *DB) Open(ctx context.Context, uri string, mode soma.Mode) (soma.Object, error) {
	return db.mgr.Open(ctx, uri, mode)
}

// Exists reports whether any object occupies uri.
func (db *DB) Exists(ctx context.Context, uri string) (bool, error) {
	return db.mgr.Exists(ctx, uri)
}

// TypedExists reports whether an object of the given type occupies uri.
func (db *DB) TypedExists(ctx context.Context, uri string, want soma.Type) (bool, error) {
	return db.mgr.TypedExists(ctx, uri, want)
}

// OpenCollection opens uri as a plain collection.
func (db *DB) OpenCollection(ctx context.Context, uri string, mode soma.Mode) (*collection.Collection, error) {
	o, err := db.mgr.OpenTyped(ctx, uri, soma.TypeCollection, mode)
	if err != nil {
		return nil, err
	}
	return o.(*collection.Collection), nil
}

// OpenDataFrame opens uri as a dataframe.
func (db *DB) OpenDataFrame(ctx context.Context, uri string, mode soma.Mode) (*dataframe.DataFrame, error) {
	o, err := db.mgr.OpenTyped(ctx, uri, soma.TypeDataFrame, mode)
	if err != nil {
		return nil, err
	}
	return o.(*dataframe.DataFrame), nil
}

// OpenDenseNDArray opens uri as a dense array.
func (db *DB) OpenDenseNDArray(ctx context.Context, uri string, mode soma.Mode) (*ndarray.DenseNDArray, error) {
	o, err := db.mgr.OpenTyped(ctx, uri, soma.TypeDenseNDArray, mode)
	if err != nil {
		return nil, err
	}
	return o.(*ndarray.DenseNDArray), nil
}

// OpenSparseNDArray opens uri as a sparse array.
func (db *DB) OpenSparseNDArray(ctx context.Context, uri string, mode soma.Mode) (*ndarray.SparseNDArray, error) {
	o, err := db.mgr.OpenTyped(ctx, uri, soma.TypeSparseNDArray, mode)
	if err != nil {
		return nil, err
	}
	return o.(*ndarray.SparseNDArray), nil
}

// OpenExperiment opens uri as an experiment.
func (db *DB) OpenExperiment(ctx context.Context, uri string, mode soma.Mode) (*collection.Experiment, error) {
	o, err := db.mgr.OpenTyped(ctx, uri, soma.TypeExperiment, mode)
	if err != nil {
		return nil, err
	}
	return o.(*collection.Experiment), nil
}

// OpenMeasurement opens uri as a measurement.
func (db *DB) OpenMeasurement(ctx context.Context, uri string, mode soma.Mode) (*collection.Measurement, error) {
	o, err := db.mgr.OpenTyped(ctx, uri, soma.TypeMeasurement, mode)
	if err != nil {
		return nil, err
	}
	return o.(*collection.Measurement), nil
}

// CreateCollection claims uri as an empty collection and returns a
// write-mode handle.
func (db *DB) CreateCollection(ctx context.Context, uri string) (*collection.Collection, error) {
	return collection.Create(ctx, db.mgr, uri)
}

// CreateDataFrame claims uri as a dataframe with the given schema and
// index columns.
func (db *DB) CreateDataFrame(ctx context.Context, uri string, sc *arrow.Schema, indexColumns []string) (*dataframe.DataFrame, error) {
	return dataframe.Create(ctx, db.mgr, uri, sc, indexColumns)
}

// CreateDenseNDArray claims uri as a dense array.
func (db *DB) CreateDenseNDArray(ctx context.Context, uri string, elem arrow.DataType, shape []int64) (*ndarray.DenseNDArray, error) {
	return ndarray.CreateDense(ctx, db.mgr, uri, elem, shape)
}

// CreateSparseNDArray claims uri as a sparse array.
func (db *DB) CreateSparseNDArray(ctx context.Context, uri string, elem arrow.DataType, shape []int64) (*ndarray.SparseNDArray, error) {
	return ndarray.CreateSparse(ctx, db.mgr, uri, elem, shape)
}

// CreateExperiment claims uri as an empty experiment.
func (db *DB) CreateExperiment(ctx context.Context, uri string) (*collection.Experiment, error) {
	return collection.CreateExperiment(ctx, db.mgr, uri)
}

// CreateMeasurement claims uri as an empty measurement.
func (db *DB) CreateMeasurement(ctx context.Context, uri string) (*collection.Measurement, error) {
	return collection.CreateMeasurement(ctx, db.mgr, uri)
}
