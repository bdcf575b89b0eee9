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

package collection

import (
	"context"

	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/dataframe"
	"github.com/weaviate/somadb/usecases/lifecycle"
)

func init() {
	lifecycle.RegisterKind(soma.TypeExperiment, func(ctx context.Context, base *lifecycle.Object) (soma.Object, error) {
		return newExperiment(base), nil
	})
	lifecycle.RegisterKind(soma.TypeMeasurement, func(ctx context.Context, base *lifecycle.Object) (soma.Object, error) {
		return newMeasurement(base), nil
	})
}

// experimentSlots and measurementSlots constrain the type of value each
// pre-defined key of a composed collection may hold. Keys outside the
// table are unconstrained.
var experimentSlots = map[string]soma.Type{
	"obs": soma.TypeDataFrame,
	"ms":  soma.TypeCollection,
}

var measurementSlots = map[string]soma.Type{
	"var":  soma.TypeDataFrame,
	"X":    soma.TypeCollection,
	"obsm": soma.TypeCollection,
	"obsp": soma.TypeCollection,
	"varm": soma.TypeCollection,
	"varp": soma.TypeCollection,
}

// slotChecker binds a slot table into the form Collection.Set and the
// AddNew constructors consult.
func slotChecker(slots map[string]soma.Type) func(key string, actual soma.Type) error {
	return func(key string, actual soma.Type) error {
		want, constrained := slots[key]
		if !constrained {
			return nil
		}
		if want == soma.TypeCollection && actual.IsCollectionType() {
			return nil
		}
		if actual != want {
			return soma.Validationf("slot %q must hold a %s, not a %s", key, want, actual)
		}
		return nil
	}
}

// Experiment is the top-level composed container of one annotated study:
// the obs dataframe describing observations and the ms collection of
// per-modality measurements.
type Experiment struct {
	*Collection
}

func newExperiment(base *lifecycle.Object) *Experiment {
	c := newFromBase(base)
	c.slotCheck = slotChecker(experimentSlots)
	return &Experiment{Collection: c}
}

// CreateExperiment claims uri as an empty experiment.
func CreateExperiment(ctx context.Context, mgr *lifecycle.Manager, uri string) (*Experiment, error) {
	base, err := mgr.CreateObject(ctx, uri, &lifecycle.Manifest{SOMAType: soma.TypeExperiment})
	if err != nil {
		return nil, err
	}
	return newExperiment(base), nil
}

// Obs opens the observation annotation dataframe.
func (e *Experiment) Obs(ctx context.Context) (*dataframe.DataFrame, error) {
	return e.getDataFrame(ctx, "obs")
}

// MS opens the measurement collection.
func (e *Experiment) MS(ctx context.Context) (*Collection, error) {
	return e.getCollection(ctx, "ms")
}

// Measurement groups the artifacts of one modality: the var dataframe
// describing variables, the X layer collection and the derived-matrix
// collections.
type Measurement struct {
	*Collection
}

func newMeasurement(base *lifecycle.Object) *Measurement {
	c := newFromBase(base)
	c.slotCheck = slotChecker(measurementSlots)
	return &Measurement{Collection: c}
}

// CreateMeasurement claims uri as an empty measurement.
func CreateMeasurement(ctx context.Context, mgr *lifecycle.Manager, uri string) (*Measurement, error) {
	base, err := mgr.CreateObject(ctx, uri, &lifecycle.Manifest{SOMAType: soma.TypeMeasurement})
	if err != nil {
		return nil, err
	}
	return newMeasurement(base), nil
}

// Var opens the variable annotation dataframe.
func (m *Measurement) Var(ctx context.Context) (*dataframe.DataFrame, error) {
	return m.getDataFrame(ctx, "var")
}

// X opens the layer collection.
func (m *Measurement) X(ctx context.Context) (*Collection, error) {
	return m.getCollection(ctx, "X")
}

// Obsm opens the per-observation derived matrix collection.
func (m *Measurement) Obsm(ctx context.Context) (*Collection, error) {
	return m.getCollection(ctx, "obsm")
}

// Obsp opens the observation-pairwise matrix collection.
func (m *Measurement) Obsp(ctx context.Context) (*Collection, error) {
	return m.getCollection(ctx, "obsp")
}

// Varm opens the per-variable derived matrix collection.
func (m *Measurement) Varm(ctx context.Context) (*Collection, error) {
	return m.getCollection(ctx, "varm")
}

// Varp opens the variable-pairwise matrix collection.
func (m *Measurement) Varp(ctx context.Context) (*Collection, error) {
	return m.getCollection(ctx, "varp")
}

func (c *Collection) getDataFrame(ctx context.Context, key string) (*dataframe.DataFrame, error) {
	child, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	df, ok := child.(*dataframe.DataFrame)
	if !ok {
		return nil, &soma.TypeMismatchError{URI: child.URI(), Expected: soma.TypeDataFrame, Actual: child.SOMAType()}
	}
	return df, nil
}

func (c *Collection) getCollection(ctx context.Context, key string) (*Collection, error) {
	child, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	switch x := child.(type) {
	case *Collection:
		return x, nil
	case *Experiment:
		return x.Collection, nil
	case *Measurement:
		return x.Collection, nil
	default:
		return nil, &soma.TypeMismatchError{URI: child.URI(), Expected: soma.TypeCollection, Actual: child.SOMAType()}
	}
}
