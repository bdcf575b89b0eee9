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

// Package lifecycle implements the create/open/close protocol: exclusive
// creation, typed opens, read-xor-write handles, the ownership tree with
// its cascading close, and atomic publish-on-close via staged data
// generations and a manifest swap.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/monitoring"
)

// Factory reifies a concrete SOMA type from an opened base handle.
// Concrete type packages register themselves at init time.
type Factory func(ctx context.Context, base *Object) (soma.Object, error)

var (
	kindsMu sync.Mutex
	kinds   = map[soma.Type]Factory{}
)

// RegisterKind binds a type tag to its factory.
func RegisterKind(tag soma.Type, f Factory) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	if _, dup := kinds[tag]; dup {
		panic("lifecycle: kind registered twice: " + string(tag))
	}
	kinds[tag] = f
}

func kindFactory(tag soma.Type) (Factory, error) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	f, ok := kinds[tag]
	if !ok {
		return nil, errors.Errorf("no factory registered for %s", tag)
	}
	return f, nil
}

// Manager resolves URIs to backends and drives the object lifecycle.
// One manager serves one Context; every object in an ownership subtree
// shares both.
type Manager struct {
	sctx    *Context
	logger  logrus.FieldLogger
	metrics *monitoring.PrometheusMetrics
}

func NewManager(sctx *Context) *Manager {
	return &Manager{
		sctx:    sctx,
		logger:  sctx.Logger(),
		metrics: sctx.Metrics(),
	}
}

func (m *Manager) Context() *Context {
	return m.sctx
}

func (m *Manager) Logger() logrus.FieldLogger {
	return m.logger
}

func (m *Manager) Metrics() *monitoring.PrometheusMetrics {
	return m.metrics
}

// resolve returns the backend for a URI plus the backend-local base key.
func (m *Manager) resolve(uri string) (Backend, string, error) {
	scheme, rest, err := soma.ParseURI(uri)
	if err != nil {
		return nil, "", err
	}
	b, err := m.sctx.Backend(scheme)
	if err != nil {
		return nil, "", err
	}
	return b, rest, nil
}

// CreateObject atomically claims uri with the given manifest and returns
// a write-mode base handle. Concurrent creators race on the backend's
// exclusive write; exactly one wins.
func (m *Manager) CreateObject(ctx context.Context, uri string, man *Manifest) (*Object, error) {
	if !man.SOMAType.Valid() {
		return nil, errors.Errorf("invalid soma_type %q", man.SOMAType)
	}
	b, base, err := m.resolve(uri)
	if err != nil {
		return nil, err
	}
	data, err := man.marshal()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	err = b.CreateExclusive(ctx, base+"/"+manifestName, data)
	m.metrics.ObserveBackendOp(b.Scheme(), "create", time.Since(start).Seconds())
	if err != nil {
		if soma.IsAlreadyExists(err) {
			return nil, &soma.AlreadyExistsError{URI: uri}
		}
		return nil, errors.Wrapf(err, "create %q", uri)
	}
	m.metrics.ObjectCreated(string(man.SOMAType))
	m.logger.WithField("uri", uri).
		WithField("soma_type", man.SOMAType).
		Debug("created object")
	return newObject(m, uri, soma.ModeWrite, man), nil
}

// OpenObject loads the manifest at uri and returns a base handle in the
// requested mode.
func (m *Manager) OpenObject(ctx context.Context, uri string, mode soma.Mode) (*Object, error) {
	man, err := m.loadManifest(ctx, uri)
	if err != nil {
		return nil, err
	}
	m.metrics.ObjectOpened(string(man.SOMAType), mode.String())
	m.logger.WithField("uri", uri).
		WithField("soma_type", man.SOMAType).
		WithField("mode", mode.String()).
		Debug("opened object")
	return newObject(m, uri, mode, man), nil
}

// Open opens the object at uri as whatever type its stored tag names.
func (m *Manager) Open(ctx context.Context, uri string, mode soma.Mode) (soma.Object, error) {
	base, err := m.OpenObject(ctx, uri, mode)
	if err != nil {
		return nil, err
	}
	f, err := kindFactory(base.SOMAType())
	if err != nil {
		return nil, err
	}
	return f(ctx, base)
}

// OpenTyped opens uri and fails with a TypeMismatchError when the stored
// tag differs from want.
func (m *Manager) OpenTyped(ctx context.Context, uri string, want soma.Type, mode soma.Mode) (soma.Object, error) {
	base, err := m.OpenObject(ctx, uri, mode)
	if err != nil {
		return nil, err
	}
	if base.SOMAType() != want {
		return nil, &soma.TypeMismatchError{URI: uri, Expected: want, Actual: base.SOMAType()}
	}
	f, err := kindFactory(want)
	if err != nil {
		return nil, err
	}
	return f(ctx, base)
}

// Exists reports whether any object occupies uri.
func (m *Manager) Exists(ctx context.Context, uri string) (bool, error) {
	b, base, err := m.resolve(uri)
	if err != nil {
		return false, err
	}
	return b.Exists(ctx, base+"/"+manifestName)
}

// TypedExists reports whether an object of the given tag occupies uri.
// An object of a different tag yields false, not an error.
func (m *Manager) TypedExists(ctx context.Context, uri string, want soma.Type) (bool, error) {
	man, err := m.loadManifest(ctx, uri)
	if err != nil {
		if soma.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return man.SOMAType == want, nil
}

func (m *Manager) loadManifest(ctx context.Context, uri string) (*Manifest, error) {
	b, base, err := m.resolve(uri)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	data, err := b.Get(ctx, base+"/"+manifestName)
	m.metrics.ObserveBackendOp(b.Scheme(), "get", time.Since(start).Seconds())
	if err != nil {
		if soma.IsNotFound(err) {
			return nil, &soma.NotFoundError{URI: uri}
		}
		return nil, errors.Wrapf(err, "open %q", uri)
	}
	return unmarshalManifest(data)
}

func (m *Manager) putManifest(ctx context.Context, uri string, man *Manifest) error {
	b, base, err := m.resolve(uri)
	if err != nil {
		return err
	}
	data, err := man.marshal()
	if err != nil {
		return err
	}
	start := time.Now()
	err = b.Put(ctx, base+"/"+manifestName, data)
	m.metrics.ObserveBackendOp(b.Scheme(), "put", time.Since(start).Seconds())
	return errors.Wrapf(err, "publish manifest for %q", uri)
}

// GetData loads the current data generation of an object; a handle keeps
// reading the generation its manifest named at open time.
func (m *Manager) GetData(ctx context.Context, uri, dataKey string) ([]byte, error) {
	b, base, err := m.resolve(uri)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	data, err := b.Get(ctx, base+"/"+dataKey)
	m.metrics.ObserveBackendOp(b.Scheme(), "get", time.Since(start).Seconds())
	return data, errors.Wrapf(err, "load data for %q", uri)
}

// StageData writes a fresh data generation next to the object and
// returns its key. The generation becomes visible only once the caller
// publishes a manifest referencing it; earlier generations are never
// touched.
func (m *Manager) StageData(ctx context.Context, uri string, data []byte) (string, error) {
	b, base, err := m.resolve(uri)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("data-%s.arrow", uuid.New().String())
	start := time.Now()
	err = b.Put(ctx, base+"/"+key, data)
	m.metrics.ObserveBackendOp(b.Scheme(), "put", time.Since(start).Seconds())
	if err != nil {
		return "", errors.Wrapf(err, "stage data for %q", uri)
	}
	return key, nil
}
