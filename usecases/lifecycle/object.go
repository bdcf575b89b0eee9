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

package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/weaviate/somadb/entities/errorcompounder"
	"github.com/weaviate/somadb/entities/soma"
)

// Object is the embedded base of every concrete SOMA type. It owns the
// handle state machine (open mode, closed flag), the metadata map, the
// ownership list used by the close cascade, and the manifest that gets
// published on close.
type Object struct {
	mgr  *Manager
	uri  string
	mode soma.Mode
	man  *Manifest

	mu       sync.Mutex
	closed   bool
	dirty    bool
	children []soma.Object
	flush    func(ctx context.Context) error
}

func newObject(mgr *Manager, uri string, mode soma.Mode, man *Manifest) *Object {
	if man.Metadata == nil {
		man.Metadata = map[string]interface{}{}
	}
	return &Object{mgr: mgr, uri: uri, mode: mode, man: man}
}

func (o *Object) URI() string {
	return o.uri
}

func (o *Object) SOMAType() soma.Type {
	return o.man.SOMAType
}

func (o *Object) Mode() soma.Mode {
	return o.mode
}

func (o *Object) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// Manager returns the lifecycle manager this handle was opened through.
func (o *Object) Manager() *Manager {
	return o.mgr
}

// Manifest exposes the descriptor to the concrete type embedding this
// base. Mutations must be followed by MarkDirty.
func (o *Object) Manifest() *Manifest {
	return o.man
}

// MarkDirty flags the manifest for publication on close.
func (o *Object) MarkDirty() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dirty = true
}

// SetFlush installs the concrete type's data-publication hook, run
// before the manifest swap when a write handle closes.
func (o *Object) SetFlush(fn func(ctx context.Context) error) {
	o.flush = fn
}

// Adopt records a child this object instantiated. Owned children are
// closed, depth-first, before the owner itself closes. Objects merely
// linked by reference are never adopted.
func (o *Object) Adopt(child soma.Object) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.children = append(o.children, child)
}

// RequireOpen fails with a ModeError when the handle is closed.
func (o *Object) RequireOpen(op string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return &soma.ModeError{Op: op, Mode: o.mode, Closed: true}
	}
	return nil
}

// RequireRead guards data reads: open and in read mode.
func (o *Object) RequireRead(op string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return &soma.ModeError{Op: op, Mode: o.mode, Closed: true}
	}
	if o.mode != soma.ModeRead {
		return &soma.ModeError{Op: op, Mode: o.mode}
	}
	return nil
}

// RequireWrite guards mutations: open and in write mode.
func (o *Object) RequireWrite(op string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return &soma.ModeError{Op: op, Mode: o.mode, Closed: true}
	}
	if o.mode != soma.ModeWrite {
		return &soma.ModeError{Op: op, Mode: o.mode}
	}
	return nil
}

// Metadata returns a copy of the metadata map. Metadata stays readable
// in both modes and on closed handles.
func (o *Object) Metadata() map[string]interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]interface{}, len(o.man.Metadata))
	for k, v := range o.man.Metadata {
		out[k] = v
	}
	return out
}

func (o *Object) GetMetadata(key string) (interface{}, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.man.Metadata[key]
	return v, ok
}

func (o *Object) SetMetadata(key string, value interface{}) error {
	if err := o.RequireWrite("set metadata"); err != nil {
		return err
	}
	if !soma.ValidMetadataValue(value) {
		return soma.Schemaf("metadata value for %q must be a string, bool, int64 or float64", key)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.man.Metadata[key] = value
	o.dirty = true
	return nil
}

func (o *Object) DeleteMetadata(key string) error {
	if err := o.RequireWrite("delete metadata"); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.man.Metadata, key)
	o.dirty = true
	return nil
}

// Close flushes pending writes and releases the handle. Owned children
// close first, depth-first. Idempotent: second and later calls return
// nil without touching storage.
func (o *Object) Close(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	children := o.children
	o.children = nil
	dirty := o.dirty
	o.mu.Unlock()

	start := time.Now()
	ec := errorcompounder.New()
	for _, child := range children {
		ec.AddWrap(child.Close(ctx), "close child")
	}

	if o.mode == soma.ModeWrite {
		if o.flush != nil && ec.Empty() {
			if err := o.flush(ctx); err != nil {
				ec.AddWrap(err, "flush")
			} else {
				o.mu.Lock()
				dirty = o.dirty
				o.mu.Unlock()
			}
		}
		if dirty && ec.Empty() {
			ec.AddWrap(o.mgr.putManifest(ctx, o.uri, o.man), "publish manifest")
		}
	}

	o.mgr.metrics.ObjectClosed(string(o.man.SOMAType), time.Since(start).Seconds())
	o.mgr.logger.WithField("uri", o.uri).
		WithField("soma_type", o.man.SOMAType).
		Debug("closed object")
	return ec.ToError()
}
