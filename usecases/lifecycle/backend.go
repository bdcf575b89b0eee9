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

	"github.com/pkg/errors"
)

// Backend is the physical storage a URI scheme maps to. Keys are the
// scheme-stripped remainder of a URI plus a blob name; a backend may lay
// them out hierarchically (filesystem) or as flat prefixed object names
// (object stores).
type Backend interface {
	Scheme() string
	// CreateExclusive writes key only if it does not exist yet and
	// returns a soma.AlreadyExistsError otherwise. This is the one
	// primitive object creation's atomicity rests on.
	CreateExclusive(ctx context.Context, key string, data []byte) error
	// Put overwrites key.
	Put(ctx context.Context, key string, data []byte) error
	// Get returns the blob at key, or a soma.NotFoundError.
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// BackendConstructor builds a backend instance bound to one Context, so
// that independently-constructed contexts never share client state.
type BackendConstructor func(c *Context) (Backend, error)

var (
	backendsMu   sync.Mutex
	backendCtors = map[string]BackendConstructor{}
)

// RegisterBackend makes a storage scheme available to every Context.
// Called from backend package init functions.
func RegisterBackend(scheme string, ctor BackendConstructor) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if _, dup := backendCtors[scheme]; dup {
		panic("lifecycle: backend scheme registered twice: " + scheme)
	}
	backendCtors[scheme] = ctor
}

func backendConstructor(scheme string) (BackendConstructor, error) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	ctor, ok := backendCtors[scheme]
	if !ok {
		return nil, errors.Errorf("no storage backend registered for scheme %q", scheme)
	}
	return ctor, nil
}
