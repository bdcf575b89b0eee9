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

// Package backends provides the storage schemes objects can live on:
// mem:// for tests and scratch work, file:// for local trees and s3://
// for object stores. Each backend registers itself under its scheme at
// init time.
package backends

import (
	"context"
	"sync"

	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/lifecycle"
)

func init() {
	lifecycle.RegisterBackend("mem", func(c *lifecycle.Context) (lifecycle.Backend, error) {
		return &memoryBackend{blobs: map[string][]byte{}}, nil
	})
}

// memoryBackend keeps blobs in a per-Context map. Two contexts never see
// each other's mem:// objects.
type memoryBackend struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (m *memoryBackend) Scheme() string {
	return "mem"
}

func (m *memoryBackend) CreateExclusive(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.blobs[key]; exists {
		return &soma.AlreadyExistsError{URI: key}
	}
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryBackend) Put(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, &soma.NotFoundError{URI: key}
	}
	return append([]byte(nil), data...), nil
}

func (m *memoryBackend) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok, nil
}
