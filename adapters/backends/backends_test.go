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

package backends

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/lifecycle"
)

func backendContract(t *testing.T, b lifecycle.Backend, key string) {
	t.Helper()
	ctx := context.Background()

	ok, err := b.Exists(ctx, key)
	require.Nil(t, err)
	assert.False(t, ok)

	_, err = b.Get(ctx, key)
	require.NotNil(t, err)
	assert.True(t, soma.IsNotFound(err))

	require.Nil(t, b.CreateExclusive(ctx, key, []byte("v1")))
	err = b.CreateExclusive(ctx, key, []byte("other"))
	require.NotNil(t, err)
	assert.True(t, soma.IsAlreadyExists(err))

	ok, err = b.Exists(ctx, key)
	require.Nil(t, err)
	assert.True(t, ok)

	data, err := b.Get(ctx, key)
	require.Nil(t, err)
	assert.Equal(t, []byte("v1"), data)

	require.Nil(t, b.Put(ctx, key, []byte("v2")))
	data, err = b.Get(ctx, key)
	require.Nil(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestMemoryBackendContract(t *testing.T) {
	b := &memoryBackend{blobs: map[string][]byte{}}
	backendContract(t, b, "objects/a/.soma.json")
}

func TestMemoryBackendIsolatedPerInstance(t *testing.T) {
	ctx := context.Background()
	a := &memoryBackend{blobs: map[string][]byte{}}
	b := &memoryBackend{blobs: map[string][]byte{}}

	require.Nil(t, a.Put(ctx, "k", []byte("x")))
	ok, err := b.Exists(ctx, "k")
	require.Nil(t, err)
	assert.False(t, ok)
}

func TestMemoryBackendCopiesData(t *testing.T) {
	ctx := context.Background()
	b := &memoryBackend{blobs: map[string][]byte{}}

	in := []byte("abc")
	require.Nil(t, b.Put(ctx, "k", in))
	in[0] = 'z'

	out, err := b.Get(ctx, "k")
	require.Nil(t, err)
	assert.Equal(t, []byte("abc"), out)
}

func TestFileBackendContract(t *testing.T) {
	b := &fileBackend{}
	backendContract(t, b, filepath.Join(t.TempDir(), "obj", ".soma.json"))
}

func TestFileBackendExclusiveUnderContention(t *testing.T) {
	ctx := context.Background()
	b := &fileBackend{}
	key := filepath.Join(t.TempDir(), "obj", ".soma.json")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = b.CreateExclusive(ctx, key, []byte("claim"))
		}(i)
	}
	wg.Wait()

	var won int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.True(t, soma.IsAlreadyExists(err))
		}
	}
	assert.Equal(t, 1, won)
}

func TestFileBackendPutLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	b := &fileBackend{}
	dir := t.TempDir()
	key := filepath.Join(dir, "blob")

	require.Nil(t, b.Put(ctx, key, []byte("payload")))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.Nil(t, err)
	assert.Empty(t, matches)
}
