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
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/lifecycle"
)

func init() {
	lifecycle.RegisterBackend("file", func(c *lifecycle.Context) (lifecycle.Backend, error) {
		return &fileBackend{}, nil
	})
}

// fileBackend lays objects out as directories: the key path maps
// directly onto the filesystem. An object moved with plain directory
// tools stays openable, which is what keeps relative collection entries
// relocatable.
type fileBackend struct{}

func (f *fileBackend) Scheme() string {
	return "file"
}

// path maps a backend key onto the filesystem. file:// URIs keep their
// leading slash in the key, so absolute keys pass through unchanged.
func (f *fileBackend) path(key string) string {
	p := filepath.FromSlash(key)
	if !filepath.IsAbs(p) {
		p = string(filepath.Separator) + p
	}
	return p
}

// CreateExclusive relies on O_EXCL for its atomicity: of any number of
// concurrent creators, the filesystem admits exactly one.
func (f *fileBackend) CreateExclusive(ctx context.Context, key string, data []byte) error {
	path := f.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create object directory")
	}
	fd, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return &soma.AlreadyExistsError{URI: key}
		}
		return errors.Wrap(err, "create blob")
	}
	if _, err := fd.Write(data); err != nil {
		fd.Close()
		return errors.Wrap(err, "write blob")
	}
	return fd.Close()
}

// Put writes through a temp file and renames it into place, so readers
// never observe a half-written blob.
func (f *fileBackend) Put(ctx context.Context, key string, data []byte) error {
	path := f.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create object directory")
	}
	tmp := path + ".tmp-" + uuid.New().String()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write blob")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "publish blob")
	}
	return nil
}

func (f *fileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &soma.NotFoundError{URI: key}
		}
		return nil, errors.Wrap(err, "read blob")
	}
	return data, nil
}

func (f *fileBackend) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(f.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "stat blob")
}
