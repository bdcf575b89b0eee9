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
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/weaviate/somadb/entities/soma"
	"github.com/weaviate/somadb/usecases/lifecycle"
)

func init() {
	lifecycle.RegisterBackend("s3", func(c *lifecycle.Context) (lifecycle.Backend, error) {
		cfg := c.Config().S3
		client, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewEnvAWS(),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, errors.Wrap(err, "init s3 client")
		}
		return &s3Backend{client: client}, nil
	})
}

// s3Backend stores blobs as objects named after the key, the first key
// segment being the bucket.
type s3Backend struct {
	client *minio.Client
}

func (s *s3Backend) Scheme() string {
	return "s3"
}

func splitKey(key string) (bucket, name string, err error) {
	i := strings.Index(key, "/")
	if i <= 0 || i == len(key)-1 {
		return "", "", errors.Errorf("s3 key %q must be bucket/name", key)
	}
	return key[:i], key[i+1:], nil
}

// CreateExclusive approximates exclusive creation with a stat followed
// by a put. S3 offers no compare-and-set on plain puts, so two creators
// racing within the stat-to-put window can both succeed; callers needing
// hard exclusion should create on file:// and link the object in.
func (s *s3Backend) CreateExclusive(ctx context.Context, key string, data []byte) error {
	bucket, name, err := splitKey(key)
	if err != nil {
		return err
	}
	if _, err := s.client.StatObject(ctx, bucket, name, minio.StatObjectOptions{}); err == nil {
		return &soma.AlreadyExistsError{URI: key}
	} else if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return errors.Wrap(err, "stat object")
	}
	return s.put(ctx, bucket, name, data)
}

func (s *s3Backend) Put(ctx context.Context, key string, data []byte) error {
	bucket, name, err := splitKey(key)
	if err != nil {
		return err
	}
	return s.put(ctx, bucket, name, data)
}

func (s *s3Backend) put(ctx context.Context, bucket, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	return errors.Wrap(err, "put object")
}

func (s *s3Backend) Get(ctx context.Context, key string) ([]byte, error) {
	bucket, name, err := splitKey(key)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "get object")
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, &soma.NotFoundError{URI: key}
		}
		return nil, errors.Wrap(err, "read object")
	}
	return data, nil
}

func (s *s3Backend) Exists(ctx context.Context, key string) (bool, error) {
	bucket, name, err := splitKey(key)
	if err != nil {
		return false, err
	}
	if _, err := s.client.StatObject(ctx, bucket, name, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, errors.Wrap(err, "stat object")
	}
	return true, nil
}
