// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package gcs is the Google Cloud Storage driver of the object backend.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/antgroup/vfsio/modules/vfs"
	"github.com/antgroup/vfsio/modules/vfs/object"
)

type Options struct {
	CredentialsFile string
	Endpoint        string
	Anonymous       bool
}

func NewClient(ctx context.Context, opts *Options) (*storage.Client, error) {
	var clientOpts []option.ClientOption
	if len(opts.CredentialsFile) != 0 {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	if len(opts.Endpoint) != 0 {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	if opts.Anonymous {
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("new gcs client: %w", err)
	}
	return client, nil
}

type Store struct {
	bucket *storage.BucketHandle
	name   string
}

func NewStore(client *storage.Client, bucket string) *Store {
	return &Store{bucket: client.Bucket(bucket), name: bucket}
}

func Provider(client *storage.Client) object.Provider {
	return func(ctx context.Context, bucket string) (object.Store, error) {
		return NewStore(client, bucket), nil
	}
}

func (s *Store) Stat(ctx context.Context, key string) (*object.ObjectInfo, error) {
	attrs, err := s.bucket.Object(key).Attrs(ctx)
	if err != nil {
		return nil, s.translate(key, err)
	}
	return &object.ObjectInfo{
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		ModTime:     attrs.Updated,
		ETag:        attrs.Etag,
	}, nil
}

func (s *Store) GetRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	r, err := s.bucket.Object(key).NewRangeReader(ctx, offset, length)
	if err != nil {
		return nil, s.translate(key, err)
	}
	return r, nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return s.translate(key, err)
	}
	if err := w.Close(); err != nil {
		return s.translate(key, err)
	}
	return nil
}

func (s *Store) translate(key string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return vfs.Errorf(vfs.NotFound, "gs://%s/%s: %v", s.name, key, err)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return vfs.Errorf(vfs.NotFound, "gs://%s/%s: %s", s.name, key, apiErr.Message)
		case http.StatusUnauthorized, http.StatusForbidden:
			return vfs.Errorf(vfs.PermissionDenied, "gs://%s/%s: %s", s.name, key, apiErr.Message)
		}
	}
	return vfs.FromError(err)
}
