// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package object serves resources from object stores. Addresses look like
// <scheme>://<bucket>/<key>. Reads are ranged GETs and can seek; read-write
// sessions download the object and upload it again on flush and close.
package object

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/antgroup/vfsio/modules/streamio"
	"github.com/antgroup/vfsio/modules/vfs"
)

const (
	// DefaultMaxSize bounds the objects a read-write session downloads.
	DefaultMaxSize int64 = 256 << 20
)

type ObjectInfo struct {
	Size        int64
	ContentType string
	ModTime     time.Time
	ETag        string
}

// Store is the minimal object API a driver provides. Drivers report missing
// objects with a vfs.NotFound error.
type Store interface {
	Stat(ctx context.Context, key string) (*ObjectInfo, error)
	// GetRange returns the object content from offset. length < 0 reads to the end.
	GetRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error)
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// Provider returns the store for a bucket.
type Provider func(ctx context.Context, bucket string) (Store, error)

type FS struct {
	scheme   string
	provider Provider
	maxSize  int64
}

func New(scheme string, provider Provider, maxSize int64) *FS {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &FS{scheme: scheme, provider: provider, maxSize: maxSize}
}

func (f *FS) Resource(ctx context.Context, bucket, key string) (*Object, error) {
	key = strings.TrimPrefix(key, "/")
	if len(bucket) == 0 || len(key) == 0 {
		return nil, vfs.Errorf(vfs.InvalidArgument, "Invalid object address '%s://%s/%s'", f.scheme, bucket, key)
	}
	store, err := f.provider(ctx, bucket)
	if err != nil {
		return nil, vfs.FromError(err)
	}
	return &Object{store: store, scheme: f.scheme, bucket: bucket, key: key, maxSize: f.maxSize}, nil
}

func (f *FS) Opener() vfs.Opener {
	return func(ctx context.Context, u *url.URL) (vfs.Resource, error) {
		return f.Resource(ctx, u.Host, u.Path)
	}
}

type Object struct {
	store   Store
	scheme  string
	bucket  string
	key     string
	maxSize int64
}

func (o *Object) Path() string {
	return ""
}

func (o *Object) URI() string {
	return (&url.URL{Scheme: o.scheme, Host: o.bucket, Path: "/" + o.key}).String()
}

func (o *Object) QueryInfo(ctx context.Context) (*vfs.FileInfo, error) {
	if err := vfs.Check(ctx); err != nil {
		return nil, err
	}
	oi, err := o.store.Stat(ctx, o.key)
	if err != nil {
		return nil, vfs.FromError(err)
	}
	return &vfs.FileInfo{
		DisplayName: path.Base(o.key),
		Size:        oi.Size,
		ContentType: oi.ContentType,
		ModTime:     oi.ModTime,
	}, nil
}

func (o *Object) Read(ctx context.Context) (vfs.FileInputStream, error) {
	if err := vfs.Check(ctx); err != nil {
		return nil, err
	}
	oi, err := o.store.Stat(ctx, o.key)
	if err != nil {
		return nil, vfs.FromError(err)
	}
	return vfs.NewFileInputStream(&rangeHandle{ctx: ctx, store: o.store, key: o.key, size: oi.Size}), nil
}

// OpenReadWrite downloads the object into memory. Modified content is
// uploaded when the session is flushed or closed.
func (o *Object) OpenReadWrite(ctx context.Context) (vfs.FileIOStream, error) {
	if err := vfs.Check(ctx); err != nil {
		return nil, err
	}
	oi, err := o.store.Stat(ctx, o.key)
	if err != nil {
		return nil, vfs.FromError(err)
	}
	if oi.Size > o.maxSize {
		return nil, vfs.Errorf(vfs.NotSupported, "Object '%s' is too large to open for writing: %d bytes", o.URI(), oi.Size)
	}
	rc, err := o.store.GetRange(ctx, o.key, 0, -1)
	if err != nil {
		return nil, vfs.FromError(err)
	}
	data, err := streamio.ReadMax(rc, o.maxSize, int(oi.Size))
	_ = rc.Close()
	if err != nil {
		return nil, vfs.FromError(err)
	}
	contentType := oi.ContentType
	// the upload outlives ctx: Close commits even once the open is cancelled
	uploadCtx := context.WithoutCancel(ctx)
	h := vfs.NewMemoryHandle(data, func(b []byte) error {
		return o.store.Put(uploadCtx, o.key, bytes.NewReader(b), int64(len(b)), contentType)
	})
	return vfs.NewFileIOStream(h), nil
}

// rangeHandle reads an object with ranged GETs. Seeking drops the open body;
// the next read starts a new range at the new position.
type rangeHandle struct {
	ctx   context.Context
	store Store
	key   string
	size  int64
	pos   int64
	body  io.ReadCloser
}

func (h *rangeHandle) Read(p []byte) (int, error) {
	if h.pos >= h.size {
		return 0, io.EOF
	}
	if h.body == nil {
		body, err := h.store.GetRange(h.ctx, h.key, h.pos, -1)
		if err != nil {
			return 0, err
		}
		h.body = body
	}
	n, err := h.body.Read(p)
	h.pos += int64(n)
	return n, err
}

func (h *rangeHandle) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = h.pos + offset
	case io.SeekEnd:
		abs = h.size + offset
	default:
		return h.pos, vfs.Errorf(vfs.InvalidArgument, "Invalid seek type %d", whence)
	}
	if abs < 0 {
		return h.pos, vfs.Errorf(vfs.InvalidArgument, "Invalid seek offset %d", abs)
	}
	if abs != h.pos {
		h.drop()
		h.pos = abs
	}
	return abs, nil
}

func (h *rangeHandle) drop() {
	if h.body != nil {
		_ = h.body.Close()
		h.body = nil
	}
}

func (h *rangeHandle) Close() error {
	h.drop()
	return nil
}
