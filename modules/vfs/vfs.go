// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"context"
	"time"
)

// SeekType is the backend's whence numbering. It deliberately differs from
// io.SeekStart/io.SeekCurrent/io.SeekEnd: current is 0 and start is 1.
type SeekType int

const (
	SeekCur SeekType = iota // relative to the current position
	SeekSet                 // relative to the start of the stream
	SeekEnd                 // relative to the end of the stream
)

func (t SeekType) String() string {
	switch t {
	case SeekCur:
		return "cur"
	case SeekSet:
		return "set"
	case SeekEnd:
		return "end"
	}
	return "unknown"
}

// FileInfo is the metadata a backend reports for a resource.
type FileInfo struct {
	DisplayName string
	Size        int64
	ContentType string
	ModTime     time.Time
	IsDir       bool
}

// Resource is a location in a virtual filesystem. It is immutable; every
// blocking call takes the context of the caller's Cancellable.
type Resource interface {
	// Path returns the local filesystem path, or "" when the resource has none.
	Path() string
	// URI returns the resource address.
	URI() string
	// QueryInfo returns metadata for the resource.
	QueryInfo(ctx context.Context) (*FileInfo, error)
	// Read opens a read-only session.
	Read(ctx context.Context) (FileInputStream, error)
	// OpenReadWrite opens a read-write session on an existing resource.
	// There is no write-only session.
	OpenReadWrite(ctx context.Context) (FileIOStream, error)
}

type Stream interface {
	Close(ctx context.Context) error
	IsClosed() bool
}

type Seekable interface {
	Tell() int64
	CanSeek() bool
	Seek(ctx context.Context, offset int64, whence SeekType) error
	CanTruncate() bool
	Truncate(ctx context.Context, size int64) error
}

// InputStream reads bytes. A read returning 0 bytes and a nil error marks
// the end of the stream; a single read may return fewer bytes than asked.
type InputStream interface {
	Stream
	Read(ctx context.Context, p []byte) (int, error)
}

type OutputStream interface {
	Stream
	Write(ctx context.Context, p []byte) (int, error)
	Flush(ctx context.Context) error
	Tell() int64
}

// FileInputStream is the session returned by Resource.Read.
type FileInputStream interface {
	InputStream
	Seekable
}

// FileIOStream is the combined session returned by Resource.OpenReadWrite.
// Its input and output sides share one position.
type FileIOStream interface {
	Stream
	Seekable
	InputStream() InputStream
	OutputStream() OutputStream
}

// Descriptor is implemented by input streams backed by an OS file
// descriptor. Absence of a descriptor is normal for remote resources.
type Descriptor interface {
	Fd() (uintptr, bool)
}
