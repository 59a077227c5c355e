// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package vfile opens vfs resources as Go streams. Open composes up to three
// layers: a RawFile over the backend session, an optional BufferedStream and,
// in text mode, a TextStream that decodes and translates newlines.
package vfile

import (
	"io"
)

// Stream is the surface shared by every layer Open can return.
type Stream interface {
	io.ReadWriteSeeker
	io.Closer
	Flush() error
	Tell() (int64, error)
	Truncate(size int64) error
	Closed() bool
	Readable() bool
	Writable() bool
	Seekable() bool
	Name() string
	Fileno() (uintptr, error)
	IsTerminal() bool
}
