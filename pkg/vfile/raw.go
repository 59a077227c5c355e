// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfile

import (
	"context"
	"fmt"
	"io"

	"github.com/antgroup/vfsio/modules/term"
	"github.com/antgroup/vfsio/modules/vfs"
)

type session interface {
	vfs.Stream
	vfs.Seekable
}

var (
	whenceTypes = map[int]vfs.SeekType{
		io.SeekStart:   vfs.SeekSet,
		io.SeekCurrent: vfs.SeekCur,
		io.SeekEnd:     vfs.SeekEnd,
	}
)

// RawFile is an unbuffered binary stream over one backend session. It owns
// the session: a combined seekable stream plus its input side and, when
// writable, its output side.
type RawFile struct {
	res         vfs.Resource
	cancellable *vfs.Cancellable
	path        string
	s           session
	in          vfs.InputStream
	out         vfs.OutputStream
}

// NewRawFile opens a session on res. A writable file opens a read-write
// session on an existing resource; there is no create or write-only path.
func NewRawFile(res vfs.Resource, writable bool, cancellable *vfs.Cancellable) (*RawFile, error) {
	r := &RawFile{res: res, cancellable: cancellable, path: res.Path()}
	if len(r.path) == 0 {
		r.path = res.URI()
	}
	ctx := r.ctx()
	if writable {
		s, err := res.OpenReadWrite(ctx)
		if err != nil {
			return nil, translate("open", r.path, err)
		}
		r.s, r.in, r.out = s, s.InputStream(), s.OutputStream()
		return r, nil
	}
	s, err := res.Read(ctx)
	if err != nil {
		return nil, translate("open", r.path, err)
	}
	r.s, r.in = s, s
	return r, nil
}

func (r *RawFile) ctx() context.Context {
	return r.cancellable.Context()
}

func (r *RawFile) Resource() vfs.Resource {
	return r.res
}

func (r *RawFile) Cancellable() *vfs.Cancellable {
	return r.cancellable
}

// Close closes every part of the session that is still open. It is safe to
// call more than once.
func (r *RawFile) Close() error {
	ctx := r.ctx()
	var err error
	keep := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}
	if !r.s.IsClosed() {
		keep(r.s.Close(ctx))
	}
	if !r.in.IsClosed() {
		keep(r.in.Close(ctx))
	}
	if r.out != nil && !r.out.IsClosed() {
		keep(r.out.Close(ctx))
	}
	return translate("close", r.path, err)
}

func (r *RawFile) Closed() bool {
	return r.s.IsClosed()
}

func (r *RawFile) Tell() (int64, error) {
	if r.out != nil {
		return r.out.Tell(), nil
	}
	return r.s.Tell(), nil
}

func (r *RawFile) Seekable() bool {
	return r.s.CanSeek()
}

// Seek takes io.Seek* whence values and returns the new absolute position.
func (r *RawFile) Seek(offset int64, whence int) (int64, error) {
	t, ok := whenceTypes[whence]
	if !ok {
		return 0, &IOError{Op: "seek", Path: r.path, Message: fmt.Sprintf("invalid whence (%d, should be 0, 1 or 2)", whence), Code: vfs.InvalidArgument}
	}
	if err := r.s.Seek(r.ctx(), offset, t); err != nil {
		return 0, translate("seek", r.path, err)
	}
	return r.Tell()
}

// ReadInto fills p from the input side until p is full or the backend
// reports end of stream. It returns the number of bytes read; 0 means end of
// stream.
func (r *RawFile) ReadInto(p []byte) (int, error) {
	ctx := r.ctx()
	offset := 0
	for offset < len(p) {
		n, err := r.in.Read(ctx, p[offset:])
		offset += n
		if err != nil {
			return offset, translate("read", r.path, err)
		}
		if n == 0 {
			break
		}
	}
	return offset, nil
}

func (r *RawFile) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := r.ReadInto(p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (r *RawFile) Readable() bool {
	return true
}

func (r *RawFile) Writable() bool {
	return r.out != nil
}

func (r *RawFile) Write(p []byte) (int, error) {
	if r.out == nil {
		return 0, errReadOnly("write", r.path)
	}
	ctx := r.ctx()
	written := 0
	for written < len(p) {
		n, err := r.out.Write(ctx, p[written:])
		written += n
		if err != nil {
			return written, translate("write", r.path, err)
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}

// Truncate resizes the resource to size bytes. The position is unchanged.
func (r *RawFile) Truncate(size int64) error {
	if r.out == nil {
		return errReadOnly("truncate", r.path)
	}
	return translate("truncate", r.path, r.s.Truncate(r.ctx(), size))
}

// TruncateHere truncates at the current position.
func (r *RawFile) TruncateHere() error {
	pos, err := r.Tell()
	if err != nil {
		return err
	}
	return r.Truncate(pos)
}

// Flush pushes output to the backend. It is a no-op on read-only files.
func (r *RawFile) Flush() error {
	if r.Closed() {
		return ErrClosed
	}
	if r.out == nil {
		return nil
	}
	return translate("flush", r.path, r.out.Flush(r.ctx()))
}

// Name returns the local path, else the backend display name, else the URI.
func (r *RawFile) Name() string {
	if p := r.res.Path(); len(p) != 0 {
		return p
	}
	if fi, err := r.res.QueryInfo(r.ctx()); err == nil && len(fi.DisplayName) != 0 {
		return fi.DisplayName
	}
	return r.res.URI()
}

// Fileno returns the OS descriptor of a local session.
func (r *RawFile) Fileno() (uintptr, error) {
	if d, ok := r.in.(vfs.Descriptor); ok {
		if fd, ok := d.Fd(); ok {
			return fd, nil
		}
	}
	return 0, &IOError{Op: "fileno", Path: r.path, Message: "No fileno available", Code: vfs.NotSupported}
}

func (r *RawFile) IsTerminal() bool {
	fd, err := r.Fileno()
	if err != nil {
		return false
	}
	return term.IsTerminal(fd)
}

var (
	_ Stream = &RawFile{}
)
