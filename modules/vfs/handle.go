// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"context"
	"errors"
	"io"
)

// Handle is an open backend file. Read and Close are required; Write, Seek,
// Truncate, Flush and Fd are picked up when the handle implements them.
type Handle interface {
	io.Reader
	io.Closer
}

type truncater interface {
	Truncate(size int64) error
}

type flusher interface {
	Flush() error
}

type fder interface {
	Fd() uintptr
}

var (
	whenceOf = map[SeekType]int{
		SeekSet: io.SeekStart,
		SeekCur: io.SeekCurrent,
		SeekEnd: io.SeekEnd,
	}
)

// handleStream tracks the shared position of every view on a handle.
type handleStream struct {
	h      Handle
	pos    int64
	closed bool
}

func (s *handleStream) Tell() int64 {
	return s.pos
}

func (s *handleStream) CanSeek() bool {
	_, ok := s.h.(io.Seeker)
	return ok
}

func (s *handleStream) Seek(ctx context.Context, offset int64, whence SeekType) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	sk, ok := s.h.(io.Seeker)
	if !ok {
		return Errorf(NotSupported, "Seek not supported on stream")
	}
	w, ok := whenceOf[whence]
	if !ok {
		return Errorf(InvalidArgument, "Invalid seek type %d", int(whence))
	}
	pos, err := sk.Seek(offset, w)
	if err != nil {
		return FromError(err)
	}
	s.pos = pos
	return nil
}

func (s *handleStream) canTruncate() bool {
	_, ok := s.h.(truncater)
	return ok
}

func (s *handleStream) truncate(ctx context.Context, size int64) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	t, ok := s.h.(truncater)
	if !ok {
		return Errorf(NotSupported, "Truncate not supported on stream")
	}
	if size < 0 {
		return Errorf(InvalidArgument, "Invalid truncate size %d", size)
	}
	return FromError(t.Truncate(size))
}

func (s *handleStream) read(ctx context.Context, p []byte) (int, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	n, err := s.h.Read(p)
	s.pos += int64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, FromError(err)
	}
	return n, nil
}

func (s *handleStream) write(ctx context.Context, p []byte) (int, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	w, ok := s.h.(io.Writer)
	if !ok {
		return 0, Errorf(NotSupported, "Stream is not writable")
	}
	n, err := w.Write(p)
	s.pos += int64(n)
	return n, FromError(err)
}

func (s *handleStream) flush(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if f, ok := s.h.(flusher); ok {
		return FromError(f.Flush())
	}
	return nil
}

func (s *handleStream) fd() (uintptr, bool) {
	if f, ok := s.h.(fder); ok {
		return f.Fd(), true
	}
	return 0, false
}

// close releases the handle even when the context is already cancelled.
func (s *handleStream) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return FromError(s.h.Close())
}

func (s *handleStream) check(ctx context.Context) error {
	if s.closed {
		return Errorf(Closed, "Stream is already closed")
	}
	return Check(ctx)
}

type fileInputStream struct {
	*handleStream
}

// NewFileInputStream opens a read-only session on h.
func NewFileInputStream(h Handle) FileInputStream {
	return &fileInputStream{handleStream: &handleStream{h: h}}
}

func (s *fileInputStream) Read(ctx context.Context, p []byte) (int, error) {
	return s.read(ctx, p)
}

func (s *fileInputStream) Close(ctx context.Context) error {
	return s.close()
}

func (s *fileInputStream) IsClosed() bool {
	return s.closed
}

func (s *fileInputStream) CanTruncate() bool {
	return false
}

func (s *fileInputStream) Truncate(ctx context.Context, size int64) error {
	return Errorf(NotSupported, "Truncate not supported on stream")
}

func (s *fileInputStream) Fd() (uintptr, bool) {
	return s.fd()
}

type fileIOStream struct {
	*handleStream
	in  *inputSide
	out *outputSide
}

// NewFileIOStream opens a read-write session on h. h must implement io.Writer.
func NewFileIOStream(h Handle) FileIOStream {
	s := &handleStream{h: h}
	return &fileIOStream{
		handleStream: s,
		in:           &inputSide{s: s},
		out:          &outputSide{s: s},
	}
}

func (s *fileIOStream) InputStream() InputStream {
	return s.in
}

func (s *fileIOStream) OutputStream() OutputStream {
	return s.out
}

func (s *fileIOStream) CanTruncate() bool {
	return s.canTruncate()
}

func (s *fileIOStream) Truncate(ctx context.Context, size int64) error {
	return s.truncate(ctx, size)
}

// Close flushes pending output and releases the handle. Both sides report
// closed afterwards.
func (s *fileIOStream) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	var flushErr error
	if f, ok := s.h.(flusher); ok && !s.out.closed {
		flushErr = FromError(f.Flush())
	}
	if err := s.close(); err != nil {
		return err
	}
	return flushErr
}

func (s *fileIOStream) IsClosed() bool {
	return s.closed
}

type inputSide struct {
	s      *handleStream
	closed bool
}

func (i *inputSide) Read(ctx context.Context, p []byte) (int, error) {
	if i.closed {
		return 0, Errorf(Closed, "Stream is already closed")
	}
	return i.s.read(ctx, p)
}

func (i *inputSide) Close(ctx context.Context) error {
	i.closed = true
	return nil
}

func (i *inputSide) IsClosed() bool {
	return i.closed || i.s.closed
}

func (i *inputSide) Fd() (uintptr, bool) {
	return i.s.fd()
}

type outputSide struct {
	s      *handleStream
	closed bool
}

func (o *outputSide) Write(ctx context.Context, p []byte) (int, error) {
	if o.closed {
		return 0, Errorf(Closed, "Stream is already closed")
	}
	return o.s.write(ctx, p)
}

func (o *outputSide) Flush(ctx context.Context) error {
	if o.closed {
		return Errorf(Closed, "Stream is already closed")
	}
	return o.s.flush(ctx)
}

func (o *outputSide) Tell() int64 {
	return o.s.pos
}

func (o *outputSide) Close(ctx context.Context) error {
	if o.IsClosed() {
		return nil
	}
	err := o.s.flush(ctx)
	o.closed = true
	return err
}

func (o *outputSide) IsClosed() bool {
	return o.closed || o.s.closed
}

var (
	_ FileInputStream = &fileInputStream{}
	_ FileIOStream    = &fileIOStream{}
	_ Descriptor      = &fileInputStream{}
	_ Descriptor      = &inputSide{}
)
