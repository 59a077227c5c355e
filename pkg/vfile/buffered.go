// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfile

import (
	"bufio"
	"io"
	"iter"
)

// BufferedStream adds read and write buffering to a Stream. Read-ahead and
// pending writes are never held at the same time: writing first rewinds the
// underlying stream over unread buffered bytes, reading first flushes.
type BufferedStream struct {
	raw    Stream
	size   int
	r      *bufio.Reader
	w      *bufio.Writer
	closed bool
}

func NewBufferedStream(raw Stream, size int) *BufferedStream {
	if size <= 0 {
		size = DefaultBufferSize
	}
	b := &BufferedStream{raw: raw, size: size, r: bufio.NewReaderSize(raw, size)}
	if raw.Writable() {
		b.w = bufio.NewWriterSize(raw, size)
	}
	return b
}

func (b *BufferedStream) Raw() Stream {
	return b.raw
}

func (b *BufferedStream) BufferSize() int {
	return b.size
}

func (b *BufferedStream) check() error {
	if b.Closed() {
		return ErrClosed
	}
	return nil
}

func (b *BufferedStream) flushWrites() error {
	if b.w == nil || b.w.Buffered() == 0 {
		return nil
	}
	return b.w.Flush()
}

// dropReadAhead moves the underlying position back over bytes read ahead
// but not consumed.
func (b *BufferedStream) dropReadAhead() error {
	if n := b.r.Buffered(); n > 0 {
		if _, err := b.raw.Seek(-int64(n), io.SeekCurrent); err != nil {
			return err
		}
	}
	b.r.Reset(b.raw)
	return nil
}

func (b *BufferedStream) beforeRead() error {
	if err := b.check(); err != nil {
		return err
	}
	return b.flushWrites()
}

func (b *BufferedStream) Read(p []byte) (int, error) {
	if err := b.beforeRead(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	return b.r.Read(p)
}

// ReadInto fills p as far as the stream allows. 0 means end of stream.
func (b *BufferedStream) ReadInto(p []byte) (int, error) {
	if err := b.beforeRead(); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(b.r, p)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	return n, err
}

// Read1 returns at most n bytes using at most one read from the underlying
// stream. A negative n reads up to the buffer size.
func (b *BufferedStream) Read1(n int) ([]byte, error) {
	if err := b.beforeRead(); err != nil {
		return nil, err
	}
	if n < 0 {
		n = b.size
	}
	if n == 0 {
		return []byte{}, nil
	}
	if b.r.Buffered() == 0 {
		if _, err := b.r.Peek(1); err != nil {
			return nil, err
		}
	}
	p := make([]byte, min(n, b.r.Buffered()))
	_, err := b.r.Read(p)
	return p, err
}

// Peek returns the next n bytes without advancing. It returns fewer at the
// end of the stream or when n exceeds the buffer size. The result is only
// valid until the next read.
func (b *BufferedStream) Peek(n int) ([]byte, error) {
	if err := b.beforeRead(); err != nil {
		return nil, err
	}
	n = max(n, 1)
	p, err := b.r.Peek(min(n, b.size))
	if len(p) != 0 {
		return p, nil
	}
	return nil, err
}

func (b *BufferedStream) ReadAll() ([]byte, error) {
	if err := b.beforeRead(); err != nil {
		return nil, err
	}
	return io.ReadAll(b.r)
}

// ReadLine returns the next line including its '\n', or io.EOF once the
// stream is exhausted.
func (b *BufferedStream) ReadLine() ([]byte, error) {
	if err := b.beforeRead(); err != nil {
		return nil, err
	}
	line, err := b.r.ReadBytes('\n')
	if err == io.EOF && len(line) != 0 {
		return line, nil
	}
	return line, err
}

// Lines iterates over the remaining lines.
func (b *BufferedStream) Lines() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			line, err := b.ReadLine()
			if err == io.EOF {
				return
			}
			if !yield(line, err) || err != nil {
				return
			}
		}
	}
}

func (b *BufferedStream) beforeWrite() error {
	if err := b.check(); err != nil {
		return err
	}
	if b.w == nil {
		return errReadOnly("write", b.raw.Name())
	}
	return b.dropReadAhead()
}

func (b *BufferedStream) Write(p []byte) (int, error) {
	if err := b.beforeWrite(); err != nil {
		return 0, err
	}
	return b.w.Write(p)
}

func (b *BufferedStream) WriteString(s string) (int, error) {
	if err := b.beforeWrite(); err != nil {
		return 0, err
	}
	return b.w.WriteString(s)
}

// Flush writes pending bytes and flushes the underlying stream.
func (b *BufferedStream) Flush() error {
	if err := b.check(); err != nil {
		return err
	}
	if err := b.flushWrites(); err != nil {
		return err
	}
	return b.raw.Flush()
}

func (b *BufferedStream) Tell() (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	pos, err := b.raw.Tell()
	if err != nil {
		return 0, err
	}
	pos -= int64(b.r.Buffered())
	if b.w != nil {
		pos += int64(b.w.Buffered())
	}
	return pos, nil
}

func (b *BufferedStream) Seek(offset int64, whence int) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}
	if err := b.flushWrites(); err != nil {
		return 0, err
	}
	if whence == io.SeekCurrent {
		offset -= int64(b.r.Buffered())
	}
	b.r.Reset(b.raw)
	return b.raw.Seek(offset, whence)
}

// Truncate resizes the stream to size bytes after flushing pending writes.
// The logical position is unchanged.
func (b *BufferedStream) Truncate(size int64) error {
	if err := b.check(); err != nil {
		return err
	}
	if err := b.flushWrites(); err != nil {
		return err
	}
	if b.w != nil {
		if err := b.dropReadAhead(); err != nil {
			return err
		}
	}
	return b.raw.Truncate(size)
}

func (b *BufferedStream) TruncateHere() error {
	pos, err := b.Tell()
	if err != nil {
		return err
	}
	return b.Truncate(pos)
}

// Close flushes pending writes and closes the underlying stream. Closing a
// closed stream is a no-op.
func (b *BufferedStream) Close() error {
	if b.Closed() {
		return nil
	}
	err := b.flushWrites()
	b.closed = true
	if cerr := b.raw.Close(); err == nil {
		err = cerr
	}
	return err
}

func (b *BufferedStream) Closed() bool {
	return b.closed || b.raw.Closed()
}

func (b *BufferedStream) Readable() bool {
	return b.raw.Readable()
}

func (b *BufferedStream) Writable() bool {
	return b.raw.Writable()
}

func (b *BufferedStream) Seekable() bool {
	return b.raw.Seekable()
}

func (b *BufferedStream) Name() string {
	return b.raw.Name()
}

func (b *BufferedStream) Fileno() (uintptr, error) {
	return b.raw.Fileno()
}

func (b *BufferedStream) IsTerminal() bool {
	return b.raw.IsTerminal()
}

var (
	_ Stream = &BufferedStream{}
)
