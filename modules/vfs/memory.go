// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"errors"
	"io"
	"io/fs"
)

// MemoryHandle is a seekable, truncatable in-memory Handle for resources
// whose content is materialised locally. When commit is non-nil, Flush and
// Close hand modified content back to it.
type MemoryHandle struct {
	data   []byte
	pos    int64
	dirty  bool
	closed bool
	commit func(data []byte) error
}

func NewMemoryHandle(data []byte, commit func(data []byte) error) *MemoryHandle {
	return &MemoryHandle{data: data, commit: commit}
}

func (m *MemoryHandle) Read(p []byte) (int, error) {
	if m.closed {
		return 0, fs.ErrClosed
	}
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *MemoryHandle) Write(p []byte) (int, error) {
	if m.closed {
		return 0, fs.ErrClosed
	}
	if m.commit == nil {
		return 0, errors.ErrUnsupported
	}
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		m.grow(end)
	}
	n := copy(m.data[m.pos:], p)
	m.pos += int64(n)
	m.dirty = true
	return n, nil
}

func (m *MemoryHandle) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.pos + offset
	case io.SeekEnd:
		abs = int64(len(m.data)) + offset
	default:
		return m.pos, fs.ErrInvalid
	}
	if abs < 0 {
		return m.pos, fs.ErrInvalid
	}
	m.pos = abs
	return abs, nil
}

func (m *MemoryHandle) Truncate(size int64) error {
	if m.commit == nil {
		return errors.ErrUnsupported
	}
	if size < int64(len(m.data)) {
		m.data = m.data[:size]
	} else {
		m.grow(size)
	}
	m.dirty = true
	return nil
}

func (m *MemoryHandle) grow(size int64) {
	if size <= int64(cap(m.data)) {
		old := len(m.data)
		m.data = m.data[:size]
		clear(m.data[old:])
		return
	}
	data := make([]byte, size, size+size/4)
	copy(data, m.data)
	m.data = data
}

func (m *MemoryHandle) Flush() error {
	if !m.dirty || m.commit == nil {
		return nil
	}
	if err := m.commit(m.data); err != nil {
		return err
	}
	m.dirty = false
	return nil
}

func (m *MemoryHandle) Close() error {
	if m.closed {
		return nil
	}
	err := m.Flush()
	m.closed = true
	return err
}

// Bytes returns the current content.
func (m *MemoryHandle) Bytes() []byte {
	return m.data
}
