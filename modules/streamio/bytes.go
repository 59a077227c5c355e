// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package streamio

import (
	"io"
	"sync"
)

const (
	copyBufferSize = 32 * 1024
)

var (
	byteSlice = sync.Pool{
		New: func() any {
			b := make([]byte, copyBufferSize)
			return &b
		},
	}
)

// GetByteSlice returns a *[]byte that is managed by a sync.Pool.
// The initial slice length will be 32768 (32kb).
//
// After use, the *[]byte should be put back into the sync.Pool
// by calling PutByteSlice.
func GetByteSlice() *[]byte {
	return byteSlice.Get().(*[]byte)
}

// PutByteSlice puts buf back into its sync.Pool.
func PutByteSlice(buf *[]byte) {
	byteSlice.Put(buf)
}

// Copy copy reader to writer
func Copy(dst io.Writer, src io.Reader) (written int64, err error) {
	buf := GetByteSlice()
	defer PutByteSlice(buf)
	return io.CopyBuffer(dst, src, *buf)
}
