// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"context"
	"io"
)

type streamReader struct {
	ctx context.Context
	in  InputStream
}

// NewReader adapts in to an io.Reader bound to ctx. The zero-length read
// that ends a stream becomes io.EOF.
func NewReader(ctx context.Context, in InputStream) io.Reader {
	return &streamReader{ctx: ctx, in: in}
}

func (r *streamReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := r.in.Read(r.ctx, p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}
