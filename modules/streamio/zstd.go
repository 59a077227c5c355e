// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package streamio

import (
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	zstdReader = sync.Pool{
		New: func() any {
			d, _ := zstd.NewReader(nil)
			return &ZstdDecoder{
				Decoder: d,
			}
		},
	}
	zstdWriter = sync.Pool{
		New: func() any {
			e, _ := zstd.NewWriter(nil)
			return &ZstdEncoder{
				Encoder: e,
			}
		},
	}
	gzipReader = sync.Pool{
		New: func() any {
			return new(gzip.Reader)
		},
	}
)

type ZstdDecoder struct {
	*zstd.Decoder
}

// GetZstdReader returns a ZstdDecoder that is managed by a sync.Pool,
// reset to read from r.
//
// After use, the ZstdDecoder should be put back into the sync.Pool
// by calling PutZstdReader.
func GetZstdReader(r io.Reader) (*ZstdDecoder, error) {
	z := zstdReader.Get().(*ZstdDecoder)
	err := z.Reset(r)
	return z, err
}

// PutZstdReader puts z back into its sync.Pool.
func PutZstdReader(z *ZstdDecoder) {
	zstdReader.Put(z)
}

type ZstdEncoder struct {
	*zstd.Encoder
}

// GetZstdWriter returns a *ZstdEncoder that is managed by a sync.Pool.
// Returns a writer that is reset with w and ready for use.
//
// After use, the *ZstdEncoder should be put back into the sync.Pool
// by calling PutZstdWriter.
func GetZstdWriter(w io.Writer) *ZstdEncoder {
	z := zstdWriter.Get().(*ZstdEncoder)
	z.Reset(w)
	return z
}

// PutZstdWriter flushes w and puts it back into its sync.Pool.
func PutZstdWriter(w *ZstdEncoder) error {
	err := w.Encoder.Close()
	zstdWriter.Put(w)
	return err
}

// GetGzipReader returns a *gzip.Reader that is managed by a sync.Pool,
// reset to read from r.
//
// After use, the reader should be put back by calling PutGzipReader.
func GetGzipReader(r io.Reader) (*gzip.Reader, error) {
	z := gzipReader.Get().(*gzip.Reader)
	if err := z.Reset(r); err != nil {
		gzipReader.Put(z)
		return nil, err
	}
	return z, nil
}

func PutGzipReader(z *gzip.Reader) {
	_ = z.Close()
	gzipReader.Put(z)
}
