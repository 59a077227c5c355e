// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package streamio

import (
	"bytes"
	"fmt"
	"io"
)

// ErrTooLarge is returned by ReadMax when r holds more than n bytes.
type ErrTooLarge struct {
	Limit int64
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("content exceeds the %d bytes limit", e.Limit)
}

// ReadMax reads all of r, failing when it yields more than n bytes. grow is
// the initial buffer size hint; n is used when grow <= 0.
func ReadMax(r io.Reader, n int64, grow int) ([]byte, error) {
	var buf bytes.Buffer
	if grow <= 0 || int64(grow) > n {
		grow = int(min(n, copyBufferSize))
	}
	buf.Grow(grow)
	if _, err := buf.ReadFrom(io.LimitReader(r, n+1)); err != nil {
		return nil, err
	}
	if int64(buf.Len()) > n {
		return nil, &ErrTooLarge{Limit: n}
	}
	return buf.Bytes(), nil
}
