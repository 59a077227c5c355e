package vfile

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffered(t *testing.T, res *memResource, writable bool, size int) *BufferedStream {
	t.Helper()
	raw, err := NewRawFile(res, writable, nil)
	require.NoError(t, err)
	return NewBufferedStream(raw, size)
}

func TestBufferedWriteAfterRead(t *testing.T) {
	res := &memResource{data: []byte("0123456789")}
	b := newBuffered(t, res, true, 16)
	p := make([]byte, 3)
	_, err := io.ReadFull(b, p)
	require.NoError(t, err)
	assert.Equal(t, "012", string(p))
	pos, err := b.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(3), pos)

	_, err = b.WriteString("ab")
	require.NoError(t, err)
	pos, err = b.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(5), pos)

	rest, err := b.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "56789", string(rest))
	require.NoError(t, b.Close())
	assert.Equal(t, "012ab56789", string(res.data))
}

func TestBufferedSeekCurrent(t *testing.T) {
	b := newBuffered(t, &memResource{data: []byte("0123456789")}, false, 16)
	defer b.Close() // nolint
	p, err := b.Peek(4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(p))
	_, err = b.Read(make([]byte, 2))
	require.NoError(t, err)
	pos, err := b.Seek(3, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(5), pos)
	c, err := b.Read1(1)
	require.NoError(t, err)
	assert.Equal(t, "5", string(c))
}

func TestBufferedTruncate(t *testing.T) {
	res := &memResource{data: []byte("0123456789")}
	b := newBuffered(t, res, true, 16)
	_, err := b.Read(make([]byte, 4))
	require.NoError(t, err)
	require.NoError(t, b.TruncateHere())
	pos, err := b.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)
	_, err = b.WriteString("x")
	require.NoError(t, err)
	require.NoError(t, b.Flush())
	assert.Equal(t, "0123x", string(res.data))
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Flush(), ErrClosed)
	_, err = b.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBufferedReadOnlyWrite(t *testing.T) {
	b := newBuffered(t, &memResource{data: []byte("abc")}, false, 0)
	defer b.Close() // nolint
	assert.Equal(t, DefaultBufferSize, b.BufferSize())
	_, err := b.Write([]byte("x"))
	assert.True(t, IsIOError(err))
	line, err := b.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "abc", string(line))
}
