package progress

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBar(t *testing.T) {
	b := newBar(io.Discard, "get a.bin", 4096)
	n, err := io.Copy(io.Discard, b.ProxyReader(strings.NewReader(strings.Repeat("x", 4096))))
	require.NoError(t, err)
	assert.Equal(t, int64(4096), n)
	assert.Equal(t, int64(4096), b.Current())
	b.Finish()
}

func TestBarUnknownSize(t *testing.T) {
	b := newBar(io.Discard, "get", 0)
	b.Add(10)
	assert.Equal(t, int64(10), b.Current())
	b.Abort()
}

func TestQuietBar(t *testing.T) {
	b := NewBar("get", 10, true)
	r := strings.NewReader("abc")
	assert.Equal(t, io.Reader(r), b.ProxyReader(r))
	b.Add(3)
	assert.Equal(t, int64(0), b.Current())
	b.Finish()
	b.Abort()
}

func TestIndicators(t *testing.T) {
	var out bytes.Buffer
	i := NewIndicators("Checksum", "Checksum done", 2, false)
	i.w = &out
	ctx, cancel := context.WithCancel(context.Background())
	i.Run(ctx)
	i.Add(1)
	i.Add(1)
	cancel()
	i.Wait()
	assert.Equal(t, uint64(2), i.Current())
	assert.Contains(t, out.String(), "100% (2/2) completed")
}
