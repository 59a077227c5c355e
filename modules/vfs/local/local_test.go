package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/vfsio/modules/vfs"
)

func TestReadWrite(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "foo.txt")
	require.NoError(t, os.WriteFile(p, []byte("hello world"), 0o644))

	r, err := New().Resource(p)
	require.NoError(t, err)
	assert.Equal(t, p, r.Path())

	fi, err := r.QueryInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "foo.txt", fi.DisplayName)
	assert.Equal(t, int64(11), fi.Size)
	assert.Contains(t, fi.ContentType, "text/plain")

	s, err := r.OpenReadWrite(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Seek(ctx, 6, vfs.SeekSet))
	_, err = s.OutputStream().Write(ctx, []byte("there"))
	require.NoError(t, err)
	require.NoError(t, s.Truncate(ctx, 8))
	require.NoError(t, s.Close(ctx))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "hello th", string(b))

	in, err := r.Read(ctx)
	require.NoError(t, err)
	_, ok := in.(vfs.Descriptor).Fd()
	assert.True(t, ok)
	require.NoError(t, in.Close(ctx))
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r, err := New().Resource(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	_, err = r.Read(ctx)
	assert.True(t, vfs.IsCode(err, vfs.NotFound))
	_, err = r.OpenReadWrite(ctx)
	assert.True(t, vfs.IsCode(err, vfs.NotFound))

	d, err := New().Resource(dir)
	require.NoError(t, err)
	_, err = d.Read(ctx)
	assert.True(t, vfs.IsCode(err, vfs.IsDirectory))
}

func TestBound(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewBound(dir)
	require.NoError(t, err)
	r, err := fs.Resource("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fs.Root(), "etc", "passwd"), r.Path())

	r, err = fs.Resource(filepath.Join(fs.Root(), "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fs.Root(), "a.txt"), r.Path())
}

func TestOpener(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.bin")
	reg := vfs.NewRegistry()
	reg.Register("file", New().Opener())
	res, err := reg.Resolve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p, res.Path())

	_, err = reg.Resolve(context.Background(), "file://remote-host/x")
	assert.True(t, vfs.IsCode(err, vfs.NotSupported))
}
