package backends

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/vfsio/modules/vfs"
	"github.com/antgroup/vfsio/pkg/config"
	"github.com/antgroup/vfsio/pkg/vfile"
)

func TestSchemes(t *testing.T) {
	b, err := New(nil)
	require.NoError(t, err)
	defer b.Close() // nolint
	assert.Equal(t, []string{"archive", "file", "gs", "http", "https", "mem", "minio", "s3"}, b.Schemes())
}

func TestLocalRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	b, err := New(&config.Config{Local: config.Local{Root: dir}})
	require.NoError(t, err)
	defer b.Close() // nolint

	res, err := b.Resolve(context.Background(), "/a.txt")
	require.NoError(t, err)
	f, err := vfile.Open(res, "r")
	require.NoError(t, err)
	defer f.Close() // nolint
	text, err := f.(*vfile.TextStream).ReadString(-1)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestMemory(t *testing.T) {
	b, err := New(&config.Config{})
	require.NoError(t, err)
	defer b.Close() // nolint
	require.NoError(t, util.WriteFile(b.Memory.Filesystem(), "/notes/x.txt", []byte("abc"), 0o644))

	res, err := b.Resolve(context.Background(), "mem:///notes/x.txt")
	require.NoError(t, err)
	f, err := vfile.Open(res, "r+b")
	require.NoError(t, err)
	_, err = f.Seek(0, 2)
	require.NoError(t, err)
	_, err = f.Write([]byte("def"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := util.ReadFile(b.Memory.Filesystem(), "/notes/x.txt")
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(data))
}

func TestMinioUnconfigured(t *testing.T) {
	b, err := New(&config.Config{})
	require.NoError(t, err)
	defer b.Close() // nolint
	_, err = b.Resolve(context.Background(), "minio://bucket/key")
	require.Error(t, err)
	assert.True(t, vfs.IsCode(err, vfs.InvalidArgument))
}
