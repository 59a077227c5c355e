package vfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResource struct {
	u *url.URL
}

func (s *stubResource) Path() string { return "" }
func (s *stubResource) URI() string  { return s.u.String() }
func (s *stubResource) QueryInfo(ctx context.Context) (*FileInfo, error) {
	return nil, Errorf(NotSupported, "not supported")
}
func (s *stubResource) Read(ctx context.Context) (FileInputStream, error) {
	return nil, Errorf(NotSupported, "not supported")
}
func (s *stubResource) OpenReadWrite(ctx context.Context) (FileIOStream, error) {
	return nil, Errorf(NotSupported, "not supported")
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	opener := func(ctx context.Context, u *url.URL) (Resource, error) {
		return &stubResource{u: u}, nil
	}
	r.Register("HTTP", opener)
	r.Register("file", opener)
	assert.Equal(t, []string{"file", "http"}, r.Schemes())

	res, err := r.Resolve(context.Background(), "http://example.com/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/a.txt", res.URI())

	dir := t.TempDir()
	res, err = r.Resolve(context.Background(), filepath.Join(dir, "x"))
	require.NoError(t, err)
	u, err := url.Parse(res.URI())
	require.NoError(t, err)
	assert.Equal(t, "file", u.Scheme)

	_, err = r.Resolve(context.Background(), "ftp://example.com/x")
	assert.True(t, IsCode(err, NotSupported))
	_, err = r.Resolve(context.Background(), "")
	assert.True(t, IsCode(err, InvalidArgument))
}

func TestFromError(t *testing.T) {
	_, statErr := os.Stat(filepath.Join(t.TempDir(), "missing"))
	for _, c := range []struct {
		err  error
		code ErrorCode
	}{
		{statErr, NotFound},
		{context.Canceled, Cancelled},
		{fmt.Errorf("wrap: %w", fs.ErrPermission), PermissionDenied},
		{errors.ErrUnsupported, NotSupported},
		{errors.New("boom"), Failed},
	} {
		err := FromError(c.err)
		assert.True(t, IsCode(err, c.code), "%v => %v", c.err, err)
		assert.Equal(t, c.err.Error(), err.Error())
	}
	assert.NoError(t, FromError(nil))
}
