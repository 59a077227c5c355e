package vfile

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/vfsio/modules/vfs"
	"github.com/antgroup/vfsio/modules/vfs/httpfs"
	"github.com/antgroup/vfsio/modules/vfs/local"
)

func newLocal(t *testing.T, content string) (string, vfs.Resource) {
	t.Helper()
	p := filepath.Join(t.TempDir(), "foo")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	res, err := local.New().Resource(p)
	require.NoError(t, err)
	return p, res
}

func TestSeek(t *testing.T) {
	_, res := newLocal(t, "foo")
	for _, mode := range []string{"r", "rw", "rb", "r+b"} {
		f, err := Open(res, mode)
		require.NoError(t, err, mode)
		pos, err := f.Seek(0, io.SeekStart)
		require.NoError(t, err)
		assert.Equal(t, int64(0), pos)
		require.NoError(t, f.Close())
	}
}

func TestTell(t *testing.T) {
	_, res := newLocal(t, "foo")
	for _, mode := range []string{"rb", "r+b"} {
		for _, buffering := range []int{0, -1} {
			f, err := Open(res, mode, WithBuffering(buffering))
			require.NoError(t, err)
			pos, err := f.Seek(1, io.SeekStart)
			require.NoError(t, err)
			tell, err := f.Tell()
			require.NoError(t, err)
			assert.Equal(t, pos, tell)
			assert.Equal(t, int64(1), tell)
			require.NoError(t, f.Close())
		}
	}
}

func TestTruncate(t *testing.T) {
	p, res := newLocal(t, "")
	f, err := OpenBinary(res, "r+b")
	require.NoError(t, err)
	defer f.Close() // nolint

	require.NoError(t, os.WriteFile(p, []byte("foo"), 0o644))
	pos, err := f.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pos)
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	require.NoError(t, f.TruncateHere())
	pos, err = f.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
}

func TestClose(t *testing.T) {
	_, res := newLocal(t, "foo")
	for _, c := range []struct {
		mode      string
		buffering int
	}{
		{"r", -1},
		{"rw", -1},
		{"rb", 0},
		{"r+b", 0},
		{"rb", 64},
	} {
		f, err := Open(res, c.mode, WithBuffering(c.buffering))
		require.NoError(t, err)
		assert.False(t, f.Closed())
		require.NoError(t, f.Close())
		assert.True(t, f.Closed())
		require.NoError(t, f.Close())
	}
}

func TestReadableWritable(t *testing.T) {
	_, res := newLocal(t, "foo")
	f, err := Open(res, "rb")
	require.NoError(t, err)
	assert.True(t, f.Readable())
	assert.False(t, f.Writable())
	_, err = f.Write([]byte("x"))
	require.Error(t, err)
	assert.True(t, IsIOError(err))
	assert.EqualError(t, err, "read only")
	require.NoError(t, f.Close())

	f, err = Open(res, "r+b")
	require.NoError(t, err)
	assert.True(t, f.Readable())
	assert.True(t, f.Writable())
	require.NoError(t, f.Close())
}

func TestFileno(t *testing.T) {
	_, res := newLocal(t, "foo")
	f, err := Open(res, "rb")
	require.NoError(t, err)
	defer f.Close() // nolint
	_, err = f.Fileno()
	assert.NoError(t, err)
	assert.False(t, f.IsTerminal())
}

func TestReadWrite(t *testing.T) {
	p, res := newLocal(t, "foo")
	f, err := OpenBinary(res, "r+b")
	require.NoError(t, err)
	b := make([]byte, 1)
	n, err := f.Read(b)
	require.NoError(t, err)
	assert.Equal(t, "f", string(b[:n]))
	rest, err := f.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "oo", string(rest))
	n, err = f.Write([]byte("bar"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "foobar", string(data))
}

func TestFlushClosed(t *testing.T) {
	_, res := newLocal(t, "foo")
	for _, buffering := range []int{0, -1} {
		f, err := Open(res, "rb", WithBuffering(buffering))
		require.NoError(t, err)
		require.NoError(t, f.Close())
		assert.ErrorIs(t, f.Flush(), ErrClosed)
	}
}

func TestReadLine(t *testing.T) {
	_, res := newLocal(t, "foo\nbar")
	f, err := OpenBinary(res, "rb")
	require.NoError(t, err)
	defer f.Close() // nolint
	line, err := f.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "foo\n", string(line))
	line, err = f.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "bar", string(line))
	_, err = f.ReadLine()
	assert.Equal(t, io.EOF, err)
}

func TestLines(t *testing.T) {
	_, res := newLocal(t, "foo\nbar")
	f, err := OpenBinary(res, "rb")
	require.NoError(t, err)
	defer f.Close() // nolint
	var lines []string
	for line, err := range f.Lines() {
		require.NoError(t, err)
		lines = append(lines, string(line))
	}
	assert.Equal(t, []string{"foo\n", "bar"}, lines)

	ft, err := OpenText(res, "r")
	require.NoError(t, err)
	defer ft.Close() // nolint
	lines = lines[:0]
	for line, err := range ft.Lines() {
		require.NoError(t, err)
		lines = append(lines, line)
	}
	assert.Equal(t, []string{"foo\n", "bar"}, lines)
}

func TestReadInto(t *testing.T) {
	data := strings.Repeat("0123456789abcdef", 10*DefaultBufferSize/16)
	_, res := newLocal(t, data)
	for _, buffering := range []int{0, -1} {
		f, err := Open(res, "rb", WithBuffering(buffering))
		require.NoError(t, err)
		b, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, data, string(b))
		_, err = f.Seek(0, io.SeekStart)
		require.NoError(t, err)

		buf := make([]byte, len(data)+1)
		var n int
		switch s := f.(type) {
		case *RawFile:
			n, err = s.ReadInto(buf)
		case *BufferedStream:
			n, err = s.ReadInto(buf)
		}
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		assert.Equal(t, data, string(buf[:n]))
		require.NoError(t, f.Close())
	}
}

func TestBufferedReader(t *testing.T) {
	_, res := newLocal(t, "foo")
	f, err := OpenBinary(res, "rb")
	require.NoError(t, err)
	defer f.Close() // nolint
	p, err := f.Peek(3)
	require.NoError(t, err)
	assert.Equal(t, "foo", string(p))
	pos, err := f.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
	b, err := f.Read1(2)
	require.NoError(t, err)
	assert.Equal(t, "fo", string(b))
	b, err = f.Read1(-1)
	require.NoError(t, err)
	assert.Equal(t, "o", string(b))
	_, err = f.Read1(1)
	assert.Equal(t, io.EOF, err)
}

func TestBufferedWriter(t *testing.T) {
	p, res := newLocal(t, "foo")
	c := vfs.NewCancellable(context.Background())
	raw, err := NewRawFile(res, true, c)
	require.NoError(t, err)
	assert.Same(t, c, raw.Cancellable())
	w := bufio.NewWriter(raw)
	_, err = w.WriteString("x")
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	_, err = raw.Seek(0, io.SeekStart)
	require.NoError(t, err)
	b, err := io.ReadAll(raw)
	require.NoError(t, err)
	assert.Equal(t, "xoo", string(b))
	require.NoError(t, raw.Close())

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "xoo", string(data))
}

func TestRemote(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/files/{name}", func(w http.ResponseWriter, req *http.Request) {
		_, _ = io.WriteString(w, "remote "+mux.Vars(req)["name"])
	}).Methods(http.MethodGet, http.MethodHead)
	ts := httptest.NewServer(r)
	defer ts.Close()
	client, err := httpfs.New(&httpfs.Options{CacheTTL: -1})
	require.NoError(t, err)
	defer client.Close() // nolint

	res, err := client.Resource(ts.URL + "/files/data.txt")
	require.NoError(t, err)
	_, err = Open(res, "rw")
	require.Error(t, err)
	assert.True(t, IsIOError(err))

	f, err := Open(res, "rb")
	require.NoError(t, err)
	defer f.Close() // nolint
	assert.Equal(t, "data.txt", f.Name())
	assert.False(t, f.Seekable())
	_, err = f.Fileno()
	assert.EqualError(t, err, "No fileno available")
	assert.False(t, f.IsTerminal())
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "remote data.txt", string(b))
}

func TestOpenURI(t *testing.T) {
	p, _ := newLocal(t, "foo")
	reg := vfs.NewRegistry()
	reg.Register("file", local.New().Opener())
	f, err := OpenURI(reg, p, "r")
	require.NoError(t, err)
	assert.Equal(t, p, f.Name())
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "foo", string(b))
	require.NoError(t, f.Close())

	_, err = OpenURI(reg, "ftp://example.com/foo", "r")
	assert.True(t, IsIOError(err))
	_, err = OpenURI(reg, p, "w")
	assert.True(t, IsConfigError(err))
}

func TestParams(t *testing.T) {
	_, res := newLocal(t, "caf\xe9")
	_, err := OpenParams(res, "r", Params{"foo": 1, "bar": 2})
	var ue *UnknownParamsError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []string{"bar", "foo"}, ue.Keys)
	assert.True(t, IsConfigError(err))
	assert.EqualError(t, err, "unhandled open params: bar, foo")

	_, err = OpenParams(res, "r", Params{"buffering": "many"})
	assert.True(t, IsConfigError(err))

	f, err := OpenParams(res, "r", Params{"buffering": int64(16), "encoding": "latin-1", "newline": nil})
	require.NoError(t, err)
	defer f.Close() // nolint
	ts := f.(*TextStream)
	assert.Equal(t, "latin-1", ts.Encoding())
	assert.Equal(t, 16, ts.Buffer().BufferSize())
	s, err := ts.ReadString(-1)
	require.NoError(t, err)
	assert.Equal(t, "café", s)
}

func TestTextMode(t *testing.T) {
	_, res := newLocal(t, "foo")
	f, err := OpenText(res, "r")
	require.NoError(t, err)
	defer f.Close() // nolint
	s, err := f.ReadString(-1)
	require.NoError(t, err)
	assert.Equal(t, "foo", s)
	assert.Equal(t, "utf-8", f.Encoding())
	assert.Equal(t, "strict", f.Errors())
}

func TestLineBuffering(t *testing.T) {
	_, res := newLocal(t, "foo")
	f, err := OpenText(res, "r")
	require.NoError(t, err)
	assert.False(t, f.LineBuffering())
	require.NoError(t, f.Close())

	f, err = OpenText(res, "r", WithBuffering(1))
	require.NoError(t, err)
	assert.True(t, f.LineBuffering())
	require.NoError(t, f.Close())
}

func TestInvalidBuffering(t *testing.T) {
	_, res := newLocal(t, "foo")
	_, err := Open(res, "r", WithBuffering(0))
	assert.ErrorIs(t, err, ErrUnbufferedText)
	assert.True(t, IsConfigError(err))
	_, err = Open(res, "rb", WithBuffering(1))
	assert.ErrorIs(t, err, ErrLineBufferedBinary)
	assert.True(t, IsConfigError(err))

	// hand-built configs skip NewConfig validation
	c := &Config{Mode: ModeRead, Buffering: 0}
	_, err = c.Open(res)
	assert.ErrorIs(t, err, ErrUnbufferedText)
}

func TestInvalidConfig(t *testing.T) {
	for _, c := range []struct {
		mode string
		opts []Option
		msg  string
	}{
		{"w", nil, "write only not supported, use rw"},
		{"wb", nil, "write only not supported, use r+b"},
		{"a", nil, `mode "a" not supported, only r/rw/rb/r+b`},
		{"rb", []Option{WithEncoding("utf-8")}, "binary mode doesn't take an encoding argument"},
		{"rb", []Option{WithNewline(NewlineLF)}, "binary mode doesn't take a newline argument"},
		{"r", []Option{WithEncoding("klingon")}, "unknown encoding: klingon"},
		{"r", []Option{WithErrors("loud")}, `unknown error handler name "loud"`},
	} {
		_, err := NewConfig(c.mode, c.opts...)
		assert.EqualError(t, err, c.msg)
		assert.True(t, IsConfigError(err))
	}

	_, res := newLocal(t, "foo")
	_, err := OpenText(res, "rb")
	assert.True(t, IsConfigError(err))
	_, err = OpenBinary(res, "r")
	assert.True(t, IsConfigError(err))
	_, err = OpenBinary(res, "rb", WithBuffering(0))
	assert.True(t, IsConfigError(err))
}

func TestCancel(t *testing.T) {
	_, res := newLocal(t, "foo")
	c := vfs.NewCancellable(context.Background())
	f, err := Open(res, "rb", WithCancellable(c))
	require.NoError(t, err)
	c.Cancel()
	_, err = f.Read(make([]byte, 3))
	require.Error(t, err)
	assert.True(t, IsIOError(err))
	assert.True(t, errors.Is(err, ErrCancelled))
	assert.EqualError(t, err, "Operation was cancelled")
	require.NoError(t, f.Close())
	assert.True(t, f.Closed())
}

func TestOpenMissing(t *testing.T) {
	res, err := local.New().Resource(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	_, err = Open(res, "r")
	require.Error(t, err)
	assert.True(t, IsIOError(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
