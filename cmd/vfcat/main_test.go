package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/antgroup/vfsio/modules/vfs"
)

func newGlobals(t *testing.T, cfg string) (*Globals, *bytes.Buffer) {
	p := filepath.Join(t.TempDir(), "vfsio.toml")
	require.NoError(t, os.WriteFile(p, []byte(cfg), 0o644))
	var out bytes.Buffer
	g := &Globals{Config: p, stdout: &out, cancellable: vfs.NewCancellable(context.Background())}
	t.Cleanup(g.Close)
	return g, &out
}

func writeFile(t *testing.T, name, content string) string {
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestCat(t *testing.T) {
	g, out := newGlobals(t, "[open]\nbuffering = 16\n")
	a := writeFile(t, "a.txt", "foo\r\nbar\n")
	b := writeFile(t, "b.bin", "\x00\x01")
	require.NoError(t, (&Cat{URIs: []string{a}, Buffering: -1}).Run(g))
	assert.Equal(t, "foo\nbar\n", out.String())

	out.Reset()
	require.NoError(t, (&Cat{URIs: []string{a, b}, Binary: true, Buffering: 0}).Run(g))
	assert.Equal(t, "foo\r\nbar\n\x00\x01", out.String())

	err := (&Cat{URIs: []string{a}, Buffering: 0}).Run(g)
	require.Error(t, err)
}

func TestCatEncoding(t *testing.T) {
	g, out := newGlobals(t, "[open]\nencoding = \"latin-1\"\n")
	p := writeFile(t, "l1.txt", "caf\xe9")
	require.NoError(t, (&Cat{URIs: []string{p}, Buffering: -1}).Run(g))
	assert.Equal(t, "café", out.String())

	// binary mode ignores text settings from the config
	out.Reset()
	require.NoError(t, (&Cat{URIs: []string{p}, Binary: true, Buffering: -1}).Run(g))
	assert.Equal(t, "caf\xe9", out.String())
}

func TestHead(t *testing.T) {
	g, out := newGlobals(t, "")
	p := writeFile(t, "lines.txt", "1\n2\n3\n4\n")
	require.NoError(t, (&Head{URI: p, Lines: 2}).Run(g))
	assert.Equal(t, "1\n2\n", out.String())
}

func TestInfo(t *testing.T) {
	g, out := newGlobals(t, "")
	p := writeFile(t, "hello.txt", "hello world")
	require.NoError(t, (&Info{URIs: []string{p}}).Run(g))
	s := out.String()
	assert.Contains(t, s, "Name:         "+p)
	assert.Contains(t, s, "Size:         11 B (11 bytes)")
	assert.Contains(t, s, "text/plain")
	assert.Contains(t, s, "Seekable:     yes")
	assert.Contains(t, s, "Fileno:")
}

func TestSum(t *testing.T) {
	g, out := newGlobals(t, "")
	a := writeFile(t, "a", "abc")
	b := writeFile(t, "b", strings.Repeat("x", 100000))
	require.NoError(t, (&Sum{Algo: "blake3", Jobs: 2, URIs: []string{a, b}, Quiet: true}).Run(g))
	want := blake3.Sum256([]byte("abc"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, hex.EncodeToString(want[:])+"  "+a, lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "  "+b))

	out.Reset()
	require.NoError(t, (&Sum{Algo: "sha256", Jobs: 1, URIs: []string{a}}).Run(g))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad  "+a+"\n", out.String())

	err := (&Sum{Algo: "blake2b", Jobs: 1, URIs: []string{a, filepath.Join(t.TempDir(), "missing")}}).Run(g)
	require.Error(t, err)
}

func TestGetPut(t *testing.T) {
	g, _ := newGlobals(t, "")
	src := writeFile(t, "src.bin", "payload")
	dst := filepath.Join(t.TempDir(), "copy.bin")
	require.NoError(t, (&Get{URI: src, Output: dst, Quiet: true}).Run(g))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	target := writeFile(t, "target.txt", "a much longer previous text")
	require.NoError(t, (&Put{Source: src, Destination: target}).Run(g))
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, (&Put{Source: src, Destination: target, Append: true}).Run(g))
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "payloadpayload", string(data))

	err = (&Put{Source: src, Destination: filepath.Join(t.TempDir(), "missing")}).Run(g)
	require.Error(t, err)
}

func TestMemoryScheme(t *testing.T) {
	g, out := newGlobals(t, "")
	require.NoError(t, g.load())
	fs := g.b.Memory.Filesystem()
	fd, err := fs.Create("/m.txt")
	require.NoError(t, err)
	_, err = fd.Write([]byte("old"))
	require.NoError(t, err)
	require.NoError(t, fd.Close())

	src := writeFile(t, "new.txt", "new content\n")
	require.NoError(t, (&Put{Source: src, Destination: "mem:///m.txt"}).Run(g))
	require.NoError(t, (&Cat{URIs: []string{"mem:///m.txt"}, Buffering: -1}).Run(g))
	assert.Equal(t, "new content\n", out.String())
}
