//go:build !windows

package vfile

import (
	"testing"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/vfsio/modules/vfs/local"
)

func TestTerminalLineBuffering(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	defer ptmx.Close() // nolint
	defer tty.Close()  // nolint

	res, err := local.New().Resource(tty.Name())
	require.NoError(t, err)

	// text streams on a terminal are line buffered unless asked otherwise
	f, err := Open(res, "r")
	require.NoError(t, err)
	text, ok := f.(*TextStream)
	require.True(t, ok)
	assert.True(t, text.IsTerminal())
	assert.True(t, text.LineBuffering())
	_, err = text.Fileno()
	assert.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = Open(res, "rb")
	require.NoError(t, err)
	assert.True(t, f.IsTerminal())
	require.NoError(t, f.Close())

	_, res2 := newLocal(t, "foo")
	text, err = OpenText(res2, "r")
	require.NoError(t, err)
	assert.False(t, text.IsTerminal())
	assert.False(t, text.LineBuffering())
	require.NoError(t, text.Close())
}
