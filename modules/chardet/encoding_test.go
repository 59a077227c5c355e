package chardet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func TestLookup(t *testing.T) {
	e, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, unicode.UTF8, e)

	e, err = Lookup("Latin_1")
	require.NoError(t, err)
	assert.Equal(t, charmap.ISO8859_1, e)

	e, err = Lookup("sjis")
	require.NoError(t, err)
	b, err := e.NewEncoder().Bytes([]byte("日本"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x93, 0xfa, 0x96, 0x7b}, b)

	_, err = Lookup("no-such-codec")
	assert.EqualError(t, err, "unknown encoding: no-such-codec")

	assert.True(t, IsUTF8("UTF-8"))
	assert.False(t, IsUTF8("gbk"))
}
