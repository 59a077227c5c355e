package streamio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMax(t *testing.T) {
	text := `XZXdewdieded3oifdjfrf4frewfrfreferwfgrewfreferferfdedoidqjwqdjqedo3qjhd3hqdiwqehdro3eidhewdiehdbweqdgewdgewdedewgdbe`
	b, err := ReadMax(strings.NewReader(text), int64(len(text)), 10)
	require.NoError(t, err)
	assert.Equal(t, text, string(b))

	_, err = ReadMax(strings.NewReader(text), 10, 0)
	var tooLarge *ErrTooLarge
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(10), tooLarge.Limit)
}

func TestCopy(t *testing.T) {
	src := strings.Repeat("0123456789", 10000)
	var dst bytes.Buffer
	n, err := Copy(&dst, strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, int64(len(src)), n)
	assert.Equal(t, src, dst.String())
}
