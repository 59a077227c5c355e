package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[open]
buffering = 4096
encoding = "utf-8"
newline = "\n"

[http]
proxy = "http://127.0.0.1:8080"
sslVerify = "no"
cacheTTL = "30s"
[http.header]
X-Token = "abc"

[local]
root = "/srv/data"

[archive]
maxSize = "64MiB"

[s3]
region = "eu-west-1"
pathStyle = true

[minio]
endpoint = "127.0.0.1:9000"
secure = false
`

func TestDecode(t *testing.T) {
	cfg, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.HTTP.Proxy)
	assert.False(t, cfg.HTTP.SSLVerify.IsUnset())
	assert.False(t, cfg.HTTP.SSLVerify.True())
	assert.Equal(t, 30*time.Second, cfg.HTTP.CacheTTL.Duration)
	assert.Equal(t, "abc", cfg.HTTP.Header["X-Token"])
	assert.Equal(t, "/srv/data", cfg.Local.Root)
	assert.Equal(t, int64(64<<20), cfg.Archive.MaxSize.Size)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
	assert.True(t, cfg.S3.PathStyle)
	assert.False(t, cfg.Minio.Secure.IsUnset())
	assert.True(t, cfg.GCS.CredentialsFile == "")

	opts, err := cfg.OpenOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 3)
}

func TestDecodeBadKey(t *testing.T) {
	_, err := Decode(strings.NewReader("[http]\ntimeout = 3\n"))
	require.Error(t, err)
	assert.True(t, IsErrBadConfigKey(err))
	assert.Contains(t, err.Error(), "http.timeout")
}

func TestDecodeBadOpen(t *testing.T) {
	_, err := Decode(strings.NewReader("[open]\nfoo = 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unhandled open params: foo")

	_, err = Decode(strings.NewReader("[archive]\nmaxSize = \"lots\"\n"))
	require.Error(t, err)
}

func TestBoolean(t *testing.T) {
	var b Boolean
	assert.True(t, b.IsUnset())
	b.Merge(&True)
	assert.True(t, b.True())
	b.Merge(&False)
	assert.True(t, b.True())
	for _, s := range []string{"yes", "on", "1", "TRUE"} {
		var v Boolean
		require.NoError(t, v.UnmarshalTOML(s))
		assert.True(t, v.True(), s)
	}
	assert.Error(t, b.UnmarshalTOML("maybe"))
	assert.Error(t, b.UnmarshalTOML(1.5))
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "vfsio.toml")
	t.Setenv(ENV_VFSIO_CONFIG, p)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Local.Root)

	require.NoError(t, os.WriteFile(p, []byte("[local]\nroot = \"/a\"\n[s3]\nregion = \"x\"\n"), 0o644))
	t.Setenv("VFSIO_S3_REGION", "y")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "/a", cfg.Local.Root)
	assert.Equal(t, "y", cfg.S3.Region)

	require.NoError(t, os.WriteFile(p, []byte("bad = \n"), 0o644))
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), p)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".vfsio.toml"), ExpandPath("~/.vfsio.toml"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "/etc/vfsio.toml", ExpandPath("/etc/vfsio.toml"))
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "a.toml"), ExpandPath("a.toml"))
}
