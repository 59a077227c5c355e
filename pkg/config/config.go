// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads ~/.vfsio.toml: default open settings plus per-backend
// sections.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/antgroup/vfsio/pkg/vfile"
)

const (
	ENV_VFSIO_CONFIG = "VFSIO_CONFIG"
	defaultPath      = "~/.vfsio.toml"
)

type ErrBadConfigKey struct {
	key string
}

func (err *ErrBadConfigKey) Error() string {
	return fmt.Sprintf("bad vfsio config key '%s'", err.key)
}

func IsErrBadConfigKey(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*ErrBadConfigKey)
	return ok
}

type HTTP struct {
	Proxy     string            `toml:"proxy,omitempty"`
	NoProxy   string            `toml:"noProxy,omitempty"`
	UserAgent string            `toml:"userAgent,omitempty"`
	SSLVerify Boolean           `toml:"sslVerify,omitempty"`
	Header    map[string]string `toml:"header,omitempty"`
	CacheTTL  Duration          `toml:"cacheTTL,omitempty"`
}

type Local struct {
	// Root binds file resources below a directory.
	Root string `toml:"root,omitempty"`
}

type Archive struct {
	MaxSize Size `toml:"maxSize,omitempty"`
}

type Object struct {
	// MaxSize bounds objects opened read-write, which are staged in memory.
	MaxSize Size `toml:"maxSize,omitempty"`
}

type S3 struct {
	Region          string `toml:"region,omitempty"`
	Endpoint        string `toml:"endpoint,omitempty"`
	AccessKeyID     string `toml:"accessKeyID,omitempty"`
	SecretAccessKey string `toml:"secretAccessKey,omitempty"`
	SessionToken    string `toml:"sessionToken,omitempty"`
	PathStyle       bool   `toml:"pathStyle,omitempty"`
}

type GCS struct {
	CredentialsFile string `toml:"credentialsFile,omitempty"`
	Endpoint        string `toml:"endpoint,omitempty"`
	Anonymous       bool   `toml:"anonymous,omitempty"`
}

type Minio struct {
	Endpoint        string  `toml:"endpoint,omitempty"`
	AccessKeyID     string  `toml:"accessKeyID,omitempty"`
	SecretAccessKey string  `toml:"secretAccessKey,omitempty"`
	SessionToken    string  `toml:"sessionToken,omitempty"`
	Region          string  `toml:"region,omitempty"`
	Secure          Boolean `toml:"secure,omitempty"`
}

type Config struct {
	// Open holds default open settings, validated as vfile.Params.
	Open    vfile.Params `toml:"open,omitempty"`
	HTTP    HTTP         `toml:"http,omitempty"`
	Local   Local        `toml:"local,omitempty"`
	Archive Archive      `toml:"archive,omitempty"`
	Object  Object       `toml:"object,omitempty"`
	S3      S3           `toml:"s3,omitempty"`
	GCS     GCS          `toml:"gcs,omitempty"`
	Minio   Minio        `toml:"minio,omitempty"`
}

// OpenOptions converts the [open] table to vfile options.
func (c *Config) OpenOptions() ([]vfile.Option, error) {
	return c.Open.Options()
}

var (
	envOverrides = []struct {
		name  string
		field func(c *Config) *string
	}{
		{"VFSIO_LOCAL_ROOT", func(c *Config) *string { return &c.Local.Root }},
		{"VFSIO_HTTP_PROXY", func(c *Config) *string { return &c.HTTP.Proxy }},
		{"VFSIO_HTTP_USER_AGENT", func(c *Config) *string { return &c.HTTP.UserAgent }},
		{"VFSIO_S3_REGION", func(c *Config) *string { return &c.S3.Region }},
		{"VFSIO_S3_ENDPOINT", func(c *Config) *string { return &c.S3.Endpoint }},
		{"VFSIO_GCS_CREDENTIALS_FILE", func(c *Config) *string { return &c.GCS.CredentialsFile }},
		{"VFSIO_MINIO_ENDPOINT", func(c *Config) *string { return &c.Minio.Endpoint }},
	}
)

func (c *Config) applyEnv() {
	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(o.name); ok {
			*o.field(c) = v
		}
	}
}

// Decode reads a TOML document. Keys outside the schema are rejected, as
// are [open] settings vfile does not know.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, &ErrBadConfigKey{key: strings.Join(keys, ", ")}
	}
	if _, err := cfg.Open.Options(); err != nil {
		return nil, fmt.Errorf("[open]: %w", err)
	}
	return &cfg, nil
}

func LoadFile(p string) (*Config, error) {
	fd, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer fd.Close() // nolint
	cfg, err := Decode(fd)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p, err)
	}
	return cfg, nil
}

func configPath() string {
	if p, ok := os.LookupEnv(ENV_VFSIO_CONFIG); ok {
		return ExpandPath(p)
	}
	return ExpandPath(defaultPath)
}

// Load reads $VFSIO_CONFIG or ~/.vfsio.toml; a missing file yields the
// empty configuration. VFSIO_* environment variables override file values.
func Load() (*Config, error) {
	p := configPath()
	cfg, err := LoadFile(p)
	switch {
	case os.IsNotExist(err):
		cfg = &Config{}
	case err != nil:
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}
