// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package httpfs serves read-only, non-seekable http(s) resources.
package httpfs

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/net/http/httpproxy"
	"golang.org/x/sync/singleflight"

	"github.com/antgroup/vfsio/modules/vfs"
	"github.com/antgroup/vfsio/pkg/version"
)

const (
	defaultCacheTTL = time.Minute
)

type Options struct {
	// Proxy overrides HTTP_PROXY/HTTPS_PROXY/NO_PROXY when not empty.
	Proxy           string
	NoProxy         string
	UserAgent       string
	InsecureSkipTLS bool
	Header          map[string]string
	// CacheTTL bounds how long HEAD metadata is reused. Negative disables the cache.
	CacheTTL time.Duration
}

type Client struct {
	*http.Client
	userAgent string
	header    map[string]string
	ttl       time.Duration
	cache     *ristretto.Cache[string, *vfs.FileInfo]
	group     singleflight.Group
}

func proxyFunc(opts *Options) func(*http.Request) (*url.URL, error) {
	cfg := httpproxy.FromEnvironment()
	if len(opts.Proxy) != 0 {
		cfg.HTTPProxy = opts.Proxy
		cfg.HTTPSProxy = opts.Proxy
	}
	if len(opts.NoProxy) != 0 {
		cfg.NoProxy = opts.NoProxy
	}
	fn := cfg.ProxyFunc()
	return func(r *http.Request) (*url.URL, error) {
		return fn(r.URL)
	}
}

func New(opts *Options) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	c := &Client{
		Client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 proxyFunc(opts),
				DialContext:           dialer.DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: opts.InsecureSkipTLS,
				},
			},
		},
		userAgent: opts.UserAgent,
		header:    opts.Header,
		ttl:       opts.CacheTTL,
	}
	if len(c.userAgent) == 0 {
		c.userAgent = version.GetUserAgent()
	}
	if c.ttl == 0 {
		c.ttl = defaultCacheTTL
	}
	if c.ttl > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[string, *vfs.FileInfo]{
			NumCounters: 10000,
			MaxCost:     1000,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("unable initialize metadata cache, error: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Close releases the metadata cache.
func (c *Client) Close() error {
	if c.cache != nil {
		c.cache.Close()
	}
	return nil
}

func (c *Client) Resource(rawURL string) (*Resource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, vfs.Errorf(vfs.InvalidArgument, "Invalid URI '%s': %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, vfs.Errorf(vfs.NotSupported, "Operation not supported: scheme '%s'", u.Scheme)
	}
	return &Resource{c: c, u: u}, nil
}

func (c *Client) Opener() vfs.Opener {
	return func(ctx context.Context, u *url.URL) (vfs.Resource, error) {
		return c.Resource(u.String())
	}
}

func (c *Client) newRequest(ctx context.Context, method string, u *url.URL) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, vfs.FromError(err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method string, u *url.URL) (*http.Response, error) {
	if err := vfs.Check(ctx); err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, method, u)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, vfs.Check(ctx)
		}
		return nil, vfs.FromError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	code := vfs.Failed
	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		code = vfs.NotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		code = vfs.PermissionDenied
	case http.StatusMethodNotAllowed, http.StatusNotImplemented:
		code = vfs.NotSupported
	}
	return vfs.Errorf(code, "HTTP Error: %s", resp.Status)
}

// Resource is a remote http(s) resource. It has no local path.
type Resource struct {
	c *Client
	u *url.URL
}

func (r *Resource) Path() string {
	return ""
}

func (r *Resource) URI() string {
	return r.u.String()
}

// QueryInfo issues a HEAD request. Concurrent queries for one URI share a
// single request and results are cached for the client's TTL.
func (r *Resource) QueryInfo(ctx context.Context) (*vfs.FileInfo, error) {
	key := r.u.String()
	if r.c.cache != nil {
		if fi, ok := r.c.cache.Get(key); ok {
			return fi, nil
		}
	}
	v, err, _ := r.c.group.Do(key, func() (any, error) {
		resp, err := r.c.do(ctx, http.MethodHead, r.u)
		if err != nil {
			return nil, err
		}
		_ = resp.Body.Close()
		fi := fileInfo(r.u, resp)
		if r.c.cache != nil {
			r.c.cache.SetWithTTL(key, fi, 1, r.c.ttl)
		}
		return fi, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*vfs.FileInfo), nil
}

func fileInfo(u *url.URL, resp *http.Response) *vfs.FileInfo {
	fi := &vfs.FileInfo{
		DisplayName: displayName(u, resp.Header.Get("Content-Disposition")),
		Size:        -1,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil {
		fi.Size = n
	}
	if t, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		fi.ModTime = t
	}
	return fi
}

func displayName(u *url.URL, disposition string) string {
	if len(disposition) != 0 {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; len(name) != 0 {
				return path.Base(name)
			}
		}
	}
	if p := strings.TrimSuffix(u.Path, "/"); len(p) != 0 {
		return path.Base(p)
	}
	return u.Host
}

type bodyHandle struct {
	io.ReadCloser
}

// Read issues a GET request. The body is streamed and can not be seeked.
func (r *Resource) Read(ctx context.Context) (vfs.FileInputStream, error) {
	resp, err := r.c.do(ctx, http.MethodGet, r.u)
	if err != nil {
		return nil, err
	}
	return vfs.NewFileInputStream(&bodyHandle{ReadCloser: resp.Body}), nil
}

func (r *Resource) OpenReadWrite(ctx context.Context) (vfs.FileIOStream, error) {
	return nil, vfs.Errorf(vfs.NotSupported, "Operation not supported")
}

var (
	_ vfs.Resource = &Resource{}
)
