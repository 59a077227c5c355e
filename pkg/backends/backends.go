// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package backends assembles a vfs.Registry from configuration.
package backends

import (
	"context"
	"errors"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/sirupsen/logrus"

	"github.com/antgroup/vfsio/modules/vfs"
	"github.com/antgroup/vfsio/modules/vfs/archive"
	"github.com/antgroup/vfsio/modules/vfs/billyfs"
	"github.com/antgroup/vfsio/modules/vfs/httpfs"
	"github.com/antgroup/vfsio/modules/vfs/local"
	"github.com/antgroup/vfsio/modules/vfs/object"
	"github.com/antgroup/vfsio/modules/vfs/object/gcs"
	"github.com/antgroup/vfsio/modules/vfs/object/minio"
	objs3 "github.com/antgroup/vfsio/modules/vfs/object/s3"
	"github.com/antgroup/vfsio/pkg/config"
)

// Backends owns the registry and every client registered in it. Object
// store clients are created on first use.
type Backends struct {
	*vfs.Registry
	Local  *local.FS
	Memory *billyfs.FS
	HTTP   *httpfs.Client

	mu      sync.Mutex
	closers []func() error
}

// New registers file, mem, http, https, archive, s3, gs and minio.
func New(cfg *config.Config) (*Backends, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	b := &Backends{Registry: vfs.NewRegistry(), Memory: billyfs.NewMemory()}
	b.Local = local.New()
	if len(cfg.Local.Root) != 0 {
		fs, err := local.NewBound(config.ExpandPath(cfg.Local.Root))
		if err != nil {
			return nil, err
		}
		b.Local = fs
	}
	httpOpts := &httpfs.Options{
		Proxy:           cfg.HTTP.Proxy,
		NoProxy:         cfg.HTTP.NoProxy,
		UserAgent:       cfg.HTTP.UserAgent,
		InsecureSkipTLS: !cfg.HTTP.SSLVerify.IsUnset() && !cfg.HTTP.SSLVerify.True(),
		Header:          cfg.HTTP.Header,
		CacheTTL:        cfg.HTTP.CacheTTL.Duration,
	}
	hc, err := httpfs.New(httpOpts)
	if err != nil {
		return nil, err
	}
	b.HTTP = hc
	b.closers = append(b.closers, hc.Close)

	b.Register("file", b.Local.Opener())
	b.Register("mem", b.Memory.Opener())
	b.Register("http", hc.Opener())
	b.Register("https", hc.Opener())
	b.Register(archive.Scheme, archive.New(b.Registry, cfg.Archive.MaxSize.Size).Opener())

	maxSize := cfg.Object.MaxSize.Size
	b.Register("s3", object.New("s3", b.s3Provider(&cfg.S3), maxSize).Opener())
	b.Register("gs", object.New("gs", b.gcsProvider(&cfg.GCS), maxSize).Opener())
	b.Register("minio", object.New("minio", b.minioProvider(&cfg.Minio), maxSize).Opener())
	logrus.Debugf("registered schemes: %v", b.Schemes())
	return b, nil
}

func (b *Backends) s3Provider(c *config.S3) object.Provider {
	var (
		once   sync.Once
		client *s3.Client
		err    error
	)
	return func(ctx context.Context, bucket string) (object.Store, error) {
		once.Do(func() {
			client, err = objs3.NewClient(ctx, &objs3.Options{
				Region:          c.Region,
				Endpoint:        c.Endpoint,
				AccessKeyID:     c.AccessKeyID,
				SecretAccessKey: c.SecretAccessKey,
				SessionToken:    c.SessionToken,
				UsePathStyle:    c.PathStyle,
			})
		})
		if err != nil {
			return nil, err
		}
		return objs3.NewStore(client, bucket), nil
	}
}

func (b *Backends) gcsProvider(c *config.GCS) object.Provider {
	var (
		once   sync.Once
		client *storage.Client
		err    error
	)
	return func(ctx context.Context, bucket string) (object.Store, error) {
		once.Do(func() {
			// the client outlives the resolving call
			client, err = gcs.NewClient(context.WithoutCancel(ctx), &gcs.Options{
				CredentialsFile: c.CredentialsFile,
				Endpoint:        c.Endpoint,
				Anonymous:       c.Anonymous,
			})
			if err == nil {
				b.mu.Lock()
				b.closers = append(b.closers, client.Close)
				b.mu.Unlock()
			}
		})
		if err != nil {
			return nil, err
		}
		return gcs.NewStore(client, bucket), nil
	}
}

func (b *Backends) minioProvider(c *config.Minio) object.Provider {
	var (
		once   sync.Once
		client *miniogo.Client
		err    error
	)
	return func(ctx context.Context, bucket string) (object.Store, error) {
		once.Do(func() {
			if len(c.Endpoint) == 0 {
				err = vfs.Errorf(vfs.InvalidArgument, "minio endpoint not configured")
				return
			}
			client, err = minio.NewClient(&minio.Options{
				Endpoint:        c.Endpoint,
				AccessKeyID:     c.AccessKeyID,
				SecretAccessKey: c.SecretAccessKey,
				SessionToken:    c.SessionToken,
				Region:          c.Region,
				Secure:          c.Secure.IsUnset() || c.Secure.True(),
			})
		})
		if err != nil {
			return nil, err
		}
		return minio.NewStore(client, bucket), nil
	}
}

// Close releases every client created so far.
func (b *Backends) Close() error {
	b.mu.Lock()
	closers := b.closers
	b.closers = nil
	b.mu.Unlock()
	var errs []error
	for _, fn := range closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
