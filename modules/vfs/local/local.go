// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package local serves file:// resources from the OS filesystem.
package local

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/gabriel-vasile/mimetype"

	"github.com/antgroup/vfsio/modules/vfs"
)

const (
	defaultContentType = "application/octet-stream"
)

// FS resolves local paths. A bound FS keeps every path inside its base dir:
// relative paths and `..` components can not ascend it, symlinks are
// evaluated against it.
type FS struct {
	baseDir string
}

func New() *FS {
	return &FS{}
}

func NewBound(baseDir string) (*FS, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, vfs.FromError(err)
	}
	if wd, err := filepath.EvalSymlinks(abs); err == nil && wd != "" {
		abs = wd
	}
	return &FS{baseDir: abs}, nil
}

// Root returns the base dir, or "" when the FS is not bound.
func (f *FS) Root() string {
	return f.baseDir
}

func (f *FS) abs(name string) (string, error) {
	if f.baseDir == "" {
		p, err := filepath.Abs(name)
		if err != nil {
			return "", vfs.FromError(err)
		}
		return p, nil
	}
	if name == f.baseDir {
		return f.baseDir, nil
	}
	if filepath.IsAbs(name) && insidePathOf(name, f.baseDir) {
		name = name[len(f.baseDir):]
	}
	p, err := securejoin.SecureJoin(f.baseDir, name)
	if err != nil {
		return "", vfs.Errorf(vfs.InvalidArgument, "path '%s' outside base dir: %s", name, f.baseDir)
	}
	return p, nil
}

func insidePathOf(c, p string) bool {
	return strings.HasPrefix(c, p) && len(p) < len(c) && c[len(p)] == filepath.Separator
}

// Resource returns the file addressed by name.
func (f *FS) Resource(name string) (*File, error) {
	p, err := f.abs(name)
	if err != nil {
		return nil, err
	}
	return &File{path: p}, nil
}

// Opener adapts the FS to a vfs.Registry entry for the file scheme.
func (f *FS) Opener() vfs.Opener {
	return func(ctx context.Context, u *url.URL) (vfs.Resource, error) {
		if u.Host != "" && u.Host != "localhost" {
			return nil, vfs.Errorf(vfs.NotSupported, "The URI '%s' is not an absolute URI using the file scheme", u.String())
		}
		p := u.Path
		if runtime.GOOS == "windows" && len(p) > 2 && p[0] == '/' && p[2] == ':' {
			p = p[1:]
		}
		return f.Resource(filepath.FromSlash(p))
	}
}

// File is a local file resource.
type File struct {
	path string
}

func (r *File) Path() string {
	return r.path
}

func (r *File) URI() string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(r.path)}).String()
}

func (r *File) QueryInfo(ctx context.Context) (*vfs.FileInfo, error) {
	if err := vfs.Check(ctx); err != nil {
		return nil, err
	}
	si, err := os.Stat(r.path)
	if err != nil {
		return nil, vfs.FromError(err)
	}
	fi := &vfs.FileInfo{
		DisplayName: filepath.Base(r.path),
		Size:        si.Size(),
		ModTime:     si.ModTime(),
		IsDir:       si.IsDir(),
		ContentType: "inode/directory",
	}
	if !si.IsDir() {
		fi.ContentType = defaultContentType
		if mt, err := mimetype.DetectFile(r.path); err == nil {
			fi.ContentType = mt.String()
		}
	}
	return fi, nil
}

func (r *File) open(ctx context.Context, flag int) (*os.File, error) {
	if err := vfs.Check(ctx); err != nil {
		return nil, err
	}
	fd, err := os.OpenFile(r.path, flag, 0)
	if err != nil {
		return nil, vfs.FromError(err)
	}
	si, err := fd.Stat()
	if err != nil {
		_ = fd.Close()
		return nil, vfs.FromError(err)
	}
	if si.IsDir() {
		_ = fd.Close()
		return nil, vfs.Errorf(vfs.IsDirectory, "Can't open directory '%s'", r.path)
	}
	return fd, nil
}

func (r *File) Read(ctx context.Context) (vfs.FileInputStream, error) {
	fd, err := r.open(ctx, os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	return vfs.NewFileInputStream(fd), nil
}

// OpenReadWrite opens an existing file without truncating it.
func (r *File) OpenReadWrite(ctx context.Context) (vfs.FileIOStream, error) {
	fd, err := r.open(ctx, os.O_RDWR)
	if err != nil {
		return nil, err
	}
	return vfs.NewFileIOStream(fd), nil
}

var (
	_ vfs.Resource = &File{}
)
