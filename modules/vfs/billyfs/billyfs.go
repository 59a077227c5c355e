// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package billyfs exposes a go-billy filesystem as vfs resources. The
// default registry mounts an in-memory filesystem under mem://.
package billyfs

import (
	"context"
	"net/url"
	"os"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"

	"github.com/antgroup/vfsio/modules/vfs"
)

type FS struct {
	fs     billy.Filesystem
	scheme string
}

func New(fs billy.Filesystem, scheme string) *FS {
	return &FS{fs: fs, scheme: scheme}
}

// NewMemory returns an empty in-memory filesystem mounted under mem://.
func NewMemory() *FS {
	return New(memfs.New(), "mem")
}

// Filesystem returns the underlying billy filesystem.
func (f *FS) Filesystem() billy.Filesystem {
	return f.fs
}

func (f *FS) Resource(name string) *File {
	return &File{fs: f.fs, scheme: f.scheme, name: path.Clean("/" + name)}
}

func (f *FS) Opener() vfs.Opener {
	return func(ctx context.Context, u *url.URL) (vfs.Resource, error) {
		return f.Resource(path.Join(u.Host, u.Path)), nil
	}
}

// File is a billy file. It has no local path and no file descriptor.
type File struct {
	fs     billy.Filesystem
	scheme string
	name   string
}

func (r *File) Path() string {
	return ""
}

func (r *File) URI() string {
	return (&url.URL{Scheme: r.scheme, Path: r.name}).String()
}

func (r *File) QueryInfo(ctx context.Context) (*vfs.FileInfo, error) {
	if err := vfs.Check(ctx); err != nil {
		return nil, err
	}
	si, err := r.fs.Stat(r.name)
	if err != nil {
		return nil, vfs.FromError(err)
	}
	fi := &vfs.FileInfo{
		DisplayName: path.Base(r.name),
		Size:        si.Size(),
		ModTime:     si.ModTime(),
		IsDir:       si.IsDir(),
		ContentType: "inode/directory",
	}
	if !si.IsDir() {
		fi.ContentType = "application/octet-stream"
		if fd, err := r.fs.Open(r.name); err == nil {
			if mt, err := mimetype.DetectReader(fd); err == nil {
				fi.ContentType = mt.String()
			}
			_ = fd.Close()
		}
	}
	return fi, nil
}

func (r *File) open(ctx context.Context, flag int) (billy.File, error) {
	if err := vfs.Check(ctx); err != nil {
		return nil, err
	}
	si, err := r.fs.Stat(r.name)
	if err != nil {
		return nil, vfs.FromError(err)
	}
	if si.IsDir() {
		return nil, vfs.Errorf(vfs.IsDirectory, "Can't open directory '%s'", r.name)
	}
	fd, err := r.fs.OpenFile(r.name, flag, 0)
	if err != nil {
		return nil, vfs.FromError(err)
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
