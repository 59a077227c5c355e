// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package archive exposes members of zip and tar archives as read-only
// resources. Addresses look like archive:<archive-uri>!/<member>, where the
// archive itself is resolved through a vfs.Registry:
//
//	archive:///tmp/bundle.zip!/docs/readme.md
//	archive:https://example.com/dist.tar.zst!/bin/tool
package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zip"

	"github.com/antgroup/vfsio/modules/streamio"
	"github.com/antgroup/vfsio/modules/vfs"
)

const (
	Scheme = "archive"
	// DefaultMaxSize bounds both the archive and the extracted member.
	DefaultMaxSize int64 = 512 << 20
	separator            = "!/"
)

type Format int

const (
	Unknown Format = iota
	Zip
	Tar
	TarGzip
	TarZstd
)

var (
	suffixes = []struct {
		suffix string
		format Format
	}{
		{".zip", Zip},
		{".jar", Zip},
		{".tar", Tar},
		{".tar.gz", TarGzip},
		{".tgz", TarGzip},
		{".tar.zst", TarZstd},
		{".tzst", TarZstd},
	}
)

// DetectFormat picks the archive format from the archive name.
func DetectFormat(name string) Format {
	name = strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(name, s.suffix) {
			return s.format
		}
	}
	return Unknown
}

type FS struct {
	reg     *vfs.Registry
	maxSize int64
}

// New returns an archive backend that resolves archives through reg.
func New(reg *vfs.Registry, maxSize int64) *FS {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &FS{reg: reg, maxSize: maxSize}
}

// Split separates an archive address into the archive URI and member path.
func Split(uri string) (string, string, error) {
	raw, ok := strings.CutPrefix(uri, Scheme+":")
	if !ok {
		return "", "", vfs.Errorf(vfs.InvalidArgument, "Invalid archive address '%s'", uri)
	}
	if rest, ok := strings.CutPrefix(raw, "//"); ok {
		raw = rest
	}
	i := strings.LastIndex(raw, separator)
	if i <= 0 {
		return "", "", vfs.Errorf(vfs.InvalidArgument, "Invalid archive address '%s': missing '%s'", uri, separator)
	}
	member := path.Clean(raw[i+len(separator):])
	if member == "." || member == ".." || strings.HasPrefix(member, "../") {
		return "", "", vfs.Errorf(vfs.InvalidArgument, "Invalid archive member '%s'", raw[i+len(separator):])
	}
	return raw[:i], member, nil
}

func (f *FS) Resource(ctx context.Context, uri string) (*Member, error) {
	outer, member, err := Split(uri)
	if err != nil {
		return nil, err
	}
	format := DetectFormat(outer)
	if format == Unknown {
		return nil, vfs.Errorf(vfs.NotSupported, "Operation not supported: unknown archive format '%s'", outer)
	}
	res, err := f.reg.Resolve(ctx, outer)
	if err != nil {
		return nil, err
	}
	return &Member{archive: res, member: member, format: format, maxSize: f.maxSize, uri: uri}, nil
}

func (f *FS) Opener() vfs.Opener {
	return func(ctx context.Context, u *url.URL) (vfs.Resource, error) {
		// u.String() would escape the '!' separator
		raw := u.Opaque
		if len(raw) == 0 {
			raw = "//" + u.Host + u.Path
		}
		return f.Resource(ctx, Scheme+":"+raw)
	}
}

// Member is a file inside an archive. Its content is extracted into memory
// on open.
type Member struct {
	archive vfs.Resource
	member  string
	format  Format
	maxSize int64
	uri     string
}

func (m *Member) Path() string {
	return ""
}

func (m *Member) URI() string {
	return m.uri
}

type entry struct {
	data    []byte
	modTime time.Time
	isDir   bool
}

func (m *Member) load(ctx context.Context) (*entry, error) {
	in, err := m.archive.Read(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = in.Close(ctx)
	}()
	r := vfs.NewReader(ctx, in)
	var e *entry
	switch m.format {
	case Zip:
		e, err = m.loadZip(r)
	case TarGzip:
		z, zerr := streamio.GetGzipReader(r)
		if zerr != nil {
			return nil, vfs.Errorf(vfs.Failed, "Invalid gzip stream: %v", zerr)
		}
		e, err = m.loadTar(z)
		streamio.PutGzipReader(z)
	case TarZstd:
		z, zerr := streamio.GetZstdReader(r)
		if zerr != nil {
			streamio.PutZstdReader(z)
			return nil, vfs.Errorf(vfs.Failed, "Invalid zstd stream: %v", zerr)
		}
		e, err = m.loadTar(z)
		streamio.PutZstdReader(z)
	default:
		e, err = m.loadTar(r)
	}
	if err != nil {
		return nil, m.wrap(err)
	}
	return e, nil
}

func (m *Member) wrap(err error) error {
	var tooLarge *streamio.ErrTooLarge
	if errors.As(err, &tooLarge) {
		return vfs.Errorf(vfs.Failed, "Archive member '%s': %v", m.member, err)
	}
	return vfs.FromError(err)
}

func (m *Member) notFound() error {
	return vfs.Errorf(vfs.NotFound, "No such member '%s' in archive '%s'", m.member, m.archive.URI())
}

func (m *Member) loadZip(r io.Reader) (*entry, error) {
	b, err := streamio.ReadMax(r, m.maxSize, 0)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, vfs.Errorf(vfs.Failed, "Invalid zip archive: %v", err)
	}
	for _, f := range zr.File {
		name := path.Clean(f.Name)
		if name != m.member {
			continue
		}
		if f.FileInfo().IsDir() {
			return &entry{modTime: f.Modified, isDir: true}, nil
		}
		fd, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := streamio.ReadMax(fd, m.maxSize, int(min(f.UncompressedSize64, uint64(m.maxSize))))
		_ = fd.Close()
		if err != nil {
			return nil, err
		}
		return &entry{data: data, modTime: f.Modified}, nil
	}
	return nil, m.notFound()
}

func (m *Member) loadTar(r io.Reader) (*entry, error) {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, m.notFound()
		}
		if err != nil {
			return nil, vfs.Errorf(vfs.Failed, "Invalid tar archive: %v", err)
		}
		if path.Clean(hdr.Name) != m.member {
			continue
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			return &entry{modTime: hdr.ModTime, isDir: true}, nil
		case tar.TypeReg:
			data, err := streamio.ReadMax(tr, m.maxSize, int(min(hdr.Size, m.maxSize)))
			if err != nil {
				return nil, err
			}
			return &entry{data: data, modTime: hdr.ModTime}, nil
		}
		return nil, vfs.Errorf(vfs.NotSupported, "Operation not supported: archive member '%s' is not a regular file", m.member)
	}
}

func (m *Member) QueryInfo(ctx context.Context) (*vfs.FileInfo, error) {
	e, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	fi := &vfs.FileInfo{
		DisplayName: path.Base(m.member),
		Size:        int64(len(e.data)),
		ModTime:     e.modTime,
		IsDir:       e.isDir,
		ContentType: "inode/directory",
	}
	if !e.isDir {
		fi.ContentType = mimetype.Detect(e.data).String()
	}
	return fi, nil
}

func (m *Member) Read(ctx context.Context) (vfs.FileInputStream, error) {
	e, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if e.isDir {
		return nil, vfs.Errorf(vfs.IsDirectory, "Can't open directory '%s'", m.member)
	}
	return vfs.NewFileInputStream(vfs.NewMemoryHandle(e.data, nil)), nil
}

func (m *Member) OpenReadWrite(ctx context.Context) (vfs.FileIOStream, error) {
	return nil, vfs.Errorf(vfs.ReadOnly, "Archive members are read-only")
}

var (
	_ vfs.Resource = &Member{}
)
