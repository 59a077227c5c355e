// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/antgroup/vfsio/pkg/vfile"
)

type Info struct {
	URIs []string `arg:"" name:"uri" help:"Resource paths or URIs"`
}

func (c *Info) Run(g *Globals) error {
	for i, uri := range c.URIs {
		if i != 0 {
			fmt.Fprintln(g.stdout)
		}
		if err := c.show(g, uri); err != nil {
			return err
		}
	}
	return nil
}

func (c *Info) show(g *Globals, uri string) error {
	res, err := g.resolve(uri)
	if err != nil {
		return err
	}
	fi, err := res.QueryInfo(g.cancellable.Context())
	if err != nil {
		return err
	}
	f, err := vfile.NewRawFile(res, false, g.cancellable)
	if err != nil {
		return err
	}
	defer f.Close() // nolint
	fmt.Fprintf(g.stdout, "Name:         %s\n", f.Name())
	fmt.Fprintf(g.stdout, "URI:          %s\n", res.URI())
	if p := res.Path(); len(p) != 0 {
		fmt.Fprintf(g.stdout, "Path:         %s\n", p)
	}
	fmt.Fprintf(g.stdout, "Size:         %s (%d bytes)\n", humanize.IBytes(uint64(fi.Size)), fi.Size)
	if !fi.ModTime.IsZero() {
		fmt.Fprintf(g.stdout, "Modified:     %s (%s)\n", fi.ModTime.Format("2006-01-02 15:04:05"), humanize.Time(fi.ModTime))
	}
	fmt.Fprintf(g.stdout, "Content-Type: %s\n", fi.ContentType)
	fmt.Fprintf(g.stdout, "Seekable:     %s\n", g.level().Bool(f.Seekable()))
	if fd, err := f.Fileno(); err == nil {
		fmt.Fprintf(g.stdout, "Fileno:       %d\n", fd)
	}
	return nil
}
