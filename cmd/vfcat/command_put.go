// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"os"

	"github.com/antgroup/vfsio/modules/streamio"
)

type Put struct {
	Source      string `arg:"" name:"source" help:"Local file to upload, - reads standard input"`
	Destination string `arg:"" name:"destination" help:"Existing resource path or URI to overwrite"`
	Append      bool   `short:"a" name:"append" help:"Append instead of replacing the content"`
}

func (c *Put) Run(g *Globals) error {
	var src io.Reader = os.Stdin
	if c.Source != "-" {
		fd, err := os.Open(c.Source)
		if err != nil {
			return err
		}
		defer fd.Close() // nolint
		src = fd
	}
	f, err := g.open(c.Destination, "r+b")
	if err != nil {
		return err
	}
	defer f.Close() // nolint
	if c.Append {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			return err
		}
	}
	if _, err := streamio.Copy(f, src); err != nil {
		return err
	}
	pos, err := f.Tell()
	if err != nil {
		return err
	}
	if err := f.Truncate(pos); err != nil {
		return err
	}
	return f.Close()
}
