// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"

	"github.com/antgroup/vfsio/pkg/vfile"
)

type Head struct {
	TextFlags
	Lines int    `short:"n" name:"lines" default:"10" help:"Number of lines to print"`
	URI   string `arg:"" name:"uri" help:"Resource path or URI"`
}

func (c *Head) Run(g *Globals) error {
	opts, err := c.TextFlags.options()
	if err != nil {
		return err
	}
	f, err := g.open(c.URI, "r", opts...)
	if err != nil {
		return err
	}
	defer f.Close() // nolint
	t := f.(*vfile.TextStream)
	n := 0
	for line, err := range t.Lines() {
		if err != nil {
			return err
		}
		if n >= c.Lines {
			break
		}
		if _, err := io.WriteString(g.stdout, line); err != nil {
			return err
		}
		n++
	}
	return nil
}
