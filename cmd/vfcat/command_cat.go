// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/antgroup/vfsio/modules/streamio"
	"github.com/antgroup/vfsio/pkg/vfile"
)

type Cat struct {
	TextFlags
	Binary    bool     `short:"b" name:"binary" help:"Copy bytes without decoding"`
	Buffering int      `name:"buffering" default:"-1" help:"Buffer size, 0 disables buffering (binary only), 1 selects line buffering (text only)"`
	URIs      []string `arg:"" name:"uri" help:"Resource paths or URIs"`
}

func (c *Cat) Run(g *Globals) error {
	mode := "r"
	if c.Binary {
		mode = "rb"
	}
	opts, err := c.TextFlags.options()
	if err != nil {
		return err
	}
	if c.Buffering >= 0 {
		opts = append(opts, vfile.WithBuffering(c.Buffering))
	}
	for _, uri := range c.URIs {
		if err := c.cat(g, uri, mode, opts); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cat) cat(g *Globals, uri, mode string, opts []vfile.Option) error {
	f, err := g.open(uri, mode, opts...)
	if err != nil {
		return err
	}
	defer f.Close() // nolint
	if _, err := streamio.Copy(g.stdout, f); err != nil {
		return err
	}
	return f.Close()
}
