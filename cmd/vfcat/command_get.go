// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/antgroup/vfsio/modules/streamio"
	"github.com/antgroup/vfsio/modules/term"
	"github.com/antgroup/vfsio/modules/trace"
	"github.com/antgroup/vfsio/pkg/progress"
)

type Get struct {
	URI    string `arg:"" name:"uri" help:"Resource path or URI"`
	Output string `short:"o" name:"output" type:"path" help:"Destination file, defaults to the resource display name"`
	Quiet  bool   `short:"q" name:"quiet" help:"Do not show progress"`
}

func (c *Get) Run(g *Globals) error {
	tracker := trace.NewTracker(trace.IsDebugMode())
	res, err := g.resolve(c.URI)
	if err != nil {
		return err
	}
	tracker.StepNext("resolve %s", c.URI)
	var total int64
	if fi, err := res.QueryInfo(g.cancellable.Context()); err == nil {
		total = fi.Size
	}
	f, err := g.open(c.URI, "rb")
	if err != nil {
		return err
	}
	defer f.Close() // nolint
	output := c.Output
	if len(output) == 0 {
		output = filepath.Base(f.Name())
	}
	logrus.Debugf("get %s -> %s (%d bytes)", c.URI, output, total)
	fd, err := os.Create(output)
	if err != nil {
		return err
	}
	quiet := c.Quiet || !term.IsTerminal(os.Stderr.Fd())
	bar := progress.NewBar("Downloading "+filepath.Base(output), total, quiet)
	if _, err := streamio.Copy(fd, bar.ProxyReader(f)); err != nil {
		bar.Abort()
		_ = fd.Close()
		_ = os.Remove(output)
		return err
	}
	bar.Finish()
	tracker.StepNext("download %s", output)
	return fd.Close()
}
