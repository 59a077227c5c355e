// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/antgroup/vfsio/modules/trace"
	"github.com/antgroup/vfsio/modules/vfs"
	"github.com/antgroup/vfsio/pkg/version"
)

type App struct {
	Globals
	Cat  Cat  `cmd:"cat" help:"Print resources to standard output"`
	Head Head `cmd:"head" help:"Print the first lines of a text resource"`
	Info Info `cmd:"info" help:"Show resource metadata"`
	Sum  Sum  `cmd:"sum" help:"Compute resource checksums"`
	Get  Get  `cmd:"get" help:"Download a resource to a local file"`
	Put  Put  `cmd:"put" help:"Upload a local file into an existing resource"`
}

func main() {
	var app App
	ctx := kong.Parse(&app,
		kong.Name("vfcat"),
		kong.Description("vfcat - read and write files, archives, http and object storage resources"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version.GetVersionString(),
		},
	)
	now := time.Now()
	if app.Verbose {
		trace.EnableDebugMode()
	}
	sctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app.cancellable = vfs.NewCancellable(sctx)
	app.stdout = os.Stdout
	err := ctx.Run(&app.Globals)
	stop()
	app.Close()
	if app.Verbose {
		trace.DbgPrint("time spent: %v", time.Since(now))
	}
	if err != nil {
		logrus.Errorf("vfcat %s: %v", ctx.Command(), err)
		os.Exit(1)
	}
}
