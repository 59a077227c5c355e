// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/alecthomas/kong"

	"github.com/antgroup/vfsio/modules/term"
	"github.com/antgroup/vfsio/modules/vfs"
	"github.com/antgroup/vfsio/pkg/backends"
	"github.com/antgroup/vfsio/pkg/config"
	"github.com/antgroup/vfsio/pkg/version"
	"github.com/antgroup/vfsio/pkg/vfile"
)

type Globals struct {
	Verbose bool        `short:"V" name:"verbose" help:"Make the operation more talkative"`
	Config  string      `short:"c" name:"config" type:"path" help:"Load configuration from this file instead of ~/.vfsio.toml"`
	Version VersionFlag `short:"v" name:"version" help:"Show version number and quit"`

	stdout      io.Writer          `kong:"-"`
	cancellable *vfs.Cancellable   `kong:"-"`
	cfg         *config.Config     `kong:"-"`
	b           *backends.Backends `kong:"-"`
}

type VersionFlag bool

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(version.GetVersionString())
	app.Exit(0)
	return nil
}

// level is the color level of stdout; captured output is never colored.
func (g *Globals) level() term.Level {
	if g.stdout == os.Stdout {
		return term.StdoutLevel
	}
	return term.LevelNone
}

func (g *Globals) load() error {
	if g.b != nil {
		return nil
	}
	var err error
	if len(g.Config) != 0 {
		g.cfg, err = config.LoadFile(g.Config)
	} else {
		g.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	g.b, err = backends.New(g.cfg)
	return err
}

func (g *Globals) Close() {
	if g.b != nil {
		_ = g.b.Close()
		g.b = nil
	}
}

var (
	textParams = []string{"encoding", "errors", "newline"}
)

// options merges the [open] defaults with command flags; flags win.
func (g *Globals) options(mode string, opts ...vfile.Option) ([]vfile.Option, error) {
	params := maps.Clone(g.cfg.Open)
	if m, err := vfile.ParseMode(mode); err == nil && !m.Text() {
		for _, k := range textParams {
			delete(params, k)
		}
	}
	base, err := params.Options()
	if err != nil {
		return nil, err
	}
	if g.cancellable != nil {
		base = append(base, vfile.WithCancellable(g.cancellable))
	}
	return append(base, opts...), nil
}

func (g *Globals) resolve(uri string) (vfs.Resource, error) {
	if err := g.load(); err != nil {
		return nil, err
	}
	return g.b.Resolve(g.cancellable.Context(), uri)
}

func (g *Globals) open(uri, mode string, opts ...vfile.Option) (vfile.Stream, error) {
	if err := g.load(); err != nil {
		return nil, err
	}
	all, err := g.options(mode, opts...)
	if err != nil {
		return nil, err
	}
	return vfile.OpenURI(g.b.Registry, uri, mode, all...)
}

// TextFlags are shared by commands reading text. Empty values keep the
// configured defaults.
type TextFlags struct {
	Encoding string `short:"e" name:"encoding" help:"Text encoding, e.g. utf-8, gbk, utf-16le"`
	Errors   string `name:"errors" help:"Decode error handling: strict, replace or ignore"`
	Newline  string `name:"newline" help:"Newline translation: universal, none, lf, cr or crlf"`
}

func (f *TextFlags) options() ([]vfile.Option, error) {
	var opts []vfile.Option
	if len(f.Encoding) != 0 {
		opts = append(opts, vfile.WithEncoding(f.Encoding))
	}
	if len(f.Errors) != 0 {
		opts = append(opts, vfile.WithErrors(f.Errors))
	}
	if len(f.Newline) != 0 {
		nl, err := vfile.ParseNewline(f.Newline)
		if err != nil {
			return nil, err
		}
		opts = append(opts, vfile.WithNewline(nl))
	}
	return opts, nil
}
