// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package progress renders transfer progress on stderr.
package progress

import (
	"io"
	"os"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/antgroup/vfsio/modules/term"
)

var (
	blueColorMap = map[term.Level]string{
		term.Level256: "\x1b[36m",
		term.Level16M: "\x1b[38;2;72;198;239m",
	}
	endColorMap = map[term.Level]string{
		term.Level256: "\x1b[0m",
		term.Level16M: "\x1b[0m",
	}
)

const (
	maxWidth = 80
)

func termWidth() int {
	width, _, err := term.GetSize(os.Stderr.Fd())
	if err != nil || width <= 0 || width > maxWidth {
		return maxWidth
	}
	return width
}

func filler() string {
	if blue, ok := blueColorMap[term.StderrLevel]; ok {
		return blue + "#" + endColorMap[term.StderrLevel]
	}
	return "#"
}

// Bar is a byte transfer bar. A quiet Bar renders nothing; its methods are
// no-ops.
type Bar struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

// NewBar starts a bar on stderr. total <= 0 means the size is unknown.
func NewBar(task string, total int64, quiet bool) *Bar {
	if quiet {
		return &Bar{}
	}
	return newBar(os.Stderr, task, total)
}

func newBar(w io.Writer, task string, total int64) *Bar {
	width := termWidth()
	p := mpb.New(
		mpb.WithOutput(w),
		mpb.WithAutoRefresh(),
		mpb.WithWidth(width),
	)
	if total <= 0 {
		total = -1
	}
	bar := p.New(total,
		mpb.BarStyle().Filler(filler()).Padding(" "),
		mpb.PrependDecorators(
			decor.Name(task, decor.WC{W: len(task) + 1, C: decor.DindentRight}),
			decor.Total(decor.SizeB1024(0), "% .2f", decor.WCSyncWidth),
		),
		mpb.BarWidth(width),
		mpb.AppendDecorators(
			decor.EwmaSpeed(decor.SizeB1024(0), "% .2f ", 90),
			decor.OnComplete(
				decor.EwmaETA(decor.ET_STYLE_GO, 30), "done",
			),
		),
	)
	return &Bar{p: p, bar: bar}
}

// ProxyReader counts bytes read through r.
func (b *Bar) ProxyReader(r io.Reader) io.Reader {
	if b.bar == nil {
		return r
	}
	return b.bar.ProxyReader(r)
}

func (b *Bar) Add(n int) {
	if b.bar != nil {
		b.bar.IncrBy(n)
	}
}

func (b *Bar) Current() int64 {
	if b.bar == nil {
		return 0
	}
	return b.bar.Current()
}

// Finish marks the transfer complete and waits for the final render.
func (b *Bar) Finish() {
	if b.bar == nil {
		return
	}
	b.bar.SetTotal(-1, true)
	b.p.Wait()
}

// Abort drops the bar after a failed transfer.
func (b *Bar) Abort() {
	if b.bar == nil {
		return
	}
	b.bar.Abort(true)
	b.p.Wait()
}
