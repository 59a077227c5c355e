// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/antgroup/vfsio/modules/term"
)

var (
	selectedSpinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
)

// Indicators is a spinner counting finished items.
type Indicators struct {
	w           io.Writer
	description string
	completed   string
	quiet       bool
	current     atomic.Uint64
	total       uint64
	wg          sync.WaitGroup
}

func NewIndicators(description, completed string, total uint64, quiet bool) *Indicators {
	return &Indicators{w: os.Stderr, description: description, completed: completed, total: total, quiet: quiet}
}

func (i *Indicators) Add(n int) {
	i.current.Add(uint64(n))
}

func (i *Indicators) Current() uint64 {
	return i.current.Load()
}

func (i *Indicators) Wait() {
	i.wg.Wait()
}

// Run draws until ctx is done. Cancelling ctx (rather than a deadline or a
// cause) prints the summary line.
func (i *Indicators) Run(ctx context.Context) {
	if i.quiet {
		return
	}
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		blue := blueColorMap[term.StderrLevel]
		end := endColorMap[term.StderrLevel]
		startTime := time.Now()
		tick := time.NewTicker(time.Millisecond * 100)
		defer tick.Stop()
		for n := 0; ; n++ {
			select {
			case <-ctx.Done():
				if err := context.Cause(ctx); !errors.Is(err, context.Canceled) {
					return
				}
				current := i.current.Load()
				spent := time.Since(startTime).Truncate(time.Millisecond)
				if i.total == 0 {
					fmt.Fprintf(i.w, "\x1b[2K\r%s, total: %d, time spent: %v%s\n", i.completed, current, spent, end)
					return
				}
				fmt.Fprintf(i.w, "\x1b[2K\r%s: %d%% (%d/%d) completed, time spent: %v%s\n",
					i.description, 100*current/i.total, current, i.total, spent, end)
				return
			case <-tick.C:
				current := i.current.Load()
				spinner := selectedSpinner[n%len(selectedSpinner)]
				if i.total == 0 {
					fmt.Fprintf(i.w, "\x1b[2K\r%s %s... %s%d%s", blue, spinner, i.description, current, end)
					continue
				}
				fmt.Fprintf(i.w, "\x1b[2K\r%s %s... %s%d%% (%d/%d)%s", blue, spinner, i.description, 100*current/i.total, current, i.total, end)
			}
		}
	}()
}
