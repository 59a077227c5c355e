// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	debugMode atomic.Bool
)

// EnableDebugMode turns on DbgPrint output and debug level logging.
func EnableDebugMode() {
	debugMode.Store(true)
	logrus.SetLevel(logrus.DebugLevel)
}

func IsDebugMode() bool {
	return debugMode.Load()
}

// Tracker prints the time spent between steps in debug mode.
type Tracker struct {
	w     io.Writer
	debug bool
	last  time.Time
}

func NewTracker(debugMode bool) *Tracker {
	return &Tracker{w: stderr, debug: debugMode, last: time.Now()}
}

func (t *Tracker) StepNext(format string, a ...any) {
	if !t.debug {
		return
	}
	s := fmt.Sprintf(format, a...)
	now := time.Now()
	fmt.Fprintf(t.w, "\x1b[35m* %s use time: %v\x1b[0m\n", strings.Trim(s, "\n"), now.Sub(t.last))
	t.last = now
}
