// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antgroup/vfsio/modules/term"
)

var (
	stderr io.Writer = os.Stderr
)

func formatDebug(level term.Level, message string) []byte {
	var buffer bytes.Buffer
	for _, s := range strings.Split(message, "\n") {
		if level == term.LevelNone {
			_, _ = buffer.WriteString(s)
			_ = buffer.WriteByte('\n')
			continue
		}
		_, _ = buffer.WriteString(level.Yellow("* " + s))
		_ = buffer.WriteByte('\n')
	}
	return buffer.Bytes()
}

// DbgPrint writes a debug message to stderr when debug mode is on.
func DbgPrint(format string, args ...any) {
	if !IsDebugMode() {
		return
	}
	_, _ = stderr.Write(formatDebug(term.StderrLevel, fmt.Sprintf(format, args...)))
}
