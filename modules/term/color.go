// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package term

type color struct {
	truecolor string
	ansi256   string
}

var (
	red    = color{truecolor: "\x1b[38;2;244;59;71m", ansi256: "\x1b[31m"}  // #f43b47
	green  = color{truecolor: "\x1b[38;2;67;233;123m", ansi256: "\x1b[32m"} // #43e97a
	yellow = color{truecolor: "\x1b[38;2;254;225;64m", ansi256: "\x1b[33m"} // #fee240
)

func (v Level) paint(c color, s string) string {
	switch v {
	case Level16M:
		return c.truecolor + s + "\x1b[0m"
	case Level256:
		return c.ansi256 + s + "\x1b[0m"
	}
	return s
}

func (v Level) Red(s string) string {
	return v.paint(red, s)
}

func (v Level) Green(s string) string {
	return v.paint(green, s)
}

func (v Level) Yellow(s string) string {
	return v.paint(yellow, s)
}

// Bool renders b as a green yes or a red no.
func (v Level) Bool(b bool) string {
	if b {
		return v.Green("yes")
	}
	return v.Red("no")
}
