// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfile

// Mode is one of the four supported open modes.
type Mode int

const (
	ModeRead            Mode = iota // "r"
	ModeReadWrite                   // "rw"
	ModeReadBinary                  // "rb"
	ModeReadWriteBinary             // "r+b"
)

var (
	modeNames = map[Mode]string{
		ModeRead:            "r",
		ModeReadWrite:       "rw",
		ModeReadBinary:      "rb",
		ModeReadWriteBinary: "r+b",
	}
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "r":
		return ModeRead, nil
	case "rw":
		return ModeReadWrite, nil
	case "rb":
		return ModeReadBinary, nil
	case "r+b":
		return ModeReadWriteBinary, nil
	case "w":
		return 0, &ModeError{Mode: s, Hint: "rw"}
	case "wb":
		return 0, &ModeError{Mode: s, Hint: "r+b"}
	}
	return 0, &ModeError{Mode: s}
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "invalid"
}

func (m Mode) Writable() bool {
	return m == ModeReadWrite || m == ModeReadWriteBinary
}

func (m Mode) Text() bool {
	return m == ModeRead || m == ModeReadWrite
}
