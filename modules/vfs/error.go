// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

type ErrorCode int

const (
	Failed ErrorCode = iota
	NotFound
	Exists
	IsDirectory
	PermissionDenied
	NotSupported
	ReadOnly
	Closed
	Cancelled
	InvalidArgument
)

var codeNames = map[ErrorCode]string{
	Failed:           "failed",
	NotFound:         "not-found",
	Exists:           "exists",
	IsDirectory:      "is-directory",
	PermissionDenied: "permission-denied",
	NotSupported:     "not-supported",
	ReadOnly:         "read-only",
	Closed:           "closed",
	Cancelled:        "cancelled",
	InvalidArgument:  "invalid-argument",
}

func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is the native error of every backend.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Errorf(code ErrorCode, format string, a ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// FromError converts an arbitrary error into *Error, keeping its message.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: classify(err), Message: err.Error()}
}

func classify(err error) ErrorCode {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Cancelled
	case errors.Is(err, fs.ErrNotExist):
		return NotFound
	case errors.Is(err, fs.ErrExist):
		return Exists
	case errors.Is(err, fs.ErrPermission):
		return PermissionDenied
	case errors.Is(err, fs.ErrClosed):
		return Closed
	case errors.Is(err, errors.ErrUnsupported):
		return NotSupported
	case errors.Is(err, fs.ErrInvalid):
		return InvalidArgument
	case errors.Is(err, syscall.EISDIR):
		return IsDirectory
	case errors.Is(err, syscall.EROFS):
		return ReadOnly
	}
	return Failed
}
