// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/antgroup/vfsio/modules/vfs"
)

var (
	// ErrClosed is returned by buffered and text streams used after Close.
	ErrClosed = errors.New("I/O operation on closed file")
	// ErrCancelled matches (errors.Is) any IOError caused by a cancelled operation.
	ErrCancelled = errors.New("operation was cancelled")

	ErrUnbufferedText     = &ConfigError{Message: "without buffer only allowed in binary mode"}
	ErrLineBufferedBinary = &ConfigError{Message: "line buffering only allowed in text mode"}
)

// IOError is the uniform error for every backend failure. Message is the
// backend's own message.
type IOError struct {
	Op      string
	Path    string
	Message string
	Code    vfs.ErrorCode
}

func (e *IOError) Error() string {
	return e.Message
}

func (e *IOError) Is(target error) bool {
	switch target {
	case ErrCancelled:
		return e.Code == vfs.Cancelled
	case fs.ErrNotExist:
		return e.Code == vfs.NotFound
	case fs.ErrPermission:
		return e.Code == vfs.PermissionDenied
	case fs.ErrClosed:
		return e.Code == vfs.Closed
	}
	return false
}

func IsIOError(err error) bool {
	var e *IOError
	return errors.As(err, &e)
}

// translate converts a backend error into an *IOError. nil and io.EOF pass
// through untouched.
func translate(op, path string, err error) error {
	if err == nil || err == io.EOF {
		return err
	}
	var ioe *IOError
	if errors.As(err, &ioe) {
		return ioe
	}
	var ve *vfs.Error
	if !errors.As(vfs.FromError(err), &ve) {
		return &IOError{Op: op, Path: path, Message: err.Error()}
	}
	return &IOError{Op: op, Path: path, Message: ve.Message, Code: ve.Code}
}

func errReadOnly(op, path string) error {
	return &IOError{Op: op, Path: path, Message: "read only", Code: vfs.ReadOnly}
}

// ConfigError reports an invalid open configuration. It is returned before
// any backend interaction.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

type ModeError struct {
	Mode string
	// Hint names the read-write equivalent of a rejected write-only mode.
	Hint string
}

func (e *ModeError) Error() string {
	if len(e.Hint) != 0 {
		return "write only not supported, use " + e.Hint
	}
	return fmt.Sprintf("mode %q not supported, only r/rw/rb/r+b", e.Mode)
}

// UnknownParamsError lists unrecognized open parameters, sorted.
type UnknownParamsError struct {
	Keys []string
}

func (e *UnknownParamsError) Error() string {
	return "unhandled open params: " + strings.Join(e.Keys, ", ")
}

func IsConfigError(err error) bool {
	var (
		ce *ConfigError
		me *ModeError
		ue *UnknownParamsError
	)
	return errors.As(err, &ce) || errors.As(err, &me) || errors.As(err, &ue)
}

// CodecError is returned by text streams when input can not be decoded or
// output can not be encoded under the strict error policy.
type CodecError struct {
	Encoding string
	Op       string
	Offset   int64
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("'%s' codec can't %s input at offset %d", e.Encoding, e.Op, e.Offset)
}
