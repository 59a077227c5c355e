// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfile

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/antgroup/vfsio/modules/vfs"
)

// Params carries open settings by name, as they arrive from configuration
// files and command line flags. Recognized keys: buffering, encoding, errors,
// newline, cancellable.
type Params map[string]any

var (
	knownParams = map[string]bool{
		"buffering":   true,
		"encoding":    true,
		"errors":      true,
		"newline":     true,
		"cancellable": true,
	}
)

func paramTypeError(key string, want string, v any) error {
	return &ConfigError{Message: fmt.Sprintf("open param %s: want %s, got %T", key, want, v)}
}

func intParam(key string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, nil
		}
	}
	return 0, paramTypeError(key, "integer", v)
}

// Options converts p into open options. Unknown keys are reported together,
// sorted.
func (p Params) Options() ([]Option, error) {
	var unknown []string
	for k := range p {
		if !knownParams[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) != 0 {
		sort.Strings(unknown)
		return nil, &UnknownParamsError{Keys: unknown}
	}
	opts := make([]Option, 0, len(p))
	for k, v := range p {
		switch k {
		case "buffering":
			n, err := intParam(k, v)
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithBuffering(n))
		case "encoding", "errors":
			s, ok := v.(string)
			if !ok {
				return nil, paramTypeError(k, "string", v)
			}
			if k == "encoding" {
				opts = append(opts, WithEncoding(s))
				continue
			}
			opts = append(opts, WithErrors(s))
		case "newline":
			switch n := v.(type) {
			case nil:
				opts = append(opts, WithNewline(NewlineUniversal))
			case Newline:
				opts = append(opts, WithNewline(n))
			case string:
				nl, err := ParseNewline(n)
				if err != nil {
					return nil, err
				}
				opts = append(opts, WithNewline(nl))
			default:
				return nil, paramTypeError(k, "string", v)
			}
		case "cancellable":
			c, ok := v.(*vfs.Cancellable)
			if !ok {
				return nil, paramTypeError(k, "*vfs.Cancellable", v)
			}
			opts = append(opts, WithCancellable(c))
		}
	}
	return opts, nil
}

// OpenParams is Open with settings supplied by name.
func OpenParams(res vfs.Resource, mode string, params Params) (Stream, error) {
	opts, err := params.Options()
	if err != nil {
		return nil, err
	}
	return Open(res, mode, opts...)
}
