// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	BOOLEAN_UNSET = 0
	BOOLEAN_TRUE  = 1
	BOOLEAN_FALSE = 2
)

// Boolean is a tri-state flag: unset, true or false.
type Boolean struct {
	val int
}

var (
	True  = Boolean{val: BOOLEAN_TRUE}
	False = Boolean{val: BOOLEAN_FALSE}
)

func (b *Boolean) UnmarshalTOML(a any) error {
	var s string
	switch sdata := a.(type) {
	case string:
		s = sdata
	case bool:
		b.Set(sdata)
		return nil
	case int64:
		b.Set(sdata != 0)
		return nil
	default:
		return fmt.Errorf("unexpected type %T for boolean", a)
	}
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		b.val = BOOLEAN_TRUE
	case "false", "no", "off", "0":
		b.val = BOOLEAN_FALSE
	default:
		return fmt.Errorf("bad boolean value '%s'", s)
	}
	return nil
}

func (b *Boolean) IsUnset() bool {
	return b.val == BOOLEAN_UNSET
}

func (b *Boolean) Merge(other *Boolean) {
	if b.val == BOOLEAN_UNSET {
		b.val = other.val
	}
}

func (b *Boolean) True() bool {
	return b.val == BOOLEAN_TRUE
}

func (b *Boolean) Set(v bool) bool {
	if v {
		b.val = BOOLEAN_TRUE
		return true
	}
	b.val = BOOLEAN_FALSE
	return false
}

var (
	ErrSyntaxSize = errors.New("size syntax error")
)

// Size accepts human readable sizes such as "512MiB", "64M" or "1048576".
type Size struct {
	Size int64
}

func (s *Size) UnmarshalText(text []byte) error {
	n, err := humanize.ParseBytes(string(text))
	if err != nil {
		return ErrSyntaxSize
	}
	s.Size = int64(n)
	return nil
}

func (s Size) String() string {
	return humanize.IBytes(uint64(s.Size))
}

type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("bad duration '%s': %w", text, err)
	}
	d.Duration = v
	return nil
}
