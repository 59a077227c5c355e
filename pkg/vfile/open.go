// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfile

import (
	"github.com/sirupsen/logrus"

	"github.com/antgroup/vfsio/modules/chardet"
	"github.com/antgroup/vfsio/modules/vfs"
)

const (
	DefaultBufferSize = 8192
)

// Config is a validated open configuration.
type Config struct {
	Mode Mode
	// Buffering is -1 for the default, 0 for unbuffered, 1 for line
	// buffering, or the buffer size.
	Buffering   int
	Encoding    string
	Errors      ErrorPolicy
	Newline     Newline
	Cancellable *vfs.Cancellable
}

type options struct {
	buffering   int
	encoding    string
	errors      string
	newline     Newline
	newlineSet  bool
	cancellable *vfs.Cancellable
}

type Option func(*options)

func WithBuffering(n int) Option {
	return func(o *options) {
		o.buffering = n
	}
}

func WithEncoding(name string) Option {
	return func(o *options) {
		o.encoding = name
	}
}

// WithErrors selects the text error policy: strict, replace or ignore.
func WithErrors(policy string) Option {
	return func(o *options) {
		o.errors = policy
	}
}

func WithNewline(n Newline) Option {
	return func(o *options) {
		o.newline = n
		o.newlineSet = true
	}
}

func WithCancellable(c *vfs.Cancellable) Option {
	return func(o *options) {
		o.cancellable = c
	}
}

// NewConfig validates mode and opts without touching any backend.
func NewConfig(mode string, opts ...Option) (*Config, error) {
	o := &options{buffering: -1}
	for _, fn := range opts {
		fn(o)
	}
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	if o.buffering < 0 {
		o.buffering = -1
	}
	if o.buffering == 0 && m.Text() {
		return nil, ErrUnbufferedText
	}
	if o.buffering == 1 && !m.Text() {
		return nil, ErrLineBufferedBinary
	}
	c := &Config{Mode: m, Buffering: o.buffering, Cancellable: o.cancellable}
	if !m.Text() {
		switch {
		case len(o.encoding) != 0:
			return nil, &ConfigError{Message: "binary mode doesn't take an encoding argument"}
		case len(o.errors) != 0:
			return nil, &ConfigError{Message: "binary mode doesn't take an errors argument"}
		case o.newlineSet:
			return nil, &ConfigError{Message: "binary mode doesn't take a newline argument"}
		}
		return c, nil
	}
	if _, err := chardet.Lookup(o.encoding); err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}
	if c.Errors, err = ParseErrorPolicy(o.errors); err != nil {
		return nil, err
	}
	if _, ok := newlineNames[o.newline]; !ok {
		return nil, &ConfigError{Message: "illegal newline value: " + o.newline.String()}
	}
	c.Encoding, c.Newline = o.encoding, o.newline
	return c, nil
}

// Open opens res and composes the stream layers the configuration asks for.
func (c *Config) Open(res vfs.Resource) (Stream, error) {
	logrus.Debugf("vfile: open %s mode=%s buffering=%d", res.URI(), c.Mode, c.Buffering)
	raw, err := NewRawFile(res, c.Mode.Writable(), c.Cancellable)
	if err != nil {
		return nil, err
	}
	if c.Buffering == 0 {
		if c.Mode.Text() {
			_ = raw.Close()
			return nil, ErrUnbufferedText
		}
		return raw, nil
	}
	size := DefaultBufferSize
	if c.Buffering > 1 {
		size = c.Buffering
	}
	buffered := NewBufferedStream(raw, size)
	if !c.Mode.Text() {
		return buffered, nil
	}
	lineBuffering := c.Buffering == 1 || raw.IsTerminal()
	text, err := NewTextStream(buffered, c.Encoding, c.Errors, c.Newline, lineBuffering)
	if err != nil {
		_ = buffered.Close()
		return nil, err
	}
	return text, nil
}

// Open opens res in one of the modes r, rw, rb or r+b. Text modes return a
// *TextStream, binary modes a *BufferedStream, or a *RawFile when
// unbuffered.
func Open(res vfs.Resource, mode string, opts ...Option) (Stream, error) {
	c, err := NewConfig(mode, opts...)
	if err != nil {
		return nil, err
	}
	return c.Open(res)
}

// OpenURI resolves uri through reg and opens it.
func OpenURI(reg *vfs.Registry, uri, mode string, opts ...Option) (Stream, error) {
	c, err := NewConfig(mode, opts...)
	if err != nil {
		return nil, err
	}
	res, err := reg.Resolve(c.Cancellable.Context(), uri)
	if err != nil {
		return nil, translate("open", uri, err)
	}
	return c.Open(res)
}

func OpenText(res vfs.Resource, mode string, opts ...Option) (*TextStream, error) {
	c, err := NewConfig(mode, opts...)
	if err != nil {
		return nil, err
	}
	if !c.Mode.Text() {
		return nil, &ConfigError{Message: "mode " + mode + " is not a text mode"}
	}
	s, err := c.Open(res)
	if err != nil {
		return nil, err
	}
	return s.(*TextStream), nil
}

// OpenBinary opens res in a buffered binary mode.
func OpenBinary(res vfs.Resource, mode string, opts ...Option) (*BufferedStream, error) {
	c, err := NewConfig(mode, opts...)
	if err != nil {
		return nil, err
	}
	if c.Mode.Text() {
		return nil, &ConfigError{Message: "mode " + mode + " is not a binary mode"}
	}
	if c.Buffering == 0 {
		return nil, &ConfigError{Message: "unbuffered binary streams are *RawFile, use Open"}
	}
	s, err := c.Open(res)
	if err != nil {
		return nil, err
	}
	return s.(*BufferedStream), nil
}
