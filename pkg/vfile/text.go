// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"runtime"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/antgroup/vfsio/modules/chardet"
	"github.com/antgroup/vfsio/modules/vfs"
)

const (
	textChunkSize = 8192
	// longest encoded character we search back over when rebuilding a position
	maxCharWidth = 8
)

// Newline selects how line endings are translated.
type Newline int

const (
	// NewlineUniversal accepts \n, \r and \r\n on read and returns \n; writes
	// translate \n to the platform line separator.
	NewlineUniversal Newline = iota
	// NewlineNone recognizes any line ending on read and translates nothing.
	NewlineNone
	NewlineLF
	NewlineCR
	NewlineCRLF
)

var (
	newlineNames = map[Newline]string{
		NewlineUniversal: "universal",
		NewlineNone:      "none",
		NewlineLF:        "lf",
		NewlineCR:        "cr",
		NewlineCRLF:      "crlf",
	}
)

// ParseNewline accepts the line ending itself ("", "\n", "\r", "\r\n") or its
// name (universal, none, lf, cr, crlf).
func ParseNewline(s string) (Newline, error) {
	switch strings.ToLower(s) {
	case "universal":
		return NewlineUniversal, nil
	case "", "none":
		return NewlineNone, nil
	case "\n", "lf":
		return NewlineLF, nil
	case "\r", "cr":
		return NewlineCR, nil
	case "\r\n", "crlf":
		return NewlineCRLF, nil
	}
	return 0, &ConfigError{Message: fmt.Sprintf("illegal newline value: %q", s)}
}

func (n Newline) String() string {
	if s, ok := newlineNames[n]; ok {
		return s
	}
	return "invalid"
}

// terminator is what a written "\n" becomes.
func (n Newline) terminator() string {
	switch n {
	case NewlineUniversal:
		if runtime.GOOS == "windows" {
			return "\r\n"
		}
	case NewlineCR:
		return "\r"
	case NewlineCRLF:
		return "\r\n"
	}
	return "\n"
}

// ErrorPolicy decides what happens to undecodable input and unencodable
// output.
type ErrorPolicy int

const (
	ErrorsStrict ErrorPolicy = iota
	ErrorsReplace
	ErrorsIgnore
)

func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return ErrorsStrict, nil
	case "replace":
		return ErrorsReplace, nil
	case "ignore":
		return ErrorsIgnore, nil
	}
	return 0, &ConfigError{Message: fmt.Sprintf("unknown error handler name %q", s)}
}

func (p ErrorPolicy) String() string {
	switch p {
	case ErrorsStrict:
		return "strict"
	case ErrorsReplace:
		return "replace"
	case ErrorsIgnore:
		return "ignore"
	}
	return "invalid"
}

// TextStream decodes a BufferedStream into UTF-8 text and encodes writes
// back. Positions returned by Tell are byte offsets in the underlying stream
// and are only meaningful to Seek.
type TextStream struct {
	buf           *BufferedStream
	encName       string
	enc           encoding.Encoding
	utf8          bool
	errors        ErrorPolicy
	newline       Newline
	lineBuffering bool

	dec          *textDecoder
	encoder      transform.Transformer
	encoderFresh bool
	// encoded forms of U+FFFD and '\n', without any byte order mark
	replacement []byte
	lf          []byte

	// decoded holds text decoded from snapInput, which starts at snapPos in
	// the underlying stream; dpos is how much of it has been returned.
	decoded    []byte
	dpos       int
	carry      []byte
	skipLF     bool
	eof        bool
	snapPos    int64
	snapInput  []byte
	snapSkipLF bool
}

func NewTextStream(buf *BufferedStream, encName string, policy ErrorPolicy, newline Newline, lineBuffering bool) (*TextStream, error) {
	enc, err := chardet.Lookup(encName)
	if err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}
	if len(encName) == 0 {
		encName = chardet.Default
	}
	if _, ok := newlineNames[newline]; !ok {
		return nil, &ConfigError{Message: fmt.Sprintf("illegal newline value: %d", newline)}
	}
	return &TextStream{
		buf:           buf,
		encName:       encName,
		enc:           enc,
		utf8:          chardet.IsUTF8(encName),
		errors:        policy,
		newline:       newline,
		lineBuffering: lineBuffering,
		dec:           newTextDecoder(enc),
		encoder:       enc.NewEncoder(),
		encoderFresh:  true,
		replacement:   encodedRune(enc, utf8.RuneError),
		lf:            encodedRune(enc, '\n'),
	}, nil
}

// encodedRune returns r as enc writes it after the first character, or nil
// when enc can't represent r.
func encodedRune(enc encoding.Encoding, r rune) []byte {
	s := string(r)
	one, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil
	}
	two, err := enc.NewEncoder().Bytes([]byte(s + s))
	if err != nil || len(two) <= len(one) {
		return nil
	}
	return two[len(one):]
}

// textDecoder runs two decoders over the same input. lag is one call behind
// dec, so a chunk can be decoded again from the state dec started it in.
type textDecoder struct {
	dec transform.Transformer
	lag transform.Transformer
}

func newTextDecoder(enc encoding.Encoding) *textDecoder {
	return &textDecoder{dec: enc.NewDecoder(), lag: enc.NewDecoder()}
}

func (d *textDecoder) Reset() {
	d.dec.Reset()
	d.lag.Reset()
}

func (t *TextStream) Buffer() *BufferedStream {
	return t.buf
}

func (t *TextStream) Encoding() string {
	return t.encName
}

func (t *TextStream) Errors() string {
	return t.errors.String()
}

func (t *TextStream) Newline() Newline {
	return t.newline
}

func (t *TextStream) LineBuffering() bool {
	return t.lineBuffering
}

// transformAll runs tr over src. It stops at the first error other than a
// short destination and reports how much of src was consumed.
func transformAll(tr transform.Transformer, src []byte, atEOF bool) ([]byte, int, error) {
	var out []byte
	dst := make([]byte, max(len(src)*2, 64))
	n := 0
	for {
		nDst, nSrc, err := tr.Transform(dst, src[n:], atEOF)
		out = append(out, dst[:nDst]...)
		n += nSrc
		if !errors.Is(err, transform.ErrShortDst) {
			return out, n, err
		}
		if nDst == 0 && nSrc == 0 {
			dst = make([]byte, len(dst)*2)
		}
	}
}

// incompleteTail returns the length of a truncated UTF-8 sequence at the end
// of b.
func incompleteTail(b []byte) int {
	for i := 1; i <= min(utf8.UTFMax-1, len(b)); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if utf8.FullRune(b[len(b)-i:]) {
				return 0
			}
			return i
		}
	}
	return 0
}

func (t *TextStream) decodeError(offset int64) error {
	return &CodecError{Encoding: t.encName, Op: "decode", Offset: offset}
}

func (t *TextStream) decodeUTF8(src []byte, atEOF bool, base int64) ([]byte, int, error) {
	n := len(src)
	if !atEOF {
		n -= incompleteTail(src)
	}
	chunk := src[:n]
	if utf8.Valid(chunk) {
		return bytes.Clone(chunk), n, nil
	}
	switch t.errors {
	case ErrorsReplace:
		return bytes.ToValidUTF8(chunk, []byte(string(utf8.RuneError))), n, nil
	case ErrorsIgnore:
		return bytes.ToValidUTF8(chunk, nil), n, nil
	}
	for i := 0; i < len(chunk); {
		r, size := utf8.DecodeRune(chunk[i:])
		if r == utf8.RuneError && size == 1 {
			return nil, 0, t.decodeError(base + int64(i))
		}
		i += size
	}
	return nil, 0, t.decodeError(base)
}

// decode converts src with tr under the error policy. A truncated character
// at the end of src is left unconsumed unless atEOF.
func (t *TextStream) decode(d *textDecoder, src []byte, atEOF bool, base int64) ([]byte, int, error) {
	if t.utf8 {
		return t.decodeUTF8(src, atEOF, base)
	}
	out, n, err := transformAll(d.dec, src, atEOF)
	if errors.Is(err, transform.ErrShortSrc) && !atEOF {
		err = nil
	}
	if err == nil && !bytes.ContainsRune(out, utf8.RuneError) {
		_, _, _ = transformAll(d.lag, src[:n], atEOF)
		return out, n, nil
	}
	// decoders in x/text substitute U+FFFD for invalid input, which has to
	// be told apart from an encoded U+FFFD
	return t.decodeRunes(d.lag, src, atEOF, base)
}

// decodeRunes decodes src one character at a time so that each invalid
// sequence is handled at its own offset.
func (t *TextStream) decodeRunes(tr transform.Transformer, src []byte, atEOF bool, base int64) ([]byte, int, error) {
	var out []byte
	dst := make([]byte, maxCharWidth)
	n := 0
	for n < len(src) {
		var nDst, nSrc int
		var err error
		for k := 1; k <= len(dst); k++ {
			if nDst, nSrc, err = tr.Transform(dst[:k], src[n:], atEOF); nDst != 0 || nSrc != 0 || !errors.Is(err, transform.ErrShortDst) {
				break
			}
		}
		if nDst == 0 && nSrc == 0 {
			if err == nil || (errors.Is(err, transform.ErrShortSrc) && !atEOF) {
				break
			}
			switch t.errors {
			case ErrorsStrict:
				return nil, 0, t.decodeError(base + int64(n))
			case ErrorsReplace:
				out = append(out, string(utf8.RuneError)...)
			}
			n++
			continue
		}
		text := dst[:nDst]
		if bytes.ContainsRune(text, utf8.RuneError) && !t.literalReplacement(text, src[n:n+nSrc]) {
			switch t.errors {
			case ErrorsStrict:
				return nil, 0, t.decodeError(base + int64(n))
			case ErrorsIgnore:
				text = bytes.ReplaceAll(text, []byte(string(utf8.RuneError)), nil)
			}
		}
		out = append(out, text...)
		n += nSrc
	}
	return out, n, nil
}

// literalReplacement reports whether unit is U+FFFD encoded in the stream
// rather than a sequence the decoder could not read.
func (t *TextStream) literalReplacement(text, unit []byte) bool {
	return len(t.replacement) != 0 && string(text) == string(utf8.RuneError) && bytes.HasSuffix(unit, t.replacement)
}

// translateNewlines applies universal newline translation. skipLF records
// that the previous chunk ended with '\r'.
func (t *TextStream) translateNewlines(b []byte, skipLF bool) ([]byte, bool) {
	if t.newline != NewlineUniversal || (!skipLF && bytes.IndexByte(b, '\r') == -1) {
		return b, skipLF
	}
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if skipLF {
			skipLF = false
			if c == '\n' {
				continue
			}
		}
		if c == '\r' {
			out = append(out, '\n')
			skipLF = true
			continue
		}
		out = append(out, c)
	}
	return out, skipLF
}

func (t *TextStream) readChunk() error {
	if t.eof {
		return io.EOF
	}
	pos, err := t.buf.Tell()
	if err != nil {
		return err
	}
	chunk := make([]byte, textChunkSize)
	n, err := t.buf.Read(chunk)
	switch {
	case err == io.EOF:
		t.eof = true
	case err != nil:
		return err
	}
	start := pos - int64(len(t.carry))
	input := append(t.carry, chunk[:n]...)
	out, consumed, err := t.decode(t.dec, input, t.eof, start)
	if err != nil {
		return err
	}
	skipLF := t.skipLF
	out, t.skipLF = t.translateNewlines(out, t.skipLF)
	if t.dpos == len(t.decoded) {
		t.snapPos, t.snapInput, t.snapSkipLF = start, input, skipLF
		t.decoded, t.dpos = out, 0
	} else {
		t.snapInput = append(t.snapInput, chunk[:n]...)
		t.decoded = append(t.decoded, out...)
	}
	t.carry = bytes.Clone(input[consumed:])
	return nil
}

func (t *TextStream) resetDecoder() {
	t.dec.Reset()
	t.decoded, t.dpos, t.carry = nil, 0, nil
	t.skipLF, t.eof = false, false
	t.snapPos, t.snapInput, t.snapSkipLF = 0, nil, false
}

func (t *TextStream) pending() bool {
	return t.dpos < len(t.decoded) || len(t.carry) != 0
}

func (t *TextStream) Read(p []byte) (int, error) {
	if err := t.buf.check(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	for t.dpos == len(t.decoded) {
		if err := t.readChunk(); err != nil {
			return 0, err
		}
	}
	n := copy(p, t.decoded[t.dpos:])
	t.dpos += n
	return n, nil
}

// ReadString returns up to n characters. A negative n reads to the end of
// the stream and never returns io.EOF.
func (t *TextStream) ReadString(n int) (string, error) {
	if err := t.buf.check(); err != nil {
		return "", err
	}
	if n < 0 {
		for {
			err := t.readChunk()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", err
			}
		}
		s := string(t.decoded[t.dpos:])
		t.dpos = len(t.decoded)
		return s, nil
	}
	for utf8.RuneCount(t.decoded[t.dpos:]) < n {
		err := t.readChunk()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	pending := t.decoded[t.dpos:]
	if len(pending) == 0 && n > 0 {
		return "", io.EOF
	}
	end := 0
	for i := 0; i < n && end < len(pending); i++ {
		_, size := utf8.DecodeRune(pending[end:])
		end += size
	}
	t.dpos += end
	return string(pending[:end]), nil
}

func (t *TextStream) lineEnd(b []byte) (int, bool) {
	switch t.newline {
	case NewlineCR:
		if i := bytes.IndexByte(b, '\r'); i != -1 {
			return i + 1, true
		}
	case NewlineCRLF:
		if i := bytes.Index(b, []byte("\r\n")); i != -1 {
			return i + 2, true
		}
	case NewlineNone:
		i := bytes.IndexAny(b, "\r\n")
		switch {
		case i == -1:
		case b[i] == '\n':
			return i + 1, true
		case i+1 < len(b) && b[i+1] == '\n':
			return i + 2, true
		case i+1 < len(b) || t.eof:
			return i + 1, true
		}
	default:
		if i := bytes.IndexByte(b, '\n'); i != -1 {
			return i + 1, true
		}
	}
	return 0, false
}

// ReadLine returns the next line including its terminator, or io.EOF once
// the stream is exhausted.
func (t *TextStream) ReadLine() (string, error) {
	if err := t.buf.check(); err != nil {
		return "", err
	}
	for {
		pending := t.decoded[t.dpos:]
		if end, ok := t.lineEnd(pending); ok {
			t.dpos += end
			return string(pending[:end]), nil
		}
		err := t.readChunk()
		if err == io.EOF {
			pending = t.decoded[t.dpos:]
			if len(pending) == 0 {
				return "", io.EOF
			}
			t.dpos = len(t.decoded)
			return string(pending), nil
		}
		if err != nil {
			return "", err
		}
	}
}

func (t *TextStream) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for {
			line, err := t.ReadLine()
			if err == io.EOF {
				return
			}
			if !yield(line, err) || err != nil {
				return
			}
		}
	}
}

// measure decodes the first i bytes of the current snapshot with a fresh
// decoder. complete is false when a character straddles the cut.
func (t *TextStream) measure(i int) (n int, complete bool) {
	out, consumed, err := t.decode(newTextDecoder(t.enc), t.snapInput[:i], false, t.snapPos)
	if err != nil {
		return 0, false
	}
	out, _ = t.translateNewlines(out, t.snapSkipLF)
	return len(out), consumed == i
}

// reconstruct finds the byte offset at which consumed bytes of decoded text
// end.
func (t *TextStream) reconstruct(consumed int) (int64, error) {
	hi := sort.Search(len(t.snapInput)+1, func(i int) bool {
		n, _ := t.measure(i)
		return n > consumed
	})
	for i := hi - 1; i >= 0 && i >= hi-maxCharWidth; i-- {
		if n, complete := t.measure(i); complete && n == consumed {
			return t.snapPos + int64(i), nil
		}
	}
	return 0, &IOError{Op: "tell", Path: t.buf.raw.Name(), Message: "can't reconstruct logical file position", Code: vfs.Failed}
}

func (t *TextStream) Tell() (int64, error) {
	if err := t.buf.check(); err != nil {
		return 0, err
	}
	switch {
	case t.dpos == len(t.decoded):
		pos, err := t.buf.Tell()
		if err != nil {
			return 0, err
		}
		pos -= int64(len(t.carry))
		if t.skipLF {
			return t.skipPendingLF(pos)
		}
		return pos, nil
	case t.dpos == 0 && !t.snapSkipLF:
		return t.snapPos, nil
	}
	return t.reconstruct(t.dpos)
}

// skipPendingLF moves pos past the '\n' of a "\r\n" whose '\r' ended the
// last chunk. Seek resets the decoder, so that '\n' would otherwise be read
// as a line of its own.
func (t *TextStream) skipPendingLF(pos int64) (int64, error) {
	if len(t.lf) == 0 {
		return pos, nil
	}
	next := t.carry
	if need := len(t.lf) - len(next); need > 0 {
		b, err := t.buf.Peek(need)
		if err != nil && err != io.EOF {
			return 0, err
		}
		next = append(bytes.Clone(next), b...)
	}
	if bytes.HasPrefix(next, t.lf) {
		return pos + int64(len(t.lf)), nil
	}
	return pos, nil
}

// Seek accepts an absolute position from Tell, or a zero offset relative to
// the current position or the end.
func (t *TextStream) Seek(offset int64, whence int) (int64, error) {
	if err := t.buf.check(); err != nil {
		return 0, err
	}
	switch whence {
	case io.SeekStart:
		if offset < 0 {
			return 0, &IOError{Op: "seek", Path: t.buf.raw.Name(), Message: fmt.Sprintf("negative seek position %d", offset), Code: vfs.InvalidArgument}
		}
	case io.SeekCurrent:
		if offset != 0 {
			return 0, &IOError{Op: "seek", Path: t.buf.raw.Name(), Message: "can't do nonzero cur-relative seeks", Code: vfs.NotSupported}
		}
		return t.Tell()
	case io.SeekEnd:
		if offset != 0 {
			return 0, &IOError{Op: "seek", Path: t.buf.raw.Name(), Message: "can't do nonzero end-relative seeks", Code: vfs.NotSupported}
		}
	default:
		return 0, &IOError{Op: "seek", Path: t.buf.raw.Name(), Message: fmt.Sprintf("invalid whence (%d, should be 0, 1 or 2)", whence), Code: vfs.InvalidArgument}
	}
	pos, err := t.buf.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	t.resetDecoder()
	if pos == 0 {
		t.encoder.Reset()
		t.encoderFresh = true
	}
	return pos, nil
}

// rewind moves the underlying stream back to the logical text position,
// discarding read-ahead.
func (t *TextStream) rewind() error {
	if !t.pending() {
		t.resetDecoder()
		return nil
	}
	pos, err := t.Tell()
	if err != nil {
		return err
	}
	if _, err := t.buf.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	t.resetDecoder()
	return nil
}

func (t *TextStream) encode(s []byte, offset int64) ([]byte, error) {
	if t.utf8 {
		if utf8.Valid(s) {
			return s, nil
		}
		switch t.errors {
		case ErrorsReplace:
			return bytes.ToValidUTF8(s, []byte("?")), nil
		case ErrorsIgnore:
			return bytes.ToValidUTF8(s, nil), nil
		}
		return nil, &CodecError{Encoding: t.encName, Op: "encode", Offset: offset}
	}
	var out []byte
	n := 0
	for {
		b, nSrc, err := transformAll(t.encoder, s[n:], true)
		out = append(out, b...)
		n += nSrc
		if err == nil || n >= len(s) {
			return out, nil
		}
		switch t.errors {
		case ErrorsStrict:
			return nil, &CodecError{Encoding: t.encName, Op: "encode", Offset: offset + int64(n)}
		case ErrorsReplace:
			r, _, _ := transformAll(t.encoder, []byte("?"), true)
			out = append(out, r...)
		}
		_, size := utf8.DecodeRune(s[n:])
		n += size
	}
}

// primeEncoder makes the first write away from the start of the stream
// skip any byte order mark.
func (t *TextStream) primeEncoder() error {
	if !t.encoderFresh {
		return nil
	}
	t.encoderFresh = false
	pos, err := t.buf.Tell()
	if err != nil {
		return err
	}
	if pos != 0 {
		_, _, _ = transformAll(t.encoder, nil, true)
	}
	return nil
}

// WriteString encodes s and writes it. With line buffering, text holding a
// line break is flushed through to the backend.
func (t *TextStream) WriteString(s string) (int, error) {
	if err := t.buf.check(); err != nil {
		return 0, err
	}
	if !t.buf.Writable() {
		return 0, errReadOnly("write", t.buf.raw.Name())
	}
	if err := t.rewind(); err != nil {
		return 0, err
	}
	if err := t.primeEncoder(); err != nil {
		return 0, err
	}
	text := s
	if nl := t.newline.terminator(); nl != "\n" {
		text = strings.ReplaceAll(s, "\n", nl)
	}
	b, err := t.encode([]byte(text), 0)
	if err != nil {
		return 0, err
	}
	if _, err := t.buf.Write(b); err != nil {
		return 0, err
	}
	if t.lineBuffering && strings.ContainsAny(s, "\n\r") {
		if err := t.buf.Flush(); err != nil {
			return len(s), err
		}
	}
	return len(s), nil
}

// Write writes p as UTF-8 text.
func (t *TextStream) Write(p []byte) (int, error) {
	return t.WriteString(string(p))
}

func (t *TextStream) Flush() error {
	return t.buf.Flush()
}

func (t *TextStream) Truncate(size int64) error {
	if err := t.buf.check(); err != nil {
		return err
	}
	return t.buf.Truncate(size)
}

func (t *TextStream) TruncateHere() error {
	pos, err := t.Tell()
	if err != nil {
		return err
	}
	return t.Truncate(pos)
}

func (t *TextStream) Close() error {
	return t.buf.Close()
}

func (t *TextStream) Closed() bool {
	return t.buf.Closed()
}

func (t *TextStream) Readable() bool {
	return t.buf.Readable()
}

func (t *TextStream) Writable() bool {
	return t.buf.Writable()
}

func (t *TextStream) Seekable() bool {
	return t.buf.Seekable()
}

func (t *TextStream) Name() string {
	return t.buf.Name()
}

func (t *TextStream) Fileno() (uintptr, error) {
	return t.buf.Fileno()
}

func (t *TextStream) IsTerminal() bool {
	return t.buf.IsTerminal()
}

var (
	_ Stream = &TextStream{}
)
