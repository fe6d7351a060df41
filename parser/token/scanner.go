// Copyright © 2018 The ELPS authors

package token

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scanner facilitates construction of tokens from a byte stream (io.Reader).
// The stream is read in full when the Scanner is created; documents are
// re-read from scratch on every edit so there is nothing to gain from
// streaming.
type Scanner struct {
	file string
	path string

	buf     []byte
	readErr error

	start     int // start of the current token
	startLine int
	startCol  int
	next      int // index of the rune following the last scanned rune
	line      int // line number at next
	col       int // rune column at next
	c         Rune
}

// NewScanner initializes and returns a new Scanner.
func NewScanner(file string, r io.Reader) *Scanner {
	buf, err := io.ReadAll(r)
	s := &Scanner{
		file:      file,
		buf:       buf,
		readErr:   err,
		line:      1,
		col:       1,
		startLine: 1,
		startCol:  1,
	}
	return s
}

// NewStringScanner is a convenience for scanning in-memory text.
func NewStringScanner(file string, text string) *Scanner {
	return NewScanner(file, strings.NewReader(text))
}

// SetPath associates a physical location (e.g. filesystem path) with s to aid
// in debugging projects which scan many ungrouped files.
func (s *Scanner) SetPath(path string) {
	s.path = path
}

// EmitToken returns a token containing the text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Source: s.LocStart(),
	}
	s.Ignore()
	return tok
}

// Ignore causes the scanner to skip all text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) Ignore() {
	s.start = s.next
	s.startLine = s.line
	s.startCol = s.col
}

// Text returns a string containing text scanned since the last call to either
// EmitToken or Ignore.
func (s *Scanner) Text() string {
	return string(s.buf[s.start:s.next])
}

// Rune returns the current unicode rune that is being scanned.  The rune
// returned by Rune is the last rune in a token returned by EmitToken.
func (s *Scanner) Rune() rune {
	return s.c.C
}

// Peek returns the next rune to be scanned, if there are any.  If an invalid
// utf-8 sequence or EOF prevents futher runes from being scanned Peek returns
// a false second value.
func (s *Scanner) Peek() (rune, bool) {
	if s.next >= len(s.buf) {
		return 0, false
	}
	c, n := utf8.DecodeRune(s.buf[s.next:])
	if (Rune{c, n}).IsRuneError() {
		return utf8.RuneError, false
	}
	return c, true
}

// PeekN returns the rune n positions past the next rune to be scanned.
// PeekN(0) is equivalent to Peek.
func (s *Scanner) PeekN(n int) (rune, bool) {
	pos := s.next
	for i := 0; ; i++ {
		if pos >= len(s.buf) {
			return 0, false
		}
		c, size := utf8.DecodeRune(s.buf[pos:])
		if (Rune{c, size}).IsRuneError() {
			return utf8.RuneError, false
		}
		if i == n {
			return c, true
		}
		pos += size
	}
}

// ScanRune attempts to scan a utf-8 rune from the input for inclusion in the
// current token.  If an error prevents a valid unicode rune from being scanned
// then an error will be returned.
func (s *Scanner) ScanRune() error {
	if s.next >= len(s.buf) {
		if s.readErr != nil {
			return s.readErr
		}
		return io.EOF
	}
	c, n := utf8.DecodeRune(s.buf[s.next:])
	r := Rune{c, n}
	if r.IsRuneError() {
		return fmt.Errorf("invalid utf-8 sequence in source text starting with byte %q", s.buf[s.next])
	}
	s.scan(r)
	return nil
}

func (s *Scanner) scan(r Rune) {
	s.c = r
	s.next += r.N
	if r.C == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

// Discard consumes a single byte that could not be decoded so that scanning
// can resume after an invalid utf-8 sequence.  The byte occupies one column.
func (s *Scanner) Discard() {
	if s.next >= len(s.buf) {
		return
	}
	s.scan(Rune{C: utf8.RuneError, N: 1})
}

// Err returns an error encountered while reading the input stream.
func (s *Scanner) Err() error {
	if s.readErr == nil || s.readErr == io.EOF {
		return nil
	}
	return s.readErr
}

// EOF returns true when all input has been scanned.
func (s *Scanner) EOF() bool {
	return s.next >= len(s.buf)
}

func (s *Scanner) Accept(fn func(rune) bool) bool {
	peek, ok := s.Peek()
	if !ok {
		return false
	}
	if fn(peek) {
		return s.ScanRune() == nil
	}
	return false
}

func (s *Scanner) AcceptRune(c rune) bool {
	peek, ok := s.Peek()
	if !ok {
		return false
	}
	if peek == c {
		return s.ScanRune() == nil
	}
	return false
}

func (s *Scanner) AcceptSpace() bool {
	return s.Accept(unicode.IsSpace)
}

func (s *Scanner) AcceptAny(charset string) bool {
	return s.Accept(func(c rune) bool { return strings.ContainsRune(charset, c) })
}

func (s *Scanner) AcceptSeq(fn func(rune) bool) int {
	var n int
	for s.Accept(fn) {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqSpace() int {
	return s.AcceptSeq(unicode.IsSpace)
}

func (s *Scanner) AcceptString(literal string) (int, bool) {
	var n int
	for _, c := range literal {
		if !s.AcceptRune(c) {
			return n, false
		}
		n++
	}
	return n, true
}

// LocStart returns a Location spanning the current token, from the end of the
// previous token to the last scanned rune.
func (s *Scanner) LocStart() *Location {
	return &Location{
		File:    s.file,
		Path:    s.path,
		Pos:     s.start,
		Line:    s.startLine,
		Col:     s.startCol,
		EndPos:  s.next,
		EndLine: s.line,
		EndCol:  s.col,
	}
}

// Loc returns a zero-width Location referencing the current scanner position.
func (s *Scanner) Loc() *Location {
	return &Location{
		File:    s.file,
		Path:    s.path,
		Pos:     s.next,
		Line:    s.line,
		Col:     s.col,
		EndPos:  s.next,
		EndLine: s.line,
		EndCol:  s.col,
	}
}

// Rune contains a rune that read by Scanner during peeking operations.
type Rune struct {
	C rune
	N int
}

// IsRuneError returns true if Rune represents an invalid utf-8 sequence read
// by utf8.DecodeRune.
func (r Rune) IsRuneError() bool {
	return r.C == utf8.RuneError && r.N == 1
}
