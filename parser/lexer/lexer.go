// Copyright © 2018 The ELPS authors

package lexer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/Methuselah96/auto-lisp-parser/parser/token"
)

type LexFn func(*Lexer) []*token.Token

// wordBreakRunes terminate a symbol or number in addition to whitespace.
const wordBreakRunes = `()'";`

type Lexer struct {
	scanner *token.Scanner
	lex     LexFn
}

func New(s *token.Scanner) *Lexer {
	lex := &Lexer{
		scanner: s,
		lex:     (*Lexer).readToken,
	}
	return lex
}

func (lex *Lexer) ReadToken() []*token.Token {
	return lex.lex(lex)
}

func (lex *Lexer) readToken() []*token.Token {
	lex.skipWhitespace()
	if !lex.scanner.Accept(func(c rune) bool { return true }) {
		if lex.scanner.EOF() {
			return lex.emit(token.EOF, "")
		}
		if err := lex.scanner.Err(); err != nil {
			return lex.emitError(err)
		}
		// The only other way Accept fails is an invalid utf-8 sequence.
		err := lex.scanner.ScanRune()
		lex.scanner.Discard()
		return lex.emitError(err)
	}
	switch lex.scanner.Rune() {
	case '(':
		return lex.emitText(token.PAREN_L)
	case ')':
		return lex.emitText(token.PAREN_R)
	case '\'':
		return lex.emitText(token.QUOTE)
	case ';':
		if lex.scanner.AcceptRune('|') {
			return lex.readBlockComment()
		}
		lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
		return lex.emitText(token.COMMENT)
	case '"':
		return lex.readString()
	default:
		return lex.readWord()
	}
}

// readBlockComment consumes the remainder of a ;| ... |; comment.  Block
// comments may span lines.
func (lex *Lexer) readBlockComment() []*token.Token {
	for {
		if _, ok := lex.scanner.AcceptString("|;"); ok {
			return lex.emitText(token.COMMENT_BLOCK)
		}
		if !lex.scanner.Accept(func(c rune) bool { return true }) {
			return lex.errorf("unterminated block comment")
		}
	}
}

// readString consumes a string literal.  AutoLISP strings may span lines and
// use backslash escapes; escapes are validated when the value is needed, not
// here.
func (lex *Lexer) readString() []*token.Token {
	for {
		if lex.scanner.AcceptRune('"') {
			return lex.emitText(token.STRING)
		}
		if lex.scanner.AcceptRune('\\') {
			if !lex.scanner.Accept(func(c rune) bool { return true }) {
				return lex.errorf("unterminated string literal")
			}
			continue
		}
		if !lex.scanner.Accept(func(c rune) bool { return true }) {
			return lex.errorf("unterminated string literal")
		}
	}
}

// readWord consumes a run of non-delimiter runes and classifies it.  Symbol
// names such as 1+ and 1- begin with digits so classification happens only
// after the whole word is known.
func (lex *Lexer) readWord() []*token.Token {
	lex.scanner.AcceptSeq(isWord)
	text := lex.scanner.Text()
	switch {
	case text == ".":
		return lex.emitText(token.DOT)
	case isInt(text):
		return lex.emitText(token.INT)
	case isReal(text):
		return lex.emitText(token.REAL)
	default:
		return lex.emitText(token.SYMBOL)
	}
}

func (lex *Lexer) emit(typ token.Type, text string) []*token.Token {
	tok := []*token.Token{{
		Type:   typ,
		Text:   text,
		Source: lex.scanner.LocStart(),
	}}
	lex.scanner.Ignore()
	return tok
}

func (lex *Lexer) emitText(typ token.Type) []*token.Token {
	return []*token.Token{lex.scanner.EmitToken(typ)}
}

func (lex *Lexer) emitError(err error) []*token.Token {
	if err == io.EOF {
		return lex.emit(token.ERROR, "unexpected EOF")
	}
	return lex.emit(token.ERROR, err.Error())
}

func (lex *Lexer) errorf(format string, v ...interface{}) []*token.Token {
	return lex.emitError(fmt.Errorf(format, v...))
}

func (lex *Lexer) skipWhitespace() {
	if lex.scanner.AcceptSeqSpace() > 0 {
		lex.scanner.Ignore()
	}
}

func isWord(c rune) bool {
	return !unicode.IsSpace(c) && !strings.ContainsRune(wordBreakRunes, c)
}

func isNumeric(text string) bool {
	if text == "" {
		return false
	}
	for _, c := range text {
		if !strings.ContainsRune("0123456789.eE+-", c) {
			return false
		}
	}
	return true
}

func isInt(text string) bool {
	if !isNumeric(text) {
		return false
	}
	_, err := strconv.ParseInt(text, 10, 64)
	return err == nil
}

func isReal(text string) bool {
	if !isNumeric(text) {
		return false
	}
	_, err := strconv.ParseFloat(text, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}
