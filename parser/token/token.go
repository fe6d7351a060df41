// Copyright © 2018 The ELPS authors

package token

import "fmt"

// Source is an abstract stream of tokens which allows one token lookahead.
type Source interface {
	// Token returns the current token.  Token returns nil if Scan has not been
	// called.
	Token() *Token
	// Peek returns the next token in the stream.  At the end of the stream
	// Peek should return a value to indicate the lack of a token (EOF).
	Peek() *Token
	// Scan advances the token stream if possible.  If there are no tokens
	// remaining Scan returns false.
	Scan() bool
}

type Token struct {
	Type   Type
	Text   string
	Source *Location
}

type Type uint

// Type constants used for the AutoLISP lexer/parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	// Atomic expressions & literals
	SYMBOL
	INT
	REAL
	STRING

	COMMENT
	COMMENT_BLOCK

	// Operators
	QUOTE
	DOT

	// Delimiters
	PAREN_L
	PAREN_R

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:       "invalid",
		ERROR:         "error",
		EOF:           "EOF",
		SYMBOL:        "symbol",
		INT:           "int",
		REAL:          "real",
		STRING:        "string",
		COMMENT:       ";",
		COMMENT_BLOCK: ";|",
		QUOTE:         "'",
		DOT:           ".",
		PAREN_L:       "(",
		PAREN_R:       ")",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// Location identifies a span of source text.  Line and Col locate the first
// rune; EndLine and EndCol locate the position just past the last rune.  All
// four are 1-based when tracked and zero otherwise.
type Location struct {
	File    string // a name representing the source stream
	Path    string // a physical location which may differ from File
	Pos     int    // byte offset of the first rune
	Line    int
	Col     int
	EndPos  int
	EndLine int
	EndCol  int
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

// Span returns a copy of loc that ends where end ends.
func (loc *Location) Span(end *Location) *Location {
	cp := *loc
	if end != nil {
		cp.EndPos = end.EndPos
		cp.EndLine = end.EndLine
		cp.EndCol = end.EndCol
	}
	return &cp
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
