// Copyright © 2018 The ELPS authors

// Package rdparser implements a fault tolerant recursive descent reader for
// AutoLISP.  The reader always produces a Fragment Tree; syntax problems are
// collected alongside it instead of aborting the parse.
package rdparser

import (
	"errors"
	"fmt"

	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/parser/token"
)

// Parser is an AutoLISP reader.
type Parser struct {
	src  *TokenSource
	file string
	errs []*token.LocationError
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	return &Parser{
		src: src,
	}
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	p := NewFromSource(NewTokenSource(scanner))
	p.file = scanner.Loc().File
	return p
}

// ParseDocument reads every form in the input and returns the document root
// along with any syntax errors encountered.  The root is never nil.
//
// Recovery rules: an unmatched closing paren is skipped, a list still open
// at EOF is closed there, and lexical errors drop the offending text.  Each
// recovery is reported as an error.
func (p *Parser) ParseDocument() (*ast.Fragment, []*token.LocationError) {
	doc := ast.NewDocument(&token.Location{File: p.file, Line: 1, Col: 1})
	for !p.src.IsEOF() {
		switch p.PeekType() {
		case token.PAREN_R:
			p.ReadToken()
			p.errorf("unmatched %s", p.TokenText())
		case token.DOT:
			p.ReadToken()
			p.errorf("unexpected %s outside of a list", p.TokenText())
			doc.Append(p.atom(ast.Dot))
		default:
			if f := p.ParseExpression(); f != nil {
				doc.Append(f)
			}
		}
	}
	doc.Source = doc.Source.Span(p.PeekLocation())
	errs := p.errs
	p.errs = nil
	return doc, errs
}

// ParseExpression parses a single form or comment.  It returns nil when the
// next token does not begin a form, in which case the token has been consumed
// and an error recorded unless the input is at EOF.
func (p *Parser) ParseExpression() *ast.Fragment {
	switch p.PeekType() {
	case token.EOF:
		return nil
	case token.SYMBOL:
		p.ReadToken()
		return p.atom(ast.Symbol)
	case token.INT, token.REAL:
		p.ReadToken()
		return p.atom(ast.Number)
	case token.STRING:
		p.ReadToken()
		return p.atom(ast.String)
	case token.COMMENT, token.COMMENT_BLOCK:
		p.ReadToken()
		return p.atom(ast.Comment)
	case token.DOT:
		p.ReadToken()
		return p.atom(ast.Dot)
	case token.QUOTE:
		return p.ParseQuote()
	case token.PAREN_L:
		return p.ParseList()
	case token.ERROR, token.INVALID:
		p.ReadToken()
		p.scanError()
		return nil
	default:
		p.ReadToken()
		p.errorf("unexpected token: %v", p.TokenType())
		return nil
	}
}

// ParseQuote parses a quoted form.  Repeated quotes collapse into a single
// quoted fragment whose range starts at the first quote.
func (p *Parser) ParseQuote() *ast.Fragment {
	if !p.Accept(token.QUOTE) {
		p.errorf("invalid quote: %v", p.PeekType())
		return nil
	}
	quote := p.Location()
	p.ignoreComments()
	switch p.PeekType() {
	case token.EOF, token.PAREN_R, token.DOT:
		p.errorf("quote is not followed by an expression")
		return nil
	}
	f := p.ParseExpression()
	if f == nil {
		return nil
	}
	f.Quoted = true
	f.Source = quote.Span(f.Source)
	return f
}

// ParseList parses a parenthesized form.  A list left open at EOF is closed
// there and reported.
func (p *Parser) ParseList() *ast.Fragment {
	if !p.Accept(token.PAREN_L) {
		p.errorf("invalid list: %v", p.PeekType())
		return nil
	}
	open := p.Location()
	list := ast.NewList(nil)
	for {
		if p.src.IsEOF() {
			p.errs = append(p.errs, &token.LocationError{
				Err:    fmt.Errorf("unmatched %s", "("),
				Source: open,
			})
			list.Source = open.Span(p.PeekLocation())
			return list
		}
		if p.Accept(token.PAREN_R) {
			break
		}
		if x := p.ParseExpression(); x != nil {
			list.Append(x)
		}
	}
	list.Source = open.Span(p.Location())
	return list
}

func (p *Parser) ignoreComments() {
	for p.Accept(token.COMMENT, token.COMMENT_BLOCK) {
	}
}

func (p *Parser) ReadToken() *token.Token {
	p.src.Scan()
	return p.src.Token
}

func (p *Parser) TokenText() string {
	return p.src.Token.Text
}

func (p *Parser) TokenType() token.Type {
	return p.src.Token.Type
}

func (p *Parser) Location() *token.Location {
	return p.src.Token.Source
}

func (p *Parser) PeekType() token.Type {
	return p.src.Peek().Type
}

func (p *Parser) PeekLocation() *token.Location {
	return p.src.Peek().Source
}

func (p *Parser) Accept(typ ...token.Type) bool {
	return p.src.AcceptType(typ...)
}

func (p *Parser) atom(typ ast.Type) *ast.Fragment {
	return ast.NewAtom(typ, p.TokenText(), p.Location())
}

func (p *Parser) errorf(format string, v ...interface{}) {
	p.errs = append(p.errs, &token.LocationError{
		Err:    fmt.Errorf(format, v...),
		Source: p.Location(),
	})
}

func (p *Parser) scanError() {
	p.errs = append(p.errs, &token.LocationError{
		Err:    errors.New(p.TokenText()),
		Source: p.Location(),
	})
}
