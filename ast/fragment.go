// Copyright © 2024 The ELPS authors

// Package ast defines the Fragment Tree produced by the AutoLISP reader and
// the flattened, indexed views that symbol analysis is built on.
package ast

import (
	"strings"

	"github.com/Methuselah96/auto-lisp-parser/parser/token"
)

// Type is the syntactic kind of a Fragment.
type Type uint

const (
	// Invalid (0) is not a valid fragment type.
	Invalid Type = iota
	// Document is the root container of a source file.  Its Cells are the
	// top-level forms and comments of the file.
	Document
	// List is a parenthesized form.  Its Cells are the elements of the list
	// in source order, including comments and Dot markers.
	List
	// Symbol atoms store their name, in source case, in Fragment.Text.
	Symbol
	// String atoms store the quoted literal, delimiters included, in
	// Fragment.Text.
	String
	// Number atoms store an integer or real literal in Fragment.Text.
	Number
	// Comment atoms store a line comment or a ;| |; block comment.
	Comment
	// Dot is the separator of a dotted pair.
	Dot
	// TypeMax is numerically greater than all valid Type values.
	TypeMax
)

var typeStrings = []string{
	Invalid:  "INVALID",
	Document: "document",
	List:     "list",
	Symbol:   "symbol",
	String:   "string",
	Number:   "number",
	Comment:  "comment",
	Dot:      "dot",
}

func (t Type) String() string {
	if t >= TypeMax {
		return typeStrings[Invalid]
	}
	return typeStrings[t]
}

// Fragment is one parsed syntactic unit: an atom or a container of other
// fragments.  A container exclusively owns its Cells.  The parent link is a
// non-owning back reference maintained by Append.
type Fragment struct {
	Type   Type
	Text   string
	Cells  []*Fragment
	Source *token.Location
	// Quoted is set when the fragment was prefixed with a quote in source.
	Quoted bool
	// Global marks a candidate global occurrence.  The flag is assigned by
	// the reader's flag rule and is only a hint until the occurrence has been
	// verified against its enclosing scopes.
	Global bool

	parent *Fragment
	// flatIndex holds the stamped index plus one so that the zero value means
	// the fragment has not been flattened.
	flatIndex int
	symbols   *SymbolIndex
}

// NewDocument returns an empty document container.
func NewDocument(src *token.Location) *Fragment {
	return &Fragment{Type: Document, Source: src}
}

// NewList returns a list container holding cells.
func NewList(src *token.Location, cells ...*Fragment) *Fragment {
	f := &Fragment{Type: List, Source: src}
	f.Append(cells...)
	return f
}

// NewAtom returns an atom of the given type.
func NewAtom(typ Type, text string, src *token.Location) *Fragment {
	return &Fragment{Type: typ, Text: text, Source: src}
}

// Append adds children to a container and links them back to it.
func (f *Fragment) Append(cells ...*Fragment) {
	for _, c := range cells {
		c.parent = f
		f.Cells = append(f.Cells, c)
	}
}

// Parent returns the enclosing container, or nil for a root.
func (f *Fragment) Parent() *Fragment {
	return f.parent
}

// Root returns the outermost container enclosing f, or f itself.
func (f *Fragment) Root() *Fragment {
	for f.parent != nil {
		f = f.parent
	}
	return f
}

// FlatIndex returns the index stamped by the last Flatten that visited f, or
// -1 when f has never been flattened.
func (f *Fragment) FlatIndex() int {
	return f.flatIndex - 1
}

// HasGlobalFlag reports whether the reader marked f as a candidate global
// occurrence.
func (f *Fragment) HasGlobalFlag() bool {
	return f.Global
}

// IsContainer reports whether f can own children.
func (f *Fragment) IsContainer() bool {
	return f.Type == Document || f.Type == List
}

// IsSymbol reports whether f is a symbol atom.
func (f *Fragment) IsSymbol() bool {
	return f.Type == Symbol
}

// Name returns the normalized name of a symbol atom and "" for anything else.
func (f *Fragment) Name() string {
	if f.Type != Symbol {
		return ""
	}
	return NormalizeName(f.Text)
}

// Range returns the source range covered by f.
func (f *Fragment) Range() Range {
	if f.Source == nil {
		return Range{}
	}
	return NewRange(
		Position{Line: f.Source.Line, Column: f.Source.Col},
		Position{Line: f.Source.EndLine, Column: f.Source.EndCol},
	)
}

// Head returns the first non-comment cell of a list, or nil.
func (f *Fragment) Head() *Fragment {
	if f.Type != List {
		return nil
	}
	for _, c := range f.Cells {
		if c.Type != Comment {
			return c
		}
	}
	return nil
}

// Forms returns the non-comment cells of a container.  The returned slice is
// shared with f when f has no comments.
func (f *Fragment) Forms() []*Fragment {
	n := 0
	for _, c := range f.Cells {
		if c.Type == Comment {
			n++
		}
	}
	if n == 0 {
		return f.Cells
	}
	forms := make([]*Fragment, 0, len(f.Cells)-n)
	for _, c := range f.Cells {
		if c.Type != Comment {
			forms = append(forms, c)
		}
	}
	return forms
}

// FragmentAt returns the innermost fragment under f whose range contains
// pos, or nil.  Comments are never returned.
func (f *Fragment) FragmentAt(pos Position) *Fragment {
	if f.Type != Document && !f.Range().ContainsPosition(pos) {
		return nil
	}
	for _, c := range f.Cells {
		if c.Type == Comment {
			continue
		}
		if found := c.FragmentAt(pos); found != nil {
			return found
		}
	}
	if f.Type == Document {
		return nil
	}
	return f
}

func (f *Fragment) String() string {
	var buf strings.Builder
	f.write(&buf)
	return buf.String()
}

func (f *Fragment) write(buf *strings.Builder) {
	if f.Quoted {
		buf.WriteByte('\'')
	}
	switch f.Type {
	case Document:
		for i, c := range f.Cells {
			if i > 0 {
				buf.WriteByte('\n')
			}
			c.write(buf)
		}
	case List:
		buf.WriteByte('(')
		for i, c := range f.Cells {
			if i > 0 {
				buf.WriteByte(' ')
			}
			c.write(buf)
		}
		buf.WriteByte(')')
	case Dot:
		buf.WriteByte('.')
	default:
		buf.WriteString(f.Text)
	}
}
