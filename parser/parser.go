// Copyright © 2018 The ELPS authors

// Package parser is the entry point for reading AutoLISP source into a
// Fragment Tree.
package parser

import (
	"io"
	"strings"

	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/parser/rdparser"
	"github.com/Methuselah96/auto-lisp-parser/parser/token"
)

// FlagRule marks candidate global occurrences in a freshly read document by
// setting Fragment.Global.
type FlagRule func(doc *ast.Fragment)

// Result is the outcome of reading one source stream.  Root is never nil.
type Result struct {
	Root   *ast.Fragment
	Errors []*token.LocationError
}

type config struct {
	path string
	flag FlagRule
}

// Option configures Parse.
type Option func(*config)

// WithPath records the physical location of the source in fragment
// locations.
func WithPath(path string) Option {
	return func(c *config) {
		c.path = path
	}
}

// WithFlagRule replaces the default flag rule.  A nil rule leaves every
// fragment unflagged.
func WithFlagRule(rule FlagRule) Option {
	return func(c *config) {
		c.flag = rule
	}
}

// Parse reads all of r.
func Parse(name string, r io.Reader, opts ...Option) *Result {
	c := &config{flag: FlagAssignments}
	for _, opt := range opts {
		opt(c)
	}
	s := token.NewScanner(name, r)
	if c.path != "" {
		s.SetPath(c.path)
	}
	root, errs := rdparser.New(s).ParseDocument()
	if c.flag != nil {
		c.flag(root)
	}
	return &Result{Root: root, Errors: errs}
}

// ParseString reads text.
func ParseString(name string, text string, opts ...Option) *Result {
	return Parse(name, strings.NewReader(text), opts...)
}

// FlagAssignments is the default FlagRule.  It flags the variables assigned
// by setq and the quoted symbol assigned by set.  Quoted forms are data and
// are not inspected.
func FlagAssignments(doc *ast.Fragment) {
	var visit func(f *ast.Fragment)
	visit = func(f *ast.Fragment) {
		if f.Quoted {
			return
		}
		if f.Type == ast.List {
			flagAssignment(f)
		}
		for _, c := range f.Cells {
			visit(c)
		}
	}
	visit(doc)
}

func flagAssignment(list *ast.Fragment) {
	forms := list.Forms()
	if len(forms) < 2 || forms[0].Type != ast.Symbol {
		return
	}
	switch ast.NormalizeName(forms[0].Text) {
	case "setq":
		for i := 1; i < len(forms); i += 2 {
			if forms[i].Type == ast.Symbol && !forms[i].Quoted {
				forms[i].Global = true
			}
		}
	case "set":
		if forms[1].Type == ast.Symbol && forms[1].Quoted {
			forms[1].Global = true
		}
	}
}
