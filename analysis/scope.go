// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/document"
)

// ScopeKind classifies the kind of scope.
type ScopeKind int

const (
	ScopeGlobal   ScopeKind = iota // document root
	ScopeFunction                  // defun/defun-q body
	ScopeLambda                    // lambda body
	ScopeForeach                   // foreach/vlax-for body
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeLambda:
		return "lambda"
	case ScopeForeach:
		return "foreach"
	default:
		return "unknown"
	}
}

// Scope represents a lexical scope in a document.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Children []*Scope
	// Node is the binder form that introduced the scope, or the document
	// root for the global scope.
	Node *ast.Fragment
	Doc  *document.Snapshot
	// Name is the function name of a defun scope.
	Name string

	declared map[string][]*ast.Fragment
}

// NewScope creates a new scope of the given kind with the given parent.
func NewScope(kind ScopeKind, parent *Scope, node *ast.Fragment) *Scope {
	s := &Scope{
		Kind:     kind,
		Parent:   parent,
		Node:     node,
		declared: make(map[string][]*ast.Fragment),
	}
	if parent != nil {
		s.Doc = parent.Doc
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Declare binds the name of sym in this scope.
func (s *Scope) Declare(sym *ast.Fragment) {
	name := sym.Name()
	s.declared[name] = append(s.declared[name], sym)
}

// Binds reports whether this scope, not its parents, declares name.
func (s *Scope) Binds(name string) bool {
	_, ok := s.declared[ast.NormalizeName(name)]
	return ok
}

// Declarations returns the symbols declaring name in this scope.
func (s *Scope) Declarations(name string) []*ast.Fragment {
	return s.declared[ast.NormalizeName(name)]
}

// Localize returns the nearest scope, starting at s and walking the parent
// chain, that binds name.  When no scope binds it the root scope is
// returned.
func (s *Scope) Localize(name string) *Scope {
	name = ast.NormalizeName(name)
	scope := s
	for ; scope.Parent != nil; scope = scope.Parent {
		if _, ok := scope.declared[name]; ok {
			return scope
		}
	}
	return scope
}

// Root returns the global scope of the document.
func (s *Scope) Root() *Scope {
	for s.Parent != nil {
		s = s.Parent
	}
	return s
}

// IsGlobal reports whether s is a document root scope.
func (s *Scope) IsGlobal() bool {
	return s.Parent == nil
}

// Equal reports whether s and other are the same scope.
func (s *Scope) Equal(other *Scope) bool {
	return s == other
}

// Range returns the source range of the scope's node.
func (s *Scope) Range() ast.Range {
	if s.Node == nil {
		return ast.Range{}
	}
	return s.Node.Range()
}
