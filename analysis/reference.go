// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/document"
)

// SymbolReference records one occurrence of a symbol in a document.
type SymbolReference struct {
	// Name is the normalized symbol name.
	Name      string
	FlatIndex int
	Doc       *document.Snapshot
	Fragment  *ast.Fragment
	// Scope is the innermost scope containing the occurrence.
	Scope *Scope
	// Declaration is set when the occurrence is a parameter or local
	// declaration of a binder.
	Declaration bool
}

// FindLocalizingParent returns the nearest scope binding the referenced
// name, or the document root scope if none does.
func (r *SymbolReference) FindLocalizingParent() *Scope {
	return r.Scope.Localize(r.Name)
}

// IsLocal reports whether the reference resolves to a binder rather than
// the document root.
func (r *SymbolReference) IsLocal() bool {
	return !r.FindLocalizingParent().IsGlobal()
}

// IsGlobalizer reports whether the occurrence carries the global flag.
func (r *SymbolReference) IsGlobalizer() bool {
	return r.Fragment.HasGlobalFlag()
}

// Range returns the source range of the occurrence.
func (r *SymbolReference) Range() ast.Range {
	return r.Fragment.Range()
}

type refKey struct {
	doc   *document.Snapshot
	index int
}
