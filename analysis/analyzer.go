// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/astutil"
	"github.com/Methuselah96/auto-lisp-parser/document"
)

// scopeBuilder is the internal state for building one document's scopes.
type scopeBuilder struct {
	doc  *document.Snapshot
	refs []*SymbolReference
	decl map[*ast.Fragment]bool
}

// buildScopes returns the scope tree of one version of a document and a
// reference for every symbol occurrence in flat index order.
func buildScopes(view *document.View) (*Scope, []*SymbolReference) {
	doc := view.Snapshot()
	root := NewScope(ScopeGlobal, nil, view.Container())
	root.Doc = doc
	b := &scopeBuilder{
		doc:  doc,
		refs: make([]*SymbolReference, 0, view.UserSymbols().Len()),
		decl: make(map[*ast.Fragment]bool),
	}
	for _, c := range root.Node.Cells {
		b.visit(c, root, false)
	}
	return root, b.refs
}

// visit walks f in preorder so references are produced in flat index
// order.  Lists inside quoted data never introduce scopes.
func (b *scopeBuilder) visit(f *ast.Fragment, scope *Scope, quoted bool) {
	quoted = quoted || f.Quoted
	switch {
	case f.Type == ast.Symbol:
		b.refs = append(b.refs, &SymbolReference{
			Name:        f.Name(),
			FlatIndex:   f.FlatIndex(),
			Doc:         b.doc,
			Fragment:    f,
			Scope:       scope,
			Declaration: b.decl[f],
		})
		return
	case !f.IsContainer():
		return
	}
	var binder *astutil.Binder
	if !quoted {
		binder = astutil.AsBinder(f)
	}
	if binder == nil {
		for _, c := range f.Cells {
			b.visit(c, scope, quoted)
		}
		return
	}

	inner := NewScope(scopeKind(binder.Kind), scope, f)
	if binder.Name != nil {
		inner.Name = binder.Name.Name()
	}
	for _, sym := range binder.Declarations() {
		inner.Declare(sym)
		b.decl[sym] = true
	}
	// The head, the function name and iterated collections are evaluated
	// in the enclosing scope.
	outer := map[*ast.Fragment]bool{f.Head(): true}
	if binder.Name != nil {
		outer[binder.Name] = true
	}
	for _, o := range binder.Outer {
		outer[o] = true
	}
	for _, c := range f.Cells {
		if outer[c] {
			b.visit(c, scope, false)
		} else {
			b.visit(c, inner, false)
		}
	}
}

func scopeKind(k astutil.BinderKind) ScopeKind {
	switch k {
	case astutil.Defun:
		return ScopeFunction
	case astutil.Lambda:
		return ScopeLambda
	default:
		return ScopeForeach
	}
}
