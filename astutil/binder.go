// Copyright © 2024 The ELPS authors

package astutil

import "github.com/Methuselah96/auto-lisp-parser/ast"

// BinderKind classifies the scope-introducing forms of AutoLISP.
type BinderKind int

const (
	NotBinder BinderKind = iota
	// Defun is (defun name (params / locals) body...) or defun-q.
	Defun
	// Lambda is (lambda (params / locals) body...).
	Lambda
	// Foreach is (foreach var list body...) or (vlax-for var coll body...).
	Foreach
)

func (k BinderKind) String() string {
	switch k {
	case Defun:
		return "defun"
	case Lambda:
		return "lambda"
	case Foreach:
		return "foreach"
	default:
		return "none"
	}
}

// Binder describes a scope-introducing form.
type Binder struct {
	Kind BinderKind
	Form *ast.Fragment
	// Name is the function name symbol of a defun, or nil.
	Name *ast.Fragment
	// Params holds the declared parameters, or the iteration variable of a
	// foreach form.
	Params []*ast.Fragment
	// Locals holds the symbols declared after the / separator.
	Locals []*ast.Fragment
	// Outer holds argument forms that belong to the enclosing scope even
	// though they are written inside the binder, such as the list a foreach
	// iterates over.
	Outer []*ast.Fragment
	// Body holds the forms evaluated inside the new scope.
	Body []*ast.Fragment
}

// Binds reports whether b declares name, which must be normalized.
func (b *Binder) Binds(name string) bool {
	for _, p := range b.Params {
		if p.Name() == name {
			return true
		}
	}
	for _, p := range b.Locals {
		if p.Name() == name {
			return true
		}
	}
	return false
}

// Declarations returns the parameter and local symbols in source order.
func (b *Binder) Declarations() []*ast.Fragment {
	decls := make([]*ast.Fragment, 0, len(b.Params)+len(b.Locals))
	decls = append(decls, b.Params...)
	return append(decls, b.Locals...)
}

// AsBinder returns the binder described by form, or nil when form does not
// introduce a scope.  Malformed binders, such as a defun whose parameter
// list is missing, still introduce a scope with whatever could be read.
func AsBinder(form *ast.Fragment) *Binder {
	if form.Type != ast.List || form.Quoted {
		return nil
	}
	args := Args(form)
	switch HeadSymbol(form) {
	case "defun", "defun-q":
		b := &Binder{Kind: Defun, Form: form}
		if len(args) > 0 && args[0].Type == ast.Symbol {
			b.Name = args[0]
			args = args[1:]
		}
		if len(args) > 0 && args[0].Type == ast.List {
			b.Params, b.Locals = SplitParams(args[0])
			args = args[1:]
		}
		b.Body = args
		return b
	case "lambda":
		b := &Binder{Kind: Lambda, Form: form}
		if len(args) > 0 && args[0].Type == ast.List {
			b.Params, b.Locals = SplitParams(args[0])
			args = args[1:]
		}
		b.Body = args
		return b
	case "foreach", "vlax-for":
		b := &Binder{Kind: Foreach, Form: form}
		if len(args) > 0 && args[0].Type == ast.Symbol {
			b.Params = args[:1]
			args = args[1:]
		}
		if len(args) > 0 {
			b.Outer = args[:1]
			args = args[1:]
		}
		b.Body = args
		return b
	}
	return nil
}

// SplitParams divides a defun or lambda parameter list at the / separator.
// Only symbol atoms are returned.
func SplitParams(list *ast.Fragment) (params, locals []*ast.Fragment) {
	afterSlash := false
	for _, f := range list.Forms() {
		if f.Type != ast.Symbol {
			continue
		}
		if f.Text == "/" {
			afterSlash = true
			continue
		}
		if afterSlash {
			locals = append(locals, f)
		} else {
			params = append(params, f)
		}
	}
	return params, locals
}
