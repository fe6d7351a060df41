// Copyright © 2024 The ELPS authors

// Package astutil provides shared Fragment Tree walking utilities.
//
// These helpers are used by both the lint and analysis packages for
// traversing parsed AutoLISP documents.
package astutil

import "github.com/Methuselah96/auto-lisp-parser/ast"

// Walk calls fn for every fragment under root, depth-first.  root itself is
// not visited.  parent is the fragment's container.
func Walk(root *ast.Fragment, fn func(node *ast.Fragment, parent *ast.Fragment, depth int)) {
	for _, c := range root.Cells {
		walkNode(c, root, 0, fn)
	}
}

func walkNode(node *ast.Fragment, parent *ast.Fragment, depth int, fn func(*ast.Fragment, *ast.Fragment, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	for _, child := range node.Cells {
		walkNode(child, node, depth+1, fn)
	}
}

// WalkForms calls fn for every unquoted, non-empty list under root (a
// potential function call or special form).  Quoted lists are data, so
// nothing inside them is visited.
func WalkForms(root *ast.Fragment, fn func(form *ast.Fragment, depth int)) {
	var visit func(f *ast.Fragment, depth int)
	visit = func(f *ast.Fragment, depth int) {
		if f.Quoted {
			return
		}
		if f.Type == ast.List && f.Head() != nil {
			fn(f, depth)
		}
		for _, c := range f.Cells {
			visit(c, depth+1)
		}
	}
	for _, c := range root.Cells {
		visit(c, 0)
	}
}

// HeadSymbol returns the normalized symbol name at the head of a list, or "".
func HeadSymbol(form *ast.Fragment) string {
	head := form.Head()
	if head == nil || head.Type != ast.Symbol || head.Quoted {
		return ""
	}
	return head.Name()
}

// Args returns the forms following the head of a list.
func Args(form *ast.Fragment) []*ast.Fragment {
	if form.Type != ast.List {
		return nil
	}
	forms := form.Forms()
	if len(forms) <= 1 {
		return nil
	}
	return forms[1:]
}

// ArgCount returns the number of arguments in a list (excluding the head).
func ArgCount(form *ast.Fragment) int {
	return len(Args(form))
}

// UserDefined returns the normalized names of every function defined with
// defun or defun-q under root.
//
// The result is file-global (not scope-aware), which is conservative: it may
// suppress a valid finding but will never produce a false positive.
func UserDefined(root *ast.Fragment) map[string]bool {
	defs := make(map[string]bool)
	WalkForms(root, func(form *ast.Fragment, depth int) {
		switch HeadSymbol(form) {
		case "defun", "defun-q":
			args := Args(form)
			if len(args) >= 1 && args[0].Type == ast.Symbol {
				defs[args[0].Name()] = true
			}
		}
	})
	return defs
}

// SourceOf returns the best fragment to report a location for.  It prefers
// the fragment itself and falls back to its first child.
func SourceOf(f *ast.Fragment) *ast.Fragment {
	if f.Source != nil && f.Source.Line > 0 {
		return f
	}
	if len(f.Cells) > 0 && f.Cells[0].Source != nil {
		return f.Cells[0]
	}
	return f
}
