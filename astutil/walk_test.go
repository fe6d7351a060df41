// Copyright © 2024 The ELPS authors

package astutil

import (
	"testing"

	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/parser"
	"github.com/Methuselah96/auto-lisp-parser/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, src string) *ast.Fragment {
	t.Helper()
	res := parser.ParseString("test.lsp", src)
	require.Empty(t, res.Errors)
	return res.Root
}

func TestHeadSymbol_Empty(t *testing.T) {
	assert.Equal(t, "", HeadSymbol(ast.NewList(nil)))
}

func TestHeadSymbol_NonList(t *testing.T) {
	assert.Equal(t, "", HeadSymbol(ast.NewAtom(ast.Number, "1", nil)))
}

func TestHeadSymbol_NonSymbolHead(t *testing.T) {
	v := ast.NewList(nil, ast.NewAtom(ast.Number, "1", nil))
	assert.Equal(t, "", HeadSymbol(v))
}

func TestHeadSymbol_SymbolHead(t *testing.T) {
	v := ast.NewList(nil, ast.NewAtom(ast.Symbol, "SetQ", nil))
	assert.Equal(t, "setq", HeadSymbol(v))
}

func TestHeadSymbol_SkipsComments(t *testing.T) {
	v := read(t, "(; note\n princ)").Cells[0]
	assert.Equal(t, "princ", HeadSymbol(v))
}

func TestArgCount(t *testing.T) {
	assert.Equal(t, 0, ArgCount(ast.NewList(nil)))
	assert.Equal(t, 0, ArgCount(read(t, "(foo)").Cells[0]))
	assert.Equal(t, 2, ArgCount(read(t, "(foo 1 ; c\n 2)").Cells[0]))
}

func TestSourceOf_PreferOwnSource(t *testing.T) {
	v := ast.NewList(&token.Location{File: "test.lsp", Line: 5},
		ast.NewAtom(ast.Symbol, "x", &token.Location{File: "test.lsp", Line: 10}))
	assert.Equal(t, 5, SourceOf(v).Source.Line)
}

func TestSourceOf_FallbackToChild(t *testing.T) {
	v := ast.NewList(nil,
		ast.NewAtom(ast.Symbol, "x", &token.Location{File: "test.lsp", Line: 10}))
	assert.Equal(t, 10, SourceOf(v).Source.Line)
}

func TestWalk(t *testing.T) {
	root := read(t, "(a (b c)) d")
	var visited []string
	var depths []int
	Walk(root, func(node, parent *ast.Fragment, depth int) {
		require.NotNil(t, parent)
		if node.Type == ast.Symbol {
			visited = append(visited, node.Text)
			depths = append(depths, depth)
		}
	})
	assert.Equal(t, []string{"a", "b", "c", "d"}, visited)
	assert.Equal(t, []int{1, 2, 2, 0}, depths)
}

func TestWalkForms_SkipsQuoted(t *testing.T) {
	root := read(t, "(setq x '((defun y) (a b))) (princ (strcat \"a\"))")
	var heads []string
	WalkForms(root, func(form *ast.Fragment, depth int) {
		heads = append(heads, HeadSymbol(form))
	})
	assert.Equal(t, []string{"setq", "princ", "strcat"}, heads)
}

func TestUserDefined(t *testing.T) {
	root := read(t, `
(defun C:Draw (/ pt) (princ))
(defun-q helper (a) a)
(defun (bad) ())
'(defun quoted () nil)
`)
	assert.Equal(t, map[string]bool{"c:draw": true, "helper": true}, UserDefined(root))
}
