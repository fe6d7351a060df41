// Copyright © 2024 The ELPS authors

package parser

import (
	"strings"
	"testing"

	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flagged(root *ast.Fragment) []string {
	var names []string
	for _, f := range root.Flatten() {
		if f.HasGlobalFlag() {
			names = append(names, f.Text)
		}
	}
	return names
}

func TestParse_Standard(t *testing.T) {
	res := Parse("test", strings.NewReader("(+ 1 2)"))
	require.NotNil(t, res.Root)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Root.Cells, 1)
	assert.Equal(t, ast.List, res.Root.Cells[0].Type)
}

func TestParse_LocationPath(t *testing.T) {
	res := ParseString("logical", "(foo)", WithPath("/path/to/file.lsp"))
	require.Len(t, res.Root.Cells, 1)
	assert.Equal(t, "logical", res.Root.Cells[0].Source.File)
	assert.Equal(t, "/path/to/file.lsp", res.Root.Cells[0].Source.Path)
}

func TestParse_Error(t *testing.T) {
	res := ParseString("test", "(unclosed")
	require.Len(t, res.Errors, 1)
	assert.EqualError(t, res.Errors[0], "test:1:1: unmatched (")
	assert.Len(t, res.Root.Cells, 1)
}

func TestFlagAssignments(t *testing.T) {
	tests := []struct {
		source string
		flags  []string
	}{
		{`(setq a 1)`, []string{"a"}},
		{`(SETQ a 1 b 2 c)`, []string{"a", "b", "c"}},
		{`(setq a ; comment
		   1 b 2)`, []string{"a", "b"}},
		{`(set 'x 1)`, []string{"x"}},
		{`(set x 1)`, nil},
		{`'(setq a 1)`, nil},
		{`(list '(setq a 1))`, nil},
		{`(defun f (/ tmp) (setq tmp (setq inner 2)))`, []string{"tmp", "inner"}},
		{`(setq)`, nil},
		{`(princ a)`, nil},
	}
	for _, test := range tests {
		res := ParseString("test", test.source)
		require.Empty(t, res.Errors, test.source)
		assert.Equal(t, test.flags, flagged(res.Root), test.source)
	}
}

func TestWithFlagRule(t *testing.T) {
	res := ParseString("test", "(setq a 1)", WithFlagRule(nil))
	assert.Nil(t, flagged(res.Root))

	everySymbol := func(doc *ast.Fragment) {
		for _, f := range doc.Flatten() {
			f.Global = f.IsSymbol()
		}
	}
	res = ParseString("test", "(setq a 1)", WithFlagRule(everySymbol))
	assert.Equal(t, []string{"setq", "a"}, flagged(res.Root))
}
