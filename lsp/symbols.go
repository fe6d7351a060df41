// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"
	"strings"

	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/astutil"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol
// request.  It lists the functions defined in the document and the global
// variables it assigns.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil || !doc.IsLisp() {
		return nil, nil
	}

	view := doc.View()
	lines := view.Lines()
	symbols := []protocol.DocumentSymbol{}
	astutil.WalkForms(view.Container(), func(form *ast.Fragment, depth int) {
		b := astutil.AsBinder(form)
		if b == nil || b.Kind != astutil.Defun || b.Name == nil {
			return
		}
		detail := formatParams(b)
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           b.Name.Text,
			Detail:         &detail,
			Kind:           protocol.SymbolKindFunction,
			Range:          toLSPRange(lines, form.Range()),
			SelectionRange: toLSPRange(lines, b.Name.Range()),
		})
	})

	for _, refs := range s.verifier.GlobalizedTargetsAt(view) {
		first := refs[0]
		r := toLSPRange(lines, first.Range())
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           first.Fragment.Text,
			Kind:           protocol.SymbolKindVariable,
			Range:          r,
			SelectionRange: r,
		})
	}

	sort.SliceStable(symbols, func(i, j int) bool {
		a, b := symbols[i].SelectionRange.Start, symbols[j].SelectionRange.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Character < b.Character
	})
	return symbols, nil
}

// formatParams renders a binder's parameter list, such as "(a b / c)".
func formatParams(b *astutil.Binder) string {
	parts := make([]string, 0, len(b.Params)+len(b.Locals)+1)
	for _, p := range b.Params {
		parts = append(parts, p.Text)
	}
	if len(b.Locals) > 0 {
		parts = append(parts, "/")
		for _, p := range b.Locals {
			parts = append(parts, p.Text)
		}
	}
	return "(" + strings.Join(parts, " ") + ")"
}
