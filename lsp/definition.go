// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/astutil"
	"github.com/Methuselah96/auto-lisp-parser/document"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// functionDef is a defun of a name somewhere in the workspace.
type functionDef struct {
	doc    *document.Snapshot
	view   *document.View
	binder *astutil.Binder
}

func (d functionDef) nameRange() protocol.Range {
	return toLSPRange(d.view.Lines(), d.binder.Name.Range())
}

// functionDefs returns the defun forms naming name across the workspace
// and doc, in document order.
func (s *Server) functionDefs(doc *document.Snapshot, name string) []functionDef {
	docs := s.docs.Documents()
	found := false
	for _, d := range docs {
		if d == doc {
			found = true
			break
		}
	}
	if !found && doc != nil {
		docs = append([]*document.Snapshot{doc}, docs...)
	}
	var defs []functionDef
	for _, d := range docs {
		if !d.IsLisp() {
			continue
		}
		view := d.View()
		astutil.WalkForms(view.Container(), func(form *ast.Fragment, depth int) {
			b := astutil.AsBinder(form)
			if b == nil || b.Kind != astutil.Defun || b.Name == nil || b.Name.Name() != name {
				return
			}
			defs = append(defs, functionDef{doc: d, view: view, binder: b})
		})
	}
	return defs
}

// textDocumentDefinition handles the textDocument/definition request.  A
// local variable resolves to its declaration in the binder; any other name
// resolves to the defun forms defining it.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	m, ref, related := s.resolve(doc, params.Position)
	if ref == nil {
		return nil, nil
	}

	if ref.IsLocal() {
		for _, r := range related {
			if r.Declaration {
				return protocol.Location{
					URI:   s.documentURI(r.Doc),
					Range: refRange(m, r),
				}, nil
			}
		}
		return nil, nil
	}

	var locs []protocol.Location
	for _, def := range s.functionDefs(doc, ref.Name) {
		locs = append(locs, protocol.Location{
			URI:   s.documentURI(def.doc),
			Range: def.nameRange(),
		})
	}
	if len(locs) == 0 {
		return nil, nil
	}
	return locs, nil
}
