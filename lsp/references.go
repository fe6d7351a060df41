// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/Methuselah96/auto-lisp-parser/analysis"
	"github.com/Methuselah96/auto-lisp-parser/document"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// resolve returns the reference under the cursor and the occurrences bound
// to the same variable, together with the symbol map they were found in.
// The cursor is located in the same version of doc the map reads.
func (s *Server) resolve(doc *document.Snapshot, pos protocol.Position) (*analysis.SymbolMap, *analysis.SymbolReference, []*analysis.SymbolReference) {
	view := doc.View()
	sym := symbolAtPosition(view, pos)
	if sym == nil {
		return nil, nil, nil
	}
	m := s.verifier.CollectAt(view)
	ref := m.Reference(doc, sym.FlatIndex())
	if ref == nil {
		return nil, nil, nil
	}
	return m, ref, m.Related(ref)
}

// refRange returns the LSP range of ref in the version of its document m
// was built from.
func refRange(m *analysis.SymbolMap, ref *analysis.SymbolReference) protocol.Range {
	return toLSPRange(m.View(ref.Doc).Lines(), ref.Range())
}

// textDocumentReferences handles the textDocument/references request.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	m, _, related := s.resolve(doc, params.Position)

	var locs []protocol.Location
	for _, ref := range related {
		if ref.Declaration && !params.Context.IncludeDeclaration {
			continue
		}
		locs = append(locs, protocol.Location{
			URI:   s.documentURI(ref.Doc),
			Range: refRange(m, ref),
		})
	}
	return locs, nil
}

// textDocumentDocumentHighlight handles the textDocument/documentHighlight
// request.  Assignments flagged by the reader are reported as writes.
func (s *Server) textDocumentDocumentHighlight(_ *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	m, _, related := s.resolve(doc, params.Position)

	var highlights []protocol.DocumentHighlight
	for _, ref := range related {
		if ref.Doc != doc {
			continue
		}
		kind := protocol.DocumentHighlightKindRead
		if ref.IsGlobalizer() || ref.Declaration {
			kind = protocol.DocumentHighlightKindWrite
		}
		highlights = append(highlights, protocol.DocumentHighlight{
			Range: refRange(m, ref),
			Kind:  &kind,
		})
	}
	return highlights, nil
}
