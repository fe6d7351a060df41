// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/Methuselah96/auto-lisp-parser/analysis"
	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/document"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	m, ref, related := s.resolve(doc, params.Position)
	if ref == nil {
		return nil, nil
	}

	content := s.buildHoverContent(doc, ref, related)
	if content == "" {
		return nil, nil
	}
	r := refRange(m, ref)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
		Range: &r,
	}, nil
}

// buildHoverContent builds Markdown hover text for a symbol occurrence.
func (s *Server) buildHoverContent(doc *document.Snapshot, ref *analysis.SymbolReference, related []*analysis.SymbolReference) string {
	var sb strings.Builder
	text := ref.Fragment.Text

	if ref.IsLocal() {
		scope := ref.FindLocalizingParent()
		fmt.Fprintf(&sb, "**%s** `%s`", localKind(scope, ref.Name), text)
		if scope.Name != "" {
			fmt.Fprintf(&sb, "\n\nLocal to `%s`", scope.Name)
		} else {
			fmt.Fprintf(&sb, "\n\nLocal to %s", scope.Kind)
		}
		return sb.String()
	}

	if defs := s.functionDefs(doc, ref.Name); len(defs) > 0 {
		def := defs[0]
		fmt.Fprintf(&sb, "**function** `%s`", def.binder.Name.Text)
		fmt.Fprintf(&sb, "\n\n```autolisp\n(%s", def.binder.Name.Text)
		for _, p := range def.binder.Params {
			fmt.Fprintf(&sb, " %s", p.Text)
		}
		sb.WriteString(")\n```")
		if s.natives.IsNative(ref.Name) {
			sb.WriteString("\n\nRedefines a native function.")
		}
		fmt.Fprintf(&sb, "\n\n*Defined in %s:%d*", def.doc.FileName(), def.binder.Name.Range().Start.Line)
		return sb.String()
	}

	if s.natives.IsNative(ref.Name) {
		fmt.Fprintf(&sb, "**native** `%s`", text)
		for _, fn := range s.resources().Dataset.Signatures(ref.Name) {
			if fn.Signature != "" {
				fmt.Fprintf(&sb, "\n\n```autolisp\n%s\n```", fn.Signature)
			}
			if fn.Description != "" {
				fmt.Fprintf(&sb, "\n\n%s", fn.Description)
			}
		}
		return sb.String()
	}

	assignments := 0
	for _, r := range related {
		if r.IsGlobalizer() {
			assignments++
		}
	}
	fmt.Fprintf(&sb, "**global** `%s`", text)
	switch assignments {
	case 0:
		sb.WriteString("\n\nNever assigned in the workspace")
	case 1:
		sb.WriteString("\n\nAssigned once in the workspace")
	default:
		fmt.Fprintf(&sb, "\n\nAssigned %d times in the workspace", assignments)
	}
	return sb.String()
}

func localKind(scope *analysis.Scope, name string) string {
	for _, decl := range scope.Declarations(name) {
		if isLocalDeclaration(decl) {
			return "local"
		}
	}
	if scope.Kind == analysis.ScopeForeach {
		return "loop variable"
	}
	return "parameter"
}

// isLocalDeclaration reports whether decl follows the / separator of its
// parameter list.
func isLocalDeclaration(decl *ast.Fragment) bool {
	list := decl.Parent()
	if list == nil {
		return false
	}
	for _, f := range list.Forms() {
		if f == decl {
			return false
		}
		if f.Type == ast.Symbol && f.Text == "/" {
			return true
		}
	}
	return false
}
