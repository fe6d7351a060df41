// Copyright © 2024 The ELPS authors

package lsp

import (
	"os"
	"time"

	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/document"
	"github.com/Methuselah96/auto-lisp-parser/lint"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const debounceDelay = 300 * time.Millisecond

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	name := uriToPath(params.TextDocument.URI)
	s.uris.Store(name, params.TextDocument.URI)
	doc := s.docs.Open(name, params.TextDocument.Version, params.TextDocument.Text)
	s.analyzeAndPublish(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	uri := params.TextDocument.URI
	name := uriToPath(uri)
	s.uris.Store(name, uri)
	s.docs.Change(name, params.TextDocument.Version, content)

	// Debounce: delay analysis to avoid thrashing during rapid edits.
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
	}
	s.debounce[uri] = time.AfterFunc(debounceDelay, func() {
		if d := s.docs.Get(name); d != nil {
			s.analyzeAndPublish(d)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	s.cancelDebounce(params.TextDocument.URI)

	// Other open documents may read globals the saved file assigns.
	s.republishOpenDocuments()
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.cancelDebounce(uri)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})

	// A closed file that still exists on disk stays part of the workspace,
	// reloaded from disk since the editor may have discarded its edits.
	name := uriToPath(uri)
	s.uris.Delete(name)
	b, err := os.ReadFile(name) //#nosec G304
	inWorkspace := err == nil && s.rootPath != "" && document.SelectorFor(name) != ""
	s.docs.Close(name, inWorkspace)
	if inWorkspace {
		s.docs.Put(name, string(b))
	}
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// analyzeAndPublish lints the current version of a document and publishes
// the resulting diagnostics to the client.  Reader errors are included by
// the linter.
func (s *Server) analyzeAndPublish(doc *document.Snapshot) {
	view := doc.View()
	diags := []protocol.Diagnostic{}
	lintDiags, err := s.linter.LintView(view)
	if err != nil {
		log.Errorf("lint %s: %v", doc.FileName(), err)
		// Reader errors are still worth reporting.
		lintDiags = lint.SyntaxDiagnostics(view)
	}
	lines := view.Lines()
	for _, d := range lintDiags {
		diags = append(diags, convertLintDiagnostic(lines, d))
	}

	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         s.documentURI(doc),
		Diagnostics: diags,
	})
}

// convertLintDiagnostic converts a lint.Diagnostic found in lines to an
// LSP Diagnostic.
func convertLintDiagnostic(lines []string, d lint.Diagnostic) protocol.Diagnostic {
	start := toLSPPosition(lines, ast.Position{Line: d.Pos.Line, Column: d.Pos.Col})
	end := start // Default: zero-width range.
	if d.End.Line > 0 {
		end = toLSPPosition(lines, ast.Position{Line: d.End.Line, Column: d.End.Col})
	}
	sev := mapLintSeverity(d.Severity)
	message := d.Message
	for _, n := range d.Notes {
		message += "\n" + n
	}
	source := "alisp-lint"
	if d.Analyzer == lint.SyntaxCheck {
		source = "alisp"
	}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &sev,
		Source:   &source,
		Code:     &protocol.IntegerOrString{Value: d.Analyzer},
		Message:  message,
	}
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return protocol.DiagnosticSeverityError
	case lint.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}
