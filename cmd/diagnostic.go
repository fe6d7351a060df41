// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"

	"github.com/Methuselah96/auto-lisp-parser/diagnostic"
	lintpkg "github.com/Methuselah96/auto-lisp-parser/lint"
)

func colorMode() diagnostic.ColorMode {
	switch colorFlag {
	case "always":
		return diagnostic.ColorAlways
	case "never":
		return diagnostic.ColorNever
	default:
		return diagnostic.ColorAuto
	}
}

func newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: colorMode()}
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic.
func lintDiagToDiagnostic(ld lintpkg.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: lintSeverity(ld.Severity),
		Message:  ld.Message,
		Code:     ld.Analyzer,
	}
	if ld.Pos.Line > 0 {
		span := diagnostic.Span{
			File: ld.Pos.File,
			Line: ld.Pos.Line,
			Col:  ld.Pos.Col,
		}
		if ld.End.Line == ld.Pos.Line && ld.End.Col > ld.Pos.Col {
			span.EndCol = ld.End.Col
		}
		d.Spans = append(d.Spans, span)
	}
	d.Notes = append(d.Notes, ld.Notes...)
	if ld.Analyzer != lintpkg.SyntaxCheck {
		d.Notes = append(d.Notes, "to suppress: add \"; nolint:"+ld.Analyzer+"\" as a comment on this line")
	}
	return d
}

func lintSeverity(s lintpkg.Severity) diagnostic.Severity {
	switch s {
	case lintpkg.SeverityError:
		return diagnostic.SeverityError
	case lintpkg.SeverityInfo:
		return diagnostic.SeverityNote
	default:
		return diagnostic.SeverityWarning
	}
}

// renderLintDiagnostics renders lint diagnostics with diagnostic formatting.
// Source lines are read from the documents in source when present.
func renderLintDiagnostics(w io.Writer, diags []lintpkg.Diagnostic, source func(string) ([]byte, error)) error {
	ds := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	r := newRenderer()
	r.SourceReader = source
	return r.RenderAll(w, ds)
}
