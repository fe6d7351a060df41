// Copyright © 2024 The ELPS authors

// Package lint provides static analysis for AutoLISP source files.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives a document and reports diagnostics. The framework handles
// running analyzers, collecting results, and formatting output.
package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Methuselah96/auto-lisp-parser/analysis"
	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/astutil"
	"github.com/Methuselah96/auto-lisp-parser/document"
	"github.com/Methuselah96/auto-lisp-parser/natives"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// SyntaxCheck is the analyzer name given to reader errors.
const SyntaxCheck = "syntax"

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "global-leak").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Doc is the document being analyzed.
	Doc *document.Snapshot

	// View is the version of Doc every analyzer of the run reads.
	View *document.View

	// Verifier resolves flagged assignments across the workspace.
	Verifier *analysis.Verifier

	// Natives classifies names built into AutoLISP.
	Natives *natives.Classifier

	defined     func() map[string]bool
	diagnostics []Diagnostic
}

// Defined returns the names defined by defun anywhere in the workspace.
func (p *Pass) Defined() map[string]bool {
	return p.defined()
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic at a fragment.
func (p *Pass) Reportf(f *ast.Fragment, format string, args ...interface{}) {
	p.Report(At(f, fmt.Sprintf(format, args...)))
}

// At returns a diagnostic spanning f.
func At(f *ast.Fragment, message string) Diagnostic {
	d := Diagnostic{Message: message}
	if f != nil && f.Source != nil {
		r := f.Range()
		d.Pos = Position{File: f.Source.File, Line: r.Start.Line, Col: r.Start.Column}
		d.End = Position{File: f.Source.File, Line: r.End.Line, Col: r.End.Column}
	}
	return d
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// End is where the problem ends, when known.
	End Position `json:"end,omitempty"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Linter runs a set of analyzers over documents.
type Linter struct {
	Analyzers []*Analyzer

	// Verifier is shared by every pass.  A Verifier over Documents is
	// created when nil.
	Verifier *analysis.Verifier

	// Natives defaults to natives.Default.
	Natives *natives.Classifier

	// Documents are the workspace documents the linted document shares its
	// global scope with.  May be nil.
	Documents analysis.DocumentSource
}

// LintFile analyzes source as a document named filename.
func (l *Linter) LintFile(source []byte, filename string) ([]Diagnostic, error) {
	doc := document.New(filename, string(source))
	if !doc.IsLisp() {
		doc = document.New(filename, string(source), document.WithLanguage(document.LanguageAutoLISP))
	}
	return l.LintDocument(doc)
}

// LintDocument runs every analyzer over the current version of doc.
// Reader errors are reported as diagnostics of the syntax check.
func (l *Linter) LintDocument(doc *document.Snapshot) ([]Diagnostic, error) {
	return l.LintView(doc.View())
}

// LintView runs every analyzer over one version of a document.
func (l *Linter) LintView(view *document.View) ([]Diagnostic, error) {
	doc := view.Snapshot()
	if !doc.IsLisp() {
		return nil, nil
	}
	verifier := l.Verifier
	if verifier == nil {
		verifier = analysis.NewVerifier(analysis.WithDocuments(l.Documents))
	}
	classifier := l.Natives
	if classifier == nil {
		classifier = natives.Default()
	}
	var defined map[string]bool
	definedFn := func() map[string]bool {
		if defined == nil {
			defined = l.userDefined(view)
		}
		return defined
	}

	all := SyntaxDiagnostics(view)
	for _, analyzer := range l.Analyzers {
		pass := &Pass{
			Analyzer: analyzer,
			Doc:      doc,
			View:     view,
			Verifier: verifier,
			Natives:  classifier,
			defined:  definedFn,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", doc.FileName(), analyzer.Name, err)
		}
		// Set file on diagnostics that don't have one
		for i := range pass.diagnostics {
			if pass.diagnostics[i].Pos.File == "" {
				pass.diagnostics[i].Pos.File = doc.FileName()
			}
		}
		all = append(all, pass.diagnostics...)
	}

	// Filter suppressed diagnostics (;nolint comments)
	all = filterSuppressed(all, view)

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Pos.File != all[j].Pos.File {
			return all[i].Pos.File < all[j].Pos.File
		}
		if all[i].Pos.Line != all[j].Pos.Line {
			return all[i].Pos.Line < all[j].Pos.Line
		}
		return all[i].Pos.Col < all[j].Pos.Col
	})

	return all, nil
}

func (l *Linter) userDefined(view *document.View) map[string]bool {
	doc := view.Snapshot()
	defs := astutil.UserDefined(view.Container())
	if l.Documents == nil {
		return defs
	}
	for _, other := range l.Documents.Documents() {
		if other == doc || !other.IsLisp() {
			continue
		}
		for name := range astutil.UserDefined(other.Container()) {
			defs[name] = true
		}
	}
	return defs
}

// SyntaxDiagnostics converts the reader errors of one version of a document
// to diagnostics.
func SyntaxDiagnostics(view *document.View) []Diagnostic {
	doc := view.Snapshot()
	errs := view.ParseErrors()
	if len(errs) == 0 {
		return nil
	}
	diags := make([]Diagnostic, 0, len(errs))
	for _, e := range errs {
		d := Diagnostic{
			Message:  e.Err.Error(),
			Analyzer: SyntaxCheck,
			Severity: SeverityError,
		}
		if e.Source != nil {
			d.Pos = Position{File: e.Source.File, Line: e.Source.Line, Col: e.Source.Col}
			if e.Source.EndLine > 0 {
				d.End = Position{File: e.Source.File, Line: e.Source.EndLine, Col: e.Source.EndCol}
			}
		}
		if d.Pos.File == "" {
			d.Pos.File = doc.FileName()
		}
		diags = append(diags, d)
	}
	return diags
}

// filterSuppressed removes diagnostics on lines with ;nolint comments.
// Syntax errors cannot be suppressed.
func filterSuppressed(diags []Diagnostic, view *document.View) []Diagnostic {
	// line -> "" (all) or "analyzer1,analyzer2"
	nolintLines := make(map[int]string)
	for _, f := range view.AtomsForest() {
		if f.Type == ast.Comment {
			checkNolint(f, nolintLines)
		}
	}
	if len(nolintLines) == 0 {
		return diags
	}

	var filtered []Diagnostic
	for _, d := range diags {
		directive, ok := nolintLines[d.Pos.Line]
		if !ok || d.Analyzer == SyntaxCheck {
			filtered = append(filtered, d)
			continue
		}
		// Empty directive = suppress all
		if directive == "" {
			continue
		}
		suppressed := false
		for _, name := range strings.Split(directive, ",") {
			if strings.TrimSpace(name) == d.Analyzer {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func checkNolint(c *ast.Fragment, lines map[int]string) {
	if c.Source == nil {
		return
	}
	text := strings.TrimSpace(c.Text)
	// Strip comment prefix
	text = strings.TrimLeft(text, ";")
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "nolint") {
		return
	}
	rest := strings.TrimPrefix(text, "nolint")
	if rest == "" {
		lines[c.Source.Line] = ""
		return
	}
	if strings.HasPrefix(rest, ":") {
		lines[c.Source.Line] = strings.TrimPrefix(rest, ":")
	}
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}
