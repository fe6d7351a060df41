// Copyright © 2024 The ELPS authors

package lint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/Methuselah96/auto-lisp-parser/analysis"
	"github.com/Methuselah96/auto-lisp-parser/document"
	"github.com/Methuselah96/auto-lisp-parser/natives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNatives = natives.New(func() []string {
	return []string{
		"car", "cdr", "command", "defun", "defun-q", "foreach", "function",
		"lambda", "mapcar", "princ", "set", "setq", "strcase", "strcat",
	}
})

type docList []*document.Snapshot

func (l docList) Documents() []*document.Snapshot { return l }

// lintSource runs all default analyzers on the given source and returns diagnostics.
func lintSource(t *testing.T, source string) []Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: DefaultAnalyzers(), Natives: testNatives}
	diags, err := l.LintFile([]byte(source), "test.lsp")
	require.NoError(t, err)
	return diags
}

// lintCheck runs a single analyzer on the given source.
func lintCheck(t *testing.T, analyzer *Analyzer, source string) []Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: []*Analyzer{analyzer}, Natives: testNatives}
	diags, err := l.LintFile([]byte(source), "test.lsp")
	require.NoError(t, err)
	return diags
}

// assertNoDiags checks that there are no diagnostics.
func assertNoDiags(t *testing.T, diags []Diagnostic) {
	t.Helper()
	if len(diags) > 0 {
		var msgs []string
		for _, d := range diags {
			msgs = append(msgs, d.String())
		}
		t.Errorf("expected no diagnostics, got %d: %v", len(diags), msgs)
	}
}

// assertDiagOnLine checks that a diagnostic exists on the given line with the given substring.
func assertDiagOnLine(t *testing.T, diags []Diagnostic, line int, substr string) {
	t.Helper()
	for _, d := range diags {
		if d.Pos.Line == line && strings.Contains(d.Message, substr) {
			return
		}
	}
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, fmt.Sprintf("line %d: %s", d.Pos.Line, d.Message))
	}
	t.Errorf("expected diagnostic on line %d containing %q, got: %v", line, substr, msgs)
}

// --- global-leak ---

func TestGlobalLeak(t *testing.T) {
	diags := lintCheck(t, AnalyzerGlobalLeak, `(defun f (a / b)
  (setq b a c 2))
(setq g 1)`)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 2, "function f assigns global variable c")
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, "global-leak", diags[0].Analyzer)
	assert.Equal(t, 13, diags[0].Pos.Col)
	require.Len(t, diags[0].Notes, 1)
	assert.Contains(t, diags[0].Notes[0], "/ c")
}

func TestGlobalLeak_Lambda(t *testing.T) {
	diags := lintCheck(t, AnalyzerGlobalLeak, "(mapcar (function (lambda (v) (setq w v))) l)")
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 1, "lambda assigns global variable w")
}

func TestGlobalLeak_Clean(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"declared locals", "(defun f (/ x y) (setq x 1 y 2))"},
		{"parameters", "(defun f (x) (setq x (1+ x)))"},
		{"top level", "(setq a 1)\n(foreach x l (setq y x))"},
		{"outer local", "(defun outer (/ x) (mapcar (function (lambda (v) (setq x v))) l))"},
		{"quoted set of local", "(defun f (/ v) (set 'v 1))"},
		{"no assignments", "(defun f () (princ))"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assertNoDiags(t, lintCheck(t, AnalyzerGlobalLeak, test.source))
		})
	}
}

func TestGlobalLeak_AggregatesOnlyWhenFlagged(t *testing.T) {
	collects := 0
	v := analysis.NewVerifier(analysis.WithCollectHook(func() { collects++ }))
	l := &Linter{Analyzers: []*Analyzer{AnalyzerGlobalLeak}, Natives: testNatives, Verifier: v}

	_, err := l.LintFile([]byte("(defun f (x) (princ x))"), "clean.lsp")
	require.NoError(t, err)
	assert.Equal(t, 0, collects)

	_, err = l.LintFile([]byte("(defun f () (setq a 1 b 2 c 3))"), "leaky.lsp")
	require.NoError(t, err)
	assert.Equal(t, 1, collects)
}

// --- suppression ---

func TestNolint(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{"all", "(defun f () (setq c 2)) ; nolint", 0},
		{"named", "(defun f () (setq c 2)) ;nolint:global-leak", 0},
		{"other check", "(defun f () (setq c 2)) ; nolint:setq-pairs", 1},
		{"list", "(defun f () (setq c 2)) ; nolint:setq-pairs, global-leak", 0},
		{"other line", "; nolint\n(defun f () (setq c 2))", 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Len(t, lintCheck(t, AnalyzerGlobalLeak, test.source), test.want)
		})
	}
}

// --- native-redefinition ---

func TestNativeRedefinition(t *testing.T) {
	diags := lintCheck(t, AnalyzerNativeRedefinition, "(defun CAR (x) x)\n(setq princ 1 mine 2)\n(defun mine () nil)")
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 1, "defun redefines native function CAR")
	assertDiagOnLine(t, diags, 2, "setq assigns native symbol princ")
}

// --- native-typo ---

func TestNativeTypo(t *testing.T) {
	diags := lintCheck(t, AnalyzerNativeTypo, `(princ (strcta "a" "b"))`)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 1, "call to undefined function strcta")
	assert.Equal(t, []string{"did you mean strcat?"}, diags[0].Notes)
	assert.Equal(t, 9, diags[0].Pos.Col)
}

func TestNativeTypo_Defined(t *testing.T) {
	assertNoDiags(t, lintCheck(t, AnalyzerNativeTypo, "(defun strcta () nil)\n(strcta)"))
	assertNoDiags(t, lintCheck(t, AnalyzerNativeTypo, "(myfunc 1)"))
	assertNoDiags(t, lintCheck(t, AnalyzerNativeTypo, "(defun f (strcta) strcta)"))
	assertNoDiags(t, lintCheck(t, AnalyzerNativeTypo, "(mapcar (function (lambda (strcta) strcta)) l)"))
	assertNoDiags(t, lintCheck(t, AnalyzerNativeTypo, "(setq strcta strcat)\n(strcta)"))
	assertNoDiags(t, lintCheck(t, AnalyzerNativeTypo, "(setq l '(strcta 1))"))

	other := document.New("lib.lsp", "(defun strcta (a b) (strcat b a))")
	l := &Linter{
		Analyzers: []*Analyzer{AnalyzerNativeTypo},
		Natives:   testNatives,
		Documents: docList{other},
	}
	diags, err := l.LintFile([]byte("(strcta 1 2)"), "main.lsp")
	require.NoError(t, err)
	assertNoDiags(t, diags)
}

// --- setq-pairs ---

func TestSetqPairs(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"odd", "(setq a 1 b)", "got 3 arguments"},
		{"quoted target", "(setq 'a 1)", "got quoted symbol"},
		{"string target", `(setq "a" 1)`, "got string"},
		{"list target", "(setq (car x) 1)", "got list"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			diags := lintCheck(t, AnalyzerSetqPairs, test.source)
			assertDiagOnLine(t, diags, 1, test.want)
			assert.Equal(t, SeverityError, diags[0].Severity)
		})
	}
	assertNoDiags(t, lintCheck(t, AnalyzerSetqPairs, "(setq a 1 b 2)"))
	assertNoDiags(t, lintCheck(t, AnalyzerSetqPairs, "(setq)"))
}

// --- defun-structure ---

func TestDefunStructure(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"empty", "(defun)", "requires a name and a parameter list (got 0 arguments)"},
		{"no params", "(defun f)", "got 1 arguments"},
		{"string name", `(defun "f" ())`, "name must be a symbol, got string"},
		{"symbol params", "(defun f x (princ))", "parameter list must be a list, got symbol"},
		{"number param", "(defun f (a 1) a)", "parameters must be symbols, got number"},
		{"two slashes", "(defun f (a / b / c) a)", "more than one /"},
		{"defun-q", "(defun-q)", "defun-q requires"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assertDiagOnLine(t, lintCheck(t, AnalyzerDefunStructure, test.source), 1, test.want)
		})
	}
	assertNoDiags(t, lintCheck(t, AnalyzerDefunStructure, "(defun c:go nil (princ))"))
	assertNoDiags(t, lintCheck(t, AnalyzerDefunStructure, "(defun f (a / b) a)"))
	assertNoDiags(t, lintCheck(t, AnalyzerDefunStructure, "'(defun)"))
}

// --- framework ---

func TestSyntaxDiagnostics(t *testing.T) {
	diags := lintSource(t, "(setq a 1\n; nolint")
	require.NotEmpty(t, diags)
	assert.Equal(t, SyntaxCheck, diags[0].Analyzer)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "unmatched (")
	assert.Equal(t, "test.lsp", diags[0].Pos.File)
	assert.Equal(t, 1, diags[0].Pos.Line)
}

func TestLintSourceSorted(t *testing.T) {
	diags := lintSource(t, `(defun car (x) x)
(defun f () (setq leaked (strcta "a")))
(setq a 1 b)`)
	require.Len(t, diags, 4)
	for i := 1; i < len(diags); i++ {
		prev, cur := diags[i-1].Pos, diags[i].Pos
		assert.True(t, prev.Line < cur.Line || (prev.Line == cur.Line && prev.Col <= cur.Col), "%v before %v", prev, cur)
	}
	assert.Equal(t, "native-redefinition", diags[0].Analyzer)
	assert.Equal(t, "global-leak", diags[1].Analyzer)
	assert.Equal(t, "native-typo", diags[2].Analyzer)
	assert.Equal(t, "setq-pairs", diags[3].Analyzer)
}

func TestLintViewReadsOneVersion(t *testing.T) {
	doc := document.New("a.lsp", "(defun f ()\n  (setq leaked 1))")
	view := doc.View()
	doc.Update("(princ 1)")
	l := &Linter{Analyzers: DefaultAnalyzers(), Natives: testNatives}

	diags, err := l.LintView(view)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "global-leak", diags[0].Analyzer)
	assert.Equal(t, 2, diags[0].Pos.Line)

	diags, err = l.LintDocument(doc)
	require.NoError(t, err)
	assertNoDiags(t, diags)
}

func TestLintNonLispDocument(t *testing.T) {
	l := &Linter{Analyzers: DefaultAnalyzers(), Natives: testNatives}
	diags, err := l.LintDocument(document.New("dialog.dcl", "(setq a 1 b)"))
	require.NoError(t, err)
	assert.Nil(t, diags)

	diags, err = l.LintFile([]byte("(setq a 1 b)"), "<stdin>")
	require.NoError(t, err)
	assert.Len(t, diags, 1, "unnamed input is linted as AutoLISP")
}

func TestAnalyzerError(t *testing.T) {
	failing := &Analyzer{Name: "failing", Run: func(*Pass) error { return fmt.Errorf("boom") }}
	l := &Linter{Analyzers: []*Analyzer{failing}, Natives: testNatives}
	_, err := l.LintFile([]byte("(princ)"), "x.lsp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x.lsp: analyzer failing: boom")
}

func TestFormatText(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, []Diagnostic{{
		Pos:      Position{File: "a.lsp", Line: 2, Col: 3},
		Message:  "msg",
		Analyzer: "check",
		Notes:    []string{"hint"},
	}})
	assert.Equal(t, "a.lsp:2:3: msg (check)\n  = note: hint\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, lintSource(t, "(setq a 1 b)")))
	var decoded []Diagnostic
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, SeverityError, decoded[0].Severity)
	assert.Equal(t, "setq-pairs", decoded[0].Analyzer)

	buf.Reset()
	require.NoError(t, FormatJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestSeverityJSON(t *testing.T) {
	b, err := json.Marshal(Severity(0))
	require.NoError(t, err)
	assert.Equal(t, `"warning"`, string(b))
	var s Severity
	assert.Error(t, json.Unmarshal([]byte(`"fatal"`), &s))
}

func TestSelectAnalyzers(t *testing.T) {
	all, err := SelectAnalyzers(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultAnalyzers()))

	some, err := SelectAnalyzers([]string{" setq-pairs", "global-leak"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "global-leak", some[0].Name)

	_, err = SelectAnalyzers([]string{"setq-pairs", "nope", "also-nope"})
	assert.EqualError(t, err, "unknown check: also-nope, nope")
}

func TestAnalyzerDoc(t *testing.T) {
	doc := AnalyzerDoc(40)
	for _, name := range AnalyzerNames() {
		assert.Contains(t, doc, "  "+name+"\n")
	}
	for _, line := range strings.Split(doc, "\n") {
		assert.LessOrEqual(t, len(line), 40, line)
	}
}
