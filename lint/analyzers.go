// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Methuselah96/auto-lisp-parser/analysis"
	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/astutil"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// AnalyzerGlobalLeak warns when a function body assigns a variable that is
// not declared local to any enclosing defun or lambda.
var AnalyzerGlobalLeak = &Analyzer{
	Name:     "global-leak",
	Severity: SeverityWarning,
	Doc:      "Warn when a function assigns an undeclared variable.\n\nA `setq` (or `set` of a quoted symbol) inside a `defun` or `lambda` body whose target is not listed after `/` in any enclosing parameter list assigns the global variable. The value survives the call and can collide with other programs loaded in the same drawing.",
	Run: func(pass *Pass) error {
		if !pass.Verifier.HasUnverifiedGlobalizersAt(pass.View) {
			return nil
		}
		var leaks []*analysis.SymbolReference
		for _, refs := range pass.Verifier.GlobalizedTargetsAt(pass.View) {
			for _, ref := range refs {
				if _, ok := enclosingFunction(ref.Scope); ok {
					leaks = append(leaks, ref)
				}
			}
		}
		sort.Slice(leaks, func(i, j int) bool {
			return leaks[i].FlatIndex < leaks[j].FlatIndex
		})
		for _, ref := range leaks {
			fn, _ := enclosingFunction(ref.Scope)
			pass.ReportWithNotes(At(ref.Fragment, fmt.Sprintf("%s assigns global variable %s", fn, ref.Fragment.Text)),
				fmt.Sprintf("declare it local: (defun name (args / %s) ...)", ref.Fragment.Text))
		}
		return nil
	},
}

// enclosingFunction describes the innermost defun or lambda containing
// scope.
func enclosingFunction(scope *analysis.Scope) (string, bool) {
	for s := scope; s != nil; s = s.Parent {
		switch s.Kind {
		case analysis.ScopeFunction:
			if s.Name == "" {
				return "defun", true
			}
			return "function " + s.Name, true
		case analysis.ScopeLambda:
			return "lambda", true
		}
	}
	return "", false
}

// AnalyzerNativeRedefinition warns when user code replaces a native
// function or symbol.
var AnalyzerNativeRedefinition = &Analyzer{
	Name:     "native-redefinition",
	Severity: SeverityWarning,
	Doc:      "Warn when `defun` or `setq` replaces a native name.\n\nRedefining a built-in function changes its behavior for every program in the drawing session, including Autodesk's own routines.",
	Run: func(pass *Pass) error {
		astutil.WalkForms(pass.View.Container(), func(form *ast.Fragment, depth int) {
			args := astutil.Args(form)
			switch head := astutil.HeadSymbol(form); head {
			case "defun", "defun-q":
				if len(args) > 0 && args[0].Type == ast.Symbol && pass.Natives.IsNative(args[0].Name()) {
					pass.Reportf(args[0], "%s redefines native function %s", head, args[0].Text)
				}
			case "setq":
				for i := 0; i < len(args); i += 2 {
					if args[i].Type == ast.Symbol && pass.Natives.IsNative(args[i].Name()) {
						pass.Reportf(args[i], "setq assigns native symbol %s", args[i].Text)
					}
				}
			}
		})
		return nil
	},
}

// AnalyzerNativeTypo reports calls to unknown functions whose name is very
// close to a native one.
var AnalyzerNativeTypo = &Analyzer{
	Name:     "native-typo",
	Severity: SeverityWarning,
	Doc:      "Report calls to undefined functions that look like misspelled natives.\n\nA call head that is neither native nor defined by `defun` anywhere in the workspace, and that closely resembles a native function name, is most likely a typo. Such calls fail at run time with \"no function definition\".",
	Run: func(pass *Pass) error {
		defined := pass.Defined()
		astutil.WalkForms(pass.View.Container(), func(form *ast.Fragment, depth int) {
			head := form.Head()
			if head == nil || head.Type != ast.Symbol || head.Quoted || isParamList(form) {
				return
			}
			name := head.Name()
			if defined[name] || pass.Natives.IsNative(name) {
				return
			}
			// Variables holding functions are called the same way.
			if len(pass.Verifier.UnverifiedGlobalizersAt(pass.View, name)) > 0 {
				return
			}
			suggestions := pass.Natives.Suggest(name, 1)
			if len(suggestions) == 0 {
				return
			}
			pass.ReportWithNotes(At(head, fmt.Sprintf("call to undefined function %s", head.Text)),
				fmt.Sprintf("did you mean %s?", suggestions[0]))
		})
		return nil
	},
}

// isParamList reports whether form is the parameter list of a defun or
// lambda rather than a call.
func isParamList(form *ast.Fragment) bool {
	parent := form.Parent()
	if parent == nil || parent.Type != ast.List {
		return false
	}
	args := astutil.Args(parent)
	switch astutil.HeadSymbol(parent) {
	case "defun", "defun-q":
		return len(args) > 1 && args[1] == form
	case "lambda":
		return len(args) > 0 && args[0] == form
	}
	return false
}

// AnalyzerSetqPairs checks that setq receives symbol and value pairs.
var AnalyzerSetqPairs = &Analyzer{
	Name:     "setq-pairs",
	Severity: SeverityError,
	Doc:      "Check that `setq` receives symbol and value pairs.\n\nAn odd number of arguments leaves the last symbol without a value, and a non-symbol in a target position is rejected at run time with \"bad argument type\".",
	Run: func(pass *Pass) error {
		astutil.WalkForms(pass.View.Container(), func(form *ast.Fragment, depth int) {
			if astutil.HeadSymbol(form) != "setq" {
				return
			}
			args := astutil.Args(form)
			if len(args)%2 != 0 {
				pass.Reportf(astutil.SourceOf(form), "setq requires pairs of symbol and value, got %d arguments", len(args))
			}
			for i := 0; i < len(args); i += 2 {
				if args[i].Type != ast.Symbol || args[i].Quoted {
					pass.Reportf(args[i], "setq target %d must be an unquoted symbol, got %s", i/2+1, describe(args[i]))
				}
			}
		})
		return nil
	},
}

// AnalyzerDefunStructure checks for malformed `defun` forms.
var AnalyzerDefunStructure = &Analyzer{
	Name:     "defun-structure",
	Severity: SeverityError,
	Doc:      "Check for malformed `defun`/`defun-q` definitions.\n\nA `defun` requires a symbol name followed by a parameter list, which may be `nil`. Common mistakes include a missing name or a body expression where the parameter list should be.",
	Run: func(pass *Pass) error {
		astutil.WalkForms(pass.View.Container(), func(form *ast.Fragment, depth int) {
			head := astutil.HeadSymbol(form)
			if head != "defun" && head != "defun-q" {
				return
			}
			src := astutil.SourceOf(form)
			args := astutil.Args(form)
			if len(args) < 2 {
				pass.Reportf(src, "%s requires a name and a parameter list (got %d arguments)", head, len(args))
				return
			}
			if name := args[0]; name.Type != ast.Symbol || name.Quoted {
				pass.Reportf(name, "%s name must be a symbol, got %s", head, describe(name))
			}
			params := args[1]
			switch {
			case params.Type == ast.List && !params.Quoted:
				checkParams(pass, head, params)
			case params.Type == ast.Symbol && params.Name() == "nil":
			default:
				pass.Reportf(params, "%s parameter list must be a list, got %s", head, describe(params))
			}
		})
		return nil
	},
}

func checkParams(pass *Pass, head string, params *ast.Fragment) {
	slashes := 0
	for _, p := range params.Forms() {
		if p.Type != ast.Symbol || p.Quoted {
			pass.Reportf(p, "%s parameters must be symbols, got %s", head, describe(p))
			continue
		}
		if p.Text == "/" {
			slashes++
			if slashes == 2 {
				pass.Reportf(p, "%s parameter list has more than one /", head)
			}
		}
	}
}

func describe(f *ast.Fragment) string {
	if f.Quoted {
		return "quoted " + f.Type.String()
	}
	return f.Type.String()
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerGlobalLeak,
		AnalyzerNativeRedefinition,
		AnalyzerNativeTypo,
		AnalyzerSetqPairs,
		AnalyzerDefunStructure,
	}
}

// AnalyzerNames returns the sorted names of all default analyzers.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// SelectAnalyzers returns the default analyzers named in checks, in default
// order.  An empty selection returns every default analyzer.
func SelectAnalyzers(checks []string) ([]*Analyzer, error) {
	analyzers := DefaultAnalyzers()
	if len(checks) == 0 {
		return analyzers, nil
	}
	selected := make(map[string]bool)
	for _, name := range checks {
		if name = strings.TrimSpace(name); name != "" {
			selected[name] = true
		}
	}
	var filtered []*Analyzer
	for _, a := range analyzers {
		if selected[a.Name] {
			filtered = append(filtered, a)
			delete(selected, a.Name)
		}
	}
	if len(selected) > 0 {
		unknown := make([]string, 0, len(selected))
		for name := range selected {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown check: %s", strings.Join(unknown, ", "))
	}
	return filtered, nil
}

// AnalyzerDoc returns a formatted documentation string for all analyzers,
// with each summary wrapped to width columns.
func AnalyzerDoc(width int) string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		summary, _, _ := strings.Cut(a.Doc, "\n")
		b.WriteString(indent.String(wordwrap.String(summary, width-4), 4))
		b.WriteString("\n\n")
	}
	return b.String()
}
