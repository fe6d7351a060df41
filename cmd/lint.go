// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Methuselah96/auto-lisp-parser/analysis"
	"github.com/Methuselah96/auto-lisp-parser/document"
	"github.com/Methuselah96/auto-lisp-parser/lint"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Exit codes shared by the analysis commands.
const (
	exitOK       = 0
	exitFindings = 1
	exitUsage    = 2
)

// exit is replaced in tests.
var exit = os.Exit

type lintOptions struct {
	json      bool
	list      bool
	checks    []string
	excludes  []string
	include   []string
	workspace string
}

// LintCommand creates the "lint" cobra command.  Embedders can pass
// WithNatives or WithResources to lint code for a host that provides extra
// native functions.
func LintCommand(opts ...Option) *cobra.Command {
	cfg := newConfig(opts)
	var lo lintOptions

	cmd := &cobra.Command{
		Use:   "lint [flags] [files...]",
		Short: "Run static analysis checks on AutoLISP source files",
		Long: `Run static analysis checks on AutoLISP source files.

The linter reports likely mistakes in AutoLISP code, similar to "go vet" for
Go. Each check is an independent analyzer over the parsed document and its
resolved symbols. Syntax errors are always reported.

With no files, reads from stdin. With files, analyzes each file and reports
all findings to stderr. A trailing "/..." selects every file below a
directory that matches workspace.include (default **/*.lsp and **/*.mnl).

Files given on the command line share one global scope, so a variable
declared in one file and used in another is not a leak. Use --workspace to
add every file of a project to that scope without linting it.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files)

To suppress a specific diagnostic, add a comment on the same line:
  (setq x 42) ; nolint:global-leak

To suppress all checks on a line:
  (setq x 42) ; nolint

Examples:
  alisp lint file.lsp                          # Lint a single file
  alisp lint ./...                             # Lint a directory tree
  alisp lint --json file.lsp                   # Output diagnostics as JSON
  alisp lint --checks=global-leak file.lsp     # Run only specific checks
  alisp lint --list                            # Describe available checks
  alisp lint --exclude='vendor' ./...          # Exclude a directory
  alisp lint --workspace=. src/main.lsp        # Resolve globals project-wide
  cat file.lsp | alisp lint                    # Lint from stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("checks") {
				lo.checks = stringList(keyChecks)
			}
			lo.excludes = append(lo.excludes, stringList(keyExclude)...)
			lo.include = stringList(keyInclude)
			code := runLint(cmd.Context(), cfg, &lo, args, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if code != exitOK {
				exit(code)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&lo.json, "json", false,
		"Output diagnostics as JSON.")
	cmd.Flags().StringSliceVar(&lo.checks, "checks", nil,
		"Comma-separated list of checks to run (default: all).")
	cmd.Flags().BoolVar(&lo.list, "list", false,
		"Describe available checks and exit.")
	cmd.Flags().StringArrayVar(&lo.excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	cmd.Flags().StringVar(&lo.workspace, "workspace", "",
		"Project root whose files share the global scope of linted files.")

	return cmd
}

// runLint lints the files named by args, or stdin when there are none, and
// returns the process exit code.
func runLint(ctx context.Context, cfg *cmdConfig, lo *lintOptions, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fail := func(err error) int {
		fmt.Fprintf(stderr, "alisp lint: %v\n", err)
		return exitUsage
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if lo.list {
		fmt.Fprint(stdout, lint.AnalyzerDoc(termWidth()))
		return exitOK
	}

	analyzers, err := lint.SelectAnalyzers(lo.checks)
	if err != nil {
		return fail(err)
	}

	store := document.NewStore()
	if lo.workspace != "" {
		if _, err := document.LoadWorkspace(ctx, store, lo.workspace, lo.include); err != nil {
			return fail(err)
		}
	}
	l := &lint.Linter{
		Analyzers: analyzers,
		Verifier:  analysis.NewVerifier(analysis.WithDocuments(store)),
		Natives:   cfg.resolveNatives(),
		Documents: store,
	}

	var docs []*document.Snapshot
	if len(args) == 0 {
		src, err := io.ReadAll(stdin)
		if err != nil {
			return fail(fmt.Errorf("reading stdin: %w", err))
		}
		docs = append(docs, document.New("<stdin>", string(src), document.WithLanguage(document.LanguageAutoLISP)))
	} else {
		files, err := expandArgs(args, lo.include, lo.excludes)
		if err != nil {
			return fail(err)
		}
		// every file is stored before any is linted so that globals
		// resolve across all of them
		for _, path := range files {
			doc, err := loadSourceFile(store, path)
			if err != nil {
				return fail(err)
			}
			docs = append(docs, doc)
		}
	}

	var all []lint.Diagnostic
	for _, doc := range docs {
		diags, err := l.LintDocument(doc)
		if err != nil {
			return fail(err)
		}
		all = append(all, diags...)
	}
	log.Infof("linted %d documents: %d problems", len(docs), len(all))

	if len(all) == 0 {
		return exitOK
	}
	if lo.json {
		if err := lint.FormatJSON(stdout, all); err != nil {
			return fail(err)
		}
		return exitFindings
	}
	source := func(name string) ([]byte, error) {
		for _, doc := range docs {
			if doc.FileName() == name {
				return []byte(doc.Content()), nil
			}
		}
		return os.ReadFile(name) //nolint:gosec // CLI tool reads user-specified files
	}
	if err := renderLintDiagnostics(stderr, all, source); err != nil {
		return fail(err)
	}
	return exitFindings
}

// loadSourceFile reads path into store.  A file without an AutoLISP extension
// is read as AutoLISP but kept out of the shared scope.
func loadSourceFile(store *document.Store, path string) (*document.Snapshot, error) {
	src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return nil, err
	}
	path = filepath.Clean(path)
	if document.SelectorFor(path) != document.LanguageAutoLISP {
		return document.New(path, string(src), document.WithLanguage(document.LanguageAutoLISP)), nil
	}
	store.Put(path, string(src))
	return store.Get(path), nil
}

// termWidth returns the width of the terminal on stdout, or 80.
func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd())) //nolint:gosec // file descriptors fit in int
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

func init() {
	rootCmd.AddCommand(LintCommand())
}
