// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Methuselah96/auto-lisp-parser/analysis"
	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/document"
	"github.com/spf13/cobra"
)

type symbolsOptions struct {
	json      bool
	name      string
	workspace string
	include   []string
	excludes  []string
}

// symbolRecord is one occurrence of a symbol in the output of the symbols
// command.
type symbolRecord struct {
	Name        string `json:"name"`
	File        string `json:"file"`
	Line        int    `json:"line"`
	Col         int    `json:"col"`
	Binding     string `json:"binding"`
	Scope       string `json:"scope,omitempty"`
	Declaration bool   `json:"declaration,omitempty"`
	Assigned    bool   `json:"assigned,omitempty"`
}

var symbolsCmd = newSymbolsCommand()

func newSymbolsCommand() *cobra.Command {
	var so symbolsOptions
	cmd := &cobra.Command{
		Use:   "symbols [flags] files...",
		Short: "List every symbol occurrence and the scope it resolves to",
		Long: `List every symbol occurrence in the given files together with the scope
that binds it.

An occurrence is "local" when an enclosing defun, lambda or foreach declares
the name, and "global" otherwise. Occurrences assigned by setq or set are
marked as assigned; parameter and local declarations are marked as
declarations.

Examples:
  alisp symbols file.lsp                 # Every symbol in a file
  alisp symbols --name total ./...       # One name across a tree
  alisp symbols --json file.lsp          # Machine-readable output`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			so.include = stringList(keyInclude)
			so.excludes = stringList(keyExclude)
			return runSymbols(cmd.Context(), &so, args, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&so.json, "json", false, "Print machine-readable symbol occurrences")
	cmd.Flags().StringVar(&so.name, "name", "", "Only list occurrences of this name")
	cmd.Flags().StringVar(&so.workspace, "workspace", "",
		"Project root whose files share the global scope of the listed files.")
	return cmd
}

func runSymbols(ctx context.Context, so *symbolsOptions, args []string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store := document.NewStore()
	if so.workspace != "" {
		if _, err := document.LoadWorkspace(ctx, store, so.workspace, so.include); err != nil {
			return err
		}
	}
	files, err := expandArgs(args, so.include, so.excludes)
	if err != nil {
		return err
	}
	listed := make(map[*document.Snapshot]bool, len(files))
	var docs []*document.Snapshot
	for _, path := range files {
		doc, err := loadSourceFile(store, path)
		if err != nil {
			return err
		}
		listed[doc] = true
		docs = append(docs, doc)
	}

	verifier := analysis.NewVerifier(analysis.WithDocuments(store))
	m := verifier.CollectAllSymbols(docs...)

	names := m.Names()
	if so.name != "" {
		names = []string{ast.NormalizeName(so.name)}
	}
	var records []symbolRecord
	for _, name := range names {
		for _, ref := range m.References(name) {
			if listed[ref.Doc] {
				records = append(records, recordFor(ref))
			}
		}
	}
	if so.name != "" && len(records) == 0 {
		return fmt.Errorf("symbol %q not found", so.name)
	}

	if so.json {
		if records == nil {
			records = []symbolRecord{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	fmt.Fprintf(out, "symbol occurrences (%d)\n", len(records))
	for _, r := range records {
		binding := r.Binding
		if r.Scope != "" {
			binding += " to " + r.Scope
		}
		fmt.Fprintf(out, "- %s %s:%d:%d %s", r.Name, r.File, r.Line, r.Col, binding)
		if r.Declaration {
			fmt.Fprint(out, " [declaration]")
		}
		if r.Assigned {
			fmt.Fprint(out, " [assigned]")
		}
		fmt.Fprintln(out)
	}
	return nil
}

func recordFor(ref *analysis.SymbolReference) symbolRecord {
	start := ref.Range().Start
	r := symbolRecord{
		Name:        ref.Name,
		File:        ref.Doc.FileName(),
		Line:        start.Line,
		Col:         start.Column,
		Binding:     "global",
		Declaration: ref.Declaration,
		Assigned:    ref.IsGlobalizer(),
	}
	if ref.IsLocal() {
		r.Binding = "local"
		scope := ref.FindLocalizingParent()
		if scope.Name != "" {
			r.Scope = scope.Name
		} else {
			r.Scope = scope.Kind.String()
		}
	}
	return r
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
}
