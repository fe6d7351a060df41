// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/spf13/cobra"
)

type nativeOptions struct {
	list bool
	doc  bool
}

// NativeCommand creates the "native" cobra command, which classifies names
// as native AutoLISP functions or user-defined names.
func NativeCommand(opts ...Option) *cobra.Command {
	cfg := newConfig(opts)
	var no nativeOptions

	cmd := &cobra.Command{
		Use:   "native [flags] names...",
		Short: "Classify names as native or user-defined",
		Long: `Classify each name as a native AutoLISP function or a user-defined name.

Names are compared without regard to ASCII case. A user-defined name that
closely resembles a native one is listed with suggestions.

Exit codes:
  0  Every name is native
  1  At least one name is user-defined
  2  Bad invocation

Examples:
  alisp native princ strcat        # Both native, exits 0
  alisp native --doc vl-string-trim # Include documented signatures
  alisp native --list              # Print the whole native name table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !no.list && len(args) == 0 {
				return fmt.Errorf("native: at least one name is required")
			}
			if code := runNative(cfg, &no, args, cmd.OutOrStdout()); code != exitOK {
				exit(code)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&no.list, "list", false, "Print every native name and exit.")
	cmd.Flags().BoolVar(&no.doc, "doc", false, "Print documented signatures of native names.")
	return cmd
}

func runNative(cfg *cmdConfig, no *nativeOptions, args []string, out io.Writer) int {
	classifier := cfg.resolveNatives()
	if no.list {
		for _, name := range classifier.Names() {
			fmt.Fprintln(out, name)
		}
		return exitOK
	}

	code := exitOK
	for _, name := range args {
		if !classifier.IsNative(name) {
			code = exitFindings
			fmt.Fprintf(out, "%s: user-defined", name)
			if suggestions := classifier.Suggest(name, 3); len(suggestions) > 0 {
				fmt.Fprintf(out, " (did you mean %s?)", strings.Join(suggestions, ", "))
			}
			fmt.Fprintln(out)
			continue
		}
		fmt.Fprintf(out, "%s: native\n", name)
		if !no.doc {
			continue
		}
		for _, fn := range cfg.resolveResources().Dataset.Signatures(ast.NormalizeName(name)) {
			if fn.Signature != "" {
				fmt.Fprintf(out, "  %s\n", fn.Signature)
			}
			if fn.Description != "" {
				fmt.Fprintf(out, "    %s\n", fn.Description)
			}
		}
	}
	return code
}

func init() {
	rootCmd.AddCommand(NativeCommand())
}
