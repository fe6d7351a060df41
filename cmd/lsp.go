// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/Methuselah96/auto-lisp-parser/lint"
	"github.com/Methuselah96/auto-lisp-parser/lsp"
	"github.com/spf13/cobra"
)

// LSPCommand creates the "lsp" cobra command with optional embedder
// configuration.  Embedders can pass WithNatives or WithResources to serve
// code for a host with extra native functions.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newConfig(opts)

	var (
		stdio   bool
		port    int
		noWatch bool
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the AutoLISP Language Server Protocol server",
		Long: `Start an LSP server for AutoLISP source files.

The language server publishes lint diagnostics as documents change and
answers hover, go-to-definition, find references, document highlight and
document symbol requests. Globals resolve across every workspace file that
matches workspace.include.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  alisp lsp                           Start with stdio transport
  alisp lsp --stdio                   Same as above (explicit)
  alisp lsp --port 7998               Start with TCP on port 7998

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "alisp lsp --stdio" for .lsp and .mnl files.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			analyzers, err := lint.SelectAnalyzers(stringList(keyChecks))
			if err != nil {
				return err
			}
			serverOpts := []lsp.Option{
				lsp.WithInclude(stringList(keyInclude)...),
				lsp.WithAnalyzers(analyzers),
				lsp.WithWatcher(!noWatch),
			}
			if cfg.natives != nil || cfg.resources != nil {
				serverOpts = append(serverOpts, lsp.WithNatives(cfg.resolveNatives()))
			}
			if cfg.resources != nil {
				serverOpts = append(serverOpts, lsp.WithResources(cfg.resources))
			}

			srv := lsp.New(serverOpts...)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.Infof("alisp LSP server listening on %s", addr)
				if err := srv.RunTCP(addr); err != nil {
					return fmt.Errorf("lsp server error: %w", err)
				}
				return nil
			}
			if err := srv.RunStdio(); err != nil {
				return fmt.Errorf("lsp server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false,
		"Do not watch the workspace for file changes")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
