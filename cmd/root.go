// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Methuselah96/auto-lisp-parser/document"
	"github.com/Methuselah96/auto-lisp-parser/resources"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"

	// Registers the stderr logging backend.
	_ "github.com/tliron/commonlog/simple"
)

// Configuration keys.  Each may be set in the config file or through an
// ALISP_ environment variable, such as ALISP_LINT_CHECKS.
const (
	keyKeywords  = "resources.keywords"
	keyDataset   = "resources.dataset"
	keyInclude   = "workspace.include"
	keyChecks    = "lint.checks"
	keyExclude   = "lint.exclude"
	keyVerbosity = "log.verbosity"
)

var (
	cfgFile   string
	colorFlag string
)

var log = commonlog.GetLogger("alisp.cmd")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alisp",
	Short: "alisp: AutoLISP static analysis tools",
	Long: `alisp analyzes AutoLISP source files. It resolves every symbol to the
scope that binds it, reports variables that leak into the global scope, and
serves the same analysis to editors over the Language Server Protocol.

Getting started:
  alisp lint file.lsp          Run static analysis checks
  alisp lint ./...             Lint every .lsp and .mnl file below .
  alisp symbols file.lsp       List each symbol and where it is bound
  alisp native princ vl-foo    Classify names as native or user-defined
  alisp lsp                    Start the language server on stdio

Configuration is read from --config, else .alisp.yaml in the current or
home directory. Every key may also be set in the environment:
  resources.keywords   ALISP_RESOURCES_KEYWORDS   native name list file
  resources.dataset    ALISP_RESOURCES_DATASET    documentation dataset file
  workspace.include    ALISP_WORKSPACE_INCLUDE    workspace file patterns
  lint.checks          ALISP_LINT_CHECKS          checks to run
  lint.exclude         ALISP_LINT_EXCLUDE         files to skip
  log.verbosity        ALISP_LOG_VERBOSITY        0 notices, 1 info, 2 debug`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if cmd.Flags().Changed("verbose") {
			viper.Set(keyVerbosity, verbose)
		}
		applyConfig()
	},
}

var verbose int

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .alisp.yaml in . or $HOME)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v",
		"Increase log verbosity (may be repeated).")

	setDefaults(viper.GetViper())
}

// setDefaults registers the default value of every configuration key.
func setDefaults(v *viper.Viper) {
	v.SetDefault(keyInclude, document.DefaultInclude)
	v.SetDefault(keyChecks, []string{})
	v.SetDefault(keyExclude, []string{})
	v.SetDefault(keyVerbosity, 0)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".alisp")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("alisp")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "alisp: config: %v\n", err)
			os.Exit(2)
		}
	}
}

// applyConfig configures logging and the resource files from the loaded
// settings.
func applyConfig() {
	commonlog.Configure(viper.GetInt(keyVerbosity), nil)
	if used := viper.ConfigFileUsed(); used != "" {
		log.Infof("using config file %s", used)
	}
	resources.SetDefaultSource(resources.Source{
		KeywordsPath: viper.GetString(keyKeywords),
		DatasetPath:  viper.GetString(keyDataset),
	})
}

// stringList reads a list setting.  Environment variables hold
// comma-separated values.
func stringList(key string) []string {
	var out []string
	for _, item := range viper.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
