// Copyright © 2024 The ELPS authors

package cmd

import (
	"github.com/Methuselah96/auto-lisp-parser/natives"
	"github.com/Methuselah96/auto-lisp-parser/resources"
)

// Option configures an exported command factory (LintCommand, LSPCommand,
// NativeCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	natives   *natives.Classifier
	resources *resources.Resources
}

// WithNatives injects the classifier deciding which names are built in.
// Embedders use it to analyze code for a host with extra native functions.
func WithNatives(c *natives.Classifier) Option {
	return func(cfg *cmdConfig) { cfg.natives = c }
}

// WithResources injects the documentation dataset and keyword list.  When no
// classifier is injected one is built from the resources' names.
func WithResources(res *resources.Resources) Option {
	return func(cfg *cmdConfig) { cfg.resources = res }
}

func newConfig(opts []Option) *cmdConfig {
	cfg := &cmdConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// resolveNatives returns the best available classifier from the options.
// An explicit classifier is preferred, then one over injected resources,
// falling back to the process default.
func (c *cmdConfig) resolveNatives() *natives.Classifier {
	if c.natives != nil {
		return c.natives
	}
	if c.resources != nil {
		res := c.resources
		return natives.New(res.Names)
	}
	return natives.Default()
}

func (c *cmdConfig) resolveResources() *resources.Resources {
	if c.resources != nil {
		return c.resources
	}
	return resources.Default()
}
