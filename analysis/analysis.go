// Copyright © 2024 The ELPS authors

// Package analysis resolves AutoLISP symbol occurrences to the scopes that
// bind them.
//
// The Verifier answers whether a symbol flagged as a global assignment by
// the reader really escapes into the global scope.  Its checks are ordered
// cheap first: a scan of one document's symbol index decides most queries,
// and the cross-document symbol map is only built once a flagged
// occurrence exists.
package analysis

import (
	"context"

	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/document"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Methuselah96/auto-lisp-parser/analysis"

// DocumentSource supplies the documents that share a global scope.
// *document.Store satisfies it.
type DocumentSource interface {
	Documents() []*document.Snapshot
}

// Verifier checks flagged global assignments against the scope model.  A
// Verifier holds no per-query state and is safe for concurrent use.
type Verifier struct {
	docs      DocumentSource
	onCollect func()
	tracer    trace.Tracer
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithDocuments sets the documents aggregated by CollectAllSymbols.
func WithDocuments(src DocumentSource) Option {
	return func(v *Verifier) {
		v.docs = src
	}
}

// WithCollectHook registers fn to run each time the symbol map is built.
func WithCollectHook(fn func()) Option {
	return func(v *Verifier) {
		v.onCollect = fn
	}
}

// WithTracerProvider traces through tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(v *Verifier) {
		v.tracer = tp.Tracer(instrumentationName)
	}
}

// NewVerifier returns a Verifier.
func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{}
	for _, opt := range opts {
		opt(v)
	}
	if v.tracer == nil {
		v.tracer = otel.Tracer(instrumentationName)
	}
	return v
}

// HasUnverifiedGlobalizers reports whether doc contains any flagged symbol
// occurrence.  It never builds the symbol map.
func (v *Verifier) HasUnverifiedGlobalizers(doc *document.Snapshot) bool {
	return v.HasUnverifiedGlobalizersAt(doc.View())
}

// HasUnverifiedGlobalizersAt is HasUnverifiedGlobalizers for one version of
// a document.
func (v *Verifier) HasUnverifiedGlobalizersAt(view *document.View) bool {
	flat := view.AtomsForest()
	found := false
	view.UserSymbols().Each(func(_ string, occ []int) bool {
		for _, i := range occ {
			if flat[i].HasGlobalFlag() {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// UnverifiedGlobalizerList returns the flagged occurrences of name in doc
// in source order, or nil.
func (v *Verifier) UnverifiedGlobalizerList(doc *document.Snapshot, name string) []*ast.Fragment {
	return v.UnverifiedGlobalizersAt(doc.View(), name)
}

// UnverifiedGlobalizersAt is UnverifiedGlobalizerList for one version of a
// document.
func (v *Verifier) UnverifiedGlobalizersAt(view *document.View, name string) []*ast.Fragment {
	occ := view.UserSymbols().Lookup(name)
	if len(occ) == 0 {
		return nil
	}
	flat := view.AtomsForest()
	var flagged []*ast.Fragment
	for _, i := range occ {
		if flat[i].HasGlobalFlag() {
			flagged = append(flagged, flat[i])
		}
	}
	return flagged
}

// HasGlobalizedTargetKey reports whether some flagged occurrence of name in
// doc is confirmed to assign the global variable: its localizing parent is
// the document root.  The symbol map is only built when a flagged
// occurrence exists.
func (v *Verifier) HasGlobalizedTargetKey(doc *document.Snapshot, name string) bool {
	view := doc.View()
	flagged := v.UnverifiedGlobalizersAt(view, name)
	if len(flagged) == 0 {
		return false
	}
	m := v.CollectAt(view)
	root := m.Root(doc)
	for _, f := range flagged {
		ref := m.Reference(doc, f.FlatIndex())
		if ref != nil && ref.FindLocalizingParent().Equal(root) {
			return true
		}
	}
	return false
}

// GlobalizedTargets returns, by name, every flagged occurrence in doc that
// is confirmed global.  It builds the symbol map at most once, and not at
// all when doc has no flagged occurrence.
func (v *Verifier) GlobalizedTargets(doc *document.Snapshot) map[string][]*SymbolReference {
	return v.GlobalizedTargetsAt(doc.View())
}

// GlobalizedTargetsAt is GlobalizedTargets for one version of a document.
func (v *Verifier) GlobalizedTargetsAt(view *document.View) map[string][]*SymbolReference {
	if !v.HasUnverifiedGlobalizersAt(view) {
		return nil
	}
	doc := view.Snapshot()
	flat := view.AtomsForest()
	m := v.CollectAt(view)
	root := m.Root(doc)
	targets := make(map[string][]*SymbolReference)
	view.UserSymbols().Each(func(name string, occ []int) bool {
		for _, i := range occ {
			if !flat[i].HasGlobalFlag() {
				continue
			}
			ref := m.Reference(doc, i)
			if ref != nil && ref.FindLocalizingParent().Equal(root) {
				targets[name] = append(targets[name], ref)
			}
		}
		return true
	})
	return targets
}

// References returns every occurrence of name across the verifier's
// documents and doc.
func (v *Verifier) References(doc *document.Snapshot, name string) []*SymbolReference {
	return v.CollectAllSymbols(doc).References(ast.NormalizeName(name))
}

// CollectAllSymbols builds the symbol map over the verifier's documents
// plus extra, reading the current version of each.  The map is never
// cached.
func (v *Verifier) CollectAllSymbols(extra ...*document.Snapshot) *SymbolMap {
	return v.collect(nil, extra)
}

// CollectAt builds the symbol map like CollectAllSymbols with the document
// of view included and read through view, so fragments taken from view
// resolve in the map.
func (v *Verifier) CollectAt(view *document.View) *SymbolMap {
	return v.collect(view, []*document.Snapshot{view.Snapshot()})
}

func (v *Verifier) collect(pinned *document.View, extra []*document.Snapshot) *SymbolMap {
	_, span := v.tracer.Start(context.Background(), "analysis.CollectAllSymbols")
	defer span.End()
	if v.onCollect != nil {
		v.onCollect()
	}
	m := newSymbolMap()
	viewOf := func(doc *document.Snapshot) *document.View {
		if pinned != nil && pinned.Snapshot() == doc {
			return pinned
		}
		return doc.View()
	}
	if v.docs != nil {
		for _, doc := range v.docs.Documents() {
			if doc.IsLisp() {
				m.add(viewOf(doc))
			}
		}
	}
	for _, doc := range extra {
		if doc != nil {
			m.add(viewOf(doc))
		}
	}
	span.SetAttributes(
		attribute.Int("analysis.documents", len(m.docs)),
		attribute.Int("analysis.names", m.Len()),
	)
	return m
}
