// Copyright © 2024 The ELPS authors

package analysis

import (
	"sort"

	"github.com/Methuselah96/auto-lisp-parser/document"
)

// SymbolMap is the aggregate of every symbol occurrence across a set of
// documents together with each document's scope tree.  It is rebuilt on
// every request and must not be modified.
type SymbolMap struct {
	docs  []*document.Snapshot
	views map[*document.Snapshot]*document.View
	roots map[*document.Snapshot]*Scope
	refs  map[string][]*SymbolReference
	byPos map[refKey]*SymbolReference
}

func newSymbolMap() *SymbolMap {
	return &SymbolMap{
		views: make(map[*document.Snapshot]*document.View),
		roots: make(map[*document.Snapshot]*Scope),
		refs:  make(map[string][]*SymbolReference),
		byPos: make(map[refKey]*SymbolReference),
	}
}

func (m *SymbolMap) add(view *document.View) {
	doc := view.Snapshot()
	if _, ok := m.roots[doc]; ok {
		return
	}
	root, refs := buildScopes(view)
	m.docs = append(m.docs, doc)
	m.views[doc] = view
	m.roots[doc] = root
	for _, ref := range refs {
		m.refs[ref.Name] = append(m.refs[ref.Name], ref)
		m.byPos[refKey{doc, ref.FlatIndex}] = ref
	}
}

// Documents returns the documents in the map in the order they were added.
func (m *SymbolMap) Documents() []*document.Snapshot {
	return m.docs
}

// View returns the version of doc the map was built from, or nil if doc is
// not in the map.
func (m *SymbolMap) View(doc *document.Snapshot) *document.View {
	return m.views[doc]
}

// Root returns the global scope of doc, or nil if doc is not in the map.
func (m *SymbolMap) Root(doc *document.Snapshot) *Scope {
	return m.roots[doc]
}

// Names returns the sorted names with at least one occurrence.
func (m *SymbolMap) Names() []string {
	names := make([]string, 0, len(m.refs))
	for name := range m.refs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of distinct names.
func (m *SymbolMap) Len() int {
	return len(m.refs)
}

// References returns every occurrence of the normalized name, grouped by
// document and in source order within a document.
func (m *SymbolMap) References(name string) []*SymbolReference {
	return m.refs[name]
}

// Reference returns the occurrence at flatIndex in doc, or nil.
func (m *SymbolMap) Reference(doc *document.Snapshot, flatIndex int) *SymbolReference {
	return m.byPos[refKey{doc, flatIndex}]
}

// Related returns the occurrences bound to the same variable as ref.  A
// global occurrence relates to every global occurrence of the name across
// all documents; a local one only to occurrences resolving to the same
// binder.
func (m *SymbolMap) Related(ref *SymbolReference) []*SymbolReference {
	if ref == nil {
		return nil
	}
	scope := ref.FindLocalizingParent()
	global := scope.IsGlobal()
	var related []*SymbolReference
	for _, other := range m.refs[ref.Name] {
		parent := other.FindLocalizingParent()
		if global && parent.IsGlobal() || parent.Equal(scope) {
			related = append(related, other)
		}
	}
	return related
}
