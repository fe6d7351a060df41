// Copyright © 2024 The ELPS authors

package ast

import (
	"fmt"
	"sort"
)

// Flatten returns every descendant of f in depth-first preorder and stamps
// each one with its position in the returned slice.  The receiver itself is
// not part of the sequence.  Flatten also rebuilds the symbol index returned
// by UserSymbols.
//
// Flattening an unmodified tree again reproduces the same indices.  Flatten
// panics if a fragment is reachable twice, which can only happen when the
// tree's ownership rules were violated.
func (f *Fragment) Flatten() []*Fragment {
	var flat []*Fragment
	seen := map[*Fragment]struct{}{f: {}}
	stack := make([]*Fragment, 0, len(f.Cells))
	for i := len(f.Cells) - 1; i >= 0; i-- {
		stack = append(stack, f.Cells[i])
	}
	idx := newSymbolIndex()
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[n]; ok {
			panic(fmt.Sprintf("ast: fragment %v reachable more than once during flatten", n.Range()))
		}
		seen[n] = struct{}{}
		n.flatIndex = len(flat) + 1
		n.symbols = nil
		if n.Type == Symbol {
			idx.add(n.Name(), len(flat))
		}
		flat = append(flat, n)
		for i := len(n.Cells) - 1; i >= 0; i-- {
			stack = append(stack, n.Cells[i])
		}
	}
	f.symbols = idx
	return flat
}

// UserSymbols returns the index of symbol occurrences in f's subtree.  The
// index reflects the most recent Flatten of f.  When f has not been flattened
// yet and no enclosing container has stamped its subtree, f is flattened.  A
// container inside a flattened tree is indexed using the enclosing tree's
// stamps so the tree is never renumbered.
func (f *Fragment) UserSymbols() *SymbolIndex {
	if f.symbols != nil {
		return f.symbols
	}
	if f.flatIndex == 0 {
		f.Flatten()
		return f.symbols
	}
	idx := newSymbolIndex()
	var visit func(n *Fragment)
	visit = func(n *Fragment) {
		for _, c := range n.Cells {
			if c.Type == Symbol && c.flatIndex > 0 {
				idx.add(c.Name(), c.flatIndex-1)
			}
			visit(c)
		}
	}
	visit(f)
	f.symbols = idx
	return idx
}

// SymbolIndex maps normalized symbol names to the ascending flat indices of
// their occurrences.  A SymbolIndex is read-only once built.
type SymbolIndex struct {
	m map[string][]int
}

func newSymbolIndex() *SymbolIndex {
	return &SymbolIndex{m: make(map[string][]int)}
}

func (idx *SymbolIndex) add(name string, i int) {
	idx.m[name] = append(idx.m[name], i)
}

// Lookup returns the occurrences of name, which is normalized first.  The
// result is a copy.  Lookup returns nil when name does not occur.
func (idx *SymbolIndex) Lookup(name string) []int {
	if idx == nil {
		return nil
	}
	occ, ok := idx.m[NormalizeName(name)]
	if !ok {
		return nil
	}
	cp := make([]int, len(occ))
	copy(cp, occ)
	return cp
}

// Contains reports whether name occurs in the index.
func (idx *SymbolIndex) Contains(name string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.m[NormalizeName(name)]
	return ok
}

// Names returns the indexed names in sorted order.
func (idx *SymbolIndex) Names() []string {
	if idx == nil {
		return nil
	}
	names := make([]string, 0, len(idx.m))
	for name := range idx.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of distinct names.
func (idx *SymbolIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.m)
}

// Each calls fn for every name in sorted order.  The occurrence slice passed
// to fn must not be modified.  Iteration stops when fn returns false.
func (idx *SymbolIndex) Each(fn func(name string, occurrences []int) bool) {
	for _, name := range idx.Names() {
		if !fn(name, idx.m[name]) {
			return
		}
	}
}
