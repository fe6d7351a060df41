// Copyright © 2024 The ELPS authors

// Package natives classifies symbol names as built into the AutoLISP runtime
// or defined by the user.
package natives

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/resources"
)

// hotNames are checked before the table.  They are the most frequent names
// in real code and short enough that a switch beats a search.
var hotNames = []string{"+", "-", "/", "*", "<", ">", "<=", ">=", "/="}

func isHot(name string) bool {
	switch name {
	case "+", "-", "/", "*", "<", ">", "<=", ">=", "/=":
		return true
	}
	return false
}

// Loader returns the raw names a Classifier table is built from.  Names are
// normalized, de-duplicated and sorted by the Classifier.
type Loader func() []string

// ResourceLoader builds a Loader over resources.Default.
func ResourceLoader() Loader {
	return func() []string {
		return resources.Default().Names()
	}
}

// Classifier answers whether a name is native.  The name table is built on
// first use.  A build that produces no names is not kept so that a later
// query can retry once the resources are available; a non-empty table is
// immutable.  A Classifier is safe for concurrent use.
type Classifier struct {
	load  Loader
	mu    sync.Mutex
	table atomic.Pointer[[]string]
}

// New returns a Classifier whose table is built by load.
func New(load Loader) *Classifier {
	return &Classifier{load: load}
}

var defaultClassifier = sync.OnceValue(func() *Classifier {
	return New(ResourceLoader())
})

// Default returns the process-wide Classifier backed by resources.Default.
func Default() *Classifier {
	return defaultClassifier()
}

// IsNative reports whether name is native using the Default classifier.
func IsNative(name string) bool {
	return Default().IsNative(name)
}

// IsNative reports whether name is a native name.  ASCII case is ignored.
func (c *Classifier) IsNative(name string) bool {
	table := c.names()
	name = ast.NormalizeName(name)
	if isHot(name) {
		return true
	}
	return search(table, name)
}

// Names returns a copy of the name table.
func (c *Classifier) Names() []string {
	table := c.names()
	cp := make([]string, len(table))
	copy(cp, table)
	return cp
}

// Len returns the size of the name table.
func (c *Classifier) Len() int {
	return len(c.names())
}

func (c *Classifier) names() []string {
	if t := c.table.Load(); t != nil {
		return *t
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t := c.table.Load(); t != nil {
		return *t
	}
	table := buildTable(c.load)
	if len(table) > 0 {
		c.table.Store(&table)
	}
	return table
}

func buildTable(load Loader) []string {
	if load == nil {
		return nil
	}
	raw := load()
	table := make([]string, 0, len(raw))
	for _, name := range raw {
		table = append(table, ast.NormalizeName(name))
	}
	sort.Strings(table)
	// compact sorted duplicates in place
	n := 0
	for i, name := range table {
		if i > 0 && name == table[n-1] {
			continue
		}
		table[n] = name
		n++
	}
	return table[:n]
}

// search is an iterative binary search over an ordinal-sorted table.
func search(table []string, name string) bool {
	lo, hi := 0, len(table)-1
	for lo <= hi {
		mid := int(uint(lo+hi) >> 1)
		switch v := table[mid]; {
		case v == name:
			return true
		case v < name:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return false
}
