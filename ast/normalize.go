// Copyright © 2024 The ELPS authors

package ast

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a symbol name for case-insensitive comparison.  ASCII
// names are lowercased directly.  Other names are composed to NFC and then
// folded without any language-specific rules.
func NormalizeName(name string) string {
	ascii, lower := true, true
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 0x80 {
			ascii = false
			break
		}
		if 'A' <= c && c <= 'Z' {
			lower = false
		}
	}
	if !ascii {
		return cases.Fold().String(norm.NFC.String(name))
	}
	if lower {
		return name
	}
	b := []byte(name)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
