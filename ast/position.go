// Copyright © 2024 The ELPS authors

package ast

import "fmt"

// Position is a 1-based line and column.  The first character of a line
// occupies column 1.
type Position struct {
	Line   int
	Column int
}

// Before reports whether p sorts strictly before q.
func (p Position) Before(q Position) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Column < q.Column)
}

func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.Line, p.Column)
}

// Range is a span of source text.  End is exclusive: it locates the column
// just past the last character.
type Range struct {
	Start Position
	End   Position
}

// NewRange returns a Range over the two positions, swapping them if they
// are given out of order.
func NewRange(a, b Position) Range {
	if b.Before(a) {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// IsZero reports whether r carries no source information.
func (r Range) IsZero() bool {
	return r == Range{}
}

// ContainsPosition reports whether pos lies within r.  The end position is
// included so that a cursor placed just after a symbol still selects it.
func (r Range) ContainsPosition(pos Position) bool {
	return !pos.Before(r.Start) && !r.End.Before(pos)
}

// Contains reports whether other lies entirely within r.
func (r Range) Contains(other Range) bool {
	return r.ContainsPosition(other.Start) && r.ContainsPosition(other.End)
}

func (r Range) String() string {
	return fmt.Sprintf("[%v -> %v]", r.Start, r.End)
}
