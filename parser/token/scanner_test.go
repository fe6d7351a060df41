// Copyright © 2018 The ELPS authors

package token

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerEOF(t *testing.T) {
	s := NewStringScanner("", "xxxxxxxxxx")
	for i := 0; i < 10; i++ {
		require.NoError(t, s.ScanRune())
	}
	tok := s.EmitToken(SYMBOL)
	assert.Equal(t, "xxxxxxxxxx", tok.Text)

	for i := 0; i < 3; i++ {
		tok := s.EmitToken(0)
		assert.Equal(t, "", tok.Text)
		assert.Equal(t, io.EOF, s.ScanRune())
		assert.True(t, s.EOF())
	}
	assert.NoError(t, s.Err())
}

func TestScannerAcceptSeq(t *testing.T) {
	s := NewStringScanner("", "xxxxxxxxxx")
	assert.Equal(t, 10, s.AcceptSeq(func(c rune) bool { return true }))
	s.Ignore()
	assert.False(t, s.Accept(func(c rune) bool { return true }))
	assert.True(t, s.EOF())
}

func TestScannerPeek(t *testing.T) {
	s := NewStringScanner("", "ab")
	c, ok := s.Peek()
	assert.True(t, ok)
	assert.Equal(t, 'a', c)
	c, ok = s.PeekN(1)
	assert.True(t, ok)
	assert.Equal(t, 'b', c)
	_, ok = s.PeekN(2)
	assert.False(t, ok)
	assert.True(t, s.AcceptRune('a'))
	assert.False(t, s.AcceptRune('a'))
	assert.Equal(t, 'a', s.Rune())
}

func TestScannerAcceptString(t *testing.T) {
	s := NewStringScanner("", ";|x|;")
	n, ok := s.AcceptString(";|")
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	n, ok = s.AcceptString("y")
	assert.False(t, ok)
	assert.Equal(t, 0, n)
}

func TestScannerLocations(t *testing.T) {
	s := NewStringScanner("test.lsp", "ab\n  cd")
	s.AcceptSeq(func(c rune) bool { return c != '\n' })
	ab := s.EmitToken(SYMBOL)
	assert.Equal(t, "ab", ab.Text)
	assert.Equal(t, &Location{File: "test.lsp", Pos: 0, Line: 1, Col: 1, EndPos: 2, EndLine: 1, EndCol: 3}, ab.Source)

	s.AcceptSeqSpace()
	s.Ignore()
	s.AcceptSeq(func(c rune) bool { return true })
	cd := s.EmitToken(SYMBOL)
	assert.Equal(t, "cd", cd.Text)
	assert.Equal(t, 2, cd.Source.Line)
	assert.Equal(t, 3, cd.Source.Col)
	assert.Equal(t, 2, cd.Source.EndLine)
	assert.Equal(t, 5, cd.Source.EndCol)
	assert.Equal(t, "test.lsp:2:3", cd.Source.String())
}

func TestScannerMultibyteColumns(t *testing.T) {
	s := NewStringScanner("", "ä b")
	require.NoError(t, s.ScanRune())
	tok := s.EmitToken(SYMBOL)
	assert.Equal(t, 1, tok.Source.Col)
	assert.Equal(t, 2, tok.Source.EndCol)
	assert.Equal(t, 2, tok.Source.EndPos)
}

func TestScannerInvalidUTF8(t *testing.T) {
	s := NewStringScanner("", "\xff")
	_, ok := s.Peek()
	assert.False(t, ok)
	assert.Error(t, s.ScanRune())
	assert.False(t, s.EOF())
	s.Discard()
	assert.True(t, s.EOF())
	assert.Equal(t, 2, s.Loc().Col)
}

func TestLocationSpan(t *testing.T) {
	start := &Location{File: "f", Line: 1, Col: 1, EndLine: 1, EndCol: 2}
	end := &Location{File: "f", Line: 3, Col: 4, EndPos: 20, EndLine: 3, EndCol: 5}
	span := start.Span(end)
	assert.Equal(t, 1, span.Line)
	assert.Equal(t, 3, span.EndLine)
	assert.Equal(t, 5, span.EndCol)
	assert.Equal(t, 2, start.EndCol, "Span must not modify the receiver")
}
