// Copyright © 2024 The ELPS authors

package lsp

import (
	"net/url"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"fortio.org/safecast"
	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/document"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// toLSPPosition converts a 1-based source position, whose column counts
// runes, to a 0-based LSP position, whose character counts UTF-16 code
// units.  lines is the text the position was read from.  Values that
// cannot be represented clamp to zero.
func toLSPPosition(lines []string, pos ast.Position) protocol.Position {
	return protocol.Position{
		Line:      safeUint(pos.Line - 1),
		Character: safeUint(utf16Offset(lineAt(lines, pos.Line), pos.Column-1)),
	}
}

// toLSPRange converts a source range to an LSP range.
func toLSPRange(lines []string, r ast.Range) protocol.Range {
	return protocol.Range{Start: toLSPPosition(lines, r.Start), End: toLSPPosition(lines, r.End)}
}

// fromLSPPosition converts a 0-based LSP position to a 1-based source
// position.
func fromLSPPosition(lines []string, pos protocol.Position) ast.Position {
	line, err := safecast.Conv[int](pos.Line)
	if err != nil {
		line = 0
	}
	units, err := safecast.Conv[int](pos.Character)
	if err != nil {
		units = 0
	}
	col := runeOffset(lineAt(lines, line+1), units)
	return ast.Position{Line: line + 1, Column: col + 1}
}

func lineAt(lines []string, n int) string {
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// utf16Offset returns the number of UTF-16 code units in the first n runes
// of line.  Columns past the end of the line count one unit each.
func utf16Offset(line string, n int) int {
	if n <= 0 {
		return n
	}
	units := 0
	for n > 0 && line != "" {
		r, size := utf8.DecodeRuneInString(line)
		line = line[size:]
		units += utf16Len(r)
		n--
	}
	return units + n
}

// runeOffset returns the number of runes of line covered by units UTF-16
// code units.  A position inside a surrogate pair selects the rune it
// splits.
func runeOffset(line string, units int) int {
	runes := 0
	for units > 0 && line != "" {
		r, size := utf8.DecodeRuneInString(line)
		w := utf16Len(r)
		if w > units {
			return runes
		}
		line = line[size:]
		units -= w
		runes++
	}
	return runes + units
}

func utf16Len(r rune) int {
	if n := len(utf16.Encode([]rune{r})); n > 0 {
		return n
	}
	return 1
}

func safeUint(n int) protocol.UInteger {
	u, err := safecast.Conv[protocol.UInteger](n)
	if err != nil {
		return 0
	}
	return u
}

// symbolAtPosition returns the symbol atom under the 0-based LSP position,
// or nil.  A cursor just past the end of a symbol still selects it.
func symbolAtPosition(view *document.View, pos protocol.Position) *ast.Fragment {
	if view == nil || !view.Snapshot().IsLisp() {
		return nil
	}
	f := view.Container().FragmentAt(fromLSPPosition(view.Lines(), pos))
	if f == nil || f.Type != ast.Symbol {
		return nil
	}
	return f
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	path, ok := strings.CutPrefix(uri, "file://")
	if !ok {
		return uri
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	// file:///c:/dir on Windows
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return document.NormalizeFilePath(path)
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	path = document.NormalizeFilePath(path)
	switch {
	case strings.HasPrefix(path, "/"):
	case len(path) > 1 && path[1] == ':':
		path = "/" + path
	default:
		return path
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}
