// Copyright © 2024 The ELPS authors

// Package document pairs AutoLISP source text with its lazily derived
// Fragment Tree and manages collections of such documents.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/Methuselah96/auto-lisp-parser/parser"
	"github.com/Methuselah96/auto-lisp-parser/parser/token"
	"github.com/cespare/xxhash/v2"
	"github.com/tliron/commonlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Language selectors derived from file extensions.
const (
	LanguageAutoLISP = "autolisp"
	LanguageProject  = "autolispprj"
	LanguageDCL      = "autolispdcl"
)

// ErrUnsupportedLanguage is returned when a file has no language selector.
var ErrUnsupportedLanguage = errors.New("unsupported language")

var log = commonlog.GetLogger("alisp.document")

var tracer = otel.Tracer("github.com/Methuselah96/auto-lisp-parser/document")

// SelectorFor returns the language selector for a file name, or "" when the
// file is not an AutoLISP document.  Extensions are matched without regard
// to case.
func SelectorFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".lsp", ".mnl":
		return LanguageAutoLISP
	case ".prj":
		return LanguageProject
	case ".dcl":
		return LanguageDCL
	}
	return ""
}

// NormalizeFilePath converts path separators to forward slashes.
func NormalizeFilePath(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

// NormalizeEOL converts CRLF and lone CR line endings to LF.
func NormalizeEOL(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// Snapshot is a named document whose text may be replaced.  Each version of
// the text is held by an immutable View, and Update swaps in a new View
// without disturbing readers of the old one.  A Snapshot is safe for
// concurrent use, but the trees and views it returns are shared and must
// not be modified.
type Snapshot struct {
	fileName   string
	languageID string
	parseOpts  []parser.Option

	view atomic.Pointer[View]
}

// Option configures a Snapshot.
type Option func(*Snapshot)

// WithLanguage overrides the selector derived from the file name.
func WithLanguage(id string) Option {
	return func(s *Snapshot) {
		s.languageID = id
	}
}

// WithParseOptions passes options to the reader.
func WithParseOptions(opts ...parser.Option) Option {
	return func(s *Snapshot) {
		s.parseOpts = append(s.parseOpts, opts...)
	}
}

// New returns a Snapshot of content named fileName.
func New(fileName string, content string, opts ...Option) *Snapshot {
	fileName = NormalizeFilePath(fileName)
	s := &Snapshot{
		fileName:   fileName,
		languageID: SelectorFor(fileName),
	}
	for _, opt := range opts {
		opt(s)
	}
	content = NormalizeEOL(content)
	s.view.Store(s.newView(content, xxhash.Sum64String(content)))
	return s
}

// NewMemory returns a Snapshot of an unnamed buffer.
func NewMemory(content string, languageID string) *Snapshot {
	return New("", content, WithLanguage(languageID))
}

// Open reads the file at path.  Files without a language selector are
// rejected with ErrUnsupportedLanguage.
func Open(path string, opts ...Option) (*Snapshot, error) {
	if SelectorFor(path) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedLanguage)
	}
	b, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return New(path, string(b), opts...), nil
}

func (s *Snapshot) FileName() string {
	return s.fileName
}

func (s *Snapshot) LanguageID() string {
	return s.languageID
}

// IsLisp reports whether the document is analyzed as AutoLISP source.
func (s *Snapshot) IsLisp() bool {
	return s.languageID == LanguageAutoLISP
}

// View returns the current version of the document.  Reads that must agree
// with each other, such as a flat index looked up in the symbol index,
// should all go through one View.
func (s *Snapshot) View() *View {
	return s.view.Load()
}

func (s *Snapshot) Content() string {
	return s.View().Content()
}

// Lines returns the current text split into lines without terminators.
func (s *Snapshot) Lines() []string {
	return s.View().Lines()
}

// Update replaces the text.  Text identical to the current version keeps
// the current View and its parsed tree.
func (s *Snapshot) Update(content string) {
	content = NormalizeEOL(content)
	key := xxhash.Sum64String(content)
	if cur := s.view.Load(); cur.key == key {
		return
	}
	s.view.Store(s.newView(content, key))
}

// Container returns the root of the current version.
func (s *Snapshot) Container() *ast.Fragment {
	return s.View().Container()
}

// AtomsForest returns the flattened view of the current version.
func (s *Snapshot) AtomsForest() []*ast.Fragment {
	return s.View().AtomsForest()
}

// UserSymbols returns the symbol index of the current version.
func (s *Snapshot) UserSymbols() *ast.SymbolIndex {
	return s.View().UserSymbols()
}

// ParseErrors returns the syntax errors of the current version.
func (s *Snapshot) ParseErrors() []*token.LocationError {
	return s.View().ParseErrors()
}

// Fragment returns the fragment with the given flat index in the current
// version.  It panics when i is out of range.
func (s *Snapshot) Fragment(i int) *ast.Fragment {
	return s.View().Fragment(i)
}

func (s *Snapshot) newView(content string, key uint64) *View {
	return &View{doc: s, content: content, key: key}
}

// View is one version of a document's text paired with the Fragment Tree,
// flattened view and symbol index derived from it.  The tree is parsed on
// first structural access; after that a View never changes.
type View struct {
	doc     *Snapshot
	content string
	// hash of content
	key uint64

	linesOnce sync.Once
	lines     []string

	once sync.Once
	root *ast.Fragment
	flat []*ast.Fragment
	errs []*token.LocationError
}

// Snapshot returns the document this is a version of.
func (v *View) Snapshot() *Snapshot {
	return v.doc
}

func (v *View) Content() string {
	return v.content
}

// Lines returns the text split into lines without terminators.
func (v *View) Lines() []string {
	v.linesOnce.Do(func() {
		v.lines = strings.Split(v.content, "\n")
	})
	return v.lines
}

// Container returns the document root.  Documents that are not AutoLISP
// source have an empty root.
func (v *View) Container() *ast.Fragment {
	v.once.Do(v.derive)
	return v.root
}

// AtomsForest returns the flattened view of the document: every fragment in
// depth-first preorder, indexed by flat index.
func (v *View) AtomsForest() []*ast.Fragment {
	v.once.Do(v.derive)
	return v.flat
}

// UserSymbols returns the symbol index of the document root.
func (v *View) UserSymbols() *ast.SymbolIndex {
	return v.Container().UserSymbols()
}

// ParseErrors returns the syntax errors the reader recovered from.
func (v *View) ParseErrors() []*token.LocationError {
	v.once.Do(v.derive)
	return v.errs
}

// Fragment returns the fragment with the given flat index.  It panics when
// i is out of range.
func (v *View) Fragment(i int) *ast.Fragment {
	flat := v.AtomsForest()
	if i < 0 || i >= len(flat) {
		panic(fmt.Sprintf("document: flat index %d out of range [0,%d) in %q", i, len(flat), v.doc.fileName))
	}
	return flat[i]
}

func (v *View) derive() {
	s := v.doc
	_, span := tracer.Start(context.Background(), "document.parse")
	defer span.End()
	span.SetAttributes(
		attribute.String("document.name", s.fileName),
		attribute.Int("document.bytes", len(v.content)),
	)

	if !s.IsLisp() {
		v.root = ast.NewDocument(&token.Location{File: s.fileName, Line: 1, Col: 1})
		v.flat = v.root.Flatten()
		return
	}
	opts := append([]parser.Option{}, s.parseOpts...)
	res := parser.ParseString(s.fileName, v.content, opts...)
	v.root = res.Root
	v.errs = res.Errors
	v.flat = v.root.Flatten()
	span.SetAttributes(attribute.Int("document.fragments", len(v.flat)))
	log.Debugf("parsed %q: %d fragments, %d errors", s.fileName, len(v.flat), len(v.errs))
}
