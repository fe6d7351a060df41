// Copyright © 2024 The ELPS authors

// Package lsp implements a Language Server Protocol server for AutoLISP.
// It provides diagnostics, hover, go-to-definition, references, document
// highlights and document symbols.
package lsp

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/Methuselah96/auto-lisp-parser/analysis"
	"github.com/Methuselah96/auto-lisp-parser/document"
	"github.com/Methuselah96/auto-lisp-parser/lint"
	"github.com/Methuselah96/auto-lisp-parser/natives"
	"github.com/Methuselah96/auto-lisp-parser/resources"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const serverName = "alisp-lsp"

var log = commonlog.GetLogger("alisp.lsp")

// Server is the AutoLISP language server.
type Server struct {
	handler  protocol.Handler
	glspSrv  *glspserver.Server
	docs     *document.Store
	uris     sync.Map // file name -> URI sent by the client
	rootURI  string
	rootPath string

	// include selects the workspace files loaded on initialize.
	include []string
	watch   bool
	watcher *document.Watcher

	verifier *analysis.Verifier
	linter   *lint.Linter
	natives  *natives.Classifier

	resOnce sync.Once
	res     *resources.Resources

	// Debouncer for didChange notifications.
	debounceMu sync.Mutex
	debounce   map[string]*time.Timer

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithInclude sets the doublestar patterns of workspace files analyzed
// alongside open documents.
func WithInclude(patterns ...string) Option {
	return func(s *Server) { s.include = patterns }
}

// WithAnalyzers replaces the default lint checks.
func WithAnalyzers(analyzers []*lint.Analyzer) Option {
	return func(s *Server) { s.linter.Analyzers = analyzers }
}

// WithNatives sets the classifier deciding which names are built in.
func WithNatives(c *natives.Classifier) Option {
	return func(s *Server) { s.natives = c }
}

// WithWatcher enables or disables watching the workspace root for file
// changes.  Watching is enabled by default.
func WithWatcher(enabled bool) Option {
	return func(s *Server) { s.watch = enabled }
}

// WithResources sets the documentation used for hover text instead of the
// default resources.
func WithResources(res *resources.Resources) Option {
	return func(s *Server) {
		s.resOnce.Do(func() { s.res = res })
	}
}

// New creates a new AutoLISP LSP server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:     document.NewStore(),
		include:  document.DefaultInclude,
		watch:    true,
		debounce: make(map[string]*time.Timer),
		exitFn:   os.Exit,
		natives:  natives.Default(),
	}
	s.verifier = analysis.NewVerifier(analysis.WithDocuments(s.docs))
	s.linter = &lint.Linter{
		Analyzers: lint.DefaultAnalyzers(),
		Verifier:  s.verifier,
		Documents: s.docs,
	}
	for _, o := range opts {
		o(s)
	}
	s.linter.Natives = s.natives

	s.handler = protocol.Handler{
		Initialize: s.initialize,
		Shutdown:   s.shutdown,
		Exit:       s.exit,
		SetTrace:   s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover:             s.textDocumentHover,
		TextDocumentDefinition:        s.textDocumentDefinition,
		TextDocumentReferences:        s.textDocumentReferences,
		TextDocumentDocumentHighlight: s.textDocumentDocumentHighlight,
		TextDocumentDocumentSymbol:    s.textDocumentDocumentSymbol,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.RootURI != nil {
		s.rootURI = *params.RootURI
		s.rootPath = uriToPath(s.rootURI)
	} else if params.RootPath != nil {
		s.rootPath = document.NormalizeFilePath(*params.RootPath)
		s.rootURI = pathToURI(s.rootPath)
	}
	if s.rootPath != "" {
		s.loadWorkspace()
	}

	capabilities := s.handler.CreateServerCapabilities()

	// Override text document sync to full.
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}

	version := "0.1.0"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// loadWorkspace reads the workspace files into the store and starts the
// file watcher.  Failures are logged; the server keeps working on open
// documents alone.
func (s *Server) loadWorkspace() {
	if _, err := document.LoadWorkspace(context.Background(), s.docs, s.rootPath, s.include); err != nil {
		log.Warningf("workspace %s: %v", s.rootPath, err)
		return
	}
	if !s.watch {
		return
	}
	w, err := document.NewWatcher(s.docs, s.rootPath, s.include)
	if err != nil {
		log.Warningf("%v", err)
		return
	}
	w.OnChange(func(path string, kind document.ChangeKind) {
		log.Debugf("%s %s", kind, path)
		s.republishOpenDocuments()
	})
	if err := w.Start(); err != nil {
		log.Warningf("%v", err)
		_ = w.Stop()
		return
	}
	s.watcher = w
}

// republishOpenDocuments re-lints every document an editor has open.
// Global assignments depend on the whole workspace, so a change to any file
// can change another file's diagnostics.
func (s *Server) republishOpenDocuments() {
	for _, doc := range s.docs.Documents() {
		if s.docs.IsPinned(doc.FileName()) {
			s.analyzeAndPublish(doc)
		}
	}
}

// shutdown handles the LSP shutdown request.
func (s *Server) shutdown(ctx *glsp.Context) error {
	// Cancel any pending debounce timers.
	s.debounceMu.Lock()
	for _, t := range s.debounce {
		t.Stop()
	}
	s.debounce = make(map[string]*time.Timer)
	s.debounceMu.Unlock()

	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			log.Warningf("stop watcher: %v", err)
		}
		s.watcher = nil
	}
	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// resources returns the documentation dataset, loading it on first use.
func (s *Server) resources() *resources.Resources {
	s.resOnce.Do(func() {
		s.res = resources.Default()
	})
	return s.res
}

// document returns the store document for a URI, or nil.
func (s *Server) document(uri string) *document.Snapshot {
	return s.docs.Get(uriToPath(uri))
}

// documentURI returns the URI the client uses for doc.
func (s *Server) documentURI(doc *document.Snapshot) string {
	if uri, ok := s.uris.Load(doc.FileName()); ok {
		return uri.(string)
	}
	return pathToURI(doc.FileName())
}

// captureNotify stores the notification function from the context for
// async use (e.g., publishing diagnostics after a debounce).
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
