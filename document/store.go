// Copyright © 2024 The ELPS authors

package document

import (
	"sort"
	"sync"
)

// Store holds the documents of a workspace keyed by normalized file name.
// Documents opened by an editor are pinned: watcher and workspace reloads
// leave them alone until they are closed.
type Store struct {
	mu     sync.RWMutex
	docs   map[string]*Snapshot
	pinned map[string]int32
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		docs:   make(map[string]*Snapshot),
		pinned: make(map[string]int32),
	}
}

// Open adds an editor-owned document to the store and pins it.
func (s *Store) Open(name string, version int32, content string) *Snapshot {
	name = NormalizeFilePath(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[name]
	if ok {
		doc.Update(content)
	} else {
		doc = New(name, content)
		s.docs[name] = doc
	}
	s.pinned[name] = version
	return doc
}

// Change replaces the content of a document (full sync).  The Snapshot
// identity is kept so references into the previous tree remain comparable
// by document.
func (s *Store) Change(name string, version int32, content string) *Snapshot {
	name = NormalizeFilePath(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[name]
	if !ok {
		doc = New(name, content)
		s.docs[name] = doc
	} else {
		doc.Update(content)
	}
	s.pinned[name] = version
	return doc
}

// Close unpins a document.  It stays in the store as a workspace document
// when keep is true and is removed otherwise.
func (s *Store) Close(name string, keep bool) {
	name = NormalizeFilePath(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pinned, name)
	if !keep {
		delete(s.docs, name)
	}
}

// Put stores content read from disk.  Pinned documents are not touched and
// Put reports false for them.
func (s *Store) Put(name string, content string) bool {
	name = NormalizeFilePath(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pinned[name]; ok {
		return false
	}
	if doc, ok := s.docs[name]; ok {
		doc.Update(content)
		return true
	}
	s.docs[name] = New(name, content)
	return true
}

// Remove deletes an unpinned document.
func (s *Store) Remove(name string) bool {
	name = NormalizeFilePath(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pinned[name]; ok {
		return false
	}
	if _, ok := s.docs[name]; !ok {
		return false
	}
	delete(s.docs, name)
	return true
}

// Get retrieves a document by name. Returns nil if not found.
func (s *Store) Get(name string) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[NormalizeFilePath(name)]
}

// Version returns the editor version of a pinned document.
func (s *Store) Version(name string) (int32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.pinned[NormalizeFilePath(name)]
	return v, ok
}

// IsPinned reports whether an editor owns the document.
func (s *Store) IsPinned(name string) bool {
	_, ok := s.Version(name)
	return ok
}

// Len returns the number of documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Documents returns every document ordered by file name.
func (s *Store) Documents() []*Snapshot {
	s.mu.RLock()
	docs := make([]*Snapshot, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].FileName() < docs[j].FileName()
	})
	return docs
}
