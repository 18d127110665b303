package flow

import (
	"sync"

	"pageflow/doc"
)

// Focus identifies section holding input focus.
type Focus struct {
	PageKey string
	Kind    doc.SectionKind
}

// Session is the state of one engine attached to one document: which running
// section was edited last, where focus is and whether synchronization writes
// are in progress. Safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	lastEdited map[doc.SectionKind]string
	focus      Focus
	hasFocus   bool
	syncing    bool
}

func NewSession() *Session {
	return &Session{lastEdited: make(map[doc.SectionKind]string)}
}

// Editing records that user works with section of the page. Header and footer
// edits also make the page a preferred source for synchronization.
func (s *Session) Editing(pageKey string, kind doc.SectionKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.focus, s.hasFocus = Focus{PageKey: pageKey, Kind: kind}, true
	if kind.IsRunning() {
		s.lastEdited[kind] = pageKey
	}
}

// Focused records that section of the page received input focus without
// being edited yet.
func (s *Session) Focused(pageKey string, kind doc.SectionKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus, s.hasFocus = Focus{PageKey: pageKey, Kind: kind}, true
}

// Blur records that no section holds focus anymore.
func (s *Session) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus, s.hasFocus = Focus{}, false
}

func (s *Session) LastEdited(kind doc.SectionKind) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEdited[kind]
}

func (s *Session) Focus() (Focus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus, s.hasFocus
}

// Forget drops everything known about removed page.
func (s *Session) Forget(pageKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for kind, key := range s.lastEdited {
		if key == pageKey {
			delete(s.lastEdited, kind)
		}
	}
	if s.hasFocus && s.focus.PageKey == pageKey {
		s.focus, s.hasFocus = Focus{}, false
	}
}

// acquire sets synchronization guard, it fails when guard is already set.
func (s *Session) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncing {
		return false
	}
	s.syncing = true
	return true
}

// Release clears synchronization guard.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncing = false
}

// Syncing reports whether synchronization guard is set.
func (s *Session) Syncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing
}

// Reset returns session to initial state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.lastEdited)
	s.focus, s.hasFocus = Focus{}, false
	s.syncing = false
}
