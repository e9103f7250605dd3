package layout

import (
	"sync"

	"github.com/mind-engage/growthreport/internal/document"
)

// Stage holds the one document being exported. It is handed out by a
// stager for a single item and must be released when the item is done,
// whatever the outcome.
type Stage struct {
	mu       sync.Mutex
	doc      document.Document
	released bool
	cleanups []func()
}

func NewStage(doc document.Document) *Stage {
	return &Stage{doc: doc}
}

// Document returns the staged document; ok is false after Release.
func (s *Stage) Document() (document.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return document.Document{}, false
	}
	return s.doc, true
}

// OnRelease registers fn to run on Release, in reverse registration order.
func (s *Stage) OnRelease(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// Release clears the staged document and runs the cleanup hooks. Calling it
// more than once is a no-op.
func (s *Stage) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.doc = document.Document{}
	fns := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

func (s *Stage) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
