package ops

import "sync"

// Session holds the most recent Result for a shell that serves repeated
// requests (the web UI). The Result is swapped as a whole on each generate
// and dropped on clear; it is never updated in place.
type Session struct {
	mu      sync.RWMutex
	current *Result
}

// NewSession creates an empty Session.
func NewSession() *Session {
	return &Session{}
}

// Current returns the current Result, or nil when nothing has been generated
// since the last Clear.
func (s *Session) Current() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace makes r the current Result.
func (s *Session) Replace(r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = r
}

// Clear discards the current Result.
func (s *Session) Clear() {
	s.Replace(nil)
}
