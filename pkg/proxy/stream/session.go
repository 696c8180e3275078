package stream

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session tracks the state of one client-facing emulated stream.
//
// A session moves through keep-alive emission into exactly one terminal
// state: completed (the upstream result arrived and the closing frames are
// being written) or cancelled (the client went away or a write failed).
// The keep-alive ticker and the in-flight upstream call communicate only
// through these flags, and the terminal transition happens at most once.
//
// The temporary id and creation timestamp are generated once at session
// start and shared by every keep-alive frame; terminal frames switch to the
// upstream's real id and timestamp.
type Session struct {
	mu          sync.Mutex
	tempID      string
	tempCreated int64
	cancelled   bool
	completed   bool
}

// NewSession creates a session with a fresh temporary completion id.
func NewSession() *Session {
	return &Session{
		tempID:      "chatcmpl-" + uuid.NewString(),
		tempCreated: time.Now().Unix(),
	}
}

// TempID returns the temporary completion id used by keep-alive frames.
func (s *Session) TempID() string {
	return s.tempID
}

// TempCreated returns the session's creation timestamp.
func (s *Session) TempCreated() int64 {
	return s.tempCreated
}

// Writable reports whether frames may still be written.
// Every write attempt must check this first.
func (s *Session) Writable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cancelled && !s.completed
}

// Cancel transitions the session to the cancelled state.
// Returns true if this call performed the transition, false if the session
// had already reached a terminal state. Cancelling never raises: a write
// failure on an already-closed transport lands here silently.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled || s.completed {
		return false
	}
	s.cancelled = true
	return true
}

// Complete transitions the session to the completed state, ending keep-alive
// emission. Returns true if this call won the terminal transition; false
// means the session was already cancelled (or completed) and the caller must
// not write any further frames.
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled || s.completed {
		return false
	}
	s.completed = true
	return true
}

// Cancelled reports whether the session was cancelled.
func (s *Session) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}
