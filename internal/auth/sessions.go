package auth

import (
	"sync"
	"time"

	"github.com/collabhub/collabhub-backend/internal/auth/domain"
)

const defaultHeartbeatEvery = 30 * time.Second

// Sessions tracks which users have recently been seen and notifies
// subscribers when someone signs in, stays active or signs out. Handlers are
// called synchronously on the publishing goroutine and must not block.
type Sessions struct {
	mu       sync.RWMutex
	seen     map[string]sessionState
	handlers map[int]func(domain.Event)
	nextID   int

	heartbeatEvery time.Duration
	now            func() time.Time
}

type sessionState struct {
	identity domain.Identity
	lastSeen time.Time
	lastBeat time.Time
}

func NewSessions() *Sessions {
	return &Sessions{
		seen:           make(map[string]sessionState),
		handlers:       make(map[int]func(domain.Event)),
		heartbeatEvery: defaultHeartbeatEvery,
		now:            time.Now,
	}
}

// Subscribe registers fn for every future event. Calling the returned
// function removes it; calling it twice is harmless.
func (s *Sessions) Subscribe(fn func(domain.Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.handlers, id)
			s.mu.Unlock()
		})
	}
}

// Touch records activity for id. The first sighting publishes signed_in,
// later ones publish active at most once per heartbeat interval.
func (s *Sessions) Touch(id domain.Identity) {
	if id.IsAnonymous() {
		return
	}

	now := s.now()
	var evt *domain.Event

	s.mu.Lock()
	st, ok := s.seen[id.UserID]
	switch {
	case !ok:
		evt = &domain.Event{Type: domain.EventSignedIn, Identity: id}
		st = sessionState{identity: id, lastBeat: now}
	case now.Sub(st.lastBeat) >= s.heartbeatEvery:
		evt = &domain.Event{Type: domain.EventActive, Identity: id}
		st.lastBeat = now
	}
	st.identity = id
	st.lastSeen = now
	s.seen[id.UserID] = st
	s.mu.Unlock()

	if evt != nil {
		s.publish(*evt)
	}
}

// SignOut forgets userID and publishes signed_out. It reports whether the
// user had an active session.
func (s *Sessions) SignOut(userID string) bool {
	s.mu.Lock()
	st, ok := s.seen[userID]
	delete(s.seen, userID)
	s.mu.Unlock()

	if !ok {
		st.identity = domain.Identity{UserID: userID}
	}
	s.publish(domain.Event{Type: domain.EventSignedOut, Identity: st.identity})
	return ok
}

// Expire signs out every session idle for longer than maxIdle and returns
// the affected user ids.
func (s *Sessions) Expire(maxIdle time.Duration) []string {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	var expired []domain.Identity
	for uid, st := range s.seen {
		if st.lastSeen.Before(cutoff) {
			expired = append(expired, st.identity)
			delete(s.seen, uid)
		}
	}
	s.mu.Unlock()

	ids := make([]string, 0, len(expired))
	for _, id := range expired {
		s.publish(domain.Event{Type: domain.EventSignedOut, Identity: id})
		ids = append(ids, id.UserID)
	}
	return ids
}

// Active returns the number of tracked sessions.
func (s *Sessions) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}

func (s *Sessions) publish(evt domain.Event) {
	s.mu.RLock()
	handlers := make([]func(domain.Event), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
}
