package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabhub/collabhub-backend/internal/auth/domain"
)

type eventLog struct {
	mu     sync.Mutex
	events []domain.Event
}

func (l *eventLog) record(e domain.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) types() []domain.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.EventType, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestSessions(start time.Time) (*Sessions, *time.Time) {
	s := NewSessions()
	now := start
	s.now = func() time.Time { return now }
	return s, &now
}

func TestSessions_TouchPublishesSignInThenHeartbeat(t *testing.T) {
	s, now := newTestSessions(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	log := &eventLog{}
	s.Subscribe(log.record)

	ada := domain.Identity{UserID: "u-ada", Email: "ada@example.com"}

	s.Touch(ada)
	*now = now.Add(10 * time.Second)
	s.Touch(ada)
	*now = now.Add(25 * time.Second)
	s.Touch(ada)

	assert.Equal(t, []domain.EventType{domain.EventSignedIn, domain.EventActive}, log.types())
	assert.Equal(t, 1, s.Active())
}

func TestSessions_AnonymousIsIgnored(t *testing.T) {
	s := NewSessions()
	log := &eventLog{}
	s.Subscribe(log.record)

	s.Touch(domain.Anonymous())
	s.Touch(domain.Identity{})

	assert.Empty(t, log.types())
	assert.Zero(t, s.Active())
}

func TestSessions_SignOut(t *testing.T) {
	s := NewSessions()
	log := &eventLog{}
	s.Subscribe(log.record)

	s.Touch(domain.Identity{UserID: "u1", DisplayName: "Ada"})
	assert.True(t, s.SignOut("u1"))
	assert.False(t, s.SignOut("u1"))

	require.Len(t, log.events, 3)
	assert.Equal(t, domain.EventSignedOut, log.events[1].Type)
	assert.Equal(t, "Ada", log.events[1].Identity.DisplayName)
	assert.Equal(t, "u1", log.events[2].Identity.UserID)
	assert.Zero(t, s.Active())
}

func TestSessions_Unsubscribe(t *testing.T) {
	s := NewSessions()
	log := &eventLog{}
	unsubscribe := s.Subscribe(log.record)

	s.Touch(domain.Identity{UserID: "u1"})
	unsubscribe()
	unsubscribe()
	s.Touch(domain.Identity{UserID: "u2"})

	assert.Equal(t, []domain.EventType{domain.EventSignedIn}, log.types())
}

func TestSessions_Expire(t *testing.T) {
	s, now := newTestSessions(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	log := &eventLog{}
	s.Subscribe(log.record)

	s.Touch(domain.Identity{UserID: "idle"})
	*now = now.Add(10 * time.Minute)
	s.Touch(domain.Identity{UserID: "busy"})

	expired := s.Expire(5 * time.Minute)
	assert.Equal(t, []string{"idle"}, expired)
	assert.Equal(t, 1, s.Active())
	assert.Equal(t, domain.EventSignedOut, log.events[len(log.events)-1].Type)
}
