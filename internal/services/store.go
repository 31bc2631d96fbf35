package services

import (
	"context"
	"errors"
	"pedestrian-nav-service/internal/ports"
	"sync"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// SinkFactory returns the guidance sink for a new session.
type SinkFactory func(sessionID string) ports.GuidanceSink

// SessionStore keeps the live navigation sessions of this process in memory.
type SessionStore struct {
	ctx       context.Context
	gateway   *RouteGateway
	sinks     SinkFactory
	publisher ports.EventPublisher
	cfg       SessionConfig

	mu       sync.RWMutex
	sessions map[string]*NavigationSession
}

func NewSessionStore(
	ctx context.Context,
	gateway *RouteGateway,
	sinks SinkFactory,
	publisher ports.EventPublisher,
	cfg SessionConfig,
) *SessionStore {
	return &SessionStore{
		ctx:       ctx,
		gateway:   gateway,
		sinks:     sinks,
		publisher: publisher,
		cfg:       cfg,
		sessions:  make(map[string]*NavigationSession),
	}
}

func (st *SessionStore) Create() *NavigationSession {
	id := uuid.NewString()

	var sink ports.GuidanceSink
	if st.sinks != nil {
		sink = st.sinks(id)
	}

	s := NewNavigationSession(st.ctx, id, st.gateway, sink, st.publisher, st.cfg)

	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()

	return s
}

func (st *SessionStore) Get(id string) (*NavigationSession, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (st *SessionStore) Delete(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

// CloseAll removes and closes every session. Used on shutdown.
func (st *SessionStore) CloseAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*NavigationSession)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
