package backoffice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/edumeal/backoffice/pkg/enums/role"
	"github.com/edumeal/backoffice/services/backoffice/internal/edumeal"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

type Session struct {
	ID          string
	UserID      string
	Name        string
	Email       string
	Roles       []role.Role
	Credentials *edumeal.Credentials
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// HasRole reports whether the session holds any of roles.
func (s *Session) HasRole(roles ...role.Role) bool {
	for _, have := range s.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// HomePath is the landing path of the session's first role.
func (s *Session) HomePath() string {
	if len(s.Roles) == 0 {
		return "/"
	}
	return s.Roles[0].HomePath()
}

type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	ttl      time.Duration
	sweeper  *sweeper
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	store := &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
	store.sweeper = newSweeper(5*time.Minute, func() { store.CleanupExpired() })
	return store
}

func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

func (s *SessionStore) Save(session *Session) error {
	if session == nil {
		return errors.New("session is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) Get(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}

	return session, nil
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}

// CleanupExpired drops expired sessions and returns how many were removed.
func (s *SessionStore) CleanupExpired() int {
	now := time.Now()
	count := 0

	s.mu.Lock()
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, id)
			count++
		}
	}
	s.mu.Unlock()

	return count
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) Start(ctx context.Context) error {
	s.sweeper.start()
	return nil
}

func (s *SessionStore) Stop(ctx context.Context) error {
	s.sweeper.stop()
	return nil
}

// sweeper runs fn on an interval between start and stop.
type sweeper struct {
	interval time.Duration
	fn       func()
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
}

func newSweeper(interval time.Duration, fn func()) *sweeper {
	return &sweeper{interval: interval, fn: fn}
}

func (w *sweeper) start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.fn()
			}
		}
	}(w.done)
}

func (w *sweeper) stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
