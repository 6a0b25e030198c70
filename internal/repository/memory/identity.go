package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/postit-wall/internal/model"
)

var (
	_ model.UserStore    = (*UserStore)(nil)
	_ model.SessionStore = (*SessionStore)(nil)
	_ model.LinkStore    = (*LinkStore)(nil)
)

type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]model.User)}
}

func (s *UserStore) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return user, nil
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) GetBySubject(_ context.Context, provider, subject string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Provider == provider && u.Subject == subject {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *UserStore) Link(_ context.Context, id uuid.UUID, provider, subject string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	for _, other := range s.users {
		if other.ID != id && other.Provider == provider && other.Subject == subject {
			return model.User{}, model.ErrCredentialInUse
		}
	}
	u.Kind = model.SessionFederated
	u.Provider = provider
	u.Subject = subject
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return u, nil
}

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]model.SessionRecord
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]model.SessionRecord)}
}

func (s *SessionStore) Create(_ context.Context, record model.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[record.JTI] = record
	return nil
}

func (s *SessionStore) GetByJTI(_ context.Context, jti string) (model.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.sessions[jti]
	if !ok {
		return model.SessionRecord{}, model.ErrNotFound
	}
	return r, nil
}

func (s *SessionStore) RevokeByJTI(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.sessions[jti]
	if !ok || r.RevokedAt != nil {
		return nil
	}
	now := time.Now()
	r.RevokedAt = &now
	s.sessions[jti] = r
	return nil
}

type LinkStore struct {
	mu    sync.Mutex
	links map[string]model.PendingLink
}

func NewLinkStore() *LinkStore {
	return &LinkStore{links: make(map[string]model.PendingLink)}
}

func (s *LinkStore) Create(_ context.Context, link model.PendingLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[link.State] = link
	return nil
}

func (s *LinkStore) GetByState(_ context.Context, state string) (model.PendingLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[state]
	if !ok {
		return model.PendingLink{}, model.ErrNotFound
	}
	return l, nil
}

func (s *LinkStore) Consume(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[state]
	if !ok {
		return model.ErrNotFound
	}
	l.Consumed = true
	s.links[state] = l
	return nil
}
