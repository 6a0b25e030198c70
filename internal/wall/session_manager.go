package wall

import (
	"context"
	"fmt"

	"github.com/dtroode/postit-wall/internal/logger"
	"github.com/dtroode/postit-wall/internal/model"
)

// IdentityService issues and resolves page sessions.
type IdentityService interface {
	SignInAnonymous(ctx context.Context) (model.Session, error)
	Resolve(ctx context.Context, token string) (*model.Session, error)
	BeginFederated(ctx context.Context, current *model.Session) (string, error)
	SignOut(ctx context.Context, token string) error
}

// SessionChangedFunc receives the page's session after every transition. A nil session means signed out.
type SessionChangedFunc func(ctx context.Context, session *model.Session)

// SessionManager tracks the session of a single page and reports every change to one callback.
type SessionManager struct {
	identity IdentityService
	view     View
	logger   *logger.Logger

	current  *model.Session
	onChange SessionChangedFunc
}

func NewSessionManager(identity IdentityService, view View, logger *logger.Logger) *SessionManager {
	return &SessionManager{
		identity: identity,
		view:     view,
		logger:   logger,
	}
}

// OnSessionChanged replaces the session callback.
func (m *SessionManager) OnSessionChanged(cb SessionChangedFunc) {
	m.onChange = cb
}

// Current returns the active session or nil.
func (m *SessionManager) Current() *model.Session {
	return m.current
}

// Start resolves the token the page arrived with and delivers the first notification.
// Only a token the identity service rejects is cleared. When resolving fails the page keeps
// its token, nothing is notified and the error is returned.
func (m *SessionManager) Start(ctx context.Context, token string) error {
	session, err := m.identity.Resolve(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to resolve session: %w", err)
	}
	if session == nil && token != "" {
		m.view.StoreToken("")
	}

	m.current = session
	m.notify(ctx)
	return nil
}

// SignInAnonymous creates an anonymous session for the page.
func (m *SessionManager) SignInAnonymous(ctx context.Context) error {
	session, err := m.identity.SignInAnonymous(ctx)
	if err != nil {
		return err
	}

	m.current = &session
	m.view.StoreToken(session.Token)
	m.notify(ctx)
	return nil
}

// BeginFederatedSignIn sends the page to the identity provider. An anonymous current session is linked.
// The outcome arrives with the next page load; failures to start are shown to the user.
func (m *SessionManager) BeginFederatedSignIn(ctx context.Context, current *model.Session) {
	url, err := m.identity.BeginFederated(ctx, current)
	if err != nil {
		m.logger.Error("Session manager: failed to begin federated sign-in", "error", err)
		m.view.Alert("Federated sign-in failed: " + err.Error())
		return
	}
	m.view.Redirect(url)
}

// SignOut ends the current session. The page is signed out locally even when revocation fails;
// the revocation error is returned after the notification.
func (m *SessionManager) SignOut(ctx context.Context) error {
	if m.current == nil {
		return nil
	}

	token := m.current.Token
	err := m.identity.SignOut(ctx, token)

	m.current = nil
	m.view.StoreToken("")
	m.notify(ctx)

	return err
}

func (m *SessionManager) notify(ctx context.Context) {
	if m.onChange != nil {
		m.onChange(ctx, m.current)
	}
}
