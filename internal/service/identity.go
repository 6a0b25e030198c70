package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/dtroode/postit-wall/internal/logger"
	"github.com/dtroode/postit-wall/internal/model"
)

// Identity issues, resolves and revokes wall sessions and runs the federated sign-in round trip.
type Identity struct {
	userStore    model.UserStore
	sessionStore model.SessionStore
	linkStore    model.LinkStore
	tokens       model.TokenManager
	provider     model.FederatedProvider
	logger       *logger.Logger
	now          func() time.Time
}

// NewIdentity creates the identity service. provider may be nil, which disables federated sign-in.
func NewIdentity(
	userStore model.UserStore,
	sessionStore model.SessionStore,
	linkStore model.LinkStore,
	tokens model.TokenManager,
	provider model.FederatedProvider,
	logger *logger.Logger,
) *Identity {
	return &Identity{
		userStore:    userStore,
		sessionStore: sessionStore,
		linkStore:    linkStore,
		tokens:       tokens,
		provider:     provider,
		logger:       logger,
		now:          time.Now,
	}
}

// SignInAnonymous creates a new anonymous user and a session for it.
func (a *Identity) SignInAnonymous(ctx context.Context) (model.Session, error) {
	now := a.now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:        uuid.New(),
		Kind:      model.SessionAnonymous,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.Session{}, &model.AuthError{Op: "anonymous", Err: fmt.Errorf("failed to create user: %w", err)}
	}

	session, err := a.issue(ctx, user)
	if err != nil {
		return model.Session{}, &model.AuthError{Op: "anonymous", Err: err}
	}

	a.logger.Info("Identity service: anonymous session created",
		"user_id", user.ID)

	return session, nil
}

// Resolve turns a session token into the session it stands for.
// Unknown, expired, revoked or malformed tokens resolve to no session.
func (a *Identity) Resolve(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}

	userID, jti, err := a.tokens.ParseSessionToken(token)
	if err != nil {
		a.logger.Debug("Identity service: rejecting session token", "error", err)
		return nil, nil
	}

	record, err := a.sessionStore.GetByJTI(ctx, jti)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &model.AuthError{Op: "resolve", Err: fmt.Errorf("failed to get session: %w", err)}
	}

	if err := validateSession(record, userID, a.now()); err != nil {
		a.logger.Debug("Identity service: session no longer valid", "jti", jti, "error", err)
		return nil, nil
	}

	user, err := a.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &model.AuthError{Op: "resolve", Err: fmt.Errorf("failed to get user: %w", err)}
	}

	return &model.Session{UserID: user.ID, Kind: user.Kind, Token: token}, nil
}

// BeginFederated records a pending sign-in and returns the provider URL to redirect to.
// When current is anonymous the round trip links the provider identity to current's user.
func (a *Identity) BeginFederated(ctx context.Context, current *model.Session) (string, error) {
	if a.provider == nil {
		return "", &model.AuthError{Op: "federated", Err: model.ErrProviderNotConfigured}
	}

	link := model.PendingLink{
		State:     ulid.Make().String(),
		ExpiresAt: a.now().Add(model.PendingLinkDuration),
	}
	if current != nil && current.Kind == model.SessionAnonymous {
		userID := current.UserID
		link.LinkUserID = &userID
	}

	if err := a.linkStore.Create(ctx, link); err != nil {
		return "", &model.AuthError{Op: "federated", Err: fmt.Errorf("failed to create pending link: %w", err)}
	}

	a.logger.Info("Identity service: federated sign-in started",
		"provider", a.provider.Name(),
		"linking", link.LinkUserID != nil)

	return a.provider.AuthURL(link.State), nil
}

// CompleteFederated finishes the redirect round trip and issues a federated session.
func (a *Identity) CompleteFederated(ctx context.Context, state, code string) (model.Session, error) {
	if a.provider == nil {
		return model.Session{}, &model.AuthError{Op: "federated", Err: model.ErrProviderNotConfigured}
	}

	link, err := a.linkStore.GetByState(ctx, state)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, &model.AuthError{Op: "federated", Err: model.ErrInvalidState}
	}
	if err != nil {
		return model.Session{}, &model.AuthError{Op: "federated", Err: fmt.Errorf("failed to get pending link: %w", err)}
	}
	if link.Consumed || a.now().After(link.ExpiresAt) {
		return model.Session{}, &model.AuthError{Op: "federated", Err: model.ErrInvalidState}
	}

	err = a.linkStore.Consume(ctx, state)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, &model.AuthError{Op: "federated", Err: model.ErrInvalidState}
	}
	if err != nil {
		return model.Session{}, &model.AuthError{Op: "federated", Err: fmt.Errorf("failed to consume pending link: %w", err)}
	}

	subject, err := a.provider.Exchange(ctx, code)
	if err != nil {
		return model.Session{}, &model.AuthError{Op: "federated", Err: err}
	}

	user, err := a.resolveFederatedUser(ctx, link, subject)
	if err != nil {
		return model.Session{}, &model.AuthError{Op: "federated", Err: err}
	}

	session, err := a.issue(ctx, user)
	if err != nil {
		return model.Session{}, &model.AuthError{Op: "federated", Err: err}
	}

	a.logger.Info("Identity service: federated sign-in completed",
		"user_id", user.ID,
		"provider", a.provider.Name(),
		"linked", link.LinkUserID != nil)

	return session, nil
}

// SignOut revokes the session behind token. Tokens that no longer parse have nothing to revoke.
func (a *Identity) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	_, jti, err := a.tokens.ParseSessionToken(token)
	if err != nil {
		return nil
	}

	if err := a.sessionStore.RevokeByJTI(ctx, jti); err != nil {
		return &model.AuthError{Op: "signout", Err: fmt.Errorf("failed to revoke session: %w", err)}
	}

	a.logger.Info("Identity service: session revoked", "jti", jti)
	return nil
}

func (a *Identity) resolveFederatedUser(ctx context.Context, link model.PendingLink, subject string) (model.User, error) {
	providerName := a.provider.Name()

	existing, err := a.userStore.GetBySubject(ctx, providerName, subject)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by subject: %w", err)
	}
	found := err == nil

	if link.LinkUserID != nil {
		if found {
			if existing.ID != *link.LinkUserID {
				return model.User{}, model.ErrCredentialInUse
			}
			return existing, nil
		}

		user, err := a.userStore.Link(ctx, *link.LinkUserID, providerName, subject)
		if err != nil {
			return model.User{}, fmt.Errorf("failed to link user: %w", err)
		}
		return user, nil
	}

	if found {
		return existing, nil
	}

	now := a.now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:        uuid.New(),
		Kind:      model.SessionFederated,
		Provider:  providerName,
		Subject:   subject,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (a *Identity) issue(ctx context.Context, user model.User) (model.Session, error) {
	token, jti, expiresAt, err := a.tokens.GenerateSessionToken(user.ID)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue token: %w", err)
	}

	record := model.SessionRecord{
		JTI:       jti,
		UserID:    user.ID,
		IssuedAt:  a.now(),
		ExpiresAt: expiresAt,
	}
	if err := a.sessionStore.Create(ctx, record); err != nil {
		return model.Session{}, fmt.Errorf("failed to persist session: %w", err)
	}

	return model.Session{UserID: user.ID, Kind: user.Kind, Token: token}, nil
}

func validateSession(record model.SessionRecord, userID uuid.UUID, now time.Time) error {
	if record.RevokedAt != nil {
		return model.ErrSessionRevoked
	}
	if now.After(record.ExpiresAt) {
		return model.ErrSessionExpired
	}
	if record.UserID != userID {
		return fmt.Errorf("session belongs to another user")
	}
	return nil
}
