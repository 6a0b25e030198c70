package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PendingLinkDuration is a TTL for redirect sign-in round trips.
const PendingLinkDuration = time.Minute * 10

// SessionKind distinguishes anonymous sessions from federated ones.
type SessionKind string

const (
	SessionAnonymous SessionKind = "anonymous"
	SessionFederated SessionKind = "federated"
)

// Session is the identity context a page is currently running under.
// A nil *Session means there is no session.
type Session struct {
	UserID uuid.UUID
	Kind   SessionKind
	Token  string
}

// SessionStore persists issued session tokens so they can be revoked.
type SessionStore interface {
	Create(ctx context.Context, record SessionRecord) error
	GetByJTI(ctx context.Context, jti string) (SessionRecord, error)
	RevokeByJTI(ctx context.Context, jti string) error
}

// SessionRecord is the server-side state of an issued session token.
type SessionRecord struct {
	JTI       string
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// LinkStore persists pending federated sign-ins across the redirect.
type LinkStore interface {
	Create(ctx context.Context, link PendingLink) error
	GetByState(ctx context.Context, state string) (PendingLink, error)
	Consume(ctx context.Context, state string) error
}

// PendingLink describes a federated sign-in waiting for the provider to redirect back.
// LinkUserID is set when an anonymous user is being upgraded in place.
type PendingLink struct {
	State      string
	LinkUserID *uuid.UUID
	ExpiresAt  time.Time
	Consumed   bool
}

// FederatedProvider is a third-party identity provider reached by redirect.
type FederatedProvider interface {
	Name() string
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (subject string, err error)
}
