package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users of the identity service.
type UserStore interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetBySubject(ctx context.Context, provider, subject string) (User, error)
	Link(ctx context.Context, id uuid.UUID, provider, subject string) (User, error)
}

// User is an identity known to the identity service.
// Anonymous users have no provider or subject until they are linked.
type User struct {
	ID        uuid.UUID
	Kind      SessionKind
	Provider  string
	Subject   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
