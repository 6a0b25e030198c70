package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/postit-wall/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const uniqueViolation = "23505"

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, kind, provider, subject, created_at, updated_at)
			  VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)
			  RETURNING id, kind, COALESCE(provider, ''), COALESCE(subject, ''), created_at, updated_at`

	var saved model.User
	err := r.db.QueryRow(ctx, query,
		user.ID, string(user.Kind), user.Provider, user.Subject, user.CreatedAt, user.UpdatedAt,
	).Scan(
		&saved.ID, &saved.Kind, &saved.Provider, &saved.Subject, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, model.ErrCredentialInUse
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT id, kind, COALESCE(provider, ''), COALESCE(subject, ''), created_at, updated_at
			  FROM users WHERE id = $1`

	return r.getOne(ctx, query, id)
}

func (r *UserRepository) GetBySubject(ctx context.Context, provider, subject string) (model.User, error) {
	query := `SELECT id, kind, COALESCE(provider, ''), COALESCE(subject, ''), created_at, updated_at
			  FROM users WHERE provider = $1 AND subject = $2`

	return r.getOne(ctx, query, provider, subject)
}

// Link upgrades a user in place to a federated identity, keeping its id.
func (r *UserRepository) Link(ctx context.Context, id uuid.UUID, provider, subject string) (model.User, error) {
	query := `UPDATE users SET kind = $2, provider = $3, subject = $4, updated_at = NOW()
			  WHERE id = $1
			  RETURNING id, kind, COALESCE(provider, ''), COALESCE(subject, ''), created_at, updated_at`

	var user model.User
	err := r.db.QueryRow(ctx, query, id, string(model.SessionFederated), provider, subject).Scan(
		&user.ID, &user.Kind, &user.Provider, &user.Subject, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		if isUniqueViolation(err) {
			return model.User{}, model.ErrCredentialInUse
		}
		return model.User{}, fmt.Errorf("failed to link user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (model.User, error) {
	var user model.User
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.Kind, &user.Provider, &user.Subject, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
