package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/postit-wall/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

type SessionRepository struct {
	db *Connection
}

func NewSessionRepository(db *Connection) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, record model.SessionRecord) error {
	const query = `
        INSERT INTO sessions (jti, user_id, issued_at, expires_at, revoked_at)
        VALUES ($1, $2, $3, $4, $5)
    `

	_, err := r.db.Exec(ctx, query,
		record.JTI, record.UserID, record.IssuedAt, record.ExpiresAt, record.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByJTI(ctx context.Context, jti string) (model.SessionRecord, error) {
	const query = `
        SELECT jti, user_id, issued_at, expires_at, revoked_at
        FROM sessions WHERE jti = $1
    `
	var rec model.SessionRecord
	err := r.db.QueryRow(ctx, query, jti).Scan(
		&rec.JTI, &rec.UserID, &rec.IssuedAt, &rec.ExpiresAt, &rec.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SessionRecord{}, model.ErrNotFound
		}
		return model.SessionRecord{}, fmt.Errorf("failed to get session by jti: %w", err)
	}
	return rec, nil
}

func (r *SessionRepository) RevokeByJTI(ctx context.Context, jti string) error {
	const query = `
        UPDATE sessions SET revoked_at = NOW()
        WHERE jti = $1 AND revoked_at IS NULL
    `
	if _, err := r.db.Exec(ctx, query, jti); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
