package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/postit-wall/internal/model"
)

// Ensure LinkRepository implements the model.LinkStore interface.
var _ model.LinkStore = (*LinkRepository)(nil)

type LinkRepository struct {
	db *Connection
}

func NewLinkRepository(db *Connection) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Create(ctx context.Context, link model.PendingLink) error {
	const query = `
        INSERT INTO pending_links (state, link_user_id, expires_at, consumed)
        VALUES ($1, $2, $3, $4)
    `

	if _, err := r.db.Exec(ctx, query,
		link.State,
		link.LinkUserID,
		link.ExpiresAt,
		link.Consumed,
	); err != nil {
		return fmt.Errorf("failed to create pending link: %w", err)
	}
	return nil
}

func (r *LinkRepository) GetByState(ctx context.Context, state string) (model.PendingLink, error) {
	const query = `
        SELECT state, link_user_id, expires_at, consumed
        FROM pending_links WHERE state = $1
    `

	var link model.PendingLink
	err := r.db.QueryRow(ctx, query, state).Scan(
		&link.State, &link.LinkUserID, &link.ExpiresAt, &link.Consumed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PendingLink{}, model.ErrNotFound
		}
		return model.PendingLink{}, fmt.Errorf("failed to get pending link by state: %w", err)
	}
	return link, nil
}

func (r *LinkRepository) Consume(ctx context.Context, state string) error {
	const query = `UPDATE pending_links SET consumed = TRUE WHERE state = $1 AND consumed = FALSE`

	cmd, err := r.db.Exec(ctx, query, state)
	if err != nil {
		return fmt.Errorf("failed to consume pending link: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
