package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/postit-wall/internal/model"
)

var _ model.NoteStore = (*NoteRepository)(nil)

// noteColumns maps editable fields to their columns; nothing else may reach the UPDATE statement.
var noteColumns = map[model.NoteField]string{
	model.NoteFieldTitle: "title",
	model.NoteFieldBody:  "body",
}

type NoteRepository struct {
	db *Connection
}

func NewNoteRepository(db *Connection) *NoteRepository {
	return &NoteRepository{
		db: db,
	}
}

func (r *NoteRepository) Create(ctx context.Context, note model.NewNote) (model.Note, error) {
	const query = `
		INSERT INTO notes (id, owner_id, date, title, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, owner_id, date, title, body, created_at`

	var saved model.Note
	err := r.db.QueryRow(ctx, query,
		uuid.New(), note.OwnerID, note.Date, note.Title, note.Body,
	).Scan(
		&saved.ID, &saved.OwnerID, &saved.Date, &saved.Title, &saved.Body, &saved.CreatedAt,
	)
	if err != nil {
		return model.Note{}, fmt.Errorf("failed to create note: %w", err)
	}

	return saved, nil
}

func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	const query = `
		SELECT n.id, n.owner_id, n.date, n.title, n.body, n.created_at
		FROM notes n
		WHERE n.owner_id = $1
		ORDER BY n.created_at DESC, n.id DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Date, &n.Title, &n.Body, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *NoteRepository) UpdateField(ctx context.Context, ownerID, id uuid.UUID, field model.NoteField, value string) error {
	column, ok := noteColumns[field]
	if !ok {
		return fmt.Errorf("%w: field %q is not editable", model.ErrValidation, field)
	}

	query := fmt.Sprintf(`UPDATE notes SET %s = $1 WHERE id = $2 AND owner_id = $3`, column)
	cmd, err := r.db.Exec(ctx, query, value, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	const query = `DELETE FROM notes WHERE id = $1 AND owner_id = $2`
	cmd, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *NoteRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
