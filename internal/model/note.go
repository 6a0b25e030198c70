package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NoteStore defines persistence operations for notes.
type NoteStore interface {
	Create(ctx context.Context, note NewNote) (Note, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Note, error)
	UpdateField(ctx context.Context, ownerID, id uuid.UUID, field NoteField, value string) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Ping(ctx context.Context) error
}

// ChangeFeed signals that the notes of an owner have changed.
// The returned stop func must be called once the caller is no longer interested.
type ChangeFeed interface {
	Watch(ownerID uuid.UUID) (signals <-chan struct{}, stop func())
}

// SnapshotCache keeps the last delivered snapshot of every owner.
type SnapshotCache interface {
	Enable(ctx context.Context) error
	Save(ctx context.Context, snapshot Snapshot) error
	Load(ctx context.Context, ownerID uuid.UUID) (Snapshot, bool, error)
}

// Note is a single post-it on the wall.
type Note struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNote contains parameters to create a note.
type NewNote struct {
	OwnerID uuid.UUID
	Date    string
	Title   string
	Body    string
}

// Validate checks the fields every stored note must carry.
func (n NewNote) Validate() error {
	if n.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: owner is required", ErrValidation)
	}
	if n.Date == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return nil
}

// NoteForm is the raw input of the new-note form.
type NoteForm struct {
	Date  string
	Title string
	Body  string
}

// Validate requires a date and a title that is not blank.
func (f NoteForm) Validate() error {
	if f.Date == "" {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	return nil
}

// NoteField enumerates the fields that may be edited after creation.
type NoteField string

const (
	NoteFieldTitle NoteField = "title"
	NoteFieldBody  NoteField = "body"
)

// Valid reports whether the field can be updated in place.
func (f NoteField) Valid() bool {
	return f == NoteFieldTitle || f == NoteFieldBody
}

// Snapshot is one complete delivery of an owner's notes, newest first.
type Snapshot struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	Notes     []Note    `json:"notes"`
	FromCache bool      `json:"-"`
}
