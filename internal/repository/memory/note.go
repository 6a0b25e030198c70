// Package memory provides process-local stores used for development and tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/postit-wall/internal/feed"
	"github.com/dtroode/postit-wall/internal/model"
)

var (
	_ model.NoteStore  = (*NoteStore)(nil)
	_ model.ChangeFeed = (*NoteStore)(nil)
)

// NoteStore keeps notes in a map and publishes owner changes on its embedded Hub.
type NoteStore struct {
	*feed.Hub

	mu    sync.RWMutex
	notes map[uuid.UUID]model.Note
	last  time.Time
	now   func() time.Time
}

func NewNoteStore() *NoteStore {
	return &NoteStore{
		Hub:   feed.NewHub(),
		notes: make(map[uuid.UUID]model.Note),
		now:   time.Now,
	}
}

func (s *NoteStore) Create(_ context.Context, note model.NewNote) (model.Note, error) {
	s.mu.Lock()
	// creation times are strictly increasing so newest-first ordering is total
	createdAt := s.now()
	if !createdAt.After(s.last) {
		createdAt = s.last.Add(time.Nanosecond)
	}
	s.last = createdAt

	saved := model.Note{
		ID:        uuid.New(),
		OwnerID:   note.OwnerID,
		Date:      note.Date,
		Title:     note.Title,
		Body:      note.Body,
		CreatedAt: createdAt,
	}
	s.notes[saved.ID] = saved
	s.mu.Unlock()

	s.Publish(note.OwnerID)
	return saved, nil
}

func (s *NoteStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	s.mu.RLock()
	notes := make([]model.Note, 0)
	for _, n := range s.notes {
		if n.OwnerID == ownerID {
			notes = append(notes, n)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(notes, func(a, b model.Note) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return notes, nil
}

func (s *NoteStore) UpdateField(_ context.Context, ownerID, id uuid.UUID, field model.NoteField, value string) error {
	s.mu.Lock()
	n, ok := s.notes[id]
	if !ok || n.OwnerID != ownerID {
		s.mu.Unlock()
		return model.ErrNotFound
	}
	switch field {
	case model.NoteFieldTitle:
		n.Title = value
	case model.NoteFieldBody:
		n.Body = value
	default:
		s.mu.Unlock()
		return model.ErrValidation
	}
	s.notes[id] = n
	s.mu.Unlock()

	s.Publish(ownerID)
	return nil
}

func (s *NoteStore) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	s.mu.Lock()
	n, ok := s.notes[id]
	if !ok || n.OwnerID != ownerID {
		s.mu.Unlock()
		return model.ErrNotFound
	}
	delete(s.notes, id)
	s.mu.Unlock()

	s.Publish(ownerID)
	return nil
}

func (s *NoteStore) Ping(_ context.Context) error {
	return nil
}
