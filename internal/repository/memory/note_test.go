package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/postit-wall/internal/model"
)

func TestNoteStore_ListByOwner_NewestFirstAndIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewNoteStore()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	alice, bob := uuid.New(), uuid.New()
	first, err := s.Create(ctx, model.NewNote{OwnerID: alice, Date: "2024-01-01", Title: "first"})
	require.NoError(t, err)
	second, err := s.Create(ctx, model.NewNote{OwnerID: alice, Date: "2024-01-02", Title: "second"})
	require.NoError(t, err)
	_, err = s.Create(ctx, model.NewNote{OwnerID: bob, Date: "2024-01-01", Title: "bob"})
	require.NoError(t, err)

	assert.True(t, second.CreatedAt.After(first.CreatedAt))

	notes, err := s.ListByOwner(ctx, alice)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].Title)
	assert.Equal(t, "first", notes[1].Title)
}

func TestNoteStore_UpdateField(t *testing.T) {
	ctx := context.Background()
	s := NewNoteStore()
	owner := uuid.New()
	n, err := s.Create(ctx, model.NewNote{OwnerID: owner, Date: "d", Title: "t", Body: "b"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateField(ctx, owner, n.ID, model.NoteFieldBody, "new body"))
	notes, err := s.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "t", notes[0].Title)
	assert.Equal(t, "new body", notes[0].Body)

	assert.ErrorIs(t, s.UpdateField(ctx, uuid.New(), n.ID, model.NoteFieldBody, "x"), model.ErrNotFound)
	assert.ErrorIs(t, s.UpdateField(ctx, owner, uuid.New(), model.NoteFieldBody, "x"), model.ErrNotFound)
	assert.ErrorIs(t, s.UpdateField(ctx, owner, n.ID, model.NoteField("date"), "x"), model.ErrValidation)

	// titles are only required at creation
	require.NoError(t, s.UpdateField(ctx, owner, n.ID, model.NoteFieldTitle, ""))
	notes, err = s.ListByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, notes[0].Title)
}

func TestNoteStore_DeletePublishes(t *testing.T) {
	ctx := context.Background()
	s := NewNoteStore()
	owner := uuid.New()
	n, err := s.Create(ctx, model.NewNote{OwnerID: owner, Date: "d", Title: "t"})
	require.NoError(t, err)

	signals, stop := s.Watch(owner)
	defer stop()

	require.NoError(t, s.Delete(ctx, owner, n.ID))
	select {
	case <-signals:
	default:
		t.Fatal("expected change signal after delete")
	}

	assert.ErrorIs(t, s.Delete(ctx, owner, n.ID), model.ErrNotFound)
}

func TestUserStore_Link(t *testing.T) {
	ctx := context.Background()
	s := NewUserStore()
	anon, err := s.Create(ctx, model.User{ID: uuid.New(), Kind: model.SessionAnonymous})
	require.NoError(t, err)
	other, err := s.Create(ctx, model.User{ID: uuid.New(), Kind: model.SessionFederated, Provider: "google", Subject: "taken"})
	require.NoError(t, err)

	linked, err := s.Link(ctx, anon.ID, "google", "sub-1")
	require.NoError(t, err)
	assert.Equal(t, anon.ID, linked.ID)
	assert.Equal(t, model.SessionFederated, linked.Kind)

	found, err := s.GetBySubject(ctx, "google", "sub-1")
	require.NoError(t, err)
	assert.Equal(t, anon.ID, found.ID)

	_, err = s.Link(ctx, anon.ID, "google", other.Subject)
	assert.ErrorIs(t, err, model.ErrCredentialInUse)
}
