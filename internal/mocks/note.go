package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/postit-wall/internal/model"
)

// NoteStore is a mock implementation of model.NoteStore.
type NoteStore struct {
	mock.Mock
}

func NewNoteStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *NoteStore {
	m := &NoteStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *NoteStore) Create(ctx context.Context, note model.NewNote) (model.Note, error) {
	args := m.Called(ctx, note)
	return args.Get(0).(model.Note), args.Error(1)
}

func (m *NoteStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	args := m.Called(ctx, ownerID)
	notes, _ := args.Get(0).([]model.Note)
	return notes, args.Error(1)
}

func (m *NoteStore) UpdateField(ctx context.Context, ownerID, id uuid.UUID, field model.NoteField, value string) error {
	return m.Called(ctx, ownerID, id, field, value).Error(0)
}

func (m *NoteStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *NoteStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// SnapshotCache is a mock implementation of model.SnapshotCache.
type SnapshotCache struct {
	mock.Mock
}

func NewSnapshotCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *SnapshotCache {
	m := &SnapshotCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SnapshotCache) Enable(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *SnapshotCache) Save(ctx context.Context, snapshot model.Snapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}

func (m *SnapshotCache) Load(ctx context.Context, ownerID uuid.UUID) (model.Snapshot, bool, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(model.Snapshot), args.Bool(1), args.Error(2)
}
