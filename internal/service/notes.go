package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dtroode/postit-wall/internal/logger"
	"github.com/dtroode/postit-wall/internal/model"
)

// Notes adapts the note store and its change feed into live, owner-scoped queries.
type Notes struct {
	store   model.NoteStore
	feed    model.ChangeFeed
	cache   model.SnapshotCache
	persist atomic.Bool
	logger  *logger.Logger
}

func NewNotes(
	store model.NoteStore,
	feed model.ChangeFeed,
	cache model.SnapshotCache,
	logger *logger.Logger,
) *Notes {
	return &Notes{
		store:  store,
		feed:   feed,
		cache:  cache,
		logger: logger,
	}
}

// EnablePersistence turns on the offline snapshot cache.
// Callers treat a failure as non-fatal; the adapter then runs online-only.
func (s *Notes) EnablePersistence(ctx context.Context) error {
	if s.cache == nil {
		return fmt.Errorf("snapshot cache is not configured")
	}
	if err := s.cache.Enable(ctx); err != nil {
		return fmt.Errorf("failed to enable snapshot cache: %w", err)
	}
	s.persist.Store(true)
	return nil
}

// Create stores a new note and returns its store-assigned id.
func (s *Notes) Create(ctx context.Context, note model.NewNote) (uuid.UUID, error) {
	if err := note.Validate(); err != nil {
		return uuid.Nil, &model.StoreError{Op: "create", Err: err}
	}

	saved, err := s.store.Create(ctx, note)
	if err != nil {
		return uuid.Nil, &model.StoreError{Op: "create", Err: err}
	}

	s.logger.Debug("Notes service: note created",
		"note_id", saved.ID,
		"owner_id", saved.OwnerID)

	return saved.ID, nil
}

// UpdateField replaces exactly one editable field of a note.
func (s *Notes) UpdateField(ctx context.Context, ownerID, id uuid.UUID, field model.NoteField, value string) error {
	if !field.Valid() {
		return &model.StoreError{Op: "update", Err: fmt.Errorf("%w: field %q is not editable", model.ErrValidation, field)}
	}

	if err := s.store.UpdateField(ctx, ownerID, id, field, value); err != nil {
		return &model.StoreError{Op: "update", Err: err}
	}
	return nil
}

// Delete removes a note. Deleting a note that is already gone is not an error.
func (s *Notes) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	err := s.store.Delete(ctx, ownerID, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return &model.StoreError{Op: "delete", Err: err}
	}
	return nil
}

// Subscribe opens a live query over ownerID's notes, newest first.
// Every change delivers the full result set. The subscription ends with ctx or Cancel.
func (s *Notes) Subscribe(ctx context.Context, ownerID uuid.UUID) (*Subscription, error) {
	if ownerID == uuid.Nil {
		return nil, &model.StoreError{Op: "subscribe", Err: fmt.Errorf("%w: owner is required", model.ErrValidation)}
	}

	signals, stop := s.feed.Watch(ownerID)
	runCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		ownerID:   ownerID,
		snapshots: make(chan model.Snapshot),
		errs:      make(chan error, 1),
		cancel:    cancel,
		exited:    make(chan struct{}),
	}

	go s.produce(runCtx, sub, signals, stop)

	return sub, nil
}

func (s *Notes) produce(ctx context.Context, sub *Subscription, signals <-chan struct{}, stop func()) {
	defer close(sub.exited)
	defer stop()

	first := true
	for {
		notes, err := s.store.ListByOwner(ctx, sub.ownerID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if first {
				if cached, ok := s.loadCached(ctx, sub.ownerID); ok {
					if !sub.deliver(ctx, cached) {
						return
					}
				}
			}
			sub.errs <- &model.StoreError{Op: "subscribe", Err: err}
			return
		}
		first = false

		snapshot := model.Snapshot{OwnerID: sub.ownerID, Notes: notes}
		if !sub.deliver(ctx, snapshot) {
			return
		}
		s.saveCached(ctx, snapshot)

		select {
		case <-signals:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Notes) loadCached(ctx context.Context, ownerID uuid.UUID) (model.Snapshot, bool) {
	if !s.persist.Load() {
		return model.Snapshot{}, false
	}
	snapshot, ok, err := s.cache.Load(ctx, ownerID)
	if err != nil {
		s.logger.Debug("Notes service: cached snapshot unavailable", "owner_id", ownerID, "error", err)
		return model.Snapshot{}, false
	}
	return snapshot, ok
}

func (s *Notes) saveCached(ctx context.Context, snapshot model.Snapshot) {
	if !s.persist.Load() {
		return
	}
	if err := s.cache.Save(ctx, snapshot); err != nil {
		s.logger.Debug("Notes service: failed to cache snapshot", "owner_id", snapshot.OwnerID, "error", err)
	}
}

// Subscription is a live query handle. Snapshots arrive on Snapshots until the
// subscription is cancelled or a StoreError is sent on Errors.
type Subscription struct {
	ownerID   uuid.UUID
	snapshots chan model.Snapshot
	errs      chan error
	cancel    context.CancelFunc
	exited    chan struct{}
}

// OwnerID returns the owner the query is scoped to.
func (sub *Subscription) OwnerID() uuid.UUID {
	return sub.ownerID
}

// Snapshots returns the channel full result sets are delivered on.
func (sub *Subscription) Snapshots() <-chan model.Snapshot {
	return sub.snapshots
}

// Errors returns the channel the terminal StoreError, if any, is delivered on.
func (sub *Subscription) Errors() <-chan error {
	return sub.errs
}

// Cancel stops the live query. When Cancel returns no further snapshot will be delivered.
// It is safe to call more than once.
func (sub *Subscription) Cancel() {
	sub.cancel()
	<-sub.exited
}

func (sub *Subscription) deliver(ctx context.Context, snapshot model.Snapshot) bool {
	select {
	case sub.snapshots <- snapshot:
		return true
	case <-ctx.Done():
		return false
	}
}
