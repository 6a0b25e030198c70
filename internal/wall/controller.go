package wall

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/postit-wall/internal/logger"
	"github.com/dtroode/postit-wall/internal/model"
	"github.com/dtroode/postit-wall/internal/service"
)

// NoteService is the note store as seen by a page.
type NoteService interface {
	NoteCreator
	UpdateField(ctx context.Context, ownerID, id uuid.UUID, field model.NoteField, value string) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Subscribe(ctx context.Context, ownerID uuid.UUID) (*service.Subscription, error)
}

// State is the session state of a page.
type State int

const (
	StateNoSession State = iota
	StateAnonymous
	StateFederated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateFederated:
		return "federated"
	default:
		return "no_session"
	}
}

const (
	noSessionLabel = "No session"
	offlineSuffix  = " · offline"
)

// Controller keeps a page's chrome and wall in step with its session.
// It owns the page's only live query and is not safe for concurrent use:
// every method must be called from the page's event loop.
type Controller struct {
	sessions *SessionManager
	notes    NoteService
	renderer *Renderer
	form     *FormController
	view     View
	logger   *logger.Logger

	state   State
	label   string
	offline bool
	sub     *service.Subscription
}

// NewController creates a controller and subscribes it to sessions.
func NewController(sessions *SessionManager, notes NoteService, view View, logger *logger.Logger) *Controller {
	c := &Controller{
		sessions: sessions,
		notes:    notes,
		renderer: NewRenderer(),
		form:     NewFormController(notes, view),
		view:     view,
		logger:   logger,
	}
	sessions.OnSessionChanged(c.onSessionChanged)
	return c
}

// Start resolves the page token and brings the page into its first state.
// On error the page stays in NoSession with its token untouched and no anonymous sign-in.
func (c *Controller) Start(ctx context.Context, token string) error {
	return c.sessions.Start(ctx, token)
}

func (c *Controller) State() State {
	return c.state
}

// Snapshots returns the live query's snapshot channel, or nil when no query runs.
func (c *Controller) Snapshots() <-chan model.Snapshot {
	if c.sub == nil {
		return nil
	}
	return c.sub.Snapshots()
}

// Errors returns the live query's error channel, or nil when no query runs.
func (c *Controller) Errors() <-chan error {
	if c.sub == nil {
		return nil
	}
	return c.sub.Errors()
}

func (c *Controller) onSessionChanged(ctx context.Context, session *model.Session) {
	if session == nil {
		c.state = StateNoSession
		c.setLabel(noSessionLabel)
		c.view.SetControls(true, false)
		c.retire()
		c.view.RenderWall("")

		if err := c.sessions.SignInAnonymous(ctx); err != nil {
			c.logger.Error("Wall: automatic anonymous sign-in failed", "error", err)
		}
		return
	}

	switch session.Kind {
	case model.SessionFederated:
		c.state = StateFederated
		c.setLabel("Federated · " + session.UserID.String())
		c.view.SetControls(false, true)
	default:
		c.state = StateAnonymous
		c.setLabel("Anonymous · " + session.UserID.String())
		c.view.SetControls(true, true)
	}

	if c.sub != nil && c.sub.OwnerID() == session.UserID {
		return
	}

	c.retire()
	sub, err := c.notes.Subscribe(ctx, session.UserID)
	if err != nil {
		c.logger.Error("Wall: failed to subscribe", "owner_id", session.UserID, "error", err)
		return
	}
	c.sub = sub
}

// HandleSnapshot re-renders the wall. Snapshots of a retired query are dropped.
// A snapshot served from the offline cache marks the label until live data arrives.
func (c *Controller) HandleSnapshot(snapshot model.Snapshot) {
	if c.sub == nil || c.sub.OwnerID() != snapshot.OwnerID {
		return
	}

	if snapshot.FromCache != c.offline {
		c.offline = snapshot.FromCache
		c.view.SetUserLabel(c.displayLabel())
	}

	markup, err := c.renderer.Render(snapshot.Notes)
	if err != nil {
		c.logger.Error("Wall: render failed", "owner_id", snapshot.OwnerID, "error", err)
		return
	}
	c.view.RenderWall(markup)
}

// HandleSubscriptionError records a failed live query. The wall keeps its last content.
func (c *Controller) HandleSubscriptionError(err error) {
	c.logger.Error("Wall: live query stopped", "error", err)
	c.retire()
}

// Submit handles the new-note form.
func (c *Controller) Submit(ctx context.Context, form model.NoteForm) {
	session := c.sessions.Current()
	if session == nil {
		return
	}

	if _, err := c.form.Submit(ctx, session.UserID, form); err != nil {
		c.logger.Error("Wall: failed to create note", "owner_id", session.UserID, "error", err)
	}
}

// Edit commits one edited field of a card. The value is trimmed.
func (c *Controller) Edit(ctx context.Context, id uuid.UUID, field model.NoteField, value string) {
	session := c.sessions.Current()
	if session == nil {
		return
	}

	if err := c.notes.UpdateField(ctx, session.UserID, id, field, strings.TrimSpace(value)); err != nil {
		c.logger.Error("Wall: failed to update note",
			"note_id", id,
			"field", field,
			"error", err)
	}
}

// Delete removes a card's note.
func (c *Controller) Delete(ctx context.Context, id uuid.UUID) {
	session := c.sessions.Current()
	if session == nil {
		return
	}

	if err := c.notes.Delete(ctx, session.UserID, id); err != nil {
		c.logger.Error("Wall: failed to delete note", "note_id", id, "error", err)
	}
}

// BeginFederatedSignIn starts the provider redirect, linking an anonymous session.
func (c *Controller) BeginFederatedSignIn(ctx context.Context) {
	c.sessions.BeginFederatedSignIn(ctx, c.sessions.Current())
}

// SignOut retires the live query and ends the session. A fresh anonymous session follows.
func (c *Controller) SignOut(ctx context.Context) {
	c.retire()
	if err := c.sessions.SignOut(ctx); err != nil {
		c.logger.Error("Wall: failed to revoke session", "error", err)
	}
}

// Close retires the live query.
func (c *Controller) Close() {
	c.retire()
}

func (c *Controller) setLabel(label string) {
	c.label = label
	c.offline = false
	c.view.SetUserLabel(label)
}

func (c *Controller) displayLabel() string {
	if c.offline {
		return c.label + offlineSuffix
	}
	return c.label
}

func (c *Controller) retire() {
	if c.sub == nil {
		return
	}
	c.sub.Cancel()
	c.sub = nil
}
