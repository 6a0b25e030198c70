package wall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/postit-wall/internal/model"
	"github.com/dtroode/postit-wall/internal/repository/memory"
	"github.com/dtroode/postit-wall/internal/service"
	"github.com/dtroode/postit-wall/internal/testutil"
	"github.com/dtroode/postit-wall/internal/token"
)

type controls struct {
	federated bool
	signOut   bool
}

// fakeView records what a page was told to show.
type fakeView struct {
	labels    []string
	controls  []controls
	walls     []string
	resets    int
	alerts    []string
	redirects []string
	tokens    []string
}

func (v *fakeView) SetUserLabel(label string)           { v.labels = append(v.labels, label) }
func (v *fakeView) SetControls(federated, signOut bool) { v.controls = append(v.controls, controls{federated, signOut}) }
func (v *fakeView) RenderWall(markup string)            { v.walls = append(v.walls, markup) }
func (v *fakeView) ResetForm()                          { v.resets++ }
func (v *fakeView) Alert(message string)                { v.alerts = append(v.alerts, message) }
func (v *fakeView) Redirect(url string)                 { v.redirects = append(v.redirects, url) }
func (v *fakeView) StoreToken(token string)             { v.tokens = append(v.tokens, token) }

func (v *fakeView) label() string {
	if len(v.labels) == 0 {
		return ""
	}
	return v.labels[len(v.labels)-1]
}

func (v *fakeView) lastControls() controls {
	if len(v.controls) == 0 {
		return controls{}
	}
	return v.controls[len(v.controls)-1]
}

func (v *fakeView) wall() string {
	if len(v.walls) == 0 {
		return ""
	}
	return v.walls[len(v.walls)-1]
}

func (v *fakeView) token() string {
	if len(v.tokens) == 0 {
		return ""
	}
	return v.tokens[len(v.tokens)-1]
}

type backend struct {
	store    *memory.NoteStore
	sessions *flakySessionStore
	notes    *service.Notes
	identity *service.Identity
}

// flakySessionStore fails the next session lookup when failLookup is set.
type flakySessionStore struct {
	*memory.SessionStore
	failLookup bool
}

func (s *flakySessionStore) GetByJTI(ctx context.Context, jti string) (model.SessionRecord, error) {
	if s.failLookup {
		s.failLookup = false
		return model.SessionRecord{}, errors.New("connection reset")
	}
	return s.SessionStore.GetByJTI(ctx, jti)
}

func newBackend(provider model.FederatedProvider) *backend {
	store := memory.NewNoteStore()
	sessions := &flakySessionStore{SessionStore: memory.NewSessionStore()}
	log := testutil.MakeNoopLogger()
	return &backend{
		store:    store,
		sessions: sessions,
		notes:    service.NewNotes(store, store, nil, log),
		identity: service.NewIdentity(
			memory.NewUserStore(),
			sessions,
			memory.NewLinkStore(),
			token.NewJWT("test-secret", time.Hour),
			provider,
			log,
		),
	}
}

func (b *backend) page(t *testing.T) (*Controller, *fakeView) {
	t.Helper()
	view := &fakeView{}
	log := testutil.MakeNoopLogger()
	c := NewController(NewSessionManager(b.identity, view, log), b.notes, view, log)
	t.Cleanup(c.Close)
	return c, view
}

// pump hands the next snapshot of the running live query to the controller.
func pump(t *testing.T, c *Controller) model.Snapshot {
	t.Helper()
	require.NotNil(t, c.Snapshots(), "no live query is running")

	select {
	case snapshot := <-c.Snapshots():
		c.HandleSnapshot(snapshot)
		return snapshot
	case err := <-c.Errors():
		t.Fatalf("live query failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return model.Snapshot{}
}

func currentUser(t *testing.T, c *Controller) uuid.UUID {
	t.Helper()
	session := c.sessions.Current()
	require.NotNil(t, session)
	return session.UserID
}
