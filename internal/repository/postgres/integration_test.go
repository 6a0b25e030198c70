//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/postit-wall/internal/model"
	repo "github.com/dtroode/postit-wall/internal/repository/postgres"
	"github.com/dtroode/postit-wall/internal/testutil"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "postit_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/postit_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func connect(t *testing.T) *repo.Connection {
	t.Helper()
	conn, err := repo.NewConnection(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func createUser(t *testing.T, ur *repo.UserRepository) model.User {
	t.Helper()
	u, err := ur.Create(context.Background(), model.User{
		ID:        uuid.New(),
		Kind:      model.SessionAnonymous,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	require.NoError(t, err)
	return u
}

func TestRepositories_Identity(t *testing.T) {
	ctx := context.Background()
	conn := connect(t)

	t.Run("user_repository", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		anon := createUser(t, ur)
		require.Equal(t, model.SessionAnonymous, anon.Kind)
		require.Empty(t, anon.Subject)

		linked, err := ur.Link(ctx, anon.ID, "google", "sub-"+anon.ID.String())
		require.NoError(t, err)
		require.Equal(t, anon.ID, linked.ID)
		require.Equal(t, model.SessionFederated, linked.Kind)

		bySubject, err := ur.GetBySubject(ctx, "google", linked.Subject)
		require.NoError(t, err)
		require.Equal(t, anon.ID, bySubject.ID)

		other := createUser(t, ur)
		_, err = ur.Link(ctx, other.ID, "google", linked.Subject)
		require.ErrorIs(t, err, model.ErrCredentialInUse)

		_, err = ur.GetByID(ctx, uuid.New())
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("session_repository", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		sr := repo.NewSessionRepository(conn)
		u := createUser(t, ur)

		rec := model.SessionRecord{
			JTI:       uuid.NewString(),
			UserID:    u.ID,
			IssuedAt:  time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		require.NoError(t, sr.Create(ctx, rec))

		got, err := sr.GetByJTI(ctx, rec.JTI)
		require.NoError(t, err)
		require.Equal(t, u.ID, got.UserID)
		require.Nil(t, got.RevokedAt)

		require.NoError(t, sr.RevokeByJTI(ctx, rec.JTI))
		got, err = sr.GetByJTI(ctx, rec.JTI)
		require.NoError(t, err)
		require.NotNil(t, got.RevokedAt)
	})

	t.Run("link_repository", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		lr := repo.NewLinkRepository(conn)
		u := createUser(t, ur)

		link := model.PendingLink{State: uuid.NewString(), LinkUserID: &u.ID, ExpiresAt: time.Now().Add(time.Hour)}
		require.NoError(t, lr.Create(ctx, link))

		got, err := lr.GetByState(ctx, link.State)
		require.NoError(t, err)
		require.NotNil(t, got.LinkUserID)
		require.Equal(t, u.ID, *got.LinkUserID)

		require.NoError(t, lr.Consume(ctx, link.State))
		require.ErrorIs(t, lr.Consume(ctx, link.State), model.ErrNotFound)

		fresh := model.PendingLink{State: uuid.NewString(), ExpiresAt: time.Now().Add(time.Hour)}
		require.NoError(t, lr.Create(ctx, fresh))
		got, err = lr.GetByState(ctx, fresh.State)
		require.NoError(t, err)
		require.Nil(t, got.LinkUserID)
	})
}

func TestNoteRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	conn := connect(t)
	ur := repo.NewUserRepository(conn)
	nr := repo.NewNoteRepository(conn)

	alice := createUser(t, ur)
	bob := createUser(t, ur)

	first, err := nr.Create(ctx, model.NewNote{OwnerID: alice.ID, Date: "2024-01-01", Title: "Buy milk"})
	require.NoError(t, err)
	second, err := nr.Create(ctx, model.NewNote{OwnerID: alice.ID, Date: "2024-01-02", Title: "Call mom", Body: "  evening  "})
	require.NoError(t, err)
	_, err = nr.Create(ctx, model.NewNote{OwnerID: bob.ID, Date: "2024-01-01", Title: "bob's"})
	require.NoError(t, err)

	notes, err := nr.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.Equal(t, second.ID, notes[0].ID)
	require.Equal(t, first.ID, notes[1].ID)
	require.Equal(t, "  evening  ", notes[0].Body)

	require.NoError(t, nr.UpdateField(ctx, alice.ID, first.ID, model.NoteFieldTitle, "Buy oat milk"))
	require.ErrorIs(t, nr.UpdateField(ctx, bob.ID, first.ID, model.NoteFieldTitle, "hijack"), model.ErrNotFound)

	require.NoError(t, nr.UpdateField(ctx, alice.ID, second.ID, model.NoteFieldTitle, ""))
	notes, err = nr.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "", notes[0].Title)
	require.NoError(t, nr.UpdateField(ctx, alice.ID, second.ID, model.NoteFieldTitle, "Call mom"))

	require.NoError(t, nr.Delete(ctx, alice.ID, first.ID))
	require.ErrorIs(t, nr.Delete(ctx, alice.ID, first.ID), model.ErrNotFound)

	notes, err = nr.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "Call mom", notes[0].Title)
}

func TestListener_PublishesOwnerChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := connect(t)
	ur := repo.NewUserRepository(conn)
	nr := repo.NewNoteRepository(conn)
	owner := createUser(t, ur)

	listener := repo.NewListener(conn, testutil.MakeNoopLogger())
	signals, stop := listener.Watch(owner.ID)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	// the initial PublishAll marks the listener as ready
	select {
	case <-signals:
	case <-time.After(10 * time.Second):
		t.Fatal("listener did not start")
	}

	_, err := nr.Create(ctx, model.NewNote{OwnerID: owner.ID, Date: "2024-01-01", Title: "live"})
	require.NoError(t, err)

	select {
	case <-signals:
	case <-time.After(10 * time.Second):
		t.Fatal("no notification for insert")
	}

	cancel()
	require.NoError(t, <-done)
}
