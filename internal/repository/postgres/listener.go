package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/postit-wall/internal/feed"
	"github.com/dtroode/postit-wall/internal/logger"
	"github.com/dtroode/postit-wall/internal/model"
)

// NotesChannel is the NOTIFY channel the notes trigger publishes owner ids on.
const NotesChannel = "notes_changed"

var _ model.ChangeFeed = (*Listener)(nil)

// Listener turns Postgres notifications on NotesChannel into Hub signals.
type Listener struct {
	*feed.Hub
	db     *Connection
	logger *logger.Logger
}

func NewListener(db *Connection, logger *logger.Logger) *Listener {
	return &Listener{
		Hub:    feed.NewHub(),
		db:     db,
		logger: logger,
	}
}

// Run holds a dedicated connection in LISTEN mode until ctx is done.
// A lost connection ends Run with an error; live queries stop updating.
func (l *Listener) Run(ctx context.Context) error {
	conn, err := l.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+NotesChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", NotesChannel, err)
	}
	l.logger.Info("Listener: listening for note changes", "channel", NotesChannel)

	// anything written before LISTEN took effect is picked up by a requery
	l.PublishAll()

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("failed to wait for notification: %w", err)
		}

		ownerID, err := uuid.Parse(n.Payload)
		if err != nil {
			l.logger.Warn("Listener: skipping notification with malformed payload",
				"payload", n.Payload,
				"error", err)
			continue
		}
		l.Publish(ownerID)
	}
}
