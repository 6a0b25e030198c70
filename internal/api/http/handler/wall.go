package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dtroode/postit-wall/internal/logger"
	"github.com/dtroode/postit-wall/internal/model"
	"github.com/dtroode/postit-wall/internal/wall"
)

// SessionCookie carries the page's session token.
const SessionCookie = "postit_session"

const sessionUnavailable = "Your session could not be restored right now. Please reload the page."

// Wall serves the live wall of one page over a websocket.
type Wall struct {
	identity wall.IdentityService
	notes    wall.NoteService
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

func NewWall(identity wall.IdentityService, notes wall.NoteService, logger *logger.Logger) *Wall {
	return &Wall{
		identity: identity,
		notes:    notes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger: logger,
	}
}

// Serve upgrades the request and runs the page's event loop until either side goes away.
func (h *Wall) Serve(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("Wall handler: upgrade failed", "error", err)
		return
	}

	token, _ := c.Cookie(SessionCookie)
	log := h.logger.With("remote_addr", c.ClientIP())

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	conn := newWallConn(ws, log)
	writerDone := make(chan struct{})
	go func() {
		conn.writeLoop()
		close(writerDone)
	}()

	incoming := make(chan clientMessage)
	go conn.readLoop(incoming)

	h.loop(ctx, conn, token, incoming, log)

	conn.close()
	<-writerDone
	_ = ws.Close()
}

func (h *Wall) loop(ctx context.Context, conn *wallConn, token string, incoming <-chan clientMessage, log *logger.Logger) {
	controller := wall.NewController(wall.NewSessionManager(h.identity, conn, log), h.notes, conn, log)
	defer controller.Close()

	if err := controller.Start(ctx, token); err != nil {
		log.Error("Wall handler: failed to start page session", "error", err)
		conn.Alert(sessionUnavailable)
		return
	}

	for {
		select {
		case msg, ok := <-incoming:
			if !ok {
				return
			}
			h.dispatch(ctx, controller, msg)
		case snapshot := <-controller.Snapshots():
			controller.HandleSnapshot(snapshot)
		case err := <-controller.Errors():
			controller.HandleSubscriptionError(err)
		case <-conn.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Wall) dispatch(ctx context.Context, controller *wall.Controller, msg clientMessage) {
	switch msg.Type {
	case msgSubmit:
		controller.Submit(ctx, model.NoteForm{Date: msg.Date, Title: msg.Title, Body: msg.Body})
	case msgEdit:
		id, err := uuid.Parse(msg.ID)
		if err != nil {
			h.logger.Debug("Wall handler: bad note id", "id", msg.ID)
			return
		}
		controller.Edit(ctx, id, model.NoteField(msg.Field), msg.Value)
	case msgDelete:
		id, err := uuid.Parse(msg.ID)
		if err != nil {
			h.logger.Debug("Wall handler: bad note id", "id", msg.ID)
			return
		}
		controller.Delete(ctx, id)
	case msgFederated:
		controller.BeginFederatedSignIn(ctx)
	case msgSignOut:
		controller.SignOut(ctx)
	default:
		h.logger.Debug("Wall handler: unknown message", "type", msg.Type)
	}
}

// Index serves the wall page.
func Index(page []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	}
}
