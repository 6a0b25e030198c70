package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/postit-wall/internal/api/http/handler"
	"github.com/dtroode/postit-wall/internal/api/http/middleware"
	"github.com/dtroode/postit-wall/internal/logger"
	"github.com/dtroode/postit-wall/internal/wall"
	"github.com/dtroode/postit-wall/web"
)

// Identity is everything the web surface needs from the identity service.
type Identity interface {
	wall.IdentityService
	handler.FederatedCompleter
}

// Options configure the session cookie set after a federated sign-in.
type Options struct {
	CookieMaxAge  time.Duration
	SecureCookies bool
}

// Router assembles the wall's HTTP surface.
type Router struct {
	identity Identity
	notes    wall.NoteService
	store    handler.Pinger
	opts     Options
	logger   *logger.Logger
}

// New creates new HTTP Router instance.
func New(identity Identity, notes wall.NoteService, store handler.Pinger, opts Options, logger *logger.Logger) *Router {
	return &Router{
		identity: identity,
		notes:    notes,
		store:    store,
		opts:     opts,
		logger:   logger,
	}
}

// Register builds the gin engine serving the page, its websocket and the sign-in callback.
func (r *Router) Register() (*gin.Engine, error) {
	page, err := web.Index()
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}

	logging := middleware.NewLogging(r.logger)
	wallHandler := handler.NewWall(r.identity, r.notes, r.logger)
	authHandler := handler.NewAuth(r.identity, r.opts.CookieMaxAge, r.opts.SecureCookies, r.logger)

	engine := gin.New()
	engine.Use(logging.HandleHTTP, logging.Recovery())

	engine.GET("/", handler.Index(page))
	engine.StaticFS("/static", http.FS(web.Static()))
	engine.GET("/healthz", handler.Health(r.store))
	engine.GET("/ws", wallHandler.Serve)
	engine.GET("/auth/callback", authHandler.Callback)

	return engine, nil
}
