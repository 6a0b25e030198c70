package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/postit-wall/internal/logger"
	"github.com/dtroode/postit-wall/internal/model"
)

// FederatedCompleter finishes the provider redirect round trip.
type FederatedCompleter interface {
	CompleteFederated(ctx context.Context, state, code string) (model.Session, error)
	SignOut(ctx context.Context, token string) error
}

// Auth handles the identity provider's redirect back to the wall.
type Auth struct {
	identity     FederatedCompleter
	cookieMaxAge time.Duration
	secure       bool
	logger       *logger.Logger
}

func NewAuth(identity FederatedCompleter, cookieMaxAge time.Duration, secure bool, logger *logger.Logger) *Auth {
	return &Auth{
		identity:     identity,
		cookieMaxAge: cookieMaxAge,
		secure:       secure,
		logger:       logger,
	}
}

// Callback stores the federated session in the page cookie and sends the browser back to the wall.
// Failures land on the wall with an auth_error parameter the page shows to the user.
func (h *Auth) Callback(c *gin.Context) {
	if providerErr := c.Query("error"); providerErr != "" {
		msg := providerErr
		if desc := c.Query("error_description"); desc != "" {
			msg = desc
		}
		h.logger.Info("Auth handler: provider refused sign-in", "error", providerErr)
		h.fail(c, msg)
		return
	}

	ctx := c.Request.Context()
	session, err := h.identity.CompleteFederated(ctx, c.Query("state"), c.Query("code"))
	if err != nil {
		h.logger.Error("Auth handler: federated sign-in failed", "error", err)
		h.fail(c, err.Error())
		return
	}

	if previous, err := c.Cookie(SessionCookie); err == nil && previous != "" && previous != session.Token {
		if err := h.identity.SignOut(ctx, previous); err != nil {
			h.logger.Error("Auth handler: failed to revoke previous session", "error", err)
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, session.Token, int(h.cookieMaxAge.Seconds()), "/", "", h.secure, false)
	c.Redirect(http.StatusFound, "/")
}

func (h *Auth) fail(c *gin.Context, msg string) {
	c.Redirect(http.StatusFound, "/?auth_error="+url.QueryEscape(msg))
}
