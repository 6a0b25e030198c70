package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/postit-wall/internal/logger"
)

// Logging logs every HTTP request with its status and duration.
type Logging struct {
	logger *logger.Logger
}

func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// HandleHTTP is the gin middleware.
func (l *Logging) HandleHTTP(c *gin.Context) {
	start := time.Now()

	c.Next()

	status := c.Writer.Status()
	args := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if len(c.Errors) > 0 {
		args = append(args, "errors", c.Errors.String())
	}

	if status >= http.StatusInternalServerError {
		l.logger.Error("HTTP request failed", args...)
		return
	}
	l.logger.Info("HTTP request completed", args...)
}

// Recovery logs a handler panic and answers 500.
func (l *Logging) Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		l.logger.Error("HTTP handler panicked", "path", c.Request.URL.Path, "panic", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
